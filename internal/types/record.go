package types

// Persistent rows. Sessions and their clips survive restarts; export jobs
// keep their last known progress so clients can poll history after a crash.

const (
	ExportJobStatusRunning uint8 = 1
	ExportJobStatusSuccess uint8 = 2
	ExportJobStatusFailed  uint8 = 3
)

type SessionRecord struct {
	Id             int64  `json:"-" gorm:"primaryKey;autoIncrement"`
	SessionId      string `json:"session_id" gorm:"type:varchar(64);uniqueIndex"`
	SelectedClipId string `json:"selected_clip_id" gorm:"type:varchar(64)"`
	CreateTime     int64  `json:"create_time" gorm:"autoCreateTime"`
	UpdateTime     int64  `json:"update_time" gorm:"autoUpdateTime"`
}

type ClipRecord struct {
	Id         int64   `json:"-" gorm:"primaryKey;autoIncrement"`
	ClipId     string  `json:"clip_id" gorm:"type:varchar(64);uniqueIndex"`
	SessionId  string  `json:"session_id" gorm:"type:varchar(64);index"`
	Position   int     `json:"position"`
	Name       string  `json:"name" gorm:"type:varchar(255)"`
	MediaPath  string  `json:"media_path" gorm:"type:varchar(512)"`
	PreviewKey string  `json:"preview_key" gorm:"type:varchar(128)"`
	Duration   float64 `json:"duration"`
	StartSec   float64 `json:"start_sec"`
	EndSec     float64 `json:"end_sec"`
	CreateTime int64   `json:"create_time" gorm:"autoCreateTime"`
	UpdateTime int64   `json:"update_time" gorm:"autoUpdateTime"`
}

type ExportJob struct {
	Id         int64  `json:"-" gorm:"primaryKey;autoIncrement"`
	JobId      string `json:"job_id" gorm:"type:varchar(64);uniqueIndex"`
	SessionId  string `json:"session_id" gorm:"type:varchar(64);index"`
	Status     uint8  `json:"status" gorm:"index"`
	Stage      string `json:"stage" gorm:"type:varchar(32)"`
	ProcessPct uint8  `json:"process_percent"`
	Step       int    `json:"step"`
	Total      int    `json:"total"`
	LogTail    string `json:"log_tail" gorm:"type:text"`
	FailReason string `json:"fail_reason" gorm:"type:text"`
	OutputPath string `json:"output_path" gorm:"type:varchar(512)"`
	CreateTime int64  `json:"create_time" gorm:"autoCreateTime"`
	UpdateTime int64  `json:"update_time" gorm:"autoUpdateTime"`
}

// ClipFromRecord rebuilds the in-memory clip from its persisted row.
func ClipFromRecord(rec ClipRecord) Clip {
	return Clip{
		ID:         rec.ClipId,
		SessionID:  rec.SessionId,
		Name:       rec.Name,
		MediaPath:  rec.MediaPath,
		PreviewKey: rec.PreviewKey,
		Duration:   rec.Duration,
		Start:      rec.StartSec,
		End:        rec.EndSec,
	}
}

// RecordFromClip converts an in-memory clip to its persisted row. Position
// is ordering within the session, assigned by the caller.
func RecordFromClip(clip Clip, position int) ClipRecord {
	return ClipRecord{
		ClipId:     clip.ID,
		SessionId:  clip.SessionID,
		Position:   position,
		Name:       clip.Name,
		MediaPath:  clip.MediaPath,
		PreviewKey: clip.PreviewKey,
		Duration:   clip.Duration,
		StartSec:   clip.Start,
		EndSec:     clip.End,
	}
}
