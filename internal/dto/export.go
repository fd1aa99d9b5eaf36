package dto

type StartExportResData struct {
	JobId string `json:"job_id"`
}

type ExportStatusResData struct {
	JobId          string   `json:"job_id"`
	SessionId      string   `json:"session_id"`
	Status         uint8    `json:"status"`
	Stage          string   `json:"stage"`
	ProcessPercent uint8    `json:"process_percent"`
	Step           int      `json:"step"`
	Total          int      `json:"total"`
	LogTail        []string `json:"log_tail"`
	FailReason     string   `json:"fail_reason,omitempty"`
	ResultKey      string   `json:"result_key,omitempty"`
	DownloadUrl    string   `json:"download_url,omitempty"`
}

// ExportHistoryResData lists a session's past export jobs, newest first.
type ExportHistoryResData struct {
	Jobs []ExportStatusResData `json:"jobs"`
}

// ExportEvent is one websocket frame on the export event stream.
type ExportEvent struct {
	Type     string  `json:"type"` // "progress", "log", "done", "failed"
	Fraction float64 `json:"fraction,omitempty"`
	Line     string  `json:"line,omitempty"`
	Message  string  `json:"message,omitempty"`
}
