package dto

import (
	"clipforge/internal/types"
	"clipforge/pkg/util"
)

// ClipItem is one timeline entry as the frontend renders it: raw seconds for
// the scrubber plus preformatted clock text for the labels.
type ClipItem struct {
	ClipId       string  `json:"clip_id"`
	Name         string  `json:"name"`
	PreviewKey   string  `json:"preview_key"`
	Duration     float64 `json:"duration"`
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Trimmed      float64 `json:"trimmed_seconds"`
	DurationText string  `json:"duration_text"`
	StartText    string  `json:"start_text"`
	EndText      string  `json:"end_text"`
	Selected     bool    `json:"selected"`
}

func NewClipItem(clip types.Clip, selected bool) ClipItem {
	return ClipItem{
		ClipId:       clip.ID,
		Name:         clip.Name,
		PreviewKey:   clip.PreviewKey,
		Duration:     clip.Duration,
		Start:        clip.Start,
		End:          clip.End,
		Trimmed:      clip.TrimmedSeconds(),
		DurationText: util.FormatClock(clip.Duration),
		StartText:    util.FormatClock(clip.Start),
		EndText:      util.FormatClock(clip.End),
		Selected:     selected,
	}
}

type CreateSessionResData struct {
	SessionId string `json:"session_id"`
}

type SessionResData struct {
	SessionId         string     `json:"session_id"`
	SelectedClipId    string     `json:"selected_clip_id"`
	TotalDuration     float64    `json:"total_duration"`
	TotalDurationText string     `json:"total_duration_text"`
	ExportReady       bool       `json:"export_ready"`
	Clips             []ClipItem `json:"clips"`
}

type RejectedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type AddClipsResData struct {
	Added    []ClipItem     `json:"added"`
	Rejected []RejectedFile `json:"rejected"`
}

type AddClipFromURLReq struct {
	Url  string `json:"url" binding:"required"`
	Name string `json:"name"`
}

// UpdateClipReq is a partial trim-window patch. Omitted fields keep their
// current values.
type UpdateClipReq struct {
	Duration *float64 `json:"duration"`
	Start    *float64 `json:"start"`
	End      *float64 `json:"end"`
}

type MoveClipReq struct {
	Direction string `json:"direction" binding:"required"` // "up" or "down"
}

type PlayheadReq struct {
	Seconds float64 `json:"seconds"`
}

type BoundaryReq struct {
	Edge string `json:"edge" binding:"required"` // "start" or "end"
}
