package types

// MinClipSeconds is the shortest trim window an exportable clip may have.
const MinClipSeconds = 0.5

// Clip is one user-contributed video source plus its trim window and its
// ordering position within a session. The clip owns its source media file
// and its preview handle; both are released when the clip is removed.
type Clip struct {
	ID         string  `json:"id"`
	SessionID  string  `json:"session_id"`
	Name       string  `json:"name"`
	MediaPath  string  `json:"media_path"`
	PreviewKey string  `json:"preview_key"`
	Duration   float64 `json:"duration"` // total seconds of source media; 0 when probing failed
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
}

// TrimmedSeconds is the selected portion of the clip, floored at zero.
func (c Clip) TrimmedSeconds() float64 {
	if d := c.End - c.Start; d > 0 {
		return d
	}
	return 0
}

// WindowPatch is a partial update to a clip's trim window. Nil fields are
// left untouched.
type WindowPatch struct {
	Duration *float64 `json:"duration"`
	Start    *float64 `json:"start"`
	End      *float64 `json:"end"`
}

type MoveDirection string

const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)

type BoundaryField string

const (
	BoundaryStart BoundaryField = "start"
	BoundaryEnd   BoundaryField = "end"
)
