package clips

import (
	"github.com/samber/lo"

	"clipforge/internal/types"
)

// Collection is an ordered sequence of clips with unique ids. Order is
// semantically meaningful: it determines concatenation order in the export.
type Collection struct {
	clips      []types.Clip
	selectedID string
}

func NewCollection(clips []types.Clip, selectedID string) *Collection {
	return &Collection{
		clips:      append([]types.Clip(nil), clips...),
		selectedID: selectedID,
	}
}

// Clips returns the clips in order. The slice is a copy.
func (c *Collection) Clips() []types.Clip {
	return append([]types.Clip(nil), c.clips...)
}

func (c *Collection) Len() int {
	return len(c.clips)
}

func (c *Collection) SelectedID() string {
	return c.selectedID
}

func (c *Collection) Get(id string) (types.Clip, bool) {
	return lo.Find(c.clips, func(clip types.Clip) bool { return clip.ID == id })
}

// Add appends the clip. The first clip added while nothing is selected
// becomes the selection.
func (c *Collection) Add(clip types.Clip) {
	c.clips = append(c.clips, clip)
	if c.selectedID == "" {
		c.selectedID = clip.ID
	}
}

// Update applies the patch to the identified clip through the interval
// model. Unknown ids are a no-op; the return value reports whether the clip
// was found.
func (c *Collection) Update(id string, patch types.WindowPatch) bool {
	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	c.clips[idx] = ClampWindow(c.clips[idx], patch)
	return true
}

// Remove deletes the identified clip and returns it. When the removed clip
// was the selection, selection falls to the new first element (or none).
func (c *Collection) Remove(id string) (types.Clip, bool) {
	idx := c.indexOf(id)
	if idx < 0 {
		return types.Clip{}, false
	}

	removed := c.clips[idx]
	c.clips = append(c.clips[:idx], c.clips[idx+1:]...)

	if c.selectedID == id {
		if len(c.clips) > 0 {
			c.selectedID = c.clips[0].ID
		} else {
			c.selectedID = ""
		}
	}
	return removed, true
}

// Move shifts the clip one position in the given direction. Moves past a
// boundary and unknown ids are no-ops; the return value reports whether the
// order changed.
func (c *Collection) Move(id string, dir types.MoveDirection) bool {
	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}

	target := idx
	switch dir {
	case types.MoveUp:
		target = idx - 1
	case types.MoveDown:
		target = idx + 1
	default:
		return false
	}
	if target < 0 || target >= len(c.clips) {
		return false
	}

	c.clips[idx], c.clips[target] = c.clips[target], c.clips[idx]
	return true
}

// TotalDuration is the sum of every clip's trimmed length, floored at zero
// per clip.
func (c *Collection) TotalDuration() float64 {
	return lo.SumBy(c.clips, func(clip types.Clip) float64 {
		return clip.TrimmedSeconds()
	})
}

// HasValidClips reports whether the collection is exportable: non-empty and
// every clip's trimmed length meets the minimum.
func (c *Collection) HasValidClips() bool {
	if len(c.clips) == 0 {
		return false
	}
	return lo.EveryBy(c.clips, func(clip types.Clip) bool {
		return clip.End-clip.Start >= types.MinClipSeconds
	})
}

func (c *Collection) indexOf(id string) int {
	_, idx, ok := lo.FindIndexOf(c.clips, func(clip types.Clip) bool { return clip.ID == id })
	if !ok {
		return -1
	}
	return idx
}
