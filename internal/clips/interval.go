package clips

import (
	"math"

	"clipforge/internal/types"
)

// ClampWindow merges patch into clip and corrects the trim window so the
// invariants hold: 0 <= start, end <= duration, and end-start >=
// types.MinClipSeconds whenever the clip is long enough to allow it.
// Invalid input is corrected, never rejected.
func ClampWindow(clip types.Clip, patch types.WindowPatch) types.Clip {
	if patch.Duration != nil {
		clip.Duration = *patch.Duration
	}
	if patch.Start != nil {
		clip.Start = *patch.Start
	}
	if patch.End != nil {
		clip.End = *patch.End
	}

	if clip.Start < 0 {
		clip.Start = 0
	}
	if clip.End > clip.Duration {
		clip.End = clip.Duration
	}

	// A clip at or below the minimum length cannot have a window shorter
	// than the whole clip.
	if clip.Duration <= types.MinClipSeconds {
		clip.Start = 0
		clip.End = clip.Duration
		return clip
	}

	if clip.End-clip.Start < types.MinClipSeconds {
		// Prefer extending the end so edits near the tail do not silently
		// move the start backward unless extension is impossible.
		if clip.Start+types.MinClipSeconds <= clip.Duration {
			clip.End = clip.Start + types.MinClipSeconds
		} else {
			clip.Start = math.Max(0, clip.Duration-types.MinClipSeconds)
			clip.End = clip.Duration
		}
	}
	return clip
}
