package playhead

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Position("clip-1")
	assert.False(t, ok, "unreported clip has no position")

	r.Report("clip-1", 12.5)
	pos, ok := r.Position("clip-1")
	assert.True(t, ok)
	assert.Equal(t, 12.5, pos)

	// Later reports overwrite.
	r.Report("clip-1", 30)
	pos, _ = r.Position("clip-1")
	assert.Equal(t, 30.0, pos)

	r.Clear("clip-1")
	_, ok = r.Position("clip-1")
	assert.False(t, ok)
}
