package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOutTimeSeconds(t *testing.T) {
	testCases := []struct {
		name string
		line string
		want float64
		ok   bool
	}{
		{name: "clock form", line: "out_time=00:01:30.250000", want: 90.25, ok: true},
		{name: "microseconds mislabeled ms", line: "out_time_ms=90250000", want: 90.25, ok: true},
		{name: "microseconds", line: "out_time_us=500000", want: 0.5, ok: true},
		{name: "leading space", line: "  out_time=00:00:10.000000", want: 10, ok: true},
		{name: "other key", line: "frame=42", ok: false},
		{name: "negative counter", line: "out_time_ms=-1", ok: false},
		{name: "malformed clock", line: "out_time=1:2", ok: false},
		{name: "no equals", line: "garbage", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parseOutTimeSeconds(tc.line)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.InDelta(t, tc.want, got, 1e-9)
			}
		})
	}
}

func TestIsProgressTerminator(t *testing.T) {
	done, terminal := isProgressTerminator("progress=continue")
	assert.True(t, done)
	assert.False(t, terminal)

	done, terminal = isProgressTerminator("progress=end")
	assert.True(t, done)
	assert.True(t, terminal)

	done, _ = isProgressTerminator("out_time=00:00:01.000000")
	assert.False(t, done)
}

func TestLogRingDropsOldest(t *testing.T) {
	ring := NewLogRing(3)
	for _, line := range []string{"a", "b", "c", "d", "e"} {
		ring.Append(line)
	}
	assert.Equal(t, []string{"c", "d", "e"}, ring.Lines())

	ring.Reset()
	assert.Empty(t, ring.Lines())
}

func TestLogRingDefaultCapacity(t *testing.T) {
	ring := NewLogRing(0)
	for i := 0; i < 20; i++ {
		ring.Append("line")
	}
	assert.Len(t, ring.Lines(), DefaultLogTailLines)
}
