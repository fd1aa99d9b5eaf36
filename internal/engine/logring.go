package engine

import "sync"

// DefaultLogTailLines is how many engine log lines are retained for display.
const DefaultLogTailLines = 12

// LogRing is a bounded ring of the most recent log lines. Appends beyond
// capacity drop the oldest entries.
type LogRing struct {
	mu       sync.Mutex
	capacity int
	lines    []string
}

func NewLogRing(capacity int) *LogRing {
	if capacity <= 0 {
		capacity = DefaultLogTailLines
	}
	return &LogRing{capacity: capacity}
}

func (r *LogRing) Append(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
	if len(r.lines) > r.capacity {
		r.lines = r.lines[len(r.lines)-r.capacity:]
	}
}

// Lines returns a snapshot of the retained tail, oldest first.
func (r *LogRing) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

func (r *LogRing) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = nil
}
