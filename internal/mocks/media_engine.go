// Package mocks holds hand-written testify mocks for the interfaces the
// service layer depends on.
package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"clipforge/internal/types"
)

// MediaEngine is a testify mock of types.MediaEngine.
type MediaEngine struct {
	mock.Mock

	mu      sync.Mutex
	current types.EngineObserver
}

var _ types.MediaEngine = (*MediaEngine)(nil)

func (m *MediaEngine) WriteFile(name string, data []byte) error {
	args := m.Called(name, data)
	return args.Error(0)
}

func (m *MediaEngine) ReadFile(name string) ([]byte, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MediaEngine) Exec(ctx context.Context, op types.EngineOp) error {
	m.mu.Lock()
	m.current = op.Observer
	m.mu.Unlock()

	args := m.Called(ctx, op)
	return args.Error(0)
}

func (m *MediaEngine) ProbeDuration(ctx context.Context, path string) (float64, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(float64), args.Error(1)
}

// EmitLog pushes a log line to the observer of the op currently executing,
// simulating engine output during an Exec expectation's Run hook.
func (m *MediaEngine) EmitLog(line string) {
	if obs := m.currentObserver(); obs != nil {
		obs.OnEngineLog(line)
	}
}

// EmitProgress pushes a progress fraction to the observer of the op
// currently executing.
func (m *MediaEngine) EmitProgress(fraction float64) {
	if obs := m.currentObserver(); obs != nil {
		obs.OnEngineProgress(fraction)
	}
}

func (m *MediaEngine) currentObserver() types.EngineObserver {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}
