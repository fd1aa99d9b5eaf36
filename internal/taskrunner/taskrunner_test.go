package taskrunner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipforge/internal/service"
)

func TestSubmitRequiresJobID(t *testing.T) {
	runner := New(&service.Service{}, DefaultConfig())
	defer runner.Close()

	err := runner.SubmitExportTask(ExportTaskPayload{SessionID: "s1"})
	assert.Error(t, err)
}

func TestSubmittedTaskIsDrained(t *testing.T) {
	runner := New(&service.Service{}, Config{QueueSize: 4, Concurrency: 1})
	defer runner.Close()

	// An unknown job id fails inside the worker; submission itself succeeds
	// and the queue drains.
	require.NoError(t, runner.SubmitExportTask(ExportTaskPayload{JobID: "ghost", SessionID: "s1"}))

	deadline := time.After(2 * time.Second)
	for runner.Pending() > 0 {
		select {
		case <-deadline:
			t.Fatal("queue never drained")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestClosedRunnerRejectsTasks(t *testing.T) {
	runner := New(&service.Service{}, DefaultConfig())
	runner.Close()
	runner.Close() // second close is a no-op

	err := runner.SubmitExportTask(ExportTaskPayload{JobID: "j1"})
	assert.ErrorIs(t, err, ErrRunnerStopped)
}

func TestNormalizeConfigDefaults(t *testing.T) {
	cfg := normalizeConfig(Config{})
	assert.Equal(t, defaultQueueSize, cfg.QueueSize)
	assert.Equal(t, defaultConcurrency, cfg.Concurrency)
}
