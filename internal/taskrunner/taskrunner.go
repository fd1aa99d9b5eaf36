package taskrunner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"clipforge/internal/service"
	"clipforge/log"
)

const (
	defaultQueueSize   = 64
	defaultConcurrency = 1
)

var (
	ErrRunnerStopped = errors.New("task runner stopped")
	ErrQueueFull     = errors.New("task queue is full")
)

// Config controls in-process task runner behavior.
type Config struct {
	QueueSize   int
	Concurrency int
}

// DefaultConfig returns a single-machine default: exports are CPU-heavy, so
// one at a time unless configured otherwise.
func DefaultConfig() Config {
	return Config{
		QueueSize:   defaultQueueSize,
		Concurrency: defaultConcurrency,
	}
}

// ExportTaskPayload contains export job enqueue data.
type ExportTaskPayload struct {
	JobID     string `json:"job_id"`
	SessionID string `json:"session_id"`
}

// Runner executes queued export jobs with in-memory workers.
type Runner struct {
	service *service.Service
	config  Config

	queue  chan ExportTaskPayload
	ctx    context.Context
	cancel context.CancelFunc

	workerWg sync.WaitGroup
	closed   atomic.Bool
}

// New creates and starts a task runner.
func New(svc *service.Service, cfg Config) *Runner {
	if svc == nil {
		svc = service.NewService()
	}

	cfg = normalizeConfig(cfg)
	ctx, cancel := context.WithCancel(context.Background())

	runner := &Runner{
		service: svc,
		config:  cfg,
		queue:   make(chan ExportTaskPayload, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	for i := 0; i < cfg.Concurrency; i++ {
		runner.workerWg.Add(1)
		go runner.worker(i + 1)
	}

	return runner
}

func normalizeConfig(cfg Config) Config {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return cfg
}

// SubmitExportTask queues an export job registered via StartExport.
func (r *Runner) SubmitExportTask(payload ExportTaskPayload) error {
	if payload.JobID == "" {
		return errors.New("export task job id is required")
	}
	if r.closed.Load() {
		return ErrRunnerStopped
	}

	select {
	case <-r.ctx.Done():
		return ErrRunnerStopped
	case r.queue <- payload:
		log.GetLogger().Info("[TaskRunner] export task submitted",
			zap.String("job_id", payload.JobID),
			zap.String("session_id", payload.SessionID))
		return nil
	default:
		return ErrQueueFull
	}
}

func (r *Runner) worker(workerID int) {
	defer r.workerWg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		select {
		case <-r.ctx.Done():
			return
		case task := <-r.queue:
			r.processTask(workerID, task)
		}
	}
}

func (r *Runner) processTask(workerID int, task ExportTaskPayload) {
	if err := r.service.RunExport(r.ctx, task.JobID); err != nil {
		log.GetLogger().Error("[TaskRunner] export task failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", task.JobID),
			zap.String("session_id", task.SessionID),
			zap.Error(err))
		return
	}

	log.GetLogger().Info("[TaskRunner] export task completed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", task.JobID),
		zap.String("session_id", task.SessionID))
}

// Close stops workers and rejects new tasks.
func (r *Runner) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}

	r.cancel()
	r.workerWg.Wait()
}

// Pending returns the number of queued tasks waiting for workers.
func (r *Runner) Pending() int {
	return len(r.queue)
}
