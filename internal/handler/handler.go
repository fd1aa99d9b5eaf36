package handler

import (
	"clipforge/internal/queue"
	"clipforge/internal/service"
	"clipforge/internal/taskrunner"
)

type Handler struct {
	Service *service.Service
	Runner  *taskrunner.Runner
	Queue   *queue.Queue
}

// NewHandler wires the handler with the shared service and the export
// executors. Queue may be nil when the in-process runner is used.
func NewHandler(svc *service.Service, runner *taskrunner.Runner, q *queue.Queue) Handler {
	return Handler{
		Service: svc,
		Runner:  runner,
		Queue:   q,
	}
}
