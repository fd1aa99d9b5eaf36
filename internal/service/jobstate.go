package service

import (
	"math"
	"strings"
	"sync"

	"clipforge/internal/dto"
	"clipforge/internal/engine"
	"clipforge/internal/types"
	apperrors "clipforge/pkg/errors"
)

// jobState is the live view of one export run: stage, combined progress and
// the tail of the engine log. The overall fraction is step/total plus the
// running operation's own fraction scaled into one step's worth.
type jobState struct {
	jobId     string
	sessionId string

	mu         sync.Mutex
	stage      types.ExportStage
	step       int
	total      int
	sub        float64
	failReason string
	resultKey  string
	outputPath string
	ring       *engine.LogRing

	subscribers map[chan dto.ExportEvent]struct{}
}

func newJobState(jobId, sessionId string, total int) *jobState {
	return &jobState{
		jobId:       jobId,
		sessionId:   sessionId,
		stage:       types.ExportStagePreparing,
		total:       total,
		ring:        engine.NewLogRing(engine.DefaultLogTailLines),
		subscribers: make(map[chan dto.ExportEvent]struct{}),
	}
}

func (j *jobState) fractionLocked() float64 {
	total := math.Max(float64(j.total), 1)
	return math.Min(1, float64(j.step)/total+j.sub/total)
}

func (j *jobState) setStage(stage types.ExportStage) {
	j.mu.Lock()
	j.stage = stage
	j.mu.Unlock()
}

// advance completes one pipeline step and resets the sub-operation fraction.
func (j *jobState) advance(step int) {
	j.mu.Lock()
	j.step = step
	j.sub = 0
	fraction := j.fractionLocked()
	j.mu.Unlock()
	j.broadcast(dto.ExportEvent{Type: "progress", Fraction: fraction})
}

// setSub records the running operation's own 0..1 fraction. Events arriving
// after the job reached a terminal stage are dropped.
func (j *jobState) setSub(fraction float64) {
	j.mu.Lock()
	if j.stage.IsTerminal() {
		j.mu.Unlock()
		return
	}
	j.sub = math.Min(math.Max(fraction, 0), 1)
	combined := j.fractionLocked()
	j.mu.Unlock()
	j.broadcast(dto.ExportEvent{Type: "progress", Fraction: combined})
}

func (j *jobState) appendLog(line string) {
	j.mu.Lock()
	if j.stage.IsTerminal() {
		j.mu.Unlock()
		return
	}
	j.ring.Append(line)
	j.mu.Unlock()
	j.broadcast(dto.ExportEvent{Type: "log", Line: line})
}

func (j *jobState) succeed(resultKey, outputPath string) {
	j.mu.Lock()
	j.stage = types.ExportStageSucceeded
	j.step = j.total
	j.sub = 0
	j.resultKey = resultKey
	j.outputPath = outputPath
	j.mu.Unlock()
	j.broadcast(dto.ExportEvent{Type: "progress", Fraction: 1})
	j.broadcast(dto.ExportEvent{Type: "done", Message: resultKey})
}

func (j *jobState) fail(reason string) {
	j.mu.Lock()
	j.stage = types.ExportStageFailed
	j.failReason = reason
	j.mu.Unlock()
	j.broadcast(dto.ExportEvent{Type: "failed", Message: reason})
}

// snapshot renders the current state for polling clients.
func (j *jobState) snapshot() dto.ExportStatusResData {
	j.mu.Lock()
	defer j.mu.Unlock()

	status := types.ExportJobStatusRunning
	switch j.stage {
	case types.ExportStageSucceeded:
		status = types.ExportJobStatusSuccess
	case types.ExportStageFailed:
		status = types.ExportJobStatusFailed
	}

	return dto.ExportStatusResData{
		JobId:          j.jobId,
		SessionId:      j.sessionId,
		Status:         status,
		Stage:          j.stage.String(),
		ProcessPercent: uint8(j.fractionLocked() * 100),
		Step:           j.step,
		Total:          j.total,
		LogTail:        j.ring.Lines(),
		FailReason:     j.failReason,
		ResultKey:      j.resultKey,
	}
}

func (j *jobState) record() types.ExportJob {
	snap := j.snapshot()
	return types.ExportJob{
		JobId:      snap.JobId,
		SessionId:  snap.SessionId,
		Status:     snap.Status,
		Stage:      snap.Stage,
		ProcessPct: snap.ProcessPercent,
		Step:       snap.Step,
		Total:      snap.Total,
		LogTail:    strings.Join(snap.LogTail, "\n"),
		FailReason: snap.FailReason,
		OutputPath: j.outputPath,
	}
}

func (j *jobState) subscribe() (chan dto.ExportEvent, func()) {
	ch := make(chan dto.ExportEvent, 64)
	j.mu.Lock()
	j.subscribers[ch] = struct{}{}
	j.mu.Unlock()

	cancel := func() {
		j.mu.Lock()
		delete(j.subscribers, ch)
		j.mu.Unlock()
	}
	return ch, cancel
}

// broadcast never blocks: a subscriber that stops draining loses events.
func (j *jobState) broadcast(event dto.ExportEvent) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for ch := range j.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// exportState tracks live jobs and enforces one running export per session.
type exportState struct {
	mu         sync.Mutex
	jobs       map[string]*jobState
	busy       map[string]string // session id -> running job id
	lastResult map[string]string // session id -> latest result blob key
}

func newExportState() *exportState {
	return &exportState{
		jobs:       make(map[string]*jobState),
		busy:       make(map[string]string),
		lastResult: make(map[string]string),
	}
}

func (e *exportState) begin(sessionId, jobId string, total int) (*jobState, error) {
	if e == nil {
		return nil, apperrors.New(apperrors.CodeUnknown, "导出状态未初始化 Export state not initialized")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if running, ok := e.busy[sessionId]; ok {
		return nil, apperrors.WrapWithDetail(apperrors.CodeExportBusy, apperrors.ErrExportBusy.Message,
			"job "+running, nil)
	}

	st := newJobState(jobId, sessionId, total)
	e.busy[sessionId] = jobId
	e.jobs[jobId] = st
	return st, nil
}

func (e *exportState) end(sessionId, jobId string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy[sessionId] == jobId {
		delete(e.busy, sessionId)
	}
}

func (e *exportState) get(jobId string) (*jobState, bool) {
	if e == nil {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.jobs[jobId]
	return st, ok
}

// swapResult records the session's newest result key and returns the key it
// replaces, if any.
func (e *exportState) swapResult(sessionId, key string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	previous, had := e.lastResult[sessionId]
	e.lastResult[sessionId] = key
	return previous, had
}
