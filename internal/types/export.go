package types

import "context"

type ExportStage uint8

const (
	ExportStageIdle ExportStage = iota
	ExportStagePreparing
	ExportStageTrimming
	ExportStageConcatenating
	ExportStageSucceeded
	ExportStageFailed
)

func (s ExportStage) String() string {
	switch s {
	case ExportStageIdle:
		return "idle"
	case ExportStagePreparing:
		return "preparing"
	case ExportStageTrimming:
		return "trimming"
	case ExportStageConcatenating:
		return "concatenating"
	case ExportStageSucceeded:
		return "succeeded"
	case ExportStageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s ExportStage) IsTerminal() bool {
	return s == ExportStageSucceeded || s == ExportStageFailed
}

// EngineOp is one command-line style operation executed by the media engine.
// ExpectedSeconds scales the engine's time-based progress reports into a
// 0..1 fraction for this operation; 0 disables sub-operation progress.
// Observer, when set, receives the operation's own log and progress events;
// events never leak to another operation's observer.
type EngineOp struct {
	Args            []string
	ExpectedSeconds float64
	Observer        EngineObserver
}

// EngineObserver receives one operation's log and progress event stream.
// Events are delivered in emission order. Progress fractions cover only the
// operation currently executing, never the whole multi-step job.
type EngineObserver interface {
	OnEngineLog(line string)
	OnEngineProgress(fraction float64)
}

// MediaEngine is the black-box transcoding engine surface. Its working
// storage is a single shared namespace; callers prefix names per run.
// Operations execute one at a time.
type MediaEngine interface {
	WriteFile(name string, data []byte) error
	ReadFile(name string) ([]byte, error)
	Exec(ctx context.Context, op EngineOp) error
	ProbeDuration(ctx context.Context, path string) (float64, error)
}
