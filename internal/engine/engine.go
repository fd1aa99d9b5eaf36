// Package engine wraps the ffmpeg/ffprobe binaries behind the media engine
// surface the rest of the application programs against: write a file into
// working storage, execute a command-line style operation, read a file back.
// Each operation carries its own observer for log and progress events.
package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"clipforge/internal/types"
	"clipforge/log"
)

// FFmpeg is the process-backed implementation of types.MediaEngine. Its
// working storage is one shared directory; callers namespace file names per
// run because nothing sandboxes them per call.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	workspace   string

	// One ffmpeg process at a time. Exports are CPU-bound and the shared
	// workspace gives no per-op isolation.
	execMu sync.Mutex
}

var _ types.MediaEngine = (*FFmpeg)(nil)

func newFFmpeg(ffmpegPath, ffprobePath, workspace string) *FFmpeg {
	return &FFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		workspace:   workspace,
	}
}

func (e *FFmpeg) Workspace() string {
	return e.workspace
}

// WriteFile materializes bytes into working storage under name.
func (e *FFmpeg) WriteFile(name string, data []byte) error {
	path, err := e.storagePath(name)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile reads a working-storage file back out.
func (e *FFmpeg) ReadFile(name string) ([]byte, error) {
	path, err := e.storagePath(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Exec runs one ffmpeg operation inside the working storage. Stderr lines
// feed the op's observer; -progress output is scaled by op.ExpectedSeconds
// into a 0..1 fraction. Operations are serialized.
func (e *FFmpeg) Exec(ctx context.Context, op types.EngineOp) error {
	if len(op.Args) == 0 {
		return errors.New("engine op has no arguments")
	}

	e.execMu.Lock()
	defer e.execMu.Unlock()

	args := append([]string{"-hide_banner", "-nostats", "-progress", "pipe:1", "-y"}, op.Args...)
	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	cmd.Dir = e.workspace

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("engine stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("engine stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start engine op: %w", err)
	}

	var wg sync.WaitGroup
	var lastStderr string

	wg.Add(2)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			lastStderr = line
			if op.Observer != nil {
				op.Observer.OnEngineLog(line)
			}
		}
	}()
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			line := scanner.Text()
			if op.Observer == nil || op.ExpectedSeconds <= 0 {
				continue
			}
			if seconds, ok := parseOutTimeSeconds(line); ok {
				op.Observer.OnEngineProgress(math.Min(1, seconds/op.ExpectedSeconds))
				continue
			}
			if _, terminal := isProgressTerminator(line); terminal {
				op.Observer.OnEngineProgress(1)
			}
		}
	}()

	wg.Wait()
	if err := cmd.Wait(); err != nil {
		log.GetLogger().Error("engine op failed",
			zap.Strings("args", op.Args),
			zap.String("stderr", lastStderr),
			zap.Error(err))
		return fmt.Errorf("engine op failed: %w", err)
	}
	return nil
}

// ProbeDuration reads the container duration of a media file, in seconds.
func (e *FFmpeg) ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, e.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}

	raw := strings.TrimSpace(string(out))
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", raw, err)
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0, fmt.Errorf("indeterminate duration %q", raw)
	}
	return seconds, nil
}

// storagePath confines a working-storage name to the workspace. Names are
// flat: the shared namespace has no subdirectories.
func (e *FFmpeg) storagePath(name string) (string, error) {
	cleaned := strings.TrimSpace(name)
	if cleaned == "" || cleaned != filepath.Base(cleaned) {
		return "", fmt.Errorf("invalid working-storage name: %q", name)
	}
	return filepath.Join(e.workspace, cleaned), nil
}
