package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"clipforge/config"
	"clipforge/internal/appdirs"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
)

// The loaded engine is a process-wide singleton: none until first demanded,
// then loading, then ready or failed. A failed load clears the instance so
// the next Ensure retries; concurrent callers await the same in-flight load.
var (
	mu       sync.Mutex
	instance *FFmpeg
	ready    bool

	loadGroup singleflight.Group
)

// Swappable for tests.
var (
	appDirsResolver = appdirs.Resolve
	lookPath        = exec.LookPath
	verifyBinary    = func(ctx context.Context, path string) error {
		return exec.CommandContext(ctx, path, "-version").Run()
	}
)

// Ensure returns the shared ready engine, loading it on first demand.
func Ensure(ctx context.Context) (*FFmpeg, error) {
	mu.Lock()
	if instance != nil && ready {
		inst := instance
		mu.Unlock()
		return inst, nil
	}
	mu.Unlock()

	v, err, _ := loadGroup.Do("load", func() (any, error) {
		inst, err := load(ctx)
		if err != nil {
			return nil, err
		}

		mu.Lock()
		instance = inst
		ready = true
		mu.Unlock()
		return inst, nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeEngineLoad, apperrors.ErrEngineLoad.Message, err)
	}
	return v.(*FFmpeg), nil
}

func load(ctx context.Context) (*FFmpeg, error) {
	ffmpegPath, err := resolveBinary(ctx, config.Conf.Engine.FfmpegPath, "ffmpeg")
	if err != nil {
		return nil, err
	}
	ffprobePath, err := resolveBinary(ctx, config.Conf.Engine.FfprobePath, "ffprobe")
	if err != nil {
		return nil, err
	}

	dirs, err := appDirsResolver()
	if err != nil {
		return nil, err
	}
	workspace := appdirs.WorkspaceRootFor(dirs)
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return nil, fmt.Errorf("create engine workspace: %w", err)
	}

	log.GetLogger().Info("media engine loaded",
		zap.String("ffmpeg", ffmpegPath),
		zap.String("ffprobe", ffprobePath),
		zap.String("workspace", workspace))
	return newFFmpeg(ffmpegPath, ffprobePath, workspace), nil
}

func resolveBinary(ctx context.Context, configured, fallback string) (string, error) {
	candidate := configured
	if candidate == "" {
		candidate = fallback
	}

	resolved, err := lookPath(candidate)
	if err != nil {
		return "", fmt.Errorf("locate %s: %w", fallback, err)
	}
	if err := verifyBinary(ctx, resolved); err != nil {
		return "", fmt.Errorf("verify %s: %w", fallback, err)
	}
	return resolved, nil
}

// reset clears the singleton. Test helper.
func reset() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	ready = false
}
