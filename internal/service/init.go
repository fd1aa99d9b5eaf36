package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"clipforge/config"
	"clipforge/internal/blob"
	"clipforge/internal/engine"
	"clipforge/internal/playhead"
	"clipforge/internal/types"
	"clipforge/log"
)

type Service struct {
	// EnsureEngine loads (or returns) the shared media engine. Swapped for a
	// mock in tests.
	EnsureEngine func(ctx context.Context) (types.MediaEngine, error)

	Blobs      *blob.Store
	Playheads  *playhead.Registry
	HttpClient *resty.Client

	exportsOnce sync.Once
	exports     *exportState
}

// exportState lazily initializes the live-job registry so a Service built
// from struct literal fields (as tests do) still works.
func (s *Service) exportState() *exportState {
	s.exportsOnce.Do(func() {
		if s.exports == nil {
			s.exports = newExportState()
		}
	})
	return s.exports
}

func NewService() *Service {
	uploadRoot, err := resolveUploadRoot()
	if err != nil {
		log.GetLogger().Error("无法解析上传目录 failed to resolve upload root", zap.Error(err))
		return nil
	}

	blobs, err := blob.NewStore(uploadRoot)
	if err != nil {
		log.GetLogger().Error("无法初始化媒体存储 failed to init blob store", zap.Error(err))
		return nil
	}

	httpClient := resty.New().
		SetTimeout(10 * time.Minute).
		SetRetryCount(2)
	if config.Conf.App.Proxy != "" {
		httpClient.SetProxy(config.Conf.App.Proxy)
	}

	return &Service{
		EnsureEngine: func(ctx context.Context) (types.MediaEngine, error) {
			return engine.Ensure(ctx)
		},
		Blobs:      blobs,
		Playheads:  playhead.NewRegistry(),
		HttpClient: httpClient,
	}
}
