package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"clipforge/internal/appdirs"
	"clipforge/internal/blob"
	"clipforge/internal/playhead"
	"clipforge/internal/storage"
	"clipforge/internal/types"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	original := storage.DB
	t.Cleanup(func() {
		storage.DB = original
	})

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&types.SessionRecord{}, &types.ClipRecord{}, &types.ExportJob{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	storage.DB = db
}

// newTestService wires a Service around a fake engine, a temp blob store and
// a fresh database. The upload root doubles as the download root so result
// links resolve.
func newTestService(t *testing.T, eng types.MediaEngine) *Service {
	t.Helper()

	setupTestDB(t)

	tempDir := t.TempDir()
	uploadRoot := filepath.Join(tempDir, appdirs.UploadRootName)

	originalResolver := appDirsResolver
	appDirsResolver = func() (appdirs.Paths, error) {
		return appdirs.Paths{OutputDir: tempDir, CacheDir: filepath.Join(tempDir, "cache")}, nil
	}
	t.Cleanup(func() {
		appDirsResolver = originalResolver
	})

	blobs, err := blob.NewStore(uploadRoot)
	if err != nil {
		t.Fatalf("create blob store: %v", err)
	}

	return &Service{
		EnsureEngine: func(ctx context.Context) (types.MediaEngine, error) {
			return eng, nil
		},
		Blobs:      blobs,
		Playheads:  playhead.NewRegistry(),
		HttpClient: resty.New(),
	}
}

func seedSession(t *testing.T, sessionId string, seeded []types.Clip) {
	t.Helper()

	selected := ""
	if len(seeded) > 0 {
		selected = seeded[0].ID
	}
	if err := storage.SaveSession(&types.SessionRecord{SessionId: sessionId, SelectedClipId: selected}); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	if err := storage.ReplaceSessionClips(sessionId, seeded); err != nil {
		t.Fatalf("seed clips: %v", err)
	}
}
