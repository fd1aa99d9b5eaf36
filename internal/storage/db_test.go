package storage

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"clipforge/internal/appdirs"
	"clipforge/internal/types"
)

func TestResolveDBPathUsesCacheDir(t *testing.T) {
	originalResolver := appDirsResolver
	t.Cleanup(func() {
		appDirsResolver = originalResolver
	})

	tempDir := t.TempDir()
	cacheDir := filepath.Join(tempDir, "cache-root")
	appDirsResolver = func() (appdirs.Paths, error) {
		return appdirs.Paths{
			OutputDir: filepath.Join(tempDir, "output-root"),
			CacheDir:  cacheDir,
		}, nil
	}

	got, err := resolveDBPath()
	if err != nil {
		t.Fatalf("resolveDBPath() returned error: %v", err)
	}

	want := filepath.Join(cacheDir, "clipforge.db")
	if got != want {
		t.Fatalf("resolveDBPath() = %q, want %q", got, want)
	}
}

func openTestDB(t *testing.T) {
	t.Helper()

	original := DB
	t.Cleanup(func() {
		DB = original
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
	DB = db
}

func TestClipRoundTripAndReorder(t *testing.T) {
	openTestDB(t)

	clips := []types.Clip{
		{ID: "c1", SessionID: "s1", Name: "one.mp4", Duration: 10, Start: 0, End: 10},
		{ID: "c2", SessionID: "s1", Name: "two.mp4", Duration: 20, Start: 2, End: 18},
	}
	if err := ReplaceSessionClips("s1", clips); err != nil {
		t.Fatalf("ReplaceSessionClips: %v", err)
	}

	// Reorder and rewrite: positions must follow the new slice order.
	if err := ReplaceSessionClips("s1", []types.Clip{clips[1], clips[0]}); err != nil {
		t.Fatalf("ReplaceSessionClips reorder: %v", err)
	}

	rows, err := ListClips("s1")
	if err != nil {
		t.Fatalf("ListClips: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ListClips returned %d rows, want 2", len(rows))
	}
	if rows[0].ClipId != "c2" || rows[1].ClipId != "c1" {
		t.Fatalf("unexpected order: %s, %s", rows[0].ClipId, rows[1].ClipId)
	}

	restored := types.ClipFromRecord(rows[0])
	if restored.ID != "c2" || restored.End != 18 {
		t.Fatalf("ClipFromRecord lost data: %+v", restored)
	}
}

func TestMarkStaleJobsFailsRunning(t *testing.T) {
	openTestDB(t)

	jobs := []*types.ExportJob{
		{JobId: "j1", SessionId: "s1", Status: types.ExportJobStatusRunning},
		{JobId: "j2", SessionId: "s1", Status: types.ExportJobStatusSuccess},
	}
	for _, job := range jobs {
		if err := SaveExportJob(job); err != nil {
			t.Fatalf("SaveExportJob(%s): %v", job.JobId, err)
		}
	}

	affected, err := MarkStaleJobs()
	if err != nil {
		t.Fatalf("MarkStaleJobs: %v", err)
	}
	if affected != 1 {
		t.Fatalf("MarkStaleJobs affected %d rows, want 1", affected)
	}

	stale, err := GetExportJob("j1")
	if err != nil {
		t.Fatalf("GetExportJob: %v", err)
	}
	if stale.Status != types.ExportJobStatusFailed || stale.FailReason == "" {
		t.Fatalf("stale job not failed: %+v", stale)
	}

	done, err := GetExportJob("j2")
	if err != nil {
		t.Fatalf("GetExportJob: %v", err)
	}
	if done.Status != types.ExportJobStatusSuccess {
		t.Fatalf("finished job touched: %+v", done)
	}
}

func TestGuardsWithoutDB(t *testing.T) {
	original := DB
	DB = nil
	t.Cleanup(func() {
		DB = original
	})

	if err := SaveClip(&types.ClipRecord{ClipId: "x"}); err == nil {
		t.Fatal("SaveClip should fail without a database")
	}
	if _, err := GetExportJob("x"); err == nil {
		t.Fatal("GetExportJob should fail without a database")
	}
}
