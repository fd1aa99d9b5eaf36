package appdirs

import (
	"path/filepath"
	"strings"
)

const (
	UploadRootName    = "uploads"
	WorkspaceRootName = "workspace"
	dbFileName        = "clipforge.db"
)

// UploadRootFor is where clip sources and export results live, keyed by the
// blob store.
func UploadRootFor(paths Paths) string {
	return filepath.Join(normalizeOutputDir(paths.OutputDir), UploadRootName)
}

// WorkspaceRootFor is the media engine's shared working storage. It is a
// single namespace; callers prefix file names per run.
func WorkspaceRootFor(paths Paths) string {
	return filepath.Join(normalizeCacheDir(paths.CacheDir), WorkspaceRootName)
}

func DBPathFor(paths Paths) string {
	return filepath.Join(normalizeCacheDir(paths.CacheDir), dbFileName)
}

func normalizeOutputDir(outputDir string) string {
	cleaned := strings.TrimSpace(outputDir)
	if cleaned == "" {
		return "."
	}
	return filepath.Clean(cleaned)
}

func normalizeCacheDir(cacheDir string) string {
	cleaned := strings.TrimSpace(cacheDir)
	if cleaned == "" {
		return "cache"
	}
	return filepath.Clean(cleaned)
}
