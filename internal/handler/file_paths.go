package handler

import (
	"os"
	"path/filepath"
	"strings"

	"clipforge/internal/appdirs"
)

var appDirsResolver = appdirs.Resolve

func uploadRootCandidates() []string {
	candidates := make([]string, 0, 2)
	if dirs, err := appDirsResolver(); err == nil {
		candidates = append(candidates, appdirs.UploadRootFor(dirs))
	}
	candidates = append(candidates, "uploads")
	return uniquePaths(candidates...)
}

// resolveDownloadPath maps a requested download path onto the upload root,
// rejecting traversal and anything that escapes it.
func resolveDownloadPath(requested string) (string, bool) {
	requested = strings.TrimSpace(requested)
	requested = strings.TrimPrefix(requested, string(filepath.Separator))
	requested = strings.TrimPrefix(requested, "/")
	if hasParentTraversal(requested) {
		return "", false
	}
	requested = filepath.Clean(requested)
	if requested == "." {
		return "", false
	}
	requested = filepath.ToSlash(requested)

	alias := appdirs.UploadRootName
	relativePath := requested
	if strings.HasPrefix(requested, alias+"/") {
		relativePath = strings.TrimPrefix(requested, alias+"/")
	} else if requested == alias {
		return "", false
	}

	var fallback string
	for _, rootDir := range uploadRootCandidates() {
		candidate := filepath.Clean(filepath.Join(rootDir, filepath.FromSlash(relativePath)))
		if !isPathWithinRoot(rootDir, candidate) {
			continue
		}
		if fallback == "" {
			fallback = candidate
		}
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}

	if fallback == "" {
		return "", false
	}
	return fallback, true
}

func uniquePaths(values ...string) []string {
	seen := make(map[string]struct{}, len(values))
	paths := make([]string, 0, len(values))
	for _, value := range values {
		cleaned := strings.TrimSpace(value)
		if cleaned == "" {
			continue
		}
		cleaned = filepath.Clean(cleaned)
		if _, exists := seen[cleaned]; exists {
			continue
		}
		seen[cleaned] = struct{}{}
		paths = append(paths, cleaned)
	}
	return paths
}

func isPathWithinRoot(root, candidate string) bool {
	root = filepath.Clean(root)
	candidate = filepath.Clean(candidate)

	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func hasParentTraversal(path string) bool {
	normalized := strings.ReplaceAll(path, "\\", "/")
	parts := strings.Split(normalized, "/")
	for _, part := range parts {
		if part == ".." {
			return true
		}
	}
	return false
}
