package service

import (
	"fmt"
	"path/filepath"
	"strings"

	"clipforge/internal/appdirs"
)

var appDirsResolver = appdirs.Resolve

func resolveUploadRoot() (string, error) {
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	return appdirs.UploadRootFor(dirs), nil
}

// resolveDownloadPath maps an absolute artifact path to the relative form
// served by the file endpoint, rejecting anything outside the upload root.
func resolveDownloadPath(localPath string) (string, error) {
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}

	uploadRoot := appdirs.UploadRootFor(dirs)
	cleanedLocalPath := filepath.Clean(localPath)
	relPath, err := filepath.Rel(uploadRoot, cleanedLocalPath)
	if err != nil {
		return "", err
	}
	if relPath == "." || relPath == "" {
		return "", fmt.Errorf("artifact path %q is not a file path", localPath)
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("artifact path %q is outside upload root %q", localPath, uploadRoot)
	}
	return filepath.ToSlash(filepath.Join(appdirs.UploadRootName, relPath)), nil
}
