package utils

import (
	"path/filepath"
)

// GetProjectName returns the sanitized directory name of projectRoot.
func GetProjectName(projectRoot string) string {
	if projectRoot == "" {
		return ""
	}
	return SanitizeName(filepath.Base(projectRoot))
}
