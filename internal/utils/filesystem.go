package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// ProjectDirName is the per-project metadata directory.
const ProjectDirName = ".tynker"

// FindProjectRoot walks up from start to the nearest directory containing
// .tynker. It returns "" when none is found before the filesystem root.
func FindProjectRoot(start string) (string, error) {
	currentDir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", start, err)
	}

	for {
		fileInfo, err := os.Stat(filepath.Join(currentDir, ProjectDirName))
		if err == nil {
			if fileInfo.IsDir() {
				return currentDir, nil
			}
		} else if !os.IsNotExist(err) {
			// Permission problems and the like.
			return "", fmt.Errorf("error checking for %s directory at %s: %w", ProjectDirName, currentDir, err)
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", nil
		}
		currentDir = parentDir
	}
}
