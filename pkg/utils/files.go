package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// ReadSource loads a program file and returns its text with the resolved
// absolute path.
func ReadSource(relPath string) (src string, fullPath string, err error) {
	fullPath, _, err = GetPathInfo(relPath)
	if err != nil {
		return "", "", fmt.Errorf("resolve %s: %w", relPath, err)
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		return "", fullPath, fmt.Errorf("read %s: %w", relPath, err)
	}
	if info.IsDir() {
		return "", fullPath, fmt.Errorf("read %s: is a directory", relPath)
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fullPath, fmt.Errorf("read %s: %w", relPath, err)
	}
	return string(data), fullPath, nil
}
