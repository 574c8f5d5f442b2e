package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultEnvFile = ".env"

// findEnvFile returns the path of name in startDir or the closest ancestor
// holding it. The error wraps os.ErrNotExist when no directory does.
func findEnvFile(startDir, name string) (string, error) {
	if name == "" {
		name = defaultEnvFile
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("invalid start directory %q: %w", startDir, err)
	}

	for {
		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s not found above %s: %w", name, startDir, os.ErrNotExist)
		}
		dir = parent
	}
}
