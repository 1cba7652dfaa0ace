package config

import (
	"os"
	"path/filepath"
	"strings"
)

const fallbackVersion = "0.1.0"

// GetVersion returns APP_VERSION when set, otherwise the contents of the
// nearest VERSION file, otherwise the built-in fallback.
func GetVersion() string {
	if envVersion := strings.TrimSpace(os.Getenv("APP_VERSION")); envVersion != "" {
		return envVersion
	}
	return readVersionFile("VERSION", filepath.Join("..", "VERSION"))
}

func readVersionFile(paths ...string) string {
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if v := strings.TrimSpace(string(content)); v != "" {
			return v
		}
	}
	return fallbackVersion
}
