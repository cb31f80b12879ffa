package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SaveDownload writes a fetched export payload to a file and returns the
// final path. When the server did not suggest a filename, one is
// generated from the export kind, the date, and a short unique suffix so
// repeated exports never overwrite each other.
func SaveDownload(dir string, suggested, kind string, data []byte) (string, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			dir = "."
		} else {
			dir = filepath.Join(home, "Downloads")
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	name := sanitizeFilename(suggested)
	if name == "" {
		name = DownloadFilename(kind)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write download: %w", err)
	}
	return path, nil
}

// DownloadFilename builds a fallback export filename.
func DownloadFilename(kind string) string {
	if kind == "" {
		kind = "export"
	}
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%s-%s-%s.csv", kind, time.Now().Format("2006-01-02"), suffix)
}

// sanitizeFilename strips path separators from a server-suggested name so
// it cannot escape the download directory.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}
