package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sadopc/pathtrack/internal/curriculum"
	"github.com/sadopc/pathtrack/internal/store"
)

// isoMillis matches the ISO-8601 form browsers produce (UTC, milliseconds, Z).
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Payload is the exported file. Importing it restores the learning path; the
// progress it carries is informational.
type Payload struct {
	Document   curriculum.Document `json:"devops_learning_path"`
	Progress   store.Progress      `json:"progress"`
	ExportedAt string              `json:"exportedAt"`
}

func Marshal(doc curriculum.Document, progress store.Progress, now time.Time) ([]byte, error) {
	p := progress.Clone()
	payload := Payload{
		Document:   doc,
		Progress:   p,
		ExportedAt: now.UTC().Format(isoMillis),
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return data, nil
}

// FileName stamps the export with the current UTC date.
func FileName(now time.Time, ext string) string {
	return fmt.Sprintf("devops_progress_%s.%s", now.UTC().Format("2006-01-02"), ext)
}

// ToJSON writes the export into dir and returns the file path.
func ToJSON(doc curriculum.Document, progress store.Progress, now time.Time, dir string) (string, error) {
	data, err := Marshal(doc, progress, now)
	if err != nil {
		return "", err
	}

	path, err := target(dir, FileName(now, "json"))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write json file: %w", err)
	}
	return path, nil
}

func target(dir, name string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	return filepath.Join(dir, name), nil
}
