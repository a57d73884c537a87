package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/pathtrack/internal/curriculum"
	"github.com/sadopc/pathtrack/internal/store"
)

// ToCSV writes one row per subtopic with its completion state.
func ToCSV(doc curriculum.Document, progress store.Progress, now time.Time, dir string) (string, error) {
	path, err := target(dir, FileName(now, "csv"))
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write([]string{"Topic", "Number", "Label", "Status", "Completed"}); err != nil {
		return "", err
	}

	for _, topic := range doc.Topics {
		for i, sub := range topic.Subtopics {
			completed := "no"
			if progress.Has(topic.Key, i) {
				completed = "yes"
			}
			row := []string{
				topic.NavLabel(),
				strconv.Itoa(i + 1),
				sub.Topic,
				sub.Status,
				completed,
			}
			if err := w.Write(row); err != nil {
				return "", err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("write csv file: %w", err)
	}
	return path, nil
}
