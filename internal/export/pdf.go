package export

import (
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/sadopc/pathtrack/internal/curriculum"
	"github.com/sadopc/pathtrack/internal/store"
	"github.com/sadopc/pathtrack/internal/view"
)

// ToPDF writes a printable progress report.
func ToPDF(doc curriculum.Document, progress store.Progress, now time.Time, dir string) (string, error) {
	path, err := target(dir, FileName(now, "pdf"))
	if err != nil {
		return "", err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, fmt.Sprintf("Learning Progress: %s", now.UTC().Format("2006-01-02")))
	pdf.Ln(12)

	stats := view.TopicCompletion(doc, progress, nil)
	for i, topic := range doc.Topics {
		pdf.SetFont("Arial", "B", 14)
		pdf.Cell(0, 10, tr(fmt.Sprintf("%s (%d/%d)", topic.NavLabel(), stats[i].Completed, stats[i].Total)))
		pdf.Ln(8)

		pdf.SetFont("Arial", "", 12)
		if len(topic.Subtopics) == 0 {
			pdf.Cell(0, 8, "  - No items.")
			pdf.Ln(8)
		}
		for j, sub := range topic.Subtopics {
			mark := "[ ]"
			if progress.Has(topic.Key, j) {
				mark = "[x]"
			}
			pdf.Cell(0, 8, tr(fmt.Sprintf("    %s %d. %s", mark, j+1, sub.Topic)))
			pdf.Ln(6)
		}
		pdf.Ln(4)
	}

	o := view.Summarize(doc, progress)
	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Completed: %d of %d (%.0f%%)", o.Completed, o.Total, o.Fraction()*100))
	pdf.Ln(10)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write pdf file: %w", err)
	}
	return path, nil
}
