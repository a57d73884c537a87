package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/pathtrack/internal/curriculum"
	"github.com/sadopc/pathtrack/internal/store"
)

var exportTime = time.Date(2026, 3, 14, 9, 26, 53, 589_000_000, time.UTC)

func sampleData(t *testing.T) (curriculum.Document, store.Progress) {
	t.Helper()
	doc, err := curriculum.Parse([]byte(`{
		"linux_basics": [{"topic": "Shell", "status": "done"}, {"topic": "Permissions"}],
		"git": [{"topic": "Branching", "difficulty": "medium"}]
	}`))
	if err != nil {
		t.Fatalf("parse sample: %v", err)
	}
	progress := store.Progress{}
	progress.Set("linux_basics", 0)
	return doc, progress
}

// ============================================================
// JSON
// ============================================================

func TestMarshalShape(t *testing.T) {
	doc, progress := sampleData(t)
	data, err := Marshal(doc, progress, exportTime)
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]json.RawMessage
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	for _, key := range []string{"devops_learning_path", "progress", "exportedAt"} {
		if _, ok := got[key]; !ok {
			t.Fatalf("missing key %q", key)
		}
	}

	var exportedAt string
	json.Unmarshal(got["exportedAt"], &exportedAt)
	if exportedAt != "2026-03-14T09:26:53.589Z" {
		t.Fatalf("exportedAt = %q", exportedAt)
	}

	var progressOut map[string]bool
	json.Unmarshal(got["progress"], &progressOut)
	if len(progressOut) != 1 || !progressOut["linux_basics_0"] {
		t.Fatalf("progress = %v", progressOut)
	}
}

func TestMarshalIsPrettyPrinted(t *testing.T) {
	doc, progress := sampleData(t)
	data, _ := Marshal(doc, progress, exportTime)
	if !bytes.HasPrefix(data, []byte("{\n  \"devops_learning_path\": {\n    \"linux_basics\": [")) {
		t.Fatalf("unexpected layout:\n%s", data)
	}
}

func TestMarshalEmptyProgress(t *testing.T) {
	doc, _ := sampleData(t)
	data, _ := Marshal(doc, nil, exportTime)
	if !strings.Contains(string(data), `"progress": {}`) {
		t.Fatalf("expected empty progress object:\n%s", data)
	}
}

func TestExportReimports(t *testing.T) {
	doc, progress := sampleData(t)
	data, _ := Marshal(doc, progress, exportTime)

	again, err := curriculum.Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if again.Len() != 2 || again.Topics[0].Key != "linux_basics" || again.Total() != 3 {
		t.Fatalf("re-imported document differs: %+v", again)
	}
	sub, _ := again.Subtopic("git", 0)
	raw, _ := json.Marshal(sub)
	if !strings.Contains(string(raw), `"difficulty":"medium"`) {
		t.Fatalf("unknown field lost: %s", raw)
	}
}

func TestFileName(t *testing.T) {
	if got := FileName(exportTime, "json"); got != "devops_progress_2026-03-14.json" {
		t.Fatalf("FileName = %q", got)
	}
	local := time.Date(2026, 3, 14, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*3600))
	if got := FileName(local, "csv"); got != "devops_progress_2026-03-15.csv" {
		t.Fatalf("FileName should use the UTC date, got %q", got)
	}
}

func TestToJSON(t *testing.T) {
	doc, progress := sampleData(t)
	dir := filepath.Join(t.TempDir(), "exports")

	path, err := ToJSON(doc, progress, exportTime, dir)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if filepath.Base(path) != "devops_progress_2026-03-14.json" {
		t.Fatalf("path = %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := Marshal(doc, progress, exportTime)
	if !bytes.Equal(data, want) {
		t.Fatal("file contents differ from Marshal output")
	}
}

func TestToJSONDoesNotMutateProgress(t *testing.T) {
	doc, progress := sampleData(t)
	before := progress.Clone()
	if _, err := ToJSON(doc, progress, exportTime, t.TempDir()); err != nil {
		t.Fatal(err)
	}
	if len(progress) != len(before) || !progress["linux_basics_0"] {
		t.Fatalf("progress mutated: %v", progress)
	}
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	doc, progress := sampleData(t)

	path, err := ToCSV(doc, progress, exportTime, t.TempDir())
	if err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// header + 3 data rows
	if len(records) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(records))
	}

	expectedHeader := []string{"Topic", "Number", "Label", "Status", "Completed"}
	for i, h := range expectedHeader {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	first := records[1]
	if first[0] != "Linux Basics" || first[1] != "1" || first[2] != "Shell" || first[3] != "done" || first[4] != "yes" {
		t.Fatalf("unexpected first row: %v", first)
	}
	if records[2][4] != "no" {
		t.Fatalf("second row should be incomplete: %v", records[2])
	}
	if records[3][0] != "Git" {
		t.Fatalf("third row topic = %q", records[3][0])
	}
}

func TestToCSVEmptyDocument(t *testing.T) {
	path, err := ToCSV(curriculum.Document{}, store.Progress{}, exportTime, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if strings.TrimSpace(string(data)) != "Topic,Number,Label,Status,Completed" {
		t.Fatalf("expected header only, got %q", data)
	}
}

// ============================================================
// PDF
// ============================================================

func TestToPDF(t *testing.T) {
	doc, progress := sampleData(t)

	path, err := ToPDF(doc, progress, exportTime, t.TempDir())
	if err != nil {
		t.Fatalf("ToPDF: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}
}

func TestToPDFEmptyDocument(t *testing.T) {
	if _, err := ToPDF(curriculum.Document{}, store.Progress{}, exportTime, t.TempDir()); err != nil {
		t.Fatalf("ToPDF on empty document: %v", err)
	}
}
