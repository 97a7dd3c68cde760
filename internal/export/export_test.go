package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/panelbabel/panelbabel/internal/pages"
	"github.com/panelbabel/panelbabel/internal/translate"
	"gopkg.in/yaml.v3"
)

func translatedRecords() []pages.PageRecord {
	done := pages.NewRecord([]byte{0xFF, 0xD8}, "image/jpeg", "vol1.pdf - Page 1")
	done.Status = pages.StatusComplete
	done.Result = &translate.PageAnalysis{
		Summary: "The hero arrives.",
		Bubbles: []translate.Bubble{
			{
				ID:             "b1",
				OriginalText:   "こんにちは",
				TranslatedText: "Hello",
				Speaker:        "Hero",
				Box:            &translate.BoundingBox{YMin: 10, XMin: 20, YMax: 110, XMax: 220},
			},
			{
				ID:             "b2",
				OriginalText:   "ドン",
				TranslatedText: "THUD",
				Speaker:        "SFX",
			},
		},
	}

	failed := pages.NewRecord([]byte{0xFF, 0xD8}, "image/jpeg", "vol1.pdf - Page 2")
	failed.Status = pages.StatusError
	failed.ErrorMessage = "Translation failed. Click to retry."

	return []pages.PageRecord{done, failed}
}

func TestSaveReport(t *testing.T) {
	t.Chdir(t.TempDir())

	path, err := SaveReport("gemini-2.5-flash", "English", "Test Series", translatedRecords())
	if err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "gemini-2.5-flash-") {
		t.Errorf("Report filename should carry the model name, got %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}

	var report Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not valid YAML: %v", err)
	}

	if report.Config.Language != "English" || report.Config.PageCount != 2 {
		t.Errorf("Unexpected config: %+v", report.Config)
	}
	if len(report.Pages) != 2 {
		t.Fatalf("Expected 2 pages, got %d", len(report.Pages))
	}
	if report.Pages[0].Summary != "The hero arrives." {
		t.Errorf("Missing summary: %+v", report.Pages[0])
	}
	if len(report.Pages[0].Bubbles) != 2 {
		t.Fatalf("Expected 2 bubbles, got %d", len(report.Pages[0].Bubbles))
	}
	if got := report.Pages[0].Bubbles[0].BoundingBox; len(got) != 4 || got[0] != 10 {
		t.Errorf("Bounding box not preserved: %v", got)
	}
	if report.Pages[1].Error == "" {
		t.Error("Failed page should carry its error message")
	}
}

func TestFlattenBubbles(t *testing.T) {
	rows := FlattenBubbles(translatedRecords(), "English")

	// Failed page has no result and contributes nothing.
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0].OriginalText != "こんにちは" || rows[0].TranslatedText != "Hello" {
		t.Errorf("Unexpected first row: %+v", rows[0])
	}
	if rows[0].YMin != 10 || rows[0].XMax != 220 {
		t.Errorf("Box not flattened: %+v", rows[0])
	}
	if rows[1].Speaker != "SFX" {
		t.Errorf("Expected SFX speaker, got %q", rows[1].Speaker)
	}
	if rows[1].YMin != 0 {
		t.Errorf("Missing box should flatten to zeros, got %+v", rows[1])
	}
	for _, r := range rows {
		if r.Language != "English" {
			t.Errorf("Expected language on every row, got %q", r.Language)
		}
		if r.PageSource != "vol1.pdf - Page 1" {
			t.Errorf("Unexpected page source %q", r.PageSource)
		}
	}
}

func TestSaveDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pairs.parquet")

	if err := SaveDataset(path, "English", translatedRecords()); err != nil {
		t.Fatalf("SaveDataset failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("dataset file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("dataset file is empty")
	}
}
