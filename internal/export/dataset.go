package export

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/panelbabel/panelbabel/internal/pages"
	"github.com/parquet-go/parquet-go"
)

// BubbleRow is one flattened translation pair in the Parquet dataset.
type BubbleRow struct {
	PageSource     string `parquet:"page_source"`
	PageSummary    string `parquet:"page_summary"`
	BubbleID       string `parquet:"bubble_id"`
	Speaker        string `parquet:"speaker"`
	OriginalText   string `parquet:"original_text"`
	TranslatedText string `parquet:"translated_text"`
	Language       string `parquet:"language"`
	YMin           int32  `parquet:"ymin"`
	XMin           int32  `parquet:"xmin"`
	YMax           int32  `parquet:"ymax"`
	XMax           int32  `parquet:"xmax"`
}

// FlattenBubbles converts completed page results into dataset rows.
// Pages without a result contribute nothing.
func FlattenBubbles(records []pages.PageRecord, language string) []BubbleRow {
	var rows []BubbleRow
	for _, r := range records {
		if r.Result == nil {
			continue
		}
		for _, b := range r.Result.Bubbles {
			row := BubbleRow{
				PageSource:     r.SourceName,
				PageSummary:    r.Result.Summary,
				BubbleID:       b.ID,
				Speaker:        b.Speaker,
				OriginalText:   b.OriginalText,
				TranslatedText: b.TranslatedText,
				Language:       language,
			}
			if b.Box != nil {
				row.YMin = int32(b.Box.YMin)
				row.XMin = int32(b.Box.XMin)
				row.YMax = int32(b.Box.YMax)
				row.XMax = int32(b.Box.XMax)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// SaveDataset writes flattened bubble rows to a Parquet file at path.
func SaveDataset(path, language string, records []pages.PageRecord) error {
	rows := FlattenBubbles(records, language)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset file: %w", err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[BubbleRow](file)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	slog.Info("Dataset written", "path", path, "rows", len(rows))
	return nil
}
