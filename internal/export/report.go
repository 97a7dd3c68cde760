// Package export writes translation results to disk: a YAML report for
// human review and a Parquet dataset for translation-memory corpora.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/panelbabel/panelbabel/internal/pages"
	"gopkg.in/yaml.v3"
)

// ReportConfig represents the configuration section of the report YAML
type ReportConfig struct {
	Model     string `yaml:"model"`
	Language  string `yaml:"language"`
	Series    string `yaml:"series,omitempty"`
	PageCount int    `yaml:"pagecount"`
	Timestamp string `yaml:"timestamp"`
}

// ReportBubble is one translated text element in the report
type ReportBubble struct {
	ID             string `yaml:"id"`
	Speaker        string `yaml:"speaker,omitempty"`
	OriginalText   string `yaml:"originaltext"`
	TranslatedText string `yaml:"translatedtext"`
	BoundingBox    []int  `yaml:"boundingbox,omitempty"`
}

// ReportPage is one page's translation outcome
type ReportPage struct {
	Source  string         `yaml:"source"`
	Status  string         `yaml:"status"`
	Summary string         `yaml:"summary,omitempty"`
	Error   string         `yaml:"error,omitempty"`
	Bubbles []ReportBubble `yaml:"bubbles,omitempty"`
}

// Report represents the complete translation report
type Report struct {
	Config ReportConfig `yaml:"config"`
	Pages  []ReportPage `yaml:"pages"`
}

// SaveReport writes a YAML report to the reports/ directory and returns
// the path written.
func SaveReport(model, language, series string, records []pages.PageRecord) (string, error) {
	if err := os.MkdirAll("reports", 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")

	report := Report{
		Config: ReportConfig{
			Model:     model,
			Language:  language,
			Series:    series,
			PageCount: len(records),
			Timestamp: timestamp,
		},
		Pages: make([]ReportPage, 0, len(records)),
	}

	for _, r := range records {
		page := ReportPage{
			Source: r.SourceName,
			Status: string(r.Status),
			Error:  r.ErrorMessage,
		}
		if r.Result != nil {
			page.Summary = r.Result.Summary
			for _, b := range r.Result.Bubbles {
				rb := ReportBubble{
					ID:             b.ID,
					Speaker:        b.Speaker,
					OriginalText:   b.OriginalText,
					TranslatedText: b.TranslatedText,
				}
				if b.Box != nil {
					rb.BoundingBox = []int{b.Box.YMin, b.Box.XMin, b.Box.YMax, b.Box.XMax}
				}
				page.Bubbles = append(page.Bubbles, rb)
			}
		}
		report.Pages = append(report.Pages, page)
	}

	filename := fmt.Sprintf("reports/%s-%s.yaml", model, timestamp)

	data, err := yaml.Marshal(&report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	absPath, _ := filepath.Abs(filename)
	return absPath, nil
}
