package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"log/slog"

	"github.com/gen2brain/go-fitz"
	"github.com/panelbabel/panelbabel/internal/pages"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const (
	// Pages render at 1.5x the nominal 72 DPI page size, then encode
	// as JPEG at quality 80. Good enough for the vision model without
	// ballooning memory on 40-page sessions.
	renderDPI   = 108
	jpegQuality = 80
)

// extractPDF rasterizes each page of a PDF to a JPEG page record.
// pdfcpu validates the document and reports the page count up front so
// corrupt files produce zero pages instead of a half-initialized
// renderer; go-fitz does the actual rasterization. A single page that
// fails to render is logged and skipped.
func extractPDF(ctx context.Context, data []byte, name string, b *batcher) error {
	conf := model.NewDefaultConfiguration()
	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		slog.Warn("PDF failed validation", "file", name, "error", err)
		return nil
	}
	pageCount, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		slog.Warn("Failed to count PDF pages", "file", name, "error", err)
		return nil
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		slog.Warn("Failed to open PDF for rendering", "file", name, "error", err)
		return nil
	}
	defer doc.Close()

	rendered := 0
	for i := 0; i < pageCount; i++ {
		img, err := doc.ImageDPI(i, renderDPI)
		if err != nil {
			slog.Warn("Failed to render PDF page", "file", name, "page", i+1, "error", err)
			continue
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			slog.Warn("Failed to encode PDF page", "file", name, "page", i+1, "error", err)
			continue
		}
		rendered++
		source := fmt.Sprintf("%s - Page %d", name, i+1)
		if err := b.add(ctx, pages.NewRecord(buf.Bytes(), "image/jpeg", source)); err != nil {
			if errors.Is(err, ErrPageLimit) {
				slog.Info("PDF rasterization stopped at page limit", "file", name, "rendered", rendered, "total", pageCount)
			}
			return err
		}
	}

	slog.Info("PDF rasterization complete", "file", name, "pages", pageCount, "rendered", rendered)
	return b.flush(ctx)
}
