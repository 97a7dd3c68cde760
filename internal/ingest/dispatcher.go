package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/panelbabel/panelbabel/internal/pages"
)

// InputFile is one user-supplied file awaiting ingestion.
type InputFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Dispatcher classifies incoming files and routes each to the matching
// extractor. Files are processed strictly sequentially so the shared
// page count stays meaningful across the whole submission; the ceiling
// is re-checked before every file.
type Dispatcher struct {
	store  *pages.Store
	notify func(message string)
}

// NewDispatcher returns a dispatcher appending into store. notify
// receives non-fatal user-facing messages (e.g. the page limit notice)
// and may be nil.
func NewDispatcher(store *pages.Store, notify func(string)) *Dispatcher {
	if notify == nil {
		notify = func(string) {}
	}
	return &Dispatcher{store: store, notify: notify}
}

// Ingest processes files in submission order. Unrecognized files are
// skipped silently; extraction errors are scoped to a single page or
// file and never abort the batch.
func (d *Dispatcher) Ingest(ctx context.Context, files []InputFile) {
	d.store.BeginIngest()
	defer d.store.EndIngest()

	for _, f := range files {
		if d.store.Remaining() <= 0 {
			d.notify(fmt.Sprintf("Maximum limit of %d pages reached.", pages.MaxPages))
			slog.Info("Skipping remaining files, page limit reached", "file", f.Name)
			return
		}
		if err := d.ingestOne(ctx, f); err != nil {
			if errors.Is(err, ErrPageLimit) {
				d.notify(fmt.Sprintf("Maximum limit of %d pages reached.", pages.MaxPages))
				return
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				slog.Info("Ingestion cancelled", "file", f.Name)
				return
			}
			slog.Error("Failed to ingest file", "file", f.Name, "error", err)
		}
	}
}

func (d *Dispatcher) ingestOne(ctx context.Context, f InputFile) error {
	ext := strings.ToLower(filepath.Ext(f.Name))
	b := newBatcher(d.store)

	switch {
	case f.ContentType == "application/pdf" || ext == ".pdf":
		return extractPDF(ctx, f.Data, f.Name, b)
	case f.ContentType == "application/epub+zip" || f.ContentType == "application/x-cbz" ||
		ext == ".epub" || ext == ".cbz":
		return extractArchive(ctx, f.Data, f.Name, b)
	case ext == ".azw3" || ext == ".mobi" || ext == ".azw":
		return extractKindle(ctx, f.Data, f.Name, b)
	case strings.HasPrefix(f.ContentType, "image/"):
		return d.ingestImage(f)
	default:
		slog.Debug("Skipping unrecognized file", "file", f.Name, "content_type", f.ContentType)
		return nil
	}
}

// ingestImage wraps one standalone image as a single page record. No
// batching; just a single-slot ceiling check.
func (d *Dispatcher) ingestImage(f InputFile) error {
	rec := pages.NewRecord(f.Data, f.ContentType, f.Name)
	if d.store.Append(rec) == 0 {
		return ErrPageLimit
	}
	return nil
}
