package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/panelbabel/panelbabel/internal/pages"
)

var imageMIMEByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// extractArchive pulls page images out of a ZIP-based container
// (EPUB or CBZ). Entries are ordered by natural name comparison so
// page2 comes before page10; a purely lexical sort would misorder
// them. A single unreadable entry is skipped, not fatal.
func extractArchive(ctx context.Context, data []byte, name string, b *batcher) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		slog.Warn("Failed to open archive", "file", name, "error", err)
		return nil
	}

	var entries []*zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		ext := strings.ToLower(path.Ext(f.Name))
		if _, ok := imageMIMEByExt[ext]; ok {
			entries = append(entries, f)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return naturalLess(entries[i].Name, entries[j].Name)
	})

	decoded := 0
	for _, entry := range entries {
		blob, err := readZipEntry(entry)
		if err != nil {
			slog.Warn("Failed to read archive entry", "file", name, "entry", entry.Name, "error", err)
			continue
		}
		mimeType := imageMIMEByExt[strings.ToLower(path.Ext(entry.Name))]
		decoded++
		if err := b.add(ctx, pages.NewRecord(blob, mimeType, entry.Name)); err != nil {
			if errors.Is(err, ErrPageLimit) {
				slog.Info("Archive extraction stopped at page limit", "file", name, "entries", decoded)
			}
			return err
		}
	}

	slog.Info("Archive extraction complete", "file", name, "entries", len(entries), "decoded", decoded)
	return b.flush(ctx)
}

func readZipEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
