package ingest

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/panelbabel/panelbabel/internal/pages"
)

func TestDispatcherImageLeaf(t *testing.T) {
	store := pages.NewStore()
	d := NewDispatcher(store, nil)

	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x42}
	d.Ingest(context.Background(), []InputFile{
		{Name: "cover.jpg", ContentType: "image/jpeg", Data: payload},
	})

	if store.Len() != 1 {
		t.Fatalf("Expected 1 page, got %d", store.Len())
	}
	got, _ := store.At(0)
	if got.SourceName != "cover.jpg" {
		t.Errorf("Expected source 'cover.jpg', got %q", got.SourceName)
	}
	if !bytes.Equal(got.ImageData, payload) {
		t.Errorf("Payload mismatch: expected %v, got %v", payload, got.ImageData)
	}
	if store.Ingesting() {
		t.Error("Ingesting flag should be cleared after Ingest returns")
	}
}

func TestDispatcherUnrecognizedSkipped(t *testing.T) {
	store := pages.NewStore()
	d := NewDispatcher(store, nil)

	d.Ingest(context.Background(), []InputFile{
		{Name: "readme.txt", ContentType: "text/plain", Data: []byte("hello")},
		{Name: "data.csv", ContentType: "text/csv", Data: []byte("a,b")},
		{Name: "page.png", ContentType: "image/png", Data: []byte{0x89, 0x50, 0x4E, 0x47}},
	})

	if store.Len() != 1 {
		t.Errorf("Expected only the image ingested, got %d pages", store.Len())
	}
}

func TestDispatcherRoutesArchiveByExtension(t *testing.T) {
	// Content type from the browser is often generic; extension routing
	// must still find the archive extractor.
	data := buildZip(t, map[string][]byte{
		"p1.png": {0x89, 0x50, 0x4E, 0x47, 1},
		"p2.png": {0x89, 0x50, 0x4E, 0x47, 2},
	})

	store := pages.NewStore()
	d := NewDispatcher(store, nil)
	d.Ingest(context.Background(), []InputFile{
		{Name: "chapter.CBZ", ContentType: "application/octet-stream", Data: data},
	})

	if store.Len() != 2 {
		t.Errorf("Expected 2 pages from archive, got %d", store.Len())
	}
}

func TestDispatcherCeilingNotice(t *testing.T) {
	store := pages.NewStore()
	var notices []string
	d := NewDispatcher(store, func(msg string) { notices = append(notices, msg) })

	files := make([]InputFile, pages.MaxPages+3)
	for i := range files {
		files[i] = InputFile{
			Name:        fmt.Sprintf("img%d.png", i),
			ContentType: "image/png",
			Data:        []byte{0x89, 0x50, 0x4E, 0x47, byte(i)},
		}
	}
	d.Ingest(context.Background(), files)

	if store.Len() != pages.MaxPages {
		t.Errorf("Expected exactly %d pages, got %d", pages.MaxPages, store.Len())
	}
	if len(notices) == 0 {
		t.Fatal("Expected a page limit notice")
	}
	if !strings.Contains(notices[0], fmt.Sprintf("%d", pages.MaxPages)) {
		t.Errorf("Notice should name the limit, got %q", notices[0])
	}
}

func TestDispatcherCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data := buildZip(t, map[string][]byte{
		"p1.png": {0x89, 0x50, 0x4E, 0x47, 1},
	})

	store := pages.NewStore()
	d := NewDispatcher(store, nil)
	// Must return promptly and leave the ingesting flag cleared.
	d.Ingest(ctx, []InputFile{
		{Name: "c.cbz", ContentType: "application/x-cbz", Data: data},
	})

	if store.Ingesting() {
		t.Error("Ingesting flag should be cleared after cancellation")
	}
}
