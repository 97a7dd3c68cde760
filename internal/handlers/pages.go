package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/panelbabel/panelbabel/internal/ingest"
)

// maxUploadBytes caps one uploaded file. Document containers (PDF,
// Kindle binaries) run much larger than single images.
const maxUploadBytes = 100 * 1024 * 1024

func (h *Handler) HandlePages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.listPages(w)
	case "POST":
		contentType := r.Header.Get("Content-Type")
		if strings.Contains(contentType, "application/json") {
			h.handleURLUpload(w, r)
			return
		}
		h.handleFileUpload(w, r)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listPages(w http.ResponseWriter) {
	response := map[string]any{
		"pages":        h.store.Snapshot(),
		"current":      h.store.Current(),
		"ingesting":    h.store.Ingesting(),
		"bulk_running": h.bulk.Running(),
	}
	if notice := h.takeNotice(); notice != "" {
		response["notice"] = notice
	}
	h.writeJSON(w, response)
}

func (h *Handler) handleURLUpload(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ImageURL string `json:"image_url"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if request.ImageURL == "" {
		h.writeError(w, "image_url is required", http.StatusBadRequest)
		return
	}

	file, err := downloadFromURL(request.ImageURL)
	if err != nil {
		h.writeError(w, "Failed to fetch image URL: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.ingestAsync([]ingest.InputFile{file})
	h.writeJSON(w, map[string]any{
		"message": "Ingestion started",
		"files":   1,
		"source":  "url",
	})
}

func (h *Handler) handleFileUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 * 1024 * 1024); err != nil {
		h.writeError(w, "Failed to parse upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["file"]
	}
	if len(headers) == 0 {
		h.writeError(w, "No files provided", http.StatusBadRequest)
		return
	}

	files := make([]ingest.InputFile, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
		f.Close()
		if err != nil {
			h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if len(data) >= maxUploadBytes {
			h.writeError(w, "File too large (max 100MB)", http.StatusBadRequest)
			return
		}
		files = append(files, ingest.InputFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	h.ingestAsync(files)
	h.writeJSON(w, map[string]any{
		"message": fmt.Sprintf("Ingestion started for %d file(s)", len(files)),
		"files":   len(files),
	})
}

func downloadFromURL(imageURL string) (ingest.InputFile, error) {
	resp, err := http.Get(imageURL)
	if err != nil {
		return ingest.InputFile{}, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ingest.InputFile{}, fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxUploadBytes))
	if err != nil {
		return ingest.InputFile{}, fmt.Errorf("failed to read image data: %w", err)
	}

	parts := strings.Split(imageURL, "/")
	name := parts[len(parts)-1]
	if name == "" {
		name = "image.jpg"
	}
	return ingest.InputFile{
		Name:        name,
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (h *Handler) HandlePageDetail(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/pages/")

	if id, ok := strings.CutSuffix(rest, "/translate"); ok {
		h.handlePageTranslate(w, r, id)
		return
	}

	page, ok := h.getPageOrError(w, rest)
	if !ok {
		return
	}

	switch r.Method {
	case "GET":
		h.writeJSON(w, page)
	case "DELETE":
		h.store.Remove(page.ID)
		h.writeJSON(w, map[string]any{
			"message": "Page removed",
			"current": h.store.Current(),
		})
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handlePageTranslate(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := h.getPageOrError(w, id); !ok {
		return
	}

	go h.session.TranslatePage(context.Background(), id)
	h.writeJSON(w, map[string]any{
		"message": "Translation started",
		"page_id": id,
	})
}

func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !h.store.Select(request.Index) {
		h.writeError(w, "Index out of range", http.StatusBadRequest)
		return
	}
	h.writeJSON(w, map[string]any{"current": h.store.Current()})
}
