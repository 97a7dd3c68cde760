package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/panelbabel/panelbabel/internal/gemini"
	"github.com/panelbabel/panelbabel/internal/imagegen"
	"github.com/panelbabel/panelbabel/internal/ingest"
	"github.com/panelbabel/panelbabel/internal/pages"
	"github.com/panelbabel/panelbabel/internal/scheduler"
	"github.com/panelbabel/panelbabel/internal/session"
)

type Handler struct {
	store      *pages.Store
	session    *session.Session
	dispatcher *ingest.Dispatcher
	bulk       *scheduler.Bulk
	generator  *imagegen.Generator
	chats      *gemini.Gemini

	noticeMu sync.Mutex
	notice   string

	chatMu sync.Mutex
	chat   *gemini.Chat
}

// New wires the full pipeline behind one handler. generator and chats
// may be nil when those features are not configured.
func New(s *session.Session, bulk *scheduler.Bulk, generator *imagegen.Generator, chats *gemini.Gemini) *Handler {
	h := &Handler{
		store:     s.Store(),
		session:   s,
		bulk:      bulk,
		generator: generator,
		chats:     chats,
	}
	h.dispatcher = ingest.NewDispatcher(h.store, h.setNotice)
	return h
}

// setNotice records a user-facing ingestion notice, surfaced on the
// next page listing.
func (h *Handler) setNotice(message string) {
	h.noticeMu.Lock()
	defer h.noticeMu.Unlock()
	h.notice = message
}

// takeNotice returns and clears the pending notice.
func (h *Handler) takeNotice() string {
	h.noticeMu.Lock()
	defer h.noticeMu.Unlock()
	n := h.notice
	h.notice = ""
	return n
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// Page helpers
func (h *Handler) getPageOrError(w http.ResponseWriter, id string) (pages.PageRecord, bool) {
	page, exists := h.store.Get(id)
	if !exists {
		h.writeError(w, "Page not found", http.StatusNotFound)
		return pages.PageRecord{}, false
	}
	return page, true
}

// ingestAsync runs ingestion in its own goroutine. Uploads return
// immediately; clients poll the page listing for progress.
func (h *Handler) ingestAsync(files []ingest.InputFile) {
	go h.dispatcher.Ingest(context.Background(), files)
}
