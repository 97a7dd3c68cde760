package handlers

import (
	"context"
	"net/http"

	"github.com/panelbabel/panelbabel/internal/pages"
)

// HandleBulk controls the bulk translation loop. POST toggles: it
// starts a run when idle and requests cancellation when one is active.
func (h *Handler) HandleBulk(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, map[string]any{
			"running": h.bulk.Running(),
			"pending": h.store.CountByStatus(pages.StatusPending),
		})
	case "POST":
		if h.bulk.Running() {
			h.bulk.Cancel()
			h.writeJSON(w, map[string]any{
				"running": false,
				"message": "Cancellation requested",
			})
			return
		}
		h.bulk.Start(context.Background())
		h.writeJSON(w, map[string]any{
			"running": true,
			"message": "Bulk translation started",
		})
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
