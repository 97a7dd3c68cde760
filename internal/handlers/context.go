package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/panelbabel/panelbabel/internal/languages"
	"github.com/panelbabel/panelbabel/internal/translate"
)

// HandleContextDetect identifies the series from one page and installs
// the search-grounded context. Runs synchronously; the client shows a
// spinner for the round trip.
func (h *Handler) HandleContextDetect(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		PageID string `json:"page_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	id := request.PageID
	if id == "" {
		page, ok := h.store.At(h.store.Current())
		if !ok {
			h.writeError(w, "No pages loaded", http.StatusBadRequest)
			return
		}
		id = page.ID
	}

	sc, err := h.session.DetectContext(r.Context(), id)
	if err != nil {
		h.writeError(w, "Context detection failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	h.writeJSON(w, sc)
}

func (h *Handler) HandleContext(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		sc := h.session.Context()
		if sc == nil {
			h.writeJSON(w, map[string]any{"context": nil})
			return
		}
		h.writeJSON(w, sc)
	case "PUT":
		var request struct {
			Title string `json:"title"`
			Info  string `json:"info"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		if request.Title == "" {
			h.writeError(w, "title is required", http.StatusBadRequest)
			return
		}
		sc := &translate.SeriesContext{Title: request.Title, Info: request.Info}
		h.session.SetContext(sc)
		h.writeJSON(w, sc)
	case "DELETE":
		h.session.ClearContext()
		h.writeJSON(w, map[string]any{"message": "Context cleared"})
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleLanguage gets or sets the target language. PUT accepts either a
// language code or a display name from the supported table.
func (h *Handler) HandleLanguage(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, map[string]any{
			"language":  h.session.Language(),
			"supported": languages.Supported,
		})
	case "PUT":
		var request struct {
			Code string `json:"code"`
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}

		name := request.Name
		if request.Code != "" {
			lang, ok := languages.ByCode(request.Code)
			if !ok {
				h.writeError(w, "Unsupported language code: "+request.Code, http.StatusBadRequest)
				return
			}
			name = lang.Name
		}
		if !languages.IsSupported(name) {
			h.writeError(w, "Unsupported language: "+name, http.StatusBadRequest)
			return
		}
		h.session.SetLanguage(name)
		h.writeJSON(w, map[string]any{"language": name})
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
