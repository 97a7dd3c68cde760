package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// HandleGenerate produces a standalone image from a text prompt. The
// feature is opt-in: without a configured generator the endpoint
// reports unavailable.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.generator == nil || !h.generator.Available() {
		h.writeError(w, "Image generation not available", http.StatusServiceUnavailable)
		return
	}

	var request struct {
		Prompt string `json:"prompt"`
		Size   string `json:"size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	data, mimeType, err := h.generator.Generate(r.Context(), request.Prompt, request.Size)
	if err != nil {
		h.writeError(w, "Image generation failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	h.writeJSON(w, map[string]any{
		"mime_type": mimeType,
		"image":     "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
	})
}
