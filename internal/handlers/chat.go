package handlers

import (
	"encoding/json"
	"net/http"
)

// HandleChat streams one assistant reply as plain text chunks. The chat
// session lives for the handler's lifetime so conversation history
// carries across requests.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.chats == nil {
		h.writeError(w, "Chat not available", http.StatusServiceUnavailable)
		return
	}

	var request struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if request.Message == "" {
		h.writeError(w, "message is required", http.StatusBadRequest)
		return
	}

	h.chatMu.Lock()
	defer h.chatMu.Unlock()

	if h.chat == nil {
		chat, err := h.chats.NewChat(r.Context())
		if err != nil {
			h.writeError(w, "Failed to open chat: "+err.Error(), http.StatusBadGateway)
			return
		}
		h.chat = chat
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	flusher, _ := w.(http.Flusher)

	_, err := h.chat.Send(r.Context(), request.Message, func(chunk string) {
		if _, werr := w.Write([]byte(chunk)); werr == nil && flusher != nil {
			flusher.Flush()
		}
	})
	if err != nil {
		// Headers are already out; drop the session so the next request
		// starts clean.
		h.chat.Close()
		h.chat = nil
	}
}
