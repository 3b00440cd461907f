package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"globewidget/internal/core"
	"globewidget/pkg/config"
)

// Channel is the part of a channel the HTTP adapter needs.
type Channel interface {
	MessageHandler
	Config() config.Globe
	State() core.State
}

// Handler exposes a channel over HTTP:
//
//	GET  /api/v1/config  current wire configuration
//	GET  /api/v1/state   lifecycle state
//	POST /api/v1/events  one inbound message or an array of them
type Handler struct {
	Channel Channel
	// MaxBody bounds request bodies; zero means 1 MiB.
	MaxBody int64
}

// NewHandler returns an HTTP adapter for ch.
func NewHandler(ch Channel) *Handler {
	return &Handler{Channel: ch}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Channel == nil {
		writeError(w, http.StatusInternalServerError, "channel not configured")
		return
	}
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case r.Method == http.MethodGet && path == "/api/v1/config":
		writeJSON(w, http.StatusOK, map[string]any{"config": h.Channel.Config().Wire()})
	case r.Method == http.MethodGet && path == "/api/v1/state":
		writeJSON(w, http.StatusOK, map[string]any{"state": h.Channel.State().String()})
	case path == "/api/v1/events":
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleEvents(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := h.MaxBody
	if limit <= 0 {
		limit = 1 << 20
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	if int64(len(body)) > limit {
		writeError(w, http.StatusRequestEntityTooLarge, "body too large")
		return
	}
	msgs, err := decodeMessages(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, msg := range msgs {
		if err := h.Channel.HandleMessage(r.Context(), msg); err != nil {
			if errors.Is(err, core.ErrClosed) {
				writeError(w, http.StatusGone, err.Error())
				return
			}
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"accepted": len(msgs)})
}

func decodeMessages(body []byte) ([]core.Message, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var msgs []core.Message
		if err := json.Unmarshal(body, &msgs); err != nil {
			return nil, errors.New("invalid message array")
		}
		return msgs, nil
	}
	var msg core.Message
	if err := json.Unmarshal(body, &msg); err != nil || msg == nil {
		return nil, errors.New("invalid message")
	}
	return []core.Message{msg}, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
