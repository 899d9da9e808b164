package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/arena-hud/internal/hub"
	"github.com/DoyleJ11/arena-hud/internal/journal"
	"github.com/DoyleJ11/arena-hud/internal/session"
)

const (
	maxMessageBytes     = 1 << 20
	defaultJournalLimit = 50
	stateTimeout        = 2 * time.Second
)

var errBodyTooLarge = errors.New("message too large")

// PostMessage enqueues one host message. Unknown actions are accepted here
// and ignored by the session.
func PostMessage(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surface := chi.URLParam(r, "surface")
		raw, err := readBody(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if !json.Valid(raw) {
			http.Error(w, "body is not json", http.StatusBadRequest)
			return
		}

		s, err := h.Ensure(r.Context(), surface)
		if err != nil || s == nil {
			http.Error(w, "surface unavailable", http.StatusServiceUnavailable)
			return
		}
		if err := s.Post(r.Context(), session.HostMessage{Raw: raw}); err != nil {
			log.Warn("enqueue host message", zap.String("surface", surface), zap.Error(err))
			http.Error(w, "surface unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func readBody(r *http.Request) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxMessageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(raw) > maxMessageBytes {
		return nil, errBodyTooLarge
	}
	return raw, nil
}

// SurfaceState reports the session summary, 404 when it was never started.
func SurfaceState(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := h.Get(r.Context(), chi.URLParam(r, "surface"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		if s == nil {
			http.Error(w, "surface not found", http.StatusNotFound)
			return
		}

		reply := make(chan session.View, 1)
		if err := s.Post(r.Context(), session.GetState{Reply: reply}); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		select {
		case v := <-reply:
			writeJSON(w, http.StatusOK, v)
		case <-s.Done():
			http.Error(w, "surface closed", http.StatusServiceUnavailable)
		case <-time.After(stateTimeout):
			http.Error(w, "timed out", http.StatusGatewayTimeout)
		}
	}
}

func ListSurfaces(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := h.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Surfaces []string `json:"surfaces"`
		}{names})
	}
}

func Journal(j journal.Reader, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultJournalLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				http.Error(w, "bad limit", http.StatusBadRequest)
				return
			}
			limit = n
		}

		entries, err := j.Recent(r.Context(), chi.URLParam(r, "surface"), limit)
		if err != nil {
			log.Warn("read journal", zap.Error(err))
			http.Error(w, "journal unavailable", http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []journal.Entry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
