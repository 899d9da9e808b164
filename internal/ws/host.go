package ws

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/arena-hud/internal/hub"
	"github.com/DoyleJ11/arena-hud/internal/session"
)

// HostHandler accepts a stream of NUI messages for /surfaces/{surface}/host.
// Each text frame is one message, handled in the order received.
func HostHandler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	log = named(log, "ws.host")
	return func(w http.ResponseWriter, r *http.Request) {
		surface := chi.URLParam(r, "surface")
		s, err := h.Ensure(r.Context(), surface)
		if err != nil || s == nil {
			http.Error(w, "surface unavailable", http.StatusServiceUnavailable)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")
		conn.SetReadLimit(readLimit)
		log.Info("host connected", zap.String("surface", surface))

		for {
			typ, data, err := conn.Read(r.Context())
			if err != nil {
				log.Info("host disconnected", zap.String("surface", surface))
				return
			}
			if typ != websocket.MessageText {
				continue
			}
			if err := s.Post(r.Context(), session.HostMessage{Raw: data}); err != nil {
				conn.Close(websocket.StatusGoingAway, "session closed")
				return
			}
		}
	}
}
