package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/arena-hud/internal/hub"
	"github.com/DoyleJ11/arena-hud/internal/session"
	"github.com/DoyleJ11/arena-hud/internal/types"
)

const (
	outboxSize   = 32
	writeTimeout = 3 * time.Second
	readLimit    = 1 << 20
)

// Handler serves a browser page: ?surface= picks the session.
func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	log = named(log, "ws")
	return func(w http.ResponseWriter, r *http.Request) {
		surface := r.URL.Query().Get("surface")
		if surface == "" {
			http.Error(w, "missing surface", http.StatusBadRequest)
			return
		}
		s, err := h.Ensure(r.Context(), surface)
		if err != nil || s == nil {
			http.Error(w, "surface unavailable", http.StatusServiceUnavailable)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// Embedded pages load from the host's own scheme.
			InsecureSkipVerify: true,
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")
		conn.SetReadLimit(readLimit)

		clientID := uuid.NewString()
		clog := log.With(zap.String("surface", surface), zap.String("client", clientID))
		out := make(chan session.Update, outboxSize)

		if err := s.Post(r.Context(), session.Join{ClientID: clientID, Outbox: out}); err != nil {
			return
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			_ = s.Post(ctx, session.Leave{ClientID: clientID})
			cancel()
		}()
		clog.Debug("browser joined")

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for u := range out {
				if err := write(writeCtx, conn, toServer(u)); err != nil {
					clog.Debug("write failed", zap.Error(err))
					break
				}
			}
			// dropped by the session or the session stopped
			conn.Close(websocket.StatusGoingAway, "session closed")
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					clog.Debug("read ended", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = write(r.Context(), conn, types.ServerMessage{Type: "Error", Error: "bad json"})
				continue
			}

			msg, ok := toSession(clientID, cm)
			if !ok {
				_ = write(r.Context(), conn, types.ServerMessage{Type: "Error", Error: "unknown type"})
				continue
			}
			if err := s.Post(r.Context(), msg); err != nil {
				return
			}
		}
	}
}

func toSession(clientID string, m types.ClientMessage) (session.Msg, bool) {
	switch m.Type {
	case "Mount":
		return session.Mount{ClientID: clientID, Seeds: m.AllSeeds()}, true
	case "Intent":
		if m.Action == "" {
			return nil, false
		}
		return session.Intent{ClientID: clientID, Action: m.Action, Payload: m.Payload}, true
	default:
		return nil, false
	}
}

func toServer(u session.Update) types.ServerMessage {
	return types.ServerMessage{
		Type:    string(u.Type),
		Version: u.Version,
		Patches: u.Patches,
		Error:   u.Err,
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}

func named(log *zap.Logger, name string) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log.Named(name)
}
