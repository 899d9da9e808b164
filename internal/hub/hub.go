package hub

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/DoyleJ11/arena-hud/internal/session"
)

var ErrHubClosed = errors.New("hub closed")

// Factory starts the session for a surface.
type Factory func(ctx context.Context, surface string) *session.Session

type HubMsg interface{ isHubMsg() }

type GetSession struct {
	Surface string
	Reply   chan *session.Session
}

// EnsureSession returns the surface's session, starting it if needed.
type EnsureSession struct {
	Surface string
	Reply   chan *session.Session
}

type RemoveSession struct {
	Surface string
}

type ListSessions struct {
	Reply chan []string
}

type ShutdownHub struct{}

func (GetSession) isHubMsg()    {}
func (EnsureSession) isHubMsg() {}
func (RemoveSession) isHubMsg() {}
func (ListSessions) isHubMsg()  {}
func (ShutdownHub) isHubMsg()   {}

type Hub struct {
	inbox    chan HubMsg
	sessions map[string]*session.Session
	factory  Factory
	ctx      context.Context
	cancel   context.CancelFunc
	log      *zap.Logger
}

func NewHub(parent context.Context, factory Factory, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		sessions: make(map[string]*session.Session),
		factory:  factory,
		ctx:      ctx,
		cancel:   cancel,
		log:      log.Named("hub"),
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Ensure is EnsureSession for callers outside the hub.
func (h *Hub) Ensure(ctx context.Context, surface string) (*session.Session, error) {
	return h.ask(ctx, func(reply chan *session.Session) HubMsg {
		return EnsureSession{Surface: surface, Reply: reply}
	})
}

// Get returns nil when the surface has no session.
func (h *Hub) Get(ctx context.Context, surface string) (*session.Session, error) {
	return h.ask(ctx, func(reply chan *session.Session) HubMsg {
		return GetSession{Surface: surface, Reply: reply}
	})
}

// List returns the surfaces that have a session, sorted.
func (h *Hub) List(ctx context.Context) ([]string, error) {
	reply := make(chan []string, 1)
	select {
	case h.inbox <- ListSessions{Reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.ctx.Done():
		return nil, ErrHubClosed
	}
	select {
	case names := <-reply:
		return names, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.ctx.Done():
		return nil, ErrHubClosed
	}
}

func (h *Hub) ask(ctx context.Context, build func(chan *session.Session) HubMsg) (*session.Session, error) {
	reply := make(chan *session.Session, 1)
	select {
	case h.inbox <- build(reply):
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.ctx.Done():
		return nil, ErrHubClosed
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.ctx.Done():
		return nil, ErrHubClosed
	}
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case GetSession:
				msg.Reply <- h.live(msg.Surface) // may be nil

			case EnsureSession:
				if s := h.live(msg.Surface); s != nil {
					msg.Reply <- s
					break
				}
				s := h.factory(h.ctx, msg.Surface)
				h.sessions[msg.Surface] = s
				h.log.Info("session started", zap.String("surface", msg.Surface))
				msg.Reply <- s

			case RemoveSession:
				if s := h.sessions[msg.Surface]; s != nil {
					stop(s)
					delete(h.sessions, msg.Surface)
				}

			case ListSessions:
				names := make([]string, 0, len(h.sessions))
				for name := range h.sessions {
					names = append(names, name)
				}
				sort.Strings(names)
				msg.Reply <- names

			case ShutdownHub:
				h.shutdown()
				h.cancel()
				return
			}
		}
	}
}

// live forgets a session whose loop has already exited.
func (h *Hub) live(surface string) *session.Session {
	s := h.sessions[surface]
	if s == nil {
		return nil
	}
	select {
	case <-s.Done():
		delete(h.sessions, surface)
		return nil
	default:
		return s
	}
}

func (h *Hub) shutdown() {
	for _, s := range h.sessions {
		stop(s)
	}
	clear(h.sessions)
}

func stop(s *session.Session) {
	select {
	case s.Inbox() <- session.Shutdown{}:
	case <-s.Done():
	}
}
