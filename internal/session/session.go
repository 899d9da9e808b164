// Package session runs one surface: a single goroutine owns the page model,
// the scheduler and the feature controller, and every host message, browser
// intent, timer and animation frame is handled on it in arrival order.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/DoyleJ11/arena-hud/internal/dispatch"
	"github.com/DoyleJ11/arena-hud/internal/dom"
	"github.com/DoyleJ11/arena-hud/internal/gateway"
	"github.com/DoyleJ11/arena-hud/internal/hud"
	"github.com/DoyleJ11/arena-hud/internal/ratelimit"
	"github.com/DoyleJ11/arena-hud/internal/sched"
)

var ErrClosed = errors.New("session closed")

const DefaultFrameInterval = 16 * time.Millisecond

type UpdateType string

const (
	UpdateSnapshot UpdateType = "Snapshot"
	UpdatePatch    UpdateType = "Patch"
	UpdateError    UpdateType = "Error"
)

// Update is what a joined browser receives.
type Update struct {
	Type    UpdateType
	Version int
	Patches []dom.Patch
	Err     string
}

// View is a read-only summary for diagnostics and tests.
type View struct {
	Surface    string `json:"surface"`
	Version    int    `json:"version"`
	NumClients int    `json:"numClients"`
	Nodes      int    `json:"nodes"`
	Pending    int    `json:"pending"`
	Open       bool   `json:"open"`
	Searching  bool   `json:"searching"`
	InMatch    bool   `json:"inMatch"`
	KillFeed   int    `json:"killFeed"`
}

// Sender delivers outbound actions to the host.
type Sender interface {
	Send(ctx context.Context, action string, payload any) *gateway.Response
}

// Recorder receives one entry per host message.
type Recorder interface {
	Record(surface, action string, raw []byte, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) Record(string, string, []byte, string) {}

type Config struct {
	Surface         string
	Gateway         Sender
	Journal         Recorder
	Clock           clock.Clock
	FrameInterval   time.Duration
	Cooldowns       map[ratelimit.Kind]time.Duration
	CooldownDefault time.Duration
	Log             *zap.Logger
}

type Session struct {
	surface string
	inbox   chan Msg
	done    chan struct{}

	tree    *dom.Tree
	sched   *sched.Scheduler
	hud     *hud.Controller
	disp    *dispatch.Dispatcher
	gw      Sender
	journal Recorder
	clock   clock.Clock
	frame   time.Duration

	version int
	clients map[string]chan Update

	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
}

func New(parent context.Context, cfg Config) *Session {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = DefaultFrameInterval
	}
	if cfg.Cooldowns == nil {
		cfg.Cooldowns = ratelimit.DefaultCooldowns()
	}
	if cfg.Journal == nil {
		cfg.Journal = nopRecorder{}
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	log := cfg.Log.Named("session").With(zap.String("surface", cfg.Surface))

	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		surface: cfg.Surface,
		inbox:   make(chan Msg, 64),
		done:    make(chan struct{}),
		tree:    dom.NewTree(),
		sched:   sched.New(cfg.Clock),
		gw:      cfg.Gateway,
		journal: cfg.Journal,
		clock:   cfg.Clock,
		frame:   cfg.FrameInterval,
		clients: make(map[string]chan Update),
		ctx:     ctx,
		cancel:  cancel,
		log:     log,
	}
	lim := ratelimit.New(cfg.Clock, cfg.Cooldowns, cfg.CooldownDefault)
	s.hud = hud.New(s.tree, s.sched, lim, s, hud.LayoutFor(cfg.Surface), log)
	s.disp = dispatch.New(s.hud, log)

	go s.loop()
	return s
}

func (s *Session) Surface() string { return s.surface }

func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Done is closed once the loop has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Post enqueues m unless ctx ends or the session is gone first.
func (s *Session) Post(ctx context.Context, m Msg) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrClosed
	}
}

// Call implements hud.Caller. The request runs off the loop; then runs on
// the loop once the response (or nil) is back.
func (s *Session) Call(action string, payload any, then func(*gateway.Response)) {
	if s.gw == nil {
		if then != nil {
			then(nil)
		}
		return
	}
	go func() {
		resp := s.gw.Send(s.ctx, action, payload)
		if then == nil {
			return
		}
		select {
		case s.inbox <- Completion{Action: action, Then: then, Resp: resp}:
		case <-s.done:
		}
	}()
}

func (s *Session) loop() {
	defer close(s.done)

	wake := s.clock.Timer(time.Hour)
	wake.Stop()
	defer wake.Stop()

	var frames *clock.Ticker
	defer func() {
		if frames != nil {
			frames.Stop()
		}
	}()

	for {
		s.arm(wake)

		var frameC <-chan time.Time
		if s.sched.HasFrames() {
			if frames == nil {
				frames = s.clock.Ticker(s.frame)
			}
			frameC = frames.C
		} else if frames != nil {
			frames.Stop()
			frames = nil
		}

		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case <-wake.C:
			s.guard("timer", func() { s.sched.RunDue() })

		case <-frameC:
			s.guard("frame", func() { s.sched.RunFrame() })

		case m := <-s.inbox:
			if !s.handle(m) {
				return
			}
		}
		s.flush()
	}
}

// arm points the wake timer at the next scheduler deadline. A stale fire is
// harmless: RunDue only runs what is due.
func (s *Session) arm(wake *clock.Timer) {
	next, ok := s.sched.Next()
	if !ok {
		wake.Stop()
		return
	}
	d := next.Sub(s.clock.Now())
	if d < 0 {
		d = 0
	}
	wake.Reset(d)
}

func (s *Session) handle(m Msg) bool {
	switch msg := m.(type) {
	case HostMessage:
		outcome := s.disp.Dispatch(msg.Raw)
		s.journal.Record(s.surface, dispatch.PeekAction(msg.Raw), msg.Raw, string(outcome))

	case Intent:
		var err error
		s.guard("intent", func() { err = s.hud.Intent(msg.Action, msg.Payload) })
		if errors.Is(err, hud.ErrUnknownIntent) {
			s.flush()
			s.send(msg.ClientID, Update{Type: UpdateError, Version: s.version, Err: err.Error()})
		}

	case Mount:
		s.tree.Mount(msg.Seeds...)
		s.flush()
		s.send(msg.ClientID, s.snapshot())

	case Join:
		s.clients[msg.ClientID] = msg.Outbox
		s.send(msg.ClientID, s.snapshot())

	case Leave:
		delete(s.clients, msg.ClientID)

	case Completion:
		s.guard("completion", func() { msg.Then(msg.Resp) })

	case GetState:
		msg.Reply <- s.view()

	case Shutdown:
		s.shutdown()
		return false
	}
	return true
}

// guard keeps a panicking callback from taking the loop down.
func (s *Session) guard(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("callback panicked", zap.String("in", what), zap.Any("panic", r), zap.StackSkip("stack", 2))
		}
	}()
	fn()
}

func (s *Session) snapshot() Update {
	return Update{Type: UpdateSnapshot, Version: s.version, Patches: s.tree.Snapshot()}
}

// flush sends pending patches as one batch. Clients whose outbox is full
// are dropped.
func (s *Session) flush() {
	patches := s.tree.Drain()
	if len(patches) == 0 {
		return
	}
	s.version++
	u := Update{Type: UpdatePatch, Version: s.version, Patches: patches}
	for id := range s.clients {
		s.send(id, u)
	}
}

func (s *Session) send(clientID string, u Update) {
	ch, ok := s.clients[clientID]
	if !ok {
		return
	}
	select {
	case ch <- u:
	default:
		s.log.Warn("dropping slow client", zap.String("client", clientID))
		close(ch)
		delete(s.clients, clientID)
	}
}

func (s *Session) view() View {
	return View{
		Surface:    s.surface,
		Version:    s.version,
		NumClients: len(s.clients),
		Nodes:      s.tree.Len(),
		Pending:    s.sched.Pending(),
		Open:       s.hud.Open(),
		Searching:  s.hud.Searching(),
		InMatch:    s.hud.InMatch(),
		KillFeed:   s.hud.KillFeedLen(),
	}
}

func (s *Session) shutdown() {
	s.guard("reset", s.hud.Reset)
	s.sched.Stop()
	for id, ch := range s.clients {
		close(ch)
		delete(s.clients, id)
	}
	s.cancel()
}
