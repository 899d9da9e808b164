// Package hud renders host messages into the page model and turns browser
// intents into outbound host actions. A Controller belongs to one surface
// and is only ever touched from that surface's event loop.
package hud

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/DoyleJ11/arena-hud/internal/dispatch"
	"github.com/DoyleJ11/arena-hud/internal/dom"
	"github.com/DoyleJ11/arena-hud/internal/feed"
	"github.com/DoyleJ11/arena-hud/internal/gateway"
	"github.com/DoyleJ11/arena-hud/internal/overlay"
	"github.com/DoyleJ11/arena-hud/internal/ratelimit"
	"github.com/DoyleJ11/arena-hud/internal/reconcile"
	"github.com/DoyleJ11/arena-hud/internal/sched"
)

// Caller sends an outbound action. then, if non-nil, runs on the event loop
// with the response, which is nil on any failure.
type Caller interface {
	Call(action string, payload any, then func(*gateway.Response))
}

const (
	KillFeedMax      = 6
	KillFeedLifetime = 6 * time.Second
	KillFeedFade     = 400 * time.Millisecond

	InvitationLifetime = 30 * time.Second
	InvitationMax      = 5

	CombatOverlayHold = time.Second
	RoundEndDelay     = 1500 * time.Millisecond
	RoundEndHold      = 1500 * time.Millisecond
	MatchEndHold      = 1500 * time.Millisecond

	nameMaxRunes = 15
)

type Controller struct {
	log      *zap.Logger
	tree     *dom.Tree
	sched    *sched.Scheduler
	layout   Layout
	limiter  *ratelimit.Limiter
	overlays *overlay.Manager
	recon    *reconcile.Reconciler
	caller   Caller
	upper    cases.Caser

	kills   *feed.Feed
	invites *feed.Feed

	open      bool
	searching bool
	inMatch   bool
	mode      reconcile.Mode
	group     *reconcile.Group
	queue     reconcile.Queue
	zones     []dispatch.Zone
	zoneCards map[int]zoneCard
	squad     *dispatch.OpenSquad
	interact  *dispatch.ShowPlayerInteract
}

var _ dispatch.Handler = (*Controller)(nil)

func New(tree *dom.Tree, s *sched.Scheduler, lim *ratelimit.Limiter, caller Caller, layout Layout, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		log:       log.Named("hud"),
		tree:      tree,
		sched:     s,
		layout:    layout,
		limiter:   lim,
		overlays:  overlay.NewManager(s),
		recon:     reconcile.New(s),
		caller:    caller,
		upper:     cases.Upper(language.French),
		queue:     reconcile.Queue{},
		zoneCards: make(map[int]zoneCard),
	}
}

// Reset drops every timer and every piece of cached state. Transient
// elements whose hide timer is cancelled are hidden right away.
func (c *Controller) Reset() {
	c.overlays.CancelAll()
	c.hideTransient()
	if c.kills != nil {
		c.kills.Clear()
	}
	if c.invites != nil {
		c.invites.Clear()
	}
	c.recon.Reset()
	c.limiter.ResetAll()
	for _, mode := range c.layout.Modes {
		c.el("mode-" + mode).RemoveClass("selected")
	}

	c.searching = false
	c.inMatch = false
	c.mode = reconcile.Mode{}
	c.group = nil
	c.queue = reconcile.Queue{}
	c.squad = nil
	c.interact = nil
}

func (c *Controller) hideTransient() {
	for _, id := range []string{
		idCombatOverlay, idRoundEnd, idMatchEnd, idPress, idDeathScreen,
	} {
		c.el(id).Hide()
	}
	for _, r := range rings {
		c.el(r.container).Hide()
	}
}

// Overlays exposes the overlay manager, mostly for tests and diagnostics.
func (c *Controller) Overlays() *overlay.Manager { return c.overlays }

func (c *Controller) Searching() bool { return c.searching }

func (c *Controller) InMatch() bool { return c.inMatch }

func (c *Controller) Open() bool { return c.open }

// KillFeedLen is the number of visible kill feed rows.
func (c *Controller) KillFeedLen() int {
	if c.kills == nil {
		return 0
	}
	return c.kills.Len()
}

// Invitations lists pending inviter ids, newest first.
func (c *Controller) Invitations() []string {
	if c.invites == nil {
		return nil
	}
	return c.invites.Keys()
}

func (c *Controller) el(id string) *dom.Node { return c.tree.ByID(id) }

// killFeed binds the feed to its container the first time the page has it.
func (c *Controller) killFeed() *feed.Feed {
	if c.kills != nil {
		return c.kills
	}
	container := c.el(c.layout.KillFeed)
	if container == nil {
		return nil
	}
	c.kills = feed.New(c.sched, feed.Config{
		Container: container,
		Max:       KillFeedMax,
		Lifetime:  KillFeedLifetime,
		Fade:      KillFeedFade,
		ExitClass: c.layout.KillExitClass,
	})
	return c.kills
}

func (c *Controller) invitations() *feed.Feed {
	if c.invites != nil {
		return c.invites
	}
	container := c.el(idInvitationsList)
	if container == nil {
		return nil
	}
	c.invites = feed.New(c.sched, feed.Config{
		Container: container,
		Max:       InvitationMax,
		Lifetime:  InvitationLifetime,
		OnChange:  c.renderBadge,
	})
	return c.invites
}

// child creates an element under parent.
func (c *Controller) child(parent *dom.Node, tag, class, text string) *dom.Node {
	n := c.tree.Create(tag, strings.Fields(class)...)
	if text != "" {
		n.SetText(text)
	}
	parent.Append(n)
	return n
}

func setText(n *dom.Node, s string) {
	if n.Text() != s {
		n.SetText(s)
	}
}

func setStyle(n *dom.Node, prop, v string) {
	if n.Style(prop) != v {
		n.SetStyle(prop, v)
	}
}

// truncateName shortens long player names to fit a feed row.
func truncateName(name string) string {
	if name == "" {
		return "Unknown"
	}
	if utf8.RuneCountInString(name) <= nameMaxRunes {
		return name
	}
	r := []rune(name)
	return string(r[:nameMaxRunes-3]) + "..."
}

// mmss renders seconds as MM:SS.
func mmss(total int) string {
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
