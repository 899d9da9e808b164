package hud

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/DoyleJ11/arena-hud/internal/dispatch"
	"github.com/DoyleJ11/arena-hud/internal/dom"
	"github.com/DoyleJ11/arena-hud/internal/gateway"
	"github.com/DoyleJ11/arena-hud/internal/ratelimit"
	"github.com/DoyleJ11/arena-hud/internal/reconcile"
)

const (
	DefaultAvatar = "https://cdn.discordapp.com/embed/avatars/0.png"

	readyBlockedTitle = "Annulez d'abord la recherche"
)

// OpenUI shows the menu and asks the host for fresh group and queue
// snapshots. Pending invitations and cooldowns carry over from before.
func (c *Controller) OpenUI(m dispatch.OpenUI) {
	c.open = true
	c.el(idContainer).Show()
	c.el(idMainUI).AddClass("active")

	if len(m.Zones) > 0 {
		c.zones = m.Zones
	}
	c.renderZones()

	if m.IsSearching {
		setStyle(c.el(idLobbyContent), "display", "none")
		c.el(idSearchStatus).Show()
		c.searching = true
	} else if c.searching {
		c.hideSearch()
	}

	c.renderGroup()
	c.renderQueue(c.layout.Modes)
	if c.hasLobby() {
		c.refreshLobby()
	}
}

func (c *Controller) CloseUI(dispatch.CloseUI) {
	c.open = false
	c.el(idContainer).Hide()
	c.el(idMainUI).RemoveClass("active")
}

func (c *Controller) hasLobby() bool { return c.el(idSearchBtn) != nil }

// refreshLobby asks the host for the queue counts and the roster.
func (c *Controller) refreshLobby() {
	c.caller.Call("getQueueStats", nil, func(r *gateway.Response) {
		var q reconcile.Queue
		if err := r.Decode(&q); err != nil {
			c.log.Debug("queue stats unavailable", zap.Error(err))
			return
		}
		c.UpdateQueueStats(dispatch.UpdateQueueStats{Stats: q})
	})
	c.caller.Call("getGroupInfo", nil, func(r *gateway.Response) {
		var g reconcile.Group
		if err := r.Decode(&g); err != nil {
			c.UpdateGroup(dispatch.UpdateGroup{})
			return
		}
		c.UpdateGroup(dispatch.UpdateGroup{Group: &g})
	})
}

func (c *Controller) UpdateGroup(m dispatch.UpdateGroup) {
	c.group = m.Group
	c.renderGroup()
}

func (c *Controller) renderGroup() {
	for _, v := range reconcile.Slots(c.group, c.mode, c.layout.Slots) {
		c.renderSlot(c.el("slot-"+strconv.Itoa(v.Index)), v)
	}

	ready := false
	if me, ok := c.group.Me(); ok {
		ready = me.IsReady
	}
	c.el(idReadyBtn).ToggleClass("ready", ready)
	setText(c.el(idReadyText), reconcile.ReadyLabel(ready))

	leave := c.el(idLeaveGroupBtn)
	if c.group != nil && len(c.group.Members) > 1 {
		leave.Show()
	} else {
		leave.Hide()
	}

	c.renderReadyButton()
	c.renderSearchButton()
}

func (c *Controller) renderSlot(slot *dom.Node, v reconcile.SlotView) {
	if slot == nil {
		return
	}
	slot.SetClassName(v.ClassName())
	slot.Clear()

	switch v.State {
	case reconcile.SlotMember:
		m := v.Member
		content := c.child(slot, "div", "slot-content", "")
		avatar := c.child(content, "img", "player-avatar", "")
		if m.Avatar != "" {
			avatar.SetAttr("src", m.Avatar)
		} else {
			avatar.SetAttr("src", DefaultAvatar)
		}
		name := m.Name
		if m.IsYou {
			name += " (Vous)"
		}
		c.child(content, "div", "player-name", name)
		if m.IsLeader {
			c.child(content, "span", "host-badge", "👑 Hôte")
		} else {
			c.child(content, "span", "player-id", "ID: "+strconv.Itoa(m.ID))
		}
		indicator := c.child(content, "div", "ready-indicator", "")
		indicator.ToggleClass("ready", m.IsReady)
		if v.CanKick {
			kick := c.child(content, "button", "btn-kick", "KICK")
			kick.SetAttr("data-intent", "kick")
			kick.SetAttr("data-target-id", strconv.Itoa(m.ID))
		}
	case reconcile.SlotSolo:
		content := c.child(slot, "div", "slot-content", "")
		c.child(content, "img", "player-avatar", "").SetAttr("src", DefaultAvatar)
		c.child(content, "div", "player-name", "Vous")
		c.child(content, "span", "host-badge", "👑 Hôte")
		c.child(content, "div", "ready-indicator", "")
	case reconcile.SlotInvite:
		content := c.child(slot, "div", "empty-content", "")
		c.child(content, "div", "add-icon", "+")
		c.child(content, "div", "slot-text", "Cliquez pour inviter")
		slot.SetAttr("data-intent", "openInvite")
	default:
		label := "Sélectionnez un mode"
		if c.mode.Selected() {
			label = "Non disponible"
		}
		content := c.child(slot, "div", "empty-content", "")
		c.child(content, "div", "add-icon", "+")
		c.child(content, "div", "slot-text", label)
	}
	if v.State != reconcile.SlotInvite {
		slot.RemoveAttr("data-intent")
	}
}

// renderReadyButton keeps the ready button unusable while a search runs.
func (c *Controller) renderReadyButton() {
	btn := c.el(idReadyBtn)
	if btn == nil {
		return
	}
	if c.searching {
		btn.SetDisabled(true)
		setStyle(btn, "opacity", "0.5")
		setStyle(btn, "cursor", "not-allowed")
		btn.SetAttr("title", readyBlockedTitle)
		return
	}
	btn.SetDisabled(false)
	setStyle(btn, "opacity", "1")
	setStyle(btn, "cursor", "pointer")
	btn.RemoveAttr("title")
}

func (c *Controller) renderSearchButton() {
	e := reconcile.SearchEligibility(c.mode, c.group)
	c.el(idSearchBtn).SetDisabled(!e.Enabled)
	setText(c.el(idSearchText), e.Label)
}

func (c *Controller) ShowInvite(m dispatch.ShowInvite) {
	f := c.invitations()
	if f == nil {
		return
	}
	key := string(m.InviterID)
	if key == "" || f.Has(key) {
		return
	}

	item := c.tree.Create("div", "invitation-item")
	avatar := m.InviterAvatar
	if avatar == "" {
		avatar = DefaultAvatar
	}
	c.child(item, "img", "invitation-avatar", "").SetAttr("src", avatar)
	c.child(item, "div", "invitation-from", m.InviterName)
	c.child(item, "div", "invitation-message", "Vous invite à rejoindre son groupe")
	accept := c.child(item, "button", "btn-accept-inv", "✓ Accepter")
	accept.SetAttr("data-intent", "acceptInvite")
	accept.SetAttr("data-inviter-id", key)
	decline := c.child(item, "button", "btn-decline-inv", "✕ Refuser")
	decline.SetAttr("data-intent", "declineInvite")
	decline.SetAttr("data-inviter-id", key)

	f.Push(item, key)
}

func (c *Controller) renderBadge(pending int) {
	badge := c.el(idNotificationBadge)
	if pending > 0 {
		setText(badge, strconv.Itoa(pending))
		badge.Show()
		c.el(idNoInvitations).Hide()
	} else {
		badge.Hide()
		c.el(idNoInvitations).Show()
	}
}

func (c *Controller) CloseInvitationsPanel(dispatch.CloseInvitationsPanel) {
	c.el(idInvitationsPanel).Hide()
}

func (c *Controller) SearchStarted(m dispatch.SearchStarted) {
	c.searching = true
	setStyle(c.el(idSearchBtn), "display", "none")
	c.el(idSearchStatus).Show()
	setText(c.el(idSearchMode), c.upper.String(m.Mode))
	setText(c.el(idSearchTimer), mmss(0))
	c.renderReadyButton()
}

func (c *Controller) UpdateSearchTimer(m dispatch.UpdateSearchTimer) {
	setText(c.el(idSearchTimer), mmss(m.Elapsed))
}

func (c *Controller) MatchFound(dispatch.MatchFound) {
	c.hideSearch()
	c.inMatch = true
	c.limiter.Reset(ratelimit.KindSearch)
}

func (c *Controller) SearchCancelled(dispatch.SearchCancelled) {
	c.hideSearch()
	c.limiter.Reset(ratelimit.KindSearch)
}

func (c *Controller) hideSearch() {
	c.searching = false
	c.el(idSearchStatus).Hide()
	setStyle(c.el(idSearchBtn), "display", "flex")
	setStyle(c.el(idLobbyContent), "display", "")
	c.renderReadyButton()
}

// UpdateQueueStats replaces the queue snapshot and redraws only the modes
// whose count moved. A missing snapshot keeps the previous one.
func (c *Controller) UpdateQueueStats(m dispatch.UpdateQueueStats) {
	if m.Stats == nil {
		return
	}
	prev := c.queue
	c.queue = m.Stats.Clone()
	c.renderQueue(c.queue.Diff(prev, c.layout.Modes))
}

func (c *Controller) renderQueue(modes []string) {
	for _, mode := range modes {
		card := c.el("queue-" + mode)
		count := c.el("queue-" + mode + "-count")
		if card == nil || count == nil {
			continue
		}
		v := c.queue[mode]
		if c.recon.CounterOn(count, card, v, reconcile.QueuePulse) {
			card.ToggleClass("has-players", v > 0)
		}
	}
}

// selectMode applies a mode card click.
func (c *Controller) selectMode(name string, players int) {
	for _, mode := range c.layout.Modes {
		c.el("mode-"+mode).ToggleClass("selected", mode == name)
	}
	c.mode = reconcile.Mode{Name: name, Players: players}
	setText(c.el(idModeDisplay), c.upper.String(name))
	c.renderGroup()
}
