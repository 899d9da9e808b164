package hud

import (
	"errors"
	"fmt"
	"math"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/DoyleJ11/arena-hud/internal/dispatch"
	"github.com/DoyleJ11/arena-hud/internal/dom"
	"github.com/DoyleJ11/arena-hud/internal/overlay"
	"github.com/DoyleJ11/arena-hud/internal/ratelimit"
	"github.com/DoyleJ11/arena-hud/internal/reconcile"
)

var (
	ErrUnknownIntent = errors.New("unknown intent")
	ErrThrottled     = errors.New("intent throttled")
)

const searchWaitLabel = "PATIENTEZ %dS"

// intent is one browser action. Gated intents consume a cooldown of kind
// before run; an empty kind is never throttled.
type intent struct {
	kind ratelimit.Kind
	run  func(c *Controller, p gjson.Result)
}

var intents = map[string]intent{
	"tab":        {ratelimit.KindTab, (*Controller).switchTab},
	"selectMode": {ratelimit.KindMode, (*Controller).pickMode},
	"openInvite": {run: func(c *Controller, _ gjson.Result) { c.el(idInvitePopup).Show() }},
	"cancelInvite": {run: func(c *Controller, _ gjson.Result) {
		c.el(idInvitePopup).Hide()
	}},
	"invite": {ratelimit.KindInvite, func(c *Controller, p gjson.Result) {
		target := p.Get("targetId").Int()
		if target < 1 {
			return
		}
		c.caller.Call("invitePlayer", map[string]any{"targetId": target}, nil)
		c.el(idInvitePopup).Hide()
	}},
	"toggleReady": {ratelimit.KindReady, func(c *Controller, _ gjson.Result) {
		if c.searching {
			return
		}
		c.caller.Call("toggleReady", nil, nil)
	}},
	"leaveGroup":   {ratelimit.KindLeaveGroup, callOnly("leaveGroup")},
	"cancelSearch": {ratelimit.KindCancelSearch, callOnly("cancelSearch")},
	"kick": {ratelimit.KindKick, func(c *Controller, p gjson.Result) {
		c.caller.Call("kickPlayer", map[string]any{"targetId": p.Get("targetId").Value()}, nil)
	}},
	"acceptInvite": {ratelimit.KindAcceptInvite, func(c *Controller, p gjson.Result) {
		id := p.Get("inviterId")
		c.caller.Call("acceptInvite", map[string]any{"inviterId": id.Value()}, nil)
		c.dropInvitation(id.String())
	}},
	"declineInvite": {ratelimit.KindDeclineInvite, func(c *Controller, p gjson.Result) {
		c.caller.Call("declineInvite", nil, nil)
		c.dropInvitation(p.Get("inviterId").String())
	}},
	"openInvitations": {run: func(c *Controller, _ gjson.Result) {
		c.el(idInvitationsPanel).Show()
	}},
	"closeInvitations": {run: func(c *Controller, _ gjson.Result) {
		c.el(idInvitationsPanel).Hide()
	}},
	"closeUI": {run: func(c *Controller, _ gjson.Result) {
		c.el(idMainUI).RemoveClass("active")
		c.caller.Call("closeUI", nil, nil)
	}},
	"statsMode": {ratelimit.KindStatsMode, func(c *Controller, p gjson.Result) {
		mode := p.Get("mode").String()
		c.markActive("stats-mode-", mode)
		setText(c.el(idStatsTitle), "Statistiques "+c.upper.String(mode))
		c.caller.Call("getPlayerStatsByMode", map[string]any{"mode": mode}, c.showModeStats)
	}},
	"leaderboardMode": {ratelimit.KindLeaderboardMode, func(c *Controller, p gjson.Result) {
		mode := p.Get("mode").String()
		c.markActive("lb-mode-", mode)
		c.caller.Call("getLeaderboardByMode", map[string]any{"mode": mode}, c.showLeaderboard)
	}},
	"selectZone": {run: func(c *Controller, p gjson.Result) {
		zone := int(p.Get("zone").Int())
		if zone == 0 || c.zoneFull(zone) {
			return
		}
		c.caller.Call("zoneSelected", map[string]any{"zone": zone}, nil)
	}},
	"respawn": {run: callOnly("requestRespawn")},

	"squadCreate":  {run: callOnly("createSquad")},
	"squadLeave":   {run: callOnly("leaveSquad")},
	"squadDisband": {run: callOnly("disbandSquad")},
	"squadInvite": {ratelimit.KindInvite, func(c *Controller, p gjson.Result) {
		if id := p.Get("playerId").String(); id != "" {
			c.caller.Call("invitePlayer", map[string]any{"playerId": id}, nil)
		}
	}},
	"squadKick": {ratelimit.KindKick, func(c *Controller, p gjson.Result) {
		if id := p.Get("playerId").String(); id != "" {
			c.caller.Call("kickPlayer", map[string]any{"playerId": id}, nil)
		}
	}},
	"squadAccept":  {ratelimit.KindAcceptInvite, callOnly("acceptInvite")},
	"squadDecline": {ratelimit.KindDeclineInvite, callOnly("declineInvite")},
	"squadClose": {run: func(c *Controller, _ gjson.Result) {
		c.caller.Call("closeSquadMenu", nil, nil)
		c.CloseSquad(dispatch.CloseSquad{})
	}},

	"interactCopyId":     {run: interactAction("playerInteract:copyId")},
	"interactCopyOutfit": {run: interactAction("playerInteract:copyOutfit")},
}

func callOnly(action string) func(*Controller, gjson.Result) {
	return func(c *Controller, _ gjson.Result) { c.caller.Call(action, nil, nil) }
}

func interactAction(action string) func(*Controller, gjson.Result) {
	return func(c *Controller, _ gjson.Result) {
		if c.interact == nil {
			return
		}
		c.caller.Call(action, map[string]any{"serverId": string(c.interact.ServerID)}, nil)
		c.HidePlayerInteract(dispatch.HidePlayerInteract{})
	}
}

// Intent handles one browser action. payload is the raw JSON object the
// page sent, possibly empty.
func (c *Controller) Intent(action string, payload []byte) error {
	if action == "search" {
		return c.search()
	}
	in, ok := intents[action]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownIntent, action)
	}
	if in.kind != "" && !c.limiter.TryConsume(in.kind) {
		c.log.Debug("intent throttled",
			zap.String("intent", action),
			zap.Int("remaining_s", c.limiter.RemainingSeconds(in.kind)))
		return ErrThrottled
	}
	in.run(c, gjson.ParseBytes(payload))
	return nil
}

// search only fires when the button is enabled. A throttled click shows the
// wait in the button label until the cooldown ends.
func (c *Controller) search() error {
	if c.searching || !reconcile.SearchEligibility(c.mode, c.group).Enabled {
		return nil
	}
	if !c.limiter.TryConsume(ratelimit.KindSearch) {
		wait := c.limiter.RemainingSeconds(ratelimit.KindSearch)
		c.log.Debug("intent throttled", zap.String("intent", "search"), zap.Int("remaining_s", wait))
		setText(c.el(idSearchText), fmt.Sprintf(searchWaitLabel, wait))
		c.overlays.After(overlay.SlotSearchHint, c.limiter.Remaining(ratelimit.KindSearch), c.renderSearchButton)
		return ErrThrottled
	}
	c.overlays.Cancel(overlay.SlotSearchHint)
	c.renderSearchButton()
	c.caller.Call("joinQueue", map[string]any{"mode": c.mode.Name}, nil)
	return nil
}

func (c *Controller) switchTab(p gjson.Result) {
	name := p.Get("tab").String()
	if name == "" {
		return
	}
	for _, t := range c.layout.Tabs {
		c.el("tab-"+t).ToggleClass("active", t == name)
		c.el(t+"-tab").ToggleClass("active", t == name)
	}
	if name == "lobby" && c.hasLobby() {
		c.refreshLobby()
	}
}

func (c *Controller) pickMode(p gjson.Result) {
	name := p.Get("mode").String()
	players := p.Get("players").Int()
	if name == "" || players < 1 || players > math.MaxInt32 {
		return
	}
	c.selectMode(name, int(players))
}

func (c *Controller) markActive(prefix, mode string) {
	for _, m := range c.layout.Modes {
		c.el(prefix+m).ToggleClass("active", m == mode)
	}
}

func (c *Controller) dropInvitation(id string) {
	if c.invites != nil && id != "" {
		c.invites.Remove(id)
	}
}

// intentButton adds a button the page wires back as an intent.
func (c *Controller) intentButton(parent *dom.Node, class, text, action string) *dom.Node {
	b := c.child(parent, "button", class, text)
	b.SetAttr("data-intent", action)
	return b
}
