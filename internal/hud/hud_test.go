package hud

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DoyleJ11/arena-hud/internal/dispatch"
	"github.com/DoyleJ11/arena-hud/internal/dom"
	"github.com/DoyleJ11/arena-hud/internal/gateway"
	"github.com/DoyleJ11/arena-hud/internal/overlay"
	"github.com/DoyleJ11/arena-hud/internal/ratelimit"
	"github.com/DoyleJ11/arena-hud/internal/reconcile"
	"github.com/DoyleJ11/arena-hud/internal/sched/schedtest"
)

type call struct {
	action  string
	payload any
}

// fakeCaller answers synchronously from a canned table.
type fakeCaller struct {
	calls     []call
	responses map[string]*gateway.Response
}

func (f *fakeCaller) Call(action string, payload any, then func(*gateway.Response)) {
	f.calls = append(f.calls, call{action, payload})
	if then != nil {
		then(f.responses[action])
	}
}

func (f *fakeCaller) actions() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.action)
	}
	return out
}

type fixture struct {
	drv    *schedtest.Driver
	tree   *dom.Tree
	caller *fakeCaller
	lim    *ratelimit.Limiter
	hud    *Controller
}

func newFixture(t *testing.T, layout Layout, seeds ...dom.Seed) *fixture {
	t.Helper()
	drv := schedtest.New()
	tr := dom.NewTree()
	tr.Mount(seeds...)
	fc := &fakeCaller{responses: map[string]*gateway.Response{}}
	lim := ratelimit.New(drv.Mock, nil, 0)
	return &fixture{
		drv:    drv,
		tree:   tr,
		caller: fc,
		lim:    lim,
		hud:    New(tr, drv.Sched, lim, fc, layout, zap.NewNop()),
	}
}

func ids(list ...string) []dom.Seed {
	out := make([]dom.Seed, 0, len(list))
	for _, id := range list {
		out = append(out, dom.Seed{ID: id})
	}
	return out
}

func hidden(list ...string) []dom.Seed {
	out := make([]dom.Seed, 0, len(list))
	for _, id := range list {
		out = append(out, dom.Seed{ID: id, Class: dom.ClassHidden})
	}
	return out
}

func seeds(groups ...[]dom.Seed) []dom.Seed {
	var out []dom.Seed
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func (f *fixture) text(id string) string { return f.tree.ByID(id).Text() }

func (f *fixture) hidden(id string) bool { return f.tree.ByID(id).Hidden() }

func TestKillFeed_CapFadeAndExpiry(t *testing.T) {
	f := newFixture(t, LobbyLayout, ids("killfeed-container")...)
	container := f.tree.ByID("killfeed-container")

	for i := 0; i < 7; i++ {
		f.hud.KillFeed(dispatch.KillFeed{Killer: "Bob", KillerID: "1", Victim: "Alice", VictimID: "2"})
	}
	assert.Equal(t, 6, f.hud.KillFeedLen())
	kids := container.Children()
	require.Len(t, kids, 7, "evicted row still plays its exit")
	assert.True(t, kids[6].HasClass("fade-out"))

	f.drv.AdvanceTimers(400 * time.Millisecond)
	assert.Len(t, container.Children(), 6)

	f.drv.AdvanceTimers(5600 * time.Millisecond)
	assert.Equal(t, 0, f.hud.KillFeedLen())
	assert.Len(t, container.Children(), 6)

	f.drv.AdvanceTimers(400 * time.Millisecond)
	assert.Empty(t, container.Children())
	assert.Zero(t, f.drv.Sched.Pending())
}

func TestKillFeed_RowShapes(t *testing.T) {
	f := newFixture(t, LobbyLayout, ids("killfeed-container")...)
	container := f.tree.ByID("killfeed-container")

	f.hud.KillFeed(dispatch.KillFeed{Victim: "AVeryLongPlayerName", VictimID: "9"})
	row := container.Children()[0]
	assert.True(t, row.HasClass("killfeed-item"))
	assert.True(t, row.HasClass("suicide"))
	parts := row.Children()
	require.Len(t, parts, 2)
	box := parts[0].Children()
	assert.Equal(t, "ID:9", box[0].Text())
	assert.Equal(t, "AVeryLongPla...", box[1].Text())
	assert.Equal(t, "MORT", parts[1].Text())

	f.hud.KillFeed(dispatch.KillFeed{Killer: "Bob", Victim: "Eve", Headshot: true, Multiplier: 3})
	row = container.Children()[0]
	assert.True(t, row.HasClass("headshot"))
	parts = row.Children()
	require.Len(t, parts, 5)
	assert.Equal(t, "ID:?", parts[0].Children()[0].Text())
	assert.Equal(t, "À TUÉ", parts[1].Text())
	assert.Equal(t, "HEADSHOT", parts[3].Text())
	assert.Equal(t, "x3", parts[4].Text())
}

func TestKillFeed_LayoutExitClass(t *testing.T) {
	f := newFixture(t, ArenaLayout, ids("killfeed-ui")...)
	for i := 0; i < 7; i++ {
		f.hud.KillFeed(dispatch.KillFeed{Killer: "a", Victim: "b"})
	}
	kids := f.tree.ByID("killfeed-ui").Children()
	require.Len(t, kids, 7)
	assert.True(t, kids[6].HasClass("kill-exit"))
	assert.True(t, kids[0].HasClass("kill-row"))

	f.hud.ClearKillFeed(dispatch.ClearKillFeed{})
	assert.Empty(t, f.tree.ByID("killfeed-ui").Children())
	assert.Zero(t, f.drv.Sched.Pending())
}

func combatSeeds() []dom.Seed {
	return seeds(
		ids("killfeed-container", idRoundEndTitle, idRoundEndSub, idRoundScore1, idRoundScore2,
			idMatchEndResult, idMatchEndMsg, idFinalScore1, idFinalScore2,
			idCombatMessage, idCombatSubtitle, idTeam1Score, idTeam2Score, idCurrentRound),
		hidden(idRoundEnd, idMatchEnd, idCombatOverlay, idScoreHUD),
	)
}

func TestRoundEnd_DelayedThenHidden(t *testing.T) {
	f := newFixture(t, LobbyLayout, combatSeeds()...)

	f.hud.ShowRoundEnd(dispatch.ShowRoundEnd{IsVictory: true, Score: reconcile.Score{Team1: 2, Team2: 1}})
	f.drv.AdvanceTimers(1499 * time.Millisecond)
	assert.True(t, f.hidden(idRoundEnd))

	f.drv.AdvanceTimers(time.Millisecond)
	assert.False(t, f.hidden(idRoundEnd))
	assert.Equal(t, "VICTOIRE", f.text(idRoundEndTitle))
	assert.True(t, f.tree.ByID(idRoundEndTitle).HasClass("victory"))
	assert.Equal(t, "2", f.text(idRoundScore1))

	f.drv.AdvanceTimers(RoundEndHold)
	assert.True(t, f.hidden(idRoundEnd))
	assert.Zero(t, f.drv.Sched.Pending())
}

func TestRoundEnd_NewerReplacesPending(t *testing.T) {
	f := newFixture(t, LobbyLayout, combatSeeds()...)

	f.hud.ShowRoundEnd(dispatch.ShowRoundEnd{IsVictory: true})
	f.drv.AdvanceTimers(time.Second)
	f.hud.ShowRoundEnd(dispatch.ShowRoundEnd{IsVictory: false})

	f.drv.AdvanceTimers(time.Second)
	assert.True(t, f.hidden(idRoundEnd), "first round end must not fire")

	f.drv.AdvanceTimers(500 * time.Millisecond)
	assert.False(t, f.hidden(idRoundEnd))
	assert.Equal(t, "DÉFAITE", f.text(idRoundEndTitle))
}

func TestMatchEnd_ClearsFeedAndPendingRoundEnd(t *testing.T) {
	f := newFixture(t, LobbyLayout, combatSeeds()...)

	f.hud.KillFeed(dispatch.KillFeed{Killer: "a", Victim: "b"})
	f.hud.ShowRoundEnd(dispatch.ShowRoundEnd{IsVictory: true})
	f.hud.ShowGo(dispatch.ShowGo{})
	f.hud.ShowMatchEnd(dispatch.ShowMatchEnd{Victory: false, Score: reconcile.Score{Team1: 1, Team2: 3}})

	assert.Equal(t, 0, f.hud.KillFeedLen())
	assert.Empty(t, f.tree.ByID("killfeed-container").Children())
	assert.True(t, f.hidden(idCombatOverlay))
	assert.False(t, f.hidden(idMatchEnd))
	assert.Equal(t, "DÉFAITE", f.text(idMatchEndResult))
	assert.Equal(t, "3", f.text(idFinalScore2))
	assert.Equal(t, 1, f.hud.Overlays().Len())

	f.drv.AdvanceTimers(RoundEndDelay)
	assert.True(t, f.hidden(idRoundEnd))
	assert.True(t, f.hidden(idMatchEnd))
	assert.Zero(t, f.drv.Sched.Pending())
}

func TestCombatOverlay_AutoHides(t *testing.T) {
	f := newFixture(t, LobbyLayout, combatSeeds()...)

	f.hud.ShowRoundStart(dispatch.ShowRoundStart{Round: 2})
	assert.False(t, f.hidden(idCombatOverlay))
	assert.Equal(t, "ROUND 2", f.text(idCombatMessage))
	assert.Equal(t, "Préparez-vous", f.text(idCombatSubtitle))

	f.drv.AdvanceTimers(800 * time.Millisecond)
	f.hud.ShowCountdown(dispatch.ShowCountdown{Number: 3})
	f.drv.AdvanceTimers(800 * time.Millisecond)
	assert.False(t, f.hidden(idCombatOverlay), "countdown restarted the hold")
	assert.Equal(t, "3", f.text(idCombatMessage))

	f.drv.AdvanceTimers(200 * time.Millisecond)
	assert.True(t, f.hidden(idCombatOverlay))
}

func TestScoreHUD_PulsesOnIncrease(t *testing.T) {
	f := newFixture(t, LobbyLayout, combatSeeds()...)

	f.hud.ShowScoreHUD(dispatch.ShowScoreHUD{Score: reconcile.Score{Team1: 0, Team2: 0}, Round: 1})
	assert.False(t, f.hidden(idScoreHUD))
	assert.Equal(t, "1", f.text(idCurrentRound))

	f.hud.UpdateScore(dispatch.UpdateScore{Score: reconcile.Score{Team1: 1, Team2: 0}, Round: 2})
	assert.True(t, f.tree.ByID(idTeam1Score).HasClass("score-update"))
	assert.False(t, f.tree.ByID(idTeam2Score).HasClass("score-update"))

	f.drv.AdvanceTimers(500 * time.Millisecond)
	assert.False(t, f.tree.ByID(idTeam1Score).HasClass("score-update"))

	f.hud.HideScoreHUD(dispatch.HideScoreHUD{})
	assert.True(t, f.hidden(idScoreHUD))
}

func lobbySeeds() []dom.Seed {
	return seeds(
		ids(idContainer, idSearchBtn, idSearchText, idReadyBtn, idReadyText, idModeDisplay,
			idSearchTimer, idSearchMode, idLobbyContent, idInvitationsList,
			"slot-0", "slot-1", "slot-2", "slot-3",
			"mode-1v1", "mode-2v2", "queue-1v1", "queue-1v1-count", "queue-2v2", "queue-2v2-count"),
		hidden(idSearchStatus, idLeaveGroupBtn, idNotificationBadge, idInvitationsPanel),
	)
}

func duo(leaderReady, mateReady bool) *reconcile.Group {
	return &reconcile.Group{Members: []reconcile.Member{
		{ID: 1, Name: "Me", IsLeader: true, IsYou: true, IsReady: leaderReady},
		{ID: 2, Name: "Mate", IsReady: mateReady},
	}}
}

func TestSearch_EligibilityAndThrottle(t *testing.T) {
	f := newFixture(t, LobbyLayout, lobbySeeds()...)

	require.NoError(t, f.hud.Intent("search", nil))
	assert.Empty(t, f.caller.calls, "disabled button never calls out")

	require.NoError(t, f.hud.Intent("selectMode", []byte(`{"mode":"2v2","players":2}`)))
	assert.Equal(t, "2V2", f.text(idModeDisplay))
	assert.True(t, f.tree.ByID("mode-2v2").HasClass("selected"))
	assert.Equal(t, reconcile.NeedPlayersLabel(2), f.text(idSearchText))
	assert.True(t, f.tree.ByID(idSearchBtn).Disabled())

	f.hud.UpdateGroup(dispatch.UpdateGroup{Group: duo(true, false)})
	assert.Equal(t, reconcile.LabelAllReady, f.text(idSearchText))
	assert.False(t, f.hidden(idLeaveGroupBtn))

	f.hud.UpdateGroup(dispatch.UpdateGroup{Group: duo(true, true)})
	assert.Equal(t, reconcile.LabelSearch, f.text(idSearchText))
	assert.False(t, f.tree.ByID(idSearchBtn).Disabled())
	assert.Equal(t, reconcile.LabelReady, f.text(idReadyText))

	require.NoError(t, f.hud.Intent("search", nil))
	require.Len(t, f.caller.calls, 1)
	assert.Equal(t, call{"joinQueue", map[string]any{"mode": "2v2"}}, f.caller.calls[0])

	f.drv.AdvanceTimers(time.Second)
	require.ErrorIs(t, f.hud.Intent("search", nil), ErrThrottled)
	assert.Equal(t, "PATIENTEZ 2S", f.text(idSearchText))
	assert.Len(t, f.caller.calls, 1)

	f.drv.AdvanceTimers(2 * time.Second)
	assert.Equal(t, reconcile.LabelSearch, f.text(idSearchText))
	require.NoError(t, f.hud.Intent("search", nil))
	assert.Len(t, f.caller.calls, 2)
}

func TestSearch_ReadyLockedWhileSearching(t *testing.T) {
	f := newFixture(t, LobbyLayout, lobbySeeds()...)

	f.hud.SearchStarted(dispatch.SearchStarted{Mode: "1v1"})
	assert.True(t, f.hud.Searching())
	assert.Equal(t, "1V1", f.text(idSearchMode))
	assert.False(t, f.hidden(idSearchStatus))
	ready := f.tree.ByID(idReadyBtn)
	assert.True(t, ready.Disabled())
	title, _ := ready.Attr("title")
	assert.Equal(t, "Annulez d'abord la recherche", title)

	require.NoError(t, f.hud.Intent("toggleReady", nil))
	assert.Empty(t, f.caller.calls)

	f.hud.UpdateSearchTimer(dispatch.UpdateSearchTimer{Elapsed: 75})
	assert.Equal(t, "01:15", f.text(idSearchTimer))

	require.True(t, f.lim.TryConsume(ratelimit.KindSearch))
	f.hud.SearchCancelled(dispatch.SearchCancelled{})
	assert.False(t, f.hud.Searching())
	assert.True(t, f.hidden(idSearchStatus))
	assert.False(t, ready.Disabled())
	assert.True(t, f.lim.TryConsume(ratelimit.KindSearch), "cancel resets the search cooldown")

	f.drv.AdvanceTimers(2 * time.Second)
	require.NoError(t, f.hud.Intent("toggleReady", nil))
	assert.Equal(t, []string{"toggleReady"}, f.caller.actions())
}

func TestMatchFound_ResetsSearchCooldown(t *testing.T) {
	f := newFixture(t, LobbyLayout, lobbySeeds()...)
	f.hud.SearchStarted(dispatch.SearchStarted{Mode: "1v1"})
	require.True(t, f.lim.TryConsume(ratelimit.KindSearch))

	f.hud.MatchFound(dispatch.MatchFound{})
	assert.True(t, f.hud.InMatch())
	assert.False(t, f.hud.Searching())
	assert.True(t, f.lim.TryConsume(ratelimit.KindSearch))
}

func TestSlots_FollowModeAndGroup(t *testing.T) {
	f := newFixture(t, LobbyLayout, lobbySeeds()...)

	f.hud.UpdateGroup(dispatch.UpdateGroup{})
	assert.Equal(t, "player-slot host-slot", strings.Join(f.tree.ByID("slot-0").Classes(), " "))
	assert.True(t, f.tree.ByID("slot-1").HasClass("locked"))

	require.NoError(t, f.hud.Intent("selectMode", []byte(`{"mode":"2v2","players":2}`)))
	assert.True(t, f.tree.ByID("slot-1").HasClass("empty-slot"))
	assert.False(t, f.tree.ByID("slot-1").HasClass("locked"))
	assert.True(t, f.tree.ByID("slot-2").HasClass("locked"))

	f.hud.UpdateGroup(dispatch.UpdateGroup{Group: duo(true, true)})
	mate := f.tree.ByID("slot-1")
	assert.True(t, mate.HasClass("ready"))
	content := mate.Children()[0].Children()
	last := content[len(content)-1]
	assert.Equal(t, "KICK", last.Text())
	target, _ := last.Attr("data-target-id")
	assert.Equal(t, "2", target)
}

func TestInvitations_DedupeExpiryAndAccept(t *testing.T) {
	f := newFixture(t, LobbyLayout, lobbySeeds()...)
	f.tree.Mount(hidden(idNoInvitations)...)

	f.hud.ShowInvite(dispatch.ShowInvite{InviterName: "Bob", InviterID: "5"})
	f.hud.ShowInvite(dispatch.ShowInvite{InviterName: "Bob", InviterID: "5"})
	assert.Equal(t, []string{"5"}, f.hud.Invitations())
	assert.Equal(t, "1", f.text(idNotificationBadge))
	assert.False(t, f.hidden(idNotificationBadge))
	assert.True(t, f.hidden(idNoInvitations))

	f.drv.AdvanceTimers(10 * time.Second)
	f.hud.ShowInvite(dispatch.ShowInvite{InviterName: "Eve", InviterID: "6"})
	f.hud.ShowInvite(dispatch.ShowInvite{InviterName: "Zed", InviterID: "7"})
	assert.Equal(t, "3", f.text(idNotificationBadge))

	f.drv.AdvanceTimers(20 * time.Second)
	assert.Equal(t, []string{"7", "6"}, f.hud.Invitations())
	assert.Equal(t, "2", f.text(idNotificationBadge))

	require.NoError(t, f.hud.Intent("acceptInvite", []byte(`{"inviterId":6}`)))
	assert.Equal(t, call{"acceptInvite", map[string]any{"inviterId": float64(6)}}, f.caller.calls[0])
	assert.Equal(t, []string{"7"}, f.hud.Invitations())

	require.NoError(t, f.hud.Intent("declineInvite", []byte(`{"inviterId":7}`)))
	assert.Empty(t, f.hud.Invitations())
	assert.True(t, f.hidden(idNotificationBadge))
	assert.False(t, f.hidden(idNoInvitations))
	assert.Empty(t, f.tree.ByID(idInvitationsList).Children())
	assert.Zero(t, f.drv.Sched.Pending())
}

func TestInvitations_CapDropsOldest(t *testing.T) {
	f := newFixture(t, LobbyLayout, lobbySeeds()...)

	for _, id := range []string{"1", "2", "3", "4", "5", "6"} {
		f.hud.ShowInvite(dispatch.ShowInvite{InviterName: "P" + id, InviterID: dispatch.ID(id)})
	}
	assert.Equal(t, []string{"6", "5", "4", "3", "2"}, f.hud.Invitations())
	assert.Equal(t, "5", f.text(idNotificationBadge))
	assert.Len(t, f.tree.ByID(idInvitationsList).Children(), InvitationMax)
}

func TestOpenUI_RefreshesLobbyFromHost(t *testing.T) {
	f := newFixture(t, LobbyLayout, lobbySeeds()...)
	f.tree.ByID(idContainer).Hide()
	f.caller.responses["getQueueStats"] = &gateway.Response{Status: 200, Body: json.RawMessage(`{"1v1":2,"2v2":0}`)}
	f.caller.responses["getGroupInfo"] = &gateway.Response{Status: 200, Body: json.RawMessage(`{"members":[{"id":1,"name":"Me","isLeader":true,"isYou":true}]}`)}

	f.hud.OpenUI(dispatch.OpenUI{IsSearching: true})
	assert.True(t, f.hud.Open())
	assert.False(t, f.hidden(idContainer))
	assert.False(t, f.hidden(idSearchStatus))
	assert.Equal(t, "none", f.tree.ByID(idLobbyContent).Style("display"))
	assert.Equal(t, []string{"getQueueStats", "getGroupInfo"}, f.caller.actions())

	card := f.tree.ByID("queue-1v1")
	assert.Equal(t, "2", f.text("queue-1v1-count"))
	assert.True(t, card.HasClass("has-players"))
	assert.True(t, card.HasClass("animate-in"))
	assert.Equal(t, "0", f.text("queue-2v2-count"))

	f.drv.AdvanceTimers(300 * time.Millisecond)
	assert.False(t, card.HasClass("animate-in"))

	f.hud.UpdateQueueStats(dispatch.UpdateQueueStats{})
	assert.Equal(t, "2", f.text("queue-1v1-count"), "missing stats keep the previous snapshot")

	f.hud.CloseUI(dispatch.CloseUI{})
	assert.True(t, f.hidden(idContainer))
}

func TestUpdateQueueStats_RedrawsChangedModesOnly(t *testing.T) {
	f := newFixture(t, LobbyLayout, lobbySeeds()...)
	f.hud.UpdateQueueStats(dispatch.UpdateQueueStats{Stats: reconcile.Queue{"1v1": 2}})
	f.drv.AdvanceTimers(300 * time.Millisecond)
	f.tree.Drain()

	f.hud.UpdateQueueStats(dispatch.UpdateQueueStats{Stats: reconcile.Queue{"1v1": 2, "2v2": 1}})
	patches := f.tree.Drain()
	require.NotEmpty(t, patches)
	for _, p := range patches {
		assert.Contains(t, []string{"queue-2v2", "queue-2v2-count"}, p.ID)
	}
	assert.Equal(t, "1", f.text("queue-2v2-count"))

	f.drv.AdvanceTimers(300 * time.Millisecond)
	f.tree.Drain()
	f.hud.UpdateQueueStats(dispatch.UpdateQueueStats{Stats: reconcile.Queue{"1v1": 2, "2v2": 1}})
	assert.Empty(t, f.tree.Drain(), "identical stats touch nothing")
}

func TestOpenUI_KeepsInvitationsAndCooldowns(t *testing.T) {
	f := newFixture(t, LobbyLayout, lobbySeeds()...)
	f.tree.ByID(idContainer).Hide()

	f.hud.ShowInvite(dispatch.ShowInvite{InviterName: "Bob", InviterID: "5"})
	require.True(t, f.lim.TryConsume(ratelimit.KindInvite))

	f.hud.OpenUI(dispatch.OpenUI{})
	assert.Equal(t, []string{"5"}, f.hud.Invitations())
	assert.Equal(t, "1", f.text(idNotificationBadge))
	assert.Len(t, f.tree.ByID(idInvitationsList).Children(), 1)
	assert.False(t, f.lim.TryConsume(ratelimit.KindInvite), "reopening does not lift a cooldown")

	f.hud.CloseUI(dispatch.CloseUI{})
	f.hud.OpenUI(dispatch.OpenUI{})
	assert.Equal(t, []string{"5"}, f.hud.Invitations())
}

func TestOpenUI_NotSearchingRestoresLobby(t *testing.T) {
	f := newFixture(t, LobbyLayout, lobbySeeds()...)

	f.hud.OpenUI(dispatch.OpenUI{IsSearching: true})
	require.True(t, f.hud.Searching())

	f.hud.OpenUI(dispatch.OpenUI{})
	assert.False(t, f.hud.Searching())
	assert.True(t, f.hidden(idSearchStatus))
	assert.Equal(t, "", f.tree.ByID(idLobbyContent).Style("display"))
}

func TestOpenUI_FailedRefreshShowsSolo(t *testing.T) {
	f := newFixture(t, LobbyLayout, lobbySeeds()...)
	f.hud.OpenUI(dispatch.OpenUI{})
	assert.Equal(t, "player-slot host-slot", strings.Join(f.tree.ByID("slot-0").Classes(), " "))
	assert.Equal(t, reconcile.LabelSelectMode, f.text(idSearchText))
}

func redzoneSeeds() []dom.Seed {
	return seeds(
		ids(idDeathMessage, idDeathTitle, idDeathHint, "minTens", "minUnits", "secTens", "secUnits",
			"reviveCircleProgress", "reviveTimer", "launderingProgressFill",
			idPressTitle, idPressSubtitle, idPressFill, idSquadContent, idInteractName, idInteractID),
		hidden(idDeathScreen, "reviveProgressContainer", "launderingProgressContainer", idPress,
			idSquadApp, idInteractMenu),
	)
}

func (f *fixture) digits() string {
	return f.text("minTens") + f.text("minUnits") + ":" + f.text("secTens") + f.text("secUnits")
}

func TestDeathScreen_CountsDownAndResets(t *testing.T) {
	f := newFixture(t, RedzoneLayout, redzoneSeeds()...)

	f.hud.ShowDeathScreen(dispatch.ShowDeathScreen{Timer: 65, Message: "Touché"})
	assert.False(t, f.hidden(idDeathScreen))
	assert.Equal(t, "01:05", f.digits())
	assert.Equal(t, "Touché", f.text(idDeathMessage))

	f.drv.AdvanceTimers(2 * time.Second)
	assert.Equal(t, "01:03", f.digits())

	f.hud.UpdateDeathScreen(dispatch.UpdateDeathScreen{BeingRevived: true})
	assert.Equal(t, deathTitleReviving, f.text(idDeathTitle))
	assert.Equal(t, colorOK, f.tree.ByID(idDeathTitle).Style("color"))

	f.hud.HideDeathScreen(dispatch.HideDeathScreen{})
	assert.True(t, f.hidden(idDeathScreen))
	assert.Equal(t, "00:30", f.digits())
	assert.Equal(t, deathTitleDying, f.text(idDeathTitle))
	assert.Zero(t, f.drv.Sched.Pending())
}

func TestDeathScreen_ReachesZero(t *testing.T) {
	f := newFixture(t, RedzoneLayout, redzoneSeeds()...)
	f.hud.ShowDeathScreen(dispatch.ShowDeathScreen{Timer: 3})
	f.drv.AdvanceTimers(10 * time.Second)
	assert.Equal(t, "00:00", f.digits())
	assert.False(t, f.hud.Overlays().Active(overlay.SlotDeath))

	f.hud.UpdateDeathScreen(dispatch.UpdateDeathScreen{CanRespawn: true})
	assert.Equal(t, deathTitleRespawn, f.text(idDeathTitle))
	assert.Equal(t, deathHintRespawn, f.text(idDeathHint))
}

func TestProgressRing_TicksAndAnimates(t *testing.T) {
	f := newFixture(t, RedzoneLayout, redzoneSeeds()...)

	f.hud.ShowProgress(dispatch.ShowProgress{Kind: dispatch.ProgressRevive, Duration: 3 * time.Second})
	assert.False(t, f.hidden("reviveProgressContainer"))
	assert.Equal(t, "3", f.text("reviveTimer"))
	circle := f.tree.ByID("reviveCircleProgress")
	assert.Equal(t, "282.74", circle.Style("strokeDashoffset"))

	f.drv.Advance(time.Second)
	assert.Equal(t, "2", f.text("reviveTimer"))
	f.drv.Advance(2 * time.Second)
	assert.Equal(t, "0", f.text("reviveTimer"))
	assert.Equal(t, "0.00", circle.Style("strokeDashoffset"))
	assert.False(t, f.hud.Overlays().Active(overlay.SlotRevive))
	assert.Zero(t, f.drv.Sched.Pending())
}

func TestProgressRing_HideCancels(t *testing.T) {
	f := newFixture(t, RedzoneLayout, redzoneSeeds()...)

	f.hud.ShowProgress(dispatch.ShowProgress{Kind: dispatch.ProgressRevive, Duration: 10 * time.Second})
	f.drv.Advance(time.Second)
	f.hud.HideProgress(dispatch.HideProgress{Kind: dispatch.ProgressRevive})

	assert.True(t, f.hidden("reviveProgressContainer"))
	assert.Zero(t, f.drv.Sched.Pending())
	timer := f.text("reviveTimer")
	f.drv.Advance(3 * time.Second)
	assert.Equal(t, timer, f.text("reviveTimer"))
}

func TestProgressRing_ShowAgainReplaces(t *testing.T) {
	f := newFixture(t, RedzoneLayout, redzoneSeeds()...)

	f.hud.ShowProgress(dispatch.ShowProgress{Kind: dispatch.ProgressRevive, Duration: 10 * time.Second})
	f.drv.Advance(2 * time.Second)
	f.hud.ShowProgress(dispatch.ShowProgress{Kind: dispatch.ProgressRevive, Duration: 5 * time.Second})
	assert.Equal(t, "5", f.text("reviveTimer"))
	f.drv.Advance(time.Second)
	assert.Equal(t, "4", f.text("reviveTimer"))
}

func TestLaunderingBar_Fills(t *testing.T) {
	f := newFixture(t, RedzoneLayout, redzoneSeeds()...)

	f.hud.ShowProgress(dispatch.ShowProgress{Kind: dispatch.ProgressLaundering, Duration: 3 * time.Second})
	fill := f.tree.ByID("launderingProgressFill")
	assert.Equal(t, "0%", fill.Style("width"))

	f.drv.Advance(1500 * time.Millisecond)
	assert.Equal(t, "50.0%", fill.Style("width"))
	f.drv.Advance(1500 * time.Millisecond)
	assert.Equal(t, "100.0%", fill.Style("width"))
	assert.Zero(t, f.drv.Sched.Pending())
}

func TestPressNotification_AutoHides(t *testing.T) {
	f := newFixture(t, RedzoneLayout, redzoneSeeds()...)

	f.hud.ShowPressNotification(dispatch.ShowPressNotification{Title: "Largage", Subtitle: "En approche", Duration: 2 * time.Second})
	assert.False(t, f.hidden(idPress))
	assert.Equal(t, "100%", f.tree.ByID(idPressFill).Style("width"))

	f.drv.Advance(time.Second)
	assert.Equal(t, "50.0%", f.tree.ByID(idPressFill).Style("width"))
	assert.False(t, f.hidden(idPress))

	f.drv.Advance(time.Second)
	assert.True(t, f.hidden(idPress))
	assert.Equal(t, pressDoneText, f.text(idPressSubtitle))
	assert.Zero(t, f.drv.Sched.Pending())
}

func TestSquad_RendersRosterForHost(t *testing.T) {
	f := newFixture(t, RedzoneLayout, redzoneSeeds()...)

	f.hud.OpenSquad(dispatch.OpenSquad{
		HasSquad:   true,
		MaxMembers: 4,
		Squad: &dispatch.Squad{IsHost: true, Members: []dispatch.SquadMember{
			{ID: "1", Name: "boss", IsHost: true},
			{ID: "2", Name: "élise"},
		}},
	})
	assert.False(t, f.hidden(idSquadApp))
	kids := f.tree.ByID(idSquadContent).Children()
	require.Len(t, kids, 3, "members, invite, disband")
	rows := kids[0].Children()
	require.Len(t, rows, 2)
	assert.True(t, rows[0].HasClass("host"))
	assert.Equal(t, "É", rows[1].Children()[0].Text())
	assert.Equal(t, "Membre • ID 2", rows[1].Children()[2].Text())
	kick := rows[1].Children()[3]
	intent, _ := kick.Attr("data-intent")
	assert.Equal(t, "squadKick", intent)

	require.NoError(t, f.hud.Intent("squadKick", []byte(`{"playerId":"2"}`)))
	assert.Equal(t, call{"kickPlayer", map[string]any{"playerId": "2"}}, f.caller.calls[0])

	require.NoError(t, f.hud.Intent("squadClose", nil))
	assert.True(t, f.hidden(idSquadApp))
	assert.Equal(t, []string{"kickPlayer", "closeSquadMenu"}, f.caller.actions())
}

func TestSquad_NoSquadWithInvite(t *testing.T) {
	f := newFixture(t, RedzoneLayout, redzoneSeeds()...)
	f.hud.OpenSquad(dispatch.OpenSquad{HasPendingInvite: true, Invite: &dispatch.SquadInvite{HostName: "Bob"}, MaxMembers: 4})
	kids := f.tree.ByID(idSquadContent).Children()
	require.Len(t, kids, 2)
	assert.True(t, kids[0].HasClass("squad-invite"))
	assert.True(t, kids[1].HasClass("squad-no-squad"))
}

func TestPlayerInteract(t *testing.T) {
	f := newFixture(t, RedzoneLayout, redzoneSeeds()...)

	require.NoError(t, f.hud.Intent("interactCopyId", nil))
	assert.Empty(t, f.caller.calls, "nothing to copy without a target")

	f.hud.ShowPlayerInteract(dispatch.ShowPlayerInteract{Name: "Bob", ServerID: "12"})
	assert.Equal(t, "[ID: 12]", f.text(idInteractID))
	assert.False(t, f.hidden(idInteractMenu))

	require.NoError(t, f.hud.Intent("interactCopyId", nil))
	assert.Equal(t, call{"playerInteract:copyId", map[string]any{"serverId": "12"}}, f.caller.calls[0])
	assert.True(t, f.hidden(idInteractMenu))
}

func TestZones_RenderAndUpdate(t *testing.T) {
	f := newFixture(t, ArenaLayout, ids(idMainUI, idZoneList, idExitHud)...)

	f.hud.OpenUI(dispatch.OpenUI{Zones: []dispatch.Zone{
		{Zone: 1, Label: "Docks", Players: 3, MaxPlayers: 15},
		{Zone: 2, Players: 14, MaxPlayers: 15},
	}})
	assert.Empty(t, f.caller.calls, "no lobby on this page")
	cards := f.tree.ByID(idZoneList).Children()
	require.Len(t, cards, 2)
	assert.Equal(t, "Zone 2", cards[1].Children()[0].Text())
	assert.Equal(t, "14/15", cards[1].Children()[1].Text())
	assert.Equal(t, zoneAvailable, cards[1].Children()[2].Text())

	f.hud.UpdateZonePlayers(dispatch.UpdateZonePlayers{Zones: []dispatch.Zone{{Zone: 2, Players: 15, MaxPlayers: 15}}})
	assert.Equal(t, "15/15", cards[1].Children()[1].Text())
	assert.Equal(t, zoneFull, cards[1].Children()[2].Text())
	full, ok := cards[1].Attr("data-full")
	assert.True(t, ok)
	assert.Equal(t, "true", full)

	require.NoError(t, f.hud.Intent("selectZone", []byte(`{"zone":2}`)))
	assert.Empty(t, f.caller.calls)
	require.NoError(t, f.hud.Intent("selectZone", []byte(`{"zone":1}`)))
	assert.Equal(t, []string{"zoneSelected"}, f.caller.actions())

	f.hud.ShowExitHud(dispatch.ShowExitHud{})
	assert.True(t, f.tree.ByID(idExitHud).HasClass("active"))
	f.hud.HideExitHud(dispatch.HideExitHud{})
	assert.False(t, f.tree.ByID(idExitHud).HasClass("active"))
}

func statsSeeds() []dom.Seed {
	return ids(idStatsTitle, "stats-mode-1v1", "stats-mode-2v2", "lb-mode-1v1", "lb-mode-2v2",
		idStatElo, idStatKills, idStatDeaths, idStatRatio, idStatMatches, idStatWins, idStatLosses,
		idStatWinrate, idStatStreak, idStatBestStreak, idStatBestElo, idStatRank, idLeaderboard)
}

func TestStatsMode_RendersReply(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		want  map[string]string
		rank  string
		color string
	}{
		{
			name: "full record",
			body: `{"elo":1600,"kills":10,"deaths":5,"wins":3,"losses":3,"matches_played":6,"win_streak":2,"best_win_streak":4,"best_elo":1700}`,
			want: map[string]string{
				idStatElo: "1600", idStatRatio: "2.00", idStatWinrate: "50%", idStatMatches: "6",
				idStatStreak: "2", idStatBestStreak: "4", idStatBestElo: "1700",
			},
			rank: "Or", color: "#ffd700",
		},
		{
			name: "no deaths and no best elo",
			body: `{"elo":900,"kills":7}`,
			want: map[string]string{
				idStatRatio: "7.00", idStatWinrate: "0%", idStatBestElo: "900", idStatDeaths: "0",
			},
			rank: "Bronze", color: "#cd7f32",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, LobbyLayout, statsSeeds()...)
			f.caller.responses["getPlayerStatsByMode"] = &gateway.Response{Status: 200, Body: json.RawMessage(tt.body)}

			require.NoError(t, f.hud.Intent("statsMode", []byte(`{"mode":"2v2"}`)))
			assert.Equal(t, call{"getPlayerStatsByMode", map[string]any{"mode": "2v2"}}, f.caller.calls[0])
			assert.Equal(t, "Statistiques 2V2", f.text(idStatsTitle))
			assert.True(t, f.tree.ByID("stats-mode-2v2").HasClass("active"))
			for id, want := range tt.want {
				assert.Equal(t, want, f.text(id), id)
			}
			assert.Equal(t, tt.rank, f.text(idStatRank))
			assert.Equal(t, tt.color, f.tree.ByID(idStatRank).Style("color"))
		})
	}
}

func TestStatsMode_FailedReplyKeepsFigures(t *testing.T) {
	f := newFixture(t, LobbyLayout, statsSeeds()...)
	f.tree.ByID(idStatElo).SetText("1200")

	require.NoError(t, f.hud.Intent("statsMode", []byte(`{"mode":"1v1"}`)))
	assert.Equal(t, []string{"getPlayerStatsByMode"}, f.caller.actions())
	assert.Equal(t, "1200", f.text(idStatElo))
}

func TestLeaderboardMode_RendersRows(t *testing.T) {
	f := newFixture(t, LobbyLayout, statsSeeds()...)
	f.caller.responses["getLeaderboardByMode"] = &gateway.Response{Status: 200, Body: json.RawMessage(`[
		{"name":"Ace","elo":4600,"kills":20,"deaths":10,"wins":9,"matches_played":10},
		{"name":"Bo","elo":2100,"kills":4,"deaths":0,"wins":1,"matches_played":3},
		{"name":"Cy","elo":1000},
		{"name":"Di","elo":500,"avatar":"https://cdn/di.png"}
	]`)}

	require.NoError(t, f.hud.Intent("leaderboardMode", []byte(`{"mode":"1v1"}`)))
	assert.Equal(t, call{"getLeaderboardByMode", map[string]any{"mode": "1v1"}}, f.caller.calls[0])
	assert.True(t, f.tree.ByID("lb-mode-1v1").HasClass("active"))

	rows := f.tree.ByID(idLeaderboard).Children()
	require.Len(t, rows, 4)

	first := rows[0].Children()
	require.Len(t, first, 6)
	assert.Equal(t, "🥇", first[0].Children()[0].Text())
	assert.True(t, first[0].Children()[0].HasClass("gold"))
	info := first[1].Children()[1].Children()
	assert.Equal(t, "Ace", info[0].Text())
	assert.Equal(t, "Master 1", info[1].Text())
	assert.Equal(t, "#ff0000", info[1].Style("color"))
	assert.Equal(t, "4600", first[2].Text())
	assert.Equal(t, "2.00", first[3].Text())
	assert.Equal(t, "9", first[4].Text())
	assert.Equal(t, "90%", first[5].Text())

	second := rows[1].Children()
	assert.Equal(t, "4.00", second[3].Text())
	assert.Equal(t, "33%", second[5].Text())

	fourth := rows[3].Children()
	assert.Equal(t, "#4", fourth[0].Text())
	src, _ := fourth[1].Children()[0].Attr("src")
	assert.Equal(t, "https://cdn/di.png", src)
	src, _ = rows[2].Children()[1].Children()[0].Attr("src")
	assert.Equal(t, DefaultAvatar, src)
}

func TestLeaderboardMode_EmptyOrFailed(t *testing.T) {
	tests := []struct {
		name string
		resp *gateway.Response
	}{
		{"empty list", &gateway.Response{Status: 200, Body: json.RawMessage(`[]`)}},
		{"no reply", nil},
		{"not a list", &gateway.Response{Status: 200, Body: json.RawMessage(`{"error":"db"}`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, LobbyLayout, statsSeeds()...)
			f.caller.responses["getLeaderboardByMode"] = &gateway.Response{Status: 200, Body: json.RawMessage(`[{"name":"Ace","elo":10}]`)}
			require.NoError(t, f.hud.Intent("leaderboardMode", []byte(`{"mode":"1v1"}`)))
			require.Len(t, f.tree.ByID(idLeaderboard).Children(), 1)

			f.drv.AdvanceTimers(6 * time.Second)
			f.caller.responses["getLeaderboardByMode"] = tt.resp
			require.NoError(t, f.hud.Intent("leaderboardMode", []byte(`{"mode":"1v1"}`)))

			rows := f.tree.ByID(idLeaderboard).Children()
			require.Len(t, rows, 1)
			cell := rows[0].Children()[0]
			assert.Equal(t, reconcile.LabelNoData, cell.Text())
			span, _ := cell.Attr("colspan")
			assert.Equal(t, "6", span)
		})
	}
}

func TestIntent_UnknownAndThrottled(t *testing.T) {
	f := newFixture(t, LobbyLayout, lobbySeeds()...)

	require.ErrorIs(t, f.hud.Intent("fly", nil), ErrUnknownIntent)
	require.NoError(t, f.hud.Intent("leaveGroup", nil))
	require.ErrorIs(t, f.hud.Intent("leaveGroup", nil), ErrThrottled)
	f.drv.AdvanceTimers(2 * time.Second)
	require.NoError(t, f.hud.Intent("leaveGroup", nil))
	assert.Equal(t, []string{"leaveGroup", "leaveGroup"}, f.caller.actions())
}

func TestReset_CancelsEverything(t *testing.T) {
	f := newFixture(t, LobbyLayout, seeds(lobbySeeds(), combatSeeds(), redzoneSeeds())...)

	f.hud.KillFeed(dispatch.KillFeed{Killer: "a", Victim: "b"})
	f.hud.ShowInvite(dispatch.ShowInvite{InviterID: "1"})
	f.hud.ShowRoundEnd(dispatch.ShowRoundEnd{})
	f.hud.ShowGo(dispatch.ShowGo{})
	f.hud.ShowProgress(dispatch.ShowProgress{Kind: dispatch.ProgressRevive, Duration: 10 * time.Second})
	f.hud.UpdateScore(dispatch.UpdateScore{Score: reconcile.Score{Team1: 1}})
	require.NotZero(t, f.drv.Sched.Pending())

	f.hud.Reset()
	assert.Zero(t, f.drv.Sched.Pending())
	assert.Zero(t, f.hud.Overlays().Len())
	assert.Zero(t, f.hud.KillFeedLen())
	assert.Empty(t, f.hud.Invitations())
	assert.True(t, f.hidden(idCombatOverlay))
	assert.True(t, f.hidden("reviveProgressContainer"))
}

// Every message type must be safe on a page that mounted nothing.
func TestHandlers_MissingElements(t *testing.T) {
	f := newFixture(t, LobbyLayout)
	d := dispatch.New(f.hud, zap.NewNop())

	for _, action := range dispatch.Actions() {
		raw := []byte(`{"action":"` + action + `"}`)
		assert.Equal(t, dispatch.OutcomeHandled, d.Dispatch(raw), action)
	}
	f.drv.AdvanceTimers(40 * time.Second)
	assert.Zero(t, f.tree.Pending())
}
