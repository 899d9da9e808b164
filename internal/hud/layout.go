package hud

// Element ids the pages mount.
const (
	idContainer     = "container"
	idMainUI        = "main-ui"
	idLobbyContent  = "lobby-content"
	idModeDisplay   = "mode-display"
	idReadyBtn      = "ready-btn"
	idReadyText     = "ready-text"
	idLeaveGroupBtn = "leave-group-btn"
	idSearchBtn     = "search-btn"
	idSearchText    = "search-text"
	idSearchStatus  = "search-status"
	idSearchTimer   = "search-timer"
	idSearchMode    = "search-mode-display"
	idInvitePopup   = "invite-player-popup"
	idStatsTitle    = "current-stats-mode-title"

	idStatElo        = "stat-elo"
	idStatKills      = "stat-kills"
	idStatDeaths     = "stat-deaths"
	idStatRatio      = "stat-ratio"
	idStatMatches    = "stat-matches"
	idStatWins       = "stat-wins"
	idStatLosses     = "stat-losses"
	idStatWinrate    = "stat-winrate"
	idStatStreak     = "stat-streak"
	idStatBestStreak = "stat-best-streak"
	idStatBestElo    = "stat-best-elo"
	idStatRank       = "stat-rank"
	idLeaderboard    = "leaderboard-body"

	idInvitationsPanel  = "invitations-panel"
	idInvitationsList   = "invitations-list"
	idNoInvitations     = "no-invitations"
	idNotificationBadge = "notification-count"

	idCombatOverlay  = "combat-overlay"
	idCombatMessage  = "combat-message"
	idCombatSubtitle = "combat-subtitle"
	idRoundEnd       = "round-end-overlay"
	idRoundEndTitle  = "round-end-title"
	idRoundEndSub    = "round-end-subtitle"
	idRoundScore1    = "round-score-team1"
	idRoundScore2    = "round-score-team2"
	idMatchEnd       = "match-end-overlay"
	idMatchEndResult = "match-end-result"
	idMatchEndMsg    = "match-end-message"
	idFinalScore1    = "final-score-team1"
	idFinalScore2    = "final-score-team2"
	idScoreHUD       = "score-hud"
	idTeam1Score     = "team1-score"
	idTeam2Score     = "team2-score"
	idCurrentRound   = "current-round-display"

	idDeathScreen  = "death-screen"
	idDeathMessage = "deathMessage"
	idDeathTitle   = "deathTitle"
	idDeathHint    = "deathHint"

	idPress         = "press-notification"
	idPressTitle    = "press-alert-title"
	idPressSubtitle = "press-alert-sub"
	idPressFill     = "press-progress-fill"

	idSquadApp     = "squad-app"
	idSquadContent = "squadContent"

	idInteractMenu = "playerInteractMenu"
	idInteractName = "playerInteractName"
	idInteractID   = "playerInteractId"

	idZoneList = "zone-list"
	idExitHud  = "exit-hud"
)

// Layout holds what differs between the pages served on different surfaces.
type Layout struct {
	KillFeed      string
	KillRowClass  string
	KillExitClass string
	Modes         []string
	Tabs          []string
	Slots         int
}

var (
	LobbyLayout = Layout{
		KillFeed:      "killfeed-container",
		KillRowClass:  "killfeed-item",
		KillExitClass: "fade-out",
		Modes:         []string{"1v1", "2v2", "3v3", "4v4"},
		Tabs:          []string{"lobby", "stats", "leaderboard"},
		Slots:         4,
	}
	RedzoneLayout = Layout{
		KillFeed:      "killfeed-container",
		KillRowClass:  "kill-row",
		KillExitClass: "killfeed-exit",
	}
	ArenaLayout = Layout{
		KillFeed:      "killfeed-ui",
		KillRowClass:  "kill-row",
		KillExitClass: "kill-exit",
	}
)

// LayoutFor picks the layout by surface name, defaulting to the lobby.
func LayoutFor(surface string) Layout {
	switch surface {
	case "redzone":
		return RedzoneLayout
	case "gunfight_arena":
		return ArenaLayout
	default:
		return LobbyLayout
	}
}
