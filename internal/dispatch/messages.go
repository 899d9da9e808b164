package dispatch

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/DoyleJ11/arena-hud/internal/reconcile"
)

// ID accepts both JSON numbers and strings; hosts are not consistent.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) OrUnknown() string {
	if id == "" {
		return "?"
	}
	return string(id)
}

type Zone struct {
	Zone       int    `json:"zone"`
	Label      string `json:"label"`
	Image      string `json:"image"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
}

const DefaultZoneCapacity = 15

func (z Zone) Full() bool { return z.Players >= z.MaxPlayers }

func withZoneDefaults(zs []Zone) []Zone {
	for i := range zs {
		if zs[i].MaxPlayers <= 0 {
			zs[i].MaxPlayers = DefaultZoneCapacity
		}
	}
	return zs
}

// Lobby

type OpenUI struct {
	IsSearching bool   `json:"isSearching"`
	Zones       []Zone `json:"zones"`
}

func (OpenUI) Action() string    { return "openUI" }
func (m OpenUI) apply(h Handler) { h.OpenUI(m) }
func (m OpenUI) withDefaults() Message {
	m.Zones = withZoneDefaults(m.Zones)
	return m
}

type CloseUI struct{}

func (CloseUI) Action() string    { return "closeUI" }
func (m CloseUI) apply(h Handler) { h.CloseUI(m) }

type UpdateGroup struct {
	Group *reconcile.Group `json:"group"`
}

func (UpdateGroup) Action() string    { return "updateGroup" }
func (m UpdateGroup) apply(h Handler) { h.UpdateGroup(m) }

type ShowInvite struct {
	InviterName   string `json:"inviterName"`
	InviterID     ID     `json:"inviterId"`
	InviterAvatar string `json:"inviterAvatar"`
}

func (ShowInvite) Action() string    { return "showInvite" }
func (m ShowInvite) apply(h Handler) { h.ShowInvite(m) }

type CloseInvitationsPanel struct{}

func (CloseInvitationsPanel) Action() string    { return "closeInvitationsPanel" }
func (m CloseInvitationsPanel) apply(h Handler) { h.CloseInvitationsPanel(m) }

type SearchStarted struct {
	Mode string `json:"mode"`
}

func (SearchStarted) Action() string    { return "searchStarted" }
func (m SearchStarted) apply(h Handler) { h.SearchStarted(m) }

type UpdateSearchTimer struct {
	Elapsed int `json:"elapsed"`
}

func (UpdateSearchTimer) Action() string    { return "updateSearchTimer" }
func (m UpdateSearchTimer) apply(h Handler) { h.UpdateSearchTimer(m) }

type MatchFound struct{}

func (MatchFound) Action() string    { return "matchFound" }
func (m MatchFound) apply(h Handler) { h.MatchFound(m) }

type SearchCancelled struct{}

func (SearchCancelled) Action() string    { return "searchCancelled" }
func (m SearchCancelled) apply(h Handler) { h.SearchCancelled(m) }

// UpdateQueueStats with nil Stats keeps the previous snapshot.
type UpdateQueueStats struct {
	Stats reconcile.Queue `json:"stats"`
}

func (UpdateQueueStats) Action() string    { return "updateQueueStats" }
func (m UpdateQueueStats) apply(h Handler) { h.UpdateQueueStats(m) }

// Combat

type ShowRoundStart struct {
	Round int `json:"round"`
}

func (ShowRoundStart) Action() string    { return "showRoundStart" }
func (m ShowRoundStart) apply(h Handler) { h.ShowRoundStart(m) }

type ShowCountdown struct {
	Number int `json:"number"`
}

func (ShowCountdown) Action() string    { return "showCountdown" }
func (m ShowCountdown) apply(h Handler) { h.ShowCountdown(m) }

type ShowGo struct{}

func (ShowGo) Action() string    { return "showGo" }
func (m ShowGo) apply(h Handler) { h.ShowGo(m) }

type ShowRoundEnd struct {
	Score     reconcile.Score `json:"score"`
	IsVictory bool            `json:"isVictory"`
}

func (ShowRoundEnd) Action() string    { return "showRoundEnd" }
func (m ShowRoundEnd) apply(h Handler) { h.ShowRoundEnd(m) }

type ShowMatchEnd struct {
	Victory bool            `json:"victory"`
	Score   reconcile.Score `json:"score"`
}

func (ShowMatchEnd) Action() string    { return "showMatchEnd" }
func (m ShowMatchEnd) apply(h Handler) { h.ShowMatchEnd(m) }

type UpdateScore struct {
	Score reconcile.Score `json:"score"`
	Round int             `json:"round"`
}

func (UpdateScore) Action() string    { return "updateScore" }
func (m UpdateScore) apply(h Handler) { h.UpdateScore(m) }

type ShowScoreHUD struct {
	Score reconcile.Score `json:"score"`
	Round int             `json:"round"`
}

func (ShowScoreHUD) Action() string    { return "showScoreHUD" }
func (m ShowScoreHUD) apply(h Handler) { h.ShowScoreHUD(m) }

type HideScoreHUD struct{}

func (HideScoreHUD) Action() string    { return "hideScoreHUD" }
func (m HideScoreHUD) apply(h Handler) { h.HideScoreHUD(m) }

// Kill feed

// KillFeed is the normalised shape of the three kill payloads hosts send.
// An empty Killer is a suicide.
type KillFeed struct {
	Killer     string
	KillerID   string
	Victim     string
	VictimID   string
	Weapon     string
	Headshot   bool
	Multiplier int
}

func (KillFeed) Action() string    { return "killFeed" }
func (m KillFeed) apply(h Handler) { h.KillFeed(m) }

type ClearKillFeed struct{}

func (ClearKillFeed) Action() string    { return "clearKillFeed" }
func (m ClearKillFeed) apply(h Handler) { h.ClearKillFeed(m) }

const UnknownPlayer = "Inconnu"

// splitTagged parses "Name [42]".
func splitTagged(full string) (name, id string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	if strings.HasSuffix(full, "]") {
		if i := strings.LastIndex(full, "["); i > 0 {
			digits := full[i+1 : len(full)-1]
			if digits != "" && strings.Trim(digits, "0123456789") == "" {
				return strings.TrimSpace(full[:i]), digits
			}
		}
	}
	return full, ""
}

// showKillfeed: {killerName:"Bob [3]", victimName, weapon, isHeadshot}
type taggedKill struct {
	KillerName string `json:"killerName"`
	VictimName string `json:"victimName"`
	Weapon     string `json:"weapon"`
	IsHeadshot bool   `json:"isHeadshot"`
}

func (k taggedKill) normalize() KillFeed {
	killer, killerID := splitTagged(k.KillerName)
	victim, victimID := splitTagged(k.VictimName)
	if victim == "" {
		victim = UnknownPlayer
	}
	return KillFeed{
		Killer: killer, KillerID: killerID,
		Victim: victim, VictimID: victimID,
		Weapon: k.Weapon, Headshot: k.IsHeadshot,
	}
}

// addKillFeed: {killerName, killerId, victimName, victimId}
type flatKill struct {
	KillerName string `json:"killerName"`
	KillerID   ID     `json:"killerId"`
	VictimName string `json:"victimName"`
	VictimID   ID     `json:"victimId"`
}

func (k flatKill) normalize() KillFeed {
	return KillFeed{
		Killer:   orDefault(k.KillerName, UnknownPlayer),
		KillerID: k.KillerID.OrUnknown(),
		Victim:   orDefault(k.VictimName, UnknownPlayer),
		VictimID: k.VictimID.OrUnknown(),
	}
}

// killFeed: {message:{killer, victim, killerId, victimId, multiplier}}
type wrappedKill struct {
	Message struct {
		Killer     string `json:"killer"`
		Victim     string `json:"victim"`
		KillerID   ID     `json:"killerId"`
		VictimID   ID     `json:"victimId"`
		Multiplier int    `json:"multiplier"`
	} `json:"message"`
}

func (k wrappedKill) normalize() KillFeed {
	m := k.Message
	return KillFeed{
		Killer:     orDefault(m.Killer, UnknownPlayer),
		KillerID:   m.KillerID.OrUnknown(),
		Victim:     orDefault(m.Victim, UnknownPlayer),
		VictimID:   m.VictimID.OrUnknown(),
		Multiplier: m.Multiplier,
	}
}

// Redzone overlays

const DefaultDeathTimer = 30

type ShowDeathScreen struct {
	Timer   int    `json:"timer"`
	Message string `json:"message"`
}

func (ShowDeathScreen) Action() string    { return "showDeathScreen" }
func (m ShowDeathScreen) apply(h Handler) { h.ShowDeathScreen(m) }
func (m ShowDeathScreen) withDefaults() Message {
	if m.Timer <= 0 {
		m.Timer = DefaultDeathTimer
	}
	m.Message = orDefault(m.Message, "Vous êtes gravement blessé")
	return m
}

type HideDeathScreen struct{}

func (HideDeathScreen) Action() string    { return "hideDeathScreen" }
func (m HideDeathScreen) apply(h Handler) { h.HideDeathScreen(m) }

type UpdateDeathScreen struct {
	Message      string `json:"message"`
	BeingRevived bool   `json:"beingRevived"`
	CanRespawn   bool   `json:"canRespawn"`
}

func (UpdateDeathScreen) Action() string    { return "updateDeathScreen" }
func (m UpdateDeathScreen) apply(h Handler) { h.UpdateDeathScreen(m) }

type ProgressKind string

const (
	ProgressRevive     ProgressKind = "revive"
	ProgressLoot       ProgressKind = "loot"
	ProgressBandage    ProgressKind = "bandage"
	ProgressLaundering ProgressKind = "laundering"
)

// DefaultProgressDuration is used when a show message has no duration.
func DefaultProgressDuration(k ProgressKind) time.Duration {
	switch k {
	case ProgressRevive:
		return 10 * time.Second
	case ProgressLoot:
		return 7 * time.Second
	case ProgressBandage:
		return 8 * time.Second
	default:
		return 3 * time.Second
	}
}

type ShowProgress struct {
	Kind ProgressKind `json:"-"`
	// Seconds as sent by the host; may be fractional.
	Seconds  float64       `json:"duration"`
	Duration time.Duration `json:"-"`
}

func (m ShowProgress) Action() string  { return "show" + title(m.Kind) + "Progress" }
func (m ShowProgress) apply(h Handler) { h.ShowProgress(m) }
func (m ShowProgress) withDefaults() Message {
	if m.Seconds > 0 {
		m.Duration = time.Duration(m.Seconds * float64(time.Second))
	} else {
		m.Duration = DefaultProgressDuration(m.Kind)
	}
	return m
}

type HideProgress struct {
	Kind ProgressKind `json:"-"`
}

func (m HideProgress) Action() string  { return "hide" + title(m.Kind) + "Progress" }
func (m HideProgress) apply(h Handler) { h.HideProgress(m) }

const DefaultPressDuration = 30 * time.Second

type ShowPressNotification struct {
	Type     string        `json:"type"`
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle"`
	Seconds  float64       `json:"duration"`
	Duration time.Duration `json:"-"`
}

func (ShowPressNotification) Action() string    { return "showPressNotification" }
func (m ShowPressNotification) apply(h Handler) { h.ShowPressNotification(m) }
func (m ShowPressNotification) withDefaults() Message {
	if m.Seconds > 0 {
		m.Duration = time.Duration(m.Seconds * float64(time.Second))
	} else {
		m.Duration = DefaultPressDuration
	}
	return m
}

type HidePressNotification struct{}

func (HidePressNotification) Action() string    { return "hidePressNotification" }
func (m HidePressNotification) apply(h Handler) { h.HidePressNotification(m) }

type SquadMember struct {
	ID     ID     `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

type Squad struct {
	Members []SquadMember `json:"members"`
	IsHost  bool          `json:"isHost"`
}

type SquadInvite struct {
	HostName string `json:"hostName"`
}

const DefaultSquadCapacity = 4

type OpenSquad struct {
	HasSquad         bool         `json:"hasSquad"`
	Squad            *Squad       `json:"squad"`
	MaxMembers       int          `json:"maxMembers"`
	HasPendingInvite bool         `json:"hasPendingInvite"`
	Invite           *SquadInvite `json:"invite"`
}

func (OpenSquad) Action() string    { return "openSquad" }
func (m OpenSquad) apply(h Handler) { h.OpenSquad(m) }
func (m OpenSquad) withDefaults() Message {
	if m.MaxMembers <= 0 {
		m.MaxMembers = DefaultSquadCapacity
	}
	if m.HasSquad && m.Squad == nil {
		m.HasSquad = false
	}
	return m
}

type CloseSquad struct{}

func (CloseSquad) Action() string    { return "closeSquad" }
func (m CloseSquad) apply(h Handler) { h.CloseSquad(m) }

type ShowPlayerInteract struct {
	Name     string `json:"name"`
	ServerID ID     `json:"serverId"`
}

func (ShowPlayerInteract) Action() string    { return "showPlayerInteract" }
func (m ShowPlayerInteract) apply(h Handler) { h.ShowPlayerInteract(m) }
func (m ShowPlayerInteract) withDefaults() Message {
	m.Name = orDefault(m.Name, "Joueur")
	if m.ServerID == "" {
		m.ServerID = "0"
	}
	return m
}

type HidePlayerInteract struct{}

func (HidePlayerInteract) Action() string    { return "hidePlayerInteract" }
func (m HidePlayerInteract) apply(h Handler) { h.HidePlayerInteract(m) }

// Arena zones

type UpdateZonePlayers struct {
	Zones []Zone `json:"zones"`
}

func (UpdateZonePlayers) Action() string    { return "updateZonePlayers" }
func (m UpdateZonePlayers) apply(h Handler) { h.UpdateZonePlayers(m) }
func (m UpdateZonePlayers) withDefaults() Message {
	m.Zones = withZoneDefaults(m.Zones)
	return m
}

type ShowExitHud struct{}

func (ShowExitHud) Action() string    { return "showExitHud" }
func (m ShowExitHud) apply(h Handler) { h.ShowExitHud(m) }

type HideExitHud struct{}

func (HideExitHud) Action() string    { return "hideExitHud" }
func (m HideExitHud) apply(h Handler) { h.HideExitHud(m) }

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func title(k ProgressKind) string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}
