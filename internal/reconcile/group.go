package reconcile

import "fmt"

const (
	LabelSelectMode  = "SÉLECTIONNEZ UN MODE"
	LabelOnlyHost    = "SEUL L'HÔTE PEUT LANCER"
	LabelAllReady    = "TOUS LES JOUEURS DOIVENT ÊTRE PRÊTS"
	LabelSearch      = "RECHERCHER UNE PARTIE"
	LabelReady       = "✓ PRÊT"
	LabelNotReady    = "SE METTRE PRÊT"
	labelNeedPlayers = "IL FAUT %d JOUEUR(S)"
)

func NeedPlayersLabel(n int) string { return fmt.Sprintf(labelNeedPlayers, n) }

type Member struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	IsReady  bool   `json:"isReady"`
	IsLeader bool   `json:"isLeader"`
	IsYou    bool   `json:"isYou"`
}

// Group is the authoritative roster. It is replaced wholesale on every push,
// never patched.
type Group struct {
	Members []Member `json:"members"`
}

func (g *Group) Empty() bool { return g == nil || len(g.Members) == 0 }

// Me returns the local member.
func (g *Group) Me() (Member, bool) {
	if g == nil {
		return Member{}, false
	}
	for _, m := range g.Members {
		if m.IsYou {
			return m, true
		}
	}
	return Member{}, false
}

func (g *Group) IAmLeader() bool {
	me, ok := g.Me()
	return ok && me.IsLeader
}

func (g *Group) AllReady() bool {
	if g.Empty() {
		return false
	}
	for _, m := range g.Members {
		if !m.IsReady {
			return false
		}
	}
	return true
}

// Mode is the selected match mode; the zero value means none selected.
type Mode struct {
	Name    string
	Players int
}

func (m Mode) Selected() bool { return m.Name != "" }

type Eligibility struct {
	Enabled bool
	Label   string
}

// SearchEligibility recomputes the search button from scratch. The first
// failing condition wins: mode selected, leadership, group size, readiness.
// Without a roster there is no leader to check, so the size label shows.
func SearchEligibility(mode Mode, g *Group) Eligibility {
	switch {
	case !mode.Selected():
		return Eligibility{Label: LabelSelectMode}
	case g.Empty():
		return Eligibility{Label: NeedPlayersLabel(mode.Players)}
	case !g.IAmLeader():
		return Eligibility{Label: LabelOnlyHost}
	case len(g.Members) != mode.Players:
		return Eligibility{Label: NeedPlayersLabel(mode.Players)}
	case !g.AllReady():
		return Eligibility{Label: LabelAllReady}
	default:
		return Eligibility{Enabled: true, Label: LabelSearch}
	}
}

func ReadyLabel(ready bool) string {
	if ready {
		return LabelReady
	}
	return LabelNotReady
}

type SlotState string

const (
	SlotMember SlotState = "member"
	SlotInvite SlotState = "invite"
	SlotLocked SlotState = "locked"
	SlotSolo   SlotState = "solo"
)

// SlotView is everything needed to draw one roster slot.
type SlotView struct {
	Index   int
	State   SlotState
	Member  Member
	CanKick bool
}

func (s SlotView) ClassName() string {
	switch s.State {
	case SlotMember:
		c := "player-slot"
		if s.Member.IsLeader {
			c += " host-slot"
		}
		if s.Member.IsReady {
			c += " ready"
		}
		return c
	case SlotSolo:
		return "player-slot host-slot"
	case SlotLocked:
		return "player-slot empty-slot locked"
	default:
		return "player-slot empty-slot"
	}
}

// Slots rebuilds the roster. Empty slots inside the selected mode's size are
// invitable, the rest are locked; slot 0 shows the local player when solo.
func Slots(g *Group, mode Mode, count int) []SlotView {
	out := make([]SlotView, count)
	for i := range out {
		out[i] = SlotView{Index: i, State: SlotLocked}
		if mode.Selected() && i < mode.Players {
			out[i].State = SlotInvite
		}
	}
	if count == 0 {
		return out
	}
	if g.Empty() {
		out[0].State = SlotSolo
		return out
	}
	leader := g.IAmLeader()
	for i, m := range g.Members {
		if i >= count {
			break
		}
		out[i] = SlotView{
			Index:   i,
			State:   SlotMember,
			Member:  m,
			CanKick: leader && !m.IsLeader && !m.IsYou,
		}
	}
	return out
}
