package reconcile

import (
	"math"
	"strconv"
)

const LabelNoData = "Aucune donnée disponible"

type Rank struct {
	Name  string
	Min   int
	Max   int
	Color string
}

var Ranks = []Rank{
	{"Bronze", 0, 999, "#cd7f32"},
	{"Argent", 1000, 1499, "#c0c0c0"},
	{"Or", 1500, 1999, "#ffd700"},
	{"Platine", 2000, 2499, "#4da6ff"},
	{"Émeraude", 2500, 2999, "#50c878"},
	{"Diamant", 3000, 3499, "#b9f2ff"},
	{"Master 3", 3500, 3999, "#ff6600"},
	{"Master 2", 4000, 4499, "#ff3300"},
	{"Master 1", 4500, 99999, "#ff0000"},
}

// RankFor finds the tier holding elo. Anything outside every tier falls
// back to Diamant.
func RankFor(elo int) Rank {
	for _, r := range Ranks {
		if elo >= r.Min && elo <= r.Max {
			return r
		}
	}
	return Ranks[5]
}

// PlayerStats is one player's record in one mode, as the host reports it.
// Leaderboard rows carry Name and Avatar as well.
type PlayerStats struct {
	Name          string `json:"name,omitempty"`
	Avatar        string `json:"avatar,omitempty"`
	Elo           int    `json:"elo"`
	Kills         int    `json:"kills"`
	Deaths        int    `json:"deaths"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	MatchesPlayed int    `json:"matches_played"`
	WinStreak     int    `json:"win_streak"`
	BestWinStreak int    `json:"best_win_streak"`
	BestElo       int    `json:"best_elo"`
}

// Ratio is kills per death with two decimals, or the kill count when the
// player never died.
func (s PlayerStats) Ratio() string {
	if s.Deaths > 0 {
		return strconv.FormatFloat(float64(s.Kills)/float64(s.Deaths), 'f', 2, 64)
	}
	return strconv.FormatFloat(float64(s.Kills), 'f', 2, 64)
}

// Winrate is the rounded win percentage, suffixed with %.
func (s PlayerStats) Winrate() string {
	pct := 0
	if s.MatchesPlayed > 0 {
		pct = int(math.Round(float64(s.Wins) / float64(s.MatchesPlayed) * 100))
	}
	return strconv.Itoa(pct) + "%"
}

// PeakElo is BestElo, or the current elo while no best is recorded.
func (s PlayerStats) PeakElo() int {
	if s.BestElo == 0 {
		return s.Elo
	}
	return s.BestElo
}

// Podium is the leaderboard badge for a 0-based position: a medal for the
// top three, #n after that.
func Podium(i int) (badge, class string) {
	switch i {
	case 0:
		return "🥇", "gold"
	case 1:
		return "🥈", "silver"
	case 2:
		return "🥉", "bronze"
	}
	return "#" + strconv.Itoa(i+1), ""
}
