package hud

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/DoyleJ11/arena-hud/internal/gateway"
	"github.com/DoyleJ11/arena-hud/internal/reconcile"
)

// showModeStats fills the stats tab from a getPlayerStatsByMode reply. A
// failed or empty reply leaves the previous figures up.
func (c *Controller) showModeStats(r *gateway.Response) {
	var s reconcile.PlayerStats
	if err := r.Decode(&s); err != nil {
		c.log.Debug("mode stats unavailable", zap.Error(err))
		return
	}
	for _, f := range [][2]string{
		{idStatElo, strconv.Itoa(s.Elo)},
		{idStatKills, strconv.Itoa(s.Kills)},
		{idStatDeaths, strconv.Itoa(s.Deaths)},
		{idStatRatio, s.Ratio()},
		{idStatMatches, strconv.Itoa(s.MatchesPlayed)},
		{idStatWins, strconv.Itoa(s.Wins)},
		{idStatLosses, strconv.Itoa(s.Losses)},
		{idStatWinrate, s.Winrate()},
		{idStatStreak, strconv.Itoa(s.WinStreak)},
		{idStatBestStreak, strconv.Itoa(s.BestWinStreak)},
		{idStatBestElo, strconv.Itoa(s.PeakElo())},
	} {
		setText(c.el(f[0]), f[1])
	}

	rank := reconcile.RankFor(s.Elo)
	el := c.el(idStatRank)
	setText(el, rank.Name)
	setStyle(el, "color", rank.Color)
}

// showLeaderboard rebuilds the leaderboard rows. A failed reply renders as
// an empty board.
func (c *Controller) showLeaderboard(r *gateway.Response) {
	body := c.el(idLeaderboard)
	if body == nil {
		return
	}
	var rows []reconcile.PlayerStats
	if err := r.Decode(&rows); err != nil {
		c.log.Debug("leaderboard unavailable", zap.Error(err))
		rows = nil
	}

	body.Clear()
	if len(rows) == 0 {
		tr := c.child(body, "tr", "", "")
		td := c.child(tr, "td", "leaderboard-empty", reconcile.LabelNoData)
		td.SetAttr("colspan", "6")
		return
	}

	for i, p := range rows {
		tr := c.child(body, "tr", "", "")
		badge, medal := reconcile.Podium(i)
		rankCell := c.child(tr, "td", "rank", "")
		if medal != "" {
			c.child(rankCell, "span", "rank-badge "+medal, badge)
		} else {
			rankCell.SetText(badge)
		}

		player := c.child(tr, "td", "player-cell", "")
		avatar := p.Avatar
		if avatar == "" {
			avatar = DefaultAvatar
		}
		c.child(player, "img", "leaderboard-avatar", "").SetAttr("src", avatar)
		info := c.child(player, "div", "player-lb-info", "")
		c.child(info, "span", "player-name-lb", p.Name)
		rank := reconcile.RankFor(p.Elo)
		c.child(info, "span", "player-rank-lb", rank.Name).SetStyle("color", rank.Color)

		c.child(tr, "td", "elo-cell", strconv.Itoa(p.Elo))
		c.child(tr, "td", "", p.Ratio())
		c.child(tr, "td", "", strconv.Itoa(p.Wins))
		c.child(tr, "td", "", p.Winrate())
	}
}
