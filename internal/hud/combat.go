package hud

import (
	"strconv"

	"github.com/DoyleJ11/arena-hud/internal/dispatch"
	"github.com/DoyleJ11/arena-hud/internal/overlay"
	"github.com/DoyleJ11/arena-hud/internal/reconcile"
)

func (c *Controller) showCombat(message, subtitle string) {
	overlayEl := c.el(idCombatOverlay)
	if overlayEl == nil {
		return
	}
	overlayEl.Show()
	setText(c.el(idCombatMessage), message)
	setText(c.el(idCombatSubtitle), subtitle)
	c.overlays.After(overlay.SlotCombat, CombatOverlayHold, overlayEl.Hide)
}

func (c *Controller) ShowRoundStart(m dispatch.ShowRoundStart) {
	c.showCombat("ROUND "+strconv.Itoa(m.Round), "Préparez-vous")
}

func (c *Controller) ShowCountdown(m dispatch.ShowCountdown) {
	c.showCombat(strconv.Itoa(m.Number), "")
}

func (c *Controller) ShowGo(dispatch.ShowGo) {
	c.showCombat("GO!", "Combattez !")
}

// ShowRoundEnd waits before showing the result so the last kill registers
// first. A newer round end or a match end replaces the pending one.
func (c *Controller) ShowRoundEnd(m dispatch.ShowRoundEnd) {
	c.overlays.After(overlay.SlotRoundEnd, RoundEndDelay, func() {
		title := c.el(idRoundEndTitle)
		if m.IsVictory {
			setText(title, "VICTOIRE")
			title.SetClassName("round-end-title victory")
			setText(c.el(idRoundEndSub), "Manche remportée !")
		} else {
			setText(title, "DÉFAITE")
			title.SetClassName("round-end-title defeat")
			setText(c.el(idRoundEndSub), "Manche perdue")
		}
		setText(c.el(idRoundScore1), strconv.Itoa(m.Score.Team1))
		setText(c.el(idRoundScore2), strconv.Itoa(m.Score.Team2))

		el := c.el(idRoundEnd)
		el.Show()
		c.overlays.After(overlay.SlotRoundEnd, RoundEndHold, el.Hide)
	})
}

// ShowMatchEnd clears the kill feed and every running overlay before
// showing the final result.
func (c *Controller) ShowMatchEnd(m dispatch.ShowMatchEnd) {
	if c.kills != nil {
		c.kills.Clear()
	}
	c.overlays.CancelAll()
	c.hideTransient()
	c.inMatch = false

	result := c.el(idMatchEndResult)
	if m.Victory {
		setText(result, "VICTOIRE")
		result.SetClassName("match-end-result victory")
		setText(c.el(idMatchEndMsg), "Félicitations ! Vous avez gagné le match ! 🎉")
	} else {
		setText(result, "DÉFAITE")
		result.SetClassName("match-end-result defeat")
		setText(c.el(idMatchEndMsg), "Dommage... Vous avez perdu le match. Réessayez !")
	}
	setText(c.el(idFinalScore1), strconv.Itoa(m.Score.Team1))
	setText(c.el(idFinalScore2), strconv.Itoa(m.Score.Team2))

	el := c.el(idMatchEnd)
	el.Show()
	c.overlays.After(overlay.SlotMatchEnd, MatchEndHold, el.Hide)
}

func (c *Controller) UpdateScore(m dispatch.UpdateScore) {
	c.renderScore(m.Score, m.Round)
}

func (c *Controller) ShowScoreHUD(m dispatch.ShowScoreHUD) {
	c.renderScore(m.Score, m.Round)
	c.el(idScoreHUD).Show()
}

func (c *Controller) HideScoreHUD(dispatch.HideScoreHUD) {
	c.el(idScoreHUD).Hide()
}

func (c *Controller) renderScore(s reconcile.Score, round int) {
	c.recon.Counter(c.el(idTeam1Score), s.Team1, reconcile.ScorePulse)
	c.recon.Counter(c.el(idTeam2Score), s.Team2, reconcile.ScorePulse)
	setText(c.el(idCurrentRound), strconv.Itoa(round))
}
