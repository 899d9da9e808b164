package hud

import (
	"strconv"

	"github.com/DoyleJ11/arena-hud/internal/dispatch"
	"github.com/DoyleJ11/arena-hud/internal/dom"
)

func (c *Controller) KillFeed(m dispatch.KillFeed) {
	f := c.killFeed()
	if f == nil {
		return
	}

	row := c.tree.Create("div", c.layout.KillRowClass)
	if m.Headshot {
		row.AddClass("headshot")
	}

	if m.Killer == "" {
		row.AddClass("suicide")
		c.playerBox(row, "killfeed-player-box", "killfeed-victim", m.Victim, m.VictimID)
		c.child(row, "div", "killfeed-action-tag", "MORT")
	} else {
		c.playerBox(row, "killfeed-player-box killer-box", "killfeed-killer", m.Killer, m.KillerID)
		c.child(row, "div", "killfeed-action-tag", "À TUÉ")
		c.playerBox(row, "killfeed-player-box", "killfeed-victim", m.Victim, m.VictimID)
		if m.Headshot {
			c.child(row, "span", "killfeed-headshot-badge", "HEADSHOT")
		}
	}
	if m.Multiplier > 1 {
		c.child(row, "div", "kill-multiplier", "x"+strconv.Itoa(m.Multiplier))
	}

	f.Push(row, "")
}

func (c *Controller) playerBox(row *dom.Node, boxClass, nameClass, name, id string) {
	if id == "" {
		id = "?"
	}
	box := c.child(row, "div", boxClass, "")
	c.child(box, "span", "killfeed-player-id", "ID:"+id)
	c.child(box, "span", nameClass, truncateName(name))
}

func (c *Controller) ClearKillFeed(dispatch.ClearKillFeed) {
	if f := c.killFeed(); f != nil {
		f.Clear()
	}
}
