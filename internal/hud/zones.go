package hud

import (
	"fmt"
	"strconv"

	"github.com/DoyleJ11/arena-hud/internal/dispatch"
	"github.com/DoyleJ11/arena-hud/internal/dom"
)

const (
	zoneFull      = "COMPLET"
	zoneAvailable = "DISPONIBLE"
)

type zoneCard struct {
	card   *dom.Node
	count  *dom.Node
	status *dom.Node
}

// renderZones rebuilds the zone list from the last known zones.
func (c *Controller) renderZones() {
	list := c.el(idZoneList)
	if list == nil {
		return
	}
	list.Clear()
	clear(c.zoneCards)

	for _, z := range c.zones {
		card := c.child(list, "div", "zone-card", "")
		card.SetAttr("data-zone", strconv.Itoa(z.Zone))
		if z.Image != "" {
			c.child(card, "img", "zone-image", "").SetAttr("src", z.Image)
		}
		label := z.Label
		if label == "" {
			label = "Zone " + strconv.Itoa(z.Zone)
		}
		c.child(card, "div", "zone-text", label)
		zc := zoneCard{
			card:   card,
			count:  c.child(card, "span", "players-count", ""),
			status: c.child(card, "span", "zone-status", ""),
		}
		c.zoneCards[z.Zone] = zc
		c.renderZone(zc, z)
	}
}

func (c *Controller) renderZone(zc zoneCard, z dispatch.Zone) {
	setText(zc.count, fmt.Sprintf("%d/%d", z.Players, z.MaxPlayers))
	full := z.Full()
	if full {
		setText(zc.status, zoneFull)
		zc.card.SetAttr("data-full", "true")
	} else {
		setText(zc.status, zoneAvailable)
		zc.card.RemoveAttr("data-full")
	}
	zc.status.ToggleClass("full", full)
}

// UpdateZonePlayers only redraws cards while the zone menu is open.
func (c *Controller) UpdateZonePlayers(m dispatch.UpdateZonePlayers) {
	c.zones = m.Zones
	if !c.el(idMainUI).HasClass("active") {
		return
	}
	for _, z := range m.Zones {
		if zc, ok := c.zoneCards[z.Zone]; ok {
			c.renderZone(zc, z)
		}
	}
}

func (c *Controller) zoneFull(zone int) bool {
	for _, z := range c.zones {
		if z.Zone == zone {
			return z.Full()
		}
	}
	return false
}

func (c *Controller) ShowExitHud(dispatch.ShowExitHud) {
	c.el(idExitHud).AddClass("active")
}

func (c *Controller) HideExitHud(dispatch.HideExitHud) {
	c.el(idExitHud).RemoveClass("active")
}
