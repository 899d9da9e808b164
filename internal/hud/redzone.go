package hud

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/DoyleJ11/arena-hud/internal/dispatch"
	"github.com/DoyleJ11/arena-hud/internal/overlay"
)

const (
	deathTitleDying    = "VOUS ÊTES EN TRAIN DE MOURIR"
	deathTitleReviving = "RÉANIMATION EN COURS"
	deathTitleRespawn  = "VOUS POUVEZ RESPAWN"
	deathHintDying     = "UN ALLIÉ PEUT VOUS RÉANIMER AVEC UN MEDIKIT"
	deathHintReviving  = "UN ALLIÉ VOUS RÉANIME..."
	deathHintRespawn   = "APPUYEZ SUR BACKSPACE POUR RESPAWN EN ZONE SAFE"
	deathMessage       = "Vous êtes gravement blessé"

	colorDanger = "#ff0000"
	colorOK     = "#22c55e"

	pressDoneText = "DROP DISPONIBLE !"
)

// ringCircumference is the stroke length of a progress ring of radius 45.
var ringCircumference = 2 * math.Pi * 45

// ring describes where one progress kind draws. Rings have a circle and a
// seconds counter; bars only have a fill.
type ring struct {
	slot      overlay.Slot
	container string
	circle    string
	timer     string
	fill      string
}

var rings = map[dispatch.ProgressKind]ring{
	dispatch.ProgressRevive: {
		slot:      overlay.SlotRevive,
		container: "reviveProgressContainer",
		circle:    "reviveCircleProgress",
		timer:     "reviveTimer",
	},
	dispatch.ProgressLoot: {
		slot:      overlay.SlotLoot,
		container: "lootProgressContainer",
		circle:    "lootCircleProgress",
		timer:     "lootTimer",
	},
	dispatch.ProgressBandage: {
		slot:      overlay.SlotBandage,
		container: "bandageProgressContainer",
		circle:    "bandageCircleProgress",
		timer:     "bandageTimer",
	},
	dispatch.ProgressLaundering: {
		slot:      overlay.SlotLaundering,
		container: "launderingProgressContainer",
		fill:      "launderingProgressFill",
	},
}

func (c *Controller) ShowDeathScreen(m dispatch.ShowDeathScreen) {
	screen := c.el(idDeathScreen)
	if screen == nil {
		return
	}
	screen.Show()
	setText(c.el(idDeathMessage), m.Message)
	c.renderDeathState(false, false)
	c.renderDeathDigits(m.Timer)

	c.overlays.Start(overlay.Spec{
		Slot:      overlay.SlotDeath,
		Duration:  time.Duration(m.Timer) * time.Second,
		Container: screen,
		OnTick:    c.renderDeathDigits,
	})
}

func (c *Controller) HideDeathScreen(dispatch.HideDeathScreen) {
	c.overlays.Cancel(overlay.SlotDeath)
	c.el(idDeathScreen).Hide()
	c.renderDeathDigits(dispatch.DefaultDeathTimer)
	setText(c.el(idDeathMessage), deathMessage)
	c.renderDeathState(false, false)
}

func (c *Controller) UpdateDeathScreen(m dispatch.UpdateDeathScreen) {
	if m.Message != "" {
		setText(c.el(idDeathMessage), m.Message)
	}
	c.renderDeathState(m.BeingRevived, m.CanRespawn)
}

func (c *Controller) renderDeathState(reviving, canRespawn bool) {
	title, hint, color := deathTitleDying, deathHintDying, colorDanger
	switch {
	case reviving:
		title, hint, color = deathTitleReviving, deathHintReviving, colorOK
	case canRespawn:
		title, hint = deathTitleRespawn, deathHintRespawn
	}
	titleEl := c.el(idDeathTitle)
	setText(titleEl, title)
	setStyle(titleEl, "color", color)
	setText(c.el(idDeathHint), hint)
}

// renderDeathDigits writes MM:SS into the four digit boxes.
func (c *Controller) renderDeathDigits(total int) {
	s := mmss(total)
	setText(c.el("minTens"), s[0:1])
	setText(c.el("minUnits"), s[1:2])
	setText(c.el("secTens"), s[3:4])
	setText(c.el("secUnits"), s[4:5])
}

func (c *Controller) ShowProgress(m dispatch.ShowProgress) {
	r, ok := rings[m.Kind]
	if !ok {
		return
	}
	container := c.el(r.container)
	if container == nil {
		return
	}
	container.Show()

	if r.fill != "" {
		fill := c.el(r.fill)
		setStyle(fill, "width", "0%")
		c.overlays.Start(overlay.Spec{
			Slot:      r.slot,
			Duration:  m.Duration,
			Container: container,
			OnFrame: func(p float64) {
				setStyle(fill, "width", percent(p*100))
			},
		})
		return
	}

	circle, timer := c.el(r.circle), c.el(r.timer)
	if circle == nil || timer == nil {
		return
	}
	circ := strconv.FormatFloat(ringCircumference, 'f', 2, 64)
	setStyle(circle, "strokeDasharray", circ)
	setStyle(circle, "strokeDashoffset", circ)
	setText(timer, strconv.Itoa(int(math.Ceil(m.Duration.Seconds()))))

	c.overlays.Start(overlay.Spec{
		Slot:      r.slot,
		Duration:  m.Duration,
		Container: container,
		OnTick: func(remaining int) {
			setText(timer, strconv.Itoa(remaining))
		},
		OnFrame: func(p float64) {
			offset := ringCircumference * (1 - p)
			setStyle(circle, "strokeDashoffset", strconv.FormatFloat(offset, 'f', 2, 64))
		},
	})
}

func (c *Controller) HideProgress(m dispatch.HideProgress) {
	r, ok := rings[m.Kind]
	if !ok {
		return
	}
	c.overlays.Cancel(r.slot)
	c.el(r.container).Hide()
}

func (c *Controller) ShowPressNotification(m dispatch.ShowPressNotification) {
	box := c.el(idPress)
	if box == nil {
		return
	}
	sub, fill := c.el(idPressSubtitle), c.el(idPressFill)
	setText(c.el(idPressTitle), m.Title)
	setText(sub, m.Subtitle)
	setStyle(sub, "color", "")
	setStyle(box, "borderLeftColor", "")
	setStyle(fill, "width", "100%")
	setStyle(fill, "background", "#ff4444")
	box.Show()

	c.overlays.Start(overlay.Spec{
		Slot:      overlay.SlotPress,
		Duration:  m.Duration,
		Container: box,
		OnFrame: func(p float64) {
			setStyle(fill, "width", percent(100-p*100))
			if p < 1 {
				return
			}
			setStyle(fill, "background", "#00ff88")
			setStyle(box, "borderLeftColor", "#00ff88")
			setText(sub, pressDoneText)
			setStyle(sub, "color", "#00ff88")
			box.Hide()
		},
	})
}

func (c *Controller) HidePressNotification(dispatch.HidePressNotification) {
	c.overlays.Cancel(overlay.SlotPress)
	c.el(idPress).Hide()
}

func (c *Controller) OpenSquad(m dispatch.OpenSquad) {
	app := c.el(idSquadApp)
	if app == nil {
		return
	}
	c.squad = &m
	app.Show()

	content := c.el(idSquadContent)
	content.Clear()

	if m.HasPendingInvite && m.Invite != nil {
		inv := c.child(content, "div", "squad-invite", "")
		c.child(inv, "div", "squad-invite-title", "Invitation reçue")
		c.child(inv, "div", "squad-invite-text", m.Invite.HostName+" vous invite à rejoindre son squad.")
		c.intentButton(inv, "squad-btn-accept", "Accepter", "squadAccept")
		c.intentButton(inv, "squad-btn-decline", "Refuser", "squadDecline")
	}

	if !m.HasSquad {
		none := c.child(content, "div", "squad-no-squad", "")
		c.child(none, "div", "squad-no-squad-text", "Aucun groupe détecté. Lancez une nouvelle session.")
		c.intentButton(none, "squad-btn-create", "Créer le Groupe", "squadCreate")
		return
	}

	sq := m.Squad
	list := c.child(content, "div", "squad-members-list", "")
	for _, member := range sq.Members {
		row := c.child(list, "div", "squad-member", "")
		role := "Membre"
		if member.IsHost {
			row.AddClass("host")
			role = "Propriétaire"
		}
		c.child(row, "div", "squad-member-avatar", initial(member.Name))
		c.child(row, "b", "squad-member-name", member.Name)
		c.child(row, "span", "squad-member-role", fmt.Sprintf("%s • ID %s", role, member.ID.OrUnknown()))
		if sq.IsHost && !member.IsHost {
			kick := c.intentButton(row, "squad-btn-kick", "Kick", "squadKick")
			kick.SetAttr("data-player-id", string(member.ID))
		}
	}

	if sq.IsHost && len(sq.Members) < m.MaxMembers {
		c.intentButton(content, "squad-btn-invite", "Inviter", "squadInvite")
	}
	if sq.IsHost {
		c.intentButton(content, "squad-btn-disband", "Dissoudre la session actuelle", "squadDisband")
	} else {
		c.intentButton(content, "squad-btn-leave", "Quitter la session actuelle", "squadLeave")
	}
}

func (c *Controller) CloseSquad(dispatch.CloseSquad) {
	c.squad = nil
	c.el(idSquadApp).Hide()
}

func (c *Controller) ShowPlayerInteract(m dispatch.ShowPlayerInteract) {
	menu := c.el(idInteractMenu)
	if menu == nil {
		return
	}
	c.interact = &m
	setText(c.el(idInteractName), m.Name)
	setText(c.el(idInteractID), "[ID: "+string(m.ServerID)+"]")
	menu.Show()
}

func (c *Controller) HidePlayerInteract(dispatch.HidePlayerInteract) {
	c.interact = nil
	c.el(idInteractMenu).Hide()
}

func percent(v float64) string {
	return strconv.FormatFloat(math.Max(0, math.Min(100, v)), 'f', 1, 64) + "%"
}

func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}
