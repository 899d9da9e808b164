// Package overlay drives timed visual elements: a once-per-second countdown
// tick and a per-frame progress loop per slot. A slot holds at most one
// handle; starting a slot again tears the previous handle down first.
package overlay

import (
	"math"
	"time"

	"github.com/DoyleJ11/arena-hud/internal/dom"
	"github.com/DoyleJ11/arena-hud/internal/sched"
)

type Slot string

const (
	SlotRevive     Slot = "revive"
	SlotLoot       Slot = "loot"
	SlotBandage    Slot = "bandage"
	SlotLaundering Slot = "laundering"
	SlotDeath      Slot = "death"
	SlotPress      Slot = "press"
	SlotRoundEnd   Slot = "round_end"
	SlotMatchEnd   Slot = "match_end"
	SlotCombat     Slot = "combat"
	SlotSearchHint Slot = "search_hint"
)

const tickInterval = time.Second

type Spec struct {
	Slot     Slot
	Duration time.Duration
	// Container is the element the overlay draws into. The frame loop stops
	// as soon as it is hidden or missing.
	Container *dom.Node
	OnTick    func(remaining int)
	OnFrame   func(progress float64)
}

// Handle owns both loops of one overlay run.
type Handle struct {
	slot      Slot
	start     time.Time
	expiry    time.Time
	container *dom.Node
	tick      *sched.Handle
	frame     *sched.Handle
	delay     *sched.Handle
	disposed  bool
}

func (h *Handle) Slot() Slot {
	if h == nil {
		return ""
	}
	return h.slot
}

// Dispose cancels every timer the handle holds. Safe to call repeatedly.
func (h *Handle) Dispose() {
	if h == nil || h.disposed {
		return
	}
	h.disposed = true
	h.tick.Cancel()
	h.frame.Cancel()
	h.delay.Cancel()
}

func (h *Handle) Active() bool {
	return h != nil && !h.disposed
}

type Manager struct {
	sched *sched.Scheduler
	slots map[Slot]*Handle
}

func NewManager(s *sched.Scheduler) *Manager {
	return &Manager{sched: s, slots: make(map[Slot]*Handle)}
}

// Start replaces whatever occupies spec.Slot. A non-positive duration is
// already expired: OnTick(0) and OnFrame(1) run once, synchronously, and
// nothing is scheduled.
func (m *Manager) Start(spec Spec) *Handle {
	m.Cancel(spec.Slot)

	if spec.Duration <= 0 {
		if spec.OnTick != nil {
			spec.OnTick(0)
		}
		if spec.OnFrame != nil {
			spec.OnFrame(1)
		}
		return nil
	}

	now := m.sched.Now()
	h := &Handle{
		slot:      spec.Slot,
		start:     now,
		expiry:    now.Add(spec.Duration),
		container: spec.Container,
	}
	m.slots[spec.Slot] = h

	if spec.OnTick != nil {
		h.tick = m.sched.Every(tickInterval, func() {
			if h.disposed {
				return
			}
			left := h.expiry.Sub(m.sched.Now())
			remaining := int(math.Max(0, math.Round(left.Seconds())))
			spec.OnTick(remaining)
			if remaining == 0 {
				h.tick.Cancel()
				m.release(h)
			}
		})
	}

	if spec.OnFrame != nil {
		var step func(now time.Time)
		step = func(now time.Time) {
			if h.disposed {
				return
			}
			if h.container.Hidden() {
				h.frame = nil
				m.release(h)
				return
			}
			progress := float64(now.Sub(h.start)) / float64(spec.Duration)
			progress = math.Min(1, math.Max(0, progress))
			spec.OnFrame(progress)
			if progress >= 1 {
				h.frame = nil
				m.release(h)
				return
			}
			h.frame = m.sched.Frame(step)
		}
		h.frame = m.sched.Frame(step)
	}

	return h
}

// After runs fn once after delay, occupying slot until then. Used for
// delayed shows and auto-hides so they follow the same replace rules.
func (m *Manager) After(slot Slot, delay time.Duration, fn func()) *Handle {
	m.Cancel(slot)
	now := m.sched.Now()
	h := &Handle{slot: slot, start: now, expiry: now.Add(delay)}
	m.slots[slot] = h
	h.delay = m.sched.After(delay, func() {
		if h.disposed {
			return
		}
		h.disposed = true
		if m.slots[slot] == h {
			delete(m.slots, slot)
		}
		fn()
	})
	return h
}

// Cancel stops both loops of slot. Cancelling an empty slot is a no-op.
func (m *Manager) Cancel(slot Slot) {
	h, ok := m.slots[slot]
	if !ok {
		return
	}
	delete(m.slots, slot)
	h.Dispose()
}

func (m *Manager) CancelAll() {
	for slot := range m.slots {
		m.Cancel(slot)
	}
}

func (m *Manager) Active(slot Slot) bool {
	return m.slots[slot].Active()
}

func (m *Manager) Len() int { return len(m.slots) }

// release frees the slot once neither loop is live anymore.
func (m *Manager) release(h *Handle) {
	if h.tick.Active() || h.frame.Active() {
		return
	}
	h.Dispose()
	if m.slots[h.slot] == h {
		delete(m.slots, h.slot)
	}
}
