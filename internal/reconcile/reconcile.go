// Package reconcile decides which parts of the page a fresh snapshot
// actually changes. Counters only touch the DOM when their value differs and
// only pulse on increase; rosters are rebuilt from the snapshot every time.
package reconcile

import (
	"strconv"
	"strings"
	"time"

	"github.com/DoyleJ11/arena-hud/internal/dom"
	"github.com/DoyleJ11/arena-hud/internal/sched"
)

// Pulse is a transient class applied when a counter goes up.
type Pulse struct {
	Class string
	Hold  time.Duration
}

var (
	ScorePulse = Pulse{Class: "score-update", Hold: 500 * time.Millisecond}
	QueuePulse = Pulse{Class: "animate-in", Hold: 300 * time.Millisecond}
)

type Reconciler struct {
	sched  *sched.Scheduler
	pulses map[string]pending
}

// pending is a pulse class waiting for its removal timer.
type pending struct {
	node  *dom.Node
	class string
	timer *sched.Handle
}

func New(s *sched.Scheduler) *Reconciler {
	return &Reconciler{sched: s, pulses: make(map[string]pending)}
}

// Counter renders value into node. It reports whether the text changed.
func (r *Reconciler) Counter(node *dom.Node, value int, p Pulse) bool {
	return r.CounterOn(node, node, value, p)
}

// CounterOn renders value into text and pulses target, which is usually the
// card around the number.
func (r *Reconciler) CounterOn(text, target *dom.Node, value int, p Pulse) bool {
	if text == nil {
		return false
	}
	next := strconv.Itoa(value)
	prevText := text.Text()
	if prevText == next {
		return false
	}
	prev, _ := strconv.Atoi(strings.TrimSpace(prevText))
	text.SetText(next)

	if value > prev && p.Class != "" && target != nil {
		r.pulse(target, p)
	}
	return true
}

func (r *Reconciler) pulse(node *dom.Node, p Pulse) {
	id := node.ID()
	if prev, ok := r.pulses[id]; ok {
		prev.timer.Cancel()
		if prev.class != p.Class {
			prev.node.RemoveClass(prev.class)
		}
	}
	node.AddClass(p.Class)
	r.pulses[id] = pending{node: node, class: p.Class, timer: r.sched.After(p.Hold, func() {
		delete(r.pulses, id)
		node.RemoveClass(p.Class)
	})}
}

// Reset cancels every pending pulse and takes its class off right away.
func (r *Reconciler) Reset() {
	for id, pl := range r.pulses {
		pl.timer.Cancel()
		pl.node.RemoveClass(pl.class)
		delete(r.pulses, id)
	}
}

// Score is the match score pushed by the host.
type Score struct {
	Team1 int `json:"team1"`
	Team2 int `json:"team2"`
}

// Queue maps a match mode to its waiting-player count.
type Queue map[string]int

// Diff lists the modes whose count differs from prev, in the order of modes.
func (q Queue) Diff(prev Queue, modes []string) []string {
	var changed []string
	for _, m := range modes {
		if q[m] != prev[m] {
			changed = append(changed, m)
		}
	}
	return changed
}

func (q Queue) Clone() Queue {
	out := make(Queue, len(q))
	for k, v := range q {
		out[k] = v
	}
	return out
}
