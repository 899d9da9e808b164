// Package feed keeps a most-recent-first list of short-lived entries with a
// visible-count cap and a per-entry lifetime. Either limit removes an entry.
package feed

import (
	"slices"
	"time"

	"github.com/DoyleJ11/arena-hud/internal/dom"
	"github.com/DoyleJ11/arena-hud/internal/sched"
)

type Config struct {
	Container *dom.Node
	Max       int
	Lifetime  time.Duration
	// Fade is how long the exit transition runs before the node is
	// detached. Zero detaches immediately.
	Fade      time.Duration
	ExitClass string
	// OnChange receives the visible count after every change.
	OnChange func(visible int)
}

type Item struct {
	Node    *dom.Node
	Key     string
	Created time.Time

	expiry *sched.Handle
	fade   *sched.Handle
}

type Feed struct {
	sched   *sched.Scheduler
	cfg     Config
	items   []*Item // visible, head first
	leaving []*Item // playing the exit transition
}

func New(s *sched.Scheduler, cfg Config) *Feed {
	if cfg.Max <= 0 {
		cfg.Max = 1
	}
	return &Feed{sched: s, cfg: cfg}
}

// Push inserts node at the head. A non-empty key that is already visible
// makes Push a no-op.
func (f *Feed) Push(node *dom.Node, key string) bool {
	if node == nil {
		return false
	}
	if key != "" && f.index(key) >= 0 {
		node.Remove()
		return false
	}

	it := &Item{Node: node, Key: key, Created: f.sched.Now()}
	f.cfg.Container.Prepend(node)
	f.items = slices.Insert(f.items, 0, it)

	for len(f.items) > f.cfg.Max {
		f.evict(f.items[len(f.items)-1])
	}

	if f.cfg.Lifetime > 0 {
		it.expiry = f.sched.After(f.cfg.Lifetime, func() { f.evict(it) })
	}
	f.changed()
	return true
}

// Remove takes the keyed entry out right away, without the exit transition.
func (f *Feed) Remove(key string) bool {
	i := f.index(key)
	if i < 0 {
		return false
	}
	it := f.items[i]
	f.items = slices.Delete(f.items, i, i+1)
	it.expiry.Cancel()
	it.Node.Remove()
	f.changed()
	return true
}

// Clear detaches every node, fading or not, and cancels every pending
// timer.
func (f *Feed) Clear() {
	for _, it := range f.items {
		it.expiry.Cancel()
		it.Node.Remove()
	}
	for _, it := range f.leaving {
		it.fade.Cancel()
		it.Node.Remove()
	}
	hadItems := len(f.items) > 0
	f.items = nil
	f.leaving = nil
	if hadItems {
		f.changed()
	}
}

func (f *Feed) Len() int { return len(f.items) }

// Fading counts entries still on the page but already leaving.
func (f *Feed) Fading() int { return len(f.leaving) }

func (f *Feed) Items() []*Item { return slices.Clone(f.items) }

func (f *Feed) Keys() []string {
	keys := make([]string, 0, len(f.items))
	for _, it := range f.items {
		keys = append(keys, it.Key)
	}
	return keys
}

func (f *Feed) Has(key string) bool { return f.index(key) >= 0 }

// evict moves it from the visible list into the exit transition.
func (f *Feed) evict(it *Item) {
	i := slices.Index(f.items, it)
	if i < 0 {
		return
	}
	f.items = slices.Delete(f.items, i, i+1)
	it.expiry.Cancel()

	if f.cfg.Fade <= 0 {
		it.Node.Remove()
		f.changed()
		return
	}

	it.Node.AddClass(f.cfg.ExitClass)
	f.leaving = append(f.leaving, it)
	it.fade = f.sched.After(f.cfg.Fade, func() {
		if j := slices.Index(f.leaving, it); j >= 0 {
			f.leaving = slices.Delete(f.leaving, j, j+1)
		}
		it.Node.Remove()
	})
	f.changed()
}

func (f *Feed) index(key string) int {
	if key == "" {
		return -1
	}
	return slices.IndexFunc(f.items, func(it *Item) bool { return it.Key == key })
}

func (f *Feed) changed() {
	if f.cfg.OnChange != nil {
		f.cfg.OnChange(len(f.items))
	}
}
