// Package sched runs discrete timers and animation-frame callbacks for one
// event loop. It never starts goroutines: the owner decides when to call
// RunDue and RunFrame, so every callback runs on the owner's goroutine.
package sched

import (
	"container/heap"
	"time"

	"github.com/benbjohnson/clock"
)

// Handle identifies one scheduled callback. Cancel is idempotent and safe on
// a nil Handle.
type Handle struct {
	seq     uint64
	due     time.Time
	every   time.Duration
	fn      func()
	frameFn func(now time.Time)
	stopped bool
	index   int
}

func (h *Handle) Cancel() {
	if h == nil {
		return
	}
	h.stopped = true
}

func (h *Handle) Active() bool { return h != nil && !h.stopped }

type Scheduler struct {
	clock  clock.Clock
	seq    uint64
	timers timerHeap
	frames []*Handle

	// logical time while a timer callback runs; zero otherwise
	firing time.Time
}

func New(clk clock.Clock) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	return &Scheduler{clock: clk}
}

func (s *Scheduler) Clock() clock.Clock { return s.clock }

// Now is the due time of the timer being fired, or the clock time outside of
// timer callbacks. A loop that wakes late still sees each tick at its own
// instant.
func (s *Scheduler) Now() time.Time {
	if !s.firing.IsZero() {
		return s.firing
	}
	return s.clock.Now()
}

func (s *Scheduler) After(d time.Duration, fn func()) *Handle {
	return s.push(d, 0, fn)
}

func (s *Scheduler) Every(d time.Duration, fn func()) *Handle {
	if d <= 0 {
		d = time.Millisecond
	}
	return s.push(d, d, fn)
}

// Frame requests fn on the next animation frame. Like requestAnimationFrame,
// it fires once; callers re-request to keep animating.
func (s *Scheduler) Frame(fn func(now time.Time)) *Handle {
	s.seq++
	h := &Handle{seq: s.seq, frameFn: fn, index: -1}
	s.frames = append(s.frames, h)
	return h
}

func (s *Scheduler) push(d, every time.Duration, fn func()) *Handle {
	if d < 0 {
		d = 0
	}
	s.seq++
	h := &Handle{seq: s.seq, due: s.Now().Add(d), every: every, fn: fn}
	heap.Push(&s.timers, h)
	return h
}

// RunDue fires every timer due at or before the current clock time, in due
// order. Repeating timers that fall behind fire once per missed period.
func (s *Scheduler) RunDue() int {
	now := s.clock.Now()
	n := 0
	for s.timers.Len() > 0 {
		h := s.timers[0]
		if h.due.After(now) {
			break
		}
		heap.Pop(&s.timers)
		if h.stopped {
			continue
		}
		fireAt := h.due
		if h.every > 0 {
			h.due = h.due.Add(h.every)
			heap.Push(&s.timers, h)
		} else {
			h.stopped = true
		}
		s.firing = fireAt
		h.fn()
		s.firing = time.Time{}
		n++
	}
	return n
}

// RunFrame fires the frame callbacks requested before this call. Callbacks
// requested while running land in the next frame.
func (s *Scheduler) RunFrame() int {
	batch := s.frames
	s.frames = nil
	now := s.clock.Now()
	n := 0
	for _, h := range batch {
		if h.stopped {
			continue
		}
		h.stopped = true
		h.frameFn(now)
		n++
	}
	return n
}

// Next reports the earliest live timer deadline.
func (s *Scheduler) Next() (time.Time, bool) {
	for s.timers.Len() > 0 {
		h := s.timers[0]
		if !h.stopped {
			return h.due, true
		}
		heap.Pop(&s.timers)
	}
	return time.Time{}, false
}

func (s *Scheduler) HasFrames() bool {
	for _, h := range s.frames {
		if !h.stopped {
			return true
		}
	}
	return false
}

// Pending counts live timers and frame requests.
func (s *Scheduler) Pending() int {
	n := 0
	for _, h := range s.timers {
		if !h.stopped {
			n++
		}
	}
	for _, h := range s.frames {
		if !h.stopped {
			n++
		}
	}
	return n
}

// Stop cancels everything that is scheduled.
func (s *Scheduler) Stop() {
	for _, h := range s.timers {
		h.stopped = true
	}
	for _, h := range s.frames {
		h.stopped = true
	}
	s.timers = nil
	s.frames = nil
}

type timerHeap []*Handle

func (t timerHeap) Len() int { return len(t) }

func (t timerHeap) Less(i, j int) bool {
	if t[i].due.Equal(t[j].due) {
		return t[i].seq < t[j].seq
	}
	return t[i].due.Before(t[j].due)
}

func (t timerHeap) Swap(i, j int) {
	t[i], t[j] = t[j], t[i]
	t[i].index = i
	t[j].index = j
}

func (t *timerHeap) Push(x any) {
	h := x.(*Handle)
	h.index = len(*t)
	*t = append(*t, h)
}

func (t *timerHeap) Pop() any {
	old := *t
	n := len(old)
	h := old[n-1]
	old[n-1] = nil
	h.index = -1
	*t = old[:n-1]
	return h
}
