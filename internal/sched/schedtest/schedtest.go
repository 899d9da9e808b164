// Package schedtest drives a sched.Scheduler on a mock clock.
package schedtest

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/DoyleJ11/arena-hud/internal/sched"
)

const DefaultFrame = 16 * time.Millisecond

type Driver struct {
	Mock  *clock.Mock
	Sched *sched.Scheduler
	Frame time.Duration
}

func New() *Driver {
	m := clock.NewMock()
	return &Driver{Mock: m, Sched: sched.New(m), Frame: DefaultFrame}
}

// Advance moves the clock forward by d in frame-sized steps, firing due
// timers and one animation frame per step.
func (d *Driver) Advance(total time.Duration) {
	for total > 0 {
		step := d.Frame
		if step > total {
			step = total
		}
		d.Mock.Add(step)
		d.Sched.RunDue()
		d.Sched.RunFrame()
		total -= step
	}
}

// AdvanceTimers moves the clock without running any animation frame.
func (d *Driver) AdvanceTimers(total time.Duration) {
	d.Mock.Add(total)
	d.Sched.RunDue()
}
