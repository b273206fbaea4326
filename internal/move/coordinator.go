// Package move absorbs the duplicate connect notifications a diagram surface fires while a
// user drags an existing connection to a new pair of endpoints.
package move

import (
	"github.com/json-to-terraform/connector/internal/tick"
)

// Scheduler queues a callback for the next tick boundary.
type Scheduler interface {
	Schedule(fn func()) tick.Timer
}

// State is the coordinator state.
type State int

const (
	// Normal forwards every connect notification.
	Normal State = iota
	// Suppressing swallows connect notifications until the next tick.
	Suppressing
)

func (s State) String() string {
	switch s {
	case Normal:
		return "normal"
	case Suppressing:
		return "suppressing"
	default:
		return "unknown"
	}
}

// Coordinator is the two-state suppression machine. One window covers one move gesture.
type Coordinator struct {
	sched     Scheduler
	state     State
	timer     tick.Timer
	swallowed int
}

// New returns a coordinator in the Normal state.
func New(sched Scheduler) *Coordinator {
	return &Coordinator{sched: sched}
}

// EnterSuppressionWindow switches to Suppressing and schedules the return to Normal on the
// next tick. Entering again while suppressing moves the end of the window to the tick after
// the latest call.
func (c *Coordinator) EnterSuppressionWindow() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.state = Suppressing
	c.timer = c.sched.Schedule(func() {
		c.state = Normal
		c.timer = nil
	})
}

// IsSuppressing reports whether a window is open.
func (c *Coordinator) IsSuppressing() bool { return c.state == Suppressing }

// State returns the current state.
func (c *Coordinator) State() State { return c.state }

// Admit reports whether a connect-style notification may be forwarded. Refused
// notifications are counted.
func (c *Coordinator) Admit() bool {
	if c.state == Suppressing {
		c.swallowed++
		return false
	}
	return true
}

// Swallowed returns how many notifications Admit refused.
func (c *Coordinator) Swallowed() int { return c.swallowed }
