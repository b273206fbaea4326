// Package tick provides the cooperative event loop the connector runs on. Callbacks
// scheduled on a Loop never run inside the code that scheduled them; they run when the
// host advances the loop to the next tick.
package tick

// Timer is a scheduled callback that can be cancelled before it runs.
type Timer interface {
	// Stop cancels the callback. It reports false if the callback already ran or was
	// already stopped.
	Stop() bool
}

type task struct {
	fn      func()
	stopped bool
	done    bool
}

func (t *task) Stop() bool {
	if t.stopped || t.done {
		return false
	}
	t.stopped = true
	return true
}

// Loop is a single-threaded queue of zero-delay callbacks. It is not safe for concurrent use.
type Loop struct {
	queue []*task
}

// NewLoop returns an empty loop.
func NewLoop() *Loop {
	return &Loop{}
}

// Schedule queues fn for the next tick.
func (l *Loop) Schedule(fn func()) Timer {
	t := &task{fn: fn}
	l.queue = append(l.queue, t)
	return t
}

// Pending returns the number of callbacks waiting for a tick, stopped ones excluded.
func (l *Loop) Pending() int {
	n := 0
	for _, t := range l.queue {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Tick runs every callback that was queued before the call. Callbacks scheduled while the
// tick runs wait for the next one. It returns the number of callbacks run.
func (l *Loop) Tick() int {
	batch := l.queue
	l.queue = nil

	ran := 0
	for _, t := range batch {
		if t.stopped {
			continue
		}
		t.done = true
		t.fn()
		ran++
	}
	return ran
}

// Drain ticks until no callbacks are pending or limit ticks have run. It returns the
// number of ticks taken and whether the loop went idle.
func (l *Loop) Drain(limit int) (int, bool) {
	ticks := 0
	for l.Pending() > 0 {
		if ticks >= limit {
			return ticks, false
		}
		l.Tick()
		ticks++
	}
	return ticks, true
}
