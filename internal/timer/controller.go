// Package timer implements the lot countdown: a value type holding the
// seconds left and a running flag, and a Ticker that drives it once per
// second while it runs.
package timer

// Action is an operator timer command.
type Action string

const (
	ActionStart Action = "start"
	ActionPause Action = "pause"
	ActionReset Action = "reset"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionStart, ActionPause, ActionReset:
		return true
	}
	return false
}

// Controller is the countdown state. Methods return an updated copy.
type Controller struct {
	remaining int
	running   bool
	initial   int
}

// New returns a stopped countdown of initial seconds.
func New(initial int) Controller {
	return Controller{remaining: initial, initial: initial}
}

// Remaining returns the seconds left.
func (c Controller) Remaining() int { return c.remaining }

// Running reports whether the countdown is ticking.
func (c Controller) Running() bool { return c.running }

// Apply runs an operator action. Unknown actions leave c unchanged.
func (c Controller) Apply(a Action) Controller {
	switch a {
	case ActionStart:
		return c.Start()
	case ActionPause:
		return c.Pause()
	case ActionReset:
		return c.Reset()
	}
	return c
}

// Start sets the countdown running. An expired countdown stays stopped.
func (c Controller) Start() Controller {
	c.running = c.remaining > 0
	return c
}

// Pause stops the countdown and keeps the value.
func (c Controller) Pause() Controller {
	c.running = false
	return c
}

// Reset restores the initial value and stops the countdown.
func (c Controller) Reset() Controller {
	c.remaining = c.initial
	c.running = false
	return c
}

// Tick advances one second. It is a no-op while stopped. Reaching zero stops
// the countdown; expired reports that this tick did so.
func (c Controller) Tick() (next Controller, expired bool) {
	if !c.running {
		return c, false
	}
	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining == 0 {
		c.running = false
		return c, true
	}
	return c, false
}
