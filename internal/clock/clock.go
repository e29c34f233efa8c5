package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock abstracts time operations for testability.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) clockwork.Ticker
}

// Real returns a Clock backed by the system clock.
func Real() Clock { return clockwork.NewRealClock() }

// Fake returns a manually advanced clock starting at t.
func Fake(t time.Time) *clockwork.FakeClock { return clockwork.NewFakeClockAt(t) }
