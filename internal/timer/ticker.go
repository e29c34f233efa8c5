package timer

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/jensholdgaard/player-auction/internal/clock"
)

// Ticker calls a function once per period while resumed. Each resume starts
// a new generation; the callback receives it so late ticks from an earlier
// generation can be told apart. While suspended no goroutine or clock ticker
// exists.
type Ticker struct {
	clock  clock.Clock
	period time.Duration
	onTick func(gen uint64)

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// NewTicker returns a suspended Ticker.
func NewTicker(clk clock.Clock, period time.Duration, onTick func(gen uint64)) *Ticker {
	return &Ticker{clock: clk, period: period, onTick: onTick}
}

// Resume starts ticking if suspended and returns the current generation.
func (t *Ticker) Resume() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.cancel != nil {
		return t.gen
	}
	t.gen++
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel

	tk := t.clock.NewTicker(t.period)
	t.wg.Add(1)
	go t.loop(ctx, tk, t.gen)
	return t.gen
}

func (t *Ticker) loop(ctx context.Context, tk clockwork.Ticker, gen uint64) {
	defer t.wg.Done()
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.Chan():
			t.onTick(gen)
		}
	}
}

// Suspend stops ticking. It does not wait for an in-flight callback, so it
// is safe to call from inside one.
func (t *Ticker) Suspend() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.suspendLocked()
}

func (t *Ticker) suspendLocked() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// Active reports whether the ticker is resumed.
func (t *Ticker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// Generation returns the generation of the latest resume.
func (t *Ticker) Generation() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen
}

// Close suspends the ticker for good and waits for its goroutine to exit.
// It must not be called from inside a callback.
func (t *Ticker) Close() {
	t.mu.Lock()
	t.closed = true
	t.suspendLocked()
	t.mu.Unlock()
	t.wg.Wait()
}
