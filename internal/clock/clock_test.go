package clock_test

import (
	"context"
	"testing"
	"time"

	"github.com/jensholdgaard/player-auction/internal/clock"
)

func TestReal_Now(t *testing.T) {
	clk := clock.Real()
	before := time.Now()
	got := clk.Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("Real().Now() = %v, expected between %v and %v", got, before, after)
	}
}

func TestFake_Now(t *testing.T) {
	fixed := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	clk := clock.Fake(fixed)

	if got := clk.Now(); !got.Equal(fixed) {
		t.Errorf("Fake.Now() = %v, want %v", got, fixed)
	}

	clk.Advance(3 * time.Second)
	if got := clk.Now(); !got.Equal(fixed.Add(3 * time.Second)) {
		t.Errorf("Fake.Now() after advance = %v, want %v", got, fixed.Add(3*time.Second))
	}
}

func TestFake_Ticker(t *testing.T) {
	clk := clock.Fake(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	var c clock.Clock = clk

	tk := c.NewTicker(time.Second)
	defer tk.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := clk.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("waiting for ticker registration: %v", err)
	}

	clk.Advance(time.Second)
	select {
	case <-tk.Chan():
	case <-time.After(time.Second):
		t.Fatal("ticker did not fire after advancing one period")
	}
}
