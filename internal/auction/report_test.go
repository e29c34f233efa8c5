package auction_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/jensholdgaard/player-auction/internal/auction"
	"github.com/jensholdgaard/player-auction/internal/event"
)

func TestReplay_EmptyEvents(t *testing.T) {
	if _, err := auction.Replay(nil); !errors.Is(err, auction.ErrEmptyJournal) {
		t.Fatalf("Replay(nil) error = %v, want ErrEmptyJournal", err)
	}
}

func TestReplay_FromEngineJournal(t *testing.T) {
	e, _ := newEngine(t, nil, nil, auction.Options{})
	ctx := t.Context()

	if _, _, err := e.RegisterTeam(ctx, teamSpec("Chargers")); err != nil {
		t.Fatal(err)
	}
	p, _, err := e.RegisterPlayer(ctx, playerSpec("Virat", 200_000))
	if err != nil {
		t.Fatal(err)
	}
	mustStart(t, e)
	mustReveal(t, e)
	if _, err := e.UpdateBid(ctx, 220_000); err != nil {
		t.Fatal(err)
	}
	if _, err := e.UpdateBid(ctx, 260_000); err != nil {
		t.Fatal(err)
	}
	snap := e.Snapshot()
	teamID := snap.Teams[0].ID
	if _, err := e.SettleSold(ctx, teamID, 260_000); err != nil {
		t.Fatal(err)
	}

	r, err := auction.Replay(e.PendingEvents())
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if r.SessionID != "test-session" || r.Phase != auction.PhaseLiveInitial {
		t.Errorf("report header = (%q, %q)", r.SessionID, r.Phase)
	}
	if r.Registered["players"] != 1 || r.Registered["teams"] != 1 {
		t.Errorf("Registered = %v", r.Registered)
	}
	if len(r.Lots) != 1 {
		t.Fatalf("lots = %d, want 1", len(r.Lots))
	}
	lot := r.Lots[0]
	if lot.PlayerID != p.ID || lot.Name != "Virat" || !lot.Sold || lot.Amount != 260_000 || lot.Bids != 2 {
		t.Errorf("lot = %+v", lot)
	}
	if r.TeamSpend[teamID] != 260_000 {
		t.Errorf("TeamSpend = %v", r.TeamSpend)
	}
}

func TestReplay_InvalidData(t *testing.T) {
	for _, typ := range []event.Type{
		event.AuctionStarted,
		event.LotRevealed,
		event.LotBidUpdated,
		event.LotSold,
		event.LotUnsold,
	} {
		t.Run(string(typ), func(t *testing.T) {
			events := []event.Event{{
				AggregateID: "bad",
				Type:        typ,
				Data:        json.RawMessage(`{invalid`),
				Version:     1,
			}}
			if _, err := auction.Replay(events); err == nil {
				t.Fatal("expected error for invalid event data")
			}
		})
	}
}

func TestReplay_IgnoresTimerEntries(t *testing.T) {
	events := []event.Event{
		{AggregateID: "s", Type: event.LotTimerChanged, Data: json.RawMessage(`{}`), Version: 1},
		{AggregateID: "s", Type: event.LotTimerExpired, Data: json.RawMessage(`{}`), Version: 2},
	}
	r, err := auction.Replay(events)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if r.Version != 2 || r.Phase != auction.PhaseSetup {
		t.Errorf("report = %+v", r)
	}
}
