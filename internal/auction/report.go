package auction

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jensholdgaard/player-auction/internal/event"
)

// ErrEmptyJournal is returned when a session has no journal entries.
var ErrEmptyJournal = errors.New("no events to replay")

// LotResult is how one lot ended.
type LotResult struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Round    string `json:"round"`
	Sold     bool   `json:"sold"`
	TeamID   string `json:"team_id,omitempty"`
	Amount   int    `json:"amount,omitempty"`
	Bids     int    `json:"bids"`
}

// Report summarises a session from its journal. It is read-only: the
// engine never restores state from it.
type Report struct {
	SessionID   string         `json:"session_id"`
	Phase       Phase          `json:"phase"`
	StartedAt   time.Time      `json:"started_at,omitzero"`
	CompletedAt time.Time      `json:"completed_at,omitzero"`
	Reveals     int            `json:"reveals"`
	Bids        int            `json:"bids"`
	Lots        []LotResult    `json:"lots"`
	TeamSpend   map[string]int `json:"team_spend"`
	Registered  map[string]int `json:"registered"`
	Version     int            `json:"version"`
}

// Replay folds a session's journal into a Report.
func Replay(events []event.Event) (*Report, error) {
	if len(events) == 0 {
		return nil, ErrEmptyJournal
	}

	r := &Report{
		SessionID:  events[0].AggregateID,
		Phase:      PhaseSetup,
		TeamSpend:  make(map[string]int),
		Registered: make(map[string]int),
	}
	names := make(map[string]string)
	bids := make(map[string]int)

	for _, e := range events {
		switch e.Type {
		case event.AuctionStarted, event.ReauctionStarted, event.AuctionCompleted:
			var d event.PhaseChangedData
			if err := json.Unmarshal(e.Data, &d); err != nil {
				return nil, fmt.Errorf("unmarshalling %s event: %w", e.Type, err)
			}
			r.Phase = Phase(d.To)
			switch e.Type {
			case event.AuctionStarted:
				r.StartedAt = e.CreatedAt
			case event.AuctionCompleted:
				r.CompletedAt = e.CreatedAt
			}

		case event.LotRevealed:
			var d event.LotRevealedData
			if err := json.Unmarshal(e.Data, &d); err != nil {
				return nil, fmt.Errorf("unmarshalling reveal event: %w", err)
			}
			r.Reveals++
			names[d.PlayerID] = d.Name
			bids[d.PlayerID] = 0

		case event.LotBidUpdated:
			var d event.BidUpdatedData
			if err := json.Unmarshal(e.Data, &d); err != nil {
				return nil, fmt.Errorf("unmarshalling bid event: %w", err)
			}
			r.Bids++
			bids[d.PlayerID]++

		case event.LotSold:
			var d event.LotSoldData
			if err := json.Unmarshal(e.Data, &d); err != nil {
				return nil, fmt.Errorf("unmarshalling sold event: %w", err)
			}
			r.TeamSpend[d.TeamID] += d.Amount
			r.Lots = append(r.Lots, LotResult{
				PlayerID: d.PlayerID,
				Name:     names[d.PlayerID],
				Round:    d.Round,
				Sold:     true,
				TeamID:   d.TeamID,
				Amount:   d.Amount,
				Bids:     bids[d.PlayerID],
			})

		case event.LotUnsold:
			var d event.LotUnsoldData
			if err := json.Unmarshal(e.Data, &d); err != nil {
				return nil, fmt.Errorf("unmarshalling unsold event: %w", err)
			}
			r.Lots = append(r.Lots, LotResult{
				PlayerID: d.PlayerID,
				Name:     names[d.PlayerID],
				Round:    d.Round,
				Bids:     bids[d.PlayerID],
			})

		case event.PlayerRegistered:
			r.Registered["players"]++

		case event.TeamRegistered:
			r.Registered["teams"]++
		}
		r.Version = e.Version
	}
	return r, nil
}

// Sold returns the number of lots sold.
func (r *Report) Sold() int {
	n := 0
	for _, l := range r.Lots {
		if l.Sold {
			n++
		}
	}
	return n
}
