package event

import (
	"encoding/json"
	"time"
)

// Type identifies an event kind.
type Type string

const (
	AuctionStarted   Type = "auction.started"
	ReauctionStarted Type = "auction.reauction_started"
	AuctionCompleted Type = "auction.completed"
	LotRevealed      Type = "lot.revealed"
	LotBidUpdated    Type = "lot.bid_updated"
	LotTimerChanged  Type = "lot.timer_changed"
	LotTimerExpired  Type = "lot.timer_expired"
	LotSold          Type = "lot.sold"
	LotUnsold        Type = "lot.unsold"
	PlayerRegistered Type = "player.registered"
	TeamRegistered   Type = "team.registered"
)

// Event represents a single entry in a session's audit journal.
type Event struct {
	ID          string          `json:"id" db:"id"`
	AggregateID string          `json:"aggregate_id" db:"aggregate_id"`
	Type        Type            `json:"type" db:"type"`
	Data        json.RawMessage `json:"data" db:"data"`
	Version     int             `json:"version" db:"version"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// PhaseChangedData is the payload for the auction.* events.
type PhaseChangedData struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// LotRevealedData is the payload for LotRevealed events.
type LotRevealedData struct {
	PlayerID  string `json:"player_id"`
	Name      string `json:"name"`
	BasePrice int    `json:"base_price"`
	Round     string `json:"round"`
}

// BidUpdatedData is the payload for LotBidUpdated events.
type BidUpdatedData struct {
	PlayerID string `json:"player_id"`
	Amount   int    `json:"amount"`
}

// TimerChangedData is the payload for LotTimerChanged events.
type TimerChangedData struct {
	PlayerID  string `json:"player_id"`
	Action    string `json:"action"`
	Remaining int    `json:"remaining"`
}

// LotSoldData is the payload for LotSold events.
type LotSoldData struct {
	PlayerID string `json:"player_id"`
	TeamID   string `json:"team_id"`
	Amount   int    `json:"amount"`
	Round    string `json:"round"`
}

// LotUnsoldData is the payload for LotUnsold events.
type LotUnsoldData struct {
	PlayerID string `json:"player_id"`
	Round    string `json:"round"`
}

// PlayerRegisteredData is the payload for PlayerRegistered events.
type PlayerRegisteredData struct {
	PlayerID  string `json:"player_id"`
	Name      string `json:"name"`
	BasePrice int    `json:"base_price"`
	Role      string `json:"role"`
}

// TeamRegisteredData is the payload for TeamRegistered events.
type TeamRegisteredData struct {
	TeamID string `json:"team_id"`
	Name   string `json:"name"`
	Budget int    `json:"budget"`
}
