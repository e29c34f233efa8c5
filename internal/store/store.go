// Package store defines the persistence the auction desk writes to: the
// event journal and the settlement records of each session.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches no rows.
var ErrNotFound = errors.New("not found")

// Outcome is how a lot was settled.
type Outcome string

const (
	OutcomeSold   Outcome = "sold"
	OutcomeUnsold Outcome = "unsold"
)

// Settlement records one settled lot.
type Settlement struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"session_id"`
	PlayerID  string    `db:"player_id" json:"player_id"`
	TeamID    string    `db:"team_id" json:"team_id,omitempty"`
	Amount    int       `db:"amount" json:"amount"`
	Outcome   Outcome   `db:"outcome" json:"outcome"`
	Round     string    `db:"round" json:"round"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SettlementRepository defines settlement persistence operations.
type SettlementRepository interface {
	Record(ctx context.Context, s *Settlement) error
	ListBySession(ctx context.Context, sessionID string) ([]Settlement, error)
	// SpendByTeam sums sold amounts per team for a session.
	SpendByTeam(ctx context.Context, sessionID string) (map[string]int, error)
}
