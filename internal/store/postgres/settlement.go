package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jensholdgaard/player-auction/internal/clock"
	"github.com/jensholdgaard/player-auction/internal/store"
)

// SettlementRepo implements store.SettlementRepository with sqlx.
type SettlementRepo struct {
	db    *sqlx.DB
	clock clock.Clock
}

// NewSettlementRepo returns a new SettlementRepo.
func NewSettlementRepo(db *sqlx.DB, clk clock.Clock) *SettlementRepo {
	return &SettlementRepo{db: db, clock: clk}
}

func (r *SettlementRepo) Record(ctx context.Context, s *store.Settlement) error {
	query := `INSERT INTO settlements (session_id, player_id, team_id, amount, outcome, round, created_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	s.CreatedAt = r.clock.Now().UTC()
	err := r.db.QueryRowContext(ctx, query,
		s.SessionID, s.PlayerID, s.TeamID, s.Amount, s.Outcome, s.Round, s.CreatedAt,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("recording settlement for player %s: %w", s.PlayerID, err)
	}
	return nil
}

func (r *SettlementRepo) ListBySession(ctx context.Context, sessionID string) ([]store.Settlement, error) {
	settlements := []store.Settlement{}
	err := r.db.SelectContext(ctx, &settlements,
		`SELECT id, session_id, player_id, team_id, amount, outcome, round, created_at
		 FROM settlements WHERE session_id = $1 ORDER BY created_at ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing settlements: %w", err)
	}
	return settlements, nil
}

func (r *SettlementRepo) SpendByTeam(ctx context.Context, sessionID string) (map[string]int, error) {
	var rows []struct {
		TeamID string `db:"team_id"`
		Total  int    `db:"total"`
	}
	err := r.db.SelectContext(ctx, &rows,
		`SELECT team_id, SUM(amount) AS total
		 FROM settlements WHERE session_id = $1 AND outcome = 'sold'
		 GROUP BY team_id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("summing team spend: %w", err)
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.TeamID] = row.Total
	}
	return out, nil
}
