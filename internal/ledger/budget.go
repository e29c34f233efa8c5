package ledger

import (
	"errors"
	"fmt"

	"github.com/jensholdgaard/player-auction/internal/roster"
)

// ErrNegativeCredit is returned when a settlement amount is below zero.
var ErrNegativeCredit = errors.New("credit amount must not be negative")

// Remaining is a team's spendable purse. It goes negative when the operator
// settles above the balance.
func Remaining(t roster.Team) int {
	return t.Budget - t.Spent
}

// CanAfford reports whether amount fits in the team's remaining purse.
func CanAfford(t roster.Team, amount int) bool {
	return Remaining(t) >= amount
}

// Credit returns the team with amount added to what it has spent.
func Credit(t roster.Team, amount int) (roster.Team, error) {
	if amount < 0 {
		return t, fmt.Errorf("%w: %d", ErrNegativeCredit, amount)
	}
	t.Spent += amount
	return t, nil
}

// Standing summarises one team's position in the session.
type Standing struct {
	Team      roster.Team     `json:"team"`
	Remaining int             `json:"remaining"`
	Squad     []roster.Player `json:"squad"`
}

// Standings lists every team with its remaining purse and squad.
func Standings(s *roster.Store) []Standing {
	teams := s.Teams()
	out := make([]Standing, 0, len(teams))
	for _, t := range teams {
		out = append(out, Standing{
			Team:      t,
			Remaining: Remaining(t),
			Squad:     s.Squad(t.ID),
		})
	}
	return out
}

// Reconcile checks that every team's spent equals the sum of the sold prices
// of the players it owns.
func Reconcile(s *roster.Store) error {
	owed := make(map[string]int)
	for _, p := range s.Players() {
		if p.Status == roster.StatusSold {
			owed[p.TeamID] += p.SoldPrice
		}
	}
	for _, t := range s.Teams() {
		if t.Spent != owed[t.ID] {
			return fmt.Errorf("team %s spent %d but owns players worth %d", t.ID, t.Spent, owed[t.ID])
		}
	}
	return nil
}
