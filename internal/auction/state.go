package auction

import (
	"slices"

	"github.com/jensholdgaard/player-auction/internal/ledger"
	"github.com/jensholdgaard/player-auction/internal/roster"
)

// Phase is the stage of an auction session. Phases only move forward.
type Phase string

const (
	PhaseSetup         Phase = "setup"
	PhaseLiveInitial   Phase = "live_initial"
	PhaseLiveReauction Phase = "live_reauction"
	PhaseCompleted     Phase = "completed"
)

// Live reports whether lots can be revealed.
func (p Phase) Live() bool {
	return p == PhaseLiveInitial || p == PhaseLiveReauction
}

// Round names the round a live phase runs, for logs and the journal.
func (p Phase) Round() string {
	switch p {
	case PhaseLiveInitial:
		return "initial"
	case PhaseLiveReauction:
		return "reauction"
	}
	return string(p)
}

// pool is the player status eligible for reveal in p.
func (p Phase) pool() (roster.Status, bool) {
	switch p {
	case PhaseLiveInitial:
		return roster.StatusAvailable, true
	case PhaseLiveReauction:
		return roster.StatusUnsold, true
	}
	return "", false
}

// State is the auction floor as the collaborator sees it.
type State struct {
	Phase          Phase        `json:"phase"`
	ActivePlayerID string       `json:"active_player_id,omitempty"`
	CurrentBid     int          `json:"current_bid"`
	Timer          int          `json:"timer"`
	TimerRunning   bool         `json:"timer_running"`
	LastBidTeamID  string       `json:"last_bid_team_id,omitempty"`
	BidHistory     []ledger.Bid `json:"bid_history"`
	// LotSettled is true once the lot on the block was sold or marked unsold.
	LotSettled bool `json:"lot_settled"`
}

// PoolCounts tallies players per status.
type PoolCounts struct {
	Available int `json:"available"`
	Sold      int `json:"sold"`
	Unsold    int `json:"unsold"`
}

// Snapshot is an immutable view of the whole session. Callers may keep it
// for as long as they like; the engine never modifies a published snapshot.
type Snapshot struct {
	SessionID string          `json:"session_id"`
	Version   int             `json:"version"`
	State     State           `json:"state"`
	Players   []roster.Player `json:"players"`
	Teams     []roster.Team   `json:"teams"`
	Counts    PoolCounts      `json:"counts"`
}

// clone copies the slices so the caller cannot write through to the
// published snapshot.
func (s Snapshot) clone() Snapshot {
	s.Players = slices.Clone(s.Players)
	s.Teams = slices.Clone(s.Teams)
	s.State.BidHistory = slices.Clone(s.State.BidHistory)
	return s
}

// ActivePlayer returns the player on the block.
func (s Snapshot) ActivePlayer() (roster.Player, bool) {
	if s.State.ActivePlayerID == "" {
		return roster.Player{}, false
	}
	return s.Player(s.State.ActivePlayerID)
}

// Player looks a player up by id.
func (s Snapshot) Player(id string) (roster.Player, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return roster.Player{}, false
}

// Team looks a team up by id.
func (s Snapshot) Team(id string) (roster.Team, bool) {
	for _, t := range s.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return roster.Team{}, false
}
