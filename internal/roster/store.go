package roster

import "fmt"

// Store is an immutable snapshot of both pools. The zero value is an empty
// store.
type Store struct {
	players   []Player
	teams     []Team
	playerIdx map[string]int
	teamIdx   map[string]int
}

// NewStore builds a store, rejecting duplicate ids.
func NewStore(players []Player, teams []Team) (*Store, error) {
	s := &Store{
		players:   append([]Player(nil), players...),
		teams:     append([]Team(nil), teams...),
		playerIdx: make(map[string]int, len(players)),
		teamIdx:   make(map[string]int, len(teams)),
	}
	for i, p := range s.players {
		if _, dup := s.playerIdx[p.ID]; dup {
			return nil, fmt.Errorf("%w: player %s", ErrDuplicateID, p.ID)
		}
		s.playerIdx[p.ID] = i
	}
	for i, t := range s.teams {
		if _, dup := s.teamIdx[t.ID]; dup {
			return nil, fmt.Errorf("%w: team %s", ErrDuplicateID, t.ID)
		}
		s.teamIdx[t.ID] = i
	}
	return s, nil
}

// Players returns a copy of the player pool in registration order.
func (s *Store) Players() []Player {
	return append([]Player(nil), s.players...)
}

// Teams returns a copy of the team pool in registration order.
func (s *Store) Teams() []Team {
	return append([]Team(nil), s.teams...)
}

// Player looks a player up by id.
func (s *Store) Player(id string) (Player, bool) {
	i, ok := s.playerIdx[id]
	if !ok {
		return Player{}, false
	}
	return s.players[i], true
}

// Team looks a team up by id.
func (s *Store) Team(id string) (Team, bool) {
	i, ok := s.teamIdx[id]
	if !ok {
		return Team{}, false
	}
	return s.teams[i], true
}

// Eligible returns the players currently in the given status.
func (s *Store) Eligible(status Status) []Player {
	var out []Player
	for _, p := range s.players {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out
}

// Count returns how many players are in the given status.
func (s *Store) Count(status Status) int {
	n := 0
	for _, p := range s.players {
		if p.Status == status {
			n++
		}
	}
	return n
}

// Squad returns the players owned by a team.
func (s *Store) Squad(teamID string) []Player {
	var out []Player
	for _, p := range s.players {
		if p.Status == StatusSold && p.TeamID == teamID {
			out = append(out, p)
		}
	}
	return out
}

// UsernameTaken reports whether any team already logs in with username.
func (s *Store) UsernameTaken(username string) bool {
	if username == "" {
		return false
	}
	for _, t := range s.teams {
		if t.Username == username {
			return true
		}
	}
	return false
}

// Len returns the number of players and teams.
func (s *Store) Len() (players, teams int) {
	return len(s.players), len(s.teams)
}

// AddPlayer returns a store with p appended.
func (s *Store) AddPlayer(p Player) (*Store, error) {
	if _, dup := s.playerIdx[p.ID]; dup {
		return nil, fmt.Errorf("%w: player %s", ErrDuplicateID, p.ID)
	}
	return NewStore(append(s.Players(), p), s.teams)
}

// AddTeam returns a store with t appended.
func (s *Store) AddTeam(t Team) (*Store, error) {
	if _, dup := s.teamIdx[t.ID]; dup {
		return nil, fmt.Errorf("%w: team %s", ErrDuplicateID, t.ID)
	}
	if s.UsernameTaken(t.Username) {
		return nil, fmt.Errorf("%w: %s", ErrUsernameTaken, t.Username)
	}
	return NewStore(s.players, append(s.Teams(), t))
}

// ReplacePlayer returns a store where the player with p.ID is replaced by p.
func (s *Store) ReplacePlayer(p Player) (*Store, error) {
	i, ok := s.playerIdx[p.ID]
	if !ok {
		return nil, fmt.Errorf("player %s not found", p.ID)
	}
	next := s.clone()
	next.players[i] = p
	return next, nil
}

// ReplaceTeam returns a store where the team with t.ID is replaced by t.
func (s *Store) ReplaceTeam(t Team) (*Store, error) {
	i, ok := s.teamIdx[t.ID]
	if !ok {
		return nil, fmt.Errorf("team %s not found", t.ID)
	}
	next := s.clone()
	next.teams[i] = t
	return next, nil
}

// clone copies the slices; the index maps are shared since ids never move.
func (s *Store) clone() *Store {
	return &Store{
		players:   s.Players(),
		teams:     s.Teams(),
		playerIdx: s.playerIdx,
		teamIdx:   s.teamIdx,
	}
}
