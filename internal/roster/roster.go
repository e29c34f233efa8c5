// Package roster holds the player pool and the team pool of an auction
// session. A Store is an immutable value: every mutation returns a new Store
// so a half-applied change is never observable.
package roster

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by roster operations.
var (
	ErrInvalidPlayer = errors.New("invalid player")
	ErrInvalidTeam   = errors.New("invalid team")
	ErrDuplicateID   = errors.New("duplicate id")
	ErrUsernameTaken = errors.New("username already exists")
)

// Role is a player's playing role.
type Role string

const (
	RoleBatsman      Role = "Batsman"
	RoleBowler       Role = "Bowler"
	RoleAllRounder   Role = "All-Rounder"
	RoleWicketKeeper Role = "Wicket-Keeper"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleBatsman, RoleBowler, RoleAllRounder, RoleWicketKeeper}

// ParseRole accepts a role name ignoring case, spaces, hyphens and underscores,
// so "all rounder", "All-Rounder" and "ALL_ROUNDER" are the same role.
func ParseRole(s string) (Role, error) {
	norm := func(v string) string {
		return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(v))
	}
	for _, r := range Roles {
		if norm(string(r)) == norm(s) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidPlayer, s)
}

// Status is a player's settlement status.
type Status string

const (
	StatusAvailable Status = "available"
	StatusSold      Status = "sold"
	StatusUnsold    Status = "unsold"
)

// Player is a lot that can be put on the block.
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	BasePrice int    `json:"base_price"`
	Role      Role   `json:"role"`
	Image     string `json:"image"`
	Status    Status `json:"status"`
	SoldPrice int    `json:"sold_price,omitempty"`
	TeamID    string `json:"team_id,omitempty"`
}

// Team is a bidding franchise.
type Team struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Logo   string `json:"logo"`
	Budget int    `json:"budget"`
	Spent  int    `json:"spent"`
	// Credentials are kept for the console's login screen only.
	Username string `json:"username,omitempty"`
	Password string `json:"-"`
}

// PlayerSpec is the input for registering a player.
type PlayerSpec struct {
	Name      string `yaml:"name"`
	BasePrice int    `yaml:"base_price"`
	Role      string `yaml:"role"`
	Image     string `yaml:"image"`
}

// TeamSpec is the input for registering a team.
type TeamSpec struct {
	Name     string `yaml:"name"`
	Logo     string `yaml:"logo"`
	Budget   int    `yaml:"budget"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Defaults fills optional registration fields.
type Defaults struct {
	PlayerImage string
	TeamLogo    string
	Purse       int
}

// NewPlayer validates spec and builds an Available player.
func NewPlayer(id string, spec PlayerSpec, d Defaults) (Player, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return Player{}, fmt.Errorf("%w: name is required", ErrInvalidPlayer)
	}
	if spec.BasePrice <= 0 {
		return Player{}, fmt.Errorf("%w: base price must be positive, got %d", ErrInvalidPlayer, spec.BasePrice)
	}
	role, err := ParseRole(spec.Role)
	if err != nil {
		return Player{}, err
	}
	image := spec.Image
	if image == "" {
		image = d.PlayerImage
	}
	return Player{
		ID:        id,
		Name:      name,
		BasePrice: spec.BasePrice,
		Role:      role,
		Image:     image,
		Status:    StatusAvailable,
	}, nil
}

// NewTeam validates spec and builds a team with nothing spent.
func NewTeam(id string, spec TeamSpec, d Defaults) (Team, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return Team{}, fmt.Errorf("%w: name is required", ErrInvalidTeam)
	}
	budget := spec.Budget
	if budget == 0 {
		budget = d.Purse
	}
	if budget <= 0 {
		return Team{}, fmt.Errorf("%w: budget must be positive, got %d", ErrInvalidTeam, budget)
	}
	logo := spec.Logo
	if logo == "" {
		logo = d.TeamLogo
	}
	return Team{
		ID:       id,
		Name:     name,
		Logo:     logo,
		Budget:   budget,
		Username: strings.TrimSpace(spec.Username),
		Password: spec.Password,
	}, nil
}
