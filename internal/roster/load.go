package roster

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// seedFile is the on-disk roster layout.
type seedFile struct {
	Players []struct {
		ID         string `yaml:"id"`
		PlayerSpec `yaml:",inline"`
	} `yaml:"players"`
	Teams []struct {
		ID       string `yaml:"id"`
		TeamSpec `yaml:",inline"`
	} `yaml:"teams"`
}

// LoadFile reads the initial players and teams from a YAML file. Entries
// without an id get one from gen.
func LoadFile(path string, gen IDGenerator, d Defaults) (*Store, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading roster file: %w", err)
	}
	return Parse(data, gen, d)
}

// Parse decodes a YAML roster document.
func Parse(data []byte, gen IDGenerator, d Defaults) (*Store, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing roster: %w", err)
	}

	players := make([]Player, 0, len(f.Players))
	for i, entry := range f.Players {
		id := entry.ID
		if id == "" {
			id = gen.NewID()
		}
		p, err := NewPlayer(id, entry.PlayerSpec, d)
		if err != nil {
			return nil, fmt.Errorf("player #%d: %w", i+1, err)
		}
		players = append(players, p)
	}

	s, err := NewStore(players, nil)
	if err != nil {
		return nil, err
	}
	for i, entry := range f.Teams {
		id := entry.ID
		if id == "" {
			id = gen.NewID()
		}
		t, err := NewTeam(id, entry.TeamSpec, d)
		if err != nil {
			return nil, fmt.Errorf("team #%d: %w", i+1, err)
		}
		if s, err = s.AddTeam(t); err != nil {
			return nil, fmt.Errorf("team #%d: %w", i+1, err)
		}
	}
	return s, nil
}
