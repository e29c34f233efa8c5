// Package memory is a store driver that keeps the journal and settlements
// in process. It is the default for local runs and tests; nothing survives a
// restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jensholdgaard/player-auction/internal/clock"
	"github.com/jensholdgaard/player-auction/internal/config"
	"github.com/jensholdgaard/player-auction/internal/event"
	"github.com/jensholdgaard/player-auction/internal/store"
)

func init() {
	store.Register("memory", func(_ context.Context, _ config.DatabaseConfig, clk clock.Clock) (*store.Repositories, error) {
		return New(clk), nil
	})
}

// New returns empty in-memory repositories.
func New(clk clock.Clock) *store.Repositories {
	return &store.Repositories{
		Events:      NewEventStore(clk),
		Settlements: NewSettlementRepo(clk),
		Ping:        func(context.Context) error { return nil },
	}
}

type versionKey struct {
	aggregate string
	version   int
}

// EventStore implements event.Store with a slice.
type EventStore struct {
	mu       sync.RWMutex
	events   []event.Event
	versions map[versionKey]struct{}
	clock    clock.Clock
}

// NewEventStore returns an empty EventStore.
func NewEventStore(clk clock.Clock) *EventStore {
	return &EventStore{versions: make(map[versionKey]struct{}), clock: clk}
}

// Append stores events atomically. A duplicate aggregate version rejects the
// whole batch.
func (s *EventStore) Append(_ context.Context, events ...event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[versionKey]struct{}, len(events))
	for _, e := range events {
		k := versionKey{e.AggregateID, e.Version}
		if _, dup := s.versions[k]; dup {
			return fmt.Errorf("inserting event (aggregate=%s, version=%d): duplicate version", e.AggregateID, e.Version)
		}
		if _, dup := batch[k]; dup {
			return fmt.Errorf("inserting event (aggregate=%s, version=%d): duplicate version in batch", e.AggregateID, e.Version)
		}
		batch[k] = struct{}{}
	}

	for _, e := range events {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = s.clock.Now().UTC()
		}
		s.events = append(s.events, e)
		s.versions[versionKey{e.AggregateID, e.Version}] = struct{}{}
	}
	return nil
}

func (s *EventStore) Load(_ context.Context, aggregateID string) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []event.Event{}
	for _, e := range s.events {
		if e.AggregateID == aggregateID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (s *EventStore) LoadByType(_ context.Context, eventType event.Type) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []event.Event{}
	for _, e := range s.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out, nil
}

type lotKey struct {
	session string
	player  string
}

// SettlementRepo implements store.SettlementRepository with a slice.
type SettlementRepo struct {
	mu          sync.RWMutex
	settlements []store.Settlement
	sold        map[lotKey]struct{}
	clock       clock.Clock
}

// NewSettlementRepo returns an empty SettlementRepo.
func NewSettlementRepo(clk clock.Clock) *SettlementRepo {
	return &SettlementRepo{sold: make(map[lotKey]struct{}), clock: clk}
}

// Record stores s and fills its ID and CreatedAt. A player is sold at most
// once per session.
func (r *SettlementRepo) Record(_ context.Context, s *store.Settlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := lotKey{s.SessionID, s.PlayerID}
	if s.Outcome == store.OutcomeSold {
		if _, dup := r.sold[k]; dup {
			return fmt.Errorf("recording settlement for player %s: already sold", s.PlayerID)
		}
		r.sold[k] = struct{}{}
	}
	s.ID = uuid.NewString()
	s.CreatedAt = r.clock.Now().UTC()
	r.settlements = append(r.settlements, *s)
	return nil
}

func (r *SettlementRepo) ListBySession(_ context.Context, sessionID string) ([]store.Settlement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []store.Settlement{}
	for _, s := range r.settlements {
		if s.SessionID == sessionID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *SettlementRepo) SpendByTeam(_ context.Context, sessionID string) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int)
	for _, s := range r.settlements {
		if s.SessionID == sessionID && s.Outcome == store.OutcomeSold {
			out[s.TeamID] += s.Amount
		}
	}
	return out, nil
}
