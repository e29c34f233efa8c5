package auction

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jensholdgaard/player-auction/internal/event"
	"github.com/jensholdgaard/player-auction/internal/ledger"
	"github.com/jensholdgaard/player-auction/internal/roster"
	"github.com/jensholdgaard/player-auction/internal/store"
	"github.com/jensholdgaard/player-auction/internal/timer"
)

// Manager fronts an Engine for the outer surfaces. After every accepted
// command it writes the engine's journal entries and settlement records to
// the store. Persistence failures are logged; they never undo a command.
type Manager struct {
	engine      *Engine
	events      event.Store
	settlements store.SettlementRepository
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewManager creates a new auction Manager.
func NewManager(engine *Engine, events event.Store, settlements store.SettlementRepository, logger *slog.Logger, tp trace.TracerProvider) *Manager {
	return &Manager{
		engine:      engine,
		events:      events,
		settlements: settlements,
		logger:      logger,
		tracer:      tp.Tracer(tracerName),
	}
}

// Open checks that the engine's session has no journal yet. A session id
// that was used before would collide with the stored event versions, so the
// caller must pick a new one.
func (m *Manager) Open(ctx context.Context) error {
	ctx, span := m.tracer.Start(ctx, "Manager.Open",
		trace.WithAttributes(attribute.String("session_id", m.engine.SessionID())),
	)
	defer span.End()

	events, err := m.events.Load(ctx, m.engine.SessionID())
	if err != nil {
		return fmt.Errorf("loading events: %w", err)
	}
	if len(events) > 0 {
		return fmt.Errorf("%w: %s has %d journal entries", ErrSessionExists, m.engine.SessionID(), len(events))
	}
	return nil
}

// Engine returns the wrapped engine.
func (m *Manager) Engine() *Engine { return m.engine }

// Snapshot returns the latest committed state.
func (m *Manager) Snapshot() Snapshot { return m.engine.Snapshot() }

// Standings lists every team with its remaining purse and squad.
func (m *Manager) Standings() []ledger.Standing { return m.engine.Standings() }

// StartAuction opens the initial round.
func (m *Manager) StartAuction(ctx context.Context) (Snapshot, error) {
	return m.run(ctx, "Manager.StartAuction", m.engine.StartAuction)
}

// StartReauction moves the unsold players back into play for the second round.
func (m *Manager) StartReauction(ctx context.Context) (Snapshot, error) {
	return m.run(ctx, "Manager.StartReauction", m.engine.StartReauction)
}

// CompleteAuction closes the session. No further lots can be revealed.
func (m *Manager) CompleteAuction(ctx context.Context) (Snapshot, error) {
	return m.run(ctx, "Manager.CompleteAuction", m.engine.CompleteAuction)
}

// RevealNextPlayer puts a random eligible player on the block.
func (m *Manager) RevealNextPlayer(ctx context.Context) (Snapshot, error) {
	return m.run(ctx, "Manager.RevealNextPlayer", m.engine.RevealNextPlayer)
}

// UpdateBid sets the running bid on the lot.
func (m *Manager) UpdateBid(ctx context.Context, amount int) (Snapshot, error) {
	return m.run(ctx, "Manager.UpdateBid", func(ctx context.Context) (Snapshot, error) {
		return m.engine.UpdateBid(ctx, amount)
	})
}

// QuickBid raises the running bid by increment.
func (m *Manager) QuickBid(ctx context.Context, increment int) (Snapshot, error) {
	return m.run(ctx, "Manager.QuickBid", func(ctx context.Context) (Snapshot, error) {
		return m.engine.QuickBid(ctx, increment)
	})
}

// ControlTimer starts, pauses or resets the countdown.
func (m *Manager) ControlTimer(ctx context.Context, action timer.Action) (Snapshot, error) {
	return m.run(ctx, "Manager.ControlTimer", func(ctx context.Context) (Snapshot, error) {
		return m.engine.ControlTimer(ctx, action)
	})
}

// SettleSold sells the lot on the block and records the settlement.
func (m *Manager) SettleSold(ctx context.Context, teamID string, amount int) (Snapshot, error) {
	snap, err := m.run(ctx, "Manager.SettleSold", func(ctx context.Context) (Snapshot, error) {
		return m.engine.SettleSold(ctx, teamID, amount)
	})
	if err != nil {
		return Snapshot{}, err
	}
	m.recordSettlement(ctx, snap, store.OutcomeSold)
	return snap, nil
}

// SettleSoldAtCurrentBid sells the lot on the block at the running bid and
// records the settlement.
func (m *Manager) SettleSoldAtCurrentBid(ctx context.Context, teamID string) (Snapshot, error) {
	snap, err := m.run(ctx, "Manager.SettleSoldAtCurrentBid", func(ctx context.Context) (Snapshot, error) {
		return m.engine.SettleSoldAtCurrentBid(ctx, teamID)
	})
	if err != nil {
		return Snapshot{}, err
	}
	m.recordSettlement(ctx, snap, store.OutcomeSold)
	return snap, nil
}

// SettleUnsold marks the lot on the block unsold and records the settlement.
func (m *Manager) SettleUnsold(ctx context.Context) (Snapshot, error) {
	snap, err := m.run(ctx, "Manager.SettleUnsold", m.engine.SettleUnsold)
	if err != nil {
		return Snapshot{}, err
	}
	m.recordSettlement(ctx, snap, store.OutcomeUnsold)
	return snap, nil
}

// RegisterPlayer adds a player to the pool.
func (m *Manager) RegisterPlayer(ctx context.Context, spec roster.PlayerSpec) (roster.Player, Snapshot, error) {
	var p roster.Player
	snap, err := m.run(ctx, "Manager.RegisterPlayer", func(ctx context.Context) (Snapshot, error) {
		var (
			snap Snapshot
			err  error
		)
		p, snap, err = m.engine.RegisterPlayer(ctx, spec)
		return snap, err
	})
	return p, snap, err
}

// RegisterTeam adds a team to the pool.
func (m *Manager) RegisterTeam(ctx context.Context, spec roster.TeamSpec) (roster.Team, Snapshot, error) {
	var t roster.Team
	snap, err := m.run(ctx, "Manager.RegisterTeam", func(ctx context.Context) (Snapshot, error) {
		var (
			snap Snapshot
			err  error
		)
		t, snap, err = m.engine.RegisterTeam(ctx, spec)
		return snap, err
	})
	return t, snap, err
}

// Report replays a session's journal. An empty sessionID means the running
// session.
func (m *Manager) Report(ctx context.Context, sessionID string) (*Report, error) {
	if sessionID == "" {
		sessionID = m.engine.SessionID()
	}
	ctx, span := m.tracer.Start(ctx, "Manager.Report",
		trace.WithAttributes(attribute.String("session_id", sessionID)),
	)
	defer span.End()

	m.Flush(ctx)
	events, err := m.events.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading events: %w", err)
	}
	return Replay(events)
}

// Settlements lists the recorded settlements of a session.
func (m *Manager) Settlements(ctx context.Context, sessionID string) ([]store.Settlement, error) {
	if sessionID == "" {
		sessionID = m.engine.SessionID()
	}
	return m.settlements.ListBySession(ctx, sessionID)
}

// Reconcile compares each team's spent purse with the sold settlements the
// store holds for the running session.
func (m *Manager) Reconcile(ctx context.Context) error {
	ctx, span := m.tracer.Start(ctx, "Manager.Reconcile")
	defer span.End()

	recorded, err := m.settlements.SpendByTeam(ctx, m.engine.SessionID())
	if err != nil {
		return fmt.Errorf("loading recorded spend: %w", err)
	}
	for _, t := range m.engine.Snapshot().Teams {
		if t.Spent != recorded[t.ID] {
			return fmt.Errorf("team %s spent %d but settlements total %d", t.ID, t.Spent, recorded[t.ID])
		}
	}
	return nil
}

// Flush writes any journal entries not yet persisted, such as a timer
// expiry raised by the countdown between commands.
func (m *Manager) Flush(ctx context.Context) {
	events := m.engine.PendingEvents()
	if len(events) == 0 {
		return
	}
	if err := m.events.Append(ctx, events...); err != nil {
		m.logger.ErrorContext(ctx, "failed to persist journal entries",
			slog.Int("count", len(events)),
			slog.Any("error", err),
		)
	}
}

// Close stops the engine and writes what is left of the journal.
func (m *Manager) Close(ctx context.Context) {
	m.engine.Close()
	m.Flush(ctx)
}

func (m *Manager) run(ctx context.Context, name string, cmd func(context.Context) (Snapshot, error)) (Snapshot, error) {
	ctx, span := m.tracer.Start(ctx, name,
		trace.WithAttributes(attribute.String("session_id", m.engine.SessionID())),
	)
	defer span.End()

	snap, err := cmd(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	m.Flush(ctx)
	return snap, nil
}

func (m *Manager) recordSettlement(ctx context.Context, snap Snapshot, outcome store.Outcome) {
	p, ok := snap.ActivePlayer()
	if !ok {
		return
	}
	s := &store.Settlement{
		SessionID: snap.SessionID,
		PlayerID:  p.ID,
		TeamID:    p.TeamID,
		Amount:    p.SoldPrice,
		Outcome:   outcome,
		Round:     snap.State.Phase.Round(),
	}
	if err := m.settlements.Record(ctx, s); err != nil {
		m.logger.ErrorContext(ctx, "failed to record settlement",
			slog.String("player_id", p.ID),
			slog.String("outcome", string(outcome)),
			slog.Any("error", err),
		)
	}
}
