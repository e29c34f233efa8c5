// Package auction runs the auction floor: which phase the session is in,
// which player is on the block, the running bid, the countdown, and the
// settlement of each lot into the roster and the team purses.
package auction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jensholdgaard/player-auction/internal/clock"
	"github.com/jensholdgaard/player-auction/internal/event"
	"github.com/jensholdgaard/player-auction/internal/ledger"
	"github.com/jensholdgaard/player-auction/internal/metrics"
	"github.com/jensholdgaard/player-auction/internal/roster"
	"github.com/jensholdgaard/player-auction/internal/timer"
)

const tracerName = "github.com/jensholdgaard/player-auction/internal/auction"

// DefaultTimerSeconds is the countdown a lot starts with.
const DefaultTimerSeconds = 10

// Registration defaults used when Options.Defaults leaves a field empty.
const (
	DefaultPurse       = 10_000_000
	DefaultPlayerImage = "https://www.w3schools.com/w3images/avatar2.png"
	DefaultTeamLogo    = "https://cdn-icons-png.flaticon.com/512/166/166258.png"
)

// Options tune an Engine. The zero value is usable.
type Options struct {
	SessionID    string
	TimerSeconds int
	// PurseGuard rejects sold settlements above the team's remaining purse.
	PurseGuard bool
	Defaults   roster.Defaults
	IDs        roster.IDGenerator
	// Rand picks the next lot. Tests pass a seeded source.
	Rand *rand.Rand
}

// floor is the engine's working state. Commands mutate a copy and commit it
// only when every check has passed.
type floor struct {
	phase         Phase
	activeID      string
	currentBid    int
	lastBidTeamID string
	settled       bool
	bids          ledger.Bids
	timer         timer.Controller
	pool          *roster.Store
}

// Engine is the auction state machine. All commands and countdown ticks are
// serialized; readers get immutable snapshots without taking the lock.
type Engine struct {
	mu      sync.Mutex
	cur     floor
	version int
	closed  bool
	tickGen uint64

	events       []event.Event
	eventVersion int

	snap atomic.Pointer[Snapshot]

	opts   Options
	rng    *rand.Rand
	ticker *timer.Ticker
	logger *slog.Logger
	tracer trace.Tracer
	clock  clock.Clock
}

// NewEngine returns an engine in the Setup phase over the given pools.
func NewEngine(pool *roster.Store, logger *slog.Logger, tp trace.TracerProvider, clk clock.Clock, opts Options) *Engine {
	if pool == nil {
		pool = &roster.Store{}
	}
	if opts.TimerSeconds <= 0 {
		opts.TimerSeconds = DefaultTimerSeconds
	}
	if opts.Defaults.Purse <= 0 {
		opts.Defaults.Purse = DefaultPurse
	}
	if opts.Defaults.PlayerImage == "" {
		opts.Defaults.PlayerImage = DefaultPlayerImage
	}
	if opts.Defaults.TeamLogo == "" {
		opts.Defaults.TeamLogo = DefaultTeamLogo
	}
	if opts.IDs == nil {
		opts.IDs = roster.UUIDGenerator{}
	}
	if opts.SessionID == "" {
		opts.SessionID = opts.IDs.NewID()
	}
	rng := opts.Rand
	if rng == nil {
		seed := uint64(clk.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}

	e := &Engine{
		cur: floor{
			phase: PhaseSetup,
			timer: timer.New(opts.TimerSeconds),
			pool:  pool,
		},
		opts:   opts,
		rng:    rng,
		logger: logger,
		tracer: tp.Tracer(tracerName),
		clock:  clk,
	}
	e.ticker = timer.NewTicker(clk, time.Second, e.tickFrom)
	e.publish()
	return e
}

// SessionID identifies the session in the journal.
func (e *Engine) SessionID() string { return e.opts.SessionID }

// Snapshot returns a copy of the latest committed state.
func (e *Engine) Snapshot() Snapshot {
	return e.snap.Load().clone()
}

// Players returns the player pool as of the latest snapshot.
func (e *Engine) Players() []roster.Player { return e.Snapshot().Players }

// Teams returns the team pool as of the latest snapshot.
func (e *Engine) Teams() []roster.Team { return e.Snapshot().Teams }

// Standings lists every team with its remaining purse and squad.
func (e *Engine) Standings() []ledger.Standing {
	e.mu.Lock()
	pool := e.cur.pool
	e.mu.Unlock()
	return ledger.Standings(pool)
}

// PendingEvents drains the journal entries produced since the last call.
func (e *Engine) PendingEvents() []event.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.events
	e.events = nil
	return out
}

// Close stops the countdown for good. Later commands fail with ErrClosed.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.ticker.Close()
}

// StartAuction moves Setup to LiveInitial. Both pools must be non-empty.
func (e *Engine) StartAuction(ctx context.Context) (Snapshot, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.StartAuction")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	f := e.cur
	if err := e.open(); err != nil {
		return Snapshot{}, e.reject(ctx, span, "start_auction", err)
	}
	if f.phase != PhaseSetup {
		return Snapshot{}, e.reject(ctx, span, "start_auction",
			fmt.Errorf("%w: auction already %s", ErrWrongPhase, f.phase))
	}
	players, teams := f.pool.Len()
	if players == 0 || teams == 0 {
		return Snapshot{}, e.reject(ctx, span, "start_auction",
			fmt.Errorf("%w: need at least one team and one player, have %d teams and %d players",
				ErrInvalidPreconditions, teams, players))
	}

	f.phase = PhaseLiveInitial
	e.record(event.AuctionStarted, event.PhaseChangedData{From: string(PhaseSetup), To: string(f.phase)})
	snap := e.commit(f)

	e.logger.InfoContext(ctx, "auction started",
		slog.String("session_id", e.opts.SessionID),
		slog.Int("players", players),
		slog.Int("teams", teams),
	)
	return snap, nil
}

// StartReauction moves LiveInitial to LiveReauction. Reveals then draw from
// the Unsold pool.
func (e *Engine) StartReauction(ctx context.Context) (Snapshot, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.StartReauction")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	f := e.cur
	if err := e.open(); err != nil {
		return Snapshot{}, e.reject(ctx, span, "start_reauction", err)
	}
	if f.phase != PhaseLiveInitial {
		return Snapshot{}, e.reject(ctx, span, "start_reauction",
			fmt.Errorf("%w: reauction needs the initial round, phase is %s", ErrWrongPhase, f.phase))
	}

	f.phase = PhaseLiveReauction
	e.record(event.ReauctionStarted, event.PhaseChangedData{From: string(PhaseLiveInitial), To: string(f.phase)})
	snap := e.commit(f)

	e.logger.InfoContext(ctx, "reauction started",
		slog.String("session_id", e.opts.SessionID),
		slog.Int("unsold", snap.Counts.Unsold),
	)
	return snap, nil
}

// CompleteAuction ends the session from either live phase. The countdown
// stops and the block is cleared.
func (e *Engine) CompleteAuction(ctx context.Context) (Snapshot, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.CompleteAuction")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	f := e.cur
	if err := e.open(); err != nil {
		return Snapshot{}, e.reject(ctx, span, "complete_auction", err)
	}
	if !f.phase.Live() {
		return Snapshot{}, e.reject(ctx, span, "complete_auction",
			fmt.Errorf("%w: auction is %s", ErrWrongPhase, f.phase))
	}

	from := f.phase
	f.phase = PhaseCompleted
	f.activeID = ""
	f.currentBid = 0
	f.lastBidTeamID = ""
	f.settled = false
	f.bids = f.bids.Clear()
	f.timer = timer.New(e.opts.TimerSeconds)
	e.record(event.AuctionCompleted, event.PhaseChangedData{From: string(from), To: string(f.phase)})
	snap := e.commit(f)

	e.logger.InfoContext(ctx, "auction completed",
		slog.String("session_id", e.opts.SessionID),
		slog.Int("sold", snap.Counts.Sold),
		slog.Int("unsold", snap.Counts.Unsold),
		slog.Int("available", snap.Counts.Available),
	)
	return snap, nil
}

// RevealNextPlayer puts a uniformly random eligible player on the block:
// Available players in the initial round, Unsold ones in the reauction. The
// bid starts at the player's base price and the countdown is reset.
func (e *Engine) RevealNextPlayer(ctx context.Context) (Snapshot, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.RevealNextPlayer")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	f := e.cur
	if err := e.open(); err != nil {
		return Snapshot{}, e.reject(ctx, span, "reveal", err)
	}
	status, ok := f.phase.pool()
	if !ok {
		return Snapshot{}, e.reject(ctx, span, "reveal",
			fmt.Errorf("%w: cannot reveal while %s", ErrWrongPhase, f.phase))
	}
	eligible := f.pool.Eligible(status)
	if len(eligible) == 0 {
		return Snapshot{}, e.reject(ctx, span, "reveal",
			fmt.Errorf("%w: no %s players left", ErrNoEligiblePlayers, status))
	}

	if f.activeID != "" && !f.settled {
		e.logger.WarnContext(ctx, "lot left the block unsettled",
			slog.String("player_id", f.activeID),
		)
	}

	p := eligible[e.rng.IntN(len(eligible))]
	f.activeID = p.ID
	f.currentBid = p.BasePrice
	f.lastBidTeamID = ""
	f.settled = false
	f.bids = f.bids.Clear()
	f.timer = timer.New(e.opts.TimerSeconds)

	metrics.Reveals.WithLabelValues(f.phase.Round()).Inc()
	e.record(event.LotRevealed, event.LotRevealedData{
		PlayerID:  p.ID,
		Name:      p.Name,
		BasePrice: p.BasePrice,
		Round:     f.phase.Round(),
	})
	snap := e.commit(f)

	span.SetAttributes(attribute.String("player_id", p.ID))
	e.logger.InfoContext(ctx, "lot revealed",
		slog.String("player_id", p.ID),
		slog.String("name", p.Name),
		slog.Int("base_price", p.BasePrice),
		slog.String("round", f.phase.Round()),
		slog.Int("eligible", len(eligible)),
	)
	return snap, nil
}

// UpdateBid overwrites the current bid and logs it. Amounts below the
// current bid are accepted; the operator is trusted.
func (e *Engine) UpdateBid(ctx context.Context, amount int) (Snapshot, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.UpdateBid",
		trace.WithAttributes(attribute.Int("amount", amount)),
	)
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	snap, err := e.bidLocked(ctx, amount)
	if err != nil {
		return Snapshot{}, e.reject(ctx, span, "bid", err)
	}
	return snap, nil
}

// QuickBid raises the current bid by increment.
func (e *Engine) QuickBid(ctx context.Context, increment int) (Snapshot, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.QuickBid",
		trace.WithAttributes(attribute.Int("increment", increment)),
	)
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if increment <= 0 {
		return Snapshot{}, e.reject(ctx, span, "quick_bid",
			fmt.Errorf("%w: increment must be positive, got %d", ErrInvalidPreconditions, increment))
	}
	snap, err := e.bidLocked(ctx, e.cur.currentBid+increment)
	if err != nil {
		return Snapshot{}, e.reject(ctx, span, "quick_bid", err)
	}
	return snap, nil
}

func (e *Engine) bidLocked(ctx context.Context, amount int) (Snapshot, error) {
	f := e.cur
	if err := e.open(); err != nil {
		return Snapshot{}, err
	}
	if f.activeID == "" {
		return Snapshot{}, ErrNoActivePlayer
	}
	if amount < 0 {
		return Snapshot{}, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}

	f.currentBid = amount
	f.bids = f.bids.Record(ledger.Bid{Amount: amount, Time: e.clock.Now().UTC()})

	metrics.Bids.Inc()
	e.record(event.LotBidUpdated, event.BidUpdatedData{PlayerID: f.activeID, Amount: amount})
	snap := e.commit(f)

	e.logger.InfoContext(ctx, "bid updated",
		slog.String("player_id", f.activeID),
		slog.Int("amount", amount),
		slog.Int("bids", f.bids.Len()),
	)
	return snap, nil
}

// ControlTimer starts, pauses or resets the countdown of the lot on the
// block.
func (e *Engine) ControlTimer(ctx context.Context, action timer.Action) (Snapshot, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.ControlTimer",
		trace.WithAttributes(attribute.String("action", string(action))),
	)
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	f := e.cur
	if err := e.open(); err != nil {
		return Snapshot{}, e.reject(ctx, span, "timer", err)
	}
	if !action.Valid() {
		return Snapshot{}, e.reject(ctx, span, "timer",
			fmt.Errorf("%w: unknown timer action %q", ErrInvalidPreconditions, action))
	}
	if f.activeID == "" {
		return Snapshot{}, e.reject(ctx, span, "timer", ErrNoActivePlayer)
	}

	f.timer = f.timer.Apply(action)
	e.record(event.LotTimerChanged, event.TimerChangedData{
		PlayerID:  f.activeID,
		Action:    string(action),
		Remaining: f.timer.Remaining(),
	})
	snap := e.commit(f)

	e.logger.InfoContext(ctx, "timer changed",
		slog.String("player_id", f.activeID),
		slog.String("action", string(action)),
		slog.Int("remaining", f.timer.Remaining()),
	)
	return snap, nil
}

// Tick advances a running countdown by one second. The engine's own ticker
// calls it once per second; it is exported so callers can step the clock.
func (e *Engine) Tick(ctx context.Context) (snap Snapshot, expired bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tickLocked(ctx)
}

func (e *Engine) tickFrom(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || gen != e.tickGen {
		return
	}
	e.tickLocked(context.Background())
}

func (e *Engine) tickLocked(ctx context.Context) (Snapshot, bool) {
	f := e.cur
	if e.closed || !f.timer.Running() {
		return e.Snapshot(), false
	}

	var expired bool
	f.timer, expired = f.timer.Tick()
	if expired {
		e.record(event.LotTimerExpired, event.TimerChangedData{PlayerID: f.activeID, Action: "expire"})
	}
	snap := e.commit(f)

	if expired {
		e.logger.InfoContext(ctx, "timer expired",
			slog.String("player_id", f.activeID),
			slog.Int("current_bid", f.currentBid),
		)
	}
	return snap, expired
}

// SettleSold assigns the lot on the block to teamID at amount and charges
// the team's purse. The player stays on the block, marked settled.
func (e *Engine) SettleSold(ctx context.Context, teamID string, amount int) (Snapshot, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.SettleSold",
		trace.WithAttributes(
			attribute.String("team_id", teamID),
			attribute.Int("amount", amount),
		),
	)
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settleSold(ctx, span, teamID, amount)
}

// SettleSoldAtCurrentBid is SettleSold at the running bid, read under the
// same lock as the settlement.
func (e *Engine) SettleSoldAtCurrentBid(ctx context.Context, teamID string) (Snapshot, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.SettleSoldAtCurrentBid",
		trace.WithAttributes(attribute.String("team_id", teamID)),
	)
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()
	amount := e.cur.currentBid
	span.SetAttributes(attribute.Int("amount", amount))
	return e.settleSold(ctx, span, teamID, amount)
}

// settleSold must be called with e.mu held.
func (e *Engine) settleSold(ctx context.Context, span trace.Span, teamID string, amount int) (Snapshot, error) {
	f := e.cur
	p, err := e.settleable(f)
	if err != nil {
		return Snapshot{}, e.reject(ctx, span, "sold", err)
	}
	if amount < 0 {
		return Snapshot{}, e.reject(ctx, span, "sold", fmt.Errorf("%w: got %d", ErrInvalidAmount, amount))
	}
	team, ok := f.pool.Team(teamID)
	if !ok {
		return Snapshot{}, e.reject(ctx, span, "sold", fmt.Errorf("%w: team %s", ErrUnknownEntity, teamID))
	}
	if e.opts.PurseGuard && !ledger.CanAfford(team, amount) {
		return Snapshot{}, e.reject(ctx, span, "sold",
			fmt.Errorf("%w: team %s has %d left, settlement is %d",
				ErrInsufficientPurse, teamID, ledger.Remaining(team), amount))
	}

	charged, err := ledger.Credit(team, amount)
	if err != nil {
		return Snapshot{}, e.reject(ctx, span, "sold", fmt.Errorf("%w: %w", ErrInvalidPreconditions, err))
	}
	p.Status = roster.StatusSold
	p.SoldPrice = amount
	p.TeamID = teamID
	pool, err := f.pool.ReplacePlayer(p)
	if err == nil {
		pool, err = pool.ReplaceTeam(charged)
	}
	if err != nil {
		return Snapshot{}, e.reject(ctx, span, "sold", fmt.Errorf("%w: %w", ErrUnknownEntity, err))
	}

	f.pool = pool
	f.lastBidTeamID = teamID
	f.settled = true
	f.timer = f.timer.Pause()

	metrics.Settlements.WithLabelValues("sold").Inc()
	metrics.PurseSpent.Add(float64(amount))
	e.record(event.LotSold, event.LotSoldData{
		PlayerID: p.ID,
		TeamID:   teamID,
		Amount:   amount,
		Round:    f.phase.Round(),
	})
	snap := e.commit(f)

	e.logger.InfoContext(ctx, "lot sold",
		slog.String("player_id", p.ID),
		slog.String("team_id", teamID),
		slog.Int("amount", amount),
		slog.Int("remaining_purse", ledger.Remaining(charged)),
	)
	return snap, nil
}

// SettleUnsold marks the lot on the block Unsold. No purse changes.
func (e *Engine) SettleUnsold(ctx context.Context) (Snapshot, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.SettleUnsold")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	f := e.cur
	p, err := e.settleable(f)
	if err != nil {
		return Snapshot{}, e.reject(ctx, span, "unsold", err)
	}

	p.Status = roster.StatusUnsold
	p.SoldPrice = 0
	p.TeamID = ""
	pool, err := f.pool.ReplacePlayer(p)
	if err != nil {
		return Snapshot{}, e.reject(ctx, span, "unsold", fmt.Errorf("%w: %w", ErrUnknownEntity, err))
	}

	f.pool = pool
	f.lastBidTeamID = ""
	f.settled = true
	f.timer = f.timer.Pause()

	metrics.Settlements.WithLabelValues("unsold").Inc()
	e.record(event.LotUnsold, event.LotUnsoldData{PlayerID: p.ID, Round: f.phase.Round()})
	snap := e.commit(f)

	e.logger.InfoContext(ctx, "lot unsold",
		slog.String("player_id", p.ID),
		slog.String("round", f.phase.Round()),
	)
	return snap, nil
}

// settleable returns the player on the block if it can still be settled.
func (e *Engine) settleable(f floor) (roster.Player, error) {
	if err := e.open(); err != nil {
		return roster.Player{}, err
	}
	if f.activeID == "" {
		return roster.Player{}, ErrNoActivePlayer
	}
	if f.settled {
		return roster.Player{}, fmt.Errorf("%w: player %s", ErrLotSettled, f.activeID)
	}
	p, ok := f.pool.Player(f.activeID)
	if !ok {
		return roster.Player{}, fmt.Errorf("%w: player %s", ErrUnknownEntity, f.activeID)
	}
	return p, nil
}

// RegisterPlayer adds an Available player to the pool. The floor is not
// touched.
func (e *Engine) RegisterPlayer(ctx context.Context, spec roster.PlayerSpec) (roster.Player, Snapshot, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.RegisterPlayer",
		trace.WithAttributes(attribute.String("name", spec.Name)),
	)
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	f := e.cur
	if err := e.open(); err != nil {
		return roster.Player{}, Snapshot{}, e.reject(ctx, span, "player_add", err)
	}
	p, err := roster.NewPlayer(e.opts.IDs.NewID(), spec, e.opts.Defaults)
	if err != nil {
		return roster.Player{}, Snapshot{}, e.reject(ctx, span, "player_add", fmt.Errorf("%w: %w", ErrInvalidPreconditions, err))
	}
	pool, err := f.pool.AddPlayer(p)
	if err != nil {
		return roster.Player{}, Snapshot{}, e.reject(ctx, span, "player_add", fmt.Errorf("%w: %w", ErrInvalidPreconditions, err))
	}

	f.pool = pool
	e.record(event.PlayerRegistered, event.PlayerRegisteredData{
		PlayerID:  p.ID,
		Name:      p.Name,
		BasePrice: p.BasePrice,
		Role:      string(p.Role),
	})
	snap := e.commit(f)

	e.logger.InfoContext(ctx, "player registered",
		slog.String("player_id", p.ID),
		slog.String("name", p.Name),
		slog.String("role", string(p.Role)),
	)
	return p, snap, nil
}

// RegisterTeam adds a team with an untouched purse.
func (e *Engine) RegisterTeam(ctx context.Context, spec roster.TeamSpec) (roster.Team, Snapshot, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.RegisterTeam",
		trace.WithAttributes(attribute.String("name", spec.Name)),
	)
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	f := e.cur
	if err := e.open(); err != nil {
		return roster.Team{}, Snapshot{}, e.reject(ctx, span, "team_add", err)
	}
	t, err := roster.NewTeam(e.opts.IDs.NewID(), spec, e.opts.Defaults)
	if err != nil {
		return roster.Team{}, Snapshot{}, e.reject(ctx, span, "team_add", fmt.Errorf("%w: %w", ErrInvalidPreconditions, err))
	}
	pool, err := f.pool.AddTeam(t)
	if err != nil {
		return roster.Team{}, Snapshot{}, e.reject(ctx, span, "team_add", fmt.Errorf("%w: %w", ErrInvalidPreconditions, err))
	}

	f.pool = pool
	e.record(event.TeamRegistered, event.TeamRegisteredData{TeamID: t.ID, Name: t.Name, Budget: t.Budget})
	snap := e.commit(f)

	e.logger.InfoContext(ctx, "team registered",
		slog.String("team_id", t.ID),
		slog.String("name", t.Name),
		slog.Int("budget", t.Budget),
	)
	return t, snap, nil
}

func (e *Engine) open() error {
	if e.closed {
		return ErrClosed
	}
	return nil
}

func (e *Engine) reject(ctx context.Context, span trace.Span, command string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	metrics.CommandErrors.WithLabelValues(command).Inc()
	e.logger.WarnContext(ctx, "command rejected",
		slog.String("command", command),
		slog.Any("error", err),
	)
	return err
}

// record queues a journal entry. Callers invoke it only after every check
// has passed.
func (e *Engine) record(t event.Type, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		e.logger.Error("encoding event payload", slog.String("type", string(t)), slog.Any("error", err))
		return
	}
	e.eventVersion++
	e.events = append(e.events, event.Event{
		AggregateID: e.opts.SessionID,
		Type:        t,
		Data:        data,
		Version:     e.eventVersion,
		CreatedAt:   e.clock.Now().UTC(),
	})
}

// commit installs f, publishes a snapshot of it and keeps the ticker in step
// with the countdown.
func (e *Engine) commit(f floor) Snapshot {
	e.cur = f
	e.version++

	if f.timer.Running() {
		e.tickGen = e.ticker.Resume()
	} else {
		e.ticker.Suspend()
	}

	snap := e.publish()
	metrics.TimerRemaining.Set(float64(snap.State.Timer))
	metrics.PoolPlayers.WithLabelValues(string(roster.StatusAvailable)).Set(float64(snap.Counts.Available))
	metrics.PoolPlayers.WithLabelValues(string(roster.StatusSold)).Set(float64(snap.Counts.Sold))
	metrics.PoolPlayers.WithLabelValues(string(roster.StatusUnsold)).Set(float64(snap.Counts.Unsold))
	return snap
}

func (e *Engine) publish() Snapshot {
	f := e.cur
	snap := Snapshot{
		SessionID: e.opts.SessionID,
		Version:   e.version,
		State: State{
			Phase:          f.phase,
			ActivePlayerID: f.activeID,
			CurrentBid:     f.currentBid,
			Timer:          f.timer.Remaining(),
			TimerRunning:   f.timer.Running(),
			LastBidTeamID:  f.lastBidTeamID,
			BidHistory:     f.bids.History(),
			LotSettled:     f.settled,
		},
		Players: f.pool.Players(),
		Teams:   f.pool.Teams(),
		Counts: PoolCounts{
			Available: f.pool.Count(roster.StatusAvailable),
			Sold:      f.pool.Count(roster.StatusSold),
			Unsold:    f.pool.Count(roster.StatusUnsold),
		},
	}
	e.snap.Store(&snap)
	return snap.clone()
}
