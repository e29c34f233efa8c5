// Package commands implements the operator console's slash commands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jensholdgaard/player-auction/internal/auction"
	"github.com/jensholdgaard/player-auction/internal/ledger"
	"github.com/jensholdgaard/player-auction/internal/roster"
	"github.com/jensholdgaard/player-auction/internal/timer"
)

// Desk is the part of the auction manager the console drives.
type Desk interface {
	Snapshot() auction.Snapshot
	Standings() []ledger.Standing
	StartAuction(ctx context.Context) (auction.Snapshot, error)
	StartReauction(ctx context.Context) (auction.Snapshot, error)
	CompleteAuction(ctx context.Context) (auction.Snapshot, error)
	RevealNextPlayer(ctx context.Context) (auction.Snapshot, error)
	UpdateBid(ctx context.Context, amount int) (auction.Snapshot, error)
	QuickBid(ctx context.Context, increment int) (auction.Snapshot, error)
	ControlTimer(ctx context.Context, action timer.Action) (auction.Snapshot, error)
	SettleSold(ctx context.Context, teamID string, amount int) (auction.Snapshot, error)
	SettleSoldAtCurrentBid(ctx context.Context, teamID string) (auction.Snapshot, error)
	SettleUnsold(ctx context.Context) (auction.Snapshot, error)
	RegisterPlayer(ctx context.Context, spec roster.PlayerSpec) (roster.Player, auction.Snapshot, error)
	RegisterTeam(ctx context.Context, spec roster.TeamSpec) (roster.Team, auction.Snapshot, error)
	Report(ctx context.Context, sessionID string) (*auction.Report, error)
}

// Options configure the console.
type Options struct {
	// OperatorRoleID may run mutating commands. Guild administrators always can.
	OperatorRoleID  string
	QuickIncrements []int
}

// Handlers process Discord interactions.
type Handlers struct {
	desk   Desk
	opts   Options
	logger *slog.Logger
	tracer trace.Tracer
}

// NewHandlers creates new command handlers.
func NewHandlers(desk Desk, opts Options, logger *slog.Logger, tp trace.TracerProvider) *Handlers {
	return &Handlers{
		desk:   desk,
		opts:   opts,
		logger: logger,
		tracer: tp.Tracer("github.com/jensholdgaard/player-auction/internal/bot/commands"),
	}
}

// readOnly commands are open to every member.
var readOnly = map[string]bool{
	"status":  true,
	"teams":   true,
	"players": true,
	"report":  true,
}

// InteractionCreate handles incoming slash command interactions.
func (h *Handlers) InteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	msg := h.Execute(context.Background(), data.Name, data.Options, i.Member)
	respond(s, i, msg)
}

// Execute runs one command and returns the reply.
func (h *Handlers) Execute(ctx context.Context, name string, opts []*discordgo.ApplicationCommandInteractionDataOption, member *discordgo.Member) string {
	ctx, span := h.tracer.Start(ctx, "Handlers.Execute",
		trace.WithAttributes(attribute.String("command", name)),
	)
	defer span.End()

	if !readOnly[name] && !h.authorized(member) {
		span.SetStatus(codes.Error, "unauthorized")
		return "You need the operator role to run this command."
	}

	args := optionMap(opts)
	var (
		snap auction.Snapshot
		err  error
	)
	switch name {
	case "status":
		return FormatStatus(h.desk.Snapshot())
	case "teams":
		return FormatStandings(h.desk.Standings())
	case "players":
		return FormatPlayers(h.desk.Snapshot(), stringArg(args, "status"))
	case "report":
		rep, err := h.desk.Report(ctx, stringArg(args, "session"))
		if err != nil {
			return h.failed(ctx, span, name, err)
		}
		return FormatReport(rep)

	case "auction-start":
		snap, err = h.desk.StartAuction(ctx)
	case "reauction":
		snap, err = h.desk.StartReauction(ctx)
	case "auction-complete":
		snap, err = h.desk.CompleteAuction(ctx)
	case "reveal":
		snap, err = h.desk.RevealNextPlayer(ctx)
	case "bid":
		snap, err = h.desk.UpdateBid(ctx, intArg(args, "amount"))
	case "quick-bid":
		inc := intArg(args, "increment")
		if len(h.opts.QuickIncrements) > 0 && !slices.Contains(h.opts.QuickIncrements, inc) {
			return fmt.Sprintf("Increment %s is not one of the configured steps.", FormatAmount(inc))
		}
		snap, err = h.desk.QuickBid(ctx, inc)
	case "timer":
		action := timer.Action(stringArg(args, "action"))
		if !action.Valid() {
			return fmt.Sprintf("Unknown timer action %q.", action)
		}
		snap, err = h.desk.ControlTimer(ctx, action)
	case "sold":
		// Omitted sells at the standing bid. An explicit 0 is a free transfer.
		if _, ok := args["amount"]; ok {
			snap, err = h.desk.SettleSold(ctx, stringArg(args, "team"), intArg(args, "amount"))
		} else {
			snap, err = h.desk.SettleSoldAtCurrentBid(ctx, stringArg(args, "team"))
		}
	case "unsold":
		snap, err = h.desk.SettleUnsold(ctx)
	case "player-add":
		var p roster.Player
		p, snap, err = h.desk.RegisterPlayer(ctx, roster.PlayerSpec{
			Name:      stringArg(args, "name"),
			BasePrice: intArg(args, "base-price"),
			Role:      stringArg(args, "role"),
			Image:     stringArg(args, "image"),
		})
		if err == nil {
			return fmt.Sprintf("Registered **%s** (%s, base %s) as `%s`.", p.Name, p.Role, FormatAmount(p.BasePrice), p.ID)
		}
	case "team-add":
		var t roster.Team
		t, snap, err = h.desk.RegisterTeam(ctx, roster.TeamSpec{
			Name:     stringArg(args, "name"),
			Budget:   intArg(args, "budget"),
			Logo:     stringArg(args, "logo"),
			Username: stringArg(args, "username"),
		})
		if err == nil {
			return fmt.Sprintf("Registered **%s** with a purse of %s as `%s`.", t.Name, FormatAmount(t.Budget), t.ID)
		}
	default:
		return "Unknown command"
	}
	if err != nil {
		return h.failed(ctx, span, name, err)
	}
	return FormatStatus(snap)
}

func (h *Handlers) failed(ctx context.Context, span trace.Span, name string, err error) string {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	h.logger.InfoContext(ctx, "console command rejected",
		slog.String("command", name),
		slog.Any("error", err),
	)
	return FormatError(err)
}

// authorized reports whether member may run mutating commands. With no
// operator role configured any member may.
func (h *Handlers) authorized(member *discordgo.Member) bool {
	if h.opts.OperatorRoleID == "" {
		return true
	}
	if member == nil {
		return false
	}
	if member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return slices.Contains(member.Roles, h.opts.OperatorRoleID)
}

// FormatError turns an engine error into an operator-facing message.
func FormatError(err error) string {
	switch {
	case errors.Is(err, auction.ErrNoEligiblePlayers):
		return "No players left in this pool. Start the re-auction or complete the auction."
	case errors.Is(err, auction.ErrNoActivePlayer):
		return "No player is on the block. Use `/reveal` first."
	case errors.Is(err, auction.ErrUnknownEntity):
		return "Unknown team or player: " + err.Error()
	case errors.Is(err, auction.ErrEmptyJournal):
		return "No journal found for that session."
	case errors.Is(err, auction.ErrInvalidPreconditions):
		return "Not allowed right now: " + err.Error()
	default:
		return "Command failed: " + err.Error()
	}
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msg,
		},
	})
}

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func stringArg(args map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	o, ok := args[name]
	if !ok || o.Type != discordgo.ApplicationCommandOptionString {
		return ""
	}
	return o.StringValue()
}

func intArg(args map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) int {
	o, ok := args[name]
	if !ok || o.Type != discordgo.ApplicationCommandOptionInteger {
		return 0
	}
	return int(o.IntValue())
}

func incrementChoices(increments []int) []*discordgo.ApplicationCommandOptionChoice {
	out := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(increments))
	for _, inc := range increments {
		out = append(out, &discordgo.ApplicationCommandOptionChoice{
			Name:  "+" + FormatAmount(inc),
			Value: inc,
		})
	}
	return out
}

func roleChoices() []*discordgo.ApplicationCommandOptionChoice {
	out := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(roster.Roles))
	for _, r := range roster.Roles {
		out = append(out, &discordgo.ApplicationCommandOptionChoice{Name: string(r), Value: string(r)})
	}
	return out
}

func statusChoices() []*discordgo.ApplicationCommandOptionChoice {
	statuses := []roster.Status{roster.StatusAvailable, roster.StatusSold, roster.StatusUnsold}
	out := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, &discordgo.ApplicationCommandOptionChoice{Name: string(s), Value: string(s)})
	}
	return out
}

var minZero, minOne = 0.0, 1.0

// SlashCommands returns the slash command definitions.
func SlashCommands(increments []int) []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{Name: "status", Description: "Show the lot on the block, the bid and the timer"},
		{Name: "teams", Description: "List teams with remaining purse and squad size"},
		{
			Name:        "players",
			Description: "List players in the pool",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "status",
					Description: "Only players with this status",
					Choices:     statusChoices(),
				},
			},
		},
		{
			Name:        "report",
			Description: "Summarise a session from its journal",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "session",
					Description: "Session id (default: the running session)",
				},
			},
		},
		{Name: "auction-start", Description: "Open the initial round (operator only)"},
		{Name: "reauction", Description: "Open the re-auction of unsold players (operator only)"},
		{Name: "auction-complete", Description: "Close the auction (operator only)"},
		{Name: "reveal", Description: "Put a random eligible player on the block (operator only)"},
		{
			Name:        "bid",
			Description: "Set the current bid (operator only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "New bid amount",
					Required:    true,
					MinValue:    &minZero,
				},
			},
		},
		{
			Name:        "quick-bid",
			Description: "Raise the current bid by a fixed step (operator only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "increment",
					Description: "Step to add",
					Required:    true,
					Choices:     incrementChoices(increments),
				},
			},
		},
		{
			Name:        "timer",
			Description: "Start, pause or reset the countdown (operator only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "action",
					Description: "Timer action",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "start", Value: string(timer.ActionStart)},
						{Name: "pause", Value: string(timer.ActionPause)},
						{Name: "reset", Value: string(timer.ActionReset)},
					},
				},
			},
		},
		{
			Name:        "sold",
			Description: "Sell the player on the block (operator only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "team",
					Description: "Buying team id",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Sale price, 0 allowed (omit to sell at the current bid)",
					MinValue:    &minZero,
				},
			},
		},
		{Name: "unsold", Description: "Mark the player on the block unsold (operator only)"},
		{
			Name:        "player-add",
			Description: "Register a player (operator only)",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "name", Description: "Player name", Required: true},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "base-price", Description: "Base price", Required: true, MinValue: &minOne},
				{Type: discordgo.ApplicationCommandOptionString, Name: "role", Description: "Playing role", Required: true, Choices: roleChoices()},
				{Type: discordgo.ApplicationCommandOptionString, Name: "image", Description: "Image URL"},
			},
		},
		{
			Name:        "team-add",
			Description: "Register a team (operator only)",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "name", Description: "Team name", Required: true},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "budget", Description: "Total purse (default from config)", MinValue: &minOne},
				{Type: discordgo.ApplicationCommandOptionString, Name: "logo", Description: "Logo URL"},
				{Type: discordgo.ApplicationCommandOptionString, Name: "username", Description: "Team login name"},
			},
		},
	}
}
