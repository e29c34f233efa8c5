package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jensholdgaard/player-auction/internal/auction"
	"github.com/jensholdgaard/player-auction/internal/bot"
	"github.com/jensholdgaard/player-auction/internal/clock"
	"github.com/jensholdgaard/player-auction/internal/config"
	"github.com/jensholdgaard/player-auction/internal/health"
	"github.com/jensholdgaard/player-auction/internal/httpapi"
	"github.com/jensholdgaard/player-auction/internal/leader"
	"github.com/jensholdgaard/player-auction/internal/roster"
	"github.com/jensholdgaard/player-auction/internal/store"
	"github.com/jensholdgaard/player-auction/internal/telemetry"

	// Register store drivers so they are available via store.Open.
	_ "github.com/jensholdgaard/player-auction/internal/store/memory"
	_ "github.com/jensholdgaard/player-auction/internal/store/postgres"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := run(*configPath); err != nil {
		slog.Error("fatal error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	tp, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		slog.Warn("telemetry setup failed, continuing without OTEL export", slog.Any("error", err))
		tp = telemetry.NewNopProvider()
	}
	defer func() {
		if shutdownErr := tp.Shutdown(context.Background()); shutdownErr != nil {
			slog.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	logger := tp.Logger
	clk := clock.Real()

	repos, err := store.Open(ctx, cfg.Database, clk)
	if err != nil {
		return fmt.Errorf("opening store (driver=%s): %w", cfg.Database.Driver, err)
	}
	defer repos.Close()

	logger.InfoContext(ctx, "journal store opened", slog.String("driver", cfg.Database.Driver))

	ids := roster.UUIDGenerator{}
	defaults := roster.Defaults{
		PlayerImage: cfg.Auction.DefaultPlayerImage,
		TeamLogo:    cfg.Auction.DefaultTeamLogo,
		Purse:       cfg.Auction.DefaultPurse,
	}
	pool, err := loadRoster(cfg.Auction.RosterFile, ids, defaults)
	if err != nil {
		return err
	}
	players, teams := pool.Len()
	logger.InfoContext(ctx, "roster loaded", slog.Int("players", players), slog.Int("teams", teams))

	engine := auction.NewEngine(pool, logger, tp.TracerProvider, clk, auction.Options{
		SessionID:    cfg.Auction.SessionID,
		TimerSeconds: cfg.Auction.TimerSeconds,
		PurseGuard:   cfg.Auction.PurseGuard,
		Defaults:     defaults,
		IDs:          ids,
	})
	mgr := auction.NewManager(engine, repos.Events, repos.Settlements, logger, tp.TracerProvider)
	if err := mgr.Open(ctx); err != nil {
		engine.Close()
		return fmt.Errorf("opening session: %w", err)
	}

	healthHandler := health.NewHandler(clk,
		health.Checker{Name: "database", Check: repos.Ping},
	)
	healthHandler.AddInfo("session", engine.SessionID)
	healthHandler.AddInfo("phase", func() string { return string(mgr.Snapshot().State.Phase) })
	healthHandler.AddInfo("version", func() string { return version })

	var limiter *httpapi.Limiter
	if cfg.Server.RequestsPerSecond > 0 {
		limiter = httpapi.NewLimiter(clk, cfg.Server.RequestsPerSecond, cfg.Server.Burst)
	}
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           httpapi.NewRouter(mgr, healthHandler, limiter, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// console drives the floor. Only the leader runs it.
	console := func(ctx context.Context) {
		healthHandler.SetReady(true)
		defer healthHandler.SetReady(false)

		if !cfg.Discord.Enabled() {
			logger.InfoContext(ctx, "discord console disabled, serving the read API only")
			<-ctx.Done()
			return
		}
		discordBot, botErr := bot.New(cfg.Discord, cfg.Auction.QuickIncrements, mgr, logger, tp.TracerProvider)
		if botErr != nil {
			logger.ErrorContext(ctx, "creating console failed", slog.Any("error", botErr))
			return
		}
		if botErr = discordBot.Start(ctx); botErr != nil {
			logger.ErrorContext(ctx, "starting console failed", slog.Any("error", botErr))
			return
		}
		logger.InfoContext(ctx, "auctiond is running", slog.String("version", version))

		<-ctx.Done()
		if stopErr := discordBot.Stop(); stopErr != nil {
			logger.Error("console shutdown error", slog.Any("error", stopErr))
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.InfoContext(gctx, "starting http server", slog.Int("port", cfg.Server.Port))
		if listenErr := httpServer.ListenAndServe(); listenErr != nil && !errors.Is(listenErr, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", listenErr)
		}
		return nil
	})

	g.Go(func() error {
		if !cfg.LeaderElection.Enabled {
			console(gctx)
			return nil
		}
		elector, electErr := leader.NewElector(cfg.LeaderElection, logger)
		if electErr != nil {
			return fmt.Errorf("leader election: %w", electErr)
		}
		healthHandler.AddInfo("leader", func() string { return strconv.FormatBool(elector.IsLeader()) })
		logger.InfoContext(gctx, "leader election enabled, waiting for leadership...")
		return elector.Run(gctx, console, func() {
			logger.Info("lost leadership, shutting down...")
			cancel()
		})
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Error("http server shutdown error", slog.Any("error", shutdownErr))
		}
		mgr.Close(shutdownCtx)
		if recErr := mgr.Reconcile(shutdownCtx); recErr != nil {
			logger.Warn("settlement records disagree with team purses", slog.Any("error", recErr))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

func loadRoster(path string, ids roster.IDGenerator, d roster.Defaults) (*roster.Store, error) {
	if path == "" {
		return roster.NewStore(nil, nil)
	}
	pool, err := roster.LoadFile(path, ids, d)
	if err != nil {
		return nil, fmt.Errorf("loading roster: %w", err)
	}
	return pool, nil
}
