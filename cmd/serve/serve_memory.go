package serve

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"golang.org/x/sync/errgroup"

	"github.com/sig-0/bankrates/cmd/env"
	"github.com/sig-0/bankrates/ingest"
	"github.com/sig-0/bankrates/reconcile"
	"github.com/sig-0/bankrates/server"
	"github.com/sig-0/bankrates/server/config"
	"github.com/sig-0/bankrates/storage/memory"
)

type serveMemoryCfg struct {
	rootCfg *serveCfg
}

// newServeMemoryCmd creates the serve memory command.
func newServeMemoryCmd(rootCfg *serveCfg) *ffcli.Command {
	cfg := &serveMemoryCfg{
		rootCfg: rootCfg,
	}

	fs := flag.NewFlagSet("memory", flag.ExitOnError)
	cfg.rootCfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "memory",
		ShortUsage: "serve memory [flags]",
		LongHelp:   "Serves the bankrates backend, using an in-memory datastore",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *serveMemoryCfg) exec(ctx context.Context, _ []string) error {
	// Read the server configuration, if any
	if c.rootCfg.configPath != "" {
		serverCfg, err := config.Read(c.rootCfg.configPath)
		if err != nil {
			return fmt.Errorf("unable to read server config, %w", err)
		}

		c.rootCfg.config = serverCfg
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Load .env
	if err := godotenv.Load(); err != nil {
		logger.Warn("unable to load .env file")
	}

	// Create an in-memory store
	store := memory.NewStorage()

	// Create the reconciliation service
	reconciler := reconcile.New(store, reconcile.WithLogger(logger))

	// Create the ingestion service
	orchestrator := ingest.New(reconciler, ingest.WithLogger(logger))

	providers := defaultProviders(logger)
	for _, provider := range providers {
		if err := orchestrator.Register(provider); err != nil {
			return fmt.Errorf("unable to register provider: %w", err)
		}
	}

	// Seed the fresh store with an initial collection,
	// since the periodic pipeline only updates existing rows
	for _, provider := range providers {
		rates, err := provider.Collect(ctx)
		if err != nil {
			return fmt.Errorf("unable to collect initial rates: %w", err)
		}

		if err = store.InsertRates(ctx, rates); err != nil {
			return fmt.Errorf("unable to seed store: %w", err)
		}

		logger.Info(
			"store seeded",
			"provider", provider.Name(),
			"rates", len(rates),
		)
	}

	s, err := server.New(
		store,
		server.WithLogger(logger),
		server.WithConfig(c.rootCfg.config),
	)
	if err != nil {
		return fmt.Errorf("unable to create server, %w", err)
	}

	runCtx, cancelFn := signal.NotifyContext(
		ctx,
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancelFn()

	group, gCtx := errgroup.WithContext(runCtx)

	group.Go(func() error {
		return s.Serve(gCtx)
	})

	group.Go(func() error {
		return orchestrator.Start(gCtx)
	})

	return group.Wait()
}
