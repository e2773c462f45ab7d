package sql

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/bankrates/cmd/env"
	"github.com/sig-0/bankrates/provider/myfin"
	dbpkg "github.com/sig-0/bankrates/storage/sql"
)

// seedCfg wraps the seed configuration
type seedCfg struct {
	rootCfg *sqlCfg
}

// newSeedCmd creates the seed command
func newSeedCmd(rootCfg *sqlCfg) *ffcli.Command {
	cfg := &seedCfg{
		rootCfg: rootCfg,
	}

	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	rootCfg.RegisterFlags(fs)

	return &ffcli.Command{
		Name:       "seed",
		ShortUsage: "sql seed",
		LongHelp:   "Populates the DB with an initial rate collection",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *seedCfg) exec(ctx context.Context, _ []string) error {
	// Load .env
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("unable to load .env vars")
	}

	dsn := os.Getenv(env.Prefix + env.DBURLSuffix)

	// Open the DB
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return err
	}

	defer func() {
		closeCtx, cancelFn := context.WithTimeout(ctx, time.Second*5)
		defer cancelFn()

		if err = conn.Close(closeCtx); err != nil {
			fmt.Printf("Unable to gracefully close DB: %s\n", err.Error())
		}
	}()

	// Ping the DB
	if err = conn.Ping(ctx); err != nil {
		return fmt.Errorf("unable to ping DB: %w", err)
	}

	// Collect the current rate listing
	fmt.Println("Collecting rates...")

	provider := myfin.NewProvider(
		myfin.WithLogger(slog.New(slog.NewTextHandler(os.Stdout, nil))),
	)

	rates, err := provider.Collect(ctx)
	if err != nil {
		return fmt.Errorf("unable to collect rates: %w", err)
	}

	if len(rates) == 0 {
		return fmt.Errorf("no rates collected")
	}

	fmt.Printf("Collected %d rates\n", len(rates))

	// Insert the collected rates.
	// Banks already present in the DB are left untouched
	store := dbpkg.NewStorage(conn)

	if err = store.InsertRates(ctx, rates); err != nil {
		return fmt.Errorf("unable to insert rates: %w", err)
	}

	fmt.Println("Seed complete!")

	return nil
}
