// Command ledgertool runs ledger maintenance against the live store.
//
//	ledgertool reconcile [-grace 2m]   post missing delivery fees for orphaned parcels
//	ledgertool verify-wallets          compare every cached wallet with the ledger and repair drift
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/courierpwa/courier-ops/internal/core/ports"
	"github.com/courierpwa/courier-ops/internal/core/service"
	"github.com/courierpwa/courier-ops/internal/infrastructure/db/mongo"
	"github.com/courierpwa/courier-ops/internal/pkg/config"
	"github.com/courierpwa/courier-ops/pkg/logger"
)

const usage = `usage: ledgertool <command> [flags]

commands:
  reconcile        post missing delivery fees for parcels older than -grace
  verify-wallets   recompute every wallet from the ledger and repair drift
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.Pretty(), Service: "courier-ledgertool"})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, AppName: "courier-ledgertool", Timeout: cfg.Mongo.Timeout})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer client.Disconnect(context.Background())

	repos := mongo.NewRepositories(db, cfg.Mongo.Timeout)
	ledger := service.NewLedgerService(service.LedgerServiceDeps{
		Entries:  repos.Ledger,
		Wallets:  repos.Wallets,
		Parcels:  repos.Parcels,
		Currency: cfg.Currency,
		Logger:   log,
	})
	reconciler := service.NewReconciler(repos.Parcels, repos.Destinations, ledger, log)

	code := run(ctx, os.Args[1:], reconciler, ledger, cfg.Reconcile.Grace, os.Stdout, log)
	if code != 0 {
		cancel()
		client.Disconnect(context.Background())
		os.Exit(code)
	}
}

type reconcileRunner interface {
	Run(ctx context.Context, olderThan time.Duration) (int, error)
}

type walletVerifier interface {
	VerifyWallets(ctx context.Context) ([]ports.WalletCheck, error)
}

// run dispatches one subcommand and returns the process exit code.
func run(ctx context.Context, args []string, rec reconcileRunner, wallets walletVerifier, defaultGrace time.Duration, out io.Writer, log zerolog.Logger) int {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return 2
	}

	switch args[0] {
	case "reconcile":
		fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
		fs.SetOutput(out)
		grace := fs.Duration("grace", defaultGrace, "only repair parcels created at least this long ago")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		repaired, err := rec.Run(ctx, *grace)
		if err != nil {
			log.Error().Err(err).Int("repaired", repaired).Msg("reconcile failed")
			return 1
		}
		fmt.Fprintf(out, "repaired %d parcel(s)\n", repaired)
		return 0

	case "verify-wallets":
		checks, err := wallets.VerifyWallets(ctx)
		if err != nil {
			log.Error().Err(err).Msg("verify-wallets failed")
			return 1
		}
		repaired := 0
		for _, c := range checks {
			if c.Repaired {
				repaired++
				fmt.Fprintf(out, "%s: cached %s, ledger %s (repaired)\n", c.StaffID, c.Cached, c.Ledger)
			}
		}
		fmt.Fprintf(out, "checked %d wallet(s), repaired %d\n", len(checks), repaired)
		return 0

	default:
		fmt.Fprintf(out, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}
}
