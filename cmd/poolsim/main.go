package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rangepool/internal/config"
	"rangepool/internal/scenario"
	"rangepool/internal/storage"
	"rangepool/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "poolsim",
		Short:        "Concentrated liquidity pool simulator",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a pool scenario",
		RunE:  runScenario,
	}

	runCmd.Flags().String("scenario", "", "scenario file path (YAML or JSON)")
	runCmd.Flags().String("out", "./data/pool_events.jsonl", "pool events JSONL path")
	runCmd.Flags().String("snapshot", "./data/snapshot.json", "final snapshot JSON path")
	runCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	runCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Fold the event journal into per-pool stats",
		RunE:  runReport,
	}

	reportCmd.Flags().String("in", "./data/pool_events.jsonl", "input pool events JSONL")
	reportCmd.Flags().String("out", "./data/pool_stats.json", "output stats JSON path")
	reportCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	reportCmd.Flags().String("state-file", "", "optional local state file for progress tracking")
	reportCmd.Flags().String("state-name", "report", "resume cursor name for Postgres state")
	reportCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(reportCmd)

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print a pool snapshot",
		RunE:  runShow,
	}

	showCmd.Flags().String("snapshot", "./data/snapshot.json", "snapshot JSON path")
	showCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	showCmd.Flags().String("pool", "", "pool address (required with --pg-dsn)")
	showCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(showCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Convert prices and preview range amounts",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("sqrt-price-x96", "", "current sqrt price in Q64.96")
	quoteCmd.Flags().String("tick", "", "current tick (used when sqrt price is not set)")
	quoteCmd.Flags().String("lower-tick", "", "range lower tick")
	quoteCmd.Flags().String("upper-tick", "", "range upper tick")
	quoteCmd.Flags().String("liquidity", "", "range liquidity")
	quoteCmd.Flags().String("amount0", "", "available token0 amount")
	quoteCmd.Flags().String("amount1", "", "available token1 amount")
	quoteCmd.Flags().Int("decimals0", 18, "token0 decimals")
	quoteCmd.Flags().Int("decimals1", 18, "token1 decimals")
	quoteCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(quoteCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runScenario(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Scenario == "" {
		return fmt.Errorf("scenario path is required")
	}
	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}

	scn, err := config.LoadScenario(cfg.Scenario)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	journal := storage.NewJsonlJournal(cfg.Out)

	var snapshots *storage.SnapshotStore
	if cfg.Snapshot != "" {
		snapshots = storage.NewSnapshotStore(cfg.Snapshot)
	}

	var store *postgres.Store
	if cfg.PGDSN != "" {
		store, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
	}

	runner := scenario.NewRunner(scenario.RunConfig{
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, scn, journal, snapshots, store, logger)

	logger.Info("run start",
		zap.String("scenario", cfg.Scenario),
		zap.String("out", cfg.Out),
		zap.String("snapshot", cfg.Snapshot),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.Int("steps", len(scn.Steps)),
	)

	if _, err := runner.Run(ctx); err != nil {
		return err
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
