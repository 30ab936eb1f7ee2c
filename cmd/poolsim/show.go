package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rangepool/internal/config"
	"rangepool/internal/model"
	"rangepool/internal/storage"
	"rangepool/internal/storage/postgres"
)

func runShow(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadShow(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("show start",
		zap.String("snapshot", cfg.Snapshot),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("pool", cfg.Pool),
	)

	var snap model.PoolSnapshot
	if cfg.PGDSN != "" {
		if cfg.Pool == "" {
			return fmt.Errorf("pool address is required with --pg-dsn")
		}
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()

		snap, err = loadStoredSnapshot(ctx, store, cfg.Pool)
		if err != nil {
			return err
		}
	} else {
		if cfg.Snapshot == "" {
			return fmt.Errorf("snapshot path is required")
		}
		loaded, ok, err := storage.NewSnapshotStore(cfg.Snapshot).Load()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("snapshot not found: %s", cfg.Snapshot)
		}
		snap = loaded
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func loadStoredSnapshot(ctx context.Context, store *postgres.Store, pool string) (model.PoolSnapshot, error) {
	state, ok, err := store.LoadPoolState(ctx, pool)
	if err != nil {
		return model.PoolSnapshot{}, err
	}
	if !ok {
		return model.PoolSnapshot{}, fmt.Errorf("pool not found: %s", pool)
	}

	ticks, err := store.LoadTicks(ctx, pool)
	if err != nil {
		return model.PoolSnapshot{}, err
	}
	positions, err := store.LoadPositions(ctx, pool)
	if err != nil {
		return model.PoolSnapshot{}, err
	}

	return model.PoolSnapshot{
		State:     state,
		Ticks:     ticks,
		Positions: positions,
	}, nil
}
