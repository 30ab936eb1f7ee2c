package stats

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"rangepool/internal/model"
	"rangepool/internal/storage/postgres"
)

// Config controls report behavior.
type Config struct {
	Out        string
	StateStore StateStore
}

// Report replays a pool event journal into lifetime per-pool stats.
type Report struct {
	cfg          Config
	store        *postgres.Store
	logger       *zap.Logger
	accumulators map[string]*Accumulator
}

func NewReport(cfg Config, store *postgres.Store, logger *zap.Logger) *Report {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Report{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		accumulators: make(map[string]*Accumulator),
	}
}

// Run replays a pool events JSONL file and returns stats per pool, sorted
// by pool address. Records at or below the resume cursor are skipped.
func (r *Report) Run(ctx context.Context, inputPath string) ([]model.PoolStats, error) {
	if inputPath == "" {
		return nil, fmt.Errorf("input path required")
	}

	startSeq, err := r.loadStartSeq(ctx)
	if err != nil {
		return nil, err
	}
	if startSeq > 0 {
		if err := r.seedAccumulators(ctx); err != nil {
			return nil, err
		}
	}

	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	maxSeq := startSeq
	var total, decoded, skipped, failed int

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var record model.PoolEventRecord
		if err := json.Unmarshal(line, &record); err != nil {
			failed++
			r.logger.Warn("decode pool event", zap.Error(err))
			continue
		}

		if record.Seq <= startSeq {
			skipped++
			continue
		}

		accKey := strings.ToLower(record.Pool)
		acc := r.accumulators[accKey]
		if acc == nil {
			acc = NewAccumulator(record.Pool)
			r.accumulators[accKey] = acc
		}

		if err := acc.AddEvent(record); err != nil {
			failed++
			r.logger.Warn("fold pool event",
				zap.Error(err),
				zap.String("pool", record.Pool),
				zap.String("event", record.EventName),
			)
			continue
		}
		decoded++

		if record.Seq > maxSeq {
			maxSeq = record.Seq
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}

	stats := make([]model.PoolStats, 0, len(r.accumulators))
	for _, acc := range r.accumulators {
		stats = append(stats, acc.Stats())
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Pool < stats[j].Pool })
	r.accumulators = make(map[string]*Accumulator)

	if r.store != nil {
		if err := r.store.UpsertStats(ctx, stats); err != nil {
			return nil, err
		}
	}
	if r.cfg.StateStore != nil {
		if err := r.cfg.StateStore.Save(ctx, maxSeq); err != nil {
			return nil, err
		}
	}
	if r.cfg.Out != "" {
		if err := writeSummary(r.cfg.Out, stats); err != nil {
			return nil, err
		}
	}

	r.logger.Info("report complete",
		zap.Int("total", total),
		zap.Int("decoded", decoded),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
		zap.Int("pools", len(stats)),
	)

	return stats, nil
}

func (r *Report) loadStartSeq(ctx context.Context) (uint64, error) {
	if r.cfg.StateStore == nil {
		return 0, nil
	}
	last, ok, err := r.cfg.StateStore.Load(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return last, nil
}

// seedAccumulators reloads persisted totals so a resumed run extends them.
func (r *Report) seedAccumulators(ctx context.Context) error {
	prior, err := r.loadPriorStats(ctx)
	if err != nil {
		return err
	}
	for _, st := range prior {
		acc, err := accumulatorFromStats(st)
		if err != nil {
			return fmt.Errorf("seed stats for %s: %w", st.Pool, err)
		}
		r.accumulators[strings.ToLower(st.Pool)] = acc
	}
	return nil
}

func (r *Report) loadPriorStats(ctx context.Context) ([]model.PoolStats, error) {
	if r.store != nil {
		return r.store.LoadStats(ctx)
	}
	if r.cfg.Out == "" {
		return nil, nil
	}

	data, err := os.ReadFile(r.cfg.Out)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read prior summary: %w", err)
	}
	var stats []model.PoolStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("parse prior summary: %w", err)
	}
	return stats, nil
}

func writeSummary(path string, stats []model.PoolStats) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create summary dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write summary tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename summary: %w", err)
	}
	return nil
}
