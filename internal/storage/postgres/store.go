package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rangepool/internal/model"
)

// Store provides Postgres persistence for pool state and events.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertPoolState inserts or updates the scalar state of one pool.
func (s *Store) UpsertPoolState(ctx context.Context, state model.PoolStateRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pool_state (
			pool_address, token0, token1, sqrt_price_x96, tick, liquidity, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (pool_address)
		DO UPDATE SET
			token0 = EXCLUDED.token0,
			token1 = EXCLUDED.token1,
			sqrt_price_x96 = EXCLUDED.sqrt_price_x96,
			tick = EXCLUDED.tick,
			liquidity = EXCLUDED.liquidity,
			updated_at = now()
	`,
		state.Pool,
		state.Token0,
		state.Token1,
		state.SqrtPriceX96,
		state.Tick,
		state.Liquidity,
	)
	return err
}

// UpsertTicks inserts or updates the tick ledger rows of one pool.
func (s *Store) UpsertTicks(ctx context.Context, pool string, ticks []model.TickRecord) error {
	if len(ticks) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, tick := range ticks {
		batch.Queue(`
			INSERT INTO pool_ticks (
				pool_address, tick, liquidity_gross, liquidity_net, created_at, updated_at
			) VALUES ($1, $2, $3, $4, now(), now())
			ON CONFLICT (pool_address, tick)
			DO UPDATE SET
				liquidity_gross = EXCLUDED.liquidity_gross,
				liquidity_net = EXCLUDED.liquidity_net,
				updated_at = now()
		`,
			pool,
			tick.Tick,
			tick.LiquidityGross,
			tick.LiquidityNet,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range ticks {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertPositions inserts or updates the position ledger rows of one pool.
func (s *Store) UpsertPositions(ctx context.Context, pool string, positions []model.PositionRecord) error {
	if len(positions) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, pos := range positions {
		batch.Queue(`
			INSERT INTO pool_positions (
				pool_address, owner, tick_lower, tick_upper, liquidity, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, now(), now())
			ON CONFLICT (pool_address, owner, tick_lower, tick_upper)
			DO UPDATE SET
				liquidity = EXCLUDED.liquidity,
				updated_at = now()
		`,
			pool,
			pos.Owner,
			pos.TickLower,
			pos.TickUpper,
			pos.Liquidity,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range positions {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// InsertEvents appends pool events; replayed sequence numbers are ignored.
func (s *Store) InsertEvents(ctx context.Context, events []model.PoolEvent) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, event := range events {
		batch.Queue(`
			INSERT INTO pool_events (
				pool_address, seq, event_name, emitted_at, decoded, created_at
			) VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (pool_address, seq) DO NOTHING
		`,
			event.Pool,
			int64(event.Seq),
			event.EventName,
			event.EmittedAt,
			event.Decoded,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertStats inserts or updates accumulated pool stats.
func (s *Store) UpsertStats(ctx context.Context, stats []model.PoolStats) error {
	if len(stats) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, st := range stats {
		batch.Queue(`
			INSERT INTO pool_stats (
				pool_address, mint_count, swap_count, minted_liquidity,
				volume0, volume1, last_seq, sqrt_price_x96, tick, liquidity,
				created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now(),now())
			ON CONFLICT (pool_address)
			DO UPDATE SET
				mint_count = EXCLUDED.mint_count,
				swap_count = EXCLUDED.swap_count,
				minted_liquidity = EXCLUDED.minted_liquidity,
				volume0 = EXCLUDED.volume0,
				volume1 = EXCLUDED.volume1,
				last_seq = EXCLUDED.last_seq,
				sqrt_price_x96 = EXCLUDED.sqrt_price_x96,
				tick = EXCLUDED.tick,
				liquidity = EXCLUDED.liquidity,
				updated_at = now()
		`,
			st.Pool,
			int64(st.MintCount),
			int64(st.SwapCount),
			st.MintedLiquidity,
			st.Volume0,
			st.Volume1,
			int64(st.LastSeq),
			st.SqrtPriceX96,
			st.Tick,
			st.Liquidity,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range stats {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadStats reads back all accumulated pool stats ordered by pool address.
func (s *Store) LoadStats(ctx context.Context) ([]model.PoolStats, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT pool_address, mint_count, swap_count, minted_liquidity,
			volume0, volume1, last_seq, sqrt_price_x96, tick, liquidity
		FROM pool_stats ORDER BY pool_address
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []model.PoolStats
	for rows.Next() {
		var st model.PoolStats
		var mintCount, swapCount, lastSeq int64
		if err := rows.Scan(
			&st.Pool, &mintCount, &swapCount, &st.MintedLiquidity,
			&st.Volume0, &st.Volume1, &lastSeq, &st.SqrtPriceX96, &st.Tick, &st.Liquidity,
		); err != nil {
			return nil, err
		}
		st.MintCount = uint64(mintCount)
		st.SwapCount = uint64(swapCount)
		st.LastSeq = uint64(lastSeq)
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// LoadPoolState reads back the scalar state of one pool.
func (s *Store) LoadPoolState(ctx context.Context, pool string) (model.PoolStateRecord, bool, error) {
	if pool == "" {
		return model.PoolStateRecord{}, false, fmt.Errorf("pool address required")
	}
	var state model.PoolStateRecord
	row := s.pool.QueryRow(ctx, `
		SELECT pool_address, token0, token1, sqrt_price_x96, tick, liquidity
		FROM pool_state WHERE pool_address=$1
	`, pool)
	if err := row.Scan(&state.Pool, &state.Token0, &state.Token1, &state.SqrtPriceX96, &state.Tick, &state.Liquidity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PoolStateRecord{}, false, nil
		}
		return model.PoolStateRecord{}, false, err
	}
	return state, true, nil
}

// LoadTicks reads back the tick ledger of one pool ordered by tick.
func (s *Store) LoadTicks(ctx context.Context, pool string) ([]model.TickRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT tick, liquidity_gross, liquidity_net
		FROM pool_ticks WHERE pool_address=$1 ORDER BY tick
	`, pool)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ticks []model.TickRecord
	for rows.Next() {
		var tick model.TickRecord
		if err := rows.Scan(&tick.Tick, &tick.LiquidityGross, &tick.LiquidityNet); err != nil {
			return nil, err
		}
		ticks = append(ticks, tick)
	}
	return ticks, rows.Err()
}

// LoadPositions reads back the position ledger of one pool.
func (s *Store) LoadPositions(ctx context.Context, pool string) ([]model.PositionRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT owner, tick_lower, tick_upper, liquidity
		FROM pool_positions WHERE pool_address=$1 ORDER BY owner, tick_lower, tick_upper
	`, pool)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []model.PositionRecord
	for rows.Next() {
		var pos model.PositionRecord
		if err := rows.Scan(&pos.Owner, &pos.TickLower, &pos.TickUpper, &pos.Liquidity); err != nil {
			return nil, err
		}
		positions = append(positions, pos)
	}
	return positions, rows.Err()
}

// LoadState returns last_processed_seq for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var seq int64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_seq FROM report_state WHERE name=$1`, name)
	if err := row.Scan(&seq); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(seq), true, nil
}

// SaveState upserts last_processed_seq for a name.
func (s *Store) SaveState(ctx context.Context, name string, seq uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO report_state (name, last_processed_seq, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_seq = EXCLUDED.last_processed_seq, updated_at = now()
	`, name, int64(seq))
	return err
}
