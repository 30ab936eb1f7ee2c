package scenario

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"rangepool/internal/model"
	"rangepool/internal/pool"
	"rangepool/internal/pricemath"
	"rangepool/internal/storage"
	"rangepool/internal/storage/postgres"
	"rangepool/internal/token"
)

// RunConfig holds runtime settings for a scenario run.
type RunConfig struct {
	MaxRetries   int
	RetryBackoff time.Duration
}

// Summary reports the outcome of a finished run.
type Summary struct {
	Applied    int
	Rejected   int
	FinalState model.PoolStateRecord
}

// Runner executes a scenario against a fresh pool: it builds the ledgers,
// funds the accounts, applies the steps serially, journals every applied
// receipt, and writes the final snapshot.
type Runner struct {
	cfg       RunConfig
	scn       Scenario
	journal   storage.Journal
	snapshots *storage.SnapshotStore
	store     *postgres.Store
	logger    *zap.Logger
}

// NewRunner builds a Runner with its dependencies. The snapshot store and
// the Postgres store are optional.
func NewRunner(cfg RunConfig, scn Scenario, journal storage.Journal, snapshots *storage.SnapshotStore, store *postgres.Store, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:       cfg,
		scn:       scn,
		journal:   journal,
		snapshots: snapshots,
		store:     store,
		logger:    logger,
	}
}

// resolvedStep carries one step with every string field parsed. Validation
// guarantees the parse succeeds, so resolution failures are hard errors.
type resolvedStep struct {
	op         string
	account    common.Address
	owner      common.Address
	recipient  common.Address
	lowerTick  int32
	upperTick  int32
	amount     *big.Int
	amountIn   *big.Int
	zeroForOne bool
	short0     *big.Int
	short1     *big.Int
}

// Run executes the scenario. Steps the engine rejects are counted and
// logged, not fatal: exercising rejection paths is a legitimate scenario
// outcome. Errors from the journal or the stores abort the run.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	if r.journal == nil {
		return nil, fmt.Errorf("journal is nil")
	}
	if err := r.scn.Validate(); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}

	steps, err := r.resolveSteps()
	if err != nil {
		return nil, err
	}

	ledger0 := token.NewLedger(tokenMeta(r.scn.Pool.Token0))
	ledger1 := token.NewLedger(tokenMeta(r.scn.Pool.Token1))
	if err := r.fundAccounts(ledger0, ledger1); err != nil {
		return nil, err
	}

	poolAddr := common.HexToAddress(r.scn.Pool.Address)
	price, err := r.initialPrice()
	if err != nil {
		return nil, err
	}
	p, err := pool.New(poolAddr, ledger0.Account(poolAddr), ledger1.Account(poolAddr), price)
	if err != nil {
		return nil, fmt.Errorf("build pool: %w", err)
	}

	poolHex := poolAddr.Hex()
	token0Hex := common.HexToAddress(r.scn.Pool.Token0.Address).Hex()
	token1Hex := common.HexToAddress(r.scn.Pool.Token1.Address).Hex()

	summary := &Summary{}
	var seq uint64

	for i, step := range steps {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		payer := &stepPayer{
			ledger0: ledger0,
			ledger1: ledger1,
			pool:    poolAddr,
			account: step.account,
			short0:  step.short0,
			short1:  step.short1,
		}

		var event model.PoolEvent
		var stepErr error
		switch step.op {
		case OpMint:
			receipt, err := p.Mint(step.account, step.owner, step.lowerTick, step.upperTick, step.amount, payer, nil)
			if err != nil {
				stepErr = err
				break
			}
			seq++
			event = buildMintEvent(seq, poolHex, r.poolMeta(token0Hex, token1Hex, p), receipt, time.Now())
		case OpSwap:
			receipt, err := p.Swap(step.account, step.recipient, step.zeroForOne, step.amountIn, payer, nil)
			if err != nil {
				stepErr = err
				break
			}
			seq++
			event = buildSwapEvent(seq, poolHex, r.poolMeta(token0Hex, token1Hex, p), receipt, time.Now())
		}

		ledger0.Finalise()
		ledger1.Finalise()

		if stepErr != nil {
			summary.Rejected++
			r.logger.Warn("step rejected",
				zap.Int("step", i),
				zap.String("op", step.op),
				zap.String("account", step.account.Hex()),
				zap.Error(stepErr),
			)
			continue
		}

		if err := r.putEvent(ctx, event); err != nil {
			return nil, fmt.Errorf("journal event %d: %w", event.Seq, err)
		}
		summary.Applied++

		r.logger.Info("step applied",
			zap.Int("step", i),
			zap.String("op", step.op),
			zap.Uint64("seq", event.Seq),
			zap.String("account", step.account.Hex()),
		)
	}

	snapshot := buildSnapshot(poolHex, token0Hex, token1Hex, p.Snapshot())
	if err := r.flushSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}
	summary.FinalState = snapshot.State

	r.logger.Info("scenario complete",
		zap.Int("applied", summary.Applied),
		zap.Int("rejected", summary.Rejected),
		zap.String("sqrt_price_x96", snapshot.State.SqrtPriceX96),
		zap.Int32("tick", snapshot.State.Tick),
		zap.String("liquidity", snapshot.State.Liquidity),
	)

	return summary, nil
}

func (r *Runner) resolveSteps() ([]resolvedStep, error) {
	steps := make([]resolvedStep, 0, len(r.scn.Steps))
	for i, step := range r.scn.Steps {
		account := common.HexToAddress(step.Account)
		resolved := resolvedStep{
			op:         step.Op,
			account:    account,
			owner:      account,
			recipient:  account,
			lowerTick:  step.LowerTick,
			upperTick:  step.UpperTick,
			zeroForOne: step.ZeroForOne,
		}
		if step.Owner != "" {
			resolved.owner = common.HexToAddress(step.Owner)
		}
		if step.Recipient != "" {
			resolved.recipient = common.HexToAddress(step.Recipient)
		}

		var err error
		switch step.Op {
		case OpMint:
			resolved.amount, err = parseAmount(step.Amount)
		case OpSwap:
			resolved.amountIn, err = parseAmount(step.AmountIn)
		}
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		if resolved.short0, err = parseOptionalAmount(step.Short0); err != nil {
			return nil, fmt.Errorf("step %d: short0: %w", i, err)
		}
		if resolved.short1, err = parseOptionalAmount(step.Short1); err != nil {
			return nil, fmt.Errorf("step %d: short1: %w", i, err)
		}
		steps = append(steps, resolved)
	}
	return steps, nil
}

func (r *Runner) fundAccounts(ledger0, ledger1 *token.Ledger) error {
	for i, account := range r.scn.Accounts {
		addr := common.HexToAddress(account.Address)
		if account.Balance0 != "" {
			amount, err := parseAmount(account.Balance0)
			if err != nil {
				return fmt.Errorf("account %d: balance0: %w", i, err)
			}
			if err := ledger0.Mint(addr, amount); err != nil {
				return fmt.Errorf("fund account %d: %w", i, err)
			}
		}
		if account.Balance1 != "" {
			amount, err := parseAmount(account.Balance1)
			if err != nil {
				return fmt.Errorf("account %d: balance1: %w", i, err)
			}
			if err := ledger1.Mint(addr, amount); err != nil {
				return fmt.Errorf("fund account %d: %w", i, err)
			}
		}
	}
	ledger0.Finalise()
	ledger1.Finalise()
	return nil
}

func (r *Runner) initialPrice() (*big.Int, error) {
	if r.scn.Pool.SqrtPriceX96 != "" {
		return parseAmount(r.scn.Pool.SqrtPriceX96)
	}
	price, err := pricemath.SqrtRatioAtTick(*r.scn.Pool.InitialTick)
	if err != nil {
		return nil, fmt.Errorf("initial-tick: %w", err)
	}
	return price, nil
}

func (r *Runner) poolMeta(token0, token1 string, p *pool.Pool) model.PoolMeta {
	return model.PoolMeta{
		Token0: token0,
		Token1: token1,
		Price:  priceState(p.State()),
	}
}

func (r *Runner) putEvent(ctx context.Context, event model.PoolEvent) error {
	batch := []model.PoolEvent{event}
	err := storage.WithRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		return r.journal.PutEventBatch(batch)
	})
	if err != nil {
		return err
	}
	if r.store == nil {
		return nil
	}
	return storage.WithRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		return r.store.InsertEvents(ctx, batch)
	})
}

func (r *Runner) flushSnapshot(ctx context.Context, snapshot model.PoolSnapshot) error {
	if r.snapshots != nil {
		if err := r.snapshots.Save(snapshot); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
	}
	if r.store == nil {
		return nil
	}

	if err := storage.WithRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		return r.store.UpsertPoolState(ctx, snapshot.State)
	}); err != nil {
		return fmt.Errorf("store pool state: %w", err)
	}
	if err := storage.WithRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		return r.store.UpsertTicks(ctx, snapshot.State.Pool, snapshot.Ticks)
	}); err != nil {
		return fmt.Errorf("store ticks: %w", err)
	}
	if err := storage.WithRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		return r.store.UpsertPositions(ctx, snapshot.State.Pool, snapshot.Positions)
	}); err != nil {
		return fmt.Errorf("store positions: %w", err)
	}
	return nil
}

func tokenMeta(def TokenDef) model.TokenMeta {
	return model.TokenMeta{
		Address:  common.HexToAddress(def.Address).Hex(),
		Decimals: def.Decimals,
		Symbol:   def.Symbol,
		Name:     def.Name,
	}
}
