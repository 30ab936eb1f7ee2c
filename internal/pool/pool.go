package pool

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"

	"rangepool/internal/pricemath"
)

var (
	ErrInvalidTickRange  = errors.New("invalid tick range")
	ErrZeroLiquidity     = errors.New("zero liquidity")
	ErrZeroAmount        = errors.New("swap amount must be positive")
	ErrInsufficientInput = errors.New("insufficient input amount")
	ErrReentrantCall     = errors.New("reentrant call")
)

// Asset is the pool's view of one traded asset. Transfer sends from the
// pool's own funds; the pool never pulls from anyone else. Snapshot and
// RevertTo let a failed settlement compensate transfers already pushed out.
type Asset interface {
	BalanceOf(holder common.Address) (*big.Int, error)
	Transfer(to common.Address, amount *big.Int) error
	Snapshot() int
	RevertTo(snapshot int)
}

// MintPayer receives the owed deposit amounts and must move them to the pool
// before returning.
type MintPayer interface {
	OnMintPayment(amount0, amount1 *big.Int, data []byte) error
}

// SwapPayer receives the signed settlement amounts and must move the
// positive side to the pool before returning. The negative side has already
// been paid out when the callback runs.
type SwapPayer interface {
	OnSwapPayment(amount0, amount1 *big.Int, data []byte) error
}

// Pool is one concentrated-liquidity trading pair: the per-tick liquidity
// ledger, the per-range position ledger and the current price, settled
// against two asset boundaries.
//
// Mint and Swap are atomic: they either apply completely or leave pool and
// asset state untouched. Operations reject overlap instead of queueing, and
// payment callbacks must not call back into the pool; the owed amounts
// arrive as arguments.
type Pool struct {
	address common.Address
	asset0  Asset
	asset1  Asset

	mu       sync.RWMutex
	inFlight atomic.Bool

	sqrtPriceX96 *big.Int
	tick         int32
	liquidity    *big.Int

	ticks     map[int32]*TickInfo
	positions map[PositionKey]*Position
}

// New creates a pool at an initial sqrt price with empty ledgers. The
// current tick is derived from the price, so the price sits inside the
// tick's boundaries from the first moment.
func New(address common.Address, asset0, asset1 Asset, sqrtPriceX96 *big.Int) (*Pool, error) {
	if asset0 == nil || asset1 == nil {
		return nil, fmt.Errorf("both assets are required")
	}
	tick, err := pricemath.TickAtSqrtRatio(sqrtPriceX96)
	if err != nil {
		return nil, fmt.Errorf("initial price: %w", err)
	}
	return &Pool{
		address:      address,
		asset0:       asset0,
		asset1:       asset1,
		sqrtPriceX96: new(big.Int).Set(sqrtPriceX96),
		tick:         tick,
		liquidity:    new(big.Int),
		ticks:        make(map[int32]*TickInfo),
		positions:    make(map[PositionKey]*Position),
	}, nil
}

func (p *Pool) Address() common.Address {
	return p.address
}

// State is a consistent copy of the pool's price scalars.
type State struct {
	SqrtPriceX96 *big.Int
	Tick         int32
	Liquidity    *big.Int
}

func (p *Pool) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return State{
		SqrtPriceX96: new(big.Int).Set(p.sqrtPriceX96),
		Tick:         p.tick,
		Liquidity:    new(big.Int).Set(p.liquidity),
	}
}

// TickInfo returns a copy of the ledger entry at the given tick.
func (p *Pool) TickInfo(tick int32) (TickInfo, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	info, ok := p.ticks[tick]
	if !ok {
		return TickInfo{}, false
	}
	return copyTickInfo(info), true
}

// TickInitialized reports whether the tick carries any gross liquidity.
func (p *Pool) TickInitialized(tick int32) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	info, ok := p.ticks[tick]
	return ok && info.LiquidityGross.Sign() > 0
}

// Position returns a copy of the owner's range position.
func (p *Pool) Position(owner common.Address, lowerTick, upperTick int32) (Position, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	pos, ok := p.positions[PositionKey{Owner: owner, LowerTick: lowerTick, UpperTick: upperTick}]
	if !ok {
		return Position{}, false
	}
	return Position{Liquidity: new(big.Int).Set(pos.Liquidity)}, true
}

// Snapshot is a deep copy of the pool's full durable state.
type Snapshot struct {
	State     State
	Ticks     map[int32]TickInfo
	Positions map[PositionKey]Position
}

func (p *Pool) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ticks := make(map[int32]TickInfo, len(p.ticks))
	for tick, info := range p.ticks {
		ticks[tick] = copyTickInfo(info)
	}
	positions := make(map[PositionKey]Position, len(p.positions))
	for key, pos := range p.positions {
		positions[key] = Position{Liquidity: new(big.Int).Set(pos.Liquidity)}
	}
	return Snapshot{
		State: State{
			SqrtPriceX96: new(big.Int).Set(p.sqrtPriceX96),
			Tick:         p.tick,
			Liquidity:    new(big.Int).Set(p.liquidity),
		},
		Ticks:     ticks,
		Positions: positions,
	}
}
