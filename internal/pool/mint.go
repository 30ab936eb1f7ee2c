package pool

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"rangepool/internal/pricemath"
)

// MintReceipt reports an applied mint. Amount0 and Amount1 are the deposit
// the payer funded.
type MintReceipt struct {
	Sender    common.Address
	Owner     common.Address
	LowerTick int32
	UpperTick int32
	Amount    *big.Int
	Amount0   *big.Int
	Amount1   *big.Int
}

// Mint adds liquidity to the owner's range. The payment callback must move
// the owed deposit to the pool before returning; if the balances do not
// confirm it, every effect of the call is undone.
func (p *Pool) Mint(sender, owner common.Address, lowerTick, upperTick int32, amount *big.Int, payer MintPayer, data []byte) (*MintReceipt, error) {
	if payer == nil {
		return nil, fmt.Errorf("mint payer is nil")
	}
	if err := checkTicks(lowerTick, upperTick); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrZeroLiquidity
	}

	if !p.inFlight.CompareAndSwap(false, true) {
		return nil, ErrReentrantCall
	}
	defer p.inFlight.Store(false)

	p.mu.Lock()
	defer p.mu.Unlock()

	sqrtLower, err := pricemath.SqrtRatioAtTick(lowerTick)
	if err != nil {
		return nil, fmt.Errorf("lower bound ratio: %w", err)
	}
	sqrtUpper, err := pricemath.SqrtRatioAtTick(upperTick)
	if err != nil {
		return nil, fmt.Errorf("upper bound ratio: %w", err)
	}

	key := PositionKey{Owner: owner, LowerTick: lowerTick, UpperTick: upperTick}
	pre := p.capturePreImage([]int32{lowerTick, upperTick}, []PositionKey{key})

	if _, err := p.updateTick(lowerTick, amount, false); err != nil {
		p.restore(pre)
		return nil, fmt.Errorf("update lower tick: %w", err)
	}
	if _, err := p.updateTick(upperTick, amount, true); err != nil {
		p.restore(pre)
		return nil, fmt.Errorf("update upper tick: %w", err)
	}
	if err := p.updatePosition(key, amount); err != nil {
		p.restore(pre)
		return nil, fmt.Errorf("update position: %w", err)
	}

	amount0, amount1, err := p.amountsForRange(sqrtLower, sqrtUpper, lowerTick, upperTick, amount)
	if err != nil {
		p.restore(pre)
		return nil, fmt.Errorf("owed amounts: %w", err)
	}

	if p.tick >= lowerTick && p.tick < upperTick {
		next, err := pricemath.AddDelta(p.liquidity, amount)
		if err != nil {
			p.restore(pre)
			return nil, fmt.Errorf("active liquidity: %w", err)
		}
		p.liquidity = next
	}

	snap0, snap1 := p.asset0.Snapshot(), p.asset1.Snapshot()

	balance0Before := new(big.Int)
	if amount0.Sign() > 0 {
		balance0Before, err = p.asset0.BalanceOf(p.address)
		if err != nil {
			p.restore(pre)
			return nil, fmt.Errorf("read asset0 balance: %w", err)
		}
	}
	balance1Before := new(big.Int)
	if amount1.Sign() > 0 {
		balance1Before, err = p.asset1.BalanceOf(p.address)
		if err != nil {
			p.restore(pre)
			return nil, fmt.Errorf("read asset1 balance: %w", err)
		}
	}

	if err := payer.OnMintPayment(new(big.Int).Set(amount0), new(big.Int).Set(amount1), data); err != nil {
		p.unwind(pre, snap0, snap1)
		return nil, fmt.Errorf("mint payment: %w", err)
	}

	if amount0.Sign() > 0 {
		if err := p.verifyPaid(p.asset0, balance0Before, amount0); err != nil {
			p.unwind(pre, snap0, snap1)
			return nil, fmt.Errorf("asset0: %w", err)
		}
	}
	if amount1.Sign() > 0 {
		if err := p.verifyPaid(p.asset1, balance1Before, amount1); err != nil {
			p.unwind(pre, snap0, snap1)
			return nil, fmt.Errorf("asset1: %w", err)
		}
	}

	return &MintReceipt{
		Sender:    sender,
		Owner:     owner,
		LowerTick: lowerTick,
		UpperTick: upperTick,
		Amount:    new(big.Int).Set(amount),
		Amount0:   amount0,
		Amount1:   amount1,
	}, nil
}

// amountsForRange prices the owed deposit for added liquidity against the
// current tick: below the range the deposit is all asset0, above it all
// asset1, inside it the current price splits the two. Rounds toward the
// pool. Callers hold p.mu.
func (p *Pool) amountsForRange(sqrtLower, sqrtUpper *big.Int, lowerTick, upperTick int32, liquidity *big.Int) (*big.Int, *big.Int, error) {
	switch {
	case p.tick < lowerTick:
		amount0, err := pricemath.Amount0Delta(sqrtLower, sqrtUpper, liquidity, true)
		if err != nil {
			return nil, nil, err
		}
		return amount0, new(big.Int), nil
	case p.tick < upperTick:
		amount0, err := pricemath.Amount0Delta(p.sqrtPriceX96, sqrtUpper, liquidity, true)
		if err != nil {
			return nil, nil, err
		}
		return amount0, pricemath.Amount1Delta(sqrtLower, p.sqrtPriceX96, liquidity, true), nil
	default:
		return new(big.Int), pricemath.Amount1Delta(sqrtLower, sqrtUpper, liquidity, true), nil
	}
}
