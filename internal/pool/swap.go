package pool

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"rangepool/internal/pricemath"
)

// SwapReceipt reports an applied swap. Amount0 and Amount1 are signed from
// the pool's side: the input asset positive, the output asset negative. The
// price fields are the state after the move.
type SwapReceipt struct {
	Sender       common.Address
	Recipient    common.Address
	Amount0      *big.Int
	Amount1      *big.Int
	SqrtPriceX96 *big.Int
	Liquidity    *big.Int
	Tick         int32
}

// Swap sells amountIn of one asset to the pool in a single directional move
// against the active liquidity. The output is pushed to the recipient before
// the payment callback runs, so the payer can already see it; if the input
// does not arrive, everything is undone, the payout included.
func (p *Pool) Swap(sender, recipient common.Address, zeroForOne bool, amountIn *big.Int, payer SwapPayer, data []byte) (*SwapReceipt, error) {
	if payer == nil {
		return nil, fmt.Errorf("swap payer is nil")
	}
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, ErrZeroAmount
	}

	if !p.inFlight.CompareAndSwap(false, true) {
		return nil, ErrReentrantCall
	}
	defer p.inFlight.Store(false)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.liquidity.Sign() <= 0 {
		return nil, ErrZeroLiquidity
	}

	next, err := pricemath.NextSqrtRatioFromInput(p.sqrtPriceX96, p.liquidity, amountIn, zeroForOne)
	if err != nil {
		return nil, fmt.Errorf("landing price: %w", err)
	}
	nextTick, err := pricemath.TickAtSqrtRatio(next)
	if err != nil {
		return nil, fmt.Errorf("landing tick: %w", err)
	}

	// Signed settlement amounts, pool side: the charged input rounds up,
	// the payout rounds down.
	var amount0, amount1 *big.Int
	if zeroForOne {
		in0, err := pricemath.Amount0Delta(next, p.sqrtPriceX96, p.liquidity, true)
		if err != nil {
			return nil, fmt.Errorf("input amount: %w", err)
		}
		amount0 = in0
		amount1 = new(big.Int).Neg(pricemath.Amount1Delta(next, p.sqrtPriceX96, p.liquidity, false))
	} else {
		out0, err := pricemath.Amount0Delta(p.sqrtPriceX96, next, p.liquidity, false)
		if err != nil {
			return nil, fmt.Errorf("output amount: %w", err)
		}
		amount0 = new(big.Int).Neg(out0)
		amount1 = pricemath.Amount1Delta(p.sqrtPriceX96, next, p.liquidity, true)
	}

	pre := p.capturePreImage(nil, nil)
	p.sqrtPriceX96 = new(big.Int).Set(next)
	p.tick = nextTick

	var inAsset, outAsset Asset
	var owedIn, payOut *big.Int
	if zeroForOne {
		inAsset, outAsset = p.asset0, p.asset1
		owedIn, payOut = amount0, new(big.Int).Neg(amount1)
	} else {
		inAsset, outAsset = p.asset1, p.asset0
		owedIn, payOut = amount1, new(big.Int).Neg(amount0)
	}

	snap0, snap1 := p.asset0.Snapshot(), p.asset1.Snapshot()

	if payOut.Sign() > 0 {
		if err := outAsset.Transfer(recipient, payOut); err != nil {
			p.unwind(pre, snap0, snap1)
			return nil, fmt.Errorf("pay out: %w", err)
		}
	}

	balanceBefore, err := inAsset.BalanceOf(p.address)
	if err != nil {
		p.unwind(pre, snap0, snap1)
		return nil, fmt.Errorf("read input balance: %w", err)
	}

	if err := payer.OnSwapPayment(new(big.Int).Set(amount0), new(big.Int).Set(amount1), data); err != nil {
		p.unwind(pre, snap0, snap1)
		return nil, fmt.Errorf("swap payment: %w", err)
	}

	if err := p.verifyPaid(inAsset, balanceBefore, owedIn); err != nil {
		p.unwind(pre, snap0, snap1)
		return nil, err
	}

	return &SwapReceipt{
		Sender:       sender,
		Recipient:    recipient,
		Amount0:      amount0,
		Amount1:      amount1,
		SqrtPriceX96: new(big.Int).Set(p.sqrtPriceX96),
		Liquidity:    new(big.Int).Set(p.liquidity),
		Tick:         p.tick,
	}, nil
}
