package pool

import (
	"math/big"

	"rangepool/internal/pricemath"
)

// TickInfo is the liquidity ledger entry of one initialized tick.
// LiquidityGross is the total liquidity referencing the tick from either
// bound; LiquidityNet is the change in active liquidity when the price
// crosses the tick moving up.
type TickInfo struct {
	LiquidityGross *big.Int
	LiquidityNet   *big.Int
}

func copyTickInfo(info *TickInfo) TickInfo {
	return TickInfo{
		LiquidityGross: new(big.Int).Set(info.LiquidityGross),
		LiquidityNet:   new(big.Int).Set(info.LiquidityNet),
	}
}

// checkTicks validates a range: ordered and inside the global tick bounds.
func checkTicks(lowerTick, upperTick int32) error {
	if lowerTick >= upperTick {
		return ErrInvalidTickRange
	}
	if lowerTick < pricemath.MinTick || upperTick > pricemath.MaxTick {
		return ErrInvalidTickRange
	}
	return nil
}

// updateTick applies a liquidity delta to one bound of a range. Lower bounds
// add the delta to the net ledger, upper bounds subtract it. Returns whether
// the tick flipped between empty and initialized. Callers hold p.mu.
func (p *Pool) updateTick(tick int32, delta *big.Int, upper bool) (bool, error) {
	info, ok := p.ticks[tick]
	if !ok {
		info = &TickInfo{LiquidityGross: new(big.Int), LiquidityNet: new(big.Int)}
		p.ticks[tick] = info
	}

	grossAfter, err := pricemath.AddDelta(info.LiquidityGross, delta)
	if err != nil {
		return false, err
	}
	flipped := (grossAfter.Sign() == 0) != (info.LiquidityGross.Sign() == 0)
	info.LiquidityGross = grossAfter

	if upper {
		info.LiquidityNet = new(big.Int).Sub(info.LiquidityNet, delta)
	} else {
		info.LiquidityNet = new(big.Int).Add(info.LiquidityNet, delta)
	}
	return flipped, nil
}
