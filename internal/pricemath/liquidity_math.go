package pricemath

import (
	"errors"
	"math/big"
)

var (
	ErrInvalidLiquidity   = errors.New("liquidity must be positive")
	ErrLiquidityOverflow  = errors.New("liquidity overflow")
	ErrLiquidityUnderflow = errors.New("liquidity underflow")
)

// maxUint128 caps per-tick and active liquidity, which are carried as
// unsigned 128-bit quantities on the serialized surface.
var maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 128), bigOne)

// AddDelta applies a signed liquidity change and keeps the result inside the
// unsigned 128-bit domain.
func AddDelta(liquidity, delta *big.Int) (*big.Int, error) {
	sum := new(big.Int).Add(liquidity, delta)
	if sum.Sign() < 0 {
		return nil, ErrLiquidityUnderflow
	}
	if sum.Cmp(maxUint128) > 0 {
		return nil, ErrLiquidityOverflow
	}
	return sum, nil
}

// AmountsForLiquidity returns the asset quantities the given liquidity spans
// between two bound prices. Below the range the value sits entirely in
// asset0, above it entirely in asset1, and inside it the current price
// splits the two sides.
func AmountsForLiquidity(sqrtRatioX96, sqrtRatioAX96, sqrtRatioBX96, liquidity *big.Int, roundUp bool) (*big.Int, *big.Int, error) {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}

	switch {
	case sqrtRatioX96.Cmp(sqrtRatioAX96) <= 0:
		amount0, err := Amount0Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity, roundUp)
		if err != nil {
			return nil, nil, err
		}
		return amount0, new(big.Int), nil
	case sqrtRatioX96.Cmp(sqrtRatioBX96) < 0:
		amount0, err := Amount0Delta(sqrtRatioX96, sqrtRatioBX96, liquidity, roundUp)
		if err != nil {
			return nil, nil, err
		}
		return amount0, Amount1Delta(sqrtRatioAX96, sqrtRatioX96, liquidity, roundUp), nil
	default:
		return new(big.Int), Amount1Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity, roundUp), nil
	}
}

// LiquidityForAmounts returns the largest liquidity the given asset budgets
// fund over a range, the inverse of AmountsForLiquidity. Inside the range
// the scarcer side binds.
func LiquidityForAmounts(sqrtRatioX96, sqrtRatioAX96, sqrtRatioBX96, amount0, amount1 *big.Int) *big.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}

	switch {
	case sqrtRatioX96.Cmp(sqrtRatioAX96) <= 0:
		return liquidityForAmount0(sqrtRatioAX96, sqrtRatioBX96, amount0)
	case sqrtRatioX96.Cmp(sqrtRatioBX96) < 0:
		liquidity0 := liquidityForAmount0(sqrtRatioX96, sqrtRatioBX96, amount0)
		liquidity1 := liquidityForAmount1(sqrtRatioAX96, sqrtRatioX96, amount1)
		if liquidity0.Cmp(liquidity1) < 0 {
			return liquidity0
		}
		return liquidity1
	default:
		return liquidityForAmount1(sqrtRatioAX96, sqrtRatioBX96, amount1)
	}
}

func liquidityForAmount0(sqrtRatioAX96, sqrtRatioBX96, amount0 *big.Int) *big.Int {
	intermediate := mulDiv(sqrtRatioAX96, sqrtRatioBX96, Q96)
	return mulDiv(amount0, intermediate, new(big.Int).Sub(sqrtRatioBX96, sqrtRatioAX96))
}

func liquidityForAmount1(sqrtRatioAX96, sqrtRatioBX96, amount1 *big.Int) *big.Int {
	return mulDiv(amount1, Q96, new(big.Int).Sub(sqrtRatioBX96, sqrtRatioAX96))
}
