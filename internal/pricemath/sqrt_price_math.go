package pricemath

import (
	"math/big"
)

// Q96 is one in Q64.96 fixed point.
var Q96 = new(big.Int).Lsh(big.NewInt(1), 96)

var bigOne = big.NewInt(1)

// Amount0Delta returns the asset0 quantity backing the given liquidity
// between two sqrt prices. Bounds are sorted internally; the caller picks
// the rounding, which settlement always points in the pool's favor.
func Amount0Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity *big.Int, roundUp bool) (*big.Int, error) {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	if sqrtRatioAX96.Sign() <= 0 {
		return nil, ErrInvalidSqrtRatio
	}

	numerator1 := new(big.Int).Lsh(liquidity, 96)
	numerator2 := new(big.Int).Sub(sqrtRatioBX96, sqrtRatioAX96)

	if roundUp {
		return divRoundingUp(mulDivRoundingUp(numerator1, numerator2, sqrtRatioBX96), sqrtRatioAX96), nil
	}
	return new(big.Int).Quo(mulDiv(numerator1, numerator2, sqrtRatioBX96), sqrtRatioAX96), nil
}

// Amount1Delta is the asset1 counterpart of Amount0Delta.
func Amount1Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity *big.Int, roundUp bool) *big.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	diff := new(big.Int).Sub(sqrtRatioBX96, sqrtRatioAX96)
	if roundUp {
		return mulDivRoundingUp(liquidity, diff, Q96)
	}
	return mulDiv(liquidity, diff, Q96)
}

// NextSqrtRatioFromInput returns the sqrt price after the active liquidity
// absorbs amountIn of the input asset. Selling asset0 pushes the price down
// and rounds the landing price up; selling asset1 pushes it up and rounds
// down, so the move never overstates what the input buys.
func NextSqrtRatioFromInput(sqrtPriceX96, liquidity, amountIn *big.Int, zeroForOne bool) (*big.Int, error) {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() <= 0 {
		return nil, ErrInvalidSqrtRatio
	}
	if liquidity == nil || liquidity.Sign() <= 0 {
		return nil, ErrInvalidLiquidity
	}
	if zeroForOne {
		return nextSqrtRatioFromAmount0(sqrtPriceX96, liquidity, amountIn), nil
	}
	return nextSqrtRatioFromAmount1(sqrtPriceX96, liquidity, amountIn), nil
}

// nextSqrtRatioFromAmount0 computes liquidity * sqrtP / (liquidity + amount * sqrtP)
// in Q64.96, rounding up.
func nextSqrtRatioFromAmount0(sqrtPriceX96, liquidity, amount *big.Int) *big.Int {
	if amount.Sign() == 0 {
		return new(big.Int).Set(sqrtPriceX96)
	}
	numerator := new(big.Int).Lsh(liquidity, 96)
	denominator := new(big.Int).Mul(amount, sqrtPriceX96)
	denominator.Add(denominator, numerator)
	return mulDivRoundingUp(numerator, sqrtPriceX96, denominator)
}

// nextSqrtRatioFromAmount1 computes sqrtP + amount / liquidity in Q64.96,
// rounding down.
func nextSqrtRatioFromAmount1(sqrtPriceX96, liquidity, amount *big.Int) *big.Int {
	quotient := mulDiv(amount, Q96, liquidity)
	return quotient.Add(quotient, sqrtPriceX96)
}

// mulDiv returns floor(a * b / den). Operands are non-negative.
func mulDiv(a, b, den *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	return product.Quo(product, den)
}

// mulDivRoundingUp returns ceil(a * b / den).
func mulDivRoundingUp(a, b, den *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	return divRoundingUp(product, den)
}

// divRoundingUp returns ceil(a / den).
func divRoundingUp(a, den *big.Int) *big.Int {
	quotient, rem := new(big.Int).QuoRem(a, den, new(big.Int))
	if rem.Sign() > 0 {
		quotient.Add(quotient, bigOne)
	}
	return quotient
}
