package pricemath

import (
	"errors"
	"math/big"
	"testing"
)

func TestAddDelta(t *testing.T) {
	sum, err := AddDelta(big.NewInt(100), big.NewInt(-40))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Int64() != 60 {
		t.Fatalf("got %s want 60", sum)
	}

	if _, err := AddDelta(big.NewInt(10), big.NewInt(-11)); !errors.Is(err, ErrLiquidityUnderflow) {
		t.Fatalf("expected ErrLiquidityUnderflow, got %v", err)
	}
	if _, err := AddDelta(maxUint128, big.NewInt(1)); !errors.Is(err, ErrLiquidityOverflow) {
		t.Fatalf("expected ErrLiquidityOverflow, got %v", err)
	}
}

func TestLiquidityForAmountsInsideRange(t *testing.T) {
	current := mustBig(t, "5602277097478614198912276234240")
	lower := mustSqrtRatio(t, 84222)
	upper := mustSqrtRatio(t, 86129)
	amount0 := mustBig(t, "1000000000000000000")
	amount1 := mustBig(t, "5000000000000000000000")

	got := LiquidityForAmounts(current, lower, upper, amount0, amount1)
	if want := mustBig(t, "1517818840967414205350"); got.Cmp(want) != 0 {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestAmountsForLiquidityInsideRange(t *testing.T) {
	current := mustBig(t, "5602277097478614198912276234240")
	lower := mustSqrtRatio(t, 84222)
	upper := mustSqrtRatio(t, 86129)
	liquidity := mustBig(t, "1517882343751509868544")

	amount0, amount1, err := AmountsForLiquidity(current, lower, upper, liquidity, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := mustBig(t, "998628802115141959"); amount0.Cmp(want) != 0 {
		t.Fatalf("amount0: got %s want %s", amount0, want)
	}
	if want := mustBig(t, "5000209190920489524100"); amount1.Cmp(want) != 0 {
		t.Fatalf("amount1: got %s want %s", amount1, want)
	}
}

func TestAmountsForLiquidityCurrentBelowRange(t *testing.T) {
	current := mustBig(t, "5602277097478614198912276234240")
	lower := mustSqrtRatio(t, 86130)
	upper := mustSqrtRatio(t, 87000)
	liquidity := mustBig(t, "1000000000000000000")

	amount0, amount1, err := AmountsForLiquidity(current, lower, upper, liquidity, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := mustBig(t, "573932303870719"); amount0.Cmp(want) != 0 {
		t.Fatalf("amount0: got %s want %s", amount0, want)
	}
	if amount1.Sign() != 0 {
		t.Fatalf("amount1 should be zero below the range, got %s", amount1)
	}
}

func TestAmountsForLiquidityCurrentAboveRange(t *testing.T) {
	current := mustBig(t, "5602277097478614198912276234240")
	lower := mustSqrtRatio(t, 84000)
	upper := mustSqrtRatio(t, 85000)
	liquidity := mustBig(t, "1000000000000000000")

	amount0, amount1, err := AmountsForLiquidity(current, lower, upper, liquidity, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amount0.Sign() != 0 {
		t.Fatalf("amount0 should be zero above the range, got %s", amount0)
	}
	if want := mustBig(t, "3418188207095538153"); amount1.Cmp(want) != 0 {
		t.Fatalf("amount1: got %s want %s", amount1, want)
	}
}
