package pricemath

import (
	"errors"
	"math/big"
	"testing"
)

func mustSqrtRatio(t *testing.T, tick int32) *big.Int {
	t.Helper()
	ratio, err := SqrtRatioAtTick(tick)
	if err != nil {
		t.Fatalf("SqrtRatioAtTick(%d): %v", tick, err)
	}
	return ratio
}

func TestAmount0DeltaRounding(t *testing.T) {
	a := mustSqrtRatio(t, 0)
	b := mustSqrtRatio(t, 1000)
	liquidity := mustBig(t, "2000000000000000000")

	up, err := Amount0Delta(a, b, liquidity, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	down, err := Amount0Delta(a, b, liquidity, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := mustBig(t, "97536395162557778"); up.Cmp(want) != 0 {
		t.Fatalf("round up: got %s want %s", up, want)
	}
	if want := mustBig(t, "97536395162557777"); down.Cmp(want) != 0 {
		t.Fatalf("round down: got %s want %s", down, want)
	}
}

func TestAmount0DeltaSortsBounds(t *testing.T) {
	a := mustSqrtRatio(t, 0)
	b := mustSqrtRatio(t, 1000)
	liquidity := mustBig(t, "2000000000000000000")

	forward, err := Amount0Delta(a, b, liquidity, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reversed, err := Amount0Delta(b, a, liquidity, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if forward.Cmp(reversed) != 0 {
		t.Fatalf("bound order changed result: %s != %s", forward, reversed)
	}
}

func TestAmount1DeltaRounding(t *testing.T) {
	a := mustSqrtRatio(t, -1000)
	b := mustSqrtRatio(t, 0)
	liquidity := mustBig(t, "2000000000000000000")

	up := Amount1Delta(a, b, liquidity, true)
	down := Amount1Delta(b, a, liquidity, false)

	if want := mustBig(t, "97536395162557778"); up.Cmp(want) != 0 {
		t.Fatalf("round up: got %s want %s", up, want)
	}
	if want := mustBig(t, "97536395162557777"); down.Cmp(want) != 0 {
		t.Fatalf("round down: got %s want %s", down, want)
	}
}

func TestNextSqrtRatioFromInputAsset1(t *testing.T) {
	price := mustSqrtRatio(t, 0)
	liquidity := mustBig(t, "1000000000000000000")
	amountIn := mustBig(t, "2000000000000000000")

	next, err := NextSqrtRatioFromInput(price, liquidity, amountIn, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Selling asset1 at price 1 with L = amountIn/2 moves sqrtP to 3 * 2^96.
	if want := mustBig(t, "237684487542793012780631851008"); next.Cmp(want) != 0 {
		t.Fatalf("got %s want %s", next, want)
	}
	if next.Cmp(price) <= 0 {
		t.Fatalf("selling asset1 must raise the price")
	}
}

func TestNextSqrtRatioFromInputAsset0(t *testing.T) {
	price := mustSqrtRatio(t, 0)
	liquidity := mustBig(t, "1000000000000000000")
	amountIn := mustBig(t, "2000000000000000000")

	next, err := NextSqrtRatioFromInput(price, liquidity, amountIn, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := mustBig(t, "26409387504754779197847983446"); next.Cmp(want) != 0 {
		t.Fatalf("got %s want %s", next, want)
	}
	if next.Cmp(price) >= 0 {
		t.Fatalf("selling asset0 must lower the price")
	}
}

func TestNextSqrtRatioFromInputZeroAmount(t *testing.T) {
	price := mustSqrtRatio(t, 85176)
	liquidity := mustBig(t, "1517882343751509868544")

	next, err := NextSqrtRatioFromInput(price, liquidity, new(big.Int), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Cmp(price) != 0 {
		t.Fatalf("zero input moved the price: %s -> %s", price, next)
	}
}

func TestNextSqrtRatioFromInputGuards(t *testing.T) {
	price := mustSqrtRatio(t, 0)
	one := big.NewInt(1)

	if _, err := NextSqrtRatioFromInput(new(big.Int), one, one, true); !errors.Is(err, ErrInvalidSqrtRatio) {
		t.Fatalf("expected ErrInvalidSqrtRatio, got %v", err)
	}
	if _, err := NextSqrtRatioFromInput(price, new(big.Int), one, true); !errors.Is(err, ErrInvalidLiquidity) {
		t.Fatalf("expected ErrInvalidLiquidity, got %v", err)
	}
}

func TestNextSqrtRatioFromInputBookStep(t *testing.T) {
	price := mustBig(t, "5602277097478614198912276234240")
	liquidity := mustBig(t, "1517882343751509868544")
	amountIn := mustBig(t, "42000000000000000000")

	next, err := NextSqrtRatioFromInput(price, liquidity, amountIn, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := mustBig(t, "5604469350942327889444743441197"); next.Cmp(want) != 0 {
		t.Fatalf("got %s want %s", next, want)
	}

	tick, err := TickAtSqrtRatio(next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tick != 85184 {
		t.Fatalf("got tick %d want 85184", tick)
	}
}
