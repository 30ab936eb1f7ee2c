package pricemath

import (
	"errors"
	"math/big"
	"testing"
)

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("bad big int literal %q", s)
	}
	return v
}

func TestSqrtRatioAtTickKnownValues(t *testing.T) {
	cases := []struct {
		tick int32
		want string
	}{
		{0, "79228162514264337593543950336"},
		{1, "79232123823359799118286999568"},
		{-1, "79224201403219477170569942574"},
		{1000, "83290069058676223003182343270"},
		{-1000, "75364347830767020784054125655"},
		{84222, "5341283623238412454227108479223"},
		{85176, "5602223755577321903022134995689"},
		{86129, "5875617940067453351001625213169"},
		{MinTick, "4295128739"},
		{MaxTick, "1461446703485210103287273052203988822378723970342"},
	}

	for _, tc := range cases {
		got, err := SqrtRatioAtTick(tc.tick)
		if err != nil {
			t.Fatalf("tick %d: unexpected error: %v", tc.tick, err)
		}
		if want := mustBig(t, tc.want); got.Cmp(want) != 0 {
			t.Fatalf("tick %d: got %s want %s", tc.tick, got, want)
		}
	}
}

func TestSqrtRatioAtTickBounds(t *testing.T) {
	if _, err := SqrtRatioAtTick(MinTick - 1); !errors.Is(err, ErrInvalidTick) {
		t.Fatalf("expected ErrInvalidTick below MinTick, got %v", err)
	}
	if _, err := SqrtRatioAtTick(MaxTick + 1); !errors.Is(err, ErrInvalidTick) {
		t.Fatalf("expected ErrInvalidTick above MaxTick, got %v", err)
	}

	minRatio, err := SqrtRatioAtTick(MinTick)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if minRatio.Cmp(MinSqrtRatio) != 0 {
		t.Fatalf("MinTick ratio %s != MinSqrtRatio %s", minRatio, MinSqrtRatio)
	}
	maxRatio, err := SqrtRatioAtTick(MaxTick)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if maxRatio.Cmp(MaxSqrtRatio) != 0 {
		t.Fatalf("MaxTick ratio %s != MaxSqrtRatio %s", maxRatio, MaxSqrtRatio)
	}
}

func TestSqrtRatioAtTickMonotonic(t *testing.T) {
	prev, err := SqrtRatioAtTick(MinTick)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for tick := MinTick + 7919; tick <= MaxTick; tick += 7919 {
		ratio, err := SqrtRatioAtTick(tick)
		if err != nil {
			t.Fatalf("tick %d: unexpected error: %v", tick, err)
		}
		if ratio.Cmp(prev) <= 0 {
			t.Fatalf("ratio not increasing at tick %d: %s <= %s", tick, ratio, prev)
		}
		prev = ratio
	}
}

func TestTickAtSqrtRatioRoundTrip(t *testing.T) {
	ticks := []int32{MinTick, -400000, -1000, -1, 0, 1, 1000, 84222, 85176, 86129, 400000, MaxTick}
	for _, tick := range ticks {
		ratio, err := SqrtRatioAtTick(tick)
		if err != nil {
			t.Fatalf("tick %d: unexpected error: %v", tick, err)
		}
		got, err := TickAtSqrtRatio(ratio)
		if err != nil {
			t.Fatalf("tick %d: unexpected error: %v", tick, err)
		}
		if got != tick {
			t.Fatalf("round trip mismatch: tick %d came back as %d", tick, got)
		}
	}
}

func TestTickAtSqrtRatioBetweenBoundaries(t *testing.T) {
	// A price strictly between the ratios at 85176 and 85177 belongs to 85176.
	price := mustBig(t, "5602277097478614198912276234240")
	got, err := TickAtSqrtRatio(price)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 85176 {
		t.Fatalf("got tick %d want 85176", got)
	}

	boundary, err := SqrtRatioAtTick(85177)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err = TickAtSqrtRatio(new(big.Int).Sub(boundary, big.NewInt(1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 85176 {
		t.Fatalf("one below boundary: got tick %d want 85176", got)
	}
}

func TestTickAtSqrtRatioOutOfRange(t *testing.T) {
	below := new(big.Int).Sub(MinSqrtRatio, big.NewInt(1))
	if _, err := TickAtSqrtRatio(below); !errors.Is(err, ErrInvalidSqrtRatio) {
		t.Fatalf("expected ErrInvalidSqrtRatio below MinSqrtRatio, got %v", err)
	}
	above := new(big.Int).Add(MaxSqrtRatio, big.NewInt(1))
	if _, err := TickAtSqrtRatio(above); !errors.Is(err, ErrInvalidSqrtRatio) {
		t.Fatalf("expected ErrInvalidSqrtRatio above MaxSqrtRatio, got %v", err)
	}
	if _, err := TickAtSqrtRatio(nil); !errors.Is(err, ErrInvalidSqrtRatio) {
		t.Fatalf("expected ErrInvalidSqrtRatio for nil, got %v", err)
	}
}
