package pricemath

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

// Prices are carried as Q64.96 square roots: sqrtPriceX96 = sqrt(1.0001^tick) * 2^96.
// Ticks index prices in 0.01% steps.

const (
	// MinTick and MaxTick bound the tick domain; outside them the sqrt price
	// leaves the 160-bit range the Q64.96 encoding allows.
	MinTick int32 = -887272
	MaxTick int32 = 887272
)

var (
	// MinSqrtRatio is SqrtRatioAtTick(MinTick) and MaxSqrtRatio is
	// SqrtRatioAtTick(MaxTick). TickAtSqrtRatio accepts the closed interval
	// between them, so tick -> ratio -> tick round-trips across the whole
	// domain including both endpoints.
	MinSqrtRatio    = big.NewInt(4295128739)
	MaxSqrtRatio, _ = new(big.Int).SetString("1461446703485210103287273052203988822378723970342", 10)

	ErrInvalidTick      = errors.New("tick out of range")
	ErrInvalidSqrtRatio = errors.New("sqrt price out of range")
)

// sqrtScales[i] holds sqrt(1.0001^-(2^i)) as a UQ128.128 fixed-point number.
// SqrtRatioAtTick multiplies together the scales matching the set bits of
// |tick| and takes the reciprocal for positive ticks.
var sqrtScales = [20]*uint256.Int{
	uint256.MustFromBig(fromHex("0xfffcb933bd6fad37aa2d162d1a594001")),
	uint256.MustFromBig(fromHex("0xfff97272373d413259a46990580e213a")),
	uint256.MustFromBig(fromHex("0xfff2e50f5f656932ef12357cf3c7fdcc")),
	uint256.MustFromBig(fromHex("0xffe5caca7e10e4e61c3624eaa0941cd0")),
	uint256.MustFromBig(fromHex("0xffcb9843d60f6159c9db58835c926644")),
	uint256.MustFromBig(fromHex("0xff973b41fa98c081472e6896dfb254c0")),
	uint256.MustFromBig(fromHex("0xff2ea16466c96a3843ec78b326b52861")),
	uint256.MustFromBig(fromHex("0xfe5dee046a99a2a811c461f1969c3053")),
	uint256.MustFromBig(fromHex("0xfcbe86c7900a88aedcffc83b479aa3a4")),
	uint256.MustFromBig(fromHex("0xf987a7253ac413176f2b074cf7815e54")),
	uint256.MustFromBig(fromHex("0xf3392b0822b70005940c7a398e4b70f3")),
	uint256.MustFromBig(fromHex("0xe7159475a2c29b7443b29c7fa6e889d9")),
	uint256.MustFromBig(fromHex("0xd097f3bdfd2022b8845ad8f792aa5825")),
	uint256.MustFromBig(fromHex("0xa9f746462d870fdf8a65dc1f90e061e5")),
	uint256.MustFromBig(fromHex("0x70d869a156d2a1b890bb3df62baf32f7")),
	uint256.MustFromBig(fromHex("0x31be135f97d08fd981231505542fcfa6")),
	uint256.MustFromBig(fromHex("0x9aa508b5b7a84e1c677de54f3e99bc9")),
	uint256.MustFromBig(fromHex("0x5d6af8dedb81196699c329225ee604")),
	uint256.MustFromBig(fromHex("0x2216e584f5fa1ea926041bedfe98")),
	uint256.MustFromBig(fromHex("0x48a170391f7dc42444e8fa2")),
}

var (
	q128        = uint256.MustFromBig(fromHex("0x100000000000000000000000000000000"))
	lowBitsMask = uint256.NewInt(0xffffffff)
	maxUint256  = new(uint256.Int).SetAllOne()
	uintOne     = uint256.NewInt(1)
)

// SqrtRatioAtTick returns sqrt(1.0001^tick) * 2^96, rounding the 32 dropped
// fractional bits up. The result is strictly monotonic in tick.
func SqrtRatioAtTick(tick int32) (*big.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, ErrInvalidTick
	}

	absTick := tick
	if absTick < 0 {
		absTick = -absTick
	}

	ratio := new(uint256.Int).Set(q128)
	for i, scale := range sqrtScales {
		if absTick&(1<<uint(i)) != 0 {
			ratio.Mul(ratio, scale)
			ratio.Rsh(ratio, 128)
		}
	}
	if tick > 0 {
		ratio.Div(maxUint256, ratio)
	}

	// UQ128.128 -> Q64.96, rounding up.
	rem := new(uint256.Int).And(ratio, lowBitsMask)
	ratio.Rsh(ratio, 32)
	if !rem.IsZero() {
		ratio.Add(ratio, uintOne)
	}
	return ratio.ToBig(), nil
}

// TickAtSqrtRatio returns the greatest tick whose sqrt ratio is less than or
// equal to sqrtPriceX96.
func TickAtSqrtRatio(sqrtPriceX96 *big.Int) (int32, error) {
	if sqrtPriceX96 == nil || sqrtPriceX96.Cmp(MinSqrtRatio) < 0 || sqrtPriceX96.Cmp(MaxSqrtRatio) > 0 {
		return 0, ErrInvalidSqrtRatio
	}

	lo, hi := MinTick, MaxTick
	tick := MinTick
	for lo <= hi {
		mid := (lo + hi) / 2
		ratio, err := SqrtRatioAtTick(mid)
		if err != nil {
			return 0, err
		}
		if ratio.Cmp(sqrtPriceX96) <= 0 {
			tick = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return tick, nil
}

func fromHex(s string) *big.Int {
	n, _ := new(big.Int).SetString(s[2:], 16)
	return n
}
