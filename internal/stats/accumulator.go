package stats

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"rangepool/internal/model"
)

// Accumulator folds one pool's event stream into running totals. Volumes
// are unsigned sums of the swap legs, so inflow and outflow both count.
type Accumulator struct {
	Pool            string
	MintCount       uint64
	SwapCount       uint64
	MintedLiquidity *big.Int
	Volume0         *big.Int
	Volume1         *big.Int
	LastSeq         uint64
	SqrtPriceX96    string
	Tick            int32
	Liquidity       string
}

func NewAccumulator(pool string) *Accumulator {
	return &Accumulator{
		Pool:            pool,
		MintedLiquidity: big.NewInt(0),
		Volume0:         big.NewInt(0),
		Volume1:         big.NewInt(0),
	}
}

// accumulatorFromStats rebuilds running totals from a persisted record.
func accumulatorFromStats(st model.PoolStats) (*Accumulator, error) {
	minted, err := parseBigInt(st.MintedLiquidity)
	if err != nil {
		return nil, err
	}
	volume0, err := parseBigInt(st.Volume0)
	if err != nil {
		return nil, err
	}
	volume1, err := parseBigInt(st.Volume1)
	if err != nil {
		return nil, err
	}

	return &Accumulator{
		Pool:            st.Pool,
		MintCount:       st.MintCount,
		SwapCount:       st.SwapCount,
		MintedLiquidity: minted,
		Volume0:         volume0,
		Volume1:         volume1,
		LastSeq:         st.LastSeq,
		SqrtPriceX96:    st.SqrtPriceX96,
		Tick:            st.Tick,
		Liquidity:       st.Liquidity,
	}, nil
}

func (a *Accumulator) AddEvent(record model.PoolEventRecord) error {
	if record.Seq >= a.LastSeq {
		a.LastSeq = record.Seq
		if price := record.PoolMeta.Price; price != nil {
			a.SqrtPriceX96 = price.SqrtPriceX96
			a.Tick = price.Tick
			a.Liquidity = price.Liquidity
		}
	}

	switch strings.ToLower(record.EventName) {
	case "mint":
		var mint model.MintEventData
		if err := json.Unmarshal(record.Decoded, &mint); err != nil {
			return fmt.Errorf("decode mint: %w", err)
		}
		return a.applyMint(mint)
	case "swap":
		var swap model.SwapEventData
		if err := json.Unmarshal(record.Decoded, &swap); err != nil {
			return fmt.Errorf("decode swap: %w", err)
		}
		return a.applySwap(swap)
	default:
		return nil
	}
}

func (a *Accumulator) applyMint(mint model.MintEventData) error {
	amount, err := parseBigInt(mint.Amount)
	if err != nil {
		return err
	}
	a.MintedLiquidity.Add(a.MintedLiquidity, amount)
	a.MintCount++
	return nil
}

func (a *Accumulator) applySwap(swap model.SwapEventData) error {
	amount0, err := parseBigInt(swap.Amount0)
	if err != nil {
		return err
	}
	amount1, err := parseBigInt(swap.Amount1)
	if err != nil {
		return err
	}

	absAdd(a.Volume0, amount0)
	absAdd(a.Volume1, amount1)

	// The swap payload carries the landing price, which beats whatever the
	// metadata said.
	if swap.SqrtPriceX96 != "" {
		a.SqrtPriceX96 = swap.SqrtPriceX96
		a.Tick = swap.Tick
		a.Liquidity = swap.Liquidity
	}

	a.SwapCount++
	return nil
}

// Stats renders the running totals as a persistable record.
func (a *Accumulator) Stats() model.PoolStats {
	return model.PoolStats{
		Pool:            a.Pool,
		MintCount:       a.MintCount,
		SwapCount:       a.SwapCount,
		MintedLiquidity: a.MintedLiquidity.String(),
		Volume0:         a.Volume0.String(),
		Volume1:         a.Volume1.String(),
		LastSeq:         a.LastSeq,
		SqrtPriceX96:    a.SqrtPriceX96,
		Tick:            a.Tick,
		Liquidity:       a.Liquidity,
	}
}

func parseBigInt(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid int: %s", value)
	}
	return parsed, nil
}

func absAdd(target *big.Int, value *big.Int) {
	if value == nil || target == nil {
		return
	}
	abs := new(big.Int).Abs(value)
	target.Add(target, abs)
}
