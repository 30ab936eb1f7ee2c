package scenario

import (
	"sort"
	"time"

	"rangepool/internal/model"
	"rangepool/internal/pool"
)

func buildMintEvent(seq uint64, poolAddress string, meta model.PoolMeta, receipt *pool.MintReceipt, at time.Time) model.PoolEvent {
	return model.PoolEvent{
		Seq:       seq,
		Pool:      poolAddress,
		EventName: model.EventMint,
		EmittedAt: at.UTC().Format(time.RFC3339Nano),
		Decoded: model.MintEventData{
			Sender:    receipt.Sender.Hex(),
			Owner:     receipt.Owner.Hex(),
			TickLower: receipt.LowerTick,
			TickUpper: receipt.UpperTick,
			Amount:    receipt.Amount.String(),
			Amount0:   receipt.Amount0.String(),
			Amount1:   receipt.Amount1.String(),
		},
		PoolMeta: meta,
	}
}

func buildSwapEvent(seq uint64, poolAddress string, meta model.PoolMeta, receipt *pool.SwapReceipt, at time.Time) model.PoolEvent {
	return model.PoolEvent{
		Seq:       seq,
		Pool:      poolAddress,
		EventName: model.EventSwap,
		EmittedAt: at.UTC().Format(time.RFC3339Nano),
		Decoded: model.SwapEventData{
			Sender:       receipt.Sender.Hex(),
			Recipient:    receipt.Recipient.Hex(),
			Amount0:      receipt.Amount0.String(),
			Amount1:      receipt.Amount1.String(),
			SqrtPriceX96: receipt.SqrtPriceX96.String(),
			Liquidity:    receipt.Liquidity.String(),
			Tick:         receipt.Tick,
		},
		PoolMeta: meta,
	}
}

func priceState(state pool.State) *model.PoolPriceState {
	return &model.PoolPriceState{
		SqrtPriceX96: state.SqrtPriceX96.String(),
		Tick:         state.Tick,
		Liquidity:    state.Liquidity.String(),
	}
}

// buildSnapshot flattens the pool's deep copy into the persisted shape, with
// ticks and positions in a deterministic order.
func buildSnapshot(poolAddress, token0, token1 string, snap pool.Snapshot) model.PoolSnapshot {
	ticks := make([]model.TickRecord, 0, len(snap.Ticks))
	for tick, info := range snap.Ticks {
		ticks = append(ticks, model.TickRecord{
			Tick:           tick,
			LiquidityGross: info.LiquidityGross.String(),
			LiquidityNet:   info.LiquidityNet.String(),
		})
	}
	sort.Slice(ticks, func(i, j int) bool { return ticks[i].Tick < ticks[j].Tick })

	positions := make([]model.PositionRecord, 0, len(snap.Positions))
	for key, pos := range snap.Positions {
		positions = append(positions, model.PositionRecord{
			Owner:     key.Owner.Hex(),
			TickLower: key.LowerTick,
			TickUpper: key.UpperTick,
			Liquidity: pos.Liquidity.String(),
		})
	}
	sort.Slice(positions, func(i, j int) bool {
		a, b := positions[i], positions[j]
		if a.Owner != b.Owner {
			return a.Owner < b.Owner
		}
		if a.TickLower != b.TickLower {
			return a.TickLower < b.TickLower
		}
		return a.TickUpper < b.TickUpper
	})

	return model.PoolSnapshot{
		State: model.PoolStateRecord{
			Pool:         poolAddress,
			Token0:       token0,
			Token1:       token1,
			SqrtPriceX96: snap.State.SqrtPriceX96.String(),
			Tick:         snap.State.Tick,
			Liquidity:    snap.State.Liquidity.String(),
		},
		Ticks:     ticks,
		Positions: positions,
	}
}
