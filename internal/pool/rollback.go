package pool

import (
	"fmt"
	"math/big"
)

// preImage captures the prior values of everything one operation may touch,
// so a failed settlement can restore them verbatim. Entries mapping to nil
// record that the key was absent.
type preImage struct {
	sqrtPriceX96 *big.Int
	tick         int32
	liquidity    *big.Int
	ticks        map[int32]*TickInfo
	positions    map[PositionKey]*Position
}

// capturePreImage copies the scalars and the named ledger entries. Callers
// hold p.mu.
func (p *Pool) capturePreImage(ticks []int32, keys []PositionKey) *preImage {
	pre := &preImage{
		sqrtPriceX96: new(big.Int).Set(p.sqrtPriceX96),
		tick:         p.tick,
		liquidity:    new(big.Int).Set(p.liquidity),
		ticks:        make(map[int32]*TickInfo, len(ticks)),
		positions:    make(map[PositionKey]*Position, len(keys)),
	}
	for _, tick := range ticks {
		if info, ok := p.ticks[tick]; ok {
			copied := copyTickInfo(info)
			pre.ticks[tick] = &copied
		} else {
			pre.ticks[tick] = nil
		}
	}
	for _, key := range keys {
		if pos, ok := p.positions[key]; ok {
			pre.positions[key] = &Position{Liquidity: new(big.Int).Set(pos.Liquidity)}
		} else {
			pre.positions[key] = nil
		}
	}
	return pre
}

// restore puts every captured value back. Callers hold p.mu.
func (p *Pool) restore(pre *preImage) {
	p.sqrtPriceX96 = pre.sqrtPriceX96
	p.tick = pre.tick
	p.liquidity = pre.liquidity

	for tick, info := range pre.ticks {
		if info == nil {
			delete(p.ticks, tick)
		} else {
			p.ticks[tick] = info
		}
	}
	for key, pos := range pre.positions {
		if pos == nil {
			delete(p.positions, key)
		} else {
			p.positions[key] = pos
		}
	}
}

// unwind restores the pool ledgers and reverts both assets to the snapshots
// taken before settlement started.
func (p *Pool) unwind(pre *preImage, snap0, snap1 int) {
	p.restore(pre)
	p.asset1.RevertTo(snap1)
	p.asset0.RevertTo(snap0)
}

// verifyPaid checks that the pool's balance of the asset grew by at least
// the owed amount since the pre-settlement read.
func (p *Pool) verifyPaid(asset Asset, before, owed *big.Int) error {
	after, err := asset.BalanceOf(p.address)
	if err != nil {
		return fmt.Errorf("read balance: %w", err)
	}
	want := new(big.Int).Add(before, owed)
	if after.Cmp(want) < 0 {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientInput, after, want)
	}
	return nil
}
