package pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"rangepool/internal/pricemath"
)

// PositionKey identifies a range position by owner and bounds.
type PositionKey struct {
	Owner     common.Address
	LowerTick int32
	UpperTick int32
}

// Position is the accumulated liquidity of one owner over one range.
type Position struct {
	Liquidity *big.Int
}

// position returns the ledger entry for a key, creating an empty record the
// first time the key is touched. Callers hold p.mu.
func (p *Pool) position(key PositionKey) *Position {
	pos, ok := p.positions[key]
	if !ok {
		pos = &Position{Liquidity: new(big.Int)}
		p.positions[key] = pos
	}
	return pos
}

// updatePosition accumulates a liquidity delta on the owner's range, so a
// repeated mint over the same range grows one position instead of replacing
// it. Callers hold p.mu.
func (p *Pool) updatePosition(key PositionKey, delta *big.Int) error {
	pos := p.position(key)
	next, err := pricemath.AddDelta(pos.Liquidity, delta)
	if err != nil {
		return err
	}
	pos.Liquidity = next
	return nil
}
