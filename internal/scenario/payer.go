package scenario

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"rangepool/internal/token"
)

// stepPayer settles payment callbacks from one account's ledger balances,
// minus any configured shortfall. Only owed sides are paid; a swap's payout
// side arrives as a negative amount and is skipped.
type stepPayer struct {
	ledger0 *token.Ledger
	ledger1 *token.Ledger
	pool    common.Address
	account common.Address
	short0  *big.Int
	short1  *big.Int
}

func (sp *stepPayer) pay(ledger *token.Ledger, owed, short *big.Int) error {
	amount := new(big.Int).Set(owed)
	if short != nil {
		amount.Sub(amount, short)
	}
	if amount.Sign() <= 0 {
		return nil
	}
	return ledger.Transfer(sp.account, sp.pool, amount)
}

func (sp *stepPayer) OnMintPayment(amount0, amount1 *big.Int, data []byte) error {
	if err := sp.pay(sp.ledger0, amount0, sp.short0); err != nil {
		return err
	}
	return sp.pay(sp.ledger1, amount1, sp.short1)
}

func (sp *stepPayer) OnSwapPayment(amount0, amount1 *big.Int, data []byte) error {
	if amount0.Sign() > 0 {
		if err := sp.pay(sp.ledger0, amount0, sp.short0); err != nil {
			return err
		}
	}
	if amount1.Sign() > 0 {
		if err := sp.pay(sp.ledger1, amount1, sp.short1); err != nil {
			return err
		}
	}
	return nil
}
