package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Account binds a ledger to one holder. Transfers send from that holder's
// funds, which is the view a pool gets of the asset it owns.
type Account struct {
	ledger *Ledger
	holder common.Address
}

func (l *Ledger) Account(holder common.Address) *Account {
	return &Account{ledger: l, holder: holder}
}

func (a *Account) BalanceOf(holder common.Address) (*big.Int, error) {
	return a.ledger.BalanceOf(holder), nil
}

func (a *Account) Transfer(to common.Address, amount *big.Int) error {
	return a.ledger.Transfer(a.holder, to, amount)
}

func (a *Account) Snapshot() int {
	return a.ledger.Snapshot()
}

func (a *Account) RevertTo(id int) {
	a.ledger.RevertTo(id)
}
