package token

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"rangepool/internal/model"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount must not be negative")
)

// Ledger is an in-process balance book for one asset. Mutations are
// journaled so a caller can take a snapshot and roll every later change
// back, which is how a failed pool operation compensates transfers it has
// already pushed out.
type Ledger struct {
	mu       sync.RWMutex
	meta     model.TokenMeta
	balances map[common.Address]*big.Int
	journal  []balanceChange
}

// balanceChange records the previous balance of one account; nil means the
// account did not exist.
type balanceChange struct {
	account common.Address
	prev    *big.Int
}

func NewLedger(meta model.TokenMeta) *Ledger {
	return &Ledger{
		meta:     meta,
		balances: make(map[common.Address]*big.Int),
	}
}

func (l *Ledger) Meta() model.TokenMeta {
	return l.meta
}

// BalanceOf returns the holder's balance. Unknown holders have balance zero.
func (l *Ledger) BalanceOf(holder common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if bal, ok := l.balances[holder]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

// Mint credits freshly issued units to the holder.
func (l *Ledger) Mint(to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.setBalance(to, new(big.Int).Add(l.balance(to), amount))
	return nil
}

// Transfer moves amount between two holders.
func (l *Ledger) Transfer(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	fromBal := l.balance(from)
	if fromBal.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientBalance, from.Hex(), fromBal, amount)
	}
	l.setBalance(from, new(big.Int).Sub(fromBal, amount))
	l.setBalance(to, new(big.Int).Add(l.balance(to), amount))
	return nil
}

// Snapshot marks the current ledger state and returns a revision id that
// RevertTo accepts. Snapshot and RevertTo pairs must not interleave across
// concurrent operations.
func (l *Ledger) Snapshot() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.journal)
}

// RevertTo undoes every change made after the given revision id.
func (l *Ledger) RevertTo(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if id < 0 || id > len(l.journal) {
		panic(fmt.Sprintf("token: revision id %d out of range", id))
	}
	for i := len(l.journal) - 1; i >= id; i-- {
		change := l.journal[i]
		if change.prev == nil {
			delete(l.balances, change.account)
		} else {
			l.balances[change.account] = change.prev
		}
	}
	l.journal = l.journal[:id]
}

// Finalise drops the undo log once no snapshot is outstanding, keeping the
// journal from growing across operations.
func (l *Ledger) Finalise() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.journal = l.journal[:0]
}

// balance returns the stored balance without copying. Callers hold l.mu.
func (l *Ledger) balance(holder common.Address) *big.Int {
	if bal, ok := l.balances[holder]; ok {
		return bal
	}
	return new(big.Int)
}

// setBalance journals the previous value and installs the new one. Callers
// hold l.mu.
func (l *Ledger) setBalance(holder common.Address, bal *big.Int) {
	prev, ok := l.balances[holder]
	if !ok {
		prev = nil
	}
	l.journal = append(l.journal, balanceChange{account: holder, prev: prev})
	l.balances[holder] = bal
}
