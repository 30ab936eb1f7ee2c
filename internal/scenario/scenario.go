package scenario

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"rangepool/internal/pricemath"
)

// Step operations.
const (
	OpMint = "mint"
	OpSwap = "swap"
)

// TokenDef declares one ledger asset.
type TokenDef struct {
	Address  string `mapstructure:"address"`
	Symbol   string `mapstructure:"symbol"`
	Name     string `mapstructure:"name"`
	Decimals uint8  `mapstructure:"decimals"`
}

// PoolDef declares the pool under simulation. The starting price comes from
// sqrt-price-x96 or, when that is empty, from the boundary price of
// initial-tick.
type PoolDef struct {
	Address      string   `mapstructure:"address"`
	Token0       TokenDef `mapstructure:"token0"`
	Token1       TokenDef `mapstructure:"token1"`
	SqrtPriceX96 string   `mapstructure:"sqrt-price-x96"`
	InitialTick  *int32   `mapstructure:"initial-tick"`
}

// AccountDef funds one address on both ledgers before the steps run.
type AccountDef struct {
	Address  string `mapstructure:"address"`
	Balance0 string `mapstructure:"balance0"`
	Balance1 string `mapstructure:"balance1"`
}

// Step is one ordered pool operation. Owner (mint) and recipient (swap)
// default to the paying account. Short0/short1 deliberately underpay the
// settlement by that much, which drives the operation into rejection.
type Step struct {
	Op         string `mapstructure:"op"`
	Account    string `mapstructure:"account"`
	Owner      string `mapstructure:"owner"`
	Recipient  string `mapstructure:"recipient"`
	LowerTick  int32  `mapstructure:"lower-tick"`
	UpperTick  int32  `mapstructure:"upper-tick"`
	Amount     string `mapstructure:"amount"`
	AmountIn   string `mapstructure:"amount-in"`
	ZeroForOne bool   `mapstructure:"zero-for-one"`
	Short0     string `mapstructure:"short0"`
	Short1     string `mapstructure:"short1"`
}

// Scenario is a declarative run: the pool, the funded accounts, and the
// ordered steps to apply.
type Scenario struct {
	Pool     PoolDef      `mapstructure:"pool"`
	Accounts []AccountDef `mapstructure:"accounts"`
	Steps    []Step       `mapstructure:"steps"`
}

// Validate checks everything that would make the scenario unrunnable:
// malformed addresses, unparseable amounts, unknown accounts, bad ops.
// Semantically invalid steps (bad tick ranges, overspending) pass here and
// surface as rejected steps at run time.
func (s Scenario) Validate() error {
	if !common.IsHexAddress(s.Pool.Address) {
		return fmt.Errorf("pool address %q is not a hex address", s.Pool.Address)
	}
	if err := s.Pool.Token0.validate("token0"); err != nil {
		return err
	}
	if err := s.Pool.Token1.validate("token1"); err != nil {
		return err
	}
	if strings.EqualFold(s.Pool.Token0.Address, s.Pool.Token1.Address) {
		return fmt.Errorf("token0 and token1 must be different assets")
	}

	switch {
	case s.Pool.SqrtPriceX96 != "":
		price, err := parseAmount(s.Pool.SqrtPriceX96)
		if err != nil {
			return fmt.Errorf("sqrt-price-x96: %w", err)
		}
		if price.Sign() <= 0 {
			return fmt.Errorf("sqrt-price-x96 must be positive")
		}
	case s.Pool.InitialTick != nil:
		if *s.Pool.InitialTick < pricemath.MinTick || *s.Pool.InitialTick > pricemath.MaxTick {
			return fmt.Errorf("initial-tick %d is out of bounds", *s.Pool.InitialTick)
		}
	default:
		return fmt.Errorf("pool needs sqrt-price-x96 or initial-tick")
	}

	known := make(map[string]struct{}, len(s.Accounts))
	for i, account := range s.Accounts {
		if !common.IsHexAddress(account.Address) {
			return fmt.Errorf("account %d: %q is not a hex address", i, account.Address)
		}
		key := strings.ToLower(account.Address)
		if _, ok := known[key]; ok {
			return fmt.Errorf("account %d: duplicate address %s", i, account.Address)
		}
		known[key] = struct{}{}

		for _, balance := range []string{account.Balance0, account.Balance1} {
			if balance == "" {
				continue
			}
			v, err := parseAmount(balance)
			if err != nil {
				return fmt.Errorf("account %d: balance: %w", i, err)
			}
			if v.Sign() < 0 {
				return fmt.Errorf("account %d: balance must not be negative", i)
			}
		}
	}

	for i, step := range s.Steps {
		if err := step.validate(known); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

func (t TokenDef) validate(label string) error {
	if !common.IsHexAddress(t.Address) {
		return fmt.Errorf("%s address %q is not a hex address", label, t.Address)
	}
	return nil
}

func (st Step) validate(known map[string]struct{}) error {
	if !common.IsHexAddress(st.Account) {
		return fmt.Errorf("account %q is not a hex address", st.Account)
	}
	if _, ok := known[strings.ToLower(st.Account)]; !ok {
		return fmt.Errorf("account %s is not declared", st.Account)
	}

	switch st.Op {
	case OpMint:
		if st.Owner != "" && !common.IsHexAddress(st.Owner) {
			return fmt.Errorf("owner %q is not a hex address", st.Owner)
		}
		amount, err := parseAmount(st.Amount)
		if err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		if amount.Sign() <= 0 {
			return fmt.Errorf("amount must be positive")
		}
	case OpSwap:
		if st.Recipient != "" && !common.IsHexAddress(st.Recipient) {
			return fmt.Errorf("recipient %q is not a hex address", st.Recipient)
		}
		amountIn, err := parseAmount(st.AmountIn)
		if err != nil {
			return fmt.Errorf("amount-in: %w", err)
		}
		if amountIn.Sign() <= 0 {
			return fmt.Errorf("amount-in must be positive")
		}
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}

	for _, short := range []string{st.Short0, st.Short1} {
		if short == "" {
			continue
		}
		v, err := parseAmount(short)
		if err != nil {
			return fmt.Errorf("short: %w", err)
		}
		if v.Sign() < 0 {
			return fmt.Errorf("short must not be negative")
		}
	}
	return nil
}

func parseAmount(value string) (*big.Int, error) {
	if value == "" {
		return nil, fmt.Errorf("empty amount")
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid int: %s", value)
	}
	return parsed, nil
}

func parseOptionalAmount(value string) (*big.Int, error) {
	if value == "" {
		return nil, nil
	}
	return parseAmount(value)
}
