package pool

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"rangepool/internal/model"
	"rangepool/internal/pricemath"
	"rangepool/internal/token"
)

const (
	bookPrice     = "5602277097478614198912276234240"
	bookLiquidity = "1517882343751509868544"
	bookLower     = int32(84222)
	bookUpper     = int32(86129)
)

var (
	lp     = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	trader = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("bad big int literal %q", s)
	}
	return v
}

type bookFixture struct {
	ledger0 *token.Ledger
	ledger1 *token.Ledger
	pool    *Pool
}

// newBookPool builds a WETH/USDC pool at the book price with funded ledgers.
func newBookPool(t *testing.T) *bookFixture {
	t.Helper()

	ledger0 := token.NewLedger(model.TokenMeta{
		Address: "0x0000000000000000000000000000000000000001", Decimals: 18, Symbol: "WETH", Name: "Wrapped Ether",
	})
	ledger1 := token.NewLedger(model.TokenMeta{
		Address: "0x0000000000000000000000000000000000000002", Decimals: 18, Symbol: "USDC", Name: "USD Coin",
	})

	poolAddr := common.HexToAddress("0x00000000000000000000000000000000000000dd")
	p, err := New(poolAddr, ledger0.Account(poolAddr), ledger1.Account(poolAddr), mustBig(t, bookPrice))
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}

	fund := func(ledger *token.Ledger, holder common.Address, amount string) {
		if err := ledger.Mint(holder, mustBig(t, amount)); err != nil {
			t.Fatalf("fund: %v", err)
		}
	}
	fund(ledger0, lp, "10000000000000000000")
	fund(ledger1, lp, "11000000000000000000000")
	fund(ledger0, trader, "1000000000000000000")
	fund(ledger1, trader, "1000000000000000000000")

	return &bookFixture{ledger0: ledger0, ledger1: ledger1, pool: p}
}

// fundedPayer settles callbacks from one holder's ledger balances, optionally
// shorting a side to exercise the rejection paths.
type fundedPayer struct {
	fx     *bookFixture
	holder common.Address
	short0 *big.Int
	short1 *big.Int
}

func (fp *fundedPayer) pay(ledger *token.Ledger, owed, short *big.Int) error {
	amount := new(big.Int).Set(owed)
	if short != nil {
		amount.Sub(amount, short)
	}
	if amount.Sign() <= 0 {
		return nil
	}
	return ledger.Transfer(fp.holder, fp.fx.pool.Address(), amount)
}

func (fp *fundedPayer) OnMintPayment(amount0, amount1 *big.Int, data []byte) error {
	if err := fp.pay(fp.fx.ledger0, amount0, fp.short0); err != nil {
		return err
	}
	return fp.pay(fp.fx.ledger1, amount1, fp.short1)
}

func (fp *fundedPayer) OnSwapPayment(amount0, amount1 *big.Int, data []byte) error {
	if amount0.Sign() > 0 {
		if err := fp.pay(fp.fx.ledger0, amount0, fp.short0); err != nil {
			return err
		}
	}
	if amount1.Sign() > 0 {
		if err := fp.pay(fp.fx.ledger1, amount1, fp.short1); err != nil {
			return err
		}
	}
	return nil
}

// bookMint applies the reference mint and returns its receipt.
func bookMint(t *testing.T, fx *bookFixture) *MintReceipt {
	t.Helper()
	receipt, err := fx.pool.Mint(lp, lp, bookLower, bookUpper, mustBig(t, bookLiquidity), &fundedPayer{fx: fx, holder: lp}, nil)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return receipt
}

func TestNewPoolDerivesTick(t *testing.T) {
	fx := newBookPool(t)

	state := fx.pool.State()
	if state.Tick != 85176 {
		t.Fatalf("got tick %d want 85176", state.Tick)
	}
	if state.SqrtPriceX96.Cmp(mustBig(t, bookPrice)) != 0 {
		t.Fatalf("got price %s want %s", state.SqrtPriceX96, bookPrice)
	}
	if state.Liquidity.Sign() != 0 {
		t.Fatalf("fresh pool has liquidity %s", state.Liquidity)
	}
}

func TestNewPoolRejectsBadPrice(t *testing.T) {
	ledger := token.NewLedger(model.TokenMeta{Symbol: "X"})
	addr := common.HexToAddress("0x00000000000000000000000000000000000000ee")

	if _, err := New(addr, ledger.Account(addr), ledger.Account(addr), new(big.Int)); !errors.Is(err, pricemath.ErrInvalidSqrtRatio) {
		t.Fatalf("expected ErrInvalidSqrtRatio for zero price, got %v", err)
	}
	huge := new(big.Int).Add(pricemath.MaxSqrtRatio, big.NewInt(1))
	if _, err := New(addr, ledger.Account(addr), ledger.Account(addr), huge); !errors.Is(err, pricemath.ErrInvalidSqrtRatio) {
		t.Fatalf("expected ErrInvalidSqrtRatio above MaxSqrtRatio, got %v", err)
	}

	if _, err := New(addr, nil, nil, big.NewInt(1)); err == nil {
		t.Fatalf("expected error for nil assets")
	}
}

func TestStateInvariantHolds(t *testing.T) {
	fx := newBookPool(t)
	state := fx.pool.State()

	lowerRatio, err := pricemath.SqrtRatioAtTick(state.Tick)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	upperRatio, err := pricemath.SqrtRatioAtTick(state.Tick + 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.SqrtPriceX96.Cmp(lowerRatio) < 0 || state.SqrtPriceX96.Cmp(upperRatio) >= 0 {
		t.Fatalf("price %s outside tick %d boundaries", state.SqrtPriceX96, state.Tick)
	}
}
