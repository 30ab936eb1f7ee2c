package main

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rangepool/internal/config"
	"rangepool/internal/pricemath"
)

// quoteResult is the JSON document printed by the quote command. Human
// fields are decimal-adjusted with the configured token decimals.
type quoteResult struct {
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Tick         int32  `json:"tick"`
	Price        string `json:"price"`
	LowerTick    *int32 `json:"lower_tick,omitempty"`
	UpperTick    *int32 `json:"upper_tick,omitempty"`
	Liquidity    string `json:"liquidity,omitempty"`
	Amount0      string `json:"amount0,omitempty"`
	Amount1      string `json:"amount1,omitempty"`
	Amount0Human string `json:"amount0_human,omitempty"`
	Amount1Human string `json:"amount1_human,omitempty"`
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Debug("quote start",
		zap.String("sqrt_price_x96", cfg.SqrtPriceX96),
		zap.String("tick", cfg.Tick),
	)

	cur, tick, err := resolveQuotePrice(cfg)
	if err != nil {
		return err
	}

	result := quoteResult{
		SqrtPriceX96: cur.String(),
		Tick:         tick,
		Price:        humanPrice(cur, cfg.Decimals0, cfg.Decimals1),
	}

	lower, lowerSet, err := config.ParseTick(cfg.LowerTick)
	if err != nil {
		return err
	}
	upper, upperSet, err := config.ParseTick(cfg.UpperTick)
	if err != nil {
		return err
	}
	if lowerSet != upperSet {
		return fmt.Errorf("lower-tick and upper-tick must be set together")
	}

	if lowerSet {
		if err := quoteRange(&result, cfg, cur, lower, upper); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal quote: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func quoteRange(result *quoteResult, cfg config.QuoteConfig, cur *big.Int, lower, upper int32) error {
	if lower >= upper {
		return fmt.Errorf("lower-tick must be below upper-tick")
	}
	sqrtLower, err := pricemath.SqrtRatioAtTick(lower)
	if err != nil {
		return err
	}
	sqrtUpper, err := pricemath.SqrtRatioAtTick(upper)
	if err != nil {
		return err
	}

	result.LowerTick = &lower
	result.UpperTick = &upper

	liquidity, err := config.ParseAmount(cfg.Liquidity)
	if err != nil {
		return err
	}
	amount0, err := config.ParseAmount(cfg.Amount0)
	if err != nil {
		return err
	}
	amount1, err := config.ParseAmount(cfg.Amount1)
	if err != nil {
		return err
	}

	switch {
	case liquidity != nil:
		// Deposits owed for the requested liquidity, rounded in the
		// pool's favor like a real mint.
		need0, need1, err := pricemath.AmountsForLiquidity(cur, sqrtLower, sqrtUpper, liquidity, true)
		if err != nil {
			return err
		}
		fillQuoteAmounts(result, cfg, liquidity, need0, need1)
	case amount0 != nil || amount1 != nil:
		if amount0 == nil {
			amount0 = new(big.Int)
		}
		if amount1 == nil {
			amount1 = new(big.Int)
		}
		liquidity := pricemath.LiquidityForAmounts(cur, sqrtLower, sqrtUpper, amount0, amount1)
		used0, used1, err := pricemath.AmountsForLiquidity(cur, sqrtLower, sqrtUpper, liquidity, false)
		if err != nil {
			return err
		}
		fillQuoteAmounts(result, cfg, liquidity, used0, used1)
	default:
		return fmt.Errorf("liquidity or amount0/amount1 required with a tick range")
	}
	return nil
}

func fillQuoteAmounts(result *quoteResult, cfg config.QuoteConfig, liquidity, amount0, amount1 *big.Int) {
	result.Liquidity = liquidity.String()
	result.Amount0 = amount0.String()
	result.Amount1 = amount1.String()
	result.Amount0Human = humanAmount(amount0, cfg.Decimals0)
	result.Amount1Human = humanAmount(amount1, cfg.Decimals1)
}

func resolveQuotePrice(cfg config.QuoteConfig) (*big.Int, int32, error) {
	if cfg.SqrtPriceX96 != "" {
		cur, err := config.ParseAmount(cfg.SqrtPriceX96)
		if err != nil {
			return nil, 0, err
		}
		tick, err := pricemath.TickAtSqrtRatio(cur)
		if err != nil {
			return nil, 0, err
		}
		return cur, tick, nil
	}

	tick, ok, err := config.ParseTick(cfg.Tick)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, fmt.Errorf("sqrt-price-x96 or tick is required")
	}
	cur, err := pricemath.SqrtRatioAtTick(tick)
	if err != nil {
		return nil, 0, err
	}
	return cur, tick, nil
}

// humanPrice renders token1-per-token0 adjusted for token decimals.
func humanPrice(sqrtPriceX96 *big.Int, decimals0, decimals1 int) string {
	priceX192 := new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96)
	num := decimal.NewFromBigInt(priceX192, int32(decimals0-decimals1))
	den := decimal.NewFromBigInt(new(big.Int).Lsh(big.NewInt(1), 192), 0)
	return num.Div(den).String()
}

func humanAmount(amount *big.Int, decimals int) string {
	return decimal.NewFromBigInt(amount, -int32(decimals)).String()
}
