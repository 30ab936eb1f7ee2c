package model

// PoolStats stores accumulated totals over one pool's event stream.
// Volumes are unsigned sums of the swap amounts' magnitudes.
type PoolStats struct {
	Pool            string `json:"pool"`
	MintCount       uint64 `json:"mint_count"`
	SwapCount       uint64 `json:"swap_count"`
	MintedLiquidity string `json:"minted_liquidity"`
	Volume0         string `json:"volume0"`
	Volume1         string `json:"volume1"`
	LastSeq         uint64 `json:"last_seq"`
	SqrtPriceX96    string `json:"sqrt_price_x96"`
	Tick            int32  `json:"tick"`
	Liquidity       string `json:"liquidity"`
}
