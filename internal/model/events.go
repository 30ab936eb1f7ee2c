package model

// Event names as they appear in the journal.
const (
	EventMint = "Mint"
	EventSwap = "Swap"
)

// MintEventData is the payload emitted when liquidity is added to a range.
type MintEventData struct {
	Sender    string `json:"sender"`
	Owner     string `json:"owner"`
	TickLower int32  `json:"tick_lower"`
	TickUpper int32  `json:"tick_upper"`
	Amount    string `json:"amount"`
	Amount0   string `json:"amount0"`
	Amount1   string `json:"amount1"`
}

// SwapEventData is the payload emitted when the pool executes a swap.
// Amounts are signed from the pool's point of view: positive entered the
// pool, negative left it.
type SwapEventData struct {
	Sender       string `json:"sender"`
	Recipient    string `json:"recipient"`
	Amount0      string `json:"amount0"`
	Amount1      string `json:"amount1"`
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Liquidity    string `json:"liquidity"`
	Tick         int32  `json:"tick"`
}
