package model

// PoolStateRecord is the persisted scalar state of one pool.
type PoolStateRecord struct {
	Pool         string `json:"pool"`
	Token0       string `json:"token0"`
	Token1       string `json:"token1"`
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Tick         int32  `json:"tick"`
	Liquidity    string `json:"liquidity"`
}

// TickRecord is one initialized tick of the liquidity ledger.
type TickRecord struct {
	Tick           int32  `json:"tick"`
	LiquidityGross string `json:"liquidity_gross"`
	LiquidityNet   string `json:"liquidity_net"`
}

// PositionRecord is one range position of the position ledger.
type PositionRecord struct {
	Owner     string `json:"owner"`
	TickLower int32  `json:"tick_lower"`
	TickUpper int32  `json:"tick_upper"`
	Liquidity string `json:"liquidity"`
}

// PoolSnapshot is the full durable state surface of one pool: scalar state
// plus every initialized tick and every position.
type PoolSnapshot struct {
	State     PoolStateRecord  `json:"state"`
	Ticks     []TickRecord     `json:"ticks"`
	Positions []PositionRecord `json:"positions"`
	TakenAt   string           `json:"taken_at"`
}
