package model

// PoolMeta captures immutable pool metadata with optional live price fields.
type PoolMeta struct {
	Token0 string          `json:"token0"`
	Token1 string          `json:"token1"`
	Price  *PoolPriceState `json:"price,omitempty"`
}

// PoolPriceState is the live price corner of the pool state.
type PoolPriceState struct {
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Tick         int32  `json:"tick"`
	Liquidity    string `json:"liquidity"`
}
