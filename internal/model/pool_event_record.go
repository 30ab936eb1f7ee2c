package model

import "encoding/json"

// PoolEventRecord is the read-side shape of a journaled pool event: the
// payload stays raw until the consumer knows the event name.
type PoolEventRecord struct {
	Seq       uint64          `json:"seq"`
	Pool      string          `json:"pool"`
	EventName string          `json:"event_name"`
	EmittedAt string          `json:"emitted_at"`
	Decoded   json.RawMessage `json:"decoded"`
	PoolMeta  PoolMeta        `json:"pool_meta"`
}
