package model

import "encoding/json"

// PoolEvent is an emitted pool event enriched with pool metadata. It is the
// write-side shape: Decoded holds the typed payload.
type PoolEvent struct {
	Seq       uint64      `json:"seq"`
	Pool      string      `json:"pool"`
	EventName string      `json:"event_name"`
	EmittedAt string      `json:"emitted_at"`
	Decoded   interface{} `json:"decoded"`
	PoolMeta  PoolMeta    `json:"pool_meta"`
}

// MarshalJSON ensures PoolEvent is encoded with stable field names.
func (pe PoolEvent) MarshalJSON() ([]byte, error) {
	type Alias PoolEvent
	return json.Marshal(Alias(pe))
}

// UnmarshalJSON decodes a PoolEvent from JSON.
func (pe *PoolEvent) UnmarshalJSON(data []byte) error {
	type Alias PoolEvent
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*pe = PoolEvent(a)
	return nil
}
