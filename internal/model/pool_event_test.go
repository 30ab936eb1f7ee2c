package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestPoolEventRecordRoundTrip(t *testing.T) {
	payload := SwapEventData{
		Sender:       "0x1111111111111111111111111111111111111111",
		Recipient:    "0x2222222222222222222222222222222222222222",
		Amount0:      "-8396714242162444",
		Amount1:      "42000000000000000000",
		SqrtPriceX96: "5604469350942327889444743441197",
		Liquidity:    "1517882343751509868544",
		Tick:         85184,
	}
	event := PoolEvent{
		Seq:       7,
		Pool:      "0x3333333333333333333333333333333333333333",
		EventName: EventSwap,
		EmittedAt: "2024-05-01T12:00:00Z",
		Decoded:   payload,
		PoolMeta: PoolMeta{
			Token0: "0x4444444444444444444444444444444444444444",
			Token1: "0x5555555555555555555555555555555555555555",
		},
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var record PoolEventRecord
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if record.Seq != event.Seq || record.EventName != EventSwap || record.Pool != event.Pool {
		t.Fatalf("envelope mismatch: %+v", record)
	}

	var decoded SwapEventData
	if err := json.Unmarshal(record.Decoded, &decoded); err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if !reflect.DeepEqual(decoded, payload) {
		t.Fatalf("payload mismatch: %+v != %+v", decoded, payload)
	}
}

func TestSwapEventDataJSONStringFields(t *testing.T) {
	payload := SwapEventData{
		Sender:       "0x1111111111111111111111111111111111111111",
		Recipient:    "0x2222222222222222222222222222222222222222",
		Amount0:      "12345678901234567890",
		Amount1:      "-42",
		SqrtPriceX96: "79228162514264337593543950336",
		Liquidity:    "5000000000000000000",
		Tick:         10,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, key := range []string{"amount0", "amount1", "sqrt_price_x96", "liquidity"} {
		if _, ok := decoded[key].(string); !ok {
			t.Fatalf("%s should be string", key)
		}
	}
}

func TestMintEventDataJSONFieldNames(t *testing.T) {
	payload := MintEventData{
		Sender:    "0x1111111111111111111111111111111111111111",
		Owner:     "0x2222222222222222222222222222222222222222",
		TickLower: 84222,
		TickUpper: 86129,
		Amount:    "1517882343751509868544",
		Amount0:   "998628802115141959",
		Amount1:   "5000209190920489524100",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, key := range []string{"sender", "owner", "tick_lower", "tick_upper", "amount", "amount0", "amount1"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("missing field %s", key)
		}
	}
}
