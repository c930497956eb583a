package coordinator

import (
	"encoding/json"
	"testing"
)

func TestRequestFrameRoundTrip(t *testing.T) {
	req := RequestFrame{
		ID:        42,
		Method:    "auth_request_create",
		Params:    json.RawMessage(`{"owner":"0xabc"}`),
		Timestamp: 1700000000,
		Sig:       []byte{1, 2, 3},
	}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got RequestFrame
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.ID != req.ID || got.Method != req.Method || got.Timestamp != req.Timestamp {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, req)
	}
}

func TestResponseFrameRoundTripWithError(t *testing.T) {
	resp := ResponseFrame{
		ID:        7,
		Method:    "list_assets",
		Payload:   json.RawMessage(`[]`),
		Timestamp: 1700000001,
		ErrorText: "consensus rejected",
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got ResponseFrame
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ErrorText != resp.ErrorText {
		t.Fatalf("expected error text to survive round trip, got %q", got.ErrorText)
	}
}

func TestAssetMapNormalizesNativeAlias(t *testing.T) {
	m := NewAssetMap(1)
	m.bySym["ETH"] = "ETH"

	sym, ok := m.Symbol("0x0000000000000000000000000000000000000000")
	if !ok || sym != "ETH" {
		t.Fatalf("expected native alias to resolve to ETH, got %q ok=%v", sym, ok)
	}
}

func TestAssetMapUnknownToken(t *testing.T) {
	m := NewAssetMap(1)
	if _, ok := m.Symbol("0xdeadbeef"); ok {
		t.Fatal("expected unknown token to miss")
	}
}
