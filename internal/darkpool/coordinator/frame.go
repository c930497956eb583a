// Package coordinator implements the External-Session Coordinator (C4): a
// long-lived multiplexed connection to the off-chain clearing network,
// carrying framed JSON messages over a websocket transport. Grounded on
// the teacher's internal/grpc/server/server.go lifecycle shape
// (NewServer/Start/Stop, keepalive parameters) adapted from gRPC to
// gorilla/websocket (see DESIGN.md for why protobuf/grpc were dropped),
// and on proto/ws/ws.go's plain Message/Request/Response struct
// convention for the frame shapes spec §6 names.
package coordinator

import (
	"encoding/json"
	"fmt"
)

// RequestFrame is an outbound frame: `{req: [id, method, params, timestamp], sig: [...]}`.
type RequestFrame struct {
	ID        int64
	Method    string
	Params    json.RawMessage
	Timestamp int64
	Sig       []byte
}

type requestWire struct {
	Req [4]json.RawMessage `json:"req"`
	Sig []byte             `json:"sig,omitempty"`
}

// MarshalJSON encodes the frame as the `{req: [...], sig: [...]}` array shape.
func (f RequestFrame) MarshalJSON() ([]byte, error) {
	id, err := json.Marshal(f.ID)
	if err != nil {
		return nil, err
	}
	method, err := json.Marshal(f.Method)
	if err != nil {
		return nil, err
	}
	ts, err := json.Marshal(f.Timestamp)
	if err != nil {
		return nil, err
	}
	params := f.Params
	if params == nil {
		params = json.RawMessage("null")
	}
	return json.Marshal(requestWire{Req: [4]json.RawMessage{id, method, params, ts}, Sig: f.Sig})
}

// UnmarshalJSON decodes the `{req: [...], sig: [...]}` array shape.
func (f *RequestFrame) UnmarshalJSON(data []byte) error {
	var wire requestWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if err := json.Unmarshal(wire.Req[0], &f.ID); err != nil {
		return fmt.Errorf("coordinator: decode req[0] id: %w", err)
	}
	if err := json.Unmarshal(wire.Req[1], &f.Method); err != nil {
		return fmt.Errorf("coordinator: decode req[1] method: %w", err)
	}
	f.Params = wire.Req[2]
	if err := json.Unmarshal(wire.Req[3], &f.Timestamp); err != nil {
		return fmt.Errorf("coordinator: decode req[3] timestamp: %w", err)
	}
	f.Sig = wire.Sig
	return nil
}

// ResponseFrame is an inbound frame: `{res: [id, method, payload, timestamp], sig: [...]}`.
type ResponseFrame struct {
	ID        int64
	Method    string
	Payload   json.RawMessage
	Timestamp int64
	Sig       []byte
	ErrorText string
}

type responseWire struct {
	Res   [4]json.RawMessage `json:"res"`
	Sig   []byte             `json:"sig,omitempty"`
	Error string             `json:"error,omitempty"`
}

func (f ResponseFrame) MarshalJSON() ([]byte, error) {
	id, err := json.Marshal(f.ID)
	if err != nil {
		return nil, err
	}
	method, err := json.Marshal(f.Method)
	if err != nil {
		return nil, err
	}
	ts, err := json.Marshal(f.Timestamp)
	if err != nil {
		return nil, err
	}
	payload := f.Payload
	if payload == nil {
		payload = json.RawMessage("null")
	}
	return json.Marshal(responseWire{Res: [4]json.RawMessage{id, method, payload, ts}, Sig: f.Sig, Error: f.ErrorText})
}

func (f *ResponseFrame) UnmarshalJSON(data []byte) error {
	var wire responseWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if err := json.Unmarshal(wire.Res[0], &f.ID); err != nil {
		return fmt.Errorf("coordinator: decode res[0] id: %w", err)
	}
	if err := json.Unmarshal(wire.Res[1], &f.Method); err != nil {
		return fmt.Errorf("coordinator: decode res[1] method: %w", err)
	}
	f.Payload = wire.Res[2]
	if err := json.Unmarshal(wire.Res[3], &f.Timestamp); err != nil {
		return fmt.Errorf("coordinator: decode res[3] timestamp: %w", err)
	}
	f.Sig = wire.Sig
	f.ErrorText = wire.Error
	return nil
}
