package wire

import (
	"encoding/json"
	"testing"
)

func TestRoundTripCall(t *testing.T) {
	f := NewCall("msg-1", "Heartbeat", json.RawMessage(`{}`), Version16)
	raw, err := Encode(f)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(raw, Version16)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.MessageTypeId != f.MessageTypeId || got.MessageId != f.MessageId || got.Action != f.Action {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, f)
	}
}

func TestRoundTripCallResult(t *testing.T) {
	f := NewCallResult("msg-2", json.RawMessage(`{"status":"Accepted"}`), Version201)
	raw, err := Encode(f)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(raw, Version201)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(got.Payload) != string(f.Payload) {
		t.Fatalf("payload mismatch: got %s want %s", got.Payload, f.Payload)
	}
}

func TestRoundTripCallError(t *testing.T) {
	f := NewCallError("msg-3", "NotImplemented", "unknown action", json.RawMessage(`{}`), Version16)
	raw, err := Encode(f)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(raw, Version16)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ErrorCode != f.ErrorCode || got.ErrorDescription != f.ErrorDescription {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, f)
	}
}

func TestDecodeTooShort(t *testing.T) {
	if _, err := Decode([]byte(`[2, "x"]`), Version16); err != ErrFrameTooShort {
		t.Fatalf("expected ErrFrameTooShort, got %v", err)
	}
}

func TestDecodeCallMissingPayload(t *testing.T) {
	if _, err := Decode([]byte(`[2, "x", "Heartbeat"]`), Version16); err != ErrCallTooShort {
		t.Fatalf("expected ErrCallTooShort, got %v", err)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	if _, err := Decode([]byte(`[9, "x", "y"]`), Version16); err != ErrUnknownType {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestDecodeCallErrorMissingElements(t *testing.T) {
	if _, err := Decode([]byte(`[4, "x", "NotImplemented", "desc"]`), Version16); err != ErrCallErrTooShort {
		t.Fatalf("expected ErrCallErrTooShort, got %v", err)
	}
}

func TestRoundTripTable(t *testing.T) {
	frames := []Frame{
		NewCall("a", "BootNotification", json.RawMessage(`{"chargePointVendor":"Acme"}`), Version16),
		NewCall("b", "RequestStartTransaction", json.RawMessage(`{"evseId":1}`), Version201),
		NewCallResult("c", json.RawMessage(`{"interval":300}`), Version16),
		NewCallError("d", "FormationViolation", "bad payload", json.RawMessage(`{"field":"x"}`), Version16),
		NewCallError("e", "FormatViolation", "bad payload", nil, Version201),
	}

	for _, f := range frames {
		raw, err := Encode(f)
		if err != nil {
			t.Fatalf("encode %v: %v", f, err)
		}
		got, err := Decode(raw, f.OcppVersion)
		if err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
		if got.MessageTypeId != f.MessageTypeId || got.MessageId != f.MessageId {
			t.Fatalf("round trip mismatch for %s: got %+v want %+v", raw, got, f)
		}
	}
}
