package router

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/csms-go/csms/internal/ocpp/ocpperr"
	"github.com/csms-go/csms/internal/ocpp/session"
	"github.com/csms-go/csms/internal/ocpp/wire"
)

type fakeSender struct {
	sent [][]byte
}

func (f *fakeSender) Send(raw []byte) error {
	f.sent = append(f.sent, raw)
	return nil
}
func (f *fakeSender) Close() error { return nil }

func newTestSession(sender *fakeSender) *session.Session {
	m := session.NewManager(zap.NewNop(), nil)
	return m.Register("tenant-a", "station-1", wire.Version16, "1.1.1.1", sender)
}

func TestDispatchCallUnknownAction(t *testing.T) {
	r := New(zap.NewNop())
	sess := newTestSession(&fakeSender{})

	frame := wire.NewCall("m1", "DoesNotExist", json.RawMessage(`{}`), wire.Version16)
	resp := r.DispatchCall(context.Background(), sess, frame)

	if resp.MessageTypeId != wire.CallError || resp.ErrorCode != string(ocpperr.NotImplemented) {
		t.Fatalf("expected NotImplemented CALLERROR, got %+v", resp)
	}
}

func TestDispatchCallSuccess(t *testing.T) {
	r := New(zap.NewNop())
	r.Register(wire.Version16, "Heartbeat", func(ctx context.Context, sess *session.Session, payload json.RawMessage) ocpperr.HandlerResult {
		return ocpperr.Ok(map[string]string{"currentTime": "2026-01-01T00:00:00Z"})
	})
	sess := newTestSession(&fakeSender{})

	frame := wire.NewCall("m1", "Heartbeat", json.RawMessage(`{}`), wire.Version16)
	resp := r.DispatchCall(context.Background(), sess, frame)

	if resp.MessageTypeId != wire.CallResult {
		t.Fatalf("expected CALLRESULT, got %+v", resp)
	}
}

func TestDispatchCallHandlerError(t *testing.T) {
	r := New(zap.NewNop())
	r.Register(wire.Version16, "Authorize", func(ctx context.Context, sess *session.Session, payload json.RawMessage) ocpperr.HandlerResult {
		return ocpperr.Failf(ocpperr.SecurityError, "blocked idTag")
	})
	sess := newTestSession(&fakeSender{})

	frame := wire.NewCall("m1", "Authorize", json.RawMessage(`{}`), wire.Version16)
	resp := r.DispatchCall(context.Background(), sess, frame)

	if resp.MessageTypeId != wire.CallError || resp.ErrorCode != string(ocpperr.SecurityError) {
		t.Fatalf("expected SecurityError CALLERROR, got %+v", resp)
	}
}

func TestDispatchCallPanicRecovered(t *testing.T) {
	r := New(zap.NewNop())
	r.Register(wire.Version16, "BootNotification", func(ctx context.Context, sess *session.Session, payload json.RawMessage) ocpperr.HandlerResult {
		panic("boom")
	})
	sess := newTestSession(&fakeSender{})

	frame := wire.NewCall("m1", "BootNotification", json.RawMessage(`{}`), wire.Version16)
	resp := r.DispatchCall(context.Background(), sess, frame)

	if resp.MessageTypeId != wire.CallError || resp.ErrorCode != string(ocpperr.InternalError) {
		t.Fatalf("expected InternalError CALLERROR after panic, got %+v", resp)
	}
}

func TestDispatchResultResolvesPending(t *testing.T) {
	r := New(zap.NewNop())
	sess := newTestSession(&fakeSender{})

	future := sess.RegisterPending("m1", "RemoteStartTransaction", []byte(`{}`))
	frame := wire.NewCallResult("m1", json.RawMessage(`{"status":"Accepted"}`), wire.Version16)
	r.DispatchResult(sess, frame)

	select {
	case outcome := <-future:
		if outcome.Err != nil {
			t.Fatalf("unexpected error: %v", outcome.Err)
		}
	default:
		t.Fatalf("expected future resolved")
	}
}

func TestDispatchResultOrphanDropped(t *testing.T) {
	r := New(zap.NewNop())
	sess := newTestSession(&fakeSender{})

	frame := wire.NewCallResult("unknown", json.RawMessage(`{}`), wire.Version16)
	r.DispatchResult(sess, frame) // must not panic
}

func TestSendCallTimesOutOnContextCancel(t *testing.T) {
	r := New(zap.NewNop())
	sess := newTestSession(&fakeSender{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	allocator := func() string { return "outbound-1" }
	_, err := r.SendCall(ctx, sess, allocator, "RemoteStartTransaction", map[string]string{"idTag": "abc"})
	if err == nil {
		t.Fatalf("expected timeout error")
	}
}
