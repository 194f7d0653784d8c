// Package router implements the OCPP message router and RPC correlator of
// spec §4.4: action-name dispatch for inbound CALLs, correlation-table
// resolution for inbound CALLRESULT/CALLERROR, and outbound CALL futures
// for server-initiated commands.
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/csms-go/csms/internal/ocpp/ocpperr"
	"github.com/csms-go/csms/internal/ocpp/session"
	"github.com/csms-go/csms/internal/ocpp/wire"
)

// HandlerFunc processes one inbound CALL's payload in the session's bound
// tenant context and returns the sum-type result the router frames into a
// CALLRESULT or CALLERROR (spec §9).
type HandlerFunc func(ctx context.Context, sess *session.Session, payload json.RawMessage) ocpperr.HandlerResult

// DefaultOutboundTimeout is the 300s default of spec §4.2/§4.4.
const DefaultOutboundTimeout = 300 * time.Second

// Router dispatches inbound frames to registered handlers and manages
// outbound CALL futures, per action and per (ocppVersion, action) table.
type Router struct {
	log      *zap.Logger
	handlers map[string]HandlerFunc

	connMu   sync.Mutex
	connLock map[string]*sync.Mutex
}

func New(log *zap.Logger) *Router {
	return &Router{
		log:      log,
		handlers: make(map[string]HandlerFunc),
		connLock: make(map[string]*sync.Mutex),
	}
}

func handlerKey(version wire.Version, action string) string {
	return string(version) + "/" + action
}

// Register binds a handler to (version, action). Intended to be called once
// per action at startup from each version package's handler table.
func (r *Router) Register(version wire.Version, action string, fn HandlerFunc) {
	r.handlers[handlerKey(version, action)] = fn
}

func connectorKey(stationID string, connectorID int) string {
	return fmt.Sprintf("%s/%d", stationID, connectorID)
}

// connectorMutex returns the singleton mutex striping state-machine
// mutations on (stationId, connectorId), per spec §4.4's ordering
// guarantee.
func (r *Router) connectorMutex(stationID string, connectorID int) *sync.Mutex {
	key := connectorKey(stationID, connectorID)
	r.connMu.Lock()
	defer r.connMu.Unlock()
	m, ok := r.connLock[key]
	if !ok {
		m = &sync.Mutex{}
		r.connLock[key] = m
	}
	return m
}

// WithConnectorLock serialises fn against any other handler mutating the
// same (stationId, connectorId)'s session-scoped state (spec §4.5 state
// machine invariants). The v16 and v201 handlers do not call it, so their
// transaction/connector mutations run without this lock.
func (r *Router) WithConnectorLock(stationID string, connectorID int, fn func() ocpperr.HandlerResult) ocpperr.HandlerResult {
	mu := r.connectorMutex(stationID, connectorID)
	mu.Lock()
	defer mu.Unlock()
	return fn()
}

// DispatchCall implements spec §4.4's inbound CALL path: look up the
// handler, run it in the session's tenant context, and frame the result.
// Heartbeat is special-cased to refresh lastHeartbeat after dispatch.
func (r *Router) DispatchCall(ctx context.Context, sess *session.Session, frame wire.Frame) wire.Frame {
	fn, ok := r.handlers[handlerKey(frame.OcppVersion, frame.Action)]
	if !ok {
		r.log.Warn("ocpp: no handler registered",
			zap.String("ocpp_version", string(frame.OcppVersion)),
			zap.String("action", frame.Action),
		)
		return wire.NewCallError(frame.MessageId, string(ocpperr.NotImplemented),
			"no handler for action "+frame.Action, nil, frame.OcppVersion)
	}

	result := r.runHandlerSafely(ctx, sess, frame, fn)

	if frame.Action == "Heartbeat" {
		now := time.Now()
		sess.RefreshHeartbeat(now)
	}

	if result.Err != nil {
		details, _ := json.Marshal(result.Err.Details)
		return wire.NewCallError(frame.MessageId, string(result.Err.Code), result.Err.Description, details, frame.OcppVersion)
	}

	payload, err := json.Marshal(result.Payload)
	if err != nil {
		r.log.Error("ocpp: failed to marshal handler result", zap.Error(err))
		return wire.NewCallError(frame.MessageId, string(ocpperr.InternalError), "response encoding failure", nil, frame.OcppVersion)
	}
	return wire.NewCallResult(frame.MessageId, payload, frame.OcppVersion)
}

// runHandlerSafely recovers a panicking handler into InternalError (spec
// §4.4: "a handler that throws unexpectedly yields InternalError and is
// logged"), since third-party-driven payload decoding can still panic on
// adversarial input despite the sum-type contract.
func (r *Router) runHandlerSafely(ctx context.Context, sess *session.Session, frame wire.Frame, fn HandlerFunc) (result ocpperr.HandlerResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("ocpp: handler panic",
				zap.String("action", frame.Action),
				zap.Any("recover", rec),
			)
			result = ocpperr.Fail(ocpperr.Newf(ocpperr.InternalError, "internal error handling %s", frame.Action))
		}
	}()
	return fn(ctx, sess, frame.Payload)
}

// DispatchResult implements spec §4.4's inbound CALLRESULT/CALLERROR path:
// resolve the matching pending message, or log and drop an orphan.
func (r *Router) DispatchResult(sess *session.Session, frame wire.Frame) {
	var err error
	if frame.MessageTypeId == wire.CallError {
		err = ocpperr.Newf(ocpperr.ErrorCode(frame.ErrorCode), "%s", frame.ErrorDescription)
	}
	if !sess.Resolve(frame.MessageId, frame.Payload, err) {
		r.log.Warn("ocpp: dropping result for unknown messageId",
			zap.String("session_id", sess.ID),
			zap.String("message_id", frame.MessageId),
		)
	}
}

// SendCall implements spec §4.4/§4.2's outbound CALL path: allocate a fresh
// MessageId, register a PendingMessage, frame and send the CALL, and block
// for the matching CALLRESULT/CALLERROR or timeout/cancellation.
func (r *Router) SendCall(ctx context.Context, sess *session.Session, messageIdAllocator func() string, action string, payload interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("router: marshal outbound payload: %w", err)
	}

	messageId := messageIdAllocator()
	frame := wire.NewCall(messageId, action, body, sess.OcppVersion)
	raw, err := wire.Encode(frame)
	if err != nil {
		return nil, fmt.Errorf("router: encode outbound call: %w", err)
	}

	future := sess.RegisterPending(messageId, action, body)

	if err := sess.Send(raw); err != nil {
		sess.Resolve(messageId, nil, err)
		return nil, fmt.Errorf("router: send outbound call: %w", err)
	}

	select {
	case outcome := <-future:
		if outcome.Err != nil {
			return nil, outcome.Err
		}
		return outcome.Payload, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
