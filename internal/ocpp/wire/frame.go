// Package wire implements the pure, bidirectional JSON-array framing shared
// by OCPP 1.6 and OCPP 2.0.1 (spec §4.2). It performs no I/O: it only
// translates between the wire's heterogeneous JSON array and a typed Frame.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageTypeId identifies the three OCPP RPC frame kinds.
type MessageTypeId int

const (
	Call       MessageTypeId = 2
	CallResult MessageTypeId = 3
	CallError  MessageTypeId = 4
)

func (t MessageTypeId) String() string {
	switch t {
	case Call:
		return "CALL"
	case CallResult:
		return "CALLRESULT"
	case CallError:
		return "CALLERROR"
	default:
		return fmt.Sprintf("MessageTypeId(%d)", int(t))
	}
}

// Version distinguishes the payload schema dialect a Frame is framed under.
// The array framing itself is identical between dialects; only the payload
// contents and the action vocabulary differ (spec §4.2).
type Version string

const (
	Version16  Version = "1.6"
	Version201 Version = "2.0.1"
)

var (
	ErrFrameTooShort   = errors.New("wire: frame has fewer than 3 elements")
	ErrUnknownType     = errors.New("wire: unknown messageTypeId")
	ErrMalformedFrame  = errors.New("wire: malformed frame element")
	ErrCallTooShort    = errors.New("wire: CALL frame requires 4 elements")
	ErrCallErrTooShort = errors.New("wire: CALLERROR frame requires 5 elements")
)

// Frame is the codec's in-memory, version-tagged representation of a single
// OCPP RPC message, regardless of its wire-level array shape.
type Frame struct {
	MessageTypeId   MessageTypeId
	MessageId       string
	Action          string          // set only for Call
	Payload         json.RawMessage // set for Call and CallResult
	ErrorCode       string          // set only for CallError
	ErrorDescription string         // set only for CallError
	ErrorDetails    json.RawMessage // set only for CallError
	OcppVersion     Version
}

// NewCall builds an outbound CALL frame.
func NewCall(messageId, action string, payload json.RawMessage, version Version) Frame {
	return Frame{MessageTypeId: Call, MessageId: messageId, Action: action, Payload: payload, OcppVersion: version}
}

// NewCallResult builds an outbound CALLRESULT frame.
func NewCallResult(messageId string, payload json.RawMessage, version Version) Frame {
	return Frame{MessageTypeId: CallResult, MessageId: messageId, Payload: payload, OcppVersion: version}
}

// NewCallError builds an outbound CALLERROR frame.
func NewCallError(messageId, errorCode, errorDescription string, details json.RawMessage, version Version) Frame {
	if details == nil {
		details = json.RawMessage("{}")
	}
	return Frame{
		MessageTypeId:    CallError,
		MessageId:        messageId,
		ErrorCode:        errorCode,
		ErrorDescription: errorDescription,
		ErrorDetails:     details,
		OcppVersion:      version,
	}
}

// Encode renders a Frame as its wire-level JSON array.
func Encode(f Frame) ([]byte, error) {
	switch f.MessageTypeId {
	case Call:
		payload := f.Payload
		if payload == nil {
			payload = json.RawMessage("{}")
		}
		return json.Marshal([]interface{}{int(Call), f.MessageId, f.Action, json.RawMessage(payload)})
	case CallResult:
		payload := f.Payload
		if payload == nil {
			payload = json.RawMessage("{}")
		}
		return json.Marshal([]interface{}{int(CallResult), f.MessageId, json.RawMessage(payload)})
	case CallError:
		details := f.ErrorDetails
		if details == nil {
			details = json.RawMessage("{}")
		}
		return json.Marshal([]interface{}{int(CallError), f.MessageId, f.ErrorCode, f.ErrorDescription, json.RawMessage(details)})
	default:
		return nil, ErrUnknownType
	}
}

// Decode parses a wire-level JSON array into a Frame tagged with version.
// The codec never inspects action-specific payload schema; that is the
// router's and handlers' concern.
func Decode(raw []byte, version Version) (Frame, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return Frame{}, fmt.Errorf("wire: invalid frame json: %w", err)
	}
	if len(elems) < 3 {
		return Frame{}, ErrFrameTooShort
	}

	var typeID int
	if err := json.Unmarshal(elems[0], &typeID); err != nil {
		return Frame{}, fmt.Errorf("%w: messageTypeId: %v", ErrMalformedFrame, err)
	}

	var messageId string
	if err := json.Unmarshal(elems[1], &messageId); err != nil {
		return Frame{}, fmt.Errorf("%w: messageId: %v", ErrMalformedFrame, err)
	}

	switch MessageTypeId(typeID) {
	case Call:
		if len(elems) < 4 {
			return Frame{}, ErrCallTooShort
		}
		var action string
		if err := json.Unmarshal(elems[2], &action); err != nil {
			return Frame{}, fmt.Errorf("%w: action: %v", ErrMalformedFrame, err)
		}
		return Frame{
			MessageTypeId: Call,
			MessageId:     messageId,
			Action:        action,
			Payload:       elems[3],
			OcppVersion:   version,
		}, nil

	case CallResult:
		return Frame{
			MessageTypeId: CallResult,
			MessageId:     messageId,
			Payload:       elems[2],
			OcppVersion:   version,
		}, nil

	case CallError:
		if len(elems) < 5 {
			return Frame{}, ErrCallErrTooShort
		}
		var errorCode, errorDesc string
		if err := json.Unmarshal(elems[2], &errorCode); err != nil {
			return Frame{}, fmt.Errorf("%w: errorCode: %v", ErrMalformedFrame, err)
		}
		if err := json.Unmarshal(elems[3], &errorDesc); err != nil {
			return Frame{}, fmt.Errorf("%w: errorDescription: %v", ErrMalformedFrame, err)
		}
		return Frame{
			MessageTypeId:    CallError,
			MessageId:        messageId,
			ErrorCode:        errorCode,
			ErrorDescription: errorDesc,
			ErrorDetails:     elems[4],
			OcppVersion:      version,
		}, nil

	default:
		return Frame{}, ErrUnknownType
	}
}
