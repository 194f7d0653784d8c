// Package ocpperr defines the closed taxonomy of OCPP CALLERROR codes
// (spec §7) and the sum-type handler result that replaces "handlers throw"
// with an explicit Result<Payload, OcppError> (spec §9 design note): the
// router frames a CALLERROR from a returned error value; a handler that
// panics anyway is recovered by the router into InternalError.
package ocpperr

import "fmt"

// ErrorCode is the closed set of OCPP CALLERROR codes used by both the 1.6
// and 2.0.1 dialects (spec §7).
type ErrorCode string

const (
	NotImplemented             ErrorCode = "NotImplemented"
	NotSupported               ErrorCode = "NotSupported"
	InternalError              ErrorCode = "InternalError"
	ProtocolError              ErrorCode = "ProtocolError"
	SecurityError              ErrorCode = "SecurityError"
	FormationViolation         ErrorCode = "FormationViolation" // OCPP 1.6 malformed payload
	FormatViolation            ErrorCode = "FormatViolation"    // OCPP 2.0.1 malformed payload
	PropertyConstraintViolation ErrorCode = "PropertyConstraintViolation"
	OccurrenceConstraintViolation ErrorCode = "OccurrenceConstraintViolation"
	TypeConstraintViolation    ErrorCode = "TypeConstraintViolation"
	GenericError               ErrorCode = "GenericError"

	// 1.6-only.
	MessageTypeNotSupported ErrorCode = "MessageTypeNotSupported"
	RequestNotSupported     ErrorCode = "RequestNotSupported"

	// 2.0.1-only.
	RpcFrameworkError ErrorCode = "RpcFrameworkError"
)

// OcppError is an error value that frames cleanly as a CALLERROR.
type OcppError struct {
	Code        ErrorCode
	Description string
	Details     interface{}
}

func New(code ErrorCode, description string) *OcppError {
	return &OcppError{Code: code, Description: description}
}

func Newf(code ErrorCode, format string, args ...interface{}) *OcppError {
	return &OcppError{Code: code, Description: fmt.Sprintf(format, args...)}
}

func WithDetails(code ErrorCode, description string, details interface{}) *OcppError {
	return &OcppError{Code: code, Description: description, Details: details}
}

func (e *OcppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// HandlerResult is the sum type every OCPP action handler returns in place
// of (payload, error): exactly one of Payload or Err is set. The router
// frames a CALLRESULT from Payload or a CALLERROR from Err; it also
// recovers a panicking handler into an InternalError CALLERROR.
type HandlerResult struct {
	Payload interface{}
	Err     *OcppError
}

func Ok(payload interface{}) HandlerResult {
	return HandlerResult{Payload: payload}
}

func Fail(err *OcppError) HandlerResult {
	return HandlerResult{Err: err}
}

func Failf(code ErrorCode, format string, args ...interface{}) HandlerResult {
	return HandlerResult{Err: Newf(code, format, args...)}
}

func (r HandlerResult) IsErr() bool { return r.Err != nil }
