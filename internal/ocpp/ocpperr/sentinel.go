package ocpperr

import "errors"

// Sentinel errors for conditions that arise outside a single CALL/CALLRESULT
// exchange: outbound-future lifecycle and session lookup (spec §7 Transport
// / Timeout taxonomy entries).
var (
	ErrStationOffline = errors.New("ocpp: station offline")
	ErrTimeout        = errors.New("ocpp: outbound call timed out")
	ErrCancelled      = errors.New("ocpp: outbound call cancelled")
	ErrSessionClosed  = errors.New("ocpp: session closed")
	ErrUnknownSession = errors.New("ocpp: unknown session")
)
