// Package session implements the OCPP session manager of spec §4.3: a
// registry of live station connections keyed by sessionId and by
// (stationId, tenantId), plus the per-session pending-message table backing
// server-initiated CALL futures.
package session

import (
	"sync"
	"time"

	"github.com/csms-go/csms/internal/ocpp/wire"
)

// PendingMessage tracks a server-initiated CALL awaiting its CALLRESULT or
// CALLERROR (spec §4.3).
type PendingMessage struct {
	MessageId  string
	Action     string
	Payload    []byte
	SentAt     time.Time
	RetryCount int
	resultCh   chan Outcome
}

// Outcome is delivered on a PendingMessage's future when it resolves, either
// by a matching CALLRESULT/CALLERROR, by reaper timeout, or by cancellation
// on session close.
type Outcome struct {
	Payload []byte
	Err     error
}

// Sender abstracts the one-writer-per-connection transport so the session
// manager and router never touch gorilla/websocket or fiber/websocket
// directly (spec §4.4 "outbound frames must not interleave on the wire").
type Sender interface {
	Send(raw []byte) error
	Close() error
}

// Session is a single station's live connection (spec §4.3). Immutable
// fields are set at construction; mutable fields are guarded by mu.
type Session struct {
	ID          string
	StationID   string
	TenantID    string
	OcppVersion wire.Version
	ClientIP    string
	ConnectedAt time.Time

	transport Sender

	mu                     sync.Mutex
	lastHeartbeat          time.Time
	lastMessageSent        time.Time
	lastMessageReceived    time.Time
	authenticated          bool
	bootNotificationStatus string
	messageCounter         uint64
	pendingMessages        map[string]*PendingMessage
	closed                 bool
}

func newSession(id, stationID, tenantID string, version wire.Version, clientIP string, transport Sender, now time.Time) *Session {
	return &Session{
		ID:              id,
		StationID:       stationID,
		TenantID:        tenantID,
		OcppVersion:     version,
		ClientIP:        clientIP,
		ConnectedAt:     now,
		transport:       transport,
		lastHeartbeat:   now,
		pendingMessages: make(map[string]*PendingMessage),
	}
}

// Send writes a frame through the session's transport, bumping
// lastMessageSent. Callers must not write to the transport directly.
func (s *Session) Send(raw []byte) error {
	s.mu.Lock()
	s.lastMessageSent = time.Now()
	s.mu.Unlock()
	return s.transport.Send(raw)
}

// MarkMessageReceived bumps lastMessageReceived and the message counter.
func (s *Session) MarkMessageReceived() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastMessageReceived = time.Now()
	s.messageCounter++
}

// RefreshHeartbeat is invoked by the router after dispatching a Heartbeat
// CALL (spec §4.4).
func (s *Session) RefreshHeartbeat(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastHeartbeat = at
}

// IsExpired reports whether the session's heartbeat has lapsed beyond
// timeout. Closing expired sessions is left to the caller (spec §4.3).
func (s *Session) IsExpired(now time.Time, timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastHeartbeat) > timeout
}

func (s *Session) SetAuthenticated(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = v
}

func (s *Session) SetBootNotificationStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bootNotificationStatus = status
}

// RegisterPending records an outbound CALL awaiting a response and returns
// a channel that resolves exactly once with its Outcome.
func (s *Session) RegisterPending(messageId, action string, payload []byte) <-chan Outcome {
	ch := make(chan Outcome, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingMessages[messageId] = &PendingMessage{
		MessageId: messageId,
		Action:    action,
		Payload:   payload,
		SentAt:    time.Now(),
		resultCh:  ch,
	}
	return ch
}

// Resolve completes a pending message's future and removes it, per spec
// §4.4's inbound CALLRESULT/CALLERROR handling. ok is false if no pending
// message with that id is tracked (the station invented an id, or it
// already resolved).
func (s *Session) Resolve(messageId string, payload []byte, err error) bool {
	s.mu.Lock()
	pm, found := s.pendingMessages[messageId]
	if found {
		delete(s.pendingMessages, messageId)
	}
	s.mu.Unlock()
	if !found {
		return false
	}
	pm.resultCh <- Outcome{Payload: payload, Err: err}
	return true
}

// ExpirePendingOlderThan completes with Timeout every pending message sent
// before cutoff, returning how many were expired (spec §4.3 reaper step 2).
func (s *Session) ExpirePendingOlderThan(cutoff time.Time, timeoutErr error) int {
	s.mu.Lock()
	var expired []*PendingMessage
	for id, pm := range s.pendingMessages {
		if pm.SentAt.Before(cutoff) {
			expired = append(expired, pm)
			delete(s.pendingMessages, id)
		}
	}
	s.mu.Unlock()
	for _, pm := range expired {
		pm.resultCh <- Outcome{Err: timeoutErr}
	}
	return len(expired)
}

// CloseWith cancels every outstanding outbound future with cancelErr, closes
// the transport, and marks the session closed (spec §4.4 cancellation).
func (s *Session) CloseWith(cancelErr error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	pending := s.pendingMessages
	s.pendingMessages = make(map[string]*PendingMessage)
	s.mu.Unlock()

	for _, pm := range pending {
		pm.resultCh <- Outcome{Err: cancelErr}
	}
	_ = s.transport.Close()
}

func (s *Session) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pendingMessages)
}
