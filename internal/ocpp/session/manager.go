package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/csms-go/csms/internal/ocpp/ocpperr"
	"github.com/csms-go/csms/internal/ocpp/wire"
)

// Disconnector is notified when a station's session is torn down, so the
// station-state component can mark it offline (spec §4.3 Register/close).
type Disconnector interface {
	OnStationDisconnected(tenantID, stationID string)
}

// Manager is the sessionId→Session and (stationId,tenantId)→sessionId
// registry of spec §4.3. Reads (lookups) are far more frequent than writes
// (register/remove), so both maps are guarded by a single RWMutex.
type Manager struct {
	log          *zap.Logger
	disconnector Disconnector

	mu       sync.RWMutex
	byID     map[string]*Session
	byStation map[string]string // "tenantID/stationID" -> sessionID

	reaperInterval time.Duration
	pendingTTL     time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

func NewManager(log *zap.Logger, disconnector Disconnector) *Manager {
	return &Manager{
		log:            log,
		disconnector:   disconnector,
		byID:           make(map[string]*Session),
		byStation:      make(map[string]string),
		reaperInterval: 60 * time.Second,
		pendingTTL:     300 * time.Second,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

func stationKey(tenantID, stationID string) string {
	return tenantID + "/" + stationID
}

// Register implements spec §4.3 Register: closes any existing session for
// (stationID, tenantID) (latest wins), creates and indexes a new one.
func (m *Manager) Register(tenantID, stationID string, version wire.Version, clientIP string, transport Sender) *Session {
	id := uuid.NewString()
	sess := newSession(id, stationID, tenantID, version, clientIP, transport, time.Now())

	key := stationKey(tenantID, stationID)

	m.mu.Lock()
	if oldID, ok := m.byStation[key]; ok {
		if old, ok := m.byID[oldID]; ok {
			delete(m.byID, oldID)
			go old.CloseWith(ocpperr.ErrCancelled)
		}
	}
	m.byID[id] = sess
	m.byStation[key] = id
	m.mu.Unlock()

	m.log.Info("ocpp session registered",
		zap.String("session_id", id),
		zap.String("station_id", stationID),
		zap.String("tenant_id", tenantID),
		zap.String("ocpp_version", string(version)),
	)
	return sess
}

// Remove tears down a session on transport close/error and notifies the
// station-state component.
func (m *Manager) Remove(sessionID string) {
	m.mu.Lock()
	sess, ok := m.byID[sessionID]
	if ok {
		delete(m.byID, sessionID)
		key := stationKey(sess.TenantID, sess.StationID)
		if m.byStation[key] == sessionID {
			delete(m.byStation, key)
		}
	}
	m.mu.Unlock()

	if !ok {
		return
	}
	sess.CloseWith(ocpperr.ErrSessionClosed)
	if m.disconnector != nil {
		m.disconnector.OnStationDisconnected(sess.TenantID, sess.StationID)
	}
	m.log.Info("ocpp session removed",
		zap.String("session_id", sessionID),
		zap.String("station_id", sess.StationID),
		zap.String("tenant_id", sess.TenantID),
	)
}

func (m *Manager) ByID(sessionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byID[sessionID]
	return s, ok
}

func (m *Manager) ByStation(tenantID, stationID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byStation[stationKey(tenantID, stationID)]
	if !ok {
		return nil, false
	}
	s, ok := m.byID[id]
	return s, ok
}

// NextMessageId allocates a fresh, collision-free outbound MessageId (spec
// §4.4: "monotonic per session, UUID-like to avoid collision with
// station-chosen ids").
func (m *Manager) NextMessageId() string {
	return uuid.NewString()
}

// Start launches the reaper goroutine (spec §4.3: scheduled every 60s).
func (m *Manager) Start() {
	go m.reaperLoop()
}

// Stop halts the reaper and blocks until it exits.
func (m *Manager) Stop() {
	close(m.stopCh)
	<-m.doneCh
}

func (m *Manager) reaperLoop() {
	defer close(m.doneCh)
	ticker := time.NewTicker(m.reaperInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.reapOnce(time.Now())
		}
	}
}

// reapOnce implements spec §4.3's three reaper steps: drop dead-transport
// sessions, expire stale pending messages, and log when anything moved.
func (m *Manager) reapOnce(now time.Time) {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.byID))
	for _, s := range m.byID {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	removedDead := 0
	expiredPending := 0
	cutoff := now.Add(-m.pendingTTL)

	for _, s := range sessions {
		if s.IsClosed() {
			m.Remove(s.ID)
			removedDead++
			continue
		}
		expiredPending += s.ExpirePendingOlderThan(cutoff, ocpperr.ErrTimeout)
	}

	if removedDead > 0 || expiredPending > 0 {
		m.log.Info("ocpp session reaper swept",
			zap.Int("removed_sessions", removedDead),
			zap.Int("expired_pending", expiredPending),
		)
	}
}

// Statistics is the on-demand session summary of spec §4.3.
type Statistics struct {
	TotalSessions        int
	CountsByOcppVersion  map[string]int
	CountsByTenant       map[string]int
	TotalMessages        uint64
	TotalPendingMessages int
}

func (m *Manager) Statistics() Statistics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Statistics{
		CountsByOcppVersion: make(map[string]int),
		CountsByTenant:      make(map[string]int),
	}
	for _, s := range m.byID {
		stats.TotalSessions++
		stats.CountsByOcppVersion[string(s.OcppVersion)]++
		stats.CountsByTenant[s.TenantID]++
		s.mu.Lock()
		stats.TotalMessages += s.messageCounter
		stats.TotalPendingMessages += len(s.pendingMessages)
		s.mu.Unlock()
	}
	return stats
}
