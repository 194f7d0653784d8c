package session

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/csms-go/csms/internal/ocpp/wire"
)

type fakeSender struct {
	closed bool
	sent   [][]byte
}

func (f *fakeSender) Send(raw []byte) error {
	f.sent = append(f.sent, raw)
	return nil
}

func (f *fakeSender) Close() error {
	f.closed = true
	return nil
}

type fakeDisconnector struct {
	calls []string
}

func (f *fakeDisconnector) OnStationDisconnected(tenantID, stationID string) {
	f.calls = append(f.calls, tenantID+"/"+stationID)
}

func TestRegisterLatestWins(t *testing.T) {
	m := NewManager(zap.NewNop(), nil)

	s1 := m.Register("tenant-a", "station-1", wire.Version16, "1.1.1.1", &fakeSender{})
	s2 := m.Register("tenant-a", "station-1", wire.Version16, "2.2.2.2", &fakeSender{})

	if s1.ID == s2.ID {
		t.Fatalf("expected distinct session ids")
	}

	time.Sleep(10 * time.Millisecond) // allow async close of s1
	if !s1.IsClosed() {
		t.Fatalf("expected first session to be closed when latest wins")
	}

	got, ok := m.ByStation("tenant-a", "station-1")
	if !ok || got.ID != s2.ID {
		t.Fatalf("expected lookup to return latest session")
	}
}

func TestRemoveNotifiesDisconnector(t *testing.T) {
	d := &fakeDisconnector{}
	m := NewManager(zap.NewNop(), d)
	s := m.Register("tenant-a", "station-1", wire.Version16, "1.1.1.1", &fakeSender{})

	m.Remove(s.ID)

	if len(d.calls) != 1 || d.calls[0] != "tenant-a/station-1" {
		t.Fatalf("expected disconnector notified once, got %v", d.calls)
	}
	if _, ok := m.ByID(s.ID); ok {
		t.Fatalf("expected session removed from registry")
	}
}

func TestReaperExpiresPendingMessages(t *testing.T) {
	m := NewManager(zap.NewNop(), nil)
	s := m.Register("tenant-a", "station-1", wire.Version16, "1.1.1.1", &fakeSender{})

	ch := s.RegisterPending("msg-1", "RemoteStartTransaction", []byte(`{}`))

	future := time.Now().Add(400 * time.Second)
	m.reapOnce(future)

	select {
	case outcome := <-ch:
		if outcome.Err == nil {
			t.Fatalf("expected timeout error")
		}
	default:
		t.Fatalf("expected pending message to be resolved by reaper")
	}
}

func TestReaperRemovesClosedSessions(t *testing.T) {
	m := NewManager(zap.NewNop(), nil)
	s := m.Register("tenant-a", "station-1", wire.Version16, "1.1.1.1", &fakeSender{})
	s.CloseWith(nil)

	m.reapOnce(time.Now())

	if _, ok := m.ByID(s.ID); ok {
		t.Fatalf("expected closed session removed by reaper")
	}
}

func TestStatistics(t *testing.T) {
	m := NewManager(zap.NewNop(), nil)
	m.Register("tenant-a", "station-1", wire.Version16, "1.1.1.1", &fakeSender{})
	m.Register("tenant-b", "station-2", wire.Version201, "2.2.2.2", &fakeSender{})

	stats := m.Statistics()
	if stats.TotalSessions != 2 {
		t.Fatalf("expected 2 sessions, got %d", stats.TotalSessions)
	}
	if stats.CountsByOcppVersion["1.6"] != 1 || stats.CountsByOcppVersion["2.0.1"] != 1 {
		t.Fatalf("unexpected version counts: %+v", stats.CountsByOcppVersion)
	}
}
