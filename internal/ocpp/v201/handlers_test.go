package v201

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/mocks"
	"github.com/csms-go/csms/internal/ocpp/router"
	sessionrpc "github.com/csms-go/csms/internal/ocpp/session"
	"github.com/csms-go/csms/internal/ocpp/wire"
	sessionevt "github.com/csms-go/csms/internal/session"
	"github.com/csms-go/csms/internal/tenant"
)

func TestTransactionIDHashIsDeterministic(t *testing.T) {
	a := transactionIDHash("tenant-1", "station-txn-abc")
	b := transactionIDHash("tenant-1", "station-txn-abc")
	if a != b {
		t.Fatalf("expected stable hash, got %d then %d", a, b)
	}
}

func TestTransactionIDHashDistinguishesTenants(t *testing.T) {
	a := transactionIDHash("tenant-1", "station-txn-abc")
	b := transactionIDHash("tenant-2", "station-txn-abc")
	if a == b {
		t.Fatalf("expected different tenants to hash the same string transactionId differently, got %d for both", a)
	}
}

// TestTransactionEventStartedThenEndedCorrelatesByStationTransactionId
// guards the 2.0.1 "Started" -> "Ended" correlation: both events carry
// the station's own string transactionId, and the handler must resolve
// the same session row for both without a server-assigned sequence id.
func TestTransactionEventStartedThenEndedCorrelatesByStationTransactionId(t *testing.T) {
	store := map[int64]*domain.ChargingSession{}

	sessRepo := &mocks.MockSessionRepository{
		SaveFunc: func(ctx context.Context, s *domain.ChargingSession) error {
			if s.OcppTransactionID != nil {
				store[*s.OcppTransactionID] = s
			}
			return nil
		},
		FindByTransactionIDFunc: func(ctx context.Context, transactionID int64) (*domain.ChargingSession, error) {
			return store[transactionID], nil
		},
		NextTransactionIDFunc: func(ctx context.Context) (int64, error) {
			t.Fatal("expected 2.0.1 Started to bind via the explicit hashed id, not allocate a fresh sequence id")
			return 0, nil
		},
	}

	tokens := &mocks.MockAuthTokenRepository{
		FindByValueFunc: func(ctx context.Context, value string) (*domain.AuthToken, error) {
			future := time.Now().Add(time.Hour)
			past := time.Now().Add(-time.Hour)
			return &domain.AuthToken{TokenValue: value, Active: true, ValidFrom: &past, ValidUntil: &future}, nil
		},
	}

	connectors := &mocks.MockConnectorRepository{
		FindByStationAndConnectorFunc: func(ctx context.Context, stationID string, connectorID int) (*domain.Connector, error) {
			return &domain.Connector{StationID: stationID, ConnectorID: connectorID}, nil
		},
	}

	logger := zap.NewNop()
	events := sessionevt.NewEvents(sessRepo, connectors, tokens, &mocks.MockTariffRepository{}, &mocks.MockReservationRepository{}, logger)

	rt := router.New(logger)
	RegisterHandlers(rt, &mocks.MockStationRepository{}, events)

	ctx := tenant.WithTenant(context.Background(), "tenant-1")
	sess := &sessionrpc.Session{StationID: "CP001", TenantID: "tenant-1", OcppVersion: wire.Version201}

	startPayload, _ := json.Marshal(map[string]interface{}{
		"eventType":       "Started",
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
		"triggerReason":   "Authorized",
		"seqNo":           0,
		"transactionInfo": map[string]string{"transactionId": "station-native-id-42"},
		"idToken":         map[string]string{"idToken": "TAG1", "type": "ISO14443"},
		"evse":            map[string]int{"id": 1, "connectorId": 1},
	})
	startFrame := wire.NewCall("msg-1", "TransactionEvent", startPayload, wire.Version201)

	startResp := rt.DispatchCall(ctx, sess, startFrame)
	if startResp.MessageTypeId == wire.CallError {
		t.Fatalf("unexpected CallError on Started: %s", startResp.Payload)
	}

	endPayload, _ := json.Marshal(map[string]interface{}{
		"eventType":       "Ended",
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
		"triggerReason":   "EVDeparted",
		"seqNo":           1,
		"transactionInfo": map[string]string{"transactionId": "station-native-id-42"},
		"meterStop":       5000,
	})
	endFrame := wire.NewCall("msg-2", "TransactionEvent", endPayload, wire.Version201)

	endResp := rt.DispatchCall(ctx, sess, endFrame)
	if endResp.MessageTypeId == wire.CallError {
		t.Fatalf("unexpected CallError on Ended: %s", endResp.Payload)
	}

	var resp transactionEventResp
	if err := json.Unmarshal(endResp.Payload, &resp); err == nil && resp.IdTokenInfo != nil && resp.IdTokenInfo.Status == "Invalid" {
		t.Fatalf("expected Ended to resolve the session started under the same stationTransactionId, got status Invalid")
	}

	if len(store) != 1 {
		t.Fatalf("expected exactly one session row bound across Started/Ended, got %d", len(store))
	}
	for _, s := range store {
		if s.Status != domain.SessionCompleted {
			t.Fatalf("expected session to be completed after Ended, got %s", s.Status)
		}
	}
}
