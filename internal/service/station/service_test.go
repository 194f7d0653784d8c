package station

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/mocks"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func newTestService(stations *mocks.MockStationRepository, connectors *mocks.MockConnectorRepository) *Service {
	return &Service{stations: stations, connectors: connectors, log: newTestLogger()}
}

func TestRegisterSetsDefaultHeartbeatInterval(t *testing.T) {
	var saved *domain.ChargingStation
	stations := &mocks.MockStationRepository{
		SaveFunc: func(ctx context.Context, s *domain.ChargingStation) error {
			saved = s
			return nil
		},
	}
	svc := newTestService(stations, &mocks.MockConnectorRepository{})

	st := &domain.ChargingStation{StationID: "CP001"}
	if err := svc.Register(context.Background(), st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.HeartbeatIntervalSeconds != domain.DefaultHeartbeatIntervalSeconds {
		t.Errorf("expected default heartbeat interval %d, got %d", domain.DefaultHeartbeatIntervalSeconds, saved.HeartbeatIntervalSeconds)
	}
}

func TestGetAttachesConnectors(t *testing.T) {
	stations := &mocks.MockStationRepository{
		FindByStationIDFunc: func(ctx context.Context, stationID string) (*domain.ChargingStation, error) {
			return &domain.ChargingStation{StationID: stationID}, nil
		},
	}
	connectors := &mocks.MockConnectorRepository{
		FindByStationFunc: func(ctx context.Context, stationID string) ([]domain.Connector, error) {
			return []domain.Connector{{StationID: stationID, ConnectorID: 1}, {StationID: stationID, ConnectorID: 2}}, nil
		},
	}
	svc := newTestService(stations, connectors)

	st, err := svc.Get(context.Background(), "CP001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(st.Connectors) != 2 {
		t.Errorf("expected 2 connectors, got %d", len(st.Connectors))
	}
}

func TestGetReturnsNilForUnknownStation(t *testing.T) {
	svc := newTestService(&mocks.MockStationRepository{}, &mocks.MockConnectorRepository{})
	st, err := svc.Get(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st != nil {
		t.Errorf("expected nil station, got %+v", st)
	}
}

func TestSearchMatchesVendorModelOrStationID(t *testing.T) {
	stations := &mocks.MockStationRepository{
		FindAllFunc: func(ctx context.Context, filter map[string]interface{}) ([]domain.ChargingStation, error) {
			return []domain.ChargingStation{
				{StationID: "CP001", Vendor: "ABB", Model: "Terra"},
				{StationID: "CP002", Vendor: "Tesla", Model: "Supercharger"},
			}, nil
		},
	}
	svc := newTestService(stations, &mocks.MockConnectorRepository{})

	matches, err := svc.Search(context.Background(), "tesla")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 || matches[0].StationID != "CP002" {
		t.Errorf("expected only CP002 to match, got %+v", matches)
	}
}

func TestStatisticsAggregatesAcrossStations(t *testing.T) {
	stations := &mocks.MockStationRepository{
		FindAllFunc: func(ctx context.Context, filter map[string]interface{}) ([]domain.ChargingStation, error) {
			return []domain.ChargingStation{
				{StationID: "CP001", Connected: true, Stats: domain.StationStatistics{CumulativeEnergyKwh: 10}},
				{StationID: "CP002", Connected: false, Maintenance: true, Stats: domain.StationStatistics{CumulativeEnergyKwh: 5}},
			}, nil
		},
	}
	svc := newTestService(stations, &mocks.MockConnectorRepository{})

	stats, err := svc.Statistics(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats["total_stations"] != 2 {
		t.Errorf("expected total_stations 2, got %v", stats["total_stations"])
	}
	if stats["connected_stations"] != 1 {
		t.Errorf("expected connected_stations 1, got %v", stats["connected_stations"])
	}
	if stats["maintenance_stations"] != 1 {
		t.Errorf("expected maintenance_stations 1, got %v", stats["maintenance_stations"])
	}
	if stats["cumulative_energy_kwh"] != float64(15) {
		t.Errorf("expected cumulative_energy_kwh 15, got %v", stats["cumulative_energy_kwh"])
	}
}

func TestStartAndEndMaintenance(t *testing.T) {
	st := &domain.ChargingStation{StationID: "CP001"}
	stations := &mocks.MockStationRepository{
		FindByStationIDFunc: func(ctx context.Context, stationID string) (*domain.ChargingStation, error) {
			return st, nil
		},
		SaveFunc: func(ctx context.Context, s *domain.ChargingStation) error { return nil },
	}
	svc := newTestService(stations, &mocks.MockConnectorRepository{})

	if err := svc.StartMaintenance(context.Background(), "CP001", "annual inspection"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !st.Maintenance || st.MaintenanceReason != "annual inspection" {
		t.Errorf("expected maintenance flagged with reason, got %+v", st)
	}

	if err := svc.EndMaintenance(context.Background(), "CP001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Maintenance || st.MaintenanceReason != "" {
		t.Errorf("expected maintenance cleared, got %+v", st)
	}
}

func TestStartMaintenanceUnknownStation(t *testing.T) {
	svc := newTestService(&mocks.MockStationRepository{}, &mocks.MockConnectorRepository{})
	err := svc.StartMaintenance(context.Background(), "does-not-exist", "reason")
	if err != ErrStationOffline {
		t.Fatalf("expected ErrStationOffline, got %v", err)
	}
}
