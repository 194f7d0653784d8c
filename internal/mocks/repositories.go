package mocks

import (
	"context"
	"time"

	"github.com/csms-go/csms/internal/domain"
)

// MockTenantRepository is a func-field mock of ports.TenantRepository.
type MockTenantRepository struct {
	SaveFunc               func(ctx context.Context, t *domain.Tenant) error
	FindByIDFunc           func(ctx context.Context, id string) (*domain.Tenant, error)
	FindByCodeFunc         func(ctx context.Context, code string) (*domain.Tenant, error)
	FindByCustomDomainFunc func(ctx context.Context, domainName string) (*domain.Tenant, error)
	FindAllFunc            func(ctx context.Context) ([]domain.Tenant, error)
}

func (m *MockTenantRepository) Save(ctx context.Context, t *domain.Tenant) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, t)
	}
	return nil
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id string) (*domain.Tenant, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockTenantRepository) FindByCode(ctx context.Context, code string) (*domain.Tenant, error) {
	if m.FindByCodeFunc != nil {
		return m.FindByCodeFunc(ctx, code)
	}
	return nil, nil
}

func (m *MockTenantRepository) FindByCustomDomain(ctx context.Context, domainName string) (*domain.Tenant, error) {
	if m.FindByCustomDomainFunc != nil {
		return m.FindByCustomDomainFunc(ctx, domainName)
	}
	return nil, nil
}

func (m *MockTenantRepository) FindAll(ctx context.Context) ([]domain.Tenant, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return nil, nil
}

// MockStationRepository is a func-field mock of ports.StationRepository.
type MockStationRepository struct {
	SaveFunc            func(ctx context.Context, s *domain.ChargingStation) error
	FindByStationIDFunc func(ctx context.Context, stationID string) (*domain.ChargingStation, error)
	FindAllFunc         func(ctx context.Context, filter map[string]interface{}) ([]domain.ChargingStation, error)
	FindNearbyFunc      func(ctx context.Context, lat, lon, radiusKm float64) ([]domain.ChargingStation, error)
	UpdateHeartbeatFunc func(ctx context.Context, stationID string, at time.Time) error
	SetConnectedFunc    func(ctx context.Context, stationID string, connected bool) error
}

func (m *MockStationRepository) Save(ctx context.Context, s *domain.ChargingStation) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, s)
	}
	return nil
}

func (m *MockStationRepository) FindByStationID(ctx context.Context, stationID string) (*domain.ChargingStation, error) {
	if m.FindByStationIDFunc != nil {
		return m.FindByStationIDFunc(ctx, stationID)
	}
	return nil, nil
}

func (m *MockStationRepository) FindAll(ctx context.Context, filter map[string]interface{}) ([]domain.ChargingStation, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockStationRepository) FindNearby(ctx context.Context, lat, lon, radiusKm float64) ([]domain.ChargingStation, error) {
	if m.FindNearbyFunc != nil {
		return m.FindNearbyFunc(ctx, lat, lon, radiusKm)
	}
	return nil, nil
}

func (m *MockStationRepository) UpdateHeartbeat(ctx context.Context, stationID string, at time.Time) error {
	if m.UpdateHeartbeatFunc != nil {
		return m.UpdateHeartbeatFunc(ctx, stationID, at)
	}
	return nil
}

func (m *MockStationRepository) SetConnected(ctx context.Context, stationID string, connected bool) error {
	if m.SetConnectedFunc != nil {
		return m.SetConnectedFunc(ctx, stationID, connected)
	}
	return nil
}

// MockConnectorRepository is a func-field mock of ports.ConnectorRepository.
type MockConnectorRepository struct {
	SaveFunc                      func(ctx context.Context, c *domain.Connector) error
	FindByStationAndConnectorFunc func(ctx context.Context, stationID string, connectorID int) (*domain.Connector, error)
	FindByStationFunc             func(ctx context.Context, stationID string) ([]domain.Connector, error)
}

func (m *MockConnectorRepository) Save(ctx context.Context, c *domain.Connector) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, c)
	}
	return nil
}

func (m *MockConnectorRepository) FindByStationAndConnector(ctx context.Context, stationID string, connectorID int) (*domain.Connector, error) {
	if m.FindByStationAndConnectorFunc != nil {
		return m.FindByStationAndConnectorFunc(ctx, stationID, connectorID)
	}
	return nil, nil
}

func (m *MockConnectorRepository) FindByStation(ctx context.Context, stationID string) ([]domain.Connector, error) {
	if m.FindByStationFunc != nil {
		return m.FindByStationFunc(ctx, stationID)
	}
	return nil, nil
}

// MockSessionRepository is a func-field mock of ports.SessionRepository.
type MockSessionRepository struct {
	SaveFunc                  func(ctx context.Context, s *domain.ChargingSession) error
	FindBySessionUUIDFunc     func(ctx context.Context, uuid string) (*domain.ChargingSession, error)
	FindByTransactionIDFunc   func(ctx context.Context, transactionID int64) (*domain.ChargingSession, error)
	FindActiveByConnectorFunc func(ctx context.Context, stationID string, connectorID int) (*domain.ChargingSession, error)
	FindByUserFunc            func(ctx context.Context, userID string, limit, offset int) ([]domain.ChargingSession, error)
	AppendMeterValueFunc      func(ctx context.Context, mv *domain.MeterValue) error
	AppendStatusHistoryFunc   func(ctx context.Context, entry *domain.StatusHistoryEntry) error
	NextTransactionIDFunc     func(ctx context.Context) (int64, error)
	StatisticsFunc            func(ctx context.Context) (map[string]interface{}, error)

	nextID int64
}

func (m *MockSessionRepository) Save(ctx context.Context, s *domain.ChargingSession) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, s)
	}
	return nil
}

func (m *MockSessionRepository) FindBySessionUUID(ctx context.Context, uuid string) (*domain.ChargingSession, error) {
	if m.FindBySessionUUIDFunc != nil {
		return m.FindBySessionUUIDFunc(ctx, uuid)
	}
	return nil, nil
}

func (m *MockSessionRepository) FindByTransactionID(ctx context.Context, transactionID int64) (*domain.ChargingSession, error) {
	if m.FindByTransactionIDFunc != nil {
		return m.FindByTransactionIDFunc(ctx, transactionID)
	}
	return nil, nil
}

func (m *MockSessionRepository) FindActiveByConnector(ctx context.Context, stationID string, connectorID int) (*domain.ChargingSession, error) {
	if m.FindActiveByConnectorFunc != nil {
		return m.FindActiveByConnectorFunc(ctx, stationID, connectorID)
	}
	return nil, nil
}

func (m *MockSessionRepository) FindByUser(ctx context.Context, userID string, limit, offset int) ([]domain.ChargingSession, error) {
	if m.FindByUserFunc != nil {
		return m.FindByUserFunc(ctx, userID, limit, offset)
	}
	return nil, nil
}

func (m *MockSessionRepository) AppendMeterValue(ctx context.Context, mv *domain.MeterValue) error {
	if m.AppendMeterValueFunc != nil {
		return m.AppendMeterValueFunc(ctx, mv)
	}
	return nil
}

func (m *MockSessionRepository) AppendStatusHistory(ctx context.Context, entry *domain.StatusHistoryEntry) error {
	if m.AppendStatusHistoryFunc != nil {
		return m.AppendStatusHistoryFunc(ctx, entry)
	}
	return nil
}

func (m *MockSessionRepository) NextTransactionID(ctx context.Context) (int64, error) {
	if m.NextTransactionIDFunc != nil {
		return m.NextTransactionIDFunc(ctx)
	}
	m.nextID++
	return m.nextID, nil
}

func (m *MockSessionRepository) Statistics(ctx context.Context) (map[string]interface{}, error) {
	if m.StatisticsFunc != nil {
		return m.StatisticsFunc(ctx)
	}
	return nil, nil
}

// MockTariffRepository is a func-field mock of ports.TariffRepository.
type MockTariffRepository struct {
	SaveFunc                 func(ctx context.Context, t *domain.Tariff) error
	FindByIDFunc             func(ctx context.Context, id string) (*domain.Tariff, error)
	FindDefaultForTenantFunc func(ctx context.Context, tenantID string) (*domain.Tariff, error)
	FindAllFunc              func(ctx context.Context) ([]domain.Tariff, error)
}

func (m *MockTariffRepository) Save(ctx context.Context, t *domain.Tariff) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, t)
	}
	return nil
}

func (m *MockTariffRepository) FindByID(ctx context.Context, id string) (*domain.Tariff, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockTariffRepository) FindDefaultForTenant(ctx context.Context, tenantID string) (*domain.Tariff, error) {
	if m.FindDefaultForTenantFunc != nil {
		return m.FindDefaultForTenantFunc(ctx, tenantID)
	}
	return nil, nil
}

func (m *MockTariffRepository) FindAll(ctx context.Context) ([]domain.Tariff, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return nil, nil
}

// MockUserRepository is a func-field mock of ports.UserRepository.
type MockUserRepository struct {
	SaveFunc           func(ctx context.Context, u *domain.User) error
	FindByIDFunc       func(ctx context.Context, id string) (*domain.User, error)
	FindByUsernameFunc func(ctx context.Context, username string) (*domain.User, error)
	FindByEmailFunc    func(ctx context.Context, email string) (*domain.User, error)
}

func (m *MockUserRepository) Save(ctx context.Context, u *domain.User) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, u)
	}
	return nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.FindByUsernameFunc != nil {
		return m.FindByUsernameFunc(ctx, username)
	}
	return nil, nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, nil
}

// MockRoleRepository is a func-field mock of ports.RoleRepository.
type MockRoleRepository struct {
	SaveFunc       func(ctx context.Context, r *domain.Role) error
	FindByIDFunc   func(ctx context.Context, id string) (*domain.Role, error)
	FindByNameFunc func(ctx context.Context, name string) (*domain.Role, error)
	FindAllFunc    func(ctx context.Context) ([]domain.Role, error)
}

func (m *MockRoleRepository) Save(ctx context.Context, r *domain.Role) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, r)
	}
	return nil
}

func (m *MockRoleRepository) FindByID(ctx context.Context, id string) (*domain.Role, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockRoleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	if m.FindByNameFunc != nil {
		return m.FindByNameFunc(ctx, name)
	}
	return nil, nil
}

func (m *MockRoleRepository) FindAll(ctx context.Context) ([]domain.Role, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return nil, nil
}

// MockAuthTokenRepository is a func-field mock of ports.AuthTokenRepository.
type MockAuthTokenRepository struct {
	SaveFunc        func(ctx context.Context, t *domain.AuthToken) error
	FindByValueFunc func(ctx context.Context, value string) (*domain.AuthToken, error)
	FindByUserFunc  func(ctx context.Context, userID string) ([]domain.AuthToken, error)
}

func (m *MockAuthTokenRepository) Save(ctx context.Context, t *domain.AuthToken) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, t)
	}
	return nil
}

func (m *MockAuthTokenRepository) FindByValue(ctx context.Context, value string) (*domain.AuthToken, error) {
	if m.FindByValueFunc != nil {
		return m.FindByValueFunc(ctx, value)
	}
	return nil, nil
}

func (m *MockAuthTokenRepository) FindByUser(ctx context.Context, userID string) ([]domain.AuthToken, error) {
	if m.FindByUserFunc != nil {
		return m.FindByUserFunc(ctx, userID)
	}
	return nil, nil
}

// MockReservationRepository is a func-field mock of ports.ReservationRepository.
type MockReservationRepository struct {
	SaveFunc                      func(ctx context.Context, r *domain.Reservation) error
	FindByIDFunc                  func(ctx context.Context, id string) (*domain.Reservation, error)
	FindByStationAndConnectorFunc func(ctx context.Context, stationID string, connectorID int) ([]domain.Reservation, error)
	FindPendingExpiredFunc        func(ctx context.Context, gracePeriod time.Duration) ([]domain.Reservation, error)
	FindActiveByUserFunc          func(ctx context.Context, userID string) ([]domain.Reservation, error)
}

func (m *MockReservationRepository) Save(ctx context.Context, r *domain.Reservation) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, r)
	}
	return nil
}

func (m *MockReservationRepository) FindByID(ctx context.Context, id string) (*domain.Reservation, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockReservationRepository) FindByStationAndConnector(ctx context.Context, stationID string, connectorID int) ([]domain.Reservation, error) {
	if m.FindByStationAndConnectorFunc != nil {
		return m.FindByStationAndConnectorFunc(ctx, stationID, connectorID)
	}
	return nil, nil
}

func (m *MockReservationRepository) FindPendingExpired(ctx context.Context, gracePeriod time.Duration) ([]domain.Reservation, error) {
	if m.FindPendingExpiredFunc != nil {
		return m.FindPendingExpiredFunc(ctx, gracePeriod)
	}
	return nil, nil
}

func (m *MockReservationRepository) FindActiveByUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	if m.FindActiveByUserFunc != nil {
		return m.FindActiveByUserFunc(ctx, userID)
	}
	return nil, nil
}
