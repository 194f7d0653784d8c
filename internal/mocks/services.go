package mocks

import (
	"context"
	"time"

	"github.com/csms-go/csms/internal/domain"
)

// MockTenantService is a func-field mock of ports.TenantService.
type MockTenantService struct {
	ResolveCodeFunc         func(code string) (string, bool)
	ResolveCustomDomainFunc func(host string) (string, bool)
	CreateFunc              func(ctx context.Context, t *domain.Tenant) error
	GetFunc                 func(ctx context.Context, id string) (*domain.Tenant, error)
	ListFunc                func(ctx context.Context) ([]domain.Tenant, error)
	SuspendFunc             func(ctx context.Context, id, reason string) error
	ReactivateFunc          func(ctx context.Context, id string) error
	ValidateCurrentFunc     func(ctx context.Context, tenantID string) error
}

func (m *MockTenantService) ResolveCode(code string) (string, bool) {
	if m.ResolveCodeFunc != nil {
		return m.ResolveCodeFunc(code)
	}
	return "", false
}

func (m *MockTenantService) ResolveCustomDomain(host string) (string, bool) {
	if m.ResolveCustomDomainFunc != nil {
		return m.ResolveCustomDomainFunc(host)
	}
	return "", false
}

func (m *MockTenantService) Create(ctx context.Context, t *domain.Tenant) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, t)
	}
	return nil
}

func (m *MockTenantService) Get(ctx context.Context, id string) (*domain.Tenant, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockTenantService) List(ctx context.Context) ([]domain.Tenant, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockTenantService) Suspend(ctx context.Context, id, reason string) error {
	if m.SuspendFunc != nil {
		return m.SuspendFunc(ctx, id, reason)
	}
	return nil
}

func (m *MockTenantService) Reactivate(ctx context.Context, id string) error {
	if m.ReactivateFunc != nil {
		return m.ReactivateFunc(ctx, id)
	}
	return nil
}

func (m *MockTenantService) ValidateCurrent(ctx context.Context, tenantID string) error {
	if m.ValidateCurrentFunc != nil {
		return m.ValidateCurrentFunc(ctx, tenantID)
	}
	return nil
}

// MockStationService is a func-field mock of ports.StationService.
type MockStationService struct {
	RegisterFunc         func(ctx context.Context, s *domain.ChargingStation) error
	GetFunc              func(ctx context.Context, stationID string) (*domain.ChargingStation, error)
	ListFunc             func(ctx context.Context, filter map[string]interface{}) ([]domain.ChargingStation, error)
	SearchFunc           func(ctx context.Context, query string) ([]domain.ChargingStation, error)
	NearbyFunc           func(ctx context.Context, lat, lon, radiusKm float64) ([]domain.ChargingStation, error)
	StatisticsFunc       func(ctx context.Context) (map[string]interface{}, error)
	StartMaintenanceFunc func(ctx context.Context, stationID, reason string) error
	EndMaintenanceFunc   func(ctx context.Context, stationID string) error
	RemoteStartFunc      func(ctx context.Context, stationID string, connectorID int, idTag string) (bool, error)
	RemoteStopFunc       func(ctx context.Context, stationID string, transactionID int64) (bool, error)
}

func (m *MockStationService) Register(ctx context.Context, s *domain.ChargingStation) error {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, s)
	}
	return nil
}

func (m *MockStationService) Get(ctx context.Context, stationID string) (*domain.ChargingStation, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, stationID)
	}
	return nil, nil
}

func (m *MockStationService) List(ctx context.Context, filter map[string]interface{}) ([]domain.ChargingStation, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockStationService) Search(ctx context.Context, query string) ([]domain.ChargingStation, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query)
	}
	return nil, nil
}

func (m *MockStationService) Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]domain.ChargingStation, error) {
	if m.NearbyFunc != nil {
		return m.NearbyFunc(ctx, lat, lon, radiusKm)
	}
	return nil, nil
}

func (m *MockStationService) Statistics(ctx context.Context) (map[string]interface{}, error) {
	if m.StatisticsFunc != nil {
		return m.StatisticsFunc(ctx)
	}
	return nil, nil
}

func (m *MockStationService) StartMaintenance(ctx context.Context, stationID, reason string) error {
	if m.StartMaintenanceFunc != nil {
		return m.StartMaintenanceFunc(ctx, stationID, reason)
	}
	return nil
}

func (m *MockStationService) EndMaintenance(ctx context.Context, stationID string) error {
	if m.EndMaintenanceFunc != nil {
		return m.EndMaintenanceFunc(ctx, stationID)
	}
	return nil
}

func (m *MockStationService) RemoteStart(ctx context.Context, stationID string, connectorID int, idTag string) (bool, error) {
	if m.RemoteStartFunc != nil {
		return m.RemoteStartFunc(ctx, stationID, connectorID, idTag)
	}
	return false, nil
}

func (m *MockStationService) RemoteStop(ctx context.Context, stationID string, transactionID int64) (bool, error) {
	if m.RemoteStopFunc != nil {
		return m.RemoteStopFunc(ctx, stationID, transactionID)
	}
	return false, nil
}

// MockSessionService is a func-field mock of ports.SessionService.
type MockSessionService struct {
	GetFunc        func(ctx context.Context, sessionUUID string) (*domain.ChargingSession, error)
	ListByUserFunc func(ctx context.Context, userID string, limit, offset int) ([]domain.ChargingSession, error)
	StatisticsFunc func(ctx context.Context) (map[string]interface{}, error)
}

func (m *MockSessionService) Get(ctx context.Context, sessionUUID string) (*domain.ChargingSession, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, sessionUUID)
	}
	return nil, nil
}

func (m *MockSessionService) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.ChargingSession, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, limit, offset)
	}
	return nil, nil
}

func (m *MockSessionService) Statistics(ctx context.Context) (map[string]interface{}, error) {
	if m.StatisticsFunc != nil {
		return m.StatisticsFunc(ctx)
	}
	return nil, nil
}

// MockTariffService is a func-field mock of ports.TariffService.
type MockTariffService struct {
	SaveFunc        func(ctx context.Context, t *domain.Tariff) error
	GetFunc         func(ctx context.Context, id string) (*domain.Tariff, error)
	ListFunc        func(ctx context.Context) ([]domain.Tariff, error)
	ComputeCostFunc func(ctx context.Context, s *domain.ChargingSession) (*domain.ChargingSession, error)
}

func (m *MockTariffService) Save(ctx context.Context, t *domain.Tariff) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, t)
	}
	return nil
}

func (m *MockTariffService) Get(ctx context.Context, id string) (*domain.Tariff, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockTariffService) List(ctx context.Context) ([]domain.Tariff, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockTariffService) ComputeCost(ctx context.Context, s *domain.ChargingSession) (*domain.ChargingSession, error) {
	if m.ComputeCostFunc != nil {
		return m.ComputeCostFunc(ctx, s)
	}
	return nil, nil
}

// MockAuthService is a func-field mock of ports.AuthService.
type MockAuthService struct {
	LoginFunc         func(ctx context.Context, tenantID, username, password string) (string, string, error)
	RegisterFunc      func(ctx context.Context, u *domain.User, password string) error
	RefreshTokenFunc  func(ctx context.Context, refreshToken string) (string, error)
	ValidateTokenFunc func(ctx context.Context, token string) (*domain.User, error)
	LogoutFunc        func(ctx context.Context, token string, expiresAt time.Time) error
}

func (m *MockAuthService) Login(ctx context.Context, tenantID, username, password string) (string, string, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, tenantID, username, password)
	}
	return "", "", nil
}

func (m *MockAuthService) Register(ctx context.Context, u *domain.User, password string) error {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, u, password)
	}
	return nil
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	if m.RefreshTokenFunc != nil {
		return m.RefreshTokenFunc(ctx, refreshToken)
	}
	return "", nil
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*domain.User, error) {
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(ctx, token)
	}
	return nil, nil
}

func (m *MockAuthService) Logout(ctx context.Context, token string, expiresAt time.Time) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, token, expiresAt)
	}
	return nil
}

// MockUserService is a func-field mock of ports.UserService.
type MockUserService struct {
	CreateFunc         func(ctx context.Context, u *domain.User, password string) error
	GetFunc            func(ctx context.Context, id string) (*domain.User, error)
	FindByUsernameFunc func(ctx context.Context, username string) (*domain.User, error)
	CreateRoleFunc     func(ctx context.Context, r *domain.Role) error
	ListRolesFunc      func(ctx context.Context) ([]domain.Role, error)
}

func (m *MockUserService) Create(ctx context.Context, u *domain.User, password string) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, u, password)
	}
	return nil
}

func (m *MockUserService) Get(ctx context.Context, id string) (*domain.User, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserService) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.FindByUsernameFunc != nil {
		return m.FindByUsernameFunc(ctx, username)
	}
	return nil, nil
}

func (m *MockUserService) CreateRole(ctx context.Context, r *domain.Role) error {
	if m.CreateRoleFunc != nil {
		return m.CreateRoleFunc(ctx, r)
	}
	return nil
}

func (m *MockUserService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	if m.ListRolesFunc != nil {
		return m.ListRolesFunc(ctx)
	}
	return nil, nil
}
