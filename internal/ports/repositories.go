package ports

import (
	"context"
	"time"

	"github.com/csms-go/csms/internal/domain"
)

// TenantRepository persists the global tenant registry (not tenant-scoped).
type TenantRepository interface {
	Save(ctx context.Context, t *domain.Tenant) error
	FindByID(ctx context.Context, id string) (*domain.Tenant, error)
	FindByCode(ctx context.Context, code string) (*domain.Tenant, error)
	FindByCustomDomain(ctx context.Context, domainName string) (*domain.Tenant, error)
	FindAll(ctx context.Context) ([]domain.Tenant, error)
}

// StationRepository persists tenant-scoped charging stations.
type StationRepository interface {
	Save(ctx context.Context, s *domain.ChargingStation) error
	FindByStationID(ctx context.Context, stationID string) (*domain.ChargingStation, error)
	FindAll(ctx context.Context, filter map[string]interface{}) ([]domain.ChargingStation, error)
	FindNearby(ctx context.Context, lat, lon, radiusKm float64) ([]domain.ChargingStation, error)
	UpdateHeartbeat(ctx context.Context, stationID string, at time.Time) error
	SetConnected(ctx context.Context, stationID string, connected bool) error
}

// ConnectorRepository persists station connectors, keyed by (stationID, connectorID).
type ConnectorRepository interface {
	Save(ctx context.Context, c *domain.Connector) error
	FindByStationAndConnector(ctx context.Context, stationID string, connectorID int) (*domain.Connector, error)
	FindByStation(ctx context.Context, stationID string) ([]domain.Connector, error)
}

// SessionRepository persists charging sessions and their append-only children.
type SessionRepository interface {
	Save(ctx context.Context, s *domain.ChargingSession) error
	FindBySessionUUID(ctx context.Context, uuid string) (*domain.ChargingSession, error)
	FindByTransactionID(ctx context.Context, transactionID int64) (*domain.ChargingSession, error)
	FindActiveByConnector(ctx context.Context, stationID string, connectorID int) (*domain.ChargingSession, error)
	FindByUser(ctx context.Context, userID string, limit, offset int) ([]domain.ChargingSession, error)
	AppendMeterValue(ctx context.Context, mv *domain.MeterValue) error
	AppendStatusHistory(ctx context.Context, entry *domain.StatusHistoryEntry) error
	NextTransactionID(ctx context.Context) (int64, error)
	Statistics(ctx context.Context) (map[string]interface{}, error)
}

// TariffRepository persists tariffs and their elements.
type TariffRepository interface {
	Save(ctx context.Context, t *domain.Tariff) error
	FindByID(ctx context.Context, id string) (*domain.Tariff, error)
	FindDefaultForTenant(ctx context.Context, tenantID string) (*domain.Tariff, error)
	FindAll(ctx context.Context) ([]domain.Tariff, error)
}

// UserRepository persists tenant-scoped application users.
type UserRepository interface {
	Save(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// RoleRepository persists tenant-scoped roles and their permissions.
type RoleRepository interface {
	Save(ctx context.Context, r *domain.Role) error
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	FindAll(ctx context.Context) ([]domain.Role, error)
}

// AuthTokenRepository persists idTag/RFID/NFC tokens used for Authorize.
type AuthTokenRepository interface {
	Save(ctx context.Context, t *domain.AuthToken) error
	FindByValue(ctx context.Context, value string) (*domain.AuthToken, error)
	FindByUser(ctx context.Context, userID string) ([]domain.AuthToken, error)
}

// ReservationRepository persists connector reservations.
type ReservationRepository interface {
	Save(ctx context.Context, r *domain.Reservation) error
	FindByID(ctx context.Context, id string) (*domain.Reservation, error)
	FindByStationAndConnector(ctx context.Context, stationID string, connectorID int) ([]domain.Reservation, error)
	FindPendingExpired(ctx context.Context, gracePeriod time.Duration) ([]domain.Reservation, error)
	FindActiveByUser(ctx context.Context, userID string) ([]domain.Reservation, error)
}
