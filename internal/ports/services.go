package ports

import (
	"context"
	"time"

	"github.com/csms-go/csms/internal/domain"
)

// TenantService resolves and administers tenants; it also implements
// tenant.Registry so the HTTP and OCPP-handshake resolution steps of
// spec §4.1 can look up a code/subdomain/custom-domain without depending
// on the persistence layer directly.
type TenantService interface {
	ResolveCode(code string) (id string, ok bool)
	ResolveCustomDomain(host string) (id string, ok bool)
	Create(ctx context.Context, t *domain.Tenant) error
	Get(ctx context.Context, id string) (*domain.Tenant, error)
	List(ctx context.Context) ([]domain.Tenant, error)
	Suspend(ctx context.Context, id, reason string) error
	Reactivate(ctx context.Context, id string) error
	// ValidateCurrent implements spec §4.1's "validation of the current
	// tenant" helper: exists and is usable, else ErrInvalidTenant.
	ValidateCurrent(ctx context.Context, tenantID string) error
}

// StationService administers charging stations and connectors, and
// synthesises operator-issued remote commands (spec §4.7).
type StationService interface {
	Register(ctx context.Context, s *domain.ChargingStation) error
	Get(ctx context.Context, stationID string) (*domain.ChargingStation, error)
	List(ctx context.Context, filter map[string]interface{}) ([]domain.ChargingStation, error)
	Search(ctx context.Context, query string) ([]domain.ChargingStation, error)
	Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]domain.ChargingStation, error)
	Statistics(ctx context.Context) (map[string]interface{}, error)
	StartMaintenance(ctx context.Context, stationID, reason string) error
	EndMaintenance(ctx context.Context, stationID string) error

	// RemoteStart/RemoteStop synthesise the outbound CALL of spec §4.7,
	// resolve the session by (stationID, tenantID), and surface the
	// station's response. ErrStationOffline if no session is registered.
	RemoteStart(ctx context.Context, stationID string, connectorID int, idTag string) (accepted bool, err error)
	RemoteStop(ctx context.Context, stationID string, transactionID int64) (accepted bool, err error)
}

// SessionService exposes charging-session queries and statistics to the
// HTTP edge, independent of the OCPP event handlers that drive the state
// machine directly.
type SessionService interface {
	Get(ctx context.Context, sessionUUID string) (*domain.ChargingSession, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.ChargingSession, error)
	Statistics(ctx context.Context) (map[string]interface{}, error)
}

// TariffService administers tariffs and exposes cost computation to
// callers outside the OCPP StopTransaction path (e.g. cost estimation).
type TariffService interface {
	Save(ctx context.Context, t *domain.Tariff) error
	Get(ctx context.Context, id string) (*domain.Tariff, error)
	List(ctx context.Context) ([]domain.Tariff, error)
	ComputeCost(ctx context.Context, s *domain.ChargingSession) (*domain.ChargingSession, error)
}

// AuthService issues and validates bearer JWTs (spec §6 Auth).
type AuthService interface {
	Login(ctx context.Context, tenantID, username, password string) (accessToken, refreshToken string, err error)
	Register(ctx context.Context, u *domain.User, password string) error
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	ValidateToken(ctx context.Context, token string) (*domain.User, error)
	Logout(ctx context.Context, token string, expiresAt time.Time) error
}

// UserService administers tenant-scoped users and roles.
type UserService interface {
	Create(ctx context.Context, u *domain.User, password string) error
	Get(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	CreateRole(ctx context.Context, r *domain.Role) error
	ListRoles(ctx context.Context) ([]domain.Role, error)
	IssueToken(ctx context.Context, t *domain.AuthToken) error
	ListTokensByUser(ctx context.Context, userID string) ([]domain.AuthToken, error)
}

// ReservationService implements the ReserveNow/CancelReservation lifecycle
// of spec §3's Connector reservation sub-record, plus the expiry sweep
// supplemented in SPEC_FULL §7.
type ReservationService interface {
	ReserveNow(ctx context.Context, stationID string, connectorID int, idTag string, userID string, expiresAt time.Time) (*domain.Reservation, error)
	Cancel(ctx context.Context, id, userID string) error
	Get(ctx context.Context, id string) (*domain.Reservation, error)
	ListByStationConnector(ctx context.Context, stationID string, connectorID int) ([]domain.Reservation, error)
	ListActiveByUser(ctx context.Context, userID string) ([]domain.Reservation, error)
	// SweepExpired runs the expiry sweep: confirmed/pending reservations
	// past their end time plus grace period are marked expired and their
	// connector reservation released.
	SweepExpired(ctx context.Context, gracePeriod time.Duration) (int, error)
}
