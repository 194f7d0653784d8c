package postgres

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/ports"
)

// runtimeState tracks two of the per-station fields the domain model marks
// gorm:"-" (Connected/LastHeartbeat): OCPP liveness is a connection-session
// concern, not a persisted attribute. LastBootAt is not tracked here.
type runtimeState struct {
	connected     bool
	lastHeartbeat *time.Time
}

type StationRepository struct {
	db  *gorm.DB
	log *zap.Logger

	mu      sync.RWMutex
	runtime map[string]*runtimeState
}

func NewStationRepository(db *gorm.DB, log *zap.Logger) ports.StationRepository {
	return &StationRepository{db: db, log: log, runtime: make(map[string]*runtimeState)}
}

func (r *StationRepository) Save(ctx context.Context, s *domain.ChargingStation) error {
	if err := r.db.WithContext(ctx).Save(s).Error; err != nil {
		r.log.Error("failed to save station", zap.String("station_id", s.StationID), zap.Error(err))
		return err
	}
	r.applyRuntime(s)
	return nil
}

func (r *StationRepository) FindByStationID(ctx context.Context, stationID string) (*domain.ChargingStation, error) {
	var s domain.ChargingStation
	err := r.db.WithContext(ctx).First(&s, "station_id = ?", stationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.applyRuntime(&s)
	return &s, nil
}

func (r *StationRepository) FindAll(ctx context.Context, filter map[string]interface{}) ([]domain.ChargingStation, error) {
	var stations []domain.ChargingStation
	query := r.db.WithContext(ctx)
	if tenantID, ok := filter["tenant_id"]; ok {
		query = query.Where("tenant_id = ?", tenantID)
	}
	if maintenance, ok := filter["maintenance"]; ok {
		query = query.Where("maintenance = ?", maintenance)
	}
	if err := query.Find(&stations).Error; err != nil {
		return nil, err
	}
	for i := range stations {
		r.applyRuntime(&stations[i])
	}
	return stations, nil
}

// FindNearby uses the Haversine formula in raw SQL against the lat/lon
// columns; stations with no coordinates are excluded.
func (r *StationRepository) FindNearby(ctx context.Context, lat, lon, radiusKm float64) ([]domain.ChargingStation, error) {
	var stations []domain.ChargingStation
	const haversine = `
		6371 * acos(
			cos(radians(?)) * cos(radians(latitude)) * cos(radians(longitude) - radians(?)) +
			sin(radians(?)) * sin(radians(latitude))
		)
	`
	err := r.db.WithContext(ctx).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Where(haversine+" <= ?", lat, lon, lat, radiusKm).
		Find(&stations).Error
	if err != nil {
		return nil, err
	}
	for i := range stations {
		r.applyRuntime(&stations[i])
	}
	return stations, nil
}

func (r *StationRepository) UpdateHeartbeat(ctx context.Context, stationID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.stateLocked(stationID)
	st.lastHeartbeat = &at
	return nil
}

func (r *StationRepository) SetConnected(ctx context.Context, stationID string, connected bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.stateLocked(stationID)
	st.connected = connected
	return nil
}

func (r *StationRepository) stateLocked(stationID string) *runtimeState {
	st, ok := r.runtime[stationID]
	if !ok {
		st = &runtimeState{}
		r.runtime[stationID] = st
	}
	return st
}

func (r *StationRepository) applyRuntime(s *domain.ChargingStation) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if st, ok := r.runtime[s.StationID]; ok {
		s.Connected = st.connected
		s.LastHeartbeat = st.lastHeartbeat
	}
}
