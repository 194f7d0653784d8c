package postgres

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/ports"
)

type SessionRepository struct {
	db  *gorm.DB
	log *zap.Logger

	// txnSeq backs NextTransactionID when reading the Postgres SEQUENCE
	// fails (see NextTransactionID).
	txnSeq int64
}

func NewSessionRepository(db *gorm.DB, log *zap.Logger) ports.SessionRepository {
	return &SessionRepository{db: db, log: log}
}

func (r *SessionRepository) Save(ctx context.Context, s *domain.ChargingSession) error {
	if err := r.db.WithContext(ctx).Save(s).Error; err != nil {
		r.log.Error("failed to save session", zap.String("session_uuid", s.SessionUUID), zap.Error(err))
		return err
	}
	return nil
}

func (r *SessionRepository) FindBySessionUUID(ctx context.Context, uuid string) (*domain.ChargingSession, error) {
	var s domain.ChargingSession
	err := r.db.WithContext(ctx).First(&s, "session_uuid = ?", uuid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) FindByTransactionID(ctx context.Context, transactionID int64) (*domain.ChargingSession, error) {
	var s domain.ChargingSession
	err := r.db.WithContext(ctx).First(&s, "ocpp_transaction_id = ?", transactionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) FindActiveByConnector(ctx context.Context, stationID string, connectorID int) (*domain.ChargingSession, error) {
	var s domain.ChargingSession
	err := r.db.WithContext(ctx).
		Where("station_id = ? AND connector_number = ? AND status IN ?", stationID, connectorID,
			[]domain.ChargingSessionStatus{domain.SessionCharging, domain.SessionSuspendedEV, domain.SessionSuspendedEVSE, domain.SessionStarting}).
		Order("start_time DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) FindByUser(ctx context.Context, userID string, limit, offset int) ([]domain.ChargingSession, error) {
	var sessions []domain.ChargingSession
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", userID).
		Order("start_time DESC").
		Limit(limit).Offset(offset).
		Find(&sessions).Error
	return sessions, err
}

func (r *SessionRepository) AppendMeterValue(ctx context.Context, mv *domain.MeterValue) error {
	return r.db.WithContext(ctx).Create(mv).Error
}

func (r *SessionRepository) AppendStatusHistory(ctx context.Context, entry *domain.StatusHistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// NextTransactionID allocates a tenant-independent monotonic integer
// transaction id from the Postgres sequence
// charging_session_transaction_id_seq. If the sequence cannot be read, it
// falls back to an in-process atomic counter, which is unique only within
// this process.
func (r *SessionRepository) NextTransactionID(ctx context.Context) (int64, error) {
	var id int64
	if err := r.db.WithContext(ctx).Raw("SELECT nextval('charging_session_transaction_id_seq')").Scan(&id).Error; err != nil {
		return atomic.AddInt64(&r.txnSeq, 1), nil
	}
	return id, nil
}

func (r *SessionRepository) Statistics(ctx context.Context) (map[string]interface{}, error) {
	var row struct {
		TotalSessions int64
		TotalEnergy   float64
		TotalRevenue  float64
	}
	err := r.db.WithContext(ctx).Model(&domain.ChargingSession{}).
		Select("count(*) as total_sessions, coalesce(sum(energy_delivered_kwh),0) as total_energy, coalesce(sum(total_cost),0) as total_revenue").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"total_sessions": row.TotalSessions,
		"total_energy_kwh": row.TotalEnergy,
		"total_revenue":   row.TotalRevenue,
	}, nil
}
