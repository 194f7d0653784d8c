package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/ports"
)

type ReservationRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewReservationRepository(db *gorm.DB, log *zap.Logger) ports.ReservationRepository {
	return &ReservationRepository{db: db, log: log}
}

func (r *ReservationRepository) Save(ctx context.Context, res *domain.Reservation) error {
	if err := r.db.WithContext(ctx).Save(res).Error; err != nil {
		r.log.Error("failed to save reservation", zap.String("id", res.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, id string) (*domain.Reservation, error) {
	var res domain.Reservation
	err := r.db.WithContext(ctx).First(&res, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ReservationRepository) FindByStationAndConnector(ctx context.Context, stationID string, connectorID int) ([]domain.Reservation, error) {
	var reservations []domain.Reservation
	err := r.db.WithContext(ctx).
		Where("station_id = ? AND connector_id = ?", stationID, connectorID).
		Order("start_time").
		Find(&reservations).Error
	return reservations, err
}

func (r *ReservationRepository) FindPendingExpired(ctx context.Context, gracePeriod time.Duration) ([]domain.Reservation, error) {
	var reservations []domain.Reservation
	cutoff := time.Now().Add(-gracePeriod)
	err := r.db.WithContext(ctx).
		Where("status IN ? AND end_time < ?", []domain.ReservationStatus{domain.ReservationStatusPending, domain.ReservationStatusConfirmed}, cutoff).
		Find(&reservations).Error
	return reservations, err
}

func (r *ReservationRepository) FindActiveByUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	var reservations []domain.Reservation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, []domain.ReservationStatus{domain.ReservationStatusPending, domain.ReservationStatusConfirmed, domain.ReservationStatusActive}).
		Find(&reservations).Error
	return reservations, err
}
