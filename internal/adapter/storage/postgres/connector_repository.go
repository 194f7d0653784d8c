package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/ports"
)

type ConnectorRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewConnectorRepository(db *gorm.DB, log *zap.Logger) ports.ConnectorRepository {
	return &ConnectorRepository{db: db, log: log}
}

func (r *ConnectorRepository) Save(ctx context.Context, c *domain.Connector) error {
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		r.log.Error("failed to save connector",
			zap.String("station_id", c.StationID), zap.Int("connector_id", c.ConnectorID), zap.Error(err))
		return err
	}
	return nil
}

func (r *ConnectorRepository) FindByStationAndConnector(ctx context.Context, stationID string, connectorID int) (*domain.Connector, error) {
	var c domain.Connector
	err := r.db.WithContext(ctx).First(&c, "station_id = ? AND connector_id = ?", stationID, connectorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ConnectorRepository) FindByStation(ctx context.Context, stationID string) ([]domain.Connector, error) {
	var connectors []domain.Connector
	err := r.db.WithContext(ctx).Where("station_id = ?", stationID).Order("connector_id").Find(&connectors).Error
	return connectors, err
}
