package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rohits-web03/dropvault/internal/models"
	"gorm.io/gorm"
)

// AccessLogRepository is append-only.
type AccessLogRepository struct {
	db *gorm.DB
}

func NewAccessLogRepository(db *gorm.DB) *AccessLogRepository {
	return &AccessLogRepository{db: db}
}

func (r *AccessLogRepository) Append(ctx context.Context, e *models.AccessLogEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Metadata == nil {
		e.Metadata = models.Metadata{}
	}
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("append access log: %w", err)
	}
	return nil
}

func (r *AccessLogRepository) ListByDelivery(ctx context.Context, deliveryID uuid.UUID) ([]models.AccessLogEntry, error) {
	var entries []models.AccessLogEntry
	err := r.db.WithContext(ctx).
		Where("delivery_id = ?", deliveryID).
		Order("created_at").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list access logs: %w", err)
	}
	return entries, nil
}
