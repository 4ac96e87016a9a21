package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rohits-web03/dropvault/internal/models"
	"gorm.io/gorm"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

// ListLive returns the delivery's files that have not been destroyed yet,
// ordered by index.
func (r *FileRepository) ListLive(ctx context.Context, deliveryID uuid.UUID) ([]models.DeliveryFile, error) {
	var files []models.DeliveryFile
	err := r.db.WithContext(ctx).
		Where("delivery_id = ? AND deleted = ?", deliveryID, false).
		Order(`"index"`).
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("list delivery files: %w", err)
	}
	return files, nil
}

func (r *FileRepository) GetByIndex(ctx context.Context, deliveryID uuid.UUID, index int) (*models.DeliveryFile, error) {
	var f models.DeliveryFile
	err := r.db.WithContext(ctx).
		Where(`delivery_id = ? AND "index" = ? AND deleted = ?`, deliveryID, index, false).
		First(&f).Error
	if err != nil {
		return nil, notFound(err, "get delivery file")
	}
	return &f, nil
}

// MarkDeleted flags file rows whose blobs are gone. Already-flagged rows are
// left as they are.
func (r *FileRepository) MarkDeleted(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&models.DeliveryFile{}).
		Where("id IN ? AND deleted = ?", ids, false).
		UpdateColumns(map[string]any{
			"deleted":    true,
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("mark files deleted: %w", err)
	}
	return nil
}
