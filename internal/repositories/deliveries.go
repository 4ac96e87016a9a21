package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rohits-web03/dropvault/internal/common"
	"github.com/rohits-web03/dropvault/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DeliveryRepository struct {
	db *gorm.DB
}

func NewDeliveryRepository(db *gorm.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

// counterColumns maps a counter to its (current, max) column pair.
var counterColumns = map[models.Counter][2]string{
	models.CounterViews:     {"current_views", "max_views"},
	models.CounterDownloads: {"current_downloads", "max_downloads"},
}

// Create inserts the delivery and its file rows in one transaction.
func (r *DeliveryRepository) Create(ctx context.Context, d *models.Delivery) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Files").Create(d).Error; err != nil {
			return fmt.Errorf("insert delivery: %w", err)
		}
		for i := range d.Files {
			f := &d.Files[i]
			f.DeliveryID = d.ID
			if f.ID == uuid.Nil {
				f.ID = uuid.New()
			}
			if err := tx.Create(f).Error; err != nil {
				return fmt.Errorf("insert delivery file %d: %w", f.Index, err)
			}
		}
		return nil
	})
}

func (r *DeliveryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	var d models.Delivery
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	if err != nil {
		return nil, notFound(err, "get delivery")
	}
	return &d, nil
}

// IncrementCounter bumps the counter in a single guarded statement:
//
//	UPDATE deliveries SET current_x = current_x + 1
//	WHERE id = ? AND status = 'active' AND current_x < max_x RETURNING *
//
// applied is false when the guard refused the increment; the returned row is
// then the current state, re-read so the caller can tell why.
func (r *DeliveryRepository) IncrementCounter(ctx context.Context, id uuid.UUID, c models.Counter) (*models.Delivery, bool, error) {
	cols, ok := counterColumns[c]
	if !ok {
		return nil, false, fmt.Errorf("unknown counter %q: %w", c, common.ErrInvalidInput)
	}
	cur, lim := cols[0], cols[1]

	var rows []models.Delivery
	err := r.db.WithContext(ctx).
		Model(&rows).
		Clauses(clause.Returning{}).
		Where("id = ? AND status = ? AND "+cur+" < "+lim, id, models.StatusActive).
		UpdateColumns(map[string]any{
			cur:          gorm.Expr(cur+" + ?", 1),
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return nil, false, fmt.Errorf("increment %s: %w", c, err)
	}
	if len(rows) == 1 {
		return &rows[0], true, nil
	}

	d, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return d, false, nil
}

// UpdateStatus moves the row from `from` to `to` only if it is still in
// `from`. changed reports whether this call performed the transition.
func (r *DeliveryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.DeliveryStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("id = ? AND status = ?", id, from).
		UpdateColumns(map[string]any{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("update delivery status: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ExpireForDestruction moves an active delivery to expired and stamps
// destroy_requested_at in the same statement. An earlier stamp is kept.
func (r *DeliveryRepository) ExpireForDestruction(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("id = ? AND status = ?", id, models.StatusActive).
		UpdateColumns(map[string]any{
			"status":               models.StatusExpired,
			"destroy_requested_at": gorm.Expr("COALESCE(destroy_requested_at, ?)", at),
			"updated_at":           time.Now().UTC(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("expire delivery for destruction: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// MarkDestroyRequested stamps destroy_requested_at once; later calls keep the
// first timestamp.
func (r *DeliveryRepository) MarkDestroyRequested(ctx context.Context, id uuid.UUID, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("id = ? AND destroy_requested_at IS NULL", id).
		UpdateColumn("destroy_requested_at", at).Error
	if err != nil {
		return fmt.Errorf("mark destroy requested: %w", err)
	}
	return nil
}

func (r *DeliveryRepository) ListBySender(ctx context.Context, senderID uuid.UUID) ([]models.Delivery, error) {
	var ds []models.Delivery
	err := r.db.WithContext(ctx).
		Preload("Files", "deleted = ?", false).
		Where("sender_id = ?", senderID).
		Order("created_at DESC").
		Find(&ds).Error
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	return ds, nil
}

// ListTimeExpired returns active deliveries whose expiry has passed.
func (r *DeliveryRepository) ListTimeExpired(ctx context.Context, now time.Time, limit int) ([]models.Delivery, error) {
	var ds []models.Delivery
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", models.StatusActive, now).
		Order("expires_at").
		Limit(limit).
		Find(&ds).Error
	if err != nil {
		return nil, fmt.Errorf("list time-expired deliveries: %w", err)
	}
	return ds, nil
}

// ListPendingDestruction returns ids of deliveries whose destruction started
// but left file rows undeleted.
func (r *DeliveryRepository) ListPendingDestruction(ctx context.Context, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("destroy_requested_at IS NOT NULL").
		Where("EXISTS (SELECT 1 FROM delivery_files f WHERE f.delivery_id = deliveries.id AND f.deleted = false)").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list pending destruction: %w", err)
	}
	return ids, nil
}

// Delete hard-deletes the delivery; files, codes and logs cascade.
func (r *DeliveryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Delivery{})
	if res.Error != nil {
		return fmt.Errorf("delete delivery: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete delivery: %w", common.ErrNotFound)
	}
	return nil
}
