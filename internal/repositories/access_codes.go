package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rohits-web03/dropvault/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccessCodeRepository struct {
	db *gorm.DB
}

func NewAccessCodeRepository(db *gorm.DB) *AccessCodeRepository {
	return &AccessCodeRepository{db: db}
}

func (r *AccessCodeRepository) Create(ctx context.Context, c *models.AccessCode) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("insert access code: %w", err)
	}
	return nil
}

// LatestUnverified returns the most recently created unverified code for the
// pair, or ErrNotFound.
func (r *AccessCodeRepository) LatestUnverified(ctx context.Context, deliveryID uuid.UUID, email string) (*models.AccessCode, error) {
	var c models.AccessCode
	err := r.db.WithContext(ctx).
		Where("delivery_id = ? AND recipient_email = ? AND verified_at IS NULL", deliveryID, email).
		Order("created_at DESC").
		Take(&c).Error
	if err != nil {
		return nil, notFound(err, "latest access code")
	}
	return &c, nil
}

// IncrementAttempts records one failed attempt unless the code is spent or
// exhausted. applied is false when the guard refused; the returned row is the
// current state in that case.
func (r *AccessCodeRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) (*models.AccessCode, bool, error) {
	var rows []models.AccessCode
	err := r.db.WithContext(ctx).
		Model(&rows).
		Clauses(clause.Returning{}).
		Where("id = ? AND verified_at IS NULL AND attempts < max_attempts", id).
		UpdateColumn("attempts", gorm.Expr("attempts + ?", 1)).Error
	if err != nil {
		return nil, false, fmt.Errorf("increment attempts: %w", err)
	}
	if len(rows) == 1 {
		return &rows[0], true, nil
	}

	var c models.AccessCode
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&c).Error; err != nil {
		return nil, false, notFound(err, "get access code")
	}
	return &c, false, nil
}

// MarkVerified spends the code. Only the first caller gets true, and never
// once the attempts are exhausted.
func (r *AccessCodeRepository) MarkVerified(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.AccessCode{}).
		Where("id = ? AND verified_at IS NULL AND attempts < max_attempts", id).
		UpdateColumn("verified_at", at)
	if res.Error != nil {
		return false, fmt.Errorf("mark code verified: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}
