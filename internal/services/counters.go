package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rohits-web03/dropvault/internal/common"
	"github.com/rohits-web03/dropvault/internal/models"
)

// CounterService increments usage counters atomically in the store.
type CounterService struct {
	deliveries DeliveryStore
}

func NewCounterService(deliveries DeliveryStore) *CounterService {
	return &CounterService{deliveries: deliveries}
}

func (s *CounterService) IncrementViews(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	return s.increment(ctx, id, models.CounterViews)
}

func (s *CounterService) IncrementDownloads(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	return s.increment(ctx, id, models.CounterDownloads)
}

// increment returns the updated row. When the store refuses the increment
// the current row is returned alongside ErrNotActive or ErrLimitReached so
// the caller can finish the lifecycle step.
func (s *CounterService) increment(ctx context.Context, id uuid.UUID, c models.Counter) (*models.Delivery, error) {
	d, applied, err := s.deliveries.IncrementCounter(ctx, id, c)
	if err != nil {
		return nil, err
	}
	if applied {
		return d, nil
	}
	if d.Status != models.StatusActive {
		return d, fmt.Errorf("increment %s: %w", c, common.ErrNotActive)
	}
	return d, fmt.Errorf("increment %s: %w", c, common.ErrLimitReached)
}
