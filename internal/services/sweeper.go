package services

import (
	"context"
	"errors"
	"time"

	"github.com/rohits-web03/dropvault/internal/common"
	"github.com/rohits-web03/dropvault/internal/logging"
)

// Sweeper expires and destroys deliveries nobody touches after their expiry,
// and retries destructions that left files behind.
type Sweeper struct {
	deliveries DeliveryStore
	lifecycle  *LifecycleManager
	destroyer  Destroyer
	log        logging.Logger
	interval   time.Duration
	batch      int
	now        func() time.Time
}

func NewSweeper(deliveries DeliveryStore, lifecycle *LifecycleManager, destroyer Destroyer, log logging.Logger, interval time.Duration, batch int) *Sweeper {
	return &Sweeper{
		deliveries: deliveries,
		lifecycle:  lifecycle,
		destroyer:  destroyer,
		log:        log.With("component", "sweeper"),
		interval:   interval,
		batch:      batch,
		now:        time.Now,
	}
}

// Run sweeps every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info(ctx, "sweeper started", "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			s.log.Info(ctx, "sweeper stopped")
			return
		case <-ticker.C:
			n, err := s.SweepOnce(ctx)
			if err != nil {
				s.log.Error(ctx, "sweep failed", "error", err)
				continue
			}
			if n > 0 {
				s.log.Info(ctx, "sweep finished", "processed", n)
			}
		}
	}
}

// SweepOnce handles one batch of each kind and returns how many deliveries
// it processed.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	expired, err := s.deliveries.ListTimeExpired(ctx, s.now().UTC(), s.batch)
	if err != nil {
		return 0, err
	}

	processed := 0
	for i := range expired {
		d := &expired[i]
		err := s.lifecycle.EnsureActive(ctx, d)
		if err != nil && !errors.Is(err, common.ErrDeliveryExpired) && !errors.Is(err, common.ErrNotActive) {
			s.log.Warn(ctx, "could not expire delivery", "delivery_id", d.ID, "error", err)
			continue
		}
		processed++
	}

	pending, err := s.deliveries.ListPendingDestruction(ctx, s.batch)
	if err != nil {
		return processed, err
	}
	for _, id := range pending {
		if err := s.destroyer.Destroy(ctx, id); err != nil {
			s.log.Warn(ctx, "destruction retry failed", "delivery_id", id, "error", err)
			continue
		}
		processed++
	}
	return processed, nil
}
