package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/rohits-web03/dropvault/internal/logging"
	"github.com/rohits-web03/dropvault/internal/models"
)

// DestructionCoordinator erases a delivery's blobs and leaves the delivery
// expired. Concurrent calls for one delivery share a single run; repeated
// calls converge on the same end state.
type DestructionCoordinator struct {
	deliveries DeliveryStore
	files      FileStore
	blobs      BlobStore
	audit      *Auditor
	events     EventPublisher
	log        logging.Logger
	now        func() time.Time
	group      singleflight.Group
}

func NewDestructionCoordinator(deliveries DeliveryStore, files FileStore, blobs BlobStore, audit *Auditor, events EventPublisher, log logging.Logger) *DestructionCoordinator {
	return &DestructionCoordinator{
		deliveries: deliveries,
		files:      files,
		blobs:      blobs,
		audit:      audit,
		events:     events,
		log:        log.With("component", "destruction"),
		now:        time.Now,
	}
}

// Destroy records that destruction is owed, deletes every live file blob
// (best effort), flags the deleted rows and expires the delivery. Nothing is
// deleted unless the marker was written. File failures are logged and left
// for the sweeper.
func (c *DestructionCoordinator) Destroy(ctx context.Context, id uuid.UUID) error {
	_, err, _ := c.group.Do(id.String(), func() (any, error) {
		return nil, c.destroy(ctx, id)
	})
	return err
}

func (c *DestructionCoordinator) destroy(ctx context.Context, id uuid.UUID) error {
	log := c.log.With("delivery_id", id)

	if err := c.deliveries.MarkDestroyRequested(ctx, id, c.now().UTC()); err != nil {
		return fmt.Errorf("mark destruction start: %w", err)
	}

	files, err := c.files.ListLive(ctx, id)
	if err != nil {
		log.Error(ctx, "could not list files for destruction", "error", err)
	}

	var (
		deleted  []uuid.UUID
		failures []error
	)
	for _, f := range files {
		if err := c.blobs.DeleteObject(ctx, f.StorageKey); err != nil {
			failures = append(failures, fmt.Errorf("file %d: %w", f.Index, err))
			continue
		}
		deleted = append(deleted, f.ID)
	}
	if len(failures) > 0 {
		log.Warn(ctx, "some files were not deleted", "failed", len(failures), "error", errors.Join(failures...))
	}
	if err := c.files.MarkDeleted(ctx, deleted); err != nil {
		log.Error(ctx, "could not flag deleted files", "error", err)
	}

	changed, err := c.deliveries.UpdateStatus(ctx, id, models.StatusActive, models.StatusExpired)
	if err != nil {
		return fmt.Errorf("expire destroyed delivery: %w", err)
	}

	c.audit.Record(ctx, id, models.ActionDestroyed, Actor{}, len(failures) == 0, models.Metadata{
		"files_deleted": len(deleted),
		"files_failed":  len(failures),
	})
	if changed {
		c.audit.Record(ctx, id, models.ActionExpired, Actor{}, true, models.Metadata{"reason": "destroyed"})
		if err := c.events.PublishLifecycle(ctx, models.LifecycleNotice{
			DeliveryID: id,
			From:       models.StatusActive,
			To:         models.StatusExpired,
			Reason:     "destroyed",
			At:         c.now().UTC(),
		}); err != nil {
			log.Warn(ctx, "lifecycle event not published", "error", err)
		}
	}
	log.Info(ctx, "delivery destroyed", "files_deleted", len(deleted), "files_failed", len(failures))
	return nil
}
