package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rohits-web03/dropvault/internal/common"
	"github.com/rohits-web03/dropvault/internal/logging"
	"github.com/rohits-web03/dropvault/internal/models"
)

// Expiry reasons recorded in audit metadata and lifecycle events.
const (
	ReasonTime         = "time"
	ReasonViewLimit    = "view_limit"
	ReasonDownload     = "download_limit"
	ReasonVerification = "verification_exhausted"
	ReasonSender       = "sender"
)

// LifecycleManager owns status transitions. Every transition is a
// conditional single-row update from active; losing a race to another
// transition into the same terminal state is a success.
type LifecycleManager struct {
	deliveries DeliveryStore
	destroyer  Destroyer
	audit      *Auditor
	events     EventPublisher
	log        logging.Logger
	now        func() time.Time
}

func NewLifecycleManager(deliveries DeliveryStore, destroyer Destroyer, audit *Auditor, events EventPublisher, log logging.Logger) *LifecycleManager {
	return &LifecycleManager{
		deliveries: deliveries,
		destroyer:  destroyer,
		audit:      audit,
		events:     events,
		log:        log.With("component", "lifecycle"),
		now:        time.Now,
	}
}

var eventTarget = map[models.LifecycleEvent]models.DeliveryStatus{
	models.EventExpire: models.StatusExpired,
	models.EventRevoke: models.StatusRevoked,
}

// EnsureActive rejects terminal deliveries. An active delivery past its
// expiry is expired and destroyed here, and the request is rejected. d.Status
// is refreshed to what the store holds afterwards.
func (m *LifecycleManager) EnsureActive(ctx context.Context, d *models.Delivery) error {
	if d.Status.Terminal() {
		return common.ErrNotActive
	}
	if !d.TimeExpired(m.now()) {
		return nil
	}

	status, err := m.expireAndDestroy(ctx, d.ID, ReasonTime)
	if err != nil {
		m.log.Error(ctx, "time expiry incomplete", "delivery_id", d.ID, "error", err)
	}
	if status != "" {
		d.Status = status
	}
	if d.Status == models.StatusRevoked {
		return common.ErrNotActive
	}
	return common.ErrDeliveryExpired
}

// Expire moves an active delivery to expired. Already-terminal deliveries
// are left unchanged.
func (m *LifecycleManager) Expire(ctx context.Context, id uuid.UUID, reason string) error {
	_, _, err := m.transition(ctx, id, models.EventExpire, reason, Actor{}, false)
	return err
}

// Revoke is sender-only and legal from active. Re-revoking is a no-op;
// revoking an expired delivery is ErrInvalidState. Files are kept.
func (m *LifecycleManager) Revoke(ctx context.Context, id, senderID uuid.UUID, actor Actor) error {
	d, err := m.deliveries.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if d.SenderID != senderID {
		return common.ErrForbidden
	}
	_, _, err = m.transition(ctx, id, models.EventRevoke, ReasonSender, actor, false)
	return err
}

// AfterView expires the delivery once the view limit is reached. Files are
// not destroyed on this path.
func (m *LifecycleManager) AfterView(ctx context.Context, d *models.Delivery) error {
	if !d.ViewLimitReached() {
		return nil
	}
	return m.Expire(ctx, d.ID, ReasonViewLimit)
}

// AfterDownload expires and destroys the delivery once the download limit is
// reached.
func (m *LifecycleManager) AfterDownload(ctx context.Context, d *models.Delivery) error {
	if !d.DownloadLimitReached() {
		return nil
	}
	_, err := m.expireAndDestroy(ctx, d.ID, ReasonDownload)
	return err
}

// ExhaustVerification expires and destroys a delivery whose access code ran
// out of attempts. A revoked delivery is left alone.
func (m *LifecycleManager) ExhaustVerification(ctx context.Context, id uuid.UUID) error {
	_, err := m.expireAndDestroy(ctx, id, ReasonVerification)
	return err
}

// expireAndDestroy returns the status the delivery ended in. The expiry and
// the destruction marker are written together, so the sweeper finishes the
// job if Destroy fails part way.
func (m *LifecycleManager) expireAndDestroy(ctx context.Context, id uuid.UUID, reason string) (models.DeliveryStatus, error) {
	status, _, err := m.transition(ctx, id, models.EventExpire, reason, Actor{}, true)
	if err != nil {
		return "", err
	}
	if status == models.StatusRevoked {
		return status, nil
	}
	return status, m.destroyer.Destroy(ctx, id)
}

// transition applies event to the delivery and returns its resulting status.
// changed reports whether this call moved it. With destroy set, an expiry
// also records that the files are owed destruction.
func (m *LifecycleManager) transition(ctx context.Context, id uuid.UUID, event models.LifecycleEvent, reason string, actor Actor, destroy bool) (models.DeliveryStatus, bool, error) {
	target, ok := eventTarget[event]
	if !ok {
		return "", false, fmt.Errorf("%s: %w", event, common.ErrInvalidState)
	}

	var (
		changed bool
		err     error
	)
	if destroy && target == models.StatusExpired {
		changed, err = m.deliveries.ExpireForDestruction(ctx, id, m.now().UTC())
	} else {
		changed, err = m.deliveries.UpdateStatus(ctx, id, models.StatusActive, target)
	}
	if err != nil {
		return "", false, err
	}
	if !changed {
		// Not active any more: decide between no-op and illegal.
		d, err := m.deliveries.GetByID(ctx, id)
		if err != nil {
			return "", false, err
		}
		if _, _, err := models.Transition(d.Status, event); err != nil {
			if errors.Is(err, models.ErrIllegalTransition) {
				return d.Status, false, fmt.Errorf("%s %s delivery: %w", event, d.Status, common.ErrInvalidState)
			}
			return d.Status, false, err
		}
		return d.Status, false, nil
	}

	action := models.ActionExpired
	if target == models.StatusRevoked {
		action = models.ActionRevoked
	}
	m.audit.Record(ctx, id, action, actor, true, models.Metadata{"reason": reason})
	m.publish(ctx, models.LifecycleNotice{
		DeliveryID: id,
		From:       models.StatusActive,
		To:         target,
		Reason:     reason,
		At:         m.now().UTC(),
	})
	m.log.Info(ctx, "delivery transitioned", "delivery_id", id, "to", target, "reason", reason)
	return target, true, nil
}

func (m *LifecycleManager) publish(ctx context.Context, n models.LifecycleNotice) {
	if err := m.events.PublishLifecycle(ctx, n); err != nil {
		m.log.Warn(ctx, "lifecycle event not published", "delivery_id", n.DeliveryID, "error", err)
	}
}
