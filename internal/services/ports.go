package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rohits-web03/dropvault/internal/models"
)

// DeliveryStore is the relational store for deliveries. Counter increments
// and status changes are single-row conditional statements.
type DeliveryStore interface {
	Create(ctx context.Context, d *models.Delivery) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error)
	IncrementCounter(ctx context.Context, id uuid.UUID, c models.Counter) (*models.Delivery, bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.DeliveryStatus) (bool, error)
	ExpireForDestruction(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	MarkDestroyRequested(ctx context.Context, id uuid.UUID, at time.Time) error
	ListBySender(ctx context.Context, senderID uuid.UUID) ([]models.Delivery, error)
	ListTimeExpired(ctx context.Context, now time.Time, limit int) ([]models.Delivery, error)
	ListPendingDestruction(ctx context.Context, limit int) ([]uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type FileStore interface {
	ListLive(ctx context.Context, deliveryID uuid.UUID) ([]models.DeliveryFile, error)
	GetByIndex(ctx context.Context, deliveryID uuid.UUID, index int) (*models.DeliveryFile, error)
	MarkDeleted(ctx context.Context, ids []uuid.UUID) error
}

type AccessCodeStore interface {
	Create(ctx context.Context, c *models.AccessCode) error
	LatestUnverified(ctx context.Context, deliveryID uuid.UUID, email string) (*models.AccessCode, error)
	IncrementAttempts(ctx context.Context, id uuid.UUID) (*models.AccessCode, bool, error)
	MarkVerified(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

type AccessLogStore interface {
	Append(ctx context.Context, e *models.AccessLogEntry) error
	ListByDelivery(ctx context.Context, deliveryID uuid.UUID) ([]models.AccessLogEntry, error)
}

// BlobStore holds file contents. DeleteObject must treat a missing key as
// success; GetObject reports one as common.ErrNotFound.
type BlobStore interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
	GetObject(ctx context.Context, key string) ([]byte, error)
	DeleteObject(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Notifier delivers access codes to recipients.
type Notifier interface {
	SendAccessCode(ctx context.Context, n models.AccessCodeNotice) error
}

type EventPublisher interface {
	PublishLifecycle(ctx context.Context, n models.LifecycleNotice) error
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Destroyer erases a delivery's files and leaves it expired.
type Destroyer interface {
	Destroy(ctx context.Context, id uuid.UUID) error
}

// Actor describes who performed a request, for auditing.
type Actor struct {
	IP        string
	UserAgent string
	UserID    uuid.UUID // uuid.Nil when anonymous
}
