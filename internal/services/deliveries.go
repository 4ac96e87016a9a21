package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rohits-web03/dropvault/internal/common"
	"github.com/rohits-web03/dropvault/internal/logging"
	"github.com/rohits-web03/dropvault/internal/models"
	"github.com/rohits-web03/dropvault/internal/utils"
)

// DeliveryPolicy configures the delivery facade.
type DeliveryPolicy struct {
	RequireAccessCode bool
	DefaultTTL        time.Duration
	MaxUploadBytes    int64
	PresignTTL        time.Duration
}

type CreateInput struct {
	Title          string
	Message        string
	RecipientEmail string
	MaxViews       int
	MaxDownloads   int
	TTL            time.Duration
}

// Upload is one file of a new delivery.
type Upload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// CreatedDelivery is returned to the sender; Token is the share-link token.
type CreatedDelivery struct {
	Delivery *models.Delivery `json:"delivery"`
	Token    string           `json:"token"`
}

type DownloadResult struct {
	File    models.DeliveryFile
	Content []byte
}

// AccessReport is the compliance view of a delivery's audit trail.
type AccessReport struct {
	DeliveryID uuid.UUID                   `json:"deliveryId"`
	Status     models.DeliveryStatus       `json:"status"`
	Entries    []models.AccessLogEntry     `json:"entries"`
	Counts     map[models.AccessAction]int `json:"counts"`
}

// DeliveryService is the request-facing surface. It routes every access
// through gate, lifecycle and counters in that order.
type DeliveryService struct {
	deliveries DeliveryStore
	files      FileStore
	blobs      BlobStore
	logs       AccessLogStore
	gate       AccessGate
	counters   *CounterService
	lifecycle  *LifecycleManager
	destroyer  Destroyer
	grants     *GrantIssuer
	audit      *Auditor
	log        logging.Logger
	policy     DeliveryPolicy
	now        func() time.Time
}

func NewDeliveryService(
	deliveries DeliveryStore,
	files FileStore,
	blobs BlobStore,
	logs AccessLogStore,
	gate AccessGate,
	counters *CounterService,
	lifecycle *LifecycleManager,
	destroyer Destroyer,
	grants *GrantIssuer,
	audit *Auditor,
	log logging.Logger,
	policy DeliveryPolicy,
) *DeliveryService {
	return &DeliveryService{
		deliveries: deliveries,
		files:      files,
		blobs:      blobs,
		logs:       logs,
		gate:       gate,
		counters:   counters,
		lifecycle:  lifecycle,
		destroyer:  destroyer,
		grants:     grants,
		audit:      audit,
		log:        log.With("component", "deliveries"),
		policy:     policy,
		now:        time.Now,
	}
}

func (s *DeliveryService) validate(in *CreateInput, uploads []Upload) error {
	in.Title = strings.TrimSpace(in.Title)
	in.RecipientEmail = NormalizeEmail(in.RecipientEmail)

	switch {
	case in.Title == "":
		return fmt.Errorf("title is required: %w", common.ErrInvalidInput)
	case in.RecipientEmail == "":
		return fmt.Errorf("recipient email is required: %w", common.ErrInvalidInput)
	case in.MaxViews < 1 || in.MaxDownloads < 1:
		return fmt.Errorf("view and download limits must be at least 1: %w", common.ErrInvalidInput)
	case in.TTL < 0:
		return fmt.Errorf("ttl must be positive: %w", common.ErrInvalidInput)
	case len(uploads) == 0:
		return fmt.Errorf("no files provided: %w", common.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(in.RecipientEmail); err != nil {
		return fmt.Errorf("recipient email is invalid: %w", common.ErrInvalidInput)
	}
	if in.TTL == 0 {
		in.TTL = s.policy.DefaultTTL
	}
	return nil
}

// Create stores the uploads and inserts the delivery with its files. Blobs
// already written are removed again if a later step fails.
func (s *DeliveryService) Create(ctx context.Context, senderID uuid.UUID, in CreateInput, uploads []Upload) (*CreatedDelivery, error) {
	if err := s.validate(&in, uploads); err != nil {
		return nil, err
	}

	token, err := utils.GenerateSecureToken(32) // 256-bit token
	if err != nil {
		return nil, fmt.Errorf("generate share token: %w", err)
	}

	now := s.now().UTC()
	d := &models.Delivery{
		ID:             uuid.New(),
		SenderID:       senderID,
		Token:          token,
		Title:          in.Title,
		RecipientEmail: in.RecipientEmail,
		CreatedAt:      now,
		ExpiresAt:      now.Add(in.TTL),
		Status:         models.StatusActive,
		MaxViews:       in.MaxViews,
		MaxDownloads:   in.MaxDownloads,
	}
	if msg := strings.TrimSpace(in.Message); msg != "" {
		d.Message = &msg
	}

	var stored []string
	cleanup := func() {
		for _, key := range stored {
			if err := s.blobs.DeleteObject(context.WithoutCancel(ctx), key); err != nil {
				s.log.Warn(ctx, "orphaned upload", "key", key, "error", err)
			}
		}
	}

	for i, up := range uploads {
		data, err := io.ReadAll(io.LimitReader(up.Content, s.policy.MaxUploadBytes-d.TotalSize+1))
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("read upload %d: %w", i, err)
		}
		d.TotalSize += int64(len(data))
		if d.TotalSize > s.policy.MaxUploadBytes {
			cleanup()
			return nil, fmt.Errorf("total file size exceeds %d bytes: %w", s.policy.MaxUploadBytes, common.ErrInvalidInput)
		}

		sum := sha256.Sum256(data)
		key := fmt.Sprintf("deliveries/%s/%s", d.ID, uuid.New())
		contentType := up.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if err := s.blobs.PutObject(ctx, key, data, contentType); err != nil {
			cleanup()
			return nil, err
		}
		stored = append(stored, key)

		d.Files = append(d.Files, models.DeliveryFile{
			Filename:    up.Filename,
			ContentType: contentType,
			ContentHash: hex.EncodeToString(sum[:]),
			Size:        int64(len(data)),
			StorageKey:  key,
			Index:       i,
		})
	}

	if err := s.deliveries.Create(ctx, d); err != nil {
		cleanup()
		return nil, err
	}

	s.log.Info(ctx, "delivery created", "delivery_id", d.ID, "files", len(d.Files), "total_size", d.TotalSize)
	return &CreatedDelivery{Delivery: d, Token: token}, nil
}

// GetForViewer returns the delivery as the viewer may see it. A viewer whose
// email does not match gets a masked view, not an error.
func (s *DeliveryService) GetForViewer(ctx context.Context, id uuid.UUID, token, email string) (models.DeliveryView, error) {
	d, err := s.deliveries.GetByID(ctx, id)
	if err != nil {
		return models.DeliveryView{}, err
	}
	if !s.gate.CheckAccess(d, token, email) {
		return models.DeliveryView{}, common.ErrUnauthorized
	}
	if err := s.lifecycle.EnsureActive(ctx, d); err != nil {
		return models.DeliveryView{}, err
	}

	files, err := s.files.ListLive(ctx, id)
	if err != nil {
		return models.DeliveryView{}, err
	}
	return s.gate.MaskForViewer(d, files, email), nil
}

// RecordView counts one recipient view. The sender viewing their own
// delivery is audited but not counted.
func (s *DeliveryService) RecordView(ctx context.Context, id uuid.UUID, token, email string, actor Actor) (*models.Delivery, error) {
	d, err := s.deliveries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.UserID != uuid.Nil && actor.UserID == d.SenderID {
		s.audit.Record(ctx, id, models.ActionView, actor, true, models.Metadata{"viewer_type": "sender"})
		return d, nil
	}

	if !s.gate.CheckAccess(d, token, email) {
		s.audit.Record(ctx, id, models.ActionView, actor, false, models.Metadata{"viewer_type": "recipient", "reason": "unauthorized"})
		return nil, common.ErrUnauthorized
	}
	if err := s.lifecycle.EnsureActive(ctx, d); err != nil {
		s.audit.Record(ctx, id, models.ActionView, actor, false, models.Metadata{"viewer_type": "recipient", "reason": "not_active"})
		return nil, err
	}

	updated, err := s.counters.IncrementViews(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrLimitReached) {
			s.finishAfterView(ctx, updated)
		}
		s.audit.Record(ctx, id, models.ActionView, actor, false, models.Metadata{"viewer_type": "recipient", "reason": "limit"})
		return nil, err
	}

	s.audit.Record(ctx, id, models.ActionView, actor, true, models.Metadata{"viewer_type": "recipient"})
	s.finishAfterView(ctx, updated)
	return updated, nil
}

func (s *DeliveryService) finishAfterView(ctx context.Context, d *models.Delivery) {
	if err := s.lifecycle.AfterView(ctx, d); err != nil {
		s.log.Error(ctx, "view limit expiry failed", "delivery_id", d.ID, "error", err)
	}
}

// Download returns file index of the delivery to its recipient, counting one
// download. Reaching the limit destroys the delivery after the content has
// been read.
func (s *DeliveryService) Download(ctx context.Context, id uuid.UUID, index int, email, grant string, actor Actor) (*DownloadResult, error) {
	d, err := s.deliveries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fail := func(reason string, err error) (*DownloadResult, error) {
		s.audit.Record(ctx, id, models.ActionDownload, actor, false, models.Metadata{"reason": reason, "index": index})
		return nil, err
	}

	if !s.gate.IsRecipient(d, email) {
		return fail("email_mismatch", common.ErrUnauthorized)
	}
	if err := s.lifecycle.EnsureActive(ctx, d); err != nil {
		return fail("not_active", err)
	}
	if s.policy.RequireAccessCode {
		if err := s.grants.Validate(grant, id, email); err != nil {
			return fail("grant", err)
		}
	}

	file, err := s.files.GetByIndex(ctx, id, index)
	if err != nil {
		return fail("file", err)
	}
	content, err := s.blobs.GetObject(ctx, file.StorageKey)
	if err != nil {
		return fail("blob", err)
	}

	updated, err := s.counters.IncrementDownloads(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrLimitReached) {
			s.finishAfterDownload(ctx, updated)
		}
		return fail("limit", err)
	}

	s.audit.Record(ctx, id, models.ActionDownload, actor, true, models.Metadata{"index": index, "filename": file.Filename})
	s.finishAfterDownload(ctx, updated)
	return &DownloadResult{File: *file, Content: content}, nil
}

func (s *DeliveryService) finishAfterDownload(ctx context.Context, d *models.Delivery) {
	if err := s.lifecycle.AfterDownload(ctx, d); err != nil {
		s.log.Error(ctx, "download limit destruction failed", "delivery_id", d.ID, "error", err)
	}
}

func (s *DeliveryService) owned(ctx context.Context, id, senderID uuid.UUID) (*models.Delivery, error) {
	d, err := s.deliveries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.SenderID != senderID {
		return nil, common.ErrForbidden
	}
	return d, nil
}

func (s *DeliveryService) Revoke(ctx context.Context, id, senderID uuid.UUID, actor Actor) error {
	return s.lifecycle.Revoke(ctx, id, senderID, actor)
}

// Delete destroys the delivery's files and removes it with its audit trail.
func (s *DeliveryService) Delete(ctx context.Context, id, senderID uuid.UUID) error {
	if _, err := s.owned(ctx, id, senderID); err != nil {
		return err
	}
	if err := s.destroyer.Destroy(ctx, id); err != nil {
		return err
	}
	if err := s.deliveries.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "delivery deleted", "delivery_id", id)
	return nil
}

func (s *DeliveryService) ListBySender(ctx context.Context, senderID uuid.UUID) ([]models.Delivery, error) {
	return s.deliveries.ListBySender(ctx, senderID)
}

func (s *DeliveryService) AccessLog(ctx context.Context, id, senderID uuid.UUID) (*AccessReport, error) {
	d, err := s.owned(ctx, id, senderID)
	if err != nil {
		return nil, err
	}
	entries, err := s.logs.ListByDelivery(ctx, id)
	if err != nil {
		return nil, err
	}

	report := &AccessReport{
		DeliveryID: id,
		Status:     d.Status,
		Entries:    entries,
		Counts:     make(map[models.AccessAction]int),
	}
	for _, e := range entries {
		report.Counts[e.Action]++
	}
	return report, nil
}

// FileURL gives the sender a presigned link to one of their own files. It
// does not touch the counters.
func (s *DeliveryService) FileURL(ctx context.Context, id uuid.UUID, index int, senderID uuid.UUID) (string, error) {
	if _, err := s.owned(ctx, id, senderID); err != nil {
		return "", err
	}
	file, err := s.files.GetByIndex(ctx, id, index)
	if err != nil {
		return "", err
	}
	return s.blobs.PresignGet(ctx, file.StorageKey, s.policy.PresignTTL)
}
