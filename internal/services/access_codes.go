package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rohits-web03/dropvault/internal/common"
	"github.com/rohits-web03/dropvault/internal/logging"
	"github.com/rohits-web03/dropvault/internal/models"
	"github.com/rohits-web03/dropvault/internal/utils"
)

const codeDigits = 6

// CodePolicy configures access-code issuance and verification.
type CodePolicy struct {
	TTL               time.Duration
	MaxAttempts       int
	RequestsPerWindow int
	RequestWindow     time.Duration
}

// VerifyResult is returned on a successful verification.
type VerifyResult struct {
	Verified          bool      `json:"verified"`
	AttemptsRemaining int       `json:"attemptsRemaining"`
	Grant             string    `json:"grant"`
	GrantExpiresAt    time.Time `json:"grantExpiresAt"`
}

// AccessCodeVerifier issues one-time numeric codes and verifies them as a
// second factor.
type AccessCodeVerifier struct {
	deliveries DeliveryStore
	codes      AccessCodeStore
	lifecycle  *LifecycleManager
	notifier   Notifier
	limiter    RateLimiter
	grants     *GrantIssuer
	audit      *Auditor
	log        logging.Logger
	policy     CodePolicy
	now        func() time.Time
	generate   func() (string, error)
}

func NewAccessCodeVerifier(
	deliveries DeliveryStore,
	codes AccessCodeStore,
	lifecycle *LifecycleManager,
	notifier Notifier,
	limiter RateLimiter,
	grants *GrantIssuer,
	audit *Auditor,
	log logging.Logger,
	policy CodePolicy,
) *AccessCodeVerifier {
	return &AccessCodeVerifier{
		deliveries: deliveries,
		codes:      codes,
		lifecycle:  lifecycle,
		notifier:   notifier,
		limiter:    limiter,
		grants:     grants,
		audit:      audit,
		log:        log.With("component", "access_codes"),
		policy:     policy,
		now:        time.Now,
		generate:   func() (string, error) { return utils.GenerateNumericCode(codeDigits) },
	}
}

// RequestCode issues a fresh code for the delivery's recipient and hands it
// to the notifier. Older unverified codes are simply superseded.
func (v *AccessCodeVerifier) RequestCode(ctx context.Context, deliveryID uuid.UUID, email string, actor Actor) error {
	email = NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("email is required: %w", common.ErrInvalidInput)
	}

	d, err := v.deliveries.GetByID(ctx, deliveryID)
	if err != nil {
		return err
	}
	if email != NormalizeEmail(d.RecipientEmail) {
		v.audit.Record(ctx, deliveryID, models.ActionCodeRequested, actor, false, models.Metadata{"reason": "email_mismatch"})
		return common.ErrUnauthorized
	}
	if err := v.lifecycle.EnsureActive(ctx, d); err != nil {
		return err
	}

	allowed, err := v.limiter.Allow(ctx, "access-code:"+deliveryID.String()+":"+email, v.policy.RequestsPerWindow, v.policy.RequestWindow)
	if err != nil {
		// Fail open while the limiter is down.
		v.log.Warn(ctx, "rate limiter unavailable", "delivery_id", deliveryID, "error", err)
		allowed = true
	}
	if !allowed {
		return common.ErrRateLimited
	}

	code, err := v.generate()
	if err != nil {
		return fmt.Errorf("generate access code: %w", err)
	}

	now := v.now().UTC()
	row := &models.AccessCode{
		DeliveryID:     deliveryID,
		RecipientEmail: email,
		Code:           code,
		CreatedAt:      now,
		ExpiresAt:      now.Add(v.policy.TTL),
		MaxAttempts:    v.policy.MaxAttempts,
	}
	if err := v.codes.Create(ctx, row); err != nil {
		return err
	}
	v.audit.Record(ctx, deliveryID, models.ActionCodeRequested, actor, true, nil)

	err = v.notifier.SendAccessCode(ctx, models.AccessCodeNotice{
		DeliveryID:    deliveryID,
		Email:         email,
		Code:          code,
		DeliveryTitle: d.Title,
		ExpiresAt:     row.ExpiresAt,
	})
	if err != nil {
		v.log.Error(ctx, "access code notification failed", "delivery_id", deliveryID, "error", err)
	}
	return nil
}

// VerifyCode checks code against the most recent unverified code for the
// pair. Failures carry the remaining attempt count via
// *common.VerificationError; running out of attempts expires and destroys
// the delivery.
func (v *AccessCodeVerifier) VerifyCode(ctx context.Context, deliveryID uuid.UUID, email, code string, actor Actor) (VerifyResult, error) {
	email = NormalizeEmail(email)

	d, err := v.deliveries.GetByID(ctx, deliveryID)
	if err != nil {
		return VerifyResult{}, err
	}
	if err := v.lifecycle.EnsureActive(ctx, d); err != nil {
		return VerifyResult{}, err
	}

	row, err := v.codes.LatestUnverified(ctx, deliveryID, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return VerifyResult{}, fmt.Errorf("no valid access code: %w", common.ErrNotFound)
		}
		return VerifyResult{}, err
	}

	if row.Expired(v.now()) {
		v.recordFailure(ctx, deliveryID, actor, "expired", row.AttemptsRemaining())
		return VerifyResult{}, common.ErrCodeExpired
	}

	if row.Exhausted() {
		return VerifyResult{}, v.exhaust(ctx, deliveryID, actor)
	}

	if subtle.ConstantTimeCompare([]byte(code), []byte(row.Code)) != 1 {
		return VerifyResult{}, v.wrongCode(ctx, deliveryID, row.ID, actor)
	}

	spent, err := v.codes.MarkVerified(ctx, row.ID, v.now().UTC())
	if err != nil {
		return VerifyResult{}, err
	}
	if !spent {
		// Another request verified or exhausted this code first.
		return VerifyResult{}, fmt.Errorf("no valid access code: %w", common.ErrNotFound)
	}

	grant, grantExp, err := v.grants.Issue(deliveryID, email)
	if err != nil {
		return VerifyResult{}, err
	}
	v.audit.Record(ctx, deliveryID, models.ActionCodeVerified, actor, true, nil)

	return VerifyResult{
		Verified:          true,
		AttemptsRemaining: row.AttemptsRemaining(),
		Grant:             grant,
		GrantExpiresAt:    grantExp,
	}, nil
}

func (v *AccessCodeVerifier) wrongCode(ctx context.Context, deliveryID, codeID uuid.UUID, actor Actor) error {
	row, applied, err := v.codes.IncrementAttempts(ctx, codeID)
	if err != nil {
		return err
	}
	if !applied {
		if row.VerifiedAt != nil {
			return fmt.Errorf("no valid access code: %w", common.ErrNotFound)
		}
		return v.exhaust(ctx, deliveryID, actor)
	}

	remaining := row.AttemptsRemaining()
	if remaining <= 0 {
		return v.exhaust(ctx, deliveryID, actor)
	}
	v.recordFailure(ctx, deliveryID, actor, "invalid_code", remaining)
	return &common.VerificationError{AttemptsRemaining: remaining, Err: common.ErrInvalidCode}
}

func (v *AccessCodeVerifier) exhaust(ctx context.Context, deliveryID uuid.UUID, actor Actor) error {
	v.recordFailure(ctx, deliveryID, actor, "max_attempts", 0)
	if err := v.lifecycle.ExhaustVerification(ctx, deliveryID); err != nil {
		v.log.Error(ctx, "verification exhaustion incomplete", "delivery_id", deliveryID, "error", err)
	}
	return &common.VerificationError{AttemptsRemaining: 0, Err: common.ErrMaxAttemptsReached}
}

func (v *AccessCodeVerifier) recordFailure(ctx context.Context, deliveryID uuid.UUID, actor Actor, reason string, remaining int) {
	v.audit.Record(ctx, deliveryID, models.ActionCodeVerified, actor, false, models.Metadata{
		"reason":             reason,
		"attempts_remaining": remaining,
	})
}
