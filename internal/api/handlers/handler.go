package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rohits-web03/dropvault/internal/api/middleware"
	"github.com/rohits-web03/dropvault/internal/common"
	"github.com/rohits-web03/dropvault/internal/config"
	"github.com/rohits-web03/dropvault/internal/logging"
	"github.com/rohits-web03/dropvault/internal/models"
	"github.com/rohits-web03/dropvault/internal/services"
	"github.com/rohits-web03/dropvault/internal/utils"
)

// UserStore is the sender account store.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Deliveries is the delivery surface the handlers drive.
type Deliveries interface {
	Create(ctx context.Context, senderID uuid.UUID, in services.CreateInput, uploads []services.Upload) (*services.CreatedDelivery, error)
	GetForViewer(ctx context.Context, id uuid.UUID, token, email string) (models.DeliveryView, error)
	RecordView(ctx context.Context, id uuid.UUID, token, email string, actor services.Actor) (*models.Delivery, error)
	Download(ctx context.Context, id uuid.UUID, index int, email, grant string, actor services.Actor) (*services.DownloadResult, error)
	Revoke(ctx context.Context, id, senderID uuid.UUID, actor services.Actor) error
	Delete(ctx context.Context, id, senderID uuid.UUID) error
	ListBySender(ctx context.Context, senderID uuid.UUID) ([]models.Delivery, error)
	AccessLog(ctx context.Context, id, senderID uuid.UUID) (*services.AccessReport, error)
	FileURL(ctx context.Context, id uuid.UUID, index int, senderID uuid.UUID) (string, error)
}

type AccessCodes interface {
	RequestCode(ctx context.Context, deliveryID uuid.UUID, email string, actor services.Actor) error
	VerifyCode(ctx context.Context, deliveryID uuid.UUID, email, code string, actor services.Actor) (services.VerifyResult, error)
}

type Handler struct {
	users      UserStore
	deliveries Deliveries
	codes      AccessCodes
	cfg        config.Config
	log        logging.Logger
}

func New(users UserStore, deliveries Deliveries, codes AccessCodes, cfg config.Config, log logging.Logger) *Handler {
	return &Handler{
		users:      users,
		deliveries: deliveries,
		codes:      codes,
		cfg:        cfg,
		log:        log.With("component", "http"),
	}
}

// GoneMessage is shown for every delivery that can no longer be accessed.
const GoneMessage = "This delivery is no longer available"

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrInvalidCode):
		return http.StatusUnauthorized, "Invalid access code"
	case errors.Is(err, common.ErrMaxAttemptsReached):
		return http.StatusForbidden, "Maximum verification attempts reached"
	case errors.Is(err, common.ErrNotActive),
		errors.Is(err, common.ErrDeliveryExpired),
		errors.Is(err, common.ErrLimitReached):
		return http.StatusGone, GoneMessage
	case errors.Is(err, common.ErrCodeExpired):
		return http.StatusGone, common.ErrCodeExpired.Error()
	case errors.Is(err, common.ErrInvalidState):
		return http.StatusConflict, "Delivery cannot change to that state"
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, common.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many requests, try again later"
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// writeError renders a service error. Verification failures carry the
// remaining attempt count.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}

	var data any
	if left, ok := common.AttemptsRemaining(err); ok {
		data = map[string]int{"attemptsRemaining": left}
	}
	utils.Fail(w, status, msg, data)
}

func badRequest(w http.ResponseWriter, msg string) {
	utils.Fail(w, http.StatusBadRequest, msg, nil)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	return id, err == nil
}

func actorFrom(r *http.Request) services.Actor {
	actor := services.Actor{
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	}
	if id, ok := middleware.UserIDFromContext(r.Context()); ok {
		actor.UserID = id
	}
	return actor
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
