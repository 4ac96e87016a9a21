package notify

import (
	"context"

	"github.com/rohits-web03/dropvault/internal/logging"
	"github.com/rohits-web03/dropvault/internal/models"
)

// LogSink stands in for the broker in local setups. The code itself is only
// logged at debug level.
type LogSink struct {
	log logging.Logger
}

func NewLogSink(log logging.Logger) *LogSink {
	return &LogSink{log: log.With("component", "notify")}
}

func (s *LogSink) SendAccessCode(ctx context.Context, n models.AccessCodeNotice) error {
	s.log.Info(ctx, "access code issued", "delivery_id", n.DeliveryID, "email", n.Email, "expires_at", n.ExpiresAt)
	s.log.Debug(ctx, "access code value", "delivery_id", n.DeliveryID, "code", n.Code)
	return nil
}

func (s *LogSink) PublishLifecycle(ctx context.Context, n models.LifecycleNotice) error {
	s.log.Info(ctx, "delivery lifecycle", "delivery_id", n.DeliveryID, "from", n.From, "to", n.To, "reason", n.Reason)
	return nil
}

func (s *LogSink) Close() error { return nil }
