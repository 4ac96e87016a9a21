package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/rohits-web03/dropvault/internal/logging"
	"github.com/rohits-web03/dropvault/internal/models"
)

// Auditor appends access log entries. Write failures are logged and never
// fail the surrounding request.
type Auditor struct {
	logs AccessLogStore
	log  logging.Logger
}

func NewAuditor(logs AccessLogStore, log logging.Logger) *Auditor {
	return &Auditor{logs: logs, log: log}
}

func (a *Auditor) Record(ctx context.Context, deliveryID uuid.UUID, action models.AccessAction, actor Actor, success bool, meta models.Metadata) {
	entry := &models.AccessLogEntry{
		DeliveryID: deliveryID,
		Action:     action,
		IP:         actor.IP,
		UserAgent:  actor.UserAgent,
		Success:    success,
		Metadata:   meta,
	}
	if err := a.logs.Append(ctx, entry); err != nil {
		a.log.Error(ctx, "audit append failed", "delivery_id", deliveryID, "action", action, "error", err)
	}
}
