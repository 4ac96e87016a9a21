package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AccessAction string

const (
	ActionView          AccessAction = "view"
	ActionDownload      AccessAction = "download"
	ActionCodeRequested AccessAction = "code_requested"
	ActionCodeVerified  AccessAction = "code_verified"
	ActionRevoked       AccessAction = "revoked"
	ActionExpired       AccessAction = "expired"
	ActionDestroyed     AccessAction = "destroyed"
)

// Metadata is free-form audit context stored as jsonb.
type Metadata map[string]any

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("metadata: unsupported type %T", src)
	}
	return json.Unmarshal(raw, m)
}

// AccessLogEntry is an append-only audit record.
type AccessLogEntry struct {
	ID         uuid.UUID    `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	DeliveryID uuid.UUID    `json:"deliveryId" gorm:"type:uuid;index;not null"`
	Action     AccessAction `json:"action" gorm:"type:text;not null"`
	IP         string       `json:"ip"`
	UserAgent  string       `json:"userAgent"`
	Success    bool         `json:"success" gorm:"not null"`
	Metadata   Metadata     `json:"metadata" gorm:"type:jsonb"`
	CreatedAt  time.Time    `json:"createdAt" gorm:"autoCreateTime"`
}

func (AccessLogEntry) TableName() string { return "access_logs" }
