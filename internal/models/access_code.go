package models

import (
	"time"

	"github.com/google/uuid"
)

// AccessCode is a one-time numeric second factor bound to a delivery and
// recipient email.
type AccessCode struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	DeliveryID     uuid.UUID  `json:"deliveryId" gorm:"type:uuid;index;not null"`
	RecipientEmail string     `json:"recipientEmail" gorm:"not null"`
	Code           string     `json:"-" gorm:"not null"`
	CreatedAt      time.Time  `json:"createdAt" gorm:"not null"`
	ExpiresAt      time.Time  `json:"expiresAt" gorm:"not null"`
	Attempts       int        `json:"attempts" gorm:"not null;default:0"`
	MaxAttempts    int        `json:"maxAttempts" gorm:"not null"`
	VerifiedAt     *time.Time `json:"verifiedAt,omitempty"`
}

func (AccessCode) TableName() string { return "access_codes" }

func (c *AccessCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

func (c *AccessCode) Exhausted() bool {
	return c.Attempts >= c.MaxAttempts
}

func (c *AccessCode) AttemptsRemaining() int {
	return max(0, c.MaxAttempts-c.Attempts)
}
