package models

import (
	"time"

	"github.com/google/uuid"
)

type DeliveryStatus string

const (
	StatusActive  DeliveryStatus = "active"
	StatusExpired DeliveryStatus = "expired"
	StatusRevoked DeliveryStatus = "revoked"
)

// Terminal reports whether no further transition may leave this status.
func (s DeliveryStatus) Terminal() bool {
	return s == StatusExpired || s == StatusRevoked
}

type Delivery struct {
	ID               uuid.UUID      `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SenderID         uuid.UUID      `json:"senderId" gorm:"type:uuid;index;not null"`
	Token            string         `json:"-" gorm:"uniqueIndex;not null"` // share-link token
	Title            string         `json:"title" gorm:"not null"`
	Message          *string        `json:"message,omitempty"`
	RecipientEmail   string         `json:"recipientEmail" gorm:"not null"` // trimmed, lower-case
	CreatedAt        time.Time      `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `json:"updatedAt" gorm:"autoUpdateTime"`
	ExpiresAt        time.Time      `json:"expiresAt" gorm:"not null"`
	Status           DeliveryStatus `json:"status" gorm:"type:text;not null;default:'active'"`
	CurrentViews     int            `json:"currentViews" gorm:"not null;default:0"`
	MaxViews         int            `json:"maxViews" gorm:"not null"`
	CurrentDownloads int            `json:"currentDownloads" gorm:"not null;default:0"`
	MaxDownloads     int            `json:"maxDownloads" gorm:"not null"`
	TotalSize        int64          `json:"totalSize" gorm:"not null"` // sum of all file sizes
	Files            []DeliveryFile `json:"files,omitempty" gorm:"foreignKey:DeliveryID"`

	// DestroyRequestedAt is set when file destruction starts. Rows with it set
	// and undeleted files are retried by the sweeper.
	DestroyRequestedAt *time.Time `json:"destroyRequestedAt,omitempty"`
}

func (Delivery) TableName() string { return "deliveries" }

// Counter names one of the two guarded usage counters.
type Counter string

const (
	CounterViews     Counter = "views"
	CounterDownloads Counter = "downloads"
)

// ViewLimitReached and DownloadLimitReached are the post-increment checks.
func (d *Delivery) ViewLimitReached() bool {
	return d.CurrentViews >= d.MaxViews
}

func (d *Delivery) DownloadLimitReached() bool {
	return d.CurrentDownloads >= d.MaxDownloads
}

// TimeExpired reports whether now is past the delivery's expiry timestamp.
func (d *Delivery) TimeExpired(now time.Time) bool {
	return now.After(d.ExpiresAt)
}
