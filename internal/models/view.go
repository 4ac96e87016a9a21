package models

import (
	"time"

	"github.com/google/uuid"
)

// FileView is the recipient-facing projection of a DeliveryFile.
type FileView struct {
	Filename    string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
	ContentHash string `json:"contentHash"`
	Index       int    `json:"index"`
}

// DeliveryView is what a viewer sees. A masked view keeps the same shape with
// every identifying field emptied; it is not an access denial.
type DeliveryView struct {
	ID               uuid.UUID      `json:"id"`
	Title            string         `json:"title"`
	Message          string         `json:"message"`
	RecipientEmail   string         `json:"recipientEmail"`
	Status           DeliveryStatus `json:"status"`
	ExpiresAt        time.Time      `json:"expiresAt"`
	CurrentViews     int            `json:"currentViews"`
	MaxViews         int            `json:"maxViews"`
	CurrentDownloads int            `json:"currentDownloads"`
	MaxDownloads     int            `json:"maxDownloads"`
	Files            []FileView     `json:"files"`
	Masked           bool           `json:"masked"`
}
