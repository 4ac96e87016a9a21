package models

import (
	"time"

	"github.com/google/uuid"
)

type DeliveryFile struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	DeliveryID  uuid.UUID `json:"deliveryId" gorm:"type:uuid;index;not null"` // foreign key
	Filename    string    `json:"filename" gorm:"not null"`
	ContentType string    `json:"contentType" gorm:"not null"`
	ContentHash string    `json:"contentHash" gorm:"not null"` // hex sha-256
	Size        int64     `json:"size" gorm:"not null"`        // bytes
	StorageKey  string    `json:"-" gorm:"not null"`           // blob store key
	Index       int       `json:"index" gorm:"not null"`       // per-delivery index (0,1,2…)
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
	Deleted     bool      `json:"deleted" gorm:"default:false"`
}

func (DeliveryFile) TableName() string { return "delivery_files" }
