package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a sender account. Recipients never sign in; they are identified by
// the email on each delivery.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"` // trimmed, lower-case
	Password  string    `json:"-" gorm:"not null"`                 // bcrypt hash
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	Deliveries []Delivery `json:"-" gorm:"foreignKey:SenderID"`
}

func (User) TableName() string { return "users" }
