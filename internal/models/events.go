package models

import (
	"time"

	"github.com/google/uuid"
)

// AccessCodeNotice is handed to the notification sink for delivery by email.
type AccessCodeNotice struct {
	DeliveryID    uuid.UUID `json:"deliveryId"`
	Email         string    `json:"email"`
	Code          string    `json:"code"`
	DeliveryTitle string    `json:"deliveryTitle"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// LifecycleNotice announces a status change or file destruction.
type LifecycleNotice struct {
	DeliveryID uuid.UUID      `json:"deliveryId"`
	From       DeliveryStatus `json:"from"`
	To         DeliveryStatus `json:"to"`
	Reason     string         `json:"reason"`
	At         time.Time      `json:"at"`
}
