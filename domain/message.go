// Package domain contains core concepts of the messaging core.
// This file defines Message records and the delivery status machine.
// Messages are immutable once persisted; only the status may move.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type DeliveryStatus string

const (
	// StatusPending means the message is durably recorded but no live
	// subscriber has received it yet.
	StatusPending DeliveryStatus = "pending"
	// StatusDelivered means at least one live subscriber received it.
	StatusDelivered DeliveryStatus = "delivered"
	// StatusFailed means every push to a live subscriber failed.
	StatusFailed DeliveryStatus = "failed"
)

// CanTransitionTo enforces the status machine: pending -> {delivered, failed}.
// Delivered and failed are terminal inside this core.
func (s DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	return s == StatusPending && (next == StatusDelivered || next == StatusFailed)
}

// Message represents one persisted chat event.
type Message struct {
	ID        uuid.UUID
	SenderID  string
	RoomID    RoomID
	Body      string
	CreatedAt time.Time
	Status    DeliveryStatus
}
