// Package domain contains core concepts of the messaging core.
// No runtime, transport, or storage logic should be added here.
package domain

// RoomID identifies a logical fan-out group. Identifiers are opaque
// strings: a conversation key, or a user identifier used as a personal
// inbox. Rooms have no entity of their own; they exist as long as the
// router holds members for them.
type RoomID string
