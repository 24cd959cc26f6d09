package domain

import "time"

// PresenceSnapshot is the aggregate view of one user's connectivity.
// Online is true iff at least one transport session is open.
type PresenceSnapshot struct {
	UserID      string
	Online      bool
	Connections int
	LastSeen    time.Time
}
