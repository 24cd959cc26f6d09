// Package runtime hosts the live-state components of the messaging core:
// connection registry, room router, presence tracker, and the delivery
// coordinator tying them together. It holds no business rules beyond
// membership and delivery mechanics.
package runtime

import (
	"sync"

	"courier/domain"
)

type Set map[string]struct{}

// Router maps room identifiers to the set of connection identifiers
// subscribed to them. Rooms are created implicitly on first join and the
// entry is reclaimed as soon as its member set empties, so churn does not
// leak map entries.
//
// Router is safe for concurrent use by multiple goroutines.
type Router struct {
	mu      sync.RWMutex
	members map[domain.RoomID]Set
}

func NewRouter() *Router {
	return &Router{members: make(map[domain.RoomID]Set)}
}

// Join is idempotent: joining a room twice leaves a single membership.
func (r *Router) Join(roomID domain.RoomID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[roomID]; !ok {
		r.members[roomID] = make(Set)
	}
	r.members[roomID][connID] = struct{}{}
}

// Leave is idempotent: leaving a room never joined is a no-op.
func (r *Router) Leave(roomID domain.RoomID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.members[roomID]
	if !ok {
		return
	}
	delete(members, connID)

	// If no one is left in the room, remove the room entry entirely
	if len(members) == 0 {
		delete(r.members, roomID)
	}
}

// MembersOf returns a copy of the room's current membership. An unknown
// or empty room yields an empty result, never an error.
func (r *Router) MembersOf(roomID domain.RoomID) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.members[roomID]
	if !ok {
		return nil
	}
	connIDs := make([]string, 0, len(members))
	for connID := range members {
		connIDs = append(connIDs, connID)
	}
	return connIDs
}

func (r *Router) Rooms() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}
