package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"courier/contract"
	"courier/domain"
	"courier/domain/event"
	"courier/errors"
)

type session struct {
	userID string
	sink   contract.EventSink
	rooms  map[domain.RoomID]struct{}
}

// Registry owns every live transport connection: its event sink, the
// identity bound to it, and the set of rooms it joined. Join and leave
// flow through the registry so that unregistering a connection can clean
// up router membership for every joined room and decrement presence for
// the bound user in one place.
//
// Registry is safe for concurrent use by multiple goroutines.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session
	router   contract.IRouter
	presence contract.IPresence
	log      *slog.Logger
}

func NewRegistry(router contract.IRouter, presence contract.IPresence, log *slog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*session),
		router:   router,
		presence: presence,
		log:      log,
	}
}

// Register tracks a new transport session. The connection stays anonymous
// until Bind associates an authenticated identity.
func (r *Registry) Register(connID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[connID] = &session{
		sink:  sink,
		rooms: make(map[domain.RoomID]struct{}),
	}
}

// Bind associates a previously anonymous connection with an authenticated
// user and opens a presence slot for that user. Binding the same identity
// again is a no-op; rebinding to a different identity moves the presence
// slot.
func (r *Registry) Bind(connID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownConnection, connID)
	}
	if s.userID == userID {
		return nil
	}
	if s.userID != "" {
		r.presence.ConnectionClosed(s.userID)
	}
	s.userID = userID
	r.presence.ConnectionOpened(userID)
	return nil
}

// Join subscribes a registered connection to a room.
func (r *Registry) Join(connID string, roomID domain.RoomID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownConnection, connID)
	}
	s.rooms[roomID] = struct{}{}
	r.router.Join(roomID, connID)
	return nil
}

// Leave unsubscribes a connection from a room. Unknown connections and
// rooms are no-ops.
func (r *Registry) Leave(connID string, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[connID]; ok {
		delete(s.rooms, roomID)
	}
	r.router.Leave(roomID, connID)
}

// Unregister removes a connection, its room memberships, and its presence
// slot. Unregistering twice is a no-op, not an error.
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		return
	}
	delete(r.sessions, connID)

	for roomID := range s.rooms {
		r.router.Leave(roomID, connID)
	}
	if s.userID != "" {
		r.presence.ConnectionClosed(s.userID)
	}
	r.log.Debug("Connection unregistered", "conn_id", connID, "user_id", s.userID)
}

// Send pushes one event to one connection. A connection that unregistered
// concurrently yields ErrConnectionGone; a sink that cannot take the event
// before ctx expires yields the context error. Either way the failure is
// scoped to this recipient.
func (r *Registry) Send(ctx context.Context, connID string, e event.DomainEvent) error {
	r.mu.RLock()
	s, ok := r.sessions[connID]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrConnectionGone, connID)
	}
	if err := s.sink.Consume(ctx, e); err != nil {
		return fmt.Errorf("pushing to connection %s: %w", connID, err)
	}
	return nil
}

func (r *Registry) Connections() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
