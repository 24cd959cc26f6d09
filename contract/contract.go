//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"courier/domain"
	"courier/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives events pushed to one live connection. Consume must
// honor ctx: the coordinator bounds every per-recipient push with a
// deadline, and exceeding it counts as a delivery failure for that
// recipient only.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

type IRegistry interface {
	Register(connID string, sink EventSink)
	Bind(connID, userID string) error
	Unregister(connID string)
	Join(connID string, roomID domain.RoomID) error
	Leave(connID string, roomID domain.RoomID)
	Send(ctx context.Context, connID string, e event.DomainEvent) error
	Connections() int
}

type IRouter interface {
	Join(roomID domain.RoomID, connID string)
	Leave(roomID domain.RoomID, connID string)
	MembersOf(roomID domain.RoomID) []string
	Rooms() int
}

type IPresence interface {
	ConnectionOpened(userID string)
	ConnectionClosed(userID string)
	IsOnline(userID string) bool
	Snapshot(userID string) domain.PresenceSnapshot
	Online() int
}
