package workers

import (
	"context"
	"log/slog"

	"courier/contract"
	"courier/domain"
)

// Ensure *RoomWorker implements the contract.Worker interface at compile time.
var _ contract.Worker = (*RoomWorker)(nil)

// SendTask is one send request routed to a room's mailbox. Ctx is the
// caller's context; it bounds the reply handoff, while delivery itself
// runs under the worker's own context.
type SendTask struct {
	Ctx   context.Context
	Cmd   domain.SendMessageCommand
	Reply chan SendResult
}

type SendResult struct {
	Message domain.Message
	Err     error
}

// DeliverFunc persists one message and fans it out to the room's current
// members. Provided by the coordinator.
type DeliverFunc func(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error)

// RoomWorker is the single writer for one room: it drains the room's
// mailbox and executes sends one at a time, which gives every message in
// the room a total order without any lock shared across rooms.
type RoomWorker struct {
	roomID  domain.RoomID
	tasks   chan SendTask
	deliver DeliverFunc
	log     *slog.Logger
}

func NewRoomWorker(roomID domain.RoomID, tasks chan SendTask, deliver DeliverFunc, log *slog.Logger) *RoomWorker {
	return &RoomWorker{roomID: roomID, tasks: tasks, deliver: deliver, log: log}
}

func (w *RoomWorker) Run(ctx context.Context) error {
	w.log.Debug("Room worker started", "room_id", w.roomID)
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping room worker", "room_id", w.roomID)
			return nil
		case task, ok := <-w.tasks:
			if !ok {
				return nil
			}
			// Delivery runs under the worker's context, not the caller's:
			// once a send is accepted, a sender hanging up must not cancel
			// the fan-out of its already persisted message to live members.
			msg, err := w.deliver(ctx, task.Cmd)
			select {
			case task.Reply <- SendResult{Message: msg, Err: err}:
			case <-task.Ctx.Done():
				// Caller gave up; the message stays persisted either way.
			}
		}
	}
}
