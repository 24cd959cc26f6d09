package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"courier/contract"
	"courier/domain"
	"courier/domain/event"
	"courier/errors"
	"courier/observability"
	"courier/repositories"
	"courier/runtime/workers"
)

// Coordinator orchestrates one send end to end: validate, persist through
// the message store, fan out to the room's live members, settle the
// delivery status. Durability precedes visibility: a message that cannot
// be recorded is never fanned out.
//
// Every room gets a dedicated mailbox drained by a single RoomWorker, so
// sends scoped to one room are serialized (which is what makes the store's
// per-room order the caller-visible order) while unrelated rooms proceed
// concurrently with no shared lock.
type Coordinator struct {
	log             *slog.Logger
	repo            repositories.IMessageRepository
	registry        contract.IRegistry
	router          contract.IRouter
	supervisor      contract.ISupervisor
	monitoring      *observability.MonitoringManager
	maxBodyLength   int
	historyLimit    int
	deliveryTimeout time.Duration
	mailboxSize     int

	mu        sync.Mutex
	ctx       context.Context
	mailboxes map[domain.RoomID]chan workers.SendTask
}

func NewCoordinator(
	log *slog.Logger,
	repo repositories.IMessageRepository,
	registry contract.IRegistry,
	router contract.IRouter,
	supervisor contract.ISupervisor,
	monitoring *observability.MonitoringManager,
	maxBodyLength, historyLimit int,
	deliveryTimeout time.Duration,
	mailboxSize int,
) *Coordinator {
	return &Coordinator{
		log:             log,
		repo:            repo,
		registry:        registry,
		router:          router,
		supervisor:      supervisor,
		monitoring:      monitoring,
		maxBodyLength:   maxBodyLength,
		historyLimit:    historyLimit,
		deliveryTimeout: deliveryTimeout,
		mailboxSize:     mailboxSize,
		ctx:             context.Background(),
		mailboxes:       make(map[domain.RoomID]chan workers.SendTask),
	}
}

// Start records the context under which room workers are spawned. Workers
// created afterward stop when this context is canceled.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx = ctx
}

// Send routes the command to its room's mailbox and waits for the
// outcome. Validation happens before any side effect.
func (c *Coordinator) Send(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error) {
	if cmd.Body == "" || len(cmd.Body) > c.maxBodyLength {
		return domain.Message{}, fmt.Errorf("%w: %d bytes (max %d)",
			errors.ErrInvalidBody, len(cmd.Body), c.maxBodyLength)
	}

	task := workers.SendTask{
		Ctx:   ctx,
		Cmd:   cmd,
		Reply: make(chan workers.SendResult, 1),
	}

	select {
	case c.mailbox(cmd.RoomID) <- task:
	case <-ctx.Done():
		return domain.Message{}, ctx.Err()
	}

	select {
	case result := <-task.Reply:
		return result.Message, result.Err
	case <-ctx.Done():
		return domain.Message{}, ctx.Err()
	}
}

// History returns a room's messages newest first, clamped to the
// configured page size.
func (c *Coordinator) History(cmd domain.GetHistoryCommand) ([]domain.Message, error) {
	if cmd.Limit <= 0 || cmd.Limit > c.historyLimit {
		cmd.Limit = c.historyLimit
	}
	return c.repo.History(cmd)
}

// mailbox returns the room's task channel, spawning its supervised
// worker on first use. Workers live until shutdown: evicting an idle one
// would open an ordering window between a draining worker and its
// replacement.
func (c *Coordinator) mailbox(roomID domain.RoomID) chan workers.SendTask {
	c.mu.Lock()
	defer c.mu.Unlock()

	mb, ok := c.mailboxes[roomID]
	if !ok {
		mb = make(chan workers.SendTask, c.mailboxSize)
		c.mailboxes[roomID] = mb
		c.supervisor.Start(c.ctx, workers.NewRoomWorker(roomID, mb, c.deliver, c.log))
	}
	return mb
}

// deliver runs inside the room's single writer.
func (c *Coordinator) deliver(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error) {
	msg, err := c.repo.Append(cmd.SenderID, cmd.RoomID, cmd.Body)
	if err != nil {
		return domain.Message{}, fmt.Errorf("persisting message: %w", err)
	}
	c.monitoring.IncrMessagesSent()

	members := c.router.MembersOf(cmd.RoomID)
	if len(members) == 0 {
		// No live subscriber. Not a failure: the message stays pending
		// and the sender still gets the persisted record back.
		c.log.Debug("No live members, message stays pending",
			"room_id", cmd.RoomID, "message_id", msg.ID)
		return msg, nil
	}

	evt := event.MessagePosted{Message: msg}
	delivered := 0
	for _, connID := range members {
		recipientCtx, cancel := context.WithTimeout(ctx, c.deliveryTimeout)
		err := c.registry.Send(recipientCtx, connID, evt)
		cancel()
		if err != nil {
			// Per-recipient failure: never aborts the rest of the fan-out.
			c.monitoring.IncrDeliveryFailed()
			c.log.Warn("Delivery failed",
				"conn_id", connID, "message_id", msg.ID, "error", err)
			continue
		}
		delivered++
	}

	status := domain.StatusFailed
	if delivered > 0 {
		status = domain.StatusDelivered
	}
	if err := c.repo.UpdateStatus(msg.ID, status); err != nil {
		// The record itself is durable; a stale pending status is left
		// for whatever redelivery policy sits on top of this core.
		c.log.Error("Status update failed",
			"message_id", msg.ID, "status", status, "error", err)
	}
	msg.Status = status
	return msg, nil
}
