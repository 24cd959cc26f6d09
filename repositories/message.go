//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"courier/domain"
	"courier/errors"
)

type IMessageRepository interface {
	Append(senderID string, roomID domain.RoomID, body string) (domain.Message, error)
	History(cmd domain.GetHistoryCommand) ([]domain.Message, error)
	UpdateStatus(id uuid.UUID, status domain.DeliveryStatus) error
}

// MessageRepository persists messages in BadgerDB.
//
// The primary key is formatted as "msg:{room_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     land on the same nanosecond.
//
// A secondary index "id:{uuid}" -> primary key supports status updates by
// message identifier alone.
//
// The repository is the authoritative clock: it assigns every message its
// identifier and timestamp, and guarantees timestamps never decrease within
// a room scope.
type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger

	mu       sync.Mutex
	lastNano map[domain.RoomID]int64
	now      func() time.Time
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) *MessageRepository {
	return &MessageRepository{
		db:       db,
		log:      log,
		lastNano: make(map[domain.RoomID]int64),
		now:      time.Now,
	}
}

// storedMessage is the on-disk JSON layout of one record.
type storedMessage struct {
	ID       string `json:"id"`
	Room     string `json:"room"`
	SenderID string `json:"sender_id"`
	Body     string `json:"body"`
	At       int64  `json:"at"` // unix nanoseconds, UTC
	Status   string `json:"status"`
}

// Append durably records a message with status pending before returning.
// Sender, room, body and timestamp are immutable from this point on.
func (m *MessageRepository) Append(senderID string, roomID domain.RoomID, body string) (domain.Message, error) {
	msg := domain.Message{
		ID:        uuid.New(),
		SenderID:  senderID,
		RoomID:    roomID,
		Body:      body,
		CreatedAt: m.tick(roomID),
		Status:    domain.StatusPending,
	}

	value, err := json.Marshal(fromDomain(msg))
	if err != nil {
		return domain.Message{}, err
	}
	key := messageKey(roomID, msg.CreatedAt, msg.ID)

	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, value); err != nil {
			return err
		}
		return txn.Set(indexKey(msg.ID), key)
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return msg, nil
}

// History retrieves messages for a room, newest first, strictly older than
// Before when given, bounded by Limit (a Limit <= 0 means no explicit bound).
// Thanks to the padded timestamp in the key, a reverse prefix scan returns
// records already sorted by time.
func (m *MessageRepository) History(cmd domain.GetHistoryCommand) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := roomPrefix(cmd.RoomID)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cmd.Before {
		case nil:
			// Seek past the newest possible position msg:{room}:9999...
			// then walk backward in time.
			seekKey = append(prefix, []byte(maxPaddedNano)...)
		default:
			// Real keys carry ":{uuid}" after the padding, so they sort
			// after this seek key and messages at exactly Before are skipped.
			seekKey = append(prefix, []byte(fmt.Sprintf("%019d", cmd.Before.UnixNano()))...)
		}

		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if cmd.Limit > 0 && len(messages) == cmd.Limit {
				m.log.Debug(fmt.Sprintf("History limit of %d messages reached", cmd.Limit))
				break
			}
			var msg domain.Message
			err := it.Item().Value(func(value []byte) error {
				decoded, err := Decode(value)
				if err != nil {
					return err
				}
				msg = decoded
				return nil
			})
			if err != nil {
				return err
			}
			// Opaque room identifiers may themselves contain the key
			// separator, so the prefix scan can pick up another room's
			// records (room "a" matches "a:1" keys). The record is the
			// tie-breaker, and a foreign record never counts toward the
			// limit.
			if msg.RoomID != cmd.RoomID {
				continue
			}
			messages = append(messages, msg)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return messages, nil
}

// UpdateStatus moves a message along the pending -> {delivered, failed}
// machine. The record content never changes, only its status field.
func (m *MessageRepository) UpdateStatus(id uuid.UUID, status domain.DeliveryStatus) error {
	err := m.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(indexKey(id))
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrMessageNotFound
		}
		if err != nil {
			return err
		}
		key, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		item, err = txn.Get(key)
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrMessageNotFound
		}
		if err != nil {
			return err
		}
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		msg, err := Decode(value)
		if err != nil {
			return err
		}
		if !msg.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s -> %s", errors.ErrInvalidTransition, msg.Status, status)
		}
		msg.Status = status

		value, err = json.Marshal(fromDomain(msg))
		if err != nil {
			return err
		}
		return txn.Set(key, value)
	})
	if err != nil &&
		!stderrors.Is(err, errors.ErrMessageNotFound) &&
		!stderrors.Is(err, errors.ErrInvalidTransition) {
		return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return err
}

// tick returns the next timestamp for a room, never going backward even
// if the wall clock does. The per-room single writer makes the sequence
// the caller-visible order.
func (m *MessageRepository) tick(roomID domain.RoomID) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	nano := m.now().UTC().UnixNano()
	if last := m.lastNano[roomID]; nano <= last {
		nano = last + 1
	}
	m.lastNano[roomID] = nano
	return time.Unix(0, nano).UTC()
}

const maxPaddedNano = "9999999999999999999"

func messageKey(roomID domain.RoomID, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", roomID, at.UnixNano(), id))
}

func roomPrefix(roomID domain.RoomID) []byte {
	return []byte(fmt.Sprintf("msg:%s:", roomID))
}

func indexKey(id uuid.UUID) []byte {
	return []byte("id:" + id.String())
}

// Decode parses one stored record. Exported for read-only tooling that
// scans the database directly.
func Decode(value []byte) (domain.Message, error) {
	var stored storedMessage
	if err := json.Unmarshal(value, &stored); err != nil {
		return domain.Message{}, err
	}
	parsedID, err := uuid.Parse(stored.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:        parsedID,
		SenderID:  stored.SenderID,
		RoomID:    domain.RoomID(stored.Room),
		Body:      stored.Body,
		CreatedAt: time.Unix(0, stored.At).UTC(),
		Status:    domain.DeliveryStatus(stored.Status),
	}, nil
}

func fromDomain(msg domain.Message) storedMessage {
	return storedMessage{
		ID:       msg.ID.String(),
		Room:     string(msg.RoomID),
		SenderID: msg.SenderID,
		Body:     msg.Body,
		At:       msg.CreatedAt.UnixNano(),
		Status:   string(msg.Status),
	}
}
