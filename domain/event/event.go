package event

import "courier/domain"

type DomainEvent interface {
	Room() domain.RoomID
}

// MessagePosted carries a persisted message toward the live members of
// its room. One copy is pushed per member connection.
type MessagePosted struct {
	Message domain.Message
}

func (e MessagePosted) Room() domain.RoomID {
	return e.Message.RoomID
}
