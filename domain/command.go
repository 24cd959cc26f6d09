package domain

import "time"

type Command interface {
	Room() RoomID
}

type SendMessageCommand struct {
	RoomID   RoomID
	SenderID string
	Body     string
}

func (c SendMessageCommand) Room() RoomID {
	return c.RoomID
}

type GetHistoryCommand struct {
	RoomID RoomID
	Before *time.Time
	Limit  int
}

func (c GetHistoryCommand) Room() RoomID {
	return c.RoomID
}
