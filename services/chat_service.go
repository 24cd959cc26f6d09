package services

import (
	"context"

	"courier/contract"
	"courier/domain"
	"courier/runtime"
)

// IChatService is the surface the transport layer talks to. Transport
// sessions register, bind their authenticated identity, join rooms, and
// send; everything else is the core's business.
type IChatService interface {
	Connect(connID string, sink contract.EventSink)
	Bind(connID, userID string) error
	Disconnect(connID string)
	Join(connID string, roomID domain.RoomID) error
	Leave(connID string, roomID domain.RoomID)
	Send(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error)
	History(cmd domain.GetHistoryCommand) ([]domain.Message, error)
	Presence(userID string) domain.PresenceSnapshot
}

type ChatService struct {
	registry    contract.IRegistry
	presence    contract.IPresence
	coordinator *runtime.Coordinator
}

func NewChatService(registry contract.IRegistry, presence contract.IPresence, coordinator *runtime.Coordinator) *ChatService {
	return &ChatService{registry: registry, presence: presence, coordinator: coordinator}
}

func (s *ChatService) Connect(connID string, sink contract.EventSink) {
	s.registry.Register(connID, sink)
}

func (s *ChatService) Bind(connID, userID string) error {
	return s.registry.Bind(connID, userID)
}

func (s *ChatService) Disconnect(connID string) {
	s.registry.Unregister(connID)
}

func (s *ChatService) Join(connID string, roomID domain.RoomID) error {
	return s.registry.Join(connID, roomID)
}

func (s *ChatService) Leave(connID string, roomID domain.RoomID) {
	s.registry.Leave(connID, roomID)
}

func (s *ChatService) Send(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error) {
	return s.coordinator.Send(ctx, cmd)
}

func (s *ChatService) History(cmd domain.GetHistoryCommand) ([]domain.Message, error) {
	return s.coordinator.History(cmd)
}

func (s *ChatService) Presence(userID string) domain.PresenceSnapshot {
	return s.presence.Snapshot(userID)
}
