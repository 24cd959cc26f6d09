package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"courier/domain"
	"courier/errors"
)

type messageResponse struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	RoomID    string    `json:"room_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	Status    string    `json:"status"`
}

type historyResponse struct {
	RoomID   string            `json:"room_id"`
	Messages []messageResponse `json:"messages"`
}

type presenceResponse struct {
	UserID      string    `json:"user_id"`
	Online      bool      `json:"online"`
	Connections int       `json:"connections"`
	LastSeen    time.Time `json:"last_seen"`
}

// handleHistory serves GET /conversations/:id/messages?before=&limit=
// with messages ordered newest first.
func (s *Server) handleHistory(c *fiber.Ctx) error {
	cmd := domain.GetHistoryCommand{
		RoomID: domain.RoomID(c.Params("id")),
		Limit:  c.QueryInt("limit"),
	}
	if raw := c.Query("before"); raw != "" {
		before, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"error": "before must be an RFC 3339 timestamp"})
		}
		cmd.Before = &before
	}

	messages, err := s.service.History(cmd)
	if err != nil {
		s.log.Error("History query failed", "room_id", cmd.RoomID, "error", err)
		return c.Status(errors.HTTPStatus(err)).JSON(fiber.Map{"error": "history unavailable"})
	}
	return c.JSON(historyResponse{
		RoomID:   string(cmd.RoomID),
		Messages: toMessageResponses(messages),
	})
}

func (s *Server) handlePresence(c *fiber.Ctx) error {
	snapshot := s.service.Presence(c.Params("userID"))
	return c.JSON(presenceResponse{
		UserID:      snapshot.UserID,
		Online:      snapshot.Online,
		Connections: snapshot.Connections,
		LastSeen:    snapshot.LastSeen,
	})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(s.monitoring.GetLatest())
}

func toMessageResponses(messages []domain.Message) []messageResponse {
	return lo.Map(messages, func(item domain.Message, _ int) messageResponse {
		return toMessageResponse(item)
	})
}

func toMessageResponse(msg domain.Message) messageResponse {
	return messageResponse{
		ID:        msg.ID.String(),
		SenderID:  msg.SenderID,
		RoomID:    string(msg.RoomID),
		Body:      msg.Body,
		CreatedAt: msg.CreatedAt,
		Status:    string(msg.Status),
	}
}
