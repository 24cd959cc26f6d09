package web

import (
	"context"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"courier/domain"
	"courier/domain/event"
)

// clientFrame is what a WebSocket client sends: join/leave a room, or
// send a message into one.
type clientFrame struct {
	Type string `json:"type" validate:"required,oneof=join leave send"`
	Room string `json:"room" validate:"required"`
	Body string `json:"body"`
}

// serverFrame is what the server pushes back: one "message" frame per
// delivered message, an "ack" per accepted send carrying the persisted
// record and its delivery status, or an "error".
type serverFrame struct {
	Type    string           `json:"type"`
	Message *messageResponse `json:"message,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// handleWS owns one transport session end to end: registration, identity
// binding, the read loop, and teardown. The deferred Disconnect is what
// cascades room cleanup and the presence decrement.
func (s *Server) handleWS(c *websocket.Conn) {
	connID := uuid.NewString()
	sink := NewConnSink(s.connectionBufferSize)
	s.service.Connect(connID, sink)
	defer s.service.Disconnect(connID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The sender identity for this session: the bound user, or the
	// connection itself while anonymous.
	senderID := connID
	if token := c.Query("token"); token != "" {
		userID, err := s.auth.Validate(token)
		if err != nil {
			s.log.Warn("Rejected WebSocket token", "conn_id", connID, "error", err)
			_ = c.WriteJSON(serverFrame{Type: "error", Error: "invalid token"})
			return
		}
		if err := s.service.Bind(connID, userID); err != nil {
			s.log.Error("Bind failed", "conn_id", connID, "error", err)
			return
		}
		senderID = userID
	}
	s.log.Info("WebSocket connected", "conn_id", connID, "user_id", senderID)

	// Single writer for the socket: acks from the read loop and pushed
	// messages from the sink funnel through one channel.
	outbound := make(chan serverFrame, s.connectionBufferSize)
	go s.writeLoop(ctx, cancel, c, outbound)
	go s.pumpEvents(ctx, sink, outbound)

	for {
		var frame clientFrame
		if err := c.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Error("WebSocket error", "conn_id", connID, "error", err)
			}
			break
		}
		if err := s.validate.Struct(frame); err != nil {
			s.enqueue(ctx, outbound, serverFrame{Type: "error", Error: "invalid frame"})
			continue
		}
		s.handleFrame(ctx, connID, senderID, frame, outbound)
	}
	s.log.Info("WebSocket disconnected", "conn_id", connID, "user_id", senderID)
}

func (s *Server) handleFrame(ctx context.Context, connID, senderID string, frame clientFrame, outbound chan serverFrame) {
	roomID := domain.RoomID(frame.Room)
	switch frame.Type {
	case "join":
		if err := s.service.Join(connID, roomID); err != nil {
			s.enqueue(ctx, outbound, serverFrame{Type: "error", Error: "join failed"})
		}
	case "leave":
		s.service.Leave(connID, roomID)
	case "send":
		msg, err := s.service.Send(ctx, domain.SendMessageCommand{
			RoomID:   roomID,
			SenderID: senderID,
			Body:     frame.Body,
		})
		if err != nil {
			s.log.Warn("Send rejected", "conn_id", connID, "room_id", roomID, "error", err)
			s.enqueue(ctx, outbound, serverFrame{Type: "error", Error: err.Error()})
			return
		}
		s.enqueue(ctx, outbound, serverFrame{Type: "ack", Message: lo.ToPtr(toMessageResponse(msg))})
	}
}

func (s *Server) writeLoop(ctx context.Context, cancel context.CancelFunc, c *websocket.Conn, outbound chan serverFrame) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-outbound:
			if err := c.WriteJSON(frame); err != nil {
				cancel()
				return
			}
		}
	}
}

func (s *Server) pumpEvents(ctx context.Context, sink *ConnSink, outbound chan serverFrame) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-sink.Events:
			if posted, ok := evt.(event.MessagePosted); ok {
				s.enqueue(ctx, outbound, serverFrame{
					Type:    "message",
					Message: lo.ToPtr(toMessageResponse(posted.Message)),
				})
			}
		}
	}
}

func (s *Server) enqueue(ctx context.Context, outbound chan serverFrame, frame serverFrame) {
	select {
	case outbound <- frame:
	case <-ctx.Done():
	}
}
