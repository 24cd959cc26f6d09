package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"courier/auth"
	"courier/contract"
	"courier/domain"
	"courier/errors"
	"courier/observability"
)

// stubChatService implements services.IChatService with per-test hooks.
type stubChatService struct {
	historyFunc  func(cmd domain.GetHistoryCommand) ([]domain.Message, error)
	presenceFunc func(userID string) domain.PresenceSnapshot
}

func (s *stubChatService) Connect(string, contract.EventSink) {}
func (s *stubChatService) Bind(string, string) error          { return nil }
func (s *stubChatService) Disconnect(string)                  {}
func (s *stubChatService) Join(string, domain.RoomID) error   { return nil }
func (s *stubChatService) Leave(string, domain.RoomID)        {}

func (s *stubChatService) Send(context.Context, domain.SendMessageCommand) (domain.Message, error) {
	return domain.Message{}, nil
}

func (s *stubChatService) History(cmd domain.GetHistoryCommand) ([]domain.Message, error) {
	return s.historyFunc(cmd)
}

func (s *stubChatService) Presence(userID string) domain.PresenceSnapshot {
	return s.presenceFunc(userID)
}

func newTestServer(service *stubChatService) *Server {
	return NewServer(
		slog.Default(),
		service,
		auth.NewValidator("test-secret", "courier", time.Hour),
		observability.NewMonitoringManager(),
		16,
	)
}

func Test_History_Endpoint_Returns_Messages(t *testing.T) {
	req := require.New(t)
	msg := domain.Message{
		ID:        uuid.New(),
		SenderID:  "alice",
		RoomID:    "alice-bob",
		Body:      "hello",
		CreatedAt: time.Now().UTC(),
		Status:    domain.StatusDelivered,
	}
	var captured domain.GetHistoryCommand
	server := newTestServer(&stubChatService{
		historyFunc: func(cmd domain.GetHistoryCommand) ([]domain.Message, error) {
			captured = cmd
			return []domain.Message{msg}, nil
		},
	})

	request := httptest.NewRequest(http.MethodGet, "/conversations/alice-bob/messages?limit=5", nil)
	response, err := server.App().Test(request)
	req.NoError(err)
	req.Equal(http.StatusOK, response.StatusCode)

	// Then the query was passed through and the message serialized
	req.Equal(domain.RoomID("alice-bob"), captured.RoomID)
	req.Equal(5, captured.Limit)

	var body historyResponse
	req.NoError(json.NewDecoder(response.Body).Decode(&body))
	req.Equal("alice-bob", body.RoomID)
	req.Len(body.Messages, 1)
	req.Equal("hello", body.Messages[0].Body)
	req.Equal("delivered", body.Messages[0].Status)
}

func Test_History_Endpoint_Parses_Before_Cursor(t *testing.T) {
	req := require.New(t)
	var captured domain.GetHistoryCommand
	server := newTestServer(&stubChatService{
		historyFunc: func(cmd domain.GetHistoryCommand) ([]domain.Message, error) {
			captured = cmd
			return nil, nil
		},
	})

	cursor := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	request := httptest.NewRequest(http.MethodGet,
		"/conversations/alice-bob/messages?before="+cursor.Format(time.RFC3339Nano), nil)
	response, err := server.App().Test(request)
	req.NoError(err)
	req.Equal(http.StatusOK, response.StatusCode)
	req.NotNil(captured.Before)
	req.True(captured.Before.Equal(cursor))
}

func Test_History_Endpoint_Rejects_Malformed_Cursor(t *testing.T) {
	req := require.New(t)
	server := newTestServer(&stubChatService{
		historyFunc: func(domain.GetHistoryCommand) ([]domain.Message, error) {
			t.Error("service must not be reached on a malformed cursor")
			return nil, nil
		},
	})

	request := httptest.NewRequest(http.MethodGet, "/conversations/alice-bob/messages?before=yesterday", nil)
	response, err := server.App().Test(request)
	req.NoError(err)
	req.Equal(http.StatusBadRequest, response.StatusCode)
}

func Test_History_Endpoint_Maps_Store_Failure(t *testing.T) {
	req := require.New(t)
	server := newTestServer(&stubChatService{
		historyFunc: func(domain.GetHistoryCommand) ([]domain.Message, error) {
			return nil, errors.ErrStoreUnavailable
		},
	})

	request := httptest.NewRequest(http.MethodGet, "/conversations/alice-bob/messages", nil)
	response, err := server.App().Test(request)
	req.NoError(err)
	req.Equal(http.StatusServiceUnavailable, response.StatusCode)
}

func Test_Presence_Endpoint_Reports_Snapshot(t *testing.T) {
	req := require.New(t)
	lastSeen := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	server := newTestServer(&stubChatService{
		presenceFunc: func(userID string) domain.PresenceSnapshot {
			return domain.PresenceSnapshot{UserID: userID, Online: true, Connections: 2, LastSeen: lastSeen}
		},
	})

	request := httptest.NewRequest(http.MethodGet, "/presence/alice", nil)
	response, err := server.App().Test(request)
	req.NoError(err)
	req.Equal(http.StatusOK, response.StatusCode)

	var body presenceResponse
	req.NoError(json.NewDecoder(response.Body).Decode(&body))
	req.Equal("alice", body.UserID)
	req.True(body.Online)
	req.Equal(2, body.Connections)
	req.True(body.LastSeen.Equal(lastSeen))
}

func Test_Health_Endpoint_Is_Up(t *testing.T) {
	req := require.New(t)
	server := newTestServer(&stubChatService{})

	request := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	response, err := server.App().Test(request)
	req.NoError(err)
	req.Equal(http.StatusOK, response.StatusCode)
}

func Test_WS_Route_Requires_Upgrade(t *testing.T) {
	req := require.New(t)
	server := newTestServer(&stubChatService{})

	// When hitting /ws with a plain GET
	request := httptest.NewRequest(http.MethodGet, "/ws", nil)
	response, err := server.App().Test(request)
	req.NoError(err)
	req.Equal(http.StatusUpgradeRequired, response.StatusCode)
}
