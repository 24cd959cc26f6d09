package runtime

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"courier/domain"
)

func TestRouter_Join_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	router := NewRouter()
	connID := uuid.NewString()
	roomID := domain.RoomID("general")

	// When the same connection joins twice
	router.Join(roomID, connID)
	router.Join(roomID, connID)

	// Then a single membership exists
	req.Equal([]string{connID}, router.MembersOf(roomID))
	req.Equal(1, router.Rooms())
}

func TestRouter_Leave_Unknown_Room_Is_Noop(t *testing.T) {
	req := require.New(t)
	router := NewRouter()

	// When leaving a room that never existed
	router.Leave(domain.RoomID("ghost"), uuid.NewString())

	// Then nothing changes and nothing panics
	req.Empty(router.MembersOf(domain.RoomID("ghost")))
	req.Zero(router.Rooms())
}

func TestRouter_Empty_Room_Is_Reclaimed(t *testing.T) {
	req := require.New(t)
	router := NewRouter()
	connID1 := uuid.NewString()
	connID2 := uuid.NewString()
	roomID := domain.RoomID("general")

	// Given two members
	router.Join(roomID, connID1)
	router.Join(roomID, connID2)
	req.Len(router.MembersOf(roomID), 2)

	// When both leave
	router.Leave(roomID, connID1)
	router.Leave(roomID, connID2)

	// Then the room entry is gone entirely, not kept as an empty set
	req.Empty(router.MembersOf(roomID))
	req.Zero(router.Rooms())
}

func TestRouter_MembersOf_Unknown_Room_Is_Empty_Not_Error(t *testing.T) {
	req := require.New(t)
	router := NewRouter()

	req.Empty(router.MembersOf(domain.RoomID("nobody-here")))
}

func TestRouter_Rooms_Are_Independent(t *testing.T) {
	req := require.New(t)
	router := NewRouter()
	connID := uuid.NewString()

	// Given one connection in two rooms
	router.Join(domain.RoomID("a"), connID)
	router.Join(domain.RoomID("b"), connID)

	// When it leaves one room
	router.Leave(domain.RoomID("a"), connID)

	// Then the other membership is untouched
	req.Empty(router.MembersOf(domain.RoomID("a")))
	req.Equal([]string{connID}, router.MembersOf(domain.RoomID("b")))
}
