package app

import (
	"testing"
	"time"

	"github.com/dkeye/Meet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func breakoutFixture(t *testing.T, ids ...domain.ConnID) (*Rooms, *Breakouts, *domain.Room) {
	t.Helper()
	rooms := NewRooms(0)
	parent, err := rooms.Create("main", "Main", domain.DefaultSettings())
	require.NoError(t, err)
	for _, id := range ids {
		require.NoError(t, AddParticipant(parent, domain.NewParticipant(id, string(id), JoinRole(parent, id))))
	}
	return rooms, NewBreakouts(rooms, 0, 0), parent
}

func TestBreakoutAutoAssignRoundRobin(t *testing.T) {
	_, b, parent := breakoutFixture(t, "H", "A", "B", "C", "D", "E")

	cfg, err := b.Create(parent, BreakoutRequest{Count: 2, Duration: 10 * time.Minute, Assignment: domain.AssignAuto})
	require.NoError(t, err)

	require.Len(t, cfg.Rooms, 2)
	assert.Equal(t, []domain.ConnID{"A", "C", "E"}, cfg.Rooms[0].Assigned)
	assert.Equal(t, []domain.ConnID{"B", "D"}, cfg.Rooms[1].Assigned)
	assert.True(t, cfg.Active)
	assert.Equal(t, 10*time.Minute, cfg.Timer.EndsAt.Sub(cfg.Timer.StartedAt))
	assert.Same(t, cfg, parent.Breakout)
	assert.Len(t, b.Children(parent), 2)
}

func TestBreakoutCreateValidation(t *testing.T) {
	_, b, parent := breakoutFixture(t, "H", "A")

	_, err := b.Create(parent, BreakoutRequest{Count: 1})
	assert.Equal(t, domain.CodeInvalidParameter, domain.CodeOf(err))
	_, err = b.Create(parent, BreakoutRequest{Count: 21})
	assert.Equal(t, domain.CodeInvalidParameter, domain.CodeOf(err))
	_, err = b.Create(parent, BreakoutRequest{Count: 2, Duration: -time.Second})
	assert.Equal(t, domain.CodeInvalidParameter, domain.CodeOf(err))
	_, err = b.Create(parent, BreakoutRequest{Count: 2, Assignment: domain.AssignManual, Manual: [][]domain.ConnID{{"A"}, {"A"}}})
	assert.Equal(t, domain.CodeInvalidParameter, domain.CodeOf(err))
	_, err = b.Create(parent, BreakoutRequest{Count: 2, Assignment: domain.AssignManual, Manual: [][]domain.ConnID{{"stranger"}}})
	assert.Equal(t, domain.CodeInvalidParameter, domain.CodeOf(err))
	assert.Nil(t, parent.Breakout)

	_, err = b.Create(parent, BreakoutRequest{Count: 2, Assignment: domain.AssignManual, Manual: [][]domain.ConnID{{"A"}}})
	require.NoError(t, err)
	_, err = b.Create(parent, BreakoutRequest{Count: 2})
	assert.Equal(t, domain.CodeInvalidParameter, domain.CodeOf(err))

	child := b.Children(parent)[0]
	_, err = b.Create(child, BreakoutRequest{Count: 2})
	assert.Equal(t, domain.CodeInvalidParameter, domain.CodeOf(err))
}

func TestBreakoutCreateRollsBackOnIDExhaustion(t *testing.T) {
	// Every generated id collides after the first child.
	rooms := NewRooms(1, WithRoomIDFunc(func() domain.RoomID { return "child-1" }))
	parent, err := rooms.Create("main", "Main", domain.DefaultSettings())
	require.NoError(t, err)
	b := NewBreakouts(rooms, 0, 0)

	_, err = b.Create(parent, BreakoutRequest{Count: 2})
	assert.ErrorIs(t, err, domain.ErrIDSpaceExhausted)
	assert.Equal(t, []domain.RoomID{"main"}, rooms.IDs())
	assert.Nil(t, parent.Breakout)
}

func TestBreakoutMoveAndClose(t *testing.T) {
	rooms, b, parent := breakoutFixture(t, "H", "A", "B", "C")
	_, err := b.Create(parent, BreakoutRequest{Count: 2})
	require.NoError(t, err)
	kids := b.Children(parent)

	_, err = b.Move(parent, kids[0], "A")
	require.NoError(t, err)
	_, err = b.Move(parent, kids[1], "B")
	require.NoError(t, err)
	_, err = b.Move(parent, kids[1], "ghost")
	assert.ErrorIs(t, err, domain.ErrNotInRoom)

	assert.False(t, parent.Has("A"))
	assert.True(t, kids[0].Has("A"))

	// The host visits a child without leaving the main room.
	host, _ := parent.Participant("H")
	require.NoError(t, b.Visit(parent, kids[1], host))
	assert.True(t, kids[1].Has("H"))
	assert.True(t, parent.Has("H"))
	assert.ErrorIs(t, b.Visit(parent, kids[1], host), domain.ErrAlreadyPresent)

	before := map[domain.ConnID]bool{}
	for _, r := range append([]*domain.Room{parent}, kids...) {
		for _, id := range r.ParticipantIDs() {
			before[id] = true
		}
	}

	moved, err := b.CloseAll(parent)
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.ConnID{"A", "B"}, moved)
	assert.Nil(t, parent.Breakout)
	for _, k := range kids {
		_, ok := rooms.Get(k.ID)
		assert.False(t, ok)
	}

	// Closing preserves the union of members with no duplicates.
	after := map[domain.ConnID]int{}
	for _, id := range parent.ParticipantIDs() {
		after[id]++
	}
	assert.Len(t, after, len(before))
	for id := range before {
		assert.Equal(t, 1, after[id], "member %s", id)
	}
	assert.Equal(t, domain.RoleHost, parent.RoleOf("H"))

	_, err = b.CloseAll(parent)
	assert.Equal(t, domain.CodeInvalidParameter, domain.CodeOf(err))
}

func TestBreakoutCloseAllPromotesWhenHostless(t *testing.T) {
	_, b, parent := breakoutFixture(t, "H", "A")
	_, err := b.Create(parent, BreakoutRequest{Count: 2})
	require.NoError(t, err)
	kid := b.Children(parent)[0]
	_, err = b.Move(parent, kid, "A")
	require.NoError(t, err)

	RemoveParticipant(parent, "H")
	TransferHost(parent)
	require.Empty(t, parent.HostConnID)
	assert.False(t, b.FamilyEmpty(parent))

	_, err = b.CloseAll(parent)
	require.NoError(t, err)
	assert.Equal(t, domain.ConnID("A"), parent.HostConnID)
	assert.Equal(t, domain.RoleHost, parent.RoleOf("A"))
}

func TestBreakoutBlockedMove(t *testing.T) {
	_, b, parent := breakoutFixture(t, "H", "A")
	_, err := b.Create(parent, BreakoutRequest{Count: 2})
	require.NoError(t, err)
	kid := b.Children(parent)[0]
	kid.Blocked["A"] = struct{}{}

	_, err = b.Move(parent, kid, "A")
	assert.ErrorIs(t, err, domain.ErrBlocked)
	assert.True(t, parent.Has("A"))
}

func TestNewBreakoutsClampsLimits(t *testing.T) {
	rooms := NewRooms(0)
	for _, tc := range []struct {
		name             string
		minIn, maxIn     int
		wantMin, wantMax int
	}{
		{"defaults", 0, 0, 2, 20},
		{"min below floor", 1, 10, 2, 10},
		{"max above ceiling", 3, 50, 3, 20},
		{"both outside", 1, 100, 2, 20},
		{"min above ceiling", 30, 0, 20, 20},
		{"max below min", 5, 3, 5, 5},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBreakouts(rooms, tc.minIn, tc.maxIn)
			assert.Equal(t, tc.wantMin, b.MinRooms)
			assert.Equal(t, tc.wantMax, b.MaxRooms)
		})
	}

	parent, err := rooms.Create("wide", "Wide", domain.DefaultSettings())
	require.NoError(t, err)
	_, err = NewBreakouts(rooms, 1, 50).Create(parent, BreakoutRequest{Count: 21})
	assert.Equal(t, domain.CodeInvalidParameter, domain.CodeOf(err))
}
