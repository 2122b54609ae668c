package app

import (
	"testing"

	"github.com/dkeye/Meet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roomWith(ids ...domain.ConnID) *domain.Room {
	room := domain.NewRoom("r", "r", domain.DefaultSettings())
	for _, id := range ids {
		p := domain.NewParticipant(id, string(id), JoinRole(room, id))
		if err := AddParticipant(room, p); err != nil {
			panic(err)
		}
	}
	return room
}

func TestJoinRoleAndSingleHost(t *testing.T) {
	room := roomWith("a", "b", "c")

	assert.Equal(t, domain.ConnID("a"), room.HostConnID)
	assert.Equal(t, domain.RoleHost, room.RoleOf("a"))
	assert.Equal(t, domain.RoleParticipant, room.RoleOf("b"))

	hosts := 0
	for _, p := range room.Participants {
		if p.Role == domain.RoleHost {
			hosts++
		}
	}
	assert.Equal(t, 1, hosts)

	room.CoHosts["d"] = struct{}{}
	assert.Equal(t, domain.RoleCoHost, JoinRole(room, "d"))
}

func TestAddParticipantRejectsDuplicate(t *testing.T) {
	room := roomWith("a")
	err := AddParticipant(room, domain.NewParticipant("a", "again", domain.RoleParticipant))
	assert.ErrorIs(t, err, domain.ErrAlreadyPresent)
	assert.Len(t, room.Participants, 1)
}

func TestAddParticipantMuteOnEntry(t *testing.T) {
	room := roomWith("h")
	room.Settings.MuteOnEntry = true

	p := domain.NewParticipant("p", "P", domain.RoleParticipant)
	require.NoError(t, AddParticipant(room, p))
	assert.True(t, p.Muted)
	assert.False(t, p.AudioEnabled)

	c := domain.NewParticipant("c", "C", domain.RoleCoHost)
	require.NoError(t, AddParticipant(room, c))
	assert.False(t, c.Muted)
}

func TestRemoveParticipantPrunesPinsAndSpotlight(t *testing.T) {
	room := roomWith("a", "b")
	room.Pinned = []domain.ConnID{"b", "a"}
	room.Spotlight = "b"

	p, ok := RemoveParticipant(room, "b")
	require.True(t, ok)
	assert.Equal(t, domain.ConnID("b"), p.ConnID)
	assert.Equal(t, []domain.ConnID{"a"}, room.Pinned)
	assert.Empty(t, room.Spotlight)

	_, ok = RemoveParticipant(room, "b")
	assert.False(t, ok)
}

func TestTransferHostPicksFirstRemaining(t *testing.T) {
	room := roomWith("h", "p1", "p2")
	RemoveParticipant(room, "h")

	next, ok := TransferHost(room)
	require.True(t, ok)
	assert.Equal(t, domain.ConnID("p1"), next)
	assert.Equal(t, domain.RoleHost, room.RoleOf("p1"))
	assert.Equal(t, domain.RoleParticipant, room.RoleOf("p2"))

	RemoveParticipant(room, "p1")
	RemoveParticipant(room, "p2")
	_, ok = TransferHost(room)
	assert.False(t, ok)
	assert.Empty(t, room.HostConnID)
}

func TestSetRole(t *testing.T) {
	room := roomWith("h", "c", "p")

	require.NoError(t, SetRole(room, domain.RoleHost, "c", domain.RoleCoHost))
	assert.Contains(t, room.CoHosts, domain.ConnID("c"))

	// A co-host may appoint moderators but not co-hosts.
	require.NoError(t, SetRole(room, domain.RoleCoHost, "p", domain.RoleModerator))
	assert.Equal(t, domain.RoleModerator, room.RoleOf("p"))
	assert.ErrorIs(t, SetRole(room, domain.RoleCoHost, "p", domain.RoleCoHost), domain.ErrInsufficientPermissions)

	assert.ErrorIs(t, SetRole(room, domain.RoleHost, "h", domain.RoleParticipant), domain.ErrInsufficientPermissions)
	assert.Equal(t, domain.CodeInvalidParameter, domain.CodeOf(SetRole(room, domain.RoleHost, "p", domain.RoleHost)))
	assert.Equal(t, domain.CodeInvalidParameter, domain.CodeOf(SetRole(room, domain.RoleHost, "ghost", domain.RoleModerator)))

	require.NoError(t, SetRole(room, domain.RoleHost, "c", domain.RoleParticipant))
	assert.NotContains(t, room.CoHosts, domain.ConnID("c"))
}

func TestMediaFlagsAndMutes(t *testing.T) {
	room := roomWith("h", "c", "p")
	require.NoError(t, SetRole(room, domain.RoleHost, "c", domain.RoleCoHost))

	muted, err := MuteAll(room, domain.RoleHost)
	require.NoError(t, err)
	assert.Equal(t, []domain.ConnID{"p"}, muted)

	p, _ := room.Participant("p")
	assert.True(t, p.Muted)
	assert.True(t, p.AudioEnabled, "moderation leaves the owner's audio flag alone")

	p, err = UpdateMediaFlag(room, "p", MediaAudio, false)
	require.NoError(t, err)
	assert.False(t, p.AudioEnabled)

	// Self-unmute only touches the owner's flag.
	p, err = UpdateMediaFlag(room, "p", MediaAudio, true)
	require.NoError(t, err)
	assert.True(t, p.Muted)
	assert.True(t, p.AudioEnabled)

	p, err = MuteParticipant(room, domain.RoleHost, "c")
	require.NoError(t, err)
	assert.True(t, p.Muted)
	assert.True(t, p.AudioEnabled)

	_, err = MuteAll(room, domain.RoleParticipant)
	assert.ErrorIs(t, err, domain.ErrInsufficientPermissions)

	_, err = MuteParticipant(room, domain.RoleCoHost, "h")
	assert.ErrorIs(t, err, domain.ErrInsufficientPermissions)

	_, err = UpdateMediaFlag(room, "ghost", MediaVideo, false)
	assert.ErrorIs(t, err, domain.ErrNotInRoom)

	roster := Roster(room)
	roster[0].DisplayName = "changed"
	assert.Equal(t, "h", room.Participants[0].DisplayName)
}

func TestWaitingQueue(t *testing.T) {
	room := roomWith("h")

	assert.True(t, Enqueue(room, "w1", "W1"))
	assert.False(t, Enqueue(room, "w1", "W1"))
	assert.True(t, Enqueue(room, "w2", "W2"))
	assert.Len(t, room.Waiting, 2)

	_, err := Admit(room, domain.RoleParticipant, "w1")
	assert.ErrorIs(t, err, domain.ErrInsufficientPermissions)

	e, err := Admit(room, domain.RoleHost, "w1")
	require.NoError(t, err)
	assert.Equal(t, "W1", e.DisplayName)
	assert.False(t, room.IsWaiting("w1"))

	_, err = Admit(room, domain.RoleHost, "h")
	assert.ErrorIs(t, err, domain.ErrAlreadyPresent)
	_, err = Admit(room, domain.RoleHost, "nobody")
	assert.Equal(t, domain.CodeInvalidParameter, domain.CodeOf(err))

	_, err = Reject(room, domain.RoleCoHost, "w2")
	require.NoError(t, err)
	assert.Empty(t, room.Waiting)
}
