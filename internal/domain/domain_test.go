package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleOrderAndText(t *testing.T) {
	assert.True(t, RoleHost.Outranks(RoleCoHost))
	assert.True(t, RoleCoHost.Outranks(RoleModerator))
	assert.True(t, RoleModerator.Outranks(RoleParticipant))
	assert.False(t, RoleModerator.Outranks(RoleModerator))

	b, err := json.Marshal(struct {
		R Role `json:"r"`
	}{RoleCoHost})
	require.NoError(t, err)
	assert.JSONEq(t, `{"r":"CO_HOST"}`, string(b))

	var back struct {
		R Role `json:"r"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"r":"MODERATOR"}`), &back))
	assert.Equal(t, RoleModerator, back.R)

	_, err = ParseRole("OWNER")
	assert.Error(t, err)
	assert.Equal(t, "Role(9)", Role(9).String())
}

func TestCompliancePresets(t *testing.T) {
	cases := map[string]CompliancePolicy{
		"standard": {RetentionDays: 30},
		"HIPAA":    {EncryptionRequired: true, AuditRequired: true, RetentionDays: 2190, ConsentRequired: true, MFARequired: true},
		" gdpr ":   {EncryptionRequired: true, AuditRequired: true, RetentionDays: 30, ConsentRequired: true},
		"SOC2":     {EncryptionRequired: true, AuditRequired: true, RetentionDays: 365, MFARequired: true},
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			m, err := ParseComplianceMode(in)
			require.NoError(t, err)
			assert.Equal(t, want, PresetFor(m))
		})
	}

	_, err := ParseComplianceMode("PCI")
	assert.Error(t, err)
	assert.Equal(t, PresetFor(ComplianceStandard), PresetFor("PCI"))
}

func TestErrorMatchesByCode(t *testing.T) {
	err := Errorf(CodeBlocked, "blocked from %s", "r1")
	assert.True(t, errors.Is(err, ErrBlocked))
	assert.False(t, errors.Is(err, ErrMeetingLocked))

	wrapped := fmt.Errorf("join: %w", err)
	assert.Equal(t, CodeBlocked, CodeOf(wrapped))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}

func TestValidateDisplayName(t *testing.T) {
	name, err := ValidateDisplayName("  Ada  ")
	require.NoError(t, err)
	assert.Equal(t, "Ada", name)

	_, err = ValidateDisplayName("   ")
	assert.ErrorIs(t, err, ErrDisplayNameEmpty)

	_, err = ValidateDisplayName(strings.Repeat("é", MaxDisplayNameLen+1))
	assert.ErrorIs(t, err, ErrDisplayNameTooLong)
}

func TestRoomFamilyAndMembership(t *testing.T) {
	parent := NewRoom("p", "Main", DefaultSettings())
	child := NewRoom("c", "B1", parent.Settings)
	child.IsBreakout, child.ParentID = true, parent.ID

	assert.Equal(t, RoomID("p"), parent.Family())
	assert.Equal(t, RoomID("p"), child.Family())

	parent.Participants = append(parent.Participants, NewParticipant("a", "A", RoleHost), NewParticipant("b", "B", RoleParticipant))
	assert.True(t, parent.Has("b"))
	assert.Equal(t, 1, parent.IndexOf("b"))
	assert.Equal(t, RoleHost, parent.RoleOf("a"))
	assert.Equal(t, RoleParticipant, parent.RoleOf("zzz"))
	assert.Equal(t, []ConnID{"a", "b"}, parent.ParticipantIDs())
	assert.True(t, child.IsEmpty())
}

func TestPollTallyIgnoresOutOfRange(t *testing.T) {
	p := &Poll{Options: []string{"x", "y"}, Votes: map[ConnID]int{"a": 0, "b": 1, "c": 1, "d": 7}}
	assert.Equal(t, []int{1, 2}, p.Tally())
}

func TestBreakoutConfigLookup(t *testing.T) {
	cfg := &BreakoutConfig{Rooms: []BreakoutRoom{{ID: "c1"}, {ID: "c2"}}}
	assert.True(t, cfg.Has("c2"))
	assert.False(t, cfg.Has("c3"))
	assert.Equal(t, []RoomID{"c1", "c2"}, cfg.ChildIDs())

	mode, err := ParseAssignmentMode("")
	require.NoError(t, err)
	assert.Equal(t, AssignAuto, mode)
}
