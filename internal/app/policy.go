package app

import (
	"fmt"

	"github.com/dkeye/Meet/internal/domain"
)

// Capability is a set of privileged actions.
type Capability uint8

const (
	// CapManageParticipants: admit/reject, lock, assign moderators.
	CapManageParticipants Capability = 1 << iota
	CapRemoveParticipants
	// CapModerate: block, spotlight, pin, mute.
	CapModerate
	// CapManageRoom: settings, recording, breakouts, polls, audit read.
	CapManageRoom
	// CapManageRoles: co-host assignment.
	CapManageRoles
	// CapManageSecurity: compliance mode, watermark, ending the meeting.
	CapManageSecurity
)

const capAll = CapManageParticipants | CapRemoveParticipants | CapModerate |
	CapManageRoom | CapManageRoles | CapManageSecurity

func (c Capability) Has(need Capability) bool { return c&need == need }

// PermissionsFor is the single role → capability table.
func PermissionsFor(role domain.Role) Capability {
	switch role {
	case domain.RoleHost:
		return capAll
	case domain.RoleCoHost:
		return CapManageParticipants | CapRemoveParticipants | CapModerate | CapManageRoom
	case domain.RoleModerator:
		return CapRemoveParticipants | CapModerate
	default:
		return 0
	}
}

func Can(role domain.Role, need Capability) bool {
	return PermissionsFor(role).Has(need)
}

func Authorize(role domain.Role, need Capability) error {
	if !Can(role, need) {
		return domain.ErrInsufficientPermissions
	}
	return nil
}

// AuthorizeOver additionally requires that a non-host actor strictly
// outranks the target, and nobody may act against the host.
func AuthorizeOver(room *domain.Room, actor domain.Role, target domain.ConnID, need Capability) error {
	if err := Authorize(actor, need); err != nil {
		return err
	}
	if target == room.HostConnID {
		return domain.ErrInsufficientPermissions
	}
	if actor != domain.RoleHost && !actor.Outranks(room.RoleOf(target)) {
		return domain.ErrInsufficientPermissions
	}
	return nil
}

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	MarkSlow
	KickMember
	DropFrame
)

// Policy decides what happens to a connection whose send queue is full.
type Policy interface {
	OnBackPressure(conn domain.ConnID) BackpressureAction
}

type SimplePolicy struct {
	Action BackpressureAction
}

func (p SimplePolicy) OnBackPressure(domain.ConnID) BackpressureAction {
	return p.Action
}

func ParseBackpressureAction(s string) (BackpressureAction, error) {
	switch s {
	case "kick", "":
		return KickMember, nil
	case "drop":
		return DropFrame, nil
	default:
		return NoAction, fmt.Errorf("unknown slow consumer policy %q", s)
	}
}
