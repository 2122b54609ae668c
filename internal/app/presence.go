package app

import (
	"slices"

	"github.com/dkeye/Meet/internal/domain"
)

type MediaFlag string

const (
	MediaAudio       MediaFlag = "audio"
	MediaVideo       MediaFlag = "video"
	MediaScreenShare MediaFlag = "screenShare"
)

// JoinRole is the role a direct joiner receives: HOST for the room's host
// (or anyone, while the room has no host), CO_HOST if promoted earlier.
func JoinRole(room *domain.Room, id domain.ConnID) domain.Role {
	switch {
	case room.HostConnID == "" || room.HostConnID == id:
		return domain.RoleHost
	case hasCoHost(room, id):
		return domain.RoleCoHost
	default:
		return domain.RoleParticipant
	}
}

func hasCoHost(room *domain.Room, id domain.ConnID) bool {
	_, ok := room.CoHosts[id]
	return ok
}

// AddParticipant appends p to the roster. A HOST entry becomes the room's
// host and demotes any other HOST entry.
func AddParticipant(room *domain.Room, p *domain.Participant) error {
	if room.Has(p.ConnID) {
		return domain.ErrAlreadyPresent
	}
	if room.Settings.MuteOnEntry && p.Role < domain.RoleCoHost {
		p.Muted = true
		p.AudioEnabled = false
	}
	room.Participants = append(room.Participants, p)
	if p.Role == domain.RoleHost {
		promoteHost(room, p.ConnID)
	}
	return nil
}

// RemoveParticipant drops id from the roster along with pins and spotlight.
func RemoveParticipant(room *domain.Room, id domain.ConnID) (*domain.Participant, bool) {
	i := room.IndexOf(id)
	if i < 0 {
		return nil, false
	}
	p := room.Participants[i]
	room.Participants = slices.Delete(room.Participants, i, i+1)
	room.Pinned = slices.DeleteFunc(room.Pinned, func(c domain.ConnID) bool { return c == id })
	if room.Spotlight == id {
		room.Spotlight = ""
	}
	return p, true
}

func promoteHost(room *domain.Room, id domain.ConnID) {
	for _, p := range room.Participants {
		if p.Role == domain.RoleHost && p.ConnID != id {
			p.Role = domain.RoleParticipant
		}
		if p.ConnID == id {
			p.Role = domain.RoleHost
		}
	}
	room.HostConnID = id
	delete(room.CoHosts, id)
}

// TransferHost hands HOST to the first remaining member. With nobody left
// the room ends up without a host.
func TransferHost(room *domain.Room) (domain.ConnID, bool) {
	if room.IsEmpty() {
		room.HostConnID = ""
		return "", false
	}
	next := room.Participants[0].ConnID
	promoteHost(room, next)
	return next, true
}

// SetRole changes target's role. Only the host may touch CO_HOST, the host
// itself cannot be re-roled, and HOST cannot be granted this way.
func SetRole(room *domain.Room, actor domain.Role, target domain.ConnID, role domain.Role) error {
	if role == domain.RoleHost {
		return domain.Errorf(domain.CodeInvalidParameter, "host cannot be assigned")
	}
	p, ok := room.Participant(target)
	if !ok {
		return domain.Errorf(domain.CodeInvalidParameter, "participant %s not found", target)
	}
	if p.Role == domain.RoleHost {
		return domain.ErrInsufficientPermissions
	}
	need := CapManageParticipants
	if role == domain.RoleCoHost || p.Role == domain.RoleCoHost {
		need = CapManageRoles
	}
	if err := Authorize(actor, need); err != nil {
		return err
	}
	p.Role = role
	if role == domain.RoleCoHost {
		room.CoHosts[target] = struct{}{}
	} else {
		delete(room.CoHosts, target)
	}
	return nil
}

// UpdateMediaFlag is always allowed for the owning connection. Turning audio
// back on clears a moderation mute.
func UpdateMediaFlag(room *domain.Room, id domain.ConnID, flag MediaFlag, value bool) (*domain.Participant, error) {
	p, ok := room.Participant(id)
	if !ok {
		return nil, domain.ErrNotInRoom
	}
	switch flag {
	case MediaAudio:
		p.AudioEnabled = value
	case MediaVideo:
		p.VideoEnabled = value
	case MediaScreenShare:
		p.ScreenSharing = value
	default:
		return nil, domain.Errorf(domain.CodeInvalidParameter, "unknown media flag %q", flag)
	}
	return p, nil
}

// MuteAll marks every participant below CO_HOST as muted. The flag is
// advisory and separate from AudioEnabled, which only the participant's
// own connection changes.
func MuteAll(room *domain.Room, actor domain.Role) ([]domain.ConnID, error) {
	if err := Authorize(actor, CapModerate); err != nil {
		return nil, err
	}
	var muted []domain.ConnID
	for _, p := range room.Participants {
		if p.Role >= domain.RoleCoHost {
			continue
		}
		p.Muted = true
		muted = append(muted, p.ConnID)
	}
	return muted, nil
}

func MuteParticipant(room *domain.Room, actor domain.Role, target domain.ConnID) (*domain.Participant, error) {
	if err := AuthorizeOver(room, actor, target, CapModerate); err != nil {
		return nil, err
	}
	p, ok := room.Participant(target)
	if !ok {
		return nil, domain.Errorf(domain.CodeInvalidParameter, "participant %s not found", target)
	}
	p.Muted = true
	return p, nil
}

// Roster copies the participant list so it can leave the actor.
func Roster(room *domain.Room) []domain.Participant {
	out := make([]domain.Participant, 0, len(room.Participants))
	for _, p := range room.Participants {
		out = append(out, *p)
	}
	return out
}
