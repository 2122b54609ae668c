package domain

import "time"

type (
	RoomID string
	ConnID string
)

// Settings are the host-controlled switches of a room.
type Settings struct {
	Locked             bool           `json:"locked"`
	WaitingRoomEnabled bool           `json:"waitingRoomEnabled"`
	MuteOnEntry        bool           `json:"muteOnEntry"`
	AllowScreenShare   bool           `json:"allowScreenShare"`
	ComplianceMode     ComplianceMode `json:"complianceMode"`
	WatermarkEnabled   bool           `json:"watermarkEnabled"`
}

// DefaultSettings is what a room gets when its creator does not say otherwise.
func DefaultSettings() Settings {
	return Settings{
		AllowScreenShare: true,
		ComplianceMode:   ComplianceStandard,
	}
}

// Room is the whole volatile state of one meeting instance.
// It is only ever mutated by the actor owning its family.
type Room struct {
	ID          RoomID
	DisplayName string
	CreatedAt   time.Time

	HostConnID    ConnID
	CreatorConnID ConnID
	Participants  []*Participant
	Settings      Settings
	Compliance    CompliancePolicy

	Pinned    []ConnID
	Spotlight ConnID

	// Password holds the bcrypt hash of the room password, empty when unset.
	Password string

	IsBreakout bool
	ParentID   RoomID

	Blocked   map[ConnID]struct{}
	CoHosts   map[ConnID]struct{}
	Waiting   []WaitingEntry
	Breakout  *BreakoutConfig
	Recording bool
	Polls     map[string]*Poll
	Reports   []Report
}

func NewRoom(id RoomID, name string, settings Settings) *Room {
	return &Room{
		ID:          id,
		DisplayName: name,
		CreatedAt:   time.Now(),
		Settings:    settings,
		Compliance:  PresetFor(settings.ComplianceMode),
		Blocked:     make(map[ConnID]struct{}),
		CoHosts:     make(map[ConnID]struct{}),
		Polls:       make(map[string]*Poll),
	}
}

// Family returns the id of the top-level room this room belongs to.
func (r *Room) Family() RoomID {
	if r.IsBreakout && r.ParentID != "" {
		return r.ParentID
	}
	return r.ID
}

func (r *Room) IndexOf(id ConnID) int {
	for i, p := range r.Participants {
		if p.ConnID == id {
			return i
		}
	}
	return -1
}

func (r *Room) Participant(id ConnID) (*Participant, bool) {
	if i := r.IndexOf(id); i >= 0 {
		return r.Participants[i], true
	}
	return nil, false
}

func (r *Room) Has(id ConnID) bool { return r.IndexOf(id) >= 0 }

func (r *Room) IsEmpty() bool { return len(r.Participants) == 0 }

// RoleOf reports PARTICIPANT for ids that are not members.
func (r *Room) RoleOf(id ConnID) Role {
	if p, ok := r.Participant(id); ok {
		return p.Role
	}
	return RoleParticipant
}

func (r *Room) IsBlocked(id ConnID) bool {
	_, ok := r.Blocked[id]
	return ok
}

func (r *Room) IsWaiting(id ConnID) bool {
	for _, w := range r.Waiting {
		if w.ConnID == id {
			return true
		}
	}
	return false
}

func (r *Room) ParticipantIDs() []ConnID {
	out := make([]ConnID, 0, len(r.Participants))
	for _, p := range r.Participants {
		out = append(out, p.ConnID)
	}
	return out
}
