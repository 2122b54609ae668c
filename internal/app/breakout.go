package app

import (
	"fmt"
	"time"

	"github.com/dkeye/Meet/internal/domain"
)

const (
	DefaultMinBreakoutRooms = 2
	DefaultMaxBreakoutRooms = 20
)

type BreakoutRequest struct {
	Count      int
	Duration   time.Duration
	Assignment domain.AssignmentMode
	// Manual optionally pre-assigns connections per child room (MANUAL only).
	Manual [][]domain.ConnID
	Names  []string
}

// Breakouts spawns and dissolves child rooms of a parent room. All methods
// run on the parent's actor, which also owns the children.
type Breakouts struct {
	Rooms    *Rooms
	MinRooms int
	MaxRooms int
	now      func() time.Time
}

// NewBreakouts keeps the configured limits inside [2, 20]; zero values
// take the bounds themselves.
func NewBreakouts(rooms *Rooms, minRooms, maxRooms int) *Breakouts {
	if minRooms <= 0 {
		minRooms = DefaultMinBreakoutRooms
	}
	if maxRooms <= 0 {
		maxRooms = DefaultMaxBreakoutRooms
	}
	minRooms = min(max(minRooms, DefaultMinBreakoutRooms), DefaultMaxBreakoutRooms)
	maxRooms = min(max(maxRooms, minRooms), DefaultMaxBreakoutRooms)
	return &Breakouts{Rooms: rooms, MinRooms: minRooms, MaxRooms: maxRooms, now: time.Now}
}

func (b *Breakouts) Create(parent *domain.Room, req BreakoutRequest) (*domain.BreakoutConfig, error) {
	if parent.IsBreakout {
		return nil, domain.Errorf(domain.CodeInvalidParameter, "breakout rooms cannot be nested")
	}
	if parent.Breakout != nil && parent.Breakout.Active {
		return nil, domain.Errorf(domain.CodeInvalidParameter, "breakout rooms already active")
	}
	if req.Count < b.MinRooms || req.Count > b.MaxRooms {
		return nil, domain.Errorf(domain.CodeInvalidParameter, "breakout room count must be between %d and %d", b.MinRooms, b.MaxRooms)
	}
	if req.Duration < 0 {
		return nil, domain.Errorf(domain.CodeInvalidParameter, "negative breakout duration")
	}

	assigned, err := b.assign(parent, req)
	if err != nil {
		return nil, err
	}

	cfg := &domain.BreakoutConfig{
		ParentID:   parent.ID,
		Assignment: req.Assignment,
		Active:     true,
		Visitors:   make(map[domain.ConnID]domain.RoomID),
	}
	for i := 0; i < req.Count; i++ {
		name := fmt.Sprintf("Breakout Room %d", i+1)
		if i < len(req.Names) && req.Names[i] != "" {
			name = req.Names[i]
		}
		child, err := b.Rooms.CreateChild(parent, name)
		if err != nil {
			for _, r := range cfg.Rooms {
				b.Rooms.Delete(r.ID)
			}
			return nil, err
		}
		cfg.Rooms = append(cfg.Rooms, domain.BreakoutRoom{ID: child.ID, Name: name, Assigned: assigned[i]})
	}

	start := b.now()
	cfg.Timer = domain.BreakoutTimer{StartedAt: start, EndsAt: start.Add(req.Duration)}
	parent.Breakout = cfg
	return cfg, nil
}

// assign distributes non-host participants round-robin for AUTO, or
// validates the explicit lists for MANUAL.
func (b *Breakouts) assign(parent *domain.Room, req BreakoutRequest) ([][]domain.ConnID, error) {
	out := make([][]domain.ConnID, req.Count)
	for i := range out {
		out[i] = []domain.ConnID{}
	}

	switch req.Assignment {
	case domain.AssignAuto:
		i := 0
		for _, p := range parent.Participants {
			if p.ConnID == parent.HostConnID {
				continue
			}
			out[i%req.Count] = append(out[i%req.Count], p.ConnID)
			i++
		}
	case domain.AssignManual:
		if len(req.Manual) > req.Count {
			return nil, domain.Errorf(domain.CodeInvalidParameter, "more assignment lists than rooms")
		}
		seen := make(map[domain.ConnID]struct{})
		for i, list := range req.Manual {
			for _, id := range list {
				if !parent.Has(id) {
					return nil, domain.Errorf(domain.CodeInvalidParameter, "%s is not in the room", id)
				}
				if _, dup := seen[id]; dup {
					return nil, domain.Errorf(domain.CodeInvalidParameter, "%s assigned twice", id)
				}
				seen[id] = struct{}{}
				out[i] = append(out[i], id)
			}
		}
	default:
		return nil, domain.Errorf(domain.CodeInvalidParameter, "unknown assignment mode %q", req.Assignment)
	}
	return out, nil
}

// Child resolves a child room of parent's active configuration.
func (b *Breakouts) Child(parent *domain.Room, id domain.RoomID) (*domain.Room, error) {
	if parent.Breakout == nil || !parent.Breakout.Active {
		return nil, domain.Errorf(domain.CodeInvalidParameter, "no active breakout rooms")
	}
	if !parent.Breakout.Has(id) {
		return nil, domain.Errorf(domain.CodeInvalidParameter, "unknown breakout room %s", id)
	}
	child, ok := b.Rooms.Get(id)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return child, nil
}

// Children returns the live child rooms in configuration order.
func (b *Breakouts) Children(parent *domain.Room) []*domain.Room {
	if parent.Breakout == nil {
		return nil
	}
	out := make([]*domain.Room, 0, len(parent.Breakout.Rooms))
	for _, r := range parent.Breakout.Rooms {
		if child, ok := b.Rooms.Get(r.ID); ok {
			out = append(out, child)
		}
	}
	return out
}

// Move transfers id's participant entry from one family room to another.
// The parent room is never deleted here, even when it ends up empty.
func (b *Breakouts) Move(from, to *domain.Room, id domain.ConnID) (*domain.Participant, error) {
	if from.ID == to.ID {
		return nil, domain.ErrAlreadyPresent
	}
	if to.IsBlocked(id) {
		return nil, domain.ErrBlocked
	}
	p, ok := RemoveParticipant(from, id)
	if !ok {
		return nil, domain.ErrNotInRoom
	}
	if err := addMoved(to, p); err != nil {
		return nil, err
	}
	return p, nil
}

// addMoved keeps the participant's role; a HOST entry in a child room does
// not change the child's host pointer.
func addMoved(room *domain.Room, p *domain.Participant) error {
	if room.Has(p.ConnID) {
		return domain.ErrAlreadyPresent
	}
	room.Participants = append(room.Participants, p)
	return nil
}

// Visit adds a temporary copy of the visitor's entry to child without
// touching the parent roster. A visitor moves between children freely.
func (b *Breakouts) Visit(parent, child *domain.Room, p *domain.Participant) error {
	if prev, ok := parent.Breakout.Visitors[p.ConnID]; ok {
		if prev == child.ID {
			return domain.ErrAlreadyPresent
		}
		b.EndVisit(parent, p.ConnID)
	}
	visitor := *p
	if err := addMoved(child, &visitor); err != nil {
		return err
	}
	parent.Breakout.Visitors[p.ConnID] = child.ID
	return nil
}

// EndVisit removes a visiting entry and reports the child it was in.
func (b *Breakouts) EndVisit(parent *domain.Room, id domain.ConnID) (domain.RoomID, bool) {
	if parent.Breakout == nil {
		return "", false
	}
	childID, ok := parent.Breakout.Visitors[id]
	if !ok {
		return "", false
	}
	delete(parent.Breakout.Visitors, id)
	if child, ok := b.Rooms.Get(childID); ok {
		RemoveParticipant(child, id)
	}
	return childID, true
}

// CloseAll merges every child roster back into the parent, deletes the
// children and clears the configuration. It returns the ids that moved.
func (b *Breakouts) CloseAll(parent *domain.Room) ([]domain.ConnID, error) {
	if parent.Breakout == nil || !parent.Breakout.Active {
		return nil, domain.Errorf(domain.CodeInvalidParameter, "no active breakout rooms")
	}
	visitors := parent.Breakout.Visitors
	var moved []domain.ConnID
	for _, child := range b.Children(parent) {
		for _, p := range child.Participants {
			if _, visiting := visitors[p.ConnID]; visiting {
				continue
			}
			if parent.Has(p.ConnID) {
				continue
			}
			if p.Role == domain.RoleHost && p.ConnID != parent.HostConnID {
				p.Role = domain.RoleParticipant
			}
			parent.Participants = append(parent.Participants, p)
			moved = append(moved, p.ConnID)
		}
		child.Participants = nil
		b.Rooms.Delete(child.ID)
	}
	parent.Breakout = nil

	if parent.HostConnID == "" && !parent.IsEmpty() {
		TransferHost(parent)
	}
	return moved, nil
}

// FamilyEmpty reports whether neither the parent nor any child has members.
func (b *Breakouts) FamilyEmpty(parent *domain.Room) bool {
	if !parent.IsEmpty() {
		return false
	}
	for _, child := range b.Children(parent) {
		if !child.IsEmpty() {
			return false
		}
	}
	return true
}
