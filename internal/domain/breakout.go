package domain

import (
	"fmt"
	"strings"
	"time"
)

type AssignmentMode string

const (
	AssignAuto   AssignmentMode = "AUTO"
	AssignManual AssignmentMode = "MANUAL"
)

func ParseAssignmentMode(s string) (AssignmentMode, error) {
	switch m := AssignmentMode(strings.ToUpper(s)); m {
	case AssignAuto, AssignManual:
		return m, nil
	case "":
		return AssignAuto, nil
	default:
		return "", fmt.Errorf("unknown assignment mode %q", s)
	}
}

type BreakoutTimer struct {
	StartedAt time.Time `json:"startedAt"`
	EndsAt    time.Time `json:"endsAt"`
}

type BreakoutRoom struct {
	ID       RoomID   `json:"id"`
	Name     string   `json:"name"`
	Assigned []ConnID `json:"assigned"`
}

// BreakoutConfig describes the active sub-room topology of a parent room.
// The timer is informational, nothing closes the rooms when it runs out.
type BreakoutConfig struct {
	ParentID   RoomID         `json:"parentRoomId"`
	Rooms      []BreakoutRoom `json:"rooms"`
	Assignment AssignmentMode `json:"assignment"`
	Timer      BreakoutTimer  `json:"timer"`
	Active     bool           `json:"isActive"`
	// Visitors maps a visiting host/co-host to the child room it is visiting.
	Visitors map[ConnID]RoomID `json:"visitors,omitempty"`
}

func (c *BreakoutConfig) Has(id RoomID) bool {
	for _, r := range c.Rooms {
		if r.ID == id {
			return true
		}
	}
	return false
}

func (c *BreakoutConfig) ChildIDs() []RoomID {
	out := make([]RoomID, 0, len(c.Rooms))
	for _, r := range c.Rooms {
		out = append(out, r.ID)
	}
	return out
}
