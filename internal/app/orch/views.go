package orch

import (
	"maps"
	"time"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/pion/webrtc/v4"
)

// Event payloads. Everything here is a copy so an event never aliases room
// state that the actor keeps mutating.

type RoomInfo struct {
	ID          domain.RoomID           `json:"id"`
	DisplayName string                  `json:"displayName"`
	CreatedAt   time.Time               `json:"createdAt"`
	HostID      domain.ConnID           `json:"hostId"`
	Settings    domain.Settings         `json:"settings"`
	Compliance  domain.CompliancePolicy `json:"compliance"`
	Spotlight   domain.ConnID           `json:"spotlight,omitempty"`
	Pinned      []domain.ConnID         `json:"pinned,omitempty"`
	IsBreakout  bool                    `json:"isBreakout"`
	ParentID    domain.RoomID           `json:"parentId,omitempty"`
	Breakout    *domain.BreakoutConfig  `json:"breakout,omitempty"`
	Recording   bool                    `json:"recording"`
	HasPassword bool                    `json:"hasPassword"`
	YourRole    domain.Role             `json:"yourRole"`
	Waiting     []domain.WaitingEntry   `json:"waiting,omitempty"`
	Polls       []PollView              `json:"polls,omitempty"`
	ICEServers  []webrtc.ICEServer      `json:"iceServers,omitempty"`
}

type RoomSummary struct {
	ID           domain.RoomID `json:"id"`
	DisplayName  string        `json:"displayName"`
	CreatedAt    time.Time     `json:"createdAt"`
	Participants int           `json:"participants"`
	Waiting      int           `json:"waiting"`
	Locked       bool          `json:"locked"`
	HasPassword  bool          `json:"hasPassword"`
	IsBreakout   bool          `json:"isBreakout"`
	ParentID     domain.RoomID `json:"parentId,omitempty"`
}

type PollView struct {
	ID        string        `json:"id"`
	Question  string        `json:"question"`
	Options   []string      `json:"options"`
	Tally     []int         `json:"tally"`
	CreatedBy domain.ConnID `json:"createdBy"`
	Active    bool          `json:"active"`
}

type participantRef struct {
	ConnID      domain.ConnID `json:"connectionId"`
	DisplayName string        `json:"displayName,omitempty"`
}

func pollView(p *domain.Poll) PollView {
	return PollView{
		ID:        p.ID,
		Question:  p.Question,
		Options:   append([]string(nil), p.Options...),
		Tally:     p.Tally(),
		CreatedBy: p.CreatedBy,
		Active:    p.Active,
	}
}

func summarize(room *domain.Room) RoomSummary {
	return RoomSummary{
		ID:           room.ID,
		DisplayName:  room.DisplayName,
		CreatedAt:    room.CreatedAt,
		Participants: len(room.Participants),
		Waiting:      len(room.Waiting),
		Locked:       room.Settings.Locked,
		HasPassword:  room.Password != "",
		IsBreakout:   room.IsBreakout,
		ParentID:     room.ParentID,
	}
}

func snapshotBreakout(cfg *domain.BreakoutConfig) *domain.BreakoutConfig {
	if cfg == nil {
		return nil
	}
	out := *cfg
	out.Rooms = make([]domain.BreakoutRoom, len(cfg.Rooms))
	for i, r := range cfg.Rooms {
		r.Assigned = append([]domain.ConnID(nil), r.Assigned...)
		out.Rooms[i] = r
	}
	out.Visitors = maps.Clone(cfg.Visitors)
	return &out
}

func (o *Orchestrator) roomInfo(room *domain.Room, viewer domain.ConnID) RoomInfo {
	role := room.RoleOf(viewer)
	if viewer == room.HostConnID {
		role = domain.RoleHost
	}
	info := RoomInfo{
		ID:          room.ID,
		DisplayName: room.DisplayName,
		CreatedAt:   room.CreatedAt,
		HostID:      room.HostConnID,
		Settings:    room.Settings,
		Compliance:  room.Compliance,
		Spotlight:   room.Spotlight,
		Pinned:      append([]domain.ConnID(nil), room.Pinned...),
		IsBreakout:  room.IsBreakout,
		ParentID:    room.ParentID,
		Breakout:    snapshotBreakout(room.Breakout),
		Recording:   room.Recording,
		HasPassword: room.Password != "",
		YourRole:    role,
		ICEServers:  o.ICE.FetchICEServers(),
	}
	if app.Can(role, app.CapManageParticipants) {
		info.Waiting = append([]domain.WaitingEntry(nil), room.Waiting...)
	}
	for _, p := range room.Polls {
		info.Polls = append(info.Polls, pollView(p))
	}
	return info
}

// sendRoomState gives conn the full roster and room info.
func (o *Orchestrator) sendRoomState(room *domain.Room, conn domain.ConnID) {
	o.send(conn, room, core.EvRoomParticipants, map[string]any{"participants": app.Roster(room)})
	o.send(conn, room, core.EvRoomInfo, o.roomInfo(room, conn))
}
