package orch

import (
	"time"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

type breakoutData struct {
	Count       int               `json:"count"`
	DurationMs  int64             `json:"durationMs"`
	Assignment  string            `json:"assignment"`
	Assignments [][]domain.ConnID `json:"assignments"`
	Names       []string          `json:"names"`
}

type breakoutRef struct {
	BreakoutRoomID domain.RoomID `json:"breakoutRoomId"`
}

func (o *Orchestrator) handleCreateBreakout(c *call) error {
	if c.room.IsBreakout {
		return domain.Errorf(domain.CodeInvalidParameter, "breakout rooms cannot be nested")
	}
	if err := app.Authorize(o.familyRole(c.room, c.conn), app.CapManageRoom); err != nil {
		return err
	}
	var d breakoutData
	if err := c.msg.Decode(&d); err != nil {
		return err
	}
	mode, err := domain.ParseAssignmentMode(d.Assignment)
	if err != nil {
		return domain.Errorf(domain.CodeInvalidParameter, "%v", err)
	}
	cfg, err := o.Breakouts.Create(c.room, app.BreakoutRequest{
		Count:      d.Count,
		Duration:   time.Duration(d.DurationMs) * time.Millisecond,
		Assignment: mode,
		Manual:     d.Assignments,
		Names:      d.Names,
	})
	if err != nil {
		return err
	}
	o.Audit.Log(c.room.ID, domain.AuditBreakoutCreated, c.conn, map[string]any{"rooms": cfg.ChildIDs(), "assignment": mode})
	log.Info().Str("module", "orch").Str("room", string(c.room.ID)).Int("count", len(cfg.Rooms)).Msg("breakout rooms created")
	o.broadcastAll(c.room, core.EvBreakoutCreated, snapshotBreakout(cfg))
	return nil
}

// memberRoom finds the family room where conn has its own entry.
func (o *Orchestrator) memberRoom(parent *domain.Room, conn domain.ConnID) (*domain.Room, bool) {
	if parent.Has(conn) {
		return parent, true
	}
	for _, child := range o.Breakouts.Children(parent) {
		if child.Has(conn) {
			return child, true
		}
	}
	return nil, false
}

// moveLocked moves conn between two rooms of the same family.
func (o *Orchestrator) moveLocked(from, to *domain.Room, conn domain.ConnID) error {
	p, err := o.Breakouts.Move(from, to, conn)
	if err != nil {
		return err
	}
	o.Registry.SetRoom(conn, to.ID)
	o.broadcastAll(from, core.EvUserLeft, participantRef{ConnID: conn, DisplayName: p.DisplayName})
	o.broadcast(to, conn, core.EvUserJoined, *p)
	if to.IsBreakout {
		o.send(conn, to, core.EvBreakoutJoined, map[string]any{
			"roomId":       to.ID,
			"displayName":  to.DisplayName,
			"parentRoomId": to.ParentID,
			"participants": app.Roster(to),
		})
	} else {
		o.send(conn, to, core.EvReturnedToMain, map[string]any{
			"roomId":       to.ID,
			"participants": app.Roster(to),
		})
	}
	return nil
}

func (o *Orchestrator) handleJoinBreakout(c *call) error {
	parent, _ := o.family(c.room)
	var d breakoutRef
	if err := c.msg.Decode(&d); err != nil {
		return err
	}
	child, err := o.Breakouts.Child(parent, d.BreakoutRoomID)
	if err != nil {
		return err
	}
	if child.IsBlocked(c.conn) {
		return domain.ErrBlocked
	}
	if childID, ok := o.Breakouts.EndVisit(parent, c.conn); ok {
		if prev, ok := o.Rooms.Get(childID); ok {
			o.broadcastAll(prev, core.EvUserLeft, participantRef{ConnID: c.conn})
		}
	}
	from, ok := o.memberRoom(parent, c.conn)
	if !ok {
		return domain.ErrNotInRoom
	}
	return o.moveLocked(from, child, c.conn)
}

func (o *Orchestrator) handleReturnToMain(c *call) error {
	parent, _ := o.family(c.room)
	if childID, ok := o.Breakouts.EndVisit(parent, c.conn); ok {
		if child, ok := o.Rooms.Get(childID); ok {
			o.broadcastAll(child, core.EvUserLeft, participantRef{ConnID: c.conn})
		}
		o.send(c.conn, parent, core.EvReturnedToMain, map[string]any{
			"roomId":       parent.ID,
			"participants": app.Roster(parent),
		})
		return nil
	}
	from, ok := o.memberRoom(parent, c.conn)
	if !ok {
		return domain.ErrNotInRoom
	}
	if from == parent {
		return domain.ErrAlreadyPresent
	}
	return o.moveLocked(from, parent, c.conn)
}

// handleHostJoinBreakout lets a manager drop into a child room while its
// entry stays in the main room.
func (o *Orchestrator) handleHostJoinBreakout(c *call) error {
	parent, _ := o.family(c.room)
	if err := app.Authorize(o.familyRole(c.room, c.conn), app.CapManageRoom); err != nil {
		return err
	}
	var d breakoutRef
	if err := c.msg.Decode(&d); err != nil {
		return err
	}
	child, err := o.Breakouts.Child(parent, d.BreakoutRoomID)
	if err != nil {
		return err
	}
	p, ok := parent.Participant(c.conn)
	if !ok {
		return domain.Errorf(domain.CodeNotInRoom, "visiting requires a seat in the main room")
	}
	prev, hadPrev := parent.Breakout.Visitors[c.conn]
	if err := o.Breakouts.Visit(parent, child, p); err != nil {
		return err
	}
	if hadPrev {
		if r, ok := o.Rooms.Get(prev); ok {
			o.broadcastAll(r, core.EvUserLeft, participantRef{ConnID: c.conn})
		}
	}
	visitor, _ := child.Participant(c.conn)
	o.broadcast(child, c.conn, core.EvUserJoined, *visitor)
	o.send(c.conn, child, core.EvBreakoutJoined, map[string]any{
		"roomId":       child.ID,
		"displayName":  child.DisplayName,
		"parentRoomId": parent.ID,
		"participants": app.Roster(child),
		"visiting":     true,
	})
	return nil
}

func (o *Orchestrator) handleCloseBreakout(c *call) error {
	parent, _ := o.family(c.room)
	if err := app.Authorize(o.familyRole(c.room, c.conn), app.CapManageRoom); err != nil {
		return err
	}
	hostBefore := parent.HostConnID
	moved, err := o.Breakouts.CloseAll(parent)
	if err != nil {
		return err
	}
	for _, id := range moved {
		o.Registry.SetRoom(id, parent.ID)
	}
	o.Audit.Log(parent.ID, domain.AuditBreakoutClosed, c.conn, map[string]any{"returned": len(moved)})
	o.broadcastAll(parent, core.EvBreakoutClosed, map[string]any{"parentRoomId": parent.ID, "by": c.conn})
	for _, p := range parent.Participants {
		o.sendRoomState(parent, p.ConnID)
	}
	if parent.HostConnID != hostBefore {
		o.broadcastAll(parent, core.EvHostLeft, map[string]any{"previousHostId": hostBefore, "newHostId": parent.HostConnID})
		o.Audit.Log(parent.ID, domain.AuditHostTransferred, c.conn, map[string]any{"newHost": parent.HostConnID})
	}
	return nil
}
