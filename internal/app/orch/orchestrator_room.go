package orch

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

type CreateRoomRequest struct {
	ID          domain.RoomID    `json:"id,omitempty"`
	DisplayName string           `json:"displayName,omitempty"`
	Password    string           `json:"password,omitempty"`
	Settings    *domain.Settings `json:"settings,omitempty"`
}

// CreateRoom registers a new top-level room owned by host and starts its
// actor. The host still has to join it.
func (o *Orchestrator) CreateRoom(host domain.ConnID, req CreateRoomRequest) (RoomSummary, error) {
	settings := domain.DefaultSettings()
	if req.Settings != nil {
		settings = *req.Settings
		if settings.ComplianceMode == "" {
			settings.ComplianceMode = domain.ComplianceStandard
		}
	}
	if _, err := domain.ParseComplianceMode(string(settings.ComplianceMode)); err != nil {
		return RoomSummary{}, domain.Errorf(domain.CodeInvalidParameter, "%v", err)
	}
	name := strings.TrimSpace(req.DisplayName)
	hash, err := o.Hasher.Hash(req.Password)
	if err != nil {
		if domain.CodeOf(err) == domain.CodeInvalidParameter {
			return RoomSummary{}, err
		}
		return RoomSummary{}, domain.Errorf(domain.CodeInternal, "hash password: %v", err)
	}

	room, err := o.Rooms.Create(req.ID, name, settings, func(r *domain.Room) {
		r.HostConnID = host
		r.CreatorConnID = host
		r.Password = hash
		r.Compliance = domain.PresetFor(settings.ComplianceMode)
		if r.DisplayName == "" {
			r.DisplayName = string(r.ID)
		}
	})
	if err != nil {
		return RoomSummary{}, err
	}
	o.spawn(room.ID)
	o.Audit.Log(room.ID, domain.AuditRoomCreated, host, map[string]any{"displayName": room.DisplayName})
	log.Info().Str("module", "orch").Str("room", string(room.ID)).Str("host", string(host)).Msg("room created")
	time.AfterFunc(o.EmptyRoomTTL, func() { o.reapUnused(room) })
	// Nothing else can reach the room until its actor exists.
	return summarize(room), nil
}

// reapUnused deletes room if nobody is in its family when the empty-room
// TTL fires. A later room reusing the id is left alone.
func (o *Orchestrator) reapUnused(room *domain.Room) {
	err := o.onFamily(o.ctx, room.ID, func() error {
		if cur, ok := o.Rooms.Get(room.ID); !ok || cur != room {
			return nil
		}
		if !o.Breakouts.FamilyEmpty(room) || len(room.Waiting) > 0 {
			return nil
		}
		log.Info().Str("module", "orch").Str("room", string(room.ID)).Msg("reaping unused room")
		o.deleteFamilyLocked(room, "")
		return nil
	})
	if err != nil && !errors.Is(err, domain.ErrRoomNotFound) && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Str("module", "orch").Str("room", string(room.ID)).Msg("reap unused room")
	}
}

func (o *Orchestrator) handleCreateRoom(_ context.Context, conn domain.ConnID, msg core.Message) error {
	var req CreateRoomRequest
	if err := msg.Decode(&req); err != nil {
		return err
	}
	if req.ID == "" {
		req.ID = msg.Room
	}
	sum, err := o.CreateRoom(conn, req)
	if err != nil {
		return err
	}
	o.Out.Send(conn, core.Event{Type: core.EvRoomCreated, Room: sum.ID, Data: sum})
	return nil
}

type joinData struct {
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

func (o *Orchestrator) handleJoin(ctx context.Context, conn domain.ConnID, msg core.Message) error {
	if msg.Room == "" {
		return domain.Errorf(domain.CodeInvalidParameter, "room required")
	}
	var d joinData
	if err := msg.Decode(&d); err != nil {
		return err
	}
	name := o.Registry.DisplayName(conn)
	if strings.TrimSpace(d.DisplayName) != "" {
		n, err := domain.ValidateDisplayName(d.DisplayName)
		if err != nil {
			return domain.Errorf(domain.CodeInvalidParameter, "%v", err)
		}
		name = n
		o.Registry.SetDisplayName(conn, n)
	}

	target, ok := o.Rooms.Get(msg.Room)
	if !ok {
		return domain.ErrRoomNotFound
	}
	family := target.Family()

	// One room at a time: leave whatever other family conn is in first.
	for _, lookup := range []func(domain.ConnID) (domain.RoomID, bool){o.Registry.RoomOf, o.Registry.WaitingOf} {
		cur, ok := lookup(conn)
		if !ok {
			continue
		}
		if r, ok := o.Rooms.Get(cur); ok && r.Family() != family {
			if err := o.onFamily(ctx, cur, func() error {
				o.leaveFamilyLocked(r, conn)
				return nil
			}); err != nil && !errors.Is(err, domain.ErrRoomNotFound) {
				return err
			}
		}
	}

	// The hash never changes after creation, so it is safe to check here
	// and keep bcrypt off the actor.
	passwordOK := o.Passwords.ValidateRoomPassword(target, d.Password)
	return o.onFamily(ctx, msg.Room, func() error {
		room, ok := o.Rooms.Get(msg.Room)
		if !ok {
			return domain.ErrRoomNotFound
		}
		return o.joinLocked(room, conn, name, passwordOK)
	})
}

func (o *Orchestrator) joinLocked(room *domain.Room, conn domain.ConnID, name string, passwordOK bool) error {
	if room.IsBlocked(conn) {
		return domain.ErrBlocked
	}
	isHost := conn == room.HostConnID
	if room.Settings.Locked && !isHost {
		return domain.ErrMeetingLocked
	}
	if room.Has(conn) {
		// Reconnect: the client lost its state, give it back.
		o.sendRoomState(room, conn)
		return nil
	}
	if cur, ok := o.Registry.RoomOf(conn); ok && cur != room.ID {
		if from, ok := o.Rooms.Get(cur); ok && from.Family() == room.Family() && from.Has(conn) {
			return o.moveLocked(from, room, conn)
		}
	}
	if !passwordOK && !isHost {
		return domain.ErrInvalidPassword
	}

	if room.Settings.WaitingRoomEnabled && !isHost && room.HostConnID != "" {
		added := app.Enqueue(room, conn, name)
		o.Registry.SetWaiting(conn, room.ID)
		o.send(conn, room, core.EvWaitingRoom, map[string]any{"roomId": room.ID, "position": len(room.Waiting)})
		if added {
			o.broadcastAll(room, core.EvUserWaiting, participantRef{ConnID: conn, DisplayName: name})
			o.Audit.Log(room.ID, domain.AuditWaiting, conn, map[string]any{"displayName": name})
		}
		return nil
	}
	_, err := o.admitLocked(room, conn, name)
	return err
}

// admitLocked makes conn a participant of room and tells everyone.
func (o *Orchestrator) admitLocked(room *domain.Room, conn domain.ConnID, name string) (*domain.Participant, error) {
	// A direct join supersedes a pending waiting-room entry.
	if _, ok := app.Dequeue(room, conn); ok {
		o.Registry.ClearWaiting(conn, room.ID)
	}
	p := domain.NewParticipant(conn, name, app.JoinRole(room, conn))
	if err := app.AddParticipant(room, p); err != nil {
		return nil, err
	}
	o.Registry.SetRoom(conn, room.ID)
	o.broadcast(room, conn, core.EvUserJoined, *p)
	o.sendRoomState(room, conn)
	o.Audit.Log(room.ID, domain.AuditJoined, conn, map[string]any{"displayName": name, "role": p.Role})
	log.Info().Str("module", "orch").Str("room", string(room.ID)).Str("conn", string(conn)).Stringer("role", p.Role).Msg("participant joined")
	return p, nil
}

func (o *Orchestrator) handleAdmit(c *call) error {
	target, err := c.target()
	if err != nil {
		return err
	}
	if _, err := c.member(); err != nil {
		return err
	}
	e, err := app.Admit(c.room, c.role(), target)
	if err != nil {
		return err
	}
	o.Registry.ClearWaiting(target, c.room.ID)
	if c.room.IsBlocked(target) {
		return domain.ErrBlocked
	}
	o.send(target, c.room, core.EvAdmittedToRoom, map[string]any{"roomId": c.room.ID})
	if _, err := o.admitLocked(c.room, target, e.DisplayName); err != nil {
		return err
	}
	o.broadcast(c.room, target, core.EvUserAdmitted, map[string]any{"connectionId": target, "by": c.conn})
	o.Audit.Log(c.room.ID, domain.AuditAdmitted, c.conn, map[string]any{"target": target})
	return nil
}

func (o *Orchestrator) handleReject(c *call) error {
	target, err := c.target()
	if err != nil {
		return err
	}
	if _, err := c.member(); err != nil {
		return err
	}
	if _, err := app.Reject(c.room, c.role(), target); err != nil {
		return err
	}
	o.Registry.ClearWaiting(target, c.room.ID)
	o.send(target, c.room, core.EvRejectedFromRoom, map[string]any{"roomId": c.room.ID})
	o.broadcastAll(c.room, core.EvUserRejected, map[string]any{"connectionId": target, "by": c.conn})
	o.Audit.Log(c.room.ID, domain.AuditRejected, c.conn, map[string]any{"target": target})
	return nil
}

func (o *Orchestrator) handleLeave(c *call) error {
	if !c.room.Has(c.conn) && !c.room.IsWaiting(c.conn) {
		return domain.ErrNotInRoom
	}
	o.send(c.conn, c.room, core.EvUserLeft, participantRef{ConnID: c.conn})
	o.leaveFamilyLocked(c.room, c.conn)
	return nil
}

// Disconnect removes conn from every room and waiting list it is in. It is
// called once per connection, after the transport is gone.
func (o *Orchestrator) Disconnect(ctx context.Context, conn domain.ConnID) {
	seen := make(map[domain.RoomID]struct{}, 2)
	for _, lookup := range []func(domain.ConnID) (domain.RoomID, bool){o.Registry.RoomOf, o.Registry.WaitingOf} {
		id, ok := lookup(conn)
		if !ok {
			continue
		}
		room, ok := o.Rooms.Get(id)
		if !ok {
			continue
		}
		if _, dup := seen[room.Family()]; dup {
			continue
		}
		seen[room.Family()] = struct{}{}
		err := o.onFamily(ctx, id, func() error {
			if r, ok := o.Rooms.Get(id); ok {
				o.leaveFamilyLocked(r, conn)
			}
			return nil
		})
		if err != nil && !errors.Is(err, domain.ErrRoomNotFound) {
			log.Warn().Err(err).Str("module", "orch").Str("conn", string(conn)).Msg("disconnect cleanup failed")
		}
	}
	o.Limiter.Forget(conn)
	o.Registry.Forget(conn)
	log.Info().Str("module", "orch").Str("conn", string(conn)).Msg("disconnected")
}

// leaveFamilyLocked takes conn out of every room of room's family, hands
// the host role on and deletes the family once nobody is left.
func (o *Orchestrator) leaveFamilyLocked(room *domain.Room, conn domain.ConnID) {
	parent, children := o.family(room)
	if childID, ok := o.Breakouts.EndVisit(parent, conn); ok {
		if child, ok := o.Rooms.Get(childID); ok {
			o.broadcastAll(child, core.EvUserLeft, participantRef{ConnID: conn})
		}
	}
	for _, r := range append([]*domain.Room{parent}, children...) {
		o.removeLocked(r, conn)
		if _, ok := app.Dequeue(r, conn); ok {
			o.Registry.ClearWaiting(conn, r.ID)
		}
	}
	if parent.HostConnID == conn {
		o.transferHostLocked(parent, conn)
	}
	o.reapLocked(parent)
}

// removeLocked drops conn from a single room. It reports whether conn was
// a participant there.
func (o *Orchestrator) removeLocked(room *domain.Room, conn domain.ConnID) bool {
	p, ok := app.RemoveParticipant(room, conn)
	if !ok {
		return false
	}
	o.Registry.ClearRoom(conn, room.ID)
	o.broadcastAll(room, core.EvUserLeft, participantRef{ConnID: conn, DisplayName: p.DisplayName})
	o.Audit.Log(room.ID, domain.AuditLeft, conn, nil)
	if !room.IsBreakout && room.HostConnID == conn {
		o.transferHostLocked(room, conn)
	}
	return true
}

func (o *Orchestrator) transferHostLocked(room *domain.Room, prev domain.ConnID) {
	next, ok := app.TransferHost(room)
	if !ok {
		log.Info().Str("module", "orch").Str("room", string(room.ID)).Msg("host left an empty room")
		return
	}
	o.broadcastAll(room, core.EvHostLeft, map[string]any{"previousHostId": prev, "newHostId": next})
	o.Audit.Log(room.ID, domain.AuditHostTransferred, prev, map[string]any{"newHost": next})
	log.Info().Str("module", "orch").Str("room", string(room.ID)).Str("host", string(next)).Msg("host transferred")
}

// reapLocked deletes parent and its children once the whole family is empty.
func (o *Orchestrator) reapLocked(parent *domain.Room) {
	if !o.Breakouts.FamilyEmpty(parent) {
		return
	}
	o.deleteFamilyLocked(parent, "")
}

// deleteFamilyLocked tears a family down. Anyone still inside or waiting
// gets meeting-ended.
func (o *Orchestrator) deleteFamilyLocked(parent *domain.Room, by domain.ConnID) {
	if a, ok := o.actorFor(parent.ID); ok {
		o.retire(parent.ID, a)
	}
	for _, r := range append(o.Breakouts.Children(parent), parent) {
		ended := map[string]any{"roomId": parent.ID, "by": by}
		for _, p := range r.Participants {
			o.send(p.ConnID, r, core.EvMeetingEnded, ended)
			o.Registry.ClearRoom(p.ConnID, r.ID)
		}
		for _, w := range r.Waiting {
			o.send(w.ConnID, r, core.EvMeetingEnded, ended)
			o.Registry.ClearWaiting(w.ConnID, r.ID)
		}
		r.Participants, r.Waiting = nil, nil
		o.Rooms.Delete(r.ID)
	}
	parent.Breakout = nil
	o.Audit.Log(parent.ID, domain.AuditRoomDeleted, by, nil)
}

func (o *Orchestrator) handleEndMeeting(c *call) error {
	parent, _ := o.family(c.room)
	if err := app.Authorize(o.familyRole(c.room, c.conn), app.CapManageSecurity); err != nil {
		return err
	}
	o.Audit.Log(parent.ID, domain.AuditMeetingEnded, c.conn, nil)
	o.deleteFamilyLocked(parent, c.conn)
	return nil
}

// RoomSummary returns a snapshot taken on the room's actor.
func (o *Orchestrator) RoomSummary(ctx context.Context, id domain.RoomID) (RoomSummary, error) {
	var sum RoomSummary
	err := o.onFamily(ctx, id, func() error {
		room, ok := o.Rooms.Get(id)
		if !ok {
			return domain.ErrRoomNotFound
		}
		sum = summarize(room)
		return nil
	})
	return sum, err
}

// ListRooms summarizes every live room, skipping ones deleted meanwhile.
func (o *Orchestrator) ListRooms(ctx context.Context) []RoomSummary {
	ids := o.Rooms.IDs()
	out := make([]RoomSummary, 0, len(ids))
	for _, id := range ids {
		sum, err := o.RoomSummary(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, sum)
	}
	return out
}

// AuditFor returns a room's trail if conn may read it. Once the room is
// gone the retained trail is still served to the connection that created it.
func (o *Orchestrator) AuditFor(ctx context.Context, id domain.RoomID, conn domain.ConnID) (app.AuditExport, error) {
	var export app.AuditExport
	err := o.onFamily(ctx, id, func() error {
		room, ok := o.Rooms.Get(id)
		if !ok {
			return domain.ErrRoomNotFound
		}
		if conn != room.CreatorConnID {
			if err := app.Authorize(o.familyRole(room, conn), app.CapManageRoom); err != nil {
				return err
			}
		}
		export = o.Audit.Export(id)
		return nil
	})
	if !errors.Is(err, domain.ErrRoomNotFound) {
		return export, err
	}
	creator, ok := o.Audit.Creator(id)
	if !ok {
		return app.AuditExport{}, domain.ErrRoomNotFound
	}
	if creator != conn {
		return app.AuditExport{}, domain.ErrInsufficientPermissions
	}
	return o.Audit.Export(id), nil
}
