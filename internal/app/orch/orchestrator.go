package orch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

const DefaultEmptyRoomTTL = 10 * time.Minute

// Orchestrator is the connection gateway's brain: it routes every inbound
// message to the actor owning the target room family and emits the
// resulting events through Out.
type Orchestrator struct {
	Registry   *app.Registry
	Rooms      *app.Rooms
	Moderation *app.Moderation
	Audit      *app.AuditLog
	Breakouts  *app.Breakouts
	Relay      *app.Relay
	Out        core.Outbox
	Passwords  core.PasswordValidator
	Hasher     app.BcryptPasswords
	ICE        core.ICEServerProvider
	// Limiter throttles chat, reactions and whiteboard traffic; nil disables it.
	Limiter   *app.RateLimiter
	InboxSize int
	// EmptyRoomTTL is how long a created room may stay without anyone
	// joining before it is deleted.
	EmptyRoomTTL time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	actors map[domain.RoomID]*roomActor
	wg     conc.WaitGroup
}

// Start binds the actor lifetime to ctx. It must be called before Dispatch.
func (o *Orchestrator) Start(ctx context.Context) *Orchestrator {
	o.ctx, o.cancel = context.WithCancel(ctx)
	o.actors = make(map[domain.RoomID]*roomActor)
	if o.InboxSize <= 0 {
		o.InboxSize = DefaultInboxSize
	}
	if o.EmptyRoomTTL <= 0 {
		o.EmptyRoomTTL = DefaultEmptyRoomTTL
	}
	if o.Out == nil {
		o.Out = o.Registry
	}
	if o.Passwords == nil {
		o.Passwords = o.Hasher
	}
	if o.ICE == nil {
		o.ICE = app.StaticICE{}
	}
	return o
}

// Close stops every actor and waits for them.
func (o *Orchestrator) Close() {
	o.cancel()
	o.wg.Wait()
}

func (o *Orchestrator) spawn(id domain.RoomID) {
	a := newRoomActor(id, o.InboxSize)
	o.mu.Lock()
	o.actors[id] = a
	o.mu.Unlock()
	o.wg.Go(func() { a.run(o.ctx) })
}

// retire unregisters a and lets its loop exit after the current task. It
// must run on a's goroutine while the family's rooms are still registered,
// so no newer actor can have taken the id yet.
func (o *Orchestrator) retire(id domain.RoomID, a *roomActor) {
	o.mu.Lock()
	if o.actors[id] == a {
		delete(o.actors, id)
	}
	o.mu.Unlock()
	a.retired = true
}

func (o *Orchestrator) actorFor(family domain.RoomID) (*roomActor, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	a, ok := o.actors[family]
	return a, ok
}

// onFamily runs fn on the actor owning roomID's family.
func (o *Orchestrator) onFamily(ctx context.Context, roomID domain.RoomID, fn func() error) error {
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		return domain.ErrRoomNotFound
	}
	a, ok := o.actorFor(room.Family())
	if !ok {
		return domain.ErrRoomNotFound
	}
	var herr error
	if err := a.submit(ctx, func() { herr = fn() }); err != nil {
		return err
	}
	return herr
}

// Dispatch handles one inbound message. Rejections are reported to conn as
// an error event and returned; ALREADY_PRESENT is reconciled silently.
func (o *Orchestrator) Dispatch(ctx context.Context, conn domain.ConnID, msg core.Message) error {
	err := o.dispatch(ctx, conn, msg)
	if err == nil || errors.Is(err, domain.ErrAlreadyPresent) {
		return nil
	}
	log.Debug().Err(err).Str("module", "orch").Str("conn", string(conn)).Str("type", msg.Type).Msg("request rejected")
	o.Out.Send(conn, core.ErrorEvent(err))
	return err
}

func (o *Orchestrator) dispatch(ctx context.Context, conn domain.ConnID, msg core.Message) error {
	switch msg.Type {
	case core.MsgPing:
		o.Out.Send(conn, core.Event{Type: core.EvPong})
		return nil
	case core.MsgCreateRoom:
		return o.handleCreateRoom(ctx, conn, msg)
	case core.MsgJoinRoom:
		return o.handleJoin(ctx, conn, msg)
	case core.MsgOffer, core.MsgAnswer, core.MsgICECandidate:
		return o.handleRelay(conn, msg)
	case core.MsgGetICEServers:
		o.Out.Send(conn, core.Event{Type: core.EvICEServers, Data: map[string]any{"iceServers": o.ICE.FetchICEServers()}})
		return nil
	}

	h, ok := roomHandlers[msg.Type]
	if !ok {
		return domain.Errorf(domain.CodeInvalidParameter, "unknown message type %q", msg.Type)
	}
	roomID := msg.Room
	if roomID == "" {
		var in bool
		if roomID, in = o.Registry.RoomOf(conn); !in {
			return domain.ErrNotInRoom
		}
	}
	return o.onFamily(ctx, roomID, func() error {
		room, ok := o.Rooms.Get(roomID)
		if !ok {
			return domain.ErrRoomNotFound
		}
		return h(o, &call{conn: conn, msg: msg, room: room})
	})
}

// call is one room-scoped request, evaluated on the room's actor.
type call struct {
	conn domain.ConnID
	msg  core.Message
	room *domain.Room
}

// role is the caller's role in its room; the host keeps HOST while it is
// away in a breakout room.
func (c *call) role() domain.Role {
	if p, ok := c.room.Participant(c.conn); ok {
		return p.Role
	}
	if c.conn == c.room.HostConnID {
		return domain.RoleHost
	}
	return domain.RoleParticipant
}

func (c *call) member() (*domain.Participant, error) {
	p, ok := c.room.Participant(c.conn)
	if !ok {
		return nil, domain.ErrNotInRoom
	}
	return p, nil
}

func (c *call) target() (domain.ConnID, error) {
	if c.msg.Target == "" {
		return "", domain.Errorf(domain.CodeInvalidParameter, "target required")
	}
	return c.msg.Target, nil
}

type roomHandler func(o *Orchestrator, c *call) error

var roomHandlers = map[string]roomHandler{
	core.MsgLeaveRoom:         (*Orchestrator).handleLeave,
	core.MsgEndMeeting:        (*Orchestrator).handleEndMeeting,
	core.MsgAdmitUser:         (*Orchestrator).handleAdmit,
	core.MsgRejectUser:        (*Orchestrator).handleReject,
	core.MsgStartScreenShare:  (*Orchestrator).handleStartScreenShare,
	core.MsgStopScreenShare:   (*Orchestrator).handleStopScreenShare,
	core.MsgToggleAudio:       (*Orchestrator).handleToggleAudio,
	core.MsgToggleVideo:       (*Orchestrator).handleToggleVideo,
	core.MsgChatMessage:       (*Orchestrator).handleChat,
	core.MsgPrivateMessage:    (*Orchestrator).handlePrivateMessage,
	core.MsgSendReaction:      (*Orchestrator).handleReaction,
	core.MsgCreatePoll:        (*Orchestrator).handleCreatePoll,
	core.MsgVotePoll:          (*Orchestrator).handleVotePoll,
	core.MsgEndPoll:           (*Orchestrator).handleEndPoll,
	core.MsgWhiteboardDraw:    (*Orchestrator).handleWhiteboard,
	core.MsgCreateBreakout:    (*Orchestrator).handleCreateBreakout,
	core.MsgJoinBreakout:      (*Orchestrator).handleJoinBreakout,
	core.MsgReturnToMain:      (*Orchestrator).handleReturnToMain,
	core.MsgCloseBreakout:     (*Orchestrator).handleCloseBreakout,
	core.MsgHostJoinBreakout:  (*Orchestrator).handleHostJoinBreakout,
	core.MsgStartRecording:    (*Orchestrator).handleStartRecording,
	core.MsgStopRecording:     (*Orchestrator).handleStopRecording,
	core.MsgUpdateSettings:    (*Orchestrator).handleUpdateSettings,
	core.MsgRemoveParticipant: (*Orchestrator).handleRemoveParticipant,
	core.MsgLockMeeting:       (*Orchestrator).handleLock,
	core.MsgUnlockMeeting:     (*Orchestrator).handleUnlock,
	core.MsgAssignCoHost:      (*Orchestrator).handleAssignCoHost,
	core.MsgRemoveCoHost:      (*Orchestrator).handleRemoveCoHost,
	core.MsgAssignModerator:   (*Orchestrator).handleAssignModerator,
	core.MsgRemoveModerator:   (*Orchestrator).handleRemoveModerator,
	core.MsgMuteAll:           (*Orchestrator).handleMuteAll,
	core.MsgMuteParticipant:   (*Orchestrator).handleMuteParticipant,
	core.MsgSpotlightUser:     (*Orchestrator).handleSpotlight,
	core.MsgRemoveSpotlight:   (*Orchestrator).handleRemoveSpotlight,
	core.MsgPinUser:           (*Orchestrator).handlePin,
	core.MsgUnpinUser:         (*Orchestrator).handleUnpin,
	core.MsgBlockUser:         (*Orchestrator).handleBlock,
	core.MsgUnblockUser:       (*Orchestrator).handleUnblock,
	core.MsgReportUser:        (*Orchestrator).handleReport,
	core.MsgGetAuditLogs:      (*Orchestrator).handleGetAuditLogs,
	core.MsgExportAuditLogs:   (*Orchestrator).handleExportAuditLogs,
	core.MsgToggleWatermark:   (*Orchestrator).handleToggleWatermark,
	core.MsgSetComplianceMode: (*Orchestrator).handleSetComplianceMode,
}

func (o *Orchestrator) send(to domain.ConnID, room *domain.Room, typ string, data any) {
	o.Out.Send(to, core.Event{Type: typ, Room: room.ID, Data: data})
}

// broadcast sends to every member of room except one connection.
func (o *Orchestrator) broadcast(room *domain.Room, except domain.ConnID, typ string, data any) {
	ev := core.Event{Type: typ, Room: room.ID, Data: data}
	for _, p := range room.Participants {
		if p.ConnID == except {
			continue
		}
		o.Out.Send(p.ConnID, ev)
	}
}

func (o *Orchestrator) broadcastAll(room *domain.Room, typ string, data any) {
	o.broadcast(room, "", typ, data)
}

// family returns the top-level room of room and then its live children.
func (o *Orchestrator) family(room *domain.Room) (*domain.Room, []*domain.Room) {
	parent := room
	if room.IsBreakout {
		if p, ok := o.Rooms.Get(room.ParentID); ok {
			parent = p
		}
	}
	return parent, o.Breakouts.Children(parent)
}

// familyRole is the highest role conn holds anywhere in room's family.
func (o *Orchestrator) familyRole(room *domain.Room, conn domain.ConnID) domain.Role {
	parent, children := o.family(room)
	role := domain.RoleParticipant
	if parent.HostConnID == conn {
		return domain.RoleHost
	}
	for _, r := range append([]*domain.Room{parent}, children...) {
		if p, ok := r.Participant(conn); ok && p.Role > role {
			role = p.Role
		}
	}
	return role
}
