package app

import (
	"context"
	"sync"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

type connEntry struct {
	Signal      core.SignalConnection
	Cancel      context.CancelFunc
	RoomID      domain.RoomID
	WaitingIn   domain.RoomID
	DisplayName string
}

// Registry indexes live connections: their transport endpoint and the room
// (or waiting room) each one currently sits in. It also implements core.Outbox.
type Registry struct {
	mu     sync.RWMutex
	conns  map[domain.ConnID]*connEntry
	policy Policy
}

func NewRegistry(policy Policy) *Registry {
	return &Registry{
		conns:  make(map[domain.ConnID]*connEntry),
		policy: policy,
	}
}

func (r *Registry) entry(id domain.ConnID) *connEntry {
	e, ok := r.conns[id]
	if !ok {
		e = &connEntry{}
		r.conns[id] = e
	}
	return e
}

// BindSignal attaches a transport to id. A previous transport bound to the
// same id is canceled; its room membership is kept for the new one.
func (r *Registry) BindSignal(id domain.ConnID, sig core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	e := r.entry(id)
	prevCancel := e.Cancel
	replaced := e.Signal != nil
	e.Signal = sig
	e.Cancel = cancel
	r.mu.Unlock()

	if replaced && prevCancel != nil {
		prevCancel()
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Bool("replaced", replaced).Msg("bound signal")
}

// Unbind detaches sig from id only while it is still the current
// transport. Room bookkeeping survives until Forget so the disconnect
// handler can still find it.
func (r *Registry) Unbind(id domain.ConnID, sig core.SignalConnection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok || e.Signal != sig {
		return false
	}
	e.Signal = nil
	e.Cancel = nil
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("unbind signal")
	return true
}

// Forget drops id entirely unless a new transport was bound meanwhile.
func (r *Registry) Forget(id domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[id]; ok && e.Signal == nil {
		delete(r.conns, id)
	}
}

func (r *Registry) IsConnected(id domain.ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	return ok && e.Signal != nil
}

func (r *Registry) SetDisplayName(id domain.ConnID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entry(id).DisplayName = name
}

func (r *Registry) DisplayName(id domain.ConnID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[id]; ok && e.DisplayName != "" {
		return e.DisplayName
	}
	return domain.DefaultDisplayName
}

func (r *Registry) RoomOf(id domain.ConnID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok || e.RoomID == "" {
		return "", false
	}
	return e.RoomID, true
}

// SetRoom records id as a member of room and clears any waiting state.
func (r *Registry) SetRoom(id domain.ConnID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entry(id)
	e.RoomID = room
	e.WaitingIn = ""
}

// ClearRoom forgets the membership only if it still points at room.
func (r *Registry) ClearRoom(id domain.ConnID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[id]; ok && e.RoomID == room {
		e.RoomID = ""
	}
}

func (r *Registry) WaitingOf(id domain.ConnID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok || e.WaitingIn == "" {
		return "", false
	}
	return e.WaitingIn, true
}

func (r *Registry) SetWaiting(id domain.ConnID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entry(id).WaitingIn = room
}

func (r *Registry) ClearWaiting(id domain.ConnID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[id]; ok && e.WaitingIn == room {
		e.WaitingIn = ""
	}
}

// Cancel closes the transport bound to id, which ends in the disconnect handler.
func (r *Registry) Cancel(id domain.ConnID) bool {
	r.mu.RLock()
	e, ok := r.conns[id]
	var cancel context.CancelFunc
	if ok {
		cancel = e.Cancel
	}
	r.mu.RUnlock()
	if cancel == nil {
		return false
	}
	cancel()
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("canceled connection")
	return true
}

// Send encodes ev and queues it on the transport of to. Unknown or
// disconnected targets are ignored.
func (r *Registry) Send(to domain.ConnID, ev core.Event) {
	r.mu.RLock()
	e, ok := r.conns[to]
	var sig core.SignalConnection
	if ok {
		sig = e.Signal
	}
	r.mu.RUnlock()
	if sig == nil {
		return
	}

	frame, err := ev.Encode()
	if err != nil {
		log.Error().Err(err).Str("module", "app.registry").Str("type", ev.Type).Msg("encode event")
		return
	}
	if err := sig.TrySend(frame); err != nil {
		r.onSendFailure(to, ev, err)
	}
}

func (r *Registry) onSendFailure(to domain.ConnID, ev core.Event, err error) {
	action := DropFrame
	if r.policy != nil {
		action = r.policy.OnBackPressure(to)
	}
	log.Warn().Err(err).Str("module", "app.registry").Str("conn", string(to)).Str("type", ev.Type).Msg("send failed")
	if action == KickMember {
		r.Cancel(to)
	}
}
