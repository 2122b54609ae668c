package orch

import (
	"context"

	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

const DefaultInboxSize = 64

type task struct {
	fn   func()
	done chan struct{}
}

// roomActor owns one room family: a top-level room and its breakout
// children. Every mutation of those rooms runs on its goroutine.
type roomActor struct {
	id      domain.RoomID
	inbox   chan task
	stopped chan struct{}
	// retired is only touched on the actor goroutine.
	retired bool
}

func newRoomActor(id domain.RoomID, inboxSize int) *roomActor {
	return &roomActor{
		id:      id,
		inbox:   make(chan task, inboxSize),
		stopped: make(chan struct{}),
	}
}

func (a *roomActor) run(ctx context.Context) {
	defer close(a.stopped)
	log.Debug().Str("module", "orch.actor").Str("room", string(a.id)).Msg("actor started")
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-a.inbox:
			t.fn()
			retired := a.retired
			close(t.done)
			if retired {
				log.Debug().Str("module", "orch.actor").Str("room", string(a.id)).Msg("actor retired")
				return
			}
		}
	}
}

// submit runs fn on the actor and waits for it. A retired actor reports
// ROOM_NOT_FOUND for work it never ran.
func (a *roomActor) submit(ctx context.Context, fn func()) error {
	t := task{fn: fn, done: make(chan struct{})}
	select {
	case a.inbox <- t:
	case <-a.stopped:
		return domain.ErrRoomNotFound
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-t.done:
		return nil
	case <-a.stopped:
		select {
		case <-t.done:
			return nil
		default:
			return domain.ErrRoomNotFound
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}
