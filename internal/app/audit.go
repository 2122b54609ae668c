package app

import (
	"context"
	"sync"
	"time"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const DefaultAuditBuffer = 1024

// AuditLog keeps every room's append-only audit trail in memory for the
// life of the process, including rooms that have since been deleted.
// Entries are forwarded to an optional sink from a separate worker.
type AuditLog struct {
	mu      sync.RWMutex
	entries map[domain.RoomID][]domain.AuditEntry

	sink  core.AuditSink
	queue chan domain.AuditEntry
	now   func() time.Time
}

func NewAuditLog(sink core.AuditSink, buffer int) *AuditLog {
	if buffer <= 0 {
		buffer = DefaultAuditBuffer
	}
	return &AuditLog{
		entries: make(map[domain.RoomID][]domain.AuditEntry),
		sink:    sink,
		queue:   make(chan domain.AuditEntry, buffer),
		now:     time.Now,
	}
}

// Log appends an entry. It never fails and never waits on the sink; when
// the sink queue is full the entry is kept in memory only.
func (l *AuditLog) Log(room domain.RoomID, action domain.AuditAction, actor domain.ConnID, detail map[string]any) domain.AuditEntry {
	e := domain.AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: l.now(),
		RoomID:    room,
		Action:    action,
		Actor:     actor,
		Detail:    detail,
	}

	l.mu.Lock()
	l.entries[room] = append(l.entries[room], e)
	l.mu.Unlock()

	if l.sink != nil {
		select {
		case l.queue <- e:
		default:
			log.Warn().Str("module", "app.audit").Str("room", string(room)).Str("action", string(action)).Msg("audit sink queue full")
		}
	}
	return e
}

func (l *AuditLog) Entries(room domain.RoomID) []domain.AuditEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	src := l.entries[room]
	out := make([]domain.AuditEntry, len(src))
	copy(out, src)
	return out
}

// Creator returns who created the most recent room logged under id.
func (l *AuditLog) Creator(room domain.RoomID) (domain.ConnID, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	src := l.entries[room]
	for i := len(src) - 1; i >= 0; i-- {
		if src[i].Action == domain.AuditRoomCreated {
			return src[i].Actor, true
		}
	}
	return "", false
}

type AuditExport struct {
	RoomID     domain.RoomID       `json:"roomId"`
	ExportedAt time.Time           `json:"exportedAt"`
	Entries    []domain.AuditEntry `json:"entries"`
}

func (l *AuditLog) Export(room domain.RoomID) AuditExport {
	return AuditExport{RoomID: room, ExportedAt: l.now(), Entries: l.Entries(room)}
}

// Run drains the sink queue until ctx is done.
func (l *AuditLog) Run(ctx context.Context) error {
	if l.sink == nil {
		<-ctx.Done()
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-l.queue:
			if err := l.sink.Write(ctx, e); err != nil {
				log.Error().Err(err).Str("module", "app.audit").Str("room", string(e.RoomID)).Msg("audit sink write")
			}
		}
	}
}
