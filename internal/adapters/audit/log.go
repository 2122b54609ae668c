package audit

import (
	"context"

	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog"
)

// LogSink writes audit entries as structured log lines.
type LogSink struct {
	Logger zerolog.Logger
}

func (s LogSink) Write(_ context.Context, e domain.AuditEntry) error {
	s.Logger.Info().
		Str("module", "audit").
		Str("id", e.ID).
		Str("room", string(e.RoomID)).
		Str("action", string(e.Action)).
		Str("actor", string(e.Actor)).
		Interface("detail", e.Detail).
		Time("at", e.Timestamp).
		Msg("audit")
	return nil
}
