package core

//go:generate mockgen -source=collab_iface.go -destination=mocks/mock_collab.go -package=mocks

import (
	"context"

	"github.com/dkeye/Meet/internal/domain"
	"github.com/pion/webrtc/v4"
)

// Outbox delivers events to a single connection.
// Implementations must keep per-connection FIFO order and must not block.
type Outbox interface {
	Send(to domain.ConnID, ev Event)
}

// PasswordValidator checks a join candidate against the room password.
type PasswordValidator interface {
	ValidateRoomPassword(room *domain.Room, candidate string) bool
}

// ICEServerProvider hands out STUN/TURN servers for clients.
type ICEServerProvider interface {
	FetchICEServers() []webrtc.ICEServer
}

// AuditSink is long-term audit storage. It is called off the event path.
type AuditSink interface {
	Write(ctx context.Context, entry domain.AuditEntry) error
}
