package app

import (
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

type RelayData struct {
	From    domain.ConnID `json:"from"`
	Payload any           `json:"payload"`
}

// Relay forwards WebRTC negotiation messages between two connections.
// It holds no state and never inspects media.
type Relay struct {
	reg *Registry
}

func NewRelay(reg *Registry) *Relay {
	return &Relay{reg: reg}
}

// Forward delivers payload to to as an event of kind. A target that is gone
// is dropped silently; late candidates for closed peers are normal.
func (r *Relay) Forward(kind string, from, to domain.ConnID, payload any) bool {
	if to == "" || to == from || !r.reg.IsConnected(to) {
		log.Debug().Str("module", "app.relay").Str("type", kind).Str("from", string(from)).Str("to", string(to)).Msg("relay target unavailable")
		return false
	}
	r.reg.Send(to, core.Event{Type: kind, Data: RelayData{From: from, Payload: payload}})
	return true
}
