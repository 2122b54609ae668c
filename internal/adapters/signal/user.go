package signal

import (
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

// Gateway-local kinds that never reach a room.
const (
	MsgWhoAmI = "whoami"
	MsgRename = "rename"
	EvWhoAmI  = "whoami"

	SessionDisplayName = "display_name"
)

type whoAmI struct {
	ConnID      domain.ConnID `json:"connectionId"`
	DisplayName string        `json:"displayName"`
	Room        domain.RoomID `json:"room,omitempty"`
	WaitingIn   domain.RoomID `json:"waitingIn,omitempty"`
}

func (ctl *SignalWSController) sendWhoAmI(id domain.ConnID) {
	reg := ctl.Orch.Registry
	resp := whoAmI{ConnID: id, DisplayName: reg.DisplayName(id)}
	if room, ok := reg.RoomOf(id); ok {
		resp.Room = room
	}
	if room, ok := reg.WaitingOf(id); ok {
		resp.WaitingIn = room
	}
	ctl.Orch.Out.Send(id, core.Event{Type: EvWhoAmI, Data: resp})
}

// handleRename changes the name used for future joins. Names inside rooms
// are fixed at join time.
func (ctl *SignalWSController) handleRename(id domain.ConnID, msg core.Message) {
	var p struct {
		Name string `json:"name"`
	}
	if err := msg.Decode(&p); err != nil {
		ctl.Orch.Out.Send(id, core.ErrorEvent(err))
		return
	}
	name, err := domain.ValidateDisplayName(p.Name)
	if err != nil {
		ctl.Orch.Out.Send(id, core.ErrorEvent(domain.Errorf(domain.CodeInvalidParameter, "%v", err)))
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(id)).Str("name", name).Msg("rename")
	ctl.Orch.Registry.SetDisplayName(id, name)
	ctl.sendWhoAmI(id)
}
