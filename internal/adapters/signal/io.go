package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.Opts.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			c.Close()
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.Opts.WriteWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping")
				c.Close()
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.Opts.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				c.Close()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				c.Close()
				return
			}
		}
	}
}

// readPump feeds inbound messages to the orchestrator one at a time, which
// keeps per-connection order. On exit it runs the disconnect handler unless
// a newer socket already took over the connection id.
func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, id domain.ConnID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(id)).Msg("readPump closing")
		cancel()
		c.Close()
		if ctl.Orch.Registry.Unbind(id, c) {
			// The room actors may outlive this request context.
			ctl.Orch.Disconnect(context.WithoutCancel(ctx), id)
		}
	}()

	c.conn.SetReadLimit(ctl.Opts.ReadLimit)
	pongWait := ctl.Opts.pongWait()
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("readPump read error")
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		ctl.handleFrame(ctx, id, data)
	}
}

func (ctl *SignalWSController) handleFrame(ctx context.Context, id domain.ConnID, data []byte) {
	var msg core.Message
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
		log.Debug().Str("module", "signal").Str("conn", string(id)).Msg("bad json")
		ctl.Orch.Out.Send(id, core.ErrorEvent(domain.Errorf(domain.CodeInvalidParameter, "malformed message")))
		return
	}

	switch msg.Type {
	case MsgWhoAmI:
		ctl.sendWhoAmI(id)
	case MsgRename:
		ctl.handleRename(id, msg)
	default:
		_ = ctl.Orch.Dispatch(ctx, id, msg)
	}
}
