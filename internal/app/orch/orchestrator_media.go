package orch

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
)

const (
	MaxChatLen     = 2000
	MaxReactionLen = 16
)

type mediaUpdate struct {
	ConnID        domain.ConnID `json:"connectionId"`
	AudioEnabled  bool          `json:"audioEnabled"`
	VideoEnabled  bool          `json:"videoEnabled"`
	ScreenSharing bool          `json:"screenSharing"`
	Muted         bool          `json:"muted"`
}

func mediaOf(p *domain.Participant) mediaUpdate {
	return mediaUpdate{
		ConnID:        p.ConnID,
		AudioEnabled:  p.AudioEnabled,
		VideoEnabled:  p.VideoEnabled,
		ScreenSharing: p.ScreenSharing,
		Muted:         p.Muted,
	}
}

type toggleData struct {
	Enabled *bool `json:"enabled"`
}

func (o *Orchestrator) toggle(c *call, flag app.MediaFlag) error {
	p, err := c.member()
	if err != nil {
		return err
	}
	var d toggleData
	if err := c.msg.Decode(&d); err != nil {
		return err
	}
	value := true
	switch {
	case d.Enabled != nil:
		value = *d.Enabled
	case flag == app.MediaAudio:
		value = !p.AudioEnabled
	case flag == app.MediaVideo:
		value = !p.VideoEnabled
	}
	p, err = app.UpdateMediaFlag(c.room, c.conn, flag, value)
	if err != nil {
		return err
	}
	o.broadcast(c.room, c.conn, core.EvMediaUpdated, mediaOf(p))
	return nil
}

func (o *Orchestrator) handleToggleAudio(c *call) error { return o.toggle(c, app.MediaAudio) }
func (o *Orchestrator) handleToggleVideo(c *call) error { return o.toggle(c, app.MediaVideo) }

func (o *Orchestrator) handleStartScreenShare(c *call) error {
	if _, err := c.member(); err != nil {
		return err
	}
	if !c.room.Settings.AllowScreenShare && !app.Can(c.role(), app.CapManageRoom) {
		return domain.Errorf(domain.CodeInsufficientPermissions, "screen sharing is disabled")
	}
	if _, err := app.UpdateMediaFlag(c.room, c.conn, app.MediaScreenShare, true); err != nil {
		return err
	}
	o.broadcast(c.room, c.conn, core.EvScreenShareStarted, participantRef{ConnID: c.conn})
	return nil
}

func (o *Orchestrator) handleStopScreenShare(c *call) error {
	if _, err := app.UpdateMediaFlag(c.room, c.conn, app.MediaScreenShare, false); err != nil {
		return err
	}
	o.broadcast(c.room, c.conn, core.EvScreenShareStopped, participantRef{ConnID: c.conn})
	return nil
}

type chatData struct {
	Text string `json:"text"`
}

type ChatMessage struct {
	ID          string        `json:"id"`
	From        domain.ConnID `json:"from"`
	DisplayName string        `json:"displayName"`
	To          domain.ConnID `json:"to,omitempty"`
	Text        string        `json:"text"`
	Timestamp   time.Time     `json:"timestamp"`
}

func (o *Orchestrator) chatFrom(c *call) (*domain.Participant, ChatMessage, error) {
	p, err := c.member()
	if err != nil {
		return nil, ChatMessage{}, err
	}
	if !o.Limiter.Allow(c.conn) {
		return nil, ChatMessage{}, domain.ErrRateLimited
	}
	var d chatData
	if err := c.msg.Decode(&d); err != nil {
		return nil, ChatMessage{}, err
	}
	text := strings.TrimSpace(d.Text)
	if text == "" || utf8.RuneCountInString(text) > MaxChatLen {
		return nil, ChatMessage{}, domain.Errorf(domain.CodeInvalidParameter, "message must be 1-%d characters", MaxChatLen)
	}
	return p, ChatMessage{
		ID:          uuid.NewString(),
		From:        c.conn,
		DisplayName: p.DisplayName,
		Text:        o.Moderation.FilterChat(text),
		Timestamp:   time.Now(),
	}, nil
}

func (o *Orchestrator) handleChat(c *call) error {
	_, m, err := o.chatFrom(c)
	if err != nil {
		return err
	}
	o.broadcastAll(c.room, core.EvChatMessage, m)
	return nil
}

func (o *Orchestrator) handlePrivateMessage(c *call) error {
	target, err := c.target()
	if err != nil {
		return err
	}
	if target == c.conn || !c.room.Has(target) {
		return domain.Errorf(domain.CodeInvalidParameter, "recipient not in room")
	}
	_, m, err := o.chatFrom(c)
	if err != nil {
		return err
	}
	m.To = target
	o.send(target, c.room, core.EvPrivateMessage, m)
	o.send(c.conn, c.room, core.EvPrivateMessage, m)
	return nil
}

type reactionData struct {
	Emoji string `json:"emoji"`
}

func (o *Orchestrator) handleReaction(c *call) error {
	if _, err := c.member(); err != nil {
		return err
	}
	if !o.Limiter.Allow(c.conn) {
		return domain.ErrRateLimited
	}
	var d reactionData
	if err := c.msg.Decode(&d); err != nil {
		return err
	}
	if d.Emoji == "" || utf8.RuneCountInString(d.Emoji) > MaxReactionLen {
		return domain.Errorf(domain.CodeInvalidParameter, "bad reaction")
	}
	o.broadcastAll(c.room, core.EvReaction, map[string]any{"from": c.conn, "emoji": d.Emoji})
	return nil
}

func (o *Orchestrator) handleWhiteboard(c *call) error {
	if _, err := c.member(); err != nil {
		return err
	}
	if !o.Limiter.Allow(c.conn) {
		return domain.ErrRateLimited
	}
	if len(c.msg.Data) == 0 || !json.Valid(c.msg.Data) {
		return domain.Errorf(domain.CodeInvalidParameter, "bad whiteboard-draw payload")
	}
	o.broadcast(c.room, c.conn, core.EvWhiteboardDraw, app.RelayData{From: c.conn, Payload: c.msg.Data})
	return nil
}

type pollData struct {
	PollID   string   `json:"pollId"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Option   *int     `json:"option"`
}

func (o *Orchestrator) handleCreatePoll(c *call) error {
	if _, err := c.member(); err != nil {
		return err
	}
	if err := app.Authorize(c.role(), app.CapManageRoom); err != nil {
		return err
	}
	var d pollData
	if err := c.msg.Decode(&d); err != nil {
		return err
	}
	question := strings.TrimSpace(d.Question)
	if question == "" {
		return domain.Errorf(domain.CodeInvalidParameter, "question required")
	}
	options := make([]string, 0, len(d.Options))
	for _, opt := range d.Options {
		if opt = strings.TrimSpace(opt); opt != "" {
			options = append(options, opt)
		}
	}
	if len(options) < domain.MinPollOptions || len(options) > domain.MaxPollOptions {
		return domain.Errorf(domain.CodeInvalidParameter, "a poll needs %d-%d options", domain.MinPollOptions, domain.MaxPollOptions)
	}
	poll := &domain.Poll{
		ID:        uuid.NewString(),
		Question:  question,
		Options:   options,
		Votes:     make(map[domain.ConnID]int),
		CreatedBy: c.conn,
		CreatedAt: time.Now(),
		Active:    true,
	}
	c.room.Polls[poll.ID] = poll
	o.broadcastAll(c.room, core.EvPollCreated, pollView(poll))
	return nil
}

func (o *Orchestrator) poll(c *call) (*domain.Poll, pollData, error) {
	var d pollData
	if _, err := c.member(); err != nil {
		return nil, d, err
	}
	if err := c.msg.Decode(&d); err != nil {
		return nil, d, err
	}
	p, ok := c.room.Polls[d.PollID]
	if !ok {
		return nil, d, domain.Errorf(domain.CodeInvalidParameter, "poll %q not found", d.PollID)
	}
	return p, d, nil
}

// handleVotePoll records one vote per participant; voting again replaces it.
func (o *Orchestrator) handleVotePoll(c *call) error {
	p, d, err := o.poll(c)
	if err != nil {
		return err
	}
	if !p.Active {
		return domain.Errorf(domain.CodeInvalidParameter, "poll has ended")
	}
	if d.Option == nil || *d.Option < 0 || *d.Option >= len(p.Options) {
		return domain.Errorf(domain.CodeInvalidParameter, "option out of range")
	}
	p.Votes[c.conn] = *d.Option
	o.broadcastAll(c.room, core.EvPollUpdated, pollView(p))
	return nil
}

func (o *Orchestrator) handleEndPoll(c *call) error {
	p, _, err := o.poll(c)
	if err != nil {
		return err
	}
	if p.CreatedBy != c.conn {
		if err := app.Authorize(c.role(), app.CapManageRoom); err != nil {
			return err
		}
	}
	p.Active = false
	o.broadcastAll(c.room, core.EvPollEnded, pollView(p))
	return nil
}

func (o *Orchestrator) setRecording(c *call, on bool) error {
	if _, err := c.member(); err != nil {
		return err
	}
	if err := app.Authorize(c.role(), app.CapManageRoom); err != nil {
		return err
	}
	if c.room.Recording == on {
		return domain.Errorf(domain.CodeInvalidParameter, "recording already in that state")
	}
	c.room.Recording = on
	o.Audit.Log(c.room.ID, domain.AuditRecording, c.conn, map[string]any{"recording": on})
	typ := core.EvRecordingStopped
	if on {
		typ = core.EvRecordingStarted
	}
	o.broadcastAll(c.room, typ, map[string]any{"by": c.conn})
	return nil
}

func (o *Orchestrator) handleStartRecording(c *call) error { return o.setRecording(c, true) }
func (o *Orchestrator) handleStopRecording(c *call) error  { return o.setRecording(c, false) }

type settingsData struct {
	DisplayName        *string `json:"displayName"`
	WaitingRoomEnabled *bool   `json:"waitingRoomEnabled"`
	MuteOnEntry        *bool   `json:"muteOnEntry"`
	AllowScreenShare   *bool   `json:"allowScreenShare"`
}

// handleUpdateSettings patches the room switches. Lock, compliance and
// watermark have their own commands.
func (o *Orchestrator) handleUpdateSettings(c *call) error {
	if _, err := c.member(); err != nil {
		return err
	}
	if err := app.Authorize(c.role(), app.CapManageRoom); err != nil {
		return err
	}
	var d settingsData
	if err := c.msg.Decode(&d); err != nil {
		return err
	}
	if d.DisplayName != nil {
		name := strings.TrimSpace(*d.DisplayName)
		if name == "" || utf8.RuneCountInString(name) > domain.MaxDisplayNameLen {
			return domain.Errorf(domain.CodeInvalidParameter, "bad room name")
		}
		c.room.DisplayName = name
	}
	if d.WaitingRoomEnabled != nil {
		c.room.Settings.WaitingRoomEnabled = *d.WaitingRoomEnabled
	}
	if d.MuteOnEntry != nil {
		c.room.Settings.MuteOnEntry = *d.MuteOnEntry
	}
	if d.AllowScreenShare != nil {
		c.room.Settings.AllowScreenShare = *d.AllowScreenShare
	}
	o.Audit.Log(c.room.ID, domain.AuditSettingsUpdated, c.conn, map[string]any{"settings": c.room.Settings})
	o.broadcastAll(c.room, core.EvSettingsUpdated, map[string]any{
		"displayName": c.room.DisplayName,
		"settings":    c.room.Settings,
	})
	return nil
}

// handleRelay forwards negotiation messages without touching any room.
func (o *Orchestrator) handleRelay(conn domain.ConnID, msg core.Message) error {
	if msg.Target == "" {
		return domain.Errorf(domain.CodeInvalidParameter, "target required")
	}
	var payload any
	switch msg.Type {
	case core.MsgOffer, core.MsgAnswer:
		var sd webrtc.SessionDescription
		if err := msg.Decode(&sd); err != nil {
			return err
		}
		want := webrtc.SDPTypeOffer
		if msg.Type == core.MsgAnswer {
			want = webrtc.SDPTypeAnswer
		}
		if sd.Type != want || sd.SDP == "" {
			return domain.Errorf(domain.CodeInvalidParameter, "expected %s description", want)
		}
		payload = sd
	case core.MsgICECandidate:
		var cand webrtc.ICECandidateInit
		if err := msg.Decode(&cand); err != nil {
			return err
		}
		payload = cand
	}
	o.Relay.Forward(msg.Type, conn, msg.Target, payload)
	return nil
}
