package orch

import (
	"slices"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

// moderator resolves the calling member and its role.
func (o *Orchestrator) moderator(c *call) (domain.Role, error) {
	if _, err := c.member(); err != nil {
		return domain.RoleParticipant, err
	}
	return c.role(), nil
}

func (o *Orchestrator) setLocked(c *call, locked bool) error {
	role, err := o.moderator(c)
	if err != nil {
		return err
	}
	if err := o.Moderation.SetLocked(c.room, role, c.conn, locked); err != nil {
		return err
	}
	typ := core.EvMeetingUnlocked
	if locked {
		typ = core.EvMeetingLocked
	}
	o.broadcastAll(c.room, typ, map[string]any{"by": c.conn})
	return nil
}

func (o *Orchestrator) handleLock(c *call) error   { return o.setLocked(c, true) }
func (o *Orchestrator) handleUnlock(c *call) error { return o.setLocked(c, false) }

// handleBlock bans target from the room, and from the whole family when
// issued in the main room.
func (o *Orchestrator) handleBlock(c *call) error {
	target, err := c.target()
	if err != nil {
		return err
	}
	role, err := o.moderator(c)
	if err != nil {
		return err
	}
	wasWaiting := c.room.IsWaiting(target)
	if err := o.Moderation.Block(c.room, role, c.conn, target); err != nil {
		return err
	}
	rooms := []*domain.Room{c.room}
	if !c.room.IsBreakout {
		rooms = append(rooms, o.Breakouts.Children(c.room)...)
	}
	notified := false
	for _, r := range rooms {
		r.Blocked[target] = struct{}{}
		if r.Has(target) {
			if !notified {
				o.send(target, r, core.EvBlockedFromMeeting, map[string]any{"roomId": c.room.ID, "by": c.conn})
				notified = true
			}
			o.removeLocked(r, target)
		}
	}
	if wasWaiting {
		o.Registry.ClearWaiting(target, c.room.ID)
		if !notified {
			o.send(target, c.room, core.EvBlockedFromMeeting, map[string]any{"roomId": c.room.ID, "by": c.conn})
		}
	}
	if !c.room.IsBreakout {
		o.Breakouts.EndVisit(c.room, target)
	}
	parent, _ := o.family(c.room)
	o.reapLocked(parent)
	return nil
}

func (o *Orchestrator) handleUnblock(c *call) error {
	target, err := c.target()
	if err != nil {
		return err
	}
	role, err := o.moderator(c)
	if err != nil {
		return err
	}
	if err := o.Moderation.Unblock(c.room, role, c.conn, target); err != nil {
		return err
	}
	if !c.room.IsBreakout {
		for _, child := range o.Breakouts.Children(c.room) {
			delete(child.Blocked, target)
		}
	}
	o.send(c.conn, c.room, core.EvUserUnblocked, participantRef{ConnID: target})
	return nil
}

func (o *Orchestrator) handleRemoveParticipant(c *call) error {
	target, err := c.target()
	if err != nil {
		return err
	}
	role, err := o.moderator(c)
	if err != nil {
		return err
	}
	if err := o.Moderation.CheckRemove(c.room, role, c.conn, target); err != nil {
		return err
	}
	o.send(target, c.room, core.EvRemovedFromMeeting, map[string]any{"roomId": c.room.ID, "by": c.conn})
	o.removeLocked(c.room, target)
	parent, _ := o.family(c.room)
	o.reapLocked(parent)
	return nil
}

func (o *Orchestrator) setRole(c *call, role domain.Role, typ string) error {
	target, err := c.target()
	if err != nil {
		return err
	}
	actor, err := o.moderator(c)
	if err != nil {
		return err
	}
	if err := app.SetRole(c.room, actor, target, role); err != nil {
		return err
	}
	o.Audit.Log(c.room.ID, domain.AuditRoleChanged, c.conn, map[string]any{"target": target, "role": role})
	log.Info().Str("module", "orch").Str("room", string(c.room.ID)).Str("target", string(target)).Stringer("role", role).Msg("role changed")
	o.broadcastAll(c.room, typ, map[string]any{"connectionId": target, "role": role, "by": c.conn})
	return nil
}

func (o *Orchestrator) handleAssignCoHost(c *call) error {
	return o.setRole(c, domain.RoleCoHost, core.EvCoHostAssigned)
}

func (o *Orchestrator) handleRemoveCoHost(c *call) error {
	if p, ok := c.room.Participant(c.msg.Target); ok && p.Role != domain.RoleCoHost {
		return domain.Errorf(domain.CodeInvalidParameter, "%s is not a co-host", c.msg.Target)
	}
	return o.setRole(c, domain.RoleParticipant, core.EvCoHostRemoved)
}

func (o *Orchestrator) handleAssignModerator(c *call) error {
	return o.setRole(c, domain.RoleModerator, core.EvModeratorAssigned)
}

func (o *Orchestrator) handleRemoveModerator(c *call) error {
	if p, ok := c.room.Participant(c.msg.Target); ok && p.Role != domain.RoleModerator {
		return domain.Errorf(domain.CodeInvalidParameter, "%s is not a moderator", c.msg.Target)
	}
	return o.setRole(c, domain.RoleParticipant, core.EvModeratorRemoved)
}

func (o *Orchestrator) handleMuteAll(c *call) error {
	role, err := o.moderator(c)
	if err != nil {
		return err
	}
	muted, err := app.MuteAll(c.room, role)
	if err != nil {
		return err
	}
	o.Audit.Log(c.room.ID, domain.AuditMutedAll, c.conn, map[string]any{"count": len(muted)})
	o.broadcastAll(c.room, core.EvAllMuted, map[string]any{"by": c.conn, "muted": muted})
	return nil
}

func (o *Orchestrator) handleMuteParticipant(c *call) error {
	target, err := c.target()
	if err != nil {
		return err
	}
	role, err := o.moderator(c)
	if err != nil {
		return err
	}
	p, err := app.MuteParticipant(c.room, role, target)
	if err != nil {
		return err
	}
	o.Audit.Log(c.room.ID, domain.AuditMuted, c.conn, map[string]any{"target": target})
	o.send(target, c.room, core.EvForceMuted, map[string]any{"by": c.conn})
	o.broadcast(c.room, target, core.EvMediaUpdated, mediaOf(p))
	return nil
}

func (o *Orchestrator) handleSpotlight(c *call) error {
	target, err := c.target()
	if err != nil {
		return err
	}
	role, err := o.moderator(c)
	if err != nil {
		return err
	}
	if err := o.Moderation.Spotlight(c.room, role, c.conn, target); err != nil {
		return err
	}
	o.broadcastAll(c.room, core.EvUserSpotlighted, participantRef{ConnID: target})
	return nil
}

func (o *Orchestrator) handleRemoveSpotlight(c *call) error {
	role, err := o.moderator(c)
	if err != nil {
		return err
	}
	if err := o.Moderation.RemoveSpotlight(c.room, role, c.conn); err != nil {
		return err
	}
	o.broadcastAll(c.room, core.EvSpotlightRemoved, map[string]any{"by": c.conn})
	return nil
}

func (o *Orchestrator) handlePin(c *call) error {
	target, err := c.target()
	if err != nil {
		return err
	}
	role, err := o.moderator(c)
	if err != nil {
		return err
	}
	if err := o.Moderation.Pin(c.room, role, c.conn, target); err != nil {
		return err
	}
	o.broadcastAll(c.room, core.EvUserPinned, map[string]any{"connectionId": target, "pinned": slices.Clone(c.room.Pinned)})
	return nil
}

func (o *Orchestrator) handleUnpin(c *call) error {
	target, err := c.target()
	if err != nil {
		return err
	}
	role, err := o.moderator(c)
	if err != nil {
		return err
	}
	if err := o.Moderation.Unpin(c.room, role, c.conn, target); err != nil {
		return err
	}
	o.broadcastAll(c.room, core.EvUserUnpinned, map[string]any{"connectionId": target, "pinned": slices.Clone(c.room.Pinned)})
	return nil
}

type reportData struct {
	Reason  string `json:"reason"`
	Details string `json:"details"`
}

func (o *Orchestrator) handleReport(c *call) error {
	target, err := c.target()
	if err != nil {
		return err
	}
	if _, err := c.member(); err != nil {
		return err
	}
	if target == c.conn {
		return domain.Errorf(domain.CodeInvalidParameter, "cannot report yourself")
	}
	var d reportData
	if err := c.msg.Decode(&d); err != nil {
		return err
	}
	rep, notify, err := o.Moderation.Report(c.room, c.conn, target, d.Reason, d.Details)
	if err != nil {
		return err
	}
	for _, id := range notify {
		if id == c.conn {
			continue
		}
		o.send(id, c.room, core.EvUserReported, rep)
	}
	o.send(c.conn, c.room, core.EvReportSubmitted, map[string]any{"reportId": rep.ID})
	return nil
}

func (o *Orchestrator) handleGetAuditLogs(c *call) error {
	role, err := o.moderator(c)
	if err != nil {
		return err
	}
	if err := app.Authorize(role, app.CapManageRoom); err != nil {
		return err
	}
	o.send(c.conn, c.room, core.EvAuditLogs, map[string]any{"roomId": c.room.ID, "entries": o.Audit.Entries(c.room.ID)})
	return nil
}

func (o *Orchestrator) handleExportAuditLogs(c *call) error {
	role, err := o.moderator(c)
	if err != nil {
		return err
	}
	if err := app.Authorize(role, app.CapManageRoom); err != nil {
		return err
	}
	export := o.Audit.Export(c.room.ID)
	o.Audit.Log(c.room.ID, domain.AuditAuditLogsExported, c.conn, map[string]any{"entries": len(export.Entries)})
	o.send(c.conn, c.room, core.EvAuditLogsExported, export)
	return nil
}

func (o *Orchestrator) handleToggleWatermark(c *call) error {
	role, err := o.moderator(c)
	if err != nil {
		return err
	}
	on, err := o.Moderation.ToggleWatermark(c.room, role, c.conn)
	if err != nil {
		return err
	}
	o.broadcastAll(c.room, core.EvWatermarkToggled, map[string]any{"enabled": on, "by": c.conn})
	return nil
}

type complianceData struct {
	Mode string `json:"mode"`
}

func (o *Orchestrator) handleSetComplianceMode(c *call) error {
	role, err := o.moderator(c)
	if err != nil {
		return err
	}
	var d complianceData
	if err := c.msg.Decode(&d); err != nil {
		return err
	}
	mode, err := domain.ParseComplianceMode(d.Mode)
	if err != nil {
		return domain.Errorf(domain.CodeInvalidParameter, "%v", err)
	}
	policy, err := o.Moderation.SetComplianceMode(c.room, role, c.conn, mode)
	if err != nil {
		return err
	}
	o.broadcastAll(c.room, core.EvComplianceModeSet, map[string]any{"mode": mode, "policy": policy})
	return nil
}
