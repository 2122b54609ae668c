package app

import (
	"slices"
	"strings"
	"time"

	"github.com/dkeye/Meet/internal/domain"
	"github.com/google/uuid"
)

// Moderation applies security policy to a room and records every decision
// in the audit log. Callers run it on the room's actor.
type Moderation struct {
	Audit  *AuditLog
	Filter *ProfanityFilter
}

func NewModeration(audit *AuditLog, filter *ProfanityFilter) *Moderation {
	return &Moderation{Audit: audit, Filter: filter}
}

func (m *Moderation) SetLocked(room *domain.Room, role domain.Role, actor domain.ConnID, locked bool) error {
	if err := Authorize(role, CapManageParticipants); err != nil {
		return err
	}
	room.Settings.Locked = locked
	action := domain.AuditUnlocked
	if locked {
		action = domain.AuditLocked
	}
	m.Audit.Log(room.ID, action, actor, nil)
	return nil
}

// Block adds target to the room's block list and drops any waiting entry.
// Removing a present participant is left to the caller so it can broadcast.
func (m *Moderation) Block(room *domain.Room, role domain.Role, actor, target domain.ConnID) error {
	if target == actor {
		return domain.Errorf(domain.CodeInvalidParameter, "cannot block yourself")
	}
	if err := AuthorizeOver(room, role, target, CapModerate); err != nil {
		return err
	}
	room.Blocked[target] = struct{}{}
	Dequeue(room, target)
	m.Audit.Log(room.ID, domain.AuditBlocked, actor, map[string]any{"target": target})
	return nil
}

func (m *Moderation) Unblock(room *domain.Room, role domain.Role, actor, target domain.ConnID) error {
	if err := Authorize(role, CapModerate); err != nil {
		return err
	}
	if !room.IsBlocked(target) {
		return domain.Errorf(domain.CodeInvalidParameter, "%s is not blocked", target)
	}
	delete(room.Blocked, target)
	m.Audit.Log(room.ID, domain.AuditUnblocked, actor, map[string]any{"target": target})
	return nil
}

func (m *Moderation) CheckRemove(room *domain.Room, role domain.Role, actor, target domain.ConnID) error {
	if err := AuthorizeOver(room, role, target, CapRemoveParticipants); err != nil {
		return err
	}
	if !room.Has(target) {
		return domain.Errorf(domain.CodeInvalidParameter, "participant %s not found", target)
	}
	m.Audit.Log(room.ID, domain.AuditRemoved, actor, map[string]any{"target": target})
	return nil
}

// Report files a complaint and returns who must be notified: every member
// whose role can moderate.
func (m *Moderation) Report(room *domain.Room, reporter, target domain.ConnID, reason, details string) (domain.Report, []domain.ConnID, error) {
	if target == "" || !room.Has(target) {
		return domain.Report{}, nil, domain.Errorf(domain.CodeInvalidParameter, "reported participant not found")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.Report{}, nil, domain.Errorf(domain.CodeInvalidParameter, "reason required")
	}
	rep := domain.Report{
		ID:        uuid.NewString(),
		RoomID:    room.ID,
		Reporter:  reporter,
		Reported:  target,
		Reason:    reason,
		Details:   details,
		CreatedAt: time.Now(),
	}
	room.Reports = append(room.Reports, rep)

	var notify []domain.ConnID
	for _, p := range room.Participants {
		if Can(p.Role, CapModerate) {
			notify = append(notify, p.ConnID)
		}
	}
	m.Audit.Log(room.ID, domain.AuditReported, reporter, map[string]any{
		"reportId": rep.ID,
		"target":   target,
		"reason":   reason,
	})
	return rep, notify, nil
}

func (m *Moderation) SetComplianceMode(room *domain.Room, role domain.Role, actor domain.ConnID, mode domain.ComplianceMode) (domain.CompliancePolicy, error) {
	if err := Authorize(role, CapManageSecurity); err != nil {
		return domain.CompliancePolicy{}, err
	}
	room.Settings.ComplianceMode = mode
	room.Compliance = domain.PresetFor(mode)
	m.Audit.Log(room.ID, domain.AuditComplianceMode, actor, map[string]any{"mode": mode})
	return room.Compliance, nil
}

func (m *Moderation) ToggleWatermark(room *domain.Room, role domain.Role, actor domain.ConnID) (bool, error) {
	if err := Authorize(role, CapManageSecurity); err != nil {
		return false, err
	}
	room.Settings.WatermarkEnabled = !room.Settings.WatermarkEnabled
	m.Audit.Log(room.ID, domain.AuditWatermark, actor, map[string]any{"enabled": room.Settings.WatermarkEnabled})
	return room.Settings.WatermarkEnabled, nil
}

func (m *Moderation) Spotlight(room *domain.Room, role domain.Role, actor, target domain.ConnID) error {
	if err := Authorize(role, CapModerate); err != nil {
		return err
	}
	if !room.Has(target) {
		return domain.Errorf(domain.CodeInvalidParameter, "participant %s not found", target)
	}
	room.Spotlight = target
	m.Audit.Log(room.ID, domain.AuditSpotlight, actor, map[string]any{"target": target})
	return nil
}

func (m *Moderation) RemoveSpotlight(room *domain.Room, role domain.Role, actor domain.ConnID) error {
	if err := Authorize(role, CapModerate); err != nil {
		return err
	}
	room.Spotlight = ""
	m.Audit.Log(room.ID, domain.AuditSpotlight, actor, nil)
	return nil
}

func (m *Moderation) Pin(room *domain.Room, role domain.Role, actor, target domain.ConnID) error {
	if err := Authorize(role, CapModerate); err != nil {
		return err
	}
	if !room.Has(target) {
		return domain.Errorf(domain.CodeInvalidParameter, "participant %s not found", target)
	}
	if !slices.Contains(room.Pinned, target) {
		room.Pinned = append(room.Pinned, target)
	}
	m.Audit.Log(room.ID, domain.AuditPin, actor, map[string]any{"target": target, "pinned": true})
	return nil
}

func (m *Moderation) Unpin(room *domain.Room, role domain.Role, actor, target domain.ConnID) error {
	if err := Authorize(role, CapModerate); err != nil {
		return err
	}
	room.Pinned = slices.DeleteFunc(room.Pinned, func(c domain.ConnID) bool { return c == target })
	m.Audit.Log(room.ID, domain.AuditPin, actor, map[string]any{"target": target, "pinned": false})
	return nil
}

// FilterChat redacts profanity; delivery is never blocked.
func (m *Moderation) FilterChat(text string) string {
	return m.Filter.Clean(text)
}
