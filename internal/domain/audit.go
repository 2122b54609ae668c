package domain

import "time"

type AuditAction string

const (
	AuditRoomCreated       AuditAction = "ROOM_CREATED"
	AuditRoomDeleted       AuditAction = "ROOM_DELETED"
	AuditJoined            AuditAction = "PARTICIPANT_JOINED"
	AuditLeft              AuditAction = "PARTICIPANT_LEFT"
	AuditWaiting           AuditAction = "WAITING_ROOM_ENTERED"
	AuditAdmitted          AuditAction = "WAITING_ROOM_ADMITTED"
	AuditRejected          AuditAction = "WAITING_ROOM_REJECTED"
	AuditHostTransferred   AuditAction = "HOST_TRANSFERRED"
	AuditLocked            AuditAction = "MEETING_LOCKED"
	AuditUnlocked          AuditAction = "MEETING_UNLOCKED"
	AuditBlocked           AuditAction = "USER_BLOCKED"
	AuditUnblocked         AuditAction = "USER_UNBLOCKED"
	AuditRemoved           AuditAction = "USER_REMOVED"
	AuditReported          AuditAction = "USER_REPORTED"
	AuditRoleChanged       AuditAction = "ROLE_CHANGED"
	AuditMutedAll          AuditAction = "ALL_MUTED"
	AuditMuted             AuditAction = "USER_MUTED"
	AuditSpotlight         AuditAction = "SPOTLIGHT_CHANGED"
	AuditPin               AuditAction = "PIN_CHANGED"
	AuditComplianceMode    AuditAction = "COMPLIANCE_MODE_SET"
	AuditWatermark         AuditAction = "WATERMARK_TOGGLED"
	AuditRecording         AuditAction = "RECORDING_CHANGED"
	AuditSettingsUpdated   AuditAction = "SETTINGS_UPDATED"
	AuditBreakoutCreated   AuditAction = "BREAKOUT_CREATED"
	AuditBreakoutClosed    AuditAction = "BREAKOUT_CLOSED"
	AuditMeetingEnded      AuditAction = "MEETING_ENDED"
	AuditAuditLogsExported AuditAction = "AUDIT_LOGS_EXPORTED"
)

// AuditEntry is one append-only record of a moderation-relevant action.
type AuditEntry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	RoomID    RoomID         `json:"roomId"`
	Action    AuditAction    `json:"action"`
	Actor     ConnID         `json:"actor,omitempty"`
	Detail    map[string]any `json:"detail,omitempty"`
}

type Report struct {
	ID        string    `json:"id"`
	RoomID    RoomID    `json:"roomId"`
	Reporter  ConnID    `json:"reporter"`
	Reported  ConnID    `json:"reported"`
	Reason    string    `json:"reason"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
