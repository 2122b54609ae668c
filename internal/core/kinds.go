package core

// Inbound message kinds.
const (
	MsgPing              = "ping"
	MsgCreateRoom        = "create-room"
	MsgJoinRoom          = "join-room"
	MsgLeaveRoom         = "leave-room"
	MsgEndMeeting        = "end-meeting"
	MsgAdmitUser         = "admit-user"
	MsgRejectUser        = "reject-user"
	MsgOffer             = "offer"
	MsgAnswer            = "answer"
	MsgICECandidate      = "ice-candidate"
	MsgGetICEServers     = "get-ice-servers"
	MsgStartScreenShare  = "start-screen-share"
	MsgStopScreenShare   = "stop-screen-share"
	MsgToggleAudio       = "toggle-audio"
	MsgToggleVideo       = "toggle-video"
	MsgChatMessage       = "chat-message"
	MsgPrivateMessage    = "private-message"
	MsgSendReaction      = "send-reaction"
	MsgCreatePoll        = "create-poll"
	MsgVotePoll          = "vote-poll"
	MsgEndPoll           = "end-poll"
	MsgWhiteboardDraw    = "whiteboard-draw"
	MsgCreateBreakout    = "create-breakout-rooms"
	MsgJoinBreakout      = "join-breakout-room"
	MsgReturnToMain      = "return-to-main-room"
	MsgCloseBreakout     = "close-breakout-rooms"
	MsgHostJoinBreakout  = "host-join-breakout"
	MsgStartRecording    = "start-recording"
	MsgStopRecording     = "stop-recording"
	MsgUpdateSettings    = "update-room-settings"
	MsgRemoveParticipant = "remove-participant"
	MsgLockMeeting       = "lock-meeting"
	MsgUnlockMeeting     = "unlock-meeting"
	MsgAssignCoHost      = "assign-cohost"
	MsgRemoveCoHost      = "remove-cohost"
	MsgAssignModerator   = "assign-moderator"
	MsgRemoveModerator   = "remove-moderator"
	MsgMuteAll           = "mute-all-participants"
	MsgMuteParticipant   = "mute-participant"
	MsgSpotlightUser     = "spotlight-user"
	MsgRemoveSpotlight   = "remove-spotlight"
	MsgPinUser           = "pin-user"
	MsgUnpinUser         = "unpin-user"
	MsgBlockUser         = "block-user"
	MsgUnblockUser       = "unblock-user"
	MsgReportUser        = "report-user"
	MsgGetAuditLogs      = "get-audit-logs"
	MsgExportAuditLogs   = "export-audit-logs"
	MsgToggleWatermark   = "toggle-watermark"
	MsgSetComplianceMode = "set-compliance-mode"
)

// Outbound event kinds.
const (
	EvPong               = "pong"
	EvError              = "error"
	EvRoomCreated        = "room-created"
	EvRoomParticipants   = "room-participants"
	EvRoomInfo           = "room-info"
	EvUserJoined         = "user-joined"
	EvUserLeft           = "user-left"
	EvHostLeft           = "host-left"
	EvWaitingRoom        = "waiting-room"
	EvUserWaiting        = "user-waiting"
	EvAdmittedToRoom     = "admitted-to-room"
	EvUserAdmitted       = "user-admitted"
	EvRejectedFromRoom   = "rejected-from-room"
	EvUserRejected       = "user-rejected"
	EvMeetingEnded       = "meeting-ended"
	EvOffer              = "offer"
	EvAnswer             = "answer"
	EvICECandidate       = "ice-candidate"
	EvICEServers         = "ice-servers"
	EvMediaUpdated       = "media-updated"
	EvScreenShareStarted = "screen-share-started"
	EvScreenShareStopped = "screen-share-stopped"
	EvChatMessage        = "chat-message"
	EvPrivateMessage     = "private-message"
	EvReaction           = "reaction"
	EvPollCreated        = "poll-created"
	EvPollUpdated        = "poll-updated"
	EvPollEnded          = "poll-ended"
	EvWhiteboardDraw     = "whiteboard-draw"
	EvBreakoutCreated    = "breakout-rooms-created"
	EvBreakoutJoined     = "breakout-room-joined"
	EvReturnedToMain     = "returned-to-main-room"
	EvBreakoutClosed     = "breakout-rooms-closed"
	EvRecordingStarted   = "recording-started"
	EvRecordingStopped   = "recording-stopped"
	EvSettingsUpdated    = "room-settings-updated"
	EvMeetingLocked      = "meeting-locked"
	EvMeetingUnlocked    = "meeting-unlocked"
	EvCoHostAssigned     = "cohost-assigned"
	EvCoHostRemoved      = "cohost-removed"
	EvModeratorAssigned  = "moderator-assigned"
	EvModeratorRemoved   = "moderator-removed"
	EvAllMuted           = "all-participants-muted"
	EvForceMuted         = "force-muted"
	EvUserSpotlighted    = "user-spotlighted"
	EvSpotlightRemoved   = "spotlight-removed"
	EvUserPinned         = "user-pinned"
	EvUserUnpinned       = "user-unpinned"
	EvRemovedFromMeeting = "removed-from-meeting"
	EvBlockedFromMeeting = "blocked-from-meeting"
	EvUserUnblocked      = "user-unblocked"
	EvUserReported       = "user-reported"
	EvReportSubmitted    = "report-submitted"
	EvAuditLogs          = "audit-logs"
	EvAuditLogsExported  = "audit-logs-exported"
	EvWatermarkToggled   = "watermark-toggled"
	EvComplianceModeSet  = "compliance-mode-set"
)
