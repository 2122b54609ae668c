package domain

import "time"

// WaitingEntry is a joiner parked until a host admits or rejects it.
type WaitingEntry struct {
	ConnID      ConnID    `json:"connectionId"`
	DisplayName string    `json:"displayName"`
	RoomID      RoomID    `json:"roomId"`
	Since       time.Time `json:"since"`
}
