// Package domain contains meeting entities with only the logic needed to keep them consistent.
package domain

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	MaxDisplayNameLen  = 64
	DefaultDisplayName = "guest"
)

var (
	ErrDisplayNameTooLong = errors.New("display name too long")
	ErrDisplayNameEmpty   = errors.New("display name empty")
)

// Participant is one connection's presence in a room.
type Participant struct {
	ConnID        ConnID `json:"connectionId"`
	DisplayName   string `json:"displayName"`
	Role          Role   `json:"role"`
	AudioEnabled  bool   `json:"audioEnabled"`
	VideoEnabled  bool   `json:"videoEnabled"`
	ScreenSharing bool   `json:"screenSharing"`
	// Muted is set by moderation and is distinct from AudioEnabled.
	Muted bool `json:"muted"`
}

func NewParticipant(id ConnID, name string, role Role) *Participant {
	return &Participant{
		ConnID:       id,
		DisplayName:  name,
		Role:         role,
		AudioEnabled: true,
		VideoEnabled: true,
	}
}

// ValidateDisplayName trims the name and checks its length.
func ValidateDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrDisplayNameEmpty
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLen {
		return "", ErrDisplayNameTooLong
	}
	return name, nil
}
