package domain

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeRoomNotFound            ErrorCode = "ROOM_NOT_FOUND"
	CodeBlocked                 ErrorCode = "BLOCKED"
	CodeMeetingLocked           ErrorCode = "MEETING_LOCKED"
	CodeInsufficientPermissions ErrorCode = "INSUFFICIENT_PERMISSIONS"
	CodeInvalidParameter        ErrorCode = "INVALID_PARAMETER"
	CodeAlreadyPresent          ErrorCode = "ALREADY_PRESENT"
	CodeIDSpaceExhausted        ErrorCode = "ID_SPACE_EXHAUSTED"
	CodeInvalidPassword         ErrorCode = "INVALID_PASSWORD"
	CodeNotInRoom               ErrorCode = "NOT_IN_ROOM"
	CodeRateLimited             ErrorCode = "RATE_LIMITED"
	CodeInternal                ErrorCode = "INTERNAL"
)

// Error is a rejection reported back to the requesting connection.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrRoomNotFound            = &Error{CodeRoomNotFound, "room not found"}
	ErrBlocked                 = &Error{CodeBlocked, "you are blocked from this meeting"}
	ErrMeetingLocked           = &Error{CodeMeetingLocked, "meeting is locked"}
	ErrInsufficientPermissions = &Error{CodeInsufficientPermissions, "insufficient permissions"}
	ErrInvalidParameter        = &Error{CodeInvalidParameter, "invalid parameter"}
	ErrAlreadyPresent          = &Error{CodeAlreadyPresent, "already present"}
	ErrIDSpaceExhausted        = &Error{CodeIDSpaceExhausted, "could not allocate a free room id"}
	ErrInvalidPassword         = &Error{CodeInvalidPassword, "invalid room password"}
	ErrNotInRoom               = &Error{CodeNotInRoom, "not in a room"}
	ErrRateLimited             = &Error{CodeRateLimited, "too many messages"}
)

func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns INTERNAL for errors outside the taxonomy.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
