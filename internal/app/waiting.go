package app

import (
	"slices"
	"time"

	"github.com/dkeye/Meet/internal/domain"
)

// Enqueue parks a joiner in the waiting room. A second enqueue of the same
// connection is a no-op and reports false.
func Enqueue(room *domain.Room, id domain.ConnID, name string) bool {
	if room.IsWaiting(id) {
		return false
	}
	room.Waiting = append(room.Waiting, domain.WaitingEntry{
		ConnID:      id,
		DisplayName: name,
		RoomID:      room.ID,
		Since:       time.Now(),
	})
	return true
}

func Dequeue(room *domain.Room, id domain.ConnID) (domain.WaitingEntry, bool) {
	i := slices.IndexFunc(room.Waiting, func(w domain.WaitingEntry) bool { return w.ConnID == id })
	if i < 0 {
		return domain.WaitingEntry{}, false
	}
	e := room.Waiting[i]
	room.Waiting = slices.Delete(room.Waiting, i, i+1)
	return e, true
}

// Admit takes a connection off the waiting list. Admitting
// a connection that is already a participant reports ALREADY_PRESENT.
func Admit(room *domain.Room, actor domain.Role, id domain.ConnID) (domain.WaitingEntry, error) {
	if err := Authorize(actor, CapManageParticipants); err != nil {
		return domain.WaitingEntry{}, err
	}
	e, ok := Dequeue(room, id)
	if !ok {
		if room.Has(id) {
			return domain.WaitingEntry{}, domain.ErrAlreadyPresent
		}
		return domain.WaitingEntry{}, domain.Errorf(domain.CodeInvalidParameter, "%s is not waiting", id)
	}
	return e, nil
}

func Reject(room *domain.Room, actor domain.Role, id domain.ConnID) (domain.WaitingEntry, error) {
	if err := Authorize(actor, CapManageParticipants); err != nil {
		return domain.WaitingEntry{}, err
	}
	e, ok := Dequeue(room, id)
	if !ok {
		return domain.WaitingEntry{}, domain.Errorf(domain.CodeInvalidParameter, "%s is not waiting", id)
	}
	return e, nil
}
