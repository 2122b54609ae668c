package app

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

const DefaultIDAttempts = 5

// RoomIDFunc produces a candidate room id.
type RoomIDFunc func() domain.RoomID

// RandomRoomID returns a human-shareable id shaped like 123-456-7890.
func RandomRoomID() domain.RoomID {
	return domain.RoomID(fmt.Sprintf("%03d-%03d-%04d",
		rand.Intn(1000), rand.Intn(1000), rand.Intn(10000)))
}

// Rooms is the authoritative table of live rooms.
// Room values are handed out by pointer; only the owning actor mutates them.
type Rooms struct {
	mu          sync.RWMutex
	rooms       map[domain.RoomID]*domain.Room
	newID       RoomIDFunc
	maxAttempts int
}

type RoomsOption func(*Rooms)

func WithRoomIDFunc(fn RoomIDFunc) RoomsOption {
	return func(r *Rooms) { r.newID = fn }
}

func NewRooms(maxAttempts int, opts ...RoomsOption) *Rooms {
	if maxAttempts <= 0 {
		maxAttempts = DefaultIDAttempts
	}
	r := &Rooms{
		rooms:       make(map[domain.RoomID]*domain.Room),
		newID:       RandomRoomID,
		maxAttempts: maxAttempts,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create inserts a fully built room. An empty id is generated; an explicit
// id that is already taken is rejected. init runs before the room becomes
// visible to Get.
func (f *Rooms) Create(id domain.RoomID, name string, settings domain.Settings, init ...func(*domain.Room)) (*domain.Room, error) {
	return f.insert(id, func(id domain.RoomID) *domain.Room {
		room := domain.NewRoom(id, name, settings)
		for _, fn := range init {
			fn(room)
		}
		return room
	})
}

// CreateChild builds a breakout room that inherits the parent's settings,
// host, co-hosts and block list.
func (f *Rooms) CreateChild(parent *domain.Room, name string) (*domain.Room, error) {
	return f.insert("", func(id domain.RoomID) *domain.Room {
		child := domain.NewRoom(id, name, parent.Settings)
		child.IsBreakout = true
		child.ParentID = parent.ID
		child.HostConnID = parent.HostConnID
		child.Compliance = parent.Compliance
		for c := range parent.Blocked {
			child.Blocked[c] = struct{}{}
		}
		for c := range parent.CoHosts {
			child.CoHosts[c] = struct{}{}
		}
		return child
	})
}

func (f *Rooms) insert(id domain.RoomID, build func(domain.RoomID) *domain.Room) (*domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if id != "" {
		if _, taken := f.rooms[id]; taken {
			return nil, domain.Errorf(domain.CodeInvalidParameter, "room id %s is taken", id)
		}
	} else {
		for attempt := 0; ; attempt++ {
			if attempt == f.maxAttempts {
				log.Error().Str("module", "app.rooms").Int("attempts", attempt).Msg("room id space exhausted")
				return nil, domain.ErrIDSpaceExhausted
			}
			candidate := f.newID()
			if _, taken := f.rooms[candidate]; !taken {
				id = candidate
				break
			}
		}
	}

	room := build(id)
	f.rooms[id] = room
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Bool("breakout", room.IsBreakout).Msg("room created")
	return room, nil
}

func (f *Rooms) Get(id domain.RoomID) (*domain.Room, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	r, ok := f.rooms[id]
	return r, ok
}

func (f *Rooms) Delete(id domain.RoomID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rooms[id]; !ok {
		return false
	}
	delete(f.rooms, id)
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room deleted")
	return true
}

func (f *Rooms) IDs() []domain.RoomID {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]domain.RoomID, 0, len(f.rooms))
	for id := range f.rooms {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (f *Rooms) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.rooms)
}
