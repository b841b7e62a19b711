// Package lobby tracks live rooms and reaps the ones nobody came back to.
package lobby

import (
	"log"
	"strings"
	"sync"
	"time"

	"hokm-lite/apps/server/internal/history"
	"hokm-lite/apps/server/internal/room"
	"hokm-lite/hokm"

	"github.com/google/uuid"
)

const (
	idleRoomTTL       = 5 * time.Minute
	reapSweepInterval = time.Minute
)

// Lobby manages all rooms.
type Lobby struct {
	mu    sync.RWMutex
	rooms map[string]*room.Room

	store     history.Store
	stopOnce  sync.Once
	stopSweep chan struct{}
}

// New creates a lobby and starts the idle-room sweeper.
func New(store history.Store) *Lobby {
	l := &Lobby{
		rooms:     make(map[string]*room.Room),
		store:     store,
		stopSweep: make(chan struct{}),
	}
	go l.sweep()
	return l
}

// CreateRoom builds a room from the requested config with the creator as
// host. Private rooms get an invite code derived from a fresh uuid.
func (l *Lobby) CreateRoom(hostID string, cfg hokm.Config, broadcastFn func(userID string, data []byte)) (*room.Room, error) {
	if cfg.TurnTimer == 0 && cfg.KotBonus == 0 && cfg.TargetHands == 0 {
		defaults := hokm.DefaultConfig(cfg.Mode)
		defaults.IsPrivate = cfg.IsPrivate
		cfg = defaults
	}
	if cfg.IsPrivate && cfg.InviteCode == "" {
		cfg.InviteCode = inviteCode()
	}

	roomID := uuid.NewString()
	r := room.New(roomID, cfg, hostID, broadcastFn, l.store)

	l.mu.Lock()
	l.rooms[roomID] = r
	l.mu.Unlock()

	log.Printf("[Lobby] Room %s created by %s (mode=%d, private=%v)", roomID, hostID, cfg.Mode, cfg.IsPrivate)
	return r, nil
}

// GetRoom returns a room by ID, nil if absent.
func (l *Lobby) GetRoom(roomID string) *room.Room {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rooms[roomID]
}

// ListRooms returns ids of the public rooms still open.
func (l *Lobby) ListRooms() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.rooms))
	for id, r := range l.rooms {
		if r.Config().IsPrivate || r.IsClosed() {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// CloseRoom stops and forgets a room.
func (l *Lobby) CloseRoom(roomID string) {
	l.mu.Lock()
	r := l.rooms[roomID]
	delete(l.rooms, roomID)
	l.mu.Unlock()

	if r != nil {
		r.Stop()
		log.Printf("[Lobby] Room %s closed", roomID)
	}
}

// Stop halts the sweeper and closes every room.
func (l *Lobby) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopSweep)
	})

	l.mu.Lock()
	rooms := make([]*room.Room, 0, len(l.rooms))
	for _, r := range l.rooms {
		rooms = append(rooms, r)
	}
	l.rooms = make(map[string]*room.Room)
	l.mu.Unlock()

	for _, r := range rooms {
		r.Stop()
	}
}

func (l *Lobby) sweep() {
	ticker := time.NewTicker(reapSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.reapIdleRooms()
		case <-l.stopSweep:
			return
		}
	}
}

func (l *Lobby) reapIdleRooms() {
	l.mu.RLock()
	var idle []string
	for id, r := range l.rooms {
		if r.IsIdleFor(idleRoomTTL) {
			idle = append(idle, id)
		}
	}
	l.mu.RUnlock()

	for _, id := range idle {
		log.Printf("[Lobby] Reaping idle room %s", id)
		l.CloseRoom(id)
	}
}

func inviteCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}
