package server

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"takesix-server/internal/game"
)

// RoomManager is the process-wide registry of rooms. Its lock only
// guards the registry maps; every command against a single room is
// serialized by that room's own mutex, so two rooms never contend.
type RoomManager struct {
	rooms     map[string]*Room
	usedCodes map[string]bool
	mu        sync.RWMutex
}

// Room owns one table: the lobby roster and, once started, the
// authoritative game state. All mutations — player commands and timer
// firings alike — happen under mu. epoch invalidates scheduled timers
// whenever a command takes over the phase chain.
type Room struct {
	Code      string
	HostID    string
	Roster    []RosterEntry // join order; first joiner is the initial host
	Game      *game.Game    // nil until start_game
	CreatedAt time.Time
	UpdatedAt time.Time

	mu     sync.Mutex
	epoch  int
	closed bool
}

type RosterEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	IsBot bool   `json:"isBot"`
}

func NewRoomManager() *RoomManager {
	return &RoomManager{
		rooms:     make(map[string]*Room),
		usedCodes: make(map[string]bool),
	}
}

func (rm *RoomManager) CreateRoom(hostName string) (*Room, string, error) {
	if err := ValidatePlayerName(hostName); err != nil {
		return nil, "", err
	}

	rm.mu.Lock()
	code := GenerateRoomCode(rm.usedCodes)
	rm.usedCodes[code] = true
	rm.mu.Unlock()

	playerID := uuid.New().String()
	now := time.Now()
	room := &Room{
		Code:      code,
		HostID:    playerID,
		Roster:    []RosterEntry{{ID: playerID, Name: strings.TrimSpace(hostName)}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	rm.mu.Lock()
	rm.rooms[code] = room
	rm.mu.Unlock()

	return room, playerID, nil
}

func (rm *RoomManager) GetRoom(code string) (*Room, error) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	room, exists := rm.rooms[NormalizeRoomCode(code)]
	if !exists {
		return nil, errors.New("ROOM_NOT_FOUND: Room not found")
	}
	return room, nil
}

// JoinRoom adds a human to a room's roster. Joining mid-game is
// allowed; the newcomer plays from the next start_game.
func (rm *RoomManager) JoinRoom(code, name string) (*Room, string, error) {
	code = NormalizeRoomCode(code)
	if err := ValidateRoomCode(code); err != nil {
		return nil, "", errors.New("ROOM_NOT_FOUND: " + err.Error())
	}
	if err := ValidatePlayerName(name); err != nil {
		return nil, "", err
	}

	room, err := rm.GetRoom(code)
	if err != nil {
		return nil, "", err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed {
		return nil, "", errors.New("ROOM_NOT_FOUND: Room not found")
	}
	if len(room.Roster) >= game.MaxPlayers {
		return nil, "", errors.New("ROOM_FULL: Room is full (10/10 players)")
	}

	playerID := uuid.New().String()
	room.Roster = append(room.Roster, RosterEntry{ID: playerID, Name: strings.TrimSpace(name)})
	room.UpdatedAt = time.Now()

	return room, playerID, nil
}

// RoomByPlayer finds the room a player currently sits in. The registry
// lock is released before any room lock is taken; DestroyRoom acquires
// them in the opposite order.
func (rm *RoomManager) RoomByPlayer(playerID string) *Room {
	rm.mu.RLock()
	candidates := make([]*Room, 0, len(rm.rooms))
	for _, room := range rm.rooms {
		candidates = append(candidates, room)
	}
	rm.mu.RUnlock()

	for _, room := range candidates {
		room.mu.Lock()
		member := !room.closed && room.hasMember(playerID)
		room.mu.Unlock()
		if member {
			return room
		}
	}
	return nil
}

// UpdateRoster replaces the bot portion of the roster. Every existing
// human keeps their seat by identity, whether or not the host's list
// mentions them; bots are taken from the request as given.
// Caller must hold room.mu.
func (room *Room) UpdateRoster(requesterID string, players []RosterEntry) error {
	if room.HostID != requesterID {
		return errors.New("NOT_HOST: Only the host can change the roster")
	}

	humans := make(map[string]RosterEntry)
	for _, e := range room.Roster {
		if !e.IsBot {
			humans[e.ID] = e
		}
	}

	var next []RosterEntry
	seen := make(map[string]bool)
	for _, e := range players {
		if e.IsBot {
			if e.ID == "" {
				e.ID = "bot-" + uuid.New().String()
			}
			next = append(next, e)
			continue
		}
		if existing, ok := humans[e.ID]; ok && !seen[e.ID] {
			next = append(next, existing)
			seen[e.ID] = true
		}
	}
	// Humans omitted from the request are preserved, in join order.
	for _, e := range room.Roster {
		if !e.IsBot && !seen[e.ID] {
			next = append(next, e)
			seen[e.ID] = true
		}
	}

	if len(next) > game.MaxPlayers {
		return errors.New("ROOM_FULL: Room is full (10/10 players)")
	}

	room.Roster = next
	room.UpdatedAt = time.Now()
	return nil
}

// Caller must hold room.mu.
func (room *Room) hasMember(playerID string) bool {
	for _, e := range room.Roster {
		if e.ID == playerID {
			return true
		}
	}
	return false
}

// RemoveFromRoster drops a player and migrates the host role to the
// earliest remaining human when the host left.
// Caller must hold room.mu.
func (room *Room) RemoveFromRoster(playerID string) bool {
	idx := -1
	for i, e := range room.Roster {
		if e.ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	room.Roster = append(room.Roster[:idx], room.Roster[idx+1:]...)
	room.UpdatedAt = time.Now()

	if room.HostID == playerID {
		room.HostID = ""
		for _, e := range room.Roster {
			if !e.IsBot {
				room.HostID = e.ID
				break
			}
		}
	}
	return true
}

// humanCount reports the remaining humans; a room with none is dead,
// since bots cannot issue commands.
// Caller must hold room.mu.
func (room *Room) humanCount() int {
	n := 0
	for _, e := range room.Roster {
		if !e.IsBot {
			n++
		}
	}
	return n
}

// DestroyRoom closes a room: pending timers die via the epoch bump,
// the registry entry disappears, and the code becomes reusable.
// Caller must hold room.mu.
func (rm *RoomManager) DestroyRoom(room *Room) {
	room.closed = true
	room.epoch++

	rm.mu.Lock()
	delete(rm.rooms, room.Code)
	delete(rm.usedCodes, room.Code)
	rm.mu.Unlock()
}

func (rm *RoomManager) RoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}
