package server

import (
	"sync"

	"github.com/coder/websocket"
)

// ConnectionManager tracks live sockets and which player each one
// speaks for. A player has at most one connection; there is no
// reconnection, so a dropped socket ends that player's participation.
type ConnectionManager struct {
	connections map[string]*websocket.Conn // connectionID → socket
	players     map[string]string          // connectionID → playerID
	byPlayer    map[string]string          // playerID → connectionID
	mu          sync.RWMutex
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*websocket.Conn),
		players:     make(map[string]string),
		byPlayer:    make(map[string]string),
	}
}

func (cm *ConnectionManager) AddConnection(id string, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.connections[id] = conn
}

// BindPlayer associates a connection with the player it authenticated
// as (by creating or joining a room).
func (cm *ConnectionManager) BindPlayer(connectionID, playerID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.players[connectionID] = playerID
	cm.byPlayer[playerID] = connectionID
}

// RemoveConnection drops a socket and returns the playerID it was
// bound to, "" if it never joined a room.
func (cm *ConnectionManager) RemoveConnection(id string) string {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	playerID := cm.players[id]
	delete(cm.connections, id)
	delete(cm.players, id)
	if playerID != "" {
		delete(cm.byPlayer, playerID)
	}
	return playerID
}

func (cm *ConnectionManager) GetPlayerByConnection(connectionID string) string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.players[connectionID]
}

func (cm *ConnectionManager) GetConnectionByPlayer(playerID string) *websocket.Conn {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	connID, ok := cm.byPlayer[playerID]
	if !ok {
		return nil
	}
	return cm.connections[connID]
}

func (cm *ConnectionManager) GetConnection(connectionID string) *websocket.Conn {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.connections[connectionID]
}
