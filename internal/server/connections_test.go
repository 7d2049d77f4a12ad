package server_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"takesix-server/internal/server"
)

func TestConnectionLifecycle(t *testing.T) {
	cm := server.NewConnectionManager()

	cm.AddConnection("conn-1", nil)
	assert.Empty(t, cm.GetPlayerByConnection("conn-1"), "Fresh connection has no player")

	cm.BindPlayer("conn-1", "player-1")
	assert.Equal(t, "player-1", cm.GetPlayerByConnection("conn-1"))

	playerID := cm.RemoveConnection("conn-1")
	assert.Equal(t, "player-1", playerID)
	assert.Empty(t, cm.GetPlayerByConnection("conn-1"))
	assert.Nil(t, cm.GetConnectionByPlayer("player-1"))
}

func TestRemoveUnboundConnection(t *testing.T) {
	cm := server.NewConnectionManager()

	cm.AddConnection("conn-1", nil)
	assert.Empty(t, cm.RemoveConnection("conn-1"))
	assert.Empty(t, cm.RemoveConnection("never-added"))
}

func TestGetConnectionByPlayerUnknown(t *testing.T) {
	cm := server.NewConnectionManager()
	assert.Nil(t, cm.GetConnectionByPlayer("ghost"))
}
