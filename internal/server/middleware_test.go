package server_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"takesix-server/internal/server"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	limiter := server.NewRateLimiter(3, time.Minute)

	assert.True(t, limiter.Allow("conn-1"))
	assert.True(t, limiter.Allow("conn-1"))
	assert.True(t, limiter.Allow("conn-1"))
	assert.False(t, limiter.Allow("conn-1"))

	// Another connection has its own budget.
	assert.True(t, limiter.Allow("conn-2"))
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	limiter := server.NewRateLimiter(1, 20*time.Millisecond)

	assert.True(t, limiter.Allow("conn-1"))
	assert.False(t, limiter.Allow("conn-1"))

	time.Sleep(30 * time.Millisecond)
	assert.True(t, limiter.Allow("conn-1"))
}

func TestRateLimiterRemoveConnection(t *testing.T) {
	limiter := server.NewRateLimiter(1, time.Minute)

	assert.True(t, limiter.Allow("conn-1"))
	assert.False(t, limiter.Allow("conn-1"))

	limiter.RemoveConnection("conn-1")
	assert.True(t, limiter.Allow("conn-1"))
}

func TestConnectionHealthTracksInactivity(t *testing.T) {
	health := server.NewConnectionHealth()

	health.UpdateActivity("conn-1")
	health.UpdateActivity("conn-2")

	assert.Empty(t, health.GetInactiveConnections(time.Minute))

	time.Sleep(15 * time.Millisecond)
	health.UpdateActivity("conn-2")

	inactive := health.GetInactiveConnections(10 * time.Millisecond)
	assert.Equal(t, []string{"conn-1"}, inactive)

	health.RemoveConnection("conn-1")
	assert.Empty(t, health.GetInactiveConnections(10*time.Millisecond))
}

func TestValidateMessageType(t *testing.T) {
	valid := []string{"ping", "create_room", "join_room", "update_roster", "start_game", "play_card", "choose_row"}
	for _, msgType := range valid {
		assert.NoError(t, server.ValidateMessageType(msgType), "Type %s should be valid", msgType)
	}

	invalid := []string{"", "unknown", "PLAY_CARD", "drop_table"}
	for _, msgType := range invalid {
		err := server.ValidateMessageType(msgType)
		assert.ErrorContains(t, err, "INVALID_MESSAGE_TYPE", "Type %q should be rejected", msgType)
	}
}

func TestValidatePlayerName(t *testing.T) {
	assert.NoError(t, server.ValidatePlayerName("Alice"))
	assert.NoError(t, server.ValidatePlayerName("  Bob  "))

	assert.ErrorContains(t, server.ValidatePlayerName(""), "NAME_INVALID")
	assert.ErrorContains(t, server.ValidatePlayerName("   "), "NAME_INVALID")
	assert.ErrorContains(t, server.ValidatePlayerName("ThisNameIsWayTooLongToAllow"), "NAME_INVALID")
}
