package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/coder/websocket"

	"takesix-server/internal/game"
)

func (s *Server) sendMessage(socket *websocket.Conn, ctx context.Context, msg ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}
	return socket.Write(ctx, websocket.MessageText, data)
}

func (s *Server) sendRejection(socket *websocket.Conn, ctx context.Context, code, message string) {
	response := ServerMessage{
		Type: "operation_rejected",
		Payload: RejectionMessage{
			Code:    code,
			Message: message,
		},
	}
	if err := s.sendMessage(socket, ctx, response); err != nil {
		log.Printf("Failed to send rejection: %v", err)
	}
}

// sendToPlayer delivers one message to a player's live socket, if any.
// Bots and departed players simply have no socket.
func (s *Server) sendToPlayer(playerID string, msg ServerMessage) {
	conn := s.connectionManager.GetConnectionByPlayer(playerID)
	if conn == nil {
		return
	}
	if err := s.sendMessage(conn, context.Background(), msg); err != nil {
		log.Printf("Failed to send %s to %s: %v", msg.Type, playerID, err)
	}
}

// broadcastToRoom sends an identical payload to every connected human
// in the room.
// Caller must hold room.mu.
func (s *Server) broadcastToRoom(room *Room, messageType string, payload interface{}) {
	for _, entry := range room.Roster {
		if entry.IsBot {
			continue
		}
		s.sendToPlayer(entry.ID, ServerMessage{Type: messageType, Payload: payload})
	}
}

// broadcastRoster announces the current member list and host.
// Caller must hold room.mu.
func (s *Server) broadcastRoster(room *Room) {
	s.broadcastToRoom(room, "roster_updated", RosterUpdatedNotification{
		HostID:  room.HostID,
		Players: room.Roster,
	})
}

// broadcastGameState re-renders the partitioned view for every player
// after a mutation. Each recipient sees their own hand; every other
// hand is a count. Sent after every transition, not just phase
// boundaries, so clients converge even when they miss a frame.
// Caller must hold room.mu.
func (s *Server) broadcastGameState(room *Room, messageType string) {
	if room.Game == nil {
		return
	}
	for _, entry := range room.Roster {
		if entry.IsBot {
			continue
		}
		s.sendToPlayer(entry.ID, ServerMessage{
			Type: messageType,
			Payload: GameStateMessage{
				RoomCode: room.Code,
				State:    room.Game.GetClientState(entry.ID),
			},
		})
	}
}

// broadcastResolution announces one applied turn-order entry together
// with the table and score deltas it caused.
// Caller must hold room.mu.
func (s *Server) broadcastResolution(room *Room, res *game.Resolution) {
	scores := make([]ScoreSnapshot, 0, len(room.Game.Players))
	for _, p := range room.Game.Players {
		scores = append(scores, ScoreSnapshot{PlayerID: p.ID, Score: p.Score})
	}
	s.broadcastToRoom(room, "card_resolved", CardResolvedNotification{
		PlayerID:   res.PlayerID,
		Card:       res.Card,
		RowIndex:   res.RowIndex,
		Penalty:    res.Penalty,
		RowCleared: res.RowCleared,
		Rows:       room.Game.Rows,
		Scores:     scores,
	})
}
