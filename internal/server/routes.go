package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"takesix-server/internal/game"
)

func (s *Server) RegisterRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/websocket", s.websocketHandler)

	return s.corsMiddleware(mux)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := json.Marshal(map[string]any{
		"status": "ok",
		"rooms":  s.roomManager.RoomCount(),
	})
	if err != nil {
		http.Error(w, "Failed to marshal health check response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(resp); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	socket, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		http.Error(w, "Failed to open websocket", http.StatusInternalServerError)
		return
	}
	defer socket.Close(websocket.StatusGoingAway, "Server closing")

	ctx := r.Context()

	connectionID := uuid.New().String()
	log.Printf("New connection: %s", connectionID)
	s.connectionManager.AddConnection(connectionID, socket)

	defer func() {
		playerID := s.connectionManager.RemoveConnection(connectionID)
		s.limiter.RemoveConnection(connectionID)
		s.health.RemoveConnection(connectionID)
		log.Printf("Connection closed: %s", connectionID)

		// A dropped socket ends the player's participation: no
		// reconnection, so treat it as leaving the room.
		if playerID != "" {
			if room := s.roomManager.RoomByPlayer(playerID); room != nil {
				room.mu.Lock()
				s.removePlayer(room, playerID)
				room.mu.Unlock()
			}
		}
	}()

	for {
		msgType, data, err := socket.Read(ctx)
		if err != nil {
			log.Printf("Connection %s read error: %v", connectionID, err)
			return
		}

		if msgType != websocket.MessageText {
			log.Printf("Non-text input from %s", connectionID)
			continue
		}

		if !s.limiter.Allow(connectionID) {
			log.Printf("Rate limited %s", connectionID)
			continue
		}
		s.health.UpdateActivity(connectionID)

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			// Undecodable events are dropped, not fatal: flaky
			// clients retry and duplicates are expected.
			log.Printf("Invalid JSON from %s: %v", connectionID, err)
			continue
		}

		if err := ValidateMessageType(msg.Type); err != nil {
			log.Printf("Connection %s: %v", connectionID, err)
			continue
		}

		switch msg.Type {
		case "ping":
			s.handlePing(socket, ctx, connectionID)

		case "create_room":
			s.handleCreateRoom(socket, ctx, connectionID, msg.Payload)

		case "join_room":
			s.handleJoinRoom(socket, ctx, connectionID, msg.Payload)

		case "update_roster":
			s.handleUpdateRoster(socket, ctx, connectionID, msg.Payload)

		case "start_game":
			s.handleStartGame(socket, ctx, connectionID)

		case "play_card":
			s.handlePlayCard(connectionID, msg.Payload)

		case "choose_row":
			s.handleChooseRow(connectionID, msg.Payload)
		}
	}
}

func (s *Server) handlePing(socket *websocket.Conn, ctx context.Context, connectionID string) {
	if err := s.sendMessage(socket, ctx, ServerMessage{Type: "pong", Payload: struct{}{}}); err != nil {
		log.Printf("Failed to send pong to %s: %v", connectionID, err)
	}
}

func (s *Server) handleCreateRoom(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req CreateRoomRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		log.Printf("Invalid create_room payload from %s: %v", connectionID, err)
		return
	}

	room, playerID, err := s.roomManager.CreateRoom(req.PlayerName)
	if err != nil {
		s.rejectWith(socket, ctx, err)
		return
	}

	s.connectionManager.BindPlayer(connectionID, playerID)
	log.Printf("Room %s created by %s", room.Code, req.PlayerName)

	response := ServerMessage{
		Type: "room_created",
		Payload: RoomCreatedResponse{
			RoomCode: room.Code,
			PlayerID: playerID,
		},
	}
	if err := s.sendMessage(socket, ctx, response); err != nil {
		log.Printf("Failed to send room_created: %v", err)
		return
	}

	room.mu.Lock()
	s.broadcastRoster(room)
	room.mu.Unlock()
}

func (s *Server) handleJoinRoom(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req JoinRoomRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		log.Printf("Invalid join_room payload from %s: %v", connectionID, err)
		return
	}

	room, playerID, err := s.roomManager.JoinRoom(req.RoomCode, req.PlayerName)
	if err != nil {
		s.rejectWith(socket, ctx, err)
		return
	}

	s.connectionManager.BindPlayer(connectionID, playerID)
	log.Printf("%s joined room %s", req.PlayerName, room.Code)

	room.mu.Lock()
	defer room.mu.Unlock()

	response := ServerMessage{
		Type: "join_confirmed",
		Payload: JoinConfirmedResponse{
			RoomCode: room.Code,
			PlayerID: playerID,
			Players:  room.Roster,
		},
	}
	if err := s.sendMessage(socket, ctx, response); err != nil {
		log.Printf("Failed to send join_confirmed: %v", err)
	}

	s.broadcastRoster(room)
}

func (s *Server) handleUpdateRoster(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req UpdateRosterRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		log.Printf("Invalid update_roster payload from %s: %v", connectionID, err)
		return
	}

	playerID := s.connectionManager.GetPlayerByConnection(connectionID)
	room := s.roomManager.RoomByPlayer(playerID)
	if playerID == "" || room == nil {
		s.sendRejection(socket, ctx, "NOT_IN_ROOM", "No active room")
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if err := room.UpdateRoster(playerID, req.Players); err != nil {
		s.rejectWith(socket, ctx, err)
		return
	}

	s.broadcastRoster(room)
}

func (s *Server) handleStartGame(socket *websocket.Conn, ctx context.Context, connectionID string) {
	playerID := s.connectionManager.GetPlayerByConnection(connectionID)
	room := s.roomManager.RoomByPlayer(playerID)
	if playerID == "" || room == nil {
		s.sendRejection(socket, ctx, "NOT_IN_ROOM", "No active room")
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.HostID != playerID {
		s.sendRejection(socket, ctx, "NOT_HOST", "Only the host can start the game")
		return
	}
	if len(room.Roster) < game.MinPlayers {
		s.sendRejection(socket, ctx, "NOT_ENOUGH_PLAYERS", "Need at least 2 participants")
		return
	}

	seats := make([]game.Seat, 0, len(room.Roster))
	for _, e := range room.Roster {
		seats = append(seats, game.Seat{ID: e.ID, Name: e.Name, IsBot: e.IsBot})
	}
	room.Game = game.NewGame(seats)
	room.Game.StartRound()
	room.epoch++

	log.Printf("Game started in room %s with %d players", room.Code, len(seats))
	s.broadcastGameState(room, "game_started")
}

func (s *Server) handlePlayCard(connectionID string, payload json.RawMessage) {
	var req PlayCardRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		log.Printf("Invalid play_card payload from %s: %v", connectionID, err)
		return
	}

	playerID := s.connectionManager.GetPlayerByConnection(connectionID)
	room := s.roomManager.RoomByPlayer(playerID)
	if playerID == "" || room == nil {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.Game == nil {
		return
	}

	allPlayed, err := room.Game.PlayCard(playerID, req.CardValue)
	if err != nil {
		// Stale, duplicate, or out-of-phase plays are no-ops.
		if errors.Is(err, game.ErrInvalidMove) {
			log.Printf("Room %s: rejected play from %s: %v", room.Code, playerID, err)
			return
		}
		log.Printf("Room %s: play_card: %v", room.Code, err)
		return
	}

	room.epoch++
	if allPlayed {
		s.onAllPlayed(room)
	} else {
		s.broadcastGameState(room, "game_state")
	}
}

func (s *Server) handleChooseRow(connectionID string, payload json.RawMessage) {
	var req ChooseRowRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		log.Printf("Invalid choose_row payload from %s: %v", connectionID, err)
		return
	}

	playerID := s.connectionManager.GetPlayerByConnection(connectionID)
	room := s.roomManager.RoomByPlayer(playerID)
	if playerID == "" || room == nil {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.Game == nil {
		return
	}

	res, err := room.Game.ChooseRow(playerID, req.RowIndex)
	if err != nil {
		log.Printf("Room %s: rejected row choice from %s: %v", room.Code, playerID, err)
		return
	}

	room.epoch++
	s.afterResolution(room, res)
}

// rejectWith maps "CODE: message" errors from the managers onto a
// rejection message.
func (s *Server) rejectWith(socket *websocket.Conn, ctx context.Context, err error) {
	code, message, found := strings.Cut(err.Error(), ": ")
	if !found {
		code, message = "REJECTED", err.Error()
	}
	s.sendRejection(socket, ctx, code, message)
}
