package server

import "takesix-server/internal/game"

// ============================================================================
// REJECTIONS (operation_rejected)
// ============================================================================
type RejectionMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ============================================================================
// CREATE ROOM (create_room)
// ============================================================================
type CreateRoomRequest struct {
	PlayerName string `json:"playerName"`
}

type RoomCreatedResponse struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

// ============================================================================
// JOIN ROOM (join_room)
// ============================================================================
type JoinRoomRequest struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type JoinConfirmedResponse struct {
	RoomCode string        `json:"roomCode"`
	PlayerID string        `json:"playerId"`
	Players  []RosterEntry `json:"players"`
}

// ============================================================================
// ROSTER (update_roster / roster_updated broadcast)
// ============================================================================
type UpdateRosterRequest struct {
	Players []RosterEntry `json:"players"`
}

type RosterUpdatedNotification struct {
	HostID  string        `json:"hostId"`
	Players []RosterEntry `json:"players"`
}

// ============================================================================
// GAME FLOW
// ============================================================================
type StartGameRequest struct {
	// No fields - the sender's connection identifies the host.
}

// game_started / game_state carry the per-player partitioned view.
type GameStateMessage struct {
	RoomCode string            `json:"roomCode"`
	State    *game.ClientState `json:"state"`
}

type PlayCardRequest struct {
	CardValue int `json:"cardValue"`
}

type ChooseRowRequest struct {
	RowIndex int `json:"rowIndex"`
}

// turn_revealing: the batch of simultaneous plays, now public.
type TurnRevealingNotification struct {
	Plays []game.PlayedCard `json:"plays"`
}

// card_resolved: one turn-order entry applied to the table.
type CardResolvedNotification struct {
	PlayerID   string                    `json:"playerId"`
	Card       game.Card                 `json:"card"`
	RowIndex   int                       `json:"rowIndex"`
	Penalty    int                       `json:"penalty"`
	RowCleared bool                      `json:"rowCleared"`
	Rows       [game.NumRows][]game.Card `json:"rows"`
	Scores     []ScoreSnapshot           `json:"scores"`
}

type ScoreSnapshot struct {
	PlayerID string `json:"playerId"`
	Score    int    `json:"score"`
}

// round_advanced: a phase change that is not tied to a single card.
type RoundAdvancedNotification struct {
	Phase game.Phase `json:"phase"`
	// WaitingOn is set when the phase is CHOOSING_ROW.
	WaitingOn string `json:"waitingOn,omitempty"`
}

type RoundStartingNotification struct {
	Round int `json:"round"`
}

type GameOverNotification struct {
	FinalScores []game.ScoreEntry `json:"finalScores"`
}

type PlayerLeftNotification struct {
	PlayerID string        `json:"playerId"`
	HostID   string        `json:"hostId"`
	Players  []RosterEntry `json:"players"`
}
