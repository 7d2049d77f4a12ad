package server

import (
	"context"
	"log"
	"time"

	"takesix-server/internal/game"
)

// Turn pacing. The reveal pause and per-card cadence give clients time
// to animate; between rounds the table idles long enough to read the
// scoreboard. Server fields so tests can zero them.
const (
	defaultRevealDelay  = 800 * time.Millisecond
	defaultResolveDelay = 800 * time.Millisecond
	defaultRoundDelay   = 3 * time.Second
)

// scheduleStep arms a timer that re-enters the room under its lock.
// The captured epoch makes stale timers no-ops: any command that takes
// over the phase chain bumps room.epoch first.
// Caller must hold room.mu.
func (s *Server) scheduleStep(room *Room, d time.Duration, fn func(*Room)) {
	epoch := room.epoch
	time.AfterFunc(d, func() {
		room.mu.Lock()
		defer room.mu.Unlock()
		if room.closed || room.epoch != epoch {
			return
		}
		fn(room)
	})
}

// onAllPlayed runs when the last selection of a batch lands: the plays
// become public and the reveal pause starts ticking.
// Caller must hold room.mu.
func (s *Server) onAllPlayed(room *Room) {
	s.broadcastToRoom(room, "turn_revealing", TurnRevealingNotification{
		Plays: room.Game.Plays(),
	})
	s.broadcastGameState(room, "game_state")

	s.scheduleStep(room, s.revealDelay, func(room *Room) {
		if err := room.Game.BeginResolving(); err != nil {
			log.Printf("Room %s: begin resolving: %v", room.Code, err)
			return
		}
		s.broadcastToRoom(room, "round_advanced", RoundAdvancedNotification{Phase: game.PhaseResolving})
		s.scheduleStep(room, s.resolveDelay, s.resolveStep)
	})
}

// resolveStep applies one turn-order entry on the resolution clock.
func (s *Server) resolveStep(room *Room) {
	res, err := room.Game.ResolveNext()
	if err != nil {
		log.Printf("Room %s: resolve: %v", room.Code, err)
		return
	}
	s.afterResolution(room, res)
}

// afterResolution broadcasts a resolution step and schedules whatever
// the outcome demands. Shared by the timer path, choose_row, and the
// disconnect auto-resolve.
// Caller must hold room.mu.
func (s *Server) afterResolution(room *Room, res *game.Resolution) {
	if res.Outcome == game.OutcomeAwaitRow {
		// Nothing applied yet; one human owns the next move.
		s.broadcastToRoom(room, "round_advanced", RoundAdvancedNotification{
			Phase:     game.PhaseChoosingRow,
			WaitingOn: res.PlayerID,
		})
		s.broadcastGameState(room, "game_state")
		return
	}

	if res.RowIndex >= 0 {
		s.broadcastResolution(room, res)
	}
	s.broadcastGameState(room, "game_state")

	switch res.Outcome {
	case game.OutcomeNextCard:
		s.scheduleStep(room, s.resolveDelay, s.resolveStep)

	case game.OutcomeNextTurn:
		s.broadcastToRoom(room, "round_advanced", RoundAdvancedNotification{Phase: game.PhaseChoosing})

	case game.OutcomeRoundOver:
		s.broadcastToRoom(room, "round_advanced", RoundAdvancedNotification{Phase: game.PhaseBetweenRounds})
		s.scheduleStep(room, s.roundDelay, s.startNextRound)

	case game.OutcomeGameOver:
		finals := room.Game.FinalScores()
		s.broadcastToRoom(room, "game_over", GameOverNotification{FinalScores: finals})
		if s.results != nil {
			code, rounds := room.Code, room.Game.Round
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := s.results.SaveResult(ctx, code, rounds, finals); err != nil {
					log.Printf("Room %s: archive result: %v", code, err)
				}
			}()
		}
	}
}

// removePlayer handles a departed participant: engine removal with its
// auto-resolve policy, roster removal, host migration, and room
// teardown when no human remains. The epoch bump kills any timer
// armed for the pre-removal state.
// Caller must hold room.mu.
func (s *Server) removePlayer(room *Room, playerID string) {
	if !room.RemoveFromRoster(playerID) {
		return
	}
	room.epoch++

	var res *game.Resolution
	var allIn bool
	if room.Game != nil {
		res, allIn = room.Game.RemovePlayer(playerID)
	}

	if room.humanCount() == 0 {
		s.roomManager.DestroyRoom(room)
		log.Printf("Room %s destroyed (no humans left)", room.Code)
		return
	}

	s.broadcastToRoom(room, "player_left", PlayerLeftNotification{
		PlayerID: playerID,
		HostID:   room.HostID,
		Players:  room.Roster,
	})

	if res != nil {
		s.afterResolution(room, res)
	} else if allIn {
		s.onAllPlayed(room)
	} else if room.Game != nil {
		// Re-arm the pacing chain the epoch bump cancelled.
		switch room.Game.Phase {
		case game.PhaseRevealing:
			s.onAllPlayed(room)
		case game.PhaseResolving:
			s.scheduleStep(room, s.resolveDelay, s.resolveStep)
		case game.PhaseBetweenRounds:
			s.scheduleStep(room, s.roundDelay, s.startNextRound)
		}
	}
}

// startNextRound deals the next round once the between-rounds pause
// elapses.
// Caller must hold room.mu.
func (s *Server) startNextRound(room *Room) {
	room.Game.StartRound()
	s.broadcastToRoom(room, "round_starting", RoundStartingNotification{Round: room.Game.Round})
	s.broadcastGameState(room, "game_state")
}
