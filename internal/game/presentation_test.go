package game_test

import (
	"testing"

	"takesix-server/internal/game"
)

func TestClientStateHidesOtherHands(t *testing.T) {
	g := newTestGame(game.Seat{ID: "p1", Name: "Ada"}, game.Seat{ID: "p2", Name: "Bea"})
	g.Players[0].Hand = []game.Card{card(10), card(20)}
	g.Players[1].Hand = []game.Card{card(30), card(40), card(50)}
	c30 := card(30)
	g.Players[1].Selected = &c30

	state := g.GetClientState("p1")

	if len(state.Hand) != 2 {
		t.Errorf("Own hand has %d cards, 2 expected", len(state.Hand))
	}
	if state.Players[1].HandCount != 3 {
		t.Errorf("Opponent hand count = %d, 3 expected", state.Players[1].HandCount)
	}
	if !state.Players[1].HasPlayed {
		t.Error("Opponent's selection presence should be visible")
	}
	if state.Players[1].Selected != nil {
		t.Error("Opponent's selected card must stay hidden during CHOOSING")
	}
	if state.TurnOrder != nil {
		t.Error("Turn order must stay hidden during CHOOSING")
	}
}

func TestClientStateRevealsAfterChoosing(t *testing.T) {
	g := newTestGame(game.Seat{ID: "p1", Name: "Ada"}, game.Seat{ID: "p2", Name: "Bea"})
	c10, c30 := card(10), card(30)
	g.Players[0].Selected = &c10
	g.Players[1].Selected = &c30
	g.Phase = game.PhaseRevealing
	g.TurnOrder = []game.PlayedCard{
		{PlayerID: "p1", Card: c10},
		{PlayerID: "p2", Card: c30},
	}

	state := g.GetClientState("p1")

	if state.Players[1].Selected == nil || state.Players[1].Selected.Value != 30 {
		t.Error("Selections become public once the phase leaves CHOOSING")
	}
	if len(state.TurnOrder) != 2 {
		t.Errorf("Turn order has %d entries, 2 expected", len(state.TurnOrder))
	}
}

func TestClientStateUnknownPlayerGetsNoHand(t *testing.T) {
	g := newTestGame(game.Seat{ID: "p1", Name: "Ada"})
	g.Players[0].Hand = []game.Card{card(10)}

	state := g.GetClientState("spectator")

	if state.Hand != nil {
		t.Error("Unknown recipient must not receive a hand")
	}
	if state.Players[0].HandCount != 1 {
		t.Errorf("Hand count = %d, 1 expected", state.Players[0].HandCount)
	}
}
