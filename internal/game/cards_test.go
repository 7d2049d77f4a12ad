package game_test

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"

	"takesix-server/internal/game"
)

func TestBullsFor(t *testing.T) {
	var tests = []struct {
		value int
		want  int
	}{
		{55, 7},
		{11, 5},
		{22, 5},
		{33, 5},
		{99, 5},
		{10, 3},
		{30, 3},
		{100, 3},
		{5, 2},
		{15, 2},
		{65, 2},
		{1, 1},
		{2, 1},
		{54, 1},
		{104, 1},
	}

	for _, tt := range tests {
		testName := fmt.Sprintf("card %d", tt.value)
		t.Run(testName, func(t *testing.T) {
			bulls := game.BullsFor(tt.value)
			if bulls != tt.want {
				t.Errorf("BullsFor(%d) = %d, %d expected.", tt.value, bulls, tt.want)
			}
		})
	}
}

func TestNewDeck(t *testing.T) {
	deck := game.NewDeck()

	if len(deck) != game.DeckSize {
		t.Errorf("Deck should be %d cards, %d given.", game.DeckSize, len(deck))
	}

	seen := make(map[int]bool)
	for _, c := range deck {
		if c.Value < 1 || c.Value > game.DeckSize {
			t.Errorf("Card value %d out of range", c.Value)
		}
		if seen[c.Value] {
			t.Errorf("Card value %d appears twice", c.Value)
		}
		seen[c.Value] = true
		if c.Bulls != game.BullsFor(c.Value) {
			t.Errorf("Card %d carries %d bulls, %d expected", c.Value, c.Bulls, game.BullsFor(c.Value))
		}
	}
}

func TestShuffle(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	deck := game.NewDeck()
	original := slices.Clone(deck)

	shuffled := game.Shuffle(rng, deck)

	if !slices.Equal(deck, original) {
		t.Error("Shuffle mutated its input")
	}
	if slices.Equal(shuffled, deck) {
		t.Error("Shuffling didn't work")
	}
	if len(shuffled) != len(deck) {
		t.Errorf("Shuffled deck has %d cards, %d expected", len(shuffled), len(deck))
	}
}

func TestDeal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	deck := game.Shuffle(rng, game.NewDeck())

	hands, rows, rest := game.Deal(deck, 4)

	if len(hands) != 4 {
		t.Fatalf("Expected 4 hands, got %d", len(hands))
	}

	seen := make(map[int]bool)
	for i, hand := range hands {
		if len(hand) != game.HandSize {
			t.Errorf("Hand %d has %d cards, %d expected", i, len(hand), game.HandSize)
		}
		if !slices.IsSortedFunc(hand, func(a, b game.Card) int { return a.Value - b.Value }) {
			t.Errorf("Hand %d is not sorted ascending", i)
		}
		for _, c := range hand {
			if seen[c.Value] {
				t.Errorf("Card %d dealt twice", c.Value)
			}
			seen[c.Value] = true
		}
	}

	for i, row := range rows {
		if len(row) != 1 {
			t.Errorf("Row %d seeded with %d cards, 1 expected", i, len(row))
		}
		if seen[row[0].Value] {
			t.Errorf("Seed card %d dealt twice", row[0].Value)
		}
		seen[row[0].Value] = true
	}

	wantRest := game.DeckSize - 4*game.HandSize - game.NumRows
	if len(rest) != wantRest {
		t.Errorf("Remainder has %d cards, %d expected", len(rest), wantRest)
	}
}

func TestRowBulls(t *testing.T) {
	row := []game.Card{
		{Value: 55, Bulls: 7},
		{Value: 60, Bulls: 3},
		{Value: 62, Bulls: 1},
	}

	if got := game.RowBulls(row); got != 11 {
		t.Errorf("RowBulls = %d, 11 expected", got)
	}
	if got := game.RowBulls(nil); got != 0 {
		t.Errorf("RowBulls of empty row = %d, 0 expected", got)
	}
}
