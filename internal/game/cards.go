package game

import (
	"math/rand"
	"slices"
)

const (
	// DeckSize is the number of distinct card values in play.
	DeckSize = 104

	// HandSize is the number of cards dealt to each player per round.
	HandSize = 10

	// NumRows is the number of table rows a card can be played onto.
	NumRows = 4

	// MaxRowLength is the longest a row can grow before the next legal
	// append clears it instead.
	MaxRowLength = 5

	// MaxPlayers is bounded by the deck: 104 - 10*10 - 4 >= 0.
	MaxPlayers = 10

	// MinPlayers is the smallest roster a game can start with.
	MinPlayers = 2

	// WinningScore ends the game once any player reaches it.
	WinningScore = 66
)

// Card is one of the 104 numbered cards. Bulls is derived from Value
// and carried alongside it so clients never recompute it.
type Card struct {
	Value int `json:"value"`
	Bulls int `json:"bulls"`
}

// BullsFor returns the penalty weight printed on a card value.
// The 55 and %11 checks must come first: 55 and 110-style multiples
// would otherwise fall through to the %5 and %10 buckets.
func BullsFor(value int) int {
	switch {
	case value == 55:
		return 7
	case value%11 == 0:
		return 5
	case value%10 == 0:
		return 3
	case value%5 == 0:
		return 2
	default:
		return 1
	}
}

// NewDeck builds the full deck of values 1..104, each exactly once.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for v := 1; v <= DeckSize; v++ {
		deck = append(deck, Card{Value: v, Bulls: BullsFor(v)})
	}
	return deck
}

// Shuffle returns a uniformly shuffled copy. The input is never
// mutated; callers keep ownership of their slice.
func Shuffle(rng *rand.Rand, cards []Card) []Card {
	out := slices.Clone(cards)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Deal removes HandSize cards per player plus one seed card per row.
// Hands come back sorted ascending by value. The remainder is unused
// for the rest of the round.
func Deal(deck []Card, playerCount int) (hands [][]Card, rows [NumRows][]Card, rest []Card) {
	hands = make([][]Card, playerCount)
	for i := range hands {
		hand := slices.Clone(deck[:HandSize])
		deck = deck[HandSize:]
		slices.SortFunc(hand, func(a, b Card) int { return a.Value - b.Value })
		hands[i] = hand
	}
	for i := range rows {
		rows[i] = []Card{deck[0]}
		deck = deck[1:]
	}
	return hands, rows, deck
}

// RowBulls sums the bulls of every card in a row.
func RowBulls(row []Card) int {
	total := 0
	for _, c := range row {
		total += c.Bulls
	}
	return total
}
