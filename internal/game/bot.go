package game

import "math/rand"

// exploreChance is how often a bot abandons the greedy pick for a
// random card, so its play is not fully predictable.
const exploreChance = 0.2

// worstGap stands in for "fits no row"; real gaps never exceed 103.
const worstGap = 999

// ChooseCard picks the bot's card for this turn: the hand card with
// the smallest gap onto any row it fits, with cards that fit nowhere
// ranked worst. Occasionally plays a random card instead.
func ChooseCard(rng *rand.Rand, rows [NumRows][]Card, hand []Card) Card {
	if rng.Float64() < exploreChance {
		return hand[rng.Intn(len(hand))]
	}
	return greedyCard(rows, hand)
}

// greedyCard minimizes the imminent gap. Ties keep the earlier card,
// which in a sorted hand is the lowest value.
func greedyCard(rows [NumRows][]Card, hand []Card) Card {
	best := hand[0]
	bestGap := minGap(rows, hand[0])
	for _, c := range hand[1:] {
		if gap := minGap(rows, c); gap < bestGap {
			best, bestGap = c, gap
		}
	}
	return best
}

// minGap is the smallest positive distance from a card to a row it
// could legally extend, or worstGap when there is none.
func minGap(rows [NumRows][]Card, card Card) int {
	gap := worstGap
	for _, row := range rows {
		last := row[len(row)-1].Value
		if card.Value > last && card.Value-last < gap {
			gap = card.Value - last
		}
	}
	return gap
}

// CheapestRow is the row a bot sacrifices when its card fits nowhere:
// minimum total bulls, ties toward the lowest index. The same rule
// backs the auto-resolve fallback for vanished humans.
func CheapestRow(rows [NumRows][]Card) int {
	best, bestBulls := 0, RowBulls(rows[0])
	for i := 1; i < NumRows; i++ {
		if bulls := RowBulls(rows[i]); bulls < bestBulls {
			best, bestBulls = i, bulls
		}
	}
	return best
}
