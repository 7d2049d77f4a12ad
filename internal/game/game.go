package game

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"time"
)

// Phase is the per-room state machine position. CHOOSING and
// CHOOSING_ROW wait on player input; every other phase advances on a
// scheduler tick.
type Phase string

const (
	PhaseChoosing      Phase = "CHOOSING"
	PhaseRevealing     Phase = "REVEALING"
	PhaseResolving     Phase = "RESOLVING"
	PhaseChoosingRow   Phase = "CHOOSING_ROW"
	PhaseBetweenRounds Phase = "BETWEEN_ROUNDS"
	PhaseGameOver      Phase = "GAME_OVER"
)

// ErrInvalidMove covers every rejected command: wrong phase, wrong
// player, stale or duplicate card. Callers drop these silently so
// retries from flaky connections stay harmless.
var ErrInvalidMove = errors.New("invalid move")

type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsBot    bool   `json:"isBot"`
	Score    int    `json:"score"`
	Hand     []Card `json:"hand"`
	Selected *Card  `json:"selectedCard"`
}

// PlayedCard is one entry of the turn order for a batch of
// simultaneous plays. Values are distinct within a batch, so ascending
// card value is a total order.
type PlayedCard struct {
	PlayerID string `json:"playerId"`
	Card     Card   `json:"card"`
}

// Seat describes a roster entry before the game owns it.
type Seat struct {
	ID    string
	Name  string
	IsBot bool
}

// Game holds all authoritative state for one table. It is not safe
// for concurrent use; the server serializes every command and timer
// for a room before touching it.
type Game struct {
	Players        []*Player
	Rows           [NumRows][]Card
	Phase          Phase
	TurnOrder      []PlayedCard
	ResolvingIndex int
	Round          int

	rng *rand.Rand
}

type Option func(*Game)

// WithRand fixes the random source, for deterministic deals and bot
// play in tests.
func WithRand(rng *rand.Rand) Option {
	return func(g *Game) { g.rng = rng }
}

func NewGame(seats []Seat, opts ...Option) *Game {
	g := &Game{Phase: PhaseChoosing}
	for _, s := range seats {
		g.Players = append(g.Players, &Player{ID: s.ID, Name: s.Name, IsBot: s.IsBot})
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return g
}

// StartRound shuffles a fresh deck, deals hands and seed rows, and
// puts the table back into CHOOSING. Scores carry over.
func (g *Game) StartRound() {
	deck := Shuffle(g.rng, NewDeck())
	hands, rows, _ := Deal(deck, len(g.Players))
	for i, p := range g.Players {
		p.Hand = hands[i]
		p.Selected = nil
	}
	g.Rows = rows
	g.TurnOrder = nil
	g.ResolvingIndex = 0
	g.Phase = PhaseChoosing
	g.Round++
}

func (g *Game) player(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayCard records a human player's selection and immediately plays
// every bot that has not selected yet. Returns true once all players
// have a selection, at which point the phase is REVEALING.
func (g *Game) PlayCard(playerID string, value int) (bool, error) {
	if g.Phase != PhaseChoosing {
		return false, fmt.Errorf("%w: not choosing", ErrInvalidMove)
	}
	p := g.player(playerID)
	if p == nil {
		return false, fmt.Errorf("%w: unknown player %s", ErrInvalidMove, playerID)
	}
	if p.Selected != nil {
		return false, fmt.Errorf("%w: already played this turn", ErrInvalidMove)
	}
	idx := slices.IndexFunc(p.Hand, func(c Card) bool { return c.Value == value })
	if idx < 0 {
		return false, fmt.Errorf("%w: card %d not in hand", ErrInvalidMove, value)
	}
	g.selectCard(p, idx)

	// Bots never wait on a timer: the first human play flushes them.
	for _, bot := range g.Players {
		if bot.IsBot && bot.Selected == nil && len(bot.Hand) > 0 {
			card := ChooseCard(g.rng, g.Rows, bot.Hand)
			i := slices.IndexFunc(bot.Hand, func(c Card) bool { return c.Value == card.Value })
			g.selectCard(bot, i)
		}
	}

	if g.allSelected() {
		g.Phase = PhaseRevealing
		return true, nil
	}
	return false, nil
}

func (g *Game) selectCard(p *Player, handIndex int) {
	card := p.Hand[handIndex]
	p.Selected = &card
	p.Hand = slices.Delete(p.Hand, handIndex, handIndex+1)
}

func (g *Game) allSelected() bool {
	for _, p := range g.Players {
		if p.Selected == nil {
			return false
		}
	}
	return len(g.Players) > 0
}

// Plays lists the current batch of selections in seat order, for the
// reveal broadcast. Only meaningful once the phase left CHOOSING.
func (g *Game) Plays() []PlayedCard {
	var plays []PlayedCard
	for _, p := range g.Players {
		if p.Selected != nil {
			plays = append(plays, PlayedCard{PlayerID: p.ID, Card: *p.Selected})
		}
	}
	return plays
}

// BeginResolving fixes the turn order for the revealed batch: ascending
// by card value, which is unambiguous because values never repeat.
func (g *Game) BeginResolving() error {
	if g.Phase != PhaseRevealing {
		return fmt.Errorf("%w: not revealing", ErrInvalidMove)
	}
	order := g.Plays()
	slices.SortFunc(order, func(a, b PlayedCard) int { return a.Card.Value - b.Card.Value })
	g.TurnOrder = order
	g.ResolvingIndex = 0
	g.Phase = PhaseResolving
	return nil
}

// Outcome tells the scheduler what follows a resolution step.
type Outcome int

const (
	// OutcomeNextCard: more turn-order entries remain in this batch.
	OutcomeNextCard Outcome = iota
	// OutcomeAwaitRow: a human must pick a row; nothing was applied.
	OutcomeAwaitRow
	// OutcomeNextTurn: batch done, hands remain, back to CHOOSING.
	OutcomeNextTurn
	// OutcomeRoundOver: hands empty, nobody at the threshold yet.
	OutcomeRoundOver
	// OutcomeGameOver: hands empty and someone reached WinningScore.
	OutcomeGameOver
)

// Resolution reports one applied (or suspended) turn-order entry.
type Resolution struct {
	PlayerID   string
	Card       Card
	RowIndex   int
	Penalty    int
	RowCleared bool
	Outcome    Outcome
}

// ResolveNext applies the next turn-order entry. A card that fits no
// row suspends into CHOOSING_ROW for humans; bots take the cheapest
// row on the spot.
func (g *Game) ResolveNext() (*Resolution, error) {
	if g.Phase != PhaseResolving {
		return nil, fmt.Errorf("%w: not resolving", ErrInvalidMove)
	}
	if g.ResolvingIndex >= len(g.TurnOrder) {
		return nil, fmt.Errorf("%w: batch already resolved", ErrInvalidMove)
	}
	entry := g.TurnOrder[g.ResolvingIndex]
	p := g.player(entry.PlayerID)

	row, ok := g.targetRow(entry.Card)
	if !ok {
		if p != nil && !p.IsBot {
			g.Phase = PhaseChoosingRow
			return &Resolution{PlayerID: entry.PlayerID, Card: entry.Card, RowIndex: -1, Outcome: OutcomeAwaitRow}, nil
		}
		row = CheapestRow(g.Rows)
		return g.takeRow(entry, row), nil
	}

	if len(g.Rows[row]) >= MaxRowLength {
		return g.takeRow(entry, row), nil
	}

	g.Rows[row] = append(g.Rows[row], entry.Card)
	res := &Resolution{PlayerID: entry.PlayerID, Card: entry.Card, RowIndex: row}
	g.consume(entry.PlayerID)
	res.Outcome = g.advance()
	return res, nil
}

// ChooseRow resumes a suspended resolution: the owning human absorbs
// the chosen row as a penalty and the batch continues.
func (g *Game) ChooseRow(playerID string, rowIndex int) (*Resolution, error) {
	if g.Phase != PhaseChoosingRow {
		return nil, fmt.Errorf("%w: no row choice pending", ErrInvalidMove)
	}
	entry := g.TurnOrder[g.ResolvingIndex]
	if entry.PlayerID != playerID {
		return nil, fmt.Errorf("%w: row choice belongs to %s", ErrInvalidMove, entry.PlayerID)
	}
	if rowIndex < 0 || rowIndex >= NumRows {
		return nil, fmt.Errorf("%w: row %d out of range", ErrInvalidMove, rowIndex)
	}
	g.Phase = PhaseResolving
	return g.takeRow(entry, rowIndex), nil
}

// takeRow clears a row into the acting player's score, restarts it
// with the played card, and advances the batch.
func (g *Game) takeRow(entry PlayedCard, row int) *Resolution {
	res := &Resolution{
		PlayerID:   entry.PlayerID,
		Card:       entry.Card,
		RowIndex:   row,
		Penalty:    g.applyTake(entry, row),
		RowCleared: true,
	}
	g.consume(entry.PlayerID)
	res.Outcome = g.advance()
	return res
}

// applyTake replaces a row with the played card and charges its bulls
// to the acting player.
func (g *Game) applyTake(entry PlayedCard, row int) int {
	penalty := RowBulls(g.Rows[row])
	g.Rows[row] = []Card{entry.Card}
	if p := g.player(entry.PlayerID); p != nil {
		p.Score += penalty
	}
	return penalty
}

// consume clears the selection whose entry just resolved.
func (g *Game) consume(playerID string) {
	if p := g.player(playerID); p != nil {
		p.Selected = nil
	}
	g.ResolvingIndex++
}

// advance evaluates what comes after a resolved entry and moves the
// phase accordingly.
func (g *Game) advance() Outcome {
	if g.ResolvingIndex < len(g.TurnOrder) {
		return OutcomeNextCard
	}
	if g.handsEmpty() {
		if g.anyAtThreshold() {
			g.Phase = PhaseGameOver
			return OutcomeGameOver
		}
		g.Phase = PhaseBetweenRounds
		return OutcomeRoundOver
	}
	for _, p := range g.Players {
		p.Selected = nil
	}
	g.TurnOrder = nil
	g.ResolvingIndex = 0
	g.Phase = PhaseChoosing
	return OutcomeNextTurn
}

func (g *Game) handsEmpty() bool {
	for _, p := range g.Players {
		if len(p.Hand) > 0 {
			return false
		}
	}
	return true
}

func (g *Game) anyAtThreshold() bool {
	for _, p := range g.Players {
		if p.Score >= WinningScore {
			return true
		}
	}
	return false
}

// targetRow picks the row whose last card is closest below the played
// value; ties break toward the lowest index. ok is false when the card
// is lower than every row's last card.
func (g *Game) targetRow(card Card) (int, bool) {
	best, bestGap := -1, 0
	for i, row := range g.Rows {
		last := row[len(row)-1].Value
		if card.Value <= last {
			continue
		}
		gap := card.Value - last
		if best == -1 || gap < bestGap {
			best, bestGap = i, gap
		}
	}
	return best, best != -1
}

// RemovePlayer drops a participant mid-game. A pending CHOOSING_ROW
// owned by the leaver auto-resolves with the cheapest row so the batch
// never stalls; their unresolved turn-order entries are discarded.
// The returned Resolution (if any) describes that forced step, and
// allIn reports that the removal completed a CHOOSING phase.
func (g *Game) RemovePlayer(playerID string) (res *Resolution, allIn bool) {
	idx := slices.IndexFunc(g.Players, func(p *Player) bool { return p.ID == playerID })
	if idx < 0 {
		return nil, false
	}

	if g.Phase == PhaseChoosingRow && g.TurnOrder[g.ResolvingIndex].PlayerID == playerID {
		entry := g.TurnOrder[g.ResolvingIndex]
		row := CheapestRow(g.Rows)
		penalty := g.applyTake(entry, row)
		g.ResolvingIndex++
		g.Phase = PhaseResolving
		res = &Resolution{PlayerID: playerID, Card: entry.Card, RowIndex: row, Penalty: penalty, RowCleared: true}
	}

	g.Players = slices.Delete(g.Players, idx, idx+1)

	// Drop the leaver's entries that have not resolved yet.
	if len(g.TurnOrder) > 0 {
		kept := slices.Clone(g.TurnOrder[:g.ResolvingIndex])
		for _, e := range g.TurnOrder[g.ResolvingIndex:] {
			if e.PlayerID != playerID {
				kept = append(kept, e)
			}
		}
		g.TurnOrder = kept
	}

	if g.Phase == PhaseResolving && g.ResolvingIndex >= len(g.TurnOrder) {
		outcome := g.advance()
		if res == nil {
			res = &Resolution{PlayerID: playerID, RowIndex: -1, Outcome: outcome}
		} else {
			res.Outcome = outcome
		}
	} else if res != nil {
		res.Outcome = OutcomeNextCard
	}

	if g.Phase == PhaseChoosing && g.allSelected() {
		g.Phase = PhaseRevealing
		allIn = true
	}
	return res, allIn
}

// ScoreEntry is one line of the final ranking.
type ScoreEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

// FinalScores ranks players ascending by score; lowest wins.
func (g *Game) FinalScores() []ScoreEntry {
	out := make([]ScoreEntry, 0, len(g.Players))
	for _, p := range g.Players {
		out = append(out, ScoreEntry{PlayerID: p.ID, Name: p.Name, Score: p.Score})
	}
	slices.SortStableFunc(out, func(a, b ScoreEntry) int { return a.Score - b.Score })
	return out
}
