package game

// ClientState is the per-player rendering of the table. Only the
// recipient's own hand is populated; everyone else's hand is reduced
// to a count. All other fields are identical across recipients.
type ClientState struct {
	Phase          Phase           `json:"phase"`
	Round          int             `json:"round"`
	Rows           [NumRows][]Card `json:"rows"`
	Players        []PlayerView    `json:"players"`
	Hand           []Card          `json:"hand"`
	TurnOrder      []PlayedCard    `json:"turnOrder"`
	ResolvingIndex int             `json:"resolvingIndex"`
}

type PlayerView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsBot     bool   `json:"isBot"`
	Score     int    `json:"score"`
	HandCount int    `json:"handCount"`
	HasPlayed bool   `json:"hasPlayed"`
	Selected  *Card  `json:"selectedCard"` // nil until the batch is revealed
}

// GetClientState builds the partitioned view for one player. During
// CHOOSING only the presence of a selection leaks; selected cards
// become public to everyone once the phase moves past it.
func (g *Game) GetClientState(playerID string) *ClientState {
	revealed := g.Phase != PhaseChoosing

	state := &ClientState{
		Phase:          g.Phase,
		Round:          g.Round,
		Rows:           g.Rows,
		ResolvingIndex: g.ResolvingIndex,
	}
	if revealed {
		state.TurnOrder = g.TurnOrder
	}

	for _, p := range g.Players {
		view := PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			IsBot:     p.IsBot,
			Score:     p.Score,
			HandCount: len(p.Hand),
			HasPlayed: p.Selected != nil,
		}
		if revealed {
			view.Selected = p.Selected
		}
		if p.ID == playerID {
			state.Hand = p.Hand
		}
		state.Players = append(state.Players, view)
	}
	return state
}
