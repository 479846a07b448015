package pvpcheckers

import (
	"context"
	"fmt"

	"github.com/mossbit/garden-checkers-bot/internal/checkers"
	svccheckers "github.com/mossbit/garden-checkers-bot/internal/service/checkers"
	"github.com/mossbit/garden-checkers-bot/pkg/checkersdto"
)

// ToDTO renders the board through the shared renderer and returns a DTO
// SessionState for the presenter.
func (m *Manager) ToDTO(ctx context.Context, g *Game) (*checkersdto.SessionState, error) {
	if m == nil || g == nil {
		return nil, nil
	}
	opts := svccheckers.RenderOptions{
		HUDHeader: fmt.Sprintf("%s vs %s", g.RedName, g.BlackName),
		HUDTurn:   hudTurn(g),
		Score:     checkers.Score{South: g.RedCaptures, North: g.BlackCaptures},
		Highlight: lastHighlight(g),
	}
	if g.Forced >= 0 {
		opts.Marks = []int{g.Forced}
	}
	board := g.Board
	png, err := m.renderer.RenderPNG(ctx, &board, opts)
	if err != nil {
		return nil, err
	}
	state := &checkersdto.SessionState{
		SessionUUID: g.ID,
		Moves:       append([]string(nil), g.Moves...),
		BoardImage:  png,
		MoveCount:   len(g.Moves),
		Score:       checkersdto.Score{Player: g.RedCaptures, Bot: g.BlackCaptures},
		Turn:        string(g.Turn),
		Outcome:     g.Outcome,
	}
	return state, nil
}

func hudTurn(g *Game) string {
	turnNumber := len(g.Moves)/2 + 1
	name := g.nameOfSide(g.Turn)
	if g.Forced >= 0 {
		return fmt.Sprintf("%s must capture from %s", name, checkers.SquareName(g.Forced))
	}
	return fmt.Sprintf("%s to move (turn %d)", name, turnNumber)
}

func lastHighlight(g *Game) *svccheckers.MoveHighlight {
	from, to, ok := splitMove(lastMove(g))
	if !ok {
		return nil
	}
	return &svccheckers.MoveHighlight{From: from, To: to}
}
