package pvpcheckers

import (
	"time"

	"github.com/mossbit/garden-checkers-bot/internal/checkers"
)

// Side identifies a player-versus-player seat. Red maps to the south half of
// the board and moves first.
type Side string

const (
	Red   Side = "red"
	Black Side = "black"
)

func (s Side) Player() checkers.Player {
	switch s {
	case Red:
		return checkers.South
	case Black:
		return checkers.North
	default:
		return checkers.NoPlayer
	}
}

func (s Side) Opposite() Side {
	if s == Red {
		return Black
	}
	return Red
}

// Status represents a PvP game lifecycle state.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusFinished Status = "FINISHED"
	StatusResigned Status = "RESIGNED"
	StatusAborted  Status = "ABORTED"
)

// Game is the persisted state of a PvP match. The board snapshot is stored
// directly; there is no compact position notation to reconstruct from.
type Game struct {
	ID            string         `json:"id"`
	Board         checkers.Board `json:"board"`
	Turn          Side           `json:"turn"`
	Forced        int            `json:"forced"` // piece pinned mid capture chain, -1 otherwise
	Moves         []string       `json:"moves"`
	RedCaptures   int            `json:"red_captures"`
	BlackCaptures int            `json:"black_captures"`
	Status        Status         `json:"status"`
	RedID         string         `json:"red_id"`
	RedName       string         `json:"red_name"`
	BlackID       string         `json:"black_id"`
	BlackName     string         `json:"black_name"`
	OriginRoom    string         `json:"origin_room"`
	ResolveRoom   string         `json:"resolve_room"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Winner        string         `json:"winner,omitempty"`
	Outcome       string         `json:"outcome,omitempty"`
}

func (g *Game) sideOfUser(userID string) Side {
	switch userID {
	case g.RedID:
		return Red
	case g.BlackID:
		return Black
	default:
		return ""
	}
}

func (g *Game) nameOfSide(s Side) string {
	if s == Black {
		return g.BlackName
	}
	return g.RedName
}

// FinishMethod reports how a decided game ended: resignation, elimination,
// or blocked. Empty while the game is still running.
func (g *Game) FinishMethod() string {
	switch g.Status {
	case StatusResigned:
		return "resignation"
	case StatusFinished:
		// Turn stays on the winner when the game ends, so the loser is the
		// opposite seat.
		if g.Board.Count(g.Turn.Opposite().Player()) > 0 {
			return "blocked"
		}
		return "elimination"
	}
	return ""
}

// NameOfUser returns the display name of a participant, or the raw ID for
// anyone else.
func (g *Game) NameOfUser(userID string) string {
	if side := g.sideOfUser(userID); side != "" {
		return g.nameOfSide(side)
	}
	return userID
}

// WinnerName returns the display name of the winning player, empty while the
// game is still running.
func (g *Game) WinnerName() string {
	switch g.Winner {
	case g.RedID:
		return g.RedName
	case g.BlackID:
		return g.BlackName
	}
	return ""
}
