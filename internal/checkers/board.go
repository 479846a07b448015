package checkers

// Player identifies a side of the board.
type Player uint8

const (
	NoPlayer Player = iota
	// South starts on rows 5-7 and moves toward row 0. In solo games this is
	// the human side.
	South
	// North starts on rows 0-2 and moves toward row 7. In solo games this is
	// the computer side.
	North
)

func (p Player) Opponent() Player {
	switch p {
	case South:
		return North
	case North:
		return South
	default:
		return NoPlayer
	}
}

func (p Player) String() string {
	switch p {
	case South:
		return "south"
	case North:
		return "north"
	default:
		return ""
	}
}

// Piece occupies a single dark square. The zero value is an empty cell.
// Identity is an opaque display reference (the garden app assigns an emoji
// per player at setup); it never affects rules.
type Piece struct {
	Owner    Player `json:"owner"`
	King     bool   `json:"king,omitempty"`
	Identity string `json:"identity,omitempty"`
}

func (p Piece) Empty() bool { return p.Owner == NoPlayer }

// BoardCells is the fixed cell count of the 8x8 grid, row-major.
const BoardCells = 64

const boardSize = 8

// Board is a row-major 8x8 grid. Index 0 is the north-west corner.
type Board [BoardCells]Piece

func RowOf(idx int) int          { return idx / boardSize }
func ColOf(idx int) int          { return idx % boardSize }
func IndexAt(row, col int) int   { return row*boardSize + col }
func inBounds(row, col int) bool { return row >= 0 && row < boardSize && col >= 0 && col < boardSize }

// DarkSquare reports whether idx is a playable cell: (row+col) odd.
func DarkSquare(idx int) bool { return (RowOf(idx)+ColOf(idx))%2 == 1 }

// NewBoard places twelve pieces per side on the dark squares of each side's
// three home rows.
func NewBoard(southIdentity, northIdentity string) Board {
	var b Board
	for idx := 0; idx < BoardCells; idx++ {
		if !DarkSquare(idx) {
			continue
		}
		switch row := RowOf(idx); {
		case row < 3:
			b[idx] = Piece{Owner: North, Identity: northIdentity}
		case row > 4:
			b[idx] = Piece{Owner: South, Identity: southIdentity}
		}
	}
	return b
}

// Count returns the number of pieces owned by p.
func (b *Board) Count(p Player) int {
	n := 0
	for idx := range b {
		if b[idx].Owner == p {
			n++
		}
	}
	return n
}

// promotionRow is the opponent's back rank for p.
func promotionRow(p Player) int {
	if p == South {
		return 0
	}
	return boardSize - 1
}

// Move executes a single hop for the piece at from after validating that to
// is one of its legal destinations. It reports whether a piece was captured,
// whether the mover was promoted, and whether the move was legal at all.
// Callers that need turn and continuation tracking should use Session instead.
func (b *Board) Move(from, to int) (captured bool, promoted bool, ok bool) {
	if from < 0 || from >= BoardCells || to < 0 || to >= BoardCells {
		return false, false, false
	}
	legal := false
	for _, dst := range b.Destinations(from) {
		if dst == to {
			legal = true
			break
		}
	}
	if !legal {
		return false, false, false
	}
	eff := b.applyMove(from, to)
	return eff.captured >= 0, eff.promoted, true
}

// moveEffect describes what a single applied hop did to the board.
type moveEffect struct {
	captured int // index of the removed opposing piece, -1 for a simple move
	promoted bool
}

// applyMove relocates the piece at from to to, removing a jumped piece and
// promoting on the back rank. Legality is the caller's responsibility; the
// generators in movegen.go define the legal destination sets.
func (b *Board) applyMove(from, to int) moveEffect {
	eff := moveEffect{captured: -1}
	piece := b[from]
	b[from] = Piece{}

	if RowOf(to)-RowOf(from) == 2 || RowOf(from)-RowOf(to) == 2 {
		mid := (from + to) / 2
		b[mid] = Piece{}
		eff.captured = mid
	}

	if !piece.King && RowOf(to) == promotionRow(piece.Owner) {
		piece.King = true
		eff.promoted = true
	}
	b[to] = piece
	return eff
}
