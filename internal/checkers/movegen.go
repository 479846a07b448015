package checkers

// Direction deltas are enumerated in a fixed order so generation is a pure
// function of the board: identical inputs always yield identical slices.
var (
	southDirs = [2][2]int{{-1, -1}, {-1, 1}}
	northDirs = [2][2]int{{1, -1}, {1, 1}}
	kingDirs  = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
)

func directions(p Piece) [][2]int {
	if p.King {
		return kingDirs[:]
	}
	if p.Owner == South {
		return southDirs[:]
	}
	return northDirs[:]
}

// Destinations enumerates every legal destination for the piece at idx:
// adjacent diagonal steps onto empty cells and single-jump capture landings,
// merged into one list. An empty cell or out-of-range index yields nil.
func (b *Board) Destinations(idx int) []int {
	piece := b[idx]
	if piece.Empty() {
		return nil
	}
	var out []int
	row, col := RowOf(idx), ColOf(idx)
	for _, d := range directions(piece) {
		sr, sc := row+d[0], col+d[1]
		if !inBounds(sr, sc) {
			continue
		}
		step := IndexAt(sr, sc)
		if b[step].Empty() {
			out = append(out, step)
			continue
		}
		// Occupied adjacent cell: a jump is legal only over an opposing piece
		// into an empty cell beyond.
		if b[step].Owner == piece.Owner {
			continue
		}
		jr, jc := row+2*d[0], col+2*d[1]
		if inBounds(jr, jc) && b[IndexAt(jr, jc)].Empty() {
			out = append(out, IndexAt(jr, jc))
		}
	}
	return out
}

// Captures enumerates only the capture landings for the piece at idx, in the
// same direction order as Destinations. Used for forced-continuation checks
// and capture-preferring opponent play.
func (b *Board) Captures(idx int) []int {
	piece := b[idx]
	if piece.Empty() {
		return nil
	}
	var out []int
	row, col := RowOf(idx), ColOf(idx)
	for _, d := range directions(piece) {
		mr, mc := row+d[0], col+d[1]
		jr, jc := row+2*d[0], col+2*d[1]
		if !inBounds(jr, jc) {
			continue
		}
		mid := b[IndexAt(mr, mc)]
		if mid.Empty() || mid.Owner == piece.Owner {
			continue
		}
		if b[IndexAt(jr, jc)].Empty() {
			out = append(out, IndexAt(jr, jc))
		}
	}
	return out
}

// Movers returns, in ascending index order, every piece of p that has at
// least one legal destination.
func (b *Board) Movers(p Player) []int {
	var out []int
	for idx := range b {
		if b[idx].Owner == p && len(b.Destinations(idx)) > 0 {
			out = append(out, idx)
		}
	}
	return out
}

// HasAnyMove reports whether p has any piece with any legal destination.
// A side with none has lost.
func (b *Board) HasAnyMove(p Player) bool {
	for idx := range b {
		if b[idx].Owner == p && len(b.Destinations(idx)) > 0 {
			return true
		}
	}
	return false
}
