package checkers

import (
	"fmt"
	"strings"
)

// SquareName renders a board index as a chess-style coordinate: files a-h
// west to east, ranks 8-1 north to south (index 0 is a8).
func SquareName(idx int) string {
	if idx < 0 || idx >= BoardCells {
		return ""
	}
	return fmt.Sprintf("%c%d", 'a'+ColOf(idx), boardSize-RowOf(idx))
}

// ParseSquare converts a coordinate like "b6" back to a board index.
func ParseSquare(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return 0, fmt.Errorf("invalid square %q", s)
	}
	col := int(s[0] - 'a')
	rank := int(s[1] - '0')
	if col < 0 || col >= boardSize || rank < 1 || rank > boardSize {
		return 0, fmt.Errorf("invalid square %q", s)
	}
	return IndexAt(boardSize-rank, col), nil
}

// MoveName renders an applied hop: "b6-a5" for a step, "b6xd4" for a jump.
func MoveName(from, to int, capture bool) string {
	sep := "-"
	if capture {
		sep = "x"
	}
	return SquareName(from) + sep + SquareName(to)
}
