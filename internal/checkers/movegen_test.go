package checkers

import (
	"reflect"
	"testing"
)

func place(b *Board, idx int, owner Player, king bool) {
	b[idx] = Piece{Owner: owner, King: king}
}

func TestNewBoardLayout(t *testing.T) {
	b := NewBoard("S", "N")
	if got := b.Count(South); got != 12 {
		t.Fatalf("south pieces = %d, want 12", got)
	}
	if got := b.Count(North); got != 12 {
		t.Fatalf("north pieces = %d, want 12", got)
	}
	for idx := range b {
		if b[idx].Empty() {
			continue
		}
		if !DarkSquare(idx) {
			t.Fatalf("piece on light square %d", idx)
		}
		row := RowOf(idx)
		if b[idx].Owner == North && row > 2 {
			t.Fatalf("north piece outside home rows at %d", idx)
		}
		if b[idx].Owner == South && row < 5 {
			t.Fatalf("south piece outside home rows at %d", idx)
		}
		if b[idx].King {
			t.Fatalf("fresh board has a king at %d", idx)
		}
	}
	if b[IndexAt(2, 1)].Identity != "N" || b[IndexAt(5, 2)].Identity != "S" {
		t.Fatalf("identities not carried onto pieces")
	}
}

func TestSimpleMovesForwardOnly(t *testing.T) {
	var b Board
	place(&b, 44, South, false) // row 5, col 4
	got := b.Destinations(44)
	want := []int{35, 37}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("south destinations = %v, want %v", got, want)
	}
	for _, dst := range got {
		if RowOf(dst) != RowOf(44)-1 {
			t.Fatalf("non-king south move not one row toward row 0: %d", dst)
		}
	}

	var nb Board
	place(&nb, 19, North, false) // row 2, col 3
	for _, dst := range nb.Destinations(19) {
		if RowOf(dst) != RowOf(19)+1 {
			t.Fatalf("non-king north move not one row toward row 7: %d", dst)
		}
	}
}

// Scenario from the shipped game: lone south piece at 44, lone north piece at
// 26 (not adjacent) — two empty simple destinations and no captures.
func TestScenarioLonePieces(t *testing.T) {
	var b Board
	place(&b, 44, South, false)
	place(&b, 26, North, false)
	if got := b.Destinations(44); !reflect.DeepEqual(got, []int{35, 37}) {
		t.Fatalf("destinations = %v, want [35 37]", got)
	}
	if got := b.Captures(44); got != nil {
		t.Fatalf("captures = %v, want none", got)
	}
}

func TestCaptureRequiresOpposingMidpointAndEmptyLanding(t *testing.T) {
	var b Board
	place(&b, 52, South, false) // row 6, col 4
	place(&b, 43, North, false) // row 5, col 3
	if got := b.Captures(52); !reflect.DeepEqual(got, []int{34}) {
		t.Fatalf("captures = %v, want [34]", got)
	}

	// Blocked landing: no capture.
	place(&b, 34, North, false)
	if got := b.Captures(52); got != nil {
		t.Fatalf("captures over blocked landing = %v, want none", got)
	}

	// Own piece in the midpoint: no capture.
	var own Board
	place(&own, 52, South, false)
	place(&own, 43, South, false)
	if got := own.Captures(52); got != nil {
		t.Fatalf("captures over own piece = %v, want none", got)
	}

	// Empty midpoint: no capture (only the simple step remains).
	var empty Board
	place(&empty, 52, South, false)
	if got := empty.Captures(52); got != nil {
		t.Fatalf("captures with empty midpoint = %v, want none", got)
	}
}

func TestKingMovesAllFourDirections(t *testing.T) {
	var b Board
	place(&b, 35, South, true) // row 4, col 3
	got := b.Destinations(35)
	want := []int{26, 28, 42, 44}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("king destinations = %v, want %v", got, want)
	}
}

func TestDestinationsDeterministic(t *testing.T) {
	b := NewBoard("", "")
	first := b.Destinations(42)
	if len(first) == 0 {
		t.Fatalf("expected opening moves for the piece at 42")
	}
	for i := 0; i < 10; i++ {
		if got := b.Destinations(42); !reflect.DeepEqual(got, first) {
			t.Fatalf("generation not deterministic: %v vs %v", got, first)
		}
	}
}

func TestParityPreservedByLegalMoves(t *testing.T) {
	s := NewSession("", "")
	moves := [][2]int{{40, 33}, {33, 26}}
	for _, mv := range moves {
		if ev := s.Apply(mv[0], mv[1]); len(ev) == 0 {
			t.Fatalf("move %v rejected", mv)
		}
		for idx := range s.Board {
			if !s.Board[idx].Empty() && !DarkSquare(idx) {
				t.Fatalf("piece on light square %d after %v", idx, mv)
			}
		}
		// hand the turn back for the next scripted move
		s.Turn = South
	}
}

func TestHasAnyMoveBlockedSide(t *testing.T) {
	var b Board
	// Lone north piece in the corner: the only forward diagonal is held by an
	// opposing piece and the landing beyond it is blocked.
	place(&b, 7, North, false)  // row 0, col 7
	place(&b, 14, South, false) // row 1, col 6
	place(&b, 21, South, false) // row 2, col 5
	if b.HasAnyMove(North) {
		t.Fatalf("expected north to be fully blocked")
	}
	if !b.HasAnyMove(South) {
		t.Fatalf("expected south to retain moves")
	}
}
