package checkers

// Phase is the turn state machine position within the human's turn.
type Phase uint8

const (
	AwaitingSelection Phase = iota
	PieceSelected
	ForcedContinuation
	TurnResolved
)

func (p Phase) String() string {
	switch p {
	case AwaitingSelection:
		return "awaiting_selection"
	case PieceSelected:
		return "piece_selected"
	case ForcedContinuation:
		return "forced_continuation"
	case TurnResolved:
		return "turn_resolved"
	default:
		return "unknown"
	}
}

// Score tallies captures per side.
type Score struct {
	South int `json:"south"`
	North int `json:"north"`
}

func (s Score) Of(p Player) int {
	switch p {
	case South:
		return s.South
	case North:
		return s.North
	default:
		return 0
	}
}

type EventKind uint8

const (
	EventCapture EventKind = iota + 1
	EventPromotion
	EventTurnPassed
	EventGameOver
)

// Event is raised by applied commands for the surrounding app to consume
// (stat counters, chat messages, animations). The engine itself never
// formats or persists them.
type Event struct {
	Kind    EventKind `json:"kind"`
	By      Player    `json:"by,omitempty"`      // acting player
	Against Player    `json:"against,omitempty"` // captured player
	Square  int       `json:"square,omitempty"`  // landing or promotion square
	Winner  Player    `json:"winner,omitempty"`
	Score   Score     `json:"score"`
}

// Session owns one game between South (human) and North (computer): board
// snapshot, turn, selection and forced-continuation state, capture scores,
// terminal status. All interaction state lives here rather than in the UI so
// "selected piece", "valid destinations" and "forced piece" can never drift
// apart.
type Session struct {
	Board    Board  `json:"board"`
	Turn     Player `json:"turn"`
	Phase    Phase  `json:"phase"`
	Selected int    `json:"selected"` // -1 when nothing is selected
	Forced   int    `json:"forced"`   // piece pinned mid capture chain, -1 otherwise
	Score    Score  `json:"score"`
	Winner   Player `json:"winner,omitempty"`
	Over     bool   `json:"over,omitempty"`
}

// NewSession builds a fresh board with the given visual identities and gives
// South the first turn.
func NewSession(southIdentity, northIdentity string) *Session {
	return &Session{
		Board:    NewBoard(southIdentity, northIdentity),
		Turn:     South,
		Phase:    AwaitingSelection,
		Selected: -1,
		Forced:   -1,
	}
}

// Destinations returns the legal destinations of the piece at idx for
// highlighting, honoring the current eligibility window: only the side to
// move, and only the pinned piece (captures only) during forced continuation.
func (s *Session) Destinations(idx int) []int {
	if s.Over || idx < 0 || idx >= BoardCells {
		return nil
	}
	if s.Board[idx].Owner != s.Turn {
		return nil
	}
	if s.Forced >= 0 {
		if idx != s.Forced {
			return nil
		}
		return s.Board.Captures(idx)
	}
	return s.Board.Destinations(idx)
}

// Select picks a piece for the human. Ineligible selections (not South's
// turn, not South's piece, piece without moves, or a piece other than the
// forced-continuation one) are silently rejected; tapping a non-piece clears
// any existing selection without consuming the turn.
func (s *Session) Select(idx int) bool {
	if s.Over || s.Turn != South || idx < 0 || idx >= BoardCells {
		return false
	}
	if s.Forced >= 0 && idx != s.Forced {
		return false
	}
	if s.Board[idx].Owner == South && len(s.Destinations(idx)) > 0 {
		s.Selected = idx
		s.Phase = PieceSelected
		return true
	}
	if s.Forced < 0 {
		s.Selected = -1
		s.Phase = AwaitingSelection
	}
	return false
}

// Apply executes the human command (from, to). Illegal moves and moves
// outside the eligibility window are silently rejected: no state changes and
// no events. A legal move always yields at least one event.
func (s *Session) Apply(from, to int) []Event {
	if s.Over || s.Turn != South {
		return nil
	}
	if from < 0 || from >= BoardCells || to < 0 || to >= BoardCells {
		return nil
	}
	if s.Board[from].Owner != South {
		return nil
	}
	if s.Forced >= 0 && from != s.Forced {
		return nil
	}
	legal := s.Board.Destinations(from)
	if s.Forced >= 0 {
		legal = s.Board.Captures(from)
	}
	if !contains(legal, to) {
		return nil
	}
	return s.resolve(South, from, to)
}

// PlayOpponent runs the computer's turn using the given policy: first the
// no-moves loss check, then exactly one hop (the computer does not chain
// captures), then the terminal checks for the human side about to move.
func (s *Session) PlayOpponent(policy *Policy) []Event {
	if s.Over || s.Turn != North || policy == nil {
		return nil
	}
	if !s.Board.HasAnyMove(North) {
		return s.finish(South)
	}
	from, to, ok := policy.ChooseMove(&s.Board, North)
	if !ok {
		return s.finish(South)
	}
	return s.resolve(North, from, to)
}

// ApplyOpponent executes a pre-chosen computer hop, for callers that pick the
// move themselves via Policy.ChooseMove. Illegal input yields no events.
func (s *Session) ApplyOpponent(from, to int) []Event {
	if s.Over || s.Turn != North {
		return nil
	}
	if from < 0 || from >= BoardCells || to < 0 || to >= BoardCells {
		return nil
	}
	if s.Board[from].Owner != North {
		return nil
	}
	if !contains(s.Board.Destinations(from), to) {
		return nil
	}
	return s.resolve(North, from, to)
}

// resolve applies the validated hop for mover and advances the state machine.
func (s *Session) resolve(mover Player, from, to int) []Event {
	eff := s.Board.applyMove(from, to)
	var events []Event

	if eff.captured >= 0 {
		if mover == South {
			s.Score.South++
		} else {
			s.Score.North++
		}
		events = append(events, Event{
			Kind:    EventCapture,
			By:      mover,
			Against: mover.Opponent(),
			Square:  to,
			Score:   s.Score,
		})
	}
	if eff.promoted {
		events = append(events, Event{Kind: EventPromotion, By: mover, Square: to, Score: s.Score})
	}

	// A capturing piece must keep capturing if able; the destination set is
	// narrowed to that piece's further jumps and the turn does not pass.
	// Applies to the human path only: the computer takes one hop per cycle.
	if mover == South && eff.captured >= 0 && len(s.Board.Captures(to)) > 0 {
		s.Phase = ForcedContinuation
		s.Forced = to
		s.Selected = to
		return events
	}

	s.Forced = -1
	s.Selected = -1
	s.Phase = TurnResolved

	next := mover.Opponent()
	if s.Board.Count(next) == 0 || !s.Board.HasAnyMove(next) {
		return append(events, s.finish(mover)...)
	}

	s.Turn = next
	s.Phase = AwaitingSelection
	if next == North {
		events = append(events, Event{Kind: EventTurnPassed, By: South, Score: s.Score})
	}
	return events
}

// Resign concedes the game for p. No-op on a finished game.
func (s *Session) Resign(p Player) []Event {
	if s.Over || p == NoPlayer {
		return nil
	}
	return s.finish(p.Opponent())
}

func (s *Session) finish(winner Player) []Event {
	s.Over = true
	s.Winner = winner
	s.Phase = TurnResolved
	s.Forced = -1
	s.Selected = -1
	return []Event{{Kind: EventGameOver, Winner: winner, Score: s.Score}}
}

func contains(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
