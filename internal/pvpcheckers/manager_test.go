package pvpcheckers

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/mossbit/garden-checkers-bot/internal/checkers"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(func() { mr.Close() })
	url := fmt.Sprintf("redis://%s/0", mr.Addr())
	m, err := NewManager(url)
	if err != nil {
		t.Fatalf("pvpcheckers.NewManager: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// injectGame stores a crafted game and its participant index directly.
func injectGame(t *testing.T, m *Manager, g *Game) {
	t.Helper()
	ctx := context.Background()
	if err := m.save(ctx, g); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := m.indexParticipants(ctx, g.ID, g.RedID, g.BlackID); err != nil {
		t.Fatalf("indexParticipants: %v", err)
	}
}

func craftedGame(id string, board checkers.Board, turn Side) *Game {
	return &Game{
		ID:        id,
		Board:     board,
		Turn:      turn,
		Forced:    -1,
		Moves:     []string{},
		Status:    StatusActive,
		RedID:     "u-red",
		RedName:   "Rose",
		BlackID:   "u-black",
		BlackName: "Bram",
		OriginRoom: "roomA", ResolveRoom: "roomA",
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
}

func TestCreateGameAssignsSides(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	g, err := m.CreateGameFromChallenge(ctx, "roomA", "roomB", "u1", "Ann", "u2", "Ben", "red")
	if err != nil {
		t.Fatalf("CreateGameFromChallenge: %v", err)
	}
	if g.RedID != "u1" || g.BlackID != "u2" {
		t.Fatalf("side choice red ignored: red=%s black=%s", g.RedID, g.BlackID)
	}
	if g.Turn != Red || g.Status != StatusActive || g.Forced != -1 {
		t.Fatalf("unexpected initial state: turn=%s status=%s forced=%d", g.Turn, g.Status, g.Forced)
	}
	if got := g.Board.Count(checkers.South); got != 12 {
		t.Fatalf("expected 12 red pieces, got %d", got)
	}

	g2, err := m.CreateGameFromChallenge(ctx, "roomA", "roomB", "u3", "Cam", "u4", "Dee", "black")
	if err != nil {
		t.Fatalf("CreateGameFromChallenge black: %v", err)
	}
	if g2.RedID != "u4" || g2.BlackID != "u3" {
		t.Fatalf("side choice black ignored: red=%s black=%s", g2.RedID, g2.BlackID)
	}
}

func TestPlayMoveAlternatesTurns(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	_, err := m.CreateGameFromChallenge(ctx, "roomA", "roomA", "u1", "Ann", "u2", "Ben", "red")
	if err != nil {
		t.Fatalf("CreateGameFromChallenge: %v", err)
	}

	// black cannot move first
	g1, txt, err := m.PlayMove(ctx, "u2", "b6 a5")
	if err != nil {
		t.Fatalf("PlayMove out of turn: %v", err)
	}
	if txt != "It's your opponent's turn." || len(g1.Moves) != 0 {
		t.Fatalf("expected turn rejection, got %q moves=%d", txt, len(g1.Moves))
	}

	g2, txt, err := m.PlayMove(ctx, "u1", "e3-d4")
	if err != nil {
		t.Fatalf("PlayMove red: %v", err)
	}
	if !strings.Contains(txt, "e3-d4") || len(g2.Moves) != 1 || g2.Turn != Black {
		t.Fatalf("red move not applied: txt=%q moves=%v turn=%s", txt, g2.Moves, g2.Turn)
	}

	g3, txt, err := m.PlayMove(ctx, "u2", "b6a5")
	if err != nil {
		t.Fatalf("PlayMove black: %v", err)
	}
	if !strings.Contains(txt, "b6-a5") || len(g3.Moves) != 2 || g3.Turn != Red {
		t.Fatalf("black move not applied: txt=%q moves=%v turn=%s", txt, g3.Moves, g3.Turn)
	}
}

func TestPlayMoveRejectsIllegalInput(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	if _, err := m.CreateGameFromChallenge(ctx, "roomA", "roomA", "u1", "Ann", "u2", "Ben", "red"); err != nil {
		t.Fatalf("CreateGameFromChallenge: %v", err)
	}

	for _, mv := range []string{"", "garbage", "e3", "e3 e9", "e3 c5", "b6 a5"} {
		g, txt, err := m.PlayMove(ctx, "u1", mv)
		if err != nil {
			t.Fatalf("PlayMove(%q) returned error: %v", mv, err)
		}
		if txt == "" {
			t.Fatalf("PlayMove(%q): expected user-facing rejection text", mv)
		}
		if len(g.Moves) != 0 {
			t.Fatalf("PlayMove(%q) mutated the game: %v", mv, g.Moves)
		}
	}
}

func TestForcedCaptureChainKeepsTurn(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	var b checkers.Board
	b[35] = checkers.Piece{Owner: checkers.South} // d4
	b[26] = checkers.Piece{Owner: checkers.North} // c5, first victim
	b[10] = checkers.Piece{Owner: checkers.North} // c7, second victim
	b[21] = checkers.Piece{Owner: checkers.North} // f6, survives
	injectGame(t, m, craftedGame("g-chain", b, Red))

	g, txt, err := m.PlayMove(ctx, "u-red", "d4xb6")
	if err != nil {
		t.Fatalf("PlayMove capture: %v", err)
	}
	if !strings.Contains(txt, "d4xb6") {
		t.Fatalf("unexpected text %q", txt)
	}
	if g.Turn != Red || g.Forced != 17 {
		t.Fatalf("capture chain should pin the piece: turn=%s forced=%d", g.Turn, g.Forced)
	}
	if g.RedCaptures != 1 || g.Board[26].Owner != checkers.NoPlayer {
		t.Fatalf("victim not removed: captures=%d owner=%v", g.RedCaptures, g.Board[26].Owner)
	}

	// the pinned piece may only capture
	_, txt, err = m.PlayMove(ctx, "u-red", "b6-a5")
	if err != nil {
		t.Fatalf("PlayMove during chain: %v", err)
	}
	if !strings.Contains(txt, "capture") {
		t.Fatalf("expected continuation hint, got %q", txt)
	}

	g, _, err = m.PlayMove(ctx, "u-red", "b6xd8")
	if err != nil {
		t.Fatalf("PlayMove chain end: %v", err)
	}
	if g.Forced != -1 || g.Turn != Black {
		t.Fatalf("chain should end and pass the turn: forced=%d turn=%s", g.Forced, g.Turn)
	}
	if g.RedCaptures != 2 || !g.Board[3].King {
		t.Fatalf("expected second capture and promotion on d8: captures=%d king=%v", g.RedCaptures, g.Board[3].King)
	}
}

func TestCapturingLastPieceFinishesGame(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	var b checkers.Board
	b[35] = checkers.Piece{Owner: checkers.South} // d4
	b[26] = checkers.Piece{Owner: checkers.North} // c5, last black piece
	injectGame(t, m, craftedGame("g-final", b, Red))

	g, _, err := m.PlayMove(ctx, "u-red", "d4 b6")
	if err != nil {
		t.Fatalf("PlayMove: %v", err)
	}
	if g.Status != StatusFinished || g.Winner != "u-red" || g.Outcome != "red" {
		t.Fatalf("expected red win: status=%s winner=%s outcome=%s", g.Status, g.Winner, g.Outcome)
	}

	// finished game no longer resolves as active
	again, err := m.GetActiveGameByUser(ctx, "u-red")
	if err != nil {
		t.Fatalf("GetActiveGameByUser: %v", err)
	}
	if again != nil {
		t.Fatalf("finished game still reported active")
	}
}

func TestBlockedOpponentFinishesGame(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	// black's lone piece at h6 (23) gets sealed when red steps into g5 (30);
	// the supporting piece at f4 (37) covers the jump landing.
	var b checkers.Board
	b[23] = checkers.Piece{Owner: checkers.North}
	b[39] = checkers.Piece{Owner: checkers.South} // h4
	b[37] = checkers.Piece{Owner: checkers.South} // f4
	injectGame(t, m, craftedGame("g-blocked", b, Red))

	g, _, err := m.PlayMove(ctx, "u-red", "h4-g5")
	if err != nil {
		t.Fatalf("PlayMove: %v", err)
	}
	if g.Status != StatusFinished || g.Winner != "u-red" {
		t.Fatalf("expected win by blocking: status=%s winner=%s", g.Status, g.Winner)
	}
	if g.Board.Count(checkers.North) != 1 {
		t.Fatalf("blocked piece should survive on the board")
	}
}

func TestResignByRoom(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	g, err := m.CreateGameFromChallenge(ctx, "roomA", "roomA", "u1", "Ann", "u2", "Ben", "red")
	if err != nil {
		t.Fatalf("CreateGameFromChallenge: %v", err)
	}

	if _, _, err := m.ResignByRoom(ctx, "u2", "otherRoom"); err != nil {
		t.Fatalf("ResignByRoom wrong room: %v", err)
	}
	if cur, _ := m.LoadGame(ctx, g.ID); cur.Status != StatusActive {
		t.Fatalf("resign in unrelated room should not touch the game")
	}

	res, _, err := m.ResignByRoom(ctx, "u2", "roomA")
	if err != nil {
		t.Fatalf("ResignByRoom: %v", err)
	}
	if res.Status != StatusResigned || res.Winner != "u1" || res.Outcome != "red" {
		t.Fatalf("unexpected resign result: status=%s winner=%s outcome=%s", res.Status, res.Winner, res.Outcome)
	}
}

func TestRoomScopedGamesStayApart(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	ga, err := m.CreateGameFromChallenge(ctx, "roomA", "roomA", "u1", "Ann", "u2", "Ben", "red")
	if err != nil {
		t.Fatalf("create roomA: %v", err)
	}
	gb, err := m.CreateGameFromChallenge(ctx, "roomB", "roomB", "u1", "Ann", "u3", "Cat", "red")
	if err != nil {
		t.Fatalf("create roomB: %v", err)
	}

	got, err := m.GetActiveGameByUserInRoom(ctx, "u1", "roomA")
	if err != nil || got == nil || got.ID != ga.ID {
		t.Fatalf("roomA lookup: got=%v err=%v", got, err)
	}

	g2, _, err := m.PlayMoveByRoom(ctx, "u1", "roomB", "e3-d4")
	if err != nil {
		t.Fatalf("PlayMoveByRoom: %v", err)
	}
	if g2.ID != gb.ID || len(g2.Moves) != 1 {
		t.Fatalf("move landed on wrong game: id=%s moves=%v", g2.ID, g2.Moves)
	}
	if cur, _ := m.LoadGame(ctx, ga.ID); len(cur.Moves) != 0 {
		t.Fatalf("roomA game was mutated by roomB move")
	}
}
