package checkers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	engine "github.com/mossbit/garden-checkers-bot/internal/checkers"
	"github.com/mossbit/garden-checkers-bot/internal/service/cache"
)

type stubRenderer struct{}

func (stubRenderer) RenderPNG(ctx context.Context, board *engine.Board, opts RenderOptions) ([]byte, error) {
	return []byte("png"), nil
}

func newTestService(t *testing.T, cfg Config) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cacheSvc := cache.NewCacheServiceWithClient(client, nil)

	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = time.Hour
	}
	svc, err := NewService(cacheSvc, NewMemoryRepository(), stubRenderer{}, cfg, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func testMeta() SessionMeta {
	return SessionMeta{SessionID: "room-1:player-1", Room: "garden", Sender: "Fern"}
}

func TestStartSessionTwiceReportsInProgress(t *testing.T) {
	svc := newTestService(t, Config{})
	ctx := context.Background()
	meta := testMeta()

	state, err := svc.StartSession(ctx, meta, "easy")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if state.Difficulty != "easy" || state.Turn != engine.South || state.Over {
		t.Fatalf("fresh state = %+v", state)
	}
	if len(state.BoardImage) == 0 {
		t.Fatalf("board image not attached")
	}

	again, err := svc.StartSession(ctx, meta, "")
	if !errors.Is(err, ErrSessionInProgress) {
		t.Fatalf("second start err = %v", err)
	}
	if again.SessionUUID != state.SessionUUID {
		t.Fatalf("second start returned a different session")
	}
}

func TestStatusWithoutSession(t *testing.T) {
	svc := newTestService(t, Config{})
	if _, err := svc.Status(context.Background(), testMeta()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("status err = %v", err)
	}
}

func TestPlayAppliesPlayerAndBotMoves(t *testing.T) {
	svc := newTestService(t, Config{})
	ctx := context.Background()
	meta := testMeta()

	if _, err := svc.StartSession(ctx, meta, "medium"); err != nil {
		t.Fatalf("start: %v", err)
	}

	summary, err := svc.Play(ctx, meta, "e3 d4")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if summary.PlayerMove != "e3-d4" {
		t.Fatalf("player move = %q", summary.PlayerMove)
	}
	if summary.BotMove == "" {
		t.Fatalf("bot did not reply on a fresh board")
	}
	if summary.MustContinue || summary.Finished {
		t.Fatalf("unexpected flags: %+v", summary)
	}
	if summary.State.Turn != engine.South {
		t.Fatalf("turn after bot reply = %v", summary.State.Turn)
	}
	if summary.State.MoveCount != 2 {
		t.Fatalf("move count = %d", summary.State.MoveCount)
	}
	if summary.BotDelay <= 0 {
		t.Fatalf("bot delay missing")
	}

	// Session survived the exchange.
	state, err := svc.Status(ctx, meta)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if state.MoveCount != 2 {
		t.Fatalf("persisted move count = %d", state.MoveCount)
	}
}

func TestPlayRejectsBadInput(t *testing.T) {
	svc := newTestService(t, Config{})
	ctx := context.Background()
	meta := testMeta()

	if _, err := svc.StartSession(ctx, meta, ""); err != nil {
		t.Fatalf("start: %v", err)
	}

	for _, input := range []string{"", "zz", "e3", "e3 e9", "e3 e2", "a8 b7"} {
		if _, err := svc.Play(ctx, meta, input); !errors.Is(err, ErrInvalidMove) {
			t.Fatalf("play(%q) err = %v, want invalid move", input, err)
		}
	}
}

func TestDestinationsForOpeningPiece(t *testing.T) {
	svc := newTestService(t, Config{})
	ctx := context.Background()
	meta := testMeta()

	if _, err := svc.StartSession(ctx, meta, ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	dests, err := svc.Destinations(ctx, meta, "e3")
	if err != nil {
		t.Fatalf("destinations: %v", err)
	}
	if len(dests) != 2 {
		t.Fatalf("destinations = %v", dests)
	}
	// Opponent pieces expose nothing.
	dests, err = svc.Destinations(ctx, meta, "b6")
	if err != nil {
		t.Fatalf("destinations: %v", err)
	}
	if len(dests) != 0 {
		t.Fatalf("opponent destinations = %v", dests)
	}
}

func TestResignRecordsLossAndEndsSession(t *testing.T) {
	svc := newTestService(t, Config{})
	ctx := context.Background()
	meta := testMeta()

	if _, err := svc.StartSession(ctx, meta, "hard"); err != nil {
		t.Fatalf("start: %v", err)
	}

	state, err := svc.Resign(ctx, meta)
	if err != nil {
		t.Fatalf("resign: %v", err)
	}
	if !state.Over || state.Winner != engine.North {
		t.Fatalf("state after resign = %+v", state)
	}
	if state.Profile == nil || state.Profile.Losses != 1 || state.Profile.GamesPlayed != 1 {
		t.Fatalf("profile after resign = %+v", state.Profile)
	}
	if state.RatingDelta >= 0 {
		t.Fatalf("rating delta = %d, want negative", state.RatingDelta)
	}

	if _, err := svc.Status(ctx, meta); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("status after resign err = %v", err)
	}

	games, err := svc.History(ctx, meta, 5)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(games) != 1 || games[0].Result != "loss" || games[0].ResultMethod != methodResign {
		t.Fatalf("history = %+v", games)
	}

	fetched, err := svc.Game(ctx, meta, games[0].ID)
	if err != nil || fetched.SessionUUID != games[0].SessionUUID {
		t.Fatalf("game lookup = (%+v, %v)", fetched, err)
	}
}

func TestUpdatePreferredDifficulty(t *testing.T) {
	svc := newTestService(t, Config{})
	ctx := context.Background()
	meta := testMeta()

	profile, err := svc.UpdatePreferredDifficulty(ctx, meta, "Hard")
	if err != nil {
		t.Fatalf("update difficulty: %v", err)
	}
	if profile.PreferredDifficulty != "hard" || profile.Rating != defaultPlayerRating {
		t.Fatalf("profile = %+v", profile)
	}

	fetched, err := svc.Profile(ctx, meta)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if fetched.PreferredDifficulty != "hard" {
		t.Fatalf("fetched profile = %+v", fetched)
	}

	// New sessions pick up the stored preference.
	state, err := svc.StartSession(ctx, meta, "")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if state.Difficulty != "hard" {
		t.Fatalf("session difficulty = %q", state.Difficulty)
	}

	if _, err := svc.UpdatePreferredDifficulty(ctx, meta, "impossible"); err == nil {
		t.Fatalf("expected validation error for unknown difficulty")
	}
}

func TestRoomAllowList(t *testing.T) {
	svc := newTestService(t, Config{AllowedRooms: []string{"garden"}})
	ctx := context.Background()

	if _, err := svc.StartSession(ctx, testMeta(), ""); err != nil {
		t.Fatalf("allowed room rejected: %v", err)
	}

	other := SessionMeta{SessionID: "room-2:player-1", Room: "lobby", Sender: "Fern"}
	if _, err := svc.StartSession(ctx, other, ""); !errors.Is(err, ErrRoomNotAllowed) {
		t.Fatalf("disallowed room err = %v", err)
	}
}

func TestParseMoveInputForms(t *testing.T) {
	want := [2]int{52, 34} // e2 -> c4
	for _, input := range []string{"e2 c4", "e2-c4", "e2xc4", "e2c4", " E2 C4 "} {
		from, to, err := parseMoveInput(input)
		if err != nil {
			t.Fatalf("parse(%q): %v", input, err)
		}
		if from != want[0] || to != want[1] {
			t.Fatalf("parse(%q) = (%d, %d)", input, from, to)
		}
	}
	for _, input := range []string{"", "e2", "e2 c4 d5", "x2 c4"} {
		if _, _, err := parseMoveInput(input); err == nil {
			t.Fatalf("parse(%q) should fail", input)
		}
	}
}
