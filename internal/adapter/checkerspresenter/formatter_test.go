package checkerspresenter

import (
	"strings"
	"testing"
	"time"

	"github.com/mossbit/garden-checkers-bot/internal/msgcat"
	"github.com/mossbit/garden-checkers-bot/internal/util"
	"github.com/mossbit/garden-checkers-bot/pkg/checkersdto"
)

type stubPrefix struct{ p string }

func (s stubPrefix) Prefix() string { return s.p }

func newTestFormatter(t *testing.T) *Formatter {
	t.Helper()
	catalog, err := msgcat.New("")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return NewFormatter(stubPrefix{p: "!"}, catalog)
}

func TestStartNewGame(t *testing.T) {
	f := newTestFormatter(t)
	state := &checkersdto.SessionState{Difficulty: "hard", Turn: "south"}

	out := f.Start(state, false)
	if !strings.Contains(out, "New checkers game started") {
		t.Fatalf("missing start banner: %q", out)
	}
	if !strings.Contains(out, "Difficulty: hard") {
		t.Fatalf("difficulty not shown: %q", out)
	}
	if !strings.Contains(out, "`!checkers <from> <to>`") {
		t.Fatalf("move hint should carry the prefix: %q", out)
	}

	resumed := f.Start(state, true)
	if !strings.Contains(resumed, "Picked up your game in progress") {
		t.Fatalf("resume banner missing: %q", resumed)
	}
}

func TestMoveMustContinue(t *testing.T) {
	f := newTestFormatter(t)
	out := f.Move(&checkersdto.MoveSummary{
		State:        &checkersdto.SessionState{},
		MustContinue: true,
		Captures:     []string{"c5"},
	})
	if out != "Your piece on c5 must keep capturing." {
		t.Fatalf("unexpected continuation line: %q", out)
	}
}

func TestMoveFinishedRendersOutcome(t *testing.T) {
	f := newTestFormatter(t)
	out := f.Move(&checkersdto.MoveSummary{
		State: &checkersdto.SessionState{
			Difficulty: "medium",
			Score:      checkersdto.Score{Player: 5, Bot: 2},
			Outcome:    "win",
		},
		Finished: true,
		GameID:   41,
	})
	if !strings.Contains(out, "🏆 You win! Final score 5:2") {
		t.Fatalf("win line missing: %q", out)
	}
	if !strings.Contains(out, "Game ID: #41") {
		t.Fatalf("game id missing: %q", out)
	}
}

func TestMovePromotionMidGame(t *testing.T) {
	f := newTestFormatter(t)
	out := f.Move(&checkersdto.MoveSummary{
		State:      &checkersdto.SessionState{},
		Promotions: []string{"d8"},
	})
	if !strings.Contains(out, "crowned a king on d8") {
		t.Fatalf("promotion line missing: %q", out)
	}
}

func TestHelpCollapsesBehindFold(t *testing.T) {
	f := newTestFormatter(t)
	out := f.Help()
	if !strings.HasPrefix(out, helpInstruction) {
		t.Fatalf("instruction should lead: %q", out[:30])
	}
	if strings.Count(out, util.ZeroWidthSpace) != util.SeeMorePadding {
		t.Fatalf("help text should be padded behind the fold")
	}
	if !strings.Contains(out, "!checkers start") {
		t.Fatalf("commands should carry the prefix: %q", out)
	}
}

func TestHistoryListsGames(t *testing.T) {
	f := newTestFormatter(t)
	out := f.History([]*checkersdto.CheckersGame{
		{
			ID:         12,
			Difficulty: "easy",
			Result:     "win",
			Moves:      []string{"e3-d4", "b6-a5"},
			EndedAt:    time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
			Duration:   90 * time.Second,
		},
	})
	if !strings.Contains(out, "#12") || !strings.Contains(out, "✅ W") {
		t.Fatalf("entry missing: %q", out)
	}
	if !strings.Contains(out, "moves: 2") {
		t.Fatalf("move count missing: %q", out)
	}
}

func TestNoSessionUsesCatalog(t *testing.T) {
	f := newTestFormatter(t)
	out := f.NoSession()
	if out != "No checkers game in progress. Use `!checkers start` to begin." {
		t.Fatalf("unexpected no-session line: %q", out)
	}
}

func TestPvpTexts(t *testing.T) {
	f := newTestFormatter(t)
	if got := f.PvpStart("Rose", "Bram"); !strings.Contains(got, "Rose (red) vs Bram (black)") {
		t.Fatalf("start text: %q", got)
	}
	if got := f.PvpFinished("Rose", "elimination"); got != "🏁 Rose wins by capturing every opposing piece." {
		t.Fatalf("finish text: %q", got)
	}
	if got := f.PvpFinished("Rose", "blocked"); !strings.Contains(got, "without a move") {
		t.Fatalf("blocked text: %q", got)
	}
	if got := f.PvpResigned("Bram", "Rose"); !strings.Contains(got, "Bram resigned") || !strings.Contains(got, "Rose takes the match") {
		t.Fatalf("resign text: %q", got)
	}
}

func TestResignShowsLoss(t *testing.T) {
	f := newTestFormatter(t)
	out := f.Resign(&checkersdto.SessionState{
		Score:   checkersdto.Score{Player: 1, Bot: 3},
		Outcome: "loss",
	})
	if !strings.Contains(out, "🏳️ Resignation recorded.") {
		t.Fatalf("banner missing: %q", out)
	}
	if !strings.Contains(out, "Final score 1:3") {
		t.Fatalf("score missing: %q", out)
	}
}
