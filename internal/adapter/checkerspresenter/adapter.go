package checkerspresenter

import (
	"github.com/mossbit/garden-checkers-bot/internal/checkers"
	"github.com/mossbit/garden-checkers-bot/internal/domain"
	svc "github.com/mossbit/garden-checkers-bot/internal/service/checkers"
	"github.com/mossbit/garden-checkers-bot/pkg/checkersdto"
)

func ToDTOState(s *svc.SessionState) *checkersdto.SessionState {
	if s == nil {
		return nil
	}
	return &checkersdto.SessionState{
		SessionUUID: s.SessionUUID,
		Difficulty:  s.Difficulty,
		Moves:       append([]string(nil), s.Moves...),
		BoardImage:  append([]byte(nil), s.BoardImage...),
		MoveCount:   s.MoveCount,
		Score:       checkersdto.Score{Player: s.Score.South, Bot: s.Score.North},
		Turn:        s.Turn.String(),
		Profile:     ToDTOProfile(s.Profile),
		RatingDelta: s.RatingDelta,
		Outcome:     outcomeToken(s),
		GameID:      0,
	}
}

func outcomeToken(s *svc.SessionState) string {
	if s == nil || !s.Over {
		return ""
	}
	if s.Winner == checkers.South {
		return "win"
	}
	return "loss"
}

func ToDTOMoveSummary(m *svc.MoveSummary) *checkersdto.MoveSummary {
	if m == nil {
		return nil
	}
	return &checkersdto.MoveSummary{
		State:        ToDTOState(m.State),
		PlayerMove:   m.PlayerMove,
		BotMove:      m.BotMove,
		MustContinue: m.MustContinue,
		BotDelay:     m.BotDelay,
		Captures:     eventSquares(m.PlayerEvents, m.BotEvents, checkers.EventCapture),
		Promotions:   eventSquares(m.PlayerEvents, m.BotEvents, checkers.EventPromotion),
		Finished:     m.Finished,
		GameID:       m.GameID,
		Profile:      ToDTOProfile(m.Profile),
		RatingDelta:  m.RatingDelta,
	}
}

// eventSquares collects the landing squares of all events of one kind, player
// events first.
func eventSquares(player, bot []checkers.Event, kind checkers.EventKind) []string {
	var out []string
	for _, list := range [][]checkers.Event{player, bot} {
		for _, ev := range list {
			if ev.Kind == kind {
				out = append(out, checkers.SquareName(ev.Square))
			}
		}
	}
	return out
}

func ToDTOProfile(p *domain.CheckersProfile) *checkersdto.CheckersProfile {
	if p == nil {
		return nil
	}
	cp := *p
	return &checkersdto.CheckersProfile{
		PlayerHash:          cp.PlayerHash,
		RoomHash:            cp.RoomHash,
		PreferredDifficulty: cp.PreferredDifficulty,
		Rating:              cp.Rating,
		GamesPlayed:         cp.GamesPlayed,
		Wins:                cp.Wins,
		Losses:              cp.Losses,
		Streak:              cp.Streak,
		StreakType:          cp.StreakType,
		LastDifficulty:      cp.LastDifficulty,
		LastPlayedAt:        cp.LastPlayedAt,
		UpdatedAt:           cp.UpdatedAt,
		CreatedAt:           cp.CreatedAt,
	}
}

func ToDTOGames(list []*domain.CheckersGame) []*checkersdto.CheckersGame {
	out := make([]*checkersdto.CheckersGame, 0, len(list))
	for _, g := range list {
		if g == nil {
			continue
		}
		out = append(out, ToDTOGame(g))
	}
	return out
}

func ToDTOGame(g *domain.CheckersGame) *checkersdto.CheckersGame {
	if g == nil {
		return nil
	}
	gg := *g
	return &checkersdto.CheckersGame{
		ID:              gg.ID,
		SessionUUID:     gg.SessionUUID,
		PlayerHash:      gg.PlayerHash,
		RoomHash:        gg.RoomHash,
		Difficulty:      gg.Difficulty,
		Result:          gg.Result,
		ResultMethod:    gg.ResultMethod,
		Moves:           append([]string(nil), gg.Moves...),
		CapturesFor:     gg.CapturesFor,
		CapturesAgainst: gg.CapturesAgn,
		StartedAt:       gg.StartedAt,
		EndedAt:         gg.EndedAt,
		Duration:        gg.Duration,
	}
}
