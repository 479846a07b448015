package checkerspresenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/mossbit/garden-checkers-bot/internal/msgcat"
	"github.com/mossbit/garden-checkers-bot/internal/util"
	"github.com/mossbit/garden-checkers-bot/pkg/checkersdto"
)

const (
	historyInstruction = "🔴 Recent games"
	helpInstruction    = "🔴 Checkers commands"
	profileInstruction = "🔴 Checkers profile"

	defaultDifficulty = "medium"
)

// PrefixProvider exposes the command prefix chat messages should use.
type PrefixProvider interface {
	Prefix() string
}

// Formatter renders checkers DTOs into chat-friendly text blocks. Event and
// outcome lines come from the message catalog so deployments can reword them.
type Formatter struct {
	prefixProvider PrefixProvider
	catalog        *msgcat.Catalog
}

func NewFormatter(provider PrefixProvider, catalog *msgcat.Catalog) *Formatter {
	return &Formatter{prefixProvider: provider, catalog: catalog}
}

func (f *Formatter) Prefix() string {
	if f == nil || f.prefixProvider == nil {
		return ""
	}
	return strings.TrimSpace(f.prefixProvider.Prefix())
}

// render looks up a catalog template, falling back to the given default when
// the key is missing or the data doesn't fit.
func (f *Formatter) render(key string, data any, fallback string) string {
	if f == nil || f.catalog == nil {
		return fallback
	}
	out, err := f.catalog.Render(key, data)
	if err != nil {
		return fallback
	}
	return out
}

func (f *Formatter) Start(state *checkersdto.SessionState, resumed bool) string {
	if state == nil {
		if resumed {
			return fmt.Sprintf("Couldn't load the game in progress. Check again with `%scheckers status`.", f.Prefix())
		}
		return fmt.Sprintf("Couldn't start a checkers game. Try `%scheckers start` again.", f.Prefix())
	}

	var sb strings.Builder
	if resumed {
		sb.WriteString("🔴 Picked up your game in progress.\n")
	} else {
		sb.WriteString("🔴 New checkers game started.\n")
	}
	sb.WriteString(fmt.Sprintf("• Difficulty: %s\n", formatDifficulty(state.Difficulty)))
	if profile := state.Profile; profile != nil {
		sb.WriteString(ratingLine(profile.Rating, state.RatingDelta, profile.GamesPlayed))
		sb.WriteString(fmt.Sprintf("• Record: %dW %dL (%d games)", profile.Wins, profile.Losses, profile.GamesPlayed))
		if profile.PreferredDifficulty != "" {
			sb.WriteString(fmt.Sprintf(" | preferred: %s", formatDifficulty(profile.PreferredDifficulty)))
		}
		sb.WriteString("\n")
	}
	prefix := f.Prefix()
	sb.WriteString("• You play the bottom pieces and move first.\n")
	sb.WriteString("\nMove with `")
	sb.WriteString(prefix)
	sb.WriteString("checkers <from> <to>` (e.g. e3 d4).\n")
	sb.WriteString("Difficulties: easy, medium, hard.")
	return sb.String()
}

func (f *Formatter) Move(summary *checkersdto.MoveSummary) string {
	if summary == nil || summary.State == nil {
		return ""
	}
	state := summary.State

	if summary.MustContinue {
		square := ""
		if n := len(summary.Captures); n > 0 {
			square = summary.Captures[n-1]
		}
		return f.render("checkers.status.must_continue", map[string]any{"Square": square},
			fmt.Sprintf("Your piece on %s must keep capturing.", square))
	}
	if !summary.Finished {
		var lines []string
		for _, sq := range summary.Promotions {
			lines = append(lines, f.render("checkers.event.promotion",
				map[string]any{"By": "A piece", "Square": sq},
				fmt.Sprintf("A piece was crowned on %s!", sq)))
		}
		return strings.Join(lines, "\n")
	}

	var sb strings.Builder
	sb.WriteString(f.outcomeLine(state))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("• Difficulty: %s\n", formatDifficulty(state.Difficulty)))
	sb.WriteString(fmt.Sprintf("• Captures: you %d, bot %d\n", state.Score.Player, state.Score.Bot))

	if profile := summary.Profile; profile != nil {
		sb.WriteString(ratingLine(profile.Rating, summary.RatingDelta, profile.GamesPlayed))
		sb.WriteString(fmt.Sprintf("• Record: %dW %dL (%d games)\n", profile.Wins, profile.Losses, profile.GamesPlayed))
	}
	if summary.GameID > 0 {
		sb.WriteString(fmt.Sprintf("\nGame ID: #%d\n", summary.GameID))
	}
	return sb.String()
}

func (f *Formatter) outcomeLine(state *checkersdto.SessionState) string {
	data := map[string]any{"PlayerScore": state.Score.Player, "BotScore": state.Score.Bot}
	switch state.Outcome {
	case "win":
		return f.render("checkers.event.game_over_win", data,
			fmt.Sprintf("🏆 You win! Final score %d:%d", state.Score.Player, state.Score.Bot))
	case "loss":
		return f.render("checkers.event.game_over_loss", data,
			fmt.Sprintf("💀 The bot wins this one. Final score %d:%d", state.Score.Player, state.Score.Bot))
	default:
		return "Game over."
	}
}

func (f *Formatter) Status(state *checkersdto.SessionState) string {
	if state == nil {
		return f.Help()
	}
	var sb strings.Builder
	sb.WriteString("🔴 Checkers status\n")
	sb.WriteString(fmt.Sprintf("• Difficulty %s\n", formatDifficulty(state.Difficulty)))
	sb.WriteString(fmt.Sprintf("• Moves played %d\n", state.MoveCount))
	if len(state.Moves) > 0 {
		sb.WriteString(fmt.Sprintf("• Recent %s\n", formatRecentMoves(state.Moves)))
	}
	sb.WriteString(fmt.Sprintf("• Captures: you %d, bot %d\n", state.Score.Player, state.Score.Bot))
	if info := formatProfileSummary(state.Profile, state.RatingDelta); info != "" {
		sb.WriteString(info)
	}

	prefix := f.Prefix()
	sb.WriteString("\nMove: `")
	sb.WriteString(prefix)
	sb.WriteString("checkers <from> <to>`\nResign: `")
	sb.WriteString(prefix)
	sb.WriteString("checkers resign`.")
	return sb.String()
}

func (f *Formatter) Resign(state *checkersdto.SessionState) string {
	var sb strings.Builder
	sb.WriteString("🏳️ Resignation recorded.\n")
	if state == nil {
		sb.WriteString("The game was scored as a loss.")
		return sb.String()
	}
	sb.WriteString(f.outcomeLine(state))
	if profile := state.Profile; profile != nil {
		sb.WriteString("\n")
		sb.WriteString(ratingLine(profile.Rating, state.RatingDelta, profile.GamesPlayed))
		sb.WriteString(fmt.Sprintf("• Record: %dW %dL (%d games)", profile.Wins, profile.Losses, profile.GamesPlayed))
	}
	return sb.String()
}

func (f *Formatter) Help() string {
	p := f.Prefix()
	content := fmt.Sprintf(`%s
• %scheckers start [difficulty]
  New game (easy, medium, hard)
• %scheckers <from> <to> (e.g. e3 d4)
  Move a piece; jumps capture
• %scheckers moves <square>
  Show where a piece can go
• %scheckers resign
  Concede and close the session
• %scheckers history [n]
  Recent games (default 10)
• %scheckers game <ID>
  One game in detail
• %scheckers profile
  Your rating and record`, helpInstruction, p, p, p, p, p, p, p)

	return util.ApplySeeMorePadding(util.StripLeadingHeader(content, helpInstruction), helpInstruction)
}

func (f *Formatter) History(games []*checkersdto.CheckersGame) string {
	var sb strings.Builder
	sb.WriteString(historyInstruction)
	sb.WriteByte('\n')
	for _, game := range games {
		dateText := util.FormatStamp(game.EndedAt, "2006-01-02 15:04")
		resultText := formatResultBadge(game.Result)
		durationText := formatGameDuration(game.Duration)
		sb.WriteString(fmt.Sprintf("• #%d %s %s — %s (moves: %d)\n", game.ID, resultText, dateText, formatDifficulty(game.Difficulty), len(game.Moves)))
		if durationText != "" {
			sb.WriteString(fmt.Sprintf("  duration: %s\n", durationText))
		}
	}
	sb.WriteString(fmt.Sprintf("\nSee one in detail with `%scheckers game <ID>`.", f.Prefix()))

	content := sb.String()
	if strings.TrimSpace(content) == "" {
		return content
	}
	return util.ApplySeeMorePadding(util.StripLeadingHeader(content, historyInstruction), historyInstruction)
}

func (f *Formatter) Game(game *checkersdto.CheckersGame) string {
	if game == nil {
		return "Couldn't load that game."
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔴 Game #%d\n", game.ID))
	sb.WriteString(fmt.Sprintf("• Result: %s\n", formatResultBadge(game.Result)))
	sb.WriteString(fmt.Sprintf("• Difficulty: %s\n", formatDifficulty(game.Difficulty)))
	if !game.StartedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("• Started: %s\n", util.FormatStamp(game.StartedAt, "2006-01-02 15:04")))
	}
	if !game.EndedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("• Ended: %s\n", util.FormatStamp(game.EndedAt, "2006-01-02 15:04")))
	}
	if game.Duration > 0 {
		sb.WriteString(fmt.Sprintf("• Duration: %s\n", formatGameDuration(game.Duration)))
	}
	sb.WriteString(fmt.Sprintf("• Captures: %d for, %d against\n", game.CapturesFor, game.CapturesAgainst))
	if len(game.Moves) > 0 {
		sb.WriteString("\n")
		sb.WriteString(strings.Join(game.Moves, " "))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (f *Formatter) Profile(profile *checkersdto.CheckersProfile) string {
	if profile == nil {
		return "No checkers profile saved yet."
	}
	var sb strings.Builder
	sb.WriteString(profileInstruction)
	sb.WriteString("\n")
	if info := formatProfileSummary(profile, 0); info != "" {
		sb.WriteString(info)
	}
	if profile.Streak > 1 {
		sb.WriteString(fmt.Sprintf("• Streak: %d %s running\n", profile.Streak, formatStreakSuffix(profile.StreakType)))
	}
	if !profile.LastPlayedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("• Last game: %s\n", util.FormatStamp(profile.LastPlayedAt, "2006-01-02 15:04")))
	}
	prefix := f.Prefix()
	sb.WriteString(fmt.Sprintf("\nNew game: `%scheckers start`, history: `%scheckers history`.", prefix, prefix))

	content := sb.String()
	if !strings.HasPrefix(content, profileInstruction) {
		return content
	}
	return util.ApplySeeMorePadding(util.StripLeadingHeader(content, profileInstruction), profileInstruction)
}

func (f *Formatter) PreferredDifficultyUpdated(profile *checkersdto.CheckersProfile) string {
	if profile == nil {
		return "Couldn't update the preferred difficulty. Please try again."
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ Preferred difficulty set to %s.\n", formatDifficulty(profile.PreferredDifficulty)))
	if info := formatProfileSummary(profile, 0); info != "" {
		sb.WriteString(info)
	}
	sb.WriteString(fmt.Sprintf("Start a game: `%scheckers start`", f.Prefix()))
	return sb.String()
}

func (f *Formatter) Destinations(square string, squares []string) string {
	if len(squares) == 0 {
		return fmt.Sprintf("The piece on %s has no moves.", square)
	}
	return fmt.Sprintf("From %s: %s", square, strings.Join(squares, ", "))
}

func (f *Formatter) NoSession() string {
	return f.render("checkers.status.no_session", map[string]any{"Prefix": f.Prefix()},
		fmt.Sprintf("No checkers game in progress. Use `%scheckers start` to begin.", f.Prefix()))
}

func (f *Formatter) PvpStart(red, black string) string {
	return f.render("pvp.start", map[string]any{"Red": red, "Black": black},
		fmt.Sprintf("🔴 Match on! %s (red) vs %s (black) — red moves first.", red, black))
}

// PvpFinished describes a decided match; method is one of elimination,
// blocked, or resignation.
func (f *Formatter) PvpFinished(winner, method string) string {
	return f.render("pvp.finished", map[string]any{"Winner": winner, "Method": f.outcomeMethod(method)},
		fmt.Sprintf("🏁 %s wins.", winner))
}

func (f *Formatter) PvpResigned(resigner, winner string) string {
	return f.render("pvp.resigned", map[string]any{"Resigner": resigner, "Winner": winner},
		fmt.Sprintf("🏳️ %s resigned. %s takes the match.", resigner, winner))
}

func (f *Formatter) outcomeMethod(method string) string {
	method = strings.ToLower(strings.TrimSpace(method))
	return f.render("checkers.outcome."+method, nil, method)
}

func formatDifficulty(difficulty string) string {
	if strings.TrimSpace(difficulty) == "" {
		return defaultDifficulty
	}
	return strings.ToLower(difficulty)
}

func formatProfileSummary(profile *checkersdto.CheckersProfile, ratingDelta int) string {
	if profile == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(ratingLine(profile.Rating, ratingDelta, profile.GamesPlayed))
	sb.WriteString(fmt.Sprintf("• Record: %dW %dL (%d games)\n", profile.Wins, profile.Losses, profile.GamesPlayed))
	if profile.PreferredDifficulty != "" {
		sb.WriteString(fmt.Sprintf("• Preferred difficulty: %s\n", formatDifficulty(profile.PreferredDifficulty)))
	}
	return sb.String()
}

func ratingLine(rating, delta, gamesPlayed int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("• Rating: %d", rating))
	if delta > 0 {
		sb.WriteString(fmt.Sprintf(" (▲%d)", delta))
	} else if delta < 0 {
		sb.WriteString(fmt.Sprintf(" (▼%d)", -delta))
	} else if gamesPlayed > 0 {
		sb.WriteString(" (no change)")
	}
	sb.WriteString("\n")
	return sb.String()
}

func formatStreakSuffix(streakType string) string {
	switch strings.ToLower(strings.TrimSpace(streakType)) {
	case "win":
		return "wins"
	case "loss":
		return "losses"
	default:
		return "games"
	}
}

func formatRecentMoves(moves []string) string {
	if len(moves) == 0 {
		return "-"
	}
	const limit = 4
	if len(moves) <= limit {
		return strings.Join(moves, " ")
	}
	return "… " + strings.Join(moves[len(moves)-limit:], " ")
}

func formatResultBadge(result string) string {
	switch strings.ToLower(strings.TrimSpace(result)) {
	case "win":
		return "✅ W"
	case "loss":
		return "❌ L"
	default:
		return "▫️ ongoing"
	}
}

func formatGameDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
