package checkersdto

import "time"

// MoveSummary summarises player and bot moves after executing a single turn.
type MoveSummary struct {
	State        *SessionState
	PlayerMove   string
	BotMove      string
	MustContinue bool
	BotDelay     time.Duration
	Captures     []string
	Promotions   []string
	Finished     bool
	GameID       int64
	Profile      *CheckersProfile
	RatingDelta  int
}
