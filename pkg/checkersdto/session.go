package checkersdto

type Score struct {
	Player int
	Bot    int
}

type SessionState struct {
	SessionUUID string
	Difficulty  string
	Moves       []string
	BoardImage  []byte
	MoveCount   int
	Score       Score
	Turn        string
	Profile     *CheckersProfile
	RatingDelta int
	Outcome     string
	OutcomeMeta string
	GameID      int64
}
