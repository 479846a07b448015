package domain

import "time"

type CheckersGame struct {
	ID           int64
	SessionUUID  string
	PlayerHash   string
	RoomHash     string
	Difficulty   string
	Result       string
	ResultMethod string
	Moves        []string
	CapturesFor  int
	CapturesAgn  int
	StartedAt    time.Time
	EndedAt      time.Time
	Duration     time.Duration
}

type CheckersProfile struct {
	PlayerHash          string
	RoomHash            string
	PreferredDifficulty string
	Rating              int
	GamesPlayed         int
	Wins                int
	Losses              int
	Streak              int
	StreakType          string
	LastDifficulty      string
	LastPlayedAt        time.Time
	UpdatedAt           time.Time
	CreatedAt           time.Time
}
