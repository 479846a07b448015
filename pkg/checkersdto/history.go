package checkersdto

import "time"

type CheckersGame struct {
	ID              int64
	SessionUUID     string
	PlayerHash      string
	RoomHash        string
	Difficulty      string
	Result          string
	ResultMethod    string
	Moves           []string
	CapturesFor     int
	CapturesAgainst int
	StartedAt       time.Time
	EndedAt         time.Time
	Duration        time.Duration
}
