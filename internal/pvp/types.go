package pvp

import (
	"strings"
	"time"
)

type SideChoice string

const (
	SideRed    SideChoice = "red"
	SideBlack  SideChoice = "black"
	SideRandom SideChoice = "random"
)

func ParseSideChoice(s string) SideChoice {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red", "r":
		return SideRed
	case "black", "b":
		return SideBlack
	default:
		return SideRandom
	}
}

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusDeclined Status = "DECLINED"
)

type Challenge struct {
	ID           string
	OriginRoom   string
	ResolveRoom  string
	ChallengerID string
	TargetID     string
	Side         SideChoice
	CreatedAt    time.Time
	Status       Status
}
