package pvpchan

import (
	"strings"
	"time"
)

// ChannelState represents the lifecycle of a PvP channel.
type ChannelState string

const (
	StateLobby    ChannelState = "LOBBY"
	StateActive   ChannelState = "ACTIVE"
	StateFinished ChannelState = "FINISHED"
	StateAborted  ChannelState = "ABORTED"
)

// SideChoice is a textual seat preference for make/join.
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

// ChannelMeta is stored as JSON in Redis under ch:<code>.
type ChannelMeta struct {
	ID        string       `json:"id"`
	State     ChannelState `json:"state"`
	CreatedAt time.Time    `json:"created_at"`

	CreatorID   string `json:"creator_id"`
	CreatorName string `json:"creator_name"`
	CreatorRoom string `json:"creator_room"`

	RedID     string `json:"red_id,omitempty"`
	RedName   string `json:"red_name,omitempty"`
	BlackID   string `json:"black_id,omitempty"`
	BlackName string `json:"black_name,omitempty"`

	GameID string `json:"game_id,omitempty"`
}

// Results
type MakeResult struct {
	Code string
	Meta *ChannelMeta
}

type JoinResult struct {
	Started bool
	GameID  string
	Meta    *ChannelMeta
}

// Errors
var (
	ErrInvalidArgs   = errf("invalid arguments")
	ErrChannelGone   = errf("channel not found or expired")
	ErrChannelActive = errf("channel already active")
	ErrFull          = errf("channel already has two participants")
	// the player already has an active match in this room
	ErrPlayerBusyInRoom = errf("player has active game in this room")
	// a user may hold at most one open lobby at a time
	ErrCreatorHasLobby = errf("user already has a lobby")
)

type staticErr string

func (e staticErr) Error() string { return string(e) }
func errf(s string) error         { return staticErr(s) }
