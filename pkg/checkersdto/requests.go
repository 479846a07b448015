package checkersdto

type RequestMeta struct {
	SessionID string
	Room      string
	Sender    string
}

type StartSessionRequest struct {
	Meta       RequestMeta
	Difficulty string
}

type StartSessionResponse struct {
	State   *SessionState
	Resumed bool
}

type StatusRequest struct {
	Meta RequestMeta
}

type StatusResponse struct {
	State *SessionState
}

type PlayRequest struct {
	Meta RequestMeta
	Move string
}

type PlayResponse struct {
	Summary *MoveSummary
}

type DestinationsRequest struct {
	Meta   RequestMeta
	Square string
}

type DestinationsResponse struct {
	Squares []string
}

type ResignRequest struct {
	Meta RequestMeta
}

type ResignResponse struct {
	State *SessionState
}

type HistoryRequest struct {
	Meta  RequestMeta
	Limit int
}

type HistoryResponse struct {
	Games []*CheckersGame
}

type GameRequest struct {
	Meta   RequestMeta
	GameID int64
}

type GameResponse struct {
	Game *CheckersGame
}

type ProfileRequest struct {
	Meta RequestMeta
}

type ProfileResponse struct {
	Profile *CheckersProfile
}

type UpdatePreferredDifficultyRequest struct {
	Meta       RequestMeta
	Difficulty string
}

type UpdatePreferredDifficultyResponse struct {
	Profile *CheckersProfile
}
