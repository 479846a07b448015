package checkers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mossbit/garden-checkers-bot/internal/checkers"
	"github.com/mossbit/garden-checkers-bot/internal/domain"
	"github.com/mossbit/garden-checkers-bot/internal/service/cache"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound   = errors.New("checkers session not found")
	ErrSessionInProgress = errors.New("checkers session already in progress")
	ErrInvalidMove       = errors.New("invalid checkers move")
	ErrGameNotFound      = errors.New("checkers game not found")
	ErrProfileNotFound   = errors.New("checkers profile not found")
	ErrRoomNotAllowed    = errors.New("checkers room not allowed")
)

const (
	defaultPlayerRating   = 1200
	kFactor               = 24
	profileCacheTTL       = 6 * time.Hour
	maxHistoryLimit       = 50
	playerLabelRuneLimit  = 24
	defaultHUDPlayerLabel = "Player"
	botHUDLabel           = "Bot"
)

const (
	methodElimination = "elimination"
	methodBlocked     = "blocked"
	methodResign      = "resign"
)

type SessionMeta struct {
	SessionID string
	Room      string
	Sender    string
}

type sessionIdentity struct {
	SessionID  string
	RoomHash   string
	PlayerHash string
}

type Config struct {
	DefaultDifficulty string
	SessionTTL        time.Duration
	HistoryLimit      int
	AllowedRooms      []string
}

type Service struct {
	cache        *cache.CacheService
	renderer     BoardRenderer
	repo         Repository
	cfg          Config
	allowedRooms map[string]struct{}
	logger       *zap.Logger

	policyMu sync.Mutex
	policies map[string]*checkers.Policy
}

type sessionPayload struct {
	SessionUUID string            `json:"session_uuid"`
	PlayerHash  string            `json:"player_hash"`
	RoomHash    string            `json:"room_hash"`
	PlayerName  string            `json:"player_name,omitempty"`
	Difficulty  string            `json:"difficulty"`
	Game        *checkers.Session `json:"game"`
	Moves       []string          `json:"moves"`
	StartedAt   time.Time         `json:"started_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type SessionState struct {
	SessionUUID string
	PlayerHash  string
	RoomHash    string
	PlayerName  string
	Difficulty  string
	Moves       []string
	BoardImage  []byte
	Turn        checkers.Player
	MoveCount   int
	Score       checkers.Score
	Winner      checkers.Player
	Over        bool
	Forced      int
	StartedAt   time.Time
	UpdatedAt   time.Time
	RatingDelta int
	Profile     *domain.CheckersProfile
}

type MoveSummary struct {
	State        *SessionState
	PlayerMove   string
	BotMove      string
	PlayerEvents []checkers.Event
	BotEvents    []checkers.Event
	// MustContinue reports that the player's piece has a further capture and
	// the turn has not passed to the bot.
	MustContinue bool
	BotDelay     time.Duration
	Finished     bool
	GameID       int64
	Profile      *domain.CheckersProfile
	RatingDelta  int
}

func NewService(cacheSvc *cache.CacheService, repo Repository, renderer BoardRenderer, cfg Config, logger *zap.Logger) (*Service, error) {
	if cacheSvc == nil {
		return nil, fmt.Errorf("cache service is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("checkers repository is required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("board renderer is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("session TTL must be greater than 0")
	}
	defaultDifficulty := strings.ToLower(strings.TrimSpace(cfg.DefaultDifficulty))
	if defaultDifficulty == "" {
		defaultDifficulty = "medium"
	}
	if _, err := checkers.GetPreset(defaultDifficulty); err != nil {
		return nil, fmt.Errorf("default difficulty validation failed: %w", err)
	}
	if cfg.HistoryLimit <= 0 || cfg.HistoryLimit > maxHistoryLimit {
		cfg.HistoryLimit = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	allowedRooms := make(map[string]struct{})
	for _, room := range cfg.AllowedRooms {
		normalized := strings.ToLower(strings.TrimSpace(room))
		if normalized == "" {
			continue
		}
		allowedRooms[normalized] = struct{}{}
	}

	return &Service{
		cache:    cacheSvc,
		renderer: renderer,
		repo:     repo,
		cfg: Config{
			DefaultDifficulty: defaultDifficulty,
			SessionTTL:        cfg.SessionTTL,
			HistoryLimit:      cfg.HistoryLimit,
			AllowedRooms:      append([]string(nil), cfg.AllowedRooms...),
		},
		allowedRooms: allowedRooms,
		logger:       logger,
		policies:     make(map[string]*checkers.Policy),
	}, nil
}

func (s *Service) StartSession(ctx context.Context, meta SessionMeta, difficulty string) (*SessionState, error) {
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}

	identity := deriveIdentity(meta)

	existing, err := s.loadSession(ctx, identity.SessionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		state := s.stateFromPayload(existing)
		if profile, profErr := s.fetchProfile(ctx, identity, true); profErr == nil {
			state.Profile = profile
		}
		s.applyPlayerName(state, existing, meta)
		s.attachBoardImage(ctx, state, existing.Game, nil)
		return state, ErrSessionInProgress
	}

	chosen := strings.ToLower(strings.TrimSpace(difficulty))

	profile, err := s.fetchProfile(ctx, identity, false)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	if chosen == "" {
		if profile != nil && profile.PreferredDifficulty != "" {
			chosen = profile.PreferredDifficulty
		} else {
			chosen = s.cfg.DefaultDifficulty
		}
	}
	if _, err := checkers.GetPreset(chosen); err != nil {
		return nil, fmt.Errorf("difficulty validation failed: %w", err)
	}

	playerName := normalizeHUDPlayerLabel(meta.Sender)
	payload := &sessionPayload{
		SessionUUID: uuid.NewString(),
		PlayerHash:  identity.PlayerHash,
		RoomHash:    identity.RoomHash,
		PlayerName:  playerName,
		Difficulty:  chosen,
		Game:        checkers.NewSession(playerName, botHUDLabel),
		Moves:       []string{},
		StartedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.saveSession(ctx, identity.SessionID, payload); err != nil {
		return nil, err
	}

	state := s.stateFromPayload(payload)
	s.applyPlayerName(state, payload, meta)
	s.attachBoardImage(ctx, state, payload.Game, nil)
	state.Profile = profile
	return state, nil
}

func (s *Service) Status(ctx context.Context, meta SessionMeta) (*SessionState, error) {
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}

	identity := deriveIdentity(meta)
	payload, err := s.loadSession(ctx, identity.SessionID)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, ErrSessionNotFound
	}

	state := s.stateFromPayload(payload)
	if profile, profErr := s.fetchProfile(ctx, identity, true); profErr == nil {
		state.Profile = profile
	}
	s.applyPlayerName(state, payload, meta)
	s.attachBoardImage(ctx, state, payload.Game, nil)
	return state, nil
}

// Destinations lists the legal landing squares of the player's piece at the
// given coordinate, in board notation. During a capture chain only the pinned
// piece's further jumps come back.
func (s *Service) Destinations(ctx context.Context, meta SessionMeta, square string) ([]string, error) {
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}

	identity := deriveIdentity(meta)
	payload, err := s.loadSession(ctx, identity.SessionID)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, ErrSessionNotFound
	}

	idx, err := checkers.ParseSquare(square)
	if err != nil {
		return nil, ErrInvalidMove
	}
	dests := payload.Game.Destinations(idx)
	names := make([]string, 0, len(dests))
	for _, d := range dests {
		names = append(names, checkers.SquareName(d))
	}
	return names, nil
}

func (s *Service) Play(ctx context.Context, meta SessionMeta, moveInput string) (*MoveSummary, error) {
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}

	from, to, err := parseMoveInput(moveInput)
	if err != nil {
		return nil, err
	}

	identity := deriveIdentity(meta)
	payload, err := s.loadSession(ctx, identity.SessionID)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, ErrSessionNotFound
	}
	game := payload.Game
	if game.Over {
		return nil, fmt.Errorf("game already finished")
	}

	playerEvents := game.Apply(from, to)
	if playerEvents == nil {
		return nil, ErrInvalidMove
	}

	playerMove := checkers.MoveName(from, to, hasCapture(playerEvents))
	payload.Moves = append(payload.Moves, playerMove)
	payload.UpdatedAt = time.Now()

	summary := &MoveSummary{
		PlayerMove:   playerMove,
		PlayerEvents: playerEvents,
	}

	// Capture chain: the turn stays with the player and the bot must wait.
	if game.Phase == checkers.ForcedContinuation {
		summary.MustContinue = true
		if err := s.saveSession(ctx, identity.SessionID, payload); err != nil {
			return nil, err
		}
		summary.State = s.stateFromPayload(payload)
		s.applyPlayerName(summary.State, payload, meta)
		s.attachBoardImage(ctx, summary.State, game, &MoveHighlight{From: from, To: to})
		return summary, nil
	}

	var botHighlight *MoveHighlight
	if !game.Over && game.Turn == checkers.North {
		preset, _ := checkers.GetPreset(payload.Difficulty)
		policy := s.policyFor(preset)
		var botEvents []checkers.Event
		botFrom, botTo, ok := policy.ChooseMove(&game.Board, checkers.North)
		if !ok {
			botEvents = game.PlayOpponent(policy) // no moves left: human wins
		} else {
			botEvents = game.ApplyOpponent(botFrom, botTo)
			summary.BotMove = checkers.MoveName(botFrom, botTo, hasCapture(botEvents))
			payload.Moves = append(payload.Moves, summary.BotMove)
			botHighlight = &MoveHighlight{From: botFrom, To: botTo}
		}
		summary.BotEvents = botEvents
		summary.BotDelay = preset.ReplyDelay
		payload.UpdatedAt = time.Now()
	}

	summary.Finished = game.Over
	summary.State = s.stateFromPayload(payload)
	s.applyPlayerName(summary.State, payload, meta)
	highlight := &MoveHighlight{From: from, To: to}
	if botHighlight != nil {
		highlight = botHighlight
	}
	s.attachBoardImage(ctx, summary.State, game, highlight)

	if summary.Finished {
		method := methodElimination
		if game.Board.Count(game.Winner.Opponent()) > 0 {
			method = methodBlocked
		}
		gameID, profile, delta, persistErr := s.persistFinishedGame(ctx, identity, payload, method)
		if persistErr != nil {
			return nil, persistErr
		}
		summary.GameID = gameID
		summary.Profile = profile
		summary.RatingDelta = delta
		summary.State.Profile = profile
		summary.State.RatingDelta = delta

		if err := s.deleteSession(ctx, identity.SessionID); err != nil {
			s.logger.Warn("failed to delete finished checkers session", zap.Error(err))
		}
		return summary, nil
	}

	if err := s.saveSession(ctx, identity.SessionID, payload); err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *Service) Resign(ctx context.Context, meta SessionMeta) (*SessionState, error) {
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}

	identity := deriveIdentity(meta)
	payload, err := s.loadSession(ctx, identity.SessionID)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, ErrSessionNotFound
	}

	payload.Game.Resign(checkers.South)
	payload.UpdatedAt = time.Now()

	state := s.stateFromPayload(payload)
	s.applyPlayerName(state, payload, meta)
	s.attachBoardImage(ctx, state, payload.Game, nil)

	gameID, profile, delta, persistErr := s.persistFinishedGame(ctx, identity, payload, methodResign)
	if persistErr != nil {
		return nil, persistErr
	}
	state.Profile = profile
	state.RatingDelta = delta

	if err := s.deleteSession(ctx, identity.SessionID); err != nil {
		s.logger.Warn("failed to delete checkers session after resignation", zap.Error(err))
	}
	if gameID == 0 {
		s.logger.Warn("resigned checkers game did not persist with id")
	}
	return state, nil
}

func (s *Service) History(ctx context.Context, meta SessionMeta, limit int) ([]*domain.CheckersGame, error) {
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > s.cfg.HistoryLimit {
		limit = s.cfg.HistoryLimit
	}
	identity := deriveIdentity(meta)
	return s.repo.GetRecentGames(ctx, identity.PlayerHash, limit)
}

func (s *Service) Game(ctx context.Context, meta SessionMeta, id int64) (*domain.CheckersGame, error) {
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}
	identity := deriveIdentity(meta)
	game, err := s.repo.GetGame(ctx, id, identity.PlayerHash)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	return game, nil
}

func (s *Service) Profile(ctx context.Context, meta SessionMeta) (*domain.CheckersProfile, error) {
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}
	identity := deriveIdentity(meta)
	profile, err := s.fetchProfile(ctx, identity, true)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

func (s *Service) UpdatePreferredDifficulty(ctx context.Context, meta SessionMeta, difficulty string) (*domain.CheckersProfile, error) {
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}
	identity := deriveIdentity(meta)
	target := strings.ToLower(strings.TrimSpace(difficulty))
	if target == "" {
		return nil, fmt.Errorf("difficulty must be provided")
	}
	if _, err := checkers.GetPreset(target); err != nil {
		return nil, fmt.Errorf("difficulty validation failed: %w", err)
	}

	profile, err := s.fetchProfile(ctx, identity, false)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}
	if profile == nil {
		profile = &domain.CheckersProfile{
			PlayerHash: identity.PlayerHash,
			RoomHash:   identity.RoomHash,
			Rating:     defaultPlayerRating,
			CreatedAt:  time.Now(),
		}
	}

	now := time.Now()
	profile.PreferredDifficulty = target
	profile.LastDifficulty = target
	profile.LastPlayedAt = now
	profile.UpdatedAt = now

	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}
	s.cacheProfile(ctx, identity, profile)
	return profile, nil
}

func (s *Service) policyFor(preset checkers.DifficultyPreset) *checkers.Policy {
	s.policyMu.Lock()
	defer s.policyMu.Unlock()
	if p, ok := s.policies[preset.Name]; ok {
		return p
	}
	p := checkers.NewPolicy(preset, nil)
	s.policies[preset.Name] = p
	return p
}

func (s *Service) ensureRoomAllowed(meta SessionMeta) error {
	if len(s.allowedRooms) == 0 {
		return nil
	}

	room := strings.ToLower(strings.TrimSpace(meta.Room))
	if room == "" {
		room = "unknown-room"
	}

	if _, ok := s.allowedRooms[room]; ok {
		return nil
	}

	s.logger.Info("checkers room access denied",
		zap.String("room", room),
		zap.String("sender", strings.TrimSpace(meta.Sender)),
	)
	return ErrRoomNotAllowed
}

func (s *Service) sessionKey(sessionID string) string {
	hash := sha256.Sum256([]byte(strings.TrimSpace(sessionID)))
	return "checkers:sessions:" + hex.EncodeToString(hash[:])
}

func (s *Service) profileCacheKey(identity sessionIdentity) string {
	return "checkers:profile:" + identity.PlayerHash + ":" + identity.RoomHash
}

func (s *Service) loadSession(ctx context.Context, sessionID string) (*sessionPayload, error) {
	key := s.sessionKey(sessionID)
	payload := &sessionPayload{}
	if err := s.cache.Get(ctx, key, payload); err != nil {
		return nil, err
	}
	if payload.Difficulty == "" || payload.Game == nil {
		return nil, nil
	}
	return payload, nil
}

func (s *Service) saveSession(ctx context.Context, sessionID string, payload *sessionPayload) error {
	if payload == nil {
		return fmt.Errorf("cannot save nil checkers session payload")
	}
	payload.UpdatedAt = time.Now()
	return s.cache.Set(ctx, s.sessionKey(sessionID), payload, s.cfg.SessionTTL)
}

func (s *Service) deleteSession(ctx context.Context, sessionID string) error {
	return s.cache.Del(ctx, s.sessionKey(sessionID))
}

func (s *Service) stateFromPayload(payload *sessionPayload) *SessionState {
	game := payload.Game
	return &SessionState{
		SessionUUID: payload.SessionUUID,
		PlayerHash:  payload.PlayerHash,
		RoomHash:    payload.RoomHash,
		PlayerName:  payload.PlayerName,
		Difficulty:  payload.Difficulty,
		Moves:       append([]string(nil), payload.Moves...),
		Turn:        game.Turn,
		MoveCount:   len(payload.Moves),
		Score:       game.Score,
		Winner:      game.Winner,
		Over:        game.Over,
		Forced:      game.Forced,
		StartedAt:   payload.StartedAt,
		UpdatedAt:   payload.UpdatedAt,
	}
}

func normalizeHUDPlayerLabel(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return ""
	}
	cleaned = strings.NewReplacer("\r", " ", "\n", " ").Replace(cleaned)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return ""
	}
	runes := []rune(cleaned)
	if len(runes) > playerLabelRuneLimit {
		truncated := strings.TrimSpace(string(runes[:playerLabelRuneLimit]))
		if truncated == "" {
			return ""
		}
		return truncated + "..."
	}
	return cleaned
}

func (s *Service) applyPlayerName(state *SessionState, payload *sessionPayload, meta SessionMeta) {
	if state == nil {
		return
	}
	label := ""
	if payload != nil {
		label = normalizeHUDPlayerLabel(payload.PlayerName)
	}
	if label == "" {
		label = normalizeHUDPlayerLabel(meta.Sender)
	}
	if label == "" {
		label = defaultHUDPlayerLabel
	}
	state.PlayerName = label
	if payload != nil {
		payload.PlayerName = label
	}
}

func (s *Service) attachBoardImage(ctx context.Context, state *SessionState, game *checkers.Session, highlight *MoveHighlight) {
	if state == nil || game == nil || s.renderer == nil {
		return
	}
	playerLabel := normalizeHUDPlayerLabel(state.PlayerName)
	if playerLabel == "" {
		playerLabel = defaultHUDPlayerLabel
	}
	hudHeader := fmt.Sprintf("%s vs Bot (%s)", playerLabel, state.Difficulty)
	turnNumber := state.MoveCount/2 + 1
	if turnNumber < 1 {
		turnNumber = 1
	}
	hudTurn := fmt.Sprintf("%s / turn %d", game.Turn, turnNumber)
	if game.Over {
		hudTurn = fmt.Sprintf("%s wins", game.Winner)
	}

	var forced []int
	if game.Forced >= 0 {
		forced = game.Board.Captures(game.Forced)
	}

	opts := RenderOptions{
		Highlight: highlight,
		Marks:     forced,
		Score:     game.Score,
		HUDHeader: hudHeader,
		HUDTurn:   hudTurn,
	}
	data, err := s.renderer.RenderPNG(ctx, &game.Board, opts)
	if err != nil {
		s.logger.Warn("failed to render checkers board image", zap.Error(err))
		return
	}
	state.BoardImage = data
}

func (s *Service) persistFinishedGame(ctx context.Context, identity sessionIdentity, payload *sessionPayload, method string) (int64, *domain.CheckersProfile, int, error) {
	game := payload.Game
	result := "loss"
	if game.Winner == checkers.South {
		result = "win"
	}
	now := time.Now()

	record := &domain.CheckersGame{
		SessionUUID:  payload.SessionUUID,
		PlayerHash:   identity.PlayerHash,
		RoomHash:     identity.RoomHash,
		Difficulty:   payload.Difficulty,
		Result:       result,
		ResultMethod: method,
		Moves:        append([]string(nil), payload.Moves...),
		CapturesFor:  game.Score.South,
		CapturesAgn:  game.Score.North,
		StartedAt:    payload.StartedAt,
		EndedAt:      now,
		Duration:     now.Sub(payload.StartedAt),
	}

	gameID, err := s.repo.InsertGame(ctx, record)
	if err != nil {
		if errors.Is(err, ErrDuplicateGame) {
			existing, fetchErr := s.repo.GetGameBySession(ctx, payload.SessionUUID, identity.PlayerHash)
			if fetchErr != nil || existing == nil {
				return 0, nil, 0, err
			}
			profile, profErr := s.fetchProfile(ctx, identity, true)
			if profErr != nil && !errors.Is(profErr, ErrProfileNotFound) {
				return existing.ID, nil, 0, profErr
			}
			return existing.ID, profile, 0, nil
		}
		return 0, nil, 0, err
	}
	record.ID = gameID

	profile, err := s.fetchProfile(ctx, identity, false)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return gameID, nil, 0, err
	}
	profile, delta := applyGameResult(profile, identity, payload.Difficulty, game.Winner, now)

	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return gameID, nil, 0, err
	}
	s.cacheProfile(ctx, identity, profile)

	return gameID, profile, delta, nil
}

func (s *Service) fetchProfile(ctx context.Context, identity sessionIdentity, allowCache bool) (*domain.CheckersProfile, error) {
	if !allowCache {
		profile, err := s.repo.GetProfile(ctx, identity.PlayerHash, identity.RoomHash)
		if profile == nil && err == nil {
			return nil, ErrProfileNotFound
		}
		if err != nil {
			return nil, err
		}
		s.cacheProfile(ctx, identity, profile)
		return profile, nil
	}

	key := s.profileCacheKey(identity)
	profile := &domain.CheckersProfile{}
	if err := s.cache.Get(ctx, key, profile); err != nil {
		return nil, err
	}
	if profile.PlayerHash != "" {
		return profile, nil
	}

	stored, err := s.repo.GetProfile(ctx, identity.PlayerHash, identity.RoomHash)
	if stored == nil && err == nil {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	s.cacheProfile(ctx, identity, stored)
	return stored, nil
}

func (s *Service) cacheProfile(ctx context.Context, identity sessionIdentity, profile *domain.CheckersProfile) {
	if profile == nil {
		return
	}
	if err := s.cache.Set(ctx, s.profileCacheKey(identity), profile, profileCacheTTL); err != nil {
		s.logger.Warn("failed to cache checkers profile", zap.Error(err))
	}
}

func deriveIdentity(meta SessionMeta) sessionIdentity {
	sessionID := strings.ToLower(strings.TrimSpace(meta.SessionID))
	room := strings.ToLower(strings.TrimSpace(meta.Room))
	sender := strings.ToLower(strings.TrimSpace(meta.Sender))

	roomHash := hashString(room)
	playerHash := hashString(room + ":" + sender)

	return sessionIdentity{
		SessionID:  sessionID,
		RoomHash:   roomHash,
		PlayerHash: playerHash,
	}
}

func hashString(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// parseMoveInput accepts "b6 a5", "b6-a5", "b6xd4" or "b6a5".
func parseMoveInput(raw string) (int, int, error) {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return 0, 0, ErrInvalidMove
	}
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '-' || r == 'x' || r == '>'
	})
	var fromText, toText string
	switch {
	case len(fields) == 2:
		fromText, toText = fields[0], fields[1]
	case len(fields) == 1 && len(fields[0]) == 4:
		fromText, toText = fields[0][:2], fields[0][2:]
	default:
		return 0, 0, ErrInvalidMove
	}
	from, err := checkers.ParseSquare(fromText)
	if err != nil {
		return 0, 0, ErrInvalidMove
	}
	to, err := checkers.ParseSquare(toText)
	if err != nil {
		return 0, 0, ErrInvalidMove
	}
	return from, to, nil
}

func hasCapture(events []checkers.Event) bool {
	for _, ev := range events {
		if ev.Kind == checkers.EventCapture {
			return true
		}
	}
	return false
}

func applyGameResult(profile *domain.CheckersProfile, identity sessionIdentity, difficulty string, winner checkers.Player, endedAt time.Time) (*domain.CheckersProfile, int) {
	if profile == nil {
		profile = &domain.CheckersProfile{
			PlayerHash: identity.PlayerHash,
			RoomHash:   identity.RoomHash,
			Rating:     defaultPlayerRating,
			CreatedAt:  endedAt,
		}
	}

	prevRating := profile.Rating

	profile.GamesPlayed++
	profile.LastDifficulty = difficulty
	profile.LastPlayedAt = endedAt
	profile.UpdatedAt = endedAt

	resultType := "loss"
	score := 0.0
	if winner == checkers.South {
		profile.Wins++
		resultType = "win"
		score = 1.0
	} else {
		profile.Losses++
	}

	if profile.StreakType == resultType {
		profile.Streak++
	} else {
		profile.Streak = 1
		profile.StreakType = resultType
	}

	botRating := defaultPlayerRating
	if preset, err := checkers.GetPreset(difficulty); err == nil {
		botRating = preset.ApproxRating
	}
	expected := 1 / (1 + math.Pow(10, float64(botRating-profile.Rating)/400))
	newRating := float64(profile.Rating) + kFactor*(score-expected)
	profile.Rating = int(math.Round(newRating))

	return profile, profile.Rating - prevRating
}
