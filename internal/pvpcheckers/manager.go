package pvpcheckers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mossbit/garden-checkers-bot/internal/checkers"
	"github.com/mossbit/garden-checkers-bot/internal/obslog"
	svccheckers "github.com/mossbit/garden-checkers-bot/internal/service/checkers"
)

const gameTTL = 24 * time.Hour

// Flow-control sentinels for the Watch bodies: both map to user-facing text
// rather than hard errors.
var (
	errNotYourTurn = errors.New("not_your_turn")
	errIllegalMove = errors.New("illegal_move")
)

type Manager struct {
	rdb      *redis.Client
	renderer svccheckers.BoardRenderer
	repo     *Repository
}

func NewManager(redisURL string) (*Manager, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for PvP manager")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Manager{rdb: rdb, renderer: svccheckers.NewSVGBoardRenderer()}, nil
}

func (m *Manager) Close() error {
	if m == nil || m.rdb == nil {
		return nil
	}
	return m.rdb.Close()
}

// AttachRepository wires a database repository for persisting PvP results.
func (m *Manager) AttachRepository(r *Repository) {
	if m != nil {
		m.repo = r
	}
}

// CreateGameFromChallenge creates a PvP game from an accepted challenge.
// sideChoice assigns the challenger's seat: "red", "black", or random.
func (m *Manager) CreateGameFromChallenge(ctx context.Context, originRoom, resolveRoom, challengerID, challengerName, targetID, targetName, sideChoice string) (*Game, error) {
	if m == nil || m.rdb == nil {
		return nil, fmt.Errorf("pvp manager not initialized")
	}
	if challengerID == "" || targetID == "" {
		return nil, fmt.Errorf("invalid participants")
	}

	// assign seats; red moves first
	redID, redName := challengerID, challengerName
	blackID, blackName := targetID, targetName
	switch strings.ToLower(strings.TrimSpace(sideChoice)) {
	case "red", "r":
		// challenger already red
	case "black", "b":
		redID, redName, blackID, blackName = targetID, targetName, challengerID, challengerName
	default: // random using crypto/rand
		if n, _ := rand.Int(rand.Reader, big.NewInt(2)); n != nil && n.Int64() == 0 {
			redID, redName, blackID, blackName = targetID, targetName, challengerID, challengerName
		}
	}

	g := &Game{
		ID:          fmt.Sprintf("pvp-%d-%s", time.Now().UnixNano(), secureRandSuffix(3)),
		Board:       checkers.NewBoard("", ""),
		Turn:        Red,
		Forced:      -1,
		Moves:       []string{},
		Status:      StatusActive,
		RedID:       strings.TrimSpace(redID),
		RedName:     strings.TrimSpace(redName),
		BlackID:     strings.TrimSpace(blackID),
		BlackName:   strings.TrimSpace(blackName),
		OriginRoom:  strings.TrimSpace(originRoom),
		ResolveRoom: strings.TrimSpace(resolveRoom),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := m.save(ctx, g); err != nil {
		return nil, err
	}
	obslog.L().Info("pvp_game_create",
		zap.String("game_id", g.ID),
		zap.String("origin_room", g.OriginRoom),
		zap.String("resolve_room", g.ResolveRoom),
		zap.String("red_id", g.RedID),
		zap.String("black_id", g.BlackID),
	)
	if err := m.indexParticipants(ctx, g.ID, g.RedID, g.BlackID); err != nil {
		return nil, err
	}
	return g, nil
}

// GetActiveGameByUser returns the most recently updated active game for a user.
func (m *Manager) GetActiveGameByUser(ctx context.Context, userID string) (*Game, error) {
	return m.findActive(ctx, userID, "")
}

// GetActiveGameByUserInRoom narrows the lookup to games whose origin or
// resolve room matches. Used to keep simultaneous matches in different rooms
// from shadowing each other.
func (m *Manager) GetActiveGameByUserInRoom(ctx context.Context, userID, room string) (*Game, error) {
	room = strings.TrimSpace(room)
	if room == "" {
		return nil, nil
	}
	return m.findActive(ctx, userID, room)
}

func (m *Manager) findActive(ctx context.Context, userID, room string) (*Game, error) {
	if m == nil || m.rdb == nil {
		return nil, fmt.Errorf("pvp manager not initialized")
	}
	if strings.TrimSpace(userID) == "" {
		return nil, nil
	}
	ids, err := m.rdb.SMembers(ctx, idxUserKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	var list []*Game
	for _, id := range ids {
		g, gerr := m.get(ctx, id)
		if gerr != nil || g == nil || g.Status != StatusActive {
			continue
		}
		if room != "" && g.OriginRoom != room && g.ResolveRoom != room {
			continue
		}
		list = append(list, g)
	}
	if len(list) == 0 {
		return nil, nil
	}
	sort.Slice(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
	return list[0], nil
}

// PlayMove applies a move for the requesting user on their active game.
func (m *Manager) PlayMove(ctx context.Context, userID, moveStr string) (*Game, string, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, "", fmt.Errorf("invalid user")
	}
	g, err := m.GetActiveGameByUser(ctx, userID)
	if err != nil || g == nil {
		return nil, "", err
	}
	return m.playOn(ctx, g, userID, "", moveStr)
}

// PlayMoveByRoom applies a move but restricts target selection to the user's
// active game in the given room.
func (m *Manager) PlayMoveByRoom(ctx context.Context, userID, roomID, moveStr string) (*Game, string, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(roomID) == "" {
		return nil, "", fmt.Errorf("invalid parameters")
	}
	g, err := m.GetActiveGameByUserInRoom(ctx, userID, roomID)
	if err != nil || g == nil {
		return nil, "", err
	}
	return m.playOn(ctx, g, userID, strings.TrimSpace(roomID), moveStr)
}

// playOn runs the optimistic-concurrency move transaction against a located
// game. roomScope, when non-empty, must still match when the game is re-read
// inside the transaction.
func (m *Manager) playOn(ctx context.Context, g *Game, userID, roomScope, moveStr string) (*Game, string, error) {
	gameK := gameKey(g.ID)
	oldLen := len(g.Moves)
	var resultText string

	err := m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, gameK).Bytes()
		if err == redis.Nil {
			return fmt.Errorf("game not found")
		}
		if err != nil {
			return err
		}
		var cur Game
		if jerr := json.Unmarshal(raw, &cur); jerr != nil {
			return jerr
		}
		if cur.Status != StatusActive {
			return redis.TxFailedErr
		}
		// Ensure no concurrent move applied
		if len(cur.Moves) != oldLen {
			return redis.TxFailedErr
		}
		if roomScope != "" && cur.OriginRoom != roomScope && cur.ResolveRoom != roomScope {
			return fmt.Errorf("game not in room")
		}

		side := cur.sideOfUser(userID)
		if side == "" {
			return fmt.Errorf("user not in game")
		}
		if cur.Turn != side {
			return errNotYourTurn
		}

		text, aerr := applyTurn(&cur, side, moveStr)
		if aerr != nil {
			resultText = text
			return aerr
		}
		cur.UpdatedAt = time.Now()

		pipe := tx.TxPipeline()
		newRaw, _ := json.Marshal(&cur)
		pipe.Set(ctx, gameK, newRaw, gameTTL)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}

		g = &cur
		resultText = fmt.Sprintf("%s: %s", g.nameOfSide(side), text)
		return nil
	}, gameK)

	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return g, "A simultaneous command was detected and this one was dropped. Please try again.", nil
		}
		if errors.Is(err, errIllegalMove) {
			if strings.TrimSpace(resultText) == "" {
				resultText = "That move is not legal."
			}
			return g, resultText, nil
		}
		if errors.Is(err, errNotYourTurn) {
			return g, "It's your opponent's turn.", nil
		}
		return nil, "", err
	}

	obslog.L().Info("pvp_move",
		zap.String("game_id", g.ID),
		zap.String("user_id", strings.TrimSpace(userID)),
		zap.String("room_scope", roomScope),
		zap.String("turn", string(g.Turn)),
		zap.String("last_move", lastMove(g)),
		zap.String("status", string(g.Status)),
		zap.String("outcome", g.Outcome),
	)
	if g.Status == StatusFinished {
		_ = m.persistIfFinal(ctx, g, g.FinishMethod())
	}
	return g, resultText, nil
}

// applyTurn validates and executes one hop for side on cur, advancing turn,
// forced-continuation pin, capture tallies, and terminal state. On an illegal
// move it returns user-facing text alongside errIllegalMove.
func applyTurn(cur *Game, side Side, moveStr string) (string, error) {
	from, to, ok := splitMove(moveStr)
	if !ok {
		return "Enter a move like b6-a5 or b6xd4.", errIllegalMove
	}
	player := side.Player()
	if cur.Board[from].Owner != player {
		return "That square doesn't hold one of your pieces.", errIllegalMove
	}
	if cur.Forced >= 0 {
		if from != cur.Forced {
			return fmt.Sprintf("You must keep capturing with the piece on %s.", checkers.SquareName(cur.Forced)), errIllegalMove
		}
		if !containsIdx(cur.Board.Captures(from), to) {
			return "Only a further capture is allowed right now.", errIllegalMove
		}
	}
	captured, _, ok := cur.Board.Move(from, to)
	if !ok {
		return "That move is not legal.", errIllegalMove
	}
	if captured {
		if side == Red {
			cur.RedCaptures++
		} else {
			cur.BlackCaptures++
		}
	}
	cur.Moves = append(cur.Moves, checkers.MoveName(from, to, captured))

	opponent := player.Opponent()
	if cur.Board.Count(opponent) == 0 {
		cur.Forced = -1
		finishGame(cur, side)
		return checkers.MoveName(from, to, captured), nil
	}
	// A capturing piece keeps capturing if able; the turn does not pass.
	if captured && len(cur.Board.Captures(to)) > 0 {
		cur.Forced = to
		return checkers.MoveName(from, to, captured), nil
	}
	cur.Forced = -1
	if !cur.Board.HasAnyMove(opponent) {
		finishGame(cur, side)
		return checkers.MoveName(from, to, captured), nil
	}
	cur.Turn = side.Opposite()
	return checkers.MoveName(from, to, captured), nil
}

func finishGame(cur *Game, winner Side) {
	cur.Status = StatusFinished
	cur.Outcome = string(winner)
	if winner == Red {
		cur.Winner = cur.RedID
	} else {
		cur.Winner = cur.BlackID
	}
}

// Resign concedes the user's active game.
func (m *Manager) Resign(ctx context.Context, userID string) (*Game, string, error) {
	g, err := m.GetActiveGameByUser(ctx, userID)
	if err != nil || g == nil {
		return nil, "", err
	}
	return m.resignOn(ctx, g, userID, "")
}

// ResignByRoom resigns the user's active game limited to a specific room scope.
func (m *Manager) ResignByRoom(ctx context.Context, userID, roomID string) (*Game, string, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(roomID) == "" {
		return nil, "", fmt.Errorf("invalid parameters")
	}
	g, err := m.GetActiveGameByUserInRoom(ctx, userID, roomID)
	if err != nil || g == nil {
		return nil, "", err
	}
	return m.resignOn(ctx, g, userID, strings.TrimSpace(roomID))
}

func (m *Manager) resignOn(ctx context.Context, g *Game, userID, roomScope string) (*Game, string, error) {
	gameK := gameKey(g.ID)
	err := m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, gameK).Bytes()
		if err == redis.Nil {
			return fmt.Errorf("game not found")
		}
		if err != nil {
			return err
		}
		var cur Game
		if jerr := json.Unmarshal(raw, &cur); jerr != nil {
			return jerr
		}
		if cur.Status != StatusActive {
			return redis.TxFailedErr
		}
		if roomScope != "" && cur.OriginRoom != roomScope && cur.ResolveRoom != roomScope {
			return fmt.Errorf("game not in room")
		}
		side := cur.sideOfUser(userID)
		if side == "" {
			return fmt.Errorf("user not in game")
		}
		cur.Status = StatusResigned
		cur.Winner = opponentID(&cur, userID)
		cur.Outcome = string(side.Opposite())
		cur.UpdatedAt = time.Now()
		pipe := tx.TxPipeline()
		newRaw, _ := json.Marshal(&cur)
		pipe.Set(ctx, gameK, newRaw, gameTTL)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
		g = &cur
		return nil
	}, gameK)
	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return nil, "", fmt.Errorf("game no longer active")
		}
		return nil, "", err
	}
	obslog.L().Info("pvp_resign",
		zap.String("game_id", g.ID),
		zap.String("resigner", strings.TrimSpace(userID)),
		zap.String("room_scope", roomScope),
		zap.String("winner", g.Winner),
	)
	_ = m.persistIfFinal(ctx, g, "resignation")
	return g, "resigned", nil
}

// Helpers
func opponentID(g *Game, userID string) string {
	if g.RedID == userID {
		return g.BlackID
	}
	if g.BlackID == userID {
		return g.RedID
	}
	return ""
}

func lastMove(g *Game) string {
	if n := len(g.Moves); n > 0 {
		return g.Moves[n-1]
	}
	return ""
}

// splitMove parses "b6 a5", "b6-a5", "b6xd4" or "b6a5" into board indexes.
func splitMove(input string) (from, to int, ok bool) {
	fields := strings.FieldsFunc(strings.TrimSpace(input), func(r rune) bool {
		return r == ' ' || r == '-' || r == 'x' || r == '>'
	})
	if len(fields) == 1 && len(fields[0]) == 4 {
		fields = []string{fields[0][:2], fields[0][2:]}
	}
	if len(fields) != 2 {
		return 0, 0, false
	}
	f, err := checkers.ParseSquare(fields[0])
	if err != nil {
		return 0, 0, false
	}
	t, err := checkers.ParseSquare(fields[1])
	if err != nil {
		return 0, 0, false
	}
	return f, t, true
}

func containsIdx(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// Persistence
func (m *Manager) save(ctx context.Context, g *Game) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return err
	}
	return m.rdb.Set(ctx, gameKey(g.ID), raw, gameTTL).Err()
}

func (m *Manager) get(ctx context.Context, id string) (*Game, error) {
	raw, err := m.rdb.Get(ctx, gameKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var g Game
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// LoadGame returns the game by ID for status checks.
func (m *Manager) LoadGame(ctx context.Context, id string) (*Game, error) {
	return m.get(ctx, id)
}

func (m *Manager) indexParticipants(ctx context.Context, id string, red, black string) error {
	for _, uid := range []string{red, black} {
		if strings.TrimSpace(uid) == "" {
			continue
		}
		key := idxUserKey(uid)
		if err := m.rdb.SAdd(ctx, key, id).Err(); err != nil {
			return err
		}
		// refresh index TTL alongside the game TTL so sets don't accumulate
		_ = m.rdb.Expire(ctx, key, gameTTL).Err()
	}
	return nil
}

func gameKey(id string) string        { return "pvp:game:" + strings.TrimSpace(id) }
func idxUserKey(userID string) string { return "pvp:index:user:" + strings.TrimSpace(userID) }

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}

// ParseRedisURLForChan returns address, password, and db extracted from
// REDIS_URL, for wiring the channel manager without exposing redis.Options.
func ParseRedisURLForChan(raw string) (addr, password string, db int, err error) {
	u, e := url.Parse(raw)
	if e != nil {
		err = e
		return
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		err = fmt.Errorf("unsupported scheme: %s", u.Scheme)
		return
	}
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, e2 := strconv.Atoi(p); e2 == nil {
			db = n
		}
	}
	password, _ = u.User.Password()
	addr = u.Host
	return
}

// secureRandSuffix returns a hex string of n bytes length; falls back to a
// timestamp slice when crypto fails.
func secureRandSuffix(n int) string {
	if n <= 0 {
		n = 3
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err == nil {
		return hex.EncodeToString(b)
	}
	return fmt.Sprintf("%x", time.Now().UnixNano()%1_000_000)
}

// persistIfFinal saves the final game result to the repository if attached.
func (m *Manager) persistIfFinal(ctx context.Context, g *Game, method string) error {
	if m == nil || m.repo == nil || g == nil {
		return nil
	}
	if g.Status != StatusFinished && g.Status != StatusResigned {
		return nil
	}
	if err := m.repo.SaveResult(ctx, g, method); err != nil {
		obslog.L().Error("pvp_result_persist_error", zap.String("game_id", g.ID), zap.String("outcome", g.Outcome), zap.Error(err))
		return err
	}
	obslog.L().Info("pvp_result_persist", zap.String("game_id", g.ID), zap.String("outcome", g.Outcome), zap.String("method", method))
	return nil
}
