package pvpchan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mossbit/garden-checkers-bot/internal/obslog"
	"github.com/mossbit/garden-checkers-bot/internal/pvpcheckers"
)

type Manager struct {
	rdb   *redis.Client
	store *Store
	pvp   *pvpcheckers.Manager
}

func NewManager(rdb *redis.Client, pvp *pvpcheckers.Manager) *Manager {
	return &Manager{rdb: rdb, store: NewStore(rdb), pvp: pvp}
}

func (m *Manager) Make(ctx context.Context, room, userID, userName string, side SideChoice) (*MakeResult, error) {
	if strings.TrimSpace(room) == "" || strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidArgs
	}
	// a player mid-game in this room may not open a lobby
	if g, _ := m.pvp.GetActiveGameByUserInRoom(ctx, userID, room); g != nil {
		return nil, ErrPlayerBusyInRoom
	}
	// one open lobby per creator
	if codes, _ := m.store.CodesByUser(ctx, userID); len(codes) > 0 {
		for _, c := range codes {
			meta, _ := m.store.LoadMeta(ctx, c)
			if meta != nil && meta.State == StateLobby && meta.CreatorID == userID {
				return nil, ErrCreatorHasLobby
			}
		}
	}
	// generate unique code
	for i := 0; i < 5; i++ {
		c, err := codeGen()
		if err != nil {
			return nil, err
		}
		meta := &ChannelMeta{
			ID:          c,
			State:       StateLobby,
			CreatedAt:   time.Now(),
			CreatorID:   userID,
			CreatorName: userName,
			CreatorRoom: room,
		}
		// optimistic: only claim the code if the key doesn't exist
		ok, err := m.rdb.SetNX(ctx, m.store.keyMeta(c), []byte("{}"), ttlChannel).Result()
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if err := m.store.SaveMeta(ctx, c, meta); err != nil {
			return nil, err
		}
		if err := m.store.AddRoom(ctx, c, room); err != nil {
			return nil, err
		}
		// record creator as first participant so the second join starts the game
		if err := m.store.AddParticipant(ctx, c, userID); err != nil {
			return nil, err
		}
		if err := m.store.AddLobby(ctx, c); err != nil {
			return nil, err
		}
		obslog.L().Info("lobby_make", zap.String("code", c), zap.String("room", room), zap.String("creator_id", userID))
		// side preference is advisory; final assignment happens at Join
		_ = side
		return &MakeResult{Code: c, Meta: meta}, nil
	}
	return nil, fmt.Errorf("failed to allocate channel code")
}

func (m *Manager) Join(ctx context.Context, room, code, userID, userName string, pref SideChoice) (*JoinResult, error) {
	code = strings.TrimSpace(code)
	if room == "" || code == "" || userID == "" {
		return nil, ErrInvalidArgs
	}
	meta, err := m.store.LoadMeta(ctx, code)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, ErrChannelGone
	}
	if meta.State != StateLobby && meta.State != StateActive {
		return nil, ErrChannelActive
	}

	// WATCH participants to prevent race joins
	partKey := m.store.keyParticipants(code)
	err = m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cnt, err := tx.SCard(ctx, partKey).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		if cnt >= 2 {
			return ErrFull
		}
		pipe := tx.TxPipeline()
		pipe.SAdd(ctx, partKey, userID)
		pipe.Expire(ctx, partKey, ttlChannel)
		pipe.SAdd(ctx, m.store.keyRooms(code), room)
		pipe.Expire(ctx, m.store.keyRooms(code), ttlChannel)
		pipe.SAdd(ctx, m.store.keyUserIdx(userID), code)
		pipe.Expire(ctx, m.store.keyUserIdx(userID), ttlChannel)
		_, pErr := pipe.Exec(ctx)
		return pErr
	}, partKey)
	if err != nil {
		obslog.L().Warn("lobby_join_error", zap.String("code", code), zap.String("room", room), zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	// reload meta and decide start
	if err := m.store.AddRoom(ctx, code, room); err != nil {
		return nil, err
	}
	meta, err = m.store.LoadMeta(ctx, code)
	if err != nil {
		return nil, err
	}

	cnt, _ := m.store.ParticipantCount(ctx, code)
	if cnt < 2 || meta.GameID != "" {
		obslog.L().Info("lobby_join", zap.String("code", code), zap.String("room", room), zap.String("user_id", userID), zap.String("reason", "queued"))
		return &JoinResult{Started: false, GameID: meta.GameID, Meta: meta}, nil
	}

	// two participants: pick the joiner as the target and start the game
	members, err := m.rdb.SMembers(ctx, partKey).Result()
	if err != nil {
		return nil, err
	}
	if len(members) < 2 {
		return &JoinResult{Started: false, GameID: meta.GameID, Meta: meta}, nil
	}

	challengerID, challengerName := meta.CreatorID, meta.CreatorName
	targetID, targetName := userID, userName
	if targetID == challengerID {
		for _, mb := range members {
			if mb != challengerID {
				targetID, targetName = mb, mb
				break
			}
		}
	}
	// seat preferences are ignored in lobbies; assignment is always random
	_ = pref

	// no duplicate match per room: check both seats in their own rooms
	if busy, _ := m.pvp.GetActiveGameByUserInRoom(ctx, userID, room); busy != nil {
		return nil, ErrPlayerBusyInRoom
	}
	if busy2, _ := m.pvp.GetActiveGameByUserInRoom(ctx, challengerID, meta.CreatorRoom); busy2 != nil {
		return nil, ErrPlayerBusyInRoom
	}

	g, gerr := m.pvp.CreateGameFromChallenge(ctx, meta.CreatorRoom, room, challengerID, challengerName, targetID, targetName, string(SideRandom))
	if gerr != nil {
		return nil, gerr
	}

	meta.RedID, meta.RedName = g.RedID, g.RedName
	meta.BlackID, meta.BlackName = g.BlackID, g.BlackName
	meta.State = StateActive
	meta.GameID = g.ID
	if err := m.store.SaveMeta(ctx, code, meta); err != nil {
		return nil, err
	}
	// remove from lobby index once game starts
	_ = m.store.RemoveLobby(ctx, code)
	obslog.L().Info("lobby_start_game", zap.String("code", code), zap.String("game_id", g.ID), zap.String("red_id", g.RedID), zap.String("black_id", g.BlackID))
	return &JoinResult{Started: true, GameID: g.ID, Meta: meta}, nil
}

func (m *Manager) Rooms(ctx context.Context, code string) ([]string, error) {
	return m.store.Rooms(ctx, code)
}

// RoomsByUserAndGame finds channel rooms for a user where the channel binds
// the given game.
func (m *Manager) RoomsByUserAndGame(ctx context.Context, userID, gameID string) ([]string, error) {
	codes, err := m.store.CodesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, c := range codes {
		meta, _ := m.store.LoadMeta(ctx, c)
		if meta != nil && meta.GameID == gameID {
			return m.store.Rooms(ctx, c)
		}
	}
	return nil, nil
}

// ListLobby returns waiting channels' metadata for listing.
func (m *Manager) ListLobby(ctx context.Context) ([]*ChannelMeta, error) {
	return m.store.ListLobby(ctx)
}
