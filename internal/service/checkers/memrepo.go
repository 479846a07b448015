package checkers

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/mossbit/garden-checkers-bot/internal/domain"
)

// memrepo is a development-only in-memory repository implementation used when no DB is configured.
type memrepo struct {
	mu sync.RWMutex

	nextID int64

	gamesByID    map[int64]*domain.CheckersGame
	gamesByUser  map[string][]*domain.CheckersGame // playerHash -> slice (append, latest last)
	gamesByIndex map[string]*domain.CheckersGame   // sessionUUID|playerHash -> game

	profiles map[string]*domain.CheckersProfile // playerHash|roomHash -> profile
}

func NewMemoryRepository() Repository {
	return &memrepo{
		gamesByID:    make(map[int64]*domain.CheckersGame),
		gamesByUser:  make(map[string][]*domain.CheckersGame),
		gamesByIndex: make(map[string]*domain.CheckersGame),
		profiles:     make(map[string]*domain.CheckersProfile),
	}
}

func (m *memrepo) InsertGame(ctx context.Context, game *domain.CheckersGame) (int64, error) {
	if game == nil {
		return 0, ErrDuplicateGame
	}

	key := m.sessionKey(game.SessionUUID, game.PlayerHash)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.gamesByIndex[key]; exists {
		return 0, ErrDuplicateGame
	}

	m.nextID++
	id := m.nextID
	copy := *game
	copy.ID = id

	m.gamesByID[id] = &copy
	m.gamesByIndex[key] = &copy
	m.gamesByUser[game.PlayerHash] = append(m.gamesByUser[game.PlayerHash], &copy)

	return id, nil
}

func (m *memrepo) GetRecentGames(ctx context.Context, playerHash string, limit int) ([]*domain.CheckersGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.gamesByUser[playerHash]
	if len(list) == 0 {
		return []*domain.CheckersGame{}, nil
	}
	items := append([]*domain.CheckersGame(nil), list...)
	sort.Slice(items, func(i, j int) bool {
		if !items[i].EndedAt.Equal(items[j].EndedAt) {
			return items[i].EndedAt.After(items[j].EndedAt)
		}
		return items[i].ID > items[j].ID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *memrepo) GetGame(ctx context.Context, id int64, playerHash string) (*domain.CheckersGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.gamesByID[id]
	if !ok || g == nil {
		return nil, nil
	}
	if g.PlayerHash != playerHash {
		return nil, nil
	}
	copy := *g
	return &copy, nil
}

func (m *memrepo) GetGameBySession(ctx context.Context, sessionUUID string, playerHash string) (*domain.CheckersGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.gamesByIndex[m.sessionKey(sessionUUID, playerHash)]; ok && g != nil {
		copy := *g
		return &copy, nil
	}
	return nil, nil
}

func (m *memrepo) GetProfile(ctx context.Context, playerHash string, roomHash string) (*domain.CheckersProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.profiles[m.profileKey(playerHash, roomHash)]; ok && p != nil {
		copy := *p
		return &copy, nil
	}
	return nil, nil
}

func (m *memrepo) UpsertProfile(ctx context.Context, profile *domain.CheckersProfile) error {
	if profile == nil {
		return nil
	}
	key := m.profileKey(profile.PlayerHash, profile.RoomHash)
	copy := *profile
	m.mu.Lock()
	m.profiles[key] = &copy
	m.mu.Unlock()
	return nil
}

func (m *memrepo) sessionKey(sessionUUID, playerHash string) string {
	return strings.TrimSpace(sessionUUID) + "|" + strings.TrimSpace(playerHash)
}

func (m *memrepo) profileKey(playerHash, roomHash string) string {
	return strings.TrimSpace(playerHash) + "|" + strings.TrimSpace(roomHash)
}
