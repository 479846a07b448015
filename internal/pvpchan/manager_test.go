package pvpchan

import (
	"context"
	"fmt"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/mossbit/garden-checkers-bot/internal/pvpcheckers"
)

func newTestManagers(t *testing.T) (*Manager, *pvpcheckers.Manager) {
	t.Helper()
	mr := miniredis.RunT(t)

	url := fmt.Sprintf("redis://%s/0", mr.Addr())
	pvpMgr, err := pvpcheckers.NewManager(url)
	if err != nil {
		t.Fatalf("pvpcheckers.NewManager: %v", err)
	}
	t.Cleanup(func() { _ = pvpMgr.Close() })

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewManager(rdb, pvpMgr), pvpMgr
}

func TestMakeJoinStartsGame(t *testing.T) {
	m, pvpMgr := newTestManagers(t)
	ctx := context.Background()

	mk, err := m.Make(ctx, "roomA", "u1", "Alice", SideRandom)
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	if mk.Code == "" {
		t.Fatalf("expected non-empty code")
	}

	jr, err := m.Join(ctx, "roomB", mk.Code, "u2", "Bob", SideRandom)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if !jr.Started || jr.Meta.GameID == "" {
		t.Fatalf("expected game to start on second join: started=%v game=%q", jr.Started, jr.Meta.GameID)
	}

	g, err := pvpMgr.GetActiveGameByUser(ctx, "u1")
	if err != nil || g == nil {
		t.Fatalf("GetActiveGameByUser: %v", err)
	}
	if g.ID != jr.Meta.GameID {
		t.Fatalf("gameID mismatch: %q vs %q", g.ID, jr.Meta.GameID)
	}

	// both players got seats with their display names
	names := map[string]bool{g.RedName: true, g.BlackName: true}
	if !names["Alice"] || !names["Bob"] {
		t.Fatalf("expected Alice and Bob seated, got %q vs %q", g.RedName, g.BlackName)
	}

	rooms, err := m.Rooms(ctx, mk.Code)
	if err != nil {
		t.Fatalf("Rooms: %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d (%v)", len(rooms), rooms)
	}
}

func TestThirdJoinRejected(t *testing.T) {
	m, _ := newTestManagers(t)
	ctx := context.Background()

	mk, err := m.Make(ctx, "roomA", "u1", "u1", SideRandom)
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	if _, err := m.Join(ctx, "roomB", mk.Code, "u2", "u2", SideRandom); err != nil {
		t.Fatalf("Join#1: %v", err)
	}
	if _, err := m.Join(ctx, "roomC", mk.Code, "u3", "u3", SideRandom); err == nil {
		t.Fatalf("expected error on third join")
	}
}

func TestRoomsByUserAndGame(t *testing.T) {
	m, pvpMgr := newTestManagers(t)
	ctx := context.Background()

	mk, err := m.Make(ctx, "roomA", "u1", "u1", SideRandom)
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	jr, err := m.Join(ctx, "roomB", mk.Code, "u2", "u2", SideRandom)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if !jr.Started {
		t.Fatalf("game not started")
	}

	g, err := pvpMgr.GetActiveGameByUser(ctx, "u2")
	if err != nil || g == nil {
		t.Fatalf("GetActiveGameByUser: %v", err)
	}
	rooms, err := m.RoomsByUserAndGame(ctx, "u2", g.ID)
	if err != nil {
		t.Fatalf("RoomsByUserAndGame: %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d (%v)", len(rooms), rooms)
	}
}

func TestMakeBlockedIfActiveGameInSameRoom(t *testing.T) {
	m, pvpMgr := newTestManagers(t)
	ctx := context.Background()

	if _, err := pvpMgr.CreateGameFromChallenge(ctx, "roomA", "roomB", "u1", "u1", "u2", "u2", "random"); err != nil {
		t.Fatalf("CreateGameFromChallenge: %v", err)
	}
	if _, err := m.Make(ctx, "roomA", "u1", "u1", SideRandom); err == nil {
		t.Fatalf("expected rejection when user has active game in same room")
	}
}

func TestJoinBlockedIfUserActiveInSameRoom(t *testing.T) {
	m, pvpMgr := newTestManagers(t)
	ctx := context.Background()

	if _, err := pvpMgr.CreateGameFromChallenge(ctx, "roomX", "roomB", "x1", "x1", "u2", "u2", "random"); err != nil {
		t.Fatalf("CreateGameFromChallenge: %v", err)
	}

	mk, err := m.Make(ctx, "roomA", "u1", "u1", SideRandom)
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	if _, err := m.Join(ctx, "roomB", mk.Code, "u2", "u2", SideRandom); err == nil {
		t.Fatalf("expected rejection when joiner has active game in same room")
	}
}

func TestMakeRestrictedDuplicateCreator(t *testing.T) {
	m, _ := newTestManagers(t)
	ctx := context.Background()

	if _, err := m.Make(ctx, "roomA", "u1", "u1", SideRandom); err != nil {
		t.Fatalf("first Make: %v", err)
	}
	if _, err := m.Make(ctx, "roomB", "u1", "u1", SideRandom); err != ErrCreatorHasLobby {
		t.Fatalf("expected ErrCreatorHasLobby, got %v", err)
	}
}

func TestListLobbyDropsStartedChannels(t *testing.T) {
	m, _ := newTestManagers(t)
	ctx := context.Background()

	mk, err := m.Make(ctx, "roomA", "u1", "u1", SideRandom)
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	waiting, err := m.ListLobby(ctx)
	if err != nil || len(waiting) != 1 || waiting[0].ID != mk.Code {
		t.Fatalf("expected one waiting lobby: %v err=%v", waiting, err)
	}

	if _, err := m.Join(ctx, "roomB", mk.Code, "u2", "u2", SideRandom); err != nil {
		t.Fatalf("Join: %v", err)
	}
	waiting, err = m.ListLobby(ctx)
	if err != nil || len(waiting) != 0 {
		t.Fatalf("started channel should leave the lobby list: %v err=%v", waiting, err)
	}
}
