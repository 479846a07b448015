package checkers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mossbit/garden-checkers-bot/internal/domain"
)

var ErrDuplicateGame = errors.New("checkers game already exists")

type Repository interface {
	InsertGame(ctx context.Context, game *domain.CheckersGame) (int64, error)
	GetRecentGames(ctx context.Context, playerHash string, limit int) ([]*domain.CheckersGame, error)
	GetGame(ctx context.Context, id int64, playerHash string) (*domain.CheckersGame, error)
	GetGameBySession(ctx context.Context, sessionUUID string, playerHash string) (*domain.CheckersGame, error)
	GetProfile(ctx context.Context, playerHash string, roomHash string) (*domain.CheckersProfile, error)
	UpsertProfile(ctx context.Context, profile *domain.CheckersProfile) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) InsertGame(ctx context.Context, game *domain.CheckersGame) (int64, error) {
	if game == nil {
		return 0, fmt.Errorf("nil checkers game payload")
	}

	moves, err := json.Marshal(game.Moves)
	if err != nil {
		return 0, fmt.Errorf("marshal moves: %w", err)
	}

	const query = `
		INSERT INTO checkers_games (
			session_uuid,
			player_hash,
			room_hash,
			difficulty,
			result,
			result_method,
			moves,
			captures_for,
			captures_against,
			started_at,
			ended_at,
			duration_ms
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9, $10, $11, $12)
		ON CONFLICT (session_uuid) DO NOTHING
		RETURNING id`

	var id sql.NullInt64
	err = r.db.QueryRowContext(
		ctx,
		query,
		game.SessionUUID,
		game.PlayerHash,
		game.RoomHash,
		game.Difficulty,
		game.Result,
		game.ResultMethod,
		moves,
		game.CapturesFor,
		game.CapturesAgn,
		game.StartedAt,
		game.EndedAt,
		game.Duration.Milliseconds(),
	).Scan(&id)
	if err == sql.ErrNoRows || (err == nil && !id.Valid) {
		return 0, ErrDuplicateGame
	}
	if err != nil {
		return 0, fmt.Errorf("insert checkers game: %w", err)
	}
	return id.Int64, nil
}

const gameColumns = `
		id,
		session_uuid,
		player_hash,
		room_hash,
		difficulty,
		result,
		result_method,
		moves,
		captures_for,
		captures_against,
		started_at,
		ended_at,
		duration_ms`

func scanGame(row interface{ Scan(...any) error }) (*domain.CheckersGame, error) {
	var (
		game       domain.CheckersGame
		movesJSON  []byte
		durationMS sql.NullInt64
	)
	if err := row.Scan(
		&game.ID,
		&game.SessionUUID,
		&game.PlayerHash,
		&game.RoomHash,
		&game.Difficulty,
		&game.Result,
		&game.ResultMethod,
		&movesJSON,
		&game.CapturesFor,
		&game.CapturesAgn,
		&game.StartedAt,
		&game.EndedAt,
		&durationMS,
	); err != nil {
		return nil, err
	}
	if durationMS.Valid {
		game.Duration = time.Duration(durationMS.Int64) * time.Millisecond
	}
	if err := json.Unmarshal(movesJSON, &game.Moves); err != nil {
		return nil, fmt.Errorf("unmarshal moves: %w", err)
	}
	return &game, nil
}

func (r *repository) GetRecentGames(ctx context.Context, playerHash string, limit int) ([]*domain.CheckersGame, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT` + gameColumns + `
		FROM checkers_games
		WHERE player_hash = $1
		ORDER BY ended_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, playerHash, limit)
	if err != nil {
		return nil, fmt.Errorf("select checkers games: %w", err)
	}
	defer rows.Close()

	games := make([]*domain.CheckersGame, 0, limit)
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan checkers game: %w", err)
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

func (r *repository) GetGame(ctx context.Context, id int64, playerHash string) (*domain.CheckersGame, error) {
	query := `
		SELECT` + gameColumns + `
		FROM checkers_games
		WHERE id = $1 AND player_hash = $2`

	game, err := scanGame(r.db.QueryRowContext(ctx, query, id, playerHash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select checkers game: %w", err)
	}
	return game, nil
}

func (r *repository) GetGameBySession(ctx context.Context, sessionUUID string, playerHash string) (*domain.CheckersGame, error) {
	query := `
		SELECT` + gameColumns + `
		FROM checkers_games
		WHERE session_uuid = $1 AND player_hash = $2
		ORDER BY ended_at DESC
		LIMIT 1`

	game, err := scanGame(r.db.QueryRowContext(ctx, query, sessionUUID, playerHash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select checkers game by session: %w", err)
	}
	return game, nil
}

func (r *repository) GetProfile(ctx context.Context, playerHash string, roomHash string) (*domain.CheckersProfile, error) {
	const query = `
		SELECT
			player_hash,
			room_hash,
			preferred_difficulty,
			rating,
			games_played,
			wins,
			losses,
			streak,
			streak_type,
			last_difficulty,
			last_played_at,
			updated_at,
			created_at
		FROM checkers_profiles
		WHERE player_hash = $1 AND room_hash = $2
		LIMIT 1`

	var profile domain.CheckersProfile
	err := r.db.QueryRowContext(ctx, query, playerHash, roomHash).Scan(
		&profile.PlayerHash,
		&profile.RoomHash,
		&profile.PreferredDifficulty,
		&profile.Rating,
		&profile.GamesPlayed,
		&profile.Wins,
		&profile.Losses,
		&profile.Streak,
		&profile.StreakType,
		&profile.LastDifficulty,
		&profile.LastPlayedAt,
		&profile.UpdatedAt,
		&profile.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select checkers profile: %w", err)
	}
	return &profile, nil
}

func (r *repository) UpsertProfile(ctx context.Context, profile *domain.CheckersProfile) error {
	if profile == nil {
		return fmt.Errorf("nil checkers profile payload")
	}
	const query = `
		INSERT INTO checkers_profiles (
			player_hash,
			room_hash,
			preferred_difficulty,
			rating,
			games_played,
			wins,
			losses,
			streak,
			streak_type,
			last_difficulty,
			last_played_at,
			updated_at,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		ON CONFLICT (player_hash, room_hash)
		DO UPDATE SET
			preferred_difficulty = EXCLUDED.preferred_difficulty,
			rating = EXCLUDED.rating,
			games_played = EXCLUDED.games_played,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			streak = EXCLUDED.streak,
			streak_type = EXCLUDED.streak_type,
			last_difficulty = EXCLUDED.last_difficulty,
			last_played_at = EXCLUDED.last_played_at,
			updated_at = NOW()`

	_, err := r.db.ExecContext(
		ctx,
		query,
		profile.PlayerHash,
		profile.RoomHash,
		profile.PreferredDifficulty,
		profile.Rating,
		profile.GamesPlayed,
		profile.Wins,
		profile.Losses,
		profile.Streak,
		profile.StreakType,
		profile.LastDifficulty,
		profile.LastPlayedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert checkers profile: %w", err)
	}
	return nil
}
