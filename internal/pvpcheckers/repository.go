package pvpcheckers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveResult upserts a final PvP game result into the database.
func (r *Repository) SaveResult(ctx context.Context, g *Game, method string) error {
	if r == nil || r.db == nil || g == nil {
		return nil
	}

	result := strings.TrimSpace(g.Outcome)
	transcript := buildTranscript(g, result, method)
	movesRaw, _ := json.Marshal(g.Moves)
	duration := g.UpdatedAt.Sub(g.CreatedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}

	q := `INSERT INTO pvp_checkers_games (
	    game_id, red_id, red_name, black_id, black_name,
	    origin_room, resolve_room,
	    result, result_method, moves, transcript,
	    red_captures, black_captures,
	    started_at, ended_at, duration_ms
	  ) VALUES (
	    $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16
	  ) ON CONFLICT (game_id) DO UPDATE SET
	    red_id=EXCLUDED.red_id,
	    red_name=EXCLUDED.red_name,
	    black_id=EXCLUDED.black_id,
	    black_name=EXCLUDED.black_name,
	    origin_room=EXCLUDED.origin_room,
	    resolve_room=EXCLUDED.resolve_room,
	    result=EXCLUDED.result,
	    result_method=EXCLUDED.result_method,
	    moves=EXCLUDED.moves,
	    transcript=EXCLUDED.transcript,
	    red_captures=EXCLUDED.red_captures,
	    black_captures=EXCLUDED.black_captures,
	    started_at=EXCLUDED.started_at,
	    ended_at=EXCLUDED.ended_at,
	    duration_ms=EXCLUDED.duration_ms`

	_, err := r.db.ExecContext(ctx, q,
		g.ID,
		g.RedID, g.RedName,
		g.BlackID, g.BlackName,
		g.OriginRoom, g.ResolveRoom,
		result, strings.TrimSpace(method), string(movesRaw), transcript,
		g.RedCaptures, g.BlackCaptures,
		g.CreatedAt, g.UpdatedAt, duration,
	)
	return err
}

// buildTranscript renders a human-readable move record: one numbered line per
// red/black move pair, followed by the result.
func buildTranscript(g *Game, result, method string) string {
	if g == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s (red) vs %s (black)\n", sanitizeName(g.RedName), sanitizeName(g.BlackName)))
	for i := 0; i < len(g.Moves); i += 2 {
		b.WriteString(fmt.Sprintf("%d. %s", i/2+1, g.Moves[i]))
		if i+1 < len(g.Moves) {
			b.WriteString(" ")
			b.WriteString(g.Moves[i+1])
		}
		b.WriteString("\n")
	}
	if result != "" {
		b.WriteString(result + " wins")
		if strings.TrimSpace(method) != "" {
			b.WriteString(" by " + strings.ToLower(strings.TrimSpace(method)))
		}
	}
	return b.String()
}

func sanitizeName(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
