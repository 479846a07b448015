package gamebuilder

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/mossbit/garden-checkers-bot/internal/config"
	"github.com/mossbit/garden-checkers-bot/internal/service/cache"
	svccheckers "github.com/mossbit/garden-checkers-bot/internal/service/checkers"
)

type Deps struct {
	Service *svccheckers.Service
	Cache   *cache.CacheService
	Repo    svccheckers.Repository
}

// New wires the checkers service together: Redis-backed session cache
// (required) and a Postgres repository, with an in-memory fallback when no
// DATABASE_URL is configured.
func New(cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL is required for checkers sessions")
	}
	cconf, err := parseRedisURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	cacheSvc, err := cache.NewCacheService(*cconf, logger)
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}

	var repo svccheckers.Repository
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(16)
		db.SetMaxIdleConns(8)
		db.SetConnMaxLifetime(30 * time.Minute)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		repo = svccheckers.NewRepository(db)
	} else {
		logger.Warn("DATABASE_URL not set, game history kept in memory only")
		repo = svccheckers.NewMemoryRepository()
	}

	svcCfg := svccheckers.Config{
		DefaultDifficulty: cfg.CheckersDefaultDifficulty,
		SessionTTL:        time.Duration(cfg.CheckersSessionTTLSec) * time.Second,
		HistoryLimit:      cfg.CheckersHistoryLimit,
		AllowedRooms:      append([]string(nil), cfg.AllowedRooms...),
	}

	service, err := svccheckers.NewService(cacheSvc, repo, svccheckers.NewSVGBoardRenderer(), svcCfg, logger)
	if err != nil {
		return nil, err
	}

	return &Deps{Service: service, Cache: cacheSvc, Repo: repo}, nil
}

func parseRedisURL(raw string) (*cache.CacheConfig, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	host := u.Hostname()
	portStr := u.Port()
	if portStr == "" {
		portStr = "6379"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &cache.CacheConfig{Host: host, Port: port, Password: pass, DB: db}, nil
}
