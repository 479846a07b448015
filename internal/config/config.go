package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type AppConfig struct {
	RelayBaseURL string
	RelayWSURL   string

	XUserID    string
	XUserEmail string
	XSessionID string

	BotPrefix string

	RedisURL    string
	DatabaseURL string

	AllowRandomMatch   bool
	MaxConcurrentGames int

	AllowedRooms []string

	CheckersDefaultDifficulty string
	CheckersSessionTTLSec     int
	CheckersHistoryLimit      int
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		AllowRandomMatch:          false,
		MaxConcurrentGames:        200,
		CheckersDefaultDifficulty: "medium",
		CheckersSessionTTLSec:     3600,
		CheckersHistoryLimit:      10,
	}

	cfg.RelayBaseURL = strings.TrimSpace(os.Getenv("RELAY_BASE_URL"))
	cfg.RelayWSURL = strings.TrimSpace(os.Getenv("RELAY_WS_URL"))
	cfg.BotPrefix = strings.TrimSpace(os.Getenv("BOT_PREFIX"))
	cfg.XUserID = strings.TrimSpace(os.Getenv("X_USER_ID"))
	cfg.XUserEmail = strings.TrimSpace(os.Getenv("X_USER_EMAIL"))
	cfg.XSessionID = strings.TrimSpace(os.Getenv("X_SESSION_ID"))

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if v := strings.TrimSpace(os.Getenv("ALLOWED_ROOMS")); v != "" {
		parts := strings.Split(v, ",")
		for _, p := range parts {
			s := strings.TrimSpace(p)
			if s != "" {
				cfg.AllowedRooms = append(cfg.AllowedRooms, s)
			}
		}
	}

	if v := strings.TrimSpace(os.Getenv("ALLOW_RANDOM_MATCH")); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			cfg.AllowRandomMatch = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("MAX_CONCURRENT_GAMES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxConcurrentGames = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("CHECKERS_DEFAULT_DIFFICULTY")); v != "" {
		cfg.CheckersDefaultDifficulty = v
	}
	if v := strings.TrimSpace(os.Getenv("CHECKERS_SESSION_TTL")); v != "" { // seconds
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CheckersSessionTTLSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHECKERS_HISTORY_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CheckersHistoryLimit = n
		}
	}

	if cfg.RelayBaseURL == "" {
		return nil, errors.New("RELAY_BASE_URL is required")
	}
	if cfg.RelayWSURL == "" {
		return nil, errors.New("RELAY_WS_URL is required")
	}
	if cfg.BotPrefix == "" {
		return nil, errors.New("BOT_PREFIX is required")
	}

	return cfg, nil
}
