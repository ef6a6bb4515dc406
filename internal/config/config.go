package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	"unfc-tracker/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

var ErrMissingAPIKey = errors.New("OSU_API_KEY is required: create a legacy API key at https://osu.ppy.sh/p/api and export it or put it in .env")

type Config struct {
	OsuAPIKey     string
	OsuAPIBaseURL string
	DBPath        string
	ServerPort    string
	LogLevel      string

	Timezone   *time.Location
	RefreshAt  ClockTime
	DiscoverAt ClockTime

	ChunkSize          int
	ChunkPause         time.Duration
	RequestsPerMinute  int
	Burst              int
	LeaseTTL           time.Duration
	DiscoverLookback   time.Duration
	CORSAllowedOrigins string
}

// ClockTime is a wall-clock time of day.
type ClockTime struct {
	Hour   int
	Minute int
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		OsuAPIKey:          getEnv("OSU_API_KEY", ""),
		OsuAPIBaseURL:      getEnv("OSU_API_BASE_URL", "https://osu.ppy.sh/api"),
		DBPath:             getEnv("DB_PATH", "unfc.db"),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
	}

	if cfg.OsuAPIKey == "" {
		return nil, ErrMissingAPIKey
	}

	var err error
	tz := getEnv("TIMEZONE", "America/New_York")
	if cfg.Timezone, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}
	if cfg.RefreshAt, err = ParseClockTime(getEnv("REFRESH_AT", "23:00")); err != nil {
		return nil, fmt.Errorf("invalid REFRESH_AT: %w", err)
	}
	if cfg.DiscoverAt, err = ParseClockTime(getEnv("DISCOVER_AT", "00:00")); err != nil {
		return nil, fmt.Errorf("invalid DISCOVER_AT: %w", err)
	}

	if cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", constants.ChunkSize); err != nil {
		return nil, err
	}
	if cfg.RequestsPerMinute, err = getEnvInt("OSU_API_REQUESTS_PER_MINUTE", constants.APIRequestsPerMinute); err != nil {
		return nil, err
	}
	if cfg.Burst, err = getEnvInt("OSU_API_BURST", constants.APIBurst); err != nil {
		return nil, err
	}
	if cfg.ChunkPause, err = getEnvDuration("CHUNK_PAUSE", 0); err != nil {
		return nil, err
	}
	if cfg.LeaseTTL, err = getEnvDuration("LEASE_TTL", constants.LeaseTTL); err != nil {
		return nil, err
	}
	if cfg.DiscoverLookback, err = getEnvDuration("DISCOVER_LOOKBACK", constants.DiscoverLookback); err != nil {
		return nil, err
	}

	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("CHUNK_SIZE must be positive, got %d", cfg.ChunkSize)
	}
	if cfg.RequestsPerMinute <= 0 || cfg.Burst <= 0 {
		return nil, fmt.Errorf("OSU_API_REQUESTS_PER_MINUTE and OSU_API_BURST must be positive")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("timezone", cfg.Timezone.String()).
		Str("refresh_at", cfg.RefreshAt.String()).
		Str("discover_at", cfg.DiscoverAt.String()).
		Int("chunk_size", cfg.ChunkSize).
		Int("requests_per_minute", cfg.RequestsPerMinute).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

var Module = fx.Provide(Load)
