package config

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBPath     string
	ServerPort string
	LogLevel   string

	// over/under reference totals, 0 disables
	TotalPointsLine float64
	SetPointsLine   float64

	ScrapeListingURL string
	ScrapeRatePerSec float64
	ScrapeBurst      int
	UserAgent        string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	totalLine, err := getEnvFloat("TOTAL_POINTS_LINE", 0)
	if err != nil {
		return nil, err
	}
	setLine, err := getEnvFloat("SET_POINTS_LINE", 0)
	if err != nil {
		return nil, err
	}
	rps, err := getEnvFloat("SCRAPE_RATE_PER_SEC", 1)
	if err != nil {
		return nil, err
	}
	burst, err := getEnvInt("SCRAPE_BURST", 1)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DBPath:           getEnv("DB_PATH", "tabletennis.db"),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		TotalPointsLine:  totalLine,
		SetPointsLine:    setLine,
		ScrapeListingURL: getEnv("SCRAPE_LISTING_URL", "https://www.aiscore.com/table-tennis"),
		ScrapeRatePerSec: rps,
		ScrapeBurst:      burst,
		UserAgent:        getEnv("SCRAPE_USER_AGENT", "tabletennis-tracker/1.0"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Float64("total_points_line", cfg.TotalPointsLine).
		Float64("set_points_line", cfg.SetPointsLine).
		Float64("scrape_rate_per_sec", cfg.ScrapeRatePerSec).
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) validate() error {
	if !finite(c.TotalPointsLine) || c.TotalPointsLine < 0 {
		return fmt.Errorf("TOTAL_POINTS_LINE must be a finite non-negative number, got %v", c.TotalPointsLine)
	}
	if !finite(c.SetPointsLine) || c.SetPointsLine < 0 {
		return fmt.Errorf("SET_POINTS_LINE must be a finite non-negative number, got %v", c.SetPointsLine)
	}
	if !finite(c.ScrapeRatePerSec) || c.ScrapeRatePerSec <= 0 {
		return fmt.Errorf("SCRAPE_RATE_PER_SEC must be positive, got %v", c.ScrapeRatePerSec)
	}
	if c.ScrapeBurst < 1 {
		return fmt.Errorf("SCRAPE_BURST must be at least 1, got %d", c.ScrapeBurst)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

var Module = fx.Provide(Load)
