package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fortuna/mlbh2h/internal/report"
	"github.com/fortuna/mlbh2h/internal/schedule"
	"github.com/spf13/viper"
)

// Config is the resolved runtime configuration.
type Config struct {
	DataDir string `mapstructure:"data_dir"`

	// Stats provider
	SportradarAPIKey  string        `mapstructure:"sportradar_api_key"`
	SportradarBaseURL string        `mapstructure:"sportradar_base_url"`
	RequestInterval   time.Duration `mapstructure:"request_interval"`
	HTTPTimeout       time.Duration `mapstructure:"http_timeout"`
	BreakerTimeout    time.Duration `mapstructure:"breaker_timeout"`

	// Optional shared infrastructure
	RedisURL    string        `mapstructure:"redis_url"`
	RedisTTL    time.Duration `mapstructure:"redis_ttl"`
	DatabaseURL string        `mapstructure:"database_url"`

	// Server
	RestPort string `mapstructure:"rest_port"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// Season calendar
	SeasonStart        string            `mapstructure:"season_start"`
	NoGameDates        []string          `mapstructure:"no_game_dates"`
	WeekStartOverrides map[string]string `mapstructure:"week_start_overrides"`

	// Outstanding performance thresholds
	BatterThreshold  float64 `mapstructure:"batter_threshold"`
	PitcherThreshold float64 `mapstructure:"pitcher_threshold"`

	// Scheduler
	DailyIngestCron   string `mapstructure:"daily_ingest_cron"`
	EnableDailyIngest bool   `mapstructure:"enable_daily_ingest"`
}

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MLBH2H"

// DefaultDataDir is ~/.mlbh2h, or ./.mlbh2h when the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mlbh2h"
	}
	return filepath.Join(home, ".mlbh2h")
}

// Load resolves configuration from defaults, the environment and an optional
// config.yaml inside the data directory. A non-empty dataDir overrides every
// other data_dir source.
func Load(dataDir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("sportradar_api_key", "")
	v.SetDefault("sportradar_base_url", "https://api.sportradar.us/mlb-t6")
	v.SetDefault("request_interval", "1050ms")
	v.SetDefault("http_timeout", "15s")
	v.SetDefault("breaker_timeout", "30s")
	v.SetDefault("redis_url", "")
	v.SetDefault("redis_ttl", "0s")
	v.SetDefault("database_url", "")
	v.SetDefault("rest_port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("season_start", schedule.DefaultSeasonStart)
	v.SetDefault("no_game_dates", schedule.DefaultNoGameDates)
	v.SetDefault("week_start_overrides", schedule.DefaultWeekStartOverrides)
	v.SetDefault("batter_threshold", report.DefaultThresholds.Batter)
	v.SetDefault("pitcher_threshold", report.DefaultThresholds.Pitcher)
	v.SetDefault("daily_ingest_cron", "0 10 * * *")
	v.SetDefault("enable_daily_ingest", true)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("sportradar_api_key", EnvPrefix+"_SPORTRADAR_API_KEY", "SPORTRADAR_API_KEY"); err != nil {
		return nil, err
	}

	if dataDir != "" {
		v.Set("data_dir", dataDir)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(v.GetString("data_dir"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.RequestInterval < 0 {
		return fmt.Errorf("request_interval must not be negative")
	}
	if c.BatterThreshold < 0 || c.PitcherThreshold < 0 {
		return fmt.Errorf("outstanding thresholds must not be negative")
	}
	if _, err := c.Calendar(); err != nil {
		return err
	}
	return nil
}

// Calendar builds the season calendar.
func (c *Config) Calendar() (*schedule.Calendar, error) {
	return schedule.NewCalendar(c.SeasonStart, c.NoGameDates, c.WeekStartOverrides)
}

// Thresholds returns the outstanding-performance thresholds.
func (c *Config) Thresholds() report.Thresholds {
	return report.Thresholds{Batter: c.BatterThreshold, Pitcher: c.PitcherThreshold}
}
