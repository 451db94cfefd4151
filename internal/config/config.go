// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Riot    RiotConfig    `mapstructure:"riot"`
	Crawler CrawlerConfig `mapstructure:"crawler"`
	DB      DBConfig      `mapstructure:"db"`
	PubSub  PubSubConfig  `mapstructure:"pubsub"`
	Archive ArchiveConfig `mapstructure:"archive"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls the ops HTTP server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// RiotConfig governs access to the Riot API.
type RiotConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	RegionBase        string  `mapstructure:"region_base"`
	SeedRiotID        string  `mapstructure:"seed_riot_id"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// CrawlerConfig governs the crawl loop.
type CrawlerConfig struct {
	// Window bounds match recency and doubles as the summoner staleness
	// threshold, matching the reference collector.
	Window       time.Duration `mapstructure:"window"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MatchCount   int           `mapstructure:"match_count"`
}

// DBConfig controls access to PostgreSQL.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// PubSubConfig holds metadata for the match-document stream.
type PubSubConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// ArchiveConfig sets the raw-match blob archive destination.
type ArchiveConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Bucket  string `mapstructure:"gcs_bucket"`
	Prefix  string `mapstructure:"prefix"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	// Secrets default empty so AutomaticEnv can bind them without a file.
	v.SetDefault("riot.api_key", "")
	v.SetDefault("riot.seed_riot_id", "")
	v.SetDefault("db.dsn", "")
	v.SetDefault("riot.region_base", "https://europe.api.riotgames.com")
	v.SetDefault("riot.requests_per_second", 15)
	v.SetDefault("riot.burst", 5)
	v.SetDefault("crawler.window", 7*24*time.Hour)
	v.SetDefault("crawler.poll_interval", 30*time.Second)
	v.SetDefault("crawler.match_count", 100)
	v.SetDefault("db.max_conns", 10)
	v.SetDefault("db.min_conns", 2)
	v.SetDefault("pubsub.enabled", false)
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic_name", "")
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.gcs_bucket", "")
	v.SetDefault("archive.prefix", "matches")
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Riot.APIKey == "" {
		return fmt.Errorf("riot.api_key is required")
	}
	if c.Riot.SeedRiotID == "" {
		return fmt.Errorf("riot.seed_riot_id is required")
	}
	if !strings.Contains(c.Riot.SeedRiotID, "#") {
		return fmt.Errorf("riot.seed_riot_id must look like 'GameName#TAG'")
	}
	if c.Crawler.Window <= 0 {
		return fmt.Errorf("crawler.window must be > 0")
	}
	if c.Crawler.PollInterval <= 0 {
		return fmt.Errorf("crawler.poll_interval must be > 0")
	}
	if c.Crawler.MatchCount <= 0 || c.Crawler.MatchCount > 100 {
		return fmt.Errorf("crawler.match_count must be in (0, 100]")
	}
	if c.DB.DSN == "" {
		return fmt.Errorf("db.dsn is required")
	}
	if c.PubSub.Enabled && (c.PubSub.ProjectID == "" || c.PubSub.TopicName == "") {
		return fmt.Errorf("pubsub.project_id and pubsub.topic_name must be set when pubsub is enabled")
	}
	if c.Archive.Enabled && c.Archive.Bucket == "" {
		return fmt.Errorf("archive.gcs_bucket must be set when archiving is enabled")
	}
	return nil
}

// SeedName splits the configured seed Riot ID into game name and tag line.
func (c Config) SeedName() (string, string) {
	name, tag, _ := strings.Cut(c.Riot.SeedRiotID, "#")
	return name, tag
}
