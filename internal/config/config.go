package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"

	"github.com/orourkera/getrucky-bot/internal/domain"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`

	BotHandle string `env:"BOT_HANDLE" default:"getrucky"`

	// Cadences for the three scheduler loops.
	PostInterval            time.Duration `env:"POST_INTERVAL" default:"3h"`
	MentionPollInterval     time.Duration `env:"MENTION_POLL_INTERVAL" default:"5m"`
	EngagementSweepInterval time.Duration `env:"ENGAGEMENT_SWEEP_INTERVAL" default:"2h"`

	// Engagement policy knobs.
	LikeProbability    float64 `env:"LIKE_PROBABILITY" default:"0.9"`
	MinFollowers       int     `env:"MIN_FOLLOWERS" default:"1000"`
	WeeklyCrosspostCap int     `env:"WEEKLY_CROSSPOST_CAP" default:"10"`
	MinCrosspostLikes  int     `env:"MIN_CROSSPOST_LIKES" default:"5"`
	MinEngagement      int     `env:"MIN_ENGAGEMENT" default:"1"`

	// Generation cache and retry policy.
	CacheTTL         time.Duration `env:"CACHE_TTL" default:"24h"`
	RetryAttempts    int           `env:"RETRY_ATTEMPTS" default:"3"`
	BackoffBase      time.Duration `env:"BACKOFF_BASE" default:"2s"`
	RateLimitBackoff time.Duration `env:"RATE_LIMIT_BACKOFF" default:"60s"`
	CallTimeout      time.Duration `env:"CALL_TIMEOUT" default:"5s"`

	// Comma-separated lists.
	SearchTerms     string `env:"SEARCH_TERMS" default:"ruck,rucking,#rucking,#rucklife"`
	RepostAllowlist string `env:"REPOST_ALLOWLIST" default:"GaryBrecka,PeterAttiaMD"`
	Keywords        string `env:"KEYWORDS" default:"ruck,rucking,rucker,rucksack,getrucky"`
	Blocklist       string `env:"BLOCKLIST"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.LikeProbability < 0 || cfg.LikeProbability > 1 {
		return fmt.Errorf("LIKE_PROBABILITY must be within [0,1], got %g", cfg.LikeProbability)
	}
	if cfg.WeeklyCrosspostCap <= 0 {
		return fmt.Errorf("WEEKLY_CROSSPOST_CAP must be positive, got %d", cfg.WeeklyCrosspostCap)
	}
	if cfg.MinFollowers < 0 {
		return fmt.Errorf("MIN_FOLLOWERS must not be negative, got %d", cfg.MinFollowers)
	}
	if cfg.RetryAttempts < 1 {
		return fmt.Errorf("RETRY_ATTEMPTS must be at least 1, got %d", cfg.RetryAttempts)
	}

	positive := map[string]time.Duration{
		"POST_INTERVAL":             cfg.PostInterval,
		"MENTION_POLL_INTERVAL":     cfg.MentionPollInterval,
		"ENGAGEMENT_SWEEP_INTERVAL": cfg.EngagementSweepInterval,
		"CACHE_TTL":                 cfg.CacheTTL,
		"BACKOFF_BASE":              cfg.BackoffBase,
		"RATE_LIMIT_BACKOFF":        cfg.RateLimitBackoff,
		"CALL_TIMEOUT":              cfg.CallTimeout,
	}
	for name, value := range positive {
		if value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, value)
		}
	}

	if len(splitList(cfg.SearchTerms)) == 0 {
		return fmt.Errorf("SEARCH_TERMS must name at least one term")
	}

	return nil
}

// WindowPolicies returns the quota window table with the configured weekly
// crosspost cap applied.
func (c *Config) WindowPolicies() map[domain.Capability]domain.WindowPolicy {
	policies := domain.DefaultWindowPolicies()
	policies[domain.CapabilityCrosspost] = domain.WindowPolicy{
		Limit:  c.WeeklyCrosspostCap,
		Window: 7 * 24 * time.Hour,
	}
	return policies
}

func (c *Config) SearchTermList() []string     { return splitList(c.SearchTerms) }
func (c *Config) RepostAllowlistSet() []string { return splitList(c.RepostAllowlist) }
func (c *Config) KeywordList() []string        { return splitList(c.Keywords) }
func (c *Config) BlocklistWords() []string     { return splitList(c.Blocklist) }

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
