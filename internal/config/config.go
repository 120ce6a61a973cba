package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers
const (
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config is the service configuration read from the environment
type Config struct {
	Port string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// StorageDriver picks where entries are stored: redis or postgres
	StorageDriver string
	DatabaseURL   string

	ServiceName string
	LogLevel    string
	ElasticURL  string

	WebhookURL          string
	WebhookTimeout      time.Duration
	DiscordWebhookID    string
	DiscordWebhookToken string
	AMQPURL             string
	AMQPExchange        string

	// Campaign is the built-in default, the CAMPAIGN_FILE contents, or
	// either with SELECTION_POLICY / FIXED_SLICE applied on top
	CampaignFile string
	Campaign     *Campaign

	SpinDuration time.Duration
	MinTurns     int
	MaxTurns     int
	RandomSeed   int64
	SessionTTL   time.Duration

	LeaderboardSize  int
	FakeEntries      bool
	FakeCap          int
	FakeInitialDelay time.Duration
	FakeMinInterval  time.Duration
	FakeMaxInterval  time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	// TrustProxyHeaders reads the client address from X-Forwarded-For;
	// only set it behind a proxy that rewrites the header
	TrustProxyHeaders bool
}

// Load reads an optional .env file, then the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageRedis)),
		DatabaseURL:   os.Getenv("DATABASE_URL"),

		ServiceName: getEnv("SERVICE_NAME", "spinwin"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		ElasticURL:  os.Getenv("ELASTIC_URL"),

		WebhookURL:          os.Getenv("WEBHOOK_URL"),
		WebhookTimeout:      getEnvMillis("WEBHOOK_TIMEOUT_MS", 5000),
		DiscordWebhookID:    os.Getenv("DISCORD_WEBHOOK_ID"),
		DiscordWebhookToken: os.Getenv("DISCORD_WEBHOOK_TOKEN"),
		AMQPURL:             os.Getenv("AMQP_URL"),
		AMQPExchange:        getEnv("AMQP_EXCHANGE", "wheel_entries"),

		CampaignFile: os.Getenv("CAMPAIGN_FILE"),

		SpinDuration: getEnvMillis("SPIN_DURATION_MS", 4000),
		MinTurns:     getEnvInt("MIN_TURNS", 4),
		MaxTurns:     getEnvInt("MAX_TURNS", 6),
		RandomSeed:   int64(getEnvInt("RANDOM_SEED", 0)),
		SessionTTL:   time.Duration(getEnvInt("SESSION_TTL_MIN", 60)) * time.Minute,

		LeaderboardSize:  getEnvInt("LEADERBOARD_SIZE", 10),
		FakeEntries:      getEnvBool("FAKE_ENTRIES", true),
		FakeCap:          getEnvInt("FAKE_CAP", 15),
		FakeInitialDelay: getEnvMillis("FAKE_INITIAL_DELAY_MS", 5000),
		FakeMinInterval:  getEnvMillis("FAKE_MIN_INTERVAL_MS", 30000),
		FakeMaxInterval:  getEnvMillis("FAKE_MAX_INTERVAL_MS", 60000),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 1),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 5),

		TrustProxyHeaders: getEnvBool("TRUST_PROXY_HEADERS", false),
	}

	campaign := DefaultCampaign()
	if cfg.CampaignFile != "" {
		loaded, err := LoadCampaign(cfg.CampaignFile)
		if err != nil {
			return nil, err
		}
		campaign = loaded
	}

	if v := os.Getenv("SELECTION_POLICY"); v != "" {
		campaign.Policy = strings.ToLower(v)
	}
	campaign.FixedSlice = getEnvInt("FIXED_SLICE", campaign.FixedSlice)
	campaign.DuplicateCheck = getEnvBool("DUPLICATE_CHECK", campaign.DuplicateCheck)
	cfg.Campaign = campaign

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that have no safe fallback
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageRedis:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if (c.DiscordWebhookID == "") != (c.DiscordWebhookToken == "") {
		return errors.New("DISCORD_WEBHOOK_ID and DISCORD_WEBHOOK_TOKEN must be set together")
	}

	return c.Campaign.Validate()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvMillis(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Millisecond
}
