package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port        string `env:"PORT,      default=8080"`
	Env         string `env:"ENV,       default=development"`
	LogLevel    string `env:"LOG_LEVEL, default=info"`
	CompanyName string `env:"COMPANY_NAME, default=CourierPWA"`
	Currency    string `env:"CURRENCY,  default=KES"`

	Auth      AuthConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	SMS       SMSConfig
	Events    EventsConfig
	Reconcile ReconcileConfig
}

type AuthConfig struct {
	JWTSecret         string        `env:"JWT_SECRET, required"`
	IdentityJWTSecret string        `env:"IDENTITY_JWT_SECRET, required"`
	SessionTTL        time.Duration `env:"SESSION_TTL, default=24h"`
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=courier_ops"`
	Timeout  time.Duration `env:"STORE_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type SMSConfig struct {
	Provider string        `env:"SMS_PROVIDER,  default=mock"`
	BaseURL  string        `env:"SMS_BASE_URL,  default=https://api.sandbox.africastalking.com"`
	Username string        `env:"AT_USERNAME"`
	APIKey   string        `env:"AT_APIKEY"`
	SenderID string        `env:"SMS_SENDER_ID"`
	Timeout  time.Duration `env:"SMS_TIMEOUT,   default=10s"`
}

type EventsConfig struct {
	Mode    string `env:"EVENTS_MODE,    default=inline"`
	Workers int    `env:"EVENTS_WORKERS, default=4"`
	NatsURL string `env:"NATS_URL,       default=nats://localhost:4222"`
}

type ReconcileConfig struct {
	Interval time.Duration `env:"RECONCILE_INTERVAL, default=5m"`
	Grace    time.Duration `env:"RECONCILE_GRACE,    default=2m"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration through the given lookuper and validates the
// enumerated settings.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.SMS.Provider {
	case "mock":
	case "africastalking":
		if c.SMS.Username == "" || c.SMS.APIKey == "" {
			return fmt.Errorf("config: AT_USERNAME and AT_APIKEY are required for SMS_PROVIDER=africastalking")
		}
	default:
		return fmt.Errorf("config: unknown SMS_PROVIDER %q", c.SMS.Provider)
	}
	switch c.Events.Mode {
	case "inline", "queue", "nats":
	default:
		return fmt.Errorf("config: unknown EVENTS_MODE %q", c.Events.Mode)
	}
	return nil
}

// Pretty reports whether logs should be human-readable.
func (c *Config) Pretty() bool {
	return c.Env == "development"
}
