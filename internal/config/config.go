// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Port        int    `yaml:"port"`
	AdminAPIKey string `yaml:"admin_api_key"` // bearer token for the back-office API
	JWTSecret   string `yaml:"jwt_secret"`    // HMAC secret for admin session tokens
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// WebhookConfig covers the payment-confirmation callback delivered by the
// gateway integration living outside this engine.
type WebhookConfig struct {
	Path   string `yaml:"path"`   // e.g. /api/v1/payments/confirm
	Secret string `yaml:"secret"` // HMAC secret shared with the gateway integration
}

type TaxConfig struct {
	RatePercent string `yaml:"rate_percent"` // single fixed-rate tax, e.g. "18"
}

type NotifierConfig struct {
	TelegramToken string `yaml:"telegram_token"` // empty disables telegram notifications
}

type SweeperConfig struct {
	Interval time.Duration `yaml:"interval"` // coupon expiry sweep cadence
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Tax      TaxConfig      `yaml:"tax"`
	Notifier NotifierConfig `yaml:"notifier"`
	Sweeper  SweeperConfig  `yaml:"sweeper"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Runtime.Dev = dev
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.Webhook.Path == "" {
		c.Webhook.Path = "/api/v1/payments/confirm"
	}
	if c.Tax.RatePercent == "" {
		c.Tax.RatePercent = "0"
	}
	if c.Sweeper.Interval == 0 {
		c.Sweeper.Interval = time.Hour
	}
	if c.Redis.TTL == 0 {
		c.Redis.TTL = time.Hour
	}
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	if c.Webhook.Secret == "" && !c.Runtime.Dev {
		return fmt.Errorf("webhook.secret is required outside dev mode")
	}
	return nil
}
