package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the immutable SDK configuration.
type Config struct {
	// APIKey is the public API key sent as a bearer credential.
	APIKey string `env:"PARCELVOY_API_KEY,required"`
	// URLEndpoint is the base URL of the Parcelvoy instance, without the /api/client suffix.
	URLEndpoint string `env:"PARCELVOY_URL,required"`
	// Debug enables request/response body logging.
	Debug bool `env:"PARCELVOY_DEBUG" envDefault:"false"`

	LogFormat   string        `env:"PARCELVOY_LOG_FORMAT" envDefault:"json"`
	QueueLimit  int           `env:"PARCELVOY_QUEUE_LIMIT" envDefault:"16"`
	HTTPTimeout time.Duration `env:"PARCELVOY_HTTP_TIMEOUT" envDefault:"30s"`
}

// Option adjusts a Config built with New.
type Option func(*Config)

// WithDebug toggles debug logging.
func WithDebug(debug bool) Option {
	return func(c *Config) { c.Debug = debug }
}

// WithLogFormat sets the log format ("json" or "text").
func WithLogFormat(format string) Option {
	return func(c *Config) { c.LogFormat = format }
}

// WithQueueLimit bounds the number of concurrent background requests.
func WithQueueLimit(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.QueueLimit = n
		}
	}
}

// WithHTTPTimeout sets the per-request timeout of the API client.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.HTTPTimeout = d
		}
	}
}

// New builds a validated Config from explicit values.
func New(apiKey, urlEndpoint string, opts ...Option) (Config, error) {
	cfg := Config{
		APIKey:      apiKey,
		URLEndpoint: urlEndpoint,
		LogFormat:   "json",
		QueueLimit:  16,
		HTTPTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads the given .env files (default ".env"), then parses the process
// environment into a validated Config.
func Load(files ...string) (Config, error) {
	// The .env file is optional.
	_ = godotenv.Load(files...)
	return parse(env.Options{})
}

// LoadFrom parses Config from an explicit variable map instead of the
// process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

// MustLoad works like Load but panics on failure.
func MustLoad(files ...string) Config {
	cfg, err := Load(files...)
	if err != nil {
		panic(fmt.Sprintf("failed to load parcelvoy configuration: %v", err))
	}
	return cfg
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields the SDK cannot run without.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: api key is required", ErrInvalidConfig)
	}
	if c.URLEndpoint == "" {
		return fmt.Errorf("%w: url endpoint is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.URLEndpoint)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: url endpoint must use http or https", ErrInvalidConfig)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: url endpoint host is required", ErrInvalidConfig)
	}
	if c.QueueLimit < 0 {
		return fmt.Errorf("%w: queue limit cannot be negative", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "", "json", "text":
	default:
		return fmt.Errorf("%w: log format must be json or text, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
