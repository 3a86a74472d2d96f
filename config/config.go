// Package config holds the settings of the file-API collaborator used to fetch
// raw transactions for detection. Values are always passed explicitly to the
// components that need them.
package config

import (
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "AUTHORID_"

const (
	DefaultAPIBase       = "https://api.bitcoinfiles.org"
	DefaultTimeout       = 30 * time.Second
	DefaultMaxRetries    = 3
	DefaultRetryInterval = 500 * time.Millisecond
	DefaultCacheSize     = 256
	DefaultConcurrency   = 4
)

// Config is the client configuration.
type Config struct {
	APIBase string `env:"API_BASE" envDefault:"https://api.bitcoinfiles.org" mapstructure:"api_base"`
	APIKey  string `env:"API_KEY" mapstructure:"api_key"`

	Timeout       time.Duration `env:"TIMEOUT" envDefault:"30s" mapstructure:"timeout"`
	MaxRetries    int           `env:"MAX_RETRIES" envDefault:"3" mapstructure:"max_retries"`
	RetryInterval time.Duration `env:"RETRY_INTERVAL" envDefault:"500ms" mapstructure:"retry_interval"`
	CacheSize     int           `env:"CACHE_SIZE" envDefault:"256" mapstructure:"cache_size"` // 0 disables caching
	Concurrency   int           `env:"CONCURRENCY" envDefault:"4" mapstructure:"concurrency"`

	// StrictScan aborts detection on a marker followed by malformed fields
	// instead of skipping it.
	StrictScan bool `env:"STRICT_SCAN" mapstructure:"strict_scan"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		APIBase:       DefaultAPIBase,
		Timeout:       DefaultTimeout,
		MaxRetries:    DefaultMaxRetries,
		RetryInterval: DefaultRetryInterval,
		CacheSize:     DefaultCacheSize,
		Concurrency:   DefaultConcurrency,
	}
}

// Load reads AUTHORID_* environment variables on top of the defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, errors.Wrap(err, "parse environment")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFromMap decodes string settings keyed by their snake_case names, as found
// in extension-style config maps. Unset keys keep their defaults.
func LoadFromMap(values map[string]string) (Config, error) {
	cfg := Default()
	if len(values) == 0 {
		return cfg, nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, errors.Wrap(err, "create config decoder")
	}
	if err := decoder.Decode(values); err != nil {
		return Config{}, errors.Wrap(err, "decode config map")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the client cannot work with.
func (c Config) Validate() error {
	if err := validateBaseURL(c.APIBase); err != nil {
		return errors.Wrap(err, "invalid configuration: api_base")
	}

	switch {
	case c.Timeout <= 0:
		return errors.Errorf("invalid configuration: timeout must be positive, got %s", c.Timeout)
	case c.MaxRetries < 0:
		return errors.Errorf("invalid configuration: max_retries must not be negative, got %d", c.MaxRetries)
	case c.RetryInterval <= 0:
		return errors.Errorf("invalid configuration: retry_interval must be positive, got %s", c.RetryInterval)
	case c.CacheSize < 0:
		return errors.Errorf("invalid configuration: cache_size must not be negative, got %d", c.CacheSize)
	case c.Concurrency <= 0:
		return errors.Errorf("invalid configuration: concurrency must be positive, got %d", c.Concurrency)
	}
	return nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
