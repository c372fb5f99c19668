// Package config loads service settings from an optional TOML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/atmx/trading-account/internal/pricing"
)

const (
	DefaultPort           = "8080"
	DefaultRedisChannel   = "account-events"
	DefaultRequestTimeout = 30 * time.Second
)

// Config is the service configuration.
type Config struct {
	Port           string        `toml:"port"`
	RequestTimeout time.Duration `toml:"-"`
	Timeout        string        `toml:"request_timeout"`

	Redis struct {
		URL     string `toml:"url"`
		Channel string `toml:"channel"`
	} `toml:"redis"`

	// Demo seeds one account at startup when Username is set.
	Demo struct {
		Username       string `toml:"username"`
		InitialDeposit string `toml:"initial_deposit"`
	} `toml:"demo"`

	// Prices overrides the built-in price table. Values are decimal strings
	// so that prices stay exact.
	Prices map[string]string `toml:"prices"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{
		Port:           DefaultPort,
		RequestTimeout: DefaultRequestTimeout,
	}
	c.Redis.Channel = DefaultRedisChannel
	return c
}

// Load reads path (if non-empty) over the defaults, then applies the PORT
// and REDIS_URL environment variables, then validates.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, c); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		c.Port = port
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return nil, fmt.Errorf("config: request_timeout: %w", err)
		}
		c.RequestTimeout = d
	}

	return c, c.Valid()
}

// Valid validates the configuration.
func (c *Config) Valid() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("config: port undefined")
	}
	if n, err := strconv.Atoi(c.Port); err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("config: invalid port %q", c.Port)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("config: request_timeout must be positive")
	}
	if c.Redis.URL != "" && strings.TrimSpace(c.Redis.Channel) == "" {
		return errors.New("config: redis.channel undefined")
	}
	if _, err := c.PriceTable(); err != nil {
		return err
	}
	if c.Demo.Username != "" {
		if _, err := c.DemoDeposit(); err != nil {
			return err
		}
	}
	return nil
}

// DemoDeposit parses the demo account's opening deposit. An empty value
// means zero.
func (c *Config) DemoDeposit() (decimal.Decimal, error) {
	if strings.TrimSpace(c.Demo.InitialDeposit) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(c.Demo.InitialDeposit)
	if err != nil {
		return decimal.Zero, fmt.Errorf("config: demo.initial_deposit: %w", err)
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("config: demo.initial_deposit must not be negative")
	}
	return d, nil
}

// PriceTable returns the configured price table, or nil when the built-in
// table should be used.
func (c *Config) PriceTable() (map[string]decimal.Decimal, error) {
	if len(c.Prices) == 0 {
		return nil, nil
	}
	table := make(map[string]decimal.Decimal, len(c.Prices))
	for sym, raw := range c.Prices {
		p, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("config: price for %s: %w", sym, err)
		}
		if p.IsNegative() {
			return nil, fmt.Errorf("config: price for %s must not be negative", sym)
		}
		table[sym] = p
	}
	return table, nil
}

// Oracle builds the price oracle described by the configuration.
func (c *Config) Oracle() (*pricing.StaticOracle, error) {
	table, err := c.PriceTable()
	if err != nil {
		return nil, err
	}
	return pricing.NewStaticOracle(table), nil
}
