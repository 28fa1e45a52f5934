package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Cache struct {
	MaxBytes   int64    `json:"max_bytes"   yaml:"max_bytes"`
	TTL        Duration `json:"ttl"         yaml:"ttl"`
	SweepEvery Duration `json:"sweep_every" yaml:"sweep_every"`
}

type Preload struct {
	Window        int      `json:"window"         yaml:"window"`
	Concurrency   int      `json:"concurrency"    yaml:"concurrency"`
	Retries       uint64   `json:"retries"        yaml:"retries"`
	RetryInterval Duration `json:"retry_interval" yaml:"retry_interval"`
}

type Fetch struct {
	Timeout Duration `json:"timeout" yaml:"timeout"`
}

type Source struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	APIKey  string `json:"api_key"  yaml:"api_key"`
}

type Config struct {
	Cache   Cache   `json:"cache"   yaml:"cache"`
	Preload Preload `json:"preload" yaml:"preload"`
	Fetch   Fetch   `json:"fetch"   yaml:"fetch"`
	Source  Source  `json:"source"  yaml:"source"`
}

func Default() *Config {
	return &Config{
		Cache: Cache{
			MaxBytes:   64 * 1024 * 1024,
			TTL:        Duration(5 * time.Minute),
			SweepEvery: Duration(1 * time.Minute),
		},
		Preload: Preload{
			Window:        2,
			Concurrency:   2,
			Retries:       2,
			RetryInterval: Duration(500 * time.Millisecond),
		},
		Fetch: Fetch{
			Timeout: Duration(5 * time.Second),
		},
		Source: Source{BaseURL: "", APIKey: ""},
	}
}

func (cfg *Config) validate() error {
	if cfg.Cache.MaxBytes <= 0 {
		return errors.New("cache max bytes must be positive")
	}

	if cfg.Cache.TTL <= 0 {
		return errors.New("cache ttl must be positive")
	}

	if cfg.Preload.Window <= 0 {
		return errors.New("preload window must be positive")
	}

	if cfg.Preload.Concurrency <= 0 {
		return errors.New("preload concurrency must be positive")
	}

	if cfg.Fetch.Timeout <= 0 {
		return errors.New("fetch timeout must be positive")
	}

	return nil
}

func (cfg *Config) applyDefaults() {
	def := Default()
	if cfg.Cache.MaxBytes == 0 {
		cfg.Cache.MaxBytes = def.Cache.MaxBytes
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = def.Cache.TTL
	}
	if cfg.Cache.SweepEvery == 0 {
		cfg.Cache.SweepEvery = def.Cache.SweepEvery
	}
	if cfg.Preload.Window == 0 {
		cfg.Preload.Window = def.Preload.Window
	}
	if cfg.Preload.Concurrency == 0 {
		cfg.Preload.Concurrency = def.Preload.Concurrency
	}
	if cfg.Preload.Retries == 0 {
		cfg.Preload.Retries = def.Preload.Retries
	}
	if cfg.Preload.RetryInterval == 0 {
		cfg.Preload.RetryInterval = def.Preload.RetryInterval
	}
	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = def.Fetch.Timeout
	}
}

func FromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if nil != err {
		return nil, fmt.Errorf("failed to read config file %q: %v", filePath, err)
	}
	return FromString(string(data))
}

func FromString(data string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(data), &cfg); nil != err {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); nil != err {
		return nil, fmt.Errorf("validation failed: %v", err)
	}

	return &cfg, nil
}
