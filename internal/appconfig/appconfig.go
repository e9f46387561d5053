// Package appconfig is the configuration surface spec.md §6 names:
// network, endpoints, the invoked contract, the submitter secret's
// location, the chip key slot, and logging. It is grounded on the
// teacher's config package (viper-backed, struct-tag validated,
// hot-reloadable), minus the tag-default-injection helper that package
// leans on internally — this module's fields are few enough that
// viper.SetDefault at construction covers the same need without pulling in
// a reflection-based defaulting package the example pack never actually
// ships a standalone copy of.
package appconfig

import (
	"sync"

	"github.com/chimpdao/nfcauth/internal/apperrors"
)

// Config is the full, validated runtime configuration for cmd/nfcauth.
type Config struct {
	Network            string `mapstructure:"network" validate:"required,oneof=testnet mainnet futurenet"`
	NetworkPassphrase  string `mapstructure:"network_passphrase"`
	HorizonURL         string `mapstructure:"horizon_url" validate:"required,url"`
	RPCURL             string `mapstructure:"rpc_url" validate:"required,url"`
	ContractID         string `mapstructure:"contract_id" validate:"required,len=56"`
	SubmitterSecretEnv string `mapstructure:"submitter_secret_env" validate:"required"`
	KeyIndex           uint8  `mapstructure:"key_index"`
	LogLevel           string `mapstructure:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
}

// defaults seeds every field that has a sane value when the config file
// and environment are both silent on it.
var defaults = map[string]any{
	"network":              "testnet",
	"submitter_secret_env": "NFCAUTH_SUBMITTER_SECRET",
	"key_index":            0,
	"log_level":            "info",
}

// AppConfig owns the loader and the live target struct, guarding concurrent
// access the same way the teacher's Config does, since Watch's reload
// callback runs on a background goroutine fsnotify owns.
type AppConfig struct {
	mu     sync.RWMutex
	loader Loader
	target *Config
}

// Option configures an AppConfig at construction time.
type Option func(*AppConfig)

// WithLoader overrides the default FileLoader, primarily for tests.
func WithLoader(l Loader) Option {
	return func(c *AppConfig) { c.loader = l }
}

// New builds an AppConfig reading "nfcauth.yaml" from "." unless
// overridden with WithLoader.
func New(opts ...Option) *AppConfig {
	c := &AppConfig{target: &Config{}}
	for _, opt := range opts {
		opt(c)
	}
	if c.loader == nil {
		c.loader = NewFileLoader("nfcauth.yaml", []string{"."}, defaults)
	}
	return c
}

// Load reads and validates configuration into the owned target.
func (c *AppConfig) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loader.Load(c.target)
}

// Get returns a snapshot copy of the current configuration, safe to read
// even while a background Watch reload is in flight.
func (c *AppConfig) Get() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return *c.target
}

// Watch reloads the configuration whenever its backing file changes,
// invoking onReload (if non-nil) after every successful reload and
// onError (if non-nil) on a failed one. A failed reload leaves the
// previous, last-known-good configuration in place.
func (c *AppConfig) Watch(onReload func(Config), onError func(error)) error {
	return c.loader.Watch(func() {
		c.mu.Lock()
		err := c.loader.Load(c.target)
		snapshot := *c.target
		c.mu.Unlock()

		if err != nil {
			if onError != nil {
				onError(apperrors.Wrap(err, apperrors.Validation, "reloading config"))
			}
			return
		}
		if onReload != nil {
			onReload(snapshot)
		}
	})
}
