// Package config holds the configuration of the storefront API and of the notifier.
package config

import (
	"errors"
	"strings"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)
var _ configloader.Validator = (*NotifierConfig)(nil)

// Config is the configuration of the storefront API process.
type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	Nats       config.NATSConfig       `koanf:"nats"`
	Resilience config.ResilienceConfig `koanf:"resilience"`
	Redis      config.RedisConfig      `koanf:"redis"`
	IdP        config.IdP              `koanf:"idp"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	Pagination config.PaginationConfig `koanf:"pagination"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Database.String())
	b.WriteString(c.Nats.String())
	b.WriteString(c.Resilience.String())
	b.WriteString(c.Redis.String())
	b.WriteString(c.IdP.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Pagination.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	validators := []configloader.Validator{
		&c.HTTPServer,
		&c.Database,
		&c.Log,
		&c.PProf,
		&c.Nats,
		&c.Resilience,
		&c.Redis,
		&c.IdP,
		&c.Telemetry,
		&c.Pagination,
		&c.Shutdown,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// NotifierConfig is the configuration of the order event consumer.
type NotifierConfig struct {
	Log          config.LogConfig        `koanf:"log"`
	PProf        config.PProfConfig      `koanf:"pprof"`
	Nats         config.NATSConfig       `koanf:"nats"`
	Subscriber   config.SubscriberConfig `koanf:"subscriber"`
	ProbesConfig config.ProbesConfig     `koanf:"probes"`
	Shutdown     config.ShutdownConfig   `koanf:"shutdown"`
}

func (c *NotifierConfig) String() string {
	var b strings.Builder
	b.WriteString(c.Nats.String())
	b.WriteString(c.Subscriber.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.ProbesConfig.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *NotifierConfig) Validate() error {
	if !c.Nats.Enabled {
		return errors.New("the notifier requires nats.enabled")
	}
	validators := []configloader.Validator{
		&c.Log,
		&c.PProf,
		&c.Nats,
		&c.Subscriber,
		&c.ProbesConfig,
		&c.Shutdown,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
