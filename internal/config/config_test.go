package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/abgdnv/storefront/pkg/config/configloader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repoFile(name string) string {
	return filepath.Join("..", "..", name)
}

func TestLoad_SampleConfig(t *testing.T) {
	// given
	t.Setenv("STOREFRONT_DATABASE_URL", "postgres://user:secret@db:5432/storefront")
	t.Setenv("STOREFRONT_REDIS_ENABLED", "true")

	// when
	cfg, err := configloader.LoadFile[*Config]("storefront", repoFile("config.yaml"), filepath.Join(t.TempDir(), ".env"))

	// then
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPServer.Port)
	assert.Equal(t, "postgres://user:secret@db:5432/storefront", cfg.Database.URL)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, 10, cfg.Pagination.DefaultLimit)
	assert.Equal(t, "/metrics", cfg.Telemetry.Metrics.Path)
	assert.NotContains(t, cfg.String(), "secret")
}

func TestLoad_SampleNotifierConfig(t *testing.T) {
	// when
	cfg, err := configloader.LoadFile[*NotifierConfig]("notifier", repoFile("notifier.yaml"), filepath.Join(t.TempDir(), ".env"))

	// then
	require.NoError(t, err)
	assert.Equal(t, "ORDERS", cfg.Subscriber.Stream)
	assert.Equal(t, 2, cfg.Subscriber.Workers)
	assert.Equal(t, 10*time.Second, cfg.ProbesConfig.LivenessInterval)
}

func TestNotifierConfig_Validate(t *testing.T) {
	valid := func() NotifierConfig {
		var c NotifierConfig
		c.Nats.Enabled = true
		c.Nats.Url = "nats://localhost:4222"
		c.Nats.Timeout = time.Second
		c.Nats.Stream = "ORDERS"
		c.Subscriber.Stream = "ORDERS"
		c.Subscriber.Subject = "orders.>"
		c.Subscriber.Consumer = "notifier"
		c.Subscriber.Batch = 1
		c.Subscriber.Timeout = time.Second
		c.Subscriber.Interval = time.Second
		c.Subscriber.Workers = 1
		c.Shutdown.Timeout = time.Second
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *NotifierConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(*NotifierConfig) {}},
		{name: "nats disabled", mutate: func(c *NotifierConfig) { c.Nats.Enabled = false }, wantErr: true},
		{name: "no workers", mutate: func(c *NotifierConfig) { c.Subscriber.Workers = 0 }, wantErr: true},
		{name: "negative shutdown timeout", mutate: func(c *NotifierConfig) { c.Shutdown.Timeout = -time.Second }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// given
			c := valid()
			tt.mutate(&c)

			// when
			err := c.Validate()

			// then
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, c.ProbesConfig.ReadinessFileName, "probe defaults are filled in")
		})
	}
}

func TestConfig_ValidateRejectsMissingDatabase(t *testing.T) {
	// given
	cfg, err := configloader.LoadFile[*Config]("storefront", repoFile("config.yaml"), filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	cfg.Database.URL = ""

	// when
	err = cfg.Validate()

	// then
	assert.ErrorContains(t, err, "database URL")
}

