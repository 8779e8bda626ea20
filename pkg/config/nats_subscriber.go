package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// SubscriberConfig describes the durable pull consumer of the order event stream.
type SubscriberConfig struct {
	Stream   string `koanf:"stream"`
	Subject  string `koanf:"subject"`
	Consumer string `koanf:"consumer"`
	// Batch is the number of messages a worker fetches at once; Timeout bounds the wait for them.
	Batch    int           `koanf:"batch"`
	Timeout  time.Duration `koanf:"timeout"`
	Interval time.Duration `koanf:"interval"`
	Workers  int           `koanf:"workers"`
}

func (c *SubscriberConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Order event subscriber ---\n")
	b.WriteString(fmt.Sprintf("  stream: %s, subject: %s, consumer: %s\n", c.Stream, c.Subject, c.Consumer))
	b.WriteString(fmt.Sprintf("  workers: %d, batch: %d, timeout: %s, interval: %s\n", c.Workers, c.Batch, c.Timeout, c.Interval))
	return b.String()
}

func (c *SubscriberConfig) Validate() error {
	if c.Stream == "" || c.Consumer == "" {
		return errors.New("subscriber: stream and consumer are required")
	}
	if c.Subject == "" {
		return errors.New("subscriber: subject filter is not configured")
	}
	if c.Batch <= 0 || c.Workers <= 0 {
		return fmt.Errorf("subscriber: batch (%d) and workers (%d) must be greater than zero", c.Batch, c.Workers)
	}
	if c.Timeout <= 0 || c.Interval <= 0 {
		return fmt.Errorf("subscriber: timeout (%s) and interval (%s) must be greater than zero", c.Timeout, c.Interval)
	}
	return nil
}
