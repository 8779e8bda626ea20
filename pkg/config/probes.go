package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ProbesConfig names the files a consumer process uses as exec probes: the readiness
// file appears once the consumer is subscribed, the liveness file is touched every interval.
type ProbesConfig struct {
	ReadinessFileName string        `koanf:"readinessfilename"`
	LivenessFileName  string        `koanf:"livenessfilename"`
	LivenessInterval  time.Duration `koanf:"livenessinterval"`
}

const (
	defaultReadinessFileName = "/tmp/notifier-ready"
	defaultLivenessFileName  = "/tmp/notifier-live"
	defaultLivenessInterval  = 20 * time.Second
)

func (c *ProbesConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Probes ---\n")
	b.WriteString(fmt.Sprintf("  readiness file: %s\n", c.ReadinessFileName))
	b.WriteString(fmt.Sprintf("  liveness file: %s (every %s)\n", c.LivenessFileName, c.LivenessInterval))
	return b.String()
}

func (c *ProbesConfig) Validate() error {
	if c.ReadinessFileName == "" {
		c.ReadinessFileName = defaultReadinessFileName
	}
	if c.LivenessFileName == "" {
		c.LivenessFileName = defaultLivenessFileName
	}
	if c.LivenessInterval <= 0 {
		c.LivenessInterval = defaultLivenessInterval
	}
	if c.ReadinessFileName == c.LivenessFileName {
		return errors.New("probes: readiness and liveness files must differ")
	}
	return nil
}
