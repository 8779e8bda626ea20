package subscriber

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/abgdnv/storefront/pkg/config"
)

// Probes maintains the files checked by exec-style liveness and readiness probes.
type Probes struct {
	cfg    config.ProbesConfig
	logger *slog.Logger
}

func NewProbes(cfg config.ProbesConfig, logger *slog.Logger) *Probes {
	return &Probes{cfg: cfg, logger: logger}
}

// MarkReady creates the readiness file.
func (p *Probes) MarkReady() {
	if err := touch(p.cfg.ReadinessFileName); err != nil {
		p.logger.Error("failed to write readiness file", "file", p.cfg.ReadinessFileName, "error", err)
	}
}

// RunLiveness touches the liveness file every interval until ctx is done, then removes
// both probe files.
func (p *Probes) RunLiveness(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.LivenessInterval)
	defer ticker.Stop()
	defer p.cleanup()
	for {
		if err := touch(p.cfg.LivenessFileName); err != nil {
			return fmt.Errorf("failed to write liveness file: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (p *Probes) cleanup() {
	for _, name := range []string{p.cfg.ReadinessFileName, p.cfg.LivenessFileName} {
		if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
			p.logger.Warn("failed to remove probe file", "file", name, "error", err)
		}
	}
}

func touch(name string) error {
	now := time.Now()
	if err := os.Chtimes(name, now, now); err == nil {
		return nil
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	return f.Close()
}
