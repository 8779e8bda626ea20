package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/sony/gobreaker/v2"
)

// ErrPublisherUnavailable is returned while the breaker is open.
var ErrPublisherUnavailable = errors.New("event publisher is unavailable")

// BreakerPublisher guards a publisher with a circuit breaker. While open, Publish
// fails immediately with ErrPublisherUnavailable.
type BreakerPublisher struct {
	next   messaging.Publisher
	cb     *gobreaker.CircuitBreaker[struct{}]
	logger *slog.Logger
}

func NewBreakerPublisher(next messaging.Publisher, cfg config.CircuitBreakerConfig, logger *slog.Logger) *BreakerPublisher {
	settings := gobreaker.Settings{
		Name:    "nats-publisher",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= cfg.ConsecutiveFailures {
				return true
			}
			if cfg.ErrorRatePercent > 0 && counts.Requests >= 10 {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return failureRatio*100 >= float64(cfg.ErrorRatePercent)
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &BreakerPublisher{
		next:   next,
		cb:     gobreaker.NewCircuitBreaker[struct{}](settings),
		logger: logger,
	}
}

func (p *BreakerPublisher) Publish(ctx context.Context, event messaging.Event) error {
	_, err := p.cb.Execute(func() (struct{}, error) {
		return struct{}{}, p.next.Publish(ctx, event)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s", ErrPublisherUnavailable, event.Subject())
	}
	return err
}

// DetachedPublisher publishes with a context that survives the cancellation of the
// caller's context, keeping its values (trace span, request id).
type DetachedPublisher struct {
	next messaging.Publisher
}

func NewDetachedPublisher(next messaging.Publisher) *DetachedPublisher {
	return &DetachedPublisher{next: next}
}

func (p *DetachedPublisher) Publish(ctx context.Context, event messaging.Event) error {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	return p.next.Publish(pubCtx, event)
}
