package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/nats-io/nats.go/jetstream"
)

type NatsPublisher struct {
	js   jetstream.JetStream
	opts []jetstream.PublishOpt
}

// NewNatsPublisher creates a JetStream publisher. The retry settings bound how long
// a publish waits for the stream to become available.
func NewNatsPublisher(js jetstream.JetStream, retry config.RetryConfig) *NatsPublisher {
	var opts []jetstream.PublishOpt
	if retry.MaxAttempts > 0 {
		opts = append(opts, jetstream.WithRetryAttempts(int(retry.MaxAttempts)))
	}
	if retry.InitialBackoff > 0 {
		opts = append(opts, jetstream.WithRetryWait(retry.InitialBackoff))
	}
	return &NatsPublisher{js: js, opts: opts}
}

func (p *NatsPublisher) Publish(ctx context.Context, event messaging.Event) error {
	data, err := event.Payload()
	if err != nil {
		return fmt.Errorf("failed to get event payload: %w", err)
	}
	if _, err = p.js.Publish(ctx, event.Subject(), data, p.opts...); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", event.Subject(), err)
	}
	return nil
}

// publishTimeout caps a single publish issued after the request context is gone.
const publishTimeout = 5 * time.Second
