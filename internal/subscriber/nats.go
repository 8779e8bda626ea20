// Package subscriber consumes order events from NATS JetStream.
package subscriber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/messaging/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// ackableMsg is the part of jetstream.Msg the handler needs.
type ackableMsg interface {
	Subject() string
	Data() []byte
	Ack() error
	Nak() error
	Term() error
}

// Notifier delivers customer notifications for order events.
type Notifier interface {
	OrderCreated(ctx context.Context, event events.OrderCreatedEvent) error
	OrderStatusChanged(ctx context.Context, event events.OrderStatusChangedEvent) error
}

// Start creates or updates the durable consumer and runs the configured number of workers
// until ctx is cancelled. ready is called once the consumer exists.
func Start(ctx context.Context, js jetstream.JetStream, subscriberCfg config.SubscriberConfig, notifier Notifier, ready func(), logger *slog.Logger) error {
	cfg := jetstream.ConsumerConfig{
		FilterSubject: subscriberCfg.Subject,
		Durable:       subscriberCfg.Consumer,
		AckPolicy:     jetstream.AckExplicitPolicy,
	}
	consumer, err := js.CreateOrUpdateConsumer(ctx, subscriberCfg.Stream, cfg)
	if err != nil {
		return fmt.Errorf("failed to create consumer %s: %w", subscriberCfg.Consumer, err)
	}
	if ready != nil {
		ready()
	}
	h := &handler{notifier: notifier, tracer: otel.Tracer("storefront/notifier"), logger: logger}
	g, gCtx := errgroup.WithContext(ctx)
	for range subscriberCfg.Workers {
		g.Go(func() error {
			return h.runWorker(gCtx, consumer, subscriberCfg)
		})
	}
	return g.Wait()
}

type handler struct {
	notifier Notifier
	tracer   trace.Tracer
	logger   *slog.Logger
}

// runWorker fetches messages from the consumer and processes them.
func (h *handler) runWorker(ctx context.Context, consumer jetstream.Consumer, cfg config.SubscriberConfig) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			batch, err := consumer.Fetch(cfg.Batch, jetstream.FetchMaxWait(cfg.Timeout))
			if err != nil {
				if errors.Is(err, nats.ErrTimeout) {
					continue
				}
				h.logger.ErrorContext(ctx, "failed to fetch messages", "error", err)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(cfg.Interval):
				}
				continue
			}
			for msg := range batch.Messages() {
				h.handleMessage(ctx, msg)
			}
			if err := batch.Error(); err != nil && !errors.Is(err, nats.ErrTimeout) {
				h.logger.WarnContext(ctx, "batch finished with error", "error", err)
			}
		}
	}
}

// handleMessage dispatches one message by subject. Undecodable payloads and unknown
// subjects are terminated so they are not redelivered; notifier failures are nacked.
func (h *handler) handleMessage(ctx context.Context, msg ackableMsg) {
	if msg == nil {
		h.logger.ErrorContext(ctx, "received nil message")
		return
	}
	var err error
	switch msg.Subject() {
	case messaging.OrdersCreatedSubject:
		var event events.OrderCreatedEvent
		if err = json.Unmarshal(msg.Data(), &event); err == nil {
			spanCtx, span := h.startSpan(ctx, msg.Subject(), event.Carrier, attribute.String("order.id", event.OrderID.String()))
			h.logger.InfoContext(spanCtx, "received order created event",
				slog.String("order_id", event.OrderID.String()),
				slog.String("user_id", event.UserID.String()),
				slog.Int64("total_price", event.TotalPrice),
				slog.String("created_at", event.CreatedAt.Format(time.RFC3339)))
			h.deliver(spanCtx, msg, h.notifier.OrderCreated(spanCtx, event))
			span.End()
			return
		}
	case messaging.OrdersStatusChangedSubject:
		var event events.OrderStatusChangedEvent
		if err = json.Unmarshal(msg.Data(), &event); err == nil {
			spanCtx, span := h.startSpan(ctx, msg.Subject(), event.Carrier, attribute.String("order.id", event.OrderID.String()))
			h.logger.InfoContext(spanCtx, "received order status changed event",
				slog.String("order_id", event.OrderID.String()),
				slog.String("old_status", event.OldStatus),
				slog.String("new_status", event.NewStatus))
			h.deliver(spanCtx, msg, h.notifier.OrderStatusChanged(spanCtx, event))
			span.End()
			return
		}
	default:
		err = fmt.Errorf("unexpected subject %q", msg.Subject())
	}

	h.logger.ErrorContext(ctx, "failed to decode message", "error", err, "subject", msg.Subject())
	if err := msg.Term(); err != nil {
		h.logger.ErrorContext(ctx, "failed to terminate message", "error", err)
	}
}

func (h *handler) deliver(ctx context.Context, msg ackableMsg, err error) {
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to notify", "error", err, "subject", msg.Subject())
		if err := msg.Nak(); err != nil {
			h.logger.ErrorContext(ctx, "failed to nack message", "error", err)
		}
		return
	}
	if err := msg.Ack(); err != nil {
		h.logger.ErrorContext(ctx, "failed to ack message", "error", err)
	}
}

func (h *handler) startSpan(ctx context.Context, subject string, carrier map[string]string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	parent := otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(carrier))
	return h.tracer.Start(parent, "consume "+subject,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(attrs...))
}

// LogNotifier records notifications in the log. It stands in for an email or push gateway.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) OrderCreated(ctx context.Context, event events.OrderCreatedEvent) error {
	n.Logger.InfoContext(ctx, "order confirmation sent", "order_id", event.OrderID, "user_id", event.UserID, "lines", len(event.Lines))
	return nil
}

func (n LogNotifier) OrderStatusChanged(ctx context.Context, event events.OrderStatusChangedEvent) error {
	n.Logger.InfoContext(ctx, "status update sent", "order_id", event.OrderID, "user_id", event.UserID, "status", event.NewStatus)
	return nil
}
