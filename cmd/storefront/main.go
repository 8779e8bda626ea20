package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/abgdnv/storefront/internal/app"
	"github.com/abgdnv/storefront/internal/cache"
	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/internal/service"
	"github.com/abgdnv/storefront/pkg/auth"
	"github.com/abgdnv/storefront/pkg/bootstrap"
	"github.com/abgdnv/storefront/pkg/config/configloader"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/nats"
	"github.com/abgdnv/storefront/pkg/server"
	"github.com/abgdnv/storefront/pkg/telemetry"
	"golang.org/x/sync/errgroup"
)

const serviceName = "storefront"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run wires the dependencies and serves the API (and pprof, if enabled) until ctx is cancelled.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	if cfg.Telemetry.Traces.Enabled {
		tp, err := telemetry.NewTracerProvider(ctx, serviceName, cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("failed to create tracer provider: %w", err)
		}
		defer shutdownWithTimeout(tp.Shutdown, cfg, logger, "tracer provider")
	}
	var metricsHandler http.Handler
	if cfg.Telemetry.Metrics.Enabled {
		mp, err := telemetry.NewMeterProvider(serviceName)
		if err != nil {
			return fmt.Errorf("failed to create meter provider: %w", err)
		}
		defer shutdownWithTimeout(mp.Shutdown, cfg, logger, "meter provider")
		metricsHandler = mp.Handler()
	}

	if cfg.Database.Migrations != "" {
		if err := bootstrap.Migrate(cfg.Database.Migrations, cfg.Database.URL, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}
	dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
	if err != nil {
		return fmt.Errorf("failed to create database connection pool: %w", err)
	}
	defer dbPool.Close()
	logger.Info("Successfully connected to the database!")

	var publisher messaging.Publisher = messaging.NopPublisher{}
	if cfg.Nats.Enabled {
		natsConn, err := nats.NewClient(cfg.Nats.Url, cfg.Nats.Timeout)
		if err != nil {
			return fmt.Errorf("failed to create NATS connection: %w", err)
		}
		defer natsConn.Close()
		js, err := nats.NewJetStreamContext(natsConn)
		if err != nil {
			return fmt.Errorf("failed to get JetStream context: %w", err)
		}
		if _, err := nats.EnsureStream(ctx, js, cfg.Nats.Stream, messaging.OrdersStreamSubjects); err != nil {
			return fmt.Errorf("failed to ensure stream %s: %w", cfg.Nats.Stream, err)
		}
		breaker := nats.NewBreakerPublisher(nats.NewNatsPublisher(js, cfg.Resilience.Retry), cfg.Resilience.CircuitBreaker, logger)
		publisher = nats.NewDetachedPublisher(breaker)
	} else {
		logger.Warn("NATS is disabled, order events will not be published")
	}

	var cartCache service.CartCache = cache.NopCartCache{}
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to create redis client: %w", err)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("Failed to close redis client", "error", err)
			}
		}()
		cartCache = cache.NewRedisCartCache(redisClient, cfg.Redis.TTL)
	}

	deps := app.SetupDependencies(dbPool, publisher, cartCache, cfg, logger)
	deps.Metrics = metricsHandler
	if cfg.IdP.Enabled {
		verifier, err := auth.NewJWTVerifier(ctx, cfg.IdP)
		if err != nil {
			return fmt.Errorf("failed to create token verifier: %w", err)
		}
		deps.Verifier = verifier
	}
	httpServer := app.SetupHttpServer(deps, cfg)

	g, gCtx := errgroup.WithContext(ctx)
	serve(gCtx, g, httpServer, "HTTP", cfg, logger)
	if cfg.PProf.Enabled {
		serve(gCtx, g, server.NewPprofServer(cfg.PProf.Addr), "pprof", cfg, logger)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// serve runs srv in g and shuts it down gracefully once ctx is done.
func serve(ctx context.Context, g *errgroup.Group, srv *http.Server, name string, cfg *config.Config, logger *slog.Logger) {
	g.Go(func() error {
		logger.Info(name+" server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server failed: %w", name, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down " + name + " server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

func shutdownWithTimeout(shutdown func(context.Context) error, cfg *config.Config, logger *slog.Logger, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Error("Failed to shut down "+name, "error", err)
	}
}
