// Package app contains the application setup for the storefront API.
package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/internal/service"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/internal/transport/rest"
	"github.com/abgdnv/storefront/pkg/auth"
	pkgconfig "github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/server"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const readinessTimeout = 2 * time.Second

type Dependencies struct {
	OrderService   service.OrderService
	CartService    service.CartService
	ProductService service.ProductService
	DB             rest.Pinger
	// Verifier enables bearer token authentication. Without it the gateway identity headers are trusted.
	Verifier  auth.Verifier
	RoleClaim string
	// Metrics is served on MetricsPath when set.
	Metrics     http.Handler
	MetricsPath string
	Paging      pkgconfig.PaginationConfig
	Logger      *slog.Logger
}

func SetupDependencies(dbPool *pgxpool.Pool, publisher messaging.Publisher, cartCache service.CartCache, cfg *config.Config, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		OrderService:   service.NewService(store.NewPgStore(dbPool), publisher, cartCache),
		CartService:    service.NewCartService(store.NewPgCartStore(dbPool), cartCache),
		ProductService: service.NewProductService(store.NewPgProductStore(dbPool)),
		DB:             dbPool,
		RoleClaim:      cfg.IdP.RoleClaim,
		MetricsPath:    cfg.Telemetry.Metrics.Path,
		Paging:         cfg.Pagination,
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the routes of the storefront API.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return otelhttp.NewHandler(mux, "storefront",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}))
}

// wireRoutes sets up the HTTP routes for the storefront API.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	authn := authMiddleware(deps)
	paging := deps.Paging

	rest.NewHandler(deps.OrderService, paging, deps.Logger).RegisterRoutes(mux, authn)
	rest.NewCartHandler(deps.CartService, deps.Logger).RegisterRoutes(mux, authn)
	rest.NewProductHandler(deps.ProductService, paging, deps.Logger).RegisterRoutes(mux, authn)
	rest.NewHealthHandler(deps.DB, readinessTimeout, deps.Logger).RegisterRoutes(mux)
	if deps.Metrics != nil {
		mux.Method(http.MethodGet, deps.MetricsPath, deps.Metrics)
	}
}

func authMiddleware(deps *Dependencies) func(http.Handler) http.Handler {
	if deps.Verifier != nil {
		return web.JWTAuthMiddleware(deps.Verifier, deps.RoleClaim, deps.Logger)
	}
	return web.HeaderAuthMiddleware(deps.Logger)
}

// SetupHttpServer creates and configures an HTTP server for the storefront API.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	handler := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, handler)
}
