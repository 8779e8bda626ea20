package web

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/abgdnv/storefront/pkg/auth"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const (
	XUserId   = "X-User-Id"
	XUserRole = "X-User-Role"
)

// HeaderAuthMiddleware trusts the identity headers set by an upstream gateway.
func HeaderAuthMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawID := r.Header.Get(XUserId)
			if rawID == "" {
				RespondError(w, logger, http.StatusUnauthorized, "Unauthorized: missing X-User-Id header")
				return
			}
			userID, err := uuid.Parse(rawID)
			if err != nil {
				RespondError(w, logger, http.StatusUnauthorized, "Unauthorized: invalid X-User-Id header")
				return
			}
			role, err := ParseRole(r.Header.Get(XUserRole))
			if err != nil {
				RespondError(w, logger, http.StatusForbidden, "Forbidden: unknown role")
				return
			}
			ctx := WithIdentity(r.Context(), Identity{UserID: userID, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// JWTAuthMiddleware verifies the bearer token and derives the identity from the
// `sub` claim and the configured role claim.
func JWTAuthMiddleware(verifier auth.Verifier, roleClaim string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				RespondError(w, logger, http.StatusUnauthorized, "Authorization header is required")
				return
			}
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				RespondError(w, logger, http.StatusUnauthorized, "Bearer token is required")
				return
			}

			token, err := verifier.Verify(r.Context(), tokenString)
			if err != nil {
				logger.WarnContext(r.Context(), "Token verification failed", "error", err)
				RespondError(w, logger, http.StatusUnauthorized, "Invalid token")
				return
			}
			subject, ok := token.Subject()
			if !ok {
				RespondError(w, logger, http.StatusUnauthorized, "Token has no subject")
				return
			}
			userID, err := uuid.Parse(subject)
			if err != nil {
				RespondError(w, logger, http.StatusUnauthorized, "Token subject is not a user id")
				return
			}
			role := RoleCustomer
			for _, value := range auth.ClaimValues(token, roleClaim) {
				if Role(value) == RoleAdmin {
					role = RoleAdmin
				}
			}
			identity := Identity{UserID: userID, Role: role}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireRole rejects callers without the given role with 403.
func RequireRole(role Role, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := GetIdentity(w, r, logger)
			if !ok {
				return
			}
			if identity.Role != role {
				logger.WarnContext(r.Context(), "Access denied", "user_id", identity.UserID, "role", identity.Role, "required", role)
				RespondError(w, logger, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// StructuredLogger creates a middleware that logs HTTP requests in a structured format.
func StructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				logger.InfoContext(r.Context(), "Request completed",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes_written", ww.BytesWritten(),
					"duration_ms", float64(time.Since(start).Nanoseconds())/1e6,
					"remote_addr", r.RemoteAddr,
					"user_agent", r.UserAgent(),
				)
			}()
			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}

// Recoverer is a middleware that recovers from panics and logs them using the provided logger.
func Recoverer(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.ErrorContext(r.Context(), "Panic recovered", "panic", rvr)
					RespondError(w, logger, http.StatusInternalServerError, MsgInternalError)
				}
			}()
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}
