package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"volunhub-backend/internal/domain"
	"volunhub-backend/internal/logger"
	"volunhub-backend/internal/security"
)

type contextKey string

const actorKey contextKey = "actor"

// ActorFromContext returns the authenticated principal placed by the auth
// middleware.
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	return actor, ok
}

// RequestLogging tags every request with a generated id and logs its outcome.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		start := time.Now()

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)

		logger.WithRequest(requestID).Info("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// AuthMiddleware validates the bearer token and threads the resulting actor
// into the request context. Every route behind it requires an access token.
type AuthMiddleware struct {
	tokens security.TokenManager
}

func NewAuthMiddleware(tokens security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractBearerToken(r)
		if err != nil {
			writeError(w, err)
			return
		}

		claims, err := m.tokens.ValidateAccessToken(token)
		if err != nil {
			writeError(w, domain.Unauthenticated("INVALID_TOKEN", "access token is invalid or expired"))
			return
		}

		actor, err := claims.Actor()
		if err != nil {
			writeError(w, domain.Unauthenticated("INVALID_TOKEN", "access token carries an unknown role"))
			return
		}

		ctx := context.WithValue(r.Context(), actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", domain.Unauthenticated("MISSING_TOKEN", "authorization header is required")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader || token == "" {
		return "", domain.Unauthenticated("MISSING_TOKEN", "a bearer token is required")
	}
	return token, nil
}

// requireActor is the handler-level guard for routes behind AuthMiddleware.
func requireActor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeError(w, domain.Unauthenticated("MISSING_TOKEN", "authentication required"))
		return domain.Actor{}, false
	}
	return actor, true
}
