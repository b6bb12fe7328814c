package middleware

import (
	"net/http"
	"strings"

	"github.com/rakapradana/kasirpoint-backend/api/responses"
	"github.com/rakapradana/kasirpoint-backend/internal/users"
	pkgerrors "github.com/rakapradana/kasirpoint-backend/pkg/errors"
	"github.com/rakapradana/kasirpoint-backend/pkg/logger"
)

type tokenParser interface {
	ParseToken(token string) (*users.Claims, error)
}

// Auth validates a bearer token and seeds the request context with the
// cashier identity.
func Auth(parser tokenParser, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := parser.ParseToken(token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if claims.Subject == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing subject"))
				return
			}

			ctx := WithCashierID(r.Context(), claims.Subject)
			ctx = WithRole(ctx, claims.Role)

			if logg != nil {
				ctx = logg.WithCashierID(ctx, claims.Subject)
				ctx = logg.WithField(ctx, "actor_role", claims.Role)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route group to a single role.
func RequireRole(role string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != role {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
