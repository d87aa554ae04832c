package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/username/recupera/backend/src/logger"
	"github.com/username/recupera/backend/src/security"
	"github.com/username/recupera/backend/src/security/validation"
	"github.com/username/recupera/backend/src/utils"
)

type contextKey string

const companyIDContextKey contextKey = "companyID"

// GetCompanyIDFromContext returns the company identifier placed by the
// auth middleware.
func GetCompanyIDFromContext(ctx context.Context) (string, bool) {
	companyID, ok := ctx.Value(companyIDContextKey).(string)
	return companyID, ok && companyID != ""
}

// AuthMiddleware validates the bearer token and injects the company
// identifier from its subject claim into the request context.
func AuthMiddleware(authService *security.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.L.Debug("AuthMiddleware: Authorization header missing", "path", r.URL.Path)
				utils.SendJSONError(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			tokenString := authHeader
			if strings.HasPrefix(authHeader, "Bearer ") {
				tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			}
			if tokenString == "" {
				logger.L.Debug("AuthMiddleware: Token string empty", "path", r.URL.Path)
				utils.SendJSONError(w, "Malformed token", http.StatusUnauthorized)
				return
			}

			companyID, err := authService.ValidateToken(tokenString)
			if err != nil {
				logger.L.Warn("AuthMiddleware: Token validation failed", "path", r.URL.Path, "error", err)
				utils.SendJSONError(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			companyID = validation.SanitizeCompanyID(companyID)
			if companyID == "" {
				logger.L.Warn("AuthMiddleware: Token subject empty after sanitization", "path", r.URL.Path)
				utils.SendJSONError(w, "Invalid company identifier in token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), companyIDContextKey, companyID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
