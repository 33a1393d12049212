package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/devsync/internal/server/handlers"
)

// AuthMiddleware создает middleware для проверки JWT токена.
// Если секрет не настроен, запросы проходят без проверки.
func AuthMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !jwtConfig.Enabled() {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				logger.Warn("Missing or malformed Authorization header", "path", r.URL.Path)
				unauthorized(w, "missing token")
				return
			}

			claims, err := handlers.ValidateToken(jwtConfig, tokenString)
			if err != nil {
				logger.Warn("Invalid access token", "path", r.URL.Path, "error", err)
				unauthorized(w, "invalid token")
				return
			}

			logger.Debug("Request authenticated", "user_id", claims.UserID)
			next.ServeHTTP(w, r.WithContext(handlers.WithUserID(r.Context(), claims.UserID)))
		})
	}
}

// bearerToken извлекает токен из заголовка "Authorization: Bearer <token>"
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Unauthorized","message":"` + message + `"}`))
}
