package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"crewwatch/internal/logger"
	"crewwatch/pkg/utils"
)

type contextKey string

const UserContextKey contextKey = "user"

type UserClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Auth validates an HS256 bearer token signed with secret and adds the
// claims to the request context.
func Auth(secret string) func(http.Handler) http.Handler {
	log := logger.Named("auth")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Debug("❌ no authorization header", zap.String("path", r.URL.Path))
				utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Debug("❌ invalid authorization header format", zap.Int("parts", len(parts)))
				utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				log.Debug("❌ invalid token", zap.Error(err))
				utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			userClaims := UserClaims{
				UserID: stringClaim(claims, "user_id"),
				Email:  stringClaim(claims, "email"),
				Role:   stringClaim(claims, "role"),
			}

			log.Debug("✅ authenticated", zap.String("email", userClaims.Email), zap.String("role", userClaims.Role))

			ctx := context.WithValue(r.Context(), UserContextKey, userClaims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

// RequireRole checks the authenticated user's role (must be used after Auth)
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userClaims, ok := GetUserFromContext(r)
			if !ok {
				utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			if userClaims.Role != role {
				logger.Named("auth").Warn("❌ insufficient permissions",
					zap.String("required", role),
					zap.String("got", userClaims.Role),
				)
				utils.RespondError(w, http.StatusForbidden, "Forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserFromContext extracts user claims from request context
func GetUserFromContext(r *http.Request) (UserClaims, bool) {
	userClaims, ok := r.Context().Value(UserContextKey).(UserClaims)
	return userClaims, ok
}
