package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

type contextKey string

const (
	usernameKey contextKey = "username"
	roleKey     contextKey = "role"
)

// Operator roles allowed on mutation endpoints.
var operatorRoles = map[string]bool{
	"dj":    true,
	"admin": true,
}

// AuthMiddleware validates the bearer token and stores the operator identity
// on the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		username, role, err := validateToken(parts[1])
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), usernameKey, username)
		ctx = context.WithValue(ctx, roleKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireOperator rejects requests whose token does not carry a DJ or admin
// role. Must run after AuthMiddleware.
func RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, _ := r.Context().Value(roleKey).(string)
		if !operatorRoles[role] {
			http.Error(w, "Operator role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Username returns the authenticated operator's username from the context.
func Username(ctx context.Context) string {
	username, _ := ctx.Value(usernameKey).(string)
	return username
}

func validateToken(tokenString string) (string, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(viper.GetString("jwt.secret_key")), nil
	})
	if err != nil || !token.Valid {
		return "", "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", jwt.ErrTokenInvalidClaims
	}

	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	return username, role, nil
}
