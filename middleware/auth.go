package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dcode-github/six_cities/backend/controllers"
	"github.com/dcode-github/six_cities/backend/utils"
)

var (
	errMissingHeader = errors.New("missing Authorization header")
	errHeaderFormat  = errors.New("invalid Authorization header format")
)

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(tokens *utils.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(tokens, r)
			if err != nil {
				slog.Warn("Unauthorized request", "method", r.Method, "url", r.URL.String(), "error", err)
				switch {
				case errors.Is(err, utils.ErrTokenExpired):
					http.Error(w, "Token has expired", http.StatusUnauthorized)
				case errors.Is(err, errMissingHeader), errors.Is(err, errHeaderFormat):
					http.Error(w, err.Error(), http.StatusUnauthorized)
				default:
					http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				}
				return
			}

			ctx := context.WithValue(r.Context(), controllers.UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches the user when a valid token is sent and lets anonymous requests through.
func OptionalAuth(tokens *utils.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(tokens, r)
			if err != nil {
				if !errors.Is(err, errMissingHeader) {
					slog.Debug("Ignoring bad token on public route", "url", r.URL.String(), "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), controllers.UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(tokens *utils.TokenService, r *http.Request) (*utils.Claims, error) {
	tokenHeader := r.Header.Get("Authorization")
	if tokenHeader == "" {
		return nil, errMissingHeader
	}

	tokenParts := strings.Split(tokenHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return nil, errHeaderFormat
	}

	return tokens.Validate(tokenParts[1])
}
