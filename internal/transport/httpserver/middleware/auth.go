package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"pentrypal-go/internal/config"
	"pentrypal-go/pkg/logger"
)

type contextKey int

const userKey contextKey = iota

type User struct {
	ID    string
	Name  string
	Email string
}

// TokenAuth resolves the acting user from a static bearer-token table
// declared in config ("token=userID|name|email" entries). Identity issuance
// itself lives outside this service; with AUTH_SKIP set every request acts
// as the mock user, which keeps local development friction-free.
type TokenAuth struct {
	tokens   map[string]User
	skipAuth bool
	mockUser User
	log      logger.Logger
}

func NewTokenAuth(cfg config.AuthConfig, log logger.Logger) *TokenAuth {
	tokens := make(map[string]User, len(cfg.Tokens))
	for _, entry := range cfg.Tokens {
		token, spec, ok := strings.Cut(entry, "=")
		if !ok {
			log.Warn("auth: skipping malformed token entry")
			continue
		}
		fields := strings.SplitN(spec, "|", 3)
		user := User{ID: strings.TrimSpace(fields[0])}
		if len(fields) > 1 {
			user.Name = strings.TrimSpace(fields[1])
		}
		if len(fields) > 2 {
			user.Email = strings.TrimSpace(fields[2])
		}
		if user.ID == "" {
			log.Warn("auth: skipping token entry without user id")
			continue
		}
		tokens[strings.TrimSpace(token)] = user
	}

	return &TokenAuth{
		tokens:   tokens,
		skipAuth: cfg.SkipAuth,
		mockUser: User{
			ID:    strings.TrimSpace(cfg.MockUserID),
			Name:  strings.TrimSpace(cfg.MockUserName),
			Email: strings.TrimSpace(cfg.MockUserEmail),
		},
		log: log,
	}
}

func (a *TokenAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.skipAuth {
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), a.mockUser)))
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeUnauthorized(w, "missing bearer token")
			return
		}

		user, ok := a.tokens[strings.TrimSpace(token)]
		if !ok {
			writeUnauthorized(w, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

func withUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userKey).(User)
	return user, ok && user.ID != ""
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    "invalid_token",
			"message": message,
		},
	})
}
