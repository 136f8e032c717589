package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"timetracker/internal/config"
	"timetracker/internal/logger"
)

// UserContextKey is the context key for the authenticated user name
const UserContextKey ContextKey = "user"

// AuthMiddleware maps API keys to users. Requests without a key pass as
// anonymous when the configuration allows it.
type AuthMiddleware struct {
	users          map[string]string
	allowAnonymous bool
}

// NewAuthMiddleware creates a new AuthMiddleware instance
func NewAuthMiddleware(cfg config.APIConfig) *AuthMiddleware {
	users := make(map[string]string, len(cfg.Users))
	for _, u := range cfg.Users {
		users[u.Key] = u.Name
	}
	return &AuthMiddleware{
		users:          users,
		allowAnonymous: cfg.AllowAnonymous,
	}
}

// Lookup returns the user owning the API key
func (am *AuthMiddleware) Lookup(apiKey string) (string, bool) {
	apiKey = strings.TrimSpace(strings.TrimPrefix(apiKey, "Bearer "))
	if apiKey == "" {
		return "", false
	}
	for key, name := range am.users {
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
			return name, true
		}
	}
	return "", false
}

// GetAPIKey extracts the API key from the request
// Only supports Authorization header for security reasons (query parameters can be logged)
func GetAPIKey(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// GetUser returns the authenticated user name, if any
func GetUser(r *http.Request) (string, bool) {
	name, ok := r.Context().Value(UserContextKey).(string)
	return name, ok
}

// Middleware returns an HTTP handler that resolves the calling user
func (am *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := GetAPIKey(r)
		if apiKey == "" && am.allowAnonymous {
			next.ServeHTTP(w, r)
			return
		}

		name, ok := am.Lookup(apiKey)
		if !ok {
			logger.Warn("Invalid API key", "ip", r.RemoteAddr, "path", r.URL.Path, "request_id", GetRequestID(r))
			w.Header().Set("WWW-Authenticate", `Bearer realm="timetracker"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, name)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
