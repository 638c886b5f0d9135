package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"
	"strings"
)

// TokenAuthMiddleware guards the admin API with a static bearer token.
// An empty configured token rejects every request.
type TokenAuthMiddleware struct {
	token string
}

// NewTokenAuthMiddleware creates a new authentication middleware instance
func NewTokenAuthMiddleware(token string) *TokenAuthMiddleware {
	return &TokenAuthMiddleware{token: token}
}

// WithAuth wraps an HTTP handler with bearer token authentication
func (m *TokenAuthMiddleware) WithAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("🔐 Authentication middleware processing request from %s", r.RemoteAddr)

		if m.token == "" {
			log.Printf("❌ Admin API token is not configured - rejecting request")
			m.writeErrorResponse(w, "admin api disabled", http.StatusUnauthorized)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Printf("❌ Missing Authorization header")
			m.writeErrorResponse(w, "missing authorization header", http.StatusUnauthorized)
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			log.Printf("❌ Invalid Authorization header format")
			m.writeErrorResponse(w, "invalid authorization header format", http.StatusUnauthorized)
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			log.Printf("❌ Empty bearer token")
			m.writeErrorResponse(w, "empty bearer token", http.StatusUnauthorized)
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(m.token)) != 1 {
			log.Printf("❌ Invalid admin API token")
			m.writeErrorResponse(w, "invalid token", http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}

// writeErrorResponse writes a standardized error response
func (m *TokenAuthMiddleware) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := map[string]string{"error": message}
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		log.Printf("❌ Failed to encode error response: %v", err)
	}
}
