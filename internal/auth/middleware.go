package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"pos-terminal-service/internal/domain"
)

type contextKey int

const claimsContextKey contextKey = iota

// ClaimsFromContext returns the authenticated operator's claims, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok
}

// RequireAuth validates the Authorization bearer token and stores the
// claims in the request context. Requests without a valid token get 401.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeAuthError(w, http.StatusUnauthorized, "Missing or malformed Authorization header")
			return
		}
		claims, err := s.ParseToken(token)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, "Invalid or expired session token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole permits only the listed roles. Roles are a flat set: admin is
// not implicitly granted access to routes it is not listed on, so every
// route names every permitted role.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make(map[domain.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if !allowed[claims.Role] {
				writeAuthError(w, http.StatusForbidden, "Insufficient role for this resource")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
