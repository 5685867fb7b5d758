package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/technotrends/workflow-backend/internal/auth"
	"github.com/technotrends/workflow-backend/internal/db"
	"github.com/technotrends/workflow-backend/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const identityContextKey contextKey = "identity"

// Auth provides the token middleware and the role gates. Role gates load
// the user from storage on every request: the token (verified or not)
// carries only an id, never a role.
type Auth struct {
	tokens *auth.Service
	users  db.UserCollection
}

// NewAuth creates the auth middleware.
func NewAuth(tokens *auth.Service, users db.UserCollection) *Auth {
	return &Auth{tokens: tokens, users: users}
}

// RequireToken validates the bearer token and stores the resulting
// identity in the request context.
func (m *Auth) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized - No token provided")
			return
		}

		identity, err := m.tokens.ParseToken(token)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				writeMessage(w, http.StatusUnauthorized, "Token expired")
				return
			}
			writeMessage(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireHead admits approved users with role head, admin or director.
func (m *Auth) RequireHead(next http.Handler) http.Handler {
	return m.requireRoles(next, "Access denied - Head privileges required",
		models.RoleHead, models.RoleAdmin, models.RoleDirector)
}

// RequireAdmin admits approved users with role admin or director.
func (m *Auth) RequireAdmin(next http.Handler) http.Handler {
	return m.requireRoles(next, "Access denied - Admin privileges required",
		models.RoleAdmin, models.RoleDirector)
}

// RequireDirector admits approved directors only.
func (m *Auth) RequireDirector(next http.Handler) http.Handler {
	return m.requireRoles(next, "Access denied - Director privileges required",
		models.RoleDirector)
}

func (m *Auth) requireRoles(next http.Handler, denial string, roles ...models.Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized - User ID not found")
			return
		}

		user, err := m.users.FindByID(r.Context(), identity.UserID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				writeMessage(w, http.StatusNotFound, "User not found")
				return
			}
			log.WithError(err).Error("role verification failed")
			writeMessage(w, http.StatusInternalServerError, "Internal server error during role verification")
			return
		}

		if user.Status != models.ApprovalApproved {
			writeMessage(w, http.StatusForbidden, "Access denied - User not approved")
			return
		}

		for _, role := range roles {
			if user.Role == role {
				next.ServeHTTP(w, r)
				return
			}
		}
		writeMessage(w, http.StatusForbidden, denial)
	})
}

// IdentityFromContext extracts the authenticated identity from the request
// context.
func IdentityFromContext(ctx context.Context) (*auth.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*auth.Identity)
	return identity, ok
}

// WithIdentity returns a context carrying the identity. Used by tests and
// the middleware itself.
func WithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
