package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/adportal/adportal/internal"
	"github.com/adportal/adportal/internal/user"
)

// Middleware validates the bearer token, loads the local user and puts it on
// the request context.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			h.WriteError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := h.Service.ValidateAccessToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			h.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		u, err := h.Service.GetUserByID(claims.UserID)
		if err != nil {
			h.WriteError(w, http.StatusUnauthorized, "unknown user")
			return
		}
		if !u.IsActive {
			h.WriteError(w, http.StatusForbidden, "user account is inactive")
			return
		}

		ctx := context.WithValue(r.Context(), internal.ContextUserKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireStaff gates operator-only endpoints (sync, transfers, catalogs).
func (h *Handler) RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := r.Context().Value(internal.ContextUserKey).(*user.User)
		if !ok || u == nil {
			h.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !u.IsStaff && !u.IsSuperuser {
			h.WriteError(w, http.StatusForbidden, "staff access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSuperuser gates directory administration endpoints.
func (h *Handler) RequireSuperuser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := r.Context().Value(internal.ContextUserKey).(*user.User)
		if !ok || u == nil {
			h.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !u.IsSuperuser {
			h.WriteError(w, http.StatusForbidden, "superuser access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
