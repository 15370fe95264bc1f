package auth

import (
	"log/slog"
	"net/http"
)

// Authorizer turns Resolver decisions into route middleware. Routes declare
// what they need; the check itself lives in one place.
type Authorizer struct {
	resolver *Resolver
	logger   *slog.Logger
}

func NewAuthorizer(resolver *Resolver, logger *slog.Logger) *Authorizer {
	return &Authorizer{
		resolver: resolver,
		logger:   logger,
	}
}

// Require grants when the caller holds any of the permissions or any of the
// roles.
func (a *Authorizer) Require(permissions []string, roles []Role) func(http.Handler) http.Handler {
	return a.middleware(permissions, roles, false)
}

// RequireAll grants only when the caller holds every listed permission (or
// an allowed role). Reserved for the permission-management surface.
func (a *Authorizer) RequireAll(permissions []string, roles []Role) func(http.Handler) http.Handler {
	return a.middleware(permissions, roles, true)
}

func (a *Authorizer) RequireAdministrator() func(http.Handler) http.Handler {
	return a.middleware(nil, []Role{RoleAdministrator}, false)
}

func (a *Authorizer) middleware(permissions []string, roles []Role, requireAll bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok || identity == nil {
				a.logger.Warn("authorization check failed: identity not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			var granted bool
			if requireAll {
				granted = a.resolver.ResolveAll(r.Context(), identity, permissions, roles)
			} else {
				granted = a.resolver.Resolve(r.Context(), identity, permissions, roles)
			}

			if !granted {
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
