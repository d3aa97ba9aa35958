package middleware

import (
	"net/http"

	"github.com/partshub/autospares-backend/api/responses"
	"github.com/partshub/autospares-backend/pkg/enums"
	pkgerrors "github.com/partshub/autospares-backend/pkg/errors"
	"github.com/partshub/autospares-backend/pkg/logger"
)

// RequireStaff admits store admins and super admins.
func RequireStaff(logg *logger.Logger) func(http.Handler) http.Handler {
	return requireRole(logg, "staff access required", func(role enums.ActorRole) bool {
		return role.IsStaff()
	})
}

// RequireSuperAdmin admits super admins only.
func RequireSuperAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return requireRole(logg, "super admin access required", func(role enums.ActorRole) bool {
		return role == enums.ActorRoleSuperAdmin
	})
}

func requireRole(logg *logger.Logger, message string, allowed func(enums.ActorRole) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := enums.ActorRole(RoleFromContext(r.Context()))
			if !role.IsValid() || !allowed(role) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, message))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
