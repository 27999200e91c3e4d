package middleware

import (
	"net/http"

	"go-vaccination-booking/internal/domain/entity"
	"go-vaccination-booking/pkg/response"
)

// RequireRole creates a middleware that checks if the actor has any of the required roles.
// The actor is read from context (set by AuthMiddleware from JWT claims).
func RequireRole(allowed ...entity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActorFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			for _, role := range allowed {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "You don't have permission to access this resource")
		})
	}
}

// RequireAdmin is a convenience middleware for admin-only endpoints
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleAdmin)(next)
}

// RequireDoctor is a convenience middleware for doctor-only endpoints
func RequireDoctor(next http.Handler) http.Handler {
	return RequireRole(entity.RoleDoctor)(next)
}

// RequireParent is a convenience middleware for parent-only endpoints
func RequireParent(next http.Handler) http.Handler {
	return RequireRole(entity.RoleParent)(next)
}

// RequireStaff is a convenience middleware for admin or doctor endpoints
func RequireStaff(next http.Handler) http.Handler {
	return RequireRole(entity.RoleAdmin, entity.RoleDoctor)(next)
}
