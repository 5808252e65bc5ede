package middleware

import (
	"net/http"
	"strings"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/pkg/response"
	"backend/pkg/tokens"

	"github.com/gin-gonic/gin"
)

// Package-level dependencies for the auth gate, set once at startup via Init.
var (
	tokenSvc *tokens.Service
	userRepo repository.UserRepository
	roleSvc  service.RoleService
)

// Init wires the token service, user repository and role service into the
// middleware. Must be called before any RequireRole handler runs.
func Init(ts *tokens.Service, users repository.UserRepository, roles service.RoleService) {
	tokenSvc = ts
	userRepo = users
	roleSvc = roles
}

// ContextUser is the gin context key under which the resolved principal is stored.
const ContextUser = "currentUser"

// RequireRole validates the bearer access token, resolves the principal and
// checks the required role against the role hierarchy: a role satisfies the
// check when requiredRole is the role itself or any of its ancestors.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := resolvePrincipal(c)
		if !ok {
			return
		}

		allowed, err := roleSvc.HasRole(c.Request.Context(), user.RoleID, requiredRole)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to verify permissions"))
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Not enough permissions"))
			return
		}

		c.Set(ContextUser, user)
		c.Next()
	}
}

// resolvePrincipal extracts the bearer token, verifies it as an access token
// and loads the corresponding user. Aborts the request with 401 on any failure.
func resolvePrincipal(c *gin.Context) (*model.User, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
		return nil, false
	}

	claims, err := tokenSvc.Decode(parts[1], tokens.TypeAccess)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid or expired token"))
		return nil, false
	}

	user, err := userRepo.GetByUsername(c.Request.Context(), claims.Subject)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User not found"))
		return nil, false
	}

	return user, true
}

// CurrentUser returns the principal stored by RequireRole.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get(ContextUser)
	if !exists {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}
