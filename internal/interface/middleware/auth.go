package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vendora/marketplace-api/internal/domain/entity"
	"github.com/vendora/marketplace-api/internal/domain/repository"
	"github.com/vendora/marketplace-api/pkg/helpers"
	"github.com/vendora/marketplace-api/pkg/response"
)

// Context keys set by Authenticate for downstream handlers.
const (
	CtxUserIDKey     = "userID"
	CtxUserEmailKey  = "userEmail"
	CtxUserRoleKey   = "userRole"
	CtxUserStatusKey = "userStatus"
)

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authenticate verifies the bearer access token, loads the current user,
// and enforces the status gate. On success the identity is attached to the
// request context.
func Authenticate(repo repository.UserRepository, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.AbortError(c, http.StatusUnauthorized, "authorization required")
			return
		}
		claims, err := jwt.VerifyAccessToken(token)
		if err != nil {
			if errors.Is(err, helpers.ErrExpiredToken) {
				response.AbortError(c, http.StatusUnauthorized, "access token expired")
				return
			}
			response.AbortError(c, http.StatusUnauthorized, "invalid access token")
			return
		}

		u, err := repo.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			// A valid token referencing a vanished user is unrecoverable.
			response.AbortError(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		if u.Status == entity.StatusSuspended {
			response.AbortError(c, http.StatusForbidden, "account suspended")
			return
		}

		c.Set(CtxUserIDKey, u.ID)
		c.Set(CtxUserEmailKey, u.Email)
		c.Set(CtxUserRoleKey, string(u.Role))
		c.Set(CtxUserStatusKey, string(u.Status))
		c.Next()
	}
}

// Authorize allows only the given roles past. It must run after
// Authenticate.
func Authorize(roles ...entity.Role) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[string(r)] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := allowed[c.GetString(CtxUserRoleKey)]; !ok {
			response.AbortError(c, http.StatusForbidden, "insufficient role")
			return
		}
		c.Next()
	}
}

// OptionalAuth attempts verification but proceeds unauthenticated on any
// failure, for endpoints that vary response shape by authentication state.
func OptionalAuth(repo repository.UserRepository, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}
		claims, err := jwt.VerifyAccessToken(token)
		if err != nil {
			c.Next()
			return
		}
		u, err := repo.GetByID(c.Request.Context(), claims.UserID)
		if err != nil || u.Status == entity.StatusSuspended {
			c.Next()
			return
		}
		c.Set(CtxUserIDKey, u.ID)
		c.Set(CtxUserEmailKey, u.Email)
		c.Set(CtxUserRoleKey, string(u.Role))
		c.Set(CtxUserStatusKey, string(u.Status))
		c.Next()
	}
}

// RequireApprovedBuyer rejects buyers whose account has not been approved
// yet. Admins pass through; it must run after Authenticate.
func RequireApprovedBuyer() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxUserRoleKey)
		status := c.GetString(CtxUserStatusKey)
		if role == string(entity.RoleBuyer) && status != string(entity.StatusApproved) {
			response.AbortError(c, http.StatusForbidden, "buyer account not approved")
			return
		}
		c.Next()
	}
}
