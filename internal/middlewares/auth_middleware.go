package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"backend/internal/logger"
	"backend/internal/responses"
	"backend/internal/utils"
)

const (
	userIDKey   = "userId"
	userTypeKey = "userType"
)

type TokenVerifier interface {
	VerifyAccess(token string) (*utils.Claims, error)
}

// RevocationChecker reports whether a token id was logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Authenticate requires a valid Bearer access token and stores the user id
// and type on the context.
func Authenticate(tokens TokenVerifier, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			responses.Fail(c, http.StatusUnauthorized, nil, "Missing Authorization header")
			return
		}

		// Expected format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			responses.Fail(c, http.StatusUnauthorized, nil, "Invalid Authorization format")
			return
		}

		claims, err := tokens.VerifyAccess(parts[1])
		if err != nil {
			responses.Fail(c, http.StatusUnauthorized, nil, "Invalid or expired token")
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			responses.Fail(c, http.StatusUnauthorized, nil, "Invalid or expired token")
			return
		}

		if revoked != nil {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				logger.FromContext(c.Request.Context()).Error("failed to check token revocation", zap.Error(err))
				responses.Fail(c, http.StatusServiceUnavailable, nil, "Could not verify token")
				return
			}
			if isRevoked {
				responses.Fail(c, http.StatusUnauthorized, nil, "Token has been revoked")
				return
			}
		}

		c.Set(userIDKey, userID)
		c.Set(userTypeKey, claims.UserType)
		c.Next()
	}
}

// UserID returns the id stored by Authenticate.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
