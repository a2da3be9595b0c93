package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backend/internal/responses"
	"backend/internal/utils"
)

// RequireUserType checks the type carried by the access token. It must run
// after Authenticate.
func RequireUserType(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserID(c); !ok {
			responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
			return
		}
		if !utils.Contains(allowed, c.GetString(userTypeKey)) {
			responses.Fail(c, http.StatusForbidden, nil, "Access denied. Insufficient privileges.")
			return
		}
		c.Next()
	}
}
