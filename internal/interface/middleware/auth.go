package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/raditya-pw/go-account-api/internal/application"
	"github.com/raditya-pw/go-account-api/pkg/apperr"
	"github.com/raditya-pw/go-account-api/pkg/response"
)

const (
	CtxAccountIDKey = "accountID"
	CtxIdentityKey  = "identity"
)

// Auth runs the presented-token authorization check ahead of every protected
// route: bearer token from the Authorization header, verified end to end by
// the lifecycle engine (signature, expiry, account state, stored-token
// equality). The verified identity lands in the Gin context.
func Auth(svc *application.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.AbortAppError(c, apperr.Unauthorized("missing access token"))
			return
		}

		id, err := svc.Authorize(c.Request.Context(), token)
		if err != nil {
			response.AbortAppError(c, err)
			return
		}

		c.Set(CtxAccountIDKey, id.ID)
		c.Set(CtxIdentityKey, id)
		c.Next()
	}
}

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
