package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/fraudwatch/pkg/helpers"
	"github.com/oksasatya/fraudwatch/pkg/response"
)

const (
	CtxUserIDKey    = "userID"
	CtxUserEmailKey = "userEmail"
)

// tokenFromRequest prefers the Authorization bearer header and falls back to the session cookie.
func tokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
	}
	tok, err := c.Cookie(helpers.AccessTokenCookie)
	if err != nil {
		return ""
	}
	return tok
}

// Auth validates the session token and sets userID and userEmail in the Gin context.
// Parse failures are logged; clients only see "invalid access token".
func Auth(jwt *helpers.JWTManager, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !jwt.Configured() {
			response.Error[any](c, http.StatusInternalServerError, "Server configuration error", nil)
			c.Abort()
			return
		}
		token := tokenFromRequest(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.Parse(token)
		if err != nil {
			if logger != nil {
				logger.WithError(err).WithField("request_id", c.GetString("request_id")).Info("rejected access token")
			}
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			c.Abort()
			return
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxUserEmailKey, claims.Email)
		c.Next()
	}
}
