package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"classlive/internal/http/dto"
	"classlive/internal/http/resp"
)

// WorkerKey guards the internal delivery endpoint with the shared worker
// credential. Compared in constant time.
func WorkerKey(key string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("X-Worker-Key")
		if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			logger.Warn("rejected internal request", zap.String("path", c.Request.URL.Path), zap.String("client_ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Code: resp.CodeUnauthorized, Message: "invalid worker key"})
			return
		}
		c.Next()
	}
}
