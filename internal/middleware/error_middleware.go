package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"handyhub/internal/transport/httpdto"
	"handyhub/pkg/logger"
)

// ErrorHandler logs errors attached with c.Error and answers with an
// envelope when the handler did not write one itself.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		if l != nil {
			l.Ctx(c.Request.Context()).Error("request error",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
		}
		if c.Writer.Written() {
			return
		}
		status, body := httpdto.ErrorFrom(err)
		body.Error = "internal error"
		c.JSON(status, body)
	}
}
