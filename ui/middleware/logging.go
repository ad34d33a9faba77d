package middleware

import (
	"time"

	"reactorviz/internal"
	"reactorviz/internal/errors"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per API request through the app logger
func RequestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		latency := float64(time.Since(start).Nanoseconds()) / 1e6
		switch {
		case status >= 500:
			logger.Error("[API] %s %s -> %d (%.2fms) %v", c.Request.Method, c.Request.URL.Path, status, latency, c.Errors.Last())
		case status >= 400:
			logger.Warn("[API] %s %s -> %d (%.2fms)", c.Request.Method, c.Request.URL.Path, status, latency)
		default:
			logger.Debug("[API] %s %s -> %d (%.2fms)", c.Request.Method, c.Request.URL.Path, status, latency)
		}
	}
}

// AbortWithError answers with the status mapped from the error code and a
// JSON body carrying the message and code.
func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(errors.HTTPStatus(err), gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
