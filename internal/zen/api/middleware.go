package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/zjrosen/bloom/internal/log"
)

// ErrorHandler turns panics into a 500 AppError.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error(log.CatAPI, "handler panic", "path", c.FullPath(), "panic", fmt.Sprint(r))
				appErr := Internal("internal server error", "")
				c.AbortWithStatusJSON(appErr.Status, appErr)
			}
		}()
		c.Next()
	}
}

// RequestLogger writes one debug line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Debug(log.CatAPI, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status())
	}
}

// JSONErrorResponse writes err as an AppError.
func JSONErrorResponse(c *gin.Context, err error) {
	appErr := FromError(err)
	if appErr.Status >= 500 {
		log.ErrorErr(log.CatAPI, "request failed", err, "path", c.FullPath())
	}
	c.AbortWithStatusJSON(appErr.Status, appErr)
}
