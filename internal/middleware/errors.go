package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/brokerfees/internal/domain/dto"
	"github.com/guttosm/brokerfees/internal/logger"
)

// ErrorHandler turns errors attached with c.Error into a 500 response.
//
// Behavior:
//   - Runs the rest of the chain first.
//   - Logs the last attached error with the request ID.
//   - Writes a dto.ErrorResponse only if the handler wrote nothing.
//
// Parameters:
//   - c: The Gin context of the current request.
//
// Usage:
//
//	router.Use(middleware.ErrorHandler)
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 {
		return
	}
	last := c.Errors.Last()
	rid, _ := c.Get(RequestIDKey)
	logger.L().Error().
		Err(last.Err).
		Str("request_id", toString(rid)).
		Str("path", c.Request.URL.Path).
		Msg("request failed")

	if c.Writer.Written() {
		return
	}
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error", last.Err))
}

// AbortWithError stops the chain and writes a dto.ErrorResponse.
//
// Parameters:
//   - c: The Gin context of the current request.
//   - status: HTTP status code to answer with.
//   - message: Client-facing message.
//   - err: Underlying error, exposed in the "error" field; may be nil.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
