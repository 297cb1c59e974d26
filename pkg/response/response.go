package response

import (
	"github.com/gin-gonic/gin"
)

// ErrorBody is the uniform error payload: a message, plus optional
// per-field validation details.
type ErrorBody struct {
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors,omitempty"`
}

// JSON writes a success payload with the given status.
func JSON(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}

// Error writes `{"error": msg}` with the given status.
func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, ErrorBody{Error: msg})
}

// ValidationError writes a 400-family error carrying per-field details.
func ValidationError(c *gin.Context, status int, msg string, details map[string]string) {
	c.JSON(status, ErrorBody{Error: msg, Errors: details})
}

// AbortError writes an error payload and aborts the handler chain.
// For use from middleware.
func AbortError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: msg})
}
