package controllers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/listing-parser/app/responses"
)

// RequestIDKey is the gin context key holding the request ID.
const RequestIDKey = "request_id"

// abortWithError writes an ErrorResponse and stops the handler chain.
func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, responses.ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: c.GetString(RequestIDKey),
	})
}
