// app/respond.go
package app

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Error codes surfaced to the HTTP layer.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidStatus      = "INVALID_STATUS"
	CodeNoAvailableDevices = "NO_AVAILABLE_DEVICES"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInternal           = "INTERNAL_ERROR"
)

type respError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type respMeta struct {
	CorrelationID string `json:"correlation_id"`
	Timestamp     string `json:"timestamp"`
}

func meta(c *gin.Context) respMeta {
	return respMeta{
		CorrelationID: CorrelationIDFrom(c),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
}

func OK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, H{"success": true, "data": data, "metadata": meta(c)})
}

func Fail(c *gin.Context, status int, code, msg string) {
	c.JSON(status, H{
		"success":  false,
		"error":    respError{Code: code, Message: msg},
		"metadata": meta(c),
	})
}

func AbortFail(c *gin.Context, status int, code, msg string) {
	c.Abort()
	Fail(c, status, code, msg)
}
