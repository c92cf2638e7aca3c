package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/raditya-pw/go-account-api/pkg/apperr"
)

// APIResponse is the uniform envelope for every outbound payload.
// The request_id is the correlation identifier attached by middleware and
// echoed back for traceability.
type APIResponse[T any] struct {
	Status    int         `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id"`
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      T           `json:"data,omitempty"`
	Error     interface{} `json:"error,omitempty"`
}

func Success[T any](c *gin.Context, status int, data T, message string) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: c.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
	})
}

func Error(c *gin.Context, status int, message string, err interface{}) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, APIResponse[any]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: c.GetString("request_id"),
		Success:   false,
		Message:   message,
		Error:     err,
	})
}

// AppError writes a typed failure; unrecognized errors have already been
// collapsed to Internal by apperr.From.
func AppError(c *gin.Context, err error) {
	ae := apperr.From(err)
	var detail interface{}
	if len(ae.Details) > 0 {
		detail = ae.Details
	}
	Error(c, ae.Status, ae.Message, detail)
}

// AbortAppError writes the failure and stops the handler chain (middleware use).
func AbortAppError(c *gin.Context, err error) {
	AppError(c, err)
	c.Abort()
}
