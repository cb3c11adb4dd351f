package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/customer360/api/internal/lusha"
)

// APIResponse is the envelope every endpoint answers with. RequestID echoes
// the correlation id that was forwarded to the provider, when one exists.
type APIResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Success writes a "success" envelope. A zero status means 200.
func Success(c echo.Context, status int, message string, data any) error {
	if status == 0 {
		status = http.StatusOK
	}
	return c.JSON(status, APIResponse{
		Status:    "success",
		Message:   message,
		Data:      data,
		RequestID: requestID(c),
	})
}

// Error writes an "error" envelope. A zero status means 500.
func Error(c echo.Context, status int, message string) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, APIResponse{
		Status:    "error",
		Message:   message,
		RequestID: requestID(c),
	})
}

func requestID(c echo.Context) string {
	return lusha.RequestIDFromContext(c.Request().Context())
}
