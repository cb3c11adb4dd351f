package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/customer360/api/internal/connection"
	"github.com/octobees/customer360/api/internal/dto"
)

// ConnectionHandler exposes the provider connection state and its verbs.
type ConnectionHandler struct {
	manager *connection.Manager
}

// NewConnectionHandler constructs a ConnectionHandler.
func NewConnectionHandler(manager *connection.Manager) *ConnectionHandler {
	return &ConnectionHandler{manager: manager}
}

// Status handles GET /connection.
func (h *ConnectionHandler) Status(c echo.Context) error {
	return Success(c, http.StatusOK, "connection state", statusOf(h.manager.State()))
}

// Test handles POST /connection/test.
func (h *ConnectionHandler) Test(c echo.Context) error {
	ok := h.manager.TestConnection(c.Request().Context())
	return h.respond(c, ok, "connection verified", "connection test failed")
}

// UpdateAPIKey handles PUT /connection/api-key.
func (h *ConnectionHandler) UpdateAPIKey(c echo.Context) error {
	var req dto.UpdateAPIKeyRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	ok := h.manager.UpdateAPIKey(c.Request().Context(), strings.TrimSpace(req.APIKey))
	return h.respond(c, ok, "api key updated", "api key rejected")
}

// Disconnect handles DELETE /connection.
func (h *ConnectionHandler) Disconnect(c echo.Context) error {
	h.manager.Disconnect()
	return Success(c, http.StatusOK, "disconnected", statusOf(h.manager.State()))
}

// ClearError handles DELETE /connection/error.
func (h *ConnectionHandler) ClearError(c echo.Context) error {
	h.manager.ClearError()
	return Success(c, http.StatusOK, "error cleared", statusOf(h.manager.State()))
}

// respond always returns 200: a failed test is a state, not a request error.
func (h *ConnectionHandler) respond(c echo.Context, ok bool, success, failure string) error {
	message := success
	if !ok {
		message = failure
	}
	return Success(c, http.StatusOK, message, statusOf(h.manager.State()))
}

func statusOf(s connection.State) dto.ConnectionStatus {
	return dto.ConnectionStatus{
		Connected: s.Connected,
		Loading:   s.Loading,
		Phase:     string(s.Phase()),
		Error:     s.Error,
		APIKey:    connection.MaskKey(s.APIKey),
	}
}
