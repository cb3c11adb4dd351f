package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/customer360/api/internal/dto"
	"github.com/octobees/customer360/api/internal/service"
)

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	tokenTTL    int64
}

// NewAuthHandler constructs an AuthHandler. tokenTTLSeconds is echoed to clients as expires_in.
func NewAuthHandler(authService *service.AuthService, tokenTTLSeconds int64) *AuthHandler {
	return &AuthHandler{authService: authService, tokenTTL: tokenTTLSeconds}
}

// Login handles POST /auth/login requests.
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return Error(c, http.StatusBadRequest, "username and password are required")
	}

	token, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return Error(c, http.StatusUnauthorized, "invalid credentials")
		}
		return Error(c, http.StatusInternalServerError, "unable to authenticate")
	}

	return Success(c, http.StatusOK, "login successful", dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   h.tokenTTL,
	})
}
