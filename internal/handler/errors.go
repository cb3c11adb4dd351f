package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/customer360/api/internal/connection"
	"github.com/octobees/customer360/api/internal/lusha"
	"github.com/octobees/customer360/api/internal/service"
)

// providerFailure maps service and provider errors onto the response envelope.
func providerFailure(c echo.Context, err error) error {
	var (
		provErr  *lusha.ProviderError
		transErr *lusha.TransportError
	)

	status, message := http.StatusInternalServerError, "enrichment failed"
	switch {
	case errors.Is(err, lusha.ErrInvalidSearchCriteria):
		status, message = http.StatusBadRequest, "invalid search criteria"
	case errors.Is(err, connection.ErrNotConnected):
		status, message = http.StatusServiceUnavailable, "enrichment provider is not connected"
	case errors.Is(err, service.ErrRecordsDisabled):
		status, message = http.StatusServiceUnavailable, "record storage is not configured"
	case errors.Is(err, context.DeadlineExceeded):
		status, message = http.StatusGatewayTimeout, "enrichment provider timed out"
	case errors.As(err, &provErr):
		status, message = http.StatusBadGateway, http.StatusText(provErr.StatusCode)
		if provErr.StatusCode == http.StatusTooManyRequests {
			status = http.StatusTooManyRequests
		}
	case errors.As(err, &transErr):
		status, message = http.StatusBadGateway, "enrichment provider unreachable"
	case errors.Is(err, service.ErrUsageUnavailable):
		status, message = http.StatusBadGateway, "usage statistics unavailable"
	}

	if status >= http.StatusInternalServerError || status == http.StatusTooManyRequests {
		log.Printf("request_id=%s path=%s status=%d err=%v", lusha.RequestIDFromContext(c.Request().Context()), c.Path(), status, err)
	}
	return Error(c, status, message)
}
