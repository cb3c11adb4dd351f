package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/customer360/api/internal/auth"
	"github.com/octobees/customer360/api/internal/config"
	"github.com/octobees/customer360/api/internal/handler"
	middlewarepkg "github.com/octobees/customer360/api/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth       *handler.AuthHandler
	Connection *handler.ConnectionHandler
	Enrichment *handler.EnrichmentHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	e.POST("/auth/login", handlers.Auth.Login)

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	conn := secured.Group("/connection")
	conn.GET("", handlers.Connection.Status)
	conn.POST("/test", handlers.Connection.Test)
	conn.PUT("/api-key", handlers.Connection.UpdateAPIKey)
	conn.DELETE("", handlers.Connection.Disconnect)
	conn.DELETE("/error", handlers.Connection.ClearError)

	spend := secured.Group("", middlewarepkg.RateLimiter(cfg.RateLimitEnrich))
	spend.POST("/enrich/person", handlers.Enrichment.EnrichPerson)
	spend.POST("/enrich/person/bulk", handlers.Enrichment.BulkEnrichPersons)
	spend.POST("/enrich/company", handlers.Enrichment.SearchCompany)
	spend.POST("/prospecting/contacts/search", handlers.Enrichment.SearchContacts)
	spend.POST("/prospecting/companies/search", handlers.Enrichment.SearchCompanies)
	spend.POST("/prospecting/contacts/enrich", handlers.Enrichment.EnrichContacts)
	spend.POST("/prospecting/companies/enrich", handlers.Enrichment.EnrichCompanies)
	spend.POST("/prospects/search", handlers.Enrichment.SearchProspects)

	secured.GET("/usage", handlers.Enrichment.Usage)

	admin := secured.Group("/records", middlewarepkg.RequireRole(auth.RoleAdmin))
	admin.GET("/persons", handlers.Enrichment.RecentPersons)
	admin.GET("/companies", handlers.Enrichment.RecentCompanies)
}
