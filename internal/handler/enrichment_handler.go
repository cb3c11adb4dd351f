package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/customer360/api/internal/dto"
	"github.com/octobees/customer360/api/internal/entity"
	"github.com/octobees/customer360/api/internal/lusha"
	"github.com/octobees/customer360/api/internal/service"
)

// EnrichmentHandler exposes provider lookups, prospecting and stored records.
type EnrichmentHandler struct {
	service *service.EnrichmentService
}

// NewEnrichmentHandler creates a new handler instance.
func NewEnrichmentHandler(service *service.EnrichmentService) *EnrichmentHandler {
	return &EnrichmentHandler{service: service}
}

// EnrichPerson handles POST /enrich/person.
func (h *EnrichmentHandler) EnrichPerson(c echo.Context) error {
	var req lusha.PersonQuery
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	persons, err := h.service.EnrichPerson(c.Request().Context(), req)
	if err != nil {
		return providerFailure(c, err)
	}
	return Success(c, http.StatusOK, "person enriched", personsResult(persons))
}

// BulkEnrichPersons handles POST /enrich/person/bulk.
func (h *EnrichmentHandler) BulkEnrichPersons(c echo.Context) error {
	var req dto.BulkEnrichRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if len(req.Persons) == 0 {
		return Error(c, http.StatusBadRequest, "persons must not be empty")
	}
	persons, err := h.service.BulkEnrichPersons(c.Request().Context(), req.Persons)
	if err != nil {
		return providerFailure(c, err)
	}
	return Success(c, http.StatusOK, "persons enriched", personsResult(persons))
}

// SearchCompany handles POST /enrich/company.
func (h *EnrichmentHandler) SearchCompany(c echo.Context) error {
	var req lusha.CompanyQuery
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	companies, err := h.service.SearchCompany(c.Request().Context(), req)
	if err != nil {
		return providerFailure(c, err)
	}
	return Success(c, http.StatusOK, "company enriched", companiesResult(companies))
}

// SearchContacts handles POST /prospecting/contacts/search.
func (h *EnrichmentHandler) SearchContacts(c echo.Context) error {
	var req lusha.ProspectingFilters
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	persons, err := h.service.SearchProspectingContacts(c.Request().Context(), req)
	if err != nil {
		return providerFailure(c, err)
	}
	return Success(c, http.StatusOK, "contacts found", personsResult(persons))
}

// SearchCompanies handles POST /prospecting/companies/search.
func (h *EnrichmentHandler) SearchCompanies(c echo.Context) error {
	var req lusha.ProspectingFilters
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	companies, err := h.service.SearchProspectingCompanies(c.Request().Context(), req)
	if err != nil {
		return providerFailure(c, err)
	}
	return Success(c, http.StatusOK, "companies found", companiesResult(companies))
}

// EnrichContacts handles POST /prospecting/contacts/enrich.
func (h *EnrichmentHandler) EnrichContacts(c echo.Context) error {
	var req dto.IDsRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	persons, err := h.service.EnrichProspectingContacts(c.Request().Context(), req.IDs)
	if err != nil {
		return providerFailure(c, err)
	}
	return Success(c, http.StatusOK, "contacts enriched", personsResult(persons))
}

// EnrichCompanies handles POST /prospecting/companies/enrich.
func (h *EnrichmentHandler) EnrichCompanies(c echo.Context) error {
	var req dto.IDsRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	companies, err := h.service.EnrichProspectingCompanies(c.Request().Context(), req.IDs)
	if err != nil {
		return providerFailure(c, err)
	}
	return Success(c, http.StatusOK, "companies enriched", companiesResult(companies))
}

// SearchProspects handles POST /prospects/search.
func (h *EnrichmentHandler) SearchProspects(c echo.Context) error {
	var req lusha.ProspectingFilters
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	prospects, err := h.service.SearchProspects(c.Request().Context(), req)
	if err != nil {
		return providerFailure(c, err)
	}
	if prospects == nil {
		prospects = []entity.Prospect{}
	}
	return Success(c, http.StatusOK, "prospects found", dto.ProspectsResult{Count: len(prospects), Prospects: prospects})
}

// Usage handles GET /usage.
func (h *EnrichmentHandler) Usage(c echo.Context) error {
	stats, cached, err := h.service.Usage(c.Request().Context())
	if err != nil {
		return providerFailure(c, err)
	}
	return Success(c, http.StatusOK, "usage statistics", dto.UsageResult{Cached: cached, Usage: stats})
}

// RecentPersons handles GET /records/persons.
func (h *EnrichmentHandler) RecentPersons(c echo.Context) error {
	persons, err := h.service.RecentPersons(c.Request().Context(), parseIntDefault(c.QueryParam("limit"), 0))
	if err != nil {
		return providerFailure(c, err)
	}
	return Success(c, http.StatusOK, "stored persons", personsResult(persons))
}

// RecentCompanies handles GET /records/companies.
func (h *EnrichmentHandler) RecentCompanies(c echo.Context) error {
	companies, err := h.service.RecentCompanies(c.Request().Context(), parseIntDefault(c.QueryParam("limit"), 0))
	if err != nil {
		return providerFailure(c, err)
	}
	return Success(c, http.StatusOK, "stored companies", companiesResult(companies))
}

func personsResult(persons []entity.Person) dto.PersonsResult {
	if persons == nil {
		persons = []entity.Person{}
	}
	return dto.PersonsResult{Count: len(persons), Persons: persons}
}

func companiesResult(companies []entity.Company) dto.CompaniesResult {
	if companies == nil {
		companies = []entity.Company{}
	}
	return dto.CompaniesResult{Count: len(companies), Companies: companies}
}

func parseIntDefault(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}
