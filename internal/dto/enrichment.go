package dto

import (
	"github.com/octobees/customer360/api/internal/entity"
	"github.com/octobees/customer360/api/internal/lusha"
)

// BulkEnrichRequest lists the person lookups for one bulk call.
type BulkEnrichRequest struct {
	Persons []lusha.PersonQuery `json:"persons"`
}

// IDsRequest lists provider ids returned by a prospecting search.
type IDsRequest struct {
	IDs []string `json:"ids"`
}

// PersonsResult wraps enriched persons.
type PersonsResult struct {
	Count   int             `json:"count"`
	Persons []entity.Person `json:"persons"`
}

// CompaniesResult wraps enriched companies.
type CompaniesResult struct {
	Count     int              `json:"count"`
	Companies []entity.Company `json:"companies"`
}

// ProspectsResult wraps scored prospects.
type ProspectsResult struct {
	Count     int               `json:"count"`
	Prospects []entity.Prospect `json:"prospects"`
}

// UsageResult wraps the provider usage snapshot.
type UsageResult struct {
	Cached bool           `json:"cached"`
	Usage  map[string]any `json:"usage"`
}
