package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Company is a normalized organisation produced from an enrichment provider response.
type Company struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Domain         string          `json:"domain"`
	Industry       string          `json:"industry"`
	Size           string          `json:"size"`
	Revenue        string          `json:"revenue"`
	Location       CompanyLocation `json:"location"`
	Founded        int             `json:"founded"`
	EmployeeCount  int             `json:"employee_count"`
	EmployeeGrowth string          `json:"employee_growth"`
	Technologies   []string        `json:"technologies"`
	Social         SocialProfiles  `json:"social"`
	Description    string          `json:"description"`
	Logo           string          `json:"logo"`
	Website        string          `json:"website"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email"`
	CompanyType    string          `json:"company_type"`
	BusinessModel  string          `json:"business_model"`
	Verified       bool            `json:"verified"`
	Confidence     int             `json:"confidence"`
	LastUpdated    time.Time       `json:"last_updated"`
}

// CompanyLocation holds the postal location of a company.
type CompanyLocation struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	Address string `json:"address"`
}

// String renders the non-empty location parts joined by commas.
func (l CompanyLocation) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.City, l.State, l.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// SocialProfiles stores the public profile URLs of a company.
type SocialProfiles struct {
	LinkedIn   string `json:"linkedin"`
	Twitter    string `json:"twitter"`
	Facebook   string `json:"facebook"`
	Crunchbase string `json:"crunchbase"`
}
