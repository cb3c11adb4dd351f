package entity

import (
	"time"

	"github.com/google/uuid"
)

// Person is a normalized contact produced from an enrichment provider response.
type Person struct {
	ID            uuid.UUID `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	FullName      string    `json:"full_name"`
	Email         []string  `json:"email"`
	Phone         []string  `json:"phone"`
	WorkEmail     string    `json:"work_email"`
	PersonalEmail string    `json:"personal_email"`
	DirectPhone   string    `json:"direct_phone"`
	MobilePhone   string    `json:"mobile_phone"`
	Company       string    `json:"company"`
	CompanyDomain string    `json:"company_domain"`
	JobTitle      string    `json:"job_title"`
	Department    string    `json:"department"`
	Seniority     string    `json:"seniority"`
	LinkedInURL   string    `json:"linkedin_url"`
	Confidence    int       `json:"confidence"`
	Verified      bool      `json:"verified"`
	Source        string    `json:"source"`
	EnrichedAt    time.Time `json:"enriched_at"`
}
