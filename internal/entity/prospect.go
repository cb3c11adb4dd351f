package entity

import "github.com/google/uuid"

// ProspectStatus is the lifecycle stage of a prospect.
type ProspectStatus string

// Only ProspectStatusNew is produced by the enrichment client; the other
// stages are set by whoever works the prospect.
const (
	ProspectStatusNew        ProspectStatus = "new"
	ProspectStatusContacted  ProspectStatus = "contacted"
	ProspectStatusQualified  ProspectStatus = "qualified"
	ProspectStatusConverted  ProspectStatus = "converted"
	ProspectStatusDisqualify ProspectStatus = "disqualified"
)

// PairingReason records how a contact was matched to a company.
type PairingReason string

const (
	PairedByExactName       PairingReason = "exact-name"
	PairedByDomainSubstring PairingReason = "domain-substring"
	PairedByPosition        PairingReason = "positional-fallback"
	PairedByNone            PairingReason = "none"
)

// MatchCriteria reports which requested facets the prospect satisfies.
type MatchCriteria struct {
	TitleMatch       bool `json:"title_match"`
	IndustryMatch    bool `json:"industry_match"`
	LocationMatch    bool `json:"location_match"`
	SeniorityMatch   bool `json:"seniority_match"`
	CompanySizeMatch bool `json:"company_size_match"`
}

// Prospect pairs a contact with a company and scores the pair against a query.
type Prospect struct {
	ID         uuid.UUID      `json:"id"`
	Person     Person         `json:"person"`
	Company    Company        `json:"company"`
	MatchScore int            `json:"match_score"`
	Criteria   MatchCriteria  `json:"criteria"`
	PairedBy   PairingReason  `json:"paired_by"`
	Tags       []string       `json:"tags"`
	Notes      string         `json:"notes"`
	Status     ProspectStatus `json:"status"`
}
