package lusha

import "strings"

// DefaultLimit is the page size used when a prospecting query sets none.
const DefaultLimit = 25

// ProspectingFilters is a sparse set of optional facets for prospecting search.
type ProspectingFilters struct {
	Industries        []string `json:"industries,omitempty"`
	Locations         []string `json:"locations,omitempty"`
	CompanySizes      []string `json:"company_sizes,omitempty"`
	Revenues          []string `json:"revenues,omitempty"`
	JobTitles         []string `json:"job_titles,omitempty"`
	Seniorities       []string `json:"seniorities,omitempty"`
	Departments       []string `json:"departments,omitempty"`
	Technologies      []string `json:"technologies,omitempty"`
	Keywords          []string `json:"keywords,omitempty"`
	ExcludeCompanies  []string `json:"exclude_companies,omitempty"`
	ExcludeIndustries []string `json:"exclude_industries,omitempty"`
	Limit             int      `json:"limit,omitempty"`
	Offset            int      `json:"offset,omitempty"`
}

type prospectingRequest struct {
	Filters map[string][]string `json:"filters"`
	Limit   int                 `json:"limit"`
	Offset  int                 `json:"offset"`
}

// payload builds the outbound body. Empty facets are left out entirely because
// the provider reads an empty list as "match nothing".
func (f ProspectingFilters) payload() prospectingRequest {
	facets := []struct {
		key    string
		values []string
	}{
		{"industries", f.Industries},
		{"locations", f.Locations},
		{"companySizes", f.CompanySizes},
		{"revenues", f.Revenues},
		{"jobTitles", f.JobTitles},
		{"seniorities", f.Seniorities},
		{"departments", f.Departments},
		{"technologies", f.Technologies},
		{"keywords", f.Keywords},
		{"excludeCompanies", f.ExcludeCompanies},
		{"excludeIndustries", f.ExcludeIndustries},
	}

	filters := make(map[string][]string)
	for _, facet := range facets {
		if values := compact(facet.values); len(values) > 0 {
			filters[facet.key] = values
		}
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	return prospectingRequest{Filters: filters, Limit: limit, Offset: offset}
}

func compact(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
