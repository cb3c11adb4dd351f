package scoring

import "strings"

const (
	categoryTitle       = "title"
	categoryIndustry    = "industry"
	categoryLocation    = "location"
	categorySeniority   = "seniority"
	categoryCompanySize = "company_size"
)

var weights = map[string]int{
	categoryTitle:       30,
	categoryIndustry:    20,
	categoryLocation:    20,
	categorySeniority:   15,
	categoryCompanySize: 15,
}

// ProspectFeatures captures the fields of a contact/company pair that are
// compared against a prospecting query.
type ProspectFeatures struct {
	JobTitle    string
	Seniority   string
	Industry    string
	CompanySize string
	Locations   []string
}

// Query lists the requested facet values. Empty facets are not scored.
type Query struct {
	JobTitles    []string
	Seniorities  []string
	Industries   []string
	CompanySizes []string
	Locations    []string
}

// Facets reports which requested facets matched.
type Facets struct {
	Title       bool
	Industry    bool
	Location    bool
	Seniority   bool
	CompanySize bool
}

// ScoreResult reports the aggregate score and the per-category breakdown.
type ScoreResult struct {
	Total     int
	Facets    Facets
	Breakdown map[string]int
}

// ComputeScore evaluates the features against the query. Total is the share of
// requested weight that matched, scaled to 0..100; a query with no facets scores 0.
func ComputeScore(input ProspectFeatures, query Query) ScoreResult {
	facets := Facets{
		Title:       containsAny(input.JobTitle, query.JobTitles),
		Industry:    containsAny(input.Industry, query.Industries),
		Location:    anyContainsAny(input.Locations, query.Locations),
		Seniority:   equalsAny(input.Seniority, query.Seniorities),
		CompanySize: equalsAny(input.CompanySize, query.CompanySizes),
	}

	requested := map[string]bool{
		categoryTitle:       hasValue(query.JobTitles),
		categoryIndustry:    hasValue(query.Industries),
		categoryLocation:    hasValue(query.Locations),
		categorySeniority:   hasValue(query.Seniorities),
		categoryCompanySize: hasValue(query.CompanySizes),
	}
	matched := map[string]bool{
		categoryTitle:       facets.Title,
		categoryIndustry:    facets.Industry,
		categoryLocation:    facets.Location,
		categorySeniority:   facets.Seniority,
		categoryCompanySize: facets.CompanySize,
	}

	breakdown := make(map[string]int, len(weights))
	possible, earned := 0, 0
	for category, weight := range weights {
		if !requested[category] {
			continue
		}
		possible += weight
		if matched[category] {
			earned += weight
			breakdown[category] = weight
		} else {
			breakdown[category] = 0
		}
	}

	total := 0
	if possible > 0 {
		total = earned * 100 / possible
	}
	return ScoreResult{Total: total, Facets: facets, Breakdown: breakdown}
}

func hasValue(values []string) bool {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return true
		}
	}
	return false
}

func containsAny(field string, wanted []string) bool {
	field = normalize(field)
	if field == "" {
		return false
	}
	for _, w := range wanted {
		if w = normalize(w); w != "" && strings.Contains(field, w) {
			return true
		}
	}
	return false
}

func anyContainsAny(fields []string, wanted []string) bool {
	for _, f := range fields {
		if containsAny(f, wanted) {
			return true
		}
	}
	return false
}

func equalsAny(field string, wanted []string) bool {
	field = normalize(field)
	if field == "" {
		return false
	}
	for _, w := range wanted {
		if normalize(w) == field {
			return true
		}
	}
	return false
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
