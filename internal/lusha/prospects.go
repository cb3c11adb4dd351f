package lusha

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/octobees/customer360/api/internal/entity"
	"github.com/octobees/customer360/api/internal/service/scoring"
)

// SearchProspects runs contact and company prospecting with the same filters,
// pairs every contact with a company and scores the pair. PairedBy on each
// prospect tells whether the pairing is a confident match or a fallback.
func (c *Client) SearchProspects(ctx context.Context, filters ProspectingFilters) ([]entity.Prospect, error) {
	var (
		contacts  []entity.Person
		companies []entity.Company
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contacts, err = c.SearchProspectingContacts(gctx, filters)
		return err
	})
	g.Go(func() error {
		var err error
		companies, err = c.SearchProspectingCompanies(gctx, filters)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	query := scoring.Query{
		JobTitles:    filters.JobTitles,
		Seniorities:  filters.Seniorities,
		Industries:   filters.Industries,
		CompanySizes: filters.CompanySizes,
		Locations:    filters.Locations,
	}

	prospects := make([]entity.Prospect, 0, len(contacts))
	for i, person := range contacts {
		company, reason := pairCompany(person, companies, i)
		score := scoring.ComputeScore(scoring.ProspectFeatures{
			JobTitle:    person.JobTitle,
			Seniority:   person.Seniority,
			Industry:    company.Industry,
			CompanySize: company.Size,
			Locations:   []string{company.Location.City, company.Location.State, company.Location.Country},
		}, query)

		prospects = append(prospects, entity.Prospect{
			ID:         c.newID(),
			Person:     person,
			Company:    company,
			MatchScore: score.Total,
			Criteria: entity.MatchCriteria{
				TitleMatch:       score.Facets.Title,
				IndustryMatch:    score.Facets.Industry,
				LocationMatch:    score.Facets.Location,
				SeniorityMatch:   score.Facets.Seniority,
				CompanySizeMatch: score.Facets.CompanySize,
			},
			PairedBy: reason,
			Tags:     []string{},
			Status:   entity.ProspectStatusNew,
		})
	}
	return prospects, nil
}

// pairCompany matches by exact company name, then by the company's domain stem
// appearing in the contact's employer name, then by position in the list.
func pairCompany(person entity.Person, companies []entity.Company, index int) (entity.Company, entity.PairingReason) {
	if len(companies) == 0 {
		return emptyCompany(), entity.PairedByNone
	}

	employer := strings.ToLower(strings.TrimSpace(person.Company))
	if employer != "" {
		for _, company := range companies {
			if strings.ToLower(strings.TrimSpace(company.Name)) == employer {
				return company, entity.PairedByExactName
			}
		}
		for _, company := range companies {
			stem := domainStem(company.Domain)
			if stem != "" && strings.Contains(employer, stem) {
				return company, entity.PairedByDomainSubstring
			}
		}
	}
	return companies[index%len(companies)], entity.PairedByPosition
}

// domainStem returns the label before the first dot: "acme" for "www.acme.com".
func domainStem(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimPrefix(domain, "www.")
	if idx := strings.Index(domain, "."); idx >= 0 {
		domain = domain[:idx]
	}
	return domain
}

func emptyCompany() entity.Company {
	return entity.Company{Technologies: []string{}}
}
