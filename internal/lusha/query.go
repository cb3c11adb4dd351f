package lusha

import "strings"

// PersonQuery is the loose search input accepted from callers. Resolve turns it
// into exactly one Lookup.
type PersonQuery struct {
	Email         string `json:"email,omitempty"`
	LinkedInURL   string `json:"linkedin_url,omitempty"`
	FullName      string `json:"full_name,omitempty"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	CompanyDomain string `json:"company_domain,omitempty"`
	CompanyName   string `json:"company_name,omitempty"`
}

// Lookup is one resolved person lookup mode. The set of implementations is closed.
type Lookup interface {
	contact(contactID string) contactRequest
}

// ByEmail looks a person up by email address.
type ByEmail struct{ Email string }

// ByLinkedInURL looks a person up by professional network profile URL.
type ByLinkedInURL struct{ URL string }

// ByNameAndDomain looks a person up by full name and current company domain.
type ByNameAndDomain struct{ FullName, Domain string }

// ByNameAndCompany looks a person up by full name and current company name.
type ByNameAndCompany struct{ FullName, Company string }

type contactRequest struct {
	ContactID   string       `json:"contactId"`
	Email       string       `json:"email,omitempty"`
	LinkedInURL string       `json:"linkedinUrl,omitempty"`
	FullName    string       `json:"fullName,omitempty"`
	Companies   []companyRef `json:"companies,omitempty"`
}

type companyRef struct {
	Domain    string `json:"domain,omitempty"`
	Name      string `json:"name,omitempty"`
	IsCurrent bool   `json:"isCurrent"`
}

func (l ByEmail) contact(id string) contactRequest {
	return contactRequest{ContactID: id, Email: l.Email}
}

func (l ByLinkedInURL) contact(id string) contactRequest {
	return contactRequest{ContactID: id, LinkedInURL: l.URL}
}

func (l ByNameAndDomain) contact(id string) contactRequest {
	return contactRequest{
		ContactID: id,
		FullName:  l.FullName,
		Companies: []companyRef{{Domain: l.Domain, IsCurrent: true}},
	}
}

func (l ByNameAndCompany) contact(id string) contactRequest {
	return contactRequest{
		ContactID: id,
		FullName:  l.FullName,
		Companies: []companyRef{{Name: l.Company, IsCurrent: true}},
	}
}

// Resolve picks the first usable mode in priority order: email, profile URL,
// full name with domain, full name with company, first/last with domain,
// first/last with company.
func (q PersonQuery) Resolve() (Lookup, error) {
	email := strings.TrimSpace(q.Email)
	linkedIn := strings.TrimSpace(q.LinkedInURL)
	fullName := strings.TrimSpace(q.FullName)
	first := strings.TrimSpace(q.FirstName)
	last := strings.TrimSpace(q.LastName)
	domain := strings.TrimSpace(q.CompanyDomain)
	company := strings.TrimSpace(q.CompanyName)

	switch {
	case email != "":
		return ByEmail{Email: email}, nil
	case linkedIn != "":
		return ByLinkedInURL{URL: linkedIn}, nil
	case fullName != "" && domain != "":
		return ByNameAndDomain{FullName: fullName, Domain: domain}, nil
	case fullName != "" && company != "":
		return ByNameAndCompany{FullName: fullName, Company: company}, nil
	}

	if first == "" || last == "" {
		return nil, ErrInvalidSearchCriteria
	}
	joined := first + " " + last
	switch {
	case domain != "":
		return ByNameAndDomain{FullName: joined, Domain: domain}, nil
	case company != "":
		return ByNameAndCompany{FullName: joined, Company: company}, nil
	}
	return nil, ErrInvalidSearchCriteria
}

// CompanyQuery identifies a company by domain or name. Domain wins when both are set.
type CompanyQuery struct {
	Domain string `json:"domain,omitempty"`
	Name   string `json:"name,omitempty"`
}

type companyRequest struct {
	CompanyID string `json:"companyId"`
	Domain    string `json:"domain,omitempty"`
	Name      string `json:"name,omitempty"`
}

func (q CompanyQuery) resolve(id string) (companyRequest, error) {
	if domain := strings.TrimSpace(q.Domain); domain != "" {
		return companyRequest{CompanyID: id, Domain: domain}, nil
	}
	if name := strings.TrimSpace(q.Name); name != "" {
		return companyRequest{CompanyID: id, Name: name}, nil
	}
	return companyRequest{}, ErrInvalidSearchCriteria
}
