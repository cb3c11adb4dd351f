package lusha

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/customer360/api/internal/entity"
)

// Source is the provenance tag stamped on every record.
const Source = "lusha"

// Stamp supplies the internal id and timestamp for a transformed record.
type Stamp struct {
	ID  uuid.UUID
	Now time.Time
}

// PersonFromProvider maps one raw provider person into a Person. Missing
// fields become zero values; slices are never nil.
func PersonFromProvider(raw json.RawMessage, stamp Stamp) (entity.Person, error) {
	var p providerPerson
	if err := json.Unmarshal(raw, &p); err != nil {
		return entity.Person{}, err
	}

	first := p.FirstName.String()
	last := p.LastName.String()
	full := p.FullName.String()
	if full == "" {
		full = strings.TrimSpace(first + " " + last)
	}

	emails := append(append([]providerEmail{}, p.EmailAddresses...), p.Emails...)
	if p.Email.String() != "" {
		emails = append(emails, providerEmail{Address: p.Email.String()})
	}
	phones := append(append([]providerPhone{}, p.PhoneNumbers...), p.Phones...)
	if p.Phone.String() != "" {
		phones = append(phones, providerPhone{Number: p.Phone.String()})
	}

	person := entity.Person{
		ID:            stamp.ID,
		FirstName:     first,
		LastName:      last,
		FullName:      full,
		Email:         emailAddresses(emails),
		Phone:         phoneNumbers(phones),
		WorkEmail:     firstEmailOfType(emails, "work"),
		PersonalEmail: firstEmailOfType(emails, "personal"),
		DirectPhone:   firstPhoneOfType(phones, "direct", "work"),
		MobilePhone:   firstPhoneOfType(phones, "mobile"),
		Company:       firstNonEmpty(p.Company.Name, p.CompanyName.String()),
		CompanyDomain: firstNonEmpty(p.Company.Domain, p.CompanyDomain.String()),
		JobTitle:      p.JobTitle.Title,
		Department:    firstNonEmpty(p.Department.String(), firstOf(p.JobTitle.Departments)),
		Seniority:     firstNonEmpty(p.Seniority.String(), p.JobTitle.Seniority),
		LinkedInURL:   firstNonEmpty(p.LinkedInURL.String(), p.SocialLinks.LinkedIn.String()),
		Confidence:    p.Confidence.Percent(),
		Verified:      bool(p.Verified || p.IsVerified),
		Source:        Source,
		EnrichedAt:    stamp.Now,
	}
	return person, nil
}

// CompanyFromProvider maps one raw provider company into a Company.
func CompanyFromProvider(raw json.RawMessage, stamp Stamp) (entity.Company, error) {
	var c providerCompany
	if err := json.Unmarshal(raw, &c); err != nil {
		return entity.Company{}, err
	}

	techs := make([]string, 0, len(c.Technologies))
	for _, t := range c.Technologies {
		if v := t.String(); v != "" {
			techs = append(techs, v)
		}
	}

	social := c.Social
	if social.empty() {
		social = c.SocialLinks
	}

	founded := c.Founded.Int()
	if founded == 0 {
		founded = c.FoundedYear.Int()
	}

	company := entity.Company{
		ID:       stamp.ID,
		Name:     c.Name.String(),
		Domain:   firstNonEmpty(c.Domain.String(), c.FQDN.String()),
		Industry: firstNonEmpty(c.Industry.String(), c.MainIndustry.String()),
		Size:     firstNonEmpty(c.Size.String(), c.Employees.String()),
		Revenue:  firstNonEmpty(c.Revenue.String(), c.RevenueRange.String()),
		Location: entity.CompanyLocation{
			City:    firstNonEmpty(c.Location.City, c.City.String()),
			State:   firstNonEmpty(c.Location.State, c.State.String()),
			Country: firstNonEmpty(c.Location.Country, c.Country.String()),
			Address: firstNonEmpty(c.Location.Address, c.Address.String()),
		},
		Founded:        founded,
		EmployeeCount:  c.EmployeeCount.Int(),
		EmployeeGrowth: c.EmployeeGrowth.String(),
		Technologies:   techs,
		Social: entity.SocialProfiles{
			LinkedIn:   social.LinkedIn.String(),
			Twitter:    social.Twitter.String(),
			Facebook:   social.Facebook.String(),
			Crunchbase: social.Crunchbase.String(),
		},
		Description:   c.Description.String(),
		Logo:          firstNonEmpty(c.Logo.String(), c.LogoURL.String()),
		Website:       c.Website.String(),
		Phone:         c.Phone.String(),
		Email:         c.Email.String(),
		CompanyType:   c.CompanyType.String(),
		BusinessModel: c.BusinessModel.String(),
		Verified:      bool(c.Verified || c.IsVerified),
		Confidence:    c.Confidence.Percent(),
		LastUpdated:   stamp.Now,
	}
	return company, nil
}

type providerPerson struct {
	FirstName      flexString              `json:"firstName"`
	LastName       flexString              `json:"lastName"`
	FullName       flexString              `json:"fullName"`
	EmailAddresses flexList[providerEmail] `json:"emailAddresses"`
	Emails         flexList[providerEmail] `json:"emails"`
	Email          flexString              `json:"email"`
	PhoneNumbers   flexList[providerPhone] `json:"phoneNumbers"`
	Phones         flexList[providerPhone] `json:"phones"`
	Phone          flexString              `json:"phone"`
	Company        providerCompanyRef      `json:"company"`
	CompanyName    flexString              `json:"companyName"`
	CompanyDomain  flexString              `json:"companyDomain"`
	JobTitle       providerJobTitle        `json:"jobTitle"`
	Department     flexString              `json:"department"`
	Seniority      flexString              `json:"seniority"`
	LinkedInURL    flexString              `json:"linkedinUrl"`
	SocialLinks    providerSocial          `json:"socialLinks"`
	Confidence     flexNumber              `json:"confidence"`
	Verified       flexBool                `json:"verified"`
	IsVerified     flexBool                `json:"isVerified"`
}

type providerCompany struct {
	Name           flexString           `json:"name"`
	Domain         flexString           `json:"domain"`
	FQDN           flexString           `json:"fqdn"`
	Industry       flexString           `json:"industry"`
	MainIndustry   flexString           `json:"mainIndustry"`
	Size           flexRange            `json:"size"`
	Employees      flexRange            `json:"employees"`
	Revenue        flexRange            `json:"revenue"`
	RevenueRange   flexRange            `json:"revenueRange"`
	Location       providerLocation     `json:"location"`
	City           flexString           `json:"city"`
	State          flexString           `json:"state"`
	Country        flexString           `json:"country"`
	Address        flexString           `json:"address"`
	Founded        flexNumber           `json:"founded"`
	FoundedYear    flexNumber           `json:"foundedYear"`
	EmployeeCount  flexNumber           `json:"employeeCount"`
	EmployeeGrowth flexString           `json:"employeeGrowth"`
	Technologies   flexList[flexString] `json:"technologies"`
	Social         providerSocial       `json:"social"`
	SocialLinks    providerSocial       `json:"socialLinks"`
	Description    flexString           `json:"description"`
	Logo           flexString           `json:"logo"`
	LogoURL        flexString           `json:"logoUrl"`
	Website        flexString           `json:"website"`
	Phone          flexString           `json:"phone"`
	Email          flexString           `json:"email"`
	CompanyType    flexString           `json:"companyType"`
	BusinessModel  flexString           `json:"businessModel"`
	Verified       flexBool             `json:"verified"`
	IsVerified     flexBool             `json:"isVerified"`
	Confidence     flexNumber           `json:"confidence"`
}

type providerSocial struct {
	LinkedIn   flexString `json:"linkedin"`
	Twitter    flexString `json:"twitter"`
	Facebook   flexString `json:"facebook"`
	Crunchbase flexString `json:"crunchbase"`
}

func (s *providerSocial) UnmarshalJSON(b []byte) error {
	type plain providerSocial
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		*s = providerSocial{}
		return nil
	}
	*s = providerSocial(v)
	return nil
}

func (s providerSocial) empty() bool {
	return s.LinkedIn == "" && s.Twitter == "" && s.Facebook == "" && s.Crunchbase == ""
}

// providerEmail accepts either a bare address or {email, emailType}.
type providerEmail struct {
	Address string
	Type    string
}

func (e *providerEmail) UnmarshalJSON(b []byte) error {
	if isJSONString(b) {
		return json.Unmarshal(b, &e.Address)
	}
	var obj struct {
		Email        flexString `json:"email"`
		EmailAddress flexString `json:"emailAddress"`
		EmailType    flexString `json:"emailType"`
		Type         flexString `json:"type"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil
	}
	e.Address = firstNonEmpty(obj.Email.String(), obj.EmailAddress.String())
	e.Type = strings.ToLower(firstNonEmpty(obj.EmailType.String(), obj.Type.String()))
	return nil
}

// providerPhone accepts either a bare number or {number, phoneType}.
type providerPhone struct {
	Number string
	Type   string
}

func (p *providerPhone) UnmarshalJSON(b []byte) error {
	if isJSONString(b) {
		return json.Unmarshal(b, &p.Number)
	}
	var obj struct {
		Number      flexString `json:"number"`
		PhoneNumber flexString `json:"phoneNumber"`
		PhoneType   flexString `json:"phoneType"`
		Type        flexString `json:"type"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil
	}
	p.Number = firstNonEmpty(obj.Number.String(), obj.PhoneNumber.String())
	p.Type = strings.ToLower(firstNonEmpty(obj.PhoneType.String(), obj.Type.String()))
	return nil
}

// providerCompanyRef accepts a company name or {name, domain, fqdn}.
type providerCompanyRef struct {
	Name   string
	Domain string
}

func (c *providerCompanyRef) UnmarshalJSON(b []byte) error {
	if isJSONString(b) {
		return json.Unmarshal(b, &c.Name)
	}
	var obj struct {
		Name   flexString `json:"name"`
		Domain flexString `json:"domain"`
		FQDN   flexString `json:"fqdn"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil
	}
	c.Name = obj.Name.String()
	c.Domain = firstNonEmpty(obj.Domain.String(), obj.FQDN.String())
	return nil
}

// providerJobTitle accepts a title string or {title, departments, seniority}.
type providerJobTitle struct {
	Title       string
	Departments []string
	Seniority   string
}

func (j *providerJobTitle) UnmarshalJSON(b []byte) error {
	if isJSONString(b) {
		return json.Unmarshal(b, &j.Title)
	}
	var obj struct {
		Title       flexString           `json:"title"`
		Departments flexList[flexString] `json:"departments"`
		Seniority   flexString           `json:"seniority"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil
	}
	j.Title = obj.Title.String()
	j.Seniority = obj.Seniority.String()
	for _, d := range obj.Departments {
		if v := d.String(); v != "" {
			j.Departments = append(j.Departments, v)
		}
	}
	return nil
}

// providerLocation accepts a free-form string (taken as the address) or an object.
type providerLocation struct {
	City    string
	State   string
	Country string
	Address string
}

func (l *providerLocation) UnmarshalJSON(b []byte) error {
	if isJSONString(b) {
		return json.Unmarshal(b, &l.Address)
	}
	var obj struct {
		City       flexString `json:"city"`
		State      flexString `json:"state"`
		Country    flexString `json:"country"`
		Address    flexString `json:"address"`
		RawAddress flexString `json:"rawLocation"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil
	}
	l.City = obj.City.String()
	l.State = obj.State.String()
	l.Country = obj.Country.String()
	l.Address = firstNonEmpty(obj.Address.String(), obj.RawAddress.String())
	return nil
}

// flexString tolerates strings, numbers and {name|title|value} objects.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*s = ""
	case b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(v))
	case b[0] == '{':
		var obj map[string]any
		if err := json.Unmarshal(b, &obj); err != nil {
			return nil
		}
		for _, key := range []string{"name", "title", "value"} {
			if v, ok := obj[key].(string); ok && strings.TrimSpace(v) != "" {
				*s = flexString(strings.TrimSpace(v))
				return nil
			}
		}
		*s = ""
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		*s = flexString(b)
	default:
		*s = ""
	}
	return nil
}

func (s flexString) String() string { return string(s) }

// flexNumber tolerates numbers and numeric strings.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if isJSONString(b) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = flexNumber(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		*n = 0
		return nil
	}
	*n = flexNumber(f)
	return nil
}

func (n flexNumber) Int() int {
	return int(math.Round(float64(n)))
}

// Percent takes the value as reported on the 0..100 scale and clamps it.
func (n flexNumber) Percent() int {
	return int(math.Round(math.Max(0, math.Min(100, float64(n)))))
}

// flexList tolerates an array, a single element or null. Elements that do
// not decode are dropped; any other shape yields an empty list.
type flexList[T any] []T

func (l *flexList[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*l = nil
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			return nil
		}
		for _, item := range items {
			var v T
			if err := json.Unmarshal(item, &v); err != nil {
				continue
			}
			*l = append(*l, v)
		}
	case '"', '{':
		var v T
		if err := json.Unmarshal(b, &v); err != nil {
			return nil
		}
		*l = flexList[T]{v}
	}
	return nil
}

// flexBool tolerates booleans and "true"/"false" strings.
type flexBool bool

func (v *flexBool) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if isJSONString(b) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, _ := strconv.ParseBool(strings.TrimSpace(s))
		*v = flexBool(parsed)
		return nil
	}
	var parsed bool
	if err := json.Unmarshal(b, &parsed); err != nil {
		*v = false
		return nil
	}
	*v = flexBool(parsed)
	return nil
}

// flexRange tolerates bucket labels and {min, max} objects.
type flexRange string

func (r *flexRange) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		var s flexString
		if err := s.UnmarshalJSON(b); err != nil {
			return err
		}
		*r = flexRange(s)
		return nil
	}
	var obj struct {
		Min *float64 `json:"min"`
		Max *float64 `json:"max"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		*r = ""
		return nil
	}
	switch {
	case obj.Min != nil && obj.Max != nil:
		*r = flexRange(formatNumber(*obj.Min) + "-" + formatNumber(*obj.Max))
	case obj.Min != nil:
		*r = flexRange(formatNumber(*obj.Min) + "+")
	case obj.Max != nil:
		*r = flexRange("0-" + formatNumber(*obj.Max))
	default:
		*r = ""
	}
	return nil
}

func (r flexRange) String() string { return string(r) }

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func isJSONString(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '"'
}

func emailAddresses(emails []providerEmail) []string {
	out := make([]string, 0, len(emails))
	seen := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		addr := strings.TrimSpace(e.Address)
		key := strings.ToLower(addr)
		if addr == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, addr)
	}
	return out
}

func phoneNumbers(phones []providerPhone) []string {
	out := make([]string, 0, len(phones))
	seen := make(map[string]struct{}, len(phones))
	for _, p := range phones {
		num := strings.TrimSpace(p.Number)
		if num == "" {
			continue
		}
		if _, dup := seen[num]; dup {
			continue
		}
		seen[num] = struct{}{}
		out = append(out, num)
	}
	return out
}

func firstEmailOfType(emails []providerEmail, kind string) string {
	for _, e := range emails {
		if e.Type == kind && strings.TrimSpace(e.Address) != "" {
			return strings.TrimSpace(e.Address)
		}
	}
	return ""
}

func firstPhoneOfType(phones []providerPhone, kinds ...string) string {
	for _, p := range phones {
		for _, kind := range kinds {
			if p.Type == kind && strings.TrimSpace(p.Number) != "" {
				return strings.TrimSpace(p.Number)
			}
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
