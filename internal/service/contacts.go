package service

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"

	"github.com/octobees/customer360/api/internal/entity"
)

const defaultPhoneRegion = "US"

var idnaProfile = idna.Lookup

// ContactCleaner normalizes the contact channels of enriched records before
// they are stored or returned. Values it cannot normalize are kept as received.
type ContactCleaner struct {
	DefaultRegion string
}

// NewContactCleaner builds a cleaner that parses national phone numbers in region.
func NewContactCleaner(region string) *ContactCleaner {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = defaultPhoneRegion
	}
	return &ContactCleaner{DefaultRegion: region}
}

// Person returns p with cleaned emails and phones.
func (cc *ContactCleaner) Person(p entity.Person) entity.Person {
	p.Email = cc.emails(p.Email)
	p.Phone = cc.phones(p.Phone)
	p.WorkEmail = normalizeEmail(p.WorkEmail)
	p.PersonalEmail = normalizeEmail(p.PersonalEmail)
	p.DirectPhone = normalizePhone(p.DirectPhone, cc.DefaultRegion)
	p.MobilePhone = normalizePhone(p.MobilePhone, cc.DefaultRegion)
	p.CompanyDomain = normalizeDomain(p.CompanyDomain)
	return p
}

// Persons cleans every person in place and returns the slice.
func (cc *ContactCleaner) Persons(persons []entity.Person) []entity.Person {
	for i := range persons {
		persons[i] = cc.Person(persons[i])
	}
	return persons
}

// Company returns c with cleaned domain, email and phone.
func (cc *ContactCleaner) Company(c entity.Company) entity.Company {
	c.Domain = normalizeDomain(c.Domain)
	c.Email = normalizeEmail(c.Email)
	c.Phone = normalizePhone(c.Phone, cc.DefaultRegion)
	return c
}

// Companies cleans every company in place and returns the slice.
func (cc *ContactCleaner) Companies(companies []entity.Company) []entity.Company {
	for i := range companies {
		companies[i] = cc.Company(companies[i])
	}
	return companies
}

// Prospects cleans the person and company of every prospect.
func (cc *ContactCleaner) Prospects(prospects []entity.Prospect) []entity.Prospect {
	for i := range prospects {
		prospects[i].Person = cc.Person(prospects[i].Person)
		prospects[i].Company = cc.Company(prospects[i].Company)
	}
	return prospects
}

func (cc *ContactCleaner) emails(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	cleaned := make([]string, 0, len(emails))
	for _, raw := range emails {
		email := normalizeEmail(raw)
		if email == "" {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		cleaned = append(cleaned, email)
	}
	return cleaned
}

func (cc *ContactCleaner) phones(phones []string) []string {
	seen := make(map[string]struct{}, len(phones))
	cleaned := make([]string, 0, len(phones))
	for _, raw := range phones {
		phone := normalizePhone(raw, cc.DefaultRegion)
		if phone == "" {
			continue
		}
		if _, dup := seen[phone]; dup {
			continue
		}
		seen[phone] = struct{}{}
		cleaned = append(cleaned, phone)
	}
	return cleaned
}

// normalizeEmail lower-cases the address and ASCII-encodes an IDN domain.
func normalizeEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return email
	}
	return email[:at+1] + normalizeDomain(email[at+1:])
}

func normalizeDomain(raw string) string {
	domain := strings.ToLower(strings.Trim(strings.TrimSpace(raw), "."))
	if domain == "" {
		return ""
	}
	ascii, err := idnaProfile.ToASCII(domain)
	if err != nil || ascii == "" {
		return domain
	}
	return ascii
}

// normalizePhone formats raw as E.164 when it parses as a valid number.
func normalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return raw
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}
