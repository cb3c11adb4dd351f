package service

import (
	"context"
	"errors"
	"log"

	"github.com/octobees/customer360/api/internal/entity"
	"github.com/octobees/customer360/api/internal/lusha"
	"github.com/octobees/customer360/api/internal/repository"
)

var (
	// ErrUsageUnavailable is returned when the provider did not report usage.
	ErrUsageUnavailable = errors.New("usage statistics unavailable")
	// ErrRecordsDisabled is returned by listing calls when no database is configured.
	ErrRecordsDisabled = errors.New("record storage is not configured")
)

// ClientSource yields the provider client bound to the active credential.
type ClientSource interface {
	Client() (*lusha.Client, error)
}

// UsageStore caches usage snapshots per credential.
type UsageStore interface {
	Get(ctx context.Context, credential string) (map[string]any, bool, error)
	Set(ctx context.Context, credential string, stats map[string]any) error
	Invalidate(ctx context.Context, credential string) error
}

// EnrichmentService runs provider lookups through the active connection,
// cleans the returned contacts and keeps a copy of every record.
type EnrichmentService struct {
	clients ClientSource
	cleaner *ContactCleaner
	records repository.RecordsRepository
	usage   UsageStore
}

// EnrichmentOption configures optional collaborators.
type EnrichmentOption func(*EnrichmentService)

// WithRecords persists enriched records to repo.
func WithRecords(repo repository.RecordsRepository) EnrichmentOption {
	return func(s *EnrichmentService) {
		s.records = repo
	}
}

// WithUsageStore caches usage statistics in store.
func WithUsageStore(store UsageStore) EnrichmentOption {
	return func(s *EnrichmentService) {
		s.usage = store
	}
}

// NewEnrichmentService constructs the service.
func NewEnrichmentService(clients ClientSource, cleaner *ContactCleaner, opts ...EnrichmentOption) *EnrichmentService {
	if cleaner == nil {
		cleaner = NewContactCleaner(defaultPhoneRegion)
	}
	s := &EnrichmentService{clients: clients, cleaner: cleaner}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnrichPerson looks up a single person.
func (s *EnrichmentService) EnrichPerson(ctx context.Context, query lusha.PersonQuery) ([]entity.Person, error) {
	client, err := s.clients.Client()
	if err != nil {
		return nil, err
	}
	persons, err := client.EnrichPerson(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.keepPersons(ctx, persons), nil
}

// BulkEnrichPersons looks up several persons in one provider call.
func (s *EnrichmentService) BulkEnrichPersons(ctx context.Context, queries []lusha.PersonQuery) ([]entity.Person, error) {
	client, err := s.clients.Client()
	if err != nil {
		return nil, err
	}
	persons, err := client.BulkEnrichPersons(ctx, queries)
	if err != nil {
		return nil, err
	}
	return s.keepPersons(ctx, persons), nil
}

// SearchCompany looks up a company by domain or name.
func (s *EnrichmentService) SearchCompany(ctx context.Context, query lusha.CompanyQuery) ([]entity.Company, error) {
	client, err := s.clients.Client()
	if err != nil {
		return nil, err
	}
	companies, err := client.SearchCompany(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.keepCompanies(ctx, companies), nil
}

// SearchProspectingContacts runs a filtered contact search.
func (s *EnrichmentService) SearchProspectingContacts(ctx context.Context, filters lusha.ProspectingFilters) ([]entity.Person, error) {
	client, err := s.clients.Client()
	if err != nil {
		return nil, err
	}
	persons, err := client.SearchProspectingContacts(ctx, filters)
	if err != nil {
		return nil, err
	}
	return s.cleaner.Persons(persons), nil
}

// SearchProspectingCompanies runs a filtered company search.
func (s *EnrichmentService) SearchProspectingCompanies(ctx context.Context, filters lusha.ProspectingFilters) ([]entity.Company, error) {
	client, err := s.clients.Client()
	if err != nil {
		return nil, err
	}
	companies, err := client.SearchProspectingCompanies(ctx, filters)
	if err != nil {
		return nil, err
	}
	return s.cleaner.Companies(companies), nil
}

// EnrichProspectingContacts reveals full details for contacts found by a search.
func (s *EnrichmentService) EnrichProspectingContacts(ctx context.Context, ids []string) ([]entity.Person, error) {
	client, err := s.clients.Client()
	if err != nil {
		return nil, err
	}
	persons, err := client.EnrichProspectingContacts(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.keepPersons(ctx, persons), nil
}

// EnrichProspectingCompanies reveals full details for companies found by a search.
func (s *EnrichmentService) EnrichProspectingCompanies(ctx context.Context, ids []string) ([]entity.Company, error) {
	client, err := s.clients.Client()
	if err != nil {
		return nil, err
	}
	companies, err := client.EnrichProspectingCompanies(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.keepCompanies(ctx, companies), nil
}

// SearchProspects returns scored person/company pairs.
func (s *EnrichmentService) SearchProspects(ctx context.Context, filters lusha.ProspectingFilters) ([]entity.Prospect, error) {
	client, err := s.clients.Client()
	if err != nil {
		return nil, err
	}
	prospects, err := client.SearchProspects(ctx, filters)
	if err != nil {
		return nil, err
	}
	return s.cleaner.Prospects(prospects), nil
}

// Usage returns account usage, served from the cache when a fresh snapshot exists.
// The boolean reports whether the value came from the cache.
func (s *EnrichmentService) Usage(ctx context.Context) (map[string]any, bool, error) {
	client, err := s.clients.Client()
	if err != nil {
		return nil, false, err
	}

	if s.usage != nil {
		stats, ok, err := s.usage.Get(ctx, client.APIKey())
		if err != nil {
			log.Printf("usage cache read failed request_id=%s err=%v", lusha.RequestIDFromContext(ctx), err)
		} else if ok {
			return stats, true, nil
		}
	}

	stats := client.UsageStats(ctx)
	if stats == nil {
		return nil, false, ErrUsageUnavailable
	}

	if s.usage != nil {
		if err := s.usage.Set(ctx, client.APIKey(), stats); err != nil {
			log.Printf("usage cache write failed request_id=%s err=%v", lusha.RequestIDFromContext(ctx), err)
		}
	}
	return stats, false, nil
}

// ForgetUsage drops the cached snapshot of a credential that is no longer active.
func (s *EnrichmentService) ForgetUsage(ctx context.Context, credential string) {
	if s.usage == nil || credential == "" {
		return
	}
	if err := s.usage.Invalidate(ctx, credential); err != nil {
		log.Printf("usage cache invalidate failed err=%v", err)
	}
}

// RecentPersons lists the most recently stored persons.
func (s *EnrichmentService) RecentPersons(ctx context.Context, limit int) ([]entity.Person, error) {
	if s.records == nil {
		return nil, ErrRecordsDisabled
	}
	return s.records.ListPersons(ctx, limit)
}

// RecentCompanies lists the most recently stored companies.
func (s *EnrichmentService) RecentCompanies(ctx context.Context, limit int) ([]entity.Company, error) {
	if s.records == nil {
		return nil, ErrRecordsDisabled
	}
	return s.records.ListCompanies(ctx, limit)
}

func (s *EnrichmentService) keepPersons(ctx context.Context, persons []entity.Person) []entity.Person {
	persons = s.cleaner.Persons(persons)
	if s.records != nil && len(persons) > 0 {
		if err := s.records.SavePersons(ctx, persons); err != nil {
			log.Printf("persist persons failed request_id=%s count=%d err=%v", lusha.RequestIDFromContext(ctx), len(persons), err)
		}
	}
	return persons
}

func (s *EnrichmentService) keepCompanies(ctx context.Context, companies []entity.Company) []entity.Company {
	companies = s.cleaner.Companies(companies)
	if s.records != nil && len(companies) > 0 {
		if err := s.records.SaveCompanies(ctx, companies); err != nil {
			log.Printf("persist companies failed request_id=%s count=%d err=%v", lusha.RequestIDFromContext(ctx), len(companies), err)
		}
	}
	return companies
}
