package service

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/octobees/customer360/api/internal/connection"
	"github.com/octobees/customer360/api/internal/entity"
	"github.com/octobees/customer360/api/internal/lusha"
)

type staticSource struct {
	client *lusha.Client
	err    error
}

func (s staticSource) Client() (*lusha.Client, error) { return s.client, s.err }

func newLushaServer(t *testing.T, routes map[string]string) (*lusha.Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return lusha.NewClient("key-1234", lusha.WithBaseURL(srv.URL), lusha.WithHTTPClient(srv.Client())), &calls
}

type memoryRecords struct {
	persons   []entity.Person
	companies []entity.Company
	saveErr   error
}

func (m *memoryRecords) SavePersons(ctx context.Context, persons []entity.Person) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.persons = append(m.persons, persons...)
	return nil
}

func (m *memoryRecords) SaveCompanies(ctx context.Context, companies []entity.Company) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.companies = append(m.companies, companies...)
	return nil
}

func (m *memoryRecords) ListPersons(ctx context.Context, limit int) ([]entity.Person, error) {
	return m.persons, nil
}

func (m *memoryRecords) ListCompanies(ctx context.Context, limit int) ([]entity.Company, error) {
	return m.companies, nil
}

type memoryUsage struct {
	stats  map[string]map[string]any
	getErr error
}

func (m *memoryUsage) Get(ctx context.Context, credential string) (map[string]any, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	stats, ok := m.stats[credential]
	return stats, ok, nil
}

func (m *memoryUsage) Set(ctx context.Context, credential string, stats map[string]any) error {
	if m.stats == nil {
		m.stats = map[string]map[string]any{}
	}
	m.stats[credential] = stats
	return nil
}

func (m *memoryUsage) Invalidate(ctx context.Context, credential string) error {
	delete(m.stats, credential)
	return nil
}

func TestEnrichmentService_NotConnected(t *testing.T) {
	svc := NewEnrichmentService(staticSource{err: connection.ErrNotConnected}, nil)
	ctx := context.Background()

	if _, err := svc.EnrichPerson(ctx, lusha.PersonQuery{Email: "a@b.co"}); !errors.Is(err, connection.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if _, err := svc.SearchProspects(ctx, lusha.ProspectingFilters{}); !errors.Is(err, connection.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if _, _, err := svc.Usage(ctx); !errors.Is(err, connection.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestEnrichmentService_EnrichPersonCleansAndPersists(t *testing.T) {
	client, _ := newLushaServer(t, map[string]string{
		"/v2/person": `{"data":[{"firstName":"Ada","emails":["ADA@Acme.com","ada@acme.com"],"phones":["(415) 555-1234"]}]}`,
	})
	records := &memoryRecords{}
	svc := NewEnrichmentService(staticSource{client: client}, NewContactCleaner("US"), WithRecords(records))

	persons, err := svc.EnrichPerson(context.Background(), lusha.PersonQuery{Email: "ada@acme.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(persons) != 1 || persons[0].Phone[0] != "+14155551234" || len(persons[0].Email) != 1 {
		t.Fatalf("expected cleaned person, got %+v", persons)
	}
	if len(records.persons) != 1 || records.persons[0].ID != persons[0].ID {
		t.Fatalf("expected person to be stored, got %+v", records.persons)
	}
}

func TestEnrichmentService_PersistFailureIsLogged(t *testing.T) {
	orig := log.Writer()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	defer log.SetOutput(orig)

	client, _ := newLushaServer(t, map[string]string{
		"/v2/company": `{"data":[{"name":"Acme","domain":"ACME.com"}]}`,
	})
	records := &memoryRecords{saveErr: errors.New("db down")}
	svc := NewEnrichmentService(staticSource{client: client}, nil, WithRecords(records))

	ctx := lusha.WithRequestID(context.Background(), "rid-9")
	companies, err := svc.SearchCompany(ctx, lusha.CompanyQuery{Domain: "acme.com"})
	if err != nil {
		t.Fatalf("storage failures must not fail the lookup: %v", err)
	}
	if len(companies) != 1 || companies[0].Domain != "acme.com" {
		t.Fatalf("unexpected companies: %+v", companies)
	}
	if !strings.Contains(buf.String(), "persist companies failed request_id=rid-9") {
		t.Fatalf("expected persistence failure log, got %q", buf.String())
	}
}

func TestEnrichmentService_InvalidCriteriaPassThrough(t *testing.T) {
	client, calls := newLushaServer(t, nil)
	svc := NewEnrichmentService(staticSource{client: client}, nil)

	if _, err := svc.EnrichProspectingContacts(context.Background(), []string{" "}); !errors.Is(err, lusha.ErrInvalidSearchCriteria) {
		t.Fatalf("expected ErrInvalidSearchCriteria, got %v", err)
	}
	if _, err := svc.BulkEnrichPersons(context.Background(), []lusha.PersonQuery{{}}); !errors.Is(err, lusha.ErrInvalidSearchCriteria) {
		t.Fatalf("expected ErrInvalidSearchCriteria, got %v", err)
	}
	if atomic.LoadInt32(calls) != 0 {
		t.Fatalf("expected no provider calls")
	}
}

func TestEnrichmentService_UsageIsCached(t *testing.T) {
	client, calls := newLushaServer(t, map[string]string{
		"/account/usage": `{"used":10,"total":100}`,
	})
	usage := &memoryUsage{}
	svc := NewEnrichmentService(staticSource{client: client}, nil, WithUsageStore(usage))

	stats, cached, err := svc.Usage(context.Background())
	if err != nil || cached || stats["used"] != 10.0 {
		t.Fatalf("unexpected first read: %+v cached=%v err=%v", stats, cached, err)
	}
	stats, cached, err = svc.Usage(context.Background())
	if err != nil || !cached || stats["total"] != 100.0 {
		t.Fatalf("unexpected second read: %+v cached=%v err=%v", stats, cached, err)
	}
	if got := atomic.LoadInt32(calls); got != 1 {
		t.Fatalf("expected one provider call, got %d", got)
	}

	svc.ForgetUsage(context.Background(), client.APIKey())
	if _, cached, err = svc.Usage(context.Background()); err != nil || cached {
		t.Fatalf("expected fresh read after invalidation, cached=%v err=%v", cached, err)
	}
	if got := atomic.LoadInt32(calls); got != 2 {
		t.Fatalf("expected second provider call, got %d", got)
	}
}

func TestEnrichmentService_UsageUnavailable(t *testing.T) {
	client, _ := newLushaServer(t, nil)
	svc := NewEnrichmentService(staticSource{client: client}, nil, WithUsageStore(&memoryUsage{getErr: errors.New("redis down")}))

	if _, _, err := svc.Usage(context.Background()); !errors.Is(err, ErrUsageUnavailable) {
		t.Fatalf("expected ErrUsageUnavailable, got %v", err)
	}
}

func TestEnrichmentService_Records(t *testing.T) {
	svc := NewEnrichmentService(staticSource{}, nil)
	if _, err := svc.RecentPersons(context.Background(), 10); !errors.Is(err, ErrRecordsDisabled) {
		t.Fatalf("expected ErrRecordsDisabled, got %v", err)
	}
	if _, err := svc.RecentCompanies(context.Background(), 10); !errors.Is(err, ErrRecordsDisabled) {
		t.Fatalf("expected ErrRecordsDisabled, got %v", err)
	}

	records := &memoryRecords{persons: []entity.Person{{FullName: "Ada"}}}
	svc = NewEnrichmentService(staticSource{}, nil, WithRecords(records))
	persons, err := svc.RecentPersons(context.Background(), 10)
	if err != nil || len(persons) != 1 {
		t.Fatalf("unexpected records: %+v err=%v", persons, err)
	}
}

func TestEnrichmentService_SearchProspectsCleans(t *testing.T) {
	client, _ := newLushaServer(t, map[string]string{
		"/prospecting/contact/search": `{"data":[{"firstName":"Bob","companyName":"Globex","emails":["BOB@GLOBEX.IO"]}]}`,
		"/prospecting/company/search": `{"data":[{"name":"Globex","domain":"Globex.IO"}]}`,
	})
	svc := NewEnrichmentService(staticSource{client: client}, nil)

	prospects, err := svc.SearchProspects(context.Background(), lusha.ProspectingFilters{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prospects) != 1 || prospects[0].PairedBy != entity.PairedByExactName {
		t.Fatalf("unexpected prospects: %+v", prospects)
	}
	if prospects[0].Person.Email[0] != "bob@globex.io" || prospects[0].Company.Domain != "globex.io" {
		t.Fatalf("expected cleaned prospect, got %+v", prospects[0])
	}
}
