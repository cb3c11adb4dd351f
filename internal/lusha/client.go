// Package lusha implements the enrichment provider client: request building
// for person, company and prospecting lookups, and normalization of provider
// responses into the records in package entity.
package lusha

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/customer360/api/internal/entity"
)

// DefaultBaseURL is the root of the provider API.
const DefaultBaseURL = "https://api.lusha.com"

// canaryEmail is the lookup issued by TestConnection.
const canaryEmail = "test@example.com"

// Endpoints holds the provider paths for every operation.
type Endpoints struct {
	Person        string
	Company       string
	ContactSearch string
	CompanySearch string
	ContactEnrich string
	CompanyEnrich string
	Usage         string
}

// DefaultEndpoints returns the provider's published paths.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Person:        "/v2/person",
		Company:       "/v2/company",
		ContactSearch: "/prospecting/contact/search",
		CompanySearch: "/prospecting/company/search",
		ContactEnrich: "/prospecting/contact/enrich",
		CompanyEnrich: "/prospecting/company/enrich",
		Usage:         "/account/usage",
	}
}

// Client issues provider requests with one fixed API key. A Client is never
// mutated after construction; rotate credentials by building a new one.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	endpoints  Endpoints
	newID      func() uuid.UUID
	now        func() time.Time
}

// Option configures optional dependencies.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the provider base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/"); baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithEndpoints overrides the provider paths.
func WithEndpoints(endpoints Endpoints) Option {
	return func(c *Client) {
		c.endpoints = endpoints
	}
}

// WithIDGenerator overrides how record and correlation ids are generated.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(c *Client) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// WithClock overrides the timestamp source for transformed records.
func WithClock(fn func() time.Time) Option {
	return func(c *Client) {
		if fn != nil {
			c.now = fn
		}
	}
}

// NewClient builds a client bound to apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		endpoints:  DefaultEndpoints(),
		newID:      uuid.New,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIKey returns the credential the client was built with.
func (c *Client) APIKey() string {
	return c.apiKey
}

type contactsEnvelope struct {
	Contacts []contactRequest `json:"contacts"`
	Metadata map[string]bool  `json:"metadata"`
}

type companiesEnvelope struct {
	Companies []companyRequest `json:"companies"`
	Metadata  map[string]bool  `json:"metadata"`
}

// EnrichPerson looks up a single person. The provider may return any number of
// candidates for one query.
func (c *Client) EnrichPerson(ctx context.Context, query PersonQuery) ([]entity.Person, error) {
	lookup, err := query.Resolve()
	if err != nil {
		return nil, err
	}
	payload := contactsEnvelope{
		Contacts: []contactRequest{lookup.contact(c.newID().String())},
		Metadata: map[string]bool{"refreshJobInfo": true},
	}
	return c.postPersons(ctx, c.endpoints.Person, payload)
}

// BulkEnrichPersons looks up many people in one provider call. Queries that do
// not resolve are dropped from the request.
func (c *Client) BulkEnrichPersons(ctx context.Context, queries []PersonQuery) ([]entity.Person, error) {
	contacts := make([]contactRequest, 0, len(queries))
	for _, q := range queries {
		lookup, err := q.Resolve()
		if err != nil {
			continue
		}
		contacts = append(contacts, lookup.contact(c.newID().String()))
	}
	if len(contacts) == 0 {
		return nil, ErrInvalidSearchCriteria
	}
	if dropped := len(queries) - len(contacts); dropped > 0 {
		log.Printf("lusha bulk enrich dropped=%d kept=%d", dropped, len(contacts))
	}
	payload := contactsEnvelope{
		Contacts: contacts,
		Metadata: map[string]bool{"refreshJobInfo": true},
	}
	return c.postPersons(ctx, c.endpoints.Person, payload)
}

// SearchCompany looks up a company by domain or name.
func (c *Client) SearchCompany(ctx context.Context, query CompanyQuery) ([]entity.Company, error) {
	req, err := query.resolve(c.newID().String())
	if err != nil {
		return nil, err
	}
	payload := companiesEnvelope{
		Companies: []companyRequest{req},
		Metadata:  map[string]bool{"refreshJobInfo": true},
	}
	return c.postCompanies(ctx, c.endpoints.Company, payload)
}

// SearchProspectingContacts discovers contacts matching the filters.
func (c *Client) SearchProspectingContacts(ctx context.Context, filters ProspectingFilters) ([]entity.Person, error) {
	return c.postPersons(ctx, c.endpoints.ContactSearch, filters.payload())
}

// SearchProspectingCompanies discovers companies matching the filters.
func (c *Client) SearchProspectingCompanies(ctx context.Context, filters ProspectingFilters) ([]entity.Company, error) {
	return c.postCompanies(ctx, c.endpoints.CompanySearch, filters.payload())
}

// EnrichProspectingContacts reveals full contact data for prospecting ids.
func (c *Client) EnrichProspectingContacts(ctx context.Context, ids []string) ([]entity.Person, error) {
	ids = compact(ids)
	if len(ids) == 0 {
		return nil, ErrInvalidSearchCriteria
	}
	payload := struct {
		ContactIDs []string        `json:"contactIds"`
		Metadata   map[string]bool `json:"metadata"`
	}{
		ContactIDs: ids,
		Metadata: map[string]bool{
			"revealEmails":        true,
			"revealPhones":        true,
			"includePersonalData": true,
			"includeCompanyData":  true,
		},
	}
	return c.postPersons(ctx, c.endpoints.ContactEnrich, payload)
}

// EnrichProspectingCompanies reveals financial and technology data for prospecting ids.
func (c *Client) EnrichProspectingCompanies(ctx context.Context, ids []string) ([]entity.Company, error) {
	ids = compact(ids)
	if len(ids) == 0 {
		return nil, ErrInvalidSearchCriteria
	}
	payload := struct {
		CompanyIDs []string        `json:"companyIds"`
		Metadata   map[string]bool `json:"metadata"`
	}{
		CompanyIDs: ids,
		Metadata: map[string]bool{
			"includeFinancials":   true,
			"includeTechnologies": true,
		},
	}
	return c.postCompanies(ctx, c.endpoints.CompanyEnrich, payload)
}

// TestConnection issues a canary lookup and reports whether it succeeded. It
// never returns an error.
func (c *Client) TestConnection(ctx context.Context) bool {
	_, err := c.EnrichPerson(ctx, PersonQuery{Email: canaryEmail})
	if err != nil {
		log.Printf("lusha connection test failed: %v", err)
		return false
	}
	return true
}

// UsageStats returns the provider's usage blob, or nil on any failure.
func (c *Client) UsageStats(ctx context.Context) map[string]any {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoints.Usage, nil)
	if err != nil {
		log.Printf("lusha usage stats failed: %v", err)
		return nil
	}
	body, err := c.do(req, c.endpoints.Usage)
	if err != nil {
		log.Printf("lusha usage stats failed: %v", err)
		return nil
	}
	var stats map[string]any
	if err := json.Unmarshal(body, &stats); err != nil {
		log.Printf("lusha usage stats decode failed: %v", err)
		return nil
	}
	return stats
}

func (c *Client) postPersons(ctx context.Context, endpoint string, payload any) ([]entity.Person, error) {
	items, err := c.postData(ctx, endpoint, payload)
	if err != nil {
		return nil, err
	}
	persons := make([]entity.Person, 0, len(items))
	for _, item := range items {
		person, err := PersonFromProvider(item, Stamp{ID: c.newID(), Now: c.now()})
		if err != nil {
			log.Printf("lusha %s skipped malformed person: %v", endpoint, err)
			continue
		}
		persons = append(persons, person)
	}
	return persons, nil
}

func (c *Client) postCompanies(ctx context.Context, endpoint string, payload any) ([]entity.Company, error) {
	items, err := c.postData(ctx, endpoint, payload)
	if err != nil {
		return nil, err
	}
	companies := make([]entity.Company, 0, len(items))
	for _, item := range items {
		company, err := CompanyFromProvider(item, Stamp{ID: c.newID(), Now: c.now()})
		if err != nil {
			log.Printf("lusha %s skipped malformed company: %v", endpoint, err)
			continue
		}
		companies = append(companies, company)
	}
	return companies, nil
}

// postData sends payload and returns the elements of the response "data" array.
// A missing or non-array "data" is an empty result.
func (c *Client) postData(ctx context.Context, endpoint string, payload any) ([]json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", endpoint, err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	respBody, err := c.do(req, endpoint)
	if err != nil {
		return nil, err
	}
	return dataItems(respBody, endpoint)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api_key", c.apiKey)
	if rid := RequestIDFromContext(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, endpoint string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProviderError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func dataItems(body []byte, endpoint string) ([]json.RawMessage, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(envelope.Data, &items); err != nil {
		return nil, nil
	}
	kept := items[:0]
	for _, item := range items {
		if trimmed := bytes.TrimSpace(item); len(trimmed) > 0 && trimmed[0] == '{' {
			kept = append(kept, item)
		}
	}
	return kept, nil
}
