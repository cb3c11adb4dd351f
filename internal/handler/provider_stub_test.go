package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/octobees/customer360/api/internal/connection"
	"github.com/octobees/customer360/api/internal/entity"
	"github.com/octobees/customer360/api/internal/lusha"
)

// providerStub answers provider paths with canned bodies. Requests carrying
// any key other than validKey are rejected with 401.
type providerStub struct {
	mu       sync.Mutex
	validKey string
	routes   map[string]string
	status   map[string]int
	paths    []string
}

func (p *providerStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.paths = append(p.paths, r.URL.Path)
	code, failing := p.status[r.URL.Path]
	p.mu.Unlock()

	if r.Header.Get("api_key") != p.validKey {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if failing {
		w.WriteHeader(code)
		return
	}
	body, ok := p.routes[r.URL.Path]
	if !ok {
		body = `{"data":[]}`
	}
	_, _ = w.Write([]byte(body))
}

func (p *providerStub) fail(path string, code int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == nil {
		p.status = map[string]int{}
	}
	p.status[path] = code
}

func (p *providerStub) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.paths)
}

func newConnectedManager(t *testing.T, stub *providerStub, connect bool) *connection.Manager {
	t.Helper()
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	manager := connection.NewManager(func(apiKey string) *lusha.Client {
		return lusha.NewClient(apiKey, lusha.WithBaseURL(srv.URL), lusha.WithHTTPClient(srv.Client()))
	}, stub.validKey)
	if connect {
		manager.Init(context.Background())
		if !manager.State().Connected {
			t.Fatalf("expected stub connection to succeed")
		}
	}
	return manager
}

func jsonContext(e *echo.Echo, method, target string, body any) (echo.Context, *httptest.ResponseRecorder) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) APIResponse {
	t.Helper()
	var raw struct {
		APIResponse
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if data != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
	}
	return raw.APIResponse
}

type memoryRecords struct {
	persons   []entity.Person
	companies []entity.Company
}

func (m *memoryRecords) SavePersons(ctx context.Context, persons []entity.Person) error {
	m.persons = append(m.persons, persons...)
	return nil
}

func (m *memoryRecords) SaveCompanies(ctx context.Context, companies []entity.Company) error {
	m.companies = append(m.companies, companies...)
	return nil
}

func (m *memoryRecords) ListPersons(ctx context.Context, limit int) ([]entity.Person, error) {
	if limit > 0 && limit < len(m.persons) {
		return m.persons[:limit], nil
	}
	return m.persons, nil
}

func (m *memoryRecords) ListCompanies(ctx context.Context, limit int) ([]entity.Company, error) {
	return m.companies, nil
}
