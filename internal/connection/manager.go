// Package connection owns the process-wide provider credential and exposes
// its health as state rather than errors.
package connection

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/octobees/customer360/api/internal/lusha"
)

// ErrNotConnected is returned by Client when no validated credential is active.
var ErrNotConnected = errors.New("enrichment provider is not connected")

// Factory builds a client bound to apiKey.
type Factory func(apiKey string) *lusha.Client

// Phase names the state machine position.
type Phase string

// Phases of the connection lifecycle, as reported by State.Phase.
const (
	PhaseUnconnected Phase = "unconnected"
	PhaseTesting     Phase = "testing"
	PhaseConnected   Phase = "connected"
	PhaseError       Phase = "error"
)

// State is the snapshot exposed to callers.
type State struct {
	Connected bool   `json:"connected"`
	Loading   bool   `json:"loading"`
	Error     string `json:"error,omitempty"`
	APIKey    string `json:"-"`
}

// Phase derives the state machine position from the snapshot.
func (s State) Phase() Phase {
	switch {
	case s.Loading:
		return PhaseTesting
	case s.Connected:
		return PhaseConnected
	case s.Error != "":
		return PhaseError
	default:
		return PhaseUnconnected
	}
}

// Manager serializes credential tests and rotations. Every test takes a ticket
// from a monotonic sequence and only the newest ticket may commit its result,
// so a slow rotation can never overwrite a later one.
type Manager struct {
	factory    Factory
	defaultKey string
	probe      func(ctx context.Context, c *lusha.Client) bool

	// pubMu orders deliveries so subscribers observe states in commit order.
	pubMu sync.Mutex

	mu          sync.Mutex
	state       State
	seq         uint64
	subscribers map[int]func(State)
	nextSub     int

	active   atomic.Pointer[lusha.Client]
	initOnce sync.Once
}

// NewManager creates a manager in the unconnected state. defaultKey is the
// credential tested by Init.
func NewManager(factory Factory, defaultKey string) *Manager {
	if factory == nil {
		panic("connection factory must not be nil")
	}
	return &Manager{
		factory:     factory,
		defaultKey:  strings.TrimSpace(defaultKey),
		probe:       func(ctx context.Context, c *lusha.Client) bool { return c.TestConnection(ctx) },
		subscribers: make(map[int]func(State)),
	}
}

// Init tests the default credential once; later calls are no-ops.
func (m *Manager) Init(ctx context.Context) {
	m.initOnce.Do(func() {
		m.TestConnection(ctx)
	})
}

// State returns the current snapshot.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Client returns the active client, or ErrNotConnected.
func (m *Manager) Client() (*lusha.Client, error) {
	client := m.active.Load()
	if client == nil {
		return nil, ErrNotConnected
	}
	return client, nil
}

// Subscribe registers fn to receive every state change. Deliveries are
// serialized and fn must not call methods that change the state. The returned
// func removes the subscription.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}
}

// TestConnection re-validates the active credential, or the default one when
// none is active, and reports whether it is usable.
func (m *Manager) TestConnection(ctx context.Context) bool {
	key := m.State().APIKey
	if key == "" {
		key = m.defaultKey
	}
	return m.run(ctx, key)
}

// UpdateAPIKey tests candidate and commits it only if it proves valid. The
// previous credential stays active while the test runs; on failure it is
// discarded as well.
func (m *Manager) UpdateAPIKey(ctx context.Context, candidate string) bool {
	return m.run(ctx, strings.TrimSpace(candidate))
}

// Disconnect resets to the initial state and invalidates in-flight tests.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.seq++
	m.active.Store(nil)
	m.state = State{}
	m.mu.Unlock()

	log.Printf("lusha connection state=%s", PhaseUnconnected)
	m.publish()
}

// ClearError unsets the error message and keeps everything else.
func (m *Manager) ClearError() {
	m.mu.Lock()
	m.state.Error = ""
	m.mu.Unlock()
	m.publish()
}

func (m *Manager) run(ctx context.Context, key string) bool {
	m.mu.Lock()
	m.seq++
	ticket := m.seq
	m.state.Loading = true
	m.state.Error = ""
	m.mu.Unlock()
	m.publish()

	if key == "" {
		return m.commit(ticket, nil, "", "API key is required")
	}

	candidate := m.factory(key)
	if !m.probe(ctx, candidate) {
		return m.commit(ticket, nil, "", "failed to connect to Lusha API")
	}
	return m.commit(ticket, candidate, key, "")
}

// commit applies a test result if ticket is still the newest one.
func (m *Manager) commit(ticket uint64, client *lusha.Client, key, errMsg string) bool {
	m.mu.Lock()
	if ticket != m.seq {
		m.mu.Unlock()
		log.Printf("lusha connection discarded stale result ticket=%d latest=%d", ticket, m.seq)
		return false
	}
	m.active.Store(client)
	m.state = State{
		Connected: client != nil,
		Loading:   false,
		Error:     errMsg,
		APIKey:    key,
	}
	phase := m.state.Phase()
	m.mu.Unlock()

	log.Printf("lusha connection state=%s", phase)
	m.publish()
	return client != nil
}

func (m *Manager) publish() {
	m.pubMu.Lock()
	defer m.pubMu.Unlock()

	m.mu.Lock()
	state := m.state
	subs := make([]func(State), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

// MaskKey keeps the last four characters of key for display.
func MaskKey(key string) string {
	runes := []rune(key)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
}
