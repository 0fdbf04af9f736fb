package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/byteness/leasegate/grant"
	"github.com/byteness/leasegate/logging"
	"github.com/byteness/leasegate/notification"
	"github.com/byteness/leasegate/policy"
)

// ============================================================================
// MockGrantStore - implements grant.Store interface
// ============================================================================

// MockGrantStore implements grant.Store for testing.
// Supports configurable responses and in-memory storage for stateful tests.
type MockGrantStore struct {
	mu sync.Mutex

	// Configurable behavior functions
	CreateFunc          func(ctx context.Context, req *grant.AccessRequest) error
	GetFunc             func(ctx context.Context, id string) (*grant.AccessRequest, error)
	UpdateFunc          func(ctx context.Context, req *grant.AccessRequest) error
	DeleteFunc          func(ctx context.Context, id string) error
	ListByRequesterFunc func(ctx context.Context, requester string, limit int) ([]*grant.AccessRequest, error)
	ListByStatusFunc    func(ctx context.Context, status grant.Status, limit int) ([]*grant.AccessRequest, error)
	ListByAccountFunc   func(ctx context.Context, accountID string, limit int) ([]*grant.AccessRequest, error)

	// Error injection (used if behavior function is nil)
	CreateErr          error
	GetErr             error
	UpdateErr          error
	DeleteErr          error
	ListByRequesterErr error
	ListByStatusErr    error
	ListByAccountErr   error

	// In-memory storage for stateful tests
	Requests map[string]*grant.AccessRequest

	// Clock stamps updated_at on successful updates. Defaults to time.Now.
	Clock func() time.Time

	// Call tracking
	CreateCalls          []*grant.AccessRequest
	GetCalls             []string
	UpdateCalls          []*grant.AccessRequest
	DeleteCalls          []string
	ListByRequesterCalls []ListByRequesterCall
	ListByStatusCalls    []ListByStatusCall
	ListByAccountCalls   []ListByAccountCall
}

// ListByRequesterCall tracks parameters for ListByRequester calls.
type ListByRequesterCall struct {
	Requester string
	Limit     int
}

// ListByStatusCall tracks parameters for ListByStatus calls.
type ListByStatusCall struct {
	Status grant.Status
	Limit  int
}

// ListByAccountCall tracks parameters for ListByAccount calls.
type ListByAccountCall struct {
	AccountID string
	Limit     int
}

// NewMockGrantStore creates a new MockGrantStore with initialized maps.
func NewMockGrantStore() *MockGrantStore {
	return &MockGrantStore{
		Requests: make(map[string]*grant.AccessRequest),
		Clock:    time.Now,
	}
}

// cloneRequest returns a shallow copy so callers mutate their own record,
// the way a real store hands back a deserialized item. Without the copy
// the optimistic-lock check below would compare a request against itself.
func cloneRequest(req *grant.AccessRequest) *grant.AccessRequest {
	cp := *req
	return &cp
}

// Create stores a new request.
func (m *MockGrantStore) Create(ctx context.Context, req *grant.AccessRequest) error {
	m.mu.Lock()
	m.CreateCalls = append(m.CreateCalls, req)
	m.mu.Unlock()

	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	if m.Requests == nil {
		m.Requests = make(map[string]*grant.AccessRequest)
	}
	m.Requests[req.ID] = cloneRequest(req)
	m.mu.Unlock()
	return nil
}

// Get retrieves a request by ID.
func (m *MockGrantStore) Get(ctx context.Context, id string) (*grant.AccessRequest, error) {
	m.mu.Lock()
	m.GetCalls = append(m.GetCalls, id)
	m.mu.Unlock()

	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if req, ok := m.Requests[id]; ok {
		return cloneRequest(req), nil
	}
	return nil, grant.ErrRequestNotFound
}

// Update modifies an existing request, enforcing the Store optimistic-lock
// contract: req.UpdatedAt must match the stored record's, and a successful
// update stamps a fresh timestamp on req.
func (m *MockGrantStore) Update(ctx context.Context, req *grant.AccessRequest) error {
	m.mu.Lock()
	m.UpdateCalls = append(m.UpdateCalls, req)
	m.mu.Unlock()

	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, req)
	}
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Requests == nil {
		return grant.ErrRequestNotFound
	}
	stored, ok := m.Requests[req.ID]
	if !ok {
		return grant.ErrRequestNotFound
	}
	if !stored.UpdatedAt.Equal(req.UpdatedAt) {
		return grant.ErrConcurrentModification
	}
	if m.Clock != nil {
		req.UpdatedAt = m.Clock()
	} else {
		req.UpdatedAt = time.Now()
	}
	m.Requests[req.ID] = cloneRequest(req)
	return nil
}

// Delete removes a request by ID.
func (m *MockGrantStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	m.DeleteCalls = append(m.DeleteCalls, id)
	m.mu.Unlock()

	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Requests, id)
	return nil
}

// ListByRequester returns requests from a specific user.
func (m *MockGrantStore) ListByRequester(ctx context.Context, requester string, limit int) ([]*grant.AccessRequest, error) {
	m.mu.Lock()
	m.ListByRequesterCalls = append(m.ListByRequesterCalls, ListByRequesterCall{Requester: requester, Limit: limit})
	m.mu.Unlock()

	if m.ListByRequesterFunc != nil {
		return m.ListByRequesterFunc(ctx, requester, limit)
	}
	if m.ListByRequesterErr != nil {
		return nil, m.ListByRequesterErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*grant.AccessRequest
	for _, req := range m.Requests {
		if req.RequesterEmail == requester {
			out = append(out, cloneRequest(req))
		}
	}
	return out, nil
}

// ListByStatus returns requests with a specific status.
func (m *MockGrantStore) ListByStatus(ctx context.Context, status grant.Status, limit int) ([]*grant.AccessRequest, error) {
	m.mu.Lock()
	m.ListByStatusCalls = append(m.ListByStatusCalls, ListByStatusCall{Status: status, Limit: limit})
	m.mu.Unlock()

	if m.ListByStatusFunc != nil {
		return m.ListByStatusFunc(ctx, status, limit)
	}
	if m.ListByStatusErr != nil {
		return nil, m.ListByStatusErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*grant.AccessRequest
	for _, req := range m.Requests {
		if req.Status == status {
			out = append(out, cloneRequest(req))
		}
	}
	return out, nil
}

// ListByAccount returns requests targeting a specific account.
func (m *MockGrantStore) ListByAccount(ctx context.Context, accountID string, limit int) ([]*grant.AccessRequest, error) {
	m.mu.Lock()
	m.ListByAccountCalls = append(m.ListByAccountCalls, ListByAccountCall{AccountID: accountID, Limit: limit})
	m.mu.Unlock()

	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit)
	}
	if m.ListByAccountErr != nil {
		return nil, m.ListByAccountErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*grant.AccessRequest
	for _, req := range m.Requests {
		if req.AccountID == accountID {
			out = append(out, cloneRequest(req))
		}
	}
	return out, nil
}

// Reset clears all call tracking and stored data.
func (m *MockGrantStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls = nil
	m.GetCalls = nil
	m.UpdateCalls = nil
	m.DeleteCalls = nil
	m.ListByRequesterCalls = nil
	m.ListByStatusCalls = nil
	m.ListByAccountCalls = nil
	m.Requests = make(map[string]*grant.AccessRequest)
}

// ============================================================================
// MockPolicyLoader - policy loading
// ============================================================================

// MockPolicyLoader provides configurable governance policy responses.
type MockPolicyLoader struct {
	mu sync.Mutex

	// Configurable behavior functions
	LoadFunc func(ctx context.Context, parameterName string) (*policy.GovernancePolicy, error)

	// Predefined responses per parameter name
	Policies map[string]*policy.GovernancePolicy

	// Error injection
	LoadErr error

	// Call tracking
	LoadCalls []string
}

// NewMockPolicyLoader creates a new MockPolicyLoader with initialized maps.
func NewMockPolicyLoader() *MockPolicyLoader {
	return &MockPolicyLoader{
		Policies: make(map[string]*policy.GovernancePolicy),
	}
}

// Load fetches a policy by parameter name.
func (m *MockPolicyLoader) Load(ctx context.Context, parameterName string) (*policy.GovernancePolicy, error) {
	m.mu.Lock()
	m.LoadCalls = append(m.LoadCalls, parameterName)
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, parameterName)
	}
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.Policies[parameterName]; ok {
		return p, nil
	}
	return nil, policy.ErrPolicyNotFound
}

// Reset clears all call tracking and predefined policies.
func (m *MockPolicyLoader) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoadCalls = nil
	m.Policies = make(map[string]*policy.GovernancePolicy)
}

// ============================================================================
// MockNotifier - notification.Notifier interface
// ============================================================================

// MockNotifier implements notification.Notifier for testing.
// Tracks all notification calls for assertions.
type MockNotifier struct {
	mu sync.Mutex

	// Configurable behavior function
	NotifyFunc func(ctx context.Context, event *notification.Event) error

	// Error injection
	NotifyErr error

	// Call tracking
	NotifyCalls []*notification.Event
}

// NewMockNotifier creates a new MockNotifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Notify sends a notification.
func (m *MockNotifier) Notify(ctx context.Context, event *notification.Event) error {
	m.mu.Lock()
	m.NotifyCalls = append(m.NotifyCalls, event)
	m.mu.Unlock()

	if m.NotifyFunc != nil {
		return m.NotifyFunc(ctx, event)
	}
	if m.NotifyErr != nil {
		return m.NotifyErr
	}
	return nil
}

// Reset clears all call tracking.
func (m *MockNotifier) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifyCalls = nil
}

// NotifyCallCount returns the number of Notify calls made.
func (m *MockNotifier) NotifyCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.NotifyCalls)
}

// LastNotification returns the last notification event, or nil if none.
func (m *MockNotifier) LastNotification() *notification.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.NotifyCalls) == 0 {
		return nil
	}
	return m.NotifyCalls[len(m.NotifyCalls)-1]
}

// EventsOfType returns all captured events of the given type.
func (m *MockNotifier) EventsOfType(t notification.EventType) []*notification.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*notification.Event
	for _, e := range m.NotifyCalls {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// ============================================================================
// MockProvisioner - grant provisioning
// ============================================================================

// MockProvisioner implements the provisioner interface used by the
// lifecycle controller. Tracks Apply and Revoke calls for assertions.
type MockProvisioner struct {
	mu sync.Mutex

	// Configurable behavior functions
	ApplyFunc  func(ctx context.Context, req *grant.AccessRequest) (*grant.GrantHandle, error)
	RevokeFunc func(ctx context.Context, req *grant.AccessRequest) error

	// Error injection
	ApplyErr  error
	RevokeErr error

	// Call tracking
	ApplyCalls  []*grant.AccessRequest
	RevokeCalls []*grant.AccessRequest
}

// NewMockProvisioner creates a new MockProvisioner.
func NewMockProvisioner() *MockProvisioner {
	return &MockProvisioner{}
}

// Apply provisions access for an approved request.
func (m *MockProvisioner) Apply(ctx context.Context, req *grant.AccessRequest) (*grant.GrantHandle, error) {
	m.mu.Lock()
	m.ApplyCalls = append(m.ApplyCalls, req)
	m.mu.Unlock()

	if m.ApplyFunc != nil {
		return m.ApplyFunc(ctx, req)
	}
	if m.ApplyErr != nil {
		return nil, m.ApplyErr
	}
	return &grant.GrantHandle{
		PolicyARN:   "arn:aws:iam::123456789012:policy/mock-" + req.ID,
		RoleName:    "mock-role-" + req.ID,
		PolicyOwned: true,
	}, nil
}

// Revoke tears down access for a request.
func (m *MockProvisioner) Revoke(ctx context.Context, req *grant.AccessRequest) error {
	m.mu.Lock()
	m.RevokeCalls = append(m.RevokeCalls, req)
	m.mu.Unlock()

	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, req)
	}
	return m.RevokeErr
}

// Reset clears all call tracking.
func (m *MockProvisioner) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ApplyCalls = nil
	m.RevokeCalls = nil
}

// ============================================================================
// MockLogger - logging.Logger interface
// ============================================================================

// MockLogger implements logging.Logger for testing.
// Captures all log entries for assertions.
type MockLogger struct {
	mu sync.Mutex

	// Captured log entries
	GrantEntries   []logging.GrantLogEntry
	AnomalyEntries []logging.AnomalyLogEntry
	AdminEntries   []logging.AdminLogEntry
}

// NewMockLogger creates a new MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

// LogGrant logs a grant lifecycle entry.
func (m *MockLogger) LogGrant(entry logging.GrantLogEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GrantEntries = append(m.GrantEntries, entry)
}

// LogAnomaly logs an anomaly detection entry.
func (m *MockLogger) LogAnomaly(entry logging.AnomalyLogEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AnomalyEntries = append(m.AnomalyEntries, entry)
}

// LogAdmin logs a privileged admin action entry.
func (m *MockLogger) LogAdmin(entry logging.AdminLogEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AdminEntries = append(m.AdminEntries, entry)
}

// Reset clears all captured log entries.
func (m *MockLogger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GrantEntries = nil
	m.AnomalyEntries = nil
	m.AdminEntries = nil
}

// GrantCount returns the number of grant log entries.
func (m *MockLogger) GrantCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.GrantEntries)
}

// LastGrant returns the last grant log entry, or empty if none.
func (m *MockLogger) LastGrant() logging.GrantLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.GrantEntries) == 0 {
		return logging.GrantLogEntry{}
	}
	return m.GrantEntries[len(m.GrantEntries)-1]
}

// LastAdmin returns the last admin log entry, or empty if none.
func (m *MockLogger) LastAdmin() logging.AdminLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.AdminEntries) == 0 {
		return logging.AdminLogEntry{}
	}
	return m.AdminEntries[len(m.AdminEntries)-1]
}
