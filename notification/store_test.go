package notification

import (
	"context"
	"testing"
	"time"

	"github.com/byteness/leasegate/grant"
)

// memStore is a minimal in-memory grant.Store for NotifyStore tests.
type memStore struct {
	requests map[string]*grant.AccessRequest
}

func newMemStore() *memStore {
	return &memStore{requests: make(map[string]*grant.AccessRequest)}
}

func (s *memStore) Create(_ context.Context, req *grant.AccessRequest) error {
	if _, ok := s.requests[req.ID]; ok {
		return grant.ErrRequestExists
	}
	s.requests[req.ID] = req
	return nil
}

func (s *memStore) Get(_ context.Context, id string) (*grant.AccessRequest, error) {
	req, ok := s.requests[id]
	if !ok {
		return nil, grant.ErrRequestNotFound
	}
	copied := *req
	return &copied, nil
}

func (s *memStore) Update(_ context.Context, req *grant.AccessRequest) error {
	if _, ok := s.requests[req.ID]; !ok {
		return grant.ErrRequestNotFound
	}
	s.requests[req.ID] = req
	return nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	delete(s.requests, id)
	return nil
}

func (s *memStore) ListByRequester(_ context.Context, _ string, _ int) ([]*grant.AccessRequest, error) {
	return nil, nil
}

func (s *memStore) ListByStatus(_ context.Context, _ grant.Status, _ int) ([]*grant.AccessRequest, error) {
	return nil, nil
}

func (s *memStore) ListByAccount(_ context.Context, _ string, _ int) ([]*grant.AccessRequest, error) {
	return nil, nil
}

// chanNotifier delivers captured events on a channel so tests can wait
// for the asynchronous notification goroutine.
type chanNotifier struct {
	events chan *Event
}

func newChanNotifier() *chanNotifier {
	return &chanNotifier{events: make(chan *Event, 10)}
}

func (n *chanNotifier) Notify(_ context.Context, event *Event) error {
	n.events <- event
	return nil
}

func (n *chanNotifier) wait(t *testing.T) *Event {
	t.Helper()
	select {
	case e := <-n.events:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return nil
	}
}

func pendingRequest() *grant.AccessRequest {
	now := time.Now()
	return &grant.AccessRequest{
		ID:             "abc123def4567890",
		RequesterEmail: "alice@example.com",
		AccountID:      "123456789012",
		Status:         grant.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      now.Add(8 * time.Hour),
	}
}

func TestNotifyStoreCreateFiresSubmitted(t *testing.T) {
	notifier := newChanNotifier()
	store := NewNotifyStore(newMemStore(), notifier)

	req := pendingRequest()
	if err := store.Create(context.Background(), req); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	event := notifier.wait(t)
	if event.Type != EventGrantSubmitted {
		t.Errorf("event type = %s, want %s", event.Type, EventGrantSubmitted)
	}
	if event.Actor != "alice@example.com" {
		t.Errorf("actor = %q, want requester", event.Actor)
	}
}

func TestNotifyStoreUpdateTransitions(t *testing.T) {
	testCases := []struct {
		name       string
		mutate     func(req *grant.AccessRequest)
		wantType   EventType
		wantActor  string
		wantDetail string
	}{
		{
			name: "approved",
			mutate: func(req *grant.AccessRequest) {
				req.Status = grant.StatusApproved
				req.Approvals = []grant.Approval{
					{Approver: "manager@example.com", Role: grant.RoleManager, Timestamp: time.Now()},
				}
			},
			wantType:  EventGrantApproved,
			wantActor: "manager@example.com",
		},
		{
			name: "denied with reason",
			mutate: func(req *grant.AccessRequest) {
				req.Status = grant.StatusDenied
				req.DenialReason = "insufficient justification"
				req.Approvals = []grant.Approval{
					{Approver: "lead@example.com", Role: grant.RoleSecurityLead, Timestamp: time.Now()},
				}
			},
			wantType:   EventGrantDenied,
			wantActor:  "lead@example.com",
			wantDetail: "insufficient justification",
		},
		{
			name: "expired by system",
			mutate: func(req *grant.AccessRequest) {
				req.Status = grant.StatusExpired
			},
			wantType:  EventGrantExpired,
			wantActor: "system",
		},
		{
			name: "deleted by requester",
			mutate: func(req *grant.AccessRequest) {
				req.Status = grant.StatusDeleted
			},
			wantType:  EventGrantDeleted,
			wantActor: "alice@example.com",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			notifier := newChanNotifier()
			inner := newMemStore()
			store := NewNotifyStore(inner, notifier)

			req := pendingRequest()
			if tc.wantType == EventGrantExpired {
				req.Status = grant.StatusApproved
			}
			if err := inner.Create(context.Background(), req); err != nil {
				t.Fatal(err)
			}

			updated := *req
			tc.mutate(&updated)
			if err := store.Update(context.Background(), &updated); err != nil {
				t.Fatalf("Update() error: %v", err)
			}

			event := notifier.wait(t)
			if event.Type != tc.wantType {
				t.Errorf("event type = %s, want %s", event.Type, tc.wantType)
			}
			if event.Actor != tc.wantActor {
				t.Errorf("actor = %q, want %q", event.Actor, tc.wantActor)
			}
			if tc.wantDetail != "" && event.Detail != tc.wantDetail {
				t.Errorf("detail = %q, want %q", event.Detail, tc.wantDetail)
			}
		})
	}
}

func TestNotifyStoreNoEventWithoutTransition(t *testing.T) {
	notifier := newChanNotifier()
	inner := newMemStore()
	store := NewNotifyStore(inner, notifier)

	req := pendingRequest()
	if err := inner.Create(context.Background(), req); err != nil {
		t.Fatal(err)
	}

	updated := *req
	updated.Justification = "revised justification for the same work"
	if err := store.Update(context.Background(), &updated); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	select {
	case e := <-notifier.events:
		t.Errorf("unexpected event %s for non-transition update", e.Type)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNotifyStoreNilNotifier(t *testing.T) {
	store := NewNotifyStore(newMemStore(), nil)
	if err := store.Create(context.Background(), pendingRequest()); err != nil {
		t.Fatalf("Create() with nil notifier error: %v", err)
	}
}
