package notification

import (
	"context"
	"log"

	"github.com/byteness/leasegate/grant"
)

// NotifyStore wraps a grant.Store and fires notifications on state
// transitions. It implements the grant.Store interface, delegating
// operations to the wrapped store and firing appropriate events after
// successful mutations.
type NotifyStore struct {
	store    grant.Store
	notifier Notifier
}

// NewNotifyStore creates a new NotifyStore wrapping the given store.
// If notifier is nil, a NoopNotifier is used (no notifications fired).
func NewNotifyStore(store grant.Store, notifier Notifier) *NotifyStore {
	if notifier == nil {
		notifier = &NoopNotifier{}
	}
	return &NotifyStore{
		store:    store,
		notifier: notifier,
	}
}

// Create stores a new request and fires EventGrantSubmitted on success.
// The actor for the event is the request's RequesterEmail.
func (s *NotifyStore) Create(ctx context.Context, req *grant.AccessRequest) error {
	if err := s.store.Create(ctx, req); err != nil {
		return err
	}

	// Fire notification asynchronously
	go s.notify(ctx, EventGrantSubmitted, req, req.RequesterEmail)

	return nil
}

// Get retrieves a request by ID. No notification is fired.
func (s *NotifyStore) Get(ctx context.Context, id string) (*grant.AccessRequest, error) {
	return s.store.Get(ctx, id)
}

// Update modifies an existing request and fires notifications on state
// transitions:
//   - pending -> approved: EventGrantApproved (actor: latest approver)
//   - pending -> denied: EventGrantDenied (actor: latest approver)
//   - approved -> revoked: EventGrantRevoked (actor: latest approver)
//   - approved -> expired: EventGrantExpired (actor: "system")
//   - any -> deleted: EventGrantDeleted (actor: requester)
func (s *NotifyStore) Update(ctx context.Context, req *grant.AccessRequest) error {
	// Get current request to detect status transition
	oldReq, err := s.store.Get(ctx, req.ID)
	if err != nil {
		// If we can't get the old request, still try the update but we
		// won't be able to detect the transition
		return s.store.Update(ctx, req)
	}

	if err := s.store.Update(ctx, req); err != nil {
		return err
	}

	if oldReq.Status != req.Status {
		var eventType EventType
		actor := "system"

		switch req.Status {
		case grant.StatusApproved:
			eventType = EventGrantApproved
			actor = latestApprover(req)
		case grant.StatusDenied:
			eventType = EventGrantDenied
			actor = latestApprover(req)
		case grant.StatusRevoked:
			eventType = EventGrantRevoked
			actor = latestApprover(req)
		case grant.StatusExpired:
			eventType = EventGrantExpired
		case grant.StatusDeleted:
			eventType = EventGrantDeleted
			actor = req.RequesterEmail
		}

		if eventType != "" {
			event := NewEvent(eventType, req, actor)
			switch req.Status {
			case grant.StatusDenied:
				event.Detail = req.DenialReason
			case grant.StatusRevoked:
				event.Detail = req.RevokeReason
			}
			go s.deliver(ctx, event)
		}
	}

	return nil
}

// Delete removes a request record by ID. No notification is fired; the
// lifecycle marks the record deleted via Update before purging it.
func (s *NotifyStore) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// ListByRequester returns all requests from a specific user.
func (s *NotifyStore) ListByRequester(ctx context.Context, requester string, limit int) ([]*grant.AccessRequest, error) {
	return s.store.ListByRequester(ctx, requester, limit)
}

// ListByStatus returns all requests with a specific status.
func (s *NotifyStore) ListByStatus(ctx context.Context, status grant.Status, limit int) ([]*grant.AccessRequest, error) {
	return s.store.ListByStatus(ctx, status, limit)
}

// ListByAccount returns all requests targeting a specific account.
func (s *NotifyStore) ListByAccount(ctx context.Context, accountID string, limit int) ([]*grant.AccessRequest, error) {
	return s.store.ListByAccount(ctx, accountID, limit)
}

// notify constructs and delivers an event asynchronously.
func (s *NotifyStore) notify(ctx context.Context, eventType EventType, req *grant.AccessRequest, actor string) {
	s.deliver(ctx, NewEvent(eventType, req, actor))
}

// deliver sends a notification. Errors are logged but do not fail the
// operation.
func (s *NotifyStore) deliver(ctx context.Context, event *Event) {
	if err := s.notifier.Notify(ctx, event); err != nil {
		log.Printf("notification error (%s): %v", event.Type, err)
	}
}

func latestApprover(req *grant.AccessRequest) string {
	if len(req.Approvals) == 0 {
		return "system"
	}
	return req.Approvals[len(req.Approvals)-1].Approver
}
