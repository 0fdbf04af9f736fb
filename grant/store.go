package grant

import (
	"context"
	"errors"
)

// Query limit constants for List operations.
const (
	// DefaultQueryLimit is the default number of results for List operations.
	DefaultQueryLimit = 100
	// MaxQueryLimit is the maximum number of results for List operations.
	MaxQueryLimit = 1000
)

// Storage-related sentinel errors for Store implementations.
// These errors support errors.Is() checking for robust error handling.
var (
	// ErrRequestNotFound is returned when the requested record does not exist.
	ErrRequestNotFound = errors.New("request not found")

	// ErrRequestExists is returned when attempting to create a request with
	// an ID that already exists in the store.
	ErrRequestExists = errors.New("request already exists")

	// ErrConcurrentModification is returned when an update fails optimistic
	// locking - another process modified the request between read and write.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// Store defines the interface for access-request persistence.
// Implementations must be safe for concurrent use. Updates use optimistic
// locking keyed on UpdatedAt so the lifecycle controller can serialize
// mutations per request id.
type Store interface {
	// Create stores a new request. Returns ErrRequestExists if ID already
	// exists. The request must be valid per AccessRequest.Validate().
	Create(ctx context.Context, req *AccessRequest) error

	// Get retrieves a request by ID. Returns ErrRequestNotFound if not exists.
	Get(ctx context.Context, id string) (*AccessRequest, error)

	// Update modifies an existing request. req.UpdatedAt must carry the
	// timestamp from the caller's last read: it is the optimistic-lock
	// token, and the store replaces it with a fresh timestamp on success.
	// Returns ErrRequestNotFound if not exists, or
	// ErrConcurrentModification if the request changed since the caller
	// last read it.
	Update(ctx context.Context, req *AccessRequest) error

	// Delete removes a request by ID. No-op if not exists (idempotent).
	Delete(ctx context.Context, id string) error

	// ListByRequester returns requests from one user, newest first.
	// If limit is 0, DefaultQueryLimit is used. Capped at MaxQueryLimit.
	ListByRequester(ctx context.Context, requester string, limit int) ([]*AccessRequest, error)

	// ListByStatus returns requests with a given status, newest first.
	// The expiration sweep uses this to find approved requests.
	ListByStatus(ctx context.Context, status Status, limit int) ([]*AccessRequest, error)

	// ListByAccount returns requests targeting one account, newest first.
	ListByAccount(ctx context.Context, accountID string, limit int) ([]*AccessRequest, error)
}
