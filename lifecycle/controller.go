// Package lifecycle is the control plane for access requests. Every
// mutation of a request record flows through the Controller: submission,
// approval, denial, modification, revocation, deletion, and expiry
// sweeping. The controller enforces the state machine, applies governance
// policy, and coordinates the store, provisioner, notifier, and audit log.
package lifecycle

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/byteness/leasegate/grant"
	"github.com/byteness/leasegate/logging"
	"github.com/byteness/leasegate/notification"
	"github.com/byteness/leasegate/policy"
	"github.com/byteness/leasegate/provision"
)

// DefaultPolicyParameter is the SSM parameter holding the governance
// policy when the operator has not configured another.
const DefaultPolicyParameter = policy.PolicyParameterPrefix + "default"

// SystemActor is recorded as the actor for machine-initiated transitions
// such as expiry.
const SystemActor = "system"

// AdminAuthorizer decides whether an actor may perform privileged admin
// operations (record deletion). Implementations typically check group
// membership or the caller's IAM identity.
type AdminAuthorizer interface {
	IsAdmin(ctx context.Context, actor string) (bool, error)
}

// denyAllAdmins is the default authorizer: no one is an admin until the
// operator wires a real authorizer.
type denyAllAdmins struct{}

func (denyAllAdmins) IsAdmin(ctx context.Context, actor string) (bool, error) {
	return false, nil
}

// Controller orchestrates the request lifecycle. All collaborators are
// injected; the controller holds no package-level state.
type Controller struct {
	store       grant.Store
	provisioner provision.Provisioner
	policies    policy.PolicyLoader
	policyParam string
	notifier    notification.Notifier
	logger      logging.Logger
	admins      AdminAuthorizer
	now         func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier sets the notifier used for anomaly alerts. Lifecycle event
// notifications are the store decorator's job (notification.NotifyStore);
// this notifier only carries anomaly.detected events.
func WithNotifier(n notification.Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithLogger sets the audit logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithAdminAuthorizer sets the authorizer for privileged operations.
func WithAdminAuthorizer(a AdminAuthorizer) Option {
	return func(c *Controller) { c.admins = a }
}

// WithPolicyParameter overrides the governance policy parameter name.
func WithPolicyParameter(name string) Option {
	return func(c *Controller) { c.policyParam = name }
}

// WithClock overrides the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController creates a Controller. The store should usually be wrapped
// in a notification.NotifyStore so lifecycle transitions emit events.
func NewController(store grant.Store, provisioner provision.Provisioner, policies policy.PolicyLoader, opts ...Option) *Controller {
	c := &Controller{
		store:       store,
		provisioner: provisioner,
		policies:    policies,
		policyParam: DefaultPolicyParameter,
		notifier:    &notification.NoopNotifier{},
		logger:      logging.NewNopLogger(),
		admins:      denyAllAdmins{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// loadPolicy fetches the governance policy, falling back to the built-in
// default when none is stored. Infrastructure errors propagate: guessing
// at governance during an outage is worse than failing the operation.
func (c *Controller) loadPolicy(ctx context.Context) (*policy.GovernancePolicy, error) {
	p, err := c.policies.Load(ctx, c.policyParam)
	if errors.Is(err, policy.ErrPolicyNotFound) {
		return policy.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// logGrant writes a grant lifecycle audit entry.
func (c *Controller) logGrant(event notification.EventType, req *grant.AccessRequest, actor string) {
	c.logger.LogGrant(logging.NewGrantLogEntry(event, req, actor))
}

// update persists a mutation, translating optimistic-lock loss into
// ConflictError.
func (c *Controller) update(ctx context.Context, req *grant.AccessRequest) error {
	if err := c.store.Update(ctx, req); err != nil {
		if errors.Is(err, grant.ErrConcurrentModification) {
			return &ConflictError{ID: req.ID}
		}
		return err
	}
	return nil
}

// notifyAnomaly delivers an anomaly alert without blocking the caller.
func (c *Controller) notifyAnomaly(req *grant.AccessRequest, detail string) {
	event := notification.NewEvent(notification.EventAnomalyDetected, req, SystemActor)
	event.Detail = detail
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := c.notifier.Notify(ctx, event); err != nil {
			log.Printf("anomaly notification for %s failed: %v", req.ID, err)
		}
	}()
}
