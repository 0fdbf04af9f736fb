// Package synth assembles explicit-resource authorization policies from
// requester selections.
//
// A selection names a cloud service, the concrete resources within it, and
// the actions to allow. Synthesis produces one policy statement per service
// selection with every resource fully qualified. The package enforces the
// least-privilege invariant this system exists for: no statement ever
// carries a bare wildcard resource. A selection that cannot be resolved to
// concrete resource identifiers fails synthesis instead of degrading to a
// broad grant.
package synth

import (
	"fmt"
)

// PolicyVersion is the policy language version for generated documents.
const PolicyVersion = "2012-10-17"

// ResourceRef identifies a discovered resource selected by the requester.
// IDs come from resource discovery (ResolveResources) or, for services
// whose inventory already returns full identifiers, a complete ARN.
type ResourceRef struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
}

// ServiceSelection is one service's worth of requested access: the
// resources to reach and the actions to allow on them. Config carries
// service-specific fields (bucket, secret_name, function_name, tags)
// validated against the service's requirements before synthesis.
type ServiceSelection struct {
	ServiceID string            `json:"service_id" yaml:"service_id"`
	Resources []ResourceRef     `json:"resources" yaml:"resources"`
	Actions   []string          `json:"actions" yaml:"actions"`
	Config    map[string]string `json:"config,omitempty" yaml:"config,omitempty"`
}

// Statement is a single policy statement. Resource always enumerates
// concrete identifiers; Condition is present only when the selection
// carried condition-producing config (EC2 tag filters).
type Statement struct {
	Sid       string                       `json:"Sid,omitempty"`
	Effect    string                       `json:"Effect"`
	Action    []string                     `json:"Action"`
	Resource  []string                     `json:"Resource"`
	Condition map[string]map[string]string `json:"Condition,omitempty"`
}

// PolicyDocument is the explicit-resource authorization artifact handed to
// the provisioning boundary on approval.
type PolicyDocument struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

// EmptySelectionError reports synthesis with no service selections.
type EmptySelectionError struct{}

// Error implements the error interface.
func (e *EmptySelectionError) Error() string {
	return "no service selections: at least one service with resources and actions is required"
}

// UnresolvedResourceError reports a service selection with no resolvable
// concrete resources. Synthesis fails closed rather than emit a wildcard.
type UnresolvedResourceError struct {
	Service string
}

// Error implements the error interface.
func (e *UnresolvedResourceError) Error() string {
	return fmt.Sprintf("service %q has no resolved resources: wildcard grants are not permitted", e.Service)
}

// MissingServiceConfigError reports a service selection missing a required
// configuration field (for example a secret name for secrets access).
type MissingServiceConfigError struct {
	Service string
	Field   string
}

// Error implements the error interface.
func (e *MissingServiceConfigError) Error() string {
	return fmt.Sprintf("service %q requires config field %q", e.Service, e.Field)
}
