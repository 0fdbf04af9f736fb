// Package assist drafts permission selections from a natural-language
// use case. Drafts are untrusted input: whatever produced them, the
// lifecycle controller re-validates the result through policy synthesis
// and the restricted-action checks before anything is submitted.
package assist

import (
	"context"
	"errors"
)

// Draft is a suggested permission selection for a described use case.
type Draft struct {
	// Description restates the use case the draft covers.
	Description string `json:"description"`

	// Actions are suggested cloud actions, namespaced ("s3:GetObject").
	Actions []string `json:"actions"`

	// Resources are suggested resource identifiers or ARNs.
	Resources []string `json:"resources"`

	// Conditions are suggested policy condition hints, keyed by
	// condition name.
	Conditions map[string]string `json:"conditions,omitempty"`
}

// ErrNoSuggestion is returned when a generator cannot map the use case
// to any permissions.
var ErrNoSuggestion = errors.New("assist: no permission suggestion for use case")

// Generator turns a use-case description into a permission draft.
type Generator interface {
	Generate(ctx context.Context, useCase string) (*Draft, error)
}
