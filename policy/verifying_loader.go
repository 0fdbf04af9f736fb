package policy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// Error types for signature verification.
var (
	// ErrSignatureInvalid indicates the policy signature verification failed.
	ErrSignatureInvalid = errors.New("policy signature verification failed")
	// ErrSignatureEnforced indicates signature enforcement is enabled but the policy is unsigned.
	ErrSignatureEnforced = errors.New("policy not signed (signature enforcement enabled)")
)

// RawPolicyLoader is the interface for loading raw policy YAML content.
// Signature verification operates on raw bytes.
type RawPolicyLoader interface {
	LoadRaw(ctx context.Context, parameterName string) ([]byte, error)
}

// VerifyingLoader wraps a policy loader and validates signatures before
// returning policies. It provides fail-closed security with configurable
// enforcement.
type VerifyingLoader struct {
	policyLoader RawPolicyLoader
	sigLoader    RawPolicyLoader
	signer       *Signer
	enforce      bool // if true, reject unsigned policies; if false, warn only
}

// VerifyingLoaderOption configures a VerifyingLoader.
type VerifyingLoaderOption func(*VerifyingLoader)

// WithEnforcement configures whether signature enforcement is enabled.
// When enabled, unsigned policies are rejected. When disabled, unsigned
// policies log a warning but are still loaded.
func WithEnforcement(enforce bool) VerifyingLoaderOption {
	return func(v *VerifyingLoader) {
		v.enforce = enforce
	}
}

// NewVerifyingLoader creates a new VerifyingLoader.
// policyLoader is used to load the policy YAML content. sigLoader is used
// to load the signature parameters (can be the same loader, different
// prefix). signer performs the cryptographic verification.
func NewVerifyingLoader(policyLoader, sigLoader RawPolicyLoader, signer *Signer, opts ...VerifyingLoaderOption) *VerifyingLoader {
	v := &VerifyingLoader{
		policyLoader: policyLoader,
		sigLoader:    sigLoader,
		signer:       signer,
		enforce:      false,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Load fetches a policy from the underlying loader and verifies its
// signature. Returns:
//   - the policy if the signature is valid or enforcement is off and no
//     signature exists
//   - ErrSignatureInvalid if the signature doesn't match the policy
//   - ErrSignatureEnforced if enforcement is on and no signature exists
//   - passthrough errors from the underlying loaders
func (v *VerifyingLoader) Load(ctx context.Context, parameterName string) (*GovernancePolicy, error) {
	policyYAML, err := v.policyLoader.LoadRaw(ctx, parameterName)
	if err != nil {
		return nil, err
	}

	sigParamName := SignatureParameterName(parameterName)

	sigData, err := v.sigLoader.LoadRaw(ctx, sigParamName)
	if err != nil {
		if errors.Is(err, ErrPolicyNotFound) {
			if v.enforce {
				return nil, fmt.Errorf("%s: %w", parameterName, ErrSignatureEnforced)
			}
			log.Printf("WARNING: policy %s has no signature, loading without verification", parameterName)
			return Parse(policyYAML)
		}
		return nil, fmt.Errorf("failed to load signature for %s: %w", parameterName, err)
	}

	var envelope SignatureEnvelope
	if err := json.Unmarshal(sigData, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse signature for %s: %w", parameterName, err)
	}

	valid, err := v.signer.Verify(ctx, policyYAML, envelope.Signature)
	if err != nil {
		return nil, fmt.Errorf("signature verification error for %s: %w", parameterName, err)
	}
	if !valid {
		return nil, fmt.Errorf("%s: %w", parameterName, ErrSignatureInvalid)
	}

	return Parse(policyYAML)
}

// LoaderWithRaw wraps an SSM client to provide RawPolicyLoader functionality.
type LoaderWithRaw struct {
	client SSMAPI
}

// NewLoaderWithRaw creates a new LoaderWithRaw using the provided SSM client.
func NewLoaderWithRaw(client SSMAPI) *LoaderWithRaw {
	return &LoaderWithRaw{client: client}
}

// LoadRaw fetches raw YAML bytes from SSM Parameter Store.
func (l *LoaderWithRaw) LoadRaw(ctx context.Context, parameterName string) ([]byte, error) {
	output, err := l.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(parameterName),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%s: %w", parameterName, ErrPolicyNotFound)
		}
		return nil, err
	}
	return []byte(aws.ToString(output.Parameter.Value)), nil
}
