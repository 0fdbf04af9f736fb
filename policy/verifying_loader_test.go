package policy_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/kms"
	kmstypes "github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/byteness/leasegate/policy"
	"github.com/byteness/leasegate/testutil"
)

// testRawLoader serves raw parameter bytes from maps and records calls.
type testRawLoader struct {
	Data   map[string][]byte
	Errors map[string]error
	Calls  []string
}

func (l *testRawLoader) LoadRaw(ctx context.Context, parameterName string) ([]byte, error) {
	l.Calls = append(l.Calls, parameterName)
	if err, ok := l.Errors[parameterName]; ok {
		return nil, err
	}
	data, ok := l.Data[parameterName]
	if !ok {
		return nil, fmt.Errorf("%s: %w", parameterName, policy.ErrPolicyNotFound)
	}
	return data, nil
}

const verifyingPolicyYAML = `
version: "1"
approvals:
  - band: high
    roles: [security_lead]
`

func signatureEnvelopeJSON(t *testing.T, policyYAML []byte) []byte {
	t.Helper()
	envelope := policy.SignatureEnvelope{
		Signature: []byte("kms-signature"),
		Metadata: policy.SignatureMetadata{
			KeyID:      "alias/leasegate-policy-signing",
			Algorithm:  "RSASSA_PSS_SHA_256",
			SignedAt:   time.Now(),
			PolicyHash: policy.ComputePolicyHash(policyYAML),
		},
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshaling envelope: %v", err)
	}
	return data
}

func verifyingSigner(valid bool) *policy.Signer {
	mock := &testutil.MockKMSClient{
		VerifyFunc: func(ctx context.Context, params *kms.VerifyInput, optFns ...func(*kms.Options)) (*kms.VerifyOutput, error) {
			if !valid {
				return nil, &kmstypes.KMSInvalidSignatureException{}
			}
			return &kms.VerifyOutput{SignatureValid: true}, nil
		},
	}
	return policy.NewSignerWithClient(mock, "alias/leasegate-policy-signing")
}

func TestVerifyingLoaderValidSignature(t *testing.T) {
	policyYAML := []byte(verifyingPolicyYAML)
	loader := &testRawLoader{Data: map[string][]byte{
		"/leasegate/policies/default":   policyYAML,
		"/leasegate/signatures/default": signatureEnvelopeJSON(t, policyYAML),
	}}
	v := policy.NewVerifyingLoader(loader, loader, verifyingSigner(true))

	p, err := v.Load(context.Background(), "/leasegate/policies/default")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if p.Version != "1" {
		t.Errorf("Version = %q, want 1", p.Version)
	}
}

func TestVerifyingLoaderInvalidSignature(t *testing.T) {
	policyYAML := []byte(verifyingPolicyYAML)
	loader := &testRawLoader{Data: map[string][]byte{
		"/leasegate/policies/default":   policyYAML,
		"/leasegate/signatures/default": signatureEnvelopeJSON(t, policyYAML),
	}}
	v := policy.NewVerifyingLoader(loader, loader, verifyingSigner(false))

	_, err := v.Load(context.Background(), "/leasegate/policies/default")
	if !errors.Is(err, policy.ErrSignatureInvalid) {
		t.Errorf("error = %v, want ErrSignatureInvalid", err)
	}
}

func TestVerifyingLoaderUnsignedPolicy(t *testing.T) {
	policyYAML := []byte(verifyingPolicyYAML)

	t.Run("warn mode loads unsigned policy", func(t *testing.T) {
		loader := &testRawLoader{Data: map[string][]byte{
			"/leasegate/policies/default": policyYAML,
		}}
		v := policy.NewVerifyingLoader(loader, loader, verifyingSigner(true))

		p, err := v.Load(context.Background(), "/leasegate/policies/default")
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if p == nil {
			t.Fatal("expected policy")
		}
	})

	t.Run("enforce mode rejects unsigned policy", func(t *testing.T) {
		loader := &testRawLoader{Data: map[string][]byte{
			"/leasegate/policies/default": policyYAML,
		}}
		v := policy.NewVerifyingLoader(loader, loader, verifyingSigner(true), policy.WithEnforcement(true))

		_, err := v.Load(context.Background(), "/leasegate/policies/default")
		if !errors.Is(err, policy.ErrSignatureEnforced) {
			t.Errorf("error = %v, want ErrSignatureEnforced", err)
		}
	})
}

func TestVerifyingLoaderMalformedEnvelope(t *testing.T) {
	loader := &testRawLoader{Data: map[string][]byte{
		"/leasegate/policies/default":   []byte(verifyingPolicyYAML),
		"/leasegate/signatures/default": []byte("{not json"),
	}}
	v := policy.NewVerifyingLoader(loader, loader, verifyingSigner(true))

	if _, err := v.Load(context.Background(), "/leasegate/policies/default"); err == nil {
		t.Error("expected error for malformed signature envelope")
	}
}

func TestVerifyingLoaderSignatureLoadError(t *testing.T) {
	loader := &testRawLoader{
		Data: map[string][]byte{
			"/leasegate/policies/default": []byte(verifyingPolicyYAML),
		},
		Errors: map[string]error{
			"/leasegate/signatures/default": errors.New("ThrottlingException: rate exceeded"),
		},
	}
	v := policy.NewVerifyingLoader(loader, loader, verifyingSigner(true))

	if _, err := v.Load(context.Background(), "/leasegate/policies/default"); err == nil {
		t.Error("expected signature load error to pass through")
	}
}

func TestVerifyingLoaderPolicyLoadError(t *testing.T) {
	loader := &testRawLoader{}
	v := policy.NewVerifyingLoader(loader, loader, verifyingSigner(true))

	_, err := v.Load(context.Background(), "/leasegate/policies/missing")
	if !errors.Is(err, policy.ErrPolicyNotFound) {
		t.Errorf("error = %v, want ErrPolicyNotFound", err)
	}
	// Signature loader should not be consulted when the policy is missing
	if len(loader.Calls) != 1 {
		t.Errorf("calls = %v, want only the policy parameter", loader.Calls)
	}
}
