package policy

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// Parameter path prefixes for policies and signatures in SSM Parameter Store.
const (
	// PolicyParameterPrefix is the SSM parameter path prefix for policies.
	PolicyParameterPrefix = "/leasegate/policies/"
	// SignatureParameterPrefix is the SSM parameter path prefix for policy signatures.
	SignatureParameterPrefix = "/leasegate/signatures/"
)

// SignatureMetadata contains metadata about a policy signature.
// This is stored alongside the signature to enable verification and auditing.
type SignatureMetadata struct {
	// KeyID is the KMS key ARN or ID used for signing.
	KeyID string `json:"key_id"`
	// Algorithm is the signing algorithm (e.g., RSASSA_PSS_SHA_256).
	Algorithm string `json:"algorithm"`
	// SignedAt is the timestamp when the signature was created.
	SignedAt time.Time `json:"signed_at"`
	// PolicyHash is the SHA-256 hash of the policy YAML content (hex encoded).
	PolicyHash string `json:"policy_hash"`
}

// SignatureEnvelope is the JSON structure stored in the signature parameter.
type SignatureEnvelope struct {
	// Signature is the raw signature bytes from KMS.
	Signature []byte `json:"signature"`
	// Metadata contains information about the signing operation.
	Metadata SignatureMetadata `json:"metadata"`
}

// SignatureParameterName converts a policy parameter path to its
// corresponding signature parameter path.
//
// Example:
//
//	SignatureParameterName("/leasegate/policies/default") returns "/leasegate/signatures/default"
func SignatureParameterName(policyParam string) string {
	if !strings.HasPrefix(policyParam, PolicyParameterPrefix) {
		return SignatureParameterPrefix + strings.TrimPrefix(policyParam, "/")
	}
	suffix := strings.TrimPrefix(policyParam, PolicyParameterPrefix)
	return SignatureParameterPrefix + suffix
}

// PolicyParameterName converts a signature parameter path to its
// corresponding policy parameter path.
func PolicyParameterName(signatureParam string) string {
	if !strings.HasPrefix(signatureParam, SignatureParameterPrefix) {
		return PolicyParameterPrefix + strings.TrimPrefix(signatureParam, "/")
	}
	suffix := strings.TrimPrefix(signatureParam, SignatureParameterPrefix)
	return PolicyParameterPrefix + suffix
}

// ComputePolicyHash computes the SHA-256 hash of policy YAML content.
// Returns the hash as a lowercase hex-encoded string.
func ComputePolicyHash(policyYAML []byte) string {
	hash := sha256.Sum256(policyYAML)
	return hex.EncodeToString(hash[:])
}

// Validate checks that the SignatureMetadata has all required fields.
// Returns an error describing the first missing field, or nil if valid.
func (m *SignatureMetadata) Validate() error {
	if m.KeyID == "" {
		return errors.New("signature metadata: key_id is required")
	}
	if m.Algorithm == "" {
		return errors.New("signature metadata: algorithm is required")
	}
	if m.SignedAt.IsZero() {
		return errors.New("signature metadata: signed_at is required")
	}
	if m.PolicyHash == "" {
		return errors.New("signature metadata: policy_hash is required")
	}
	return nil
}

// HashMatches reports whether the metadata's PolicyHash matches the hash
// of the provided policy YAML content.
//
// A matching hash does not guarantee the signature is valid; always use
// Signer.Verify for cryptographic verification. Uses constant-time
// comparison.
func (m *SignatureMetadata) HashMatches(policyYAML []byte) bool {
	if m.PolicyHash == "" {
		return false
	}
	computed := ComputePolicyHash(policyYAML)
	return subtle.ConstantTimeCompare([]byte(m.PolicyHash), []byte(computed)) == 1
}
