package logging

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/byteness/leasegate/iso8601"
)

// MinKeyLength is the minimum required length for HMAC-SHA256 secret keys.
// 32 bytes (256 bits) matches the SHA256 output size.
const MinKeyLength = 32

// ErrKeyTooShort is returned when the secret key is shorter than MinKeyLength.
var ErrKeyTooShort = errors.New("secret key must be at least 32 bytes")

// SignatureConfig holds the key material for signing audit log entries.
type SignatureConfig struct {
	// SecretKey is the HMAC-SHA256 key. Must be at least MinKeyLength bytes.
	SecretKey []byte

	// KeyID identifies which key signed an entry, supporting key rotation.
	KeyID string
}

// Validate checks that the config has usable key material.
func (c *SignatureConfig) Validate() error {
	if len(c.SecretKey) < MinKeyLength {
		return ErrKeyTooShort
	}
	return nil
}

// SignedEntry wraps a log entry with its HMAC-SHA256 signature. The
// timestamp and key ID are included in the signed payload so an attacker
// cannot replay an old signature against a rewritten entry.
type SignedEntry struct {
	Entry     any    `json:"entry"`
	Signature string `json:"signature"`
	KeyID     string `json:"key_id"`
	Timestamp string `json:"timestamp"`
}

// ComputeSignature computes HMAC-SHA256 of the entry's JSON representation.
// Returns a hex-encoded signature string.
func ComputeSignature(entry any, secretKey []byte) (string, error) {
	if len(secretKey) < MinKeyLength {
		return "", ErrKeyTooShort
	}

	// Marshal entry to JSON for deterministic input
	data, err := json.Marshal(entry)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, secretKey)
	mac.Write(data)
	signature := mac.Sum(nil)

	return hex.EncodeToString(signature), nil
}

// VerifySignature verifies the HMAC-SHA256 signature of an entry.
// Uses constant-time comparison to prevent timing attacks.
// Returns (true, nil) if signature is valid, (false, nil) if invalid,
// or (false, error) if there's a problem computing the expected signature.
func VerifySignature(entry any, signature string, secretKey []byte) (bool, error) {
	expected, err := ComputeSignature(entry, secretKey)
	if err != nil {
		return false, err
	}

	providedBytes, err := hex.DecodeString(signature)
	if err != nil {
		// Invalid hex is treated as invalid signature, not error
		return false, nil
	}

	expectedBytes, err := hex.DecodeString(expected)
	if err != nil {
		return false, err
	}

	if subtle.ConstantTimeCompare(providedBytes, expectedBytes) == 1 {
		return true, nil
	}
	return false, nil
}

// NewSignedEntry creates a signed entry with the current timestamp.
func NewSignedEntry(entry any, config *SignatureConfig) (*SignedEntry, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	timestamp := iso8601.Format(time.Now())

	// The wrapper includes the timestamp and key ID so they are covered
	// by the signature (replay protection)
	wrapper := struct {
		Entry     any    `json:"entry"`
		Timestamp string `json:"timestamp"`
		KeyID     string `json:"key_id"`
	}{
		Entry:     entry,
		Timestamp: timestamp,
		KeyID:     config.KeyID,
	}

	signature, err := ComputeSignature(wrapper, config.SecretKey)
	if err != nil {
		return nil, err
	}

	return &SignedEntry{
		Entry:     entry,
		Signature: signature,
		KeyID:     config.KeyID,
		Timestamp: timestamp,
	}, nil
}

// Verify checks the signature of a SignedEntry.
// Returns (true, nil) if valid, (false, nil) if invalid, or (false, error) on error.
func (s *SignedEntry) Verify(secretKey []byte) (bool, error) {
	// Recreate the wrapper that was signed
	wrapper := struct {
		Entry     any    `json:"entry"`
		Timestamp string `json:"timestamp"`
		KeyID     string `json:"key_id"`
	}{
		Entry:     s.Entry,
		Timestamp: s.Timestamp,
		KeyID:     s.KeyID,
	}

	return VerifySignature(wrapper, s.Signature, secretKey)
}
