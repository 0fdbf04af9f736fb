package logging

import (
	"bytes"
	"errors"
	"testing"
)

var testKey = bytes.Repeat([]byte("k"), 32)

func TestComputeSignature(t *testing.T) {
	entry := GrantLogEntry{Event: "grant.submitted", RequestID: "a1b2c3d4e5f67890"}

	sig, err := ComputeSignature(entry, testKey)
	if err != nil {
		t.Fatalf("ComputeSignature() error: %v", err)
	}
	if len(sig) != 64 {
		t.Errorf("signature length = %d, want 64 hex chars", len(sig))
	}

	// Deterministic for the same input
	sig2, err := ComputeSignature(entry, testKey)
	if err != nil {
		t.Fatalf("ComputeSignature() error: %v", err)
	}
	if sig != sig2 {
		t.Error("signatures differ for identical input")
	}
}

func TestComputeSignatureKeyTooShort(t *testing.T) {
	_, err := ComputeSignature(GrantLogEntry{}, []byte("short"))
	if !errors.Is(err, ErrKeyTooShort) {
		t.Errorf("error = %v, want ErrKeyTooShort", err)
	}
}

func TestVerifySignature(t *testing.T) {
	entry := GrantLogEntry{Event: "grant.approved", RequestID: "a1b2c3d4e5f67890"}
	sig, err := ComputeSignature(entry, testKey)
	if err != nil {
		t.Fatalf("ComputeSignature() error: %v", err)
	}

	testCases := []struct {
		name      string
		entry     any
		signature string
		key       []byte
		want      bool
		wantErr   bool
	}{
		{
			name:      "valid signature",
			entry:     entry,
			signature: sig,
			key:       testKey,
			want:      true,
		},
		{
			name:      "tampered entry",
			entry:     GrantLogEntry{Event: "grant.approved", RequestID: "ffffffffffffffff"},
			signature: sig,
			key:       testKey,
			want:      false,
		},
		{
			name:      "wrong key",
			entry:     entry,
			signature: sig,
			key:       bytes.Repeat([]byte("x"), 32),
			want:      false,
		},
		{
			name:      "invalid hex signature",
			entry:     entry,
			signature: "not-hex",
			key:       testKey,
			want:      false,
		},
		{
			name:      "short key errors",
			entry:     entry,
			signature: sig,
			key:       []byte("short"),
			want:      false,
			wantErr:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := VerifySignature(tc.entry, tc.signature, tc.key)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("VerifySignature() error: %v", err)
			}
			if got != tc.want {
				t.Errorf("VerifySignature() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSignedEntryRoundTrip(t *testing.T) {
	config := &SignatureConfig{SecretKey: testKey, KeyID: "audit-key-1"}
	entry := GrantLogEntry{Event: "grant.revoked", RequestID: "a1b2c3d4e5f67890"}

	signed, err := NewSignedEntry(entry, config)
	if err != nil {
		t.Fatalf("NewSignedEntry() error: %v", err)
	}
	if signed.KeyID != "audit-key-1" {
		t.Errorf("KeyID = %q, want audit-key-1", signed.KeyID)
	}
	if signed.Timestamp == "" {
		t.Error("expected timestamp")
	}

	valid, err := signed.Verify(testKey)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if !valid {
		t.Error("expected signature to verify")
	}

	// Tampering with the timestamp must invalidate the signature
	signed.Timestamp = "2020-01-01T00:00:00Z"
	valid, err = signed.Verify(testKey)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if valid {
		t.Error("expected tampered entry to fail verification")
	}
}

func TestNewSignedEntryKeyTooShort(t *testing.T) {
	config := &SignatureConfig{SecretKey: []byte("short"), KeyID: "k1"}
	if _, err := NewSignedEntry(GrantLogEntry{}, config); !errors.Is(err, ErrKeyTooShort) {
		t.Errorf("error = %v, want ErrKeyTooShort", err)
	}
}
