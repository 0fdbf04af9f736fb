package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type mockSecretsAPI struct {
	GetSecretValueFunc  func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	GetSecretValueCalls []*secretsmanager.GetSecretValueInput
}

func (m *mockSecretsAPI) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	m.GetSecretValueCalls = append(m.GetSecretValueCalls, params)
	if m.GetSecretValueFunc != nil {
		return m.GetSecretValueFunc(ctx, params, optFns...)
	}
	return &secretsmanager.GetSecretValueOutput{}, nil
}

func TestCachedKeyLoaderGetKey(t *testing.T) {
	key := string(bytes.Repeat([]byte("k"), 32))
	mock := &mockSecretsAPI{
		GetSecretValueFunc: func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
			return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(key)}, nil
		},
	}
	loader := NewCachedKeyLoaderWithClient(mock, time.Hour)

	got, err := loader.GetKey(context.Background(), "leasegate/audit-key")
	if err != nil {
		t.Fatalf("GetKey() error: %v", err)
	}
	if string(got) != key {
		t.Errorf("GetKey() = %q, want %q", got, key)
	}

	// Second call is served from cache
	if _, err := loader.GetKey(context.Background(), "leasegate/audit-key"); err != nil {
		t.Fatalf("GetKey() error: %v", err)
	}
	if len(mock.GetSecretValueCalls) != 1 {
		t.Errorf("GetSecretValue calls = %d, want 1 (cached)", len(mock.GetSecretValueCalls))
	}
}

func TestCachedKeyLoaderExpiredCacheRefetches(t *testing.T) {
	key := string(bytes.Repeat([]byte("k"), 32))
	mock := &mockSecretsAPI{
		GetSecretValueFunc: func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
			return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(key)}, nil
		},
	}
	loader := NewCachedKeyLoaderWithClient(mock, -time.Second)

	loader.GetKey(context.Background(), "leasegate/audit-key")
	loader.GetKey(context.Background(), "leasegate/audit-key")

	if len(mock.GetSecretValueCalls) != 2 {
		t.Errorf("GetSecretValue calls = %d, want 2 (expired)", len(mock.GetSecretValueCalls))
	}
}

func TestCachedKeyLoaderBinarySecret(t *testing.T) {
	key := bytes.Repeat([]byte{0xab}, 32)
	mock := &mockSecretsAPI{
		GetSecretValueFunc: func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
			return &secretsmanager.GetSecretValueOutput{SecretBinary: key}, nil
		},
	}
	loader := NewCachedKeyLoaderWithClient(mock, time.Hour)

	got, err := loader.GetKey(context.Background(), "leasegate/audit-key")
	if err != nil {
		t.Fatalf("GetKey() error: %v", err)
	}
	if !bytes.Equal(got, key) {
		t.Error("binary secret mismatch")
	}
}

func TestCachedKeyLoaderErrors(t *testing.T) {
	testCases := []struct {
		name string
		fn   func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	}{
		{
			name: "api error",
			fn: func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
				return nil, errors.New("ResourceNotFoundException: Secrets Manager can't find the specified secret")
			},
		},
		{
			name: "empty secret",
			fn: func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
				return &secretsmanager.GetSecretValueOutput{}, nil
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			loader := NewCachedKeyLoaderWithClient(&mockSecretsAPI{GetSecretValueFunc: tc.fn}, time.Hour)
			if _, err := loader.GetKey(context.Background(), "leasegate/audit-key"); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadSignatureConfig(t *testing.T) {
	key := string(bytes.Repeat([]byte("k"), 32))
	mock := &mockSecretsAPI{
		GetSecretValueFunc: func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
			return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(key)}, nil
		},
	}
	loader := NewCachedKeyLoaderWithClient(mock, time.Hour)

	config, err := LoadSignatureConfig(context.Background(), loader, "leasegate/audit-key")
	if err != nil {
		t.Fatalf("LoadSignatureConfig() error: %v", err)
	}
	if config.KeyID != "leasegate/audit-key" {
		t.Errorf("KeyID = %q, want leasegate/audit-key", config.KeyID)
	}
	if string(config.SecretKey) != key {
		t.Error("SecretKey mismatch")
	}
}

func TestLoadSignatureConfigShortKey(t *testing.T) {
	mock := &mockSecretsAPI{
		GetSecretValueFunc: func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
			return &secretsmanager.GetSecretValueOutput{SecretString: aws.String("short")}, nil
		},
	}
	loader := NewCachedKeyLoaderWithClient(mock, time.Hour)

	if _, err := LoadSignatureConfig(context.Background(), loader, "leasegate/audit-key"); !errors.Is(err, ErrKeyTooShort) {
		t.Errorf("error = %v, want ErrKeyTooShort", err)
	}
}
