package logging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// KeyLoader loads log signing keys from a secrets management service.
// This interface enables mocking in tests and future extension (e.g.,
// fallback to an env var in dev).
type KeyLoader interface {
	// GetKey retrieves a signing key by its secret ID or ARN.
	GetKey(ctx context.Context, secretID string) ([]byte, error)
}

// DefaultKeyCacheTTL is the default TTL for cached signing keys.
// Signing keys rotate rarely, so an hour keeps Secrets Manager traffic low
// without holding a retired key for long.
const DefaultKeyCacheTTL = 1 * time.Hour

// secretsManagerAPI is an interface for the Secrets Manager operations used.
type secretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// cachedKey holds a key value and its expiration time.
type cachedKey struct {
	value     []byte
	expiresAt time.Time
}

// CachedKeyLoader implements KeyLoader with in-process caching.
// It wraps the AWS Secrets Manager client and caches key material to reduce
// API calls on hot logging paths.
//
// Cache semantics:
//   - Keys are cached for the configured TTL (default 1 hour)
//   - Cache is in-process only
//   - Expired keys are refreshed on next access
type CachedKeyLoader struct {
	client secretsManagerAPI
	ttl    time.Duration

	mu    sync.RWMutex
	cache map[string]*cachedKey
}

// NewCachedKeyLoader creates a CachedKeyLoader with the given AWS config.
func NewCachedKeyLoader(awsCfg aws.Config, options ...func(*CachedKeyLoader)) *CachedKeyLoader {
	l := &CachedKeyLoader{
		client: secretsmanager.NewFromConfig(awsCfg),
		ttl:    DefaultKeyCacheTTL,
		cache:  make(map[string]*cachedKey),
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// NewCachedKeyLoaderWithClient creates a CachedKeyLoader with a custom
// client (for testing).
func NewCachedKeyLoaderWithClient(client secretsManagerAPI, ttl time.Duration) *CachedKeyLoader {
	return &CachedKeyLoader{
		client: client,
		ttl:    ttl,
		cache:  make(map[string]*cachedKey),
	}
}

// WithKeyCacheTTL overrides the cache TTL.
func WithKeyCacheTTL(ttl time.Duration) func(*CachedKeyLoader) {
	return func(l *CachedKeyLoader) {
		l.ttl = ttl
	}
}

// GetKey retrieves a signing key, serving from cache when fresh.
func (l *CachedKeyLoader) GetKey(ctx context.Context, secretID string) ([]byte, error) {
	l.mu.RLock()
	cached, ok := l.cache[secretID]
	l.mu.RUnlock()
	if ok && time.Now().Before(cached.expiresAt) {
		return cached.value, nil
	}

	out, err := l.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return nil, fmt.Errorf("loading signing key %q: %w", secretID, err)
	}

	var value []byte
	switch {
	case out.SecretString != nil:
		value = []byte(*out.SecretString)
	case out.SecretBinary != nil:
		value = out.SecretBinary
	default:
		return nil, fmt.Errorf("signing key %q has no value", secretID)
	}

	l.mu.Lock()
	l.cache[secretID] = &cachedKey{
		value:     value,
		expiresAt: time.Now().Add(l.ttl),
	}
	l.mu.Unlock()

	return value, nil
}

// LoadSignatureConfig builds a SignatureConfig from a stored signing key.
// The secret ID doubles as the key ID recorded on signed entries.
func LoadSignatureConfig(ctx context.Context, loader KeyLoader, secretID string) (*SignatureConfig, error) {
	key, err := loader.GetKey(ctx, secretID)
	if err != nil {
		return nil, err
	}

	config := &SignatureConfig{
		SecretKey: key,
		KeyID:     secretID,
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
