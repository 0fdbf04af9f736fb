// KMS-based policy signing. Signatures prevent a compromised parameter
// store entry or poisoned cache from injecting a weaker governance policy.
package policy

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
)

// KMSAPI defines the KMS operations used by Signer.
// This interface enables testing with mock implementations.
type KMSAPI interface {
	Sign(ctx context.Context, params *kms.SignInput, optFns ...func(*kms.Options)) (*kms.SignOutput, error)
	Verify(ctx context.Context, params *kms.VerifyInput, optFns ...func(*kms.Options)) (*kms.VerifyOutput, error)
}

// DefaultSigningAlgorithm is the default algorithm used for policy signing.
const DefaultSigningAlgorithm = types.SigningAlgorithmSpecRsassaPssSha256

// Signer signs and verifies governance policies using AWS KMS asymmetric
// keys. It uses the RSASSA_PSS_SHA_256 algorithm by default.
//
// Example usage:
//
//	signer := NewSigner(awsCfg, "alias/leasegate-policy-signing")
//	signature, err := signer.Sign(ctx, policyYAML)
//	if err != nil {
//	    return err
//	}
//	valid, err := signer.Verify(ctx, policyYAML, signature)
type Signer struct {
	client    KMSAPI
	keyID     string
	algorithm types.SigningAlgorithmSpec
}

// NewSigner creates a new Signer using the provided AWS configuration.
// The keyID can be a KMS key ID, key ARN, alias name, or alias ARN.
func NewSigner(cfg aws.Config, keyID string) *Signer {
	return &Signer{
		client:    kms.NewFromConfig(cfg),
		keyID:     keyID,
		algorithm: DefaultSigningAlgorithm,
	}
}

// NewSignerWithClient creates a Signer with a custom KMS client.
// This is primarily used for testing with mock clients.
func NewSignerWithClient(client KMSAPI, keyID string) *Signer {
	return &Signer{
		client:    client,
		keyID:     keyID,
		algorithm: DefaultSigningAlgorithm,
	}
}

// KeyID returns the key identifier the signer was built with.
func (s *Signer) KeyID() string {
	return s.keyID
}

// Sign creates a cryptographic signature for the given policy YAML content.
//
// The policy YAML is signed directly as the message (MessageType MESSAGE),
// not as a pre-computed digest, so the signature covers the exact bytes
// that will be verified later.
func (s *Signer) Sign(ctx context.Context, policyYAML []byte) ([]byte, error) {
	output, err := s.client.Sign(ctx, &kms.SignInput{
		KeyId:            aws.String(s.keyID),
		Message:          policyYAML,
		MessageType:      types.MessageTypeRaw,
		SigningAlgorithm: s.algorithm,
	})
	if err != nil {
		return nil, err
	}

	return output.Signature, nil
}

// Verify checks if the signature is valid for the given policy YAML content.
// Returns:
//   - (true, nil) if the signature is valid
//   - (false, nil) if the signature is invalid (normal validation result)
//   - (false, error) if verification failed due to KMS errors
//
// An invalid signature is NOT an error. Errors are reserved for
// infrastructure issues like missing keys or network failures.
func (s *Signer) Verify(ctx context.Context, policyYAML []byte, signature []byte) (bool, error) {
	output, err := s.client.Verify(ctx, &kms.VerifyInput{
		KeyId:            aws.String(s.keyID),
		Message:          policyYAML,
		MessageType:      types.MessageTypeRaw,
		Signature:        signature,
		SigningAlgorithm: s.algorithm,
	})
	if err != nil {
		// KMS reports an invalid signature as an error, but that is a
		// normal validation result here
		if _, ok := err.(*types.KMSInvalidSignatureException); ok {
			return false, nil
		}
		return false, err
	}

	return output.SignatureValid, nil
}
