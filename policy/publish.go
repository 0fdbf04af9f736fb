package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	lgerrors "github.com/byteness/leasegate/errors"
)

// SSMWriteAPI defines the SSM operations used by Publisher.
type SSMWriteAPI interface {
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
}

// Publisher writes governance policies to SSM Parameter Store, optionally
// signing them with KMS so loaders can verify integrity.
type Publisher struct {
	client SSMWriteAPI
	signer *Signer
	now    func() time.Time
}

// NewPublisher creates a Publisher using the provided AWS configuration.
// Signer may be nil when signing is not configured.
func NewPublisher(cfg aws.Config, signer *Signer) *Publisher {
	return &Publisher{
		client: ssm.NewFromConfig(cfg),
		signer: signer,
		now:    time.Now,
	}
}

// NewPublisherWithClient creates a Publisher with a custom SSM client.
// This is primarily used for testing with mock clients.
func NewPublisherWithClient(client SSMWriteAPI, signer *Signer) *Publisher {
	return &Publisher{
		client: client,
		signer: signer,
		now:    time.Now,
	}
}

// Push validates the policy YAML and writes it to the named parameter.
// When a signer is configured, a signature envelope is written to the
// matching signature parameter so verifying loaders can check it.
func (p *Publisher) Push(ctx context.Context, parameterName string, policyYAML []byte) error {
	if err := ValidatePolicy(policyYAML); err != nil {
		return err
	}

	if err := p.put(ctx, parameterName, string(policyYAML)); err != nil {
		return err
	}

	if p.signer == nil {
		return nil
	}

	signature, err := p.signer.Sign(ctx, policyYAML)
	if err != nil {
		return fmt.Errorf("signing policy: %w", err)
	}

	envelope := SignatureEnvelope{
		Signature: signature,
		Metadata: SignatureMetadata{
			KeyID:      p.signer.KeyID(),
			Algorithm:  string(DefaultSigningAlgorithm),
			SignedAt:   p.now().UTC(),
			PolicyHash: ComputePolicyHash(policyYAML),
		},
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encoding signature envelope: %w", err)
	}

	return p.put(ctx, SignatureParameterName(parameterName), string(data))
}

func (p *Publisher) put(ctx context.Context, name, value string) error {
	_, err := p.client.PutParameter(ctx, &ssm.PutParameterInput{
		Name:      aws.String(name),
		Value:     aws.String(value),
		Type:      types.ParameterTypeString,
		Overwrite: aws.Bool(true),
	})
	if err != nil {
		return lgerrors.WrapSSMError(err, name)
	}
	return nil
}
