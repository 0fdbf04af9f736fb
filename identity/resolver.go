package identity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

type stsAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// STSResolver resolves the current caller with sts:GetCallerIdentity.
type STSResolver struct {
	client stsAPI
}

// NewSTSResolver returns a resolver backed by the given STS client.
func NewSTSResolver(client *sts.Client) *STSResolver {
	return &STSResolver{client: client}
}

// NewSTSResolverWithClient allows injecting a mock client for testing.
func NewSTSResolverWithClient(client stsAPI) *STSResolver {
	return &STSResolver{client: client}
}

// Resolve returns the parsed identity of the current credentials.
func (r *STSResolver) Resolve(ctx context.Context) (*Caller, error) {
	out, err := r.client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("resolving caller identity: %w", err)
	}
	return ParseARN(aws.ToString(out.Arn))
}
