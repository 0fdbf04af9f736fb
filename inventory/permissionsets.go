package inventory

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"

	lgerrors "github.com/byteness/leasegate/errors"
)

// PermissionSetSource lists the pre-approved permission sets available in
// an account.
type PermissionSetSource interface {
	ListPermissionSets(ctx context.Context) ([]PermissionSet, error)
}

type iamListAPI interface {
	ListPolicies(ctx context.Context, params *iam.ListPoliciesInput, optFns ...func(*iam.Options)) (*iam.ListPoliciesOutput, error)
}

// IAMPermissionSetSource lists customer-managed IAM policies as permission
// sets. AWS-managed policies are excluded: only policies the account's
// administrators authored are pre-approved.
type IAMPermissionSetSource struct {
	client iamListAPI
}

// NewIAMPermissionSetSource returns a source backed by the given IAM client.
func NewIAMPermissionSetSource(client *iam.Client) *IAMPermissionSetSource {
	return &IAMPermissionSetSource{client: client}
}

// NewIAMPermissionSetSourceWithClient allows injecting a mock client for
// testing.
func NewIAMPermissionSetSourceWithClient(client iamListAPI) *IAMPermissionSetSource {
	return &IAMPermissionSetSource{client: client}
}

// ListPermissionSets pages through the account's local policies.
func (s *IAMPermissionSetSource) ListPermissionSets(ctx context.Context) ([]PermissionSet, error) {
	var sets []PermissionSet
	var marker *string

	for {
		out, err := s.client.ListPolicies(ctx, &iam.ListPoliciesInput{
			Scope:  iamtypes.PolicyScopeTypeLocal,
			Marker: marker,
		})
		if err != nil {
			return nil, lgerrors.WrapIAMError(err, "ListPolicies", "")
		}

		for _, pol := range out.Policies {
			sets = append(sets, PermissionSet{
				Name:        aws.ToString(pol.PolicyName),
				ARN:         aws.ToString(pol.Arn),
				Description: aws.ToString(pol.Description),
			})
		}

		if !out.IsTruncated {
			return sets, nil
		}
		marker = out.Marker
	}
}
