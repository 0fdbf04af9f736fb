package provision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	lgerrors "github.com/byteness/leasegate/errors"
	"github.com/byteness/leasegate/grant"
)

// DefaultCallTimeout bounds each individual IAM call so a hung teardown
// can't stall the expiry sweeper.
const DefaultCallTimeout = 30 * time.Second

// iamAPI defines the IAM operations used by IAMProvisioner.
// This interface enables testing with mock implementations.
type iamAPI interface {
	CreatePolicy(ctx context.Context, params *iam.CreatePolicyInput, optFns ...func(*iam.Options)) (*iam.CreatePolicyOutput, error)
	DeletePolicy(ctx context.Context, params *iam.DeletePolicyInput, optFns ...func(*iam.Options)) (*iam.DeletePolicyOutput, error)
	CreateRole(ctx context.Context, params *iam.CreateRoleInput, optFns ...func(*iam.Options)) (*iam.CreateRoleOutput, error)
	DeleteRole(ctx context.Context, params *iam.DeleteRoleInput, optFns ...func(*iam.Options)) (*iam.DeleteRoleOutput, error)
	AttachRolePolicy(ctx context.Context, params *iam.AttachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.AttachRolePolicyOutput, error)
	DetachRolePolicy(ctx context.Context, params *iam.DetachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.DetachRolePolicyOutput, error)
}

// IAMProvisioner implements Provisioner with IAM customer-managed policies.
// Apply creates a policy from the request's synthesized document, a role the
// requester can assume, and attaches the policy to the role. Revoke undoes
// all three and tolerates artifacts that were already removed.
type IAMProvisioner struct {
	client      iamAPI
	callTimeout time.Duration
}

// NewIAMProvisioner creates an IAMProvisioner using the provided AWS
// configuration.
func NewIAMProvisioner(cfg aws.Config) *IAMProvisioner {
	return &IAMProvisioner{
		client:      iam.NewFromConfig(cfg),
		callTimeout: DefaultCallTimeout,
	}
}

// NewIAMProvisionerWithClient creates an IAMProvisioner with a custom
// client (for testing).
func NewIAMProvisionerWithClient(client iamAPI) *IAMProvisioner {
	return &IAMProvisioner{
		client:      client,
		callTimeout: DefaultCallTimeout,
	}
}

// Apply creates the IAM role for an approved request and attaches its
// policy: the synthesized document is created as a new customer-managed
// policy, while a permission-set reference attaches the existing managed
// policy it names. Partially created artifacts are rolled back on failure
// so a failed approval never leaves orphaned access.
func (p *IAMProvisioner) Apply(ctx context.Context, req *grant.AccessRequest) (*grant.GrantHandle, error) {
	if req.Spec.HasPermissionSet() {
		return p.applyPermissionSet(ctx, req)
	}
	if req.Policy == nil {
		return nil, errors.New("request has no synthesized policy document")
	}

	document, err := json.Marshal(req.Policy)
	if err != nil {
		return nil, fmt.Errorf("marshaling policy document: %w", err)
	}

	name := GrantName(req)

	policyARN, err := p.createPolicy(ctx, name, string(document), req)
	if err != nil {
		return nil, err
	}

	if err := p.createRole(ctx, name, req); err != nil {
		p.deletePolicy(ctx, policyARN)
		return nil, err
	}

	if err := p.attachPolicy(ctx, name, policyARN); err != nil {
		p.deleteRole(ctx, name)
		p.deletePolicy(ctx, policyARN)
		return nil, err
	}

	return &grant.GrantHandle{
		PolicyARN:   policyARN,
		RoleName:    name,
		PolicyOwned: true,
	}, nil
}

// applyPermissionSet provisions a grant backed by a pre-approved managed
// policy: only the role is created, and teardown must not delete the
// shared policy.
func (p *IAMProvisioner) applyPermissionSet(ctx context.Context, req *grant.AccessRequest) (*grant.GrantHandle, error) {
	name := GrantName(req)
	policyARN := permissionSetARN(req)

	if err := p.createRole(ctx, name, req); err != nil {
		return nil, err
	}

	if err := p.attachPolicy(ctx, name, policyARN); err != nil {
		p.deleteRole(ctx, name)
		return nil, err
	}

	return &grant.GrantHandle{
		PolicyARN: policyARN,
		RoleName:  name,
	}, nil
}

// permissionSetARN resolves a permission-set reference to a managed policy
// ARN. References may already be full ARNs; bare names resolve to a
// customer-managed policy in the grant's account.
func permissionSetARN(req *grant.AccessRequest) string {
	ref := req.Spec.PermissionSetRef
	if strings.HasPrefix(ref, "arn:") {
		return ref
	}
	return fmt.Sprintf("arn:aws:iam::%s:policy/%s", req.AccountID, ref)
}

// Revoke tears down the artifacts recorded on the request's handle.
// Each step tolerates NoSuchEntity so a retried or raced teardown
// converges instead of failing.
func (p *IAMProvisioner) Revoke(ctx context.Context, req *grant.AccessRequest) error {
	if req.Handle == nil {
		// Nothing was provisioned
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	_, err := p.client.DetachRolePolicy(callCtx, &iam.DetachRolePolicyInput{
		RoleName:  aws.String(req.Handle.RoleName),
		PolicyArn: aws.String(req.Handle.PolicyARN),
	})
	if err != nil && !isNoSuchEntity(err) {
		return lgerrors.WrapIAMError(err, "DetachRolePolicy", req.Handle.RoleName)
	}

	if err := p.deleteRole(ctx, req.Handle.RoleName); err != nil {
		return err
	}
	if !req.Handle.PolicyOwned {
		return nil
	}
	return p.deletePolicy(ctx, req.Handle.PolicyARN)
}

func (p *IAMProvisioner) createPolicy(ctx context.Context, name, document string, req *grant.AccessRequest) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	output, err := p.client.CreatePolicy(callCtx, &iam.CreatePolicyInput{
		PolicyName:     aws.String(name),
		PolicyDocument: aws.String(document),
		Description:    aws.String("Temporary access grant for " + req.RequesterEmail),
		Tags:           grantTags(req),
	})
	if err != nil {
		return "", lgerrors.WrapIAMError(err, "CreatePolicy", name)
	}
	return aws.ToString(output.Policy.Arn), nil
}

func (p *IAMProvisioner) createRole(ctx context.Context, name string, req *grant.AccessRequest) error {
	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	trust, err := trustPolicy(req.AccountID)
	if err != nil {
		return err
	}

	_, err = p.client.CreateRole(callCtx, &iam.CreateRoleInput{
		RoleName:                 aws.String(name),
		AssumeRolePolicyDocument: aws.String(trust),
		Description:              aws.String("Temporary access grant for " + req.RequesterEmail),
		MaxSessionDuration:       aws.Int32(3600),
		Tags:                     grantTags(req),
	})
	if err != nil {
		return lgerrors.WrapIAMError(err, "CreateRole", name)
	}
	return nil
}

func (p *IAMProvisioner) attachPolicy(ctx context.Context, roleName, policyARN string) error {
	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	_, err := p.client.AttachRolePolicy(callCtx, &iam.AttachRolePolicyInput{
		RoleName:  aws.String(roleName),
		PolicyArn: aws.String(policyARN),
	})
	if err != nil {
		return lgerrors.WrapIAMError(err, "AttachRolePolicy", roleName)
	}
	return nil
}

func (p *IAMProvisioner) deleteRole(ctx context.Context, name string) error {
	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	_, err := p.client.DeleteRole(callCtx, &iam.DeleteRoleInput{
		RoleName: aws.String(name),
	})
	if err != nil && !isNoSuchEntity(err) {
		return lgerrors.WrapIAMError(err, "DeleteRole", name)
	}
	return nil
}

func (p *IAMProvisioner) deletePolicy(ctx context.Context, arn string) error {
	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	_, err := p.client.DeletePolicy(callCtx, &iam.DeletePolicyInput{
		PolicyArn: aws.String(arn),
	})
	if err != nil && !isNoSuchEntity(err) {
		return lgerrors.WrapIAMError(err, "DeletePolicy", arn)
	}
	return nil
}

// trustPolicy builds the assume-role trust document scoped to the grant's
// account. Session policies and the attached grant policy bound what the
// assumed role can actually do.
func trustPolicy(accountID string) (string, error) {
	doc := map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{
			{
				"Effect": "Allow",
				"Principal": map[string]any{
					"AWS": fmt.Sprintf("arn:aws:iam::%s:root", accountID),
				},
				"Action": "sts:AssumeRole",
			},
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshaling trust policy: %w", err)
	}
	return string(data), nil
}

// grantTags marks provisioned artifacts so account audits can identify
// temporary grants and their owners.
func grantTags(req *grant.AccessRequest) []iamtypes.Tag {
	return []iamtypes.Tag{
		{Key: aws.String("leasegate:request-id"), Value: aws.String(req.ID)},
		{Key: aws.String("leasegate:requester"), Value: aws.String(req.RequesterEmail)},
		{Key: aws.String("leasegate:expires-at"), Value: aws.String(req.ExpiresAt.UTC().Format(time.RFC3339))},
	}
}

func isNoSuchEntity(err error) bool {
	var notFound *iamtypes.NoSuchEntityException
	return errors.As(err, &notFound)
}
