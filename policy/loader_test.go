package policy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	lgerrors "github.com/byteness/leasegate/errors"
	"github.com/byteness/leasegate/policy"
	"github.com/byteness/leasegate/testutil"
)

const loaderPolicyYAML = `
version: "1"
self_approve:
  max_risk_score: 3
approvals:
  - band: high
    roles: [security_lead]
`

func TestLoaderLoad(t *testing.T) {
	mock := &testutil.MockSSMClient{
		GetParameterFunc: func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
			return &ssm.GetParameterOutput{
				Parameter: &types.Parameter{
					Name:  params.Name,
					Value: aws.String(loaderPolicyYAML),
				},
			}, nil
		},
	}
	loader := policy.NewLoaderWithClient(mock)

	p, err := loader.Load(context.Background(), "/leasegate/policies/default")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if p.SelfApprove.MaxRiskScore != 3 {
		t.Errorf("MaxRiskScore = %d, want 3", p.SelfApprove.MaxRiskScore)
	}

	if len(mock.GetParameterCalls) != 1 {
		t.Fatalf("GetParameter calls = %d, want 1", len(mock.GetParameterCalls))
	}
	call := mock.GetParameterCalls[0]
	if aws.ToString(call.Name) != "/leasegate/policies/default" {
		t.Errorf("parameter name = %q", aws.ToString(call.Name))
	}
	if !aws.ToBool(call.WithDecryption) {
		t.Error("expected WithDecryption to be set")
	}
}

func TestLoaderLoadNotFound(t *testing.T) {
	mock := &testutil.MockSSMClient{
		GetParameterFunc: func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
			return nil, &types.ParameterNotFound{}
		},
	}
	loader := policy.NewLoaderWithClient(mock)

	_, err := loader.Load(context.Background(), "/leasegate/policies/missing")
	if !errors.Is(err, policy.ErrPolicyNotFound) {
		t.Errorf("error = %v, want ErrPolicyNotFound", err)
	}
}

func TestLoaderLoadAccessDenied(t *testing.T) {
	mock := &testutil.MockSSMClient{
		GetParameterFunc: func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
			return nil, errors.New("AccessDeniedException: User is not authorized to perform ssm:GetParameter")
		},
	}
	loader := policy.NewLoaderWithClient(mock)

	_, err := loader.Load(context.Background(), "/leasegate/policies/default")
	if err == nil {
		t.Fatal("expected error")
	}
	if code := lgerrors.GetCode(err); code != lgerrors.ErrCodeSSMAccessDenied {
		t.Errorf("error code = %q, want %q", code, lgerrors.ErrCodeSSMAccessDenied)
	}
}

func TestLoaderLoadInvalidYAML(t *testing.T) {
	mock := &testutil.MockSSMClient{
		GetParameterFunc: func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
			return &ssm.GetParameterOutput{
				Parameter: &types.Parameter{Value: aws.String("{not yaml")},
			}, nil
		},
	}
	loader := policy.NewLoaderWithClient(mock)

	if _, err := loader.Load(context.Background(), "/leasegate/policies/default"); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoaderLoadOrDefault(t *testing.T) {
	testCases := []struct {
		name        string
		fn          func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
		wantDefault bool
		wantErr     bool
	}{
		{
			name: "missing parameter falls back to default",
			fn: func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
				return nil, &types.ParameterNotFound{}
			},
			wantDefault: true,
		},
		{
			name: "existing parameter is used",
			fn: func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
				return &ssm.GetParameterOutput{
					Parameter: &types.Parameter{Value: aws.String(loaderPolicyYAML)},
				}, nil
			},
		},
		{
			name: "other errors pass through",
			fn: func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
				return nil, errors.New("ThrottlingException: rate exceeded")
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			loader := policy.NewLoaderWithClient(&testutil.MockSSMClient{GetParameterFunc: tc.fn})

			p, err := loader.LoadOrDefault(context.Background(), "/leasegate/policies/default")
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadOrDefault() error: %v", err)
			}

			def := policy.Default()
			gotDefault := p.SelfApprove.MaxRiskScore == def.SelfApprove.MaxRiskScore
			if tc.wantDefault && !gotDefault {
				t.Errorf("expected default policy, got %+v", p)
			}
			if !tc.wantDefault && p.SelfApprove.MaxRiskScore != 3 {
				t.Errorf("MaxRiskScore = %d, want 3 from stored policy", p.SelfApprove.MaxRiskScore)
			}
		})
	}
}
