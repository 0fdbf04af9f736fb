package policy_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/byteness/leasegate/policy"
	"github.com/byteness/leasegate/testutil"
)

const publishPolicyYAML = `
version: "1"
self_approve:
  max_risk_score: 4
approvals:
  - band: medium
    roles: [manager, admin]
`

func TestPublisherPush(t *testing.T) {
	mock := &testutil.MockSSMClient{}
	publisher := policy.NewPublisherWithClient(mock, nil)

	err := publisher.Push(context.Background(), "/leasegate/policies/default", []byte(publishPolicyYAML))
	if err != nil {
		t.Fatalf("Push() error: %v", err)
	}

	if len(mock.PutParameterCalls) != 1 {
		t.Fatalf("PutParameter calls = %d, want 1", len(mock.PutParameterCalls))
	}
	call := mock.PutParameterCalls[0]
	if aws.ToString(call.Name) != "/leasegate/policies/default" {
		t.Errorf("parameter name = %q", aws.ToString(call.Name))
	}
	if aws.ToString(call.Value) != publishPolicyYAML {
		t.Errorf("parameter value does not match the policy file")
	}
	if !aws.ToBool(call.Overwrite) {
		t.Error("Overwrite = false, pushes must replace the existing policy")
	}
}

func TestPublisherPushInvalidPolicy(t *testing.T) {
	mock := &testutil.MockSSMClient{}
	publisher := policy.NewPublisherWithClient(mock, nil)

	err := publisher.Push(context.Background(), "/leasegate/policies/default", []byte("version: \"9\"\n"))
	if err == nil {
		t.Fatal("Push() accepted an unsupported policy version")
	}
	if len(mock.PutParameterCalls) != 0 {
		t.Errorf("PutParameter calls = %d, invalid policies must not be written", len(mock.PutParameterCalls))
	}
}

func TestPublisherPushSigned(t *testing.T) {
	ssmMock := &testutil.MockSSMClient{}
	kmsMock := &testutil.MockKMSClient{
		SignFunc: func(ctx context.Context, params *kms.SignInput, optFns ...func(*kms.Options)) (*kms.SignOutput, error) {
			return &kms.SignOutput{Signature: []byte("sealed")}, nil
		},
	}
	signer := policy.NewSignerWithClient(kmsMock, "alias/leasegate-policy-signing")
	publisher := policy.NewPublisherWithClient(ssmMock, signer)

	err := publisher.Push(context.Background(), "/leasegate/policies/default", []byte(publishPolicyYAML))
	if err != nil {
		t.Fatalf("Push() error: %v", err)
	}

	if len(ssmMock.PutParameterCalls) != 2 {
		t.Fatalf("PutParameter calls = %d, want policy and signature", len(ssmMock.PutParameterCalls))
	}

	sigCall := ssmMock.PutParameterCalls[1]
	if aws.ToString(sigCall.Name) != "/leasegate/signatures/default" {
		t.Errorf("signature parameter = %q", aws.ToString(sigCall.Name))
	}

	var envelope policy.SignatureEnvelope
	if err := json.Unmarshal([]byte(aws.ToString(sigCall.Value)), &envelope); err != nil {
		t.Fatalf("decoding signature envelope: %v", err)
	}
	if string(envelope.Signature) != "sealed" {
		t.Errorf("Signature = %q", envelope.Signature)
	}
	if envelope.Metadata.KeyID != "alias/leasegate-policy-signing" {
		t.Errorf("KeyID = %q", envelope.Metadata.KeyID)
	}
	if envelope.Metadata.PolicyHash != policy.ComputePolicyHash([]byte(publishPolicyYAML)) {
		t.Error("PolicyHash does not match the pushed policy")
	}
	if err := envelope.Metadata.Validate(); err != nil {
		t.Errorf("envelope metadata invalid: %v", err)
	}
}

func TestPublisherPushSigningFailure(t *testing.T) {
	ssmMock := &testutil.MockSSMClient{}
	kmsMock := &testutil.MockKMSClient{
		SignFunc: func(ctx context.Context, params *kms.SignInput, optFns ...func(*kms.Options)) (*kms.SignOutput, error) {
			return nil, errors.New("key disabled")
		},
	}
	signer := policy.NewSignerWithClient(kmsMock, "alias/leasegate-policy-signing")
	publisher := policy.NewPublisherWithClient(ssmMock, signer)

	err := publisher.Push(context.Background(), "/leasegate/policies/default", []byte(publishPolicyYAML))
	if err == nil {
		t.Fatal("Push() should fail when signing fails")
	}
	if !strings.Contains(err.Error(), "signing policy") {
		t.Errorf("error = %v", err)
	}
	if len(ssmMock.PutParameterCalls) != 1 {
		t.Errorf("PutParameter calls = %d, only the policy write should have happened", len(ssmMock.PutParameterCalls))
	}
}

func TestPublisherPushSSMFailure(t *testing.T) {
	mock := &testutil.MockSSMClient{
		PutParameterFunc: func(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error) {
			return nil, errors.New("AccessDeniedException: not authorized")
		},
	}
	publisher := policy.NewPublisherWithClient(mock, nil)

	err := publisher.Push(context.Background(), "/leasegate/policies/default", []byte(publishPolicyYAML))
	if err == nil {
		t.Fatal("Push() should surface the SSM failure")
	}
}
