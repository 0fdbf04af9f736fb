package policy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/byteness/leasegate/policy"
	"github.com/byteness/leasegate/testutil"
)

func TestSignerSign(t *testing.T) {
	signature := []byte("kms-signature-bytes")
	mock := &testutil.MockKMSClient{
		SignFunc: func(ctx context.Context, params *kms.SignInput, optFns ...func(*kms.Options)) (*kms.SignOutput, error) {
			return &kms.SignOutput{Signature: signature}, nil
		},
	}
	signer := policy.NewSignerWithClient(mock, "alias/leasegate-policy-signing")

	got, err := signer.Sign(context.Background(), []byte("version: \"1\"\n"))
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	if string(got) != string(signature) {
		t.Error("signature mismatch")
	}

	if len(mock.SignCalls) != 1 {
		t.Fatalf("Sign calls = %d, want 1", len(mock.SignCalls))
	}
	call := mock.SignCalls[0]
	if aws.ToString(call.KeyId) != "alias/leasegate-policy-signing" {
		t.Errorf("KeyId = %q", aws.ToString(call.KeyId))
	}
	if call.SigningAlgorithm != types.SigningAlgorithmSpecRsassaPssSha256 {
		t.Errorf("SigningAlgorithm = %q, want RSASSA_PSS_SHA_256", call.SigningAlgorithm)
	}
	if call.MessageType != types.MessageTypeRaw {
		t.Errorf("MessageType = %q, want RAW", call.MessageType)
	}
}

func TestSignerSignError(t *testing.T) {
	mock := &testutil.MockKMSClient{
		SignFunc: func(ctx context.Context, params *kms.SignInput, optFns ...func(*kms.Options)) (*kms.SignOutput, error) {
			return nil, errors.New("AccessDeniedException: not authorized to perform kms:Sign")
		},
	}
	signer := policy.NewSignerWithClient(mock, "alias/leasegate-policy-signing")

	if _, err := signer.Sign(context.Background(), []byte("data")); err == nil {
		t.Error("expected error")
	}
}

func TestSignerVerify(t *testing.T) {
	testCases := []struct {
		name    string
		fn      func(ctx context.Context, params *kms.VerifyInput, optFns ...func(*kms.Options)) (*kms.VerifyOutput, error)
		want    bool
		wantErr bool
	}{
		{
			name: "valid signature",
			fn: func(ctx context.Context, params *kms.VerifyInput, optFns ...func(*kms.Options)) (*kms.VerifyOutput, error) {
				return &kms.VerifyOutput{SignatureValid: true}, nil
			},
			want: true,
		},
		{
			name: "invalid signature exception is not an error",
			fn: func(ctx context.Context, params *kms.VerifyInput, optFns ...func(*kms.Options)) (*kms.VerifyOutput, error) {
				return nil, &types.KMSInvalidSignatureException{}
			},
			want: false,
		},
		{
			name: "infrastructure error passes through",
			fn: func(ctx context.Context, params *kms.VerifyInput, optFns ...func(*kms.Options)) (*kms.VerifyOutput, error) {
				return nil, errors.New("NotFoundException: key not found")
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mock := &testutil.MockKMSClient{VerifyFunc: tc.fn}
			signer := policy.NewSignerWithClient(mock, "alias/leasegate-policy-signing")

			valid, err := signer.Verify(context.Background(), []byte("data"), []byte("sig"))
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Verify() error: %v", err)
			}
			if valid != tc.want {
				t.Errorf("Verify() = %v, want %v", valid, tc.want)
			}
		})
	}
}
