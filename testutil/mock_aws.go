// Package testutil provides shared mocks and helpers for leasegate tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// ============================================================================
// MockSSMClient - SSM Parameter Store operations
// ============================================================================

// MockSSMClient implements SSM client operations for testing.
type MockSSMClient struct {
	mu sync.Mutex

	// Configurable behavior functions
	GetParameterFunc func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	PutParameterFunc func(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)

	// Call tracking
	GetParameterCalls []*ssm.GetParameterInput
	PutParameterCalls []*ssm.PutParameterInput
}

// GetParameter implements SSM GetParameter operation.
func (m *MockSSMClient) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	m.mu.Lock()
	m.GetParameterCalls = append(m.GetParameterCalls, params)
	m.mu.Unlock()

	if m.GetParameterFunc != nil {
		return m.GetParameterFunc(ctx, params, optFns...)
	}
	return nil, errors.New("GetParameter not implemented")
}

// PutParameter implements SSM PutParameter operation.
func (m *MockSSMClient) PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error) {
	m.mu.Lock()
	m.PutParameterCalls = append(m.PutParameterCalls, params)
	m.mu.Unlock()

	if m.PutParameterFunc != nil {
		return m.PutParameterFunc(ctx, params, optFns...)
	}
	return &ssm.PutParameterOutput{Version: 1}, nil
}

// Reset clears all call tracking data.
func (m *MockSSMClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetParameterCalls = nil
	m.PutParameterCalls = nil
}

// ============================================================================
// MockDynamoDBClient - DynamoDB operations
// ============================================================================

// MockDynamoDBClient implements DynamoDB client operations for testing.
type MockDynamoDBClient struct {
	mu sync.Mutex

	// Configurable behavior functions
	PutItemFunc    func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItemFunc    func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItemFunc func(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	QueryFunc      func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)

	// Call tracking
	PutItemCalls    []*dynamodb.PutItemInput
	GetItemCalls    []*dynamodb.GetItemInput
	DeleteItemCalls []*dynamodb.DeleteItemInput
	QueryCalls      []*dynamodb.QueryInput
}

// PutItem implements DynamoDB PutItem operation.
func (m *MockDynamoDBClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	m.PutItemCalls = append(m.PutItemCalls, params)
	m.mu.Unlock()

	if m.PutItemFunc != nil {
		return m.PutItemFunc(ctx, params, optFns...)
	}
	return &dynamodb.PutItemOutput{}, nil
}

// GetItem implements DynamoDB GetItem operation.
func (m *MockDynamoDBClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.mu.Lock()
	m.GetItemCalls = append(m.GetItemCalls, params)
	m.mu.Unlock()

	if m.GetItemFunc != nil {
		return m.GetItemFunc(ctx, params, optFns...)
	}
	return &dynamodb.GetItemOutput{}, nil
}

// DeleteItem implements DynamoDB DeleteItem operation.
func (m *MockDynamoDBClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	m.mu.Lock()
	m.DeleteItemCalls = append(m.DeleteItemCalls, params)
	m.mu.Unlock()

	if m.DeleteItemFunc != nil {
		return m.DeleteItemFunc(ctx, params, optFns...)
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

// Query implements DynamoDB Query operation.
func (m *MockDynamoDBClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.Lock()
	m.QueryCalls = append(m.QueryCalls, params)
	m.mu.Unlock()

	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, params, optFns...)
	}
	return &dynamodb.QueryOutput{}, nil
}

// Reset clears all call tracking data.
func (m *MockDynamoDBClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutItemCalls = nil
	m.GetItemCalls = nil
	m.DeleteItemCalls = nil
	m.QueryCalls = nil
}

// ============================================================================
// MockSNSClient - SNS notifications
// ============================================================================

// MockSNSClient implements SNS client operations for testing.
// Tracks published messages for assertions.
type MockSNSClient struct {
	mu sync.Mutex

	// Configurable behavior functions
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)

	// Call tracking
	PublishCalls []*sns.PublishInput

	messageIDCounter int
}

// Publish implements SNS Publish operation.
func (m *MockSNSClient) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.mu.Lock()
	m.PublishCalls = append(m.PublishCalls, params)
	m.messageIDCounter++
	msgID := m.messageIDCounter
	m.mu.Unlock()

	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, params, optFns...)
	}
	return &sns.PublishOutput{
		MessageId: aws.String(fmt.Sprintf("mock-message-%d", msgID)),
	}, nil
}

// Reset clears all call tracking data and resets counters.
func (m *MockSNSClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishCalls = nil
	m.messageIDCounter = 0
}

// PublishCallCount returns the number of Publish calls made.
func (m *MockSNSClient) PublishCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.PublishCalls)
}

// LastPublishedMessage returns the last published message input, or nil if none.
func (m *MockSNSClient) LastPublishedMessage() *sns.PublishInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.PublishCalls) == 0 {
		return nil
	}
	return m.PublishCalls[len(m.PublishCalls)-1]
}

// ============================================================================
// MockSTSClient - STS operations
// ============================================================================

// MockSTSClient implements STS client operations for testing.
type MockSTSClient struct {
	mu sync.Mutex

	// Configurable behavior functions
	GetCallerIdentityFunc func(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)

	// Call tracking
	GetCallerIdentityCalls []*sts.GetCallerIdentityInput
}

// GetCallerIdentity implements STS GetCallerIdentity operation.
func (m *MockSTSClient) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	m.mu.Lock()
	m.GetCallerIdentityCalls = append(m.GetCallerIdentityCalls, params)
	m.mu.Unlock()

	if m.GetCallerIdentityFunc != nil {
		return m.GetCallerIdentityFunc(ctx, params, optFns...)
	}
	return &sts.GetCallerIdentityOutput{
		Account: aws.String("123456789012"),
		Arn:     aws.String("arn:aws:sts::123456789012:assumed-role/MockRole/session"),
		UserId:  aws.String("AIDAMOCKUSERID"),
	}, nil
}

// Reset clears all call tracking data.
func (m *MockSTSClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCallerIdentityCalls = nil
}

// ============================================================================
// MockIAMClient - IAM provisioning operations
// ============================================================================

// MockIAMClient implements the IAM client operations used by grant
// provisioning and permission set listing.
type MockIAMClient struct {
	mu sync.Mutex

	// Configurable behavior functions
	CreatePolicyFunc       func(ctx context.Context, params *iam.CreatePolicyInput, optFns ...func(*iam.Options)) (*iam.CreatePolicyOutput, error)
	DeletePolicyFunc       func(ctx context.Context, params *iam.DeletePolicyInput, optFns ...func(*iam.Options)) (*iam.DeletePolicyOutput, error)
	CreateRoleFunc         func(ctx context.Context, params *iam.CreateRoleInput, optFns ...func(*iam.Options)) (*iam.CreateRoleOutput, error)
	DeleteRoleFunc         func(ctx context.Context, params *iam.DeleteRoleInput, optFns ...func(*iam.Options)) (*iam.DeleteRoleOutput, error)
	AttachRolePolicyFunc   func(ctx context.Context, params *iam.AttachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.AttachRolePolicyOutput, error)
	DetachRolePolicyFunc   func(ctx context.Context, params *iam.DetachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.DetachRolePolicyOutput, error)
	ListPoliciesFunc       func(ctx context.Context, params *iam.ListPoliciesInput, optFns ...func(*iam.Options)) (*iam.ListPoliciesOutput, error)

	// Call tracking
	CreatePolicyCalls     []*iam.CreatePolicyInput
	DeletePolicyCalls     []*iam.DeletePolicyInput
	CreateRoleCalls       []*iam.CreateRoleInput
	DeleteRoleCalls       []*iam.DeleteRoleInput
	AttachRolePolicyCalls []*iam.AttachRolePolicyInput
	DetachRolePolicyCalls []*iam.DetachRolePolicyInput
	ListPoliciesCalls     []*iam.ListPoliciesInput
}

// CreatePolicy implements IAM CreatePolicy operation.
func (m *MockIAMClient) CreatePolicy(ctx context.Context, params *iam.CreatePolicyInput, optFns ...func(*iam.Options)) (*iam.CreatePolicyOutput, error) {
	m.mu.Lock()
	m.CreatePolicyCalls = append(m.CreatePolicyCalls, params)
	m.mu.Unlock()

	if m.CreatePolicyFunc != nil {
		return m.CreatePolicyFunc(ctx, params, optFns...)
	}
	return nil, errors.New("CreatePolicy not implemented")
}

// DeletePolicy implements IAM DeletePolicy operation.
func (m *MockIAMClient) DeletePolicy(ctx context.Context, params *iam.DeletePolicyInput, optFns ...func(*iam.Options)) (*iam.DeletePolicyOutput, error) {
	m.mu.Lock()
	m.DeletePolicyCalls = append(m.DeletePolicyCalls, params)
	m.mu.Unlock()

	if m.DeletePolicyFunc != nil {
		return m.DeletePolicyFunc(ctx, params, optFns...)
	}
	return &iam.DeletePolicyOutput{}, nil
}

// CreateRole implements IAM CreateRole operation.
func (m *MockIAMClient) CreateRole(ctx context.Context, params *iam.CreateRoleInput, optFns ...func(*iam.Options)) (*iam.CreateRoleOutput, error) {
	m.mu.Lock()
	m.CreateRoleCalls = append(m.CreateRoleCalls, params)
	m.mu.Unlock()

	if m.CreateRoleFunc != nil {
		return m.CreateRoleFunc(ctx, params, optFns...)
	}
	return nil, errors.New("CreateRole not implemented")
}

// DeleteRole implements IAM DeleteRole operation.
func (m *MockIAMClient) DeleteRole(ctx context.Context, params *iam.DeleteRoleInput, optFns ...func(*iam.Options)) (*iam.DeleteRoleOutput, error) {
	m.mu.Lock()
	m.DeleteRoleCalls = append(m.DeleteRoleCalls, params)
	m.mu.Unlock()

	if m.DeleteRoleFunc != nil {
		return m.DeleteRoleFunc(ctx, params, optFns...)
	}
	return &iam.DeleteRoleOutput{}, nil
}

// AttachRolePolicy implements IAM AttachRolePolicy operation.
func (m *MockIAMClient) AttachRolePolicy(ctx context.Context, params *iam.AttachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.AttachRolePolicyOutput, error) {
	m.mu.Lock()
	m.AttachRolePolicyCalls = append(m.AttachRolePolicyCalls, params)
	m.mu.Unlock()

	if m.AttachRolePolicyFunc != nil {
		return m.AttachRolePolicyFunc(ctx, params, optFns...)
	}
	return &iam.AttachRolePolicyOutput{}, nil
}

// DetachRolePolicy implements IAM DetachRolePolicy operation.
func (m *MockIAMClient) DetachRolePolicy(ctx context.Context, params *iam.DetachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.DetachRolePolicyOutput, error) {
	m.mu.Lock()
	m.DetachRolePolicyCalls = append(m.DetachRolePolicyCalls, params)
	m.mu.Unlock()

	if m.DetachRolePolicyFunc != nil {
		return m.DetachRolePolicyFunc(ctx, params, optFns...)
	}
	return &iam.DetachRolePolicyOutput{}, nil
}

// ListPolicies implements IAM ListPolicies operation.
func (m *MockIAMClient) ListPolicies(ctx context.Context, params *iam.ListPoliciesInput, optFns ...func(*iam.Options)) (*iam.ListPoliciesOutput, error) {
	m.mu.Lock()
	m.ListPoliciesCalls = append(m.ListPoliciesCalls, params)
	m.mu.Unlock()

	if m.ListPoliciesFunc != nil {
		return m.ListPoliciesFunc(ctx, params, optFns...)
	}
	return &iam.ListPoliciesOutput{}, nil
}

// Reset clears all call tracking data.
func (m *MockIAMClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreatePolicyCalls = nil
	m.DeletePolicyCalls = nil
	m.CreateRoleCalls = nil
	m.DeleteRoleCalls = nil
	m.AttachRolePolicyCalls = nil
	m.DetachRolePolicyCalls = nil
	m.ListPoliciesCalls = nil
}

// ============================================================================
// MockKMSClient - KMS operations
// ============================================================================

// MockKMSClient implements KMS client operations for testing.
// Supports Sign and Verify operations for policy signing.
type MockKMSClient struct {
	mu sync.Mutex

	// Configurable behavior functions
	SignFunc   func(ctx context.Context, params *kms.SignInput, optFns ...func(*kms.Options)) (*kms.SignOutput, error)
	VerifyFunc func(ctx context.Context, params *kms.VerifyInput, optFns ...func(*kms.Options)) (*kms.VerifyOutput, error)

	// Call tracking
	SignCalls   []*kms.SignInput
	VerifyCalls []*kms.VerifyInput
}

// Sign implements KMS Sign operation.
func (m *MockKMSClient) Sign(ctx context.Context, params *kms.SignInput, optFns ...func(*kms.Options)) (*kms.SignOutput, error) {
	m.mu.Lock()
	m.SignCalls = append(m.SignCalls, params)
	m.mu.Unlock()

	if m.SignFunc != nil {
		return m.SignFunc(ctx, params, optFns...)
	}
	return nil, errors.New("Sign not implemented")
}

// Verify implements KMS Verify operation.
func (m *MockKMSClient) Verify(ctx context.Context, params *kms.VerifyInput, optFns ...func(*kms.Options)) (*kms.VerifyOutput, error) {
	m.mu.Lock()
	m.VerifyCalls = append(m.VerifyCalls, params)
	m.mu.Unlock()

	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, params, optFns...)
	}
	return nil, errors.New("Verify not implemented")
}

// Reset clears all call tracking data.
func (m *MockKMSClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SignCalls = nil
	m.VerifyCalls = nil
}

// ============================================================================
// MockOrganizationsClient - Organizations account listing
// ============================================================================

// MockOrganizationsClient implements the Organizations client operations
// used by the account inventory.
type MockOrganizationsClient struct {
	mu sync.Mutex

	// Configurable behavior functions
	ListAccountsFunc func(ctx context.Context, params *organizations.ListAccountsInput, optFns ...func(*organizations.Options)) (*organizations.ListAccountsOutput, error)

	// Call tracking
	ListAccountsCalls []*organizations.ListAccountsInput
}

// ListAccounts implements Organizations ListAccounts operation.
func (m *MockOrganizationsClient) ListAccounts(ctx context.Context, params *organizations.ListAccountsInput, optFns ...func(*organizations.Options)) (*organizations.ListAccountsOutput, error) {
	m.mu.Lock()
	m.ListAccountsCalls = append(m.ListAccountsCalls, params)
	m.mu.Unlock()

	if m.ListAccountsFunc != nil {
		return m.ListAccountsFunc(ctx, params, optFns...)
	}
	return &organizations.ListAccountsOutput{}, nil
}

// Reset clears all call tracking data.
func (m *MockOrganizationsClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListAccountsCalls = nil
}

// ============================================================================
// MockCloudWatchClient - metrics publishing
// ============================================================================

// MockCloudWatchClient implements the CloudWatch client operations used
// by the expiration sweeper's metrics publisher.
type MockCloudWatchClient struct {
	mu sync.Mutex

	// Configurable behavior functions
	PutMetricDataFunc func(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)

	// Call tracking
	PutMetricDataCalls []*cloudwatch.PutMetricDataInput
}

// PutMetricData implements CloudWatch PutMetricData operation.
func (m *MockCloudWatchClient) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.mu.Lock()
	m.PutMetricDataCalls = append(m.PutMetricDataCalls, params)
	m.mu.Unlock()

	if m.PutMetricDataFunc != nil {
		return m.PutMetricDataFunc(ctx, params, optFns...)
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

// Reset clears all call tracking data.
func (m *MockCloudWatchClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutMetricDataCalls = nil
}

// ============================================================================
// MockCloudTrailClient - CloudTrail queries
// ============================================================================

// MockCloudTrailClient implements the CloudTrail client operations used
// by the teardown audit verifier.
type MockCloudTrailClient struct {
	mu sync.Mutex

	// Configurable behavior functions
	LookupEventsFunc func(ctx context.Context, params *cloudtrail.LookupEventsInput, optFns ...func(*cloudtrail.Options)) (*cloudtrail.LookupEventsOutput, error)

	// Call tracking
	LookupEventsCalls []*cloudtrail.LookupEventsInput
}

// LookupEvents implements CloudTrail LookupEvents operation.
func (m *MockCloudTrailClient) LookupEvents(ctx context.Context, params *cloudtrail.LookupEventsInput, optFns ...func(*cloudtrail.Options)) (*cloudtrail.LookupEventsOutput, error) {
	m.mu.Lock()
	m.LookupEventsCalls = append(m.LookupEventsCalls, params)
	m.mu.Unlock()

	if m.LookupEventsFunc != nil {
		return m.LookupEventsFunc(ctx, params, optFns...)
	}
	return &cloudtrail.LookupEventsOutput{}, nil
}

// Reset clears all call tracking data.
func (m *MockCloudTrailClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LookupEventsCalls = nil
}

// ============================================================================
// MockSecretsManagerClient - secret retrieval
// ============================================================================

// MockSecretsManagerClient implements the Secrets Manager client
// operations used by the log signing key loader.
type MockSecretsManagerClient struct {
	mu sync.Mutex

	// Configurable behavior functions
	GetSecretValueFunc func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)

	// Call tracking
	GetSecretValueCalls []*secretsmanager.GetSecretValueInput
}

// GetSecretValue implements Secrets Manager GetSecretValue operation.
func (m *MockSecretsManagerClient) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	m.mu.Lock()
	m.GetSecretValueCalls = append(m.GetSecretValueCalls, params)
	m.mu.Unlock()

	if m.GetSecretValueFunc != nil {
		return m.GetSecretValueFunc(ctx, params, optFns...)
	}
	return nil, errors.New("GetSecretValue not implemented")
}

// Reset clears all call tracking data.
func (m *MockSecretsManagerClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetSecretValueCalls = nil
}
