package grant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	lgerrors "github.com/byteness/leasegate/errors"
)

// GSI name constants for DynamoDB Global Secondary Indexes.
// These indexes are created externally via Terraform/CloudFormation.
const (
	// GSIRequester indexes requests by requester_email with created_at sort key.
	GSIRequester = "gsi-requester"
	// GSIStatus indexes requests by status with created_at sort key.
	GSIStatus = "gsi-status"
	// GSIAccount indexes requests by account_id with created_at sort key.
	GSIAccount = "gsi-account"
)

// ttlRetention is how long expired records remain queryable for audit
// before DynamoDB's TTL reaper removes them.
const ttlRetention = 30 * 24 * time.Hour

// dynamoDBAPI defines the DynamoDB operations used by DynamoDBStore.
// This interface enables testing with mock implementations.
type dynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoDBStore implements Store using AWS DynamoDB.
// It provides CRUD operations for access requests with optimistic locking.
//
// Table schema assumptions (created externally via Terraform/CloudFormation):
//   - Partition key: id (String)
//   - TTL attribute: ttl (Number, Unix timestamp)
//   - GSIs: gsi-requester, gsi-status, gsi-account (created_at sort key)
type DynamoDBStore struct {
	client    dynamoDBAPI
	tableName string
	now       func() time.Time
}

// NewDynamoDBStore creates a new DynamoDBStore using the provided AWS
// configuration. The tableName specifies the DynamoDB table for requests.
func NewDynamoDBStore(cfg aws.Config, tableName string) *DynamoDBStore {
	return &DynamoDBStore{
		client:    dynamodb.NewFromConfig(cfg),
		tableName: tableName,
		now:       time.Now,
	}
}

// newDynamoDBStoreWithClient creates a DynamoDBStore with a custom client.
// This is primarily used for testing with mock clients.
func newDynamoDBStoreWithClient(client dynamoDBAPI, tableName string) *DynamoDBStore {
	return &DynamoDBStore{
		client:    client,
		tableName: tableName,
		now:       time.Now,
	}
}

// dynamoItem represents the DynamoDB item structure for an AccessRequest.
// Flat scalar fields back the GSIs; structured fields (spec, policy,
// approvals, window, handle) are stored as JSON strings.
type dynamoItem struct {
	ID             string `dynamodbav:"id"`
	RequesterEmail string `dynamodbav:"requester_email"`
	AccountID      string `dynamodbav:"account_id"`
	Region         string `dynamodbav:"region"`
	Provider       string `dynamodbav:"provider"`
	Spec           string `dynamodbav:"spec"`           // GrantSpec JSON
	Justification  string `dynamodbav:"justification"`
	DurationHours  int    `dynamodbav:"duration_hours"`
	CustomWindow   string `dynamodbav:"custom_window,omitempty"` // lease.CustomWindow JSON
	Policy         string `dynamodbav:"policy,omitempty"`        // synth.PolicyDocument JSON
	Status         string `dynamodbav:"status"`
	RiskScore      int    `dynamodbav:"risk_score"`
	Approvals      string `dynamodbav:"approvals,omitempty"` // []Approval JSON
	AIGenerated    bool   `dynamodbav:"ai_generated"`
	CreatedAt      string `dynamodbav:"created_at"` // RFC3339Nano
	UpdatedAt      string `dynamodbav:"updated_at"` // RFC3339Nano
	ExpiresAt      string `dynamodbav:"expires_at"` // RFC3339Nano
	TTL            int64  `dynamodbav:"ttl"`        // ExpiresAt + retention, Unix
	DenialReason   string `dynamodbav:"denial_reason,omitempty"`
	RevokeReason   string `dynamodbav:"revoke_reason,omitempty"`
	Handle         string `dynamodbav:"handle,omitempty"` // GrantHandle JSON
}

// requestToItem converts an AccessRequest to a DynamoDB item structure.
func requestToItem(req *AccessRequest) (*dynamoItem, error) {
	spec, err := json.Marshal(req.Spec)
	if err != nil {
		return nil, fmt.Errorf("marshal grant spec: %w", err)
	}

	item := &dynamoItem{
		ID:             req.ID,
		RequesterEmail: req.RequesterEmail,
		AccountID:      req.AccountID,
		Region:         req.Region,
		Provider:       req.Provider,
		Spec:           string(spec),
		Justification:  req.Justification,
		DurationHours:  req.DurationHours,
		Status:         string(req.Status),
		RiskScore:      req.RiskScore,
		AIGenerated:    req.AIGenerated,
		CreatedAt:      req.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:      req.UpdatedAt.Format(time.RFC3339Nano),
		ExpiresAt:      req.ExpiresAt.Format(time.RFC3339Nano),
		TTL:            req.ExpiresAt.Add(ttlRetention).Unix(),
		DenialReason:   req.DenialReason,
		RevokeReason:   req.RevokeReason,
	}

	if req.CustomWindow != nil {
		window, err := json.Marshal(req.CustomWindow)
		if err != nil {
			return nil, fmt.Errorf("marshal custom window: %w", err)
		}
		item.CustomWindow = string(window)
	}
	if req.Policy != nil {
		policy, err := json.Marshal(req.Policy)
		if err != nil {
			return nil, fmt.Errorf("marshal policy: %w", err)
		}
		item.Policy = string(policy)
	}
	if len(req.Approvals) > 0 {
		approvals, err := json.Marshal(req.Approvals)
		if err != nil {
			return nil, fmt.Errorf("marshal approvals: %w", err)
		}
		item.Approvals = string(approvals)
	}
	if req.Handle != nil {
		handle, err := json.Marshal(req.Handle)
		if err != nil {
			return nil, fmt.Errorf("marshal handle: %w", err)
		}
		item.Handle = string(handle)
	}

	return item, nil
}

// itemToRequest converts a DynamoDB item structure back to an AccessRequest.
func itemToRequest(item *dynamoItem) (*AccessRequest, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	expiresAt, err := time.Parse(time.RFC3339Nano, item.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("parse expires_at: %w", err)
	}

	req := &AccessRequest{
		ID:             item.ID,
		RequesterEmail: item.RequesterEmail,
		AccountID:      item.AccountID,
		Region:         item.Region,
		Provider:       item.Provider,
		Justification:  item.Justification,
		DurationHours:  item.DurationHours,
		Status:         Status(item.Status),
		RiskScore:      item.RiskScore,
		AIGenerated:    item.AIGenerated,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
		ExpiresAt:      expiresAt,
		DenialReason:   item.DenialReason,
		RevokeReason:   item.RevokeReason,
	}

	if err := json.Unmarshal([]byte(item.Spec), &req.Spec); err != nil {
		return nil, fmt.Errorf("unmarshal grant spec: %w", err)
	}
	if item.CustomWindow != "" {
		if err := json.Unmarshal([]byte(item.CustomWindow), &req.CustomWindow); err != nil {
			return nil, fmt.Errorf("unmarshal custom window: %w", err)
		}
	}
	if item.Policy != "" {
		if err := json.Unmarshal([]byte(item.Policy), &req.Policy); err != nil {
			return nil, fmt.Errorf("unmarshal policy: %w", err)
		}
	}
	if item.Approvals != "" {
		if err := json.Unmarshal([]byte(item.Approvals), &req.Approvals); err != nil {
			return nil, fmt.Errorf("unmarshal approvals: %w", err)
		}
	}
	if item.Handle != "" {
		if err := json.Unmarshal([]byte(item.Handle), &req.Handle); err != nil {
			return nil, fmt.Errorf("unmarshal handle: %w", err)
		}
	}

	return req, nil
}

// Create stores a new request. Returns ErrRequestExists if ID already exists.
func (s *DynamoDBStore) Create(ctx context.Context, req *AccessRequest) error {
	item, err := requestToItem(req)
	if err != nil {
		return err
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("%s: %w", req.ID, ErrRequestExists)
		}
		return lgerrors.WrapDynamoDBError(err, s.tableName, "PutItem")
	}

	return nil
}

// Get retrieves a request by ID. Returns ErrRequestNotFound if not exists.
func (s *DynamoDBStore) Get(ctx context.Context, id string) (*AccessRequest, error) {
	output, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, lgerrors.WrapDynamoDBError(err, s.tableName, "GetItem")
	}

	if output.Item == nil {
		return nil, fmt.Errorf("%s: %w", id, ErrRequestNotFound)
	}

	var item dynamoItem
	if err := attributevalue.UnmarshalMap(output.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal request: %w", err)
	}

	return itemToRequest(&item)
}

// Update modifies an existing request using optimistic locking.
// req.UpdatedAt must carry the timestamp from the caller's last read; it
// is the lock token. The store writes the record with a fresh updated_at
// and leaves it on req. Returns ErrRequestNotFound if the request doesn't
// exist, or ErrConcurrentModification if it was modified since last read.
func (s *DynamoDBStore) Update(ctx context.Context, req *AccessRequest) error {
	expected := req.UpdatedAt
	req.UpdatedAt = s.now()

	item, err := requestToItem(req)
	if err != nil {
		req.UpdatedAt = expected
		return err
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		req.UpdatedAt = expected
		return fmt.Errorf("marshal request: %w", err)
	}

	// Condition: item exists AND the stored updated_at still matches what
	// the caller read. A concurrent writer changes updated_at and fails
	// this condition.
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(id) AND updated_at = :old_updated_at"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":old_updated_at": &types.AttributeValueMemberS{Value: expected.Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		req.UpdatedAt = expected
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			// Either not found or concurrent modification; differentiate.
			exists, checkErr := s.exists(ctx, req.ID)
			if checkErr != nil {
				return fmt.Errorf("dynamodb PutItem condition failed, check exists: %w", checkErr)
			}
			if !exists {
				return fmt.Errorf("%s: %w", req.ID, ErrRequestNotFound)
			}
			return fmt.Errorf("%s: %w", req.ID, ErrConcurrentModification)
		}
		return lgerrors.WrapDynamoDBError(err, s.tableName, "PutItem")
	}

	return nil
}

// Delete removes a request by ID. No-op if not exists (idempotent).
func (s *DynamoDBStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return lgerrors.WrapDynamoDBError(err, s.tableName, "DeleteItem")
	}

	return nil
}

// exists checks if a request with the given ID exists in the store.
func (s *DynamoDBStore) exists(ctx context.Context, id string) (bool, error) {
	output, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ProjectionExpression: aws.String("id"),
	})
	if err != nil {
		return false, fmt.Errorf("dynamodb GetItem: %w", err)
	}

	return output.Item != nil, nil
}

// ListByRequester returns requests from one user, newest first.
func (s *DynamoDBStore) ListByRequester(ctx context.Context, requester string, limit int) ([]*AccessRequest, error) {
	return s.queryByIndex(ctx, GSIRequester, "requester_email", requester, limit)
}

// ListByStatus returns requests with a given status, newest first.
func (s *DynamoDBStore) ListByStatus(ctx context.Context, status Status, limit int) ([]*AccessRequest, error) {
	return s.queryByIndex(ctx, GSIStatus, "status", string(status), limit)
}

// ListByAccount returns requests targeting one account, newest first.
func (s *DynamoDBStore) ListByAccount(ctx context.Context, accountID string, limit int) ([]*AccessRequest, error) {
	return s.queryByIndex(ctx, GSIAccount, "account_id", accountID, limit)
}

// queryByIndex executes a query against a GSI with the given partition key.
// Results are ordered by created_at descending (newest first).
func (s *DynamoDBStore) queryByIndex(ctx context.Context, indexName, keyAttr, keyValue string, limit int) ([]*AccessRequest, error) {
	effectiveLimit := limit
	if effectiveLimit <= 0 {
		effectiveLimit = DefaultQueryLimit
	}
	if effectiveLimit > MaxQueryLimit {
		effectiveLimit = MaxQueryLimit
	}

	// The key attribute goes through ExpressionAttributeNames: status is a
	// DynamoDB reserved word and would be rejected inline.
	output, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(indexName),
		KeyConditionExpression: aws.String("#k = :v"),
		ExpressionAttributeNames: map[string]string{
			"#k": keyAttr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: keyValue},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(effectiveLimit)),
	})
	if err != nil {
		return nil, lgerrors.WrapDynamoDBError(err, s.tableName, fmt.Sprintf("Query:%s", indexName))
	}

	requests := make([]*AccessRequest, 0, len(output.Items))
	for _, av := range output.Items {
		var item dynamoItem
		if err := attributevalue.UnmarshalMap(av, &item); err != nil {
			return nil, fmt.Errorf("unmarshal request: %w", err)
		}
		req, err := itemToRequest(&item)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	return requests, nil
}
