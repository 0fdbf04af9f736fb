package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	lgerrors "github.com/byteness/leasegate/errors"
)

// ProvisionStatus is the outcome of a provisioning operation.
type ProvisionStatus string

const (
	// StatusCreated indicates the table was created.
	StatusCreated ProvisionStatus = "CREATED"
	// StatusExists indicates the table already exists and is active.
	StatusExists ProvisionStatus = "EXISTS"
	// StatusFailed indicates provisioning failed.
	StatusFailed ProvisionStatus = "FAILED"
)

// Backoff configuration for waiting on table status.
const (
	initialBackoff = 1 * time.Second
	maxBackoff     = 30 * time.Second
	waitTimeout    = 5 * time.Minute
)

// dynamoDBProvisionerAPI defines the DynamoDB operations used by
// TableProvisioner. The interface enables testing with mocks.
type dynamoDBProvisionerAPI interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	UpdateTimeToLive(ctx context.Context, params *dynamodb.UpdateTimeToLiveInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error)
}

// TableProvisioner creates the request table idempotently: GSIs, TTL and
// encryption come from the schema, and an existing active table is left
// untouched.
type TableProvisioner struct {
	client dynamoDBProvisionerAPI
}

// NewTableProvisioner creates a TableProvisioner using the provided AWS
// configuration.
func NewTableProvisioner(cfg aws.Config) *TableProvisioner {
	return &TableProvisioner{client: dynamodb.NewFromConfig(cfg)}
}

// NewTableProvisionerWithClient creates a TableProvisioner with a custom
// client, for testing.
func NewTableProvisionerWithClient(client dynamoDBProvisionerAPI) *TableProvisioner {
	return &TableProvisioner{client: client}
}

// ProvisionResult is the outcome of one Create call.
type ProvisionResult struct {
	TableName string          `json:"table_name"`
	Status    ProvisionStatus `json:"status"`
	ARN       string          `json:"arn,omitempty"`
	Error     error           `json:"error,omitempty"`
}

// ProvisionPlan describes what Create would build, without touching AWS.
type ProvisionPlan struct {
	TableName    string   `json:"table_name"`
	GSIs         []string `json:"gsis,omitempty"`
	TTLAttribute string   `json:"ttl_attribute,omitempty"`
	BillingMode  string   `json:"billing_mode,omitempty"`
	KMSKeyARN    string   `json:"kms_key_arn,omitempty"`
}

// Create provisions the table from the schema. It is idempotent: an
// existing ACTIVE table returns StatusExists, a table mid-creation is
// waited on, and a concurrent CreateTable race resolves to StatusExists.
// TTL is configured after the table becomes ACTIVE.
func (p *TableProvisioner) Create(ctx context.Context, schema TableSchema) (*ProvisionResult, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	status, arn, err := p.getTableStatus(ctx, schema.TableName)
	if err != nil {
		return nil, err
	}

	switch status {
	case "ACTIVE":
		return &ProvisionResult{TableName: schema.TableName, Status: StatusExists, ARN: arn}, nil

	case "CREATING", "UPDATING":
		arn, err := p.waitForActive(ctx, schema.TableName)
		if err != nil {
			return &ProvisionResult{TableName: schema.TableName, Status: StatusFailed, Error: err}, nil
		}
		return &ProvisionResult{TableName: schema.TableName, Status: StatusExists, ARN: arn}, nil

	case "NOT_FOUND":
		output, err := p.client.CreateTable(ctx, schemaToCreateTableInput(schema))
		if err != nil {
			var inUse *types.ResourceInUseException
			if errors.As(err, &inUse) {
				// another process won the race
				arn, waitErr := p.waitForActive(ctx, schema.TableName)
				if waitErr != nil {
					return &ProvisionResult{TableName: schema.TableName, Status: StatusFailed, Error: waitErr}, nil
				}
				return &ProvisionResult{TableName: schema.TableName, Status: StatusExists, ARN: arn}, nil
			}
			wrapped := lgerrors.WrapDynamoDBError(err, schema.TableName, "CreateTable")
			return &ProvisionResult{TableName: schema.TableName, Status: StatusFailed, Error: wrapped}, nil
		}

		arn, err = p.waitForActive(ctx, schema.TableName)
		if err != nil {
			return &ProvisionResult{TableName: schema.TableName, Status: StatusFailed, Error: err}, nil
		}
		if arn == "" && output.TableDescription != nil {
			arn = aws.ToString(output.TableDescription.TableArn)
		}

		if schema.TTLAttribute != "" {
			if err := p.configureTTL(ctx, schema.TableName, schema.TTLAttribute); err != nil {
				return &ProvisionResult{
					TableName: schema.TableName,
					Status:    StatusFailed,
					ARN:       arn,
					Error:     fmt.Errorf("table created but TTL configuration failed: %w", err),
				}, nil
			}
		}

		return &ProvisionResult{TableName: schema.TableName, Status: StatusCreated, ARN: arn}, nil

	default:
		return &ProvisionResult{
			TableName: schema.TableName,
			Status:    StatusFailed,
			Error:     fmt.Errorf("table exists with unexpected status: %s", status),
		}, nil
	}
}

// Plan validates the schema and describes what Create would build. It makes
// no AWS calls, so it works before the operator has DynamoDB permissions.
func (p *TableProvisioner) Plan(schema TableSchema) (*ProvisionPlan, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	plan := &ProvisionPlan{
		TableName:    schema.TableName,
		GSIs:         schema.GSINames(),
		TTLAttribute: schema.TTLAttribute,
		BillingMode:  string(schema.BillingMode),
		KMSKeyARN:    schema.KMSKeyARN,
	}
	if plan.BillingMode == "" {
		plan.BillingMode = string(BillingModePayPerRequest)
	}
	return plan, nil
}

// TableStatus returns the table's current status, or "NOT_FOUND".
func (p *TableProvisioner) TableStatus(ctx context.Context, tableName string) (string, error) {
	status, _, err := p.getTableStatus(ctx, tableName)
	return status, err
}

func (p *TableProvisioner) getTableStatus(ctx context.Context, tableName string) (string, string, error) {
	output, err := p.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return "NOT_FOUND", "", nil
		}
		return "", "", lgerrors.WrapDynamoDBError(err, tableName, "DescribeTable")
	}
	if output.Table == nil {
		return "NOT_FOUND", "", nil
	}
	return string(output.Table.TableStatus), aws.ToString(output.Table.TableArn), nil
}

// waitForActive polls with exponential backoff until the table is ACTIVE.
func (p *TableProvisioner) waitForActive(ctx context.Context, tableName string) (string, error) {
	backoff := initialBackoff
	deadline := time.Now().Add(waitTimeout)

	for {
		if time.Now().After(deadline) {
			return "", fmt.Errorf("timeout waiting for table %s to become ACTIVE", tableName)
		}

		status, arn, err := p.getTableStatus(ctx, tableName)
		if err != nil {
			return "", err
		}
		if status == "ACTIVE" {
			return arn, nil
		}
		if status == "NOT_FOUND" || status == "DELETING" {
			return "", fmt.Errorf("table %s is %s", tableName, status)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func (p *TableProvisioner) configureTTL(ctx context.Context, tableName, ttlAttribute string) error {
	_, err := p.client.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(tableName),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			Enabled:       aws.Bool(true),
			AttributeName: aws.String(ttlAttribute),
		},
	})
	if err != nil {
		return lgerrors.WrapDynamoDBError(err, tableName, "UpdateTimeToLive")
	}
	return nil
}

// schemaToCreateTableInput converts a TableSchema to a CreateTableInput.
func schemaToCreateTableInput(schema TableSchema) *dynamodb.CreateTableInput {
	attrDefs := map[string]types.AttributeDefinition{}

	addAttr := func(ka KeyAttribute) {
		attrDefs[ka.Name] = types.AttributeDefinition{
			AttributeName: aws.String(ka.Name),
			AttributeType: types.ScalarAttributeType(ka.Type),
		}
	}
	addAttr(schema.PartitionKey)
	if schema.SortKey != nil {
		addAttr(*schema.SortKey)
	}
	for _, gsi := range schema.GlobalSecondaryIndexes {
		addAttr(gsi.PartitionKey)
		if gsi.SortKey != nil {
			addAttr(*gsi.SortKey)
		}
	}

	attrDefSlice := make([]types.AttributeDefinition, 0, len(attrDefs))
	for _, ad := range attrDefs {
		attrDefSlice = append(attrDefSlice, ad)
	}

	keySchema := []types.KeySchemaElement{
		{AttributeName: aws.String(schema.PartitionKey.Name), KeyType: types.KeyTypeHash},
	}
	if schema.SortKey != nil {
		keySchema = append(keySchema, types.KeySchemaElement{
			AttributeName: aws.String(schema.SortKey.Name),
			KeyType:       types.KeyTypeRange,
		})
	}

	var gsis []types.GlobalSecondaryIndex
	for _, gsi := range schema.GlobalSecondaryIndexes {
		gsiKeySchema := []types.KeySchemaElement{
			{AttributeName: aws.String(gsi.PartitionKey.Name), KeyType: types.KeyTypeHash},
		}
		if gsi.SortKey != nil {
			gsiKeySchema = append(gsiKeySchema, types.KeySchemaElement{
				AttributeName: aws.String(gsi.SortKey.Name),
				KeyType:       types.KeyTypeRange,
			})
		}

		projectionType := types.ProjectionTypeAll
		if gsi.Projection != "" {
			projectionType = types.ProjectionType(gsi.Projection)
		}

		gsis = append(gsis, types.GlobalSecondaryIndex{
			IndexName:  aws.String(gsi.IndexName),
			KeySchema:  gsiKeySchema,
			Projection: &types.Projection{ProjectionType: projectionType},
		})
	}

	billingMode := types.BillingModePayPerRequest
	if schema.BillingMode != "" {
		billingMode = types.BillingMode(schema.BillingMode)
	}

	input := &dynamodb.CreateTableInput{
		TableName:            aws.String(schema.TableName),
		AttributeDefinitions: attrDefSlice,
		KeySchema:            keySchema,
		BillingMode:          billingMode,
	}
	if len(gsis) > 0 {
		input.GlobalSecondaryIndexes = gsis
	}
	if schema.KMSKeyARN != "" {
		input.SSESpecification = &types.SSESpecification{
			Enabled:        aws.Bool(true),
			SSEType:        types.SSETypeKms,
			KMSMasterKeyId: aws.String(schema.KMSKeyARN),
		}
	}
	return input
}
