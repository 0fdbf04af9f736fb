// Package infrastructure provisions the DynamoDB table leasegate stores
// access requests in, so a new deployment needs no hand-written IaC to get
// started.
package infrastructure

import (
	"errors"
	"fmt"
)

// KeyType is a DynamoDB key attribute type.
type KeyType string

const (
	KeyTypeString KeyType = "S"
	KeyTypeNumber KeyType = "N"
	KeyTypeBinary KeyType = "B"
)

// IsValid reports whether the KeyType is a DynamoDB key type.
func (kt KeyType) IsValid() bool {
	return kt == KeyTypeString || kt == KeyTypeNumber || kt == KeyTypeBinary
}

// BillingMode is a DynamoDB table billing mode.
type BillingMode string

const (
	BillingModePayPerRequest BillingMode = "PAY_PER_REQUEST"
	BillingModeProvisioned   BillingMode = "PROVISIONED"
)

// IsValid reports whether the BillingMode is a DynamoDB billing mode.
func (bm BillingMode) IsValid() bool {
	return bm == BillingModePayPerRequest || bm == BillingModeProvisioned
}

// ProjectionType is a GSI projection type.
type ProjectionType string

const (
	ProjectionAll      ProjectionType = "ALL"
	ProjectionKeysOnly ProjectionType = "KEYS_ONLY"
	ProjectionInclude  ProjectionType = "INCLUDE"
)

// IsValid reports whether the ProjectionType is a DynamoDB projection type.
func (pt ProjectionType) IsValid() bool {
	return pt == ProjectionAll || pt == ProjectionKeysOnly || pt == ProjectionInclude
}

// KeyAttribute is a key attribute definition.
type KeyAttribute struct {
	Name string
	Type KeyType
}

// Validate checks the KeyAttribute.
func (ka KeyAttribute) Validate() error {
	if ka.Name == "" {
		return errors.New("key attribute name is required")
	}
	if !ka.Type.IsValid() {
		return fmt.Errorf("invalid key type %q: must be S, N, or B", ka.Type)
	}
	return nil
}

// GSISchema is a Global Secondary Index definition.
type GSISchema struct {
	IndexName    string
	PartitionKey KeyAttribute
	SortKey      *KeyAttribute
	Projection   ProjectionType
}

// Validate checks the GSISchema.
func (gsi GSISchema) Validate() error {
	if gsi.IndexName == "" {
		return errors.New("GSI index name is required")
	}
	if err := gsi.PartitionKey.Validate(); err != nil {
		return fmt.Errorf("GSI %q partition key: %w", gsi.IndexName, err)
	}
	if gsi.SortKey != nil {
		if err := gsi.SortKey.Validate(); err != nil {
			return fmt.Errorf("GSI %q sort key: %w", gsi.IndexName, err)
		}
	}
	if gsi.Projection != "" && !gsi.Projection.IsValid() {
		return fmt.Errorf("GSI %q: invalid projection type %q", gsi.IndexName, gsi.Projection)
	}
	return nil
}

// TableSchema is a complete DynamoDB table definition.
type TableSchema struct {
	TableName              string
	PartitionKey           KeyAttribute
	SortKey                *KeyAttribute
	GlobalSecondaryIndexes []GSISchema

	// TTLAttribute enables TTL on the named attribute. Empty disables TTL.
	TTLAttribute string

	BillingMode BillingMode

	// KMSKeyARN, when set, encrypts the table with the given customer key
	// instead of the AWS owned default.
	KMSKeyARN string
}

// Validate checks the TableSchema.
func (ts TableSchema) Validate() error {
	if ts.TableName == "" {
		return errors.New("table name is required")
	}
	if err := ts.PartitionKey.Validate(); err != nil {
		return fmt.Errorf("partition key: %w", err)
	}
	if ts.SortKey != nil {
		if err := ts.SortKey.Validate(); err != nil {
			return fmt.Errorf("sort key: %w", err)
		}
	}
	for i, gsi := range ts.GlobalSecondaryIndexes {
		if err := gsi.Validate(); err != nil {
			return fmt.Errorf("GSI[%d]: %w", i, err)
		}
	}
	if ts.BillingMode != "" && !ts.BillingMode.IsValid() {
		return fmt.Errorf("invalid billing mode %q", ts.BillingMode)
	}
	return nil
}

// GSINames lists the GSI names in the schema.
func (ts TableSchema) GSINames() []string {
	names := make([]string, len(ts.GlobalSecondaryIndexes))
	for i, gsi := range ts.GlobalSecondaryIndexes {
		names[i] = gsi.IndexName
	}
	return names
}

// RequestTableSchema returns the schema the grant store expects:
//   - Partition key: id (S)
//   - GSIs: gsi-requester (requester_email), gsi-status (status),
//     gsi-account (account_id), each with a created_at sort key
//   - TTL attribute: ttl
//   - Billing: PAY_PER_REQUEST
func RequestTableSchema(tableName string) TableSchema {
	createdAtSortKey := &KeyAttribute{Name: "created_at", Type: KeyTypeString}

	return TableSchema{
		TableName:    tableName,
		PartitionKey: KeyAttribute{Name: "id", Type: KeyTypeString},
		GlobalSecondaryIndexes: []GSISchema{
			{
				IndexName:    "gsi-requester",
				PartitionKey: KeyAttribute{Name: "requester_email", Type: KeyTypeString},
				SortKey:      createdAtSortKey,
				Projection:   ProjectionAll,
			},
			{
				IndexName:    "gsi-status",
				PartitionKey: KeyAttribute{Name: "status", Type: KeyTypeString},
				SortKey:      createdAtSortKey,
				Projection:   ProjectionAll,
			},
			{
				IndexName:    "gsi-account",
				PartitionKey: KeyAttribute{Name: "account_id", Type: KeyTypeString},
				SortKey:      createdAtSortKey,
				Projection:   ProjectionAll,
			},
		},
		TTLAttribute: "ttl",
		BillingMode:  BillingModePayPerRequest,
	}
}
