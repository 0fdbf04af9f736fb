package synth

import (
	"fmt"
)

// formatKey keys the resource-identifier lookup by provider and service.
type formatKey struct {
	provider string
	service  string
}

// resourceFormatter turns a selected resource into one or more fully
// qualified identifiers for its service.
type resourceFormatter func(region, accountID string, ref ResourceRef, config map[string]string) []string

// resourceFormats is the fixed, extensible mapping from (provider, service)
// to identifier construction. Services whose discovery already returns full
// ARNs (secretsmanager, sns, sqs, elasticloadbalancing) pass the ID through.
var resourceFormats = map[formatKey]resourceFormatter{
	{"aws", "s3"}: func(_, _ string, ref ResourceRef, config map[string]string) []string {
		bucket := fmt.Sprintf("arn:aws:s3:::%s", ref.ID)
		prefix := config["prefix"]
		if prefix != "" {
			return []string{bucket, fmt.Sprintf("%s/%s*", bucket, prefix)}
		}
		return []string{bucket, bucket + "/*"}
	},
	{"aws", "ec2"}: func(region, accountID string, ref ResourceRef, _ map[string]string) []string {
		return []string{fmt.Sprintf("arn:aws:ec2:%s:%s:instance/%s", region, accountID, ref.ID)}
	},
	{"aws", "lambda"}: func(region, accountID string, ref ResourceRef, _ map[string]string) []string {
		return []string{fmt.Sprintf("arn:aws:lambda:%s:%s:function:%s", region, accountID, ref.ID)}
	},
	{"aws", "rds"}: func(region, accountID string, ref ResourceRef, _ map[string]string) []string {
		return []string{fmt.Sprintf("arn:aws:rds:%s:%s:db:%s", region, accountID, ref.ID)}
	},
	{"aws", "dynamodb"}: func(region, accountID string, ref ResourceRef, _ map[string]string) []string {
		return []string{fmt.Sprintf("arn:aws:dynamodb:%s:%s:table/%s", region, accountID, ref.ID)}
	},
	{"aws", "logs"}: func(region, accountID string, ref ResourceRef, _ map[string]string) []string {
		return []string{fmt.Sprintf("arn:aws:logs:%s:%s:log-group:%s:*", region, accountID, ref.ID)}
	},
	{"aws", "kms"}: func(region, accountID string, ref ResourceRef, _ map[string]string) []string {
		return []string{fmt.Sprintf("arn:aws:kms:%s:%s:key/%s", region, accountID, ref.ID)}
	},
	{"aws", "secretsmanager"}:        passthroughFormat,
	{"aws", "sns"}:                   passthroughFormat,
	{"aws", "sqs"}:                   passthroughFormat,
	{"aws", "elasticloadbalancing"}: passthroughFormat,
}

// passthroughFormat is for services whose resource IDs are already full ARNs.
func passthroughFormat(_, _ string, ref ResourceRef, _ map[string]string) []string {
	return []string{ref.ID}
}

// requiredConfig names services whose access scope is minted from a config
// field instead of (or in addition to) discovered resources. The field must
// be present before synthesis.
var requiredConfig = map[formatKey]string{
	{"aws", "secretsmanager"}: "secret_name",
	{"aws", "lambda"}:         "function_name",
}

// configResource mints identifiers from a service's required config field.
// Used when requesters name the scoping object directly rather than picking
// from discovery results.
func configResource(provider, service, region, accountID string, config map[string]string) []string {
	switch (formatKey{provider, service}) {
	case formatKey{"aws", "secretsmanager"}:
		if name := config["secret_name"]; name != "" {
			// Secrets Manager appends a random suffix to secret ARNs.
			return []string{fmt.Sprintf("arn:aws:secretsmanager:%s:%s:secret:%s-*", region, accountID, name)}
		}
	case formatKey{"aws", "lambda"}:
		if name := config["function_name"]; name != "" {
			return []string{fmt.Sprintf("arn:aws:lambda:%s:%s:function:%s", region, accountID, name)}
		}
	}
	return nil
}
