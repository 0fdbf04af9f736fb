package assist

import (
	"context"
	"strings"
)

// keywordRule maps use-case vocabulary to a canned suggestion.
type keywordRule struct {
	keywords    []string
	description string
	actions     []string
}

// keywordRules are evaluated in order; the first match wins. Suggestions
// stay read-only: anything heavier should come through the request form
// where the approver sees exactly what was picked.
var keywordRules = []keywordRule{
	{
		keywords:    []string{"ec2", "instance", "connect"},
		description: "inspect EC2 instances and open a session",
		actions:     []string{"ec2:DescribeInstances", "ssm:StartSession"},
	},
	{
		keywords:    []string{"download", "s3", "bucket", "object"},
		description: "read objects from S3",
		actions:     []string{"s3:GetObject", "s3:ListBucket"},
	},
	{
		keywords:    []string{"log", "cloudwatch"},
		description: "search CloudWatch logs",
		actions:     []string{"logs:DescribeLogGroups", "logs:FilterLogEvents"},
	},
	{
		keywords:    []string{"rds", "database", "db"},
		description: "view RDS database configuration",
		actions:     []string{"rds:DescribeDBInstances"},
	},
	{
		keywords:    []string{"lambda", "function"},
		description: "inspect Lambda functions",
		actions:     []string{"lambda:GetFunction", "lambda:ListFunctions"},
	},
	{
		keywords:    []string{"dynamodb", "table"},
		description: "read DynamoDB tables",
		actions:     []string{"dynamodb:GetItem", "dynamodb:Query", "dynamodb:DescribeTable"},
	},
	{
		keywords:    []string{"secret"},
		description: "read a Secrets Manager secret",
		actions:     []string{"secretsmanager:GetSecretValue"},
	},
}

// KeywordGenerator suggests permissions by keyword matching. It is the
// fallback when no model-backed generator is configured, and the baseline
// its suggestions are judged against.
type KeywordGenerator struct{}

// NewKeywordGenerator returns the stock keyword generator.
func NewKeywordGenerator() *KeywordGenerator {
	return &KeywordGenerator{}
}

// Generate matches the use case against the rule table.
func (g *KeywordGenerator) Generate(ctx context.Context, useCase string) (*Draft, error) {
	lower := strings.ToLower(useCase)

	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return &Draft{
					Description: rule.description,
					Actions:     append([]string(nil), rule.actions...),
				}, nil
			}
		}
	}
	return nil, ErrNoSuggestion
}
