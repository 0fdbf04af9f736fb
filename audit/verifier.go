package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	cttypes "github.com/aws/aws-sdk-go-v2/service/cloudtrail/types"

	"github.com/byteness/leasegate/grant"
)

// DefaultLookback bounds how far past the grant's end the verifier
// searches for delete events. CloudTrail delivery lags by up to 15
// minutes; an hour leaves room for teardown retries.
const DefaultLookback = time.Hour

type cloudtrailAPI interface {
	LookupEvents(ctx context.Context, params *cloudtrail.LookupEventsInput, optFns ...func(*cloudtrail.Options)) (*cloudtrail.LookupEventsOutput, error)
}

// TeardownVerifier checks CloudTrail for the DeletePolicy/DeleteRole
// events that a completed teardown leaves behind.
type TeardownVerifier struct {
	client   cloudtrailAPI
	lookback time.Duration
}

// NewTeardownVerifier returns a verifier using the provided AWS config.
func NewTeardownVerifier(cfg aws.Config) *TeardownVerifier {
	return &TeardownVerifier{
		client:   cloudtrail.NewFromConfig(cfg),
		lookback: DefaultLookback,
	}
}

// NewTeardownVerifierWithClient allows injecting a mock client for testing.
func NewTeardownVerifierWithClient(client cloudtrailAPI) *TeardownVerifier {
	return &TeardownVerifier{client: client, lookback: DefaultLookback}
}

// Check verifies one request's teardown. The request must be revoked or
// expired and carry a grant handle; anything else cannot be checked.
func (v *TeardownVerifier) Check(ctx context.Context, req *grant.AccessRequest) (TeardownCheck, error) {
	check := TeardownCheck{RequestID: req.ID}
	if !verifiable(req) {
		return check, fmt.Errorf("request %s is not in a verifiable state (status %s)", req.ID, req.Status)
	}

	policyName := policyNameFromARN(req.Handle.PolicyARN)

	// Events land after the grant ends: search from expiry forward.
	start := req.ExpiresAt
	end := start.Add(v.lookback)

	if err := v.scanEvents(ctx, "DeletePolicy", start, end, func(eventTime time.Time, raw string) {
		if strings.Contains(raw, policyName) && !check.PolicyDeleted {
			check.PolicyDeleted = true
			check.PolicyDeletedAt = eventTime
		}
	}); err != nil {
		return check, err
	}

	if err := v.scanEvents(ctx, "DeleteRole", start, end, func(eventTime time.Time, raw string) {
		if strings.Contains(raw, req.Handle.RoleName) && !check.RoleDeleted {
			check.RoleDeleted = true
			check.RoleDeletedAt = eventTime
		}
	}); err != nil {
		return check, err
	}

	return check, nil
}

// VerifyBatch checks every verifiable request and reports the teardowns
// CloudTrail cannot confirm. Requests without a handle or still active
// are skipped, not failed.
func (v *TeardownVerifier) VerifyBatch(ctx context.Context, requests []*grant.AccessRequest) (Report, error) {
	var report Report

	for _, req := range requests {
		if !verifiable(req) {
			continue
		}
		check, err := v.Check(ctx, req)
		if err != nil {
			return report, err
		}
		report.Checked++

		if check.Verified() {
			report.Verified++
			continue
		}

		var missing []string
		if !check.PolicyDeleted {
			missing = append(missing, "policy")
		}
		if !check.RoleDeleted {
			missing = append(missing, "role")
		}
		report.Findings = append(report.Findings, Finding{
			Severity:  SeverityCritical,
			RequestID: req.ID,
			Message: fmt.Sprintf("teardown of request %s unverified: no CloudTrail delete event for %s",
				req.ID, strings.Join(missing, ", ")),
		})
	}

	return report, nil
}

// scanEvents pages through CloudTrail events with the given name and
// feeds each to fn.
func (v *TeardownVerifier) scanEvents(ctx context.Context, eventName string, start, end time.Time, fn func(eventTime time.Time, raw string)) error {
	var nextToken *string
	for {
		out, err := v.client.LookupEvents(ctx, &cloudtrail.LookupEventsInput{
			StartTime: aws.Time(start),
			EndTime:   aws.Time(end),
			NextToken: nextToken,
			LookupAttributes: []cttypes.LookupAttribute{
				{
					AttributeKey:   cttypes.LookupAttributeKeyEventName,
					AttributeValue: aws.String(eventName),
				},
			},
		})
		if err != nil {
			return fmt.Errorf("cloudtrail lookup %s: %w", eventName, err)
		}

		for _, event := range out.Events {
			raw := aws.ToString(event.CloudTrailEvent)
			if raw == "" {
				continue
			}
			fn(aws.ToTime(event.EventTime), raw)
		}

		if out.NextToken == nil {
			return nil
		}
		nextToken = out.NextToken
	}
}

// policyNameFromARN extracts the policy name from a policy ARN
// (arn:aws:iam::123456789012:policy/JIT_789012_alice_a1b2c3).
func policyNameFromARN(arn string) string {
	if idx := strings.LastIndex(arn, "/"); idx >= 0 {
		return arn[idx+1:]
	}
	return arn
}
