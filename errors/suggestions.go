package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
)

// Suggestions contains default fix suggestions for each error code.
var Suggestions = map[string]string{
	ErrCodeDynamoDBAccessDenied: "Ensure your IAM policy includes DynamoDB permissions on the request table.",
	ErrCodeDynamoDBTableNotFound: "The DynamoDB table does not exist. " +
		"Create it with CloudFormation or Terraform before running leasegate.",
	ErrCodeDynamoDBThrottled:       "DynamoDB throughput exceeded. Wait a moment and retry, or increase table capacity.",
	ErrCodeDynamoDBConditionFailed: "The DynamoDB conditional check failed. The request may have been modified by another process.",
	ErrCodeSSMAccessDenied: "Ensure your IAM policy includes: ssm:GetParameter on the governance policy parameter.",
	ErrCodeSSMParameterNotFound: "The SSM parameter does not exist. " +
		"Publish the governance policy with: leasegate policy push",
	ErrCodeSSMKMSAccessDenied: "The SSM parameter is encrypted. " +
		"Ensure your IAM policy includes: kms:Decrypt on the KMS key used for encryption",
	ErrCodeSSMThrottled:        "SSM API rate limit exceeded. Wait a moment and retry.",
	ErrCodeSSMInvalidParameter: "The SSM parameter name is invalid. Check the path format and characters.",
	ErrCodeIAMAccessDenied:     "IAM access denied. Grant provisioning needs iam:CreatePolicy, iam:CreateRole and iam:AttachRolePolicy.",
	ErrCodeIAMEntityNotFound:   "The IAM policy or role does not exist. It may already have been torn down.",
	ErrCodeIAMEntityExists:     "An IAM entity with this name already exists. A previous grant may not have been cleaned up.",
	ErrCodeIAMLimitExceeded:    "IAM entity limit reached. Clean up expired grant policies/roles or request a limit increase.",
	ErrCodeSNSAccessDenied:     "Ensure your IAM policy includes: sns:Publish on the alert topic.",
	ErrCodeSNSTopicNotFound:    "The SNS topic does not exist. Verify the topic ARN in your configuration.",
	ErrCodeSNSThrottled:        "SNS API rate limit exceeded. Wait a moment and retry.",
	ErrCodeOrgAccessDenied:     "Account listing needs organizations:ListAccounts from the management account.",
	ErrCodeOrgNotInUse:         "This account is not part of an AWS Organization. Configure accounts statically instead.",
}

// GetSuggestion returns the default suggestion for an error code.
// Returns empty string if no suggestion is defined.
func GetSuggestion(code string) string {
	return Suggestions[code]
}

// APIErrorCode extracts the service error code from an AWS SDK error.
// Returns empty string if err is not a smithy API error.
func APIErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// WrapDynamoDBError examines a DynamoDB error and returns a LeasegateError.
func WrapDynamoDBError(err error, table, operation string) LeasegateError {
	if err == nil {
		return nil
	}

	var code string
	var message string

	errStr := strings.ToLower(err.Error())

	switch {
	case isResourceNotFound(errStr):
		code = ErrCodeDynamoDBTableNotFound
		message = fmt.Sprintf("DynamoDB table not found: %s", table)
	case isAccessDenied(errStr):
		code = ErrCodeDynamoDBAccessDenied
		message = fmt.Sprintf("Access denied to DynamoDB table: %s", table)
	case isThrottled(errStr) || isProvisionedThroughputExceeded(errStr):
		code = ErrCodeDynamoDBThrottled
		message = fmt.Sprintf("DynamoDB throughput exceeded for table: %s", table)
	case isConditionalCheckFailed(errStr):
		code = ErrCodeDynamoDBConditionFailed
		message = fmt.Sprintf("DynamoDB conditional check failed for table: %s", table)
	default:
		code = ErrCodeDynamoDBAccessDenied
		message = fmt.Sprintf("DynamoDB error for table %s during %s: %v", table, operation, err)
	}

	se := New(code, message, Suggestions[code], err)
	se = WithContext(se, "table", table)
	return WithContext(se, "operation", operation)
}

// WrapSSMError examines an SSM error and returns a LeasegateError.
func WrapSSMError(err error, parameter string) LeasegateError {
	if err == nil {
		return nil
	}

	var code string
	var message string

	errStr := strings.ToLower(err.Error())

	switch {
	case isParameterNotFound(errStr):
		code = ErrCodeSSMParameterNotFound
		message = fmt.Sprintf("SSM parameter not found: %s", parameter)
	case isKMSAccessDenied(errStr):
		code = ErrCodeSSMKMSAccessDenied
		message = fmt.Sprintf("KMS access denied for SSM parameter: %s", parameter)
	case isAccessDenied(errStr):
		code = ErrCodeSSMAccessDenied
		message = fmt.Sprintf("Access denied to SSM parameter: %s", parameter)
	case isThrottled(errStr):
		code = ErrCodeSSMThrottled
		message = fmt.Sprintf("SSM API throttled while accessing: %s", parameter)
	case isValidationError(errStr):
		code = ErrCodeSSMInvalidParameter
		message = fmt.Sprintf("Invalid SSM parameter: %s", parameter)
	default:
		code = ErrCodeSSMAccessDenied
		message = fmt.Sprintf("SSM error for parameter %s: %v", parameter, err)
	}

	se := New(code, message, Suggestions[code], err)
	return WithContext(se, "parameter", parameter)
}

// WrapIAMError examines an IAM error and returns a LeasegateError.
func WrapIAMError(err error, action, resource string) LeasegateError {
	if err == nil {
		return nil
	}

	var code string
	var message string

	errStr := strings.ToLower(err.Error())

	switch {
	case isNoSuchEntity(errStr):
		code = ErrCodeIAMEntityNotFound
		message = fmt.Sprintf("IAM entity not found: %s", resource)
	case isEntityExists(errStr):
		code = ErrCodeIAMEntityExists
		message = fmt.Sprintf("IAM entity already exists: %s", resource)
	case isLimitExceeded(errStr):
		code = ErrCodeIAMLimitExceeded
		message = fmt.Sprintf("IAM limit exceeded during %s", action)
	case isAccessDenied(errStr):
		code = ErrCodeIAMAccessDenied
		message = fmt.Sprintf("IAM access denied for action: %s", action)
	default:
		code = ErrCodeIAMAccessDenied
		message = fmt.Sprintf("IAM error during %s on %s: %v", action, resource, err)
	}

	se := New(code, message, Suggestions[code], err)
	se = WithContext(se, "action", action)
	return WithContext(se, "resource", resource)
}

// WrapSNSError examines an SNS error and returns a LeasegateError.
func WrapSNSError(err error, topicARN string) LeasegateError {
	if err == nil {
		return nil
	}

	var code string
	var message string

	errStr := strings.ToLower(err.Error())

	switch {
	case isResourceNotFound(errStr):
		code = ErrCodeSNSTopicNotFound
		message = fmt.Sprintf("SNS topic not found: %s", topicARN)
	case isThrottled(errStr):
		code = ErrCodeSNSThrottled
		message = fmt.Sprintf("SNS API throttled for topic: %s", topicARN)
	case isAccessDenied(errStr):
		code = ErrCodeSNSAccessDenied
		message = fmt.Sprintf("Access denied to SNS topic: %s", topicARN)
	default:
		code = ErrCodeSNSAccessDenied
		message = fmt.Sprintf("SNS error for topic %s: %v", topicARN, err)
	}

	se := New(code, message, Suggestions[code], err)
	return WithContext(se, "topic", topicARN)
}

// WrapOrganizationsError examines an Organizations error and returns a
// LeasegateError.
func WrapOrganizationsError(err error) LeasegateError {
	if err == nil {
		return nil
	}

	var code string
	var message string

	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "not in use") || strings.Contains(errStr, "organizationnotfound"):
		code = ErrCodeOrgNotInUse
		message = "AWS Organizations is not in use for this account"
	case isAccessDenied(errStr):
		code = ErrCodeOrgAccessDenied
		message = "Access denied to AWS Organizations"
	default:
		code = ErrCodeOrgAccessDenied
		message = fmt.Sprintf("Organizations error: %v", err)
	}

	return New(code, message, Suggestions[code], err)
}

// isAccessDenied checks if error contains access denied indicators.
func isAccessDenied(errStr string) bool {
	return strings.Contains(errStr, "accessdenied") ||
		strings.Contains(errStr, "access denied") ||
		strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "not authorized") ||
		strings.Contains(errStr, "403")
}

// isParameterNotFound checks if error indicates parameter not found.
func isParameterNotFound(errStr string) bool {
	return strings.Contains(errStr, "parameternotfound") ||
		strings.Contains(errStr, "parameter not found") ||
		strings.Contains(errStr, "parameterversionnotfound")
}

// isResourceNotFound checks if error indicates resource not found.
func isResourceNotFound(errStr string) bool {
	return strings.Contains(errStr, "resourcenotfound") ||
		strings.Contains(errStr, "resource not found") ||
		strings.Contains(errStr, "notfound") ||
		strings.Contains(errStr, "table not found") ||
		strings.Contains(errStr, "cannot do operations on a non-existent table")
}

// isThrottled checks if error indicates throttling.
func isThrottled(errStr string) bool {
	return strings.Contains(errStr, "throttl") ||
		strings.Contains(errStr, "rate exceeded") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "slowdown")
}

// isKMSAccessDenied checks if error indicates KMS access denied.
func isKMSAccessDenied(errStr string) bool {
	return (strings.Contains(errStr, "kms") || strings.Contains(errStr, "key")) &&
		isAccessDenied(errStr)
}

// isValidationError checks if error indicates validation failure.
func isValidationError(errStr string) bool {
	return strings.Contains(errStr, "validation") ||
		strings.Contains(errStr, "invalid parameter")
}

// isNoSuchEntity checks if error indicates entity not found.
func isNoSuchEntity(errStr string) bool {
	return strings.Contains(errStr, "nosuchentity") ||
		strings.Contains(errStr, "no such entity") ||
		strings.Contains(errStr, "cannot find")
}

// isEntityExists checks if error indicates the entity already exists.
func isEntityExists(errStr string) bool {
	return strings.Contains(errStr, "entityalreadyexists") ||
		strings.Contains(errStr, "already exists")
}

// isLimitExceeded checks if error indicates an IAM limit.
func isLimitExceeded(errStr string) bool {
	return strings.Contains(errStr, "limitexceeded") ||
		strings.Contains(errStr, "limit exceeded")
}

// isProvisionedThroughputExceeded checks if error indicates throughput exceeded.
func isProvisionedThroughputExceeded(errStr string) bool {
	return strings.Contains(errStr, "provisionedthroughputexceeded") ||
		strings.Contains(errStr, "throughput exceeded") ||
		strings.Contains(errStr, "capacity")
}

// isConditionalCheckFailed checks if error indicates conditional check failure.
func isConditionalCheckFailed(errStr string) bool {
	return strings.Contains(errStr, "conditionalcheckfailed") ||
		strings.Contains(errStr, "conditional check failed") ||
		strings.Contains(errStr, "condition expression")
}
