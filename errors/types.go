// Package errors provides structured error types with fix suggestions for
// leasegate. These error types wrap AWS errors and provide actionable
// guidance on how to resolve common collaborator failures.
package errors

// LeasegateError provides additional context for error handling.
// It wraps underlying errors with error codes and actionable suggestions.
type LeasegateError interface {
	error
	Unwrap() error              // Original error
	Code() string               // Error code (e.g., "DYNAMODB_ACCESS_DENIED")
	Suggestion() string         // Actionable fix suggestion
	Context() map[string]string // Additional context (table, parameter, etc.)
}

// DynamoDB error codes (request store)
const (
	ErrCodeDynamoDBAccessDenied    = "DYNAMODB_ACCESS_DENIED"
	ErrCodeDynamoDBTableNotFound   = "DYNAMODB_TABLE_NOT_FOUND"
	ErrCodeDynamoDBThrottled       = "DYNAMODB_THROTTLED"
	ErrCodeDynamoDBConditionFailed = "DYNAMODB_CONDITION_FAILED"
)

// SSM error codes (governance policy loading)
const (
	ErrCodeSSMAccessDenied      = "SSM_ACCESS_DENIED"
	ErrCodeSSMParameterNotFound = "SSM_PARAMETER_NOT_FOUND"
	ErrCodeSSMKMSAccessDenied   = "SSM_KMS_ACCESS_DENIED"
	ErrCodeSSMThrottled         = "SSM_THROTTLED"
	ErrCodeSSMInvalidParameter  = "SSM_INVALID_PARAMETER"
)

// IAM error codes (grant provisioning/teardown)
const (
	ErrCodeIAMAccessDenied   = "IAM_ACCESS_DENIED"
	ErrCodeIAMEntityNotFound = "IAM_ENTITY_NOT_FOUND"
	ErrCodeIAMEntityExists   = "IAM_ENTITY_EXISTS"
	ErrCodeIAMLimitExceeded  = "IAM_LIMIT_EXCEEDED"
)

// SNS error codes (security notification)
const (
	ErrCodeSNSAccessDenied  = "SNS_ACCESS_DENIED"
	ErrCodeSNSTopicNotFound = "SNS_TOPIC_NOT_FOUND"
	ErrCodeSNSThrottled     = "SNS_THROTTLED"
)

// Organizations error codes (account inventory)
const (
	ErrCodeOrgAccessDenied = "ORGANIZATIONS_ACCESS_DENIED"
	ErrCodeOrgNotInUse     = "ORGANIZATIONS_NOT_IN_USE"
)

// leasegateError implements the LeasegateError interface.
type leasegateError struct {
	code       string
	message    string
	suggestion string
	context    map[string]string
	cause      error
}

// Error implements the error interface.
func (e *leasegateError) Error() string {
	return e.message
}

// Unwrap returns the underlying cause error.
func (e *leasegateError) Unwrap() error {
	return e.cause
}

// Code returns the error code.
func (e *leasegateError) Code() string {
	return e.code
}

// Suggestion returns the actionable fix suggestion.
func (e *leasegateError) Suggestion() string {
	return e.suggestion
}

// Context returns additional context about the error.
func (e *leasegateError) Context() map[string]string {
	return e.context
}

// New creates a new LeasegateError with the given code, message, suggestion,
// and cause.
func New(code, message, suggestion string, cause error) LeasegateError {
	return &leasegateError{
		code:       code,
		message:    message,
		suggestion: suggestion,
		context:    make(map[string]string),
		cause:      cause,
	}
}

// WithContext adds context to an error and returns a new LeasegateError.
// The original error is not modified.
func WithContext(err LeasegateError, key, value string) LeasegateError {
	existingCtx := err.Context()
	newCtx := make(map[string]string, len(existingCtx)+1)
	for k, v := range existingCtx {
		newCtx[k] = v
	}
	newCtx[key] = value

	return &leasegateError{
		code:       err.Code(),
		message:    err.Error(),
		suggestion: err.Suggestion(),
		context:    newCtx,
		cause:      err.Unwrap(),
	}
}

// IsLeasegateError checks if err is a LeasegateError and returns it.
// If err is nil or not a LeasegateError, returns (nil, false).
func IsLeasegateError(err error) (LeasegateError, bool) {
	if err == nil {
		return nil, false
	}
	if le, ok := err.(LeasegateError); ok {
		return le, true
	}
	return nil, false
}

// GetCode extracts the error code from an error.
// Returns empty string if err is not a LeasegateError.
func GetCode(err error) string {
	if le, ok := IsLeasegateError(err); ok {
		return le.Code()
	}
	return ""
}
