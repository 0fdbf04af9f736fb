package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

// CloudWatchConfig holds configuration for CloudWatch log forwarding.
type CloudWatchConfig struct {
	LogGroupName  string           // CloudWatch log group name
	LogStreamName string           // CloudWatch log stream name (typically instance/function ID)
	SignConfig    *SignatureConfig // Signature config for signing entries (nil to disable)
}

// CloudWatchAPI defines the CloudWatch Logs operations used.
// This interface enables testing with mock implementations.
type CloudWatchAPI interface {
	PutLogEvents(ctx context.Context, params *cloudwatchlogs.PutLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error)
}

// CloudWatchLogger implements Logger by forwarding to CloudWatch Logs.
type CloudWatchLogger struct {
	client        CloudWatchAPI
	config        *CloudWatchConfig
	sequenceToken *string // For PutLogEvents sequencing
	mu            sync.Mutex
}

// NewCloudWatchLogger creates a CloudWatch logger from AWS config.
func NewCloudWatchLogger(awsCfg aws.Config, config *CloudWatchConfig) *CloudWatchLogger {
	return &CloudWatchLogger{
		client: cloudwatchlogs.NewFromConfig(awsCfg),
		config: config,
	}
}

// NewCloudWatchLoggerWithClient creates a CloudWatch logger with a custom client (for testing).
func NewCloudWatchLoggerWithClient(client CloudWatchAPI, config *CloudWatchConfig) *CloudWatchLogger {
	return &CloudWatchLogger{
		client: client,
		config: config,
	}
}

// LogGrant signs (if configured) and forwards a grant lifecycle entry.
func (l *CloudWatchLogger) LogGrant(entry GrantLogEntry) {
	l.writeEntry(entry)
}

// LogAnomaly signs (if configured) and forwards an anomaly detection entry.
func (l *CloudWatchLogger) LogAnomaly(entry AnomalyLogEntry) {
	l.writeEntry(entry)
}

// LogAdmin signs (if configured) and forwards a privileged admin entry.
func (l *CloudWatchLogger) LogAdmin(entry AdminLogEntry) {
	l.writeEntry(entry)
}

// writeEntry marshals and writes an entry to CloudWatch Logs.
// If SignConfig is set, the entry is signed before sending.
// Errors are logged to stderr but don't block the caller.
func (l *CloudWatchLogger) writeEntry(entry any) {
	var message []byte
	var err error

	if l.config.SignConfig != nil {
		signed, signErr := NewSignedEntry(entry, l.config.SignConfig)
		if signErr != nil {
			// Continue with the unsigned entry so the event is not lost
			fmt.Fprintf(os.Stderr, "cloudwatch signing error: %v\n", signErr)
			message, err = json.Marshal(entry)
		} else {
			message, err = json.Marshal(signed)
		}
	} else {
		message, err = json.Marshal(entry)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "cloudwatch marshal error: %v\n", err)
		return
	}

	l.putLogEvent(string(message))
}

// putLogEvent sends a single log event to CloudWatch Logs.
// It handles sequence token management and errors gracefully.
func (l *CloudWatchLogger) putLogEvent(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	input := &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  aws.String(l.config.LogGroupName),
		LogStreamName: aws.String(l.config.LogStreamName),
		LogEvents: []types.InputLogEvent{
			{
				Message:   aws.String(message),
				Timestamp: aws.Int64(time.Now().UnixMilli()),
			},
		},
	}

	if l.sequenceToken != nil {
		input.SequenceToken = l.sequenceToken
	}

	// Background context: the caller's context may already be done when
	// logging happens during teardown
	output, err := l.client.PutLogEvents(context.Background(), input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cloudwatch PutLogEvents error: %v\n", err)
		return
	}

	if output != nil && output.NextSequenceToken != nil {
		l.sequenceToken = output.NextSequenceToken
	}
}
