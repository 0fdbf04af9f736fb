// Package logging provides structured audit logging for the grant
// lifecycle. It defines a Logger interface and implementations for JSON
// Lines output, no-op logging, signed logging, and CloudWatch forwarding.
package logging

import (
	"encoding/json"
	"io"
)

// Logger defines the interface for logging grant lifecycle events,
// anomaly detections, and privileged admin actions.
type Logger interface {
	// LogGrant logs a grant lifecycle event.
	LogGrant(entry GrantLogEntry)

	// LogAnomaly logs an anomaly detection.
	LogAnomaly(entry AnomalyLogEntry)

	// LogAdmin logs a privileged admin action.
	LogAdmin(entry AdminLogEntry)
}

// JSONLogger implements Logger with JSON Lines output.
// Each entry is written as a single line of JSON suitable for log aggregation.
type JSONLogger struct {
	writer io.Writer
}

// NewJSONLogger creates a new JSONLogger that writes to the given writer.
func NewJSONLogger(w io.Writer) *JSONLogger {
	return &JSONLogger{writer: w}
}

// LogGrant writes the grant entry as a single line of JSON.
func (l *JSONLogger) LogGrant(entry GrantLogEntry) {
	l.writeLine(entry)
}

// LogAnomaly writes the anomaly entry as a single line of JSON.
func (l *JSONLogger) LogAnomaly(entry AnomalyLogEntry) {
	l.writeLine(entry)
}

// LogAdmin writes the admin entry as a single line of JSON.
func (l *JSONLogger) LogAdmin(entry AdminLogEntry) {
	l.writeLine(entry)
}

func (l *JSONLogger) writeLine(entry any) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	l.writer.Write(data)
	l.writer.Write([]byte("\n"))
}

// NopLogger implements Logger but discards all entries.
// Useful for testing or when logging is disabled.
type NopLogger struct{}

// NewNopLogger creates a new NopLogger that discards all entries.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

// LogGrant discards the entry.
func (l *NopLogger) LogGrant(entry GrantLogEntry) {
	// Intentionally empty - discards all entries
}

// LogAnomaly discards the entry.
func (l *NopLogger) LogAnomaly(entry AnomalyLogEntry) {
	// Intentionally empty - discards all entries
}

// LogAdmin discards the entry.
func (l *NopLogger) LogAdmin(entry AdminLogEntry) {
	// Intentionally empty - discards all entries
}
