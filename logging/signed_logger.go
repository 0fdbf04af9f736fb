package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// SignedLogger wraps JSON Lines output so every entry is written as a
// SignedEntry carrying its HMAC-SHA256 signature. Verification tooling can
// later detect tampered or deleted audit lines.
type SignedLogger struct {
	writer io.Writer
	config *SignatureConfig
}

// NewSignedLogger creates a SignedLogger with the given writer and config.
// The config must have a valid secret key (at least 32 bytes).
func NewSignedLogger(w io.Writer, config *SignatureConfig) *SignedLogger {
	return &SignedLogger{
		writer: w,
		config: config,
	}
}

// LogGrant signs and writes a grant lifecycle entry.
func (l *SignedLogger) LogGrant(entry GrantLogEntry) {
	l.writeSignedEntry(entry)
}

// LogAnomaly signs and writes an anomaly detection entry.
func (l *SignedLogger) LogAnomaly(entry AnomalyLogEntry) {
	l.writeSignedEntry(entry)
}

// LogAdmin signs and writes a privileged admin action entry.
func (l *SignedLogger) LogAdmin(entry AdminLogEntry) {
	l.writeSignedEntry(entry)
}

// writeSignedEntry creates a signed entry and writes it as JSON.
// On signing errors it logs to stderr and falls back to an unsigned
// entry: audit capture takes priority over signing.
func (l *SignedLogger) writeSignedEntry(entry any) {
	signed, err := NewSignedEntry(entry, l.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "signing error: %v\n", err)
		l.writeFallback(entry)
		return
	}

	data, err := json.Marshal(signed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal error: %v\n", err)
		return
	}

	l.writer.Write(data)
	l.writer.Write([]byte("\n"))
}

// writeFallback writes an unsigned entry when signing fails.
func (l *SignedLogger) writeFallback(entry any) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	l.writer.Write(data)
	l.writer.Write([]byte("\n"))
}
