package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONLoggerLogGrant(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf)

	logger.LogGrant(GrantLogEntry{
		Timestamp: "2025-03-15T14:30:45Z",
		Event:     "grant.submitted",
		RequestID: "a1b2c3d4e5f67890",
		Requester: "alice@example.com",
		Account:   "123456789012",
		Status:    "pending",
		Actor:     "alice@example.com",
		RiskScore: 3,
	})

	line := buf.String()
	if !strings.HasSuffix(line, "\n") {
		t.Error("expected trailing newline")
	}
	if strings.Count(line, "\n") != 1 {
		t.Errorf("expected single line, got %d newlines", strings.Count(line, "\n"))
	}

	var got GrantLogEntry
	if err := json.Unmarshal([]byte(line), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got.Event != "grant.submitted" {
		t.Errorf("Event = %q, want %q", got.Event, "grant.submitted")
	}
	if got.RequestID != "a1b2c3d4e5f67890" {
		t.Errorf("RequestID = %q, want %q", got.RequestID, "a1b2c3d4e5f67890")
	}
}

func TestJSONLoggerLogAnomaly(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf)

	logger.LogAnomaly(AnomalyLogEntry{
		Timestamp: "2025-03-15T23:30:00Z",
		Event:     "anomaly.detected",
		RequestID: "a1b2c3d4e5f67890",
		Requester: "bob@example.com",
		Account:   "123456789012",
		Flags:     []string{"off_hours", "sensitive_actions"},
		Level:     "MEDIUM",
	})

	var got AnomalyLogEntry
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(got.Flags) != 2 {
		t.Errorf("Flags = %v, want 2 flags", got.Flags)
	}
	if got.Level != "MEDIUM" {
		t.Errorf("Level = %q, want MEDIUM", got.Level)
	}
}

func TestJSONLoggerLogAdmin(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf)

	entry := NewAdminLogEntry("admin.delete", "root@example.com")
	entry.RequestID = "a1b2c3d4e5f67890"
	logger.LogAdmin(entry)

	var got AdminLogEntry
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got.Event != "admin.delete" {
		t.Errorf("Event = %q, want admin.delete", got.Event)
	}
	if got.Actor != "root@example.com" {
		t.Errorf("Actor = %q, want root@example.com", got.Actor)
	}
	if got.Timestamp == "" {
		t.Error("expected timestamp to be set")
	}
}

func TestJSONLoggerMultipleEntries(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf)

	logger.LogGrant(GrantLogEntry{Event: "grant.submitted"})
	logger.LogGrant(GrantLogEntry{Event: "grant.approved"})
	logger.LogAdmin(AdminLogEntry{Event: "admin.delete"})

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, line := range lines {
		if !json.Valid([]byte(line)) {
			t.Errorf("line %d is not valid JSON: %s", i, line)
		}
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()

	// Must not panic
	logger.LogGrant(GrantLogEntry{Event: "grant.submitted"})
	logger.LogAnomaly(AnomalyLogEntry{Event: "anomaly.detected"})
	logger.LogAdmin(AdminLogEntry{Event: "admin.delete"})
}
