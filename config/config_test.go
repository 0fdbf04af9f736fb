package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
region: eu-west-1
table_name: jit-requests
policy_parameter: /leasegate/policies/prod
alert_topic_arn: arn:aws:sns:eu-west-1:123456789012:leasegate-alerts
webhook_url: https://hooks.example.com/leasegate
admins:
  - root@example.com
default_duration_hours: 4
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Region != "eu-west-1" {
		t.Errorf("Region = %q", cfg.Region)
	}
	if cfg.TableName != "jit-requests" {
		t.Errorf("TableName = %q", cfg.TableName)
	}
	if cfg.PolicyParameter != "/leasegate/policies/prod" {
		t.Errorf("PolicyParameter = %q", cfg.PolicyParameter)
	}
	if len(cfg.Admins) != 1 || cfg.Admins[0] != "root@example.com" {
		t.Errorf("Admins = %v", cfg.Admins)
	}
	if cfg.DefaultDurationHours != 4 {
		t.Errorf("DefaultDurationHours = %d", cfg.DefaultDurationHours)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("AWS_REGION", "us-west-2")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.TableName != DefaultTableName {
		t.Errorf("TableName = %q, want default", cfg.TableName)
	}
	if cfg.PolicyParameter != DefaultPolicyParameter {
		t.Errorf("PolicyParameter = %q, want default", cfg.PolicyParameter)
	}
	if cfg.DefaultDurationHours != DefaultDurationHours {
		t.Errorf("DefaultDurationHours = %d, want default", cfg.DefaultDurationHours)
	}
	if cfg.Region != "us-west-2" {
		t.Errorf("Region = %q, want env region", cfg.Region)
	}
}

func TestLoadSigningAndLogGroup(t *testing.T) {
	path := writeConfig(t, `
region: eu-west-1
policy_signing_key_arn: arn:aws:kms:eu-west-1:123456789012:key/abc
policy_enforce_signatures: true
log_group: /leasegate/audit
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.PolicySigningKeyARN != "arn:aws:kms:eu-west-1:123456789012:key/abc" {
		t.Errorf("PolicySigningKeyARN = %q", cfg.PolicySigningKeyARN)
	}
	if !cfg.PolicyEnforceSignatures {
		t.Error("PolicyEnforceSignatures = false, want true")
	}
	if cfg.LogGroup != "/leasegate/audit" {
		t.Errorf("LogGroup = %q", cfg.LogGroup)
	}
	if cfg.LogStream != DefaultLogStream {
		t.Errorf("LogStream = %q, want default stream", cfg.LogStream)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "table_name: from-file\nregion: eu-west-1\n")
	t.Setenv(EnvTableName, "from-env")
	t.Setenv(EnvRegion, "ap-south-1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.TableName != "from-env" {
		t.Errorf("TableName = %q, want env override", cfg.TableName)
	}
	if cfg.Region != "ap-south-1" {
		t.Errorf("Region = %q, want env override", cfg.Region)
	}
}

func TestLoadInvalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "bad yaml", content: "table_name: [unclosed"},
		{name: "bad webhook", content: "webhook_url: ftp://example.com/hook"},
		{name: "negative duration", content: "default_duration_hours: -2"},
		{name: "enforcement without key", content: "policy_enforce_signatures: true"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestResolveRegion(t *testing.T) {
	t.Run("env wins", func(t *testing.T) {
		t.Setenv("AWS_REGION", "eu-central-1")
		if got := ResolveRegion(); got != "eu-central-1" {
			t.Errorf("ResolveRegion() = %q", got)
		}
	})

	t.Run("shared config", func(t *testing.T) {
		t.Setenv("AWS_REGION", "")
		t.Setenv("AWS_DEFAULT_REGION", "")
		t.Setenv("AWS_PROFILE", "")

		path := filepath.Join(t.TempDir(), "config")
		if err := os.WriteFile(path, []byte("[default]\nregion = sa-east-1\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("AWS_CONFIG_FILE", path)

		if got := ResolveRegion(); got != "sa-east-1" {
			t.Errorf("ResolveRegion() = %q", got)
		}
	})

	t.Run("profile section", func(t *testing.T) {
		t.Setenv("AWS_REGION", "")
		t.Setenv("AWS_DEFAULT_REGION", "")
		t.Setenv("AWS_PROFILE", "staging")

		path := filepath.Join(t.TempDir(), "config")
		content := "[default]\nregion = us-east-1\n\n[profile staging]\nregion = ap-southeast-2\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("AWS_CONFIG_FILE", path)

		if got := ResolveRegion(); got != "ap-southeast-2" {
			t.Errorf("ResolveRegion() = %q", got)
		}
	})

	t.Run("fallback", func(t *testing.T) {
		t.Setenv("AWS_REGION", "")
		t.Setenv("AWS_DEFAULT_REGION", "")
		t.Setenv("AWS_PROFILE", "")
		t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "missing"))

		if got := ResolveRegion(); got != FallbackRegion {
			t.Errorf("ResolveRegion() = %q, want fallback", got)
		}
	})
}
