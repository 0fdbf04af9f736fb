// Package config loads tool configuration: where requests are stored,
// which governance policy applies, and how alerts go out. Settings come
// from a YAML file with environment variable overrides for deployment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables honored over file settings.
const (
	EnvConfigFile = "LEASEGATE_CONFIG"
	EnvRegion     = "LEASEGATE_REGION"
	EnvTableName  = "LEASEGATE_TABLE"
)

// Defaults applied when neither file nor environment sets a value.
const (
	DefaultTableName       = "leasegate-requests"
	DefaultPolicyParameter = "/leasegate/policies/default"
	DefaultDurationHours   = 8
	DefaultLogStream       = "leasegate"
)

// Config is the tool configuration.
type Config struct {
	// Region is the AWS region operated in. Empty means resolve from
	// the environment or shared AWS config.
	Region string `yaml:"region"`

	// TableName is the DynamoDB request table.
	TableName string `yaml:"table_name"`

	// PolicyParameter is the SSM parameter holding the governance policy.
	PolicyParameter string `yaml:"policy_parameter"`

	// PolicySigningKeyARN is the KMS key used to verify policy signatures
	// before a policy is trusted. Empty disables verification.
	PolicySigningKeyARN string `yaml:"policy_signing_key_arn"`

	// PolicyEnforceSignatures rejects unsigned policies instead of loading
	// them with a warning. Requires PolicySigningKeyARN.
	PolicyEnforceSignatures bool `yaml:"policy_enforce_signatures"`

	// AlertTopicARN receives anomaly alerts via SNS. Empty disables SNS.
	AlertTopicARN string `yaml:"alert_topic_arn"`

	// WebhookURL receives lifecycle events. Empty disables the webhook.
	WebhookURL string `yaml:"webhook_url"`

	// SigningSecretID names the Secrets Manager secret holding the audit
	// log signing key. Empty disables signed logging.
	SigningSecretID string `yaml:"signing_secret_id"`

	// LogFile is where audit entries are appended. Empty means stderr.
	LogFile string `yaml:"log_file"`

	// LogGroup sends audit entries to CloudWatch Logs instead of a local
	// file. Empty keeps logging local.
	LogGroup string `yaml:"log_group"`

	// LogStream is the CloudWatch log stream written to. Defaults to
	// DefaultLogStream when LogGroup is set.
	LogStream string `yaml:"log_stream"`

	// Admins may delete request records.
	Admins []string `yaml:"admins"`

	// DefaultDurationHours is the duration offered when the requester
	// does not choose one.
	DefaultDurationHours int `yaml:"default_duration_hours"`
}

// DefaultPath returns the config file location: $LEASEGATE_CONFIG if set,
// else ~/.leasegate/config.yaml.
func DefaultPath() string {
	if path := os.Getenv(EnvConfigFile); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".leasegate", "config.yaml")
}

// Load reads the config file at path, applying environment overrides and
// defaults. A missing file is not an error: defaults alone are a working
// configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if region := os.Getenv(EnvRegion); region != "" {
		c.Region = region
	}
	if table := os.Getenv(EnvTableName); table != "" {
		c.TableName = table
	}
}

func (c *Config) applyDefaults() {
	if c.TableName == "" {
		c.TableName = DefaultTableName
	}
	if c.PolicyParameter == "" {
		c.PolicyParameter = DefaultPolicyParameter
	}
	if c.DefaultDurationHours == 0 {
		c.DefaultDurationHours = DefaultDurationHours
	}
	if c.Region == "" {
		c.Region = ResolveRegion()
	}
	if c.LogGroup != "" && c.LogStream == "" {
		c.LogStream = DefaultLogStream
	}
}

// Validate rejects configurations that cannot work.
func (c *Config) Validate() error {
	if c.DefaultDurationHours < 0 {
		return fmt.Errorf("default_duration_hours must be positive, got %d", c.DefaultDurationHours)
	}
	if c.WebhookURL != "" && !isHTTPURL(c.WebhookURL) {
		return fmt.Errorf("webhook_url must be an http(s) URL, got %q", c.WebhookURL)
	}
	if c.PolicyEnforceSignatures && c.PolicySigningKeyARN == "" {
		return fmt.Errorf("policy_enforce_signatures requires policy_signing_key_arn")
	}
	return nil
}

func isHTTPURL(raw string) bool {
	return len(raw) > 8 && (raw[:7] == "http://" || raw[:8] == "https://")
}
