package policy

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Parse parses a YAML byte slice into a GovernancePolicy.
// It returns an error if the input is empty, contains invalid YAML syntax,
// or is missing the required version field.
func Parse(data []byte) (*GovernancePolicy, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty policy")
	}

	var policy GovernancePolicy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}

	if policy.Version == "" {
		return nil, fmt.Errorf("missing version field")
	}

	return &policy, nil
}

// ParseFromReader parses a GovernancePolicy from an io.Reader.
// It reads the entire contents and delegates to Parse.
func ParseFromReader(r io.Reader) (*GovernancePolicy, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy: %w", err)
	}
	return Parse(data)
}
