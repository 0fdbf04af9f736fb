package config

import (
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// FallbackRegion is used when nothing in the environment or the shared
// AWS config names a region.
const FallbackRegion = "us-east-1"

// ResolveRegion determines the AWS region the way the AWS CLI would:
// AWS_REGION, then AWS_DEFAULT_REGION, then the region of the selected
// profile in ~/.aws/config, then a fixed fallback.
func ResolveRegion() string {
	if region := os.Getenv("AWS_REGION"); region != "" {
		return region
	}
	if region := os.Getenv("AWS_DEFAULT_REGION"); region != "" {
		return region
	}
	if region := sharedConfigRegion(); region != "" {
		return region
	}
	return FallbackRegion
}

// sharedConfigRegion reads the region from the AWS shared config file.
func sharedConfigRegion() string {
	path := os.Getenv("AWS_CONFIG_FILE")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		path = filepath.Join(home, ".aws", "config")
	}

	file, err := ini.Load(path)
	if err != nil {
		return ""
	}

	section := "default"
	if profile := os.Getenv("AWS_PROFILE"); profile != "" {
		section = "profile " + profile
	}

	sec, err := file.GetSection(section)
	if err != nil {
		return ""
	}
	return sec.Key("region").String()
}
