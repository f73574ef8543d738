// Package config loads server settings from an optional YAML file with
// environment overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the server's runtime settings.
type Config struct {
	Port                 string `yaml:"port"`
	AWSRegion            string `yaml:"awsRegion"`
	S3Bucket             string `yaml:"s3Bucket"`
	DailySwipeLimit      int    `yaml:"dailySwipeLimit"`
	TypingExpirySeconds  int    `yaml:"typingExpirySeconds"`
	NotificationPageSize int    `yaml:"notificationPageSize"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Port:                 "8080",
		DailySwipeLimit:      6,
		TypingExpirySeconds:  4,
		NotificationPageSize: 25,
	}
}

// Load reads the YAML file at path when it exists, then applies environment
// overrides. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		cfg.AWSRegion = region
	}
	if bucket := os.Getenv("S3_BUCKET_NAME"); bucket != "" {
		cfg.S3Bucket = bucket
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.DailySwipeLimit <= 0 {
		cfg.DailySwipeLimit = 6
	}
	if cfg.TypingExpirySeconds <= 0 {
		cfg.TypingExpirySeconds = 4
	}
	if cfg.NotificationPageSize <= 0 {
		cfg.NotificationPageSize = 25
	}
	return cfg, nil
}
