// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/blobpush/pkg/defaults"
	apperrors "github.com/NVIDIA/blobpush/pkg/errors"
)

// Environment variable names for object store settings.
const (
	EnvAccountID       = "CLOUDFLARE_ACCOUNT_ID"
	EnvBucket          = "R2_BUCKET"
	EnvAccessKeyID     = "R2_ACCESS_KEY_ID"
	EnvSecretAccessKey = "R2_SECRET_ACCESS_KEY"
	EnvEndpoint        = "R2_ENDPOINT"
	EnvRegion          = "R2_REGION"
	EnvUsePathStyle    = "R2_USE_PATH_STYLE"
	EnvDigestAlgorithm = "BLOBPUSH_DIGEST_ALGORITHM"
)

// DefaultEnvFile is loaded when present and no --env-file is given.
const DefaultEnvFile = ".env"

// Config holds process-scoped object store settings. It is built once at
// startup and passed by pointer; it is read-only afterwards.
type Config struct {
	// Object store identity
	AccountID       string `yaml:"accountId"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"accessKeyId"`
	SecretAccessKey string `yaml:"secretAccessKey"`

	// Endpoint overrides the endpoint derived from AccountID.
	Endpoint     string `yaml:"endpoint,omitempty"`
	Region       string `yaml:"region,omitempty"`
	UsePathStyle bool   `yaml:"usePathStyle,omitempty"`

	// DigestAlgorithm is a deployment policy; see pkg/digest.
	DigestAlgorithm string `yaml:"digestAlgorithm,omitempty"`
}

// New returns a Config with defaults applied.
func New() *Config {
	return &Config{Region: defaults.DefaultRegion}
}

// Getenv looks up an environment variable.
type Getenv func(string) string

// Load builds a Config from, in increasing precedence: the YAML file at
// configFile (optional), the dotenv file at envFile, and the process
// environment. Dotenv values never override variables already set in the
// environment. An empty envFile loads DefaultEnvFile only if it exists.
func Load(configFile, envFile string) (*Config, error) {
	cfg := New()

	if configFile != "" {
		if err := cfg.loadYAML(configFile); err != nil {
			return nil, err
		}
	}

	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.WrapWithContext(apperrors.ErrCodeConfig, "failed to read config file", err,
			map[string]any{"path": path})
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return apperrors.WrapWithContext(apperrors.ErrCodeConfig, "failed to parse config file", err,
			map[string]any{"path": path})
	}
	if c.Region == "" {
		c.Region = defaults.DefaultRegion
	}
	return nil
}

func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(DefaultEnvFile); err != nil {
			return nil
		}
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		return apperrors.WrapWithContext(apperrors.ErrCodeConfig, "failed to load env file", err,
			map[string]any{"path": path})
	}
	return nil
}

// ApplyEnv overrides fields with non-empty values returned by getenv.
func (c *Config) ApplyEnv(getenv Getenv) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.AccountID, EnvAccountID)
	set(&c.Bucket, EnvBucket)
	set(&c.AccessKeyID, EnvAccessKeyID)
	set(&c.SecretAccessKey, EnvSecretAccessKey)
	set(&c.Endpoint, EnvEndpoint)
	set(&c.Region, EnvRegion)
	set(&c.DigestAlgorithm, EnvDigestAlgorithm)

	if v := getenv(EnvUsePathStyle); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.UsePathStyle = b
		}
	}
}

// Validate reports every missing required setting in a single CONFIG error.
func (c *Config) Validate() error {
	var missing []string
	for _, f := range []struct {
		env string
		val string
	}{
		{EnvAccountID, c.AccountID},
		{EnvBucket, c.Bucket},
		{EnvAccessKeyID, c.AccessKeyID},
		{EnvSecretAccessKey, c.SecretAccessKey},
	} {
		if strings.TrimSpace(f.val) == "" {
			missing = append(missing, f.env)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewWithContext(apperrors.ErrCodeConfig,
			fmt.Sprintf("%s is not set", strings.Join(missing, ", ")),
			map[string]any{"missing": missing})
	}
	return nil
}

// ResolvedEndpoint returns Endpoint when set, otherwise the R2 endpoint for
// AccountID.
func (c *Config) ResolvedEndpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return fmt.Sprintf(defaults.R2EndpointFormat, c.AccountID)
}

// String renders the config with secrets redacted.
func (c *Config) String() string {
	return fmt.Sprintf("account=%s bucket=%s endpoint=%s region=%s access_key_id=%s secret_access_key=%s",
		c.AccountID, c.Bucket, c.ResolvedEndpoint(), c.Region, redact(c.AccessKeyID), redact(c.SecretAccessKey))
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
