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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/NVIDIA/blobpush/pkg/errors"
)

func envMap(m map[string]string) Getenv {
	return func(k string) string { return m[k] }
}

func TestApplyEnv(t *testing.T) {
	cfg := New()
	cfg.ApplyEnv(envMap(map[string]string{
		EnvAccountID:       "acct",
		EnvBucket:          "images",
		EnvAccessKeyID:     "AKIDEXAMPLE",
		EnvSecretAccessKey: "secret",
		EnvUsePathStyle:    "true",
	}))

	assert.Equal(t, "acct", cfg.AccountID)
	assert.Equal(t, "images", cfg.Bucket)
	assert.Equal(t, "AKIDEXAMPLE", cfg.AccessKeyID)
	assert.Equal(t, "secret", cfg.SecretAccessKey)
	assert.Equal(t, "auto", cfg.Region)
	assert.True(t, cfg.UsePathStyle)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantMissing []string
	}{
		{
			name:        "all missing",
			env:         map[string]string{},
			wantMissing: []string{EnvAccountID, EnvBucket, EnvAccessKeyID, EnvSecretAccessKey},
		},
		{
			name: "secret missing",
			env: map[string]string{
				EnvAccountID:   "acct",
				EnvBucket:      "images",
				EnvAccessKeyID: "id",
			},
			wantMissing: []string{EnvSecretAccessKey},
		},
		{
			name: "whitespace only counts as missing",
			env: map[string]string{
				EnvAccountID:       "acct",
				EnvBucket:          "  ",
				EnvAccessKeyID:     "id",
				EnvSecretAccessKey: "s",
			},
			wantMissing: []string{EnvBucket},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			cfg.ApplyEnv(envMap(tt.env))

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrCodeConfig))
			for _, key := range tt.wantMissing {
				assert.Contains(t, err.Error(), key)
			}
		})
	}
}

func TestResolvedEndpoint(t *testing.T) {
	cfg := &Config{AccountID: "abc123"}
	assert.Equal(t, "https://abc123.r2.cloudflarestorage.com", cfg.ResolvedEndpoint())

	cfg.Endpoint = "http://localhost:9000"
	assert.Equal(t, "http://localhost:9000", cfg.ResolvedEndpoint())
}

func TestString_RedactsSecrets(t *testing.T) {
	cfg := &Config{
		AccountID:       "acct",
		Bucket:          "images",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "wJalrXUtnFEMI",
	}
	s := cfg.String()
	assert.NotContains(t, s, "wJalrXUtnFEMI")
	assert.NotContains(t, s, "AKIDEXAMPLE")
	assert.Contains(t, s, "AKID****")
}

func TestLoad_YAMLAndEnvFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "blobpush.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
accountId: from-yaml
bucket: yaml-bucket
digestAlgorithm: sha256
`), 0o600))

	envPath := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte(
		"R2_ACCESS_KEY_ID=from-dotenv\nR2_SECRET_ACCESS_KEY=dotenv-secret\n"), 0o600))

	// Process environment wins over both files.
	t.Setenv(EnvBucket, "env-bucket")
	t.Setenv(EnvAccessKeyID, "")
	t.Setenv(EnvSecretAccessKey, "")
	t.Setenv(EnvAccountID, "")
	// Remove the empty entries so godotenv can populate them.
	require.NoError(t, os.Unsetenv(EnvAccessKeyID))
	require.NoError(t, os.Unsetenv(EnvSecretAccessKey))
	require.NoError(t, os.Unsetenv(EnvAccountID))

	cfg, err := Load(yamlPath, envPath)
	require.NoError(t, err)

	assert.Equal(t, "from-yaml", cfg.AccountID)
	assert.Equal(t, "env-bucket", cfg.Bucket)
	assert.Equal(t, "from-dotenv", cfg.AccessKeyID)
	assert.Equal(t, "dotenv-secret", cfg.SecretAccessKey)
	assert.Equal(t, "sha256", cfg.DigestAlgorithm)
	assert.Equal(t, "auto", cfg.Region)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing yaml", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.yaml"), "")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeConfig))
	})

	t.Run("invalid yaml", func(t *testing.T) {
		p := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(p, []byte("bucket: [unterminated"), 0o600))
		_, err := Load(p, "")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeConfig))
	})

	t.Run("missing env file", func(t *testing.T) {
		_, err := Load("", filepath.Join(dir, "nope.env"))
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeConfig))
	})
}
