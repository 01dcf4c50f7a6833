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

package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/NVIDIA/blobpush/pkg/config"
	"github.com/NVIDIA/blobpush/pkg/defaults"
	apperrors "github.com/NVIDIA/blobpush/pkg/errors"
)

// S3API is the subset of the S3 client used by S3.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 is an ObjectStore backed by an S3-compatible service (Cloudflare R2 by
// default). Retries are left to the SDK's standard retryer.
type S3 struct {
	client S3API
	bucket string
}

// S3Option customizes the underlying aws.Config.
type S3Option func(*aws.Config)

// WithHTTPClient sets the HTTP client used by the SDK.
func WithHTTPClient(c aws.HTTPClient) S3Option {
	return func(cfg *aws.Config) {
		cfg.HTTPClient = c
	}
}

// WithMaxAttempts sets the SDK retry attempt limit.
func WithMaxAttempts(n int) S3Option {
	return func(cfg *aws.Config) {
		cfg.RetryMaxAttempts = n
	}
}

// NewS3 builds an S3 store from cfg after validating it.
func NewS3(cfg *config.Config, opts ...S3Option) (*S3, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	region := cfg.Region
	if region == "" {
		region = defaults.DefaultRegion
	}

	awsCfg := aws.Config{
		Region:      region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		// S3-compatible stores reject the SDK's default trailing checksums.
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
		ResponseChecksumValidation: aws.ResponseChecksumValidationWhenRequired,
	}
	for _, opt := range opts {
		opt(&awsCfg)
	}

	endpoint := cfg.ResolvedEndpoint()
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = cfg.UsePathStyle
	})

	slog.Debug("object store client configured",
		"endpoint", endpoint,
		"bucket", cfg.Bucket,
		"region", region,
		"path_style", cfg.UsePathStyle)

	return &S3{client: client, bucket: cfg.Bucket}, nil
}

// NewS3WithClient returns an S3 store using a preconfigured client.
func NewS3WithClient(client S3API, bucket string) *S3 {
	return &S3{client: client, bucket: bucket}
}

// Bucket returns the destination bucket.
func (s *S3) Bucket() string {
	return s.bucket
}

// PutObject implements ObjectStore.
func (s *S3) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return describeError(err)
	}
	return nil
}

// describeError surfaces the service error code when the SDK returned one.
func describeError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apperrors.WrapWithContext(apperrors.ErrCodeUpload,
			fmt.Sprintf("object store rejected request: %s", apiErr.ErrorMessage()), err,
			map[string]any{"code": apiErr.ErrorCode()})
	}
	return err
}
