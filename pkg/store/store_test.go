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
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/blobpush/pkg/config"
	apperrors "github.com/NVIDIA/blobpush/pkg/errors"
)

func TestMemory_PutAndGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.PutObject(ctx, "v2/myapp/blobs/abc", []byte("data"), "application/octet-stream"))

	obj, ok := m.Get("v2/myapp/blobs/abc")
	require.True(t, ok)
	assert.Equal(t, []byte("data"), obj.Body)
	assert.Equal(t, "application/octet-stream", obj.ContentType)
	assert.Equal(t, []string{"v2/myapp/blobs/abc"}, m.Keys())
}

func TestMemory_OverwriteSameBytes(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for range 2 {
		require.NoError(t, m.PutObject(ctx, "k", []byte("same"), "application/octet-stream"))
	}

	assert.Len(t, m.Keys(), 1)
	assert.Equal(t, 2, m.Puts())
	obj, _ := m.Get("k")
	assert.Equal(t, []byte("same"), obj.Body)
}

func TestMemory_FaultInjection(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	t.Run("fail on key", func(t *testing.T) {
		m := NewMemory()
		m.FailOn("bad", boom)
		require.NoError(t, m.PutObject(ctx, "good", nil, "x"))
		assert.ErrorIs(t, m.PutObject(ctx, "bad", nil, "x"), boom)
		_, ok := m.Get("bad")
		assert.False(t, ok)
	})

	t.Run("fail at call", func(t *testing.T) {
		m := NewMemory()
		m.FailAt(2, boom)
		require.NoError(t, m.PutObject(ctx, "a", nil, "x"))
		assert.ErrorIs(t, m.PutObject(ctx, "b", nil, "x"), boom)
		require.NoError(t, m.PutObject(ctx, "c", nil, "x"))
		assert.Equal(t, []string{"a", "c"}, m.Keys())
	})

	t.Run("cancelled context", func(t *testing.T) {
		m := NewMemory()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, m.PutObject(cctx, "a", nil, "x"), context.Canceled)
		assert.Equal(t, 0, m.Puts())
	})
}

func TestMemory_CopiesBody(t *testing.T) {
	m := NewMemory()
	body := []byte("original")
	require.NoError(t, m.PutObject(context.Background(), "k", body, "x"))
	body[0] = 'X'

	obj, _ := m.Get("k")
	assert.Equal(t, "original", string(obj.Body))
}

type recordedRequest struct {
	method      string
	path        string
	contentType string
	body        string
}

func newFakeR2(t *testing.T, status int, respBody string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			body:        string(body),
		})
		mu.Unlock()
		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/xml")
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, respBody)
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func testConfig(endpoint string) *config.Config {
	return &config.Config{
		AccountID:       "acct",
		Bucket:          "images",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		Endpoint:        endpoint,
		Region:          "auto",
		UsePathStyle:    true,
	}
}

func TestS3_PutObject(t *testing.T) {
	srv, reqs := newFakeR2(t, http.StatusOK, "")

	s, err := NewS3(testConfig(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	assert.Equal(t, "images", s.Bucket())

	err = s.PutObject(context.Background(), "v2/myapp/manifests/abc",
		[]byte(`{"mediaType":"application/vnd.oci.image.manifest.v1+json"}`),
		"application/vnd.oci.image.manifest.v1+json")
	require.NoError(t, err)

	require.Len(t, *reqs, 1)
	got := (*reqs)[0]
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/images/v2/myapp/manifests/abc", got.path)
	assert.Equal(t, "application/vnd.oci.image.manifest.v1+json", got.contentType)
	assert.Contains(t, got.body, "mediaType")
}

func TestS3_PutObjectAPIError(t *testing.T) {
	srv, _ := newFakeR2(t, http.StatusForbidden,
		`<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)

	s, err := NewS3(testConfig(srv.URL), WithHTTPClient(srv.Client()), WithMaxAttempts(1))
	require.NoError(t, err)

	err = s.PutObject(context.Background(), "v2/myapp/blobs/abc", []byte("x"), "application/octet-stream")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeUpload))
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestNewS3_InvalidConfig(t *testing.T) {
	_, err := NewS3(&config.Config{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeConfig))
}
