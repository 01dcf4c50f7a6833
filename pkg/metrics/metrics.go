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

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/NVIDIA/blobpush/pkg/errors"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Recorder collects run metrics on a private registry. A nil *Recorder is a
// valid no-op.
type Recorder struct {
	registry *prometheus.Registry

	uploadsTotal    *prometheus.CounterVec
	uploadBytes     *prometheus.CounterVec
	uploadDuration  *prometheus.HistogramVec
	artifactsStaged *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
}

// NewRecorder returns a Recorder with all blobpush metrics registered.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		uploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blobpush_uploads_total",
				Help: "Total number of object uploads",
			},
			[]string{"class", "result"},
		),
		uploadBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blobpush_upload_bytes_total",
				Help: "Total bytes uploaded",
			},
			[]string{"class"},
		),
		uploadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "blobpush_upload_duration_seconds",
				Help:    "Object upload latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"class"},
		),
		artifactsStaged: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blobpush_artifacts_staged_total",
				Help: "Total number of artifacts moved into the staging tree",
			},
			[]string{"class"},
		),
		runDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "blobpush_run_duration_seconds",
				Help:    "End-to-end run duration in seconds",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
			},
			[]string{"result"},
		),
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveUpload records one upload attempt.
func (r *Recorder) ObserveUpload(class string, bytes int, d time.Duration, err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.uploadsTotal.WithLabelValues(class, ResultFailure).Inc()
		return
	}
	r.uploadsTotal.WithLabelValues(class, ResultSuccess).Inc()
	r.uploadBytes.WithLabelValues(class).Add(float64(bytes))
	r.uploadDuration.WithLabelValues(class).Observe(d.Seconds())
}

// ObserveStaged records one staged artifact.
func (r *Recorder) ObserveStaged(class string) {
	if r == nil {
		return
	}
	r.artifactsStaged.WithLabelValues(class).Inc()
}

// ObserveRun records the run duration by outcome.
func (r *Recorder) ObserveRun(d time.Duration, err error) {
	if r == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	r.runDuration.WithLabelValues(result).Observe(d.Seconds())
}

// WriteTextfile writes all metrics in text exposition format to path, for
// pickup by the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return apperrors.WrapWithContext(apperrors.ErrCodeIO, "failed to write metrics file", err,
			map[string]any{"path": path})
	}
	return nil
}
