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

package report

import (
	"time"

	apperrors "github.com/NVIDIA/blobpush/pkg/errors"
	"github.com/NVIDIA/blobpush/pkg/pipeline"
	"github.com/NVIDIA/blobpush/pkg/publish"
)

// Summary is the serialized form of a pipeline run.
type Summary struct {
	RunID       string       `json:"runId" yaml:"runId"`
	Image       string       `json:"image" yaml:"image"`
	State       string       `json:"state" yaml:"state"`
	DryRun      bool         `json:"dryRun,omitempty" yaml:"dryRun,omitempty"`
	Duration    string       `json:"duration" yaml:"duration"`
	Error       *ErrorDetail `json:"error,omitempty" yaml:"error,omitempty"`
	CleanupErr  string       `json:"cleanupError,omitempty" yaml:"cleanupError,omitempty"`
	Blobs       *ObjectSet   `json:"blobs,omitempty" yaml:"blobs,omitempty"`
	Manifests   *ObjectSet   `json:"manifests,omitempty" yaml:"manifests,omitempty"`
	Artifacts   []Artifact   `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
	Transitions []Transition `json:"transitions,omitempty" yaml:"transitions,omitempty"`
}

// ErrorDetail describes the error that stopped a failed run.
type ErrorDetail struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// ObjectSet lists the keys uploaded in one phase.
type ObjectSet struct {
	Count int      `json:"count" yaml:"count"`
	Bytes int64    `json:"bytes" yaml:"bytes"`
	Keys  []string `json:"keys" yaml:"keys"`
}

// Artifact is one staged file.
type Artifact struct {
	Digest string `json:"digest" yaml:"digest"`
	Class  string `json:"class" yaml:"class"`
	Size   int64  `json:"size" yaml:"size"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Transition is one recorded state change.
type Transition struct {
	From string    `json:"from" yaml:"from"`
	To   string    `json:"to" yaml:"to"`
	At   time.Time `json:"at" yaml:"at"`
}

// FromPipeline converts a run report. runErr is the error returned with it,
// if any.
func FromPipeline(r *pipeline.Report, runErr error, dryRun bool) *Summary {
	s := &Summary{
		RunID:     r.RunID,
		Image:     r.Image,
		State:     r.FinalState.String(),
		DryRun:    dryRun,
		Duration:  r.Duration.Round(time.Millisecond).String(),
		Blobs:     objectSet(r.Blobs),
		Manifests: objectSet(r.Manifests),
	}

	if runErr != nil {
		s.Error = &ErrorDetail{
			Code:    string(apperrors.CodeOf(runErr)),
			Message: runErr.Error(),
		}
	}
	if r.CleanupErr != nil {
		s.CleanupErr = r.CleanupErr.Error()
	}

	for _, a := range r.Artifacts {
		s.Artifacts = append(s.Artifacts, Artifact{
			Digest: a.Digest,
			Class:  a.Class.String(),
			Size:   a.Size,
			Source: a.SourcePath,
		})
	}
	for _, t := range r.Transitions {
		s.Transitions = append(s.Transitions, Transition{
			From: t.From.String(),
			To:   t.To.String(),
			At:   t.At.UTC(),
		})
	}
	return s
}

func objectSet(r *publish.Result) *ObjectSet {
	if r == nil {
		return nil
	}
	return &ObjectSet{Count: len(r.Keys), Bytes: r.Bytes, Keys: r.Keys}
}
