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

// Package metrics records Prometheus metrics for publish runs.
//
// blobpush is a short-lived CLI, so metrics are kept on a private registry and
// written once at exit with --metrics-file in text exposition format:
//
//	blobpush_uploads_total{class,result}
//	blobpush_upload_bytes_total{class}
//	blobpush_upload_duration_seconds{class}
//	blobpush_artifacts_staged_total{class}
//	blobpush_run_duration_seconds{result}
package metrics
