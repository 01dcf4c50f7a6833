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

// Package pipeline sequences a single push:
//
//	Init → Converting → Staging → Classifying → Publishing → CleaningUp → Done
//
// with Failed reachable from every non-terminal state. The converter runs
// exactly once per run inside a workspace created under the base directory;
// the staged tree at <base>/v2/<image> is then uploaded blobs first,
// manifests second.
//
// Cleanup always runs. Workspace and staging tree removal failures are
// aggregated, logged, and exposed as Report.CleanupErr; they never replace the
// error that stopped the run.
//
// Republish re-uploads a tree kept with WithKeepStaging without converting
// again.
package pipeline
