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

// Package report renders a pipeline run as a machine readable document.
//
// Summary flattens pipeline.Report into plain fields (state names, error
// code, uploaded keys, staged artifacts). Writer encodes it as JSON or YAML
// to a file or stdout:
//
//	w, err := report.NewFileWriter("", "run.yaml")
//	if err != nil {
//		return err
//	}
//	defer w.Close()
//	return w.Serialize(ctx, report.FromPipeline(r, runErr, false))
package report
