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

package pipeline

import "time"

// State is a lifecycle step of a single run.
type State int

const (
	StateInit State = iota
	StateConverting
	StateStaging
	StateClassifying
	StatePublishing
	StateCleaningUp
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateInit:        "init",
	StateConverting:  "converting",
	StateStaging:     "staging",
	StateClassifying: "classifying",
	StatePublishing:  "publishing",
	StateCleaningUp:  "cleaning-up",
	StateDone:        "done",
	StateFailed:      "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transitions follow s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Transition records a state change.
type Transition struct {
	From State
	To   State
	At   time.Time
}
