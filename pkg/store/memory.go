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
	"fmt"
	"sort"
	"sync"
)

// Memory is a thread-safe in-memory ObjectStore. It backs --dry-run and tests,
// and supports fault injection.
type Memory struct {
	mu      sync.Mutex
	objects map[string]Object
	puts    int
	failOn  map[string]error
	failAt  map[int]error
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string]Object),
		failOn:  make(map[string]error),
		failAt:  make(map[int]error),
	}
}

// FailOn makes every PutObject for key return err.
func (m *Memory) FailOn(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn[key] = err
}

// FailAt makes the n-th PutObject call (1-based) return err.
func (m *Memory) FailAt(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAt[n] = err
}

// PutObject implements ObjectStore.
func (m *Memory) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.puts++
	if err, ok := m.failAt[m.puts]; ok {
		return err
	}
	if err, ok := m.failOn[key]; ok {
		return err
	}

	m.objects[key] = Object{
		Body:        bytes.Clone(body),
		ContentType: contentType,
	}
	return nil
}

// Get returns the object stored at key.
func (m *Memory) Get(key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	return obj, ok
}

// Keys returns all stored keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Puts returns the number of PutObject calls, including failed ones.
func (m *Memory) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

// String summarizes the store contents.
func (m *Memory) String() string {
	return fmt.Sprintf("memory store (%d objects)", len(m.Keys()))
}
