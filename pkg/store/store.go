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

import "context"

// ObjectStore is the put-object capability the publisher depends on. The
// bucket is bound when the store is constructed.
type ObjectStore interface {
	// PutObject stores body under key with the given content type, replacing
	// any existing object at key.
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
}

// Object is a stored object as seen by the in-memory store.
type Object struct {
	Body        []byte
	ContentType string
}
