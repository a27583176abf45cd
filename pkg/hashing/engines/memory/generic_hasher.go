// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package memory provides in-memory digest engines for every algorithm the
// manifest format knows about. Importing the package registers them.
package memory

import (
	"hash"

	"github.com/versig/versig/pkg/hashing/digests"
	hashengines "github.com/versig/versig/pkg/hashing/engines"
)

var _ hashengines.StreamingHashEngine = (*GenericHashEngine)(nil)

// HashFactoryFunc creates a fresh hash.Hash.
type HashFactoryFunc func() hash.Hash

// GenericHashEngine adapts any hash.Hash to StreamingHashEngine.
type GenericHashEngine struct {
	alg     hashengines.Algorithm
	factory HashFactoryFunc
	h       hash.Hash
}

// NewGenericHashEngine creates an engine for alg backed by factory.
// initialData, if non-empty, is hashed immediately.
func NewGenericHashEngine(alg hashengines.Algorithm, factory HashFactoryFunc, initialData []byte) *GenericHashEngine {
	engine := &GenericHashEngine{
		alg:     alg,
		factory: factory,
		h:       factory(),
	}
	engine.Update(initialData)
	return engine
}

// Update appends bytes to the hash state.
func (e *GenericHashEngine) Update(data []byte) {
	if len(data) > 0 {
		// hash.Hash.Write never returns an error.
		_, _ = e.h.Write(data)
	}
}

// Reset clears the hash state and seeds it with data.
func (e *GenericHashEngine) Reset(data []byte) {
	e.h = e.factory()
	e.Update(data)
}

// Compute finalizes the hash. The engine state is left untouched, so further
// Updates continue the same stream.
func (e *GenericHashEngine) Compute() (digests.Digest, error) {
	return digests.NewDigest(e.alg.String(), e.h.Sum(nil)), nil
}

// Algorithm returns the engine's algorithm.
func (e *GenericHashEngine) Algorithm() hashengines.Algorithm {
	return e.alg
}

// DigestSize returns the digest length in bytes.
func (e *GenericHashEngine) DigestSize() int {
	return e.h.Size()
}
