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

// Package hashengines provides the digest engine interfaces, the Algorithm
// bitmask and a registry mapping each algorithm to an engine factory.
//
// Engines are fed incrementally through Update and finalized with Compute.
// Nothing in this package rewinds input: a caller that needs to hash the
// same data twice must Reset the engine and feed it again.
package hashengines

import (
	"github.com/versig/versig/pkg/hashing/digests"
)

// HashEngine computes a digest for a single algorithm.
type HashEngine interface {
	// Compute finalizes the hash computation and returns the resulting digest.
	Compute() (digests.Digest, error)

	// Algorithm returns the single algorithm this engine implements.
	Algorithm() Algorithm

	// DigestSize returns the size in bytes of digests produced by this engine.
	DigestSize() int
}

// Streaming feeds data to an engine.
type Streaming interface {
	// Update appends bytes to the data being hashed.
	Update(data []byte)

	// Reset clears the hash state and seeds it with data, which may be nil.
	Reset(data []byte)
}

// StreamingHashEngine combines HashEngine and Streaming.
type StreamingHashEngine interface {
	HashEngine
	Streaming
}
