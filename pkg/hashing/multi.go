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

// Package hashing computes one or several digests over a byte stream in a
// single pass.
package hashing

import (
	"errors"
	"fmt"
	"io"

	"github.com/versig/versig/pkg/hashing/digests"
	hashengines "github.com/versig/versig/pkg/hashing/engines"

	// Registers the in-memory engines.
	_ "github.com/versig/versig/pkg/hashing/engines/memory"
)

// ErrAlgorithmNotEnabled is returned when a digest is requested for an
// algorithm the MultiHasher was not constructed with.
var ErrAlgorithmNotEnabled = errors.New("algorithm not enabled")

var _ io.Writer = (*MultiHasher)(nil)

// MultiHasher feeds the same data to one engine per enabled algorithm.
//
// It is strictly forward-only. Digests are available once the caller has
// finished feeding data; querying does not consume or rewind anything.
type MultiHasher struct {
	enabled hashengines.Algorithm
	engines map[hashengines.Algorithm]hashengines.StreamingHashEngine
	count   uint64
}

// NewMultiHasher creates a hasher for every algorithm in the set.
func NewMultiHasher(algorithms hashengines.Algorithm) (*MultiHasher, error) {
	if algorithms == hashengines.AlgorithmNone {
		return nil, fmt.Errorf("no digest algorithm selected")
	}
	if algorithms&^hashengines.AllAlgorithms != 0 {
		return nil, fmt.Errorf("unknown digest algorithm bits in %s", algorithms)
	}

	m := &MultiHasher{
		enabled: algorithms,
		engines: make(map[hashengines.Algorithm]hashengines.StreamingHashEngine),
	}
	for _, alg := range algorithms.Split() {
		engine, err := hashengines.Create(alg)
		if err != nil {
			return nil, err
		}
		m.engines[alg] = engine
	}
	return m, nil
}

// Enabled returns the algorithm set.
func (m *MultiHasher) Enabled() hashengines.Algorithm {
	return m.enabled
}

// AddData feeds data to every enabled engine.
func (m *MultiHasher) AddData(data []byte) {
	for _, engine := range m.engines {
		engine.Update(data)
	}
	m.count += uint64(len(data))
}

// Write implements io.Writer so a MultiHasher can be the target of io.Copy.
func (m *MultiHasher) Write(p []byte) (int, error) {
	m.AddData(p)
	return len(p), nil
}

// Reset discards all state, including the byte count.
func (m *MultiHasher) Reset() {
	for _, engine := range m.engines {
		engine.Reset(nil)
	}
	m.count = 0
}

// ByteCount returns the number of bytes processed since construction or the
// last Reset.
func (m *MultiHasher) ByteCount() uint64 {
	return m.count
}

// Digest returns the digest for a single enabled algorithm.
func (m *MultiHasher) Digest(alg hashengines.Algorithm) (digests.Digest, error) {
	engine, ok := m.engines[alg]
	if !ok {
		return digests.Digest{}, fmt.Errorf("%w: %s", ErrAlgorithmNotEnabled, alg)
	}
	return engine.Compute()
}

// Hex returns the hex digest for a single enabled algorithm.
func (m *MultiHasher) Hex(alg hashengines.Algorithm) (string, error) {
	d, err := m.Digest(alg)
	if err != nil {
		return "", err
	}
	return d.Hex(), nil
}

// Raw returns the binary digest for a single enabled algorithm.
func (m *MultiHasher) Raw(alg hashengines.Algorithm) ([]byte, error) {
	d, err := m.Digest(alg)
	if err != nil {
		return nil, err
	}
	return d.Value(), nil
}

// Digests returns every enabled digest keyed by algorithm.
func (m *MultiHasher) Digests() (map[hashengines.Algorithm]digests.Digest, error) {
	out := make(map[hashengines.Algorithm]digests.Digest, len(m.engines))
	for alg, engine := range m.engines {
		d, err := engine.Compute()
		if err != nil {
			return nil, fmt.Errorf("compute %s: %w", alg, err)
		}
		out[alg] = d
	}
	return out, nil
}

// Sum is a convenience that hashes data with a single algorithm.
func Sum(alg hashengines.Algorithm, data []byte) (digests.Digest, error) {
	if !alg.IsSingle() {
		return digests.Digest{}, fmt.Errorf("Sum needs a single algorithm, got %s", alg)
	}
	m, err := NewMultiHasher(alg)
	if err != nil {
		return digests.Digest{}, err
	}
	m.AddData(data)
	return m.Digest(alg)
}
