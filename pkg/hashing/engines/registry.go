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

package hashengines

import (
	"fmt"
	"sync"
)

// HashEngineFactory creates a new engine.
type HashEngineFactory func() (StreamingHashEngine, error)

var (
	registry = make(map[Algorithm]HashEngineFactory)
	mu       sync.RWMutex
)

// Register registers a factory for a single algorithm.
//
// Registering the same algorithm twice is an error.
func Register(alg Algorithm, factory HashEngineFactory) error {
	mu.Lock()
	defer mu.Unlock()

	if !alg.IsSingle() {
		return fmt.Errorf("cannot register %s: not a single algorithm", alg)
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}
	if _, exists := registry[alg]; exists {
		return fmt.Errorf("hash algorithm %s already registered", alg)
	}

	registry[alg] = factory
	return nil
}

// MustRegister registers a factory or panics. Meant for package init.
func MustRegister(alg Algorithm, factory HashEngineFactory) {
	if err := Register(alg, factory); err != nil {
		panic(fmt.Sprintf("failed to register hash algorithm %s: %v", alg, err))
	}
}

// Create returns a new engine for a single registered algorithm.
func Create(alg Algorithm) (StreamingHashEngine, error) {
	mu.RLock()
	factory, exists := registry[alg]
	mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unsupported hash algorithm: %s (supported: %s)", alg, Supported())
	}

	engine, err := factory()
	if err != nil {
		return nil, fmt.Errorf("failed to create hash engine for %s: %w", alg, err)
	}
	return engine, nil
}

// Supported returns the set of registered algorithms.
func Supported() Algorithm {
	mu.RLock()
	defer mu.RUnlock()

	var set Algorithm
	for alg := range registry {
		set |= alg
	}
	return set
}

// IsSupported reports whether every algorithm in alg is registered.
func IsSupported(alg Algorithm) bool {
	return Supported().Contains(alg)
}

// Unregister removes an algorithm. Used by tests.
func Unregister(alg Algorithm) error {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := registry[alg]; !exists {
		return fmt.Errorf("hash algorithm %s not registered", alg)
	}
	delete(registry, alg)
	return nil
}
