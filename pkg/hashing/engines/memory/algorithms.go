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

package memory

import (
	"crypto/md5"  //nolint:gosec // legacy manifests and signatures still carry MD5
	"crypto/sha1" //nolint:gosec // SHA1 is the legacy manifest checksum
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	hashengines "github.com/versig/versig/pkg/hashing/engines"
)

var factories = map[hashengines.Algorithm]HashFactoryFunc{
	hashengines.MD5:    md5.New,
	hashengines.SHA1:   sha1.New,
	hashengines.SHA256: sha256.New,
	hashengines.SHA384: sha512.New384,
	hashengines.SHA512: sha512.New,
}

func init() {
	for alg, factory := range factories {
		alg, factory := alg, factory
		hashengines.MustRegister(alg, func() (hashengines.StreamingHashEngine, error) {
			return NewGenericHashEngine(alg, factory, nil), nil
		})
	}
}

// NewEngine returns an engine for a single algorithm without going through
// the registry.
func NewEngine(alg hashengines.Algorithm, initialData []byte) (*GenericHashEngine, error) {
	factory, ok := factories[alg]
	if !ok {
		return nil, &unsupportedError{alg: alg}
	}
	return NewGenericHashEngine(alg, factory, initialData), nil
}

// HashFunc exposes the raw constructor for alg, or nil.
func HashFunc(alg hashengines.Algorithm) func() hash.Hash {
	if f, ok := factories[alg]; ok {
		return f
	}
	return nil
}

type unsupportedError struct {
	alg hashengines.Algorithm
}

func (e *unsupportedError) Error() string {
	return "no in-memory engine for algorithm " + e.alg.String()
}
