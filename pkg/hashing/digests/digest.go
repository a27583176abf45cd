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

// Package digests provides an immutable digest value.
package digests

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// Digest is a computed digest together with the name of its algorithm.
//
// Fields are unexported and accessors copy, so a Digest can be shared freely.
type Digest struct {
	algorithm string
	value     []byte
}

// NewDigest creates a Digest. The value slice is copied.
func NewDigest(algorithm string, value []byte) Digest {
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	return Digest{
		algorithm: algorithm,
		value:     valueCopy,
	}
}

// Algorithm returns the algorithm name, e.g. "sha256".
func (d Digest) Algorithm() string {
	return d.algorithm
}

// Value returns a copy of the raw digest bytes.
func (d Digest) Value() []byte {
	valueCopy := make([]byte, len(d.value))
	copy(valueCopy, d.value)
	return valueCopy
}

// Hex returns the lowercase hex encoding of the digest value.
func (d Digest) Hex() string {
	return hex.EncodeToString(d.value)
}

// Size returns the length in bytes of the digest value.
func (d Digest) Size() int {
	return len(d.value)
}

// IsZero reports whether d holds no value.
func (d Digest) IsZero() bool {
	return len(d.value) == 0
}

// String returns "algorithm:hexvalue".
func (d Digest) String() string {
	return fmt.Sprintf("%s:%s", d.algorithm, d.Hex())
}

// Equal reports whether both the algorithm and the value match.
func (d Digest) Equal(other Digest) bool {
	return d.algorithm == other.algorithm && bytes.Equal(d.value, other.value)
}

// MatchesHex compares the value against a hex string. Case is ignored,
// manifests written on some platforms use upper-case hex.
func (d Digest) MatchesHex(hexValue string) bool {
	raw, err := hex.DecodeString(hexValue)
	if err != nil {
		return false
	}
	return bytes.Equal(d.value, raw)
}
