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
	"crypto"
	"fmt"
	"math/bits"
	"strings"
)

// Algorithm identifies a digest algorithm. Values are single bits so that a
// set of algorithms can be expressed as a bitmask. Bit order is strength
// order: a higher bit is a stronger algorithm.
type Algorithm uint8

const (
	MD5 Algorithm = 1 << iota
	SHA1
	SHA256
	SHA384
	SHA512

	// AlgorithmNone is the empty set.
	AlgorithmNone Algorithm = 0

	// AllAlgorithms contains every supported algorithm.
	AllAlgorithms = MD5 | SHA1 | SHA256 | SHA384 | SHA512

	// SecureAlgorithms are the algorithms accepted for signatures unless the
	// caller explicitly opts in to SHA1.
	SecureAlgorithms = SHA256 | SHA384 | SHA512
)

// orderedAlgorithms lists the single-bit algorithms from weakest to strongest.
var orderedAlgorithms = []Algorithm{MD5, SHA1, SHA256, SHA384, SHA512}

var algorithmNames = map[Algorithm]string{
	MD5:    "md5",
	SHA1:   "sha1",
	SHA256: "sha256",
	SHA384: "sha384",
	SHA512: "sha512",
}

// ParseAlgorithm resolves an algorithm name as written in signed files
// ("sha384", "SHA-384" and "sha-384" are all accepted).
func ParseAlgorithm(name string) (Algorithm, error) {
	n := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "")
	for alg, s := range algorithmNames {
		if s == n {
			return alg, nil
		}
	}
	return AlgorithmNone, fmt.Errorf("unknown digest algorithm %q", name)
}

// String returns the canonical lower-case name of a single algorithm, or a
// "|"-joined list for a set.
func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	if a == AlgorithmNone {
		return "none"
	}
	var parts []string
	for _, alg := range a.Split() {
		parts = append(parts, algorithmNames[alg])
	}
	if a&^AllAlgorithms != 0 {
		parts = append(parts, fmt.Sprintf("unknown(%#x)", uint8(a&^AllAlgorithms)))
	}
	return strings.Join(parts, "|")
}

// IsSingle reports whether a names exactly one known algorithm.
func (a Algorithm) IsSingle() bool {
	return a&AllAlgorithms == a && bits.OnesCount8(uint8(a)) == 1
}

// Contains reports whether every algorithm in other is also in a.
func (a Algorithm) Contains(other Algorithm) bool {
	return other != AlgorithmNone && a&other == other
}

// Split returns the known algorithms in the set, weakest first.
func (a Algorithm) Split() []Algorithm {
	var out []Algorithm
	for _, alg := range orderedAlgorithms {
		if a&alg != 0 {
			out = append(out, alg)
		}
	}
	return out
}

// Strongest returns the strongest algorithm in the set, or AlgorithmNone.
func (a Algorithm) Strongest() Algorithm {
	for i := len(orderedAlgorithms) - 1; i >= 0; i-- {
		if a&orderedAlgorithms[i] != 0 {
			return orderedAlgorithms[i]
		}
	}
	return AlgorithmNone
}

// CryptoHash maps a single algorithm to the standard library identifier.
func (a Algorithm) CryptoHash() (crypto.Hash, error) {
	switch a {
	case MD5:
		return crypto.MD5, nil
	case SHA1:
		return crypto.SHA1, nil
	case SHA256:
		return crypto.SHA256, nil
	case SHA384:
		return crypto.SHA384, nil
	case SHA512:
		return crypto.SHA512, nil
	default:
		return 0, fmt.Errorf("no single hash for algorithm %s", a)
	}
}

// HexLen is the length of a hex-encoded digest of a single algorithm, or 0.
func (a Algorithm) HexLen() int {
	h, err := a.CryptoHash()
	if err != nil {
		return 0
	}
	return h.Size() * 2
}
