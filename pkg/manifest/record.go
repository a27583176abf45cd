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

package manifest

import (
	"fmt"
	"path"
	"strings"

	hashengines "github.com/versig/versig/pkg/hashing/engines"
)

// FileRecord is one file entry of a manifest. Checksums are lower- or
// upper-case hex as written in the manifest; an empty string means absent.
type FileRecord struct {
	// Path is the raw path between the quotes, byte for byte.
	Path string
	Size uint64

	SHA1   string
	SHA256 string
	SHA384 string
}

// Checksum returns the hex checksum recorded for alg.
func (r *FileRecord) Checksum(alg hashengines.Algorithm) string {
	switch alg {
	case hashengines.SHA1:
		return r.SHA1
	case hashengines.SHA256:
		return r.SHA256
	case hashengines.SHA384:
		return r.SHA384
	default:
		return ""
	}
}

func (r *FileRecord) setChecksum(alg hashengines.Algorithm, hex string) {
	switch alg {
	case hashengines.SHA1:
		r.SHA1 = hex
	case hashengines.SHA256:
		r.SHA256 = hex
	case hashengines.SHA384:
		r.SHA384 = hex
	}
}

// Algorithms returns the set of algorithms with a checksum of the right
// length.
func (r *FileRecord) Algorithms() hashengines.Algorithm {
	var set hashengines.Algorithm
	for _, alg := range []hashengines.Algorithm{hashengines.SHA1, hashengines.SHA256, hashengines.SHA384} {
		if sum := r.Checksum(alg); sum != "" && len(sum) == alg.HexLen() {
			set |= alg
		}
	}
	return set
}

// Preferred returns the strongest usable checksum: SHA384, then SHA256, then
// SHA1. ok is false when the record has none.
func (r *FileRecord) Preferred() (alg hashengines.Algorithm, hex string, ok bool) {
	alg = r.Algorithms().Strongest()
	if alg == hashengines.AlgorithmNone {
		return alg, "", false
	}
	return alg, r.Checksum(alg), true
}

// Valid reports whether the record carries at least one usable checksum.
func (r *FileRecord) Valid() bool {
	return r.Algorithms() != hashengines.AlgorithmNone
}

// RelativePath returns the path to look up under a data directory: "\" is
// turned into "/" and a leading "./" or "/" is removed.
func (r *FileRecord) RelativePath() string {
	return NormalizePath(r.Path)
}

// LocalPath is RelativePath checked to stay inside the data directory.
func (r *FileRecord) LocalPath() (string, error) {
	rel := path.Clean(r.RelativePath())
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") || strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("path %q escapes the data directory", r.Path)
	}
	return rel, nil
}

// NormalizePath applies the manifest path rules to p.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if strings.HasPrefix(p, "./") {
		p = p[1:]
	}
	return strings.TrimLeft(p, "/")
}
