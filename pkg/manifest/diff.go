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
	"strings"

	hashengines "github.com/versig/versig/pkg/hashing/engines"
)

// Diff records how the files under a data directory compare with a
// manifest. Paths are the raw manifest paths, in manifest order.
type Diff struct {
	// Checked contains records whose file was found and hashed.
	Checked []string

	// MissingFiles contains records with no file on disk. These are not
	// failures: a manifest may describe more than is installed.
	MissingFiles []string

	// InvalidFiles contains records without a usable checksum, or without a
	// SHA256 when one is required.
	InvalidFiles []string

	// Mismatches contains files whose digest differs from the manifest.
	Mismatches []HashMismatch
}

// HashMismatch is a single file whose digest differs from the manifest.
type HashMismatch struct {
	Path      string
	Algorithm hashengines.Algorithm

	// ExpectedHash is the hex digest from the manifest.
	ExpectedHash string

	// ActualHash is the hex digest computed from the file.
	ActualHash string
}

// IsEmpty returns true if nothing failed.
func (d *Diff) IsEmpty() bool {
	return len(d.InvalidFiles) == 0 && len(d.Mismatches) == 0
}

// FirstFailure returns the first invalid or mismatching path, preferring
// mismatches.
func (d *Diff) FirstFailure() (string, bool) {
	if len(d.Mismatches) > 0 {
		return d.Mismatches[0].Path, true
	}
	if len(d.InvalidFiles) > 0 {
		return d.InvalidFiles[0], true
	}
	return "", false
}

// String returns a one-line summary.
func (d *Diff) String() string {
	s := fmt.Sprintf("checked=%d missing=%d invalid=%d mismatched=%d",
		len(d.Checked), len(d.MissingFiles), len(d.InvalidFiles), len(d.Mismatches))
	if len(d.Mismatches) > 0 {
		paths := make([]string, 0, len(d.Mismatches))
		for _, mm := range d.Mismatches {
			paths = append(paths, mm.Path)
		}
		s += " [" + strings.Join(paths, ", ") + "]"
	}
	return s
}
