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

package verify

import (
	"sort"
	"time"

	hashengines "github.com/versig/versig/pkg/hashing/engines"
	"github.com/versig/versig/pkg/logging"
	"github.com/versig/versig/pkg/signedfile"
)

// Options configures a ManifestVerifier.
type Options struct {
	// AllowedAlgorithms limits the signatures that are attempted. Zero
	// means hashengines.SecureAlgorithms.
	AllowedAlgorithms hashengines.Algorithm

	// ContinueOnMismatch makes ReconcileAgainstDirectory check every record
	// instead of stopping at the first failure.
	ContinueOnMismatch bool

	// VerifyTime pins certificate validity checks. Zero means now.
	VerifyTime time.Time

	// CheckCRL enables revocation checks against root bundle CRLs.
	CheckCRL bool

	// LogFingerprints logs certificate fingerprints at debug level.
	LogFingerprints bool

	Logger logging.Logger
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{AllowedAlgorithms: hashengines.SecureAlgorithms}
}

func (o Options) allowed() hashengines.Algorithm {
	if o.AllowedAlgorithms == hashengines.AlgorithmNone {
		return hashengines.SecureAlgorithms
	}
	return o.AllowedAlgorithms
}

// SelectSignatures returns the signatures whose algorithm is in allowed,
// strongest first. Signatures of equal strength keep file order.
func SelectSignatures(sigs []*signedfile.Signature, allowed hashengines.Algorithm) []*signedfile.Signature {
	out := make([]*signedfile.Signature, 0, len(sigs))
	for _, s := range sigs {
		if s.Algorithm.IsSingle() && allowed.Contains(s.Algorithm) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Algorithm > out[j].Algorithm
	})
	return out
}
