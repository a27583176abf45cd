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

package certificate

import "strings"

// Diagnostic is one failed chain trial.
type Diagnostic struct {
	Certificate string
	Reason      string
}

func (d Diagnostic) String() string {
	return d.Certificate + ": " + d.Reason
}

// Diagnostics collects the outcome of the root trials of a single
// VerifyChain call. It is informational only.
type Diagnostics struct {
	Entries []Diagnostic

	// Root names the bundle that validated the chain, if any.
	Root string
}

// Add records a failed trial.
func (d *Diagnostics) Add(certificate, reason string) {
	if d == nil {
		return
	}
	d.Entries = append(d.Entries, Diagnostic{Certificate: certificate, Reason: reason})
}

// Len returns the number of recorded failures.
func (d *Diagnostics) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Entries)
}

func (d *Diagnostics) String() string {
	if d.Len() == 0 {
		return ""
	}
	parts := make([]string, 0, len(d.Entries))
	for _, e := range d.Entries {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, "; ")
}
