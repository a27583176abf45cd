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

// Package manifest parses and writes manifest bodies: the list of files an
// installation package contains, each with its size and checksums.
package manifest

import (
	"bytes"
	"fmt"
	"strconv"
)

// Manifest is an ordered list of file records.
type Manifest struct {
	records []FileRecord
	index   map[string]int
}

// New builds a manifest from records, keeping their order.
func New(records []FileRecord) *Manifest {
	m := &Manifest{
		records: make([]FileRecord, 0, len(records)),
		index:   make(map[string]int, len(records)),
	}
	for _, r := range records {
		m.add(r)
	}
	return m
}

func (m *Manifest) add(r FileRecord) {
	if _, dup := m.index[r.Path]; !dup {
		m.index[r.Path] = len(m.records)
	}
	m.records = append(m.records, r)
}

// Len returns the number of records.
func (m *Manifest) Len() int {
	return len(m.records)
}

// Records returns a copy of the records in manifest order.
func (m *Manifest) Records() []FileRecord {
	out := make([]FileRecord, len(m.records))
	copy(out, m.records)
	return out
}

// Lookup returns the first record whose raw path equals p.
func (m *Manifest) Lookup(p string) (FileRecord, bool) {
	i, ok := m.index[p]
	if !ok {
		return FileRecord{}, false
	}
	return m.records[i], true
}

// CheckFilePresent reports whether a record path equals relativePath
// exactly. "./install.sh" does not match "install.sh".
func (m *Manifest) CheckFilePresent(relativePath string) bool {
	_, ok := m.Lookup(relativePath)
	return ok
}

// MarshalText writes the manifest in the grammar Parse reads. The entry
// checksum is SHA1 when present, otherwise the strongest checksum; the
// remaining SHA256 and SHA384 values follow as attribute comments.
func (m *Manifest) MarshalText() ([]byte, error) {
	var buf bytes.Buffer
	for i := range m.records {
		r := &m.records[i]
		if err := validatePath(r.Path); err != nil {
			return nil, err
		}
		entry := r.SHA1
		if entry == "" {
			_, hex, ok := r.Preferred()
			if !ok {
				return nil, fmt.Errorf("record %q has no checksum", r.Path)
			}
			entry = hex
		}

		buf.WriteByte('"')
		buf.WriteString(r.Path)
		buf.WriteString(`" `)
		buf.WriteString(strconv.FormatUint(r.Size, 10))
		buf.WriteByte(' ')
		buf.WriteString(entry)
		buf.WriteByte('\n')
		if r.SHA256 != "" && r.SHA256 != entry {
			fmt.Fprintf(&buf, "%s%s\n", sha256Attr, r.SHA256)
		}
		if r.SHA384 != "" && r.SHA384 != entry {
			fmt.Fprintf(&buf, "%s%s\n", sha384Attr, r.SHA384)
		}
	}
	return buf.Bytes(), nil
}
