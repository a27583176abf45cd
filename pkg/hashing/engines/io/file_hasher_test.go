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

package io

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	hashengines "github.com/versig/versig/pkg/hashing/engines"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "data.bin")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestFileHasher_Compute(t *testing.T) {
	content := strings.Repeat("abcd", 1000)
	path := writeFile(t, content)

	for _, chunk := range []int{0, 1, 7, DefaultChunkSize} {
		h, err := NewFileHasher(path, hashengines.SHA1|hashengines.SHA256, chunk)
		if err != nil {
			t.Fatalf("NewFileHasher() error = %v", err)
		}
		ds, n, err := h.Compute()
		if err != nil {
			t.Fatalf("Compute() chunk %d error = %v", chunk, err)
		}
		if n != uint64(len(content)) {
			t.Errorf("chunk %d: byte count %d, want %d", chunk, n, len(content))
		}
		if len(ds) != 2 {
			t.Fatalf("chunk %d: got %d digests, want 2", chunk, len(ds))
		}
		if ds[hashengines.SHA1].Size() != 20 || ds[hashengines.SHA256].Size() != 32 {
			t.Errorf("chunk %d: unexpected digest sizes", chunk)
		}
	}
}

func TestFileHasher_SameResultAcrossChunkSizes(t *testing.T) {
	path := writeFile(t, strings.Repeat("0123456789", 513))

	var first string
	for _, chunk := range []int{0, 3, 4096} {
		h, _ := NewFileHasher(path, hashengines.SHA384, chunk)
		ds, _, err := h.Compute()
		if err != nil {
			t.Fatalf("Compute() error = %v", err)
		}
		got := ds[hashengines.SHA384].Hex()
		if first == "" {
			first = got
		} else if got != first {
			t.Errorf("chunk %d digest %s differs from %s", chunk, got, first)
		}
	}
}

func TestNewFileHasher_Validation(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		algs  hashengines.Algorithm
		chunk int
	}{
		{"empty path", "", hashengines.SHA1, 0},
		{"negative chunk", "x", hashengines.SHA1, -1},
		{"no algorithm", "x", hashengines.AlgorithmNone, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFileHasher(tt.path, tt.algs, tt.chunk); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFileHasher_MissingFile(t *testing.T) {
	h, err := NewFileHasher(filepath.Join(t.TempDir(), "nope"), hashengines.SHA1, 0)
	if err != nil {
		t.Fatalf("NewFileHasher() error = %v", err)
	}
	if _, _, err := h.Compute(); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Compute() error = %v, want not-exist", err)
	}
}
