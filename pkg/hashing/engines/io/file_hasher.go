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
	"fmt"
	"io"
	"os"

	"github.com/versig/versig/pkg/hashing"
	"github.com/versig/versig/pkg/hashing/digests"
	hashengines "github.com/versig/versig/pkg/hashing/engines"
)

// DefaultChunkSize is the read size used when none is given.
const DefaultChunkSize = 64 * 1024

// FileHasher streams a file into a MultiHasher.
//
// Each Compute opens the file, reads it exactly once in chunkSize pieces and
// closes it before returning. chunkSize 0 reads the whole file at once.
type FileHasher struct {
	filePath   string
	algorithms hashengines.Algorithm
	chunkSize  int
}

// NewFileHasher validates its arguments and returns a FileHasher.
func NewFileHasher(filePath string, algorithms hashengines.Algorithm, chunkSize int) (*FileHasher, error) {
	if chunkSize < 0 {
		return nil, fmt.Errorf("chunk size must be non-negative, got %d", chunkSize)
	}
	if filePath == "" {
		return nil, fmt.Errorf("file path must be non-empty")
	}
	if algorithms == hashengines.AlgorithmNone {
		return nil, fmt.Errorf("no digest algorithm selected for %q", filePath)
	}

	return &FileHasher{
		filePath:   filePath,
		algorithms: algorithms,
		chunkSize:  chunkSize,
	}, nil
}

// Compute hashes the file and returns one digest per configured algorithm
// plus the number of bytes read.
func (h *FileHasher) Compute() (map[hashengines.Algorithm]digests.Digest, uint64, error) {
	m, err := hashing.NewMultiHasher(h.algorithms)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(h.filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("open file %q: %w", h.filePath, err)
	}
	defer f.Close()

	if h.chunkSize == 0 {
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, 0, fmt.Errorf("read file %q: %w", h.filePath, err)
		}
		m.AddData(data)
	} else {
		buf := make([]byte, h.chunkSize)
		if _, err := io.CopyBuffer(m, onlyReader{f}, buf); err != nil {
			return nil, 0, fmt.Errorf("read file %q: %w", h.filePath, err)
		}
	}

	ds, err := m.Digests()
	if err != nil {
		return nil, 0, fmt.Errorf("compute digest: %w", err)
	}
	return ds, m.ByteCount(), nil
}

// onlyReader hides *os.File's WriterTo so io.CopyBuffer honours the chunk
// size.
type onlyReader struct {
	r io.Reader
}

func (o onlyReader) Read(p []byte) (int, error) {
	return o.r.Read(p)
}
