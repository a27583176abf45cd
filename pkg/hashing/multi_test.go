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

package hashing

import (
	"errors"
	"io"
	"strings"
	"testing"

	hashengines "github.com/versig/versig/pkg/hashing/engines"
)

func TestMultiHasher_SinglePass(t *testing.T) {
	m, err := NewMultiHasher(hashengines.SHA1 | hashengines.SHA256 | hashengines.SHA384)
	if err != nil {
		t.Fatalf("NewMultiHasher() error = %v", err)
	}

	m.AddData([]byte("ab"))
	m.AddData(nil)
	m.AddData([]byte("cd"))

	tests := []struct {
		alg  hashengines.Algorithm
		want string
	}{
		{hashengines.SHA1, "81fe8bfe87576c3ecb22426f8e57847382917acf"},
		{hashengines.SHA256, "88d4266fd4e6338d13b845fcf289579d209c897823b9217da3e161936f031589"},
		{hashengines.SHA384, "1165b3406ff0b52a3d24721f785462ca2276c9f454a116c2b2ba20171a7905ea5a026682eb659c4d5f115c363aa3c79b"},
	}
	for _, tt := range tests {
		got, err := m.Hex(tt.alg)
		if err != nil {
			t.Fatalf("Hex(%s) error = %v", tt.alg, err)
		}
		if got != tt.want {
			t.Errorf("Hex(%s) = %s, want %s", tt.alg, got, tt.want)
		}
		raw, err := m.Raw(tt.alg)
		if err != nil {
			t.Fatalf("Raw(%s) error = %v", tt.alg, err)
		}
		if len(raw)*2 != len(tt.want) {
			t.Errorf("Raw(%s) has %d bytes", tt.alg, len(raw))
		}
	}

	if m.ByteCount() != 4 {
		t.Errorf("ByteCount() = %d, want 4", m.ByteCount())
	}
}

func TestMultiHasher_NotEnabled(t *testing.T) {
	m, err := NewMultiHasher(hashengines.SHA256)
	if err != nil {
		t.Fatalf("NewMultiHasher() error = %v", err)
	}
	if _, err := m.Hex(hashengines.SHA1); !errors.Is(err, ErrAlgorithmNotEnabled) {
		t.Errorf("Hex(sha1) error = %v, want ErrAlgorithmNotEnabled", err)
	}
	if _, err := m.Raw(hashengines.SHA512); !errors.Is(err, ErrAlgorithmNotEnabled) {
		t.Errorf("Raw(sha512) error = %v, want ErrAlgorithmNotEnabled", err)
	}
}

func TestMultiHasher_Reset(t *testing.T) {
	m, _ := NewMultiHasher(hashengines.MD5)
	m.AddData([]byte("junk"))
	m.Reset()
	if m.ByteCount() != 0 {
		t.Errorf("ByteCount() after Reset = %d", m.ByteCount())
	}
	m.AddData([]byte("abcd"))
	got, _ := m.Hex(hashengines.MD5)
	if got != "e2fc714c4727ee9395f324cd2e7f331f" {
		t.Errorf("Hex(md5) = %s", got)
	}
}

func TestMultiHasher_Writer(t *testing.T) {
	m, _ := NewMultiHasher(hashengines.SHA256)
	n, err := io.Copy(m, strings.NewReader("abcd"))
	if err != nil || n != 4 {
		t.Fatalf("io.Copy() = %d, %v", n, err)
	}
	ds, err := m.Digests()
	if err != nil {
		t.Fatalf("Digests() error = %v", err)
	}
	if len(ds) != 1 || ds[hashengines.SHA256].Algorithm() != "sha256" {
		t.Errorf("Digests() = %v", ds)
	}
}

func TestNewMultiHasher_Invalid(t *testing.T) {
	for _, algs := range []hashengines.Algorithm{hashengines.AlgorithmNone, hashengines.Algorithm(1 << 7)} {
		if _, err := NewMultiHasher(algs); err == nil {
			t.Errorf("NewMultiHasher(%s) expected error", algs)
		}
	}
}

func TestSum(t *testing.T) {
	d, err := Sum(hashengines.SHA1, []byte("abcd"))
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	if !d.MatchesHex("81FE8BFE87576C3ECB22426F8E57847382917ACF") {
		t.Errorf("Sum() = %s does not match upper-case hex", d)
	}
	if _, err := Sum(hashengines.SHA1|hashengines.MD5, nil); err == nil {
		t.Error("Sum() with a set should fail")
	}
}
