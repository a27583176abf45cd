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
	"errors"
	"strings"
	"testing"

	"github.com/versig/versig/pkg/grammar"
)

const (
	sha1Abcd   = "81fe8bfe87576c3ecb22426f8e57847382917acf"
	sha256Abcd = "88d4266fd4e6338d13b845fcf289579d209c897823b9217da3e161936f031589"
	sha384Abcd = "1165b3406ff0b52a3d24721f785462ca2276c9f454a116c2b2ba20171a7905ea5a026682eb659c4d5f115c363aa3c79b"
)

func TestParse(t *testing.T) {
	body := "# generated manifest\n" +
		"#sha256 " + sha256Abcd + "\n" +
		"\"./bin/tool\" 4 " + sha1Abcd + "\n" +
		"#sha256 " + sha256Abcd + "\n" +
		"#sha384 " + sha384Abcd + "\n" +
		"#note about the file\n" +
		"\"./caf\xe9 \xff.dat\" 0 " + strings.ToUpper(sha1Abcd) + "\n" +
		"\"./only256\" 4 " + sha256Abcd + "\n"

	m, err := Parse([]byte(body))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	recs := m.Records()
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}

	want := []FileRecord{
		{Path: "./bin/tool", Size: 4, SHA1: sha1Abcd, SHA256: sha256Abcd, SHA384: sha384Abcd},
		{Path: "./caf\xe9 \xff.dat", Size: 0, SHA1: strings.ToUpper(sha1Abcd)},
		{Path: "./only256", Size: 4, SHA256: sha256Abcd},
	}
	for i := range want {
		if recs[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, recs[i], want[i])
		}
	}
}

func TestParse_Empty(t *testing.T) {
	for _, body := range []string{"", "# only a comment\n", "#sha256 " + sha256Abcd + "\n"} {
		m, err := Parse([]byte(body))
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", body, err)
		}
		if m.Len() != 0 {
			t.Errorf("Parse(%q) has %d records", body, m.Len())
		}
	}
}

func TestParse_AttributeEdgeCases(t *testing.T) {
	tests := []struct {
		name       string
		attr       string
		wantSHA256 string
	}{
		{"short sha256 ignored", "#sha256 abcd\n", ""},
		{"long sha256 ignored", "#sha256 " + sha256Abcd + "00\n", ""},
		{"trailing text ignored", "#sha256 " + sha256Abcd + " x\n", ""},
		{"exact", "#sha256 " + sha256Abcd + "\n", sha256Abcd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte("\"./a\" 4 " + sha1Abcd + "\n" + tt.attr))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := m.Records()[0].SHA256; got != tt.wantSHA256 {
				t.Errorf("SHA256 = %q, want %q", got, tt.wantSHA256)
			}
		})
	}
}

func TestParse_InvalidChecksumKeepsRecord(t *testing.T) {
	m, err := Parse([]byte("\"./a\" 4 abc123\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	rec := m.Records()[0]
	if rec.Valid() {
		t.Errorf("record %+v should not be valid", rec)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"blank line", "\n"},
		{"missing newline", "\"./a\" 4 " + sha1Abcd},
		{"unterminated comment", "# no newline"},
		{"forbidden filename byte", "\"./a|b\" 4 " + sha1Abcd + "\n"},
		{"empty filename", "\"\" 4 " + sha1Abcd + "\n"},
		{"size not numeric", "\"./a\" x " + sha1Abcd + "\n"},
		{"size overflow", "\"./a\" 99999999999999999999 " + sha1Abcd + "\n"},
		{"checksum not hex", "\"./a\" 4 xyz\n"},
		{"checksum too long", "\"./a\" 4 " + strings.Repeat("a", MaxChecksumLength+1) + "\n"},
		{"double space", "\"./a\"  4 " + sha1Abcd + "\n"},
		{"residual text", "\"./a\" 4 " + sha1Abcd + "\ngarbage\n"},
		{"carriage return", "\"./a\" 4 " + sha1Abcd + "\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Parse() error = %v, want *ParseError", err)
			}
			var se *grammar.SyntaxError
			if tt.name != "size overflow" && !errors.As(err, &se) {
				t.Errorf("Parse() error = %v, want a wrapped *grammar.SyntaxError", err)
			}
		})
	}
}
