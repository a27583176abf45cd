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

package grammar

import (
	"errors"
	"strings"
	"testing"
)

func TestExpectLiteral(t *testing.T) {
	sc := NewScanner([]byte("-----BEGIN SIGNATURE-----\nrest"))
	if err := sc.ExpectLiteral("-----BEGIN SIGNATURE-----\n"); err != nil {
		t.Fatalf("ExpectLiteral() error = %v", err)
	}
	if sc.Offset() != 26 {
		t.Errorf("Offset() = %d, want 26", sc.Offset())
	}

	err := sc.ExpectLiteral("resT")
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("ExpectLiteral() error = %v, want *SyntaxError", err)
	}
	if se.Offset != 26 {
		t.Errorf("SyntaxError.Offset = %d, want 26", se.Offset)
	}
	if sc.Remaining() != 4 {
		t.Errorf("failed match consumed input, Remaining() = %d", sc.Remaining())
	}
}

func TestMatchCharClass(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		class    *CharClass
		min, max int
		want     string
		wantErr  bool
	}{
		{"hex run", "0aF9 tail", Hex, 1, 40, "0aF9", false},
		{"exact length", "abcd", Hex, 4, 4, "abcd", false},
		{"too long", "abcde", Hex, 1, 4, "", true},
		{"too short", "ab ", Hex, 3, 10, "", true},
		{"empty allowed", " x", Digits, 0, 5, "", false},
		{"base64", "QUJD+/==\n", Base64, 1, 100, "QUJD+/==", false},
		{"filename stops at quote", "./a b\\c\xff\"", Filename, 1, 100, "./a b\\c\xff", false},
		{"filename rejects colon", "a:b", Filename, 1, 100, "a", false},
		{"algorithm", "SHA-384 x", AlgorithmName, 1, 16, "SHA-384", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := NewScanner([]byte(tt.input))
			got, err := sc.MatchCharClass(tt.class, tt.min, tt.max)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MatchCharClass() error = %v, wantErr %v", err, tt.wantErr)
			}
			if string(got) != tt.want {
				t.Errorf("MatchCharClass() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadUntil(t *testing.T) {
	sc := NewScanner([]byte("body line\n-----BEGIN SIGNATURE-----\nX"))
	got, err := sc.ReadUntil("-----BEGIN SIGNATURE-----\n", 100)
	if err != nil {
		t.Fatalf("ReadUntil() error = %v", err)
	}
	if string(got) != "body line\n" {
		t.Errorf("ReadUntil() = %q", got)
	}
	if b, ok := sc.Peek(); !ok || b != 'X' {
		t.Errorf("Peek() = %q, %v", b, ok)
	}

	if _, err := NewScanner([]byte("no delimiter")).ReadUntil("\n", 100); err == nil {
		t.Error("ReadUntil() without delimiter should fail")
	}
	long := []byte(strings.Repeat("a", 50) + "\n")
	if _, err := NewScanner(long).ReadUntil("\n", 10); err == nil {
		t.Error("ReadUntil() should fail past max")
	}
	if _, err := NewScanner([]byte("a\n")).ReadUntil("", 10); err == nil {
		t.Error("ReadUntil() with empty delimiter should fail")
	}
}

func TestReadLine(t *testing.T) {
	sc := NewScanner([]byte("one\ntwo\nthree"))
	for _, want := range []string{"one\n", "two\n"} {
		got, err := sc.ReadLine(64)
		if err != nil {
			t.Fatalf("ReadLine() error = %v", err)
		}
		if string(got) != want {
			t.Errorf("ReadLine() = %q, want %q", got, want)
		}
	}
	if _, err := sc.ReadLine(64); err == nil {
		t.Error("ReadLine() on unterminated line should fail")
	}
}

func TestExpectEnd(t *testing.T) {
	sc := NewScanner([]byte("ab"))
	if err := sc.ExpectEnd(); err == nil {
		t.Error("ExpectEnd() with trailing bytes should fail")
	}
	sc.AcceptLiteral("ab")
	if err := sc.ExpectEnd(); err != nil {
		t.Errorf("ExpectEnd() error = %v", err)
	}
	if _, ok := sc.Peek(); ok {
		t.Error("Peek() on empty scanner returned a byte")
	}
	if !sc.Empty() {
		t.Error("Empty() = false after consuming all input")
	}
}

func TestCharClass(t *testing.T) {
	if Filename.Contains('"') || Filename.Contains('*') || Filename.Contains('\n') {
		t.Error("Filename contains a forbidden byte")
	}
	if !Filename.Contains(0x80) || !Filename.Contains('\\') {
		t.Error("Filename lacks an allowed byte")
	}
	if Base64.Contains('-') || !Base64.Contains('=') {
		t.Error("Base64 membership wrong")
	}
	if CommentText.Contains('\n') || !CommentText.Contains('\t') {
		t.Error("CommentText membership wrong")
	}
	if Hex.Name() != "hex" {
		t.Errorf("Name() = %q", Hex.Name())
	}
}
