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

// Package grammar provides the forward-only byte matching primitives used to
// parse signed files and manifest bodies.
//
// Every match is byte-wise. Filenames can be arbitrary non-UTF-8 sequences
// and come back exactly as they appeared in the input. Every run is capped
// so that adversarial input fails fast instead of growing without bound.
package grammar

import (
	"bytes"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
)

// SyntaxError reports where and why the input stopped matching.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at byte %d: %s", e.Offset, e.Msg)
}

// Scanner walks a byte slice front to back. It never moves backwards.
type Scanner struct {
	s     cryptobyte.String
	total int
}

// NewScanner returns a Scanner positioned at the start of data.
func NewScanner(data []byte) *Scanner {
	return &Scanner{s: cryptobyte.String(data), total: len(data)}
}

// Offset is the number of bytes consumed so far.
func (sc *Scanner) Offset() int {
	return sc.total - len(sc.s)
}

// Remaining is the number of unconsumed bytes.
func (sc *Scanner) Remaining() int {
	return len(sc.s)
}

// Empty reports whether all input has been consumed.
func (sc *Scanner) Empty() bool {
	return sc.s.Empty()
}

func (sc *Scanner) errorf(format string, args ...interface{}) error {
	return &SyntaxError{Offset: sc.Offset(), Msg: fmt.Sprintf(format, args...)}
}

// HasPrefix reports whether the unconsumed input starts with token.
func (sc *Scanner) HasPrefix(token string) bool {
	return bytes.HasPrefix(sc.s, []byte(token))
}

// Peek returns the next byte without consuming it.
func (sc *Scanner) Peek() (byte, bool) {
	if sc.s.Empty() {
		return 0, false
	}
	return sc.s[0], true
}

// AcceptLiteral consumes token if the input starts with it.
func (sc *Scanner) AcceptLiteral(token string) bool {
	if !sc.HasPrefix(token) {
		return false
	}
	return sc.s.Skip(len(token))
}

// ExpectLiteral consumes token or fails.
func (sc *Scanner) ExpectLiteral(token string) error {
	if !sc.AcceptLiteral(token) {
		return sc.errorf("expected %q", token)
	}
	return nil
}

// MatchCharClass consumes the longest run of bytes in class. The run must be
// at least min bytes; a run longer than max is an error rather than being
// split, so the next match never starts in the middle of a class run.
func (sc *Scanner) MatchCharClass(class *CharClass, min, max int) ([]byte, error) {
	n := 0
	for n < len(sc.s) && class.Contains(sc.s[n]) {
		n++
		if n > max {
			return nil, sc.errorf("%s run longer than %d bytes", class.name, max)
		}
	}
	if n < min {
		return nil, sc.errorf("expected at least %d %s bytes, found %d", min, class.name, n)
	}
	var out []byte
	if !sc.s.ReadBytes(&out, n) {
		return nil, sc.errorf("short read")
	}
	return out, nil
}

// ReadUntil consumes input up to and including delimiter and returns the
// bytes before it. At most max bytes may precede the delimiter.
func (sc *Scanner) ReadUntil(delimiter string, max int) ([]byte, error) {
	if delimiter == "" {
		return nil, sc.errorf("empty delimiter")
	}
	window := sc.s
	if len(window) > max+len(delimiter) {
		window = window[:max+len(delimiter)]
	}
	idx := bytes.Index(window, []byte(delimiter))
	if idx < 0 {
		if len(sc.s) > max+len(delimiter) {
			return nil, sc.errorf("no %q within %d bytes", delimiter, max)
		}
		return nil, sc.errorf("unterminated input, expected %q", delimiter)
	}
	var out []byte
	if !sc.s.ReadBytes(&out, idx) || !sc.s.Skip(len(delimiter)) {
		return nil, sc.errorf("short read")
	}
	return out, nil
}

// ReadLine consumes one '\n'-terminated line and returns it including the
// newline. A final line without newline is an error.
func (sc *Scanner) ReadLine(max int) ([]byte, error) {
	start := sc.s
	content, err := sc.ReadUntil("\n", max)
	if err != nil {
		return nil, err
	}
	return start[:len(content)+1], nil
}

// ExpectEnd fails unless all input has been consumed.
func (sc *Scanner) ExpectEnd() error {
	if !sc.s.Empty() {
		return sc.errorf("%d unexpected trailing bytes", len(sc.s))
	}
	return nil
}
