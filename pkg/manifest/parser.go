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
	"strconv"

	"github.com/versig/versig/pkg/grammar"
	hashengines "github.com/versig/versig/pkg/hashing/engines"
)

const (
	sha256Attr = "#sha256 "
	sha384Attr = "#sha384 "
)

// Limits applied while parsing.
const (
	MaxPathLength     = 4096
	MaxSizeDigits     = 20
	MaxChecksumLength = 128
	MaxCommentLength  = 128 * 1024
)

// ParseError reports the manifest line that failed to parse.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("manifest line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse reads a manifest body:
//
//	entry    ::= '"' filename '"' ' ' size ' ' hexchecksum '\n'
//	comment  ::= '#' ... '\n'
//	sha-attr ::= '#sha256 ' hex{64} '\n' | '#sha384 ' hex{96} '\n'
//
// A sha-attr applies to the entry before it and is ignored when there is
// none. Other comments are skipped. The whole body must be consumed.
func Parse(body []byte) (*Manifest, error) {
	sc := grammar.NewScanner(body)
	m := New(nil)
	last := -1

	for line := 1; !sc.Empty(); line++ {
		b, _ := sc.Peek()
		switch b {
		case '"':
			rec, err := parseEntry(sc)
			if err != nil {
				return nil, &ParseError{Line: line, Err: err}
			}
			m.add(rec)
			last = len(m.records) - 1
		case '#':
			text, err := sc.ReadLine(MaxCommentLength)
			if err != nil {
				return nil, &ParseError{Line: line, Err: err}
			}
			if last >= 0 {
				applyAttribute(&m.records[last], text)
			}
		default:
			return nil, &ParseError{Line: line, Err: &grammar.SyntaxError{
				Offset: sc.Offset(),
				Msg:    fmt.Sprintf("expected file entry or comment, found %q", b),
			}}
		}
	}
	return m, nil
}

func parseEntry(sc *grammar.Scanner) (FileRecord, error) {
	var rec FileRecord

	if err := sc.ExpectLiteral(`"`); err != nil {
		return rec, err
	}
	name, err := sc.MatchCharClass(grammar.Filename, 1, MaxPathLength)
	if err != nil {
		return rec, err
	}
	if err := sc.ExpectLiteral(`" `); err != nil {
		return rec, err
	}
	digits, err := sc.MatchCharClass(grammar.Digits, 1, MaxSizeDigits)
	if err != nil {
		return rec, err
	}
	size, err := strconv.ParseUint(string(digits), 10, 64)
	if err != nil {
		return rec, fmt.Errorf("file size %s: %w", digits, err)
	}
	if err := sc.ExpectLiteral(" "); err != nil {
		return rec, err
	}
	sum, err := sc.MatchCharClass(grammar.Hex, 1, MaxChecksumLength)
	if err != nil {
		return rec, err
	}
	if err := sc.ExpectLiteral("\n"); err != nil {
		return rec, err
	}

	rec.Path = string(name)
	rec.Size = size
	// The entry checksum is classified by length; one that fits no
	// algorithm leaves the record without a usable checksum.
	for _, alg := range []hashengines.Algorithm{hashengines.SHA1, hashengines.SHA256, hashengines.SHA384} {
		if len(sum) == alg.HexLen() {
			rec.setChecksum(alg, string(sum))
		}
	}
	return rec, nil
}

func applyAttribute(rec *FileRecord, line []byte) {
	for _, attr := range []struct {
		prefix string
		alg    hashengines.Algorithm
	}{
		{sha256Attr, hashengines.SHA256},
		{sha384Attr, hashengines.SHA384},
	} {
		sc := grammar.NewScanner(line)
		if !sc.AcceptLiteral(attr.prefix) {
			continue
		}
		n := attr.alg.HexLen()
		sum, err := sc.MatchCharClass(grammar.Hex, n, n)
		if err != nil || !sc.AcceptLiteral("\n") || !sc.Empty() {
			return
		}
		rec.setChecksum(attr.alg, string(sum))
		return
	}
}

func validatePath(p string) error {
	if p == "" || len(p) > MaxPathLength {
		return fmt.Errorf("path length %d out of range", len(p))
	}
	for i := 0; i < len(p); i++ {
		if !grammar.Filename.Contains(p[i]) {
			return fmt.Errorf("path %q contains byte %#x", p, p[i])
		}
	}
	return nil
}
