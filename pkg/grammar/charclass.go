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

// CharClass is a set of bytes.
type CharClass struct {
	name string
	set  [256]bool
}

// NewCharClass builds a class from explicit bytes and inclusive ranges given
// as pairs, e.g. NewCharClass("hex", "", '0', '9', 'a', 'f').
func NewCharClass(name, members string, ranges ...byte) *CharClass {
	c := &CharClass{name: name}
	for i := 0; i < len(members); i++ {
		c.set[members[i]] = true
	}
	for i := 0; i+1 < len(ranges); i += 2 {
		for b := int(ranges[i]); b <= int(ranges[i+1]); b++ {
			c.set[b] = true
		}
	}
	return c
}

// Contains reports whether b is in the class.
func (c *CharClass) Contains(b byte) bool {
	return c.set[b]
}

// Name returns the class name used in error messages.
func (c *CharClass) Name() string {
	return c.name
}

// Without returns a copy of c with the given bytes removed.
func (c *CharClass) Without(name, members string) *CharClass {
	out := &CharClass{name: name, set: c.set}
	for i := 0; i < len(members); i++ {
		out.set[members[i]] = false
	}
	return out
}

var (
	// Base64 is the standard base64 alphabet including padding.
	Base64 = NewCharClass("base64", "+/=", 'A', 'Z', 'a', 'z', '0', '9')

	// Hex accepts either case.
	Hex = NewCharClass("hex", "", '0', '9', 'a', 'f', 'A', 'F')

	// Digits are ASCII decimal digits.
	Digits = NewCharClass("digit", "", '0', '9')

	// AlgorithmName matches digest names such as "sha384" or "SHA-256".
	AlgorithmName = NewCharClass("algorithm", "-", 'a', 'z', 'A', 'Z', '0', '9')

	// Filename is every byte from space upwards except the ones that cannot
	// appear in an installable path: quote, colon, pipe, wildcards, angle
	// brackets and DEL. Bytes >= 0x80 are allowed.
	Filename = NewCharClass("filename", "", 0x20, 0xff).Without("filename", "\":|*?<>\x7f")

	// CommentText is anything but newline.
	CommentText = NewCharClass("comment", "\t", 0x20, 0xff)
)
