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

package signedfile

import (
	"bytes"
	"encoding/base64"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sigstore/sigstore/pkg/cryptoutils"

	"github.com/versig/versig/internal/testpki"
	hashengines "github.com/versig/versig/pkg/hashing/engines"
)

const testBody = "\"./a.txt\" 5 03de6c570bfe24bfc328ccd7ca46b76eadaf4334\n#sha256 " +
	"ff8d9819fc0e12bf0d24892e45987e249a28dce836a85cad60e28eaaa8c6d976\n"

type testChain struct {
	root, intermediate, leaf *testpki.Authority
}

func newTestChain(t *testing.T) testChain {
	t.Helper()
	root := testpki.NewRoot(t, "Test Root")
	inter := root.Intermediate(t, "Test Intermediate")
	return testChain{root: root, intermediate: inter, leaf: inter.Leaf(t, "Test Signer")}
}

func TestParse_LegacyTrailer(t *testing.T) {
	chain := newTestChain(t)

	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteBody([]byte(testBody)); err != nil {
		t.Fatalf("WriteBody() error = %v", err)
	}
	if err := w.SignTrailer(chain.leaf.Key, chain.leaf.Cert, chain.intermediate.Cert); err != nil {
		t.Fatalf("SignTrailer() error = %v", err)
	}

	c, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if string(c.Body) != testBody {
		t.Errorf("Body = %q, want %q", c.Body, testBody)
	}
	if len(c.Signatures) != 1 {
		t.Fatalf("got %d signatures, want 1", len(c.Signatures))
	}
	s := c.Signatures[0]
	if s.Algorithm != hashengines.SHA1 || s.Extended {
		t.Errorf("signature = %s extended=%v, want legacy sha1", s.Algorithm, s.Extended)
	}
	if s.BodyLength != len(testBody) {
		t.Errorf("BodyLength = %d, want %d", s.BodyLength, len(testBody))
	}
	if len(s.CertificateChain) != 1 {
		t.Fatalf("CertificateChain has %d entries, want 1", len(s.CertificateChain))
	}
	certs, err := cryptoutils.UnmarshalCertificatesFromPEM([]byte(s.SigningCertificate))
	if err != nil || len(certs) != 1 || !certs[0].Equal(chain.leaf.Cert) {
		t.Errorf("signing certificate does not round-trip: %v", err)
	}
}

func TestParse_ExtendedAndTrailer(t *testing.T) {
	chain := newTestChain(t)

	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteBody([]byte(testBody)); err != nil {
		t.Fatalf("WriteBody() error = %v", err)
	}
	if err := w.Sign(chain.leaf.Key, hashengines.SHA384, chain.leaf.Cert, chain.intermediate.Cert); err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	afterFirst := len(w.Covered())
	if err := w.Sign(chain.leaf.Key, hashengines.SHA256, chain.leaf.Cert); err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	full := len(w.Covered())
	if err := w.SignTrailer(chain.leaf.Key, chain.leaf.Cert); err != nil {
		t.Fatalf("SignTrailer() error = %v", err)
	}

	c, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(c.Body) != full {
		t.Errorf("len(Body) = %d, want %d", len(c.Body), full)
	}
	if !strings.HasPrefix(string(c.Body), testBody) {
		t.Errorf("Body does not start with the written text")
	}

	want := []struct {
		alg      hashengines.Algorithm
		length   int
		chain    int
		extended bool
	}{
		{hashengines.SHA384, len(testBody), 1, true},
		{hashengines.SHA256, afterFirst, 0, true},
		{hashengines.SHA1, full, 0, false},
	}
	if len(c.Signatures) != len(want) {
		t.Fatalf("got %d signatures, want %d", len(c.Signatures), len(want))
	}
	for i, w := range want {
		s := c.Signatures[i]
		if s.Algorithm != w.alg || s.BodyLength != w.length || len(s.CertificateChain) != w.chain || s.Extended != w.extended {
			t.Errorf("signature %d = {%s %d chain=%d ext=%v}, want {%s %d chain=%d ext=%v}",
				i, s.Algorithm, s.BodyLength, len(s.CertificateChain), s.Extended, w.alg, w.length, w.chain, w.extended)
		}
	}
	if got := c.Algorithms(); got != hashengines.SHA1|hashengines.SHA256|hashengines.SHA384 {
		t.Errorf("Algorithms() = %s", got)
	}
}

func TestParse_BodyRoundTrip(t *testing.T) {
	chain := newTestChain(t)
	bodies := []string{
		"",
		"\n",
		testBody,
		"\"./caf\xe9/\xff\xfe.bin\" 0 da39a3ee5e6b4b0d3255bfef95601890afd80709\n",
		"# comment\n#sig not a signature line\n#... cert ignored before signatures\n",
	}

	for _, body := range bodies {
		t.Run(base64.StdEncoding.EncodeToString([]byte(body)), func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf)
			if err := w.WriteBody([]byte(body)); err != nil {
				t.Fatalf("WriteBody() error = %v", err)
			}
			if err := w.Sign(chain.leaf.Key, hashengines.SHA256, chain.leaf.Cert); err != nil {
				t.Fatalf("Sign() error = %v", err)
			}
			c, err := Parse(buf.Bytes())
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			covered, err := c.Signatures[0].Covered(c.Body)
			if err != nil {
				t.Fatalf("Covered() error = %v", err)
			}
			if string(covered) != body {
				t.Errorf("covered body = %q, want %q", covered, body)
			}
		})
	}
}

func TestParse_MissingSignature(t *testing.T) {
	for _, input := range []string{"", testBody, testBody + "unterminated"} {
		if _, err := Parse([]byte(input)); !errors.Is(err, ErrMissingSignature) {
			t.Errorf("Parse(%q) error = %v, want ErrMissingSignature", input, err)
		}
	}
}

func TestParse_UnknownAlgorithmIgnored(t *testing.T) {
	chain := newTestChain(t)
	cert := "#... cert " + base64.StdEncoding.EncodeToString(chain.leaf.Cert.Raw) + "\n"
	input := testBody +
		"#sig whirlpool QUJD\n" + cert +
		"#sig sha256 QUJD\n" + cert

	c, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(c.Signatures) != 1 || c.Signatures[0].Algorithm != hashengines.SHA256 {
		t.Fatalf("signatures = %+v, want only sha256", c.Signatures)
	}
	if string(c.Signatures[0].Value) != "ABC" {
		t.Errorf("Value = %q", c.Signatures[0].Value)
	}
}

func TestParse_Malformed(t *testing.T) {
	chain := newTestChain(t)

	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteBody([]byte(testBody)); err != nil {
		t.Fatalf("WriteBody() error = %v", err)
	}
	if err := w.SignTrailer(chain.leaf.Key, chain.leaf.Cert); err != nil {
		t.Fatalf("SignTrailer() error = %v", err)
	}
	valid := buf.String()
	pemLeaf := string(chain.leaf.PEM(t))

	tests := []struct {
		name  string
		input string
	}{
		{"trailing stray byte", valid + "x"},
		{"trailing newline", valid + "\n"},
		{"truncated certificate", strings.TrimSuffix(valid, EndCertificate)},
		{"no end marker", testBody + BeginSignature + "QUJD\n"},
		{"empty signature block", testBody + BeginSignature + EndSignature + pemLeaf},
		{"bad trailer base64", testBody + BeginSignature + "QUJ\n" + EndSignature + pemLeaf},
		{"junk in signature block", testBody + BeginSignature + "QU JD\n" + EndSignature + pemLeaf},
		{"trailer without certificate", testBody + BeginSignature + "QUJD\n" + EndSignature},
		{"extended without certificate", testBody + "#sig sha256 QUJD\n"},
		{"extended bad base64", testBody + "#sig sha256 QUJ\n"},
		{"extended bad certificate base64", testBody + "#sig sha256 QUJD\n#... cert QUJ\n"},
		{"unterminated extended line", testBody + "#sig sha256 QUJD\n#... cert " +
			base64.StdEncoding.EncodeToString(chain.leaf.Cert.Raw) + "\nlast"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("Parse() error = %v, want *FormatError", err)
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	chain := newTestChain(t)
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteBody([]byte(testBody)); err != nil {
		t.Fatalf("WriteBody() error = %v", err)
	}
	if err := w.Sign(chain.leaf.Key, hashengines.SHA512, chain.leaf.Cert); err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "manifest.sig")
	testpki.WriteFile(t, path, buf.Bytes())
	c, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if c.Signatures[0].Algorithm != hashengines.SHA512 {
		t.Errorf("Algorithm = %s", c.Signatures[0].Algorithm)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("ReadFile() of a missing file should fail")
	}
}
