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

// Package signedfile reads and writes the signed container format: an opaque
// text body followed by one or more signatures with embedded certificates.
//
// A file may carry extended signatures, written inline as
//
//	#sig <algorithm> <base64 signature>
//	#... cert <base64 DER certificate>
//
// a legacy SHA1 trailer,
//
//	-----BEGIN SIGNATURE-----
//	<base64 signature lines>
//	-----END SIGNATURE-----
//	-----BEGIN CERTIFICATE-----
//	...
//	-----END CERTIFICATE-----
//
// or both. Each signature records how many bytes of the body it covers.
package signedfile

import (
	"errors"
	"fmt"

	hashengines "github.com/versig/versig/pkg/hashing/engines"
)

const (
	BeginSignature   = "-----BEGIN SIGNATURE-----\n"
	EndSignature     = "-----END SIGNATURE-----\n"
	BeginCertificate = "-----BEGIN CERTIFICATE-----\n"
	EndCertificate   = "-----END CERTIFICATE-----\n"

	ExtendedSignaturePrefix   = "#sig "
	ExtendedCertificatePrefix = "#... cert "

	// LegacyAlgorithm is the digest used by trailer signatures.
	LegacyAlgorithm = hashengines.SHA1
)

// Limits applied while parsing.
const (
	MaxLineLength      = 64 * 1024
	MaxSignatureLength = 16 * 1024
	MaxCertificateSize = 64 * 1024
	MaxCertificates    = 16
)

// ErrMissingSignature is returned when a file carries no usable signature.
var ErrMissingSignature = errors.New("no signature found")

// FormatError describes input that does not follow the container grammar.
type FormatError struct {
	Line int
	Msg  string
	Err  error
}

func (e *FormatError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Line > 0 {
		return fmt.Sprintf("malformed signed file at line %d: %s", e.Line, msg)
	}
	return "malformed signed file: " + msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Signature is one signature found in a container.
type Signature struct {
	Algorithm hashengines.Algorithm

	// BodyLength is the number of leading body bytes the signature covers.
	BodyLength int

	Value []byte

	// SigningCertificate is PEM encoded.
	SigningCertificate string

	// CertificateChain holds the remaining certificates in file order, PEM
	// encoded. They are only used as an intermediate pool for x509
	// verification, which builds the path itself, so the order carries no
	// meaning and is not reversed.
	CertificateChain []string

	// Extended is false for the legacy trailer signature.
	Extended bool
}

// Covered returns the prefix of body that s signs.
func (s *Signature) Covered(body []byte) ([]byte, error) {
	if s.BodyLength < 0 || s.BodyLength > len(body) {
		return nil, fmt.Errorf("signature covers %d bytes but body has %d", s.BodyLength, len(body))
	}
	return body[:s.BodyLength], nil
}

// Container is a parsed signed file.
type Container struct {
	Body       []byte
	Signatures []*Signature
}

// Algorithms returns the set of algorithms used by the container's signatures.
func (c *Container) Algorithms() hashengines.Algorithm {
	var set hashengines.Algorithm
	for _, s := range c.Signatures {
		set |= s.Algorithm
	}
	return set
}
