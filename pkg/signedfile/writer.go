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
	"crypto"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/sigstore/sigstore/pkg/cryptoutils"

	hashengines "github.com/versig/versig/pkg/hashing/engines"
	"github.com/versig/versig/pkg/utils"
)

// trailerLineWidth matches the PEM line width.
const trailerLineWidth = 64

// ErrWriterClosed is returned by writes after the trailer has been written.
var ErrWriterClosed = errors.New("signed file writer closed")

// Writer produces signed files that Parse accepts.
//
// Body text is written first. Extended signatures may be added at any point
// and cover everything written before them, including earlier signatures.
// An optional legacy trailer closes the file.
type Writer struct {
	w        io.Writer
	covered  bytes.Buffer
	extended bool
	closed   bool
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Covered returns the bytes a signature added now would cover.
func (w *Writer) Covered() []byte {
	return w.covered.Bytes()
}

func (w *Writer) emit(p []byte) error {
	if _, err := w.w.Write(p); err != nil {
		return err
	}
	w.covered.Write(p)
	return nil
}

// WriteBody appends body text. p must consist of complete lines, none of
// which may be mistaken for signature markup.
func (w *Writer) WriteBody(p []byte) error {
	if w.closed {
		return ErrWriterClosed
	}
	if len(p) == 0 {
		return nil
	}
	if p[len(p)-1] != '\n' {
		return fmt.Errorf("body text must end with a newline")
	}
	for _, line := range bytes.SplitAfter(p, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		if len(line) > MaxLineLength {
			return fmt.Errorf("body line longer than %d bytes", MaxLineLength)
		}
		if string(line) == BeginSignature {
			return fmt.Errorf("body line is a signature marker")
		}
		if _, _, ok, _ := parseExtendedSignature(line); ok {
			return fmt.Errorf("body line %q looks like an extended signature", line)
		}
		if w.extended && bytes.HasPrefix(line, []byte(ExtendedCertificatePrefix)) {
			return fmt.Errorf("body line %q looks like an extended certificate", line)
		}
	}
	return w.emit(p)
}

// AddSignature writes an extended signature with its certificates. The first
// certificate is the signing certificate. value must sign Covered().
func (w *Writer) AddSignature(alg hashengines.Algorithm, value []byte, certs ...*x509.Certificate) error {
	if w.closed {
		return ErrWriterClosed
	}
	if !alg.IsSingle() {
		return fmt.Errorf("extended signature needs a single algorithm, got %s", alg)
	}
	if len(certs) == 0 {
		return fmt.Errorf("extended signature needs a signing certificate")
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s%s %s\n", ExtendedSignaturePrefix, alg, base64.StdEncoding.EncodeToString(value))
	for _, cert := range certs {
		fmt.Fprintf(&buf, "%s%s\n", ExtendedCertificatePrefix, base64.StdEncoding.EncodeToString(cert.Raw))
	}
	if err := w.emit(buf.Bytes()); err != nil {
		return err
	}
	w.extended = true
	return nil
}

// Sign signs Covered() with signer and adds the result as an extended
// signature.
func (w *Writer) Sign(signer crypto.Signer, alg hashengines.Algorithm, certs ...*x509.Certificate) error {
	value, err := utils.SignWithHash(signer, alg, w.Covered())
	if err != nil {
		return err
	}
	return w.AddSignature(alg, value, certs...)
}

// WriteTrailer writes the legacy SHA1 signature block and closes the Writer.
func (w *Writer) WriteTrailer(value []byte, certs ...*x509.Certificate) error {
	if w.closed {
		return ErrWriterClosed
	}
	if len(value) == 0 || len(certs) == 0 {
		return fmt.Errorf("trailer needs a signature and a signing certificate")
	}

	var buf bytes.Buffer
	buf.WriteString(BeginSignature)
	b64 := base64.StdEncoding.EncodeToString(value)
	for len(b64) > 0 {
		n := min(trailerLineWidth, len(b64))
		buf.WriteString(b64[:n])
		buf.WriteByte('\n')
		b64 = b64[n:]
	}
	buf.WriteString(EndSignature)
	for _, cert := range certs {
		pemCert, err := cryptoutils.MarshalCertificateToPEM(cert)
		if err != nil {
			return fmt.Errorf("encoding certificate: %w", err)
		}
		buf.Write(pemCert)
	}

	if _, err := w.w.Write(buf.Bytes()); err != nil {
		return err
	}
	w.closed = true
	return nil
}

// SignTrailer signs Covered() with SHA1 and writes the legacy trailer.
func (w *Writer) SignTrailer(signer crypto.Signer, certs ...*x509.Certificate) error {
	value, err := utils.SignWithHash(signer, LegacyAlgorithm, w.Covered())
	if err != nil {
		return err
	}
	return w.WriteTrailer(value, certs...)
}
