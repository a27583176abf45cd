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
	"fmt"
	"io"
	"os"

	"github.com/sigstore/sigstore/pkg/cryptoutils"

	"github.com/versig/versig/pkg/grammar"
	hashengines "github.com/versig/versig/pkg/hashing/engines"
)

// MaxFileSize bounds how much ReadFile will load.
const MaxFileSize = 256 << 20

type parseState int

const (
	stateBody parseState = iota
	stateExtendedSignatures
	stateTrailerSignature
	stateTrailerCertificate
)

func (s parseState) String() string {
	switch s {
	case stateBody:
		return "body"
	case stateExtendedSignatures:
		return "extended signatures"
	case stateTrailerSignature:
		return "trailer signature"
	case stateTrailerCertificate:
		return "trailer certificate"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type parser struct {
	sc      *grammar.Scanner
	data    []byte
	state   parseState
	line    int
	bodyLen int

	current    *Signature
	trailerB64 bytes.Buffer
	signatures []*Signature
}

// ReadFile loads and parses a signed file from disk.
func ReadFile(path string) (*Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(data) > MaxFileSize {
		return nil, &FormatError{Msg: fmt.Sprintf("file larger than %d bytes", MaxFileSize)}
	}
	return Parse(data)
}

// Parse splits data into body and signatures.
//
// The returned error is a *FormatError for grammar violations and wraps
// ErrMissingSignature when the file is well formed but unsigned.
func Parse(data []byte) (*Container, error) {
	p := &parser{sc: grammar.NewScanner(data), data: data}
	if err := p.run(); err != nil {
		return nil, err
	}

	if len(p.signatures) == 0 {
		return nil, ErrMissingSignature
	}
	for _, s := range p.signatures {
		if s.BodyLength > p.bodyLen {
			return nil, &FormatError{Msg: fmt.Sprintf("signature covers %d bytes but body has %d", s.BodyLength, p.bodyLen)}
		}
	}
	return &Container{
		Body:       bytes.Clone(data[:p.bodyLen]),
		Signatures: p.signatures,
	}, nil
}

func (p *parser) errorf(cause error, format string, args ...interface{}) error {
	return &FormatError{Line: p.line, Msg: fmt.Sprintf(format, args...), Err: cause}
}

func (p *parser) run() error {
	for {
		var (
			done bool
			err  error
		)
		switch p.state {
		case stateBody, stateExtendedSignatures:
			done, err = p.bodyLine()
		case stateTrailerSignature:
			err = p.trailerSignatureLine()
		case stateTrailerCertificate:
			done, err = p.trailerCertificate()
		}
		if err != nil {
			return err
		}
		if done {
			return p.finalize()
		}
	}
}

// bodyLine consumes one line of body text, watching for signature lines.
func (p *parser) bodyLine() (bool, error) {
	if p.sc.Empty() {
		return true, nil
	}

	start := p.sc.Offset()
	if p.sc.AcceptLiteral(BeginSignature) {
		p.line++
		if err := p.finalize(); err != nil {
			return false, err
		}
		p.bodyLen = start
		p.current = &Signature{Algorithm: LegacyAlgorithm, BodyLength: start}
		p.state = stateTrailerSignature
		return false, nil
	}

	line, err := p.sc.ReadLine(MaxLineLength)
	if err != nil {
		if p.state == stateBody && p.sc.Remaining() <= MaxLineLength {
			// Unterminated last line of an unsigned file.
			p.bodyLen = len(p.data)
			return true, nil
		}
		return false, p.errorf(err, "reading %s line", p.state)
	}
	p.line++
	p.bodyLen = p.sc.Offset()

	if alg, value, ok, err := parseExtendedSignature(line); ok {
		if err != nil {
			return false, p.errorf(err, "bad extended signature")
		}
		if err := p.finalize(); err != nil {
			return false, err
		}
		if alg != hashengines.AlgorithmNone {
			p.current = &Signature{Algorithm: alg, BodyLength: start, Value: value, Extended: true}
		}
		p.state = stateExtendedSignatures
		return false, nil
	}

	if p.state == stateExtendedSignatures {
		if der, ok, err := parseExtendedCertificate(line); ok {
			if err != nil {
				return false, p.errorf(err, "bad extended certificate")
			}
			if p.current != nil {
				if err := p.attach(string(cryptoutils.PEMEncode(cryptoutils.CertificatePEMType, der))); err != nil {
					return false, err
				}
			}
		}
	}
	return false, nil
}

func (p *parser) trailerSignatureLine() error {
	if p.sc.AcceptLiteral(EndSignature) {
		p.line++
		if p.trailerB64.Len() == 0 {
			return p.errorf(nil, "empty signature block")
		}
		value, err := base64.StdEncoding.DecodeString(p.trailerB64.String())
		if err != nil {
			return p.errorf(err, "decoding trailer signature")
		}
		p.current.Value = value
		p.state = stateTrailerCertificate
		return nil
	}

	chunk, err := p.sc.MatchCharClass(grammar.Base64, 1, MaxLineLength)
	if err != nil {
		return p.errorf(err, "reading signature block")
	}
	if err := p.sc.ExpectLiteral("\n"); err != nil {
		return p.errorf(err, "reading signature block")
	}
	p.line++
	if p.trailerB64.Len()+len(chunk) > MaxSignatureLength {
		return p.errorf(nil, "signature block longer than %d bytes", MaxSignatureLength)
	}
	p.trailerB64.Write(chunk)
	return nil
}

// trailerCertificate consumes one PEM certificate block. Nothing but
// certificate blocks may follow the signature block.
func (p *parser) trailerCertificate() (bool, error) {
	if p.sc.Empty() {
		return true, nil
	}

	start := p.sc.Offset()
	if err := p.sc.ExpectLiteral(BeginCertificate); err != nil {
		return false, p.errorf(err, "unexpected data after signature")
	}
	p.line++
	for !p.sc.AcceptLiteral(EndCertificate) {
		if _, err := p.sc.MatchCharClass(grammar.Base64, 1, MaxLineLength); err != nil {
			return false, p.errorf(err, "reading certificate block")
		}
		if err := p.sc.ExpectLiteral("\n"); err != nil {
			return false, p.errorf(err, "reading certificate block")
		}
		p.line++
		if p.sc.Offset()-start > MaxCertificateSize {
			return false, p.errorf(nil, "certificate block longer than %d bytes", MaxCertificateSize)
		}
	}
	p.line++
	return false, p.attach(string(p.data[start:p.sc.Offset()]))
}

func (p *parser) attach(pemCert string) error {
	s := p.current
	if s.SigningCertificate == "" {
		s.SigningCertificate = pemCert
		return nil
	}
	if len(s.CertificateChain)+1 >= MaxCertificates {
		return p.errorf(nil, "more than %d certificates for one signature", MaxCertificates)
	}
	s.CertificateChain = append(s.CertificateChain, pemCert)
	return nil
}

func (p *parser) finalize() error {
	s := p.current
	if s == nil {
		return nil
	}
	p.current = nil
	if s.SigningCertificate == "" {
		return p.errorf(nil, "%s signature has no certificate", s.Algorithm)
	}
	p.signatures = append(p.signatures, s)
	return nil
}

// parseExtendedSignature matches "#sig <algorithm> <base64>\n". ok is false
// when the line is ordinary body text. An unknown algorithm yields
// AlgorithmNone with ok set.
func parseExtendedSignature(line []byte) (alg hashengines.Algorithm, value []byte, ok bool, err error) {
	sc := grammar.NewScanner(line)
	if !sc.AcceptLiteral(ExtendedSignaturePrefix) {
		return 0, nil, false, nil
	}
	name, err := sc.MatchCharClass(grammar.AlgorithmName, 1, 16)
	if err != nil || !sc.AcceptLiteral(" ") {
		return 0, nil, false, nil
	}
	b64, err := sc.MatchCharClass(grammar.Base64, 1, MaxSignatureLength)
	if err != nil || !sc.AcceptLiteral("\n") || !sc.Empty() {
		return 0, nil, false, nil
	}

	alg, err = hashengines.ParseAlgorithm(string(name))
	if err != nil {
		return hashengines.AlgorithmNone, nil, true, nil
	}
	value, err = base64.StdEncoding.DecodeString(string(b64))
	if err != nil {
		return alg, nil, true, err
	}
	return alg, value, true, nil
}

// parseExtendedCertificate matches "#... cert <base64 DER>\n".
func parseExtendedCertificate(line []byte) ([]byte, bool, error) {
	sc := grammar.NewScanner(line)
	if !sc.AcceptLiteral(ExtendedCertificatePrefix) {
		return nil, false, nil
	}
	b64, err := sc.MatchCharClass(grammar.Base64, 1, MaxCertificateSize)
	if err != nil || !sc.AcceptLiteral("\n") || !sc.Empty() {
		return nil, false, nil
	}
	der, err := base64.StdEncoding.DecodeString(string(b64))
	if err != nil {
		return nil, true, err
	}
	return der, true, nil
}
