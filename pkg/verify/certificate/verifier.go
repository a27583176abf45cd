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

// Package certificate verifies signed-file signatures against their
// embedded certificates and validates those certificates against a set of
// candidate roots.
package certificate

import (
	"crypto/sha256"
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"github.com/sigstore/sigstore/pkg/cryptoutils"

	"github.com/versig/versig/pkg/logging"
	"github.com/versig/versig/pkg/signedfile"
	"github.com/versig/versig/pkg/utils"
)

var (
	// ErrBadSignature means the signature does not match its certificate.
	ErrBadSignature = errors.New("bad signature")

	// ErrBadCertificate means no root bundle validated the chain.
	ErrBadCertificate = errors.New("certificate chain not trusted by any root")
)

// CryptoError is a failure of the cryptographic machinery itself, such as an
// undecodable certificate or an unsupported key, as opposed to a signature
// or chain that was checked and found wrong.
type CryptoError struct {
	Op  string
	Err error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}

// ChainError is returned by VerifyChain when every root failed.
type ChainError struct {
	Diagnostics *Diagnostics
}

func (e *ChainError) Error() string {
	if e.Diagnostics.Len() == 0 {
		return ErrBadCertificate.Error()
	}
	return fmt.Sprintf("%v: %s", ErrBadCertificate, e.Diagnostics)
}

func (e *ChainError) Unwrap() error {
	return ErrBadCertificate
}

// VerifierConfig holds configuration for creating a Verifier.
type VerifierConfig struct {
	Roots []RootBundle

	// VerifyTime pins the time used for certificate validity checks. The
	// zero value means the current time.
	VerifyTime time.Time

	// CheckCRL rejects chains containing a certificate revoked by the CRL
	// of the root under trial.
	CheckCRL bool

	// LogFingerprints logs SHA256 fingerprints of every certificate
	// examined at debug level.
	LogFingerprints bool

	Logger logging.Logger
}

// Verifier checks signatures and certificate chains.
type Verifier struct {
	config VerifierConfig
	logger logging.Logger
}

// NewVerifier creates a Verifier. At least one root is required.
func NewVerifier(cfg VerifierConfig) (*Verifier, error) {
	if len(cfg.Roots) == 0 {
		return nil, fmt.Errorf("at least one root certificate is required")
	}
	logger := logging.EnsureLogger(cfg.Logger)
	if cfg.LogFingerprints {
		for _, root := range cfg.Roots {
			logCertificateFingerprint(logger, "root", root.Certificate)
		}
	}
	return &Verifier{config: cfg, logger: logger}, nil
}

// Roots returns the configured root bundles.
func (v *Verifier) Roots() []RootBundle {
	return v.config.Roots
}

// VerifySignature checks sig against the first sig.BodyLength bytes of body
// using the public key of the signing certificate.
func (v *Verifier) VerifySignature(body []byte, sig *signedfile.Signature) error {
	covered, err := sig.Covered(body)
	if err != nil {
		return &signedfile.FormatError{Msg: err.Error()}
	}
	leaf, err := parseCertificate(sig.SigningCertificate)
	if err != nil {
		return &CryptoError{Op: "decoding signing certificate", Err: err}
	}
	if v.config.LogFingerprints {
		logCertificateFingerprint(v.logger, "signer", leaf)
	}

	if err := utils.VerifySignatureWithHash(leaf.PublicKey, sig.Algorithm, covered, sig.Value); err != nil {
		if errors.Is(err, utils.ErrInvalidSignature) {
			return fmt.Errorf("%w: %s signature over %d bytes: %v", ErrBadSignature, sig.Algorithm, len(covered), err)
		}
		return &CryptoError{Op: "verifying " + sig.Algorithm.String() + " signature", Err: err}
	}
	return nil
}

// VerifyChain validates the signing certificate of sig through its chain
// against each root in turn. The first root that validates wins. Failed
// trials are recorded in diag, which may be nil.
func (v *Verifier) VerifyChain(sig *signedfile.Signature, diag *Diagnostics) error {
	leaf, err := parseCertificate(sig.SigningCertificate)
	if err != nil {
		return &CryptoError{Op: "decoding signing certificate", Err: err}
	}
	intermediates := x509.NewCertPool()
	for i, p := range sig.CertificateChain {
		cert, err := parseCertificate(p)
		if err != nil {
			return &CryptoError{Op: fmt.Sprintf("decoding chain certificate %d", i+1), Err: err}
		}
		if v.config.LogFingerprints {
			logCertificateFingerprint(v.logger, "chain", cert)
		}
		intermediates.AddCert(cert)
	}
	if err := validateSigningUsage(leaf); err != nil {
		diag.Add(leaf.Subject.String(), err.Error())
		return &ChainError{Diagnostics: ensureDiagnostics(diag)}
	}

	for _, root := range v.config.Roots {
		pool := x509.NewCertPool()
		pool.AddCert(root.Certificate)
		chains, err := leaf.Verify(x509.VerifyOptions{
			Roots:         pool,
			Intermediates: intermediates,
			CurrentTime:   v.config.VerifyTime,
			KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
		})
		if err != nil {
			v.logger.Debug("root %s rejected chain: %v", root.Name, err)
			diag.Add(root.Name, err.Error())
			continue
		}
		if v.config.CheckCRL && root.CRL != nil {
			if revoked := findRevoked(root.CRL, chains); revoked != nil {
				reason := fmt.Sprintf("certificate %s (serial %s) is revoked", revoked.Subject, revoked.SerialNumber)
				v.logger.Debug("root %s: %s", root.Name, reason)
				diag.Add(root.Name, reason)
				continue
			}
		}
		if diag != nil {
			diag.Root = root.Name
		}
		v.logger.Debug("chain validated by root %s", root.Name)
		return nil
	}
	return &ChainError{Diagnostics: ensureDiagnostics(diag)}
}

func ensureDiagnostics(d *Diagnostics) *Diagnostics {
	if d == nil {
		return &Diagnostics{}
	}
	return d
}

// findRevoked returns the first certificate of any chain listed in crl.
func findRevoked(crl *x509.RevocationList, chains [][]*x509.Certificate) *x509.Certificate {
	for _, chain := range chains {
		for _, cert := range chain {
			if cert.CheckSignatureFrom(cert) == nil {
				continue
			}
			for _, entry := range crl.RevokedCertificateEntries {
				if entry.SerialNumber != nil && entry.SerialNumber.Cmp(cert.SerialNumber) == 0 {
					return cert
				}
			}
		}
	}
	return nil
}

// validateSigningUsage checks if the certificate can be used for signing.
func validateSigningUsage(cert *x509.Certificate) error {
	if cert.KeyUsage == 0 || cert.KeyUsage&x509.KeyUsageDigitalSignature != 0 {
		return nil
	}
	for _, usage := range cert.ExtKeyUsage {
		if usage == x509.ExtKeyUsageCodeSigning {
			return nil
		}
	}
	return fmt.Errorf("signing certificate cannot be used for signing (missing DigitalSignature KeyUsage or CodeSigning ExtKeyUsage)")
}

func parseCertificate(pemText string) (*x509.Certificate, error) {
	certs, err := cryptoutils.UnmarshalCertificatesFromPEM([]byte(pemText))
	if err != nil {
		return nil, err
	}
	if len(certs) != 1 {
		return nil, fmt.Errorf("expected 1 certificate, found %d", len(certs))
	}
	return certs[0], nil
}

// logCertificateFingerprint logs the SHA256 fingerprint of a certificate.
func logCertificateFingerprint(logger logging.Logger, location string, cert *x509.Certificate) {
	fingerprint := sha256.Sum256(cert.Raw)
	logger.Debug("[%8s] %s SHA256 Fingerprint: %X", location, cert.Subject.CommonName, fingerprint)
}
