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

// Package testpki builds throwaway certificate hierarchies for tests.
package testpki

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sigstore/sigstore/pkg/cryptoutils"
)

var serial atomic.Int64

// Authority is a certificate together with its private key.
type Authority struct {
	Cert *x509.Certificate
	Key  crypto.Signer
}

// Option adjusts a certificate template.
type Option func(*x509.Certificate)

// ValidBetween overrides the default validity window of one hour either side
// of now.
func ValidBetween(notBefore, notAfter time.Time) Option {
	return func(c *x509.Certificate) {
		c.NotBefore = notBefore
		c.NotAfter = notAfter
	}
}

// KeyType selects the key algorithm for new certificates.
type KeyType int

const (
	ECDSA KeyType = iota
	RSA
)

func newKey(tb testing.TB, kt KeyType) crypto.Signer {
	tb.Helper()
	var (
		key crypto.Signer
		err error
	)
	switch kt {
	case RSA:
		key, err = rsa.GenerateKey(rand.Reader, 2048)
	default:
		key, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	}
	if err != nil {
		tb.Fatalf("failed to generate key: %v", err)
	}
	return key
}

func template(name string, isCA bool, opts []Option) *x509.Certificate {
	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(serial.Add(1)),
		Subject:      pkix.Name{CommonName: name, Organization: []string{"versig test"}},
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageCodeSigning},
	}
	if isCA {
		tmpl.IsCA = true
		tmpl.BasicConstraintsValid = true
		tmpl.KeyUsage = x509.KeyUsageCertSign | x509.KeyUsageCRLSign
		tmpl.ExtKeyUsage = nil
	}
	for _, opt := range opts {
		opt(tmpl)
	}
	return tmpl
}

func create(tb testing.TB, tmpl, parent *x509.Certificate, pub crypto.PublicKey, signer crypto.Signer) *x509.Certificate {
	tb.Helper()
	der, err := x509.CreateCertificate(rand.Reader, tmpl, parent, pub, signer)
	if err != nil {
		tb.Fatalf("failed to create certificate %q: %v", tmpl.Subject.CommonName, err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		tb.Fatalf("failed to parse certificate %q: %v", tmpl.Subject.CommonName, err)
	}
	return cert
}

// NewRoot creates a self-signed root CA.
func NewRoot(tb testing.TB, name string, opts ...Option) *Authority {
	tb.Helper()
	return NewRootWithKey(tb, name, ECDSA, opts...)
}

// NewRootWithKey creates a self-signed root CA with the given key type.
func NewRootWithKey(tb testing.TB, name string, kt KeyType, opts ...Option) *Authority {
	tb.Helper()
	key := newKey(tb, kt)
	tmpl := template(name, true, opts)
	return &Authority{Cert: create(tb, tmpl, tmpl, key.Public(), key), Key: key}
}

// Intermediate issues a subordinate CA.
func (a *Authority) Intermediate(tb testing.TB, name string, opts ...Option) *Authority {
	tb.Helper()
	key := newKey(tb, ECDSA)
	return &Authority{Cert: create(tb, template(name, true, opts), a.Cert, key.Public(), a.Key), Key: key}
}

// Leaf issues an end-entity signing certificate.
func (a *Authority) Leaf(tb testing.TB, name string, opts ...Option) *Authority {
	tb.Helper()
	return a.LeafWithKey(tb, name, ECDSA, opts...)
}

// LeafWithKey issues an end-entity signing certificate with the given key type.
func (a *Authority) LeafWithKey(tb testing.TB, name string, kt KeyType, opts ...Option) *Authority {
	tb.Helper()
	key := newKey(tb, kt)
	return &Authority{Cert: create(tb, template(name, false, opts), a.Cert, key.Public(), a.Key), Key: key}
}

// PEM returns the certificate PEM encoded.
func (a *Authority) PEM(tb testing.TB) []byte {
	tb.Helper()
	out, err := cryptoutils.MarshalCertificateToPEM(a.Cert)
	if err != nil {
		tb.Fatalf("failed to encode certificate: %v", err)
	}
	return out
}

// CRL returns a PEM encoded revocation list signed by a that revokes the
// given certificates.
func (a *Authority) CRL(tb testing.TB, revoked ...*x509.Certificate) []byte {
	tb.Helper()
	now := time.Now()
	var entries []x509.RevocationListEntry
	for _, c := range revoked {
		entries = append(entries, x509.RevocationListEntry{SerialNumber: c.SerialNumber, RevocationTime: now.Add(-time.Minute)})
	}
	der, err := x509.CreateRevocationList(rand.Reader, &x509.RevocationList{
		Number:                    big.NewInt(serial.Add(1)),
		ThisUpdate:                now.Add(-time.Hour),
		NextUpdate:                now.Add(time.Hour),
		RevokedCertificateEntries: entries,
	}, a.Cert, a.Key)
	if err != nil {
		tb.Fatalf("failed to create CRL: %v", err)
	}
	return cryptoutils.PEMEncode("X509 CRL", der)
}

// WriteFile writes data to path, failing the test on error.
func WriteFile(tb testing.TB, path string, data []byte) {
	tb.Helper()
	if err := os.WriteFile(path, data, 0o600); err != nil {
		tb.Fatalf("failed to write %s: %v", path, err)
	}
}
