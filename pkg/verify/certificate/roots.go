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

package certificate

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sigstore/sigstore/pkg/cryptoutils"
)

const (
	certExt = ".crt"
	crlExt  = ".crl"
)

// RootBundle is one candidate trust anchor. Several roots may share a
// subject name, so bundles are never looked up by name; each is tried.
type RootBundle struct {
	// Name identifies the bundle in diagnostics, usually its file name.
	Name        string
	Certificate *x509.Certificate
	PEM         []byte

	// CRL is optional.
	CRL *x509.RevocationList
}

// LoadRoots reads root bundles from certSource, which is either a PEM file
// (every certificate in it becomes one bundle) or a directory (every *.crt
// becomes one bundle, with a same-stem *.crl attached if present). Directory
// bundles are returned in file name order.
//
// crlSource is optional. When set, the CRL is attached to every bundle whose
// certificate issued it.
func LoadRoots(certSource, crlSource string) ([]RootBundle, error) {
	info, err := os.Stat(certSource)
	if err != nil {
		return nil, fmt.Errorf("certificate source: %w", err)
	}

	var roots []RootBundle
	if info.IsDir() {
		roots, err = loadRootDir(certSource)
	} else {
		roots, err = loadRootFile(certSource)
	}
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("no root certificates found in %s", certSource)
	}

	if crlSource != "" {
		crl, err := readCRL(crlSource)
		if err != nil {
			return nil, err
		}
		attached := false
		for i := range roots {
			if crl.CheckSignatureFrom(roots[i].Certificate) == nil {
				roots[i].CRL = crl
				attached = true
			}
		}
		if !attached {
			return nil, fmt.Errorf("CRL %s was not issued by any root certificate", crlSource)
		}
	}
	return roots, nil
}

func loadRootFile(path string) ([]RootBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate file %s: %w", path, err)
	}
	certs, err := cryptoutils.UnmarshalCertificatesFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificates from %s: %w", path, err)
	}

	name := filepath.Base(path)
	roots := make([]RootBundle, 0, len(certs))
	for i, cert := range certs {
		bundleName := name
		if len(certs) > 1 {
			bundleName = fmt.Sprintf("%s#%d", name, i)
		}
		roots = append(roots, RootBundle{
			Name:        bundleName,
			Certificate: cert,
			PEM:         cryptoutils.PEMEncode(cryptoutils.CertificatePEMType, cert.Raw),
		})
	}
	return roots, nil
}

func loadRootDir(dir string) ([]RootBundle, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate directory %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), certExt) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var roots []RootBundle
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read certificate file %s: %w", name, err)
		}
		certs, err := cryptoutils.UnmarshalCertificatesFromPEM(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse certificate %s: %w", name, err)
		}
		if len(certs) != 1 {
			return nil, fmt.Errorf("%s holds %d certificates, want 1", name, len(certs))
		}

		bundle := RootBundle{Name: name, Certificate: certs[0], PEM: data}
		crlPath := filepath.Join(dir, strings.TrimSuffix(name, certExt)+crlExt)
		if _, err := os.Stat(crlPath); err == nil {
			crl, err := readCRL(crlPath)
			if err != nil {
				return nil, err
			}
			if err := crl.CheckSignatureFrom(certs[0]); err != nil {
				return nil, fmt.Errorf("CRL %s is not signed by %s: %w", filepath.Base(crlPath), name, err)
			}
			bundle.CRL = crl
		}
		roots = append(roots, bundle)
	}
	return roots, nil
}

// readCRL accepts PEM or DER.
func readCRL(path string) (*x509.RevocationList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CRL %s: %w", path, err)
	}
	der := data
	if block, _ := pem.Decode(data); block != nil {
		der = block.Bytes
	}
	crl, err := x509.ParseRevocationList(der)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CRL %s: %w", path, err)
	}
	return crl, nil
}
