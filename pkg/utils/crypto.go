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

package utils

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	_ "crypto/md5" //nolint:gosec
	"crypto/rand"
	"crypto/rsa"
	_ "crypto/sha1" //nolint:gosec
	"errors"
	"fmt"

	"github.com/sigstore/sigstore/pkg/signature"

	hashengines "github.com/versig/versig/pkg/hashing/engines"
)

// ErrInvalidSignature is wrapped by VerifySignatureWithHash when the
// signature does not match. Any other error means verification could not be
// attempted.
var ErrInvalidSignature = errors.New("invalid signature")

// SignWithHash signs message with the digest algorithm alg.
// RSA keys produce PKCS#1 v1.5 signatures and ECDSA keys ASN.1 signatures.
// Ed25519 keys sign the message itself.
func SignWithHash(signer crypto.Signer, alg hashengines.Algorithm, message []byte) ([]byte, error) {
	if _, ok := signer.Public().(ed25519.PublicKey); ok {
		return signer.Sign(rand.Reader, message, crypto.Hash(0))
	}

	h, err := alg.CryptoHash()
	if err != nil {
		return nil, err
	}
	if !h.Available() {
		return nil, fmt.Errorf("hash %s not linked into binary", alg)
	}
	hasher := h.New()
	hasher.Write(message)
	sig, err := signer.Sign(rand.Reader, hasher.Sum(nil), h)
	if err != nil {
		return nil, fmt.Errorf("%s signing failed: %w", alg, err)
	}
	return sig, nil
}

// VerifySignatureWithHash verifies sig over message using the digest
// algorithm alg.
//
// SHA-2 digests go through the sigstore verifiers. MD5 and SHA1 are not
// accepted there and are checked directly for legacy files.
func VerifySignatureWithHash(publicKey crypto.PublicKey, alg hashengines.Algorithm, message, sig []byte) error {
	h, err := alg.CryptoHash()
	if err != nil {
		return err
	}

	switch alg {
	case hashengines.SHA256, hashengines.SHA384, hashengines.SHA512:
		verifier, err := signature.LoadVerifier(publicKey, h)
		if err != nil {
			return fmt.Errorf("loading %s verifier: %w", alg, err)
		}
		if err := verifier.VerifySignature(bytes.NewReader(sig), bytes.NewReader(message)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		return nil
	default:
		return verifyLegacy(publicKey, h, message, sig)
	}
}

func verifyLegacy(publicKey crypto.PublicKey, h crypto.Hash, message, sig []byte) error {
	if !h.Available() {
		return fmt.Errorf("hash %s not linked into binary", h)
	}
	hasher := h.New()
	hasher.Write(message)
	digest := hasher.Sum(nil)

	switch key := publicKey.(type) {
	case *rsa.PublicKey:
		if err := rsa.VerifyPKCS1v15(key, h, digest, sig); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
	case *ecdsa.PublicKey:
		if !ecdsa.VerifyASN1(key, digest, sig) {
			return fmt.Errorf("%w: ECDSA verification failed", ErrInvalidSignature)
		}
	case ed25519.PublicKey:
		if !ed25519.Verify(key, message, sig) {
			return fmt.Errorf("%w: Ed25519 verification failed", ErrInvalidSignature)
		}
	default:
		return fmt.Errorf("unsupported public key type for verification: %T", publicKey)
	}
	return nil
}
