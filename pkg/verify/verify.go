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

// Package verify drives manifest verification: it opens a signed file,
// picks and checks a signature, parses the signed manifest and compares it
// with a data directory.
package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/versig/versig/pkg/logging"
	"github.com/versig/versig/pkg/manifest"
	"github.com/versig/versig/pkg/signedfile"
	"github.com/versig/versig/pkg/tracing"
	"github.com/versig/versig/pkg/verify/certificate"
)

// State is the progress of a ManifestVerifier.
type State int

const (
	StateInit State = iota
	StateEnvelopeParsed
	StateSignatureVerified
	StateBodyParsed
	StateDataChecked
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateEnvelopeParsed:
		return "EnvelopeParsed"
	case StateSignatureVerified:
		return "SignatureVerified"
	case StateBodyParsed:
		return "BodyParsed"
	case StateDataChecked:
		return "DataChecked"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ManifestVerifier holds one verified manifest. It is not safe for
// concurrent use.
type ManifestVerifier struct {
	opts   Options
	logger logging.Logger
	state  State

	path      string
	container *signedfile.Container
	signature *signedfile.Signature
	manifest  *manifest.Manifest
	diag      *certificate.Diagnostics
}

// Open reads and verifies the signed file at signedFilePath against the
// roots in certSource, which is a PEM file or a directory of .crt/.crl
// pairs. crlSource is optional. On success the signed manifest is parsed
// and the verifier is in StateBodyParsed.
//
// Every error is an *Error.
func Open(ctx context.Context, signedFilePath, certSource, crlSource string, opts Options) (*ManifestVerifier, error) {
	mv := &ManifestVerifier{
		opts:   opts,
		logger: logging.EnsureLogger(opts.Logger),
		path:   signedFilePath,
	}
	attrs := map[string]interface{}{
		"versig.file":        signedFilePath,
		"versig.cert_source": certSource,
	}
	err := tracing.Run(ctx, "versig.Open", attrs, func(ctx context.Context) error {
		return mv.open(ctx, certSource, crlSource)
	})
	if err != nil {
		mv.state = StateFailed
		return nil, err
	}
	return mv, nil
}

func (mv *ManifestVerifier) open(ctx context.Context, certSource, crlSource string) error {
	container, err := signedfile.ReadFile(mv.path)
	if err != nil {
		e := wrap(err, mv.path, "cannot read signed file")
		if e.Kind == KindGeneric {
			e.Kind = KindMalformedFile
		}
		return e
	}
	mv.container = container
	mv.state = StateEnvelopeParsed
	mv.logger.Debug("parsed %s: %d body bytes, signatures %s", mv.path, len(container.Body), container.Algorithms())

	roots, err := certificate.LoadRoots(certSource, crlSource)
	if err != nil {
		return NewErrorWithPath(KindMalformedFile, certSource, "cannot load root certificates", err)
	}
	verifier, err := certificate.NewVerifier(certificate.VerifierConfig{
		Roots:           roots,
		VerifyTime:      mv.opts.VerifyTime,
		CheckCRL:        mv.opts.CheckCRL,
		LogFingerprints: mv.opts.LogFingerprints,
		Logger:          mv.logger,
	})
	if err != nil {
		return NewErrorWithPath(KindBadArguments, certSource, "cannot configure certificate verifier", err)
	}

	if err := mv.selectSignature(ctx, verifier); err != nil {
		return err
	}
	mv.state = StateSignatureVerified

	covered, err := mv.signature.Covered(container.Body)
	if err != nil {
		return NewErrorWithPath(KindMalformedFile, mv.path, "signature length", err)
	}
	m, err := manifest.Parse(covered)
	if err != nil {
		return wrap(err, mv.path, "cannot parse manifest")
	}
	mv.manifest = m
	mv.state = StateBodyParsed
	mv.logger.Info("verified %s with %s signature (%d records)", mv.path, mv.signature.Algorithm, m.Len())
	return nil
}

// selectSignature tries the allowed signatures strongest first. The first
// one whose signature and chain both verify wins. Otherwise the last error
// is reported, unless a crypto error was seen, which takes precedence.
func (mv *ManifestVerifier) selectSignature(ctx context.Context, verifier *certificate.Verifier) error {
	allowed := mv.opts.allowed()
	candidates := SelectSignatures(mv.container.Signatures, allowed)
	if len(candidates) == 0 {
		return NewErrorWithPath(KindMissingSignature, mv.path,
			fmt.Sprintf("no signature uses an allowed algorithm (found %s, allowed %s)", mv.container.Algorithms(), allowed), nil)
	}

	var last, cryptoErr *Error
	for _, sig := range candidates {
		if err := ctx.Err(); err != nil {
			return NewError(KindGeneric, "verification cancelled", err)
		}
		diag := &certificate.Diagnostics{}
		err := mv.trySignature(ctx, verifier, sig, diag)
		if err == nil {
			mv.signature = sig
			mv.diag = diag
			return nil
		}
		e := wrap(err, mv.path, fmt.Sprintf("%s signature", sig.Algorithm))
		e.Diagnostics = diag
		mv.logger.Debug("%s signature rejected: %v", sig.Algorithm, err)
		for _, d := range diag.Entries {
			mv.logger.Debug("  %s", d)
		}
		last = e
		if e.Kind == KindCryptoError {
			cryptoErr = e
		}
	}
	mv.diag = last.Diagnostics
	if cryptoErr != nil {
		return cryptoErr
	}
	return last
}

func (mv *ManifestVerifier) trySignature(ctx context.Context, verifier *certificate.Verifier, sig *signedfile.Signature, diag *certificate.Diagnostics) error {
	attrs := map[string]interface{}{
		"versig.algorithm":   sig.Algorithm.String(),
		"versig.body_length": sig.BodyLength,
		"versig.extended":    sig.Extended,
	}
	return tracing.Run(ctx, "versig.VerifySignature", attrs, func(context.Context) error {
		if err := verifier.VerifySignature(mv.container.Body, sig); err != nil {
			return err
		}
		err := verifier.VerifyChain(sig, diag)
		if err == nil {
			mv.logger.Debug("%s signature chained to root %s", sig.Algorithm, diag.Root)
		}
		return err
	})
}

// State returns the current state.
func (mv *ManifestVerifier) State() State {
	return mv.state
}

// Signature returns the signature that verified.
func (mv *ManifestVerifier) Signature() *signedfile.Signature {
	return mv.signature
}

// Manifest returns the parsed manifest. Only the bytes covered by the
// winning signature are parsed.
func (mv *ManifestVerifier) Manifest() *manifest.Manifest {
	return mv.manifest
}

// Diagnostics returns the chain trials of the winning signature.
func (mv *ManifestVerifier) Diagnostics() *certificate.Diagnostics {
	return mv.diag
}

// CheckFilePresent reports whether the manifest lists relativePath.
func (mv *ManifestVerifier) CheckFilePresent(relativePath string) bool {
	if mv.manifest == nil {
		return false
	}
	return mv.manifest.CheckFilePresent(relativePath)
}

// RequireFile is CheckFilePresent returning a KindMissingInstallScript
// error when the file is not listed.
func (mv *ManifestVerifier) RequireFile(relativePath string) error {
	if mv.CheckFilePresent(relativePath) {
		return nil
	}
	return NewErrorWithPath(KindMissingInstallScript, relativePath, "file not listed in manifest "+mv.path, nil)
}

func (mv *ManifestVerifier) ready() error {
	if mv.state == StateBodyParsed || mv.state == StateDataChecked {
		return nil
	}
	return NewError(KindGeneric, "manifest not verified", errors.New("verifier in state "+mv.state.String()))
}
