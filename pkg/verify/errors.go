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

package verify

import (
	"errors"
	"fmt"

	"github.com/versig/versig/pkg/grammar"
	"github.com/versig/versig/pkg/manifest"
	"github.com/versig/versig/pkg/signedfile"
	"github.com/versig/versig/pkg/verify/certificate"
)

// Kind represents the category of a verification outcome.
type Kind int

const (
	// KindValid is not an error; it is what KindOf reports for nil.
	KindValid Kind = iota

	// KindGeneric indicates an unclassified error.
	KindGeneric

	// KindBadArguments indicates unusable caller input such as a missing
	// flag or an unreadable root certificate source.
	KindBadArguments

	// KindMalformedFile indicates the signed file or its manifest body does
	// not follow the grammar, or could not be read.
	KindMalformedFile

	// KindMissingSignature indicates a well-formed file with no usable
	// signature block.
	KindMissingSignature

	// KindBadSignature indicates a signature that does not match its body.
	KindBadSignature

	// KindBadCertificate indicates no root validated the signing chain.
	KindBadCertificate

	// KindCryptoError indicates a failure of the cryptographic machinery.
	KindCryptoError

	// KindDataMismatch indicates a file on disk whose digest differs from
	// the manifest, or a record that cannot be checked.
	KindDataMismatch

	// KindMissingInstallScript indicates the manifest lists no install.sh.
	KindMissingInstallScript
)

// Process exit codes.
const (
	ExitOK             = 0
	ExitGeneric        = 1
	ExitBadArguments   = 2
	ExitBadCertificate = 3
	ExitCryptoError    = 4
	ExitBadFile        = 5
	ExitBadSignature   = 6
	ExitBadLogic       = 7
)

var kindNames = map[Kind]string{
	KindValid:                "Valid",
	KindGeneric:              "GenericError",
	KindBadArguments:         "BadArguments",
	KindMalformedFile:        "MalformedFile",
	KindMissingSignature:     "MissingSignature",
	KindBadSignature:         "BadSignature",
	KindBadCertificate:       "BadCertificate",
	KindCryptoError:          "CryptoError",
	KindDataMismatch:         "DataMismatch",
	KindMissingInstallScript: "MissingInstallScript",
}

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ExitCode maps the kind to the process exit code.
func (k Kind) ExitCode() int {
	switch k {
	case KindValid:
		return ExitOK
	case KindBadArguments:
		return ExitBadArguments
	case KindBadCertificate:
		return ExitBadCertificate
	case KindCryptoError:
		return ExitCryptoError
	case KindMalformedFile, KindMissingSignature, KindDataMismatch, KindMissingInstallScript:
		return ExitBadFile
	case KindBadSignature:
		return ExitBadSignature
	default:
		return ExitGeneric
	}
}

// Error is the structured error returned by every ManifestVerifier
// operation.
//
// Example usage:
//
//	if err != nil {
//	    var verr *verify.Error
//	    if errors.As(err, &verr) {
//	        log.Printf("verification failed: kind=%s path=%s", verr.Kind, verr.Path)
//	    }
//	}
type Error struct {
	Kind Kind

	// Path is the file the error refers to (optional). For DataMismatch it
	// is the manifest path of the first mismatching record.
	Path string

	Message string

	// Cause is the underlying error.
	Cause error

	// Diagnostics holds the chain trials of the last certificate check, if
	// one ran.
	Diagnostics *certificate.Diagnostics
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (path: %s)", e.Path)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode implements the ExitCoder interface of the command line.
func (e *Error) ExitCode() int {
	return e.Kind.ExitCode()
}

// NewError creates a new verification error.
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// NewErrorWithPath creates a new verification error with a path.
func NewErrorWithPath(kind Kind, path, message string, cause error) *Error {
	return &Error{Kind: kind, Path: path, Message: message, Cause: cause}
}

// KindOf reports the kind of err. nil is KindValid and errors not created
// by this package are classified by their cause.
func KindOf(err error) Kind {
	if err == nil {
		return KindValid
	}
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Kind
	}
	return classify(err)
}

// IsKind checks if err is of the given kind.
//
// Example:
//
//	if verify.IsKind(err, verify.KindBadSignature) {
//	    // Handle invalid signature
//	}
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// classify maps errors of the lower layers onto a Kind.
func classify(err error) Kind {
	var (
		syntaxErr *grammar.SyntaxError
		formatErr *signedfile.FormatError
		parseErr  *manifest.ParseError
		cryptoErr *certificate.CryptoError
	)
	switch {
	case errors.Is(err, signedfile.ErrMissingSignature):
		return KindMissingSignature
	case errors.As(err, &formatErr), errors.As(err, &parseErr), errors.As(err, &syntaxErr):
		return KindMalformedFile
	case errors.Is(err, certificate.ErrBadSignature):
		return KindBadSignature
	case errors.Is(err, certificate.ErrBadCertificate):
		return KindBadCertificate
	case errors.As(err, &cryptoErr):
		return KindCryptoError
	default:
		return KindGeneric
	}
}

// wrap turns a lower-layer error into an *Error, keeping an existing one.
func wrap(err error, path, message string) *Error {
	var verr *Error
	if errors.As(err, &verr) {
		return verr
	}
	return &Error{Kind: classify(err), Path: path, Message: message, Cause: err}
}
