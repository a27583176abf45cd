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

package options

import (
	"errors"
	"testing"
	"time"

	hashengines "github.com/versig/versig/pkg/hashing/engines"
	"github.com/versig/versig/pkg/logging"
	"github.com/versig/versig/pkg/utils"
)

func TestVerifyOptions_Validate(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		opts    VerifyOptions
		wantErr bool
	}{
		{"minimal", VerifyOptions{CertSource: "roots.pem", SignedFile: "m.dat"}, false},
		{"unreadable paths are not checked", VerifyOptions{CertSource: "/absent", SignedFile: "/absent"}, false},
		{"data dir", VerifyOptions{CertSource: "c", SignedFile: "f", DataDir: dir}, false},
		{"missing cert", VerifyOptions{SignedFile: "m.dat"}, true},
		{"missing file", VerifyOptions{CertSource: "roots.pem"}, true},
		{"absent data dir", VerifyOptions{CertSource: "c", SignedFile: "f", DataDir: dir + "/absent"}, true},
		{"fix date conflict", VerifyOptions{CertSource: "c", SignedFile: "f", FixDate: "2025-01-01T00:00:00Z", NoFixDate: true}, true},
		{"sha256 conflict", VerifyOptions{CertSource: "c", SignedFile: "f", RequireSHA256: true, NoRequireSHA256: true}, true},
		{"sha1 conflict", VerifyOptions{CertSource: "c", SignedFile: "f", AllowSHA1: true, DenySHA1: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	err := (&VerifyOptions{SignedFile: "m.dat"}).Validate()
	if !errors.Is(err, utils.ErrRequired) {
		t.Errorf("missing cert error = %v, want ErrRequired", err)
	}
}

func TestVerifyOptions_Resolve(t *testing.T) {
	o := VerifyOptions{}
	if o.SHA256Required() {
		t.Error("SHA256Required() defaults to true")
	}
	if o.AllowedAlgorithms() != hashengines.SecureAlgorithms {
		t.Errorf("AllowedAlgorithms() = %s", o.AllowedAlgorithms())
	}

	o = VerifyOptions{RequireSHA256: true, AllowSHA1: true}
	if !o.SHA256Required() {
		t.Error("SHA256Required() = false with --require-sha256")
	}
	if !o.AllowedAlgorithms().Contains(hashengines.SHA1) {
		t.Errorf("AllowedAlgorithms() = %s, want SHA1 included", o.AllowedAlgorithms())
	}
}

func TestVerifyOptions_ToStandardOptions(t *testing.T) {
	logger := logging.Discard()
	o := VerifyOptions{FixDate: "2024-06-01T12:00:00Z", CheckCRL: true, ContinueOnMismatch: true}
	opts, err := o.ToStandardOptions(logger)
	if err != nil {
		t.Fatalf("ToStandardOptions() error = %v", err)
	}
	want := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if !opts.VerifyTime.Equal(want) {
		t.Errorf("VerifyTime = %v, want %v", opts.VerifyTime, want)
	}
	if !opts.CheckCRL || !opts.ContinueOnMismatch || opts.Logger != logger {
		t.Errorf("options not carried over: %+v", opts)
	}

	if _, err := (&VerifyOptions{FixDate: "June"}).ToStandardOptions(logger); err == nil {
		t.Error("ToStandardOptions() accepted a malformed --fix-date")
	}
	at, err := (&VerifyOptions{FixDate: "June", NoFixDate: true}).VerifyTime()
	if err != nil || !at.IsZero() {
		t.Errorf("VerifyTime() with --no-fix-date = %v, %v", at, err)
	}
}
