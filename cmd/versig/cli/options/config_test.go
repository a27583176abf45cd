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
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/versig/versig/pkg/logging"
)

func newTestCommand(args ...string) (*cobra.Command, *RootOptions, *VerifyOptions, error) {
	ro := &RootOptions{}
	vo := &VerifyOptions{}
	cmd := &cobra.Command{Use: "test"}
	AddAllFlags(cmd, ro, vo)
	// Persistent flags join cmd.Flags() when cobra parses; do the same here.
	cmd.Flags().AddFlagSet(cmd.PersistentFlags())
	return cmd, ro, vo, cmd.Flags().Parse(args)
}

func TestNewViper_Precedence(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "versig.yaml")
	if err := os.WriteFile(cfg, []byte("cert: from-config.pem\nfile: config.dat\ncrl: config.crl\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VERSIG_FILE", "env.dat")
	t.Setenv("VERSIG_CRL", "env.crl")

	cmd, ro, vo, err := newTestCommand("--crl", "flag.crl", "--config", cfg)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	v, err := NewViper(cmd, ro.ConfigFile)
	if err != nil {
		t.Fatalf("NewViper() error = %v", err)
	}
	if err := LoadAll(v, ro, vo); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}

	if vo.CRLFile != "flag.crl" {
		t.Errorf("CRLFile = %q, want the flag value", vo.CRLFile)
	}
	if vo.SignedFile != "env.dat" {
		t.Errorf("SignedFile = %q, want the environment value", vo.SignedFile)
	}
	if vo.CertSource != "from-config.pem" {
		t.Errorf("CertSource = %q, want the config value", vo.CertSource)
	}
	if ro.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want the flag default", ro.LogFormat)
	}
}

func TestNewViper_ConfigErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("cert: [unterminated\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, cfg := range []string{filepath.Join(dir, "absent.yaml"), dir, bad} {
		cmd, _, _, err := newTestCommand()
		if err != nil {
			t.Fatal(err)
		}
		if _, err := NewViper(cmd, cfg); err == nil {
			t.Errorf("NewViper(%q) succeeded", cfg)
		}
	}
}

func TestRootOptions_Load(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    logging.LogLevel
		wantErr bool
	}{
		{"default is errors only", nil, logging.LevelError, false},
		{"silent-off raises to info", []string{"--silent-off"}, logging.LevelInfo, false},
		{"explicit level wins", []string{"--silent-off", "--log-level", "debug"}, logging.LevelDebug, false},
		{"silent", []string{"--log-level", "silent"}, logging.LevelSilent, false},
		{"invalid level", []string{"--log-level", "loud"}, 0, true},
		{"invalid format", []string{"--log-format", "yaml"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ro, _, err := newTestCommand(tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			v, err := NewViper(cmd, "")
			if err != nil {
				t.Fatal(err)
			}
			err = ro.Load(v)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && ro.GetLogLevel() != tt.want {
				t.Errorf("GetLogLevel() = %s, want %s", ro.GetLogLevel(), tt.want)
			}
		})
	}
}
