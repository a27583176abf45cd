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
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	hashengines "github.com/versig/versig/pkg/hashing/engines"
	"github.com/versig/versig/pkg/logging"
	"github.com/versig/versig/pkg/utils"
	"github.com/versig/versig/pkg/verify"
)

// InstallScript is the manifest path --check-install-sh requires.
const InstallScript = "./install.sh"

// VerifyOptions holds the flags of a verification run.
type VerifyOptions struct {
	CertSource string // -c, --cert (required)
	CRLFile    string // -r, --crl
	SignedFile string // -f, --file (required)
	DataDir    string // -d, --data-dir

	CheckInstallScript bool   // --check-install-sh
	FixDate            string // --fix-date
	NoFixDate          bool   // --no-fix-date
	RequireSHA256      bool   // --require-sha256
	NoRequireSHA256    bool   // --no-require-sha256
	AllowSHA1          bool   // --allow-sha1-signature
	DenySHA1           bool   // --deny-sha1-signature
	CheckCRL           bool   // --check-crl
	ContinueOnMismatch bool   // --continue-on-mismatch
	LogFingerprints    bool   // --log-fingerprints
}

var _ Interface = (*VerifyOptions)(nil)

// AddFlags implements Interface.
func (o *VerifyOptions) AddFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.CertSource, "cert", "c", "", "root certificate PEM file, or directory of .crt/.crl pairs [required]")
	_ = cmd.MarkFlagFilename("cert", "pem", "crt")
	f.StringVarP(&o.CRLFile, "crl", "r", "", "certificate revocation list (PEM or DER)")
	_ = cmd.MarkFlagFilename("crl", "crl", "pem")
	f.StringVarP(&o.SignedFile, "file", "f", "", "signed manifest to verify [required]")
	f.StringVarP(&o.DataDir, "data-dir", "d", "", "directory to reconcile against the manifest")
	_ = cmd.MarkFlagDirname("data-dir")

	f.BoolVar(&o.CheckInstallScript, "check-install-sh", false, "fail unless the manifest lists "+InstallScript)
	f.StringVar(&o.FixDate, "fix-date", "", "check certificate validity at this RFC 3339 time instead of now")
	f.BoolVar(&o.NoFixDate, "no-fix-date", false, "check certificate validity at the current time (default)")

	f.BoolVar(&o.RequireSHA256, "require-sha256", false, "treat manifest entries without a SHA256 checksum as invalid")
	f.BoolVar(&o.NoRequireSHA256, "no-require-sha256", false, "accept manifest entries without a SHA256 checksum (default)")

	f.BoolVar(&o.AllowSHA1, "allow-sha1-signature", false, "also accept SHA1 signatures")
	f.BoolVar(&o.DenySHA1, "deny-sha1-signature", false, "ignore SHA1 signatures (default)")

	f.BoolVar(&o.CheckCRL, "check-crl", false, "reject chains revoked by a root's CRL")
	f.BoolVar(&o.ContinueOnMismatch, "continue-on-mismatch", false, "check every file instead of stopping at the first mismatch")
	f.BoolVar(&o.LogFingerprints, "log-fingerprints", false, "log certificate fingerprints at debug level")
}

// Load implements Interface.
func (o *VerifyOptions) Load(v *viper.Viper) error {
	o.CertSource = v.GetString("cert")
	o.CRLFile = v.GetString("crl")
	o.SignedFile = v.GetString("file")
	o.DataDir = v.GetString("data-dir")
	o.CheckInstallScript = v.GetBool("check-install-sh")
	o.FixDate = v.GetString("fix-date")
	o.NoFixDate = v.GetBool("no-fix-date")
	o.RequireSHA256 = v.GetBool("require-sha256")
	o.NoRequireSHA256 = v.GetBool("no-require-sha256")
	o.AllowSHA1 = v.GetBool("allow-sha1-signature")
	o.DenySHA1 = v.GetBool("deny-sha1-signature")
	o.CheckCRL = v.GetBool("check-crl")
	o.ContinueOnMismatch = v.GetBool("continue-on-mismatch")
	o.LogFingerprints = v.GetBool("log-fingerprints")
	return nil
}

// Validate checks that the required values are present and that no flag is
// combined with its negation. Whether the signed file and root source can be
// read is left to verification, which reports it as a file error rather than
// a usage error.
func (o *VerifyOptions) Validate() error {
	if err := utils.RequireValue("--cert", o.CertSource); err != nil {
		return err
	}
	if err := utils.RequireValue("--file", o.SignedFile); err != nil {
		return err
	}
	for _, pair := range []struct {
		a, b   string
		set    bool
		negate bool
	}{
		{"--fix-date", "--no-fix-date", o.FixDate != "", o.NoFixDate},
		{"--require-sha256", "--no-require-sha256", o.RequireSHA256, o.NoRequireSHA256},
		{"--allow-sha1-signature", "--deny-sha1-signature", o.AllowSHA1, o.DenySHA1},
	} {
		if pair.set && pair.negate {
			return fmt.Errorf("%s and %s are mutually exclusive", pair.a, pair.b)
		}
	}
	return utils.ValidateOptionalFolder("--data-dir", o.DataDir)
}

// SHA256Required resolves --require-sha256 against --no-require-sha256.
func (o *VerifyOptions) SHA256Required() bool {
	return o.RequireSHA256 && !o.NoRequireSHA256
}

// AllowedAlgorithms resolves the SHA1 flags into a signature algorithm set.
func (o *VerifyOptions) AllowedAlgorithms() hashengines.Algorithm {
	if o.AllowSHA1 && !o.DenySHA1 {
		return hashengines.SecureAlgorithms | hashengines.SHA1
	}
	return hashengines.SecureAlgorithms
}

// VerifyTime parses --fix-date. The zero time means now.
func (o *VerifyOptions) VerifyTime() (time.Time, error) {
	if o.FixDate == "" || o.NoFixDate {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, o.FixDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("--fix-date: %w", err)
	}
	return t, nil
}

// ToStandardOptions converts CLI options to library options.
func (o *VerifyOptions) ToStandardOptions(logger logging.Logger) (verify.Options, error) {
	at, err := o.VerifyTime()
	if err != nil {
		return verify.Options{}, err
	}
	return verify.Options{
		AllowedAlgorithms:  o.AllowedAlgorithms(),
		ContinueOnMismatch: o.ContinueOnMismatch,
		VerifyTime:         at,
		CheckCRL:           o.CheckCRL,
		LogFingerprints:    o.LogFingerprints,
		Logger:             logger,
	}, nil
}
