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

package cli

import (
	"context"

	"github.com/versig/versig/cmd/versig/cli/options"
	"github.com/versig/versig/pkg/logging"
	"github.com/versig/versig/pkg/tracing"
	"github.com/versig/versig/pkg/verify"
)

// runVerify opens the signed file, then applies the optional install script
// and data directory checks.
func runVerify(ctx context.Context, o *options.VerifyOptions, logger logging.Logger) error {
	opts, err := o.ToStandardOptions(logger)
	if err != nil {
		return badArguments(err)
	}
	attrs := map[string]interface{}{
		"versig.signed_file":      o.SignedFile,
		"versig.cert_source":      o.CertSource,
		"versig.crl":              o.CRLFile,
		"versig.data_dir":         o.DataDir,
		"versig.check_install_sh": o.CheckInstallScript,
		"versig.require_sha256":   o.SHA256Required(),
		"versig.allowed":          opts.AllowedAlgorithms.String(),
	}
	return tracing.Run(ctx, "Verify", attrs, func(ctx context.Context) error {
		mv, err := verify.Open(ctx, o.SignedFile, o.CertSource, o.CRLFile, opts)
		if err != nil {
			return err
		}
		if o.CheckInstallScript {
			if err := mv.RequireFile(options.InstallScript); err != nil {
				return err
			}
		}
		if o.DataDir != "" {
			if _, err := mv.ReconcileAgainstDirectory(ctx, o.DataDir, o.SHA256Required()); err != nil {
				return err
			}
		}
		logger.Info("%s: verified against root %q, %d files listed",
			o.SignedFile, mv.Diagnostics().Root, mv.Manifest().Len())
		return nil
	})
}
