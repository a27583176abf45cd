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

// Package cli wires the versig command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	cobracompletefig "github.com/withfig/autocomplete-tools/integrations/cobra"
	"sigs.k8s.io/release-utils/version"

	"github.com/versig/versig/cmd/versig/cli/options"
	"github.com/versig/versig/pkg/verify"
)

const long = `Verify a signed installation manifest.

Checks the signatures of SIGNED_FILE (given via --file) against the trusted
root certificates in CERTS (given via --cert). CERTS is either a PEM file or
a directory holding one .crt per root, each with an optional .crl of the same
name.

With --data-dir, every file listed in the manifest is hashed and compared to
its recorded checksum.

Exit status: 0 on success, 2 for bad arguments, 3 for an untrusted
certificate, 4 for a crypto failure, 5 for a malformed or missing file or a
checksum mismatch, 6 for a bad signature.`

// New returns the root versig command.
func New() *cobra.Command {
	ro := &options.RootOptions{}
	vo := &options.VerifyOptions{}

	cmd := &cobra.Command{
		Use:               "versig -c CERTS -f SIGNED_FILE [-d DATA_DIR]",
		Short:             "Verify signed installation manifests.",
		Long:              long,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return badArguments(fmt.Errorf("unexpected argument %q", args[0]))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := options.NewViper(cmd, ro.ConfigFile)
			if err != nil {
				return badArguments(err)
			}
			if err := options.LoadAll(v, ro, vo); err != nil {
				return badArguments(err)
			}
			if err := vo.Validate(); err != nil {
				return badArguments(err)
			}
			return runVerify(cmd.Context(), vo, ro.NewLoggerTo(cmd.ErrOrStderr()))
		},
	}
	options.AddAllFlags(cmd, ro, vo)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return badArguments(err)
	})

	// Add sub-commands.
	cmd.AddCommand(version.WithFont("starwars"))
	cmd.AddCommand(cobracompletefig.CreateCompletionSpecCommand())
	return cmd
}

func badArguments(err error) error {
	return verify.NewError(verify.KindBadArguments, "", err)
}
