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
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// TranslateLegacyArgs rewrites the single-dash long flags of earlier releases
// (-file, -data-dir, -version) to their current form. Shorthand flags with an
// attached value such as -c/etc/roots.pem are left for pflag. Each rewrite
// yields a deprecation warning.
func TranslateLegacyArgs(cmd *cobra.Command, args []string) ([]string, []string) {
	out := make([]string, 0, len(args))
	var warnings []string
	for i, arg := range args {
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || strings.HasPrefix(arg, "--") || len(arg) <= 2 {
			out = append(out, arg)
			continue
		}

		name, value, hasValue := strings.Cut(arg[1:], "=")
		if name == "version" && !hasValue {
			warnings = append(warnings, deprecation(arg, "version", "subcommand"))
			out = append(out, "version")
			continue
		}
		if len(name) < 2 || (cmd.Flags().Lookup(name) == nil && cmd.PersistentFlags().Lookup(name) == nil) {
			out = append(out, arg)
			continue
		}

		newArg := "--" + name
		if hasValue {
			newArg += "=" + value
		}
		warnings = append(warnings, deprecation(arg, "--"+name, "flag"))
		out = append(out, newArg)
	}
	return out, warnings
}

func deprecation(old, replacement, kind string) string {
	return fmt.Sprintf("warning: the %s flag is deprecated and will be removed in a future release. Please use the %s %s instead.",
		old, replacement, kind)
}
