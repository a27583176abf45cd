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

// Package options defines the command-line options and flags for the versig CLI.
package options

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Interface is implemented by any flag group that can register itself to a
// cobra command and read its values back from viper.
type Interface interface {
	AddFlags(cmd *cobra.Command)
	Load(v *viper.Viper) error
}

// AddAllFlags registers multiple flag groups at once.
func AddAllFlags(cmd *cobra.Command, groups ...Interface) {
	for _, g := range groups {
		g.AddFlags(cmd)
	}
}

// LoadAll reads every group back from v, stopping at the first error.
func LoadAll(v *viper.Viper, groups ...Interface) error {
	for _, g := range groups {
		if err := g.Load(v); err != nil {
			return err
		}
	}
	return nil
}
