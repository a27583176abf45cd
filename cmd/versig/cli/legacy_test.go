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
	"reflect"
	"testing"
)

func TestTranslateLegacyArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		want     []string
		warnings int
	}{
		{
			name: "current flags untouched",
			args: []string{"-c", "roots.pem", "--file", "m.dat", "-d", "data"},
			want: []string{"-c", "roots.pem", "--file", "m.dat", "-d", "data"},
		},
		{
			name: "attached shorthand values untouched",
			args: []string{"-croots.pem", "-fm.dat"},
			want: []string{"-croots.pem", "-fm.dat"},
		},
		{
			name:     "single-dash long flags",
			args:     []string{"-file", "m.dat", "-data-dir=data", "-check-install-sh"},
			want:     []string{"--file", "m.dat", "--data-dir=data", "--check-install-sh"},
			warnings: 3,
		},
		{
			name:     "persistent flag",
			args:     []string{"-silent-off"},
			want:     []string{"--silent-off"},
			warnings: 1,
		},
		{
			name:     "version flag becomes subcommand",
			args:     []string{"-version"},
			want:     []string{"version"},
			warnings: 1,
		},
		{
			name: "positional after terminator",
			args: []string{"--", "-file"},
			want: []string{"--", "-file"},
		},
		{
			name: "values are not flags",
			args: []string{"-c", "roots.pem", "-"},
			want: []string{"-c", "roots.pem", "-"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warnings := TranslateLegacyArgs(New(), tt.args)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TranslateLegacyArgs() = %q, want %q", got, tt.want)
			}
			if len(warnings) != tt.warnings {
				t.Errorf("got %d warnings, want %d: %q", len(warnings), tt.warnings, warnings)
			}
		})
	}
}
