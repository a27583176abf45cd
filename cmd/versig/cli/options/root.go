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
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/versig/versig/pkg/logging"
)

// RootOptions defines flags and options for the root CLI command.
// These options are available globally across all subcommands.
type RootOptions struct {
	// ConfigFile is an optional YAML, TOML or JSON file of option values.
	ConfigFile string
	// LogLevel sets the minimum log level (debug, info, warn, error, silent).
	// Empty means error, or info with --silent-off.
	LogLevel string
	// LogFormat sets the log output format (text, json).
	LogFormat string
	// SilentOff raises the default log level to info.
	SilentOff bool

	level  logging.LogLevel
	format logging.LogFormat
}

// ValidLogLevels lists the valid log level strings.
var ValidLogLevels = []string{"debug", "info", "warn", "error", "silent"}

// ValidLogFormats lists the valid log format strings.
var ValidLogFormats = []string{"text", "json"}

var configExts = []string{"yaml", "yml", "toml", "json"}

var _ Interface = (*RootOptions)(nil)

// AddFlags implements Interface.
func (o *RootOptions) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&o.ConfigFile, "config", "",
		"read option values from a config file")
	_ = cmd.MarkPersistentFlagFilename("config", configExts...)

	cmd.PersistentFlags().StringVar(&o.LogLevel, "log-level", "",
		"set the minimum log level (debug, info, warn, error, silent)")
	_ = cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(ValidLogLevels, cobra.ShellCompDirectiveNoFileComp))

	cmd.PersistentFlags().StringVar(&o.LogFormat, "log-format", "text",
		"set the log output format (text, json)")
	_ = cmd.RegisterFlagCompletionFunc("log-format",
		cobra.FixedCompletions(ValidLogFormats, cobra.ShellCompDirectiveNoFileComp))

	cmd.PersistentFlags().BoolVar(&o.SilentOff, "silent-off", false,
		"report progress on stderr")
}

// Load implements Interface.
func (o *RootOptions) Load(v *viper.Viper) error {
	o.LogLevel = v.GetString("log-level")
	o.LogFormat = v.GetString("log-format")
	o.SilentOff = v.GetBool("silent-off")

	switch {
	case o.LogLevel != "":
		level, err := logging.ParseLogLevel(o.LogLevel)
		if err != nil {
			return err
		}
		o.level = level
	case o.SilentOff:
		o.level = logging.LevelInfo
	default:
		o.level = logging.LevelError
	}

	format, err := logging.ParseLogFormat(o.LogFormat)
	if err != nil {
		return err
	}
	o.format = format
	return nil
}

// GetLogLevel returns the effective log level. Load must have run.
func (o *RootOptions) GetLogLevel() logging.LogLevel {
	return o.level
}

// NewLoggerTo creates a logger writing to w, normally the command's stderr.
func (o *RootOptions) NewLoggerTo(w io.Writer) logging.Logger {
	return logging.NewLoggerWithOptions(logging.LoggerOptions{
		Level:  o.level,
		Format: o.format,
		Output: w,
	})
}
