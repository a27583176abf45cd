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

package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var _ Logger = (*DefaultLogger)(nil)

// LoggerOptions configures a DefaultLogger.
type LoggerOptions struct {
	// Level is the minimum level written.
	Level LogLevel
	// Format selects the built-in formatter. Ignored if Formatter is set.
	Format LogFormat
	// Formatter overrides Format, TimeFormat and ShowLevel.
	Formatter Formatter
	// Output defaults to os.Stderr so logs never mix with command output.
	Output io.Writer
	// TimeFormat enables timestamps in text output.
	TimeFormat string
	// ShowLevel prefixes text output with the level, e.g. [WARN].
	ShowLevel bool
}

// DefaultLoggerOptions returns info-level text logging to stderr.
func DefaultLoggerOptions() LoggerOptions {
	return LoggerOptions{
		Level:  LevelInfo,
		Format: FormatText,
		Output: os.Stderr,
	}
}

// sink is shared by a logger and everything derived from it with WithFields,
// so entries from all of them reach the writer whole and the level applies
// to the family.
type sink struct {
	mu        sync.Mutex
	level     LogLevel
	formatter Formatter
	out       io.Writer
}

func (s *sink) enabled(level LogLevel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return level != LevelSilent && level >= s.level
}

func (s *sink) write(entry LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.Level < s.level {
		return
	}
	data, err := s.formatter.Format(entry)
	if err != nil {
		fmt.Fprintf(s.out, "logging error: %v\n", err)
		return
	}
	_, _ = s.out.Write(data)
}

// DefaultLogger writes leveled entries through a Formatter. Loggers returned
// by WithFields share the parent's output, formatter and level.
type DefaultLogger struct {
	sink   *sink
	fields map[string]interface{}
}

// NewLogger creates a text logger on stderr at LevelDebug when verbose is
// set and LevelInfo otherwise.
func NewLogger(verbose bool) *DefaultLogger {
	opts := DefaultLoggerOptions()
	if verbose {
		opts.Level = LevelDebug
	}
	return NewLoggerWithOptions(opts)
}

// NewLoggerWithOptions creates a DefaultLogger from opts.
func NewLoggerWithOptions(opts LoggerOptions) *DefaultLogger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	formatter := opts.Formatter
	if formatter == nil {
		switch opts.Format {
		case FormatJSON:
			formatter = &JSONFormatter{TimeFormat: opts.TimeFormat}
		default:
			formatter = &TextFormatter{TimeFormat: opts.TimeFormat, ShowLevel: opts.ShowLevel}
		}
	}
	return &DefaultLogger{sink: &sink{level: opts.Level, formatter: formatter, out: out}}
}

// WithFields returns a logger that adds fields to every entry. The receiver
// is not modified.
func (l *DefaultLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &DefaultLogger{sink: l.sink, fields: merged}
}

// WithField is WithFields with a single pair.
func (l *DefaultLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// SetLevel changes the minimum level for this logger and every logger
// sharing its output.
func (l *DefaultLogger) SetLevel(level LogLevel) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.level = level
}

// GetLevel returns the minimum level written.
func (l *DefaultLogger) GetLevel() LogLevel {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.level
}

// Silent reports whether debug output is suppressed.
func (l *DefaultLogger) Silent() bool {
	return !l.IsLevelEnabled(LevelDebug)
}

// IsLevelEnabled reports whether an entry at level would be written.
func (l *DefaultLogger) IsLevelEnabled(level LogLevel) bool {
	return l.sink.enabled(level)
}

func (l *DefaultLogger) log(level LogLevel, msg string) {
	l.sink.write(LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   msg,
		Fields:    l.fields,
	})
}

func (l *DefaultLogger) logf(level LogLevel, format string, args ...interface{}) {
	if !l.IsLevelEnabled(level) {
		return
	}
	l.log(level, fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Debug(format string, args ...interface{}) { l.logf(LevelDebug, format, args...) }
func (l *DefaultLogger) Info(format string, args ...interface{})  { l.logf(LevelInfo, format, args...) }
func (l *DefaultLogger) Warn(format string, args ...interface{})  { l.logf(LevelWarn, format, args...) }
func (l *DefaultLogger) Error(format string, args ...interface{}) { l.logf(LevelError, format, args...) }

func (l *DefaultLogger) Debugln(msg string) { l.log(LevelDebug, msg) }
func (l *DefaultLogger) Infoln(msg string)  { l.log(LevelInfo, msg) }
func (l *DefaultLogger) Warnln(msg string)  { l.log(LevelWarn, msg) }
func (l *DefaultLogger) Errorln(msg string) { l.log(LevelError, msg) }
