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

package utils

import (
	"errors"
	"fmt"
	"os"
)

// ErrRequired is wrapped by ValidationError when a value is missing.
var ErrRequired = errors.New("is required")

// PathType represents the type of path to validate.
type PathType int

const (
	// PathTypeFile expects a regular file.
	PathTypeFile PathType = iota
	// PathTypeFolder expects a directory.
	PathTypeFolder
	// PathTypeAny accepts either file or directory.
	PathTypeAny
)

// ValidationError describes an unusable command-line value.
type ValidationError struct {
	Field string
	Path  string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// PathValidator provides path validation utilities.
type PathValidator struct {
	fieldName string
	path      string
	pathType  PathType
}

// NewPathValidator creates a new path validator with the specified field name, path, and expected type.
func NewPathValidator(fieldName, path string, pathType PathType) *PathValidator {
	return &PathValidator{
		fieldName: fieldName,
		path:      path,
		pathType:  pathType,
	}
}

// Validate checks that the path is not empty, exists, and matches the
// expected type. Errors are *ValidationError.
func (v *PathValidator) Validate() error {
	if v.path == "" {
		return &ValidationError{Field: v.fieldName, Err: ErrRequired}
	}

	info, err := os.Stat(v.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ValidationError{Field: v.fieldName, Path: v.path, Err: errors.New("does not exist")}
		}
		return &ValidationError{Field: v.fieldName, Path: v.path, Err: err}
	}

	switch v.pathType {
	case PathTypeFile:
		if info.IsDir() {
			return &ValidationError{Field: v.fieldName, Path: v.path, Err: errors.New("is a directory, expected file")}
		}
	case PathTypeFolder:
		if !info.IsDir() {
			return &ValidationError{Field: v.fieldName, Path: v.path, Err: errors.New("is a file, expected directory")}
		}
	case PathTypeAny:
	}

	return nil
}

// RequireValue fails when value is empty. Existence is left to the caller,
// which may classify an unreadable file differently from a missing flag.
func RequireValue(fieldName, value string) error {
	if value == "" {
		return &ValidationError{Field: fieldName, Err: ErrRequired}
	}
	return nil
}

// ValidateFileExists validates that a path exists and is a file.
func ValidateFileExists(fieldName, path string) error {
	return NewPathValidator(fieldName, path, PathTypeFile).Validate()
}

// ValidateFolderExists validates that a path exists and is a directory.
func ValidateFolderExists(fieldName, path string) error {
	return NewPathValidator(fieldName, path, PathTypeFolder).Validate()
}

// ValidateOptionalFolder validates a folder path only if it's not empty.
func ValidateOptionalFolder(fieldName, path string) error {
	if path == "" {
		return nil
	}
	return ValidateFolderExists(fieldName, path)
}
