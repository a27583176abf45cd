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

package verify

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	hashengines "github.com/versig/versig/pkg/hashing/engines"
	hashio "github.com/versig/versig/pkg/hashing/engines/io"
	"github.com/versig/versig/pkg/manifest"
	"github.com/versig/versig/pkg/tracing"
)

// ReconcileReport summarizes a ReconcileAgainstDirectory run.
type ReconcileReport = manifest.Diff

// recordOutcome is the result of checking one record.
type recordOutcome int

const (
	outcomeChecked recordOutcome = iota
	outcomeMissing
	outcomeInvalid
	outcomeMismatch
)

// ReconcileAgainstDirectory compares every manifest record with the file of
// the same relative path under dataDir. Files that do not exist are
// skipped. Each present file is hashed once with the strongest algorithm
// its record carries (SHA384, then SHA256, then SHA1).
//
// With requireSHA256 a record lacking a SHA256 checksum is invalid even if
// its file is absent. Invalid records and digest mismatches fail with
// KindDataMismatch naming the first failing path. Unless
// Options.ContinueOnMismatch is set the check stops at that first failure.
//
// The report is returned even when err is not nil.
func (mv *ManifestVerifier) ReconcileAgainstDirectory(ctx context.Context, dataDir string, requireSHA256 bool) (*ReconcileReport, error) {
	if err := mv.ready(); err != nil {
		return nil, err
	}
	info, err := os.Stat(dataDir)
	if err != nil {
		return nil, NewErrorWithPath(KindBadArguments, dataDir, "cannot access data directory", err)
	}
	if !info.IsDir() {
		return nil, NewErrorWithPath(KindBadArguments, dataDir, "data path is not a directory", nil)
	}

	report := &ReconcileReport{}
	attrs := map[string]interface{}{
		"versig.data_dir":       dataDir,
		"versig.records":        mv.manifest.Len(),
		"versig.require_sha256": requireSHA256,
	}
	err = tracing.Run(ctx, "versig.Reconcile", attrs, func(ctx context.Context) error {
		return mv.reconcile(ctx, dataDir, requireSHA256, report)
	})
	mv.logger.Info("reconciled %s against %s: %s", mv.path, dataDir, report)
	if err != nil {
		return report, err
	}
	if path, failed := report.FirstFailure(); failed {
		return report, NewErrorWithPath(KindDataMismatch, path, report.String(), nil)
	}
	mv.state = StateDataChecked
	return report, nil
}

func (mv *ManifestVerifier) reconcile(ctx context.Context, dataDir string, requireSHA256 bool, report *ReconcileReport) error {
	for _, rec := range mv.manifest.Records() {
		if err := ctx.Err(); err != nil {
			return NewError(KindGeneric, "reconciliation cancelled", err)
		}
		outcome := mv.checkRecord(dataDir, rec, requireSHA256, report)
		if outcome >= outcomeInvalid && !mv.opts.ContinueOnMismatch {
			return nil
		}
	}
	return nil
}

func (mv *ManifestVerifier) checkRecord(dataDir string, rec manifest.FileRecord, requireSHA256 bool, report *ReconcileReport) recordOutcome {
	log := mv.logger.WithField("path", rec.Path)
	invalid := func(format string, args ...interface{}) recordOutcome {
		log.Warn(format, args...)
		report.InvalidFiles = append(report.InvalidFiles, rec.Path)
		return outcomeInvalid
	}

	if requireSHA256 && !rec.Algorithms().Contains(hashengines.SHA256) {
		return invalid("no sha256 checksum")
	}
	alg, want, ok := rec.Preferred()
	if !ok {
		return invalid("no usable checksum")
	}
	rel, err := rec.LocalPath()
	if err != nil {
		return invalid("%v", err)
	}

	full := filepath.Join(dataDir, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Debugln("not present, skipped")
		report.MissingFiles = append(report.MissingFiles, rec.Path)
		return outcomeMissing
	case err != nil:
		return invalid("%v", err)
	case !info.Mode().IsRegular():
		return invalid("not a regular file")
	}

	hasher, err := hashio.NewFileHasher(full, alg, hashio.DefaultChunkSize)
	if err != nil {
		return invalid("%v", err)
	}
	sums, n, err := hasher.Compute()
	if err != nil {
		return invalid("%v", err)
	}
	got := sums[alg]
	report.Checked = append(report.Checked, rec.Path)
	if n != rec.Size {
		log.Debug("size %d differs from manifest size %d", n, rec.Size)
	}
	if !got.MatchesHex(want) {
		log.Warn("%s mismatch", alg)
		report.Mismatches = append(report.Mismatches, manifest.HashMismatch{
			Path:         rec.Path,
			Algorithm:    alg,
			ExpectedHash: want,
			ActualHash:   got.Hex(),
		})
		return outcomeMismatch
	}
	log.Debug("%s ok", alg)
	return outcomeChecked
}
