package augment

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/coursedeck/enrich/pkg/course"
	"github.com/coursedeck/enrich/pkg/log"
)

// Summary reports what a batch run did.
type Summary struct {
	Files   int // eligible course files found
	Written int // files backed up and replaced
	Planned int // dry-run: items that would have been augmented
	Failed  int // files skipped because of a file-level error
}

// Run enumerates eligible course files in dir in lexicographic order and
// mutates each one. When stem is non-empty only the file whose name stem
// matches is processed. A failure in one file is reported and counted but
// never stops the batch; there is no partial-batch rollback.
func (a *Augmenter) Run(ctx context.Context, dir, stem string) (Summary, error) {
	logger := zerolog.Ctx(ctx)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return Summary{}, errors.Errorf("listing directory %s: %w", dir, err)
	}

	var summary Summary
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !a.eligible(name) {
			continue
		}
		if stem != "" && strings.TrimSuffix(name, filepath.Ext(name)) != stem {
			continue
		}

		summary.Files++
		path := filepath.Join(dir, name)
		a.console.StartFile(path)

		written, err := a.File(ctx, path)
		switch {
		case err != nil:
			summary.Failed++
			a.console.LogFileOperation(log.FileOperation{Path: path, IsFailed: true, Err: err})
			logger.Error().Err(err).Str("path", path).Msg("skipping course file")
		case written:
			summary.Written++
			a.console.LogFileOperation(log.FileOperation{Path: path, IsWritten: true})
		case a.dryRun:
			a.console.LogFileOperation(log.FileOperation{Path: path, IsPlanned: true})
		default:
			a.console.LogFileOperation(log.FileOperation{Path: path})
		}
	}

	summary.Planned = a.console.PlannedCount()
	a.console.LogRunSummary(summary.Files, summary.Written, summary.Planned, summary.Failed)

	return summary, nil
}

// eligible reports whether a file name matches the course-file patterns and
// none of the ignore globs. Backup files are never eligible.
func (a *Augmenter) eligible(name string) bool {
	if strings.HasSuffix(name, course.BackupSuffix) {
		return false
	}
	for _, ignore := range a.ignore {
		if matched, err := doublestar.Match(ignore, name); err == nil && matched {
			return false
		}
	}
	for _, pattern := range a.patterns {
		if matched, err := doublestar.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}
