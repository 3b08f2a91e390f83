package course

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// BackupSuffix is appended to a course file path to form its backup path.
const BackupSuffix = ".bak"

// Backup copies the file at path to path+".bak", preserving content,
// permissions and modification time. An existing backup from an earlier run
// is overwritten, so only the most recent pre-mutation state is kept.
func Backup(ctx context.Context, path string) error {
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("backing up course file")

	info, err := os.Stat(path)
	if err != nil {
		return errors.Errorf("stating %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Errorf("reading %s: %w", path, err)
	}

	backupPath := path + BackupSuffix
	if err := os.WriteFile(backupPath, data, info.Mode().Perm()); err != nil {
		return errors.Errorf("writing backup %s: %w", backupPath, err)
	}
	if err := os.Chtimes(backupPath, info.ModTime(), info.ModTime()); err != nil {
		return errors.Errorf("preserving backup times: %w", err)
	}

	return nil
}

// WriteAtomic writes data to a temporary file beside path and renames it
// into place, so readers never observe a partially written course file.
// The caller is responsible for creating a backup first.
func WriteAtomic(ctx context.Context, path string, data []byte) error {
	zerolog.Ctx(ctx).Debug().Str("path", path).Int("bytes", len(data)).Msg("writing course file")

	perm := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return errors.Errorf("setting temp file mode: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.Errorf("replacing %s: %w", path, err)
	}

	return nil
}
