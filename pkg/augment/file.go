package augment

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/coursedeck/enrich/pkg/course"
)

// File loads the course document at path, augments every item in order and,
// when anything changed, persists the result behind a backup. The sequence
// matters: the backup must exist before the replace begins, so a crash
// mid-write never leaves the user without a pre-mutation copy. Dry-run
// short-circuits before backup and write regardless of the changed flag.
func (a *Augmenter) File(ctx context.Context, path string) (written bool, err error) {
	logger := zerolog.Ctx(ctx)

	doc, format, err := course.Load(ctx, path)
	if err != nil {
		return false, errors.Errorf("loading course: %w", err)
	}

	changed := false
	for i := range doc.Items {
		if a.Item(ctx, &doc.Items[i]) {
			changed = true
		}
	}

	if a.dryRun {
		return false, nil
	}

	if !changed {
		logger.Debug().Str("path", path).Msg("no items needed augmentation")
		return false, nil
	}

	if err := course.Backup(ctx, path); err != nil {
		return false, errors.Errorf("backing up course: %w", err)
	}

	data, err := course.Marshal(doc, format)
	if err != nil {
		return false, errors.Errorf("encoding course: %w", err)
	}

	if err := course.WriteAtomic(ctx, path, data); err != nil {
		return false, errors.Errorf("writing course: %w", err)
	}

	return true, nil
}
