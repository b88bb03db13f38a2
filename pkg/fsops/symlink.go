package fsops

import (
	"io/fs"
	"path/filepath"

	"github.com/raspiroman/camstack/pkg/errors"
	"github.com/raspiroman/camstack/pkg/logging"
	"github.com/raspiroman/camstack/pkg/types"
	"github.com/rs/zerolog"
)

// ReconcileSymlink drives spec.Target toward being a symlink pointing at
// spec.Desired. A correct pre-existing link is a no-op; a stale link or a
// regular file is replaced atomically by building the new link at a
// sibling temp path and renaming it over the target, so the target path
// is never missing mid-replacement. A real directory at the target is a
// precondition failure: deleting a directory tree is an operator's call,
// not this tool's.
func ReconcileSymlink(fsys types.FS, spec types.SymlinkSpec) (bool, error) {
	logger := logging.GetLogger("fsops")

	info, err := fsys.Lstat(spec.Target)
	if err != nil {
		// Target absent: create the link directly.
		parent := filepath.Dir(spec.Target)
		if err := fsys.MkdirAll(parent, 0755); err != nil {
			return false, errors.Wrapf(err, errors.ErrDirCreate, "create parent directory %s", parent)
		}
		if err := fsys.Symlink(spec.Desired, spec.Target); err != nil {
			return false, errors.Wrapf(err, errors.ErrSymlinkCreate, "symlink %s -> %s", spec.Target, spec.Desired)
		}
		logger.Info().Str("target", spec.Target).Str("desired", spec.Desired).Msg("Created symlink")
		return true, nil
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		current, err := fsys.Readlink(spec.Target)
		if err != nil {
			return false, errors.Wrapf(err, errors.ErrFileRead, "readlink %s", spec.Target)
		}
		if current == spec.Desired {
			logger.Debug().Str("target", spec.Target).Msg("Symlink already correct")
			return false, nil
		}
		return replaceLink(fsys, spec, logger)
	}

	if info.IsDir() {
		return false, errors.Newf(errors.ErrPrecondition,
			"%s is a directory, refusing to replace it with a symlink", spec.Target)
	}

	// Regular file in the way: replace it the same atomic way.
	return replaceLink(fsys, spec, logger)
}

// replaceLink swaps in the new link without a window where the target is
// missing: the link is built at a sibling path and renamed over the
// target in one operation.
func replaceLink(fsys types.FS, spec types.SymlinkSpec, logger zerolog.Logger) (bool, error) {
	tmp := spec.Target + tmpSuffix
	// A leftover temp link from an interrupted run is stale by definition.
	_ = fsys.Remove(tmp)

	if err := fsys.Symlink(spec.Desired, tmp); err != nil {
		return false, errors.Wrapf(err, errors.ErrSymlinkCreate, "symlink %s -> %s", tmp, spec.Desired)
	}
	if err := fsys.Rename(tmp, spec.Target); err != nil {
		_ = fsys.Remove(tmp)
		return false, errors.Wrapf(err, errors.ErrSymlinkCreate, "rename %s over %s", tmp, spec.Target)
	}

	logger.Info().Str("target", spec.Target).Str("desired", spec.Desired).Msg("Replaced symlink")
	return true, nil
}
