package fsops

import (
	"io/fs"
	"os/user"
	"path/filepath"
	"strconv"

	"github.com/raspiroman/camstack/pkg/errors"
	"github.com/raspiroman/camstack/pkg/logging"
	"github.com/raspiroman/camstack/pkg/types"
)

// DefaultDirMode is used when a directory is ensured without an explicit
// mode.
const DefaultDirMode fs.FileMode = 0755

// EnsureDirectory creates path (and missing ancestors) when absent and
// re-asserts owner/group/mode every run, so ownership drift on an existing
// directory is corrected. It returns true when the directory was created.
// A zero mode falls back to DefaultDirMode on creation and leaves an
// existing directory's permissions alone.
func EnsureDirectory(fsys types.FS, path, owner, group string, mode fs.FileMode) (bool, error) {
	logger := logging.GetLogger("fsops")

	createMode := mode
	if createMode == 0 {
		createMode = DefaultDirMode
	}

	created := false
	info, err := fsys.Stat(path)
	switch {
	case err != nil:
		if err := fsys.MkdirAll(path, createMode); err != nil {
			return false, errors.Wrapf(err, errors.ErrDirCreate, "create directory %s", path)
		}
		created = true
		logger.Info().Str("path", path).Msg("Created directory")
	case !info.IsDir():
		return false, errors.Newf(errors.ErrPrecondition, "%s exists and is not a directory", path)
	}

	if mode != 0 || created {
		if err := fsys.Chmod(path, createMode); err != nil {
			return created, errors.Wrapf(err, errors.ErrOwnership, "chmod %s", path)
		}
	}
	if err := applyOwner(fsys, path, owner, group, false); err != nil {
		return created, err
	}
	return created, nil
}

// EnsureOwnership applies owner/group/mode to path, walking the subtree
// when recursive is set. The syscalls are issued even when the tree is
// already correct; re-running has no externally observable effect.
func EnsureOwnership(fsys types.FS, path, owner, group string, mode fs.FileMode, recursive bool) error {
	logger := logging.GetLogger("fsops")
	defer logging.LogOperationStart(logger, "ensure-ownership")()

	if !recursive {
		if mode != 0 {
			if err := fsys.Chmod(path, mode); err != nil {
				return errors.Wrapf(err, errors.ErrOwnership, "chmod %s", path)
			}
		}
		return applyOwner(fsys, path, owner, group, false)
	}

	return walk(fsys, path, func(p string, info fs.FileInfo) error {
		isLink := info.Mode()&fs.ModeSymlink != 0
		// chmod would follow the link; only the link's ownership is ours
		if mode != 0 && !isLink {
			if err := fsys.Chmod(p, mode); err != nil {
				return errors.Wrapf(err, errors.ErrOwnership, "chmod %s", p)
			}
		}
		return applyOwner(fsys, p, owner, group, isLink)
	})
}

// applyOwner chowns path to the named owner/group. Empty owner and group
// skip the chown entirely.
func applyOwner(fsys types.FS, path, owner, group string, symlink bool) error {
	uid, gid, err := ResolveOwner(owner, group)
	if err != nil {
		return err
	}
	if uid < 0 && gid < 0 {
		return nil
	}

	chown := fsys.Chown
	if symlink {
		chown = fsys.Lchown
	}
	if err := chown(path, uid, gid); err != nil {
		return errors.Wrapf(err, errors.ErrOwnership, "chown %s to %s:%s", path, owner, group)
	}
	return nil
}

// ResolveOwner resolves user and group names to numeric ids. Numeric
// strings pass through unresolved; empty strings resolve to -1, which
// chown treats as "leave unchanged".
func ResolveOwner(owner, group string) (int, int, error) {
	uid := -1
	gid := -1

	if owner != "" {
		if n, err := strconv.Atoi(owner); err == nil {
			uid = n
		} else {
			u, err := user.Lookup(owner)
			if err != nil {
				return -1, -1, errors.Wrapf(err, errors.ErrOwnership, "resolve user %q", owner)
			}
			uid, err = strconv.Atoi(u.Uid)
			if err != nil {
				return -1, -1, errors.Wrapf(err, errors.ErrOwnership, "non-numeric uid for %q", owner)
			}
		}
	}

	if group != "" {
		if n, err := strconv.Atoi(group); err == nil {
			gid = n
		} else {
			g, err := user.LookupGroup(group)
			if err != nil {
				return -1, -1, errors.Wrapf(err, errors.ErrOwnership, "resolve group %q", group)
			}
			gid, err = strconv.Atoi(g.Gid)
			if err != nil {
				return -1, -1, errors.Wrapf(err, errors.ErrOwnership, "non-numeric gid for %q", group)
			}
		}
	}

	return uid, gid, nil
}

// walk applies fn to path and, for directories, every entry below it.
// The directory itself is visited before its contents.
func walk(fsys types.FS, path string, fn func(string, fs.FileInfo) error) error {
	info, err := fsys.Lstat(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrOwnership, "lstat %s", path)
	}
	if err := fn(path, info); err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}

	entries, err := fsys.ReadDir(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrOwnership, "read directory %s", path)
	}
	for _, entry := range entries {
		if err := walk(fsys, filepath.Join(path, entry.Name()), fn); err != nil {
			return err
		}
	}
	return nil
}
