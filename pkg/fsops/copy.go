package fsops

import (
	"crypto/sha256"
	"fmt"
	"io/fs"

	"github.com/raspiroman/camstack/pkg/errors"
	"github.com/raspiroman/camstack/pkg/logging"
	"github.com/raspiroman/camstack/pkg/types"
)

// tmpSuffix is appended to build the sibling temp path used for atomic
// replacement. Sibling, not os.TempDir: rename is only atomic within one
// filesystem.
const tmpSuffix = ".camstack-tmp"

// Fingerprint returns the content fingerprint used to decide whether a
// copy is needed.
func Fingerprint(data []byte) string {
	return fmt.Sprintf("sha256:%x", sha256.Sum256(data))
}

// CopyIfChanged copies src over dst unless dst already has identical
// content. It returns true when dst was (re)written. The write goes to a
// sibling temp file first and is renamed into place, so dst is never
// observed truncated or half-written.
func CopyIfChanged(fsys types.FS, src, dst string) (bool, error) {
	logger := logging.GetLogger("fsops")

	srcInfo, err := fsys.Stat(src)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileRead, "stat source %s", src)
	}
	if srcInfo.IsDir() {
		return false, errors.Newf(errors.ErrPrecondition, "source %s is a directory", src)
	}

	data, err := fsys.ReadFile(src)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileRead, "read source %s", src)
	}

	if dstInfo, err := fsys.Lstat(dst); err == nil && dstInfo.Mode().IsRegular() {
		// Size check first, hash only when sizes match.
		if dstInfo.Size() == srcInfo.Size() {
			existing, err := fsys.ReadFile(dst)
			if err == nil && Fingerprint(existing) == Fingerprint(data) {
				logger.Debug().Str("src", src).Str("dst", dst).Msg("Destination up to date")
				return false, nil
			}
		}
	}

	tmp := dst + tmpSuffix
	perm := srcInfo.Mode().Perm()
	if perm == 0 {
		perm = fs.FileMode(0644)
	}
	if err := fsys.WriteFile(tmp, data, perm); err != nil {
		return false, errors.Wrapf(err, errors.ErrFileWrite, "write temp file %s", tmp)
	}
	if err := fsys.Rename(tmp, dst); err != nil {
		_ = fsys.Remove(tmp)
		return false, errors.Wrapf(err, errors.ErrFileCopy, "rename %s over %s", tmp, dst)
	}

	logger.Info().Str("src", src).Str("dst", dst).Msg("Copied file")
	return true, nil
}
