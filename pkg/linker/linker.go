// Package linker reconciles the links directory with the scripts a package
// environment provides.
package linker

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/pipis/pkg/errors"
	"github.com/arthur-debert/pipis/pkg/logging"
	"github.com/arthur-debert/pipis/pkg/paths"
	"github.com/arthur-debert/pipis/pkg/types"
	"github.com/rs/zerolog"
)

// Linker creates and removes script links in the links directory
type Linker struct {
	fs     types.FS
	paths  paths.Paths
	logger zerolog.Logger
	now    func() time.Time
}

// New creates a linker for the links directory of p
func New(fs types.FS, p paths.Paths) *Linker {
	return &Linker{
		fs:     fs,
		paths:  p,
		logger: logging.GetLogger("linker"),
		now:    time.Now,
	}
}

// Link makes Bin/<basename> point at each script. A link that already
// points at the script is left alone. With upgrade, whatever occupies the
// name is atomically replaced; without it, a foreign entry is skipped.
func (l *Linker) Link(scripts []string, upgrade bool) ([]types.LinkResult, error) {
	if err := l.fs.MkdirAll(l.paths.BinDir(), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot create %s", l.paths.BinDir())
	}

	results := make([]types.LinkResult, 0, len(scripts))
	for _, script := range scripts {
		result, err := l.link(script, upgrade)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (l *Linker) link(script string, upgrade bool) (types.LinkResult, error) {
	link := l.paths.LinkPath(script)
	result := types.LinkResult{Script: script, Link: link}

	if l.pointsAt(link, script) {
		l.logger.Debug().Str("path", link).Str("target", script).Msg("Link already up to date")
		result.Status = types.LinkUnchanged
		return result, nil
	}

	_, statErr := l.fs.Lstat(link)
	occupied := statErr == nil
	if occupied {
		result.Existing = l.describe(link)
	}

	switch {
	case upgrade:
		if err := l.replace(script, link); err != nil {
			return result, err
		}
		result.Status = types.LinkCreated
		if occupied {
			result.Status = types.LinkReplaced
		}
	case !occupied:
		if err := l.fs.Symlink(script, link); err != nil {
			return result, errors.Wrapf(err, errors.ErrSymlinkCreate, "cannot link %s", link).
				WithDetail("path", link)
		}
		result.Status = types.LinkCreated
	default:
		l.logger.Warn().
			Str("path", link).
			Str("existing", result.Existing).
			Str("script", script).
			Msg("Link exists and points elsewhere, skipping")
		result.Status = types.LinkSkipped
		return result, nil
	}

	l.logger.Info().Str("path", link).Str("target", script).Str("status", string(result.Status)).Msg("Linked script")
	return result, nil
}

// replace creates a temporary link next to link and renames it into place
func (l *Linker) replace(script, link string) error {
	tmp := fmt.Sprintf("%s.pipis-%d", link, l.now().UnixNano())
	if err := l.fs.Symlink(script, tmp); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "cannot link %s", tmp).
			WithDetail("path", link)
	}
	if err := l.fs.Rename(tmp, link); err != nil {
		_ = l.fs.Remove(tmp)
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "cannot replace %s", link).
			WithDetail("path", link)
	}
	return nil
}

// pointsAt reports whether link is a symlink resolving to script. Relative
// targets are taken from the link's directory; symlinked parents are
// resolved when both paths exist.
func (l *Linker) pointsAt(link, script string) bool {
	target, err := l.fs.Readlink(link)
	if err != nil {
		return false
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(link), target)
	}
	target = filepath.Clean(target)
	script = filepath.Clean(script)
	if target == script {
		return true
	}

	realTarget, err := filepath.EvalSymlinks(target)
	if err != nil {
		return false
	}
	realScript, err := filepath.EvalSymlinks(script)
	return err == nil && realTarget == realScript
}

// describe names what occupies path for reporting
func (l *Linker) describe(path string) string {
	if target, err := l.fs.Readlink(path); err == nil {
		return target
	}
	return path
}

// Unlink removes Bin/<basename> for each script, but only where it is a
// symlink pointing at that script
func (l *Linker) Unlink(scripts []string) ([]types.LinkResult, error) {
	var results []types.LinkResult
	for _, script := range scripts {
		link := l.paths.LinkPath(script)

		info, err := l.fs.Lstat(link)
		if err != nil {
			continue
		}
		if info.Mode()&os.ModeSymlink == 0 {
			l.logger.Warn().Str("path", link).Msg("Not a link, leaving in place")
			continue
		}
		if !l.pointsAt(link, script) {
			l.logger.Warn().Str("path", link).Str("existing", l.describe(link)).Msg("Link points elsewhere, leaving in place")
			continue
		}

		if err := l.fs.Remove(link); err != nil && !os.IsNotExist(err) {
			return results, errors.Wrapf(err, errors.ErrFileAccess, "cannot remove %s", link).
				WithDetail("path", link)
		}
		l.logger.Info().Str("path", link).Msg("Removed link")
		results = append(results, types.LinkResult{Script: script, Link: link, Status: types.LinkRemoved})
	}
	return results, nil
}
