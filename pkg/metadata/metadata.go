// Package metadata reads the installed distribution metadata of a package
// environment to find the scripts the package installed and its version.
package metadata

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/pipis/pkg/errors"
	"github.com/arthur-debert/pipis/pkg/logging"
	"github.com/arthur-debert/pipis/pkg/packages"
	"github.com/arthur-debert/pipis/pkg/paths"
	"github.com/arthur-debert/pipis/pkg/types"
	"github.com/rs/zerolog"
)

const (
	distInfoSuffix = ".dist-info"
	eggInfoSuffix  = ".egg-info"
)

// Distribution is an installed distribution's metadata directory
type Distribution struct {
	// Dir is the .dist-info or .egg-info directory
	Dir string
	// SitePackages is the directory Dir lives in
	SitePackages string
}

// IsEgg reports whether this is legacy egg metadata
func (d Distribution) IsEgg() bool {
	return strings.HasSuffix(d.Dir, eggInfoSuffix)
}

// Reader reads distribution metadata from package environments
type Reader struct {
	fs     types.FS
	paths  paths.Paths
	logger zerolog.Logger
}

// NewReader creates a metadata reader
func NewReader(fs types.FS, p paths.Paths) *Reader {
	return &Reader{
		fs:     fs,
		paths:  p,
		logger: logging.GetLogger("metadata"),
	}
}

// Distribution finds the metadata directory for the package installed in
// the environment named name
func (r *Reader) Distribution(name string) (Distribution, error) {
	want := packages.Canonical(name)

	var candidates []Distribution
	for _, site := range r.sitePackages(name) {
		entries, err := r.fs.ReadDir(site)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			project, ok := projectPart(e.Name())
			if !ok || packages.Canonical(project) != want {
				continue
			}
			candidates = append(candidates, Distribution{Dir: filepath.Join(site, e.Name()), SitePackages: site})
		}
	}

	if len(candidates) == 0 {
		return Distribution{}, errors.Newf(errors.ErrNotFound, "no metadata found for %s", name).
			WithDetail("package", name)
	}

	// wheel metadata wins over egg metadata
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].IsEgg() != candidates[j].IsEgg() {
			return !candidates[i].IsEgg()
		}
		return candidates[i].Dir < candidates[j].Dir
	})
	return candidates[0], nil
}

// sitePackages lists lib/python*/site-packages and Lib/site-packages
func (r *Reader) sitePackages(name string) []string {
	venv := r.paths.VenvPath(name)
	var dirs []string

	lib := filepath.Join(venv, "lib")
	if entries, err := r.fs.ReadDir(lib); err == nil {
		for _, e := range entries {
			if e.IsDir() && strings.HasPrefix(e.Name(), "python") {
				dirs = append(dirs, filepath.Join(lib, e.Name(), "site-packages"))
			}
		}
	}
	dirs = append(dirs, filepath.Join(venv, "Lib", "site-packages"))

	var existing []string
	for _, d := range dirs {
		if info, err := r.fs.Stat(d); err == nil && info.IsDir() {
			existing = append(existing, d)
		}
	}
	sort.Strings(existing)
	return existing
}

// projectPart returns the project name encoded in a metadata directory name
func projectPart(dirName string) (string, bool) {
	var stem string
	switch {
	case strings.HasSuffix(dirName, distInfoSuffix):
		stem = strings.TrimSuffix(dirName, distInfoSuffix)
	case strings.HasSuffix(dirName, eggInfoSuffix):
		stem = strings.TrimSuffix(dirName, eggInfoSuffix)
	default:
		return "", false
	}
	if i := strings.Index(stem, "-"); i >= 0 {
		stem = stem[:i]
	}
	return stem, stem != ""
}

// versionPart returns the version encoded in a metadata directory name
func versionPart(dirName string) string {
	stem := strings.TrimSuffix(strings.TrimSuffix(dirName, distInfoSuffix), eggInfoSuffix)
	parts := strings.Split(stem, "-")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
