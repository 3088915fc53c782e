// Package requirements reads requirements files given with -r and maintains
// the per-environment dependency manifest.
package requirements

import (
	"os"
	"sort"
	"strings"

	"github.com/arthur-debert/pipis/pkg/errors"
	"github.com/arthur-debert/pipis/pkg/logging"
	"github.com/arthur-debert/pipis/pkg/types"
)

// ReadFile returns the requirement lines of a requirements file.
// Blank lines and lines starting with # are ignored.
func ReadFile(fs types.FS, path string) ([]string, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read requirements file %s", path).
			WithDetail("path", path)
	}
	return parseLines(string(data)), nil
}

func parseLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// Manifest is the requirements.txt kept inside a package environment. It
// records extra dependencies so they are re-installed on update.
type Manifest struct {
	fs   types.FS
	path string
}

// NewManifest returns the manifest stored at path
func NewManifest(fs types.FS, path string) *Manifest {
	return &Manifest{fs: fs, path: path}
}

// Path returns the manifest location
func (m *Manifest) Path() string {
	return m.path
}

// Exists reports whether the manifest file is present
func (m *Manifest) Exists() bool {
	_, err := m.fs.Stat(m.path)
	return err == nil
}

// Entries returns the recorded dependencies; a missing manifest has none
func (m *Manifest) Entries() ([]string, error) {
	data, err := m.fs.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", m.path)
	}
	return parseLines(string(data)), nil
}

// Add records dependency, creating the manifest if needed. Entries are a set
// and are written sorted, one per line. It reports whether the file changed.
func (m *Manifest) Add(dependency string) (bool, error) {
	logger := logging.GetLogger("requirements")

	entries, err := m.Entries()
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if entry == dependency {
			logger.Debug().Str("path", m.path).Str("dependency", dependency).Msg("Dependency already recorded")
			return false, nil
		}
	}

	entries = append(entries, dependency)
	sort.Strings(entries)
	content := strings.Join(entries, "\n") + "\n"
	if err := m.fs.WriteFile(m.path, []byte(content), 0644); err != nil {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot write %s", m.path).
			WithDetail("path", m.path)
	}

	logger.Info().Str("path", m.path).Str("dependency", dependency).Msg("Dependency recorded")
	return true, nil
}
