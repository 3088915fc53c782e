package metadata

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/pipis/pkg/errors"
	"gopkg.in/ini.v1"
)

// Source names one installed-files record format
type Source string

const (
	SourceRecord         Source = "RECORD"
	SourceInstalledFiles Source = "installed-files.txt"
	SourceEntryPoints    Source = "entry_points.txt"
)

type sourceParser func(r *Reader, name string, dist Distribution, data []byte) ([]string, error)

// sources are tried in order; the first file present wins even if it lists
// no scripts
var sources = []struct {
	source Source
	parse  sourceParser
}{
	{SourceRecord, parseRecord},
	{SourceInstalledFiles, parseInstalledFiles},
	{SourceEntryPoints, parseEntryPoints},
}

// Scripts returns the absolute paths of the executables the package
// installed into its environment's executable directory, sorted
func (r *Reader) Scripts(name string) ([]string, error) {
	dist, err := r.Distribution(name)
	if err != nil {
		return nil, err
	}

	for _, s := range sources {
		path := filepath.Join(dist.Dir, string(s.source))
		data, err := r.fs.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, errors.ErrMetadata, "cannot read %s", path).
				WithDetail("package", name)
		}

		files, err := s.parse(r, name, dist, data)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrMetadata, "cannot parse %s", path).
				WithDetail("package", name)
		}

		scripts := r.filterScripts(name, files)
		r.logger.Debug().
			Str("package", name).
			Str("source", string(s.source)).
			Strs("scripts", scripts).
			Msg("Discovered scripts")
		return scripts, nil
	}

	r.logger.Debug().Str("package", name).Str("path", dist.Dir).Msg("No installed-files record found")
	return nil, nil
}

// filterScripts keeps files directly inside the environment's executable
// directory, de-duplicated and sorted
func (r *Reader) filterScripts(name string, files []string) []string {
	binDir := filepath.Clean(r.paths.VenvBinDir(name))
	seen := map[string]bool{}
	var scripts []string
	for _, f := range files {
		f = filepath.Clean(f)
		if filepath.Dir(f) != binDir || seen[f] {
			continue
		}
		seen[f] = true
		scripts = append(scripts, f)
	}
	sort.Strings(scripts)
	return scripts
}

func resolve(base, path string) string {
	path = filepath.FromSlash(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// parseRecord reads a wheel RECORD: CSV rows of path,hash,size with paths
// relative to site-packages
func parseRecord(_ *Reader, _ string, dist Distribution, data []byte) ([]string, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var files []string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		files = append(files, resolve(dist.SitePackages, row[0]))
	}
	return files, nil
}

// parseInstalledFiles reads an egg-info installed-files.txt: one path per
// line relative to the egg-info directory
func parseInstalledFiles(_ *Reader, _ string, dist Distribution, data []byte) ([]string, error) {
	var files []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		files = append(files, resolve(dist.Dir, line))
	}
	return files, scanner.Err()
}

// parseEntryPoints reads the [console_scripts] keys of entry_points.txt.
// Bare names are resolved against the environment's executable directory.
func parseEntryPoints(r *Reader, name string, _ Distribution, data []byte) ([]string, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		KeyValueDelimiters:      "=",
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, data)
	if err != nil {
		return nil, err
	}

	sec, err := f.GetSection("console_scripts")
	if err != nil {
		return nil, nil
	}

	binDir := r.paths.VenvBinDir(name)
	var files []string
	for _, key := range sec.Keys() {
		files = append(files, resolve(binDir, key.Name()))
	}
	return files, nil
}
