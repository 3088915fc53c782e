package manager

import (
	"context"
	"strings"

	"github.com/arthur-debert/pipis/pkg/types"
)

// List describes every installed package, sorted by name. Packages whose
// metadata cannot be read are listed with an unknown version.
func (m *Manager) List() ([]types.InstalledPackage, error) {
	names, err := m.venvs.Installed()
	if err != nil {
		return nil, err
	}

	pkgs := make([]types.InstalledPackage, 0, len(names))
	for _, name := range names {
		pkg := types.InstalledPackage{Name: name, Path: m.venvs.Path(name), Version: types.UnknownVersion}
		if v, err := m.meta.Version(name); err == nil {
			pkg.Version = v
			pkg.Known = true
		} else {
			m.logger.Warn().Err(err).Str("package", name).Msg("Cannot read package version")
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs, nil
}

// Freeze returns name==version lines for installed packages with known versions
func (m *Manager) Freeze() ([]string, error) {
	pkgs, err := m.List()
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		if !p.Known {
			m.logger.Warn().Str("package", p.Name).Msg("Skipping package with unknown version")
			continue
		}
		lines = append(lines, p.Name+"=="+p.Version)
	}
	return lines, nil
}

// Search queries the package index. A failed or empty search is a miss,
// not an error.
func (m *Manager) Search(ctx context.Context, query string, verbose bool) (types.SearchResult, error) {
	result := types.SearchResult{Query: query}

	out, err := m.pip.Search(ctx, query, verbose)
	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		m.logger.Debug().Err(err).Str("query", query).Msg("Search failed")
	}

	if err != nil || strings.TrimSpace(out) == "" {
		result.Output = "Package '" + query + "' not found"
		return result, nil
	}

	result.Found = true
	result.Output = out
	return result, nil
}
