package manager

import (
	"context"

	"github.com/arthur-debert/pipis/pkg/errors"
	"github.com/arthur-debert/pipis/pkg/types"
	"github.com/sahilm/fuzzy"
)

// UninstallOptions are the inputs of Uninstall
type UninstallOptions struct {
	Targets
}

// PlanUninstall validates opts and returns the package names Uninstall
// would process
func (m *Manager) PlanUninstall(opts UninstallOptions) ([]string, error) {
	refs, err := m.resolve(opts.Targets, false)
	return refNames(refs), err
}

// Uninstall removes each target's links and environment. A package that is
// not installed is reported, not treated as an error.
func (m *Manager) Uninstall(ctx context.Context, opts UninstallOptions) ([]types.PackageResult, error) {
	refs, err := m.resolve(opts.Targets, false)
	if err != nil {
		return nil, err
	}

	m.progress.Start("Removing", len(refs))
	defer m.progress.Done()

	var results []types.PackageResult
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		m.progress.Step(ref.Name)

		result, err := m.uninstallOne(ref.Name)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (m *Manager) uninstallOne(name string) (types.PackageResult, error) {
	logger := m.logger.With().Str("package", name).Logger()
	result := types.PackageResult{Name: name}

	if !m.venvs.Exists(name) {
		result.Outcome = types.OutcomeNotInstalled
		result.Suggestion = m.suggest(name)
		logger.Info().Str("suggestion", result.Suggestion).Msg("Package is not installed")
		return result, nil
	}

	if v, err := m.meta.Version(name); err == nil {
		result.PreviousVersion = v
	}

	scripts, err := m.meta.Scripts(name)
	if err != nil {
		logger.Warn().Err(err).Msg("Cannot read package metadata, links are left in place")
	} else {
		links, err := m.links.Unlink(scripts)
		result.Links = links
		if err != nil {
			return result, err
		}
	}

	if err := m.venvs.Remove(name); err != nil {
		return result, err
	}

	result.Outcome = types.OutcomeUninstalled
	return result, nil
}

// suggest returns the installed name closest to name, if any
func (m *Manager) suggest(name string) string {
	installed, err := m.venvs.Installed()
	if err != nil || len(installed) == 0 {
		return ""
	}
	matches := fuzzy.Find(name, installed)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}

func (m *Manager) notInstalledError(name string) error {
	err := errors.Newf(errors.ErrNotInstalled, "Package %s is not installed", name).
		WithDetail("package", name)
	if s := m.suggest(name); s != "" {
		err = err.WithDetail("suggestion", s)
	}
	return err
}
