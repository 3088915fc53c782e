package manager

import (
	"context"

	"github.com/arthur-debert/pipis/pkg/errors"
	"github.com/arthur-debert/pipis/pkg/installer"
	"github.com/arthur-debert/pipis/pkg/logging"
	"github.com/arthur-debert/pipis/pkg/packages"
	"github.com/arthur-debert/pipis/pkg/types"
	"github.com/arthur-debert/pipis/pkg/venv"
)

// InstallOptions are the inputs of Install
type InstallOptions struct {
	Targets
	// Dependency is recorded in the package's manifest and installed with it
	Dependency      string
	System          bool
	Upgrade         bool
	IgnoreInstalled bool
	Verbose         bool
}

// UpdateOptions are the inputs of Update
type UpdateOptions struct {
	Targets
	IgnoreInstalled bool
	Verbose         bool
}

// PlanInstall validates opts and returns the package names Install would
// process, without side effects
func (m *Manager) PlanInstall(opts InstallOptions) ([]string, error) {
	refs, err := m.planInstall(opts)
	return refNames(refs), err
}

func (m *Manager) planInstall(opts InstallOptions) ([]packages.Ref, error) {
	refs, err := m.resolve(opts.Targets, false)
	if err != nil {
		return nil, err
	}
	if opts.Dependency != "" && len(refs) > 1 {
		return nil, errors.New(errors.ErrUsage, MsgDependencyMultiple)
	}
	if opts.Dependency != "" {
		if _, err := packages.Parse(opts.Dependency); err != nil {
			return nil, err
		}
	}
	return refs, nil
}

// Install installs each target package into its own environment and links
// its scripts
func (m *Manager) Install(ctx context.Context, opts InstallOptions) ([]types.PackageResult, error) {
	refs, err := m.planInstall(opts)
	if err != nil {
		return nil, err
	}

	m.progress.Start("Installing", len(refs))
	defer m.progress.Done()

	var results []types.PackageResult
	for _, ref := range refs {
		m.progress.Step(ref.Name)
		result, err := m.installOne(ctx, ref, opts.Dependency, venv.Options{System: opts.System, Upgrade: opts.Upgrade},
			installer.Flags{Verbose: opts.Verbose, Upgrade: opts.Upgrade, IgnoreInstalled: opts.IgnoreInstalled})
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// PlanUpdate validates opts and returns the package names Update would
// process. Every named package must already be installed.
func (m *Manager) PlanUpdate(opts UpdateOptions) ([]string, error) {
	refs, err := m.planUpdate(opts)
	return refNames(refs), err
}

func (m *Manager) planUpdate(opts UpdateOptions) ([]packages.Ref, error) {
	refs, err := m.resolve(opts.Targets, true)
	if err != nil {
		return nil, err
	}
	if opts.Targets.IsEmpty() {
		names, err := m.venvs.Installed()
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			refs = append(refs, packages.Ref{Name: name})
		}
	}

	for _, ref := range refs {
		if !m.venvs.Exists(ref.Name) {
			return nil, m.notInstalledError(ref.Name)
		}
	}
	return refs, nil
}

// Update upgrades installed packages, every installed package when no
// targets are given
func (m *Manager) Update(ctx context.Context, opts UpdateOptions) ([]types.PackageResult, error) {
	refs, err := m.planUpdate(opts)
	if err != nil {
		return nil, err
	}

	m.progress.Start("Updating", len(refs))
	defer m.progress.Done()

	var results []types.PackageResult
	for _, ref := range refs {
		m.progress.Step(ref.Name)
		result, err := m.installOne(ctx, ref, "", venv.Options{Upgrade: true},
			installer.Flags{Verbose: opts.Verbose, Upgrade: true, IgnoreInstalled: opts.IgnoreInstalled})
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// installOne runs the per-package pipeline: provision, install, record
// dependency, link
func (m *Manager) installOne(ctx context.Context, ref packages.Ref, dependency string, vopts venv.Options, flags installer.Flags) (types.PackageResult, error) {
	logger := m.logger.With().Str("package", ref.Name).Logger()
	done := logging.LogOperationStart(logger, "install")
	defer done()

	result := types.PackageResult{Name: ref.Name}

	existed := m.venvs.Exists(ref.Name)
	if existed {
		if v, err := m.meta.Version(ref.Name); err == nil {
			result.PreviousVersion = v
		}
	}

	if _, err := m.venvs.Ensure(ctx, ref.Name, vopts); err != nil {
		return result, err
	}
	flags.Fresh = !existed

	base, err := m.pip.Install(ctx, ref, flags)
	if err != nil {
		return result, err
	}
	if err := m.pip.InstallDependencies(ctx, base, ref.Name, dependency, flags); err != nil {
		return result, err
	}

	scripts, err := m.meta.Scripts(ref.Name)
	if err != nil {
		return result, err
	}
	if len(scripts) == 0 {
		logger.Warn().Msg("Package provides no scripts, removing environment")
		if rmErr := m.venvs.Remove(ref.Name); rmErr != nil {
			logger.Error().Err(rmErr).Msg("Cannot remove environment")
		}
		return result, errors.New(errors.ErrUnsupportedPackage, MsgUnsupportedLibrary).
			WithDetail("package", ref.Name)
	}

	links, err := m.links.Link(scripts, flags.Upgrade)
	result.Links = links
	if err != nil {
		return result, err
	}

	if v, err := m.meta.Version(ref.Name); err == nil {
		result.Version = v
	} else {
		result.Version = types.UnknownVersion
	}

	result.Outcome = types.OutcomeInstalled
	if existed {
		result.Outcome = compareVersions(result.PreviousVersion, result.Version)
	}

	logger.Info().
		Str("outcome", string(result.Outcome)).
		Str("version", result.Version).
		Msg("Package processed")
	return result, nil
}
