// Package installer drives pip inside a package environment: installing
// the package, installing its recorded dependencies, and searching the index.
package installer

import (
	"context"
	"strings"

	"github.com/arthur-debert/pipis/pkg/errors"
	"github.com/arthur-debert/pipis/pkg/executil"
	"github.com/arthur-debert/pipis/pkg/logging"
	"github.com/arthur-debert/pipis/pkg/packages"
	"github.com/arthur-debert/pipis/pkg/paths"
	"github.com/arthur-debert/pipis/pkg/requirements"
	"github.com/arthur-debert/pipis/pkg/types"
	"github.com/rs/zerolog"
)

// Flags control one package installation
type Flags struct {
	Verbose         bool
	Upgrade         bool
	IgnoreInstalled bool
	// Fresh marks an environment created by this run; it is removed when
	// any pip step fails
	Fresh           bool
}

// Pip invokes pip for package environments
type Pip struct {
	runner executil.Runner
	fs     types.FS
	paths  paths.Paths
	python string
	logger zerolog.Logger
}

// New creates a pip invoker. python is the base interpreter, used for search.
func New(runner executil.Runner, fs types.FS, p paths.Paths, python string) *Pip {
	return &Pip{
		runner: runner,
		fs:     fs,
		paths:  p,
		python: python,
		logger: logging.GetLogger("installer"),
	}
}

// baseCommand is `<venv python> -m pip install`, quiet unless verbose
func (p *Pip) baseCommand(name string, flags Flags) executil.Command {
	cmd := executil.Command{
		Name: p.paths.VenvPython(name),
		Args: []string{"-m", "pip", "install"},
	}
	if !flags.Verbose {
		cmd = cmd.With("--quiet")
	}
	return cmd
}

// Install upgrades pip and wheel in the environment, then installs ref.
// On failure a fresh environment is removed. It returns the
// install command carrying the upgrade flags, for InstallDependencies.
func (p *Pip) Install(ctx context.Context, ref packages.Ref, flags Flags) (executil.Command, error) {
	name := ref.Name
	base := p.baseCommand(name, flags)

	if err := p.runner.Run(ctx, base.With("--upgrade", "pip", "wheel")); err != nil {
		p.rollback(name, flags)
		return executil.Command{}, errors.Wrapf(err, errors.ErrCommandFailed, "cannot upgrade pip in %s environment", name).
			WithDetail("package", name)
	}

	if flags.Upgrade {
		base = base.With("--upgrade")
	}
	if flags.IgnoreInstalled {
		base = base.With("--ignore-installed")
	}

	p.logger.Info().
		Str("package", name).
		Str("requirement", ref.Requirement()).
		Bool("upgrade", flags.Upgrade).
		Msg("Installing package")

	if err := p.runner.Run(ctx, base.With(ref.Requirement())); err != nil {
		return executil.Command{}, p.fail(err, name, flags)
	}

	return base, nil
}

// InstallDependencies records dependency (if any) in the environment's
// manifest and installs the manifest whenever it exists.
func (p *Pip) InstallDependencies(ctx context.Context, base executil.Command, name, dependency string, flags Flags) error {
	manifest := requirements.NewManifest(p.fs, p.paths.ManifestPath(name))

	if dependency != "" {
		if _, err := manifest.Add(dependency); err != nil {
			return err
		}
	}

	if !manifest.Exists() {
		return nil
	}

	p.logger.Info().
		Str("package", name).
		Str("path", manifest.Path()).
		Msg("Installing recorded dependencies")

	if err := p.runner.Run(ctx, base.With("--requirement", manifest.Path())); err != nil {
		return p.fail(err, name, flags)
	}
	return nil
}

// Search runs pip search with the base interpreter
func (p *Pip) Search(ctx context.Context, query string, verbose bool) (string, error) {
	cmd := executil.Command{Name: p.python, Args: []string{"-m", "pip", "search"}}
	if verbose {
		cmd = cmd.With("--verbose")
	}
	out, err := p.runner.Output(ctx, cmd.With(query))
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

// rollback removes the environment when this run created it
func (p *Pip) rollback(name string, flags Flags) {
	if !flags.Fresh {
		return
	}
	dir := p.paths.VenvPath(name)
	p.logger.Warn().Str("package", name).Str("path", dir).Msg("Installation failed, removing environment")
	if rmErr := p.fs.RemoveAll(dir); rmErr != nil {
		p.logger.Error().Err(rmErr).Str("path", dir).Msg("Cannot remove environment")
	}
}

// fail rolls back a fresh environment and reports the failed install
func (p *Pip) fail(err error, name string, flags Flags) error {
	p.rollback(name, flags)
	return errors.Wrapf(err, errors.ErrInstallationFailed, "Cannot install %s", name).
		WithDetail("package", name)
}
