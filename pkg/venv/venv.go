// Package venv creates, rebuilds, lists and removes the per-package
// environments under the environments root.
package venv

import (
	"context"
	"os"
	"sort"

	"github.com/arthur-debert/pipis/pkg/errors"
	"github.com/arthur-debert/pipis/pkg/executil"
	"github.com/arthur-debert/pipis/pkg/logging"
	"github.com/arthur-debert/pipis/pkg/paths"
	"github.com/arthur-debert/pipis/pkg/types"
	"github.com/rs/zerolog"
)

// Options controls environment provisioning
type Options struct {
	// System gives the environment access to the system site-packages
	System bool
	// Upgrade rebuilds an existing environment in place
	Upgrade bool
}

// Provisioner manages package environments
type Provisioner struct {
	runner executil.Runner
	fs     types.FS
	paths  paths.Paths
	python string
	logger zerolog.Logger
}

// NewProvisioner creates a provisioner that builds environments with python
func NewProvisioner(runner executil.Runner, fs types.FS, p paths.Paths, python string) *Provisioner {
	return &Provisioner{
		runner: runner,
		fs:     fs,
		paths:  p,
		python: python,
		logger: logging.GetLogger("venv"),
	}
}

// Path returns the environment directory for a package
func (p *Provisioner) Path(name string) string {
	return p.paths.VenvPath(name)
}

// Exists reports whether the package's environment directory exists
func (p *Provisioner) Exists(name string) bool {
	info, err := p.fs.Stat(p.Path(name))
	return err == nil && info.IsDir()
}

// Ensure creates the environment if missing, or rebuilds it when opts.Upgrade
// is set. An existing environment is otherwise left alone.
func (p *Provisioner) Ensure(ctx context.Context, name string, opts Options) (string, error) {
	dir := p.Path(name)
	exists := p.Exists(name)

	if exists && !opts.Upgrade {
		p.logger.Debug().Str("package", name).Str("path", dir).Msg("Environment already exists")
		return dir, nil
	}

	args := []string{"-m", "venv", "--symlinks"}
	if exists {
		args = append(args, "--upgrade")
	}
	if opts.System {
		args = append(args, "--system-site-packages")
	}
	args = append(args, dir)

	if err := p.fs.MkdirAll(p.paths.VenvsDir(), 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot create %s", p.paths.VenvsDir())
	}

	p.logger.Info().
		Str("package", name).
		Str("path", dir).
		Bool("upgrade", exists).
		Msg("Provisioning environment")

	if err := p.runner.Run(ctx, executil.Command{Name: p.python, Args: args}); err != nil {
		if !exists {
			_ = p.fs.RemoveAll(dir)
		}
		return "", errors.Wrapf(err, errors.ErrInstallationFailed, "cannot create environment for %s", name).
			WithDetail("package", name)
	}

	return dir, nil
}

// Remove deletes the package's environment
func (p *Provisioner) Remove(name string) error {
	dir := p.Path(name)
	p.logger.Info().Str("package", name).Str("path", dir).Msg("Removing environment")
	if err := p.fs.RemoveAll(dir); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot remove %s", dir).
			WithDetail("package", name)
	}
	return nil
}

// Installed lists the environment names under the environments root, sorted
func (p *Provisioner) Installed() ([]string, error) {
	entries, err := p.fs.ReadDir(p.paths.VenvsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot list %s", p.paths.VenvsDir())
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
