// Package manager orchestrates the pipis commands over the environment
// provisioner, pip invoker, metadata reader and linker.
//
// Packages are processed sequentially and the first failure aborts the run.
// All argument validation happens before any environment is touched.
package manager

import (
	"github.com/arthur-debert/pipis/pkg/config"
	"github.com/arthur-debert/pipis/pkg/executil"
	"github.com/arthur-debert/pipis/pkg/installer"
	"github.com/arthur-debert/pipis/pkg/linker"
	"github.com/arthur-debert/pipis/pkg/logging"
	"github.com/arthur-debert/pipis/pkg/metadata"
	"github.com/arthur-debert/pipis/pkg/paths"
	"github.com/arthur-debert/pipis/pkg/types"
	"github.com/arthur-debert/pipis/pkg/venv"
	"github.com/rs/zerolog"
)

// Progress receives per-package progress of multi-package runs
type Progress interface {
	Start(label string, total int)
	Step(name string)
	Done()
}

type noProgress struct{}

func (noProgress) Start(string, int) {}
func (noProgress) Step(string)       {}
func (noProgress) Done()             {}

// Manager runs pipis operations against one resolved configuration
type Manager struct {
	cfg      *config.Config
	fs       types.FS
	paths    paths.Paths
	venvs    *venv.Provisioner
	pip      *installer.Pip
	meta     *metadata.Reader
	links    *linker.Linker
	progress Progress
	logger   zerolog.Logger
}

// New wires a manager for cfg. runner executes venv and pip.
func New(cfg *config.Config, runner executil.Runner, fs types.FS) *Manager {
	p := paths.New(cfg.Venvs, cfg.Bin)
	return &Manager{
		cfg:      cfg,
		fs:       fs,
		paths:    p,
		venvs:    venv.NewProvisioner(runner, fs, p, cfg.Python),
		pip:      installer.New(runner, fs, p, cfg.Python),
		meta:     metadata.NewReader(fs, p),
		links:    linker.New(fs, p),
		progress: noProgress{},
		logger:   logging.GetLogger("manager"),
	}
}

// WithProgress reports per-package progress to p
func (m *Manager) WithProgress(p Progress) *Manager {
	if p == nil {
		p = noProgress{}
	}
	m.progress = p
	return m
}

// Paths exposes the layout the manager works on
func (m *Manager) Paths() paths.Paths {
	return m.paths
}
