// pkg/testutil/environment.go
// DEPENDENCIES: filesystem, paths
// PURPOSE: Orchestrate isolated test environments

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/pipis/pkg/filesystem"
	"github.com/arthur-debert/pipis/pkg/paths"
	"github.com/arthur-debert/pipis/pkg/types"
)

// TestEnvironment provides a complete test environment with all dependencies
type TestEnvironment struct {
	// Core paths
	Root    string
	HomeDir string
	Venvs   string
	Bin     string
	// Python is the configured base interpreter name
	Python string

	// Core dependencies
	FS     types.FS
	Paths  paths.Paths
	Runner *FakePython

	t *testing.T
}

// NewTestEnvironment creates a temp-dir backed environment. Logs, config
// lookups and PIPIS_* variables are redirected so nothing leaks from the host.
func NewTestEnvironment(t *testing.T, dists ...Distribution) *TestEnvironment {
	t.Helper()

	root := t.TempDir()
	env := &TestEnvironment{
		Root:    root,
		HomeDir: filepath.Join(root, "home"),
		Venvs:   filepath.Join(root, "data", "venvs"),
		Bin:     filepath.Join(root, "data", "bin"),
		Python:  "python3",
		FS:      filesystem.NewOS(),
		Runner:  NewFakePython(dists...),
		t:       t,
	}
	env.Paths = paths.New(env.Venvs, env.Bin)

	if err := os.MkdirAll(env.HomeDir, 0755); err != nil {
		t.Fatalf("Failed to create home: %v", err)
	}

	t.Setenv("HOME", env.HomeDir)
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv(paths.EnvVenvs, "")
	t.Setenv(paths.EnvBin, "")
	t.Setenv(paths.EnvPython, "")

	return env
}

// WriteFile writes content under the environment root and returns its path
func (env *TestEnvironment) WriteFile(rel, content string) string {
	env.t.Helper()
	path := filepath.Join(env.Root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		env.t.Fatalf("Failed to create dir for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		env.t.Fatalf("Failed to write %s: %v", rel, err)
	}
	return path
}

// Script returns the path of a script inside a package environment
func (env *TestEnvironment) Script(pkg, script string) string {
	return filepath.Join(env.Paths.VenvBinDir(pkg), script)
}

// Link returns the path of a script link in the links directory
func (env *TestEnvironment) Link(script string) string {
	return filepath.Join(env.Bin, script)
}
