// pkg/testutil/fakepython.go
// DEPENDENCIES: executil, packages
// PURPOSE: Emulate venv and pip so pipelines run without a Python install

package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/arthur-debert/pipis/pkg/errors"
	"github.com/arthur-debert/pipis/pkg/executil"
	"github.com/arthur-debert/pipis/pkg/packages"
)

// MetadataFormat selects which installed-files record a fake distribution writes
type MetadataFormat int

const (
	// FormatRecord writes a wheel-style dist-info with RECORD
	FormatRecord MetadataFormat = iota
	// FormatInstalledFiles writes a legacy egg-info with installed-files.txt
	FormatInstalledFiles
	// FormatEntryPoints writes a dist-info with only entry_points.txt
	FormatEntryPoints
)

// FakePythonVersion is the interpreter version used for site-packages
const FakePythonVersion = "3.12"

// Distribution is a package FakePython knows how to install
type Distribution struct {
	// Name is the project name as written in metadata
	Name string
	// Versions available on the fake index, oldest first
	Versions []string
	// Scripts are the executable basenames the package installs
	Scripts []string
	Format  MetadataFormat
}

// Latest returns the newest available version
func (d Distribution) Latest() string {
	return d.Versions[len(d.Versions)-1]
}

// Call is one recorded invocation
type Call struct {
	Name string
	Args []string
}

func (c Call) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// FakePython implements executil.Runner
type FakePython struct {
	mu      sync.Mutex
	catalog map[string]Distribution
	calls   []Call

	// SearchResults maps a query to pip search output
	SearchResults map[string]string
	// FailVenv makes environment creation fail
	FailVenv bool
	// FailPipUpgrade makes the pip self-upgrade step fail
	FailPipUpgrade bool
}

// NewFakePython creates a fake interpreter that can install dists
func NewFakePython(dists ...Distribution) *FakePython {
	f := &FakePython{
		catalog:       map[string]Distribution{},
		SearchResults: map[string]string{},
	}
	for _, d := range dists {
		f.Add(d)
	}
	return f
}

// Add registers a distribution in the fake index
func (f *FakePython) Add(d Distribution) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.catalog[packages.Canonical(d.Name)] = d
}

// Publish adds a newer version of an already registered distribution
func (f *FakePython) Publish(name, version string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := packages.Canonical(name)
	d := f.catalog[key]
	d.Versions = append(d.Versions, version)
	f.catalog[key] = d
}

// Calls returns every recorded invocation
func (f *FakePython) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallStrings returns recorded invocations rendered as command lines
func (f *FakePython) CallStrings() []string {
	var out []string
	for _, c := range f.Calls() {
		out = append(out, c.String())
	}
	return out
}

// Reset forgets recorded invocations
func (f *FakePython) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *FakePython) Run(ctx context.Context, cmd executil.Command) error {
	_, err := f.Output(ctx, cmd)
	return err
}

func (f *FakePython) Output(ctx context.Context, cmd executil.Command) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Name: cmd.Name, Args: append([]string(nil), cmd.Args...)})
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	args := cmd.Args
	if len(args) < 2 || args[0] != "-m" {
		return "", failure(cmd, "unsupported invocation")
	}

	switch args[1] {
	case "venv":
		return "", f.venv(cmd, args[2:])
	case "pip":
		if len(args) < 3 {
			return "", failure(cmd, "missing pip command")
		}
		venv := filepath.Dir(filepath.Dir(cmd.Name))
		switch args[2] {
		case "install":
			return "", f.install(cmd, venv, args[3:])
		case "search":
			return f.search(cmd, args[3:])
		}
	}
	return "", failure(cmd, "unsupported module")
}

func (f *FakePython) venv(cmd executil.Command, args []string) error {
	if f.FailVenv {
		return failure(cmd, "venv creation disabled")
	}
	if len(args) == 0 {
		return failure(cmd, "missing environment directory")
	}
	dir := args[len(args)-1]

	for _, sub := range []string{"bin", siteRel()} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "bin", "python"), []byte("#!/bin/sh\n"), 0755); err != nil {
		return err
	}
	cfg := fmt.Sprintf("home = /usr/bin\ninclude-system-site-packages = %t\nversion = %s.0\n",
		contains(args, "--system-site-packages"), FakePythonVersion)
	return os.WriteFile(filepath.Join(dir, "pyvenv.cfg"), []byte(cfg), 0644)
}

func (f *FakePython) install(cmd executil.Command, venv string, args []string) error {
	if _, err := os.Stat(cmd.Name); err != nil {
		return failure(cmd, "interpreter not found")
	}

	var (
		upgrade bool
		reqs    []string
	)
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--quiet", "--verbose", "--ignore-installed":
		case "--upgrade":
			upgrade = true
		case "--requirement":
			if i+1 >= len(args) {
				return failure(cmd, "missing requirement file")
			}
			i++
			data, err := os.ReadFile(args[i])
			if err != nil {
				return failure(cmd, "cannot read "+args[i])
			}
			for _, line := range strings.Split(string(data), "\n") {
				if line = strings.TrimSpace(line); line != "" {
					reqs = append(reqs, line)
				}
			}
		default:
			reqs = append(reqs, args[i])
		}
	}

	if len(reqs) == 2 && reqs[0] == "pip" && reqs[1] == "wheel" {
		if f.FailPipUpgrade {
			return failure(cmd, "pip upgrade disabled")
		}
		return nil
	}

	for _, raw := range reqs {
		ref, err := packages.Parse(raw)
		if err != nil {
			return failure(cmd, err.Error())
		}
		f.mu.Lock()
		dist, ok := f.catalog[packages.Canonical(ref.Name)]
		f.mu.Unlock()
		if !ok {
			return failure(cmd, "No matching distribution found for "+raw)
		}

		version := dist.Latest()
		if strings.HasPrefix(ref.VersionSpec, "==") {
			version = strings.TrimPrefix(ref.VersionSpec, "==")
			if !contains(dist.Versions, version) {
				return failure(cmd, "No matching distribution found for "+raw)
			}
		}

		existing := installedDistDirs(venv, dist.Name)
		if len(existing) > 0 && !upgrade {
			continue
		}
		for _, dir := range existing {
			if err := os.RemoveAll(dir); err != nil {
				return err
			}
		}
		if err := writeDistribution(venv, dist, version); err != nil {
			return err
		}
	}
	return nil
}

func (f *FakePython) search(cmd executil.Command, args []string) (string, error) {
	var query string
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			query = a
		}
	}
	out, ok := f.SearchResults[query]
	if !ok {
		return "", failure(cmd, "XMLRPC request failed")
	}
	return out, nil
}

// SitePackages returns the fake site-packages directory of an environment
func SitePackages(venv string) string {
	return filepath.Join(venv, siteRel())
}

func siteRel() string {
	return filepath.Join("lib", "python"+FakePythonVersion, "site-packages")
}

func distStem(name string) string {
	return strings.ReplaceAll(packages.Canonical(name), "-", "_")
}

func installedDistDirs(venv, name string) []string {
	site := SitePackages(venv)
	entries, err := os.ReadDir(site)
	if err != nil {
		return nil
	}
	stem := distStem(name) + "-"
	var dirs []string
	for _, e := range entries {
		n := e.Name()
		if strings.HasPrefix(n, stem) && (strings.HasSuffix(n, ".dist-info") || strings.HasSuffix(n, ".egg-info")) {
			dirs = append(dirs, filepath.Join(site, n))
		}
	}
	sort.Strings(dirs)
	return dirs
}

func writeDistribution(venv string, dist Distribution, version string) error {
	site := SitePackages(venv)
	stem := distStem(dist.Name)
	bin := filepath.Join(venv, "bin")

	if err := os.MkdirAll(filepath.Join(site, stem), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(site, stem, "__init__.py"), nil, 0644); err != nil {
		return err
	}
	for _, script := range dist.Scripts {
		if err := os.WriteFile(filepath.Join(bin, script), []byte("#!"+filepath.Join(bin, "python")+"\n"), 0755); err != nil {
			return err
		}
	}

	metadata := fmt.Sprintf("Metadata-Version: 2.1\nName: %s\nVersion: %s\nSummary: fake\n\n", dist.Name, version)

	switch dist.Format {
	case FormatInstalledFiles:
		info := filepath.Join(site, fmt.Sprintf("%s-%s-py%s.egg-info", stem, version, FakePythonVersion))
		if err := os.MkdirAll(info, 0755); err != nil {
			return err
		}
		lines := []string{filepath.Join("..", stem, "__init__.py")}
		for _, script := range dist.Scripts {
			lines = append(lines, filepath.Join("..", "..", "..", "..", "bin", script))
		}
		lines = append(lines, "PKG-INFO", "installed-files.txt")
		if err := os.WriteFile(filepath.Join(info, "PKG-INFO"), []byte(metadata), 0644); err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(info, "installed-files.txt"), []byte(strings.Join(lines, "\n")+"\n"), 0644)

	case FormatEntryPoints:
		info := filepath.Join(site, fmt.Sprintf("%s-%s.dist-info", stem, version))
		if err := os.MkdirAll(info, 0755); err != nil {
			return err
		}
		var b strings.Builder
		b.WriteString("[console_scripts]\n")
		for _, script := range dist.Scripts {
			fmt.Fprintf(&b, "%s = %s.cli:main\n", script, stem)
		}
		b.WriteString("\n[gui_scripts]\n")
		if err := os.WriteFile(filepath.Join(info, "METADATA"), []byte(metadata), 0644); err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(info, "entry_points.txt"), []byte(b.String()), 0644)

	default:
		infoName := fmt.Sprintf("%s-%s.dist-info", stem, version)
		info := filepath.Join(site, infoName)
		if err := os.MkdirAll(info, 0755); err != nil {
			return err
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%s/__init__.py,sha256=47DEQpj8HBSa-_TImW-5JCeuQeRkm5NMpJWZG3hSuFU,0\n", stem)
		for _, script := range dist.Scripts {
			fmt.Fprintf(&b, "../../../bin/%s,sha256=AbCdEf,226\n", script)
		}
		fmt.Fprintf(&b, "%s/METADATA,sha256=AbCdEf,120\n", infoName)
		fmt.Fprintf(&b, "%s/RECORD,,\n", infoName)
		if err := os.WriteFile(filepath.Join(info, "METADATA"), []byte(metadata), 0644); err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(info, "RECORD"), []byte(b.String()), 0644)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func failure(cmd executil.Command, msg string) error {
	return errors.Newf(errors.ErrCommandFailed, "command failed: %s", cmd).
		WithDetail("exitCode", 1).
		WithDetail("stderr", "ERROR: "+msg)
}
