// TEST TYPE: Integration Test
// DEPENDENCIES: testutil.FakePython, real temp filesystem
// PURPOSE: Test the end-to-end install, update, uninstall, list, freeze and search flows

package manager_test

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/arthur-debert/pipis/pkg/config"
	"github.com/arthur-debert/pipis/pkg/errors"
	"github.com/arthur-debert/pipis/pkg/manager"
	"github.com/arthur-debert/pipis/pkg/testutil"
	"github.com/arthur-debert/pipis/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	demo     = testutil.Distribution{Name: "demo", Versions: []string{"1.0.0"}, Scripts: []string{"demo"}}
	httpie   = testutil.Distribution{Name: "httpie", Versions: []string{"3.2.1", "3.2.2"}, Scripts: []string{"http", "https"}, Format: testutil.FormatInstalledFiles}
	tox      = testutil.Distribution{Name: "tox", Versions: []string{"4.11.0"}, Scripts: []string{"tox"}, Format: testutil.FormatEntryPoints}
	requests = testutil.Distribution{Name: "requests", Versions: []string{"2.31.0"}}
	pysocks  = testutil.Distribution{Name: "PySocks", Versions: []string{"1.7.1"}, Scripts: []string{"socks-probe"}}
)

type recordingProgress struct {
	label string
	total int
	steps []string
	done  bool
}

func (p *recordingProgress) Start(label string, total int) { p.label, p.total = label, total }
func (p *recordingProgress) Step(name string)              { p.steps = append(p.steps, name) }
func (p *recordingProgress) Done()                         { p.done = true }

func setup(t *testing.T) (*testutil.TestEnvironment, *manager.Manager) {
	t.Helper()
	env := testutil.NewTestEnvironment(t, demo, httpie, tox, requests, pysocks)
	cfg := &config.Config{Venvs: env.Venvs, Bin: env.Bin, Python: env.Python}
	return env, manager.New(cfg, env.Runner, env.FS)
}

func install(t *testing.T, m *manager.Manager, names ...string) []types.PackageResult {
	t.Helper()
	results, err := m.Install(context.Background(), manager.InstallOptions{Targets: manager.Targets{Names: names}})
	require.NoError(t, err)
	return results
}

func TestInstallCreatesEnvironmentAndLinks(t *testing.T) {
	env, m := setup(t)

	results := install(t, m, "demo")

	require.Len(t, results, 1)
	assert.Equal(t, "demo", results[0].Name)
	assert.Equal(t, types.OutcomeInstalled, results[0].Outcome)
	assert.Equal(t, "1.0.0", results[0].Version)

	testutil.AssertDirExists(t, filepath.Join(env.Venvs, "demo"))
	testutil.AssertFileExists(t, env.Script("demo", "demo"))
	testutil.AssertSymlink(t, env.Link("demo"), env.Script("demo", "demo"))
}

func TestInstallEveryMetadataFormat(t *testing.T) {
	env, m := setup(t)

	install(t, m, "httpie", "tox")

	testutil.AssertSymlink(t, env.Link("http"), env.Script("httpie", "http"))
	testutil.AssertSymlink(t, env.Link("https"), env.Script("httpie", "https"))
	testutil.AssertSymlink(t, env.Link("tox"), env.Script("tox", "tox"))
}

func TestInstallTwiceIsNoop(t *testing.T) {
	env, m := setup(t)
	install(t, m, "demo")
	linkInfo, err := os.Lstat(env.Link("demo"))
	require.NoError(t, err)

	results := install(t, m, "demo")

	assert.Equal(t, types.OutcomeUnchanged, results[0].Outcome)
	assert.Equal(t, types.LinkUnchanged, results[0].Links[0].Status)
	again, err := os.Lstat(env.Link("demo"))
	require.NoError(t, err)
	assert.Equal(t, linkInfo.ModTime(), again.ModTime())
}

func TestInstallPinnedVersion(t *testing.T) {
	_, m := setup(t)

	results := install(t, m, "httpie==3.2.1")
	assert.Equal(t, "3.2.1", results[0].Version)
}

func TestInstallLibraryIsRejected(t *testing.T) {
	env, m := setup(t)

	_, err := m.Install(context.Background(), manager.InstallOptions{Targets: manager.Targets{Names: []string{"requests"}}})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnsupportedPackage))
	assert.Contains(t, err.Error(), "library installation is not supported by pipis")

	testutil.AssertNotExists(t, filepath.Join(env.Venvs, "requests"))
	entries, _ := os.ReadDir(env.Bin)
	assert.Empty(t, entries)
}

func TestInstallUnknownPackageRollsBack(t *testing.T) {
	env, m := setup(t)

	_, err := m.Install(context.Background(), manager.InstallOptions{Targets: manager.Targets{Names: []string{"no-such-tool"}}})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInstallationFailed))
	testutil.AssertNotExists(t, filepath.Join(env.Venvs, "no-such-tool"))
}

func TestInstallUpgradeOfNewPackageRollsBack(t *testing.T) {
	env, m := setup(t)

	_, err := m.Install(context.Background(), manager.InstallOptions{
		Targets: manager.Targets{Names: []string{"no-such-tool"}},
		Upgrade: true,
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInstallationFailed))
	testutil.AssertNotExists(t, filepath.Join(env.Venvs, "no-such-tool"))

	listed, err := m.List()
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestInstallPipUpgradeFailureRollsBack(t *testing.T) {
	env, m := setup(t)
	env.Runner.FailPipUpgrade = true

	_, err := m.Install(context.Background(), manager.InstallOptions{Targets: manager.Targets{Names: []string{"demo"}}})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCommandFailed))
	testutil.AssertNotExists(t, filepath.Join(env.Venvs, "demo"))
}

func TestUpdateFailureKeepsEnvironment(t *testing.T) {
	env, m := setup(t)
	ctx := context.Background()
	_, err := m.Install(ctx, manager.InstallOptions{Targets: manager.Targets{Names: []string{"demo"}}})
	require.NoError(t, err)

	env.Runner.FailPipUpgrade = true
	_, err = m.Update(ctx, manager.UpdateOptions{Targets: manager.Targets{Names: []string{"demo"}}})
	require.Error(t, err)
	testutil.AssertDirExists(t, filepath.Join(env.Venvs, "demo"))
	testutil.AssertSymlink(t, env.Link("demo"), env.Script("demo", "demo"))
}

func TestInstallFirstFailureAborts(t *testing.T) {
	env, m := setup(t)

	results, err := m.Install(context.Background(), manager.InstallOptions{Targets: manager.Targets{Names: []string{"demo", "ghost", "tox"}}})
	require.Error(t, err)
	require.Len(t, results, 1)
	testutil.AssertDirExists(t, filepath.Join(env.Venvs, "demo"))
	testutil.AssertNotExists(t, filepath.Join(env.Venvs, "tox"))
}

func TestInstallWithDependency(t *testing.T) {
	env, m := setup(t)

	_, err := m.Install(context.Background(), manager.InstallOptions{
		Targets:    manager.Targets{Names: []string{"httpie"}},
		Dependency: "PySocks",
	})
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(env.Venvs, "httpie", "requirements.txt"))
	require.NoError(t, err)
	assert.Equal(t, "PySocks\n", string(content))

	// The dependency lives in httpie's environment only
	testutil.AssertFileExists(t, env.Script("httpie", "socks-probe"))
	testutil.AssertNotExists(t, filepath.Join(env.Venvs, "PySocks"))
	testutil.AssertNotExists(t, env.Link("socks-probe"))
}

func TestInstallUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		opts manager.InstallOptions
		msg  string
	}{
		{"nothing given", manager.InstallOptions{}, manager.MsgMissingArgs},
		{"names and file", manager.InstallOptions{Targets: manager.Targets{Names: []string{"demo"}, Requirement: "tools.txt"}}, manager.MsgTooManyArgs},
		{"dependency with several packages", manager.InstallOptions{Targets: manager.Targets{Names: []string{"demo", "tox"}}, Dependency: "PySocks"}, manager.MsgDependencyMultiple},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, m := setup(t)

			_, err := m.Install(context.Background(), tt.opts)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrUsage))
			assert.Contains(t, err.Error(), tt.msg)

			assert.Empty(t, env.Runner.Calls())
			testutil.AssertNotExists(t, env.Venvs)
			testutil.AssertNotExists(t, env.Bin)
		})
	}
}

func TestInstallInvalidReferenceBeforeSideEffects(t *testing.T) {
	env, m := setup(t)

	_, err := m.Install(context.Background(), manager.InstallOptions{Targets: manager.Targets{Names: []string{"demo", "bad==="}}})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidPackageSpec))
	assert.Empty(t, env.Runner.Calls())
}

func TestInstallFromRequirementsFile(t *testing.T) {
	env, m := setup(t)
	reqs := env.WriteFile("tools.txt", "# cli tools\ndemo\n\ntox==4.11.0\n")
	progress := &recordingProgress{}
	m.WithProgress(progress)

	results, err := m.Install(context.Background(), manager.InstallOptions{Targets: manager.Targets{Requirement: reqs}})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Installing", progress.label)
	assert.Equal(t, 2, progress.total)
	assert.Equal(t, []string{"demo", "tox"}, progress.steps)
	assert.True(t, progress.done)
}

func TestInstallMissingRequirementsFile(t *testing.T) {
	env, m := setup(t)

	_, err := m.Install(context.Background(), manager.InstallOptions{Targets: manager.Targets{Requirement: filepath.Join(env.Root, "nope.txt")}})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileAccess))
}

func TestInstallSkipsForeignLink(t *testing.T) {
	env, m := setup(t)
	require.NoError(t, os.MkdirAll(env.Bin, 0755))
	require.NoError(t, os.Symlink("/usr/local/bin/tox", env.Link("tox")))

	results := install(t, m, "tox")
	assert.Equal(t, types.LinkSkipped, results[0].Links[0].Status)
	testutil.AssertSymlink(t, env.Link("tox"), "/usr/local/bin/tox")

	results, err := m.Install(context.Background(), manager.InstallOptions{Targets: manager.Targets{Names: []string{"tox"}}, Upgrade: true})
	require.NoError(t, err)
	assert.Equal(t, types.LinkReplaced, results[0].Links[0].Status)
	testutil.AssertSymlink(t, env.Link("tox"), env.Script("tox", "tox"))
}

func TestUpdate(t *testing.T) {
	env, m := setup(t)
	install(t, m, "httpie==3.2.1")
	env.Runner.Reset()

	results, err := m.Update(context.Background(), manager.UpdateOptions{Targets: manager.Targets{Names: []string{"httpie"}}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, types.OutcomeUpgraded, results[0].Outcome)
	assert.Equal(t, "3.2.1", results[0].PreviousVersion)
	assert.Equal(t, "3.2.2", results[0].Version)

	venv := filepath.Join(env.Venvs, "httpie")
	py := env.Paths.VenvPython("httpie")
	assert.Equal(t, []string{
		"python3 -m venv --symlinks --upgrade " + venv,
		py + " -m pip install --quiet --upgrade pip wheel",
		py + " -m pip install --quiet --upgrade httpie",
	}, env.Runner.CallStrings())
}

func TestUpdateAllAndManifest(t *testing.T) {
	env, m := setup(t)
	_, err := m.Install(context.Background(), manager.InstallOptions{Targets: manager.Targets{Names: []string{"httpie"}}, Dependency: "PySocks"})
	require.NoError(t, err)
	install(t, m, "demo")
	env.Runner.Reset()

	results, err := m.Update(context.Background(), manager.UpdateOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "demo", results[0].Name)
	assert.Equal(t, types.OutcomeUnchanged, results[0].Outcome)
	assert.Equal(t, "httpie", results[1].Name)

	assert.Contains(t, env.Runner.CallStrings(),
		env.Paths.VenvPython("httpie")+" -m pip install --quiet --upgrade --requirement "+env.Paths.ManifestPath("httpie"))
}

func TestUpdateNotInstalled(t *testing.T) {
	env, m := setup(t)
	install(t, m, "demo")
	env.Runner.Reset()

	_, err := m.Update(context.Background(), manager.UpdateOptions{Targets: manager.Targets{Names: []string{"dem"}}})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotInstalled))
	assert.Equal(t, "demo", errors.GetErrorDetails(err)["suggestion"])
	assert.Empty(t, env.Runner.Calls())
	testutil.AssertNotExists(t, filepath.Join(env.Venvs, "dem"))
}

func TestUpdateNothingInstalled(t *testing.T) {
	_, m := setup(t)

	results, err := m.Update(context.Background(), manager.UpdateOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestUninstall(t *testing.T) {
	env, m := setup(t)
	install(t, m, "demo", "httpie")

	results, err := m.Uninstall(context.Background(), manager.UninstallOptions{Targets: manager.Targets{Names: []string{"demo"}}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, types.OutcomeUninstalled, results[0].Outcome)
	assert.Equal(t, "1.0.0", results[0].PreviousVersion)

	testutil.AssertNotExists(t, filepath.Join(env.Venvs, "demo"))
	testutil.AssertNotExists(t, env.Link("demo"))
	testutil.AssertSymlink(t, env.Link("http"), env.Script("httpie", "http"))
}

func TestUninstallLeavesForeignLinks(t *testing.T) {
	env, m := setup(t)
	install(t, m, "demo")
	require.NoError(t, os.Remove(env.Link("demo")))
	require.NoError(t, os.Symlink("/opt/demo", env.Link("demo")))

	_, err := m.Uninstall(context.Background(), manager.UninstallOptions{Targets: manager.Targets{Names: []string{"demo"}}})
	require.NoError(t, err)
	testutil.AssertSymlink(t, env.Link("demo"), "/opt/demo")
}

func TestUninstallNotInstalled(t *testing.T) {
	_, m := setup(t)
	install(t, m, "httpie")

	results, err := m.Uninstall(context.Background(), manager.UninstallOptions{Targets: manager.Targets{Names: []string{"htpie"}}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, types.OutcomeNotInstalled, results[0].Outcome)
	assert.Equal(t, "httpie", results[0].Suggestion)
}

func TestUninstallWithBrokenMetadata(t *testing.T) {
	env, m := setup(t)
	install(t, m, "demo")
	require.NoError(t, os.RemoveAll(testutil.SitePackages(filepath.Join(env.Venvs, "demo"))))

	results, err := m.Uninstall(context.Background(), manager.UninstallOptions{Targets: manager.Targets{Names: []string{"demo"}}})
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeUninstalled, results[0].Outcome)
	testutil.AssertNotExists(t, filepath.Join(env.Venvs, "demo"))
	// Without metadata the link cannot be attributed and stays
	testutil.AssertSymlink(t, env.Link("demo"), env.Script("demo", "demo"))
}

func TestUninstallUsageErrors(t *testing.T) {
	_, m := setup(t)

	_, err := m.Uninstall(context.Background(), manager.UninstallOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUsage))
}

func TestListAndFreeze(t *testing.T) {
	env, m := setup(t)

	pkgs, err := m.List()
	require.NoError(t, err)
	assert.Empty(t, pkgs)

	install(t, m, "tox", "demo", "httpie")
	require.NoError(t, os.MkdirAll(filepath.Join(env.Venvs, "broken"), 0755))

	pkgs, err = m.List()
	require.NoError(t, err)
	var names, versions []string
	for _, p := range pkgs {
		names = append(names, p.Name)
		versions = append(versions, p.Version)
	}
	assert.Equal(t, []string{"broken", "demo", "httpie", "tox"}, names)
	assert.Equal(t, []string{types.UnknownVersion, "1.0.0", "3.2.2", "4.11.0"}, versions)

	lines, err := m.Freeze()
	require.NoError(t, err)
	assert.Equal(t, []string{"demo==1.0.0", "httpie==3.2.2", "tox==4.11.0"}, lines)

	pattern := regexp.MustCompile(`^[A-Za-z0-9._-]+==[0-9]+(\.[0-9]+)*`)
	for _, line := range lines {
		assert.Regexp(t, pattern, line)
	}
}

func TestSearch(t *testing.T) {
	env, m := setup(t)
	env.Runner.SearchResults["tox"] = "tox (4.11.0)  - tox is a generic virtualenv management and test command line tool\n"
	env.Runner.SearchResults["empty"] = ""

	result, err := m.Search(context.Background(), "tox", false)
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Contains(t, result.Output, "tox (4.11.0)")

	for _, q := range []string{"missing", "empty"} {
		result, err = m.Search(context.Background(), q, false)
		require.NoError(t, err)
		assert.False(t, result.Found)
		assert.Equal(t, "Package '"+q+"' not found", result.Output)
	}
}

func TestPlans(t *testing.T) {
	env, m := setup(t)
	install(t, m, "tox")
	env.Runner.Reset()

	names, err := m.PlanInstall(manager.InstallOptions{Targets: manager.Targets{Names: []string{"Demo_Tool[cli]>=1.0"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Demo-Tool"}, names)

	_, err = m.PlanInstall(manager.InstallOptions{Targets: manager.Targets{Names: []string{"a", "b"}}, Dependency: "c"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrUsage))

	names, err = m.PlanUpdate(manager.UpdateOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"tox"}, names)

	_, err = m.PlanUpdate(manager.UpdateOptions{Targets: manager.Targets{Names: []string{"demo"}}})
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotInstalled))

	names, err = m.PlanUninstall(manager.UninstallOptions{Targets: manager.Targets{Names: []string{"ghost"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"ghost"}, names)

	assert.Empty(t, env.Runner.Calls())
}
