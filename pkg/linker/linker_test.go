// TEST TYPE: Integration Test
// DEPENDENCIES: real temp filesystem
// PURPOSE: Test link reconciliation policy and attributed link removal

package linker

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/pipis/pkg/errors"
	"github.com/arthur-debert/pipis/pkg/testutil"
	"github.com/arthur-debert/pipis/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptsFor creates executable scripts inside pkg's environment
func scriptsFor(t *testing.T, env *testutil.TestEnvironment, pkg string, names ...string) []string {
	t.Helper()
	var scripts []string
	for _, n := range names {
		path := env.Script(pkg, n)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0755))
		scripts = append(scripts, path)
	}
	return scripts
}

func statuses(results []types.LinkResult) []types.LinkStatus {
	var out []types.LinkStatus
	for _, r := range results {
		out = append(out, r.Status)
	}
	return out
}

func TestLinkCreates(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	scripts := scriptsFor(t, env, "demo", "demo", "demo-admin")
	l := New(env.FS, env.Paths)

	results, err := l.Link(scripts, false)
	require.NoError(t, err)
	assert.Equal(t, []types.LinkStatus{types.LinkCreated, types.LinkCreated}, statuses(results))

	testutil.AssertSymlink(t, env.Link("demo"), scripts[0])
	testutil.AssertSymlink(t, env.Link("demo-admin"), scripts[1])
}

func TestLinkIsIdempotent(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	scripts := scriptsFor(t, env, "demo", "demo")
	l := New(env.FS, env.Paths)

	_, err := l.Link(scripts, false)
	require.NoError(t, err)

	for _, upgrade := range []bool{false, true} {
		results, err := l.Link(scripts, upgrade)
		require.NoError(t, err)
		assert.Equal(t, []types.LinkStatus{types.LinkUnchanged}, statuses(results))
	}
	testutil.AssertSymlink(t, env.Link("demo"), scripts[0])
}

func TestLinkSkipsForeignEntry(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	mine := scriptsFor(t, env, "demo", "tool")
	theirs := scriptsFor(t, env, "other", "tool")
	l := New(env.FS, env.Paths)

	_, err := l.Link(theirs, false)
	require.NoError(t, err)

	results, err := l.Link(mine, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, types.LinkSkipped, results[0].Status)
	assert.Equal(t, theirs[0], results[0].Existing)
	testutil.AssertSymlink(t, env.Link("tool"), theirs[0])
}

func TestLinkSkipsRegularFile(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	scripts := scriptsFor(t, env, "demo", "demo")
	require.NoError(t, os.MkdirAll(env.Bin, 0755))
	require.NoError(t, os.WriteFile(env.Link("demo"), []byte("mine"), 0644))

	results, err := New(env.FS, env.Paths).Link(scripts, false)
	require.NoError(t, err)
	assert.Equal(t, []types.LinkStatus{types.LinkSkipped}, statuses(results))

	content, err := os.ReadFile(env.Link("demo"))
	require.NoError(t, err)
	assert.Equal(t, "mine", string(content))
}

func TestLinkUpgradeReplaces(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	mine := scriptsFor(t, env, "demo", "tool", "extra")
	theirs := scriptsFor(t, env, "other", "tool")
	l := New(env.FS, env.Paths)
	l.now = func() time.Time { return time.Unix(0, 42) }

	_, err := l.Link(theirs, false)
	require.NoError(t, err)

	results, err := l.Link(mine, true)
	require.NoError(t, err)
	assert.Equal(t, []types.LinkStatus{types.LinkReplaced, types.LinkCreated}, statuses(results))
	testutil.AssertSymlink(t, env.Link("tool"), mine[0])
	testutil.AssertSymlink(t, env.Link("extra"), mine[1])
	testutil.AssertNotExists(t, env.Link("tool")+".pipis-42")
}

func TestLinkReplacesDanglingLinkOnUpgrade(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	scripts := scriptsFor(t, env, "demo", "demo")
	require.NoError(t, os.MkdirAll(env.Bin, 0755))
	require.NoError(t, os.Symlink("/nowhere/demo", env.Link("demo")))

	results, err := New(env.FS, env.Paths).Link(scripts, true)
	require.NoError(t, err)
	assert.Equal(t, types.LinkReplaced, results[0].Status)
	assert.Equal(t, "/nowhere/demo", results[0].Existing)
	testutil.AssertSymlink(t, env.Link("demo"), scripts[0])
}

func TestLinkUpgradeOverDirectoryFails(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	scripts := scriptsFor(t, env, "demo", "demo")
	require.NoError(t, os.MkdirAll(filepath.Join(env.Link("demo"), "inner"), 0755))
	l := New(env.FS, env.Paths)
	l.now = func() time.Time { return time.Unix(0, 7) }

	_, err := l.Link(scripts, true)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSymlinkCreate))
	testutil.AssertNotExists(t, env.Link("demo")+".pipis-7")
}

func TestUnlink(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	scripts := scriptsFor(t, env, "demo", "demo", "shared", "plain", "absent")
	other := scriptsFor(t, env, "other", "shared")
	l := New(env.FS, env.Paths)

	_, err := l.Link(scripts[:1], false)
	require.NoError(t, err)
	_, err = l.Link(other, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(env.Link("plain"), []byte("x"), 0644))

	results, err := l.Unlink(scripts)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, types.LinkRemoved, results[0].Status)

	testutil.AssertNotExists(t, env.Link("demo"))
	testutil.AssertSymlink(t, env.Link("shared"), other[0])
	testutil.AssertFileExists(t, env.Link("plain"))
}

func TestLinkRelativeTargetIsUnchanged(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	scripts := scriptsFor(t, env, "demo", "demo")
	require.NoError(t, os.MkdirAll(env.Bin, 0755))
	rel, err := filepath.Rel(env.Bin, scripts[0])
	require.NoError(t, err)
	require.NoError(t, os.Symlink(rel, env.Link("demo")))

	results, err := New(env.FS, env.Paths).Link(scripts, false)
	require.NoError(t, err)
	assert.Equal(t, []types.LinkStatus{types.LinkUnchanged}, statuses(results))

	target, err := os.Readlink(env.Link("demo"))
	require.NoError(t, err)
	assert.Equal(t, rel, target)
}

func TestLinkThroughSymlinkedRootIsUnchanged(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	scripts := scriptsFor(t, env, "demo", "demo")
	alias := filepath.Join(env.Root, "venvs-alias")
	require.NoError(t, os.Symlink(env.Venvs, alias))
	inVenvs, err := filepath.Rel(env.Venvs, scripts[0])
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(env.Bin, 0755))
	require.NoError(t, os.Symlink(filepath.Join(alias, inVenvs), env.Link("demo")))

	results, err := New(env.FS, env.Paths).Link(scripts, false)
	require.NoError(t, err)
	assert.Equal(t, []types.LinkStatus{types.LinkUnchanged}, statuses(results))
}

func TestUnlinkRelativeLink(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	scripts := scriptsFor(t, env, "demo", "demo")
	require.NoError(t, os.MkdirAll(env.Bin, 0755))
	rel, err := filepath.Rel(env.Bin, scripts[0])
	require.NoError(t, err)
	require.NoError(t, os.Symlink(rel, env.Link("demo")))

	results, err := New(env.FS, env.Paths).Unlink(scripts)
	require.NoError(t, err)
	require.Len(t, results, 1)
	testutil.AssertNotExists(t, env.Link("demo"))
}
