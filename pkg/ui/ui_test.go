package ui_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/arthur-debert/pipis/pkg/errors"
	"github.com/arthur-debert/pipis/pkg/types"
	"github.com/arthur-debert/pipis/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	listing = types.Listing{Packages: []types.InstalledPackage{
		{Name: "demo", Version: "1.0.0", Path: "/v/demo", Known: true},
		{Name: "broken", Version: types.UnknownVersion, Path: "/v/broken"},
	}}
	report = types.Report{Command: types.CommandInstall, Packages: []types.PackageResult{
		{Name: "demo", Outcome: types.OutcomeInstalled, Version: "1.0.0"},
	}}
	notInstalled = errors.New(errors.ErrNotInstalled, "Package dem is not installed").
			WithDetail("package", "dem").
			WithDetail("suggestion", "demo")
)

func TestNewRenderer(t *testing.T) {
	for _, format := range []ui.Format{ui.FormatAuto, ui.FormatTerminal, ui.FormatText, ui.FormatJSON} {
		t.Run(format.String(), func(t *testing.T) {
			renderer, err := ui.NewRenderer(format, &bytes.Buffer{})
			require.NoError(t, err)
			assert.NotNil(t, renderer)
		})
	}

	renderer, err := ui.NewRenderer(ui.Format(999), &bytes.Buffer{})
	require.Error(t, err)
	assert.Nil(t, renderer)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestAutoRendererOnBufferIsText(t *testing.T) {
	buf := &bytes.Buffer{}
	renderer, err := ui.NewRenderer(ui.FormatAuto, buf)
	require.NoError(t, err)

	require.NoError(t, renderer.RenderError(notInstalled))
	assert.Equal(t, "Error: Package dem is not installed, did you mean 'demo'?\n", buf.String())
}

func TestTextRenderer(t *testing.T) {
	buf := &bytes.Buffer{}
	renderer, err := ui.NewRenderer(ui.FormatText, buf)
	require.NoError(t, err)

	t.Run("report", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, renderer.RenderResult(report))
		assert.Equal(t, "Successfully installed demo 1.0.0\n", buf.String())
	})

	t.Run("listing", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, renderer.RenderResult(listing))
		assert.Equal(t, ""+
			"Package  Version\n"+
			"-------  -------\n"+
			"demo     1.0.0\n"+
			"broken   unknown\n", buf.String())
	})

	t.Run("freeze", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, renderer.RenderResult(types.FreezeList{Requirements: []string{"demo==1.0.0", "tox==4.11.0"}}))
		assert.Equal(t, "demo==1.0.0\ntox==4.11.0\n", buf.String())
	})

	t.Run("search miss", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, renderer.RenderResult(types.SearchResult{Query: "nope", Output: "Package 'nope' not found"}))
		assert.Equal(t, "Package 'nope' not found\n", buf.String())
	})

	t.Run("version", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, renderer.RenderResult(types.VersionInfo{Version: "1.2.3", Commit: "abc123", Date: "2024-01-01"}))
		assert.Equal(t, "pipis version: 1.2.3\ncommit: abc123\nbuilt: 2024-01-01\n", buf.String())
	})

	t.Run("unknown result type", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, renderer.RenderResult(map[string]string{"foo": "bar"}))
		assert.Contains(t, buf.String(), "map[foo:bar]")
	})
}

func TestTerminalRenderer(t *testing.T) {
	buf := &bytes.Buffer{}
	renderer, err := ui.NewRenderer(ui.FormatTerminal, buf)
	require.NoError(t, err)

	t.Run("report", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, renderer.RenderResult(report))
		assert.Contains(t, buf.String(), "Successfully installed demo 1.0.0")
	})

	t.Run("listing table", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, renderer.RenderResult(listing))
		out := buf.String()
		assert.Contains(t, out, "Package")
		assert.Contains(t, out, "demo")
		assert.Contains(t, out, "1.0.0")
		assert.Contains(t, out, "unknown")
		assert.Contains(t, out, "╭")
	})

	t.Run("empty listing", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, renderer.RenderResult(types.Listing{}))
		assert.Contains(t, buf.String(), "No packages installed")
	})

	t.Run("error", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, renderer.RenderError(notInstalled))
		assert.Contains(t, buf.String(), "did you mean 'demo'?")
	})
}

func TestJSONRenderer(t *testing.T) {
	buf := &bytes.Buffer{}
	renderer, err := ui.NewRenderer(ui.FormatJSON, buf)
	require.NoError(t, err)

	t.Run("message", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, renderer.RenderMessage("hello world"))

		var result map[string]string
		require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
		assert.Equal(t, "hello world", result["message"])
	})

	t.Run("error carries code and details", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, renderer.RenderError(notInstalled))

		var result struct {
			Error   string            `json:"error"`
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
		assert.Equal(t, "Package dem is not installed", result.Error)
		assert.Equal(t, "NOT_INSTALLED", result.Code)
		assert.Equal(t, "demo", result.Details["suggestion"])
	})

	t.Run("listing", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, renderer.RenderResult(listing))

		var result types.Listing
		require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
		require.Len(t, result.Packages, 2)
		assert.Equal(t, "demo", result.Packages[0].Name)
		assert.Equal(t, "/v/demo", result.Packages[0].Path)
	})

	t.Run("report", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, renderer.RenderResult(report))
		assert.Contains(t, buf.String(), `"command": "install"`)
		assert.Contains(t, buf.String(), `"outcome": "installed"`)
	})
}
