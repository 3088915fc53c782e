package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackageResultJSON(t *testing.T) {
	result := PackageResult{
		Name:    "demo",
		Outcome: OutcomeInstalled,
		Version: "1.0.0",
		Links: []LinkResult{
			{Script: "/v/demo/bin/demo", Link: "/b/demo", Status: LinkCreated},
		},
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `"outcome":"installed"`)
	assert.Contains(t, out, `"status":"created"`)
	assert.NotContains(t, out, "previous_version")
	assert.NotContains(t, out, "existing")
}

func TestInstalledPackageJSONOmitsKnown(t *testing.T) {
	data, err := json.Marshal(InstalledPackage{Name: "demo", Version: UnknownVersion, Path: "/v/demo"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"demo","version":"unknown","path":"/v/demo"}`, string(data))
}
