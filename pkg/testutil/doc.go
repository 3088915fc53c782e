// Package testutil provides utilities for testing pipis components.
//
// Key components:
//   - TestEnvironment: isolated environments root, links directory and home
//     under t.TempDir(), with config-resolving env vars cleared
//   - FakePython: an executil.Runner that emulates `python -m venv` and
//     `python -m pip install|search` on the real temp filesystem, so install,
//     discovery and link pipelines run end to end without Python
//   - Assertions for links and paths
//
// Usage guidelines:
//   - All test data should be defined inline, not in external files
//   - Each test should be completely isolated with no shared state
package testutil
