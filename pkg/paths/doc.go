// Package paths provides centralized path handling for pipis.
//
// It answers two questions: where pipis keeps things by default on this
// operating system, and where a given package's pieces live once the
// environments root and the links directory are known.
//
// # Defaults
//
// Default locations follow the XDG Base Directory specification on Unix-like
// systems and %APPDATA% on Windows:
//
//   - Data: $XDG_DATA_HOME/pipis (environments under venvs/, links under bin/)
//   - User config: $XDG_CONFIG_HOME/pipis
//   - System config: /etc/pipis
//
// # Layout
//
//	import "github.com/arthur-debert/pipis/pkg/paths"
//
//	p := paths.New("/home/user/.local/share/pipis/venvs", "/home/user/.local/share/pipis/bin")
//	p.VenvPath("black")       // .../venvs/black
//	p.VenvPython("black")     // .../venvs/black/bin/python
//	p.ManifestPath("black")   // .../venvs/black/requirements.txt
//	p.LinkPath("black")       // .../bin/black
package paths
