package paths

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/pipis/pkg/errors"
)

// Environment variable names
const (
	// EnvVenvs overrides the environments root
	EnvVenvs = "PIPIS_VENVS"

	// EnvBin overrides the links directory
	EnvBin = "PIPIS_BIN"

	// EnvPython overrides the interpreter used to create environments
	EnvPython = "PIPIS_PYTHON"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// On-disk layout. These names are not user-configurable.
const (
	// AppDirName is the directory name used under every base directory
	AppDirName = "pipis"

	// VenvsDirName is the environments root under the data directory
	VenvsDirName = "venvs"

	// BinDirName is the links directory under the data directory
	BinDirName = "bin"

	// ManifestFileName is the per-environment dependency manifest
	ManifestFileName = "requirements.txt"

	// SystemConfigDir is the system-wide config directory on Unix-like systems
	SystemConfigDir = "/etc/pipis"
)

// goos is a variable so tests can exercise the Windows layout
var goos = runtime.GOOS

// Paths resolves where a package's environment, interpreter, manifest and
// links live.
type Paths interface {
	VenvsDir() string
	BinDir() string
	VenvPath(name string) string
	VenvBinDir(name string) string
	VenvPython(name string) string
	ManifestPath(name string) string
	LinkPath(script string) string
}

type paths struct {
	venvs string
	bin   string
}

// New creates a Paths rooted at the given environments root and links directory.
// Both are expected to be absolute; the config resolver guarantees that.
func New(venvs, bin string) Paths {
	return &paths{
		venvs: filepath.Clean(venvs),
		bin:   filepath.Clean(bin),
	}
}

func (p *paths) VenvsDir() string {
	return p.venvs
}

func (p *paths) BinDir() string {
	return p.bin
}

func (p *paths) VenvPath(name string) string {
	return filepath.Join(p.venvs, name)
}

// VenvBinDir returns the environment's executable directory
func (p *paths) VenvBinDir(name string) string {
	return filepath.Join(p.VenvPath(name), ExecutableDirName())
}

// VenvPython returns the environment's own interpreter
func (p *paths) VenvPython(name string) string {
	if goos == "windows" {
		return filepath.Join(p.VenvBinDir(name), "python.exe")
	}
	return filepath.Join(p.VenvBinDir(name), "python")
}

func (p *paths) ManifestPath(name string) string {
	return filepath.Join(p.VenvPath(name), ManifestFileName)
}

// LinkPath returns the candidate link in the links directory for a script
func (p *paths) LinkPath(script string) string {
	return filepath.Join(p.bin, filepath.Base(script))
}

// ExecutableDirName is the name of an environment's executable directory
func ExecutableDirName() string {
	if goos == "windows" {
		return "Scripts"
	}
	return "bin"
}

// DefaultPython is the interpreter used when nothing else is configured
func DefaultPython() string {
	if goos == "windows" {
		return "python"
	}
	return "python3"
}

// DataDir returns the default data directory for pipis
func DataDir() string {
	if goos == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppDirName, "data")
		}
	}
	return filepath.Join(xdg.DataHome, AppDirName)
}

// DefaultVenvsDir returns the default environments root
func DefaultVenvsDir() string {
	return filepath.Join(DataDir(), VenvsDirName)
}

// DefaultBinDir returns the default links directory
func DefaultBinDir() string {
	return filepath.Join(DataDir(), BinDirName)
}

// UserConfigDir returns the per-user config directory
func UserConfigDir() string {
	if goos == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppDirName, "config")
		}
	}
	return filepath.Join(xdg.ConfigHome, AppDirName)
}

// SystemConfigDirPath returns the system-wide config directory
func SystemConfigDirPath() string {
	if goos == "windows" {
		programFiles := os.Getenv("ProgramFiles")
		if programFiles == "" {
			programFiles = `C:\Program Files`
		}
		return filepath.Join(programFiles, AppDirName, "config")
	}
	return SystemConfigDir
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			// Fallback to HOME env var
			homeDir = os.Getenv(EnvHome)
			if homeDir == "" {
				return path
			}
		}

		if len(path) == 1 {
			return homeDir
		}

		if path[1] == '/' || path[1] == filepath.Separator {
			return filepath.Join(homeDir, path[2:])
		}

		// ~something (not the user's home)
		return path
	}

	return path
}

// ExpandHome expands a leading ~ in path
func ExpandHome(path string) string {
	return expandHome(path)
}

// NormalizePath expands home, makes the path absolute and cleans it
func NormalizePath(path string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrFileAccess, "empty path")
	}

	abs, err := filepath.Abs(expandHome(path))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for %s", path)
	}

	return filepath.Clean(abs), nil
}
