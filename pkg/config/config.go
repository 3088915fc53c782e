package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/pipis/pkg/errors"
	"github.com/arthur-debert/pipis/pkg/logging"
	"github.com/arthur-debert/pipis/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Section is the INI section (or TOML/YAML table) every config file keeps
// pipis keys under
const Section = "pipis"

// configFileNames are tried in order in each config directory
var configFileNames = []string{"pipis.cfg", "pipis.toml", "pipis.yaml", "pipis.yml"}

// Config is the resolved configuration
type Config struct {
	// Venvs is the directory holding one environment per package
	Venvs string `koanf:"venvs" toml:"venvs" yaml:"venvs"`
	// Bin is the directory holding links to package scripts
	Bin string `koanf:"bin" toml:"bin" yaml:"bin"`
	// Python is the interpreter used to create environments
	Python string `koanf:"python" toml:"python" yaml:"python"`
}

// Options controls where configuration is read from
type Options struct {
	// ConfigFile is an explicit config file, loaded after system and user files
	ConfigFile string
	// Overrides wins over every other source; empty fields are ignored
	Overrides Config
	// SystemDir and UserDir replace the default config directories when set
	SystemDir string
	UserDir   string
}

// Load resolves the configuration from all sources
func Load(opts Options) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(toKeys(Defaults()), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. Config files: system, user, explicit
	systemDir := opts.SystemDir
	if systemDir == "" {
		systemDir = paths.SystemConfigDirPath()
	}
	userDir := opts.UserDir
	if userDir == "" {
		userDir = paths.UserConfigDir()
	}

	var files []string
	for _, dir := range []string{systemDir, userDir} {
		if path := findConfigFile(dir); path != "" {
			files = append(files, path)
		}
	}
	if opts.ConfigFile != "" {
		explicit := paths.ExpandHome(opts.ConfigFile)
		if _, err := os.Stat(explicit); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s", explicit)
		}
		files = append(files, explicit)
	}

	for _, path := range files {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path).
				WithDetail("path", path)
		}
		logger.Debug().Str("path", path).Msg("Loaded config file")
	}

	// 3. Environment
	if err := k.Load(env.ProviderWithValue("PIPIS_", ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	// 4. Explicit overrides
	if err := k.Load(confmap.Provider(toKeys(opts.Overrides), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load overrides")
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}
	if err := k.UnmarshalWithConf(Section, &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to unmarshal configuration")
	}

	if err := postProcessConfig(&cfg); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("venvs", cfg.Venvs).
		Str("bin", cfg.Bin).
		Str("python", cfg.Python).
		Msg("Configuration resolved")

	return &cfg, nil
}

// Defaults returns the OS default configuration
func Defaults() Config {
	return Config{
		Venvs:  paths.DefaultVenvsDir(),
		Bin:    paths.DefaultBinDir(),
		Python: paths.DefaultPython(),
	}
}

// findConfigFile returns the first config file present in dir
func findConfigFile(dir string) string {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cfg", ".ini":
		return INIParser()
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return toml.Parser()
	}
}

// envKey maps PIPIS_VENVS to pipis.venvs; unknown and empty variables are dropped
func envKey(key, value string) (string, interface{}) {
	if value == "" {
		return "", nil
	}
	switch key {
	case paths.EnvVenvs, paths.EnvBin, paths.EnvPython:
		return Section + "." + strings.ToLower(strings.TrimPrefix(key, "PIPIS_")), value
	}
	return "", nil
}

// toKeys flattens non-empty fields into koanf keys
func toKeys(c Config) map[string]interface{} {
	keys := map[string]interface{}{}
	if c.Venvs != "" {
		keys[Section+".venvs"] = c.Venvs
	}
	if c.Bin != "" {
		keys[Section+".bin"] = c.Bin
	}
	if c.Python != "" {
		keys[Section+".python"] = c.Python
	}
	return keys
}

// postProcessConfig makes directories absolute and home-expanded
func postProcessConfig(cfg *Config) error {
	venvs, err := paths.NormalizePath(cfg.Venvs)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigLoad, "invalid venvs directory")
	}
	bin, err := paths.NormalizePath(cfg.Bin)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigLoad, "invalid bin directory")
	}
	cfg.Venvs = venvs
	cfg.Bin = bin
	if cfg.Python == "" {
		cfg.Python = paths.DefaultPython()
	}
	return nil
}
