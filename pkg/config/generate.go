package config

import (
	"strings"

	"github.com/arthur-debert/pipis/pkg/errors"
	toml "github.com/pelletier/go-toml/v2"
)

const generatedHeader = `# pipis configuration
#
# Place this file at /etc/pipis/pipis.toml (system) or
# $XDG_CONFIG_HOME/pipis/pipis.toml (user), or pass it with --config.
# PIPIS_VENVS, PIPIS_BIN and PIPIS_PYTHON override these values.

`

type fileConfig struct {
	Pipis Config `toml:"pipis"`
}

// Generate renders cfg as a TOML config file
func Generate(cfg *Config) (string, error) {
	out, err := toml.Marshal(fileConfig{Pipis: *cfg})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
	}

	var b strings.Builder
	b.WriteString(generatedHeader)
	b.Write(out)
	return b.String(), nil
}
