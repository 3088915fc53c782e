// Package styles holds the lipgloss styles used by the terminal renderer.
//
// Styles are defined in the embedded styles.yaml under semantic names
// (Success, Package, TableHeader, ...) with adaptive colors that follow the
// terminal background.
package styles

import (
	_ "embed"

	"github.com/arthur-debert/pipis/pkg/errors"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// ColorDef is an adaptive color definition
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef is a style definition
type StyleDef struct {
	Bold         bool   `yaml:"bold,omitempty"`
	Italic       bool   `yaml:"italic,omitempty"`
	Underline    bool   `yaml:"underline,omitempty"`
	Foreground   string `yaml:"foreground,omitempty"`
	Background   string `yaml:"background,omitempty"`
	PaddingLeft  int    `yaml:"paddingLeft,omitempty"`
	PaddingRight int    `yaml:"paddingRight,omitempty"`
}

// Config is the styles file
type Config struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

// Registry maps semantic names to styles
type Registry map[string]lipgloss.Style

//go:embed styles.yaml
var embeddedStyles []byte

var defaultRegistry = mustLoad(embeddedStyles)

func mustLoad(data []byte) Registry {
	r, err := Load(data)
	if err != nil {
		return Registry{}
	}
	return r
}

// Load parses a styles file. Unknown color names leave the color unset.
func Load(data []byte) (Registry, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot parse styles")
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(cfg.Colors))
	for name, def := range cfg.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}

	r := make(Registry, len(cfg.Styles))
	for name, def := range cfg.Styles {
		r[name] = build(def, colors)
	}
	return r, nil
}

func build(def StyleDef, colors map[string]lipgloss.AdaptiveColor) lipgloss.Style {
	style := lipgloss.NewStyle()
	if def.Bold {
		style = style.Bold(true)
	}
	if def.Italic {
		style = style.Italic(true)
	}
	if def.Underline {
		style = style.Underline(true)
	}
	if c, ok := colors[def.Foreground]; ok {
		style = style.Foreground(c)
	}
	if c, ok := colors[def.Background]; ok {
		style = style.Background(c)
	}
	if def.PaddingLeft > 0 || def.PaddingRight > 0 {
		style = style.Padding(0, def.PaddingRight, 0, def.PaddingLeft)
	}
	return style
}

// Get returns the named style from the embedded registry, or a plain style
func Get(name string) lipgloss.Style {
	return defaultRegistry.Get(name)
}

// Get returns the named style, or a plain style when it is not defined
func (r Registry) Get(name string) lipgloss.Style {
	if style, ok := r[name]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

// Names returns the defined style names of the embedded registry
func Names() []string {
	names := make([]string, 0, len(defaultRegistry))
	for name := range defaultRegistry {
		names = append(names, name)
	}
	return names
}
