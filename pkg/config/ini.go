package config

import (
	"bytes"
	"fmt"

	"gopkg.in/ini.v1"
)

// INI is a koanf.Parser for INI files such as pipis.cfg. Each
// section becomes a top-level map; keys of the DEFAULT section apply to
// every section that does not set them.
type INI struct{}

// INIParser returns the parser used for .cfg and .ini files
func INIParser() *INI {
	return &INI{}
}

func loadOptions() ini.LoadOptions {
	return ini.LoadOptions{
		InsensitiveKeys:     true,
		IgnoreInlineComment: true,
	}
}

// Unmarshal parses INI bytes into a nested map
func (p *INI) Unmarshal(b []byte) (map[string]interface{}, error) {
	f, err := ini.LoadSources(loadOptions(), b)
	if err != nil {
		return nil, err
	}

	defaults := f.Section(ini.DefaultSection).KeysHash()
	out := map[string]interface{}{}
	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		values := map[string]interface{}{}
		for k, v := range defaults {
			values[k] = v
		}
		for _, key := range sec.Keys() {
			values[key.Name()] = key.Value()
		}
		out[sec.Name()] = values
	}
	return out, nil
}

// Marshal writes one section per top-level map; scalar top-level values
// go to the DEFAULT section
func (p *INI) Marshal(o map[string]interface{}) ([]byte, error) {
	f := ini.Empty(loadOptions())
	for name, v := range o {
		values, ok := v.(map[string]interface{})
		if !ok {
			if _, err := f.Section(ini.DefaultSection).NewKey(name, toString(v)); err != nil {
				return nil, err
			}
			continue
		}
		sec, err := f.NewSection(name)
		if err != nil {
			return nil, err
		}
		for key, value := range values {
			if _, err := sec.NewKey(key, toString(value)); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
