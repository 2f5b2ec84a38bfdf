package theme

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// presetFile is the YAML layout of a theme preset file:
//
//	themes:
//	  - name: ocean
//	    config:
//	      primary: "#0077be"
type presetFile struct {
	Themes []CustomTheme `yaml:"themes"`
}

// LoadPresets reads custom theme definitions from a YAML file.
func LoadPresets(path string) ([]CustomTheme, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theme presets: %w", err)
	}
	var f presetFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse theme presets: %w", err)
	}
	return f.Themes, nil
}

// ApplyPresets adds each preset to the slice, replacing same-named custom
// themes.  It returns how many presets were accepted.
func (s *Slice) ApplyPresets(ctx context.Context, presets []CustomTheme) int {
	n := 0
	for _, p := range presets {
		if s.AddCustomTheme(ctx, p) {
			n++
		}
	}
	return n
}
