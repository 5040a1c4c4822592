// Package quotes serves the fixed list of motivational quotes.
package quotes

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed quotes.yaml
var quotesYAML []byte

// file is the top-level YAML structure.
type file struct {
	Quotes []string `yaml:"quotes"`
}

var all = mustParse(quotesYAML)

func mustParse(data []byte) []string {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		panic("quotes: invalid embedded quotes.yaml: " + err.Error())
	}
	return f.Quotes
}

// All returns the quotes in their fixed order. The result is a copy.
func All() []string {
	result := make([]string, len(all))
	copy(result, all)
	return result
}
