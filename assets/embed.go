package assets

import "embed"

//go:embed themes.yaml
var FS embed.FS

// ThemesYAML returns the embedded symbol theme document.
func ThemesYAML() ([]byte, error) {
	return FS.ReadFile("themes.yaml")
}
