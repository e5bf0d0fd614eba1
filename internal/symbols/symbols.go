// internal/symbols/symbols.go
//
// Provides symbol theme management for the game engine.
//
// Responsibilities:
//   - Load named symbol alphabets ("themes") from an environment-provided
//     YAML file or fall back to the embedded default document.
//   - Validate themes at load time (no blank or duplicate tokens).
//   - Supply lookup helpers: Theme, Default, Names, and Stats.
//
// Themes:
//   - "classic": the canonical 16-symbol board set, used when a game does
//     not ask for anything else.
//   - Additional themes may be any size >= 2; a deck of k pairs needs a
//     theme with at least k symbols.
//
// Initialization behavior (Init):
//   1. If THEMES_FILE is set, the whole document is loaded from that path.
//   2. Otherwise the embedded assets/themes.yaml is used.
//
// Constraints:
//   • Tokens are trimmed; blank tokens and duplicates within a theme are
//     load errors, as are duplicate theme names.
//   • Initialization runs once (sync.Once); accessors trigger it lazily so
//     call order does not matter.

package symbols

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/pairdown/go-server/assets"
)

// DefaultTheme is used when a game does not name a theme. If a custom
// document omits it, the first theme in document order takes its place.
const DefaultTheme = "classic"

var (
	initOnce   sync.Once
	themes     map[string][]string // name -> tokens
	themeOrder []string            // document order
	initialErr error
)

// ErrUnknownTheme is returned by Theme for a name not in the loaded document.
var ErrUnknownTheme = errors.New("unknown theme")

// themeDoc mirrors the YAML document shape.
type themeDoc struct {
	Themes []struct {
		Name    string   `yaml:"name"`
		Symbols []string `yaml:"symbols"`
	} `yaml:"themes"`
}

// Init loads the theme document exactly once.
// Returns an error if the document is missing, malformed, or empty.
func Init() error {
	initOnce.Do(func() {
		var raw []byte
		var err error

		if path := os.Getenv("THEMES_FILE"); path != "" {
			raw, err = os.ReadFile(path)
		} else {
			raw, err = assets.ThemesYAML()
		}
		if err != nil {
			initialErr = fmt.Errorf("symbols: read theme document: %w", err)
			return
		}

		themes, themeOrder, initialErr = parseThemes(raw)
	})
	return initialErr
}

// parseThemes decodes and validates a theme document.
func parseThemes(raw []byte) (map[string][]string, []string, error) {
	var doc themeDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("symbols: parse theme document: %w", err)
	}
	if len(doc.Themes) == 0 {
		return nil, nil, errors.New("symbols: theme document has no themes")
	}

	byName := make(map[string][]string, len(doc.Themes))
	order := make([]string, 0, len(doc.Themes))
	for _, th := range doc.Themes {
		name := strings.TrimSpace(th.Name)
		if name == "" {
			return nil, nil, errors.New("symbols: theme with empty name")
		}
		if _, dup := byName[name]; dup {
			return nil, nil, fmt.Errorf("symbols: duplicate theme %q", name)
		}

		seen := make(map[string]struct{}, len(th.Symbols))
		tokens := make([]string, 0, len(th.Symbols))
		for _, s := range th.Symbols {
			tok := strings.TrimSpace(s)
			if tok == "" {
				return nil, nil, fmt.Errorf("symbols: theme %q has a blank token", name)
			}
			if _, dup := seen[tok]; dup {
				return nil, nil, fmt.Errorf("symbols: theme %q repeats token %q", name, tok)
			}
			seen[tok] = struct{}{}
			tokens = append(tokens, tok)
		}
		if len(tokens) < 2 {
			return nil, nil, fmt.Errorf("symbols: theme %q needs at least 2 tokens", name)
		}

		byName[name] = tokens
		order = append(order, name)
	}
	return byName, order, nil
}

// Theme returns the alphabet for the named theme.
func Theme(name string) ([]string, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	if tokens, ok := themes[name]; ok {
		return tokens, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
}

// Default returns the DefaultTheme alphabet, falling back to the first theme
// in document order when a custom document omits "classic".
func Default() []string {
	if err := Init(); err != nil {
		return nil
	}
	if tokens, ok := themes[DefaultTheme]; ok {
		return tokens
	}
	return themes[themeOrder[0]]
}

// Names returns the theme names in document order.
func Names() []string {
	if err := Init(); err != nil {
		return nil
	}
	return themeOrder
}

// Stats returns counts of loaded data: (themes, total symbols).
func Stats() (themeCount int, symbolCount int) {
	if err := Init(); err != nil {
		return 0, 0
	}
	for _, tokens := range themes {
		symbolCount += len(tokens)
	}
	return len(themes), symbolCount
}
