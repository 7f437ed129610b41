package sentence

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/bargom/eventc/internal/catalog"
)

// Style is how a segment is displayed.
type Style struct {
	Color  string `json:"color,omitempty" yaml:"color,omitempty" validate:"omitempty,hexcolor"`
	Bold   bool   `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic bool   `json:"italic,omitempty" yaml:"italic,omitempty"`
}

// IsZero reports whether the style changes nothing.
func (s Style) IsZero() bool { return s == Style{} }

// StyleTable maps style classes to styles.
type StyleTable map[catalog.StyleClass]Style

var knownClasses = map[catalog.StyleClass]bool{
	catalog.StylePlain:      true,
	catalog.StyleExpression: true,
	catalog.StyleText:       true,
	catalog.StyleObject:     true,
	catalog.StyleBehavior:   true,
	catalog.StyleVariable:   true,
	catalog.StyleColor:      true,
	catalog.StyleOperator:   true,
	catalog.StyleResource:   true,
	catalog.StyleChoice:     true,
	catalog.StyleCode:       true,
}

// DefaultStyles returns the built-in style table.
func DefaultStyles() StyleTable {
	return StyleTable{
		catalog.StylePlain:      {},
		catalog.StyleExpression: {Color: "#1b8fe0"},
		catalog.StyleText:       {Color: "#c8500a"},
		catalog.StyleObject:     {Color: "#2e9e3f", Bold: true},
		catalog.StyleBehavior:   {Color: "#8a3fbf", Bold: true},
		catalog.StyleVariable:   {Color: "#1b8fe0", Italic: true},
		catalog.StyleColor:      {Color: "#8a6d00"},
		catalog.StyleOperator:   {Bold: true},
		catalog.StyleResource:   {Color: "#5a5a5a", Italic: true},
		catalog.StyleChoice:     {Color: "#8a6d00"},
		catalog.StyleCode:       {Color: "#5a5a5a"},
	}
}

// Lookup returns the style of a parameter kind. Unknown classes fall back to
// the plain style.
func (t StyleTable) Lookup(kind catalog.ParameterKind) Style {
	if s, ok := t[kind.Style()]; ok {
		return s
	}
	return t[catalog.StylePlain]
}

var validate = validator.New()

// Validate checks class names and colors.
func (t StyleTable) Validate() error {
	var errs []error
	for class, s := range t {
		if !knownClasses[class] {
			errs = append(errs, fmt.Errorf("unknown style class %q", class))
			continue
		}
		if err := validate.Struct(s); err != nil {
			errs = append(errs, fmt.Errorf("style %q: %w", class, err))
		}
	}
	return errors.Join(errs...)
}

// LoadStyles reads a YAML style table and merges it over the defaults.
func LoadStyles(path string) (StyleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read style file: %w", err)
	}
	styles, err := DecodeStyles(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to load styles %s: %w", path, err)
	}
	return styles, nil
}

// DecodeStyles decodes a YAML style table and merges it over the defaults.
func DecodeStyles(r io.Reader) (StyleTable, error) {
	overrides := StyleTable{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&overrides); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse styles: %w", err)
	}
	if err := overrides.Validate(); err != nil {
		return nil, fmt.Errorf("invalid styles: %w", err)
	}
	styles := DefaultStyles()
	maps.Copy(styles, overrides)
	return styles, nil
}
