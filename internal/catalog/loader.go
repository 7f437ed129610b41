package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadExtension reads an extension declaration from a JSON or YAML file.
func LoadExtension(path string) (Extension, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Extension{}, fmt.Errorf("failed to read extension file: %w", err)
	}

	var ext Extension
	switch filepath.Ext(path) {
	case ".json":
		if err := json.Unmarshal(data, &ext); err != nil {
			return Extension{}, fmt.Errorf("failed to parse JSON extension %s: %w", path, err)
		}
	default:
		if err := DecodeExtension(bytes.NewReader(data), &ext); err != nil {
			return Extension{}, fmt.Errorf("failed to parse YAML extension %s: %w", path, err)
		}
	}
	return ext, nil
}

// DecodeExtension decodes a YAML extension declaration. Unknown fields are rejected.
func DecodeExtension(r io.Reader, ext *Extension) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(ext); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return nil
}

// LoadFiles builds a catalog from the given base extensions plus extension files.
func LoadFiles(base []Extension, paths ...string) (*Catalog, error) {
	b := NewBuilder().Add(base...)
	for _, p := range paths {
		ext, err := LoadExtension(p)
		if err != nil {
			return nil, err
		}
		b.Add(ext)
	}
	return b.Build()
}
