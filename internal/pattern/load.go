package pattern

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk format of a user patterns file:
//
//	intentions:
//	  - key: morning-energy
//	    title: Morning Energy
//	    pattern: {name: Energizer, inhale: 3, exhale: 3, cycles: 12}
type File struct {
	Intentions []Intention `yaml:"intentions"`
}

// ParseFile decodes a patterns file. It does not validate.
func ParseFile(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parsing patterns file: %w", err)
	}
	return f, nil
}

// Merge returns the built-ins with overlay entries applied on top. Entries
// sharing a built-in key override it; new keys are appended.
func Merge(overlay []Intention) []Intention {
	return append(Builtins(), overlay...)
}

// LoadCatalog builds a catalog from the built-ins plus the file at path.
// An empty path or a missing file yields the built-ins alone.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	intentions, err := readOverlay(path)
	if err != nil {
		return nil, err
	}
	return NewCatalog(Merge(intentions)...)
}

// Reload re-reads path into c. On any error c keeps its previous table.
func (c *Catalog) Reload(path string) error {
	intentions, err := readOverlay(path)
	if err != nil {
		return err
	}
	return c.Replace(Merge(intentions))
}

func readOverlay(path string) ([]Intention, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from user config
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading patterns file: %w", err)
	}
	f, err := ParseFile(data)
	if err != nil {
		return nil, err
	}
	return f.Intentions, nil
}
