package directory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry describes one linked account.
type Entry struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description,omitempty"`
	Mention     string `yaml:"mention,omitempty"`
}

// File is the on-disk account directory format.
type File struct {
	Updated  string  `yaml:"updated"`
	Accounts []Entry `yaml:"accounts"`
}

// Directory resolves account descriptions and chat mentions by account ID.
// A nil Directory resolves nothing.
type Directory struct {
	entries map[string]Entry
}

// New builds a directory from entries. Later duplicates replace earlier ones.
func New(entries []Entry) *Directory {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		m[e.ID] = e
	}
	return &Directory{entries: m}
}

// Load reads a YAML account directory file.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read account directory %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("account directory %s: %w", path, err)
	}
	return d, nil
}

// Parse decodes YAML account directory data.
func Parse(data []byte) (*Directory, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse account directory: %w", err)
	}
	for i, e := range f.Accounts {
		if e.ID == "" {
			return nil, fmt.Errorf("entry %d: missing account id", i)
		}
	}
	return New(f.Accounts), nil
}

// Lookup returns the entry for an account ID.
func (d *Directory) Lookup(id string) (Entry, bool) {
	if d == nil {
		return Entry{}, false
	}
	e, ok := d.entries[id]
	return e, ok
}

// Len returns the number of entries.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}
