// Package catalog describes the fixed set of bundled sounds packaged
// with the client.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// soundsSubdir is where sound files live under the assets directory.
const soundsSubdir = "sounds"

// manifestFile is the optional catalog manifest under the assets
// directory.
const manifestFile = "catalog.yaml"

// Entry is one bundled sound.
type Entry struct {
	// Name is the catalog identifier used in configuration.
	Name string `yaml:"name"`

	// Title is a human-readable label for listings.
	Title string `yaml:"title"`
}

// Catalog is the enumerated set of bundled sounds. Identifiers are
// fixed at load time; there are no user-defined bundled sounds.
type Catalog struct {
	fs        afero.Fs
	assetsDir string
	entries   []Entry
	byName    map[string]Entry
}

// defaultEntries is used when the assets directory carries no
// manifest.
var defaultEntries = []Entry{
	{Name: "pop", Title: "Pop"},
	{Name: "bubble", Title: "Bubble"},
	{Name: "chime", Title: "Chime"},
	{Name: "ripple", Title: "Ripple"},
	{Name: "drop", Title: "Drop"},
	{Name: "ding", Title: "Ding"},
}

// Load reads the catalog manifest from the assets directory, falling
// back to the built-in entry set when no manifest exists.
func Load(fs afero.Fs, assetsDir string) (*Catalog, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	entries := defaultEntries

	manifestPath := filepath.Join(assetsDir, manifestFile)
	data, err := afero.ReadFile(fs, manifestPath)
	switch {
	case err == nil:
		var manifest struct {
			Sounds []Entry `yaml:"sounds"`
		}
		if err := yaml.Unmarshal(data, &manifest); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", manifestPath, err)
		}
		if len(manifest.Sounds) > 0 {
			entries = manifest.Sounds
		}
	case os.IsNotExist(err):
		// No manifest; built-in catalog applies.
	default:
		return nil, fmt.Errorf("failed to read %s: %w", manifestPath, err)
	}

	byName := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("catalog entry with empty name in %s", manifestPath)
		}
		byName[e.Name] = e
	}

	return &Catalog{
		fs:        fs,
		assetsDir: assetsDir,
		entries:   entries,
		byName:    byName,
	}, nil
}

// Entries returns all catalog entries in manifest order.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// Lookup returns the entry for a catalog name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	e, ok := c.byName[name]
	return e, ok
}

// Path returns the asset file path for a catalog name, following the
// fixed assets/sounds/<name>.mp3 convention. The second return is
// false for names outside the catalog.
func (c *Catalog) Path(name string) (string, bool) {
	if _, ok := c.byName[name]; !ok {
		return "", false
	}
	return filepath.Join(c.assetsDir, soundsSubdir, name+".mp3"), true
}

// Size returns the on-disk size of a bundled sound in bytes.
func (c *Catalog) Size(name string) (int64, error) {
	path, ok := c.Path(name)
	if !ok {
		return 0, fmt.Errorf("unknown bundled sound %q", name)
	}
	info, err := c.fs.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return info.Size(), nil
}
