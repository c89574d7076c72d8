package firmware

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned by Get when no record matches a name/version pair.
var ErrNotFound = errors.New("firmware: not found")

// Loader identifies which external tool flashes a firmware image.
type Loader int

const (
	LoaderUnknown Loader = iota
	Bossac               // .bin images, flashed with bossac
	Tycmd                // .hex images, flashed with tycmd
)

func (l Loader) String() string {
	switch l {
	case Bossac:
		return "bossac"
	case Tycmd:
		return "tycmd"
	}
	return "unknown"
}

// loaderForExtension maps a lower-cased file extension to its loader.
// Extensions outside this map never produce a catalog record.
func loaderForExtension(ext string) Loader {
	switch ext {
	case "bin":
		return Bossac
	case "hex":
		return Tycmd
	}
	return LoaderUnknown
}

// Record describes one firmware image on disk.
type Record struct {
	Name      string // group key: underscore segments joined with spaces
	Path      string // absolute or scan-relative path to the image file
	Extension string // lower-cased, without the dot
	Version   string // text between the last underscore and the extension
	Loader    Loader
}

// Catalog groups firmware records by name. Names keep the order of first
// appearance during the scan; records within a group are sorted by version
// descending. A Catalog is never mutated after Scan returns; rescanning
// builds a new one.
//
// Version ordering is plain lexicographic string comparison. Version sets
// sharing a common zero-padded width sort correctly; mixed-width numeric
// versions (v9 vs v10) do not. Known limitation, kept on purpose.
type Catalog struct {
	names  []string
	groups map[string][]Record
}

// Scan reads dir and builds a catalog from filenames of the form
// <name_with_underscores>_<version>.<bin|hex>. Entries with any other
// extension are skipped. A missing or unreadable directory yields an
// empty catalog and an advisory error, never a hard failure.
func Scan(dir string) (*Catalog, error) {
	c := &Catalog{groups: make(map[string][]Record)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return c, err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		rec, ok := parseFilename(entry.Name())
		if !ok {
			continue
		}
		rec.Path = filepath.Join(dir, entry.Name())
		if _, seen := c.groups[rec.Name]; !seen {
			c.names = append(c.names, rec.Name)
		}
		c.groups[rec.Name] = append(c.groups[rec.Name], rec)
	}

	for _, group := range c.groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Version > group[j].Version
		})
	}

	return c, nil
}

// parseFilename splits a firmware filename into its record fields.
// Returns ok=false for filenames without a recognized extension.
func parseFilename(fname string) (Record, bool) {
	dot := strings.LastIndexByte(fname, '.')
	if dot < 0 {
		return Record{}, false
	}
	ext := strings.ToLower(fname[dot+1:])
	loader := loaderForExtension(ext)
	if loader == LoaderUnknown {
		return Record{}, false
	}

	segments := strings.Split(fname, "_")
	name := strings.Join(segments[:len(segments)-1], " ")

	last := segments[len(segments)-1]
	version := ""
	if n := len(last) - len(ext) - 1; n > 0 {
		version = last[:n]
	}

	return Record{
		Name:      name,
		Extension: ext,
		Version:   version,
		Loader:    loader,
	}, true
}

// Names returns firmware names in order of first appearance during the scan.
func (c *Catalog) Names() []string {
	return c.names
}

// Versions returns the versions available for name, descending.
// Unknown names yield an empty slice.
func (c *Catalog) Versions(name string) []string {
	group := c.groups[name]
	versions := make([]string, 0, len(group))
	for _, rec := range group {
		versions = append(versions, rec.Version)
	}
	return versions
}

// Get returns the record matching name and version. When duplicate pairs
// exist the earliest scanned wins.
func (c *Catalog) Get(name, version string) (Record, error) {
	for _, rec := range c.groups[name] {
		if rec.Version == version {
			return rec, nil
		}
	}
	return Record{}, ErrNotFound
}
