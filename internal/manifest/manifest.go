// Package manifest describes the fixed, ordered set of mini-game bundles that
// are published to object storage. The manifest is the single source of truth
// for which assets are in scope: the publisher and the manual-fallback report
// both iterate it in order and never extend or trim it.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultAssetsDir is the working directory the default manifest resolves
// against when no other directory is configured.
const DefaultAssetsDir = "mini-games"

// defaultNames is the compiled-in list of bundles, in publish order.
var defaultNames = []string{
	"memory-match.html",
	"word-scramble.html",
	"color-sort.html",
}

// Entry is a single named asset and where to read it from on disk. Name is the
// entry's identity and becomes the final path segment of the object name.
type Entry struct {
	Name      string
	LocalPath string
}

// Manifest is an ordered list of entries. Order only matters for deterministic
// console output.
type Manifest []Entry

// Status pairs an entry with the result of its local existence probe.
type Status struct {
	Entry  Entry
	Exists bool
}

// Default returns the compiled-in manifest with every entry resolved under
// dir.
func Default(dir string) Manifest {
	m := make(Manifest, 0, len(defaultNames))
	for _, name := range defaultNames {
		m = append(m, Entry{Name: name, LocalPath: filepath.Join(dir, name)})
	}
	return m
}

// Validate reports whether every entry has a usable, unique name.
func (m Manifest) Validate() error {
	seen := make(map[string]struct{}, len(m))
	var errs []error
	for i, e := range m {
		switch {
		case e.Name == "":
			errs = append(errs, fmt.Errorf("manifest: entry %d has an empty name", i))
			continue
		case strings.Contains(e.Name, "/"):
			errs = append(errs, fmt.Errorf("manifest: entry %q must not contain a path separator", e.Name))
		case e.LocalPath == "":
			errs = append(errs, fmt.Errorf("manifest: entry %q has an empty local path", e.Name))
		}
		if _, ok := seen[e.Name]; ok {
			errs = append(errs, fmt.Errorf("manifest: duplicate entry %q", e.Name))
		}
		seen[e.Name] = struct{}{}
	}
	return errors.Join(errs...)
}

// Names returns the entry names in manifest order.
func (m Manifest) Names() []string {
	names := make([]string, len(m))
	for i, e := range m {
		names[i] = e.Name
	}
	return names
}

// Check probes every entry's local path and returns the results in manifest
// order.
func (m Manifest) Check() []Status {
	statuses := make([]Status, len(m))
	for i, e := range m {
		statuses[i] = Status{Entry: e, Exists: Exists(e)}
	}
	return statuses
}

// Exists reports whether the entry's local path names a regular file.
func Exists(e Entry) bool {
	info, err := os.Stat(e.LocalPath)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
