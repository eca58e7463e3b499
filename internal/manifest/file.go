package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// file is the on-disk shape of a manifest:
//
//	assets:
//	  - name: memory-match.html
//	    path: memory-match.html
type file struct {
	Assets []struct {
		Name string `yaml:"name"`
		Path string `yaml:"path"`
	} `yaml:"assets"`
}

// Load reads a YAML manifest from path. Relative asset paths resolve against
// dir; an asset without a path defaults to its name.
func Load(path, dir string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: failed to read %q: %w", path, err)
	}
	return Parse(data, dir)
}

// Parse decodes YAML manifest content and validates the result.
func Parse(data []byte, dir string) (Manifest, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("manifest: failed to parse: %w", err)
	}

	m := make(Manifest, 0, len(f.Assets))
	for _, a := range f.Assets {
		p := a.Path
		if p == "" {
			p = a.Name
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		m = append(m, Entry{Name: a.Name, LocalPath: p})
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
