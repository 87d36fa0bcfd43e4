package setup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrAlreadyConfigured is returned by Scaffold when a starting file exists
// and force is not set.
var ErrAlreadyConfigured = errors.New("project already has rustme files; use --force to overwrite")

const scaffoldConfig = `# rustme configuration.
#
# Each entry under files names an output document and the sections it is
# built from. Sections are paths relative to this file, URLs, or snippet
# references such as src/lib.rs:example.
files:
  README.md:
    - .rustme/header.md

# Terms referenced as $name$ in sections.
glossaries:
  - name: %q
`

const scaffoldHeader = `# $name$

<!-- This file is generated by rustme from .rustme/header.md. Edit that
     file and run rustme generate. -->
`

// Scaffold writes a starting .rustme.yaml and .rustme/header.md into dir
// and returns the paths written.
func Scaffold(dir string, force bool) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}

	files := []struct {
		path     string
		contents string
	}{
		{filepath.Join(abs, ".rustme.yaml"), fmt.Sprintf(scaffoldConfig, filepath.Base(abs))},
		{filepath.Join(abs, ".rustme", "header.md"), scaffoldHeader},
	}

	if !force {
		for _, f := range files {
			if _, err := os.Stat(f.path); err == nil {
				return nil, fmt.Errorf("%w: %s", ErrAlreadyConfigured, f.path)
			}
		}
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
			return written, fmt.Errorf("creating %s: %w", filepath.Dir(f.path), err)
		}
		// #nosec G306 -- project files are meant to be readable
		if err := os.WriteFile(f.path, []byte(f.contents), 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", f.path, err)
		}
		written = append(written, f.path)
	}
	return written, nil
}
