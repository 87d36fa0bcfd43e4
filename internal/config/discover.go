package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Names of configuration files recognised by Discover.
const (
	FileName    = ".rustme.yaml"
	AltFileName = ".rustme.yml"
	DirName     = ".rustme"
	DirFileName = "config.yaml"
)

// Discover walks root and returns every configuration path in walk order:
// .rustme.yaml and .rustme.yml files, plus config.yaml inside any .rustme
// directory. .git directories are skipped. Without any match it returns
// ErrNoConfiguration.
func Discover(root string) ([]string, error) {
	var found []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			switch name {
			case ".git":
				return filepath.SkipDir
			case DirName:
				candidate := filepath.Join(path, DirFileName)
				if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
					found = append(found, candidate)
				}
			}
			return nil
		}

		if name == FileName || name == AltFileName {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoConfiguration
		}
		return nil, err
	}

	if len(found) == 0 {
		return nil, ErrNoConfiguration
	}
	return found, nil
}

// Find loads the configuration at path when path is set, and otherwise the
// first configuration Discover finds below dir.
func Find(path, dir string) (*Configuration, error) {
	if path != "" {
		return Load(path)
	}
	paths, err := Discover(dir)
	if err != nil {
		return nil, err
	}
	return Load(paths[0])
}
