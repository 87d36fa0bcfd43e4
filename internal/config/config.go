// Package config loads rustme project configurations and finds them on disk.
//
// A configuration is a YAML document:
//
//	files:
//	  README.md:
//	    - .rustme/header.md
//	    - src/lib.rs:example
//	  src/.crate-docs.md:
//	    for_docs: true
//	    sections: [.rustme/docs.md]
//	    glossaries:
//	      - https://example.com/glossary.yaml
//	glossaries:
//	  - docs:
//	      release: https://docs.rs/mycrate
//	      default: ./target/doc/mycrate
//
// Paths inside a configuration are relative to the directory that contains
// the configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gorewood/rustme/internal/glossary"
)

// ErrNoConfiguration is returned when a directory walk finds no configuration.
var ErrNoConfiguration = errors.New("no rustme configuration found")

// ParseError reports a configuration that could not be read or decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("configuration %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Configuration describes how to generate one or more documents.
type Configuration struct {
	// Path is the file the configuration was loaded from, if any.
	Path string
	// Dir anchors every relative path in the configuration.
	Dir string
	// Files are the documents to generate, in declaration order.
	Files []FileEntry
	// Glossaries apply to every file.
	Glossaries []glossary.Glossary
}

// FileEntry pairs an output name with its definition.
type FileEntry struct {
	Name string
	File File
}

// OutputPath returns where the entry is written for a configuration rooted
// at dir.
func (e FileEntry) OutputPath(dir string) string {
	return filepath.Join(dir, e.Name)
}

// File describes how one generated document is assembled.
type File struct {
	// ForDocs marks output that is included in API documentation.
	ForDocs bool `yaml:"for_docs"`
	// Sections are concatenated in order.
	Sections []string `yaml:"sections"`
	// Glossaries take precedence over the configuration's glossaries.
	Glossaries []glossary.Glossary `yaml:"glossaries"`
}

// UnmarshalYAML accepts either a bare list of sections or a full mapping.
func (f *File) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var sections []string
		if err := node.Decode(&sections); err != nil {
			return err
		}
		*f = File{Sections: sections}
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: a file must be a list of sections or a mapping", node.Line)
	}

	type plain File
	var decoded plain
	if err := node.Decode(&decoded); err != nil {
		return err
	}
	if !hasKey(node, "sections") {
		return fmt.Errorf("line %d: missing field `sections`", node.Line)
	}
	*f = File(decoded)
	return nil
}

// UnmarshalYAML decodes the files mapping in document order.
func (c *Configuration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: a configuration must be a mapping", node.Line)
	}

	var raw struct {
		Files      yaml.Node           `yaml:"files"`
		Glossaries []glossary.Glossary `yaml:"glossaries"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Files.Kind == 0 {
		return errors.New("missing field `files`")
	}
	if raw.Files.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: files must be a mapping of output names to files", raw.Files.Line)
	}

	files := make([]FileEntry, 0, len(raw.Files.Content)/2)
	seen := make(map[string]bool, len(raw.Files.Content)/2)
	for i := 0; i+1 < len(raw.Files.Content); i += 2 {
		name := raw.Files.Content[i].Value
		if seen[name] {
			return fmt.Errorf("line %d: file %q is listed twice", raw.Files.Content[i].Line, name)
		}
		seen[name] = true

		var file File
		if err := raw.Files.Content[i+1].Decode(&file); err != nil {
			return fmt.Errorf("file %q: %w", name, err)
		}
		files = append(files, FileEntry{Name: name, File: file})
	}

	c.Files = files
	c.Glossaries = raw.Glossaries
	return nil
}

// Parse decodes a configuration whose relative paths resolve against dir.
func Parse(data []byte, dir string) (*Configuration, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, errors.New("missing field `files`")
	}
	var cfg Configuration
	if err := doc.Content[0].Decode(&cfg); err != nil {
		return nil, err
	}
	cfg.Dir = dir
	return &cfg, nil
}

// Load reads the configuration at path. Relative paths inside it resolve
// against the directory containing path.
func Load(path string) (*Configuration, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	cfg, err := Parse(data, filepath.Dir(abs))
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	cfg.Path = abs
	return cfg, nil
}

func hasKey(node *yaml.Node, key string) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}
