// Package manifest loads declaration manifests and turns them into decl symbols.
//
// A manifest describes the declarations of one package in YAML, TOML or JSON:
//
//	package: com.example
//	generator: ">= 0.4"
//	imports: [com.other.Thing]
//	functions:
//	  - name: move
//	    params:
//	      - {name: x, type: Int}
//	      - {name: y, type: Int}
//	classes:
//	  - name: Point
//	    type_params: [{name: T}]
//	    constructor:
//	      params: [{name: x, type: T}, {name: y, type: T}]
//
// Unknown keys are rejected in every format.
package manifest

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/teranos/namedargs/errors"
)

// Format is a manifest encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.WithHint(
		errors.Newf("unknown manifest format for %s", path),
		"use a .yaml, .yml, .toml or .json extension")
}

// File is one decoded manifest.
type File struct {
	Package   string     `yaml:"package" toml:"package" json:"package"`
	Generator string     `yaml:"generator,omitempty" toml:"generator" json:"generator,omitempty"`
	Imports   []string   `yaml:"imports,omitempty" toml:"imports" json:"imports,omitempty"`
	Functions []Function `yaml:"functions,omitempty" toml:"functions" json:"functions,omitempty"`
	Classes   []Class    `yaml:"classes,omitempty" toml:"classes" json:"classes,omitempty"`

	// Path is the file the manifest was read from, empty when decoded from memory.
	Path string `yaml:"-" toml:"-" json:"-"`
}

// Function is a declared function or constructor-less member.
type Function struct {
	Name       string      `yaml:"name" toml:"name" json:"name"`
	Kind       string      `yaml:"kind,omitempty" toml:"kind" json:"kind,omitempty"`
	Visibility string      `yaml:"visibility,omitempty" toml:"visibility" json:"visibility,omitempty"`
	TypeParams []TypeParam `yaml:"type_params,omitempty" toml:"type_params" json:"type_params,omitempty"`
	Params     []Param     `yaml:"params,omitempty" toml:"params" json:"params,omitempty"`
	Returns    string      `yaml:"returns,omitempty" toml:"returns" json:"returns,omitempty"`
}

// Param is a function parameter. Type is a type string.
type Param struct {
	Name   string `yaml:"name" toml:"name" json:"name"`
	Type   string `yaml:"type" toml:"type" json:"type"`
	Vararg bool   `yaml:"vararg,omitempty" toml:"vararg" json:"vararg,omitempty"`
}

// TypeParam is a generic parameter with optional upper bounds.
type TypeParam struct {
	Name   string   `yaml:"name" toml:"name" json:"name"`
	Bounds []string `yaml:"bounds,omitempty" toml:"bounds" json:"bounds,omitempty"`
}

// Class is a class-like declaration.
type Class struct {
	Name        string       `yaml:"name" toml:"name" json:"name"`
	Kind        string       `yaml:"kind,omitempty" toml:"kind" json:"kind,omitempty"`
	Inner       bool         `yaml:"inner,omitempty" toml:"inner" json:"inner,omitempty"`
	TypeParams  []TypeParam  `yaml:"type_params,omitempty" toml:"type_params" json:"type_params,omitempty"`
	Constructor *Constructor `yaml:"constructor,omitempty" toml:"constructor" json:"constructor,omitempty"`
	Functions   []Function   `yaml:"functions,omitempty" toml:"functions" json:"functions,omitempty"`
	Nested      []Class      `yaml:"nested,omitempty" toml:"nested" json:"nested,omitempty"`
}

// Constructor is the primary constructor of a class.
type Constructor struct {
	Visibility string  `yaml:"visibility,omitempty" toml:"visibility" json:"visibility,omitempty"`
	Params     []Param `yaml:"params,omitempty" toml:"params" json:"params,omitempty"`
}

// Decode parses a manifest in the given format.
func Decode(data []byte, format Format) (*File, error) {
	var f File
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("empty manifest")
			}
			return nil, errors.Wrap(err, "failed to parse YAML manifest")
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &f)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse TOML manifest")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			return nil, errors.Newf("unknown manifest keys: %s", strings.Join(keys, ", "))
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("empty manifest")
			}
			return nil, errors.Wrap(err, "failed to parse JSON manifest")
		}
	default:
		return nil, errors.Newf("unsupported manifest format %q", format)
	}

	if strings.TrimSpace(f.Package) == "" {
		return nil, errors.WithHint(errors.New("manifest has no package"), "set the top-level package key")
	}
	return &f, nil
}

// ReadFile reads and decodes the manifest at path.
func ReadFile(path string) (*File, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read manifest %s", path)
	}
	f, err := Decode(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest %s", path)
	}
	f.Path = path
	return f, nil
}

// source describes f for diagnostics.
func (f *File) source() string {
	if f.Path != "" {
		return f.Path
	}
	return "manifest for " + f.Package
}
