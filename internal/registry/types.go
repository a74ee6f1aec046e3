package registry

import (
	"encoding/json"
	"fmt"
	"path/filepath"
)

// FileName is the metadata file written into every package root.
const FileName = "zoo_package.json"

// EnvValue is one environment entry of a package: a single string or a
// list of strings. Lists are joined with the OS path separator on apply.
type EnvValue []string

// UnmarshalJSON accepts either "value" or ["a", "b"].
func (v *EnvValue) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*v = EnvValue{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("environment value must be a string or list of strings")
	}
	*v = EnvValue(list)
	return nil
}

// Package is a parsed zoo_package.json plus the directory it was read from.
type Package struct {
	Name         string              `json:"name" yaml:"name"`
	Version      string              `json:"version" yaml:"version"`
	DisplayName  string              `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Description  string              `json:"description,omitempty" yaml:"description,omitempty"`
	Author       string              `json:"author,omitempty" yaml:"author,omitempty"`
	AuthorEmail  string              `json:"authorEmail,omitempty" yaml:"authorEmail,omitempty"`
	Requirements []string            `json:"requirements,omitempty" yaml:"requirements,omitempty"`
	Environment  map[string]EnvValue `json:"environment,omitempty" yaml:"environment,omitempty"`
	Commands     []string            `json:"commands,omitempty" yaml:"commands,omitempty"`
	Tests        []string            `json:"tests,omitempty" yaml:"tests,omitempty"`

	Root string `json:"-" yaml:"root"`
}

// ID returns the cache key "<name>-<version>".
func (p *Package) ID() string {
	return p.Name + "-" + p.Version
}

// File returns the path of the package's zoo_package.json.
func (p *Package) File() string {
	return filepath.Join(p.Root, FileName)
}

// Label returns DisplayName, falling back to Name.
func (p *Package) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Name
}

func (p *Package) String() string {
	return p.ID()
}
