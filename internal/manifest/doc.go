// Package manifest reads, validates and writes the JSON documents zoo keeps
// on disk: the environment manifest (package_version.config) and the
// per-package zoo_package.json. Both are checked against JSON schemas
// embedded in the binary.
package manifest
