package manifest

import "fmt"

// Raw is one manifest entry as stored on disk: descriptor fields keyed by name.
type Raw map[string]any

// String returns the string value of key, or "" when absent.
func (r Raw) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Has reports whether key is present with a non-empty value.
func (r Raw) Has(key string) bool {
	return r.String(key) != ""
}

// Clone returns a shallow copy of r.
func (r Raw) Clone() Raw {
	out := make(Raw, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Environment maps package name to its raw descriptor.
type Environment map[string]Raw

// Names returns the package names in the manifest.
func (e Environment) Names() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	return names
}

// SchemaKind selects which embedded schema Validate uses.
type SchemaKind string

const (
	SchemaEnvironment SchemaKind = "environment.schema.json"
	SchemaPackage     SchemaKind = "package.schema.json"
)
