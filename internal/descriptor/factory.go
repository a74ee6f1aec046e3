package descriptor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/utsdab/usr-sub005/internal/errs"
	"github.com/utsdab/usr-sub005/internal/manifest"
	"github.com/utsdab/usr-sub005/internal/registry"
)

// requiredKeys lists the manifest keys each type cannot do without.
// "locator" may also be spelled "path".
var requiredKeys = map[string][]string{
	Git:       {KeyName, KeyVersion, KeyLocator},
	LocalPath: {KeyName, KeyLocator},
	Zootools:  {KeyName, KeyVersion},
}

// FromDict builds a descriptor from a raw manifest entry. The entry must
// carry its name (the resolver copies the manifest key into it). A missing
// type is inferred from the locator: ".git" → git, any other locator →
// path, none → zootools.
func FromDict(env Environment, raw manifest.Raw) (Descriptor, error) {
	name := raw.String(KeyName)
	version := raw.String(KeyVersion)
	locator := raw.String(KeyLocator)
	if locator == "" {
		locator = raw.String(KeyPath)
	}

	typ := strings.ToLower(raw.String(KeyType))
	if typ == "" {
		typ = inferType(locator)
	}

	keys, ok := requiredKeys[typ]
	if !ok {
		return nil, &errs.PackageError{Op: "resolve", Name: name, Version: version,
			Err: fmt.Errorf("%q: %w", typ, errs.ErrUnsupportedType)}
	}
	if missing := missingKeys(keys, name, version, locator); len(missing) > 0 {
		return nil, &errs.PackageError{Op: "resolve", Name: name, Version: version,
			Err: fmt.Errorf("%s descriptor needs %s: %w", typ, strings.Join(missing, ", "), errs.ErrMissingKeys)}
	}

	switch typ {
	case Git:
		return newGit(env, name, version, locator), nil
	case LocalPath:
		return newPath(env, name, version, locator), nil
	default:
		return newZootools(env, name, version), nil
	}
}

// FromPath builds a descriptor for a location given on the command line:
// a ".git" URL becomes a git descriptor, an existing directory a path
// descriptor. Fields in raw (name, version) override what is derived from
// the location.
func FromPath(env Environment, location string, raw manifest.Raw) (Descriptor, error) {
	entry := manifest.Raw{}
	for k, v := range raw {
		entry[k] = v
	}
	entry[KeyLocator] = location
	delete(entry, KeyPath)

	if strings.HasSuffix(location, ".git") {
		entry[KeyType] = Git
		if !entry.Has(KeyName) {
			entry[KeyName] = strings.TrimSuffix(filepath.Base(strings.TrimRight(location, "/")), ".git")
		}
		return FromDict(env, entry)
	}

	src := env.Config().ExpandTokens(location, "")
	info, err := os.Stat(src)
	if err != nil || !info.IsDir() {
		return nil, &errs.PackageError{Op: "resolve", Name: raw.String(KeyName),
			Err: fmt.Errorf("%s is neither a .git url nor a directory: %w", location, errs.ErrInvalidLocator)}
	}
	abs, err := filepath.Abs(src)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", src, err)
	}
	entry[KeyLocator] = abs
	entry[KeyType] = LocalPath

	if !entry.Has(KeyName) {
		name := filepath.Base(abs)
		if pkg, err := registry.LoadPackage(abs); err == nil {
			name = pkg.Name
		}
		entry[KeyName] = name
	}
	return FromDict(env, entry)
}

// FromCurrentConfig builds the descriptor registered under name in the
// current environment manifest.
func FromCurrentConfig(env Environment, name string) (Descriptor, error) {
	manifestEnv, err := env.LoadEnvironmentFile()
	if err != nil {
		return nil, err
	}
	raw, ok := manifestEnv[name]
	if !ok {
		return nil, &errs.PackageError{Op: "resolve", Name: name,
			Err: fmt.Errorf("not in environment: %w", errs.ErrNotFound)}
	}
	entry := raw.Clone()
	entry[KeyName] = name
	return FromDict(env, entry)
}

// SupportedTypes returns the known source types, sorted.
func SupportedTypes() []string {
	types := make([]string, 0, len(requiredKeys))
	for t := range requiredKeys {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func inferType(locator string) string {
	switch {
	case strings.HasSuffix(locator, ".git"):
		return Git
	case locator != "":
		return LocalPath
	default:
		return Zootools
	}
}

func missingKeys(keys []string, name, version, locator string) []string {
	values := map[string]string{KeyName: name, KeyVersion: version, KeyLocator: locator}
	var missing []string
	for _, k := range keys {
		if values[k] == "" {
			missing = append(missing, k)
		}
	}
	return missing
}
