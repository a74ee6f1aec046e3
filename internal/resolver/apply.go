package resolver

import (
	"os"
	"sort"
	"strings"
)

// Applier publishes resolved package environment variables to the host.
type Applier interface {
	Apply(vars map[string]string) error
}

// NoopApplier is used standalone: the variables are reported, not applied.
type NoopApplier struct{}

func (NoopApplier) Apply(map[string]string) error { return nil }

// ProcessApplier writes the variables into the current process environment,
// prepending to any existing path-list value. Hosts that embed zoo (Maya)
// read them from there.
type ProcessApplier struct{}

func (ProcessApplier) Apply(vars map[string]string) error {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sep := string(os.PathListSeparator)
	for _, k := range keys {
		value := vars[k]
		if existing := os.Getenv(k); existing != "" && !containsEntry(existing, value, sep) {
			value = value + sep + existing
		} else if existing != "" {
			value = existing
		}
		if err := os.Setenv(k, value); err != nil {
			return err
		}
	}
	return nil
}

// containsEntry reports whether every entry of value is already in list.
func containsEntry(list, value, sep string) bool {
	have := make(map[string]bool)
	for _, e := range strings.Split(list, sep) {
		have[e] = true
	}
	for _, e := range strings.Split(value, sep) {
		if !have[e] {
			return false
		}
	}
	return true
}
