package registry

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CompareVersions orders two version strings. Both are parsed as semver
// (a leading "v" is tolerated); when either fails to parse the raw strings
// are compared instead. Returns -1, 0 or 1.
func CompareVersions(a, b string) int {
	av, aErr := parseSemver(a)
	bv, bErr := parseSemver(b)
	if aErr == nil && bErr == nil {
		return av.Compare(bv)
	}
	return strings.Compare(a, b)
}

// SortVersions sorts versions ascending in place.
func SortVersions(versions []string) {
	sort.SliceStable(versions, func(i, j int) bool {
		return CompareVersions(versions[i], versions[j]) < 0
	})
}

func parseSemver(version string) (*semver.Version, error) {
	return semver.NewVersion(strings.TrimPrefix(version, "v"))
}
