package registry

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Requirement is one entry of a package's requirements list, such as
// "zoo_core" or "zoo_core>=2.0.0".
type Requirement struct {
	Name       string
	Constraint *semver.Constraints // nil means any version
	Raw        string
}

// ParseRequirement splits a requirement into a package name and an optional
// semver constraint. "==" is accepted as an alias for "=".
func ParseRequirement(s string) (Requirement, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Requirement{}, fmt.Errorf("empty requirement")
	}

	idx := strings.IndexAny(raw, "<>=!~^ ")
	if idx < 0 {
		return Requirement{Name: raw, Raw: raw}, nil
	}

	req := Requirement{Name: strings.TrimSpace(raw[:idx]), Raw: raw}
	if req.Name == "" {
		return Requirement{}, fmt.Errorf("requirement %q has no package name", raw)
	}
	expr := strings.TrimSpace(strings.ReplaceAll(raw[idx:], "==", "="))
	if expr == "" {
		return req, nil
	}
	c, err := semver.NewConstraint(expr)
	if err != nil {
		return Requirement{}, fmt.Errorf("requirement %q: %w", raw, err)
	}
	req.Constraint = c
	return req, nil
}

// SatisfiedBy reports whether p meets the requirement. Versions that are
// not semver only satisfy unconstrained requirements.
func (r Requirement) SatisfiedBy(p *Package) bool {
	if p == nil || p.Name != r.Name {
		return false
	}
	if r.Constraint == nil {
		return true
	}
	v, err := parseSemver(p.Version)
	if err != nil {
		return false
	}
	return r.Constraint.Check(v)
}

// RequirementIssue describes a requirement that the package set cannot meet.
type RequirementIssue struct {
	Package     string
	Requirement string
	Reason      string
}

func (i RequirementIssue) Error() string {
	return fmt.Sprintf("%s requires %s: %s", i.Package, i.Requirement, i.Reason)
}

// CheckRequirements verifies every requirement of every package against the
// set itself and returns the ones that fail.
func CheckRequirements(pkgs []*Package) []RequirementIssue {
	byName := make(map[string]*Package, len(pkgs))
	for _, p := range pkgs {
		byName[p.Name] = p
	}

	var issues []RequirementIssue
	for _, p := range pkgs {
		for _, s := range p.Requirements {
			req, err := ParseRequirement(s)
			if err != nil {
				issues = append(issues, RequirementIssue{Package: p.ID(), Requirement: s, Reason: err.Error()})
				continue
			}
			dep, ok := byName[req.Name]
			switch {
			case !ok:
				issues = append(issues, RequirementIssue{Package: p.ID(), Requirement: s, Reason: "not in environment"})
			case !req.SatisfiedBy(dep):
				issues = append(issues, RequirementIssue{Package: p.ID(), Requirement: s, Reason: "found " + dep.Version})
			}
		}
	}
	return issues
}

// SortByRequirements returns pkgs with every package after the packages it
// requires. Input order is kept where requirements do not constrain it.
// Requirements on packages outside the set are ignored; a cycle is an error.
func SortByRequirements(pkgs []*Package) ([]*Package, error) {
	byName := make(map[string]*Package, len(pkgs))
	for _, p := range pkgs {
		byName[p.Name] = p
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(pkgs))
	result := make([]*Package, 0, len(pkgs))

	var visit func(p *Package, path []string) error
	visit = func(p *Package, path []string) error {
		switch state[p.Name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("requirement cycle: %s -> %s", strings.Join(path, " -> "), p.Name)
		}
		state[p.Name] = visiting
		for _, s := range p.Requirements {
			req, err := ParseRequirement(s)
			if err != nil {
				continue
			}
			dep, ok := byName[req.Name]
			if !ok || dep == p {
				continue
			}
			if err := visit(dep, append(path, p.Name)); err != nil {
				return err
			}
		}
		state[p.Name] = done
		result = append(result, p)
		return nil
	}

	for _, p := range pkgs {
		if err := visit(p, nil); err != nil {
			return nil, err
		}
	}
	return result, nil
}
