package registry

import (
	"strings"
	"testing"
)

func TestParseRequirement(t *testing.T) {
	tests := []struct {
		in         string
		name       string
		constraint bool
		wantErr    bool
	}{
		{"zoo_core", "zoo_core", false, false},
		{"zoo_core>=2.0.0", "zoo_core", true, false},
		{"zoo_core==2.0.0", "zoo_core", true, false},
		{"zoo_core ~1.2", "zoo_core", true, false},
		{">=1.0.0", "", false, true},
		{"", "", false, true},
		{"zoo_core>=banana", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			req, err := ParseRequirement(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", req)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRequirement: %v", err)
			}
			if req.Name != tt.name {
				t.Errorf("Name = %q, want %q", req.Name, tt.name)
			}
			if (req.Constraint != nil) != tt.constraint {
				t.Errorf("Constraint set = %v, want %v", req.Constraint != nil, tt.constraint)
			}
		})
	}
}

func TestSatisfiedBy(t *testing.T) {
	req, err := ParseRequirement("zoo_core>=2.0.0")
	if err != nil {
		t.Fatal(err)
	}
	if !req.SatisfiedBy(&Package{Name: "zoo_core", Version: "2.1.0"}) {
		t.Error("2.1.0 should satisfy >=2.0.0")
	}
	if req.SatisfiedBy(&Package{Name: "zoo_core", Version: "1.9.0"}) {
		t.Error("1.9.0 should not satisfy >=2.0.0")
	}
	if req.SatisfiedBy(&Package{Name: "other", Version: "3.0.0"}) {
		t.Error("wrong name should not satisfy")
	}
	if req.SatisfiedBy(&Package{Name: "zoo_core", Version: "main"}) {
		t.Error("non-semver version should not satisfy a constraint")
	}
}

func TestCheckRequirements(t *testing.T) {
	pkgs := []*Package{
		{Name: "toolA", Version: "1.0.0", Requirements: []string{"zoo_core>=2.0.0", "missing"}},
		{Name: "zoo_core", Version: "1.5.0"},
	}

	issues := CheckRequirements(pkgs)
	if len(issues) != 2 {
		t.Fatalf("got %d issues, want 2: %v", len(issues), issues)
	}
	if !strings.Contains(issues[0].Error(), "found 1.5.0") {
		t.Errorf("issue[0] = %q", issues[0].Error())
	}
	if !strings.Contains(issues[1].Error(), "not in environment") {
		t.Errorf("issue[1] = %q", issues[1].Error())
	}
}

func TestSortByRequirements(t *testing.T) {
	pkgs := []*Package{
		{Name: "toolA", Version: "1.0.0", Requirements: []string{"toolB", "zoo_core"}},
		{Name: "toolB", Version: "1.0.0", Requirements: []string{"zoo_core>=1.0.0"}},
		{Name: "zoo_core", Version: "2.0.0"},
		{Name: "standalone", Version: "1.0.0", Requirements: []string{"elsewhere"}},
	}

	sorted, err := SortByRequirements(pkgs)
	if err != nil {
		t.Fatalf("SortByRequirements: %v", err)
	}
	var names []string
	for _, p := range sorted {
		names = append(names, p.Name)
	}
	want := "zoo_core,toolB,toolA,standalone"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("order = %s, want %s", got, want)
	}
}

func TestSortByRequirementsCycle(t *testing.T) {
	pkgs := []*Package{
		{Name: "a", Version: "1.0.0", Requirements: []string{"b"}},
		{Name: "b", Version: "1.0.0", Requirements: []string{"a"}},
	}
	if _, err := SortByRequirements(pkgs); err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Errorf("expected cycle error, got %v", err)
	}
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.2.0", "1.10.0", -1},
		{"v2.0.0", "1.9.9", 1},
		{"main", "develop", 1},
		{"1.0.0", "main", -1},
	}
	for _, tt := range tests {
		if got := CompareVersions(tt.a, tt.b); got != tt.want {
			t.Errorf("CompareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
