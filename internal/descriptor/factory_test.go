package descriptor

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/utsdab/usr-sub005/internal/errs"
	"github.com/utsdab/usr-sub005/internal/manifest"
	"github.com/utsdab/usr-sub005/internal/testutil"
)

func TestFromDict(t *testing.T) {
	env := newFakeEnv(t, nil)

	tests := []struct {
		name     string
		raw      manifest.Raw
		wantType string
		wantLoc  string
		wantErr  error
	}{
		{
			name:     "path",
			raw:      manifest.Raw{"name": "toolA", "version": "1.0.0", "type": "path", "locator": "/tmp/src/toolA"},
			wantType: LocalPath,
			wantLoc:  "/tmp/src/toolA",
		},
		{
			name:     "path alias",
			raw:      manifest.Raw{"name": "toolA", "type": "path", "path": "/tmp/src/toolA"},
			wantType: LocalPath,
			wantLoc:  "/tmp/src/toolA",
		},
		{
			name:     "git",
			raw:      manifest.Raw{"name": "anim", "version": "v1.0.0", "type": "git", "path": "https://example.com/anim.git"},
			wantType: Git,
			wantLoc:  "https://example.com/anim.git",
		},
		{
			name:     "zootools",
			raw:      manifest.Raw{"name": "zoo_core", "version": "2.0.0", "type": "zootools"},
			wantType: Zootools,
		},
		{
			name:     "type is case insensitive",
			raw:      manifest.Raw{"name": "zoo_core", "version": "2.0.0", "type": "ZooTools"},
			wantType: Zootools,
		},
		{
			name:     "inferred git",
			raw:      manifest.Raw{"name": "anim", "version": "main", "locator": "https://example.com/anim.git"},
			wantType: Git,
			wantLoc:  "https://example.com/anim.git",
		},
		{
			name:     "inferred zootools",
			raw:      manifest.Raw{"name": "zoo_core", "version": "2.0.0"},
			wantType: Zootools,
		},
		{
			name:    "unsupported type",
			raw:     manifest.Raw{"name": "numpy", "version": "1.0", "type": "pypi"},
			wantErr: errs.ErrUnsupportedType,
		},
		{
			name:    "git without version",
			raw:     manifest.Raw{"name": "anim", "type": "git", "locator": "https://example.com/anim.git"},
			wantErr: errs.ErrMissingKeys,
		},
		{
			name:    "path without locator",
			raw:     manifest.Raw{"name": "toolA", "type": "path"},
			wantErr: errs.ErrMissingKeys,
		},
		{
			name:    "zootools without version",
			raw:     manifest.Raw{"name": "zoo_core", "type": "zootools"},
			wantErr: errs.ErrMissingKeys,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := FromDict(env, tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("FromDict error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromDict: %v", err)
			}
			if d.Type() != tt.wantType {
				t.Errorf("Type() = %q, want %q", d.Type(), tt.wantType)
			}
			if d.Locator() != tt.wantLoc {
				t.Errorf("Locator() = %q, want %q", d.Locator(), tt.wantLoc)
			}
			if d.Name() != tt.raw.String("name") {
				t.Errorf("Name() = %q", d.Name())
			}
		})
	}
}

func TestFromPath(t *testing.T) {
	env := newFakeEnv(t, nil)
	src := testutil.WritePackageSource(t, filepath.Join(t.TempDir(), "checkout"),
		map[string]any{"name": "toolA", "version": "1.0.0"}, nil)

	d, err := FromPath(env, src, nil)
	if err != nil {
		t.Fatalf("FromPath(dir): %v", err)
	}
	if d.Type() != LocalPath || d.Name() != "toolA" {
		t.Errorf("got %s %s, want path toolA", d.Type(), d.Name())
	}

	d, err = FromPath(env, src, manifest.Raw{"name": "renamed", "version": "9.9.9"})
	if err != nil {
		t.Fatal(err)
	}
	if d.Name() != "renamed" || d.Version() != "9.9.9" {
		t.Errorf("overrides ignored: %s", d)
	}

	d, err = FromPath(env, "https://example.com/studio/animTools.git", manifest.Raw{"version": "v1.0.0"})
	if err != nil {
		t.Fatalf("FromPath(git): %v", err)
	}
	if d.Type() != Git || d.Name() != "animTools" {
		t.Errorf("got %s %s, want git animTools", d.Type(), d.Name())
	}

	if _, err := FromPath(env, filepath.Join(t.TempDir(), "missing"), nil); !errors.Is(err, errs.ErrInvalidLocator) {
		t.Errorf("FromPath(missing) = %v, want ErrInvalidLocator", err)
	}
}

func TestFromCurrentConfig(t *testing.T) {
	env := newFakeEnv(t, manifest.Environment{
		"zoo_core": manifest.Raw{"type": "zootools", "version": "2.0.0"},
	})

	d, err := FromCurrentConfig(env, "zoo_core")
	if err != nil {
		t.Fatalf("FromCurrentConfig: %v", err)
	}
	if d.Name() != "zoo_core" || d.Version() != "2.0.0" {
		t.Errorf("got %s", d)
	}

	if _, err := FromCurrentConfig(env, "missing"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("FromCurrentConfig(missing) = %v, want ErrNotFound", err)
	}
}

func TestSupportedTypes(t *testing.T) {
	got := SupportedTypes()
	if len(got) != 3 || got[0] != Git || got[1] != LocalPath || got[2] != Zootools {
		t.Errorf("SupportedTypes() = %v", got)
	}
}
