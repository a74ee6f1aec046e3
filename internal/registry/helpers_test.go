package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// writePackage installs a package file at <dir>/<name>/<version>.
func writePackage(t *testing.T, dir string, pkg map[string]any) string {
	t.Helper()
	root := Dir(dir, pkg["name"].(string), pkg["version"].(string))
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(pkg)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, FileName), data, 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
