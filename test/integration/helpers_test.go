//go:build integration

package integration_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/utsdab/usr-sub005/internal/cli"
	"github.com/utsdab/usr-sub005/internal/config"
	"github.com/utsdab/usr-sub005/internal/logging"
	"github.com/utsdab/usr-sub005/internal/testutil"
	"github.com/utsdab/usr-sub005/internal/zoo"
)

// testEnv is an isolated zoo root plus a scratch directory for sources,
// bundles and secondary roots.
type testEnv struct {
	Root    string // ZOO_ROOT
	WorkDir string
	Logs    bytes.Buffer
}

// setupTestEnv creates the directories and clears every ZOO_* variable so
// nothing leaks in from the developer's shell. The variables are restored
// after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	testutil.ClearZooEnv(t)

	env := &testEnv{
		Root:    t.TempDir(),
		WorkDir: t.TempDir(),
	}
	t.Setenv("ZOO_ROOT", env.Root)
	return env
}

// zoo runs one command line against root and returns its stdout.
func (e *testEnv) zoo(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	cfg, err := config.LoadRoot(root)
	if err != nil {
		t.Fatalf("loading %s: %v", root, err)
	}
	logger, level := logging.New(&e.Logs, slog.LevelDebug)

	var stdout, stderr bytes.Buffer
	ex := cli.NewExecutor(zoo.New(cfg, logger), cli.Options{
		Stdout: &stdout,
		Stderr: &stderr,
		Level:  level,
		Build:  cli.BuildInfo{Version: "0.0.0-test"},
	})
	err = ex.Run(context.Background(), args)
	if stderr.Len() > 0 {
		t.Logf("zoo %s stderr:\n%s", strings.Join(args, " "), stderr.String())
	}
	return stdout.String(), err
}

// mustZoo is zoo that fails the test on error.
func (e *testEnv) mustZoo(t *testing.T, root string, args ...string) string {
	t.Helper()
	out, err := e.zoo(t, root, args...)
	if err != nil {
		t.Fatalf("zoo %s: %v\nlogs:\n%s", strings.Join(args, " "), err, e.Logs.String())
	}
	return out
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
