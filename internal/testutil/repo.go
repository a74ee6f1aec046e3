// Package testutil holds fixtures shared by package tests: throwaway git
// repositories and package source trees.
package testutil

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// RepoSpec describes the history of a fixture repository: Files form the
// first commit (tagged Tag when set), After an optional second commit.
type RepoSpec struct {
	Files map[string]string
	Tag   string
	After map[string]string
}

// RequireGit skips the test when git is not installed. Fixture repos are
// built in-process, but go-git's file transport still runs git-upload-pack
// to serve a clone from a local path.
func RequireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

// CreateRepo builds a repository from spec on branch main in a temp
// directory and returns its path, which ends in ".git".
func CreateRepo(t *testing.T, spec RepoSpec) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "repo.git")

	repo, err := gogit.PlainInitWithOptions(dir, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("main")},
	})
	if err != nil {
		t.Fatalf("initialising %s: %v", dir, err)
	}

	first := commit(t, repo, dir, spec.Files, "initial commit")
	if spec.Tag != "" {
		if _, err := repo.CreateTag(spec.Tag, first, nil); err != nil {
			t.Fatalf("tagging %s: %v", spec.Tag, err)
		}
	}
	if len(spec.After) > 0 {
		commit(t, repo, dir, spec.After, "second commit")
	}
	return dir
}

// WriteTree writes files (slash-separated relative paths) under root.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(files[name]), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// WritePackageSource creates a package source directory holding a
// zoo_package.json built from meta plus any extra files.
func WritePackageSource(t *testing.T, root string, meta map[string]any, files map[string]string) string {
	t.Helper()
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	if meta != nil {
		data, err := json.MarshalIndent(meta, "", "    ")
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(root, "zoo_package.json"), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	WriteTree(t, root, files)
	return root
}

func commit(t *testing.T, repo *gogit.Repository, dir string, files map[string]string, msg string) plumbing.Hash {
	t.Helper()
	if len(files) == 0 {
		files = map[string]string{"README.md": "# test\n"}
	}
	WriteTree(t, dir, files)

	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if err := wt.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		t.Fatalf("staging files: %v", err)
	}
	hash, err := wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("committing %q: %v", msg, err)
	}
	return hash
}
