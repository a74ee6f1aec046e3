package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func skipWithoutSymlinks(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need developer mode on windows")
	}
}

func TestLinkDir(t *testing.T) {
	skipWithoutSymlinks(t)
	tmp := t.TempDir()

	target := filepath.Join(tmp, "src", "toolA")
	if err := os.MkdirAll(target, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(target, "hello.txt"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	link := filepath.Join(tmp, "packages", "toolA", "1.0.0")
	if err := LinkDir(target, link); err != nil {
		t.Fatalf("LinkDir failed: %v", err)
	}

	if !IsLink(link) {
		t.Fatal("IsLink = false after LinkDir")
	}
	data, err := os.ReadFile(filepath.Join(link, "hello.txt"))
	if err != nil {
		t.Fatalf("reading through link: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("content = %q, want %q", data, "hello")
	}
	got, err := ReadLinkTarget(link)
	if err != nil {
		t.Fatal(err)
	}
	if got != target {
		t.Errorf("ReadLinkTarget = %q, want %q", got, target)
	}
}

func TestLinkDirRejectsFile(t *testing.T) {
	tmp := t.TempDir()
	file := filepath.Join(tmp, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := LinkDir(file, filepath.Join(tmp, "link")); err == nil {
		t.Error("expected error linking to a file")
	}
}

func TestUnlinkKeepsTarget(t *testing.T) {
	skipWithoutSymlinks(t)
	tmp := t.TempDir()

	target := filepath.Join(tmp, "src")
	if err := os.MkdirAll(target, 0755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(tmp, "link")
	if err := LinkDir(target, link); err != nil {
		t.Fatal(err)
	}

	if err := Unlink(link); err != nil {
		t.Fatalf("Unlink failed: %v", err)
	}
	if _, err := os.Lstat(link); !os.IsNotExist(err) {
		t.Error("link still exists after Unlink")
	}
	if _, err := os.Stat(target); err != nil {
		t.Errorf("target removed by Unlink: %v", err)
	}

	if err := Unlink(target); err == nil {
		t.Error("Unlink on a real directory should fail")
	}
}
