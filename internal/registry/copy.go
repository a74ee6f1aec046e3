package registry

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/utsdab/usr-sub005/internal/errs"
	"github.com/utsdab/usr-sub005/internal/platform"
)

// DefaultExcludes are glob patterns (matched against base names) skipped
// when a package source is copied into the store.
var DefaultExcludes = []string{
	".gitignore",
	".gitmodules",
	".flake8.ini",
	".hound.yml",
	"setup.py",
	"docs",
	"*.git",
	"*.vscode",
	"*__pycache__",
	"*.idea",
	"MANIFEST.ini",
	".DS_Store",
}

// stagingSuffix marks an install that has not been committed yet.
const stagingSuffix = ".tmp"

// InstallDir populates dest through a staging directory. populate receives
// the staging path; on success it is renamed to dest, on failure it is
// removed so no half-copied package is left behind. dest must not exist.
func InstallDir(dest string, populate func(staging string) error) error {
	if _, err := os.Lstat(dest); err == nil {
		return fmt.Errorf("%s: %w", dest, errs.ErrAlreadyExists)
	}

	staging := dest + stagingSuffix
	if err := platform.RemoveAll(staging); err != nil {
		return fmt.Errorf("clearing stale staging dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
	}

	if err := populate(staging); err != nil {
		if rmErr := platform.RemoveAll(staging); rmErr != nil {
			return errors.Join(err, rmErr)
		}
		return err
	}

	if err := os.Rename(staging, dest); err != nil {
		_ = platform.RemoveAll(staging)
		return fmt.Errorf("committing install to %s: %w", dest, err)
	}
	return nil
}

// CopyTree recursively copies src to dst, skipping entries whose base name
// matches one of excludes. Symlinks and special files are skipped.
func CopyTree(src, dst string, excludes []string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !srcInfo.IsDir() {
		return fmt.Errorf("%s is not a directory", src)
	}

	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()|0o700); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if Excluded(entry.Name(), excludes) {
			continue
		}

		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := CopyTree(srcPath, dstPath, excludes); err != nil {
				return err
			}
		} else if entry.Type().IsRegular() {
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}

// Excluded reports whether name matches any of patterns.
func Excluded(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// copyFile copies a single file from src to dst, preserving permissions.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm()|0o200)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
