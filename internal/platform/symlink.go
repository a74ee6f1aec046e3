package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ErrLinkUnsupported is returned when the OS refuses to create a symlink.
var ErrLinkUnsupported = errors.New("directory links are not supported on this system")

// LinkDir makes link point at the directory target. The parent of link is
// created when missing. On Windows without developer mode the call fails
// with ErrLinkUnsupported and callers are expected to copy instead.
func LinkDir(target, link string) error {
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("link target %s: %w", target, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("link target %s is not a directory", target)
	}
	if err := os.MkdirAll(filepath.Dir(link), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(link), err)
	}
	if err := os.Symlink(target, link); err != nil {
		if runtime.GOOS == "windows" {
			return fmt.Errorf("%w: %v", ErrLinkUnsupported, err)
		}
		return fmt.Errorf("linking %s -> %s: %w", link, target, err)
	}
	return nil
}

// IsLink reports whether path is a symlink.
func IsLink(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}

// Unlink removes the link itself, never what it points to.
func Unlink(path string) error {
	if !IsLink(path) {
		return fmt.Errorf("%s is not a link", path)
	}
	return os.Remove(path)
}

// ReadLinkTarget returns the target of a symlink.
func ReadLinkTarget(path string) (string, error) {
	return os.Readlink(path)
}
