package platform

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
)

// Chmod sets file permissions. On Windows only the owner-write bit is
// honoured by the OS, so anything else is a no-op there.
func Chmod(path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		return os.Chmod(path, mode&0o200|0o444)
	}
	return os.Chmod(path, mode)
}

// RemoveAll deletes path like os.RemoveAll. When the first attempt fails
// (read-only files from a git checkout, typically), it makes the tree
// writable and retries once.
func RemoveAll(path string) error {
	err := os.RemoveAll(path)
	if err == nil {
		return nil
	}
	if mkErr := MakeWritable(path); mkErr != nil {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

// MakeWritable adds the owner-write bit to every entry under root.
// Symlinks are not followed.
func MakeWritable(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		perm := info.Mode().Perm()
		if perm&0o200 != 0 {
			return nil
		}
		return Chmod(path, perm|0o200)
	})
}
