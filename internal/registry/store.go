package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/utsdab/usr-sub005/internal/errs"
	"github.com/utsdab/usr-sub005/internal/manifest"
	"github.com/utsdab/usr-sub005/internal/platform"
)

// Dir returns <packagesDir>/<name>/<version>.
func Dir(packagesDir, name, version string) string {
	return filepath.Join(packagesDir, name, version)
}

// LoadPackage reads root/zoo_package.json. A missing file is errs.ErrNotFound,
// an unreadable or schema-invalid one errs.ErrParse.
func LoadPackage(root string) (*Package, error) {
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("package file %s: %w", path, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("reading package file %s: %w", path, err)
	}

	result, err := manifest.Validate(manifest.SchemaPackage, data)
	if err != nil {
		return nil, fmt.Errorf("parsing package file %s: %v: %w", path, err, errs.ErrParse)
	}
	if !result.Valid {
		return nil, fmt.Errorf("invalid package file %s: %s: %w", path, result.Summary(), errs.ErrParse)
	}

	var pkg Package
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing package file %s: %v: %w", path, err, errs.ErrParse)
	}
	pkg.Root = root
	return &pkg, nil
}

// ReadVersion returns the version field of root/zoo_package.json without
// validating the rest of the file.
func ReadVersion(root string) (string, error) {
	path := filepath.Join(root, FileName)
	meta, err := readRaw(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("package file %s: %w", path, errs.ErrNotFound)
		}
		return "", err
	}
	v, _ := meta["version"].(string)
	if v == "" {
		return "", fmt.Errorf("package file in %s has no version: %w", root, errs.ErrNotFound)
	}
	return v, nil
}

// WritePackageFile stamps name and version into root/zoo_package.json,
// keeping every other key already present, and returns the parsed result.
func WritePackageFile(root, name, version string) (*Package, error) {
	path := filepath.Join(root, FileName)
	meta, err := readRaw(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if meta == nil {
		meta = map[string]any{}
	}
	meta["name"] = name
	meta["version"] = version

	if err := writeRaw(path, meta); err != nil {
		return nil, err
	}
	return LoadPackage(root)
}

// Installed reports whether name/version has a package file on disk.
func Installed(packagesDir, name, version string) bool {
	if name == "" || version == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(Dir(packagesDir, name, version), FileName))
	return err == nil
}

// Lookup loads an installed package.
func Lookup(packagesDir, name, version string) (*Package, error) {
	if !Installed(packagesDir, name, version) {
		return nil, fmt.Errorf("package %s-%s: %w", name, version, errs.ErrNotFound)
	}
	return LoadPackage(Dir(packagesDir, name, version))
}

// Versions lists the installed versions of name, oldest first.
func Versions(packagesDir, name string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(packagesDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing versions of %s: %w", name, err)
	}

	var versions []string
	for _, e := range entries {
		if !isDirEntry(filepath.Join(packagesDir, name), e) {
			continue
		}
		if Installed(packagesDir, name, e.Name()) {
			versions = append(versions, e.Name())
		}
	}
	SortVersions(versions)
	return versions, nil
}

// Latest returns the newest installed version of name.
func Latest(packagesDir, name string) (*Package, error) {
	versions, err := Versions(packagesDir, name)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("package %s: %w", name, errs.ErrNotFound)
	}
	return Lookup(packagesDir, name, versions[len(versions)-1])
}

// Discover returns every readable installed package, ordered by name then
// version. Broken installs are skipped.
func Discover(packagesDir string) ([]*Package, error) {
	names, err := os.ReadDir(packagesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading packages directory: %w", err)
	}

	var result []*Package
	for _, n := range names {
		if !isDirEntry(packagesDir, n) {
			continue
		}
		versions, err := Versions(packagesDir, n.Name())
		if err != nil {
			continue
		}
		for _, v := range versions {
			pkg, err := LoadPackage(Dir(packagesDir, n.Name(), v))
			if err != nil {
				continue
			}
			result = append(result, pkg)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return CompareVersions(result[i].Version, result[j].Version) < 0
	})
	return result, nil
}

// Remove deletes an installed version. Linked installs lose only the link.
// The <name> directory is removed too once it is empty.
func Remove(packagesDir, name, version string) error {
	dir := Dir(packagesDir, name, version)
	if _, err := os.Lstat(dir); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("package %s-%s: %w", name, version, errs.ErrNotFound)
		}
		return fmt.Errorf("checking %s: %w", dir, err)
	}

	if platform.IsLink(dir) {
		if err := platform.Unlink(dir); err != nil {
			return fmt.Errorf("unlinking %s: %w", dir, err)
		}
	} else if err := platform.RemoveAll(dir); err != nil {
		return err
	}

	nameDir := filepath.Join(packagesDir, name)
	if entries, err := os.ReadDir(nameDir); err == nil && len(entries) == 0 {
		if err := os.Remove(nameDir); err != nil {
			return fmt.Errorf("removing %s: %w", nameDir, err)
		}
	}
	return nil
}

// isDirEntry follows symlinks so linked installs count as directories.
func isDirEntry(parent string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(parent, e.Name()))
	return err == nil && info.IsDir()
}

func readRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var meta map[string]any
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing %s: %v: %w", path, err, errs.ErrParse)
	}
	return meta, nil
}

func writeRaw(path string, meta map[string]any) error {
	data, err := json.MarshalIndent(meta, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return manifest.WriteFileAtomic(path, append(data, '\n'))
}
