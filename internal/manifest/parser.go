package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/utsdab/usr-sub005/internal/errs"
	"github.com/utsdab/usr-sub005/internal/platform"
)

// LoadEnvironment reads and validates the environment manifest at path.
// A missing file is errs.ErrNotFound; malformed JSON, duplicate package
// names or schema violations are errs.ErrParse.
func LoadEnvironment(path string) (Environment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("environment file %s: %w", path, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("reading environment file %s: %w", path, err)
	}
	return ParseEnvironment(path, data)
}

// ParseEnvironment decodes manifest bytes. path is only used in messages.
func ParseEnvironment(path string, data []byte) (Environment, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Environment{}, nil
	}
	if err := checkDuplicateKeys(data); err != nil {
		return nil, fmt.Errorf("parsing environment file %s: %v: %w", path, err, errs.ErrParse)
	}

	result, err := Validate(SchemaEnvironment, data)
	if err != nil {
		return nil, fmt.Errorf("parsing environment file %s: %v: %w", path, err, errs.ErrParse)
	}
	if !result.Valid {
		return nil, fmt.Errorf("invalid environment file %s: %s: %w", path, result.Summary(), errs.ErrParse)
	}

	var env Environment
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parsing environment file %s: %v: %w", path, err, errs.ErrParse)
	}
	if env == nil {
		env = Environment{}
	}
	return env, nil
}

// SaveEnvironment writes env to path with sorted keys, creating the parent
// directory. The file is replaced atomically.
func SaveEnvironment(path string, env Environment) error {
	if env == nil {
		env = Environment{}
	}
	data, err := json.MarshalIndent(env, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding environment: %w", err)
	}
	return WriteFileAtomic(path, append(data, '\n'))
}

// CreateEnvironment writes env to path unless a file already exists there.
// It reports whether a file was created.
func CreateEnvironment(path string, env Environment) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("checking %s: %w", path, err)
	}
	if err := SaveEnvironment(path, env); err != nil {
		return false, err
	}
	return true, nil
}

// WriteFileAtomic writes data to a sibling temp file and renames it over path.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := platform.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting permissions on %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// checkDuplicateKeys rejects a top-level object that names a package twice.
// encoding/json would silently keep the last one.
func checkDuplicateKeys(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("top level must be an object")
	}

	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		if seen[key] {
			return fmt.Errorf("duplicate package %q", key)
		}
		seen[key] = true

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("trailing data after top-level object")
	}
	return nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
