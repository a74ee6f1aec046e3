package scaffold

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/utsdab/usr-sub005/internal/errs"
	"github.com/utsdab/usr-sub005/internal/manifest"
	"github.com/utsdab/usr-sub005/internal/registry"
)

//go:embed all:scaffolds
var scaffoldFS embed.FS

// DefaultSet is the template set used by createPackage.
const DefaultSet = "package"

// modulePlaceholder in a template path is replaced by ScaffoldData.ModuleName.
const modulePlaceholder = "__module__"

// ScaffoldData holds all template variables available to scaffold templates.
type ScaffoldData struct {
	Name        string // e.g., "zoo_rigging"
	DisplayName string // e.g., "Zoo Rigging"
	Description string
	Author      string
	AuthorEmail string
	Version     string // Semver, e.g., "0.1.0"
	ModuleName  string // Derived: python-safe form of Name
	Year        int
}

// Result holds the outcome of a scaffold generation.
type Result struct {
	OutputDir string
	Files     []string
	Warnings  []string
}

// NewScaffoldData creates a ScaffoldData with derived fields populated.
func NewScaffoldData(name string) *ScaffoldData {
	return &ScaffoldData{
		Name:        name,
		DisplayName: displayName(name),
		Description: fmt.Sprintf("Zoo package: %s", name),
		Version:     "0.1.0",
		ModuleName:  strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(name),
		Year:        time.Now().Year(),
	}
}

// displayName turns "zoo_rig-tools" into "Zoo Rig Tools".
func displayName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' || r == '.' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

var funcs = template.FuncMap{
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
}

// Generate writes template set setName into outputDir. outputDir must be
// empty or absent.
func Generate(setName string, data *ScaffoldData, outputDir string) (*Result, error) {
	if data.Name == "" || strings.ContainsAny(data.Name, `/\`) {
		return nil, fmt.Errorf("invalid package name %q: %w", data.Name, errs.ErrArgument)
	}
	templatesDir := path.Join("scaffolds", setName)

	// Verify template set exists in embedded FS.
	if _, err := fs.ReadDir(scaffoldFS, templatesDir); err != nil {
		return nil, fmt.Errorf("template set %q not found: %w", setName, err)
	}

	// Check for existing files to prevent accidental overwrites.
	existingEntries, err := os.ReadDir(outputDir)
	if err == nil && len(existingEntries) > 0 {
		return nil, fmt.Errorf("output directory %s is not empty; remove existing files first: %w", outputDir, errs.ErrAlreadyExists)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	result := &Result{OutputDir: outputDir}

	err = fs.WalkDir(scaffoldFS, templatesDir, func(tmplPath string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel := strings.TrimPrefix(tmplPath, templatesDir+"/")
		outName := strings.ReplaceAll(strings.TrimSuffix(rel, ".tmpl"), modulePlaceholder, data.ModuleName)

		tmplBytes, err := fs.ReadFile(scaffoldFS, tmplPath)
		if err != nil {
			return fmt.Errorf("reading template %s: %w", tmplPath, err)
		}
		tmpl, err := template.New(d.Name()).Funcs(funcs).Parse(string(tmplBytes))
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", rel, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return fmt.Errorf("executing template %s: %w", rel, err)
		}

		outPath := filepath.Join(outputDir, filepath.FromSlash(outName))
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(outPath), err)
		}
		if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
		result.Files = append(result.Files, outName)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Validate the generated package file against JSON Schema.
	packageFile := filepath.Join(outputDir, registry.FileName)
	if _, err := os.Stat(packageFile); err == nil {
		valResult, valErr := manifest.ValidateFile(manifest.SchemaPackage, packageFile)
		if valErr != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Could not validate package file: %v", valErr))
		} else if !valResult.Valid {
			for _, issue := range valResult.Issues {
				msg := issue.Message
				if issue.Path != "" {
					msg = issue.Path + ": " + msg
				}
				result.Warnings = append(result.Warnings, msg)
			}
		}
	}

	return result, nil
}
