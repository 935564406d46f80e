package extract

import (
	"errors"
	"fmt"
	"go/build"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
)

// Types - Public

// SourceLoader loads a package's source files from disk for the accurate
// backend. Parsing uses DST with no type checking, which is fast enough to
// stay inside the backend timeout for typical packages.
type SourceLoader struct{}

// Functions - Public

// NewSourceLoader creates a loader that reads packages from the local build
// context.
func NewSourceLoader() *SourceLoader {
	return &SourceLoader{}
}

// Load resolves an import path and parses its non-test .go files.
func (l *SourceLoader) Load(pkgPath string) ([]*dst.File, error) {
	dir, err := resolvePackageDir(pkgPath)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	goFiles := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}

		goFiles = append(goFiles, filepath.Join(dir, name))
	}

	if len(goFiles) == 0 {
		return nil, fmt.Errorf("%w: no .go files in %s", errNoSourceFound, dir)
	}

	dec := decorator.NewDecorator(token.NewFileSet())
	files := make([]*dst.File, 0, len(goFiles))

	for _, goFile := range goFiles {
		dstFile, err := dec.ParseFile(goFile, nil, 0)
		if err != nil {
			// A skipped file could hide members declared in it, so a parse
			// failure fails the whole load.
			return nil, fmt.Errorf("failed to parse %s: %w", goFile, err)
		}

		files = append(files, dstFile)
	}

	return files, nil
}

// Functions - Private

// resolvePackageDir maps an import path to a source directory via the build
// context.
func resolvePackageDir(pkgPath string) (string, error) {
	if pkgPath == "." {
		dir, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}

		return dir, nil
	}

	srcDir, _ := os.Getwd()

	pkg, err := build.Import(pkgPath, srcDir, build.FindOnly)
	if err != nil {
		return "", fmt.Errorf("failed to find package %q: %w", pkgPath, err)
	}

	return pkg.Dir, nil
}

// Vars.
var errNoSourceFound = errors.New("no source found")
