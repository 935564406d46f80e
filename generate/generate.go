// Package generate ties resolution, extraction, and emission into one run.
package generate

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/tmdgusya/typedmock/descriptor"
	"github.com/tmdgusya/typedmock/emit"
	"github.com/tmdgusya/typedmock/extract"
	"github.com/tmdgusya/typedmock/inventory"
	"github.com/tmdgusya/typedmock/resolve"
)

// Consts.
const defaultOutputDir = "typedmockstubs"

// Types - Public

// Options configures one generation run. Zero values select the fast backend
// and the default output package.
type Options struct {
	// Targets selects classes by qualified name or wildcard pattern.
	Targets []string
	// Excludes removes classes from the selection. Exclusions always win.
	Excludes []string
	// OutputDir is replaced wholesale on every run.
	OutputDir string
	// Backend names the extraction backend: "fast" or "accurate".
	Backend string
	// IncludePrivate extends extraction to unexported members.
	IncludePrivate bool
	// PackageName names the generated package.
	PackageName string
	// Timeout bounds each class's source analysis on the accurate backend.
	Timeout time.Duration
}

// Report summarizes a generation run. A run with per-class failures still
// emits the classes that extracted cleanly.
type Report struct {
	Generated []string
	Files     []string
	Warnings  []resolve.Warning
	Errors    []error
}

// Functions - Public

// Run resolves the targeted classes, extracts their descriptors, and emits
// typed bindings into the output directory. Extraction failures are collected
// in the report rather than aborting the run; only emission failures and an
// unknown backend are fatal.
func Run(
	ctx context.Context,
	opts Options,
	inv *inventory.Inventory,
	fileSystem emit.FileSystem,
	out io.Writer,
) (*Report, error) {
	opts = withDefaults(opts)

	backend, err := extract.ByName(opts.Backend)
	if err != nil {
		return nil, err
	}

	if accurate, ok := backend.(*extract.AccurateBackend); ok && opts.Timeout > 0 {
		accurate.Timeout = opts.Timeout
	}

	entries, warnings := resolve.Resolve(opts.Targets, opts.Excludes, inv, opts.IncludePrivate)

	report := &Report{Warnings: warnings}
	for _, warning := range warnings {
		_, _ = fmt.Fprintf(out, "Warning: %s\n", warning)
	}

	classes := make([]*descriptor.Class, 0, len(entries))

	for _, entry := range entries {
		class, err := backend.Extract(ctx, inv, entry, opts.IncludePrivate)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Errorf("extracting %s: %w", entry.QualifiedName, err))

			continue
		}

		classes = append(classes, class)
		report.Generated = append(report.Generated, class.QualifiedName)
	}

	emitter := emit.NewEmitter(fileSystem, out, opts.PackageName)

	manifest, err := emitter.Emit(opts.OutputDir, classes)
	if err != nil {
		return report, err
	}

	report.Files = manifest.Files

	return report, nil
}

// Functions - Private

func withDefaults(opts Options) Options {
	if opts.OutputDir == "" {
		opts.OutputDir = defaultOutputDir
	}

	if opts.PackageName == "" {
		opts.PackageName = packageNameFor(opts.OutputDir)
	}

	return opts
}

// packageNameFor derives a usable package identifier from the output
// directory's base name.
func packageNameFor(outputDir string) string {
	base := filepath.Base(outputDir)

	var builder strings.Builder

	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			builder.WriteRune(r)
		case r >= '0' && r <= '9' && builder.Len() > 0:
			builder.WriteRune(r)
		}
	}

	if builder.Len() == 0 {
		return defaultOutputDir
	}

	return builder.String()
}
