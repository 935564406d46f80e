package emit

import (
	"fmt"
	"io"
	"os"

	"github.com/toejough/go-reorder"
)

// Interfaces - Public

// FileSystem abstracts the filesystem operations the emitter needs, so tests
// can run against an in-memory implementation.
type FileSystem interface {
	WriteFile(name string, data []byte, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
	RemoveAll(path string) error
}

// Types - Public

// OSFileSystem is the FileSystem backed by the real filesystem.
type OSFileSystem struct{}

// Functions - Public

func (OSFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (OSFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (OSFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// Functions - Private

// writeSource reorders a generated file's declarations and writes it.
func writeSource(fileSystem FileSystem, path, code string, out io.Writer) error {
	const generatedFilePermissions = 0o600

	// Reorder declarations according to project conventions
	reordered, err := reorder.Source(code)
	if err != nil {
		// If reordering fails, log but continue with original code
		_, _ = fmt.Fprintf(out, "Warning: failed to reorder %s: %v\n", path, err)

		reordered = code
	}

	err = fileSystem.WriteFile(path, []byte(reordered), generatedFilePermissions)
	if err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(out, "%s written successfully.\n", path)

	return nil
}
