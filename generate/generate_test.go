package generate_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/tmdgusya/typedmock/generate"
	"github.com/tmdgusya/typedmock/inventory"
)

type Profile struct {
	Email string
}

type AccountService struct {
	Profile Profile
	Status  string
}

func (s *AccountService) GetUser(id int) (string, error) { return "", nil }

func (s *AccountService) AsyncGetUser(ctx context.Context, id int) (string, error) {
	return "", nil
}

type memFS struct {
	files map[string][]byte
}

func newMemFS() *memFS {
	return &memFS{files: make(map[string][]byte)}
}

func (m *memFS) WriteFile(name string, data []byte, _ os.FileMode) error {
	m.files[name] = append([]byte(nil), data...)

	return nil
}

func (m *memFS) MkdirAll(string, os.FileMode) error { return nil }

func (m *memFS) RemoveAll(path string) error {
	for name := range m.files {
		if strings.HasPrefix(name, path+"/") || name == path {
			delete(m.files, name)
		}
	}

	return nil
}

func testInventory(t *testing.T) (*inventory.Inventory, string) {
	t.Helper()

	inv := inventory.New()

	for _, sample := range []any{Profile{}, AccountService{}} {
		if _, err := inv.Register(sample); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	return inv, reflect.TypeOf(Profile{}).PkgPath()
}

func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	inv, pkgPath := testInventory(t)
	fs := newMemFS()

	report, err := generate.Run(
		t.Context(),
		generate.Options{
			Targets:   []string{pkgPath + ".*"},
			OutputDir: "stubs",
		},
		inv,
		fs,
		io.Discard,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Errors) != 0 {
		t.Fatalf("unexpected extraction errors: %v", report.Errors)
	}

	want := []string{pkgPath + ".AccountService", pkgPath + ".Profile"}
	if !reflect.DeepEqual(report.Generated, want) {
		t.Errorf("expected %v, got %v", want, report.Generated)
	}

	source := string(fs.files["stubs/account_service.go"])

	for _, fragment := range []string{
		"func NewAccountServiceMock",
		`return m.CompositeProxy.Method("GetUser")`,
		`return m.CompositeProxy.Async("AsyncGetUser")`,
		`return m.CompositeProxy.Attr("Profile")`,
		`return m.CompositeProxy.Property("Status")`,
	} {
		if !strings.Contains(source, fragment) {
			t.Errorf("expected the binding to contain %q\n%s", fragment, source)
		}
	}

	if _, ok := fs.files["stubs/manifest.go"]; !ok {
		t.Errorf("expected a manifest, have files %v", report.Files)
	}
}

func TestRun_ExclusionAndWarning(t *testing.T) {
	t.Parallel()

	inv, pkgPath := testInventory(t)
	fs := newMemFS()

	var out bytes.Buffer

	report, err := generate.Run(
		t.Context(),
		generate.Options{
			Targets:   []string{pkgPath + ".*", "example.com/nothing.*"},
			Excludes:  []string{pkgPath + ".Profile"},
			OutputDir: "stubs",
		},
		inv,
		fs,
		&out,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Generated) != 1 || report.Generated[0] != pkgPath+".AccountService" {
		t.Errorf("expected only AccountService, got %v", report.Generated)
	}

	if len(report.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", report.Warnings)
	}

	if !strings.Contains(out.String(), "matched no classes") {
		t.Errorf("expected the warning on the progress stream, got %q", out.String())
	}
}

func TestRun_DefaultsOutputLocation(t *testing.T) {
	t.Parallel()

	inv, pkgPath := testInventory(t)
	fs := newMemFS()

	_, err := generate.Run(
		t.Context(),
		generate.Options{Targets: []string{pkgPath + ".Profile"}},
		inv,
		fs,
		io.Discard,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := fs.files["typedmockstubs/profile.go"]; !ok {
		t.Errorf("expected output under the default directory, have %v", fileNames(fs))
	}
}

func TestRun_UnknownBackend(t *testing.T) {
	t.Parallel()

	inv, pkgPath := testInventory(t)

	_, err := generate.Run(
		t.Context(),
		generate.Options{Targets: []string{pkgPath + ".*"}, Backend: "psychic"},
		inv,
		newMemFS(),
		io.Discard,
	)
	if err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}

func fileNames(m *memFS) []string {
	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}

	return names
}
