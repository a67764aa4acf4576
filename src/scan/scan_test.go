package scan

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[package]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestManifests(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Cargo.toml"))
	touch(t, filepath.Join(root, "crates", "a", "Cargo.toml"))
	touch(t, filepath.Join(root, "crates", "a", "src", "lib.rs"))
	touch(t, filepath.Join(root, "target", "debug", "Cargo.toml"))
	touch(t, filepath.Join(root, "node_modules", "pkg", "Cargo.toml"))
	touch(t, filepath.Join(root, ".git", "Cargo.toml"))

	paths, err := Manifests(root)
	if err != nil {
		t.Fatalf("Manifests: %v", err)
	}

	want := map[string]bool{
		filepath.Join(root, "Cargo.toml"):                true,
		filepath.Join(root, "crates", "a", "Cargo.toml"): true,
	}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v", paths)
	}
	for _, p := range paths {
		if !want[p] {
			t.Errorf("unexpected manifest %s", p)
		}
	}
}

func TestManifestsEmptyTree(t *testing.T) {
	paths, err := Manifests(t.TempDir())
	if err != nil {
		t.Fatalf("Manifests: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("paths = %v", paths)
	}
}

func TestDeltaFilterOutsideRepo(t *testing.T) {
	root := t.TempDir()
	all := []string{
		filepath.Join(root, "Cargo.toml"),
		filepath.Join(root, "crates", "a", "Cargo.toml"),
	}
	d := &Delta{RootDir: root}
	got := d.Filter(all)
	if len(got) != len(all) {
		t.Errorf("outside a repository the full list must pass through: %v", got)
	}
}
