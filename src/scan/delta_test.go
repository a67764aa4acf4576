package scan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func initRepo(t *testing.T, root string) (*git.Repository, *git.Worktree) {
	t.Helper()
	repo, err := git.PlainInit(root, false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	return repo, wt
}

func commitFile(t *testing.T, root string, wt *git.Worktree, rel, content string) {
	t.Helper()
	p := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add(rel); err != nil {
		t.Fatalf("add %s: %v", rel, err)
	}
	_, err := wt.Commit("add "+rel, &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("commit %s: %v", rel, err)
	}
}

func TestDeltaFilterWorktreeChanges(t *testing.T) {
	root := t.TempDir()
	_, wt := initRepo(t, root)

	commitFile(t, root, wt, "a/Cargo.toml", "[package]\nname = \"a\"\n")
	commitFile(t, root, wt, "b/Cargo.toml", "[package]\nname = \"b\"\n")

	// Modify only a's manifest, uncommitted.
	if err := os.WriteFile(filepath.Join(root, "a", "Cargo.toml"),
		[]byte("[package]\nname = \"a\"\nversion = \"0.2.0\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	all := []string{
		filepath.Join(root, "a", "Cargo.toml"),
		filepath.Join(root, "b", "Cargo.toml"),
	}
	// HEAD is the baseline's tip here, so the branch diff falls back to
	// the parent commit; b's manifest came from that commit and stays in.
	d := &Delta{RootDir: root, TargetBranch: "master"}
	got := d.Filter(all)

	seen := map[string]bool{}
	for _, p := range got {
		seen[p] = true
	}
	if !seen[all[0]] {
		t.Errorf("uncommitted change to a/Cargo.toml must be kept, got %v", got)
	}
	if !seen[all[1]] {
		t.Errorf("b/Cargo.toml is in the tip commit diff, got %v", got)
	}
}

func TestDeltaFilterNoBaseline(t *testing.T) {
	root := t.TempDir()
	_, wt := initRepo(t, root)
	commitFile(t, root, wt, "a/Cargo.toml", "[package]\nname = \"a\"\n")

	// A branch that doesn't exist: the worktree diff still applies, and
	// with a clean tree nothing survives the filter.
	d := &Delta{RootDir: root, TargetBranch: "no-such-branch"}
	got := d.Filter([]string{filepath.Join(root, "a", "Cargo.toml")})
	if len(got) != 0 {
		t.Errorf("clean worktree with no baseline should keep nothing, got %v", got)
	}
}
