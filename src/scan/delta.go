package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/alfatm/sparse-crates/src/logging"
)

// Delta narrows a manifest list to files changed relative to a baseline.
type Delta struct {
	RootDir      string
	TargetBranch string
	Log          logging.Logger
}

func (d *Delta) log() logging.Logger {
	if d.Log == nil {
		return logging.Nop()
	}
	return d.Log
}

// Filter returns the manifests that changed relative to the baseline:
// uncommitted worktree changes plus commits not on the target branch.
// Outside a git repository, or on any diff failure, it returns the full
// list so a check never silently skips work.
func (d *Delta) Filter(paths []string) []string {
	repo, err := git.PlainOpen(d.RootDir)
	if err != nil {
		d.log().Debug("not a git repository, checking all manifests", "root", d.RootDir)
		return paths
	}

	changed, err := d.changedFiles(repo)
	if err != nil || changed == nil {
		d.log().Debug("delta detection unavailable, checking all manifests", "err", err)
		return paths
	}

	var kept []string
	for _, p := range paths {
		rel, rerr := filepath.Rel(d.RootDir, p)
		if rerr != nil {
			kept = append(kept, p)
			continue
		}
		if changed[filepath.ToSlash(rel)] {
			kept = append(kept, p)
		}
	}
	return kept
}

// changedFiles merges worktree and branch diffs into one changed set.
func (d *Delta) changedFiles(repo *git.Repository) (map[string]bool, error) {
	changed := make(map[string]bool)

	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	status, err := wt.Status()
	if err != nil {
		return nil, err
	}
	for path, s := range status {
		if s.Worktree == git.Unmodified && s.Staging == git.Unmodified {
			continue
		}
		changed[path] = true
	}

	branchChanged, err := d.branchChanges(repo)
	if err != nil {
		return nil, err
	}
	for path := range branchChanged {
		changed[path] = true
	}
	return changed, nil
}

// branchChanges diffs HEAD against the target branch. When HEAD is the
// target (push to the default branch), it diffs against the parent so
// the latest commit still gets checked.
func (d *Delta) branchChanges(repo *git.Repository) (map[string]bool, error) {
	branch := d.targetBranch(repo)
	if branch == "" {
		return nil, nil
	}

	headRef, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("scan: getting HEAD: %w", err)
	}
	headCommit, err := repo.CommitObject(headRef.Hash())
	if err != nil {
		return nil, fmt.Errorf("scan: getting HEAD commit: %w", err)
	}

	targetRef, err := repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		targetRef, err = repo.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
		if err != nil {
			return nil, nil // baseline not found, skip branch diff
		}
	}
	targetCommit, err := repo.CommitObject(targetRef.Hash())
	if err != nil {
		return nil, fmt.Errorf("scan: getting target commit: %w", err)
	}

	if headCommit.Hash == targetCommit.Hash {
		if headCommit.NumParents() == 0 {
			return nil, nil
		}
		parent, perr := headCommit.Parent(0)
		if perr != nil {
			return nil, nil
		}
		targetCommit = parent
	}

	headTree, err := headCommit.Tree()
	if err != nil {
		return nil, err
	}
	targetTree, err := targetCommit.Tree()
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTreeWithOptions(context.Background(), targetTree, headTree, &object.DiffTreeOptions{})
	if err != nil {
		return nil, fmt.Errorf("scan: diffing trees: %w", err)
	}

	changed := make(map[string]bool)
	for _, change := range changes {
		if name := changeName(change); name != "" {
			changed[name] = true
		}
	}
	return changed, nil
}

// targetBranch resolves the baseline: explicit config, common CI env
// vars, the remote default branch, then "main".
func (d *Delta) targetBranch(repo *git.Repository) string {
	if d.TargetBranch != "" {
		return d.TargetBranch
	}
	for _, v := range []string{
		"CI_MERGE_REQUEST_TARGET_BRANCH_NAME", // GitLab CI
		"GITHUB_BASE_REF",                     // GitHub Actions
		"CHANGE_TARGET",                       // Jenkins
	} {
		if branch := os.Getenv(v); branch != "" {
			return branch
		}
	}
	if branch := detectDefaultBranch(repo); branch != "" {
		return branch
	}
	return "main"
}

// detectDefaultBranch reads the symbolic ref for origin/HEAD.
func detectDefaultBranch(repo *git.Repository) string {
	ref, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", "HEAD"), false)
	if err != nil {
		return ""
	}
	target := ref.Target().String()
	const prefix = "refs/remotes/origin/"
	if strings.HasPrefix(target, prefix) {
		return strings.TrimPrefix(target, prefix)
	}
	return ""
}

func changeName(change *object.Change) string {
	if change.To.Name != "" {
		return change.To.Name
	}
	return change.From.Name
}
