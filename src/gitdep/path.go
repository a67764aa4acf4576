package gitdep

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alfatm/sparse-crates/src/manifest"
)

// resolvePath reads the manifest of a path dependency, following
// workspace-version inheritance and, when needed, searching workspace
// members for the crate.
func resolvePath(src manifest.Path, crate, manifestDir string) Resolution {
	dir := src.Path
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(manifestDir, dir)
	}

	data, err := os.ReadFile(filepath.Join(dir, "Cargo.toml"))
	if err != nil {
		return Resolution{Err: fmt.Errorf("gitdep: path dependency %q: %w", src.Path, err)}
	}
	info, err := manifest.ExtractInfo(data)
	if err != nil {
		return Resolution{Err: err}
	}

	var wsVersion string
	if info.Workspace != nil {
		wsVersion = info.Workspace.Version
	}
	if raw := info.EffectiveVersion(wsVersion); raw != "" {
		return parseResolved(raw, crate)
	}

	if info.Workspace != nil {
		for _, pattern := range info.Workspace.Members {
			for _, memberDir := range memberCandidates(dir, pattern) {
				mdata, merr := os.ReadFile(filepath.Join(memberDir, "Cargo.toml"))
				if merr != nil {
					continue
				}
				minfo, merr := manifest.ExtractInfo(mdata)
				if merr != nil || minfo.PackageName != crate {
					continue
				}
				if raw := minfo.EffectiveVersion(wsVersion); raw != "" {
					return parseResolved(raw, crate)
				}
			}
		}
	}

	return Resolution{Err: fmt.Errorf("%w for crate %q under %s", ErrNoVersion, crate, dir)}
}

// memberCandidates expands one workspace member pattern into candidate
// directories. Only a single "*" is supported: the portion before it is
// listed and every subdirectory substituted for the wildcard. True glob
// semantics are intentionally not implemented.
func memberCandidates(base, pattern string) []string {
	idx := strings.Index(pattern, "*")
	if idx < 0 {
		return []string{filepath.Join(base, pattern)}
	}

	prefix := strings.TrimSuffix(pattern[:idx], "/")
	suffix := strings.TrimPrefix(pattern[idx+1:], "/")

	parent := filepath.Join(base, prefix)
	entries, err := os.ReadDir(parent)
	if err != nil {
		return nil
	}

	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dirs = append(dirs, filepath.Join(parent, e.Name(), suffix))
	}
	return dirs
}
