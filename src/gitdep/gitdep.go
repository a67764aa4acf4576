// Package gitdep resolves the authoritative version of path- and
// git-sourced dependencies. Git resolution tries the local git toolchain
// first (remote archive extraction) and falls back to raw-file HTTP
// against known and custom hosts; both strategies understand workspace
// member layouts.
package gitdep

import (
	"context"
	"errors"
	"fmt"
	"strings"

	masterminds "github.com/Masterminds/semver/v3"

	"github.com/alfatm/sparse-crates/src/config"
	"github.com/alfatm/sparse-crates/src/logging"
	"github.com/alfatm/sparse-crates/src/manifest"
)

var (
	// ErrToolsUnavailable means the git/sh/tar toolchain is not present.
	ErrToolsUnavailable = errors.New("gitdep: required tools unavailable")
	// ErrNoVersion means the source was reachable but declared no
	// version for the requested crate.
	ErrNoVersion = errors.New("gitdep: no version found")
)

// Options carries the ambient collaborators for source resolution.
type Options struct {
	Logger    logging.Logger
	UserAgent string
	Hosts     []config.GitHost // custom raw-file host rules
}

func (o Options) logger() logging.Logger {
	if o.Logger == nil {
		return logging.Nop()
	}
	return o.Logger
}

// Resolution is the outcome of resolving one path/git dependency.
// Not cached.
type Resolution struct {
	Version *masterminds.Version
	Err     error
}

// ResolveSourceVersion resolves the declared version of a dependency at
// its source. Registry sources resolve elsewhere and return an empty
// resolution immediately.
func ResolveSourceVersion(ctx context.Context, src manifest.Source, crate, manifestDir string, opts Options) Resolution {
	switch s := src.(type) {
	case manifest.Path:
		return resolvePath(s, crate, manifestDir)
	case manifest.Git:
		return resolveGit(ctx, s, crate, opts)
	default:
		return Resolution{}
	}
}

// gitStrategy is one way of resolving a crate's version from a
// repository at a ref. Strategies run in order; the first resolved
// version wins.
type gitStrategy func(ctx context.Context, repoURL, ref, crate string, opts Options) Resolution

// gitStrategies is the default chain: local git toolchain first,
// raw-file HTTP second.
var gitStrategies = []gitStrategy{resolveGitCLI, resolveGitHTTP}

func resolveGit(ctx context.Context, src manifest.Git, crate string, opts Options) Resolution {
	return resolveGitWith(ctx, gitStrategies, src, crate, opts)
}

// resolveGitWith runs the strategy chain, folding failures so the most
// informative error survives when every strategy comes up empty.
func resolveGitWith(ctx context.Context, strategies []gitStrategy, src manifest.Git, crate string, opts Options) Resolution {
	ref := targetRef(src)

	var err error
	for _, strat := range strategies {
		res := strat(ctx, src.URL, ref, crate, opts)
		if res.Version != nil {
			return res
		}
		err = combineErrors(err, res.Err)
	}
	return Resolution{Err: err}
}

// targetRef picks the ref to resolve: rev, else tag, else branch, else
// HEAD.
func targetRef(src manifest.Git) string {
	switch {
	case src.Rev != "":
		return src.Rev
	case src.Tag != "":
		return src.Tag
	case src.Branch != "":
		return src.Branch
	default:
		return "HEAD"
	}
}

// combineErrors folds two strategy failures, keeping the more
// informative one. A missing-toolchain diagnostic loses to whatever the
// next strategy actually saw.
func combineErrors(prev, next error) error {
	switch {
	case prev == nil:
		return next
	case next == nil:
		return prev
	case errors.Is(prev, ErrToolsUnavailable):
		return fmt.Errorf("%w (archive strategy skipped: %v)", next, prev)
	default:
		return fmt.Errorf("%w (raw-file fallback: %v)", prev, next)
	}
}

// fetchFunc retrieves one file from the repository at the target ref,
// addressed by repo-relative path. The CLI and HTTP strategies supply
// their own implementations and share the resolution walk below.
type fetchFunc func(path string) ([]byte, error)

// resolveViaFetch implements the common walk: crate-scoped manifest
// first, repository root second, then workspace members with the crate
// name substituted into each single-wildcard member pattern.
func resolveViaFetch(fetch fetchFunc, crate string, log logging.Logger) Resolution {
	data, err := fetch(crate + "/Cargo.toml")
	if err != nil {
		log.Debug("crate-scoped manifest unavailable", "crate", crate, "err", err)
		var rootErr error
		data, rootErr = fetch("Cargo.toml")
		if rootErr != nil {
			return Resolution{Err: rootErr}
		}
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
			member := strings.Replace(pattern, "*", crate, 1)
			mdata, merr := fetch(member + "/Cargo.toml")
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

	return Resolution{Err: fmt.Errorf("%w for crate %q", ErrNoVersion, crate)}
}

// parseResolved turns a manifest version string into a Resolution.
func parseResolved(raw, crate string) Resolution {
	v, err := masterminds.NewVersion(raw)
	if err != nil {
		return Resolution{Err: fmt.Errorf("gitdep: crate %q declares unparsable version %q: %w", crate, raw, err)}
	}
	return Resolution{Version: v}
}
