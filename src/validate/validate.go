// Package validate checks every declared dependency of a manifest
// against its authoritative source and classifies staleness.
package validate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	masterminds "github.com/Masterminds/semver/v3"

	"github.com/alfatm/sparse-crates/src/config"
	"github.com/alfatm/sparse-crates/src/gitdep"
	"github.com/alfatm/sparse-crates/src/lockfile"
	"github.com/alfatm/sparse-crates/src/logging"
	"github.com/alfatm/sparse-crates/src/manifest"
	"github.com/alfatm/sparse-crates/src/registry"
	"github.com/alfatm/sparse-crates/src/vrange"
)

// Options carries the ambient collaborators for a validation run.
type Options struct {
	Logger logging.Logger
}

func (o Options) logger() logging.Logger {
	if o.Logger == nil {
		return logging.Nop()
	}
	return o.Logger
}

// Result is the outcome for a single dependency. Never mutated after
// construction. Resolved is only set when it genuinely satisfies the
// declared range; Status is StatusError whenever no authoritative latest
// version could be determined.
type Result struct {
	Dep          manifest.Dependency
	Resolved     *masterminds.Version // highest version satisfying the range
	LatestStable *masterminds.Version
	Latest       *masterminds.Version // possibly a prerelease
	Locked       string               // from the lockfile, "" if absent
	Docs         string               // registry docs page for the crate, "" when the registry has none
	Status       vrange.Status
	Err          error
}

// ManifestResult aggregates one manifest's validation.
type ManifestResult struct {
	FilePath     string
	Dependencies []Result
	ParseError   *manifest.ParseError // structural failure, aborts validation
	Err          error                // top-level read failure (batch runs)
}

// ValidateManifest is the single entry point: it parses the manifest and
// validates every dependency concurrently. Per-dependency failures are
// captured in each Result; only a structural parse failure aborts the
// manifest, surfaced distinctly as ParseError.
func ValidateManifest(ctx context.Context, content []byte, filePath string, cfg *config.Config, lock lockfile.Lockfile, opts Options) *ManifestResult {
	deps, perr := manifest.Parse(content)
	if perr != nil {
		return &ManifestResult{FilePath: filePath, ParseError: perr}
	}

	manifestDir := filepath.Dir(filePath)
	results := make([]Result, len(deps))

	var wg sync.WaitGroup
	for i, dep := range deps {
		if dep.Disabled {
			results[i] = Result{Dep: dep, Status: vrange.StatusLatest, Locked: lock.Version(dep.Name)}
			continue
		}
		wg.Add(1)
		go func(i int, dep manifest.Dependency) {
			defer wg.Done()
			results[i] = ValidateDependency(ctx, dep, manifestDir, cfg, lock, opts)
		}(i, dep)
	}
	wg.Wait()

	return &ManifestResult{FilePath: filePath, Dependencies: results}
}

// ValidateDependency validates one dependency against its source.
func ValidateDependency(ctx context.Context, dep manifest.Dependency, manifestDir string, cfg *config.Config, lock lockfile.Lockfile, opts Options) Result {
	res := Result{Dep: dep, Locked: lock.Version(dep.Name)}

	switch src := dep.Source.(type) {
	case manifest.Registry:
		validateRegistry(ctx, &res, src, cfg, opts)
	default:
		validateSource(ctx, &res, dep.Source, manifestDir, cfg, opts)
	}
	return res
}

// validateRegistry resolves the registry and compares the declared range
// against the fetched version list.
func validateRegistry(ctx context.Context, res *Result, src manifest.Registry, cfg *config.Config, opts Options) {
	dep := res.Dep

	reg, err := registry.Resolve(src.Name, cfg)
	if err != nil {
		res.Status, res.Err = vrange.StatusError, err
		return
	}
	res.Docs = reg.CrateDocsURL(dep.Name)

	versions, err := registry.FetchVersions(ctx, dep.Name, reg, cfg.Registry.UseCache, registry.FetchOptions{
		Logger:    opts.Logger,
		UserAgent: cfg.UserAgent,
	})
	if err != nil {
		res.Status, res.Err = vrange.StatusError, err
		return
	}

	res.Latest = versions[0]
	res.LatestStable = registry.LatestStable(versions)
	if dep.Range != nil {
		for _, v := range versions {
			if dep.Range.Satisfied(v) {
				res.Resolved = v
				break
			}
		}
	}

	if dep.Range == nil {
		res.Status = vrange.StatusError
		res.Err = fmt.Errorf("validate: %s: no version requirement declared", dep.Name)
		return
	}
	res.Status, res.Err = computeStatus(dep.Range, res.LatestStable, res.Latest, dep.Req)
}

// validateSource resolves a path/git dependency's version at its source.
// A resolved version that matches the declared requirement (or has none)
// is reported as latest; anything else is an error.
func validateSource(ctx context.Context, res *Result, src manifest.Source, manifestDir string, cfg *config.Config, opts Options) {
	dep := res.Dep

	sr := gitdep.ResolveSourceVersion(ctx, src, dep.Name, manifestDir, gitdep.Options{
		Logger:    opts.Logger,
		UserAgent: cfg.UserAgent,
		Hosts:     cfg.Git.Hosts,
	})
	if sr.Version == nil {
		res.Status = vrange.StatusError
		res.Err = sr.Err
		if res.Err == nil {
			res.Err = fmt.Errorf("validate: %s: source version not found", dep.Name)
		}
		return
	}

	res.Latest = sr.Version
	res.LatestStable = sr.Version

	if dep.Range == nil {
		res.Resolved = sr.Version
		res.Status = vrange.StatusLatest
		return
	}
	if dep.Range.Satisfied(sr.Version) {
		res.Resolved = sr.Version
		res.Status = vrange.StatusLatest
		return
	}
	res.Status = vrange.StatusError
	res.Err = fmt.Errorf("validate: %s: source version %s does not match requirement %q", dep.Name, sr.Version, dep.Req)
}

// computeStatus classifies a registry dependency. Exact requirements
// compare their pinned version directly (equality required, not range
// satisfaction); ranges are satisfied-or-measured against the latest
// stable, falling back to the overall latest when nothing stable exists.
func computeStatus(r *vrange.Range, latestStable, latest *masterminds.Version, raw string) (vrange.Status, error) {
	if latest == nil {
		return vrange.StatusError, errors.New("validate: no latest version available")
	}
	target := latestStable
	if target == nil {
		target = latest
	}

	if vrange.IsExactRequirement(raw) {
		mb := r.MinimumBound()
		if mb == nil {
			return vrange.StatusError, fmt.Errorf("validate: cannot determine lower bound of %q", raw)
		}
		return vrange.SeverityOfGap(mb, target), nil
	}

	if r.Satisfied(target) {
		return vrange.StatusLatest, nil
	}
	mb := r.MinimumBound()
	if mb == nil {
		return vrange.StatusError, fmt.Errorf("validate: cannot determine lower bound of %q", raw)
	}
	return vrange.SeverityOfGap(mb, target), nil
}

// ClearCaches empties the versions cache and resets the CLI-tools
// probe, for callers that want a cold rerun.
func ClearCaches() {
	registry.ClearCache()
	gitdep.ResetToolsProbe()
}
