// Package registry resolves crate registries from configuration and
// fetches per-crate version lists from sparse indexes: remote HTTP,
// local file: mirrors, and cargo's on-disk binary cache.
package registry

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/alfatm/sparse-crates/src/config"
	"github.com/alfatm/sparse-crates/src/logging"
)

// Sentinel errors for the fallback chains and tests.
var (
	ErrNotFound    = errors.New("registry: crate not found")
	ErrNoVersions  = errors.New("registry: no versions found")
	ErrTimeout     = errors.New("registry: request timed out")
	ErrCacheFormat = errors.New("registry: cache format mismatch")
)

// Registry is a materialized crate registry. Constructed on demand from
// configuration, never persisted.
type Registry struct {
	Name     string
	IndexURL *url.URL
	CacheDir string // cargo cache id under ~/.cargo/registry/index, "" if none
	DocsURL  *url.URL
	Token    string
}

// FetchOptions carries the ambient collaborators for a fetch.
type FetchOptions struct {
	Logger    logging.Logger
	UserAgent string
}

func (o FetchOptions) logger() logging.Logger {
	if o.Logger == nil {
		return logging.Nop()
	}
	return o.Logger
}

// Resolve materializes the registry a dependency should be checked
// against: the named registry when a name is given, otherwise the
// configured source replacement, otherwise the default registry.
func Resolve(name string, cfg *config.Config) (Registry, error) {
	if name != "" {
		nr, ok := cfg.LookupRegistry(name)
		if !ok {
			return Registry{}, fmt.Errorf("registry: unknown registry %q", name)
		}
		index, err := parseIndexURL(nr.Name, nr.Index)
		if err != nil {
			return Registry{}, err
		}
		reg := Registry{Name: nr.Name, IndexURL: index, CacheDir: nr.CacheDir, Token: nr.Token}
		if nr.Docs != "" {
			docs, err := url.Parse(nr.Docs)
			if err != nil {
				return Registry{}, fmt.Errorf("registry: registry %q: invalid docs URL %q: %w", nr.Name, nr.Docs, err)
			}
			reg.DocsURL = docs
		}
		return reg, nil
	}

	docs, _ := url.Parse(config.DefaultDocsURL)

	if repl := cfg.Registry.Replacement; repl != nil {
		index, err := parseIndexURL(repl.Name, repl.Index)
		if err != nil {
			return Registry{}, err
		}
		// The mirror substitutes for the default registry; docs stay
		// with the default.
		return Registry{
			Name:     repl.Name,
			IndexURL: index,
			CacheDir: repl.CacheDir,
			DocsURL:  docs,
			Token:    repl.Token,
		}, nil
	}

	index, err := parseIndexURL("default", cfg.Registry.Index)
	if err != nil {
		return Registry{}, err
	}
	return Registry{
		Name:     "crates.io",
		IndexURL: index,
		CacheDir: cfg.Registry.CacheDir,
		DocsURL:  docs,
	}, nil
}

// parseIndexURL validates a registry index URL, naming the registry in
// the failure.
func parseIndexURL(registryName, raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("registry: registry %q: invalid index URL %q: %w", registryName, raw, err)
	}
	switch u.Scheme {
	case "http", "https", "file":
	default:
		return nil, fmt.Errorf("registry: registry %q: invalid index URL %q: unsupported scheme", registryName, raw)
	}
	return u, nil
}
