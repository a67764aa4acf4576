package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	masterminds "github.com/Masterminds/semver/v3"

	"github.com/alfatm/sparse-crates/src/logging"
)

// indexRecord is one newline-delimited JSON line of a sparse index file.
// Yanked is a pointer so a missing field is distinguishable from false.
type indexRecord struct {
	Name   string `json:"name"`
	Vers   string `json:"vers"`
	Yanked *bool  `json:"yanked"`
}

// FetchVersions returns all known versions of a crate, sorted descending
// so index 0 is the overall latest (possibly a prerelease). Resolution
// order: process-wide cache, cargo's local binary cache (when enabled),
// then the registry index itself over file: or HTTP.
func FetchVersions(ctx context.Context, name string, reg Registry, useLocalCache bool, opts FetchOptions) ([]*masterminds.Version, error) {
	log := opts.logger()

	if versions, ok := cache.get(name); ok {
		return versions, nil
	}

	if useLocalCache && reg.CacheDir != "" {
		versions, err := readLocalCache(reg.CacheDir, name, log)
		if err == nil {
			cache.add(name, versions)
			return versions, nil
		}
		// Cache absence or mismatch is not an error; go to the index.
		log.Debug("local cache miss", "crate", name, "err", err)
	}

	var (
		data []byte
		err  error
	)
	if reg.IndexURL.Scheme == "file" {
		data, err = readFileIndex(reg.IndexURL, name)
	} else {
		fetchURL := reg.IndexURL.JoinPath(shardedIndexPath(name)...).String()
		data, err = fetchIndexBytes(ctx, fetchURL, reg.Token, opts.UserAgent)
	}
	if err != nil {
		return nil, err
	}

	versions, err := parseIndexData(data, name, log)
	if err != nil {
		return nil, err
	}
	cache.add(name, versions)
	return versions, nil
}

// shardedIndexPath computes the index path segments for a crate name:
// 1-char and 2-char names live under "1/" and "2/", 3-char names under
// "3/<first char>/", everything longer under "<2 chars>/<2 chars>/".
func shardedIndexPath(name string) []string {
	switch len(name) {
	case 0:
		return nil
	case 1:
		return []string{"1", name}
	case 2:
		return []string{"2", name}
	case 3:
		return []string{"3", name[:1], name}
	default:
		return []string{name[:2], name[2:4], name}
	}
}

// readFileIndex reads the sharded index file from a file: URL mirror.
func readFileIndex(indexURL *url.URL, name string) ([]byte, error) {
	base := indexURL.Path
	if base == "" {
		base = indexURL.Opaque
	}
	p := filepath.Join(base, filepath.Join(shardedIndexPath(name)...))
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s: %s", ErrNotFound, name, p)
		}
		return nil, fmt.Errorf("registry: read %s: %w", p, err)
	}
	return data, nil
}

// parseIndexData filters newline-delimited JSON records and returns the
// surviving versions sorted descending. Malformed records are dropped
// with a warning; zero survivors is a hard failure.
func parseIndexData(data []byte, name string, log logging.Logger) ([]*masterminds.Version, error) {
	var versions []*masterminds.Version
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if v, ok := parseIndexRecord([]byte(line), name, log); ok {
			versions = append(versions, v)
		}
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("%w for crate %q", ErrNoVersions, name)
	}
	sortDescending(versions)
	return versions, nil
}

// parseIndexRecord validates one record. Rejections (bad JSON, name
// mismatch, missing yanked field, unparsable version) are logged and
// skipped; yanked versions are dropped silently.
func parseIndexRecord(line []byte, name string, log logging.Logger) (*masterminds.Version, bool) {
	var rec indexRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		log.Warn("malformed index record", "crate", name, "err", err)
		return nil, false
	}
	if rec.Name != name {
		log.Warn("index record name mismatch", "crate", name, "got", rec.Name)
		return nil, false
	}
	if rec.Yanked == nil {
		log.Warn("index record missing yanked field", "crate", name, "vers", rec.Vers)
		return nil, false
	}
	if *rec.Yanked {
		return nil, false
	}
	v, err := masterminds.NewVersion(rec.Vers)
	if err != nil {
		log.Warn("unparsable version in index", "crate", name, "vers", rec.Vers)
		return nil, false
	}
	return v, true
}

// sortDescending orders versions newest-first, breaking semver ties on
// build metadata so the order is total.
func sortDescending(versions []*masterminds.Version) {
	sort.SliceStable(versions, func(i, j int) bool {
		if !versions[i].Equal(versions[j]) {
			return versions[j].LessThan(versions[i])
		}
		return versions[j].Metadata() < versions[i].Metadata()
	})
}

// LatestStable returns the first entry of a descending list with no
// prerelease component, nil when every version is a prerelease.
func LatestStable(versions []*masterminds.Version) *masterminds.Version {
	for _, v := range versions {
		if v.Prerelease() == "" {
			return v
		}
	}
	return nil
}

// CrateDocsURL returns the documentation page for a crate on this
// registry, "" when the registry declares no docs base.
func (r Registry) CrateDocsURL(name string) string {
	if r.DocsURL == nil {
		return ""
	}
	return r.DocsURL.JoinPath(name).String()
}
