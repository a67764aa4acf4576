// Package lockfile reads Cargo.lock into a name→version lookup.
package lockfile

import (
	"fmt"
	"os"

	masterminds "github.com/Masterminds/semver/v3"
	toml "github.com/pelletier/go-toml/v2"
)

// Lockfile maps crate names to their pinned version string. The zero
// value is a valid empty lookup.
type Lockfile map[string]string

// Parse decodes Cargo.lock content. When the lock holds several versions
// of the same crate the highest one wins.
func Parse(content []byte) (Lockfile, error) {
	var doc struct {
		Package []struct {
			Name    string `toml:"name"`
			Version string `toml:"version"`
		} `toml:"package"`
	}
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("lockfile: parse: %w", err)
	}

	lock := make(Lockfile, len(doc.Package))
	for _, pkg := range doc.Package {
		if pkg.Name == "" || pkg.Version == "" {
			continue
		}
		prev, ok := lock[pkg.Name]
		if !ok {
			lock[pkg.Name] = pkg.Version
			continue
		}
		pv, perr := masterminds.NewVersion(prev)
		nv, nerr := masterminds.NewVersion(pkg.Version)
		if perr == nil && nerr == nil && nv.GreaterThan(pv) {
			lock[pkg.Name] = pkg.Version
		}
	}
	return lock, nil
}

// Load reads a lockfile from disk. A missing or unreadable file yields an
// empty lookup, never an error.
func Load(path string) Lockfile {
	data, err := os.ReadFile(path)
	if err != nil {
		return Lockfile{}
	}
	lock, err := Parse(data)
	if err != nil {
		return Lockfile{}
	}
	return lock
}

// Version returns the locked version for a crate, "" when absent.
func (l Lockfile) Version(name string) string {
	if l == nil {
		return ""
	}
	return l[name]
}
