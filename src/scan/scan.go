// Package scan discovers Cargo manifests in a directory tree and,
// inside a git repository, narrows a run to the manifests that actually
// changed relative to a baseline branch.
package scan

import (
	"io/fs"
	"path/filepath"
)

// skipDirs are directory names never descended into.
var skipDirs = map[string]bool{
	".git":         true,
	"target":       true,
	"node_modules": true,
	".cargo":       true,
}

// Manifests walks root and returns every Cargo.toml found, in walk
// order.
func Manifests(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == "Cargo.toml" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
