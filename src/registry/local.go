package registry

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	masterminds "github.com/Masterminds/semver/v3"

	"github.com/alfatm/sparse-crates/src/logging"
)

// Expected header values of cargo's registry index cache blobs.
const (
	cargoCacheVersion       = 3
	cargoIndexFormatVersion = 2
)

// readLocalCache reads a crate's entry from cargo's on-disk index cache
// under ~/.cargo/registry/index/<cacheDir>/.cache/<sharded path>.
func readLocalCache(cacheDir, name string, log logging.Logger) ([]*masterminds.Version, error) {
	p := filepath.Join(cargoHome(), "registry", "index", cacheDir, ".cache",
		filepath.Join(shardedIndexPath(name)...))
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("registry: read cache %s: %w", p, err)
	}
	return parseCargoCache(data, name, log)
}

// parseCargoCache decodes a cargo index cache blob: one cache-format
// byte (3), a little-endian u32 index-format version (2), then
// NUL-separated segments where every other segment starting at index 1
// is a JSON index record. The interleaved segments are cache metadata.
func parseCargoCache(data []byte, name string, log logging.Logger) ([]*masterminds.Version, error) {
	if len(data) < 5 {
		return nil, fmt.Errorf("%w: truncated cache blob (%d bytes)", ErrCacheFormat, len(data))
	}
	if data[0] != cargoCacheVersion {
		return nil, fmt.Errorf("%w: cache version %d, want %d", ErrCacheFormat, data[0], cargoCacheVersion)
	}
	if v := binary.LittleEndian.Uint32(data[1:5]); v != cargoIndexFormatVersion {
		return nil, fmt.Errorf("%w: index format version %d, want %d", ErrCacheFormat, v, cargoIndexFormatVersion)
	}

	segments := bytes.Split(data[5:], []byte{0})
	var versions []*masterminds.Version
	for i := 1; i < len(segments); i += 2 {
		seg := bytes.TrimSpace(segments[i])
		if len(seg) == 0 {
			continue
		}
		if v, ok := parseIndexRecord(seg, name, log); ok {
			versions = append(versions, v)
		}
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("%w for crate %q in local cache", ErrNoVersions, name)
	}
	sortDescending(versions)
	return versions, nil
}

// cargoHome resolves $CARGO_HOME, defaulting to ~/.cargo.
func cargoHome() string {
	if home := os.Getenv("CARGO_HOME"); home != "" {
		return home
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		return ".cargo"
	}
	return filepath.Join(dir, ".cargo")
}
