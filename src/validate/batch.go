package validate

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/alfatm/sparse-crates/src/config"
	"github.com/alfatm/sparse-crates/src/lockfile"
)

// ValidateFiles validates many manifests with bounded concurrency. The
// semaphore caps open connections and subprocesses rather than
// maximizing throughput; one file's failure never touches its siblings.
func ValidateFiles(ctx context.Context, paths []string, cfg *config.Config, opts Options) []*ManifestResult {
	limit := int64(cfg.Concurrency)
	if limit <= 0 {
		limit = 4
	}
	sem := semaphore.NewWeighted(limit)

	results := make([]*ManifestResult, len(paths))
	var wg sync.WaitGroup

	for i, path := range paths {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = &ManifestResult{FilePath: path, Err: err}
			continue
		}
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer sem.Release(1)

			data, err := os.ReadFile(path)
			if err != nil {
				results[i] = &ManifestResult{FilePath: path, Err: err}
				return
			}
			lock := lockfile.Load(filepath.Join(filepath.Dir(path), "Cargo.lock"))
			results[i] = ValidateManifest(ctx, data, path, cfg, lock, opts)
		}(i, path)
	}
	wg.Wait()
	return results
}
