package gitdep

import (
	"os/exec"
	"sync"
)

// requiredTools are the executables the archive strategy shells out to.
var requiredTools = []string{"git", "sh", "tar"}

// toolsMemo caches the probe result for the process lifetime.
var toolsMemo struct {
	mu      sync.Mutex
	probed  bool
	missing []string
}

// missingTools probes PATH once per process and returns the tools that
// could not be found.
func missingTools() []string {
	toolsMemo.mu.Lock()
	defer toolsMemo.mu.Unlock()

	if !toolsMemo.probed {
		toolsMemo.missing = nil
		for _, tool := range requiredTools {
			if _, err := exec.LookPath(tool); err != nil {
				toolsMemo.missing = append(toolsMemo.missing, tool)
			}
		}
		toolsMemo.probed = true
	}
	return toolsMemo.missing
}

// ResetToolsProbe forgets the memoized probe so the next git resolution
// checks PATH again. Paired with registry.ClearCache for cold reruns.
func ResetToolsProbe() {
	toolsMemo.mu.Lock()
	defer toolsMemo.mu.Unlock()
	toolsMemo.probed = false
	toolsMemo.missing = nil
}
