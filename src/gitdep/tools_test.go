package gitdep

import "testing"

func TestMissingToolsMemoized(t *testing.T) {
	ResetToolsProbe()
	first := missingTools()
	second := missingTools()
	if len(first) != len(second) {
		t.Errorf("probe results differ: %v vs %v", first, second)
	}

	toolsMemo.mu.Lock()
	probed := toolsMemo.probed
	toolsMemo.mu.Unlock()
	if !probed {
		t.Error("probe should be memoized after the first call")
	}

	ResetToolsProbe()
	toolsMemo.mu.Lock()
	probed = toolsMemo.probed
	toolsMemo.mu.Unlock()
	if probed {
		t.Error("reset should forget the probe")
	}
}

func TestMissingToolsEmptyPath(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	ResetToolsProbe()
	defer ResetToolsProbe()

	missing := missingTools()
	if len(missing) != len(requiredTools) {
		t.Errorf("with an empty PATH all tools should be missing, got %v", missing)
	}
}
