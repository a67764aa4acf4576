package output

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/alfatm/sparse-crates/src/validate"
	"github.com/alfatm/sparse-crates/src/vrange"
)

// Summary aggregates result counts across all scanned manifests.
type Summary struct {
	Manifests int
	Deps      int
	Latest    int
	Outdated  int
	Errors    int
}

// Clean reports whether every dependency is up to date and error free.
func (s Summary) Clean() bool {
	return s.Outdated == 0 && s.Errors == 0
}

// StatusIcon returns the display marker for a dependency status.
func StatusIcon(st vrange.Status, color bool) string {
	switch st {
	case vrange.StatusLatest:
		if color {
			return "\033[32m✓\033[0m"
		}
		return "✓"
	case vrange.StatusPatchBehind:
		if color {
			return "\033[33m~\033[0m"
		}
		return "~"
	case vrange.StatusMinorBehind:
		if color {
			return "\033[33m↑\033[0m"
		}
		return "↑"
	case vrange.StatusMajorBehind:
		if color {
			return "\033[31m⇑\033[0m"
		}
		return "⇑"
	default:
		if color {
			return "\033[31m✗\033[0m"
		}
		return "✗"
	}
}

// Report renders all manifest results and returns the aggregate summary.
func Report(w io.Writer, root string, results []*validate.ManifestResult, elapsed time.Duration, color bool) Summary {
	var sum Summary

	sec := NewSection(w, "Dependencies", elapsed, color)
	defer sec.Close()

	for i, mr := range results {
		if i > 0 {
			sec.Separator()
		}
		renderManifest(sec, root, mr, &sum, color)
	}

	sec.Row("")
	sec.Row("%s", bold(color, fmt.Sprintf("%d manifests, %d dependencies: %d current, %d outdated, %d errors",
		sum.Manifests, sum.Deps, sum.Latest, sum.Outdated, sum.Errors)))

	return sum
}

func renderManifest(sec *Section, root string, mr *validate.ManifestResult, sum *Summary, color bool) {
	sum.Manifests++

	name := mr.FilePath
	if rel, err := filepath.Rel(root, mr.FilePath); err == nil && !strings.HasPrefix(rel, "..") {
		name = rel
	}

	sec.Row("")
	sec.Row("%s", bold(color, name))

	if mr.Err != nil {
		sum.Errors++
		sec.Row("  %s %s", StatusIcon(vrange.StatusError, color), mr.Err)
		sec.Row("")
		return
	}
	if mr.ParseError != nil {
		sum.Errors++
		sec.Row("  %s %s", StatusIcon(vrange.StatusError, color), mr.ParseError)
		sec.Row("")
		return
	}
	if len(mr.Dependencies) == 0 {
		sec.Row("%s", Dimmed("  no dependencies", color))
		sec.Row("")
		return
	}

	for _, r := range mr.Dependencies {
		sum.Deps++
		switch {
		case r.Status == vrange.StatusLatest:
			sum.Latest++
		case r.Status == vrange.StatusError:
			sum.Errors++
		default:
			sum.Outdated++
		}
		renderDependency(sec, r, color)
	}
	sec.Row("")
}

func renderDependency(sec *Section, r validate.Result, color bool) {
	icon := StatusIcon(r.Status, color)

	if r.Status == vrange.StatusError {
		msg := "unknown error"
		if r.Err != nil {
			msg = r.Err.Error()
		}
		sec.Row("  %s %-24s %s", icon, r.Dep.Name, Dimmed(msg, color))
		return
	}

	line := fmt.Sprintf("  %s %-24s %-16s", icon, r.Dep.Name, r.Dep.Req)

	if r.Locked != "" {
		line += fmt.Sprintf(" %-12s", r.Locked)
	} else {
		line += fmt.Sprintf(" %-12s", "-")
	}

	if r.Status != vrange.StatusLatest && r.LatestStable != nil {
		line += "  " + Dimmed("→ "+r.LatestStable.String(), color)
	}
	sec.Row("%s", line)

	if r.Status != vrange.StatusLatest && r.Docs != "" {
		sec.Row("%s", Dimmed("      "+r.Docs, color))
	}
}
