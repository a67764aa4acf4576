package badge

import (
	"github.com/alfatm/sparse-crates/src/vrange"
)

// Engine generates SVG badges using a specific font.
type Engine struct {
	metrics *FontMetrics
}

// New creates a badge engine with the given font metrics.
func New(metrics *FontMetrics) *Engine {
	return &Engine{metrics: metrics}
}

// Badge defines the content and appearance of a single badge.
type Badge struct {
	Label string // left side text
	Value string // right side text
	Color string // hex color for right side (e.g. "#4c1")
}

// Generate produces a shields.io-compatible SVG badge string.
func (e *Engine) Generate(b Badge) string {
	return e.renderSVG(b)
}

// StatusColor maps a dependency status to a badge hex color.
func StatusColor(st vrange.Status) string {
	switch st {
	case vrange.StatusLatest:
		return "#4c1"
	case vrange.StatusPatchBehind:
		return "#dfb317"
	case vrange.StatusMinorBehind:
		return "#fe7d37"
	case vrange.StatusMajorBehind, vrange.StatusError:
		return "#e05d44"
	default:
		return "#9f9f9f"
	}
}

// WorstStatus picks the most severe status for an aggregate badge.
func WorstStatus(statuses []vrange.Status) vrange.Status {
	worst := vrange.StatusLatest
	for _, st := range statuses {
		if severityRank(st) > severityRank(worst) {
			worst = st
		}
	}
	return worst
}

func severityRank(st vrange.Status) int {
	switch st {
	case vrange.StatusLatest:
		return 0
	case vrange.StatusPatchBehind:
		return 1
	case vrange.StatusMinorBehind:
		return 2
	case vrange.StatusMajorBehind:
		return 3
	default:
		return 4
	}
}
