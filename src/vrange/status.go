package vrange

import (
	"regexp"

	masterminds "github.com/Masterminds/semver/v3"
)

// Status classifies a dependency's staleness, ordered from none to error.
type Status int

const (
	StatusLatest Status = iota
	StatusPatchBehind
	StatusMinorBehind
	StatusMajorBehind
	StatusError
)

// String returns the lowercase status label used in reports.
func (s Status) String() string {
	switch s {
	case StatusLatest:
		return "latest"
	case StatusPatchBehind:
		return "patch-behind"
	case StatusMinorBehind:
		return "minor-behind"
	case StatusMajorBehind:
		return "major-behind"
	default:
		return "error"
	}
}

// exactRe matches exactly three dot-separated integers with optional
// prerelease and build-metadata suffixes and no leading operator.
var exactRe = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+(?:-[0-9A-Za-z.-]+)?(?:\+[0-9A-Za-z.-]+)?$`)

// IsExactRequirement reports whether raw denotes one specific version
// rather than a range. Short forms ("1", "1.2") are ranges in Cargo and
// therefore not exact.
func IsExactRequirement(raw string) bool {
	return exactRe.MatchString(raw)
}

// SeverityOfGap compares current against target and returns how far
// behind current is. A current at or past target is latest; otherwise the
// first differing release component decides, and a prerelease-only gap
// counts as patch-behind.
func SeverityOfGap(current, target *masterminds.Version) Status {
	if current == nil || target == nil {
		return StatusError
	}
	if !current.LessThan(target) {
		return StatusLatest
	}
	switch {
	case current.Major() != target.Major():
		return StatusMajorBehind
	case current.Minor() != target.Minor():
		return StatusMinorBehind
	case current.Patch() != target.Patch():
		return StatusPatchBehind
	default:
		return StatusPatchBehind
	}
}
